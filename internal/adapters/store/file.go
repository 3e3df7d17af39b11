package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
)

// File keeps language preferences in a JSON object mapping user IDs to language codes.
// Every write rewrites the file through a synced temp file and an atomic rename.
type File struct {
	path string

	mu    sync.Mutex
	prefs map[string]string
}

func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating preference directory: %w", err)
	}

	f := &File{path: path, prefs: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading preference file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.prefs); err != nil {
			// a corrupt file must not keep the bot from starting, it is overwritten on the next write
			log.Warn().Err(err).Str("path", path).Msg("ignoring unreadable preference file")
			f.prefs = make(map[string]string)
		}
	}

	return f, nil
}

func (f *File) ReadAll(_ context.Context) (map[int64]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[int64]string, len(f.prefs))
	for key, code := range f.prefs {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			log.Warn().Str("key", key).Msg("skipping preference with invalid user id")
			continue
		}
		out[id] = code
	}

	log.Info().Str("path", f.path).Int("users", len(out)).Msg("loaded preferences")

	return out, nil
}

func (f *File) Write(ctx context.Context, userID int64, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := strconv.FormatInt(userID, 10)
	previous, existed := f.prefs[key]
	f.prefs[key] = code

	if err := f.save(); err != nil {
		if existed {
			f.prefs[key] = previous
		} else {
			delete(f.prefs, key)
		}
		return err
	}

	return nil
}

func (f *File) save() error {
	data, err := json.MarshalIndent(f.prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling preferences: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp preference file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp preference file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp preference file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp preference file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("renaming temp preference file: %w", err)
	}

	log.Debug().Str("path", f.path).Int("users", len(f.prefs)).Msg("saved preferences")

	return nil
}

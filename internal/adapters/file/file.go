package file

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// TempPrefix marks audio files spooled by the bot, so stale ones can be found after a crash.
const TempPrefix = "yt_"

var tempExtensions = []string{".mp3", ".mp4"}

var httpClient = &http.Client{}

// DownloadFile returns the byte content of a file on a provided URL.
func DownloadFile(ctx context.Context, url string) ([]byte, error) {
	res, err := get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		err = fmt.Errorf("error reading response %w", err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	return buf, nil
}

// DownloadTempFile streams the file on url into a new temp file in dir and returns its path.
func DownloadTempFile(ctx context.Context, url, dir, extension string) (string, error) {
	res, err := get(ctx, url)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	return SaveTempFile(dir, res.Body, extension)
}

// SaveTempFile copies r to a uniquely named temp file in dir and returns the path.
func SaveTempFile(dir string, r io.Reader, extension string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = os.TempDir()
	}

	path := filepath.Join(dir, fmt.Sprintf("%s%s%s", TempPrefix, id.String(), extension))

	f, err := os.Create(path)
	if err != nil {
		err = fmt.Errorf("error creating temp file %w", err)
		log.Error().Err(err).Send()
		return "", err
	}

	n, err := io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		RemoveTempFile(path)
		err = fmt.Errorf("error writing temp file %w", err)
		log.Error().Err(err).Send()
		return "", err
	}

	log.Debug().Str("path", path).Int64("bytes", n).Msg("created file")

	return path, nil
}

// RemoveTempFile removes a specified temporary file at the given path and logs success or failure.
func RemoveTempFile(path string) {
	err := os.Remove(path)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("could not clean up temp file")
		return
	}
	log.Debug().Str("path", path).Msg("cleaned up temp file")
}

// CleanTemp removes spooled audio files in dir older than maxAge and returns how many were
// removed. A zero maxAge removes all of them.
func CleanTemp(dir string, maxAge time.Duration) (int, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("error scanning temp dir %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isTempFile(entry.Name()) {
			continue
		}

		if maxAge > 0 {
			info, err := entry.Info()
			if err != nil || time.Since(info.ModTime()) < maxAge {
				continue
			}
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Warn().Str("path", path).Err(err).Msg("could not remove stale temp file")
			continue
		}

		log.Info().Str("path", path).Msg("removed stale temp file")
		removed++
	}

	return removed, nil
}

func isTempFile(name string) bool {
	if !strings.HasPrefix(name, TempPrefix) {
		return false
	}

	for _, ext := range tempExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}

	return false
}

func get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		err = fmt.Errorf("error creating request %w", err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	res, err := httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error executing request %w", err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		err = fmt.Errorf("unexpected status code on download: %d", res.StatusCode)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	return res, nil
}

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "user_languages.json")

	f, err := NewFile(path)
	require.NoError(t, err)

	prefs, err := f.ReadAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, prefs)

	require.NoError(t, f.Write(t.Context(), 42, "es"))
	require.NoError(t, f.Write(t.Context(), -7, "hi"))
	require.NoError(t, f.Write(t.Context(), 42, "id"))

	// a new instance sees what was written
	reopened, err := NewFile(path)
	require.NoError(t, err)

	prefs, err = reopened.ReadAll(t.Context())
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{42: "id", -7: "hi"}, prefs)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFile_ExistingFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_languages.json")

	data, err := json.Marshal(map[string]string{"123": "hi", "not-a-user": "en"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	f, err := NewFile(path)
	require.NoError(t, err)

	prefs, err := f.ReadAll(t.Context())
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{123: "hi"}, prefs)
}

func TestFile_CorruptOrEmptyFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "corrupt", content: "{not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "user_languages.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			f, err := NewFile(path)
			require.NoError(t, err)

			prefs, err := f.ReadAll(t.Context())
			require.NoError(t, err)
			assert.Empty(t, prefs)

			require.NoError(t, f.Write(t.Context(), 1, "en"))
		})
	}
}

func TestFile_WriteFailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user_languages.json")

	f, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Write(t.Context(), 1, "en"))

	// the temp file cannot be created once the directory is gone
	require.NoError(t, os.RemoveAll(dir))

	require.Error(t, f.Write(t.Context(), 1, "es"))

	prefs, err := f.ReadAll(t.Context())
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{1: "en"}, prefs)
}

func TestFile_CancelledContext(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "user_languages.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	require.ErrorIs(t, f.Write(ctx, 1, "en"), context.Canceled)
}

package port

import (
	"context"
	"irabot/internal/core/domain"
)

type MusicSource interface {
	// Search returns tracks matching the query, best match first.
	Search(ctx context.Context, query string) ([]domain.Track, error)
	// Download fetches the audio of a track into a temporary file.
	Download(ctx context.Context, trackID string) (domain.Audio, error)
	// Discard removes the temporary file of a downloaded track.
	Discard(audio domain.Audio)
}

package music

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"irabot/internal/adapters/file"
	"irabot/internal/core/domain"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Client talks to a YouTube search and mp3 conversion API. The API base URL is either configured
// or looked up once from an index document of the form {"api": "https://..."}.
type Client struct {
	indexURL string
	tempDir  string

	mu      sync.Mutex
	baseURL string
}

func NewClient(baseURL, indexURL, tempDir string) (*Client, error) {
	if baseURL == "" && indexURL == "" {
		return nil, errors.New("either music.base_url or music.index_url must be configured")
	}

	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		indexURL: indexURL,
		tempDir:  tempDir,
	}, nil
}

type indexResponse struct {
	API string `json:"api"`
}

type searchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Time    string `json:"time"`
	Channel struct {
		Name string `json:"name"`
	} `json:"channel"`
}

type downloadResponse struct {
	DownloadLink string `json:"downloadLink"`
	Title        string `json:"title"`
	Quality      string `json:"quality"`
}

func (c *Client) Search(ctx context.Context, query string) ([]domain.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	base, err := c.base(ctx)
	if err != nil {
		return nil, err
	}

	var results []searchResult
	if err := getJSON(ctx, base+"/ytFullSearch?songName="+url.QueryEscape(query), &results); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	tracks := make([]domain.Track, 0, len(results))
	for _, r := range results {
		if r.ID == "" {
			continue
		}
		tracks = append(tracks, domain.Track{
			ID:       r.ID,
			Title:    r.Title,
			Duration: r.Time,
			Channel:  r.Channel.Name,
		})
	}

	log.Debug().Str("query", query).Int("results", len(tracks)).Msg("music search done")

	if len(tracks) == 0 {
		return nil, domain.ErrNoResults
	}

	return tracks, nil
}

func (c *Client) Download(ctx context.Context, trackID string) (domain.Audio, error) {
	base, err := c.base(ctx)
	if err != nil {
		return domain.Audio{}, err
	}

	var res downloadResponse
	if err := getJSON(ctx, base+"/ytDl3?link="+url.QueryEscape(trackID)+"&format=mp3", &res); err != nil {
		return domain.Audio{}, fmt.Errorf("conversion failed: %w", err)
	}

	if res.DownloadLink == "" {
		return domain.Audio{}, fmt.Errorf("no download link for track %s", trackID)
	}

	path, err := file.DownloadTempFile(ctx, res.DownloadLink, c.tempDir, ".mp3")
	if err != nil {
		return domain.Audio{}, fmt.Errorf("audio download failed: %w", err)
	}

	log.Info().Str("trackId", trackID).Str("path", path).Msg("downloaded track")

	return domain.Audio{Path: path, Title: res.Title, Quality: res.Quality}, nil
}

func (c *Client) Discard(audio domain.Audio) {
	if audio.Path == "" {
		return
	}

	file.RemoveTempFile(audio.Path)
}

// base returns the API base URL, resolving it from the index on first use. A failed lookup is
// retried on the next call.
func (c *Client) base(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.baseURL != "" {
		return c.baseURL, nil
	}

	var index indexResponse
	if err := getJSON(ctx, c.indexURL, &index); err != nil {
		return "", fmt.Errorf("failed to resolve music api: %w", err)
	}

	if index.API == "" {
		return "", errors.New("music api index has no api url")
	}

	c.baseURL = strings.TrimSuffix(index.API, "/")
	log.Info().Str("api", c.baseURL).Msg("resolved music api")

	return c.baseURL, nil
}

func getJSON(ctx context.Context, url string, target any) error {
	data, err := file.DownloadFile(ctx, url)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("error decoding response %w", err)
	}

	return nil
}

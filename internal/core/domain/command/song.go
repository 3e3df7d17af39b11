package command

import (
	"context"
	"errors"
	"fmt"
	"irabot/internal/core/domain"
	"irabot/internal/core/language"
	"irabot/internal/core/port"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

const SongPick domain.InteractionKind = "song-pick"

// MaxSongResults is the number of search results offered for picking.
const MaxSongResults = 6

var youtubeURL = regexp.MustCompile(
	`^(?:https?://)?(?:m\.|www\.)?(?:youtu\.be/|youtube\.com/(?:embed/|v/|watch\?v=|watch\?.+&v=|shorts/))([\w-]{11})\S*$`)

// Song downloads a song by YouTube URL, or searches for it and lets the user pick one of the
// results by replying with its number.
type Song struct {
	music   port.MusicSource
	audio   port.AudioSender
	tracker port.InteractionTracker
}

func NewSong(music port.MusicSource, audio port.AudioSender, tracker port.InteractionTracker) *Song {
	return &Song{music: music, audio: audio, tracker: tracker}
}

func (s *Song) Info() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "song",
		Aliases:     []string{"music", "play"},
		Description: "Search and download a song",
	}
}

func (s *Song) ReplyKind() domain.InteractionKind {
	return SongPick
}

func (s *Song) Run(ctx context.Context, inv *port.Invocation) error {
	l := log.With().
		Int("messageId", inv.Message.ID).
		Int64("chatId", inv.Message.ChatID).
		Str("command", inv.Command).
		Logger()

	if inv.RawArgs == "" {
		_, err := inv.Reply(ctx, inv.Lang.Text(language.SongUsage))
		return err
	}

	if match := youtubeURL.FindStringSubmatch(inv.Args[0]); match != nil {
		l.Debug().Str("videoId", match[1]).Msg("downloading linked video")
		return s.deliver(ctx, inv, match[1])
	}

	tracks, err := s.music.Search(ctx, inv.RawArgs)
	if errors.Is(err, domain.ErrNoResults) || (err == nil && len(tracks) == 0) {
		_, err = inv.Reply(ctx, inv.Lang.Text(language.SongNoResults, inv.RawArgs))
		return err
	}
	if err != nil {
		return fmt.Errorf("song search failed: %w", err)
	}

	if len(tracks) > MaxSongResults {
		tracks = tracks[:MaxSongResults]
	}

	var sb strings.Builder
	sb.WriteString(inv.Lang.Text(language.SongResultsTitle))
	sb.WriteString("\n\n")
	for i, t := range tracks {
		sb.WriteString(inv.Lang.Text(language.SongResult,
			i+1, domain.EscapeMarkdown(t.Title), t.Duration, domain.EscapeMarkdown(t.Channel)))
		sb.WriteString("\n\n")
	}
	sb.WriteString(inv.Lang.Text(language.SongPick, len(tracks)))

	sentID, err := inv.ReplyMarkdown(ctx, sb.String())
	if err != nil {
		return err
	}

	key := domain.MessageRef{ChatID: inv.Message.ChatID, MessageID: sentID}
	if err := s.tracker.Create(key, SongPick, inv.Message.SenderID, tracks); err != nil {
		return fmt.Errorf("failed to track song pick: %w", err)
	}

	l.Info().Int("results", len(tracks)).Str("interaction", key.String()).Msg("waiting for song pick")

	return nil
}

// ParseReply returns the 0-based index of the picked track.
func (s *Song) ParseReply(interaction domain.Interaction, message *domain.Message) (any, error) {
	tracks, ok := interaction.Payload.([]domain.Track)
	if !ok {
		return nil, fmt.Errorf("unexpected song pick payload %T", interaction.Payload)
	}

	return domain.ParseChoice(message.Text, len(tracks))
}

func (s *Song) HandleReply(ctx context.Context, inv *port.Invocation, interaction domain.Interaction, selection any) error {
	tracks, ok := interaction.Payload.([]domain.Track)
	if !ok {
		return fmt.Errorf("unexpected song pick payload %T", interaction.Payload)
	}

	index, ok := selection.(int)
	if !ok || index < 0 || index >= len(tracks) {
		return fmt.Errorf("invalid song selection %v", selection)
	}

	log.Info().
		Int64("chatId", inv.Message.ChatID).
		Str("trackId", tracks[index].ID).
		Str("title", tracks[index].Title).
		Msg("song picked")

	return s.deliver(ctx, inv, tracks[index].ID)
}

func (s *Song) deliver(ctx context.Context, inv *port.Invocation, trackID string) error {
	audio, err := s.music.Download(ctx, trackID)
	if err != nil {
		return fmt.Errorf("failed to download track %s: %w", trackID, err)
	}
	defer s.music.Discard(audio)

	caption := inv.Lang.Text(language.SongCaption, domain.EscapeMarkdown(audio.Title), audio.Quality)

	if err := s.audio.SendAudioReply(ctx, inv.Message, audio, caption); err != nil {
		return fmt.Errorf("failed to send audio: %w", err)
	}

	return nil
}

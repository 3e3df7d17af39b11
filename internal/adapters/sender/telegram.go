package sender

import (
	"context"
	"errors"
	"fmt"
	"irabot/internal/core/domain"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// TelegramMessageLimit is the maximum number of characters of one Telegram text message.
const TelegramMessageLimit = 4096

//go:generate mockery --name TelegramBot

type TelegramBot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendAudio(ctx context.Context, params *bot.SendAudioParams) (*models.Message, error)
	SetMessageReaction(ctx context.Context, params *bot.SetMessageReactionParams) (bool, error)
}

type TelegramSender struct {
	bot TelegramBot
}

func NewTelegram(bot TelegramBot) *TelegramSender {
	return &TelegramSender{bot: bot}
}

func (s *TelegramSender) SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error) {
	return s.sendChunked(ctx, message, text, "")
}

func (s *TelegramSender) SendMarkdownReply(ctx context.Context, message *domain.Message, text string) (int, error) {
	return s.sendChunked(ctx, message, text, models.ParseModeMarkdownV1)
}

// sendChunked splits text into messages within the Telegram limit. Every part replies to the
// original message, the ID of the last part is returned.
func (s *TelegramSender) sendChunked(
	ctx context.Context,
	message *domain.Message,
	text string,
	parseMode models.ParseMode,
) (int, error) {
	var lastID int

	for _, chunk := range splitMessage(text, TelegramMessageLimit) {
		sent, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    message.ChatID,
			Text:      chunk,
			ParseMode: parseMode,
			ReplyParameters: &models.ReplyParameters{
				MessageID:                message.ID,
				ChatID:                   message.ChatID,
				AllowSendingWithoutReply: true,
			},
		})
		if err != nil {
			log.Error().Err(err).Int64("chatId", message.ChatID).Int("messageId", message.ID).Msg("failed to send message")
			return lastID, fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
		}

		if sent != nil {
			lastID = sent.ID
		}
	}

	return lastID, nil
}

func (s *TelegramSender) SendAudioReply(ctx context.Context, message *domain.Message, audio domain.Audio, caption string) error {
	f, err := os.Open(audio.Path)
	if err != nil {
		return fmt.Errorf("error opening audio file %w", err)
	}
	defer f.Close()

	_, err = s.bot.SendAudio(ctx, &bot.SendAudioParams{
		ChatID:    message.ChatID,
		Audio:     &models.InputFileUpload{Filename: filepath.Base(audio.Path), Data: f},
		Caption:   caption,
		Title:     audio.Title,
		ParseMode: models.ParseModeMarkdownV1,
		ReplyParameters: &models.ReplyParameters{
			MessageID:                message.ID,
			ChatID:                   message.ChatID,
			AllowSendingWithoutReply: true,
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to send audio response")
		return err
	}

	return nil
}

func (s *TelegramSender) React(ctx context.Context, message *domain.Message, emoji string) error {
	ok, err := s.bot.SetMessageReaction(ctx, &bot.SetMessageReactionParams{
		ChatID:    message.ChatID,
		MessageID: message.ID,
		Reaction: []models.ReactionType{
			{
				Type: models.ReactionTypeTypeEmoji,
				ReactionTypeEmoji: &models.ReactionTypeEmoji{
					Type:  models.ReactionTypeTypeEmoji,
					Emoji: emoji,
				},
			},
		},
	})
	if err != nil {
		return err
	}

	if !ok {
		return errors.New("reaction was not set")
	}

	return nil
}

// splitMessage cuts text into parts of at most limit runes, preferring to cut after a newline.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > limit {
		cut := limit
		if i := strings.LastIndex(string(runes[:limit]), "\n"); i > 0 {
			cut = len([]rune(string(runes[:limit])[:i+1]))
		}

		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}

	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}

	return chunks
}

package port

import (
	"context"
	"irabot/internal/core/domain"
)

type TextSender interface {
	// SendMessageReply sends a plain text reply to the given message and returns the ID of the sent
	// message. Long texts are split, the returned ID is the last part.
	SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error)
	// SendMarkdownReply is SendMessageReply with markdown formatting.
	SendMarkdownReply(ctx context.Context, message *domain.Message, text string) (int, error)
	// React sets an emoji reaction on the given message.
	React(ctx context.Context, message *domain.Message, emoji string) error
}

type AudioSender interface {
	// SendAudioReply uploads the audio file as a reply to the given message.
	SendAudioReply(ctx context.Context, message *domain.Message, audio domain.Audio, caption string) error
}

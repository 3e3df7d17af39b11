package command

import (
	"context"
	"irabot/internal/core/domain"
	"irabot/internal/core/language"
	"irabot/internal/core/port"
)

type Start struct {
	botName string
	prefix  string
}

func NewStart(botName, prefix string) *Start {
	return &Start{botName: botName, prefix: prefix}
}

func (s *Start) Info() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "start",
		Description: "Show the welcome message",
	}
}

func (s *Start) Run(ctx context.Context, inv *port.Invocation) error {
	_, err := inv.ReplyMarkdown(ctx, inv.Lang.Text(language.StartMessage,
		domain.EscapeMarkdown(inv.Message.DisplayName()), domain.EscapeMarkdown(s.botName), s.prefix))

	return err
}

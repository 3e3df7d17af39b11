package command

import (
	"context"
	"irabot/internal/core/domain"
	"irabot/internal/core/language"
	"irabot/internal/core/port"
	"time"
)

// Ping reports how long ago the message was sent, which includes the gateway delivery delay.
type Ping struct {
	now func() time.Time
}

func NewPing() *Ping {
	return &Ping{now: time.Now}
}

func (p *Ping) Info() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "ping",
		Description: "Check that the bot is alive",
		NoPrefix:    true,
	}
}

func (p *Ping) Run(ctx context.Context, inv *port.Invocation) error {
	latency := "?"
	if !inv.Message.SentAt.IsZero() {
		latency = p.now().Sub(inv.Message.SentAt).Round(time.Millisecond).String()
	}

	_, err := inv.Reply(ctx, inv.Lang.Text(language.Pong, latency))

	return err
}

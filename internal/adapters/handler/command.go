package handler

import (
	"context"
	"fmt"
	"irabot/internal/core/domain"
	"irabot/internal/core/port"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Command converts Telegram updates into domain messages and dispatches each one on its own
// goroutine, so a slow command never holds up unrelated messages.
type Command struct {
	dispatcher port.MessageDispatcher
	limiter    *userLimiter
	wg         sync.WaitGroup
}

// NewCommand creates the update handler. A perSecond of zero disables rate limiting.
func NewCommand(dispatcher port.MessageDispatcher, perSecond float64, burst int) *Command {
	c := &Command{dispatcher: dispatcher}

	if perSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		c.limiter = newUserLimiter(rate.Limit(perSecond), burst)
	}

	return c
}

func (c *Command) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	message := toMessage(update)
	if message == nil {
		return
	}

	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Int64("userId", message.SenderID).
		Logger()

	l.Debug().Str("message", message.Text).Msg("received message")

	if c.limiter != nil && !c.limiter.Allow(message.SenderID) {
		l.Warn().Msg("rate limit exceeded, dropping message")
		return
	}

	// in-flight dispatches are allowed to finish after the bot context is cancelled
	dispatchCtx := context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		outcome := c.dispatcher.Dispatch(dispatchCtx, message)
		l.Debug().Str("outcome", string(outcome)).Msg("message dispatched")
	}()
}

// StartPruner drops idle rate limit buckets on the given cron schedule. The returned cron is already
// started, the caller stops it on shutdown. Without rate limiting nil is returned.
func (c *Command) StartPruner(schedule string) (*cron.Cron, error) {
	if c.limiter == nil {
		return nil, nil
	}

	cr := cron.New()
	_, err := cr.AddFunc(schedule, func() {
		if removed := c.limiter.Prune(); removed > 0 {
			log.Debug().Int("removed", removed).Msg("pruned idle rate limiters")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}

	cr.Start()

	return cr, nil
}

// Wait blocks until every dispatched message is handled.
func (c *Command) Wait() {
	c.wg.Wait()
}

func toMessage(update *models.Update) *domain.Message {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return nil
	}

	m := update.Message

	text := m.Text
	if text == "" {
		text = m.Caption
	}

	message := &domain.Message{
		ID:        m.ID,
		ChatID:    m.Chat.ID,
		SenderID:  m.From.ID,
		Username:  m.From.Username,
		FirstName: m.From.FirstName,
		Text:      text,
	}

	if m.Date > 0 {
		message.SentAt = time.Unix(int64(m.Date), 0)
	}

	if m.ReplyToMessage != nil {
		replyTo := m.ReplyToMessage.ID
		message.ReplyToMessageID = &replyTo
	}

	return message
}

package service

import (
	"context"
	"errors"
	"fmt"
	"irabot/internal/core/domain"
	"irabot/internal/core/language"
	"irabot/internal/core/port"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultReactionTimeout = 3 * time.Second

type DispatcherConfig struct {
	// OwnerName and OwnerContact are shown in permission and ban notices. The contact is optional.
	OwnerName    string
	OwnerContact string
	// Reactions maps feedback signals to emoji. A missing or empty entry sends no reaction.
	Reactions map[domain.Feedback]string
	// ReactionTimeout bounds every reaction request.
	ReactionTimeout time.Duration
	// Timeout is the per-request deadline of a command, zero disables it.
	Timeout time.Duration
}

// Dispatcher routes one inbound message through reply correlation or command resolution and
// executes the outcome. Command failures never escape Dispatch.
type Dispatcher struct {
	registry     port.CommandRegistry
	interactions port.InteractionStore
	localizer    port.Localizer
	auth         *Authorizer
	sender       port.TextSender
	config       DispatcherConfig
}

func NewDispatcher(
	registry port.CommandRegistry,
	interactions port.InteractionStore,
	localizer port.Localizer,
	auth *Authorizer,
	sender port.TextSender,
	config DispatcherConfig,
) *Dispatcher {
	if config.ReactionTimeout <= 0 {
		config.ReactionTimeout = defaultReactionTimeout
	}

	return &Dispatcher{
		registry:     registry,
		interactions: interactions,
		localizer:    localizer,
		auth:         auth,
		sender:       sender,
		config:       config,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, message *domain.Message) domain.Outcome {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Int64("userId", message.SenderID).
		Logger()

	if ref, ok := message.ReplyRef(); ok {
		if interaction, found := d.interactions.Resolve(ref); found {
			return d.dispatchReply(ctx, l, message, interaction)
		}
	}

	return d.dispatchCommand(ctx, l, message)
}

func (d *Dispatcher) dispatchReply(
	ctx context.Context,
	l zerolog.Logger,
	message *domain.Message,
	interaction domain.Interaction,
) domain.Outcome {
	l = l.With().Str("interaction", interaction.Key.String()).Str("kind", string(interaction.Kind)).Logger()

	handler, ok := d.registry.ReplyHandler(interaction.Kind)
	if !ok {
		l.Warn().Msg("no handler for interaction kind, dropping interaction")
		d.interactions.Remove(interaction.Key)
		return domain.OutcomeIgnored
	}

	lang := d.localizer.Get(message.SenderID)

	if message.SenderID != interaction.OwnerID {
		l.Debug().Int64("ownerId", interaction.OwnerID).Msg("reply from someone other than the owner")
		d.reply(ctx, l, message, lang.Text(language.NotForYou))
		return domain.OutcomeRejected
	}

	selection, err := handler.ParseReply(interaction, message)
	if err != nil {
		l.Debug().Err(err).Msg("invalid reply to interaction")

		var choiceErr *domain.InvalidChoiceError
		if errors.As(err, &choiceErr) {
			d.reply(ctx, l, message, lang.Text(language.InvalidChoice, choiceErr.Max))
		} else {
			d.reply(ctx, l, message, lang.Text(language.InvalidReply))
		}

		return domain.OutcomeRejected
	}

	interaction, ok = d.interactions.Consume(interaction.Key)
	if !ok {
		l.Debug().Msg("interaction already consumed by another reply")
		return domain.OutcomeIgnored
	}

	name := handler.Info().Name
	inv := &port.Invocation{
		Message: message,
		Command: name,
		Args:    strings.Fields(message.Text),
		RawArgs: strings.TrimSpace(message.Text),
		Lang:    lang,
		Sender:  d.sender,
	}

	return d.execute(ctx, l.With().Str("command", name).Logger(), inv, func(ctx context.Context) error {
		return handler.HandleReply(ctx, inv, interaction, selection)
	})
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, l zerolog.Logger, message *domain.Message) domain.Outcome {
	text := strings.TrimSpace(message.Text)
	if text == "" {
		return domain.OutcomeIgnored
	}

	prefix := d.registry.Prefix()
	token, args := domain.ParseCommand(text)
	prefixed := prefix != "" && strings.HasPrefix(token, prefix)

	cmd, ok := d.registry.Resolve(token)
	if !ok {
		name := strings.TrimPrefix(token, prefix)
		if !prefixed || name == "" {
			return domain.OutcomeIgnored
		}

		l.Debug().Str("command", name).Msg("unknown command")

		lang := d.localizer.Get(message.SenderID)
		d.reply(ctx, l, message, lang.Text(language.UnknownCommand, name)+"\n"+lang.Text(language.HelpHint, prefix))

		return domain.OutcomeUnknown
	}

	info := cmd.Info()
	l = l.With().Str("command", info.Name).Logger()
	lang := d.localizer.Get(message.SenderID)

	switch d.auth.Banned(message.SenderID, message.ChatID) {
	case UserBanned:
		l.Info().Msg("banned user tried to use the bot")
		d.notify(ctx, l, message, lang, language.UserBanned)
		return domain.OutcomeUnauthorized
	case ChatBanned:
		l.Info().Msg("bot used in banned chat")
		d.notify(ctx, l, message, lang, language.ThreadBanned)
		return domain.OutcomeUnauthorized
	case NotBanned:
	}

	if info.AdminOnly && !d.auth.IsPrivileged(message.SenderID) {
		l.Info().Msg("permission denied")
		d.notify(ctx, l, message, lang, language.NoPermission)
		return domain.OutcomeUnauthorized
	}

	inv := &port.Invocation{
		Message: message,
		Command: info.Name,
		Args:    args,
		RawArgs: domain.ParseCommandArgs(text),
		Lang:    lang,
		Sender:  d.sender,
	}

	l.Info().Msg("handling request")

	return d.execute(ctx, l, inv, func(ctx context.Context) error {
		return cmd.Run(ctx, inv)
	})
}

func (d *Dispatcher) execute(
	ctx context.Context,
	l zerolog.Logger,
	inv *port.Invocation,
	run func(ctx context.Context) error,
) domain.Outcome {
	d.react(ctx, l, inv.Message, domain.FeedbackProcessing)

	runCtx := ctx
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := safeRun(runCtx, run)
	if err == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		err = runCtx.Err()
	}

	if err != nil {
		l.Err(err).Dur("took", time.Since(start)).Msg("command failed")
		d.react(ctx, l, inv.Message, domain.FeedbackError)
		d.reply(ctx, l, inv.Message, inv.Lang.Text(language.CommandError))

		return domain.OutcomeFailed
	}

	l.Debug().Dur("took", time.Since(start)).Msg("command succeeded")
	d.react(ctx, l, inv.Message, domain.FeedbackSuccess)

	return domain.OutcomeSucceeded
}

// safeRun turns a panic in a command body into an error.
func safeRun(ctx context.Context, run func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command panicked: %v\n%s", r, debug.Stack())
		}
	}()

	return run(ctx)
}

func (d *Dispatcher) react(ctx context.Context, l zerolog.Logger, message *domain.Message, feedback domain.Feedback) {
	emoji := d.config.Reactions[feedback]
	if emoji == "" {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			l.Warn().Interface("panic", r).Str("feedback", string(feedback)).Msg("reaction panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.config.ReactionTimeout)
	defer cancel()

	if err := d.sender.React(ctx, message, emoji); err != nil {
		l.Debug().Err(err).Str("feedback", string(feedback)).Msg("failed to send reaction")
	}
}

func (d *Dispatcher) reply(ctx context.Context, l zerolog.Logger, message *domain.Message, text string) {
	if _, err := d.sender.SendMessageReply(ctx, message, text); err != nil {
		l.Err(err).Msg("failed to send reply")
	}
}

// notify sends a Markdown notice that names the bot owner.
func (d *Dispatcher) notify(
	ctx context.Context,
	l zerolog.Logger,
	message *domain.Message,
	lang *language.Bundle,
	key language.Key,
) {
	contact := ""
	if d.config.OwnerContact != "" {
		contact = " (" + domain.EscapeMarkdown(d.config.OwnerContact) + ")"
	}

	text := lang.Text(key, domain.EscapeMarkdown(d.config.OwnerName), contact)
	if _, err := d.sender.SendMarkdownReply(ctx, message, text); err != nil {
		l.Err(err).Msg("failed to send notice")
	}
}

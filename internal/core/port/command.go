package port

import (
	"context"
	"irabot/internal/core/domain"
	"irabot/internal/core/language"
)

// Invocation is the per-message context handed to a command. It is owned by a single dispatch and
// must not be retained after Run or HandleReply returns.
type Invocation struct {
	// Message is the inbound message that triggered the invocation.
	Message *domain.Message
	// Command is the canonical name of the invoked command.
	Command string
	// Args are the whitespace-separated arguments in their original case.
	Args []string
	// RawArgs is the argument text after the command token.
	RawArgs string
	// Lang is the resolved language bundle of the sender.
	Lang *language.Bundle
	// Sender replies to the message.
	Sender TextSender
}

// Reply sends text as a reply to the invoking message.
func (i *Invocation) Reply(ctx context.Context, text string) (int, error) {
	return i.Sender.SendMessageReply(ctx, i.Message, text)
}

// ReplyMarkdown sends markdown-formatted text as a reply to the invoking message.
func (i *Invocation) ReplyMarkdown(ctx context.Context, text string) (int, error) {
	return i.Sender.SendMarkdownReply(ctx, i.Message, text)
}

type Command interface {
	// Info describes the names under which the command is invoked and who may invoke it.
	Info() domain.CommandInfo
	// Run executes the command. A returned error is reported to the user as a generic failure.
	Run(ctx context.Context, inv *Invocation) error
}

// ReplyHandler is implemented by commands that suspend on a pending interaction and resume when its
// owner replies.
type ReplyHandler interface {
	Command
	// ReplyKind is the interaction kind this handler resumes.
	ReplyKind() domain.InteractionKind
	// ParseReply validates the reply against the interaction without side effects. An error keeps the
	// interaction open so the owner may retry.
	ParseReply(interaction domain.Interaction, message *domain.Message) (any, error)
	// HandleReply resumes the flow with the selection returned by ParseReply. The interaction has
	// already been consumed.
	HandleReply(ctx context.Context, inv *Invocation, interaction domain.Interaction, selection any) error
}

type CommandRegistry interface {
	// Resolve finds the command invoked by token, honouring the prefix rules.
	Resolve(token string) (Command, bool)
	// ReplyHandler returns the continuation registered for an interaction kind.
	ReplyHandler(kind domain.InteractionKind) (ReplyHandler, bool)
	// List returns every registered command ordered by name.
	List() []Command
	// Prefix returns the configured command prefix.
	Prefix() string
}

type MessageDispatcher interface {
	// Dispatch routes one inbound message to its command or pending interaction.
	Dispatch(ctx context.Context, message *domain.Message) domain.Outcome
}

package domain

import (
	"fmt"
	"time"
)

// Message is an inbound text message as seen by the dispatcher.
type Message struct {
	ID               int
	ChatID           int64
	SenderID         int64
	Username         string
	FirstName        string
	ReplyToMessageID *int
	Text             string
	SentAt           time.Time
}

// Ref returns the reference of the message itself.
func (m *Message) Ref() MessageRef {
	return MessageRef{ChatID: m.ChatID, MessageID: m.ID}
}

// ReplyRef returns the reference of the message this one replies to, if any.
func (m *Message) ReplyRef() (MessageRef, bool) {
	if m.ReplyToMessageID == nil || *m.ReplyToMessageID == 0 {
		return MessageRef{}, false
	}

	return MessageRef{ChatID: m.ChatID, MessageID: *m.ReplyToMessageID}, true
}

// DisplayName returns the first name of the sender, falling back to the username.
func (m *Message) DisplayName() string {
	if m.FirstName != "" {
		return m.FirstName
	}

	if m.Username != "" {
		return m.Username
	}

	return "User"
}

// MessageRef identifies a message. Telegram message IDs are only unique within a chat.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

func (r MessageRef) String() string {
	return fmt.Sprintf("%d:%d", r.ChatID, r.MessageID)
}

// CommandInfo describes how a command is invoked and who may invoke it.
type CommandInfo struct {
	Name        string
	Aliases     []string
	Description string
	AdminOnly   bool
	NoPrefix    bool
}

// InteractionKind tags which continuation resumes a pending interaction.
type InteractionKind string

// Interaction is a suspended multi-step flow waiting for its owner to reply to Key.
// Values are never mutated after creation.
type Interaction struct {
	Key       MessageRef
	Kind      InteractionKind
	OwnerID   int64
	Payload   any
	CreatedAt time.Time
}

// Track is a song candidate returned by a music search.
type Track struct {
	ID       string
	Title    string
	Duration string
	Channel  string
}

// Audio is a downloaded audio file spooled to disk.
type Audio struct {
	Path    string
	Title   string
	Quality string
}

// Outcome is the terminal state of one dispatched message.
type Outcome string

const (
	OutcomeIgnored      Outcome = "ignored"
	OutcomeUnknown      Outcome = "unknown"
	OutcomeUnauthorized Outcome = "unauthorized"
	OutcomeRejected     Outcome = "rejected"
	OutcomeSucceeded    Outcome = "succeeded"
	OutcomeFailed       Outcome = "failed"
)

// Feedback is a best-effort reaction signalling progress of a command.
type Feedback string

const (
	FeedbackProcessing Feedback = "processing"
	FeedbackSuccess    Feedback = "success"
	FeedbackError      Feedback = "error"
)

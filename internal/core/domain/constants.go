package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrEmptyQuery         = errors.New("empty query")
	ErrNoResults          = errors.New("no results")
)

// DuplicateKeyError is returned when an interaction is already tracked for a message.
type DuplicateKeyError struct {
	Key MessageRef
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("interaction already tracked for message %s", e.Key)
}

// InvalidChoiceError rejects a reply that does not select one of Max options.
type InvalidChoiceError struct {
	Input string
	Max   int
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("invalid choice %q, expected 1-%d", e.Input, e.Max)
}

// UnknownLanguageError is returned when a language code has no bundle in the catalog.
type UnknownLanguageError struct {
	Code string
}

func (e *UnknownLanguageError) Error() string {
	return fmt.Sprintf("no language bundle for code %q", e.Code)
}

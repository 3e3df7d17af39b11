package port

import (
	"context"
	"irabot/internal/core/domain"
	"irabot/internal/core/language"
)

// PreferenceStore is the durable user -> language code mapping.
type PreferenceStore interface {
	// ReadAll loads every stored preference.
	ReadAll(ctx context.Context) (map[int64]string, error)
	// Write persists one preference. It must be durable when it returns nil.
	Write(ctx context.Context, userID int64, code string) error
}

type Localizer interface {
	// Get returns the bundle for the user, falling back to the default language.
	Get(userID int64) *language.Bundle
	// Set stores the user's language.
	Set(ctx context.Context, userID int64, code string) error
	// Codes lists the available language codes.
	Codes() []string
}

// InteractionTracker is the part of the pending interaction store used by commands.
type InteractionTracker interface {
	// Create starts tracking an interaction for the bot message key.
	Create(key domain.MessageRef, kind domain.InteractionKind, ownerID int64, payload any) error
}

type InteractionStore interface {
	InteractionTracker
	// Resolve looks up an interaction without consuming it.
	Resolve(key domain.MessageRef) (domain.Interaction, bool)
	// Consume atomically looks up and removes an interaction.
	Consume(key domain.MessageRef) (domain.Interaction, bool)
	// Remove drops an interaction without resuming it.
	Remove(key domain.MessageRef) bool
	// Len returns the number of tracked interactions, which may include expired ones not yet swept.
	Len() int
}

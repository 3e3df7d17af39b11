package service

import (
	"context"
	"fmt"
	"irabot/internal/core/domain"
	"irabot/internal/core/language"
	"irabot/internal/core/port"
	"sync"

	"github.com/rs/zerolog/log"
)

// Localizer resolves the language bundle of a user. Preferences are loaded once from the store
// and every change is written through to it before it becomes visible.
type Localizer struct {
	catalog *language.Catalog
	store   port.PreferenceStore

	mu    sync.RWMutex
	prefs map[int64]string
}

func NewLocalizer(ctx context.Context, catalog *language.Catalog, store port.PreferenceStore) (*Localizer, error) {
	prefs, err := store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load language preferences: %w", err)
	}

	if prefs == nil {
		prefs = make(map[int64]string)
	}

	log.Info().Int("users", len(prefs)).Str("default", catalog.DefaultCode()).Msg("loaded language preferences")

	return &Localizer{
		catalog: catalog,
		store:   store,
		prefs:   prefs,
	}, nil
}

func (l *Localizer) Get(userID int64) *language.Bundle {
	l.mu.RLock()
	code, ok := l.prefs[userID]
	l.mu.RUnlock()

	if !ok {
		return l.catalog.Default()
	}

	bundle, ok := l.catalog.Lookup(code)
	if !ok {
		log.Warn().Int64("userId", userID).Str("code", code).Msg("stored language has no bundle, using default")
		return l.catalog.Default()
	}

	return bundle
}

func (l *Localizer) Set(ctx context.Context, userID int64, code string) error {
	if _, ok := l.catalog.Lookup(code); !ok {
		return &domain.UnknownLanguageError{Code: code}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Write(ctx, userID, code); err != nil {
		return fmt.Errorf("failed to persist language preference: %w", err)
	}

	l.prefs[userID] = code

	log.Debug().Int64("userId", userID).Str("code", code).Msg("language preference updated")

	return nil
}

func (l *Localizer) Codes() []string {
	return l.catalog.Codes()
}

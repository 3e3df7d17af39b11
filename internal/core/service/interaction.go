package service

import (
	"fmt"
	"irabot/internal/core/domain"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// InteractionStore tracks suspended multi-step flows keyed by the bot message they wait on.
// Entries are volatile and optionally expire after a TTL.
type InteractionStore struct {
	interactions map[domain.MessageRef]domain.Interaction
	ttl          time.Duration
	mutex        sync.RWMutex
	now          func() time.Time
}

// NewInteractionStore creates a store. A ttl of zero keeps interactions until they are consumed.
func NewInteractionStore(ttl time.Duration) *InteractionStore {
	return &InteractionStore{
		interactions: make(map[domain.MessageRef]domain.Interaction),
		ttl:          ttl,
		now:          time.Now,
	}
}

func (s *InteractionStore) Create(key domain.MessageRef, kind domain.InteractionKind, ownerID int64, payload any) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if existing, ok := s.interactions[key]; ok && !s.expired(existing) {
		return &domain.DuplicateKeyError{Key: key}
	}

	s.interactions[key] = domain.Interaction{
		Key:       key,
		Kind:      kind,
		OwnerID:   ownerID,
		Payload:   payload,
		CreatedAt: s.now(),
	}

	log.Debug().
		Str("key", key.String()).
		Str("kind", string(kind)).
		Int64("ownerId", ownerID).
		Msg("tracking interaction")

	return nil
}

func (s *InteractionStore) Resolve(key domain.MessageRef) (domain.Interaction, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	interaction, ok := s.interactions[key]
	if !ok || s.expired(interaction) {
		return domain.Interaction{}, false
	}

	return interaction, true
}

// Consume removes and returns the interaction in one critical section, so of several concurrent
// callers exactly one observes it.
func (s *InteractionStore) Consume(key domain.MessageRef) (domain.Interaction, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	interaction, ok := s.interactions[key]
	if !ok {
		return domain.Interaction{}, false
	}

	delete(s.interactions, key)

	if s.expired(interaction) {
		return domain.Interaction{}, false
	}

	return interaction, true
}

func (s *InteractionStore) Remove(key domain.MessageRef) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, ok := s.interactions[key]
	delete(s.interactions, key)

	return ok
}

// Len counts tracked interactions, including expired ones not yet swept.
func (s *InteractionStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.interactions)
}

// Sweep drops expired interactions and returns how many were removed.
func (s *InteractionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	removed := 0
	for key, interaction := range s.interactions {
		if s.expired(interaction) {
			delete(s.interactions, key)
			removed++
		}
	}

	if removed > 0 {
		log.Debug().Int("removed", removed).Int("remaining", len(s.interactions)).Msg("swept expired interactions")
	}

	return removed
}

// StartSweeper runs Sweep on the given cron schedule. The returned cron is already started, the
// caller stops it on shutdown. Without a TTL no sweeper is needed and nil is returned.
func (s *InteractionStore) StartSweeper(schedule string) (*cron.Cron, error) {
	if s.ttl <= 0 {
		log.Info().Msg("interaction ttl disabled, not starting sweeper")
		return nil, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.Sweep() }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	c.Start()

	log.Info().Str("schedule", schedule).Dur("ttl", s.ttl).Msg("started interaction sweeper")

	return c, nil
}

func (s *InteractionStore) expired(interaction domain.Interaction) bool {
	return s.ttl > 0 && s.now().Sub(interaction.CreatedAt) >= s.ttl
}

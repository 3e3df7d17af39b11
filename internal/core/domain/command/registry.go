package command

import (
	"errors"
	"fmt"
	"irabot/internal/core/domain"
	"irabot/internal/core/port"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrRegistrySealed = errors.New("registry is sealed, commands can only be registered while loading")

// DuplicateCommandError is returned when a name or alias is already taken by another command.
type DuplicateCommandError struct {
	Name     string
	Existing string
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command name %q is already registered by %q", e.Name, e.Existing)
}

// DuplicateKindError is returned when two commands resume the same interaction kind.
type DuplicateKindError struct {
	Kind     domain.InteractionKind
	Existing string
}

func (e *DuplicateKindError) Error() string {
	return fmt.Sprintf("interaction kind %q is already handled by %q", e.Kind, e.Existing)
}

// Registry maps command names and aliases to commands. Registration happens during load only, after
// Seal the registry is read-only and safe for concurrent use without locking.
type Registry struct {
	prefix   string
	commands map[string]port.Command
	replies  map[domain.InteractionKind]port.ReplyHandler
	ordered  []port.Command
	sealed   bool
}

func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix:   strings.ToLower(prefix),
		commands: make(map[string]port.Command),
		replies:  make(map[domain.InteractionKind]port.ReplyHandler),
	}
}

// Load registers a batch of commands and seals the registry.
func (r *Registry) Load(commands ...port.Command) error {
	for _, cmd := range commands {
		if err := r.Register(cmd); err != nil {
			return err
		}
	}

	r.Seal()

	return nil
}

// Register adds a command under its canonical name and aliases. Nothing is registered if any of
// its names collides with another command.
func (r *Registry) Register(handler port.Command) error {
	if r.sealed {
		return ErrRegistrySealed
	}

	info := handler.Info()
	names := make([]string, 0, len(info.Aliases)+1)
	for _, name := range append([]string{info.Name}, info.Aliases...) {
		names = append(names, normalize(name))
	}

	if names[0] == "" {
		return errors.New("command name must not be empty")
	}

	if existing, ok := r.commands[names[0]]; ok && existing == handler {
		return nil
	}

	for _, name := range names {
		if existing, ok := r.commands[name]; ok && existing != handler {
			return &DuplicateCommandError{Name: name, Existing: existing.Info().Name}
		}
	}

	rh, isReplyHandler := handler.(port.ReplyHandler)
	if isReplyHandler {
		if existing, ok := r.replies[rh.ReplyKind()]; ok && port.Command(existing) != handler {
			return &DuplicateKindError{Kind: rh.ReplyKind(), Existing: existing.Info().Name}
		}
	}

	log.Info().Str("handler", names[0]).Strs("aliases", names[1:]).Msg("adding command handler to registry")

	for _, name := range names {
		r.commands[name] = handler
	}
	if isReplyHandler {
		r.replies[rh.ReplyKind()] = rh
	}
	r.ordered = append(r.ordered, handler)

	return nil
}

// Seal ends the load phase.
func (r *Registry) Seal() {
	r.sealed = true
}

// Resolve matches token first in its prefixed form and then, for commands invocable without
// prefix, in its bare form. Matching ignores case and surrounding whitespace.
func (r *Registry) Resolve(token string) (port.Command, bool) {
	log.Debug().Str("command", token).Msg("fetching command handler from registry")

	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return nil, false
	}

	if strings.HasPrefix(token, r.prefix) {
		if cmd, ok := r.commands[token[len(r.prefix):]]; ok {
			return cmd, true
		}
	}

	cmd, ok := r.commands[token]
	if !ok || !cmd.Info().NoPrefix {
		return nil, false
	}

	return cmd, true
}

func (r *Registry) ReplyHandler(kind domain.InteractionKind) (port.ReplyHandler, bool) {
	h, ok := r.replies[kind]
	return h, ok
}

func (r *Registry) List() []port.Command {
	list := make([]port.Command, len(r.ordered))
	copy(list, r.ordered)

	sort.Slice(list, func(i, j int) bool {
		return list[i].Info().Name < list[j].Info().Name
	})

	return list
}

func (r *Registry) Prefix() string {
	return r.prefix
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

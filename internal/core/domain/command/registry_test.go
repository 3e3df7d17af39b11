package command

import (
	"context"
	"irabot/internal/core/domain"
	"irabot/internal/core/port"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResponder struct {
	info domain.CommandInfo
}

func (m *MockResponder) Info() domain.CommandInfo {
	return m.info
}

func (m *MockResponder) Run(_ context.Context, _ *port.Invocation) error {
	return nil
}

type MockReplyResponder struct {
	MockResponder
	kind domain.InteractionKind
}

func (m *MockReplyResponder) ReplyKind() domain.InteractionKind {
	return m.kind
}

func (m *MockReplyResponder) ParseReply(_ domain.Interaction, _ *domain.Message) (any, error) {
	return nil, nil
}

func (m *MockReplyResponder) HandleReply(_ context.Context, _ *port.Invocation, _ domain.Interaction, _ any) error {
	return nil
}

func TestRegister(t *testing.T) {
	cr := NewRegistry("/")
	mr := &MockResponder{info: domain.CommandInfo{Name: "song", Aliases: []string{"music", "play"}}}

	require.NoError(t, cr.Register(mr))
	assert.Len(t, cr.commands, 3)
	assert.Len(t, cr.List(), 1)
}

func TestRegister_SameCommandTwice(t *testing.T) {
	cr := NewRegistry("/")
	mr := &MockResponder{info: domain.CommandInfo{Name: "ping"}}

	require.NoError(t, cr.Register(mr))
	require.NoError(t, cr.Register(mr))
	assert.Len(t, cr.List(), 1)
}

func TestRegister_Duplicate(t *testing.T) {
	tests := []struct {
		name   string
		second domain.CommandInfo
	}{
		{name: "same name", second: domain.CommandInfo{Name: "song"}},
		{name: "name differs in case", second: domain.CommandInfo{Name: " SONG "}},
		{name: "alias collides with name", second: domain.CommandInfo{Name: "tune", Aliases: []string{"song"}}},
		{name: "name collides with alias", second: domain.CommandInfo{Name: "music"}},
		{name: "alias collides with alias", second: domain.CommandInfo{Name: "tune", Aliases: []string{"x", "play"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr := NewRegistry("/")
			first := &MockResponder{info: domain.CommandInfo{Name: "song", Aliases: []string{"music", "play"}}}
			second := &MockResponder{info: tt.second}

			require.NoError(t, cr.Register(first))

			err := cr.Register(second)
			var dupErr *DuplicateCommandError
			require.ErrorAs(t, err, &dupErr)
			assert.Equal(t, "song", dupErr.Existing)

			// first registration wins and nothing of the second is kept
			assert.Len(t, cr.commands, 3)
			for _, c := range cr.commands {
				assert.Same(t, first, c)
			}
			_, ok := cr.Resolve("/tune")
			assert.False(t, ok)
			_, ok = cr.Resolve("/x")
			assert.False(t, ok)
		})
	}
}

func TestRegister_DuplicateKind(t *testing.T) {
	cr := NewRegistry("/")
	first := &MockReplyResponder{MockResponder: MockResponder{info: domain.CommandInfo{Name: "song"}}, kind: "song-pick"}
	second := &MockReplyResponder{MockResponder: MockResponder{info: domain.CommandInfo{Name: "video"}}, kind: "song-pick"}

	require.NoError(t, cr.Register(first))

	var kindErr *DuplicateKindError
	require.ErrorAs(t, cr.Register(second), &kindErr)

	h, ok := cr.ReplyHandler("song-pick")
	require.True(t, ok)
	assert.Same(t, first, h)

	_, ok = cr.Resolve("/video")
	assert.False(t, ok)
}

func TestRegister_EmptyName(t *testing.T) {
	cr := NewRegistry("/")
	require.Error(t, cr.Register(&MockResponder{info: domain.CommandInfo{Name: "  "}}))
}

func TestLoadSeals(t *testing.T) {
	cr := NewRegistry("/")
	require.NoError(t, cr.Load(&MockResponder{info: domain.CommandInfo{Name: "ping"}}))

	err := cr.Register(&MockResponder{info: domain.CommandInfo{Name: "pong"}})
	require.ErrorIs(t, err, ErrRegistrySealed)
}

func TestLoadStopsOnDuplicate(t *testing.T) {
	cr := NewRegistry("/")
	err := cr.Load(
		&MockResponder{info: domain.CommandInfo{Name: "ping"}},
		&MockResponder{info: domain.CommandInfo{Name: "ping"}},
	)
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	ping := &MockResponder{info: domain.CommandInfo{Name: "ping", NoPrefix: true}}
	song := &MockResponder{info: domain.CommandInfo{Name: "song", Aliases: []string{"music"}}}

	cr := NewRegistry("!")
	require.NoError(t, cr.Load(ping, song))

	tests := []struct {
		token string
		want  port.Command
	}{
		{token: "!ping", want: ping},
		{token: "ping", want: ping},
		{token: " PING ", want: ping},
		{token: "!song", want: song},
		{token: "!Music", want: song},
		{token: "song", want: nil},
		{token: "music", want: nil},
		{token: "!nope", want: nil},
		{token: "!", want: nil},
		{token: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			cmd, ok := cr.Resolve(tt.token)
			if tt.want == nil {
				assert.False(t, ok)
				assert.Nil(t, cmd)
				return
			}

			require.True(t, ok)
			assert.Same(t, tt.want, cmd)
		})
	}
}

func TestResolve_AllRegisteredCommands(t *testing.T) {
	cmds := []*MockResponder{
		{info: domain.CommandInfo{Name: "start"}},
		{info: domain.CommandInfo{Name: "help"}},
		{info: domain.CommandInfo{Name: "ping", NoPrefix: true}},
		{info: domain.CommandInfo{Name: "lang"}},
		{info: domain.CommandInfo{Name: "song", Aliases: []string{"music", "play"}}},
	}

	cr := NewRegistry("/")
	for _, c := range cmds {
		require.NoError(t, cr.Register(c))
	}
	cr.Seal()

	for _, c := range cmds {
		for _, name := range append([]string{c.info.Name}, c.info.Aliases...) {
			got, ok := cr.Resolve("/" + name)
			require.True(t, ok, name)
			assert.Same(t, c, got)

			got, ok = cr.Resolve(name)
			assert.Equal(t, c.info.NoPrefix, ok, name)
			if ok {
				assert.Same(t, c, got)
			}
		}
	}
}

func TestResolve_Concurrent(t *testing.T) {
	cr := NewRegistry("/")
	require.NoError(t, cr.Load(&MockResponder{info: domain.CommandInfo{Name: "ping"}}))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := cr.Resolve("/ping")
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}

func TestList(t *testing.T) {
	cr := NewRegistry("/")
	require.NoError(t, cr.Register(&MockResponder{info: domain.CommandInfo{Name: "song"}}))
	require.NoError(t, cr.Register(&MockResponder{info: domain.CommandInfo{Name: "help"}}))
	require.NoError(t, cr.Register(&MockResponder{info: domain.CommandInfo{Name: "lang"}}))

	list := cr.List()

	require.Len(t, list, 3)
	assert.Equal(t, "help", list[0].Info().Name)
	assert.Equal(t, "lang", list[1].Info().Name)
	assert.Equal(t, "song", list[2].Info().Name)
	assert.Equal(t, "/", cr.Prefix())
}

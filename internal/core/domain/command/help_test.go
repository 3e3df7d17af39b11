package command

import (
	"irabot/internal/core/domain"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHelp_Run(t *testing.T) {
	registry := NewRegistry("!")
	help := NewHelp(registry, "Ira")

	require.NoError(t, registry.Load(
		help,
		NewStart("Ira", "!"),
		NewPing(),
		NewDebug(new(MockInteractions), time.Now()),
		&MockResponder{info: domain.CommandInfo{Name: "song", Aliases: []string{"music", "play"}, Description: "Search and download a song"}},
	))

	msg := &domain.Message{ID: 1, ChatID: 2, Text: "!help"}

	var got string
	mockSender := new(MockSender)
	mockSender.On("SendMarkdownReply", mock.Anything, msg, mock.Anything).
		Run(func(args mock.Arguments) { got = args.String(2) }).
		Return(3, nil)

	require.NoError(t, help.Run(t.Context(), invocation(t, mockSender, msg, "help")))

	lines := strings.Split(got, "\n")
	assert.Equal(t, "📘 *Ira – Help Menu*", lines[0])
	assert.Contains(t, got, "!debug (stats) 🔒 – Show runtime statistics")
	assert.Contains(t, got, "!help – List all commands")
	assert.Contains(t, got, "\nping – Check that the bot is alive")
	assert.Contains(t, got, "!song (music, play) – Search and download a song")
	assert.Contains(t, got, "!start – Show the welcome message")
	assert.True(t, strings.HasSuffix(got, "Tip: Use the prefix before commands."))

	// sorted by name
	assert.Less(t, strings.Index(got, "!debug"), strings.Index(got, "!help"))
	assert.Less(t, strings.Index(got, "!song"), strings.Index(got, "!start"))
}

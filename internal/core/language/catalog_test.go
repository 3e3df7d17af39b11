package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog("en")
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "es", "hi", "id"}, c.Codes())
	assert.Equal(t, "en", c.Default().Code)
	assert.Equal(t, "English", c.Default().Name)

	_, ok := c.Lookup("EN")
	assert.False(t, ok, "lookup must be case-sensitive")

	_, ok = c.Lookup("xx")
	assert.False(t, ok)
}

func TestNewCatalog_UnknownDefault(t *testing.T) {
	_, err := NewCatalog("xx")
	require.Error(t, err)
}

func TestNewCatalog_FillsMissingTemplates(t *testing.T) {
	c, err := NewCatalog("en")
	require.NoError(t, err)

	hi, ok := c.Lookup("hi")
	require.True(t, ok)

	// hi.toml does not define help_footer, so it is taken from English
	assert.Equal(t, c.Default().Text(HelpFooter), hi.Text(HelpFooter))
	assert.NotEqual(t, c.Default().Text(NotForYou), hi.Text(NotForYou))

	en := c.Default()
	for _, code := range c.Codes() {
		b, _ := c.Lookup(code)
		for _, key := range []Key{UnknownCommand, HelpHint, CommandError, NoPermission, NotForYou, InvalidChoice} {
			assert.True(t, b.Has(key), "%s misses %s", code, key)
		}
		assert.True(t, en.Has(SongCaption))
	}
}

func TestBundle_Text(t *testing.T) {
	b := NewBundle("en", "English", map[Key]string{
		"plain":  "hello",
		"one":    "unknown '%1'",
		"many":   "%1 %2 %3 %4 %5 %6 %7 %8 %9 %10",
		"repeat": "%1 and %1",
	})

	tests := []struct {
		name string
		key  Key
		args []any
		want string
	}{
		{name: "plain", key: "plain", want: "hello"},
		{name: "one placeholder", key: "one", args: []any{"song"}, want: "unknown 'song'"},
		{name: "number argument", key: "one", args: []any{6}, want: "unknown '6'"},
		{name: "double digit placeholder", key: "many",
			args: []any{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, want: "1 2 3 4 5 6 7 8 9 10"},
		{name: "repeated placeholder", key: "repeat", args: []any{"x"}, want: "x and x"},
		{name: "missing argument stays", key: "one", want: "unknown '%1'"},
		{name: "undefined key", key: "nope", want: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Text(tt.key, tt.args...))
		})
	}
}

func TestParseBundle(t *testing.T) {
	data := []byte("name = \"Test\"\n\n[messages]\nnot_for_you = \"nope %1\"\n")

	b, err := ParseBundle("tt", data)
	require.NoError(t, err)
	assert.Equal(t, "Test", b.Name)
	assert.Equal(t, "nope x", b.Text(NotForYou, "x"))

	_, err = ParseBundle("tt", []byte("name = \"Empty\"\n"))
	require.Error(t, err)

	_, err = ParseBundle("tt", []byte("name = "))
	require.Error(t, err)
}

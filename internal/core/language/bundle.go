package language

import (
	"fmt"
	"strconv"
	"strings"
)

// Key names a message template in a Bundle.
type Key string

const (
	UnknownCommand   Key = "unknown_command"
	HelpHint         Key = "help_hint"
	CommandError     Key = "command_error"
	StartMessage     Key = "start_message"
	NoPermission     Key = "no_permission"
	UserBanned       Key = "user_banned"
	ThreadBanned     Key = "thread_banned"
	Processing       Key = "processing"
	HelpTitle        Key = "help_title"
	HelpLine         Key = "help_line"
	HelpFooter       Key = "help_footer"
	NotForYou        Key = "not_for_you"
	InvalidChoice    Key = "invalid_choice"
	InvalidReply     Key = "invalid_reply"
	LanguageSet      Key = "language_set"
	LanguageList     Key = "language_list"
	LanguageNotFound Key = "language_not_found"
	Pong             Key = "pong"
	SongUsage        Key = "song_usage"
	SongNoResults    Key = "song_no_results"
	SongResultsTitle Key = "song_results_title"
	SongResult       Key = "song_result"
	SongPick         Key = "song_pick"
	SongCaption      Key = "song_caption"
)

// Bundle is the complete set of message templates for one language. Templates use positional
// placeholders %1, %2, ... replaced by the arguments given to Text.
type Bundle struct {
	Code     string
	Name     string
	messages map[Key]string
}

// NewBundle builds a bundle from raw templates.
func NewBundle(code, name string, messages map[Key]string) *Bundle {
	m := make(map[Key]string, len(messages))
	for k, v := range messages {
		m[k] = v
	}

	return &Bundle{Code: code, Name: name, messages: m}
}

// Has reports whether the bundle defines a template for key.
func (b *Bundle) Has(key Key) bool {
	_, ok := b.messages[key]
	return ok
}

// Text renders the template for key. An undefined key renders as the key itself.
func (b *Bundle) Text(key Key, args ...any) string {
	tmpl, ok := b.messages[key]
	if !ok {
		return string(key)
	}

	if len(args) == 0 {
		return tmpl
	}

	// highest index first so %1 does not eat the prefix of %10
	pairs := make([]string, 0, len(args)*2)
	for i := len(args); i >= 1; i-- {
		pairs = append(pairs, "%"+strconv.Itoa(i), fmt.Sprint(args[i-1]))
	}

	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// fill copies every template of base that b lacks.
func (b *Bundle) fill(base *Bundle) int {
	filled := 0
	for k, v := range base.messages {
		if _, ok := b.messages[k]; !ok {
			b.messages[k] = v
			filled++
		}
	}

	return filled
}

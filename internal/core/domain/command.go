package domain

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseCommand splits text into a lower-cased command token and its original-case arguments.
func ParseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}

	return strings.ToLower(fields[0]), fields[1:]
}

// ParseCommandArgs returns everything after the first word, keeping the original spacing of the rest.
func ParseCommandArgs(text string) string {
	text = strings.TrimSpace(text)

	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return ""
	}

	return strings.TrimSpace(text[i:])
}

// ParseChoice parses a 1-based selection among n options and returns its 0-based index.
func ParseChoice(text string, n int) (int, error) {
	input := strings.TrimSpace(text)

	choice, err := strconv.Atoi(input)
	if err != nil || choice < 1 || choice > n {
		return 0, &InvalidChoiceError{Input: input, Max: n}
	}

	return choice - 1, nil
}

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// EscapeMarkdown escapes user supplied text for a Telegram Markdown (V1) message.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

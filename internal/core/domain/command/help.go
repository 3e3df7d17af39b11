package command

import (
	"context"
	"irabot/internal/core/domain"
	"irabot/internal/core/language"
	"irabot/internal/core/port"
	"strings"
)

type Help struct {
	registry port.CommandRegistry
	botName  string
}

func NewHelp(registry port.CommandRegistry, botName string) *Help {
	return &Help{registry: registry, botName: botName}
}

func (h *Help) Info() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "help",
		Description: "List all commands",
	}
}

// Run lists every command with its invocation form. Admin-only commands are marked, not hidden.
func (h *Help) Run(ctx context.Context, inv *port.Invocation) error {
	var sb strings.Builder

	sb.WriteString(inv.Lang.Text(language.HelpTitle, h.botName))
	sb.WriteString("\n\n")

	for _, cmd := range h.registry.List() {
		info := cmd.Info()

		prefix := h.registry.Prefix()
		if info.NoPrefix {
			prefix = ""
		}

		name := info.Name
		if len(info.Aliases) > 0 {
			name += " (" + strings.Join(info.Aliases, ", ") + ")"
		}
		if info.AdminOnly {
			name += " 🔒"
		}

		sb.WriteString(inv.Lang.Text(language.HelpLine, prefix, name, info.Description))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(inv.Lang.Text(language.HelpFooter))

	_, err := inv.ReplyMarkdown(ctx, sb.String())

	return err
}

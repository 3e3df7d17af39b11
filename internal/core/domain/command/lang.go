package command

import (
	"context"
	"errors"
	"irabot/internal/core/domain"
	"irabot/internal/core/language"
	"irabot/internal/core/port"
	"strings"

	"github.com/rs/zerolog/log"
)

type Lang struct {
	localizer port.Localizer
	prefix    string
}

func NewLang(localizer port.Localizer, prefix string) *Lang {
	return &Lang{localizer: localizer, prefix: prefix}
}

func (c *Lang) Info() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "lang",
		Aliases:     []string{"language"},
		Description: "Show or change your language",
	}
}

func (c *Lang) Run(ctx context.Context, inv *port.Invocation) error {
	if len(inv.Args) == 0 {
		_, err := inv.Reply(ctx,
			inv.Lang.Text(language.LanguageList, strings.Join(c.localizer.Codes(), ", "), c.prefix))
		return err
	}

	code := inv.Args[0]

	err := c.localizer.Set(ctx, inv.Message.SenderID, code)
	var unknown *domain.UnknownLanguageError
	if errors.As(err, &unknown) {
		_, err = inv.Reply(ctx, inv.Lang.Text(language.LanguageNotFound))
		return err
	}
	if err != nil {
		return err
	}

	log.Info().Int64("userId", inv.Message.SenderID).Str("language", code).Msg("user changed language")

	// confirm in the newly selected language
	_, err = inv.Reply(ctx, c.localizer.Get(inv.Message.SenderID).Text(language.LanguageSet, code))

	return err
}

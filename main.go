package main

import (
	"context"
	"errors"
	"fmt"
	"irabot/internal/adapters/file"
	"irabot/internal/adapters/handler"
	"irabot/internal/adapters/music"
	"irabot/internal/adapters/sender"
	"irabot/internal/adapters/store"
	"irabot/internal/core/domain"
	"irabot/internal/core/domain/command"
	"irabot/internal/core/language"
	"irabot/internal/core/port"
	"irabot/internal/core/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "irabot",
	Short: "irabot - a multilingual Telegram command bot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(configPath); err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return run(ctx)
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("irabot", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log.Info().Str("version", version).Msg("starting irabot...")
	started := time.Now()

	catalog, err := language.NewCatalog(viper.GetString("bot.default_language"))
	if err != nil {
		return fmt.Errorf("failed loading language bundles: %w", err)
	}

	prefs, closeStore, err := newPreferenceStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	localizer, err := service.NewLocalizer(ctx, catalog, prefs)
	if err != nil {
		return fmt.Errorf("failed reading language preferences: %w", err)
	}

	interactions := service.NewInteractionStore(viper.GetDuration("interactions.ttl"))
	sweeper, err := interactions.StartSweeper(viper.GetString("interactions.sweep"))
	if err != nil {
		return fmt.Errorf("invalid interaction sweep schedule: %w", err)
	}
	if sweeper != nil {
		defer sweeper.Stop()
	}

	tempDir := viper.GetString("music.temp_dir")
	if removed, err := file.CleanTemp(tempDir, 0); err != nil {
		log.Warn().Err(err).Msg("could not clean temp dir")
	} else if removed > 0 {
		log.Info().Int("removed", removed).Msg("cleaned up leftover audio files")
	}

	auth, err := service.NewAuthorizer()
	if err != nil {
		return fmt.Errorf("invalid user lists in config: %w", err)
	}

	prefix := viper.GetString("bot.prefix")
	botName := viper.GetString("bot.name")

	var opts []bot.Option
	webhookURL := viper.GetString("telegram.webhook_url")
	if secret := viper.GetString("telegram.webhook_secret"); webhookURL != "" && secret != "" {
		opts = append(opts, bot.WithWebhookSecretToken(secret))
	}

	// the default handler is set once the dispatcher exists
	var commandHandler *handler.Command
	opts = append(opts, bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
		commandHandler.Handle(ctx, b, update)
	}))

	b, err := bot.New(viper.GetString("telegram.bot_token"), opts...)
	if err != nil {
		return fmt.Errorf("failed initializing telegram bot: %w", err)
	}

	s := sender.NewTelegram(b)

	registry := command.NewRegistry(prefix)
	commands := []port.Command{
		command.NewStart(botName, prefix),
		command.NewHelp(registry, botName),
		command.NewLang(localizer, prefix),
		command.NewPing(),
		command.NewDebug(interactions, started),
	}

	musicClient, err := music.NewClient(viper.GetString("music.base_url"), viper.GetString("music.index_url"), tempDir)
	if err != nil {
		log.Warn().Err(err).Msg("song command disabled")
	} else {
		commands = append(commands, command.NewSong(musicClient, s, interactions))
	}

	if err := registry.Load(commands...); err != nil {
		return fmt.Errorf("failed registering commands: %w", err)
	}

	dispatcher := service.NewDispatcher(registry, interactions, localizer, auth, s, dispatcherConfig())
	commandHandler = handler.NewCommand(dispatcher,
		viper.GetFloat64("handler.rate_limit"), viper.GetInt("handler.rate_burst"))

	pruner, err := commandHandler.StartPruner(viper.GetString("handler.prune"))
	if err != nil {
		return fmt.Errorf("invalid rate limit prune schedule: %w", err)
	}
	if pruner != nil {
		defer pruner.Stop()
	}

	log.Info().Int("commands", len(registry.List())).Strs("languages", catalog.Codes()).Msg("bot ready")

	if webhookURL != "" {
		err = serveWebhook(ctx, b, webhookURL, started)
	} else {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
			log.Warn().Err(err).Msg("could not delete webhook")
		}
		log.Info().Msg("bot polling")
		b.Start(ctx)
	}

	log.Info().Msg("shutting down, waiting for running commands")
	commandHandler.Wait()

	return err
}

func newPreferenceStore(ctx context.Context) (port.PreferenceStore, func(), error) {
	switch backend := viper.GetString("storage.backend"); backend {
	case "file":
		f, err := store.NewFile(viper.GetString("storage.file_path"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed opening preference file: %w", err)
		}
		return f, func() {}, nil
	case "redis":
		r, err := store.NewRedis(ctx, store.RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			Key:      viper.GetString("redis.key"),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed connecting to redis: %w", err)
		}
		return r, func() {
			if err := r.Close(); err != nil {
				log.Warn().Err(err).Msg("could not close redis client")
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func dispatcherConfig() service.DispatcherConfig {
	config := service.DispatcherConfig{
		OwnerName:       viper.GetString("bot.owner_name"),
		OwnerContact:    viper.GetString("bot.owner_contact"),
		ReactionTimeout: viper.GetDuration("reactions.timeout"),
		Timeout:         viper.GetDuration("handler.timeout"),
	}

	if viper.GetBool("reactions.enabled") {
		config.Reactions = map[domain.Feedback]string{
			domain.FeedbackProcessing: viper.GetString("reactions.processing"),
			domain.FeedbackSuccess:    viper.GetString("reactions.success"),
			domain.FeedbackError:      viper.GetString("reactions.error"),
		}
	}

	return config
}

// serveWebhook registers the webhook with Telegram and serves updates until ctx is done. The root
// path answers with a plain status page for uptime checks.
func serveWebhook(ctx context.Context, b *bot.Bot, url string, started time.Time) error {
	_, err := b.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:         url,
		SecretToken: viper.GetString("telegram.webhook_secret"),
	})
	if err != nil {
		return fmt.Errorf("failed setting webhook: %w", err)
	}

	location, err := time.LoadLocation(viper.GetString("bot.timezone"))
	if err != nil {
		log.Warn().Err(err).Msg("unknown timezone, using UTC")
		location = time.UTC
	}

	mux := http.NewServeMux()
	mux.Handle(viper.GetString("telegram.webhook_path"), b.WebhookHandler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprintf(w, "irabot %s is running\nup since %s\nnow %s\n", version,
			started.In(location).Format(time.RFC1123), time.Now().In(location).Format(time.RFC1123))
	})

	server := &http.Server{
		Addr:              viper.GetString("telegram.listen_addr"),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go b.StartWebhook(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("webhook server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook server failed: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

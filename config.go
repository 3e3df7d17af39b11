package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

func setDefaults() {
	viper.SetDefault("bot.name", "Ira")
	viper.SetDefault("bot.prefix", "/")
	viper.SetDefault("bot.default_language", "en")
	viper.SetDefault("bot.timezone", "UTC")
	viper.SetDefault("bot.owner_name", "the owner")
	viper.SetDefault("bot.owner_contact", "")
	viper.SetDefault("bot.log_level", "info")

	viper.SetDefault("log.file", "")
	viper.SetDefault("log.max_size_mb", 10)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age_days", 28)

	viper.SetDefault("telegram.webhook_url", "")
	viper.SetDefault("telegram.webhook_path", "/webhook")
	viper.SetDefault("telegram.listen_addr", ":8080")

	viper.SetDefault("storage.backend", "file")
	viper.SetDefault("storage.file_path", "data/languages.json")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.key", "irabot:languages")

	viper.SetDefault("interactions.ttl", "30m")
	viper.SetDefault("interactions.sweep", "@every 1m")

	viper.SetDefault("handler.timeout", "2m")
	viper.SetDefault("handler.rate_limit", 1.0)
	viper.SetDefault("handler.rate_burst", 5)
	viper.SetDefault("handler.prune", "@every 10m")

	viper.SetDefault("reactions.enabled", true)
	viper.SetDefault("reactions.timeout", "3s")
	viper.SetDefault("reactions.processing", "👀")
	viper.SetDefault("reactions.success", "👍")
	viper.SetDefault("reactions.error", "👎")

	viper.SetDefault("music.base_url", "")
	viper.SetDefault("music.index_url", "")
	viper.SetDefault("music.temp_dir", "")
}

// loadConfig reads the TOML config from path, or config.toml in the working directory. Every key
// can be overridden with an IRABOT_ environment variable, e.g. IRABOT_TELEGRAM_BOT_TOKEN.
func loadConfig(path string) error {
	setDefaults()

	viper.SetEnvPrefix("irabot")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType("toml")
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("could not read config file: %w", err)
		}
		log.Warn().Msg("no config file found, using defaults and environment")
	}

	setupLogging()

	if viper.GetString("telegram.bot_token") == "" {
		return errors.New("telegram.bot_token is not set")
	}

	for _, key := range []string{"interactions.ttl", "handler.timeout", "reactions.timeout"} {
		if _, err := time.ParseDuration(viper.GetString(key)); err != nil {
			return fmt.Errorf("invalid duration for %s in config: %w", key, err)
		}
	}

	return nil
}

func setupLogging() {
	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if path := viper.GetString("log.file"); path != "" {
		rotating := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    viper.GetInt("log.max_size_mb"),
			MaxBackups: viper.GetInt("log.max_backups"),
			MaxAge:     viper.GetInt("log.max_age_days"),
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, rotating)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

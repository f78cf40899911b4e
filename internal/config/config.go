// Package config resolves runtime settings from flags, AISCHOOL_*
// environment variables, an optional aischool.yaml file and a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aischool/aischool/internal/llm"
	"github.com/aischool/aischool/internal/logger"
	"github.com/aischool/aischool/internal/store"
	"github.com/aischool/aischool/internal/tutor"
)

const envPrefix = "AISCHOOL"

// Config is the resolved runtime configuration.
type Config struct {
	// DB is the SQLite database path. Empty selects store.DefaultDBPath.
	DB string `mapstructure:"db"`

	// Timezone is an IANA name deciding calendar days for streaks.
	Timezone string `mapstructure:"timezone"`

	Log   LogConfig   `mapstructure:"log"`
	LLM   llm.Config  `mapstructure:"llm"`
	Tutor TutorConfig `mapstructure:"tutor"`

	// Source is the config file that was read, if any.
	Source string `mapstructure:"-"`
}

type LogConfig struct {
	Mode     string `mapstructure:"mode"`
	Level    string `mapstructure:"level"`
	Redact   bool   `mapstructure:"redact"`
	HashSalt string `mapstructure:"hash_salt"`
}

type TutorConfig struct {
	MaxTokens            int     `mapstructure:"max_tokens"`
	ChatTemperature      float64 `mapstructure:"chat_temperature"`
	RecommendTemperature float64 `mapstructure:"recommend_temperature"`
	FeedbackTemperature  float64 `mapstructure:"feedback_temperature"`
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile is an explicit config path. Empty searches the working
	// directory and the user config directory for aischool.yaml.
	ConfigFile string
	// EnvFile is loaded into the environment first. Empty means ".env".
	// Variables already set are not overridden.
	EnvFile string
	// Flags are bound by name: db, timezone, log-level, log-mode,
	// llm-provider. Unknown or nil flags are skipped.
	Flags *pflag.FlagSet
}

var flagKeys = map[string]string{
	"db":           "db",
	"timezone":     "timezone",
	"log-level":    "log.level",
	"log-mode":     "log.mode",
	"llm-provider": "llm.provider",
}

func setDefaults(v *viper.Viper) {
	lc := llm.DefaultConfig()
	tc := tutor.DefaultConfig()

	v.SetDefault("db", "")
	v.SetDefault("timezone", "UTC")

	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.redact", true)
	v.SetDefault("log.hash_salt", "")

	v.SetDefault("llm.provider", lc.Provider)
	v.SetDefault("llm.timeout", lc.Timeout)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", lc.Gemini.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", lc.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", lc.Anthropic.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", lc.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", lc.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", lc.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", lc.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", lc.Retry.Multiplier)

	v.SetDefault("tutor.max_tokens", tc.MaxTokens)
	v.SetDefault("tutor.chat_temperature", tc.ChatTemperature)
	v.SetDefault("tutor.recommend_temperature", tc.RecommendTemperature)
	v.SetDefault("tutor.feedback_temperature", tc.FeedbackTemperature)
}

// Load resolves the configuration. Precedence, highest first: changed
// flags, environment, config file, defaults. When the selected provider
// has no key, the vendors' standard key variables are checked.
func Load(opts Options) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("aischool")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/aischool")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()

	if !cfg.LLM.HasKey() {
		if discovered, ok := llm.DiscoverConfig(cfg.LLM); ok {
			cfg.LLM = discovered
		}
	}
	return cfg, nil
}

// DBPath returns the configured database path or the platform default.
func (c Config) DBPath() (string, error) {
	if c.DB != "" {
		return c.DB, nil
	}
	return store.DefaultDBPath()
}

// Location returns the streak time zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoggerOptions maps the log section onto logger.Options.
func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Mode:     c.Log.Mode,
		Level:    c.Log.Level,
		Redact:   c.Log.Redact,
		HashSalt: c.Log.HashSalt,
	}
}

// TutorConfig maps the tutor section onto tutor.Config. The per-call
// timeout comes from the LLM section.
func (c Config) TutorConfig() tutor.Config {
	return tutor.Config{
		MaxTokens:            c.Tutor.MaxTokens,
		ChatTemperature:      c.Tutor.ChatTemperature,
		RecommendTemperature: c.Tutor.RecommendTemperature,
		FeedbackTemperature:  c.Tutor.FeedbackTemperature,
		Timeout:              c.LLM.Timeout,
	}
}

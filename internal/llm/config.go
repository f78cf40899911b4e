package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	Provider string `mapstructure:"provider"`

	Gemini     GeminiConfig     `mapstructure:"gemini"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Retry      RetryConfig      `mapstructure:"retry"`

	// Timeout bounds a single tutor call including retries.
	Timeout time.Duration `mapstructure:"timeout"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// DefaultConfig returns the defaults: Gemini Flash, three attempts, 30s.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderGemini,
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// DiscoverConfig checks the vendors' standard API key variables
// (Gemini, OpenAI, Anthropic, OpenRouter) and selects the first provider
// whose key is set. It is used when no provider key was configured
// explicitly.
func DiscoverConfig(base Config) (Config, bool) {
	vendors := []struct {
		env   string
		apply func(*Config, string)
	}{
		{"GEMINI_API_KEY", func(c *Config, k string) { c.Provider, c.Gemini.APIKey = ProviderGemini, k }},
		{"GOOGLE_API_KEY", func(c *Config, k string) { c.Provider, c.Gemini.APIKey = ProviderGemini, k }},
		{"OPENAI_API_KEY", func(c *Config, k string) { c.Provider, c.OpenAI.APIKey = ProviderOpenAI, k }},
		{"ANTHROPIC_API_KEY", func(c *Config, k string) { c.Provider, c.Anthropic.APIKey = ProviderAnthropic, k }},
		{"OPENROUTER_API_KEY", func(c *Config, k string) { c.Provider, c.OpenRouter.APIKey = ProviderOpenRouter, k }},
	}
	for _, p := range vendors {
		if k := os.Getenv(p.env); k != "" {
			p.apply(&base, k)
			return base, true
		}
	}
	return base, false
}

// HasKey reports whether the selected provider has credentials.
func (c Config) HasKey() bool {
	return c.Validate() == nil
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case ProviderGemini:
		key, env = c.Gemini.APIKey, "AISCHOOL_LLM_GEMINI_API_KEY"
	case ProviderOpenAI:
		key, env = c.OpenAI.APIKey, "AISCHOOL_LLM_OPENAI_API_KEY"
	case ProviderAnthropic:
		key, env = c.Anthropic.APIKey, "AISCHOOL_LLM_ANTHROPIC_API_KEY"
	case ProviderOpenRouter:
		key, env = c.OpenRouter.APIKey, "AISCHOOL_LLM_OPENROUTER_API_KEY"
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}

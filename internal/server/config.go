// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the chat service.
package server

import (
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/samber/lo"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// RateLimitConfig defines the parameters for per-connection message rate limiting.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the server configuration settings including security controls.
type Config struct {
	Host                    string        `env:"HOST"`
	Port                    int           `env:"PORT,default=3000"`
	AllowedOrigins          string        `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	MaxMessageSize          int           `env:"MAX_MESSAGE_SIZE,default=4096"`
	SendBufferSize          int           `env:"SEND_BUFFER_SIZE,default=256"`
	RateLimitBurst          int           `env:"RATE_LIMIT_BURST,default=5"`
	RateLimitRefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=1s"`
	ProfanityFilterMode     string        `env:"PROFANITY_MODE,default=censor"`
	ProfanityExtraWords     string        `env:"PROFANITY_EXTRA_WORDS"`
	ProfanityReplacement    string        `env:"PROFANITY_REPLACEMENT,default=*"`
	LogLevel                string        `env:"LOG_LEVEL,default=INFO"`
	ShutdownTimeout         time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// DefaultConfig returns the configuration used when no environment is set.
// The values come from the default= entries of the env tags.
func DefaultConfig() Config {
	var cfg Config
	if err := env.Unmarshal(env.EnvSet{}, &cfg); err != nil {
		panic(fmt.Sprintf("invalid config defaults: %v", err))
	}
	return cfg
}

// LoadConfig reads the configuration from the process environment and
// sanitizes it. Unset variables take their defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return cfg.Sanitize()
}

// Sanitize replaces out-of-range values by their defaults and rejects values
// that cannot be repaired.
func (c Config) Sanitize() (Config, error) {
	defaults := DefaultConfig()
	if c.Port <= 0 || c.Port > 65535 {
		c.Port = defaults.Port
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaults.MaxMessageSize
	}
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = defaults.SendBufferSize
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = defaults.RateLimitBurst
	}
	if c.RateLimitRefillInterval <= 0 {
		c.RateLimitRefillInterval = defaults.RateLimitRefillInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaults.LogLevel
	}

	if _, err := chat.ParseProfanityMode(c.ProfanityFilterMode); err != nil {
		return Config{}, fmt.Errorf("PROFANITY_MODE: %w", err)
	}
	if c.ProfanityReplacement == "" {
		c.ProfanityReplacement = defaults.ProfanityReplacement
	}
	if _, err := c.ReplacementRune(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// RateLimit returns the per-connection rate limit.
func (c Config) RateLimit() RateLimitConfig {
	return RateLimitConfig{Burst: c.RateLimitBurst, RefillInterval: c.RateLimitRefillInterval}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Origins returns the configured allowed origins.
func (c Config) Origins() []string {
	return splitList(c.AllowedOrigins)
}

// ExtraProfaneWords returns the words added to the built-in profanity list.
func (c Config) ExtraProfaneWords() []string {
	return splitList(c.ProfanityExtraWords)
}

// ProfanityMode returns the parsed profanity mode.
func (c Config) ProfanityMode() chat.ProfanityMode {
	mode, err := chat.ParseProfanityMode(c.ProfanityFilterMode)
	if err != nil {
		return chat.ProfanityCensor
	}
	return mode
}

// ReplacementRune returns the masking character, which must be exactly one rune.
func (c Config) ReplacementRune() (rune, error) {
	r := []rune(c.ProfanityReplacement)
	if len(r) != 1 {
		return 0, fmt.Errorf("PROFANITY_REPLACEMENT must be a single character, got %q", c.ProfanityReplacement)
	}
	return r[0], nil
}

func splitList(value string) []string {
	parts := lo.Map(strings.Split(value, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	return lo.Compact(parts)
}

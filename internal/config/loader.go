package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if AUCTION_CONFIG is set
//  3. env (prefix AUCTION_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("AUCTION_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: AUCTION_BUDGET, AUCTION_LEAGUE_SIZE, ...
	// Map env keys like AUCTION_LEAGUE_SIZE -> league_size (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("AUCTION_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "auction_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the engine cannot run with.
func (c *Config) validate() error {
	if c.LeagueSize <= 0 {
		return fmt.Errorf("%w: league_size must be positive", ErrInvalidConfig)
	}
	if c.Budget <= 0 {
		return fmt.Errorf("%w: budget must be positive", ErrInvalidConfig)
	}
	if len(c.SlotTemplate()) == 0 {
		return fmt.Errorf("%w: roster_slots must not be empty", ErrInvalidConfig)
	}
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("%w: fuzzy_threshold must be in (0, 1]", ErrInvalidConfig)
	}
	if c.MinBidIncrement <= 0 {
		return fmt.Errorf("%w: min_bid_increment must be positive", ErrInvalidConfig)
	}
	return nil
}

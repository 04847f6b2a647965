// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"strings"
)

// Config contains process configuration for one auction session.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// ProjectionsPath points at the reference dataset CSV
	// (PlayerName,Position,ProjectedPoints,BaselineAAV,Tier).
	ProjectionsPath string `koanf:"projections_path"`

	// EventLogPath points at the append-only session event log.
	EventLogPath string `koanf:"event_log_path"`

	// MetricsAddr is the Prometheus listen address; empty disables the
	// metrics endpoint.
	MetricsAddr string `koanf:"metrics_addr"`

	// LeagueSize is the number of teams in the auction.
	LeagueSize int `koanf:"league_size"`

	// Budget is each team's starting auction budget in whole dollars.
	Budget int `koanf:"budget"`

	// MyTeamName identifies the advised team. Comma-separated aliases are
	// accepted since platforms rename teams mid-draft.
	MyTeamName string `koanf:"my_team_name"`

	// RosterSlots is the ordered slot template applied to every team,
	// comma-separated base types, e.g. "QB,RB,RB,WR,WR,TE,FLEX,FLEX,K,DEF,BENCH,...".
	RosterSlots string `koanf:"roster_slots"`

	// SlotEligibility maps a slot base type to the positions it accepts.
	// An empty or missing entry means the slot accepts only its own base type.
	SlotEligibility map[string][]string `koanf:"slot_eligibility"`

	// BaselineRanks sets the replacement-level rank per position: the Nth-best
	// remaining projection at that position is the zero-point for VORP.
	BaselineRanks map[string]int `koanf:"baseline_ranks"`

	// Strategy selects the active draft strategy profile by name.
	Strategy string `koanf:"strategy"`

	// QueueSize bounds the ingest event queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the ingest deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// FuzzyThreshold is the minimum name-similarity score (0..1) accepted
	// as a fuzzy match.
	FuzzyThreshold float64 `koanf:"fuzzy_threshold"`

	// MinBidIncrement is the smallest legal raise in whole dollars.
	MinBidIncrement int `koanf:"min_bid_increment"`

	// OverpayTolerance is the fraction above adjusted fair value beyond
	// which the engine recommends walking away, e.g. 0.15.
	OverpayTolerance float64 `koanf:"overpay_tolerance"`

	// EnforceMarkup bounds a price-enforcement bid above market fair value,
	// e.g. 0.10.
	EnforceMarkup float64 `koanf:"enforce_markup"`
}

// New creates a Config with football defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use and is
// currently unused.
func New(_ ...context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		ProjectionsPath: "data/projections.csv",
		EventLogPath:    "data/event_log.jsonl",
		MetricsAddr:     ":9091",
		LeagueSize:      10,
		Budget:          200,
		MyTeamName:      "My Team",
		RosterSlots:     "QB,RB,RB,WR,WR,TE,FLEX,FLEX,K,DEF,BENCH,BENCH,BENCH,BENCH,BENCH,BENCH",
		SlotEligibility: map[string][]string{
			"QB":        {"QB"},
			"RB":        {"RB"},
			"WR":        {"WR"},
			"TE":        {"TE"},
			"K":         {"K"},
			"DEF":       {"DEF"},
			"FLEX":      {"RB", "WR", "TE"},
			"SUPERFLEX": {"QB", "RB", "WR", "TE"},
			"BENCH":     {"QB", "RB", "WR", "TE", "K", "DEF"},
		},
		BaselineRanks: map[string]int{
			"QB": 11, "RB": 30, "WR": 30, "TE": 11, "K": 1, "DEF": 1,
		},
		Strategy:         "balanced",
		QueueSize:        4096,
		DedupeSize:       50_000,
		FuzzyThreshold:   0.82,
		MinBidIncrement:  1,
		OverpayTolerance: 0.15,
		EnforceMarkup:    0.10,
	}
}

// TeamAliases returns the configured team name split into trimmed aliases.
func (c *Config) TeamAliases() []string {
	parts := strings.Split(c.MyTeamName, ",")
	aliases := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			aliases = append(aliases, p)
		}
	}
	return aliases
}

// SlotTemplate returns the roster template split into ordered base types.
func (c *Config) SlotTemplate() []string {
	parts := strings.Split(c.RosterSlots, ",")
	slots := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			slots = append(slots, strings.ToUpper(p))
		}
	}
	return slots
}

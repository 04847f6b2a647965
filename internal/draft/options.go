package draft

import (
	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/valuation"
)

// Option applies a configuration option to the State.
type Option func(*State)

// WithLeagueSize sets the number of teams sharing the auction pool.
func WithLeagueSize(n int) Option {
	return func(s *State) {
		if n > 0 {
			s.leagueSize = n
		}
	}
}

// WithBudget sets every team's starting budget in whole dollars.
func WithBudget(dollars int) Option {
	return func(s *State) {
		if dollars > 0 {
			s.budget = dollars
		}
	}
}

// WithSlotTemplate sets the ordered roster template applied to every team.
func WithSlotTemplate(template []string, eligibility map[string][]string) Option {
	return func(s *State) {
		if len(template) > 0 {
			s.slotTemplate = template
		}
		if len(eligibility) > 0 {
			s.eligibility = eligibility
		}
	}
}

// WithBaselineRanks sets the replacement-level rank per position name.
func WithBaselineRanks(ranks map[string]int) Option {
	return func(s *State) {
		if len(ranks) > 0 {
			s.baselineRanks = ranks
		}
	}
}

// WithStrategy selects the active draft strategy profile by name.
func WithStrategy(name string) Option {
	return func(s *State) {
		s.profile = valuation.ProfileByName(name)
	}
}

// WithFuzzyThreshold sets the name resolver's similarity threshold.
func WithFuzzyThreshold(threshold float64) Option {
	return func(s *State) {
		if threshold > 0 && threshold <= 1 {
			s.fuzzyThreshold = threshold
		}
	}
}

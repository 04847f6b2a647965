// Package simdraft generates a randomized but reproducible auction and
// drives it through the full engine pipeline: commands in, queue,
// event log, aggregate, advice out. It exists to exercise the system
// end to end from the command line.
package simdraft

import "time"

// Config controls one simulated auction run.
type Config struct {
	// Seed makes the run reproducible; the same seed replays the same
	// auction against the same pool.
	Seed int64

	// Teams is the number of bidding teams.
	Teams int

	// Budget is each team's starting budget in whole dollars.
	Budget int

	// PoolSize is the number of synthetic players generated.
	PoolSize int

	// EventLogPath persists the generated session when non-empty.
	EventLogPath string

	// UndoRate is the chance (0..1) a completed sale is later reversed.
	UndoRate float64

	// Timeout bounds the whole run.
	Timeout time.Duration

	// Verbose prints every event as it is submitted.
	Verbose bool
}

// DefaultConfig returns the standard simulation parameters.
func DefaultConfig() *Config {
	return &Config{
		Seed:     1,
		Teams:    10,
		Budget:   200,
		PoolSize: 180,
		UndoRate: 0.03,
		Timeout:  2 * time.Minute,
	}
}

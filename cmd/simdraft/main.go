// Command simdraft runs a randomized but reproducible auction through
// the whole engine: generated pool, nominations, bids, sales, undos,
// optional event-log persistence, and post-run verification.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tonyntran/fantasy-auction-assistant/internal/simdraft"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/logger"
)

func main() {
	defaults := simdraft.DefaultConfig()

	var (
		seed     = flag.Int64("seed", defaults.Seed, "Random seed; same seed reproduces the same auction")
		teams    = flag.Int("teams", defaults.Teams, "Number of bidding teams")
		budget   = flag.Int("budget", defaults.Budget, "Starting budget per team")
		poolSize = flag.Int("pool", defaults.PoolSize, "Number of synthetic players")
		logPath  = flag.String("eventlog", "", "Persist the session to this event log and verify replay")
		undoRate = flag.Float64("undo-rate", defaults.UndoRate, "Chance a sale is later reversed")
		timeout  = flag.Duration("timeout", defaults.Timeout, "Overall run timeout")
		verbose  = flag.Bool("verbose", false, "Print every sale")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg := &simdraft.Config{
		Seed:         *seed,
		Teams:        *teams,
		Budget:       *budget,
		PoolSize:     *poolSize,
		EventLogPath: *logPath,
		UndoRate:     *undoRate,
		Timeout:      *timeout,
		Verbose:      *verbose,
	}

	start := time.Now()
	stats, err := simdraft.Run(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulated auction failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("pool %d players, %d teams x $%d\n", stats.PoolSize, *teams, *budget)
	fmt.Printf("events: %d nominations, %d bids, %d sales, %d undos\n",
		stats.Nominations, stats.Bids, stats.Sales, stats.Undos)
	fmt.Printf("spent $%d total in %s\n", stats.TotalSpent, time.Since(start).Round(time.Millisecond))
	fmt.Println("verification passed")
}

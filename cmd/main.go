package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tonyntran/fantasy-auction-assistant/internal/adapters/eventlog"
	"github.com/tonyntran/fantasy-auction-assistant/internal/app"
	"github.com/tonyntran/fantasy-auction-assistant/internal/config"
	"github.com/tonyntran/fantasy-auction-assistant/internal/draft"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/logger"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/metrics"
)

const (
	readHeaderTimeout     = 5 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Load the projections pool
	pool, err := draft.LoadProjectionsCSV(cfg.ProjectionsPath)
	if err != nil {
		log.Error(ctx, "failed to load projections", logger.Error(err))
		return
	}
	log.Info(ctx, "projections loaded",
		logger.String("path", cfg.ProjectionsPath),
		logger.Int("players", len(pool)))

	state := draft.New(
		draft.WithLeagueSize(cfg.LeagueSize),
		draft.WithBudget(cfg.Budget),
		draft.WithSlotTemplate(cfg.SlotTemplate(), cfg.SlotEligibility),
		draft.WithBaselineRanks(cfg.BaselineRanks),
		draft.WithStrategy(cfg.Strategy),
		draft.WithFuzzyThreshold(cfg.FuzzyThreshold),
	)
	if err := state.Load(pool); err != nil {
		log.Error(ctx, "failed to build draft state", logger.Error(err))
		return
	}

	// Open the event log and replay any prior session state.
	store, err := eventlog.Open(cfg.EventLogPath, eventlog.WithFsync(true))
	if err != nil {
		log.Error(ctx, "failed to open event log", logger.Error(err))
		return
	}

	events, err := store.Replay(ctx)
	if err != nil {
		log.Error(ctx, "failed to replay event log", logger.Error(err))
		_ = store.Close()
		return
	}
	for i := range events {
		if _, err := state.Apply(&events[i]); err != nil {
			log.Warn(ctx, "skipping unreplayable event",
				logger.Int64("seq", events[i].Seq), logger.Error(err))
		}
	}
	if len(events) > 0 {
		log.Info(ctx, "session restored from event log",
			logger.Int("events", len(events)),
			logger.Int64("seq", state.Seq()))
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithState(state),
		app.WithStore(store),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithTeamAliases(cfg.TeamAliases()),
		app.WithStrategy(cfg.Strategy),
		app.WithAdviceParams(cfg.OverpayTolerance, cfg.EnforceMarkup, cfg.MinBidIncrement),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	// Read commands from stdin until EOF or signal.
	repl := newREPL(svc, os.Stdin, os.Stdout)
	go func() {
		repl.run(ctx)
		stop()
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down")
}

// serveMetrics exposes the Prometheus registry on its own listener.
func serveMetrics(ctx context.Context, addr string) {
	log := logger.Get()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.Info(ctx, "metrics endpoint listening", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics endpoint failed", logger.Error(err))
	}
}

// startSystemMetricsUpdater periodically refreshes process-level gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// Package app wires the auction engine together: the ingest queue, the
// append-only event log and the in-memory draft aggregate, behind a
// command-and-query API used by the CLI and the simulated-draft tool.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/tonyntran/fantasy-auction-assistant/internal/adapters/mq/queue"
	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/dedupe"
	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/valuation"
	"github.com/tonyntran/fantasy-auction-assistant/internal/draft"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/logger"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/metrics"
)

// Store is the event persistence the service appends to before applying.
// It matches the eventlog adapter's surface.
type Store interface {
	Append(ctx context.Context, event *model.DraftEvent) (int64, error)
	Close() error
}

// Service owns the single-writer apply loop. Commands resolve player
// identity, dedupe and enqueue; one goroutine drains the queue, appends
// each event to the log and only then applies it to the aggregate.
type Service struct {
	mu sync.RWMutex

	state   *draft.State
	store   Store
	deduper dedupe.Deduper
	queue   eventqueue.Queue

	queueSize   int
	dedupeSize  int
	teamAliases []string

	strategy         valuation.Profile
	overpayTolerance float64
	enforceMarkup    float64
	minBidIncrement  int

	started bool
	done    chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithState sets the draft aggregate the service applies events to.
func WithState(state *draft.State) Option {
	return func(s *Service) {
		if state != nil {
			s.state = state
		}
	}
}

// WithStore sets the event log the service appends to. A nil store means
// events are applied without persistence, which the tests use.
func WithStore(store Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithQueueSize bounds the ingest queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the duplicate-suppression cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithTeamAliases names the advised team. The first alias is canonical;
// the rest are accepted on input since platforms rename teams mid-draft.
func WithTeamAliases(aliases []string) Option {
	return func(s *Service) {
		if len(aliases) > 0 {
			s.teamAliases = aliases
		}
	}
}

// WithStrategy selects the strategy profile applied to advice.
func WithStrategy(name string) Option {
	return func(s *Service) {
		s.strategy = valuation.ProfileByName(name)
	}
}

// WithAdviceParams sets the bid-advice tuning knobs.
func WithAdviceParams(overpayTolerance, enforceMarkup float64, minBidIncrement int) Option {
	return func(s *Service) {
		if overpayTolerance > 0 {
			s.overpayTolerance = overpayTolerance
		}
		if enforceMarkup > 0 {
			s.enforceMarkup = enforceMarkup
		}
		if minBidIncrement > 0 {
			s.minBidIncrement = minBidIncrement
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:        4096,
		dedupeSize:       50_000,
		teamAliases:      []string{"My Team"},
		strategy:         valuation.ProfileByName("balanced"),
		overpayTolerance: valuation.DefaultOverpayTolerance,
		enforceMarkup:    valuation.DefaultEnforceMarkup,
		minBidIncrement:  valuation.DefaultMinBidIncrement,
		done:             make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start spins up the apply loop. It is a no-op when already started.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.state == nil {
		return ErrNoState
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)

	go s.applyLoop(ctx)

	s.started = true
	s.logger.Info(ctx, "auction service started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("team", s.teamAliases[0]),
		logger.String("strategy", s.strategy.Name),
	)
	return nil
}

// Stop drains and shuts down the apply loop, then closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping auction service...")

	if q, ok := s.queue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	<-s.done

	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "auction service stopped")
}

// applyLoop is the single writer. Every event is appended to the log
// first; an append failure drops the event rather than applying
// unpersisted state.
func (s *Service) applyLoop(ctx context.Context) {
	defer close(s.done)

	for event := range s.queue.Dequeue(ctx) {
		ev := event

		if s.store != nil {
			if _, err := s.store.Append(ctx, &ev); err != nil {
				s.logger.Error(ctx, "event append failed, dropping event",
					logger.String("id", ev.ID),
					logger.String("kind", string(ev.Kind)),
					logger.Error(err))
				s.deduper.Unrecord(ctx, ev.ID)
				continue
			}
		}

		res, err := s.state.Apply(&ev)
		if err != nil {
			// The event is already durable; surface the conflict and move on.
			s.logger.Warn(ctx, "persisted event rejected by state",
				logger.String("id", ev.ID),
				logger.String("kind", string(ev.Kind)),
				logger.Error(err))
			continue
		}
		if res.Warning != "" {
			s.logger.Warn(ctx, res.Warning, logger.Int64("seq", res.Seq))
		}
	}
}

// submit resolves nothing; it dedupes by event ID and enqueues.
func (s *Service) submit(ctx context.Context, event model.DraftEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.TS.IsZero() {
		event.TS = time.Now().UTC()
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	if s.deduper.SeenAndRecord(ctx, event.ID) {
		metrics.RecordEventDuplicate()
		s.logger.Debug(ctx, "duplicate event suppressed",
			logger.String("id", event.ID),
			logger.String("kind", string(event.Kind)))
		return nil
	}

	if !s.queue.Enqueue(ctx, event) {
		s.deduper.Unrecord(ctx, event.ID)
		return ErrQueueFull
	}
	return nil
}

// resolvePlayer maps a raw name to the canonical pool key.
func (s *Service) resolvePlayer(ctx context.Context, raw string) (string, error) {
	match, ok := s.state.Resolve(raw)
	if !ok {
		metrics.RecordUnresolvedName()
		return "", fmt.Errorf("%w: %q", ErrUnknownPlayer, raw)
	}
	if match.Confidence < 1.0 {
		s.logger.Info(ctx, "fuzzy-matched player name",
			logger.String("input", raw),
			logger.String("matched", match.Key),
			logger.Float64("confidence", match.Confidence))
	}
	return match.Key, nil
}

// canonicalTeam folds configured aliases onto the primary team name.
func (s *Service) canonicalTeam(name string) string {
	for _, alias := range s.teamAliases {
		if name == alias {
			return s.teamAliases[0]
		}
	}
	return name
}

// Sell records a completed sale of a player to a team. The sale is
// checked against the live state up front so the caller gets the
// rejection reason; the apply loop re-checks under its own lock.
func (s *Service) Sell(ctx context.Context, player, team string, amount int) error {
	key, err := s.resolvePlayer(ctx, player)
	if err != nil {
		return err
	}
	ps, ok := s.state.Player(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, player)
	}
	if ps.Drafted {
		return fmt.Errorf("%w: %s", draft.ErrAlreadyDrafted, ps.Projection.Name)
	}
	buyer := s.canonicalTeam(team)
	if remaining := s.state.TeamOrTemplate(buyer).RemainingBudget; remaining < amount {
		return fmt.Errorf("%w: %s has $%d, sale price $%d",
			draft.ErrInsufficientBudget, buyer, remaining, amount)
	}
	return s.submit(ctx, model.DraftEvent{
		Kind:   model.EventSale,
		Player: key,
		Team:   buyer,
		Amount: amount,
	})
}

// Undo reverses the sale of a player.
func (s *Service) Undo(ctx context.Context, player string) error {
	key, err := s.resolvePlayer(ctx, player)
	if err != nil {
		return err
	}
	return s.submit(ctx, model.DraftEvent{
		Kind:   model.EventUndo,
		Player: key,
	})
}

// Nominate puts a player on the block at an opening bid. Nominating a
// player who already sold is rejected up front.
func (s *Service) Nominate(ctx context.Context, player, team string, openingBid int) error {
	key, err := s.resolvePlayer(ctx, player)
	if err != nil {
		return err
	}
	if ps, ok := s.state.Player(key); ok && ps.Drafted {
		return fmt.Errorf("%w: %s", draft.ErrAlreadyDrafted, ps.Projection.Name)
	}
	return s.submit(ctx, model.DraftEvent{
		Kind:   model.EventNomination,
		Player: key,
		Team:   s.canonicalTeam(team),
		Amount: openingBid,
	})
}

// Bid records the current high bid on the nominated player.
func (s *Service) Bid(ctx context.Context, team string, amount int) error {
	return s.submit(ctx, model.DraftEvent{
		Kind:   model.EventBid,
		Team:   s.canonicalTeam(team),
		Amount: amount,
	})
}

// AdjustBudget overrides a team's remaining budget, correcting drift
// against the live auction room.
func (s *Service) AdjustBudget(ctx context.Context, team string, remaining int) error {
	return s.submit(ctx, model.DraftEvent{
		Kind:   model.EventBudgetAdjust,
		Team:   s.canonicalTeam(team),
		Amount: remaining,
	})
}

// Reset clears all draft progress while keeping the loaded pool.
func (s *Service) Reset(ctx context.Context) error {
	return s.submit(ctx, model.DraftEvent{
		Kind: model.EventReset,
	})
}

// Snapshot returns a consistent copy of the full draft state.
func (s *Service) Snapshot() model.Snapshot {
	return s.state.Snapshot()
}

// RemainingPlayers lists undrafted players by VORP, optionally filtered
// by position ("" for all).
func (s *Service) RemainingPlayers(pos model.Position) []model.PlayerState {
	return s.state.RemainingPlayers(pos)
}

// Advise evaluates the current bid on a player for the advised team.
func (s *Service) Advise(ctx context.Context, player string, currentBid int) (model.Advice, error) {
	start := time.Now()

	key, err := s.resolvePlayer(ctx, player)
	if err != nil {
		return model.Advice{}, err
	}
	ps, ok := s.state.Player(key)
	if !ok {
		metrics.RecordUnresolvedName()
		return model.Advice{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, player)
	}

	snap := s.state.Snapshot()
	pool := make([]model.PlayerState, 0, len(snap.Players))
	for _, p := range snap.Players {
		pool = append(pool, p)
	}

	advice := valuation.Advise(valuation.Input{
		Player:           ps,
		CurrentBid:       currentBid,
		Team:             s.state.TeamOrTemplate(s.teamAliases[0]),
		Market:           snap.Market,
		Pool:             pool,
		Profile:          s.strategy,
		OverpayTolerance: s.overpayTolerance,
		EnforceMarkup:    s.enforceMarkup,
		MinBidIncrement:  s.minBidIncrement,
	})

	metrics.RecordAdvice(string(advice.Action))
	metrics.RecordAdviceLatency(float64(time.Since(start).Milliseconds()))
	return advice, nil
}

// WhatIf simulates buying a player at a price for the advised team and
// greedily fills the rest of the roster from the remaining pool.
func (s *Service) WhatIf(ctx context.Context, player string, price int) (model.WhatIfResult, error) {
	key, err := s.resolvePlayer(ctx, player)
	if err != nil {
		return model.WhatIfResult{}, err
	}
	return s.state.WhatIf(key, price, s.teamAliases[0])
}

// QueueDepth reports the number of events awaiting the apply loop.
// Callers use it to wait for quiescence before reading state.
func (s *Service) QueueDepth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.queue == nil {
		return 0
	}
	return s.queue.Len(context.Background())
}

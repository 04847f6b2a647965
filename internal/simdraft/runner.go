package simdraft

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tonyntran/fantasy-auction-assistant/internal/adapters/eventlog"
	"github.com/tonyntran/fantasy-auction-assistant/internal/app"
	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/resolve"
	"github.com/tonyntran/fantasy-auction-assistant/internal/draft"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/logger"
)

// Stats summarizes one simulated auction run.
type Stats struct {
	PoolSize    int
	Nominations int
	Bids        int
	Sales       int
	Undos       int
	TotalSpent  int
	Duration    time.Duration
}

type runner struct {
	cfg   *Config
	rng   *rand.Rand
	svc   *app.Service
	state *draft.State

	teams   []string
	budgets map[string]int
	slots   map[string]int
	sold    []soldPlayer

	submitted int64
	stats     Stats
}

type soldPlayer struct {
	key   string
	team  string
	price int
}

// Run generates and executes a full simulated auction, then verifies
// the resulting state and, when persisted, its replay.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	log := logger.Get()
	start := time.Now()

	rng := rand.New(rand.NewSource(cfg.Seed))
	pool := GeneratePool(rng, cfg.PoolSize)

	state := draft.New(
		draft.WithLeagueSize(cfg.Teams),
		draft.WithBudget(cfg.Budget),
	)
	if err := state.Load(pool); err != nil {
		return Stats{}, fmt.Errorf("load pool: %w", err)
	}
	slotCount := len(state.TeamOrTemplate("template").Slots)

	var store *eventlog.JSONLStore
	if cfg.EventLogPath != "" {
		s, err := eventlog.Open(cfg.EventLogPath)
		if err != nil {
			return Stats{}, fmt.Errorf("open event log: %w", err)
		}
		if err := s.Clear(ctx); err != nil {
			return Stats{}, fmt.Errorf("clear event log: %w", err)
		}
		store = s
	}

	r := &runner{
		cfg:     cfg,
		rng:     rng,
		state:   state,
		teams:   make([]string, cfg.Teams),
		budgets: make(map[string]int, cfg.Teams),
		slots:   make(map[string]int, cfg.Teams),
	}
	r.stats.PoolSize = len(pool)
	for i := range r.teams {
		name := fmt.Sprintf("Team %d", i+1)
		r.teams[i] = name
		r.budgets[name] = cfg.Budget
		r.slots[name] = slotCount
	}

	opts := []app.Option{
		app.WithState(state),
		app.WithTeamAliases([]string{r.teams[0]}),
	}
	if store != nil {
		opts = append(opts, app.WithStore(store))
	}
	r.svc = app.New(opts...)
	if err := r.svc.Start(ctx); err != nil {
		return Stats{}, fmt.Errorf("start service: %w", err)
	}

	if err := r.auction(ctx, pool); err != nil {
		r.svc.Stop()
		return r.stats, err
	}
	if err := r.waitApplied(ctx); err != nil {
		r.svc.Stop()
		return r.stats, err
	}

	liveSnap := r.svc.Snapshot()
	r.svc.Stop()

	if err := r.verify(liveSnap); err != nil {
		return r.stats, err
	}
	if cfg.EventLogPath != "" {
		if err := r.verifyReplay(ctx, liveSnap, pool); err != nil {
			return r.stats, err
		}
	}

	r.stats.Duration = time.Since(start)
	log.Info(ctx, "simulated auction complete",
		logger.Int("players", r.stats.PoolSize),
		logger.Int("sales", r.stats.Sales),
		logger.Int("undos", r.stats.Undos),
		logger.Int("totalSpent", r.stats.TotalSpent),
		logger.Duration("duration", r.stats.Duration))
	return r.stats, nil
}

// auction runs nomination rounds over a shuffled board until every team
// is out of money or roster room.
func (r *runner) auction(ctx context.Context, pool []model.PlayerProjection) error {
	order := r.rng.Perm(len(pool))
	nominator := 0

	for _, idx := range order {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		player := pool[idx]
		key := resolve.Normalize(player.Name)

		price := r.salePrice(player)
		buyer, ok := r.pickBuyer(price)
		if !ok {
			continue
		}
		// A buyer may be capped below the simulated market price.
		if r.maxAfford(buyer) < price {
			price = r.maxAfford(buyer)
		}

		nomTeam := r.teams[nominator%len(r.teams)]
		nominator++
		if err := r.svc.Nominate(ctx, player.Name, nomTeam, 1); err != nil {
			return fmt.Errorf("nominate %s: %w", player.Name, err)
		}
		r.submitted++
		r.stats.Nominations++

		// A short escalating bid war up to the closing price.
		for _, fraction := range []float64{0.5, 0.8} {
			bid := int(float64(price) * fraction)
			if bid < 2 || bid >= price {
				continue
			}
			rival := r.teams[r.rng.Intn(len(r.teams))]
			if err := r.svc.Bid(ctx, rival, bid); err != nil {
				return fmt.Errorf("bid on %s: %w", player.Name, err)
			}
			r.submitted++
			r.stats.Bids++
		}

		if err := r.svc.Sell(ctx, player.Name, buyer, price); err != nil {
			return fmt.Errorf("sell %s: %w", player.Name, err)
		}
		r.submitted++
		r.stats.Sales++
		r.budgets[buyer] -= price
		r.slots[buyer]--
		r.stats.TotalSpent += price
		r.sold = append(r.sold, soldPlayer{key: key, team: buyer, price: price})

		if r.cfg.Verbose {
			fmt.Printf("sold %-24s to %-8s for $%d\n", player.Name, buyer, price)
		}

		if r.rng.Float64() < r.cfg.UndoRate && len(r.sold) > 0 {
			if r.undoRandomSale(ctx) {
				// The undo credit lands asynchronously. Settle before
				// sizing the next sale against the live budget.
				if err := r.waitApplied(ctx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// undoRandomSale reverses a random earlier sale, returning the player to
// the pool and the money to the team.
func (r *runner) undoRandomSale(ctx context.Context) bool {
	i := r.rng.Intn(len(r.sold))
	s := r.sold[i]
	if err := r.svc.Undo(ctx, s.key); err != nil {
		return false
	}
	r.submitted++
	r.stats.Undos++
	r.budgets[s.team] += s.price
	r.slots[s.team]++
	r.stats.TotalSpent -= s.price
	r.sold = append(r.sold[:i], r.sold[i+1:]...)

	if r.cfg.Verbose {
		fmt.Printf("undid sale of %s\n", s.key)
	}
	return true
}

// salePrice derives a closing price around the player's baseline value.
func (r *runner) salePrice(player model.PlayerProjection) int {
	price := int(float64(player.BaselineAAV) * (0.6 + r.rng.Float64()*0.9))
	if price < 1 {
		price = 1
	}
	return price
}

// maxAfford is a team's budget minus $1 for each remaining slot after
// this pick, mirroring the live budget-max rule.
func (r *runner) maxAfford(team string) int {
	reserve := r.slots[team] - 1
	if reserve < 0 {
		reserve = 0
	}
	return r.budgets[team] - reserve
}

// pickBuyer finds a team that can roster and afford the price, starting
// from a random offset so purchases spread across the league.
func (r *runner) pickBuyer(price int) (string, bool) {
	offset := r.rng.Intn(len(r.teams))
	for i := 0; i < len(r.teams); i++ {
		team := r.teams[(offset+i)%len(r.teams)]
		if r.slots[team] > 0 && r.maxAfford(team) >= 1 && r.maxAfford(team) >= price/2 {
			return team, true
		}
	}
	return "", false
}

// waitApplied blocks until the aggregate has applied every submitted event.
func (r *runner) waitApplied(ctx context.Context) error {
	for {
		if r.svc.Snapshot().Seq >= r.submitted && r.svc.QueueDepth() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("auction did not settle: %w", ctx.Err())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// verify checks the aggregate against the runner's own bookkeeping.
func (r *runner) verify(snap model.Snapshot) error {
	for name, team := range snap.Teams {
		spent := 0
		for _, acq := range team.Acquired {
			spent += acq.Price
		}
		if team.RemainingBudget != team.StartingBudget-spent {
			return fmt.Errorf("budget identity broken for %s: remaining %d, starting %d, spent %d",
				name, team.RemainingBudget, team.StartingBudget, spent)
		}
		if want, ok := r.budgets[name]; ok && team.RemainingBudget != want {
			return fmt.Errorf("budget drift for %s: engine %d, simulation %d",
				name, team.RemainingBudget, want)
		}
	}

	drafted := 0
	for _, ps := range snap.Players {
		if ps.Drafted {
			drafted++
		}
	}
	if want := r.stats.Sales - r.stats.Undos; drafted != want {
		return fmt.Errorf("drafted count mismatch: engine %d, simulation %d", drafted, want)
	}
	return nil
}

// verifyReplay rebuilds state from the persisted log and compares it to
// the live aggregate.
func (r *runner) verifyReplay(ctx context.Context, live model.Snapshot, pool []model.PlayerProjection) error {
	store, err := eventlog.Open(r.cfg.EventLogPath)
	if err != nil {
		return fmt.Errorf("reopen event log: %w", err)
	}
	defer store.Close()

	events, err := store.Replay(ctx)
	if err != nil {
		return fmt.Errorf("replay event log: %w", err)
	}

	rebuilt := draft.New(
		draft.WithLeagueSize(r.cfg.Teams),
		draft.WithBudget(r.cfg.Budget),
	)
	if err := rebuilt.Load(pool); err != nil {
		return fmt.Errorf("reload pool: %w", err)
	}
	for i := range events {
		if _, err := rebuilt.Apply(&events[i]); err != nil {
			return fmt.Errorf("replay event seq %d: %w", events[i].Seq, err)
		}
	}

	snap := rebuilt.Snapshot()
	if snap.Seq != live.Seq {
		return fmt.Errorf("replay seq %d differs from live %d", snap.Seq, live.Seq)
	}
	for key, ps := range live.Players {
		rp := snap.Players[key]
		if rp.Drafted != ps.Drafted || rp.Price != ps.Price || rp.Team != ps.Team {
			return fmt.Errorf("replay diverged for player %s", key)
		}
	}
	for name, team := range live.Teams {
		rt, ok := snap.Teams[name]
		if !ok || rt.RemainingBudget != team.RemainingBudget {
			return fmt.Errorf("replay diverged for team %s", name)
		}
	}
	return nil
}

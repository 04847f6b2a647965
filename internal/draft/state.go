// Package draft holds the stateful aggregate for one auction session.
//
// A single writer applies events; reads go through Snapshot and the
// query methods, which copy. Replaying the full event log into a
// freshly loaded State reproduces the live state.
package draft

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/resolve"
	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/roster"
	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/valuation"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/metrics"
)

// Default session configuration, overridable through options.
const (
	defaultLeagueSize = 10
	defaultBudget     = 200
)

var defaultSlotTemplate = []string{
	"QB", "RB", "RB", "WR", "WR", "TE", "FLEX", "FLEX", "K", "DEF",
	"BENCH", "BENCH", "BENCH", "BENCH", "BENCH", "BENCH",
}

var defaultEligibility = map[string][]string{
	"QB":        {"QB"},
	"RB":        {"RB"},
	"WR":        {"WR"},
	"TE":        {"TE"},
	"K":         {"K"},
	"DEF":       {"DEF"},
	"FLEX":      {"RB", "WR", "TE"},
	"SUPERFLEX": {"QB", "RB", "WR", "TE"},
	"BENCH":     {"QB", "RB", "WR", "TE", "K", "DEF"},
}

var defaultBaselineRanks = map[string]int{
	"QB": 11, "RB": 30, "WR": 30, "TE": 11, "K": 1, "DEF": 1,
}

type phase int

const (
	phaseUninitialized phase = iota
	phaseLoaded
	phaseActive
)

// Result reports the outcome of one applied event.
type Result struct {
	Seq     int64
	Warning string // roster overflow note, empty otherwise
}

// State is the draft session aggregate. It exclusively owns all player
// and team records plus the derived market aggregate.
type State struct {
	mu sync.RWMutex

	phase      phase
	appliedSeq int64

	players map[string]*model.PlayerState // canonical key -> state
	teams   map[string]*model.TeamState
	market  model.MarketAggregate

	resolver  *resolve.Resolver
	slotProto []model.Slot // template slots copied into each new team
	detached  bool         // clones never publish metrics for the live session

	leagueSize     int
	budget         int
	slotTemplate   []string
	eligibility    map[string][]string
	baselineRanks  map[string]int
	ranks          map[model.Position]int
	profile        valuation.Profile
	fuzzyThreshold float64
}

// New creates an empty State with configuration options applied.
func New(opts ...Option) *State {
	s := &State{
		players:       make(map[string]*model.PlayerState),
		teams:         make(map[string]*model.TeamState),
		leagueSize:    defaultLeagueSize,
		budget:        defaultBudget,
		slotTemplate:  defaultSlotTemplate,
		eligibility:   defaultEligibility,
		baselineRanks: defaultBaselineRanks,
		profile:       valuation.ProfileByName("balanced"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ranks = make(map[model.Position]int, len(s.baselineRanks))
	for raw, rank := range s.baselineRanks {
		if pos, err := model.ParsePosition(raw); err == nil {
			s.ranks[pos] = rank
		}
	}
	return s
}

// Load populates the canonical player pool, derives the initial
// valuations and builds the resolver index. Transitions to loaded.
func (s *State) Load(projections []model.PlayerProjection) error {
	if len(projections) == 0 {
		return fmt.Errorf("load: empty projection set")
	}

	proto, err := roster.BuildSlots(s.slotTemplate, s.eligibility)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.slotProto = proto
	s.players = make(map[string]*model.PlayerState, len(projections))
	candidates := make([]resolve.Candidate, 0, len(projections))
	for _, proj := range projections {
		key := resolve.Normalize(proj.Name)
		if key == "" {
			continue
		}
		s.players[key] = &model.PlayerState{Projection: proj}
		candidates = append(candidates, resolve.Candidate{Key: key, Name: proj.Name})
	}

	resolverOpts := []resolve.Option{resolve.WithDraftedLookup(s.isDrafted)}
	if s.fuzzyThreshold > 0 {
		resolverOpts = append(resolverOpts, resolve.WithThreshold(s.fuzzyThreshold))
	}
	s.resolver = resolve.NewResolver(resolverOpts...)
	s.resolver.BuildIndex(candidates)

	s.teams = make(map[string]*model.TeamState)
	s.market = model.MarketAggregate{ReplacementLevel: make(map[model.Position]float64)}
	s.appliedSeq = 0
	s.recompute(time.Time{})
	s.phase = phaseLoaded
	return nil
}

// isDrafted is the resolver's tie-break predicate.
func (s *State) isDrafted(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, ok := s.players[key]
	return ok && ps.Drafted
}

// Reset clears all draft progress while keeping the canonical pool.
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == phaseUninitialized {
		return ErrNotLoaded
	}
	s.resetLocked()
	return nil
}

func (s *State) resetLocked() {
	for _, ps := range s.players {
		ps.Drafted = false
		ps.Price = 0
		ps.Team = ""
		ps.SlotID = ""
		ps.VOM = 0
	}
	s.teams = make(map[string]*model.TeamState)
	s.market = model.MarketAggregate{ReplacementLevel: make(map[model.Position]float64)}
	s.appliedSeq = 0
	s.recompute(time.Time{})
	s.phase = phaseLoaded
}

// Resolve maps a raw external name to a canonical player key.
func (s *State) Resolve(raw string) (resolve.Match, bool) {
	s.mu.RLock()
	r := s.resolver
	s.mu.RUnlock()
	if r == nil {
		return resolve.Match{}, false
	}
	return r.Resolve(raw)
}

// Seq returns the sequence number of the last applied event.
func (s *State) Seq() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appliedSeq
}

func (s *State) recordApplied(kind model.EventKind) {
	if s.detached {
		return
	}
	metrics.RecordEventApplied(string(kind))
}

func (s *State) recordRejected(reason string) {
	if s.detached {
		return
	}
	metrics.RecordEventRejected(reason)
}

// Apply mutates the aggregate with one event. Rejected events leave the
// state unchanged and return a sentinel error; a no-op undo and a sale
// overflowing the roster are both valid outcomes, not errors.
func (s *State) Apply(event *model.DraftEvent) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == phaseUninitialized {
		return Result{}, ErrNotLoaded
	}
	if err := event.Validate(); err != nil {
		s.recordRejected("invalid")
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	var res Result
	var err error
	switch event.Kind {
	case model.EventSale:
		res, err = s.applySale(event)
	case model.EventUndo:
		res, err = s.applyUndo(event)
	case model.EventNomination:
		res, err = s.applyNomination(event)
	case model.EventBid:
		res, err = s.applyBid(event)
	case model.EventBudgetAdjust:
		res, err = s.applyBudgetAdjust(event)
	case model.EventReset:
		s.resetLocked()
	}
	if err != nil {
		return Result{}, err
	}

	if event.Kind != model.EventReset {
		s.phase = phaseActive
		if event.Seq > 0 {
			s.appliedSeq = event.Seq
		} else {
			s.appliedSeq++
		}
		res.Seq = s.appliedSeq
	}
	s.recordApplied(event.Kind)
	return res, nil
}

func (s *State) applySale(event *model.DraftEvent) (Result, error) {
	ps, ok := s.players[event.Player]
	if !ok {
		s.recordRejected("player_not_found")
		return Result{}, fmt.Errorf("%w: %q", ErrUnresolvedIdentity, event.Player)
	}
	if ps.Drafted {
		s.recordRejected("already_drafted")
		return Result{}, fmt.Errorf("%w: %s", ErrAlreadyDrafted, ps.Projection.Name)
	}

	team := s.ensureTeam(event.Team)
	if team.RemainingBudget < event.Amount {
		s.recordRejected("insufficient_budget")
		return Result{}, fmt.Errorf("%w: %s has $%d, sale price $%d",
			ErrInsufficientBudget, team.Name, team.RemainingBudget, event.Amount)
	}

	ps.Drafted = true
	ps.Price = event.Amount
	ps.Team = team.Name
	ps.VOM = ps.FMV - float64(event.Amount) // value captured at sale time
	team.RemainingBudget -= event.Amount

	var res Result
	acq := model.Acquisition{
		Player:   event.Player,
		Position: ps.Projection.Position,
		Price:    event.Amount,
	}
	if slotID, assigned := roster.Assign(ps.Projection.Position, team); assigned {
		for i := range team.Slots {
			if team.Slots[i].ID == slotID {
				team.Slots[i].Occupant = event.Player
				break
			}
		}
		ps.SlotID = slotID
		acq.SlotID = slotID
	} else {
		if !s.detached {
			metrics.RecordRosterOverflow()
		}
		res.Warning = fmt.Sprintf("roster overflow: no open slot on %s for %s (%s)",
			team.Name, ps.Projection.Name, ps.Projection.Position)
	}
	team.Acquired = append(team.Acquired, acq)

	if s.market.Nomination == event.Player {
		s.clearNomination()
	}
	s.recompute(event.TS, ps.Projection.Position)
	return res, nil
}

func (s *State) applyUndo(event *model.DraftEvent) (Result, error) {
	ps, ok := s.players[event.Player]
	if !ok || !ps.Drafted {
		// Undoing a sale that never happened is a no-op.
		return Result{}, nil
	}

	if team, exists := s.teams[ps.Team]; exists {
		team.RemainingBudget += ps.Price
		roster.Vacate(event.Player, team)
		for i := len(team.Acquired) - 1; i >= 0; i-- {
			if team.Acquired[i].Player == event.Player {
				team.Acquired = append(team.Acquired[:i], team.Acquired[i+1:]...)
				break
			}
		}
	}

	pos := ps.Projection.Position
	ps.Drafted = false
	ps.Price = 0
	ps.Team = ""
	ps.SlotID = ""
	ps.VOM = 0

	s.recompute(event.TS, pos)
	return Result{}, nil
}

func (s *State) applyNomination(event *model.DraftEvent) (Result, error) {
	if _, ok := s.players[event.Player]; !ok {
		s.recordRejected("player_not_found")
		return Result{}, fmt.Errorf("%w: %q", ErrUnresolvedIdentity, event.Player)
	}
	s.market.Nomination = event.Player
	s.market.NominatingTeam = event.Team
	s.market.CurrentBid = event.Amount
	s.market.HighBidder = ""
	return Result{}, nil
}

func (s *State) applyBid(event *model.DraftEvent) (Result, error) {
	if event.Player != "" && event.Player != s.market.Nomination {
		if _, ok := s.players[event.Player]; !ok {
			s.recordRejected("player_not_found")
			return Result{}, fmt.Errorf("%w: %q", ErrUnresolvedIdentity, event.Player)
		}
		s.market.Nomination = event.Player
	}
	s.market.CurrentBid = event.Amount
	s.market.HighBidder = event.Team
	return Result{}, nil
}

func (s *State) applyBudgetAdjust(event *model.DraftEvent) (Result, error) {
	team := s.ensureTeam(event.Team)
	team.RemainingBudget = event.Amount
	s.recompute(event.TS)
	return Result{}, nil
}

func (s *State) clearNomination() {
	s.market.Nomination = ""
	s.market.NominatingTeam = ""
	s.market.CurrentBid = 0
	s.market.HighBidder = ""
}

// ensureTeam returns the named team, creating it with the configured
// slot template and starting budget on first sight.
func (s *State) ensureTeam(name string) *model.TeamState {
	if team, ok := s.teams[name]; ok {
		return team
	}
	team := &model.TeamState{
		Name:            name,
		StartingBudget:  s.budget,
		RemainingBudget: s.budget,
		Slots:           copySlots(s.slotProto),
	}
	s.teams[name] = team
	return team
}

// recompute refreshes the market aggregate after a mutation. Replacement
// levels, VORP and VONA refresh only for the given positions; inflation
// and fair values refresh globally since every sale moves them.
func (s *State) recompute(ts time.Time, positions ...model.Position) {
	remainingValue := 0
	remainingCount := 0
	for _, ps := range s.players {
		if !ps.Drafted {
			remainingValue += ps.Projection.BaselineAAV
			remainingCount++
		}
	}

	remainingCash := 0
	for _, team := range s.teams {
		remainingCash += team.RemainingBudget
	}
	if untracked := s.leagueSize - len(s.teams); untracked > 0 {
		remainingCash += untracked * s.budget
	}

	s.market.RemainingValue = remainingValue
	s.market.RemainingCash = remainingCash
	s.market.Inflation = valuation.Inflation(remainingCash, remainingValue)
	if !ts.IsZero() {
		s.market.History = append(s.market.History, model.InflationPoint{
			UnixMillis: ts.UnixMilli(),
			Ratio:      s.market.Inflation,
		})
	}

	if len(positions) == 0 && s.market.ReplacementLevel != nil && len(s.market.ReplacementLevel) == 0 {
		// Initial load and reset refresh every position.
		seen := make(map[model.Position]bool)
		for _, ps := range s.players {
			if !seen[ps.Projection.Position] {
				seen[ps.Projection.Position] = true
				positions = append(positions, ps.Projection.Position)
			}
		}
	}
	for _, pos := range positions {
		s.refreshPosition(pos)
	}

	for _, ps := range s.players {
		if !ps.Drafted {
			ps.FMV = valuation.FMV(ps.Projection.BaselineAAV, s.market.Inflation)
		}
	}

	if !s.detached {
		metrics.UpdateInflationRatio(s.market.Inflation)
		metrics.UpdateRemainingPlayers(remainingCount)
		metrics.UpdateRemainingCash(remainingCash)
		metrics.UpdateRemainingValue(float64(remainingValue))
	}
}

// refreshPosition recomputes the replacement level, VORP and VONA for
// one position from its remaining players.
func (s *State) refreshPosition(pos model.Position) {
	remaining := make([]model.PlayerState, 0)
	for _, ps := range s.players {
		if !ps.Drafted && ps.Projection.Position == pos {
			remaining = append(remaining, *ps)
		}
	}
	if len(remaining) == 0 {
		return // keep the last known level; nothing left to value
	}

	levels := valuation.ReplacementLevels(remaining, s.ranks)
	s.market.ReplacementLevel[pos] = levels[pos]

	for _, ps := range s.players {
		if ps.Projection.Position != pos {
			continue
		}
		ps.VORP = valuation.VORP(ps.Projection, levels[pos])
		if ps.Drafted {
			ps.VONA = 0
			ps.VONANext = ""
		}
	}
	// VORPs moved, so rebuild the remaining slice before ranking VONA.
	remaining = remaining[:0]
	for _, ps := range s.players {
		if !ps.Drafted && ps.Projection.Position == pos {
			remaining = append(remaining, *ps)
		}
	}
	for _, ps := range s.players {
		if !ps.Drafted && ps.Projection.Position == pos {
			ps.VONA, ps.VONANext = valuation.VONA(*ps, remaining)
		}
	}
}

// Snapshot returns a consistent deep copy of the whole session.
func (s *State) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := model.Snapshot{
		Seq:     s.appliedSeq,
		Players: make(map[string]model.PlayerState, len(s.players)),
		Teams:   make(map[string]*model.TeamState, len(s.teams)),
		Market:  copyMarket(s.market),
	}
	for key, ps := range s.players {
		snap.Players[key] = *ps
	}
	for name, team := range s.teams {
		snap.Teams[name] = copyTeam(team)
	}
	return snap
}

// RemainingPlayers returns undrafted players sorted by VORP descending,
// optionally filtered by position ("" for all).
func (s *State) RemainingPlayers(pos model.Position) []model.PlayerState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.PlayerState
	for _, ps := range s.players {
		if ps.Drafted {
			continue
		}
		if pos != "" && ps.Projection.Position != pos {
			continue
		}
		out = append(out, *ps)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].VORP != out[j].VORP {
			return out[i].VORP > out[j].VORP
		}
		return out[i].Projection.Name < out[j].Projection.Name
	})
	return out
}

// Player returns a copy of one player's state by canonical key.
func (s *State) Player(key string) (model.PlayerState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, ok := s.players[key]
	if !ok {
		return model.PlayerState{}, false
	}
	return *ps, true
}

// Team returns a copy of one team's state.
func (s *State) Team(name string) (*model.TeamState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[name]
	if !ok {
		return nil, false
	}
	return copyTeam(team), true
}

// TeamOrTemplate returns the named team's copy, or a fresh team built
// from the template when the team has not appeared in any event yet.
func (s *State) TeamOrTemplate(name string) *model.TeamState {
	if team, ok := s.Team(name); ok {
		return team
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &model.TeamState{
		Name:            name,
		StartingBudget:  s.budget,
		RemainingBudget: s.budget,
		Slots:           copySlots(s.slotProto),
	}
}

// Clone deep-copies the aggregate for what-if exploration. The clone
// shares only the immutable resolver index with the live state, and its
// mutations never touch the live session's metrics.
func (s *State) Clone() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := &State{
		phase:          s.phase,
		appliedSeq:     s.appliedSeq,
		detached:       true,
		players:        make(map[string]*model.PlayerState, len(s.players)),
		teams:          make(map[string]*model.TeamState, len(s.teams)),
		market:         copyMarket(s.market),
		resolver:       s.resolver,
		slotProto:      copySlots(s.slotProto),
		leagueSize:     s.leagueSize,
		budget:         s.budget,
		slotTemplate:   s.slotTemplate,
		eligibility:    s.eligibility,
		baselineRanks:  s.baselineRanks,
		ranks:          s.ranks,
		profile:        s.profile,
		fuzzyThreshold: s.fuzzyThreshold,
	}
	for key, ps := range s.players {
		copied := *ps
		clone.players[key] = &copied
	}
	for name, team := range s.teams {
		clone.teams[name] = copyTeam(team)
	}
	return clone
}

func copySlots(slots []model.Slot) []model.Slot {
	out := make([]model.Slot, len(slots))
	copy(out, slots)
	return out
}

func copyTeam(team *model.TeamState) *model.TeamState {
	copied := *team
	copied.Slots = copySlots(team.Slots)
	copied.Acquired = append([]model.Acquisition(nil), team.Acquired...)
	return &copied
}

func copyMarket(m model.MarketAggregate) model.MarketAggregate {
	copied := m
	copied.ReplacementLevel = make(map[model.Position]float64, len(m.ReplacementLevel))
	for pos, level := range m.ReplacementLevel {
		copied.ReplacementLevel[pos] = level
	}
	copied.History = append([]model.InflationPoint(nil), m.History...)
	return copied
}

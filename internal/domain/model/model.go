// Package model contains domain models passed between layers.
package model

import "fmt"

// Position is a player's roster position, one of a fixed enum per sport.
type Position string

// Football positions.
const (
	QB  Position = "QB"
	RB  Position = "RB"
	WR  Position = "WR"
	TE  Position = "TE"
	K   Position = "K"
	DEF Position = "DEF"
)

// Basketball positions.
const (
	PG Position = "PG"
	SG Position = "SG"
	SF Position = "SF"
	PF Position = "PF"
	C  Position = "C"
)

var validPositions = map[Position]bool{
	QB: true, RB: true, WR: true, TE: true, K: true, DEF: true,
	PG: true, SG: true, SF: true, PF: true, C: true,
}

// ParsePosition validates a raw position string against the known enum.
func ParsePosition(s string) (Position, error) {
	p := Position(s)
	if !validPositions[p] {
		return "", fmt.Errorf("unknown position %q", s)
	}
	return p, nil
}

// PlayerProjection is the immutable reference data loaded for one player.
// Tier and Position never change after load.
type PlayerProjection struct {
	Name            string   // display name as loaded
	Position        Position // fixed enum
	ProjectedPoints float64  // season projection
	BaselineAAV     int      // pre-draft market value in whole dollars
	Tier            int      // coarse quality grouping, lower = better
}

// PlayerState is a player's projection plus live draft state and the
// derived valuation fields recomputed after every applied event.
type PlayerState struct {
	Projection PlayerProjection

	// Draft status. Exactly one of {undrafted, drafted with price+team} holds.
	Drafted bool
	Price   int    // sale price, valid only when Drafted
	Team    string // acquiring team, valid only when Drafted
	SlotID  string // roster slot on the acquiring team, "" when unassigned

	// Derived valuation, consistent with the current market snapshot.
	VORP     float64 // projection minus replacement level at position
	VONA     float64 // projection minus next-best remaining at position
	VONANext string  // display name of the next-best remaining player
	FMV      float64 // baseline AAV scaled by current inflation
	VOM      float64 // FMV minus sale price, set once sold
}

// Slot is one entry in a team's ordered roster template.
type Slot struct {
	ID       string     // unique within the team, e.g. "RB2", "FLEX1"
	BaseType string     // template base type, e.g. "RB", "FLEX", "BENCH"
	Eligible []Position // positions this slot accepts
	Occupant string     // canonical player key, "" when empty
}

// Acquisition records one completed purchase by a team.
type Acquisition struct {
	Player   string // canonical player key
	Position Position
	Price    int
	SlotID   string // "" when the purchase overflowed the roster
}

// TeamState tracks one team's budget and roster through the auction.
type TeamState struct {
	Name            string
	StartingBudget  int
	RemainingBudget int
	Slots           []Slot
	Acquired        []Acquisition
}

// OpenSlots returns the empty slots that accept the given position,
// in template order.
func (t *TeamState) OpenSlots(pos Position) []Slot {
	var open []Slot
	for _, s := range t.Slots {
		if s.Occupant != "" {
			continue
		}
		for _, e := range s.Eligible {
			if e == pos {
				open = append(open, s)
				break
			}
		}
	}
	return open
}

// EmptySlotCount returns the number of unoccupied slots.
func (t *TeamState) EmptySlotCount() int {
	n := 0
	for _, s := range t.Slots {
		if s.Occupant == "" {
			n++
		}
	}
	return n
}

// MaxBid is the budget minus $1 reserved per remaining empty slot
// beyond the current pick.
func (t *TeamState) MaxBid() int {
	empty := t.EmptySlotCount()
	if empty <= 1 {
		return t.RemainingBudget
	}
	return t.RemainingBudget - (empty - 1)
}

// InflationPoint is one sample of the inflation series kept for consumers.
type InflationPoint struct {
	UnixMillis int64
	Ratio      float64
}

// MarketAggregate is the derived market-wide state, fully recomputed after
// every applied event and never stored independently.
type MarketAggregate struct {
	ReplacementLevel map[Position]float64 // Nth-best remaining projection
	RemainingCash    int                  // aggregate remaining team budgets
	RemainingValue   int                  // aggregate baseline AAV of undrafted players
	Inflation        float64              // RemainingCash / RemainingValue
	History          []InflationPoint

	// Transient auction context.
	Nomination     string // canonical key of the nominated player, "" when idle
	NominatingTeam string
	CurrentBid     int
	HighBidder     string
}

// Snapshot is a consistent point-in-time view of the whole session,
// the sole channel through which external consumers observe the engine.
type Snapshot struct {
	Seq     int64 // sequence of the last applied event
	Players map[string]PlayerState
	Teams   map[string]*TeamState
	Market  MarketAggregate
}

// Package roster assigns acquired players to team roster slots.
//
// Priority order, first match wins: a dedicated slot for the player's
// position, then the narrowest eligible flexible slot, then bench. A team
// can legitimately run out of slots; that outcome is reported, not erred.
package roster

import (
	"fmt"

	model "github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
)

// BenchType is the template base type whose slots accept any position.
const BenchType = "BENCH"

// BuildSlots expands an ordered slot template into concrete team slots.
// Repeated base types are numbered in template order (RB1, RB2, ...).
// A base type missing from the eligibility map accepts only itself.
func BuildSlots(template []string, eligibility map[string][]string) ([]model.Slot, error) {
	counts := make(map[string]int, len(template))
	slots := make([]model.Slot, 0, len(template))

	for _, base := range template {
		positions, ok := eligibility[base]
		if !ok {
			p, err := model.ParsePosition(base)
			if err != nil {
				return nil, fmt.Errorf("slot type %q has no eligibility rule: %w", base, err)
			}
			positions = []string{string(p)}
		}
		eligible := make([]model.Position, 0, len(positions))
		for _, raw := range positions {
			p, err := model.ParsePosition(raw)
			if err != nil {
				return nil, fmt.Errorf("slot type %q: %w", base, err)
			}
			eligible = append(eligible, p)
		}

		counts[base]++
		slots = append(slots, model.Slot{
			ID:       fmt.Sprintf("%s%d", base, counts[base]),
			BaseType: base,
			Eligible: eligible,
		})
	}
	return slots, nil
}

// Assign selects the slot a player of the given position should fill on
// the team. Returns ("", false) when every eligible slot is occupied;
// the acquisition still stands and the caller surfaces the overflow.
//
// Deterministic: depends only on the team's current occupancy.
func Assign(pos model.Position, team *model.TeamState) (string, bool) {
	open := team.OpenSlots(pos)
	if len(open) == 0 {
		return "", false
	}

	// Priority 1: dedicated slot, eligibility exactly {pos}.
	for _, s := range open {
		if len(s.Eligible) == 1 && s.Eligible[0] == pos {
			return s.ID, true
		}
	}

	// Priority 2: narrowest flexible slot, to conserve broader
	// flexibility for later picks. Ties resolve in template order.
	var (
		bestID    string
		bestWidth int
	)
	for _, s := range open {
		if s.BaseType == BenchType {
			continue
		}
		if bestID == "" || len(s.Eligible) < bestWidth {
			bestID, bestWidth = s.ID, len(s.Eligible)
		}
	}
	if bestID != "" {
		return bestID, true
	}

	// Priority 3: bench.
	return open[0].ID, true
}

// Vacate clears the slot occupied by the given player key, if any.
// Returns the vacated slot id.
func Vacate(player string, team *model.TeamState) (string, bool) {
	for i := range team.Slots {
		if team.Slots[i].Occupant == player {
			id := team.Slots[i].ID
			team.Slots[i].Occupant = ""
			return id, true
		}
	}
	return "", false
}

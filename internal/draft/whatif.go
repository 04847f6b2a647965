package draft

import (
	"fmt"
	"sort"
	"time"

	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/valuation"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/metrics"
)

// Estimated discount off fair value a patient bidder pays for the
// remaining roster during simulation.
const whatIfCostFactor = 0.8

// WhatIf simulates buying a player at the given price for the named
// team, then greedily fills the rest of that team's roster by best
// (VORP x strategy) per estimated dollar. It runs entirely on an
// isolated clone and never touches the live aggregate.
func (s *State) WhatIf(playerKey string, price int, teamName string) (model.WhatIfResult, error) {
	metrics.RecordWhatIfRun()

	ps, ok := s.Player(playerKey)
	if !ok {
		return model.WhatIfResult{}, fmt.Errorf("%w: %q", ErrUnresolvedIdentity, playerKey)
	}
	if ps.Drafted {
		return model.WhatIfResult{}, fmt.Errorf("%w: %s", ErrAlreadyDrafted, ps.Projection.Name)
	}

	sim := s.Clone()
	if _, err := sim.Apply(&model.DraftEvent{
		TS:     time.Now().UTC(),
		Kind:   model.EventSale,
		Player: playerKey,
		Team:   teamName,
		Amount: price,
	}); err != nil {
		return model.WhatIfResult{}, err
	}

	team := sim.teams[teamName]
	result := model.WhatIfResult{
		Player:          ps.Projection.Name,
		Price:           price,
		RemainingBudget: team.RemainingBudget,
		RosterSize:      len(team.Slots),
	}

	budgetLeft := team.RemainingBudget
	for range team.Slots {
		if budgetLeft <= 0 {
			break
		}
		pick, cost, found := sim.bestValuePick(team, budgetLeft)
		if !found {
			break
		}

		best := sim.players[pick]
		result.OptimalPicks = append(result.OptimalPicks, model.WhatIfPick{
			Player:         best.Projection.Name,
			Position:       best.Projection.Position,
			EstimatedPrice: cost,
			VORP:           best.VORP,
		})

		if _, err := sim.Apply(&model.DraftEvent{
			TS:     time.Now().UTC(),
			Kind:   model.EventSale,
			Player: pick,
			Team:   teamName,
			Amount: cost,
		}); err != nil {
			break
		}
		budgetLeft -= cost
	}

	for _, acq := range team.Acquired {
		if acquired, exists := sim.players[acq.Player]; exists {
			result.ProjectedTotalPoints += acquired.Projection.ProjectedPoints
		}
	}
	result.RosterFilled = len(team.Acquired)
	return result, nil
}

// bestValuePick scans the remaining pool for the affordable player with
// the best value-per-dollar ratio that the team can still roster.
// Iteration is key-sorted so equal ratios resolve deterministically.
func (s *State) bestValuePick(team *model.TeamState, budgetLeft int) (string, int, bool) {
	keys := make([]string, 0, len(s.players))
	for key, ps := range s.players {
		if !ps.Drafted {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var (
		bestKey   string
		bestCost  int
		bestRatio = -1.0
	)
	for _, key := range keys {
		ps := s.players[key]
		if len(team.OpenSlots(ps.Projection.Position)) == 0 {
			continue
		}
		cost := int(ps.FMV * whatIfCostFactor)
		if cost < 1 {
			cost = 1
		}
		if cost > budgetLeft {
			continue
		}
		ratio := ps.VORP * valuation.StrategyMultiplier(s.profile, ps.Projection) / float64(cost)
		if ratio > bestRatio {
			bestRatio = ratio
			bestKey = key
			bestCost = cost
		}
	}
	if bestKey == "" {
		return "", 0, false
	}
	return bestKey, bestCost, true
}

package simdraft

import (
	"fmt"
	"math/rand"

	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
)

// Position mix of a synthetic pool, roughly a real auction board.
var positionShare = []struct {
	pos   model.Position
	share float64
	top   float64 // best projected points at the position
}{
	{model.QB, 0.15, 400},
	{model.RB, 0.30, 330},
	{model.WR, 0.30, 310},
	{model.TE, 0.13, 250},
	{model.K, 0.06, 160},
	{model.DEF, 0.06, 150},
}

// Synthetic name fragments; combined they give plausible unique names.
var (
	firstNames = []string{
		"Avery", "Blake", "Carter", "Dakota", "Emerson", "Finley", "Gray",
		"Harper", "Indiana", "Jules", "Kendall", "Lane", "Morgan", "Nico",
		"Oakley", "Parker", "Quinn", "Reese", "Sawyer", "Tatum",
	}
	lastNames = []string{
		"Abbott", "Barlow", "Calloway", "Dalton", "Ellison", "Fletcher",
		"Granger", "Holloway", "Irving", "Jennings", "Kessler", "Lockhart",
		"Mercer", "Nolan", "Overton", "Prescott", "Quimby", "Rutledge",
		"Sterling", "Thatcher", "Underhill", "Vance", "Whitaker", "York",
	}
)

// GeneratePool builds a deterministic synthetic projections pool from
// the run's random source. Points decay down the position board; AAV
// follows points with noise; tiers are rank buckets.
func GeneratePool(rng *rand.Rand, size int) []model.PlayerProjection {
	pool := make([]model.PlayerProjection, 0, size)
	used := make(map[string]struct{}, size)

	for _, ps := range positionShare {
		count := int(float64(size) * ps.share)
		if count < 1 {
			count = 1
		}
		for rank := 0; rank < count; rank++ {
			name := uniqueName(rng, used)

			// Exponential-ish decay keeps the top of the board scarce.
			decay := 1.0 - 0.75*float64(rank)/float64(count)
			points := ps.top*decay + rng.Float64()*8

			aav := int(points / 6.5 * (0.8 + rng.Float64()*0.4))
			if aav < 1 {
				aav = 1
			}

			tier := rank/5 + 1
			if tier > 6 {
				tier = 6
			}

			pool = append(pool, model.PlayerProjection{
				Name:            name,
				Position:        ps.pos,
				ProjectedPoints: points,
				BaselineAAV:     aav,
				Tier:            tier,
			})
		}
	}
	return pool
}

func uniqueName(rng *rand.Rand, used map[string]struct{}) string {
	for {
		name := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
		if _, dup := used[name]; !dup {
			used[name] = struct{}{}
			return name
		}
		// Collisions get a suffix rather than looping forever.
		name = fmt.Sprintf("%s %c.", name, 'A'+rng.Intn(26))
		if _, dup := used[name]; !dup {
			used[name] = struct{}{}
			return name
		}
	}
}

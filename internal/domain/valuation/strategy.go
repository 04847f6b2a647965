package valuation

import (
	model "github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
)

// Profile biases valuations toward a drafting style. A missing weight
// means 1.0, so the zero-bias profile is just empty maps.
type Profile struct {
	Name            string
	Label           string
	PositionWeights map[model.Position]float64
	TierWeights     map[int]float64
}

// Built-in strategy profiles, keyed by config name.
var profiles = map[string]Profile{
	"balanced": {
		Name:  "balanced",
		Label: "Balanced",
	},
	"studs_and_steals": {
		Name:        "studs_and_steals",
		Label:       "Studs & Steals",
		TierWeights: map[int]float64{1: 1.15, 2: 1.05, 3: 0.92, 4: 0.85, 5: 0.80},
	},
	"rb_heavy": {
		Name:  "rb_heavy",
		Label: "RB Heavy",
		PositionWeights: map[model.Position]float64{
			model.RB: 1.3, model.QB: 0.9, model.WR: 0.95, model.TE: 0.9,
		},
	},
	"wr_heavy": {
		Name:  "wr_heavy",
		Label: "WR Heavy",
		PositionWeights: map[model.Position]float64{
			model.WR: 1.3, model.QB: 0.9, model.RB: 0.95, model.TE: 0.9,
		},
	},
	"elite_te": {
		Name:  "elite_te",
		Label: "Elite TE",
		PositionWeights: map[model.Position]float64{
			model.TE: 1.35, model.QB: 0.95, model.RB: 0.95, model.WR: 0.95,
		},
		TierWeights: map[int]float64{1: 1.2, 2: 1.1},
	},
}

// ProfileByName returns the named profile, falling back to balanced for
// unknown names.
func ProfileByName(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	return profiles["balanced"]
}

// ProfileNames lists the available strategy names.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	return names
}

// StrategyMultiplier combines the profile's position and tier weights
// for one player. Unlisted positions and tiers weigh 1.0.
func StrategyMultiplier(p Profile, proj model.PlayerProjection) float64 {
	posW := 1.0
	if w, ok := p.PositionWeights[proj.Position]; ok {
		posW = w
	}
	tierW := 1.0
	if w, ok := p.TierWeights[proj.Tier]; ok {
		tierW = w
	}
	return posW * tierW
}

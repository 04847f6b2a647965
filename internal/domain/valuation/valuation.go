// Package valuation holds the pure-math core of the engine: replacement
// baselines, VORP, VONA, inflation, fair market value, the scarcity, need
// and strategy multipliers, and bid-advice classification. All functions
// are stateless and take explicit parameters.
package valuation

import (
	"fmt"
	"math"
	"sort"

	model "github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
)

// Default advice thresholds, overridable through Input.
const (
	DefaultOverpayTolerance = 0.15
	DefaultEnforceMarkup    = 0.10
	DefaultMinBidIncrement  = 1
)

// Scarcity multiplier tiers. A step applies once the drafted fraction of
// the player's position+tier group reaches its threshold.
const (
	scarcityHighPct = 0.85
	scarcityMidPct  = 0.70
	scarcityLowPct  = 0.50

	scarcityHigh = 1.30
	scarcityMid  = 1.15
	scarcityLow  = 1.05
)

// Need multiplier levels.
const (
	NeedNone     = 0.0 // no eligible open slot, cannot roster
	NeedFlexOnly = 0.5 // only flexible or bench slots remain
	NeedStarter  = 1.0 // dedicated starter slot open
	NeedLastSlot = 1.2 // last dedicated slot, urgency premium
)

// ReplacementLevels returns, per position, the projection of the Nth-best
// player among the given pool, N per position from baselineRank. Positions
// absent from baselineRank use rank 1. A rank past the end of the pool
// clamps to the worst player at the position.
func ReplacementLevels(pool []model.PlayerState, baselineRank map[model.Position]int) map[model.Position]float64 {
	byPos := make(map[model.Position][]float64)
	for _, ps := range pool {
		byPos[ps.Projection.Position] = append(byPos[ps.Projection.Position], ps.Projection.ProjectedPoints)
	}

	levels := make(map[model.Position]float64, len(byPos))
	for pos, points := range byPos {
		sort.Sort(sort.Reverse(sort.Float64Slice(points)))
		rank := baselineRank[pos]
		if rank < 1 {
			rank = 1
		}
		idx := rank - 1
		if idx > len(points)-1 {
			idx = len(points) - 1
		}
		levels[pos] = points[idx]
	}
	return levels
}

// VORP is the player's value over the replacement level at their position,
// floored at zero.
func VORP(proj model.PlayerProjection, replacement float64) float64 {
	return math.Max(0, proj.ProjectedPoints-replacement)
}

// VONA is the player's margin over the next-best undrafted player at the
// same position, with that player's name. When the player is the last one
// remaining at the position the margin falls back to their VORP and the
// name is empty.
func VONA(ps model.PlayerState, remaining []model.PlayerState) (float64, string) {
	same := make([]model.PlayerState, 0, len(remaining))
	for _, r := range remaining {
		if r.Drafted || r.Projection.Position != ps.Projection.Position {
			continue
		}
		same = append(same, r)
	}
	sort.SliceStable(same, func(i, j int) bool {
		if same[i].VORP != same[j].VORP {
			return same[i].VORP > same[j].VORP
		}
		return same[i].Projection.Name < same[j].Projection.Name
	})

	found := false
	for _, r := range same {
		if r.Projection.Name == ps.Projection.Name {
			found = true
			continue
		}
		if found {
			vona := ps.Projection.ProjectedPoints - r.Projection.ProjectedPoints
			return math.Max(0, vona), r.Projection.Name
		}
	}
	return math.Max(0, ps.VORP), ""
}

// Inflation is the ratio of remaining league cash to the remaining
// baseline value of the undrafted pool. An exhausted market reads 1.0.
func Inflation(remainingCash, remainingValue int) float64 {
	if remainingValue <= 0 {
		return 1.0
	}
	return float64(remainingCash) / float64(remainingValue)
}

// FMV is the player's baseline auction value scaled by live inflation.
func FMV(baselineAAV int, inflation float64) float64 {
	return float64(baselineAAV) * inflation
}

// Scarcity returns the premium for the player's position+tier group based
// on how much of the group has been drafted. Thresholds are inclusive, so
// a group sitting exactly on a boundary takes the higher step.
func Scarcity(proj model.PlayerProjection, pool []model.PlayerState) float64 {
	var total, drafted int
	for _, ps := range pool {
		if ps.Projection.Position != proj.Position || ps.Projection.Tier != proj.Tier {
			continue
		}
		total++
		if ps.Drafted {
			drafted++
		}
	}
	if total == 0 {
		return 1.0
	}

	pct := float64(drafted) / float64(total)
	switch {
	case pct >= scarcityHighPct:
		return scarcityHigh
	case pct >= scarcityMidPct:
		return scarcityMid
	case pct >= scarcityLowPct:
		return scarcityLow
	default:
		return 1.0
	}
}

// Need scores how badly the team can use a player at the position.
func Need(pos model.Position, team *model.TeamState) float64 {
	open := team.OpenSlots(pos)
	if len(open) == 0 {
		return NeedNone
	}

	dedicated := 0
	for _, s := range open {
		if len(s.Eligible) == 1 && s.Eligible[0] == pos {
			dedicated++
		}
	}
	switch {
	case dedicated == 1:
		return NeedLastSlot
	case dedicated > 1:
		return NeedStarter
	default:
		return NeedFlexOnly
	}
}

// AdjustedFMV is the decision value: fair value times every multiplier.
func AdjustedFMV(fmv, scarcity, need, strategy float64) float64 {
	return fmv * scarcity * need * strategy
}

// MarketFMV is the displayed market value. Roster need is personal to one
// team, so it never enters the market figure.
func MarketFMV(fmv, scarcity, strategy float64) float64 {
	return fmv * scarcity * strategy
}

// Input carries everything Advise needs. Pool is the full player pool,
// Team is the advised team. Zero thresholds take the package defaults.
type Input struct {
	Player     model.PlayerState
	CurrentBid int
	Team       *model.TeamState
	Market     model.MarketAggregate
	Pool       []model.PlayerState
	Profile    Profile

	OverpayTolerance float64
	EnforceMarkup    float64
	MinBidIncrement  int
}

func (in *Input) fillDefaults() {
	if in.OverpayTolerance <= 0 {
		in.OverpayTolerance = DefaultOverpayTolerance
	}
	if in.EnforceMarkup <= 0 {
		in.EnforceMarkup = DefaultEnforceMarkup
	}
	if in.MinBidIncrement <= 0 {
		in.MinBidIncrement = DefaultMinBidIncrement
	}
}

// Advise classifies the live bid on a player for one team.
//
//	PASS           no usable slot, non-positive VORP, or the bid exceeds
//	               adjusted value by more than the overpay tolerance
//	PRICE_ENFORCE  no starter need but the bid sits below market value;
//	               push the winner's price, capped at a bounded markup
//	BUY            otherwise, up to adjusted value within budget
//
// Money stays integral, multipliers stay unrounded; only the reasoning
// string rounds for display.
func Advise(in Input) model.Advice {
	in.fillDefaults()

	proj := in.Player.Projection
	vorp := in.Player.VORP
	vona, vonaNext := VONA(in.Player, in.Pool)
	scarcity := Scarcity(proj, in.Pool)
	need := Need(proj.Position, in.Team)
	strategy := StrategyMultiplier(in.Profile, proj)
	fmv := FMV(proj.BaselineAAV, in.Market.Inflation)
	adjusted := AdjustedFMV(fmv, scarcity, need, strategy)
	market := MarketFMV(fmv, scarcity, strategy)
	budgetMax := in.Team.MaxBid()
	bid := float64(in.CurrentBid)

	adv := model.Advice{
		AdjustedFMV: adjusted,
		MarketFMV:   market,
		Inflation:   in.Market.Inflation,
		Scarcity:    scarcity,
		Need:        need,
		Strategy:    strategy,
		VORP:        vorp,
		VONA:        vona,
		VONANext:    vonaNext,
	}

	switch {
	case need == NeedNone:
		adv.Action = model.ActionPass
		adv.Reasoning = fmt.Sprintf(
			"No open roster slot for %s. PASS, cannot roster this player.", proj.Position)

	case vorp <= 0:
		adv.Action = model.ActionPass
		adv.Reasoning = fmt.Sprintf(
			"No value over replacement (VORP %.1f). Not worth pursuing at any price.", vorp)

	case bid > adjusted*(1+in.OverpayTolerance):
		adv.Action = model.ActionPass
		overpayPct := 100.0
		if adjusted > 0 {
			overpayPct = (bid/adjusted - 1) * 100
		}
		adv.Reasoning = fmt.Sprintf(
			"Bid $%d exceeds adjusted value $%.1f by %.0f%%. Let someone else overpay.",
			in.CurrentBid, adjusted, overpayPct)

	case need == NeedFlexOnly && bid < market:
		adv.Action = model.ActionPriceEnforce
		adv.MaxBid = capBid(int(market*(1+in.EnforceMarkup)), budgetMax)
		adv.Reasoning = fmt.Sprintf(
			"%s starters are set and $%d is below market value $%.1f. "+
				"Push the price, but not past $%d.",
			proj.Position, in.CurrentBid, market, adv.MaxBid)

	default:
		adv.Action = model.ActionBuy
		maxBid := capBid(int(adjusted), budgetMax)
		if floor := in.CurrentBid + in.MinBidIncrement; maxBid < floor {
			maxBid = floor
		}
		adv.MaxBid = maxBid
		adv.Reasoning = fmt.Sprintf(
			"Adjusted value $%.1f (base $%.1f, scarcity x%.2f, need x%.1f, strategy x%.2f). "+
				"VORP %.1f. BUY up to $%d.",
			adjusted, fmv, scarcity, need, strategy, vorp, maxBid)
	}

	if adv.VONANext != "" {
		adv.Reasoning += fmt.Sprintf(" VONA %.1f pts over %s.", vona, vonaNext)
	} else if vona > 0 {
		adv.Reasoning += fmt.Sprintf(" VONA %.1f, last available %s.", vona, proj.Position)
	}
	return adv
}

func capBid(bid, budgetMax int) int {
	if bid > budgetMax {
		return budgetMax
	}
	if bid < 0 {
		return 0
	}
	return bid
}

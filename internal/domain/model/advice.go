package model

// Action is the engine's bid recommendation.
type Action string

// Recommended actions.
const (
	ActionBuy          Action = "BUY"
	ActionPass         Action = "PASS"
	ActionPriceEnforce Action = "PRICE_ENFORCE"
)

// Advice is the valuation engine's recommendation for the active nomination.
// Monetary fields are whole dollars; multiplier fields are unrounded.
type Advice struct {
	Action      Action
	MaxBid      int     // recommended ceiling for this player
	AdjustedFMV float64 // fair value x scarcity x need x strategy
	MarketFMV   float64 // fair value x scarcity x strategy (need omitted)
	Inflation   float64
	Scarcity    float64
	Need        float64
	Strategy    float64
	VORP        float64
	VONA        float64
	VONANext    string // next-best remaining player at the position
	Reasoning   string // human-readable explanation of the call
}

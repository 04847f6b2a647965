package model

// WhatIfPick is one player chosen by the greedy roster fill during a
// what-if simulation.
type WhatIfPick struct {
	Player         string
	Position       Position
	EstimatedPrice int
	VORP           float64
}

// WhatIfResult reports the projected outcome of a hypothetical purchase
// followed by an optimal fill of the remaining roster.
type WhatIfResult struct {
	Player               string
	Price                int
	RemainingBudget      int
	OptimalPicks         []WhatIfPick
	ProjectedTotalPoints float64
	RosterFilled         int
	RosterSize           int
}

package model

import (
	"fmt"
	"time"
)

// EventKind discriminates draft event records.
type EventKind string

// Event kinds persisted to the session log.
const (
	EventSale         EventKind = "sale"
	EventNomination   EventKind = "nomination"
	EventBid          EventKind = "bid"
	EventBudgetAdjust EventKind = "budget_adjust"
	EventUndo         EventKind = "undo"
	EventReset        EventKind = "reset"
)

var validKinds = map[EventKind]bool{
	EventSale: true, EventNomination: true, EventBid: true,
	EventBudgetAdjust: true, EventUndo: true, EventReset: true,
}

// DraftEvent is one immutable, strictly ordered state transition.
// Player identity is resolved before the event is persisted so replay
// never depends on the reference dataset.
type DraftEvent struct {
	Seq         int64     `json:"seq"`                    // assigned at append time
	ID          string    `json:"id,omitempty"`           // producer id for deduplication
	TS          time.Time `json:"ts"`                     // wall-clock at ingest
	Kind        EventKind `json:"kind"`                   //
	Player      string    `json:"player,omitempty"`       // canonical player key
	DisplayName string    `json:"display_name,omitempty"` // raw name as received
	Team        string    `json:"team,omitempty"`         //
	Amount      int       `json:"amount,omitempty"`       // dollars, kind-dependent
}

// Validate checks structural invariants of an event record. It is the
// single validity predicate shared by the event store's sequence scan
// and replay paths.
func (e DraftEvent) Validate() error {
	if !validKinds[e.Kind] {
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	switch e.Kind {
	case EventSale:
		if e.Player == "" {
			return fmt.Errorf("sale event missing player")
		}
		if e.Team == "" {
			return fmt.Errorf("sale event missing team")
		}
		if e.Amount <= 0 {
			return fmt.Errorf("sale event amount must be positive, got %d", e.Amount)
		}
	case EventUndo, EventNomination:
		if e.Player == "" {
			return fmt.Errorf("%s event missing player", e.Kind)
		}
	case EventBudgetAdjust:
		if e.Team == "" {
			return fmt.Errorf("budget_adjust event missing team")
		}
		if e.Amount < 0 {
			return fmt.Errorf("budget_adjust amount must not be negative, got %d", e.Amount)
		}
	case EventBid:
		if e.Amount <= 0 {
			return fmt.Errorf("bid event amount must be positive, got %d", e.Amount)
		}
	case EventReset:
		// No payload.
	}
	return nil
}

// Package eventlog persists draft events to an append-only JSONL file
// and replays them for crash recovery.
package eventlog

import (
	"context"

	model "github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
)

// Store is the durable, ordered draft event log.
type Store interface {
	// Append assigns the next sequence number, writes the event and
	// flushes it before returning. The returned sequence is only
	// meaningful when err is nil.
	Append(ctx context.Context, event *model.DraftEvent) (int64, error)

	// Replay reads every valid event from disk in sequence order.
	Replay(ctx context.Context) ([]model.DraftEvent, error)

	// Clear truncates the log and resets sequence numbering.
	Clear(ctx context.Context) error

	// NextSeq returns the sequence number the next append will take.
	NextSeq() int64

	// Close releases the underlying file handle.
	Close() error
}

package eventlog_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	eventlog "github.com/tonyntran/fantasy-auction-assistant/internal/adapters/eventlog"
	model "github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func saleEvent(player, team string, amount int) *model.DraftEvent {
	return &model.DraftEvent{
		TS:     time.Now().UTC(),
		Kind:   model.EventSale,
		Player: player,
		Team:   team,
		Amount: amount,
	}
}

func TestOpenAndAppend(t *testing.T) {
	Convey("Given a log path with no existing file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "events.jsonl")

		store, err := eventlog.Open(path)
		So(err, ShouldBeNil)
		defer store.Close()

		Convey("Then the log starts empty", func() {
			So(store.NextSeq(), ShouldEqual, 1)
			events, err := store.Replay(ctx)
			So(err, ShouldBeNil)
			So(events, ShouldBeEmpty)
		})

		Convey("When appending events", func() {
			seq1, err1 := store.Append(ctx, saleEvent("bijan robinson", "Team 1", 55))
			seq2, err2 := store.Append(ctx, saleEvent("jamarr chase", "Team 2", 48))

			Convey("Then sequence numbers are strictly increasing with no gaps", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(seq1, ShouldEqual, 1)
				So(seq2, ShouldEqual, 2)
				So(store.NextSeq(), ShouldEqual, 3)
			})

			Convey("Then replay returns the events in order", func() {
				events, err := store.Replay(ctx)
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 2)
				So(events[0].Seq, ShouldEqual, 1)
				So(events[0].Player, ShouldEqual, "bijan robinson")
				So(events[1].Seq, ShouldEqual, 2)
			})
		})

		Convey("When appending a structurally invalid event", func() {
			_, err := store.Append(ctx, &model.DraftEvent{Kind: model.EventSale})

			Convey("Then the append fails and the sequence does not advance", func() {
				So(err, ShouldNotBeNil)
				So(store.NextSeq(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given an empty path", t, func() {
		_, err := eventlog.Open("")
		So(err, ShouldEqual, eventlog.ErrInvalidPath)
	})
}

func TestSequenceResumption(t *testing.T) {
	Convey("Given a log with prior events", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "events.jsonl")

		store, err := eventlog.Open(path)
		So(err, ShouldBeNil)
		for i := 0; i < 3; i++ {
			_, err := store.Append(ctx, saleEvent("player", "Team 1", 10+i))
			So(err, ShouldBeNil)
		}
		So(store.Close(), ShouldBeNil)

		Convey("When reopening the log", func() {
			reopened, err := eventlog.Open(path)
			So(err, ShouldBeNil)
			defer reopened.Close()

			Convey("Then numbering resumes past the existing events", func() {
				So(reopened.NextSeq(), ShouldEqual, 4)
				seq, err := reopened.Append(ctx, saleEvent("another", "Team 2", 7))
				So(err, ShouldBeNil)
				So(seq, ShouldEqual, 4)
			})

			Convey("Then the open scan and replay agree on the valid count", func() {
				events, err := reopened.Replay(ctx)
				So(err, ShouldBeNil)
				So(int64(len(events)), ShouldEqual, reopened.NextSeq()-1)
			})
		})
	})
}

func TestCorruptLines(t *testing.T) {
	Convey("Given a log file containing corrupt lines between valid ones", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "events.jsonl")

		store, err := eventlog.Open(path)
		So(err, ShouldBeNil)
		_, err = store.Append(ctx, saleEvent("bijan robinson", "Team 1", 55))
		So(err, ShouldBeNil)
		So(store.Close(), ShouldBeNil)

		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		So(err, ShouldBeNil)
		_, err = f.WriteString("{not json at all\n" +
			`{"seq":99,"ts":"2026-08-29T12:00:00Z","kind":"sale","player":"x"}` + "\n" + // sale missing team
			strings.Repeat("x", 80*1024) + "\n") // junk far beyond any scanner token limit
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		Convey("When reopening and replaying", func() {
			reopened, err := eventlog.Open(path)
			So(err, ShouldBeNil)
			defer reopened.Close()

			events, err := reopened.Replay(ctx)
			So(err, ShouldBeNil)

			Convey("Then both paths skip the same corrupt lines", func() {
				So(events, ShouldHaveLength, 1)
				So(reopened.NextSeq(), ShouldEqual, 2)
			})

			Convey("Then appends continue from the valid count", func() {
				seq, err := reopened.Append(ctx, saleEvent("jamarr chase", "Team 2", 48))
				So(err, ShouldBeNil)
				So(seq, ShouldEqual, 2)
			})
		})
	})
}

func TestClearAndClose(t *testing.T) {
	Convey("Given a log with events", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "events.jsonl")

		store, err := eventlog.Open(path, eventlog.WithFsync(true))
		So(err, ShouldBeNil)
		_, err = store.Append(ctx, saleEvent("bijan robinson", "Team 1", 55))
		So(err, ShouldBeNil)

		Convey("When clearing the log", func() {
			So(store.Clear(ctx), ShouldBeNil)

			Convey("Then sequence numbering restarts", func() {
				So(store.NextSeq(), ShouldEqual, 1)
				events, err := store.Replay(ctx)
				So(err, ShouldBeNil)
				So(events, ShouldBeEmpty)
			})

			Convey("Then the log accepts new events", func() {
				seq, err := store.Append(ctx, saleEvent("jamarr chase", "Team 2", 48))
				So(err, ShouldBeNil)
				So(seq, ShouldEqual, 1)
			})
		})

		Convey("When the log is closed", func() {
			So(store.Close(), ShouldBeNil)

			Convey("Then appends are refused", func() {
				_, err := store.Append(ctx, saleEvent("jamarr chase", "Team 2", 48))
				So(err, ShouldEqual, eventlog.ErrClosed)
			})

			Convey("Then closing again is harmless", func() {
				So(store.Close(), ShouldBeNil)
			})
		})
	})
}

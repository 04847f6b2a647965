package app_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tonyntran/fantasy-auction-assistant/internal/app"
	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
	"github.com/tonyntran/fantasy-auction-assistant/internal/draft"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func testPool() []model.PlayerProjection {
	return []model.PlayerProjection{
		{Name: "Alpha Back", Position: model.RB, ProjectedPoints: 300, BaselineAAV: 60, Tier: 1},
		{Name: "Bravo Back", Position: model.RB, ProjectedPoints: 260, BaselineAAV: 45, Tier: 1},
		{Name: "Charlie Back", Position: model.RB, ProjectedPoints: 220, BaselineAAV: 30, Tier: 2},
		{Name: "Delta Receiver", Position: model.WR, ProjectedPoints: 280, BaselineAAV: 50, Tier: 1},
		{Name: "Echo Receiver", Position: model.WR, ProjectedPoints: 240, BaselineAAV: 35, Tier: 2},
		{Name: "Foxtrot Receiver", Position: model.WR, ProjectedPoints: 200, BaselineAAV: 20, Tier: 3},
	}
}

func testState() *draft.State {
	s := draft.New(
		draft.WithLeagueSize(8),
		draft.WithBudget(200),
		draft.WithSlotTemplate(
			[]string{"RB", "WR", "FLEX"},
			map[string][]string{"RB": {"RB"}, "WR": {"WR"}, "FLEX": {"RB", "WR"}},
		),
		draft.WithBaselineRanks(map[string]int{"RB": 2, "WR": 2}),
	)
	So(s.Load(testPool()), ShouldBeNil)
	return s
}

// waitApplied polls until the aggregate has applied the expected number
// of events or the deadline passes.
func waitApplied(svc *app.Service, seq int64) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if svc.Snapshot().Seq >= seq && svc.QueueDepth() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service without a draft state", t, func() {
		svc := app.New()

		Convey("When starting it", func() {
			err := svc.Start(context.Background())
			So(err, ShouldEqual, app.ErrNoState)
		})
	})

	Convey("Given a configured service", t, func() {
		svc := app.New(
			app.WithState(testState()),
			app.WithQueueSize(64),
			app.WithDedupeSize(128),
			app.WithTeamAliases([]string{"My Team", "Renamed Squad"}),
		)
		ctx := context.Background()

		Convey("When started twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then a second stop is harmless", func() {
				svc.Stop()
			})
		})
	})
}

func TestServiceCommands(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc := app.New(
			app.WithState(testState()),
			app.WithTeamAliases([]string{"My Team", "Renamed Squad"}),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When selling a player with a noisy name", func() {
			So(svc.Sell(ctx, "  ALPHA back ", "Rivals", 42), ShouldBeNil)
			waitApplied(svc, 1)

			Convey("Then the sale lands under the canonical key", func() {
				snap := svc.Snapshot()
				So(snap.Seq, ShouldEqual, 1)
				ps := snap.Players["alpha back"]
				So(ps.Drafted, ShouldBeTrue)
				So(ps.Price, ShouldEqual, 42)
				So(snap.Teams["Rivals"].RemainingBudget, ShouldEqual, 158)
			})
		})

		Convey("When selling to a team alias", func() {
			So(svc.Sell(ctx, "Bravo Back", "Renamed Squad", 20), ShouldBeNil)
			waitApplied(svc, 1)

			Convey("Then the purchase folds onto the primary name", func() {
				snap := svc.Snapshot()
				So(snap.Teams, ShouldContainKey, "My Team")
				So(snap.Teams, ShouldNotContainKey, "Renamed Squad")
			})
		})

		Convey("When selling an unknown player", func() {
			err := svc.Sell(ctx, "Zebulon Quickfeet", "Rivals", 10)
			So(err, ShouldWrap, app.ErrUnknownPlayer)
		})

		Convey("When a command builds an invalid event", func() {
			err := svc.Sell(ctx, "Alpha Back", "Rivals", 0)
			So(err, ShouldWrap, app.ErrInvalidCommand)
		})

		Convey("When undoing a sale", func() {
			So(svc.Sell(ctx, "Alpha Back", "Rivals", 42), ShouldBeNil)
			waitApplied(svc, 1)
			So(svc.Undo(ctx, "Alpha Back"), ShouldBeNil)
			waitApplied(svc, 2)

			Convey("Then the player is back in the pool", func() {
				snap := svc.Snapshot()
				So(snap.Players["alpha back"].Drafted, ShouldBeFalse)
				So(snap.Teams["Rivals"].RemainingBudget, ShouldEqual, 200)
			})
		})

		Convey("When nominating and bidding", func() {
			So(svc.Nominate(ctx, "Delta Receiver", "Rivals", 5), ShouldBeNil)
			So(svc.Bid(ctx, "My Team", 11), ShouldBeNil)
			waitApplied(svc, 2)

			Convey("Then the market tracks the auction block", func() {
				market := svc.Snapshot().Market
				So(market.Nomination, ShouldEqual, "delta receiver")
				So(market.CurrentBid, ShouldEqual, 11)
				So(market.HighBidder, ShouldEqual, "My Team")
			})
		})

		Convey("When adjusting a team budget", func() {
			So(svc.AdjustBudget(ctx, "Rivals", 120), ShouldBeNil)
			waitApplied(svc, 1)
			So(svc.Snapshot().Teams["Rivals"].RemainingBudget, ShouldEqual, 120)
		})

		Convey("When resetting the draft", func() {
			So(svc.Sell(ctx, "Alpha Back", "Rivals", 42), ShouldBeNil)
			waitApplied(svc, 1)
			So(svc.Reset(ctx), ShouldBeNil)

			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				if !svc.Snapshot().Players["alpha back"].Drafted {
					break
				}
				time.Sleep(5 * time.Millisecond)
			}

			Convey("Then progress is gone but the pool remains", func() {
				snap := svc.Snapshot()
				So(snap.Seq, ShouldEqual, 0)
				So(snap.Players, ShouldHaveLength, 6)
				So(snap.Players["alpha back"].Drafted, ShouldBeFalse)
				So(snap.Teams, ShouldBeEmpty)
			})
		})
	})
}

func TestServiceQueries(t *testing.T) {
	Convey("Given a running service with one sale", t, func() {
		svc := app.New(app.WithState(testState()))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		So(svc.Sell(ctx, "Alpha Back", "Rivals", 50), ShouldBeNil)
		waitApplied(svc, 1)

		Convey("When listing remaining running backs", func() {
			remaining := svc.RemainingPlayers(model.RB)
			So(remaining, ShouldHaveLength, 2)
			So(remaining[0].Projection.Name, ShouldEqual, "Bravo Back")
		})

		Convey("When asking for advice on a remaining player", func() {
			advice, err := svc.Advise(ctx, "Delta Receiver", 10)

			Convey("Then the call carries the valuation breakdown", func() {
				So(err, ShouldBeNil)
				So(advice.Action, ShouldEqual, model.ActionBuy)
				So(advice.MaxBid, ShouldBeGreaterThanOrEqualTo, 11)
				So(advice.VORP, ShouldEqual, 40) // 280 - 240 replacement
				So(advice.Reasoning, ShouldNotBeEmpty)
			})
		})

		Convey("When asking for advice on an unknown player", func() {
			_, err := svc.Advise(ctx, "Zebulon Quickfeet", 10)
			So(err, ShouldWrap, app.ErrUnknownPlayer)
		})

		Convey("When running a what-if simulation", func() {
			result, err := svc.WhatIf(ctx, "Delta Receiver", 40)

			Convey("Then the simulation leaves live state untouched", func() {
				So(err, ShouldBeNil)
				So(result.Player, ShouldEqual, "Delta Receiver")
				So(result.RemainingBudget, ShouldEqual, 160)
				So(svc.Snapshot().Players["delta receiver"].Drafted, ShouldBeFalse)
			})
		})
	})
}

func TestServiceCommandRejections(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc := app.New(app.WithState(testState()))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the same sale is submitted twice", func() {
			So(svc.Sell(ctx, "Alpha Back", "Rivals", 42), ShouldBeNil)
			waitApplied(svc, 1)
			err := svc.Sell(ctx, "Alpha Back", "Rivals", 42)

			Convey("Then the caller sees the rejection, not a log line", func() {
				So(err, ShouldWrap, draft.ErrAlreadyDrafted)
				So(err.Error(), ShouldContainSubstring, "Alpha Back")
			})

			Convey("And the player is only charged once", func() {
				snap := svc.Snapshot()
				So(snap.Teams["Rivals"].RemainingBudget, ShouldEqual, 158)
				So(snap.Teams["Rivals"].Acquired, ShouldHaveLength, 1)
			})
		})

		Convey("When a sale exceeds the team's remaining budget", func() {
			So(svc.Sell(ctx, "Alpha Back", "Rivals", 190), ShouldBeNil)
			waitApplied(svc, 1)
			err := svc.Sell(ctx, "Bravo Back", "Rivals", 20)

			Convey("Then the caller gets the budget reason", func() {
				So(err, ShouldWrap, draft.ErrInsufficientBudget)
				So(err.Error(), ShouldContainSubstring, "$10")
				So(svc.Snapshot().Players["bravo back"].Drafted, ShouldBeFalse)
			})
		})

		Convey("When nominating a player who already sold", func() {
			So(svc.Sell(ctx, "Alpha Back", "Rivals", 42), ShouldBeNil)
			waitApplied(svc, 1)
			err := svc.Nominate(ctx, "Alpha Back", "My Team", 1)

			Convey("Then the nomination is rejected up front", func() {
				So(err, ShouldWrap, draft.ErrAlreadyDrafted)
				So(svc.Snapshot().Market.Nomination, ShouldBeEmpty)
			})
		})
	})
}

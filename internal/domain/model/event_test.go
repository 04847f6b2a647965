package model_test

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	model "github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
)

func TestDraftEventValidate(t *testing.T) {
	convey.Convey("Given draft event records", t, func() {
		convey.Convey("When validating a well-formed sale", func() {
			e := model.DraftEvent{
				Seq:    1,
				TS:     time.Now(),
				Kind:   model.EventSale,
				Player: "bijan robinson",
				Team:   "Team 4",
				Amount: 55,
			}

			convey.Convey("Then it should pass validation", func() {
				convey.So(e.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When validating a sale without a player", func() {
			e := model.DraftEvent{Kind: model.EventSale, Team: "Team 4", Amount: 55}

			convey.Convey("Then validation should fail", func() {
				convey.So(e.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When validating a sale with a non-positive amount", func() {
			e := model.DraftEvent{Kind: model.EventSale, Player: "p", Team: "t", Amount: 0}

			convey.Convey("Then validation should fail", func() {
				convey.So(e.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When validating an unknown kind", func() {
			e := model.DraftEvent{Kind: model.EventKind("bogus")}

			convey.Convey("Then validation should fail", func() {
				convey.So(e.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When validating an undo without a player", func() {
			e := model.DraftEvent{Kind: model.EventUndo}

			convey.Convey("Then validation should fail", func() {
				convey.So(e.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When validating a reset with no payload", func() {
			e := model.DraftEvent{Kind: model.EventReset}

			convey.Convey("Then it should pass validation", func() {
				convey.So(e.Validate(), convey.ShouldBeNil)
			})
		})
	})
}

func TestTeamState(t *testing.T) {
	convey.Convey("Given a team with a partially filled roster", t, func() {
		team := &model.TeamState{
			Name:            "Team 1",
			StartingBudget:  200,
			RemainingBudget: 140,
			Slots: []model.Slot{
				{ID: "QB1", BaseType: "QB", Eligible: []model.Position{model.QB}, Occupant: "josh allen"},
				{ID: "RB1", BaseType: "RB", Eligible: []model.Position{model.RB}},
				{ID: "FLEX1", BaseType: "FLEX", Eligible: []model.Position{model.RB, model.WR, model.TE}},
				{ID: "BENCH1", BaseType: "BENCH", Eligible: []model.Position{model.QB, model.RB, model.WR, model.TE, model.K, model.DEF}},
			},
		}

		convey.Convey("When listing open slots for RB", func() {
			open := team.OpenSlots(model.RB)

			convey.Convey("Then occupied and ineligible slots are excluded", func() {
				convey.So(len(open), convey.ShouldEqual, 3)
				convey.So(open[0].ID, convey.ShouldEqual, "RB1")
			})
		})

		convey.Convey("When computing the max bid", func() {
			convey.Convey("Then $1 is reserved per empty slot beyond this pick", func() {
				// 3 empty slots -> reserve $2
				convey.So(team.MaxBid(), convey.ShouldEqual, 138)
			})
		})

		convey.Convey("When only one empty slot remains", func() {
			team.Slots[1].Occupant = "saquon barkley"
			team.Slots[2].Occupant = "puka nacua"

			convey.Convey("Then the full remaining budget is biddable", func() {
				convey.So(team.MaxBid(), convey.ShouldEqual, 140)
			})
		})
	})
}

func TestParsePosition(t *testing.T) {
	convey.Convey("Given raw position strings", t, func() {
		convey.Convey("When parsing valid positions", func() {
			for _, s := range []string{"QB", "RB", "WR", "TE", "K", "DEF", "PG", "C"} {
				p, err := model.ParsePosition(s)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(p), convey.ShouldEqual, s)
			}
		})

		convey.Convey("When parsing an unknown position", func() {
			_, err := model.ParsePosition("GOALIE")

			convey.Convey("Then it should be rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

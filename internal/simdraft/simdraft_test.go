package simdraft_test

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tonyntran/fantasy-auction-assistant/internal/simdraft"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestGeneratePool(t *testing.T) {
	Convey("Given a seeded random source", t, func() {
		rng := rand.New(rand.NewSource(7))

		Convey("When generating a pool", func() {
			pool := simdraft.GeneratePool(rng, 120)

			Convey("Then every player is well-formed and unique", func() {
				So(len(pool), ShouldBeGreaterThanOrEqualTo, 110)
				names := make(map[string]struct{}, len(pool))
				for _, p := range pool {
					So(p.Name, ShouldNotBeEmpty)
					So(p.ProjectedPoints, ShouldBeGreaterThan, 0)
					So(p.BaselineAAV, ShouldBeGreaterThanOrEqualTo, 1)
					So(p.Tier, ShouldBeBetweenOrEqual, 1, 6)
					_, dup := names[p.Name]
					So(dup, ShouldBeFalse)
					names[p.Name] = struct{}{}
				}
			})
		})

		Convey("When generating twice from the same seed", func() {
			a := simdraft.GeneratePool(rand.New(rand.NewSource(7)), 120)
			b := simdraft.GeneratePool(rand.New(rand.NewSource(7)), 120)

			Convey("Then the pools are identical", func() {
				So(b, ShouldResemble, a)
			})
		})
	})
}

func TestRunSimulatedAuction(t *testing.T) {
	Convey("Given a small configured run", t, func() {
		cfg := &simdraft.Config{
			Seed:     42,
			Teams:    6,
			Budget:   200,
			PoolSize: 90,
			UndoRate: 0.05,
			Timeout:  time.Minute,
		}

		Convey("When the auction runs in memory", func() {
			stats, err := simdraft.Run(context.Background(), cfg)

			Convey("Then it settles and verifies", func() {
				So(err, ShouldBeNil)
				So(stats.Sales, ShouldBeGreaterThan, 0)
				So(stats.Nominations, ShouldEqual, stats.Sales)
				So(stats.TotalSpent, ShouldBeLessThanOrEqualTo, cfg.Teams*cfg.Budget)
			})
		})

		Convey("When the auction persists to an event log", func() {
			cfg.EventLogPath = filepath.Join(t.TempDir(), "sim.jsonl")
			stats, err := simdraft.Run(context.Background(), cfg)

			Convey("Then the replay verification passes too", func() {
				So(err, ShouldBeNil)
				So(stats.Sales, ShouldBeGreaterThan, 0)
			})
		})
	})
}

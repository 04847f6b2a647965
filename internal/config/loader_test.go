package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/tonyntran/fantasy-auction-assistant/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LeagueSize, convey.ShouldEqual, 10)
				convey.So(cfg.Budget, convey.ShouldEqual, 200)
				convey.So(cfg.EventLogPath, convey.ShouldEqual, "data/event_log.jsonl")
				convey.So(cfg.Strategy, convey.ShouldEqual, "balanced")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("AUCTION_LEAGUE_SIZE", "12")
			_ = os.Setenv("AUCTION_BUDGET", "300")
			_ = os.Setenv("AUCTION_MY_TEAM_NAME", "tonytran")
			_ = os.Setenv("AUCTION_STRATEGY", "rb_heavy")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LeagueSize, convey.ShouldEqual, 12)
				convey.So(cfg.Budget, convey.ShouldEqual, 300)
				convey.So(cfg.MyTeamName, convey.ShouldEqual, "tonytran")
				convey.So(cfg.Strategy, convey.ShouldEqual, "rb_heavy")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
league_size: 14
budget: 260
event_log_path: "/tmp/draft.jsonl"
roster_slots: "QB,RB,RB,WR,FLEX,BENCH"
baseline_ranks:
  QB: 12
  RB: 28
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("AUCTION_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LeagueSize, convey.ShouldEqual, 14)
				convey.So(cfg.Budget, convey.ShouldEqual, 260)
				convey.So(cfg.EventLogPath, convey.ShouldEqual, "/tmp/draft.jsonl")
				convey.So(cfg.SlotTemplate(), convey.ShouldResemble, []string{"QB", "RB", "RB", "WR", "FLEX", "BENCH"})
				convey.So(cfg.BaselineRanks["QB"], convey.ShouldEqual, 12)
				convey.So(cfg.BaselineRanks["RB"], convey.ShouldEqual, 28)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
league_size: 14
budget: 260
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("AUCTION_CONFIG", tmpFile)
			_ = os.Setenv("AUCTION_BUDGET", "180") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LeagueSize, convey.ShouldEqual, 14) // From file
				convey.So(cfg.Budget, convey.ShouldEqual, 180)    // Overridden by env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("AUCTION_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("AUCTION_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an invalid league size", func() {
			_ = os.Setenv("AUCTION_LEAGUE_SIZE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "league_size must be positive")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an out-of-range fuzzy threshold", func() {
			_ = os.Setenv("AUCTION_FUZZY_THRESHOLD", "1.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "fuzzy_threshold")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
my_team_name: "tonytran"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("AUCTION_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.MyTeamName, convey.ShouldEqual, "tonytran") // From file
				convey.So(cfg.LeagueSize, convey.ShouldEqual, 10)         // From defaults
				convey.So(cfg.Budget, convey.ShouldEqual, 200)            // From defaults
			})
		})
	})
}

// clearConfigEnvVars removes every AUCTION_ variable a test may have set.
func clearConfigEnvVars() {
	vars := []string{
		"AUCTION_CONFIG",
		"AUCTION_LOG_LEVEL",
		"AUCTION_PROJECTIONS_PATH",
		"AUCTION_EVENT_LOG_PATH",
		"AUCTION_LEAGUE_SIZE",
		"AUCTION_BUDGET",
		"AUCTION_MY_TEAM_NAME",
		"AUCTION_ROSTER_SLOTS",
		"AUCTION_STRATEGY",
		"AUCTION_QUEUE_SIZE",
		"AUCTION_DEDUPE_SIZE",
		"AUCTION_FUZZY_THRESHOLD",
		"AUCTION_MIN_BID_INCREMENT",
		"AUCTION_OVERPAY_TOLERANCE",
		"AUCTION_ENFORCE_MARKUP",
	}
	for _, v := range vars {
		_ = os.Unsetenv(v)
	}
}

// createTempConfigFile writes content to a temp YAML file and returns its path.
func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "auction-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	_ = f.Close()
	return f.Name()
}

package draft

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/resolve"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/logger"
)

// Projection CSV column headers. Order in the file does not matter.
const (
	colPlayerName      = "PlayerName"
	colPosition        = "Position"
	colProjectedPoints = "ProjectedPoints"
	colBaselineAAV     = "BaselineAAV"
	colTier            = "Tier"
)

// LoadProjectionsCSV reads a projections dataset. The file must carry a
// header row with PlayerName, Position, ProjectedPoints, BaselineAAV and
// Tier columns. Malformed rows and duplicate players are skipped with a
// warning rather than failing the whole load.
func LoadProjectionsCSV(path string) ([]model.PlayerProjection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open projections: %w", err)
	}
	defer f.Close()

	return parseProjections(f, path)
}

func parseProjections(r io.Reader, source string) ([]model.PlayerProjection, error) {
	ctx := context.Background()
	log := logger.Get()
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read projections header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colPlayerName, colPosition, colProjectedPoints, colBaselineAAV, colTier} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("projections file %s missing column %q", source, required)
		}
	}

	var (
		out     []model.PlayerProjection
		seen    = make(map[string]struct{})
		line    = 1
		skipped int
	)
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn(ctx, "skipping malformed projections row",
				logger.String("source", source),
				logger.Int("line", line),
				logger.Error(err))
			skipped++
			continue
		}

		proj, err := parseRow(record, cols)
		if err != nil {
			log.Warn(ctx, "skipping invalid projections row",
				logger.String("source", source),
				logger.Int("line", line),
				logger.Error(err))
			skipped++
			continue
		}

		key := resolve.Normalize(proj.Name)
		if _, dup := seen[key]; dup {
			log.Warn(ctx, "skipping duplicate player in projections",
				logger.String("source", source),
				logger.Int("line", line),
				logger.String("player", proj.Name))
			skipped++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, proj)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("projections file %s has no usable rows", source)
	}
	if skipped > 0 {
		log.Warn(ctx, "projections loaded with skipped rows",
			logger.String("source", source),
			logger.Int("loaded", len(out)),
			logger.Int("skipped", skipped))
	}
	return out, nil
}

func parseRow(record []string, cols map[string]int) (model.PlayerProjection, error) {
	field := func(name string) string {
		idx := cols[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	name := field(colPlayerName)
	if name == "" {
		return model.PlayerProjection{}, fmt.Errorf("empty player name")
	}

	pos, err := model.ParsePosition(strings.ToUpper(field(colPosition)))
	if err != nil {
		return model.PlayerProjection{}, err
	}

	points, err := strconv.ParseFloat(field(colProjectedPoints), 64)
	if err != nil {
		return model.PlayerProjection{}, fmt.Errorf("projected points: %w", err)
	}

	// AAV columns from merged sources may carry decimals.
	aav, err := strconv.ParseFloat(field(colBaselineAAV), 64)
	if err != nil {
		return model.PlayerProjection{}, fmt.Errorf("baseline AAV: %w", err)
	}
	if aav < 0 {
		return model.PlayerProjection{}, fmt.Errorf("negative baseline AAV %.1f", aav)
	}

	tier, err := strconv.Atoi(field(colTier))
	if err != nil {
		return model.PlayerProjection{}, fmt.Errorf("tier: %w", err)
	}
	if tier < 1 {
		return model.PlayerProjection{}, fmt.Errorf("tier must be positive, got %d", tier)
	}

	return model.PlayerProjection{
		Name:            name,
		Position:        pos,
		ProjectedPoints: points,
		BaselineAAV:     int(math.Round(aav)),
		Tier:            tier,
	}, nil
}

package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/piwi3910/wifiplan/internal/geometry"
	"github.com/piwi3910/wifiplan/internal/importer"
	"github.com/piwi3910/wifiplan/internal/model"
	"github.com/piwi3910/wifiplan/internal/plan"
)

// planOptions describes the floor plan a command works on.
type planOptions struct {
	Path     string   // Wall file (CSV, XLSX or DXF)
	Scale    float64  // DXF world units per drawing unit
	Width    float64  // 0 derives the width from the walls or the config
	Height   float64  // 0 derives the height from the walls or the config
	AP       string   // "x,y"
	Boosters []string // "x,y" each
	Rooms    []string // "x,y,w,h[,kind]" each
}

// buildPlan creates a floor plan from the options. Import warnings are
// logged; import errors fail the build.
func buildPlan(opts planOptions, cfg model.AppConfig, logger *zap.Logger) (*plan.FloorPlan, error) {
	var walls []model.Wall
	if opts.Path != "" {
		res := importer.Import(opts.Path, opts.Scale)
		for _, w := range res.Warnings {
			logger.Warn("import warning", zap.String("file", opts.Path), zap.String("detail", w))
		}
		if len(res.Errors) > 0 {
			return nil, errors.Errorf("cannot import %s: %s", opts.Path, strings.Join(res.Errors, "; "))
		}
		walls = res.Walls
		logger.Info("walls imported", zap.String("file", opts.Path), zap.Int("walls", len(walls)))
	}

	var rooms []model.Rect
	var roomKinds []model.WallKind
	for _, spec := range opts.Rooms {
		rect, kind, err := parseRoom(spec)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, rect)
		roomKinds = append(roomKinds, kind)
	}

	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		w, h := extent(walls, rooms)
		if width <= 0 {
			width = w
		}
		if height <= 0 {
			height = h
		}
	}
	if width <= 0 {
		width = cfg.DefaultWidth
	}
	if height <= 0 {
		height = cfg.DefaultHeight
	}

	fp := plan.New(width, height, plan.WithLogger(logger), plan.WithMaxHistory(cfg.MaxHistory))
	if len(walls) > 0 {
		fp.AddWalls(walls)
	}
	for i, rect := range rooms {
		fp.AddRoom(rect, roomKinds[i])
	}
	if opts.AP != "" {
		p, err := parsePoint(opts.AP)
		if err != nil {
			return nil, errors.Wrap(err, "invalid --ap")
		}
		fp.SetAccessPoint(p.X, p.Y)
	}
	for _, spec := range opts.Boosters {
		p, err := parsePoint(spec)
		if err != nil {
			return nil, errors.Wrap(err, "invalid --booster")
		}
		fp.AddBooster(p.X, p.Y)
	}
	return fp, nil
}

// extent returns the far corner of the walls and rooms, so a plan loaded
// from a file is exactly as large as its drawing.
func extent(walls []model.Wall, rooms []model.Rect) (float64, float64) {
	var pts []model.Point
	for _, w := range walls {
		pts = append(pts, w.Start, w.End)
	}
	for _, r := range rooms {
		pts = append(pts, model.Point{X: r.X + r.W, Y: r.Y + r.H})
	}
	if len(pts) == 0 {
		return 0, 0
	}
	b := geometry.Bounds(pts...)
	return b.Max[0], b.Max[1]
}

// parsePoint parses "x,y".
func parsePoint(s string) (model.Point, error) {
	vals, err := parseFloats(s, 2, 2)
	if err != nil {
		return model.Point{}, err
	}
	return model.Point{X: vals[0], Y: vals[1]}, nil
}

// parseRoom parses "x,y,w,h" with an optional trailing wall kind.
func parseRoom(s string) (model.Rect, model.WallKind, error) {
	parts := strings.Split(s, ",")
	kind := model.WallStandard
	if len(parts) == 5 {
		k, err := model.ParseWallKind(parts[4])
		if err != nil {
			return model.Rect{}, "", errors.Wrapf(err, "invalid room %q", s)
		}
		kind = k
		parts = parts[:4]
	}
	vals, err := parseFloats(strings.Join(parts, ","), 4, 4)
	if err != nil {
		return model.Rect{}, "", errors.Wrapf(err, "invalid room %q", s)
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return model.Rect{}, "", errors.Errorf("invalid room %q: size must be positive", s)
	}
	return model.Rect{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}, kind, nil
}

func parseFloats(s string, min, max int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) < min || len(parts) > max {
		return nil, errors.Errorf("expected %d comma separated numbers, got %q", min, s)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Errorf("%q is not a number", strings.TrimSpace(p))
		}
		vals[i] = v
	}
	return vals, nil
}

// settingsOverrides holds the command line values that replace config defaults.
type settingsOverrides struct {
	TxPowerDbm *float64
	Band       string
	Algorithm  string
}

// resolveSettings applies config defaults and then any overrides.
func resolveSettings(cfg model.AppConfig, o settingsOverrides) (model.Settings, error) {
	s := model.DefaultSettings()
	cfg.ApplyToSettings(&s)
	if o.TxPowerDbm != nil {
		s.TxPowerDbm = *o.TxPowerDbm
	}
	if o.Band != "" {
		band, err := model.ParseBand(o.Band)
		if err != nil {
			return model.Settings{}, errors.Wrap(err, "invalid --freq")
		}
		s.Band = band
	}
	if o.Algorithm != "" {
		switch a := model.Algorithm(strings.ToLower(o.Algorithm)); a {
		case model.AlgorithmGrid, model.AlgorithmGenetic:
			s.Algorithm = a
		default:
			return model.Settings{}, errors.Errorf("invalid --algorithm %q: use grid or genetic", o.Algorithm)
		}
	}
	return s, nil
}

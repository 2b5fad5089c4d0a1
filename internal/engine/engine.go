// Package engine samples the signal model over a floor plan: it builds the
// coverage grid with its summary stats and searches for the access point
// position that maximises usable signal.
package engine

import (
	"math"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/piwi3910/wifiplan/internal/model"
)

// Sampling constants in world units.
const (
	Resolution       = 10.0 // Coverage grid cell size
	SearchResolution = 40.0 // Cell size used to score a candidate position
	SearchStep       = 40.0 // Spacing between search candidates
	YieldEvery       = 20   // Candidates scored between two yields
)

// Candidate score contributions per sampled cell.
const (
	scoreExcellent = 10.0
	scoreFair      = 5.0
	scorePoor      = -5.0
)

// Plan is the read side of a floor plan the engine samples.
type Plan interface {
	Width() float64
	Height() float64
	Walls() []model.Wall
	AccessPoint() (model.Point, bool)
	Boosters() []model.Booster
	Revision() uint64
}

// Stats summarises a coverage grid. CoveragePct and DeadPct always sum to 100.
type Stats struct {
	CoveragePct int `json:"coverage_pct"`
	DeadPct     int `json:"dead_pct"`
}

// Coverage is a row-major grid of RSSI values in dBm. Cell (r, c) covers
// [c*Resolution, (c+1)*Resolution) x [r*Resolution, (r+1)*Resolution).
type Coverage struct {
	Grid       [][]float64 `json:"grid"`
	Stats      Stats       `json:"stats"`
	Resolution float64     `json:"resolution"`
	Rows       int         `json:"rows"`
	Cols       int         `json:"cols"`
}

// CellCenter returns the world position sampled for cell (row, col).
func (c Coverage) CellCenter(row, col int) model.Point {
	return model.Point{
		X: (float64(col) + 0.5) * c.Resolution,
		Y: (float64(row) + 0.5) * c.Resolution,
	}
}

// MeanRSSI returns the average RSSI over all cells, or NoSignalDbm for an
// empty grid.
func (c Coverage) MeanRSSI() float64 {
	var sum float64
	n := 0
	for _, row := range c.Grid {
		for _, v := range row {
			sum += v
			n++
		}
	}
	if n == 0 {
		return model.NoSignalDbm
	}
	return sum / float64(n)
}

// QualityCounts returns the number of cells in each quality bucket.
func (c Coverage) QualityCounts() map[model.Quality]int {
	counts := map[model.Quality]int{
		model.QualityExcellent: 0,
		model.QualityFair:      0,
		model.QualityPoor:      0,
	}
	for _, row := range c.Grid {
		for _, v := range row {
			counts[model.ClassifyRSSI(v)]++
		}
	}
	return counts
}

// Engine computes coverage and placement searches over one plan.
// It is not safe for concurrent use.
type Engine struct {
	plan       Plan
	propagator Propagator
	logger     *zap.Logger
	yield      func()
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPropagator replaces the DirectPath propagation model.
func WithPropagator(p Propagator) Option {
	return func(e *Engine) {
		if p != nil {
			e.propagator = p
		}
	}
}

// WithYield sets the function a search calls to hand control back to the
// host between batches. The default is runtime.Gosched.
func WithYield(fn func()) Option {
	return func(e *Engine) {
		if fn != nil {
			e.yield = fn
		}
	}
}

// New creates an engine reading from plan.
func New(plan Plan, opts ...Option) *Engine {
	e := &Engine{
		plan:       plan,
		propagator: DirectPath{},
		logger:     zap.NewNop(),
		yield:      runtime.Gosched,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plan returns the plan the engine reads from.
func (e *Engine) Plan() Plan { return e.plan }

// ComputeCoverage samples the signal at the centre of every Resolution-sized
// cell of the plan. Without an access point the grid is all NoSignalDbm and
// the stats are {0, 100}.
func (e *Engine) ComputeCoverage(txPowerDbm float64, band model.Band) Coverage {
	start := time.Now()
	rows := cellCount(e.plan.Height(), Resolution)
	cols := cellCount(e.plan.Width(), Resolution)

	cov := Coverage{
		Grid:       make([][]float64, rows),
		Resolution: Resolution,
		Rows:       rows,
		Cols:       cols,
	}

	ap, ok := e.plan.AccessPoint()
	if !ok {
		for r := range cov.Grid {
			row := make([]float64, cols)
			for c := range row {
				row[c] = model.NoSignalDbm
			}
			cov.Grid[r] = row
		}
		cov.Stats = Stats{CoveragePct: 0, DeadPct: 100}
		CoverageComputations.WithLabelValues(band.String(), "absent").Inc()
		return cov
	}

	s := newSampler(e.plan, e.propagator)
	tx := Transmitter{Position: ap, PowerDbm: txPowerDbm, Band: band}
	covered := 0
	for r := 0; r < rows; r++ {
		row := make([]float64, cols)
		for c := 0; c < cols; c++ {
			rssi := s.rssi(tx, cov.CellCenter(r, c))
			row[c] = rssi
			if model.Usable(rssi) {
				covered++
			}
		}
		cov.Grid[r] = row
	}
	cov.Stats = computeStats(covered, rows*cols)

	elapsed := time.Since(start)
	CoverageComputations.WithLabelValues(band.String(), "present").Inc()
	CoverageDuration.Observe(elapsed.Seconds())
	CoveragePercent.Set(float64(cov.Stats.CoveragePct))
	e.logger.Debug("coverage computed",
		zap.Int("rows", rows),
		zap.Int("cols", cols),
		zap.Int("coverage_pct", cov.Stats.CoveragePct),
		zap.Int("dead_pct", cov.Stats.DeadPct),
		zap.Duration("elapsed", elapsed))
	return cov
}

// EvaluatePosition scores pos as an access point location. Every cell of the
// SearchResolution grid, sampled at its origin, adds +10 above -70 dBm,
// +5 above -80 dBm and -5 otherwise. Scores only compare candidates of the
// same plan and parameters.
func (e *Engine) EvaluatePosition(pos model.Point, txPowerDbm float64, band model.Band) float64 {
	s := newSampler(e.plan, e.propagator)
	return s.score(Transmitter{Position: pos, PowerDbm: txPowerDbm, Band: band})
}

func (s *sampler) score(tx Transmitter) float64 {
	rows := cellCount(s.height, SearchResolution)
	cols := cellCount(s.width, SearchResolution)

	var score float64
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			target := model.Point{X: float64(c) * SearchResolution, Y: float64(r) * SearchResolution}
			score += cellScore(s.rssi(tx, target))
		}
	}
	return score
}

func cellScore(rssi float64) float64 {
	switch model.ClassifyRSSI(rssi) {
	case model.QualityExcellent:
		return scoreExcellent
	case model.QualityFair:
		return scoreFair
	default:
		return scorePoor
	}
}

// computeStats rounds the covered share once and derives the dead share
// from it so the two always sum to 100.
func computeStats(covered, total int) Stats {
	if total <= 0 {
		return Stats{CoveragePct: 0, DeadPct: 100}
	}
	pct := int(math.Round(100 * float64(covered) / float64(total)))
	return Stats{CoveragePct: pct, DeadPct: 100 - pct}
}

func cellCount(extent, size float64) int {
	if extent <= 0 {
		return 0
	}
	return int(math.Ceil(extent / size))
}

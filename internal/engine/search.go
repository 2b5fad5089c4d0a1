package engine

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/piwi3910/wifiplan/internal/model"
)

// ProgressFunc receives the percentage of candidates scored so far and the
// best position found so far (nil before the first candidate).
type ProgressFunc func(pct float64, best *model.Point)

// Search is a resumable exhaustive scan over the candidate grid. Each Step
// scores a batch of candidates against the plan as it is at that moment;
// between steps the candidates, scores and best position can be inspected.
type Search struct {
	engine     *Engine
	txPowerDbm float64
	band       model.Band

	candidates []model.Point
	scores     []float64
	best       int
	revision   uint64
}

// NewSearch enumerates the candidates for the current plan bounds:
// x = 20, 60, 100, ... below the width, and for each x the same run of y
// values below the height.
func (e *Engine) NewSearch(txPowerDbm float64, band model.Band) *Search {
	return &Search{
		engine:     e,
		txPowerDbm: txPowerDbm,
		band:       band,
		candidates: candidateGrid(e.plan.Width(), e.plan.Height()),
		best:       -1,
		revision:   e.plan.Revision(),
	}
}

func candidateGrid(width, height float64) []model.Point {
	var pts []model.Point
	for x := SearchStep / 2; x < width; x += SearchStep {
		for y := SearchStep / 2; y < height; y += SearchStep {
			pts = append(pts, model.Point{X: x, Y: y})
		}
	}
	return pts
}

// Step scores up to n further candidates and reports whether any remain.
// A candidate replaces the best only with a strictly greater score, so ties
// keep the earlier candidate.
func (s *Search) Step(n int) bool {
	if s.Done() || n <= 0 {
		return !s.Done()
	}

	p := s.engine.plan
	if rev := p.Revision(); rev != s.revision {
		s.engine.logger.Warn("plan changed during search",
			zap.Uint64("from_revision", s.revision),
			zap.Uint64("to_revision", rev),
			zap.Int("scored", len(s.scores)))
		s.revision = rev
	}

	smp := newSampler(p, s.engine.propagator)
	first := len(s.scores)
	end := first + n
	if end > len(s.candidates) {
		end = len(s.candidates)
	}
	for i := first; i < end; i++ {
		score := smp.score(Transmitter{Position: s.candidates[i], PowerDbm: s.txPowerDbm, Band: s.band})
		s.scores = append(s.scores, score)
		if s.best < 0 || score > s.scores[s.best] {
			s.best = i
		}
	}
	CandidatesEvaluated.WithLabelValues(string(model.AlgorithmGrid)).Add(float64(end - first))
	return !s.Done()
}

// Done reports whether every candidate has been scored.
func (s *Search) Done() bool {
	return len(s.scores) >= len(s.candidates)
}

// Progress returns the percentage of candidates scored. A search without
// candidates is complete.
func (s *Search) Progress() float64 {
	if len(s.candidates) == 0 {
		return 100
	}
	return 100 * float64(len(s.scores)) / float64(len(s.candidates))
}

// Best returns the best candidate so far and its score.
func (s *Search) Best() (model.Point, float64, bool) {
	if s.best < 0 {
		return model.Point{}, 0, false
	}
	return s.candidates[s.best], s.scores[s.best], true
}

// Candidates returns a copy of the candidate positions in scan order.
func (s *Search) Candidates() []model.Point {
	out := make([]model.Point, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Scores returns a copy of the scores computed so far, aligned with
// Candidates.
func (s *Search) Scores() []float64 {
	out := make([]float64, len(s.scores))
	copy(out, s.scores)
	return out
}

func (s *Search) bestPtr() *model.Point {
	if s.best < 0 {
		return nil
	}
	p := s.candidates[s.best]
	return &p
}

// FindOptimalPosition runs a Search to completion in batches of YieldEvery
// candidates. After each batch it reports progress and yields to the host.
// It returns false when the plan has no candidates. A done ctx stops the
// scan at the next batch boundary with ctx's error.
func (e *Engine) FindOptimalPosition(ctx context.Context, txPowerDbm float64, band model.Band, onProgress ProgressFunc) (model.Point, bool, error) {
	algo := string(model.AlgorithmGrid)
	start := time.Now()
	s := e.NewSearch(txPowerDbm, band)
	if len(s.candidates) == 0 {
		SearchesTotal.WithLabelValues(algo, outcomeEmpty).Inc()
		e.logger.Info("placement search skipped, plan has no area")
		return model.Point{}, false, nil
	}

	e.logger.Info("placement search started",
		zap.String("algorithm", algo),
		zap.Int("candidates", len(s.candidates)),
		zap.Stringer("band", band),
		zap.Float64("tx_power_dbm", txPowerDbm))

	for !s.Done() {
		if err := ctx.Err(); err != nil {
			SearchesTotal.WithLabelValues(algo, outcomeAbandoned).Inc()
			e.logger.Info("placement search abandoned", zap.Float64("progress", s.Progress()))
			return model.Point{}, false, errors.Wrap(err, "placement search abandoned")
		}
		s.Step(YieldEvery)
		if onProgress != nil {
			onProgress(s.Progress(), s.bestPtr())
		}
		e.logger.Debug("placement search batch", zap.Float64("progress", s.Progress()))
		e.yield()
	}

	best, score, _ := s.Best()
	SearchesTotal.WithLabelValues(algo, outcomeFound).Inc()
	SearchDuration.WithLabelValues(algo).Observe(time.Since(start).Seconds())
	e.logger.Info("placement search finished",
		zap.Float64("x", best.X),
		zap.Float64("y", best.Y),
		zap.Float64("score", score),
		zap.Duration("elapsed", time.Since(start)))
	return best, true, nil
}

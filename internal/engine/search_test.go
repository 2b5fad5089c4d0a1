package engine

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/piwi3910/wifiplan/internal/model"
	"github.com/piwi3910/wifiplan/internal/plan"
)

func TestCandidateGrid_Order(t *testing.T) {
	assert.Equal(t, []model.Point{pt(20, 20), pt(60, 20)}, candidateGrid(100, 50))
	assert.Equal(t,
		[]model.Point{pt(20, 20), pt(20, 60), pt(60, 20), pt(60, 60)},
		candidateGrid(90, 90),
		"x outer, y inner")
	assert.Empty(t, candidateGrid(0, 0))
	assert.Empty(t, candidateGrid(100, 20), "y = 20 is not below a height of 20")
}

func TestFindOptimalPosition_ZeroArea(t *testing.T) {
	for _, size := range [][2]float64{{0, 0}, {300, 0}, {0, 300}} {
		fp := plan.New(size[0], size[1])
		calls := 0
		_, ok, err := New(fp).FindOptimalPosition(context.Background(), 20, model.Band24GHz,
			func(float64, *model.Point) { calls++ })

		require.NoError(t, err)
		assert.False(t, ok, "size %v", size)
		assert.Zero(t, calls)
	}
}

func TestFindOptimalPosition_GlobalMaxOverCandidates(t *testing.T) {
	fp := plan.New(400, 300)
	fp.AddRoom(model.Rect{X: 40, Y: 40, W: 150, H: 120}, model.WallThick)
	fp.AddWall(pt(250, 0), pt(250, 300), model.WallStandard)
	fp.AddWall(pt(0, 220), pt(250, 220), model.WallWindow)
	e := New(fp)

	best, ok, err := e.FindOptimalPosition(context.Background(), -10, model.Band5GHz, nil)
	require.NoError(t, err)
	require.True(t, ok)

	candidates := e.NewSearch(-10, model.Band5GHz).Candidates()
	require.Len(t, candidates, 70)

	bestIdx := 0
	bestScore := e.EvaluatePosition(candidates[0], -10, model.Band5GHz)
	minScore := bestScore
	for i, c := range candidates[1:] {
		score := e.EvaluatePosition(c, -10, model.Band5GHz)
		if score > bestScore {
			bestIdx, bestScore = i+1, score
		}
		if score < minScore {
			minScore = score
		}
	}
	require.Less(t, minScore, bestScore, "scores must vary for the test to mean anything")

	assert.Equal(t, candidates[bestIdx], best)
	for _, c := range candidates {
		assert.GreaterOrEqual(t, e.EvaluatePosition(best, -10, model.Band5GHz),
			e.EvaluatePosition(c, -10, model.Band5GHz))
	}
}

func TestFindOptimalPosition_TieKeepsEarliest(t *testing.T) {
	fp := plan.New(80, 80)
	s := New(fp).NewSearch(20, model.Band24GHz)
	for s.Step(YieldEvery) {
	}

	for _, score := range s.Scores() {
		require.Equal(t, 40.0, score, "every candidate reaches every sample")
	}
	best, _, ok := s.Best()
	require.True(t, ok)
	assert.Equal(t, pt(20, 20), best)
}

func TestFindOptimalPosition_YieldsEveryBatch(t *testing.T) {
	fp := plan.New(400, 400) // 10 x 10 candidates
	yields := 0
	e := New(fp, WithYield(func() { yields++ }))

	var progress []float64
	var lastBest *model.Point
	best, ok, err := e.FindOptimalPosition(context.Background(), 20, model.Band24GHz,
		func(pct float64, b *model.Point) {
			progress = append(progress, pct)
			lastBest = b
		})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{20, 40, 60, 80, 100}, progress)
	assert.Equal(t, 5, yields)
	require.NotNil(t, lastBest)
	assert.Equal(t, best, *lastBest)
}

func TestFindOptimalPosition_CancelledBeforeStart(t *testing.T) {
	fp := plan.New(400, 400)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := New(fp).FindOptimalPosition(ctx, 20, model.Band24GHz, nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindOptimalPosition_AbandonedMidScan(t *testing.T) {
	fp := plan.New(400, 400)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	_, ok, err := New(fp).FindOptimalPosition(ctx, 20, model.Band24GHz, func(float64, *model.Point) {
		calls++
		cancel()
	})

	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestFindOptimalPosition_WarnsOnConcurrentEdit(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	fp := plan.New(400, 400)
	e := New(fp, WithLogger(zap.New(core)))

	edited := false
	_, ok, err := e.FindOptimalPosition(context.Background(), 20, model.Band24GHz, func(float64, *model.Point) {
		if !edited {
			fp.AddWall(pt(200, 0), pt(200, 400), model.WallThick)
			edited = true
		}
	})

	require.NoError(t, err)
	require.True(t, ok)
	warnings := logs.FilterMessage("plan changed during search").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, zap.WarnLevel, warnings[0].Level)
	assert.Equal(t, 1, logs.FilterMessage("placement search finished").Len())
}

func TestSearch_Step(t *testing.T) {
	fp := plan.New(90, 90)
	s := New(fp).NewSearch(20, model.Band24GHz)

	_, _, ok := s.Best()
	assert.False(t, ok)
	assert.Equal(t, 0.0, s.Progress())

	assert.True(t, s.Step(3))
	assert.Equal(t, 75.0, s.Progress())
	assert.Len(t, s.Scores(), 3)
	assert.False(t, s.Done())

	assert.False(t, s.Step(3))
	assert.True(t, s.Done())
	assert.Equal(t, 100.0, s.Progress())
	assert.Len(t, s.Scores(), 4)

	assert.False(t, s.Step(3), "stepping a finished search is a no-op")
	assert.Len(t, s.Scores(), 4)
}

func TestSearch_CountsEvaluatedCandidates(t *testing.T) {
	counter := CandidatesEvaluated.WithLabelValues(string(model.AlgorithmGrid))
	before := testutil.ToFloat64(counter)

	s := New(plan.New(90, 90)).NewSearch(20, model.Band24GHz)
	for s.Step(YieldEvery) {
	}

	assert.Equal(t, before+4, testutil.ToFloat64(counter))
}

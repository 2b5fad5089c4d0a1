package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/wifiplan/internal/model"
)

func pt(x, y float64) model.Point { return model.Point{X: x, Y: y} }

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(pt(0, 0), pt(3, 4)), 1e-12)
	assert.Equal(t, 0.0, Distance(pt(7, 7), pt(7, 7)))
}

func TestSegmentIntersection_Crossing(t *testing.T) {
	p, ok := SegmentIntersection(pt(0, 0), pt(10, 0), pt(5, -5), pt(5, 5))
	require.True(t, ok)
	assert.InDelta(t, 5.0, p.X, 1e-12)
	assert.InDelta(t, 0.0, p.Y, 1e-12)
}

func TestSegmentIntersection_Parallel(t *testing.T) {
	_, ok := SegmentIntersection(pt(0, 0), pt(10, 0), pt(0, 5), pt(10, 5))
	assert.False(t, ok)
}

func TestSegmentIntersection_CollinearOverlapIgnored(t *testing.T) {
	_, ok := SegmentIntersection(pt(0, 0), pt(10, 0), pt(5, 0), pt(15, 0))
	assert.False(t, ok, "collinear overlap is not reported")
}

func TestSegmentIntersection_EndpointTouch(t *testing.T) {
	// q1 lies exactly on p's interior: gamma == 0
	_, ok := SegmentIntersection(pt(0, 0), pt(10, 0), pt(5, 0), pt(5, 5))
	assert.False(t, ok)

	// Shared endpoint
	_, ok = SegmentIntersection(pt(0, 0), pt(10, 0), pt(10, 0), pt(10, 10))
	assert.False(t, ok)
}

func TestSegmentIntersection_Disjoint(t *testing.T) {
	_, ok := SegmentIntersection(pt(0, 0), pt(10, 0), pt(20, -5), pt(20, 5))
	assert.False(t, ok)
}

func TestSegmentIntersection_StrictlyInside(t *testing.T) {
	p, ok := SegmentIntersection(pt(0, 0), pt(10, 10), pt(0, 10), pt(10, 0))
	require.True(t, ok)
	assert.InDelta(t, 5.0, p.X, 1e-12)
	assert.InDelta(t, 5.0, p.Y, 1e-12)
}

func TestDistanceToSegment(t *testing.T) {
	a, b := pt(0, 0), pt(100, 0)
	assert.InDelta(t, 0.0, DistanceToSegment(pt(50, 0), a, b), 1e-12, "point on segment")
	assert.InDelta(t, 10.0, DistanceToSegment(pt(50, 10), a, b), 1e-12, "perpendicular")
	assert.InDelta(t, 5.0, DistanceToSegment(pt(-3, 4), a, b), 1e-12, "clamped to start")
	assert.InDelta(t, 5.0, DistanceToSegment(pt(103, -4), a, b), 1e-12, "clamped to end")
	assert.InDelta(t, 5.0, DistanceToSegment(pt(3, 4), a, a), 1e-12, "degenerate segment")
}

func TestEstimateSignal_NearSourceReturnsTxPower(t *testing.T) {
	// 1 unit = 0.05 m < 0.1 m
	rssi := EstimateSignal(pt(100, 100), 20, model.Band24GHz, pt(101, 100), nil)
	assert.Equal(t, 20.0, rssi)
}

func TestEstimateSignal_OneMeterIsReferenceLoss(t *testing.T) {
	rssi := EstimateSignal(pt(0, 0), 20, model.Band24GHz, pt(20, 0), nil)
	assert.InDelta(t, 20-RefLoss24GHz, rssi, 1e-9)

	rssi = EstimateSignal(pt(0, 0), 20, model.Band5GHz, pt(20, 0), nil)
	assert.InDelta(t, 20-RefLoss5GHz, rssi, 1e-9)
}

func TestEstimateSignal_TenMeters(t *testing.T) {
	// 40 + 20*log10(10) = 60 dB
	rssi := EstimateSignal(pt(0, 0), 20, model.Band24GHz, pt(200, 0), nil)
	assert.InDelta(t, -40.0, rssi, 1e-9)
}

func TestEstimateSignal_WallLossAccumulates(t *testing.T) {
	walls := []model.Wall{
		{ID: 1, Start: pt(50, -50), End: pt(50, 50), Kind: model.WallStandard},
		{ID: 2, Start: pt(100, -50), End: pt(100, 50), Kind: model.WallThick},
		{ID: 3, Start: pt(150, -50), End: pt(150, 50), Kind: model.WallDoor},
		{ID: 4, Start: pt(0, 80), End: pt(200, 80), Kind: model.WallThick}, // not crossed
	}
	open := EstimateSignal(pt(0, 0), 20, model.Band24GHz, pt(200, 0), nil)
	blocked := EstimateSignal(pt(0, 0), 20, model.Band24GHz, pt(200, 0), walls)
	assert.InDelta(t, 12+25+6, open-blocked, 1e-9)
}

func TestEstimateSignal_ClampedToFloor(t *testing.T) {
	walls := make([]model.Wall, 0, 10)
	for i := 0; i < 10; i++ {
		x := float64(10 + i*10)
		walls = append(walls, model.Wall{ID: model.WallID(i + 1), Start: pt(x, -10), End: pt(x, 10), Kind: model.WallThick})
	}
	rssi := EstimateSignal(pt(0, 0), 20, model.Band5GHz, pt(200, 0), walls)
	assert.Equal(t, model.NoSignalDbm, rssi)
}

func TestEstimateSignal_WithinRange(t *testing.T) {
	walls := []model.Wall{{ID: 1, Start: pt(300, 0), End: pt(300, 1000), Kind: model.WallWindow}}
	for _, tx := range []float64{-5, 0, 14, 20, 30} {
		for x := 0.0; x <= 1000; x += 37 {
			for y := 0.0; y <= 1000; y += 53 {
				rssi := EstimateSignal(pt(500, 500), tx, model.Band24GHz, pt(x, y), walls)
				assert.GreaterOrEqual(t, rssi, model.NoSignalDbm)
				assert.LessOrEqual(t, rssi, tx)
			}
		}
	}
}

func TestEstimateSignal_MonotoneInDistance(t *testing.T) {
	walls := []model.Wall{
		{ID: 1, Start: pt(100, -100), End: pt(100, 100), Kind: model.WallStandard},
		{ID: 2, Start: pt(400, -100), End: pt(400, 100), Kind: model.WallThick},
	}
	tx := pt(0, 0)
	prev := math.Inf(1)
	for d := 0.5; d < 2000; d += 3.7 {
		rssi := EstimateSignal(tx, 20, model.Band24GHz, pt(d, 0), walls)
		assert.LessOrEqual(t, rssi, prev, "rssi must not increase at distance %.1f", d)
		prev = rssi
	}
}

func TestPathLossBands(t *testing.T) {
	assert.Equal(t, RefLoss24GHz, ReferenceLoss(model.Band24GHz))
	assert.Equal(t, RefLoss5GHz, ReferenceLoss(model.Band5GHz))
	assert.InDelta(t, RefLoss5GHz+20, PathLoss(10, model.Band5GHz), 1e-9)
}

func TestReferenceLoss_OutOfRangeBandMatchesItsName(t *testing.T) {
	odd := model.Band(7)
	assert.Equal(t, "2.4GHz", odd.String())
	assert.Equal(t, 2.4, odd.GHz())
	assert.Equal(t, RefLoss24GHz, ReferenceLoss(odd))
	assert.InDelta(t, EstimateSignal(pt(0, 0), 20, model.Band24GHz, pt(200, 0), nil),
		EstimateSignal(pt(0, 0), 20, odd, pt(200, 0), nil), 1e-9)
}

func TestBounds(t *testing.T) {
	b := Bounds(pt(10, 40), pt(-5, 2), pt(3, 100))
	assert.Equal(t, -5.0, b.Min[0])
	assert.Equal(t, 2.0, b.Min[1])
	assert.Equal(t, 10.0, b.Max[0])
	assert.Equal(t, 100.0, b.Max[1])
}

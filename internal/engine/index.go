package engine

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/piwi3910/wifiplan/internal/model"
)

// indexPadding grows every box so that horizontal and vertical segments
// still have a positive extent on both axes.
const indexPadding = 0.5

type indexedWall struct {
	wall   model.Wall
	bounds rtreego.Rect
}

func (w *indexedWall) Bounds() rtreego.Rect {
	return w.bounds
}

// wallIndex is an R-tree over wall bounding boxes and the WallQuery handed
// to propagators. A wall can only cross a segment if the two boxes
// intersect.
type wallIndex struct {
	tree *rtreego.Rtree
	size int
}

var _ WallQuery = (*wallIndex)(nil)

func newWallIndex(walls []model.Wall) *wallIndex {
	spatials := make([]rtreego.Spatial, len(walls))
	for i, w := range walls {
		spatials[i] = &indexedWall{wall: w, bounds: segmentRect(w.Start, w.End)}
	}
	return &wallIndex{
		tree: rtreego.NewTree(2, 4, 16, spatials...),
		size: len(walls),
	}
}

// Along returns the walls whose boxes intersect the box of a-b, in ID
// order.
func (idx *wallIndex) Along(a, b model.Point) []model.Wall {
	if idx.size == 0 {
		return nil
	}
	hits := idx.tree.SearchIntersect(segmentRect(a, b))
	if len(hits) == 0 {
		return nil
	}
	walls := make([]model.Wall, len(hits))
	for i, h := range hits {
		walls[i] = h.(*indexedWall).wall
	}
	sort.Slice(walls, func(i, j int) bool { return walls[i].ID < walls[j].ID })
	return walls
}

func segmentRect(a, b model.Point) rtreego.Rect {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	rect, _ := rtreego.NewRect(
		rtreego.Point{minX - indexPadding, minY - indexPadding},
		[]float64{maxX - minX + 2*indexPadding, maxY - minY + 2*indexPadding},
	)
	return rect
}

// sampler is a read-only view of the plan taken at one point in time.
type sampler struct {
	propagator Propagator
	index      *wallIndex
	boosters   []model.Booster
	width      float64
	height     float64
}

func newSampler(p Plan, propagator Propagator) *sampler {
	return &sampler{
		propagator: propagator,
		index:      newWallIndex(p.Walls()),
		boosters:   p.Boosters(),
		width:      p.Width(),
		height:     p.Height(),
	}
}

func (s *sampler) rssi(tx Transmitter, target model.Point) float64 {
	return s.propagator.RSSI(tx, target, s.index, s.boosters)
}

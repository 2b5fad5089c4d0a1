// Package plan implements the floor plan model: walls, the access point and
// boosters, with every edit recorded in a linear undo/redo history.
package plan

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/piwi3910/wifiplan/internal/geometry"
	"github.com/piwi3910/wifiplan/internal/model"
)

// DefaultHitTolerance is the eraser hit radius in world units.
const DefaultHitTolerance = 5.0

// FloorPlan is the aggregate root of one editing session. It is not safe
// for concurrent use; callers serialize edits against running scans.
type FloorPlan struct {
	id     string
	width  float64
	height float64

	walls       []model.Wall
	accessPoint *model.Point
	boosters    []model.Booster

	nextWallID    model.WallID
	nextBoosterID model.BoosterID

	history  *History
	revision uint64
	logger   *zap.Logger
}

// Option configures a FloorPlan.
type Option func(*config)

type config struct {
	logger     *zap.Logger
	maxHistory int
}

// WithLogger sets the logger used for edit and history events.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxHistory caps the number of stored snapshots. Zero means unlimited.
func WithMaxHistory(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxHistory = n
		}
	}
}

// New creates an empty floor plan with fixed world bounds. The history starts
// with one snapshot of the empty state so an immediate Undo is a no-op.
func New(width, height float64, opts ...Option) *FloorPlan {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	fp := &FloorPlan{
		id:            uuid.New().String()[:8],
		width:         width,
		height:        height,
		nextWallID:    1,
		nextBoosterID: 1,
	}
	fp.logger = cfg.logger.With(zap.String("plan", fp.id))
	fp.history = NewHistory(MakeSnapshot(nil, nil, nil, "Empty"), cfg.maxHistory)
	return fp
}

// ID returns the session identifier of the plan.
func (fp *FloorPlan) ID() string { return fp.id }

// Width returns the world width.
func (fp *FloorPlan) Width() float64 { return fp.width }

// Height returns the world height.
func (fp *FloorPlan) Height() float64 { return fp.height }

// Walls returns a copy of the walls in insertion order.
func (fp *FloorPlan) Walls() []model.Wall {
	return copyWalls(fp.walls)
}

// AccessPoint returns the access point position, or false if none is set.
func (fp *FloorPlan) AccessPoint() (model.Point, bool) {
	if fp.accessPoint == nil {
		return model.Point{}, false
	}
	return *fp.accessPoint, true
}

// Boosters returns a copy of the boosters in insertion order.
func (fp *FloorPlan) Boosters() []model.Booster {
	return copyBoosters(fp.boosters)
}

// Revision increases on every edit, undo and redo. Long running readers
// compare revisions to notice edits made while they were suspended.
func (fp *FloorPlan) Revision() uint64 { return fp.revision }

// History exposes the undo log for inspection.
func (fp *FloorPlan) History() *History { return fp.history }

// State returns an independent copy of the live state.
func (fp *FloorPlan) State() Snapshot {
	return fp.snapshot("State")
}

// ─── Edits ────────────────────────────────────────────────

// AddWall appends a wall and returns its identity.
func (fp *FloorPlan) AddWall(start, end model.Point, kind model.WallKind) model.WallID {
	id := fp.appendWall(start, end, kind)
	fp.commit("Add Wall")
	return id
}

// AddRoom appends the four perimeter walls of rect (top, right, bottom,
// left) as a single edit.
func (fp *FloorPlan) AddRoom(rect model.Rect, kind model.WallKind) []model.WallID {
	x, y, w, h := rect.X, rect.Y, rect.W, rect.H
	ids := []model.WallID{
		fp.appendWall(model.Point{X: x, Y: y}, model.Point{X: x + w, Y: y}, kind),
		fp.appendWall(model.Point{X: x + w, Y: y}, model.Point{X: x + w, Y: y + h}, kind),
		fp.appendWall(model.Point{X: x + w, Y: y + h}, model.Point{X: x, Y: y + h}, kind),
		fp.appendWall(model.Point{X: x, Y: y + h}, model.Point{X: x, Y: y}, kind),
	}
	fp.commit("Add Room")
	return ids
}

// AddWalls appends several walls as a single edit, as done for imports.
// The IDs in the given walls are ignored and fresh ones assigned.
func (fp *FloorPlan) AddWalls(walls []model.Wall) []model.WallID {
	ids := make([]model.WallID, 0, len(walls))
	for _, w := range walls {
		ids = append(ids, fp.appendWall(w.Start, w.End, w.Kind))
	}
	fp.commit("Import Walls")
	return ids
}

// RemoveWall removes the wall with the given identity. An unknown id still
// records a (no-op) history entry.
func (fp *FloorPlan) RemoveWall(id model.WallID) bool {
	removed := false
	for i, w := range fp.walls {
		if w.ID == id {
			fp.walls = append(fp.walls[:i:i], fp.walls[i+1:]...)
			removed = true
			break
		}
	}
	fp.commit("Remove Wall")
	return removed
}

// SetAccessPoint places (or moves) the access point.
func (fp *FloorPlan) SetAccessPoint(x, y float64) {
	fp.accessPoint = &model.Point{X: x, Y: y}
	fp.logger.Debug("access point placed", zap.Float64("x", x), zap.Float64("y", y))
	fp.commit("Set Access Point")
}

// ClearAccessPoint removes the access point.
func (fp *FloorPlan) ClearAccessPoint() {
	fp.accessPoint = nil
	fp.commit("Clear Access Point")
}

// AddBooster appends a booster and returns its identity.
func (fp *FloorPlan) AddBooster(x, y float64) model.BoosterID {
	id := fp.nextBoosterID
	fp.nextBoosterID++
	fp.boosters = append(fp.boosters, model.Booster{ID: id, Position: model.Point{X: x, Y: y}})
	fp.commit("Add Booster")
	return id
}

// RemoveBooster removes the booster with the given identity. An unknown id
// still records a history entry.
func (fp *FloorPlan) RemoveBooster(id model.BoosterID) bool {
	removed := false
	for i, b := range fp.boosters {
		if b.ID == id {
			fp.boosters = append(fp.boosters[:i:i], fp.boosters[i+1:]...)
			removed = true
			break
		}
	}
	fp.commit("Remove Booster")
	return removed
}

// ClearWalls removes all walls, keeping the access point and boosters.
func (fp *FloorPlan) ClearWalls() {
	fp.walls = nil
	fp.commit("Clear Walls")
}

// ClearAll removes walls, boosters and the access point as one edit.
func (fp *FloorPlan) ClearAll() {
	fp.walls = nil
	fp.boosters = nil
	fp.accessPoint = nil
	fp.commit("Clear All")
}

// WallAt returns the first wall, in insertion order, closer than tolerance
// to point. A non-positive tolerance uses DefaultHitTolerance.
func (fp *FloorPlan) WallAt(point model.Point, tolerance float64) (model.Wall, bool) {
	if tolerance <= 0 {
		tolerance = DefaultHitTolerance
	}
	for _, w := range fp.walls {
		if geometry.DistanceToSegment(point, w.Start, w.End) < tolerance {
			return w, true
		}
	}
	return model.Wall{}, false
}

// ─── History ──────────────────────────────────────────────

// Undo restores the previous snapshot. It returns false when there is
// nothing to undo.
func (fp *FloorPlan) Undo() bool {
	s, ok := fp.history.Undo()
	if !ok {
		return false
	}
	fp.restore(s)
	fp.logger.Debug("undo", zap.Int("cursor", fp.history.Cursor()))
	return true
}

// Redo re-applies the next snapshot. It returns false when there is nothing
// to redo.
func (fp *FloorPlan) Redo() bool {
	s, ok := fp.history.Redo()
	if !ok {
		return false
	}
	fp.restore(s)
	fp.logger.Debug("redo", zap.Int("cursor", fp.history.Cursor()))
	return true
}

// CanUndo reports whether Undo would have an effect.
func (fp *FloorPlan) CanUndo() bool { return fp.history.CanUndo() }

// CanRedo reports whether Redo would have an effect.
func (fp *FloorPlan) CanRedo() bool { return fp.history.CanRedo() }

func (fp *FloorPlan) appendWall(start, end model.Point, kind model.WallKind) model.WallID {
	id := fp.nextWallID
	fp.nextWallID++
	fp.walls = append(fp.walls, model.Wall{ID: id, Start: start, End: end, Kind: kind})
	return id
}

func (fp *FloorPlan) snapshot(label string) Snapshot {
	return MakeSnapshot(fp.walls, fp.accessPoint, fp.boosters, label)
}

// commit records the post-edit state as the newest history entry.
func (fp *FloorPlan) commit(label string) {
	fp.history.Record(fp.snapshot(label))
	fp.revision++
	fp.logger.Debug("edit recorded",
		zap.String("edit", label),
		zap.Int("walls", len(fp.walls)),
		zap.Int("history", fp.history.Len()))
}

// restore replaces the live state with s. ID counters are left alone so
// identities are never reused after an undo.
func (fp *FloorPlan) restore(s Snapshot) {
	fp.walls = s.Walls
	fp.accessPoint = s.AccessPoint
	fp.boosters = s.Boosters
	fp.revision++
}

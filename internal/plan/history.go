package plan

import "github.com/piwi3910/wifiplan/internal/model"

// Snapshot captures the mutable floor plan state at a point in time.
type Snapshot struct {
	Walls       []model.Wall
	AccessPoint *model.Point
	Boosters    []model.Booster
	Label       string // Human-readable description (e.g. "Add Wall")
}

// History is a linear undo/redo log of full snapshots with a cursor at the
// snapshot matching the live state. Recording after an undo discards the
// redo branch.
type History struct {
	snapshots []Snapshot
	cursor    int
	maxDepth  int
}

// NewHistory creates a History whose only entry is initial. A maxDepth of
// zero keeps every snapshot; otherwise the oldest entries are dropped.
func NewHistory(initial Snapshot, maxDepth int) *History {
	return &History{
		snapshots: []Snapshot{cloneSnapshot(initial)},
		cursor:    0,
		maxDepth:  maxDepth,
	}
}

// Record appends s right after the cursor, discarding anything after it,
// and moves the cursor onto the new entry.
func (h *History) Record(s Snapshot) {
	h.snapshots = append(h.snapshots[:h.cursor+1], cloneSnapshot(s))
	h.cursor++
	if h.maxDepth > 0 && len(h.snapshots) > h.maxDepth {
		drop := len(h.snapshots) - h.maxDepth
		h.snapshots = append([]Snapshot(nil), h.snapshots[drop:]...)
		h.cursor -= drop
	}
}

// Undo moves the cursor back one step and returns a copy of the snapshot to
// restore, or false if the cursor is already at the oldest entry.
func (h *History) Undo() (Snapshot, bool) {
	if h.cursor == 0 {
		return Snapshot{}, false
	}
	h.cursor--
	return cloneSnapshot(h.snapshots[h.cursor]), true
}

// Redo moves the cursor forward one step and returns a copy of the snapshot
// to restore, or false if the cursor is at the newest entry.
func (h *History) Redo() (Snapshot, bool) {
	if h.cursor >= len(h.snapshots)-1 {
		return Snapshot{}, false
	}
	h.cursor++
	return cloneSnapshot(h.snapshots[h.cursor]), true
}

// CanUndo returns true if there is at least one snapshot to undo.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo returns true if there is at least one snapshot to redo.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.snapshots)-1
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Cursor returns the index of the snapshot matching the live state.
func (h *History) Cursor() int {
	return h.cursor
}

// Current returns a copy of the snapshot at the cursor.
func (h *History) Current() Snapshot {
	return cloneSnapshot(h.snapshots[h.cursor])
}

// copyWalls returns a deep copy of a walls slice. Walls hold no references,
// so copying the slice is enough.
func copyWalls(walls []model.Wall) []model.Wall {
	if walls == nil {
		return nil
	}
	cp := make([]model.Wall, len(walls))
	copy(cp, walls)
	return cp
}

// copyBoosters returns a deep copy of a boosters slice.
func copyBoosters(boosters []model.Booster) []model.Booster {
	if boosters == nil {
		return nil
	}
	cp := make([]model.Booster, len(boosters))
	copy(cp, boosters)
	return cp
}

func copyPoint(p *model.Point) *model.Point {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func cloneSnapshot(s Snapshot) Snapshot {
	return Snapshot{
		Walls:       copyWalls(s.Walls),
		AccessPoint: copyPoint(s.AccessPoint),
		Boosters:    copyBoosters(s.Boosters),
		Label:       s.Label,
	}
}

// MakeSnapshot creates a snapshot from the given state with a label.
func MakeSnapshot(walls []model.Wall, ap *model.Point, boosters []model.Booster, label string) Snapshot {
	return cloneSnapshot(Snapshot{
		Walls:       walls,
		AccessPoint: ap,
		Boosters:    boosters,
		Label:       label,
	})
}

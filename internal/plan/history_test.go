package plan

import (
	"testing"

	"github.com/piwi3910/wifiplan/internal/model"
)

func oneWall(id model.WallID) []model.Wall {
	return []model.Wall{{ID: id, Start: model.Point{X: 0, Y: 0}, End: model.Point{X: 100, Y: 0}, Kind: model.WallStandard}}
}

func TestNewHistory(t *testing.T) {
	h := NewHistory(MakeSnapshot(nil, nil, nil, "empty"), 0)
	if h.Len() != 1 {
		t.Errorf("expected 1 snapshot, got %d", h.Len())
	}
	if h.Cursor() != 0 {
		t.Errorf("expected cursor 0, got %d", h.Cursor())
	}
	if h.CanUndo() {
		t.Error("new history should not be undoable")
	}
	if h.CanRedo() {
		t.Error("new history should not be redoable")
	}
}

func TestRecordAndUndo(t *testing.T) {
	h := NewHistory(MakeSnapshot(nil, nil, nil, "empty"), 0)
	h.Record(MakeSnapshot(oneWall(1), nil, nil, "one wall"))

	if !h.CanUndo() {
		t.Fatal("should be able to undo after record")
	}

	restored, ok := h.Undo()
	if !ok {
		t.Fatal("undo should succeed")
	}
	if len(restored.Walls) != 0 {
		t.Errorf("expected 0 walls after undo, got %d", len(restored.Walls))
	}
	if restored.Label != "empty" {
		t.Errorf("expected label 'empty', got %q", restored.Label)
	}

	if _, ok := h.Undo(); ok {
		t.Error("undo at the first snapshot should fail")
	}
}

func TestUndoRedo(t *testing.T) {
	h := NewHistory(MakeSnapshot(nil, nil, nil, "empty"), 0)
	h.Record(MakeSnapshot(oneWall(1), nil, nil, "one wall"))
	ap := &model.Point{X: 5, Y: 5}
	h.Record(MakeSnapshot(oneWall(1), ap, nil, "with ap"))

	restored, ok := h.Undo()
	if !ok {
		t.Fatal("first undo should succeed")
	}
	if restored.AccessPoint != nil {
		t.Error("expected no access point after undo")
	}

	if !h.CanRedo() {
		t.Fatal("should be able to redo")
	}
	redone, ok := h.Redo()
	if !ok {
		t.Fatal("redo should succeed")
	}
	if redone.AccessPoint == nil || *redone.AccessPoint != *ap {
		t.Errorf("expected access point %v after redo, got %v", ap, redone.AccessPoint)
	}

	if _, ok := h.Redo(); ok {
		t.Error("redo at the newest snapshot should fail")
	}
}

func TestRecordClearsRedo(t *testing.T) {
	h := NewHistory(MakeSnapshot(nil, nil, nil, "empty"), 0)
	h.Record(MakeSnapshot(oneWall(1), nil, nil, "one wall"))

	if _, ok := h.Undo(); !ok {
		t.Fatal("undo should succeed")
	}
	if !h.CanRedo() {
		t.Fatal("should be able to redo after undo")
	}

	h.Record(MakeSnapshot(nil, nil, nil, "new action"))
	if h.CanRedo() {
		t.Error("redo branch should be discarded after record")
	}
	if h.Len() != 2 {
		t.Errorf("expected 2 snapshots, got %d", h.Len())
	}
}

func TestMaxDepth(t *testing.T) {
	h := NewHistory(MakeSnapshot(nil, nil, nil, "empty"), 3)

	for i := 0; i < 5; i++ {
		h.Record(MakeSnapshot(oneWall(model.WallID(i+1)), nil, nil, ""))
	}

	if h.Len() != 3 {
		t.Errorf("expected 3 snapshots after exceeding max depth, got %d", h.Len())
	}
	if h.Cursor() != 2 {
		t.Errorf("expected cursor at newest entry 2, got %d", h.Cursor())
	}

	count := 0
	for h.CanUndo() {
		h.Undo()
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 undos, got %d", count)
	}
	if got := h.Current().Walls[0].ID; got != 3 {
		t.Errorf("expected oldest kept snapshot to hold wall 3, got %d", got)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	walls := oneWall(1)
	ap := &model.Point{X: 1, Y: 2}
	boosters := []model.Booster{{ID: 1, Position: model.Point{X: 3, Y: 4}}}

	snap := MakeSnapshot(walls, ap, boosters, "original")

	walls[0].Kind = model.WallThick
	ap.X = 99
	boosters[0].Position.X = 99

	if snap.Walls[0].Kind != model.WallStandard {
		t.Error("modifying original walls should not affect snapshot")
	}
	if snap.AccessPoint.X != 1 {
		t.Error("modifying original access point should not affect snapshot")
	}
	if snap.Boosters[0].Position.X != 3 {
		t.Error("modifying original boosters should not affect snapshot")
	}
}

func TestUndoReturnsIndependentCopy(t *testing.T) {
	h := NewHistory(MakeSnapshot(oneWall(1), nil, nil, "one"), 0)
	h.Record(MakeSnapshot(nil, nil, nil, "none"))

	restored, _ := h.Undo()
	restored.Walls[0].Kind = model.WallDoor

	if h.Current().Walls[0].Kind != model.WallStandard {
		t.Error("mutating a restored snapshot must not alias into history")
	}
}

func TestCopyNilSlices(t *testing.T) {
	if copyWalls(nil) != nil {
		t.Error("copyWalls(nil) should return nil")
	}
	if copyBoosters(nil) != nil {
		t.Error("copyBoosters(nil) should return nil")
	}
	if copyPoint(nil) != nil {
		t.Error("copyPoint(nil) should return nil")
	}
}

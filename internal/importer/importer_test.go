package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"

	"github.com/piwi3910/wifiplan/internal/model"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "x1,y1,x2,y2,kind\n0,0,100,0,thick\n0,0,0,100,door\n", ','},
		{"semicolon", "x1;y1;x2;y2;kind\n0;0;100;0;thick\n0;0;0;100;door\n", ';'},
		{"tab", "x1\ty1\tx2\ty2\tkind\n0\t0\t100\t0\tthick\n", '\t'},
		{"pipe", "x1|y1|x2|y2|kind\n0|0|100|0|thick\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
				t.Errorf("expected %q delimiter, got %q", tt.want, got)
			}
		})
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, ok := DetectColumns([]string{"x1", "y1", "x2", "y2", "kind"})
	if !ok {
		t.Fatal("expected header to be detected")
	}
	if mapping.X1 != 0 || mapping.Y1 != 1 || mapping.X2 != 2 || mapping.Y2 != 3 || mapping.Kind != 4 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
}

func TestDetectColumns_AliasesAndOrder(t *testing.T) {
	mapping, ok := DetectColumns([]string{"Type", "End X", "End Y", "Start X", "Start Y"})
	if !ok {
		t.Fatal("expected header to be detected")
	}
	if mapping.Kind != 0 || mapping.X2 != 1 || mapping.Y2 != 2 || mapping.X1 != 3 || mapping.Y1 != 4 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, ok := DetectColumns([]string{"0", "0", "100", "0", "standard"})
	if ok {
		t.Error("numeric row should not be a header")
	}
	if mapping.X1 != 0 || mapping.Y1 != 1 || mapping.X2 != 2 || mapping.Y2 != 3 || mapping.Kind != 4 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "x1,y1,x2,y2,kind\n0,0,100,0,thick\n100,0,100,50,window\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Walls) != 2 {
		t.Fatalf("expected 2 walls, got %d", len(result.Walls))
	}

	w := result.Walls[0]
	if w.Start != (model.Point{X: 0, Y: 0}) || w.End != (model.Point{X: 100, Y: 0}) {
		t.Errorf("unexpected geometry %v -> %v", w.Start, w.End)
	}
	if w.Kind != model.WallThick {
		t.Errorf("expected thick, got %s", w.Kind)
	}
	if result.Walls[1].Kind != model.WallWindow {
		t.Errorf("expected window, got %s", result.Walls[1].Kind)
	}
	if w.ID != 0 {
		t.Errorf("imported walls should carry no ID, got %d", w.ID)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	data := "0,0,100,0\n0,50,100,50,door\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Walls) != 2 {
		t.Fatalf("expected 2 walls, got %d (errors: %v)", len(result.Walls), result.Errors)
	}
	if result.Walls[0].Kind != model.WallStandard {
		t.Errorf("missing kind should default to standard, got %s", result.Walls[0].Kind)
	}
	if result.Walls[1].Kind != model.WallDoor {
		t.Errorf("expected door, got %s", result.Walls[1].Kind)
	}
}

func TestImportCSVFromReader_UnrecognizedHeaderSkipped(t *testing.T) {
	data := "a,b,c,d\n0,0,10,10\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Walls) != 1 {
		t.Fatalf("expected 1 wall, got %d (errors: %v)", len(result.Walls), result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about the skipped header")
	}
}

func TestImportCSVFromReader_KindAliases(t *testing.T) {
	data := "x1,y1,x2,y2,kind\n0,0,1,0,wall_thick\n0,0,1,0,Glass\n0,0,1,0,wood\n0,0,1,0,wall\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	want := []model.WallKind{model.WallThick, model.WallWindow, model.WallDoor, model.WallStandard}
	if len(result.Walls) != len(want) {
		t.Fatalf("expected %d walls, got %d (errors: %v)", len(want), len(result.Walls), result.Errors)
	}
	for i, k := range want {
		if result.Walls[i].Kind != k {
			t.Errorf("wall %d: expected %s, got %s", i, k, result.Walls[i].Kind)
		}
	}
}

func TestImportCSVFromReader_UnknownKindWarns(t *testing.T) {
	data := "x1,y1,x2,y2,kind\n0,0,100,0,plasma\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Walls) != 1 {
		t.Fatalf("expected 1 wall, got %d", len(result.Walls))
	}
	if result.Walls[0].Kind != model.WallStandard {
		t.Errorf("expected standard fallback, got %s", result.Walls[0].Kind)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "plasma") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected warning naming the unknown kind, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_RowErrors(t *testing.T) {
	data := "x1,y1,x2,y2\n0,0,100,0\nabc,0,100,0\n0,0,,5\n10,10,10,10\n0,0,0,100\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Walls) != 2 {
		t.Errorf("expected 2 valid walls, got %d", len(result.Walls))
	}
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Line 3") || !strings.Contains(result.Errors[0], "Invalid x1") {
		t.Errorf("unexpected error %q", result.Errors[0])
	}
	if !strings.Contains(result.Errors[1], "Missing x2") {
		t.Errorf("unexpected error %q", result.Errors[1])
	}
	if !strings.Contains(result.Errors[2], "zero length") {
		t.Errorf("unexpected error %q", result.Errors[2])
	}
	if result.OK() {
		t.Error("result with errors should not be OK")
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	data := "x1,y1,x2,kind\n0,0,100,thick\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) == 0 {
		t.Fatal("expected error for missing y2 column")
	}
	if !strings.Contains(result.Errors[0], "Y2") {
		t.Errorf("expected error to mention Y2, got %q", result.Errors[0])
	}
}

func TestImportCSVFromReader_EmptyRowsAndOnlyHeader(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("x1,y1,x2,y2\n\n0,0,5,5\n,,,\n"), ',')
	if len(result.Walls) != 1 || len(result.Errors) != 0 {
		t.Errorf("expected 1 wall and no errors, got %d walls, errors %v", len(result.Walls), result.Errors)
	}

	result = ImportCSVFromReader(strings.NewReader("x1,y1,x2,y2\n"), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for header without data")
	}

	result = ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

// ─── CSV File Import Tests ──────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walls.csv")
	content := "x1;y1;x2;y2;kind\n0;0;100;0;thick\n0;0;0;100;door\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)

	if len(result.Walls) != 2 {
		t.Errorf("expected 2 walls, got %d (errors: %v)", len(result.Walls), result.Errors)
	}
	hasSemicolonWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			hasSemicolonWarning = true
		}
	}
	if !hasSemicolonWarning {
		t.Error("expected warning about semicolon delimiter detection")
	}
	if !result.OK() {
		t.Errorf("expected OK result, errors: %v", result.Errors)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/path/walls.csv")
	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if result := ImportCSV(path); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "walls.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Start X", "Start Y", "End X", "End Y", "Type"},
		{0, 0, 400, 0, "concrete"},
		{400, 0, 400, 300.5, "door"},
	})

	result := ImportExcel(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Walls) != 2 {
		t.Fatalf("expected 2 walls, got %d", len(result.Walls))
	}
	if result.Walls[0].Kind != model.WallThick {
		t.Errorf("expected thick, got %s", result.Walls[0].Kind)
	}
	if result.Walls[1].End.Y != 300.5 {
		t.Errorf("expected end y 300.5, got %f", result.Walls[1].End.Y)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	if result := ImportExcel("/nonexistent/walls.xlsx"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

// ─── DXF Import Tests ──────────────────────────────────────

func createTestDXF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.dxf")

	d := dxf.NewDrawing()
	if _, err := d.AddLayer("WALL-THICK", dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		t.Fatalf("failed to add layer: %v", err)
	}
	if _, err := d.Line(0, 0, 0, 10, 0, 0); err != nil {
		t.Fatalf("failed to add line: %v", err)
	}
	if _, err := d.AddLayer("A-DOOR", dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		t.Fatalf("failed to add layer: %v", err)
	}
	if _, err := d.Line(10, 0, 0, 10, 5, 0); err != nil {
		t.Fatalf("failed to add line: %v", err)
	}
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("failed to save DXF: %v", err)
	}
	return path
}

func TestImportDXF_LinesWithLayerKinds(t *testing.T) {
	result := ImportDXF(createTestDXF(t), model.UnitsPerMeter)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Walls) != 2 {
		t.Fatalf("expected 2 walls, got %d", len(result.Walls))
	}

	first := result.Walls[0]
	if first.Kind != model.WallThick {
		t.Errorf("expected thick from layer WALL-THICK, got %s", first.Kind)
	}
	if first.End != (model.Point{X: 200, Y: 0}) {
		t.Errorf("expected metres scaled to world units, got %v", first.End)
	}
	if result.Walls[1].Kind != model.WallDoor {
		t.Errorf("expected door from layer A-DOOR, got %s", result.Walls[1].Kind)
	}
}

func TestImportDXF_FileNotFound(t *testing.T) {
	if result := ImportDXF("/nonexistent/plan.dxf", 1); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestPolylineSegments(t *testing.T) {
	square := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	open := polylineSegments(square, false, 1)
	if len(open) != 3 {
		t.Errorf("open polyline: expected 3 segments, got %d", len(open))
	}

	closed := polylineSegments(square, true, 2)
	if len(closed) != 4 {
		t.Fatalf("closed polyline: expected 4 segments, got %d", len(closed))
	}
	last := closed[3]
	if last[0] != (model.Point{X: 0, Y: 2}) || last[1] != (model.Point{X: 0, Y: 0}) {
		t.Errorf("unexpected closing segment %v", last)
	}

	if segs := polylineSegments([][]float64{{0, 0}}, true, 1); segs != nil {
		t.Errorf("single vertex should give no segments, got %v", segs)
	}
}

func TestLayerKind(t *testing.T) {
	tests := []struct {
		layer string
		want  model.WallKind
		ok    bool
	}{
		{"thick", model.WallThick, true},
		{"A-GLAZ", model.WallWindow, true},
		{"Windows", model.WallWindow, true},
		{"DOORS", model.WallDoor, true},
		{"S-CONCRETE", model.WallThick, true},
		{"Walls", model.WallStandard, true},
		{"0", model.WallStandard, false},
		{"", model.WallStandard, false},
	}
	for _, tt := range tests {
		got, ok := LayerKind(tt.layer)
		if got != tt.want || ok != tt.ok {
			t.Errorf("LayerKind(%q) = %s, %v; want %s, %v", tt.layer, got, ok, tt.want, tt.ok)
		}
	}
}

func TestImport_DispatchByExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "walls.CSV")
	if err := os.WriteFile(csvPath, []byte("0,0,10,0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if result := Import(csvPath, 1); len(result.Walls) != 1 {
		t.Errorf("expected 1 wall from csv, got %d (errors: %v)", len(result.Walls), result.Errors)
	}

	if result := Import(filepath.Join(dir, "plan.svg"), 1); len(result.Errors) == 0 {
		t.Error("expected error for unsupported extension")
	}
}

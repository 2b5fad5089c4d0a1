package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/wifiplan/internal/model"
)

// minSegmentLength drops segments shorter than this many world units.
const minSegmentLength = 0.01

// layerKeywords maps words found in CAD layer names to wall kinds. The first
// matching keyword wins.
var layerKeywords = []struct {
	word string
	kind model.WallKind
}{
	{"window", model.WallWindow},
	{"glaz", model.WallWindow},
	{"glass", model.WallWindow},
	{"door", model.WallDoor},
	{"thick", model.WallThick},
	{"concrete", model.WallThick},
	{"struct", model.WallThick},
	{"load", model.WallThick},
}

// ImportDXF imports walls from a DXF file. Every LINE becomes a wall and
// every LWPOLYLINE contributes one wall per edge (plus the closing edge when
// the polyline is closed). The wall kind comes from the entity's layer name.
// Coordinates are multiplied by scale (world units per drawing unit); a
// non-positive scale means 1.
func ImportDXF(path string, scale float64) ImportResult {
	result := ImportResult{}
	if scale <= 0 {
		scale = 1
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	kinds := make(map[string]model.WallKind)
	kindFor := func(layer string) model.WallKind {
		if kind, ok := kinds[layer]; ok {
			return kind
		}
		kind, ok := LayerKind(layer)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Layer '%s' does not name a wall kind, using standard", layer))
		}
		kinds[layer] = kind
		return kind
	}

	skipped := 0
	for _, ent := range entities {
		var segs [][2]model.Point
		switch e := ent.(type) {
		case *entity.Line:
			segs = [][2]model.Point{{
				{X: e.Start[0] * scale, Y: e.Start[1] * scale},
				{X: e.End[0] * scale, Y: e.End[1] * scale},
			}}
		case *entity.LwPolyline:
			segs = polylineSegments(e.Vertices, e.Closed, scale)
		default:
			skipped++
			continue
		}

		kind := kindFor(layerName(ent))
		for _, s := range segs {
			w := model.Wall{Start: s[0], End: s[1], Kind: kind}
			if w.Length() < minSegmentLength {
				result.Warnings = append(result.Warnings, "Skipped degenerate segment")
				continue
			}
			result.Walls = append(result.Walls, w)
		}
	}

	if skipped > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped %d unsupported entities", skipped))
	}
	if len(result.Walls) == 0 {
		result.Errors = append(result.Errors, "No wall segments found in DXF file")
	}
	return result
}

// polylineSegments returns the edges of a polyline, scaled. Bulges are
// ignored: arcs become straight walls between their vertices.
func polylineSegments(vertices [][]float64, closed bool, scale float64) [][2]model.Point {
	if len(vertices) < 2 {
		return nil
	}
	pts := make([]model.Point, len(vertices))
	for i, v := range vertices {
		pts[i] = model.Point{X: v[0] * scale, Y: v[1] * scale}
	}

	segs := make([][2]model.Point, 0, len(pts))
	for i := 0; i+1 < len(pts); i++ {
		segs = append(segs, [2]model.Point{pts[i], pts[i+1]})
	}
	if closed && len(pts) > 2 && pts[0] != pts[len(pts)-1] {
		segs = append(segs, [2]model.Point{pts[len(pts)-1], pts[0]})
	}
	return segs
}

func layerName(e entity.Entity) string {
	if l := e.Layer(); l != nil {
		return l.Name()
	}
	return ""
}

// LayerKind maps a CAD layer name onto a wall kind. It accepts the wall
// kind names themselves and common layer naming words such as "A-GLAZ" or
// "DOORS". The boolean is false when the name matched nothing and the
// standard kind was assumed.
func LayerKind(layer string) (model.WallKind, bool) {
	name := strings.TrimSpace(layer)
	if name != "" {
		if kind, err := model.ParseWallKind(name); err == nil {
			return kind, true
		}
	}
	lower := strings.ToLower(name)
	for _, k := range layerKeywords {
		if strings.Contains(lower, k.word) {
			return k.kind, true
		}
	}
	if strings.Contains(lower, "wall") {
		return model.WallStandard, true
	}
	return model.WallStandard, false
}

// Import dispatches on the file extension: .csv, .txt, .xlsx and .dxf.
// scale only applies to DXF drawings.
func Import(path string, scale float64) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return ImportCSV(path)
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	case ".dxf":
		return ImportDXF(path, scale)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type '%s'", filepath.Ext(path))}}
	}
}

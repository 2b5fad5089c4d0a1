package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/piwi3910/wifiplan/internal/geometry"
	"github.com/piwi3910/wifiplan/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 14.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// Marker sizes in mm.
const (
	apRadius      = 2.2
	boosterRadius = 1.5
)

// ErrEmptyPlan is returned when a report covers a plan with no area.
var ErrEmptyPlan = errors.New("plan has no area to export")

// ExportPDF writes a coverage report: a heatmap page with the walls, access
// point and boosters drawn over it, followed by a summary page with the
// coverage figures, propagation model and a QR code of the placement.
func ExportPDF(path string, r Report) error {
	if r.Width <= 0 || r.Height <= 0 {
		return ErrEmptyPlan
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("wifiplan", true)

	pdf.AddPage()
	renderHeatmapPage(pdf, r)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, r); err != nil {
		return err
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return errors.Wrapf(err, "failed to write PDF %s", path)
	}
	return nil
}

// renderHeatmapPage draws the coverage grid scaled into the page.
func renderHeatmapPage(pdf *fpdf.Fpdf, r Report) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s (%.1f x %.1f m)", r.Title, r.Width/model.UnitsPerMeter, r.Height/model.UnitsPerMeter)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Coverage: %d%% | Dead zones: %d%% | Tx: %.0f dBm | Band: %s | Walls: %d",
		r.Coverage.Stats.CoveragePct, r.Coverage.Stats.DeadPct, r.Settings.TxPowerDbm, r.Settings.Band, len(r.Walls))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale := math.Min(drawWidth/r.Width, drawHeight/r.Height)
	canvasW := r.Width * scale
	canvasH := r.Height * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	drawHeatmap(pdf, r, scale, offsetX, offsetY, canvasW, canvasH)
	drawWalls(pdf, r.Walls, scale, offsetX, offsetY)
	drawMarkers(pdf, r, scale, offsetX, offsetY)

	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "D")

	drawDimensionAnnotations(pdf, r, offsetX, offsetY, canvasW, canvasH)
	drawRampLegend(pdf, offsetY+canvasH+6)
}

// drawHeatmap fills one rectangle per grid cell. Cells on the far edges are
// cropped to the plan.
func drawHeatmap(pdf *fpdf.Fpdf, r Report, scale, offsetX, offsetY, canvasW, canvasH float64) {
	cov := r.Coverage
	if len(cov.Grid) == 0 {
		pdf.SetFillColor(230, 230, 230)
		pdf.Rect(offsetX, offsetY, canvasW, canvasH, "F")
		return
	}
	cell := cov.Resolution * scale
	for row, values := range cov.Grid {
		y := offsetY + float64(row)*cell
		h := math.Min(cell, offsetY+canvasH-y)
		for col, rssi := range values {
			x := offsetX + float64(col)*cell
			w := math.Min(cell, offsetX+canvasW-x)
			if w <= 0 || h <= 0 {
				continue
			}
			c := heatColor(rssi)
			pdf.SetFillColor(c.R, c.G, c.B)
			pdf.Rect(x, y, w, h, "F")
		}
	}
}

func drawWalls(pdf *fpdf.Fpdf, walls []model.Wall, scale, offsetX, offsetY float64) {
	pdf.SetLineCapStyle("round")
	for _, w := range walls {
		c, ok := wallColors[w.Kind]
		if !ok {
			c = wallColors[model.WallStandard]
		}
		pdf.SetDrawColor(c.R, c.G, c.B)
		pdf.SetLineWidth(wallWidths[w.Kind])
		pdf.Line(offsetX+w.Start.X*scale, offsetY+w.Start.Y*scale,
			offsetX+w.End.X*scale, offsetY+w.End.Y*scale)
	}
	pdf.SetLineCapStyle("butt")
}

// drawMarkers draws boosters, the current access point and the suggested
// position, in that order.
func drawMarkers(pdf *fpdf.Fpdf, r Report, scale, offsetX, offsetY float64) {
	pdf.SetLineWidth(0.3)
	for _, b := range r.Boosters {
		pdf.SetFillColor(255, 255, 255)
		pdf.SetDrawColor(120, 60, 160)
		pdf.Circle(offsetX+b.Position.X*scale, offsetY+b.Position.Y*scale, boosterRadius, "FD")
	}

	if r.AccessPoint != nil {
		x := offsetX + r.AccessPoint.X*scale
		y := offsetY + r.AccessPoint.Y*scale
		pdf.SetFillColor(255, 255, 255)
		pdf.SetDrawColor(0, 0, 0)
		pdf.Circle(x, y, apRadius, "FD")
		pdf.SetFillColor(0, 0, 0)
		pdf.Circle(x, y, apRadius/2, "F")
	}

	if r.Suggested != nil {
		x := offsetX + r.Suggested.X*scale
		y := offsetY + r.Suggested.Y*scale
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.5)
		pdf.Line(x-apRadius, y-apRadius, x+apRadius, y+apRadius)
		pdf.Line(x-apRadius, y+apRadius, x+apRadius, y-apRadius)
	}
}

// drawDimensionAnnotations adds width and height labels in metres outside the plan.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, r Report, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.1f m", r.Width/model.UnitsPerMeter)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.1f m", r.Height/model.UnitsPerMeter)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawRampLegend renders the colour ramp with its dBm scale.
func drawRampLegend(pdf *fpdf.Fpdf, y float64) {
	const (
		steps  = 60
		rampW  = 120.0
		rampH  = 4.0
		labelW = 24.0
	)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(labelW, rampH, "Signal (dBm):", "", 0, "L", false, 0, "")

	x0 := marginLeft + labelW
	stepW := rampW / steps
	for i := 0; i < steps; i++ {
		rssi := heatMinDbm + (heatMaxDbm-heatMinDbm)*float64(i)/float64(steps-1)
		c := heatColor(rssi)
		pdf.SetFillColor(c.R, c.G, c.B)
		pdf.Rect(x0+float64(i)*stepW, y, stepW+0.05, rampH, "F")
	}

	pdf.SetFont("Helvetica", "", 7)
	for _, v := range []float64{-90, -80, -70, -60, -50, -40, -30} {
		lx := x0 + (v-heatMinDbm)/(heatMaxDbm-heatMinDbm)*rampW
		label := fmt.Sprintf("%.0f", v)
		lw := pdf.GetStringWidth(label)
		pdf.SetXY(lx-lw/2, y+rampH+0.5)
		pdf.CellFormat(lw, 3, label, "", 0, "C", false, 0, "")
	}

	pdf.SetXY(x0+rampW+6, y)
	pdf.CellFormat(80, rampH, "o Booster   (o) Access point   x Suggested", "", 0, "L", false, 0, "")
}

// renderSummaryPage draws the coverage figures, quality breakdown, wall
// inventory, propagation model and placement QR code.
func renderSummaryPage(pdf *fpdf.Fpdf, r Report) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Coverage Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	ap := "none"
	if r.AccessPoint != nil {
		ap = formatMeters(r.AccessPoint.X/model.UnitsPerMeter, r.AccessPoint.Y/model.UnitsPerMeter)
	}
	suggested := "not searched"
	if r.Suggested != nil {
		suggested = formatMeters(r.Suggested.X/model.UnitsPerMeter, r.Suggested.Y/model.UnitsPerMeter)
	}

	summaryItems := []struct {
		label string
		value string
	}{
		{"Coverage", fmt.Sprintf("%d%%", r.Coverage.Stats.CoveragePct)},
		{"Dead Zones", fmt.Sprintf("%d%%", r.Coverage.Stats.DeadPct)},
		{"Mean Signal", fmt.Sprintf("%.1f dBm", r.Coverage.MeanRSSI())},
		{"Transmit Power", fmt.Sprintf("%.0f dBm", r.Settings.TxPowerDbm)},
		{"Band", r.Settings.Band.String()},
		{"Access Point", ap},
		{"Suggested Position", suggested},
		{"Boosters", fmt.Sprintf("%d", len(r.Boosters))},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	y = renderQualityTable(pdf, r, y)
	y += 5
	y = renderWallTable(pdf, r, y)
	y += 5
	renderModelNotes(pdf, y)

	if err := renderPlacementQR(pdf, pageWidth-marginRight-qrSize, marginTop+18, r); err != nil {
		return err
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5,
		fmt.Sprintf("Report %s, generated %s", r.ID, r.GeneratedAt.Format("2006-01-02 15:04")),
		"", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

func renderQualityTable(pdf *fpdf.Fpdf, r Report, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Signal Quality", "", 0, "L", false, 0, "")
	y += 9

	counts := r.Coverage.QualityCounts()
	total := r.Coverage.Rows * r.Coverage.Cols

	rows := [][]string{}
	for _, q := range []model.Quality{model.QualityExcellent, model.QualityFair, model.QualityPoor} {
		share := 0.0
		if total > 0 {
			share = 100 * float64(counts[q]) / float64(total)
		}
		rows = append(rows, []string{
			q.String(),
			qualityRange(q),
			fmt.Sprintf("%d", counts[q]),
			fmt.Sprintf("%.1f%%", share),
		})
	}
	return renderTable(pdf, y, []float64{35, 45, 30, 30}, []string{"Quality", "Range", "Cells", "Share"}, rows)
}

func renderWallTable(pdf *fpdf.Fpdf, r Report, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Walls", "", 0, "L", false, 0, "")
	y += 9

	counts := r.wallCounts()
	var rows [][]string
	for _, k := range model.WallKinds() {
		rows = append(rows, []string{
			string(k),
			fmt.Sprintf("%.0f dB", k.Attenuation()),
			fmt.Sprintf("%d", counts[k]),
		})
	}
	return renderTable(pdf, y, []float64{35, 45, 30}, []string{"Kind", "Attenuation", "Count"}, rows)
}

// renderTable draws a bordered table with a grey header and alternating row
// backgrounds, returning the y below it.
func renderTable(pdf *fpdf.Fpdf, y float64, colWidths []float64, headers []string, rows [][]string) float64 {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range rows {
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}
	return y
}

func renderModelNotes(pdf *fpdf.Fpdf, y float64) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Propagation Model", "", 0, "L", false, 0, "")
	y += 8

	lines := []string{
		fmt.Sprintf("RSSI = Ptx - (L0 + %.0f * 10 * log10(d)) - sum(wall losses), clamped to [%.0f, Ptx] dBm",
			geometry.PathLossExponent, model.NoSignalDbm),
		fmt.Sprintf("L0 = %.0f dB at 2.4 GHz, %.0f dB at 5 GHz; d in metres (%.0f units per metre)",
			geometry.RefLoss24GHz, geometry.RefLoss5GHz, model.UnitsPerMeter),
		fmt.Sprintf("A cell counts as covered above %.0f dBm. Walls crossed by the direct path only.", model.UsableDbm),
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range lines {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(pageWidth-marginLeft-marginRight-qrSize-10, 5, line, "", 0, "L", false, 0, "")
		y += 5
	}
}

func qualityRange(q model.Quality) string {
	switch q {
	case model.QualityExcellent:
		return fmt.Sprintf("> %.0f dBm", model.ExcellentDbm)
	case model.QualityFair:
		return fmt.Sprintf("%.0f to %.0f dBm", model.FairDbm, model.ExcellentDbm)
	default:
		return fmt.Sprintf("<= %.0f dBm", model.FairDbm)
	}
}

func formatMeters(x, y float64) string {
	return fmt.Sprintf("(%.1f m, %.1f m)", x, y)
}

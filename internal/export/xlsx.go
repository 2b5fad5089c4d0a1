package export

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Sheet names written by ExportXLSX.
const (
	SheetSummary  = "Summary"
	SheetCoverage = "Coverage"
	SheetWalls    = "Walls"
)

// ExportXLSX writes the report as a workbook with a summary sheet, the raw
// RSSI grid (one cell per coverage cell, rows labelled by their centre y and
// columns by their centre x) and the wall list.
func ExportXLSX(path string, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return errors.Wrap(err, "failed to name summary sheet")
	}
	for _, name := range []string{SheetCoverage, SheetWalls} {
		if _, err := f.NewSheet(name); err != nil {
			return errors.Wrapf(err, "failed to add sheet %s", name)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}

	if err := writeSummarySheet(f, r, bold); err != nil {
		return err
	}
	if err := writeCoverageSheet(f, r, bold); err != nil {
		return err
	}
	if err := writeWallSheet(f, r, bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to write workbook %s", path)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, r Report, headerStyle int) error {
	rows := [][]interface{}{
		{"Report", r.ID},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Width (units)", r.Width},
		{"Height (units)", r.Height},
		{"Tx Power (dBm)", r.Settings.TxPowerDbm},
		{"Band", r.Settings.Band.String()},
		{"Coverage (%)", r.Coverage.Stats.CoveragePct},
		{"Dead Zones (%)", r.Coverage.Stats.DeadPct},
		{"Mean RSSI (dBm)", r.Coverage.MeanRSSI()},
		{"Resolution (units)", r.Coverage.Resolution},
	}
	if r.AccessPoint != nil {
		rows = append(rows, []interface{}{"Access Point", fmt.Sprintf("%.1f, %.1f", r.AccessPoint.X, r.AccessPoint.Y)})
	}
	if r.Suggested != nil {
		rows = append(rows, []interface{}{"Suggested", fmt.Sprintf("%.1f, %.1f", r.Suggested.X, r.Suggested.Y)})
	}
	for i, row := range rows {
		if err := setRow(f, SheetSummary, 1, i+1, row); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(1, len(rows))
	return f.SetCellStyle(SheetSummary, "A1", last, headerStyle)
}

func writeCoverageSheet(f *excelize.File, r Report, headerStyle int) error {
	cov := r.Coverage
	header := make([]interface{}, 0, cov.Cols+1)
	header = append(header, "y \\ x")
	for c := 0; c < cov.Cols; c++ {
		header = append(header, cov.CellCenter(0, c).X)
	}
	if err := setRow(f, SheetCoverage, 1, 1, header); err != nil {
		return err
	}

	for row, values := range cov.Grid {
		line := make([]interface{}, 0, len(values)+1)
		line = append(line, cov.CellCenter(row, 0).Y)
		for _, v := range values {
			line = append(line, v)
		}
		if err := setRow(f, SheetCoverage, 1, row+2, line); err != nil {
			return err
		}
	}

	lastHeader, _ := excelize.CoordinatesToCellName(cov.Cols+1, 1)
	if err := f.SetCellStyle(SheetCoverage, "A1", lastHeader, headerStyle); err != nil {
		return errors.Wrap(err, "failed to style coverage header")
	}
	lastLabel, _ := excelize.CoordinatesToCellName(1, cov.Rows+1)
	return f.SetCellStyle(SheetCoverage, "A1", lastLabel, headerStyle)
}

func writeWallSheet(f *excelize.File, r Report, headerStyle int) error {
	if err := setRow(f, SheetWalls, 1, 1, []interface{}{"id", "x1", "y1", "x2", "y2", "kind", "attenuation_db"}); err != nil {
		return err
	}
	for i, w := range r.Walls {
		row := []interface{}{uint64(w.ID), w.Start.X, w.Start.Y, w.End.X, w.End.Y, string(w.Kind), w.Kind.Attenuation()}
		if err := setRow(f, SheetWalls, 1, i+2, row); err != nil {
			return err
		}
	}
	return f.SetCellStyle(SheetWalls, "A1", "G1", headerStyle)
}

func setRow(f *excelize.File, sheet string, col, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return errors.Wrapf(err, "invalid cell %d,%d", col, row)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return errors.Wrapf(err, "failed to write %s!%s", sheet, cell)
	}
	return nil
}


package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/piwi3910/wifiplan/internal/engine"
	"github.com/piwi3910/wifiplan/internal/export"
	"github.com/piwi3910/wifiplan/internal/model"
)

func printPlan(w io.Writer, p engine.Plan) {
	fmt.Fprintf(w, "Plan: %.0f x %.0f units (%.1f x %.1f m), %d walls, %d boosters\n",
		p.Width(), p.Height(), p.Width()/model.UnitsPerMeter, p.Height()/model.UnitsPerMeter,
		len(p.Walls()), len(p.Boosters()))
	if ap, ok := p.AccessPoint(); ok {
		fmt.Fprintf(w, "Access point: (%.0f, %.0f)\n", ap.X, ap.Y)
	} else {
		fmt.Fprintln(w, "Access point: none")
	}
}

func printCoverage(w io.Writer, cov engine.Coverage) {
	counts := cov.QualityCounts()
	fmt.Fprintf(w, "Coverage: %d%%  Dead zones: %d%%  Mean signal: %.1f dBm\n",
		cov.Stats.CoveragePct, cov.Stats.DeadPct, cov.MeanRSSI())
	fmt.Fprintf(w, "Cells: %d x %d  Excellent: %d  Fair: %d  Poor: %d\n",
		cov.Cols, cov.Rows, counts[model.QualityExcellent], counts[model.QualityFair], counts[model.QualityPoor])
}

func printComparison(w io.Writer, results []engine.ComparisonResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tTX (dBm)\tBAND\tCOVERAGE\tDEAD\tMEAN (dBm)\tEXCELLENT\tFAIR\tPOOR")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.0f\t%s\t%d%%\t%d%%\t%.1f\t%d\t%d\t%d\n",
			r.Scenario.Name,
			r.Scenario.Settings.TxPowerDbm,
			r.Scenario.Settings.Band,
			r.Stats.CoveragePct,
			r.Stats.DeadPct,
			r.MeanRSSI,
			r.Quality[model.QualityExcellent],
			r.Quality[model.QualityFair],
			r.Quality[model.QualityPoor],
		)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// jsonReport is the JSON form of a report.
type jsonReport struct {
	ID          string          `json:"id"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	Settings    model.Settings  `json:"settings"`
	AccessPoint *model.Point    `json:"access_point,omitempty"`
	Suggested   *model.Point    `json:"suggested,omitempty"`
	Walls       []model.Wall    `json:"walls"`
	Boosters    []model.Booster `json:"boosters"`
	Coverage    engine.Coverage `json:"coverage"`
}

func writeJSONFile(path string, r export.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	err = encodeAndClose(f, jsonReport{
		ID:          r.ID,
		Width:       r.Width,
		Height:      r.Height,
		Settings:    r.Settings,
		AccessPoint: r.AccessPoint,
		Suggested:   r.Suggested,
		Walls:       r.Walls,
		Boosters:    r.Boosters,
		Coverage:    r.Coverage,
	})
	return errors.Wrapf(err, "failed to write %s", path)
}

// encodeAndClose writes v as JSON and closes wc. A close failure is
// reported when the encode itself succeeded.
func encodeAndClose(wc io.WriteCloser, v interface{}) error {
	err := printJSON(wc, v)
	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	return err
}

// logMetrics logs every wifiplan metric the gatherer knows about.
func logMetrics(logger *zap.Logger, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		logger.Warn("cannot gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "wifiplan_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, lp := range m.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetGauge() != nil:
				fields = append(fields, zap.Float64("value", m.GetGauge().GetValue()))
			case m.GetHistogram() != nil:
				fields = append(fields,
					zap.Uint64("count", m.GetHistogram().GetSampleCount()),
					zap.Float64("sum", m.GetHistogram().GetSampleSum()),
				)
			}
			logger.Info("metric", fields...)
		}
	}
}

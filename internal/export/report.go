// Package export writes coverage results to PDF and Excel files.
package export

import (
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/wifiplan/internal/engine"
	"github.com/piwi3910/wifiplan/internal/model"
)

// Report is everything an exported document shows about one coverage run.
type Report struct {
	ID          string
	Title       string
	GeneratedAt time.Time

	Width       float64
	Height      float64
	Walls       []model.Wall
	AccessPoint *model.Point
	Boosters    []model.Booster

	Settings  model.Settings
	Coverage  engine.Coverage
	Suggested *model.Point // Placement search result, if one was run
}

// NewReport captures the current state of plan together with its coverage.
// suggested may be nil.
func NewReport(plan engine.Plan, settings model.Settings, cov engine.Coverage, suggested *model.Point) Report {
	r := Report{
		ID:          uuid.New().String(),
		Title:       "Wi-Fi Coverage Report",
		GeneratedAt: time.Now(),
		Width:       plan.Width(),
		Height:      plan.Height(),
		Walls:       plan.Walls(),
		Boosters:    plan.Boosters(),
		Settings:    settings,
		Coverage:    cov,
	}
	if ap, ok := plan.AccessPoint(); ok {
		r.AccessPoint = &ap
	}
	if suggested != nil {
		p := *suggested
		r.Suggested = &p
	}
	return r
}

// wallCounts returns the number of walls of each kind.
func (r Report) wallCounts() map[model.WallKind]int {
	counts := make(map[model.WallKind]int)
	for _, w := range r.Walls {
		counts[w.Kind]++
	}
	return counts
}

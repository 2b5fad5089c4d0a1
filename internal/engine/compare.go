package engine

import (
	"fmt"

	"github.com/piwi3910/wifiplan/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds the coverage figures for a single scenario.
type ComparisonResult struct {
	Scenario ComparisonScenario
	Stats    Stats
	MeanRSSI float64
	Quality  map[model.Quality]int
}

// CompareScenarios computes coverage for each scenario against the current
// plan and returns the results in scenario order. This enables side-by-side
// what-if tables for transmit power and band.
func (e *Engine) CompareScenarios(scenarios []ComparisonScenario) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		cov := e.ComputeCoverage(scenario.Settings.TxPowerDbm, scenario.Settings.Band)
		results = append(results, ComparisonResult{
			Scenario: scenario,
			Stats:    cov.Stats,
			MeanRSSI: cov.MeanRSSI(),
			Quality:  cov.QualityCounts(),
		})
	}

	return results
}

// PowerStepDb is the transmit power delta used by the default scenarios.
const PowerStepDb = 3.0

// BuildDefaultScenarios generates comparison scenarios around the current
// settings: the other band, and transmit power raised and lowered by
// PowerStepDb.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	// Scenario: the other band
	otherBand := base
	if base.Band == model.Band24GHz {
		otherBand.Band = model.Band5GHz
	} else {
		otherBand.Band = model.Band24GHz
	}
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("%s Band", otherBand.Band),
		Settings: otherBand,
	})

	louder := base
	louder.TxPowerDbm = base.TxPowerDbm + PowerStepDb
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Tx %.0f dBm (+%.0f dB)", louder.TxPowerDbm, PowerStepDb),
		Settings: louder,
	})

	quieter := base
	quieter.TxPowerDbm = base.TxPowerDbm - PowerStepDb
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Tx %.0f dBm (-%.0f dB)", quieter.TxPowerDbm, PowerStepDb),
		Settings: quieter,
	})

	return scenarios
}

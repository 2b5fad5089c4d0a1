package engine

import (
	"github.com/piwi3910/wifiplan/internal/geometry"
	"github.com/piwi3910/wifiplan/internal/model"
)

// Transmitter is a signal source with its radio parameters.
type Transmitter struct {
	Position model.Point
	PowerDbm float64
	Band     model.Band
}

// WallQuery finds the walls of a plan that may cross a straight segment.
type WallQuery interface {
	// Along returns, in ID order, every wall that may cross a-b. A wall it
	// leaves out does not cross the segment.
	Along(a, b model.Point) []model.Wall
}

// WallSlice is a WallQuery that returns all of its walls for any segment.
type WallSlice []model.Wall

// Along implements WallQuery.
func (ws WallSlice) Along(_, _ model.Point) []model.Wall {
	return ws
}

// Propagator estimates the received signal at target. walls answers for
// any segment of the plan, so a model may trace paths other than the one
// from the transmitter; boosters holds every booster of the plan.
type Propagator interface {
	RSSI(tx Transmitter, target model.Point, walls WallQuery, boosters []model.Booster) float64
}

// PropagatorFunc adapts a function to the Propagator interface.
type PropagatorFunc func(tx Transmitter, target model.Point, walls WallQuery, boosters []model.Booster) float64

// RSSI calls f.
func (f PropagatorFunc) RSSI(tx Transmitter, target model.Point, walls WallQuery, boosters []model.Booster) float64 {
	return f(tx, target, walls, boosters)
}

// DirectPath is the single source model: log-distance path loss plus the
// attenuation of every wall crossed. Boosters are ignored.
type DirectPath struct{}

// RSSI implements Propagator.
func (DirectPath) RSSI(tx Transmitter, target model.Point, walls WallQuery, _ []model.Booster) float64 {
	return geometry.EstimateSignal(tx.Position, tx.PowerDbm, tx.Band, target, walls.Along(tx.Position, target))
}

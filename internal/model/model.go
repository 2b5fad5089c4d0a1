package model

import (
	"strings"

	"github.com/pkg/errors"
)

// UnitsPerMeter is the fixed world scale: 20 world units equal one metre.
const UnitsPerMeter = 20.0

// Point represents a 2D coordinate in world units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// WallKind is the construction type of a wall segment.
type WallKind string

const (
	WallStandard WallKind = "standard" // Brick or drywall
	WallThick    WallKind = "thick"    // Concrete, load bearing
	WallWindow   WallKind = "window"   // Glass
	WallDoor     WallKind = "door"     // Wood
)

// wallAttenuation holds the fixed loss in dB for each wall kind.
var wallAttenuation = map[WallKind]float64{
	WallStandard: 12,
	WallThick:    25,
	WallWindow:   3,
	WallDoor:     6,
}

// Attenuation returns the signal loss in dB for a ray crossing this kind of wall.
// Unknown kinds attenuate nothing.
func (k WallKind) Attenuation() float64 {
	return wallAttenuation[k]
}

// Valid reports whether k is one of the known wall kinds.
func (k WallKind) Valid() bool {
	_, ok := wallAttenuation[k]
	return ok
}

// WallKinds returns all known wall kinds in a stable order.
func WallKinds() []WallKind {
	return []WallKind{WallStandard, WallThick, WallWindow, WallDoor}
}

// ErrUnknownWallKind is returned when a wall kind name is not recognized.
var ErrUnknownWallKind = errors.New("unknown wall kind")

// ParseWallKind converts a user supplied name into a WallKind. Besides the
// canonical names it accepts the drawing tool names "wall" and "wall_thick".
func ParseWallKind(s string) (WallKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "wall", "drywall", "brick", "":
		return WallStandard, nil
	case "thick", "wall_thick", "concrete":
		return WallThick, nil
	case "window", "glass":
		return WallWindow, nil
	case "door", "wood":
		return WallDoor, nil
	default:
		return "", errors.Wrapf(ErrUnknownWallKind, "%q", s)
	}
}

// WallID is the stable identity of a wall inside one floor plan. IDs are
// never reused, so two geometrically identical walls stay distinct.
type WallID uint64

// Wall is an immutable wall segment.
type Wall struct {
	ID    WallID   `json:"id"`
	Start Point    `json:"start"`
	End   Point    `json:"end"`
	Kind  WallKind `json:"kind"`
}

// Length returns the wall length in world units.
func (w Wall) Length() float64 {
	dx := w.End.X - w.Start.X
	dy := w.End.Y - w.Start.Y
	return hypot(dx, dy)
}

// BoosterID is the stable identity of a booster inside one floor plan.
type BoosterID uint64

// Booster is a signal repeater location. It is informational only and does
// not take part in the default propagation model.
type Booster struct {
	ID       BoosterID `json:"id"`
	Position Point     `json:"position"`
}

// Algorithm selects the access point placement search strategy.
type Algorithm string

const (
	AlgorithmGrid    Algorithm = "grid"    // Exhaustive coarse grid search (deterministic)
	AlgorithmGenetic Algorithm = "genetic" // Genetic algorithm over continuous positions
)

// Settings holds the transmit parameters and search choice for one run.
type Settings struct {
	TxPowerDbm float64   `json:"tx_power_dbm"`
	Band       Band      `json:"band"`
	Algorithm  Algorithm `json:"algorithm"`
}

// DefaultSettings returns the settings a new session starts with.
func DefaultSettings() Settings {
	return Settings{
		TxPowerDbm: 20,
		Band:       Band24GHz,
		Algorithm:  AlgorithmGrid,
	}
}

// Package geometry holds the pure functions of the propagation model:
// distances, segment crossing tests and the received signal estimate.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/piwi3910/wifiplan/internal/model"
)

// Propagation model constants.
const (
	MinDistanceMeters = 0.1  // Closer than this the transmitter power is returned as is
	PathLossExponent  = 2.0  // Free space; walls account for indoor losses
	RefLoss24GHz      = 40.0 // Reference loss at 1 m for 2.4 GHz (dB)
	RefLoss5GHz       = 47.0 // Reference loss at 1 m for 5 GHz (dB)
)

// Distance returns the Euclidean distance between two points.
func Distance(p1, p2 model.Point) float64 {
	return math.Hypot(p1.X-p2.X, p1.Y-p2.Y)
}

// SegmentIntersection returns the crossing point of segments p1-p2 and q1-q2.
// Parallel and collinear segments never intersect, and both segment
// parameters must lie strictly inside (0,1): touching at an endpoint is not
// a crossing.
func SegmentIntersection(p1, p2, q1, q2 model.Point) (model.Point, bool) {
	det := (p2.X-p1.X)*(q2.Y-q1.Y) - (q2.X-q1.X)*(p2.Y-p1.Y)
	if det == 0 {
		return model.Point{}, false
	}

	lambda := ((q2.Y-q1.Y)*(q2.X-p1.X) + (q1.X-q2.X)*(q2.Y-p1.Y)) / det
	gamma := ((p1.Y-p2.Y)*(q2.X-p1.X) + (p2.X-p1.X)*(q2.Y-p1.Y)) / det

	if 0 < lambda && lambda < 1 && 0 < gamma && gamma < 1 {
		return model.Point{
			X: p1.X + lambda*(p2.X-p1.X),
			Y: p1.Y + lambda*(p2.Y-p1.Y),
		}, true
	}
	return model.Point{}, false
}

// DistanceToSegment returns the distance from p to the closest point of the
// segment a-b. The projection is clamped to the segment, so points beyond an
// end measure to that endpoint.
func DistanceToSegment(p, a, b model.Point) float64 {
	return planar.DistanceFromSegment(toOrb(a), toOrb(b), toOrb(p))
}

// ReferenceLoss returns the path loss at one metre for the band.
func ReferenceLoss(band model.Band) float64 {
	switch band {
	case model.Band5GHz:
		return RefLoss5GHz
	default:
		return RefLoss24GHz
	}
}

// PathLoss returns the one-slope path loss in dB over meters.
func PathLoss(meters float64, band model.Band) float64 {
	return ReferenceLoss(band) + 10*PathLossExponent*math.Log10(meters)
}

// WallLoss sums the attenuation of every wall the straight line from tx to
// target crosses.
func WallLoss(tx, target model.Point, walls []model.Wall) float64 {
	var loss float64
	for _, w := range walls {
		if _, ok := SegmentIntersection(tx, target, w.Start, w.End); ok {
			loss += w.Kind.Attenuation()
		}
	}
	return loss
}

// EstimateSignal returns the received signal strength in dBm at target for a
// transmitter at tx. The result is clamped to [-100, txPowerDbm].
func EstimateSignal(tx model.Point, txPowerDbm float64, band model.Band, target model.Point, walls []model.Wall) float64 {
	meters := Distance(tx, target) / model.UnitsPerMeter
	if meters < MinDistanceMeters {
		return txPowerDbm
	}

	rssi := txPowerDbm - PathLoss(meters, band) - WallLoss(tx, target, walls)
	return math.Max(model.NoSignalDbm, math.Min(rssi, txPowerDbm))
}

// Bounds returns the bounding box of a set of points.
func Bounds(points ...model.Point) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}
	}
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = toOrb(p)
	}
	return mp.Bound()
}

func toOrb(p model.Point) orb.Point {
	return orb.Point{p.X, p.Y}
}

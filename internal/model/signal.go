package model

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Band is the radio band of the access point. Only the two Wi-Fi bands the
// propagation model has reference losses for are representable.
type Band int

const (
	Band24GHz Band = iota
	Band5GHz
)

func (b Band) String() string {
	switch b {
	case Band5GHz:
		return "5GHz"
	default:
		return "2.4GHz"
	}
}

// GHz returns the nominal carrier frequency of the band.
func (b Band) GHz() float64 {
	if b == Band5GHz {
		return 5.0
	}
	return 2.4
}

// ErrUnknownBand is returned when a frequency does not name a supported band.
var ErrUnknownBand = errors.New("unsupported frequency band")

// ParseBand validates a frequency given as text ("2.4", "5", "5.0", "2.4GHz",
// "5 ghz"). Anything other than the two supported bands is rejected instead
// of being silently treated as 5 GHz.
func ParseBand(s string) (Band, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimSuffix(v, "ghz")
	v = strings.TrimSpace(v)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrUnknownBand, "%q", s)
	}
	return BandFromGHz(f)
}

// BandFromGHz maps a numeric frequency onto a band.
func BandFromGHz(f float64) (Band, error) {
	switch {
	case math.Abs(f-2.4) < 1e-9:
		return Band24GHz, nil
	case math.Abs(f-5.0) < 1e-9:
		return Band5GHz, nil
	default:
		return 0, errors.Wrapf(ErrUnknownBand, "%g GHz", f)
	}
}

// MarshalText encodes the band as its frequency in GHz.
func (b Band) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatFloat(b.GHz(), 'f', 1, 64)), nil
}

// UnmarshalText decodes a band written by MarshalText or typed by a user.
func (b *Band) UnmarshalText(text []byte) error {
	parsed, err := ParseBand(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Signal thresholds in dBm.
const (
	NoSignalDbm  = -100.0 // Floor of the propagation model, "no signal"
	UsableDbm    = -75.0  // Cells above this count as covered
	ExcellentDbm = -70.0
	FairDbm      = -80.0
)

// Quality buckets an RSSI reading.
type Quality int

const (
	QualityPoor Quality = iota
	QualityFair
	QualityExcellent
)

func (q Quality) String() string {
	switch q {
	case QualityExcellent:
		return "Excellent"
	case QualityFair:
		return "Fair"
	default:
		return "Poor"
	}
}

// ClassifyRSSI returns the quality bucket for rssi: excellent above -70 dBm,
// fair above -80 dBm, poor otherwise.
func ClassifyRSSI(rssi float64) Quality {
	switch {
	case rssi > ExcellentDbm:
		return QualityExcellent
	case rssi > FairDbm:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Usable reports whether rssi is above the coverage threshold.
func Usable(rssi float64) bool {
	return rssi > UsableDbm
}

func hypot(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}

package export

import (
	"math"

	"github.com/piwi3910/wifiplan/internal/model"
)

// Heatmap colour ramp bounds in dBm. Values outside are clamped.
const (
	heatMinDbm = -90.0
	heatMaxDbm = -30.0
)

// rgb is an 8-bit colour.
type rgb struct {
	R, G, B int
}

// wallColors mirrors the colours the drawing tools use for each wall kind.
var wallColors = map[model.WallKind]rgb{
	model.WallStandard: {R: 60, G: 60, B: 60},
	model.WallThick:    {R: 20, G: 20, B: 20},
	model.WallWindow:   {R: 80, G: 170, B: 230},
	model.WallDoor:     {R: 150, G: 100, B: 50},
}

// wallWidths is the stroke width in mm for each wall kind.
var wallWidths = map[model.WallKind]float64{
	model.WallStandard: 0.6,
	model.WallThick:    1.2,
	model.WallWindow:   0.4,
	model.WallDoor:     0.5,
}

// heatColor maps an RSSI reading onto the heatmap ramp: blue for weak
// signal through green to red for strong signal.
func heatColor(rssi float64) rgb {
	v := math.Max(heatMinDbm, math.Min(heatMaxDbm, rssi))
	norm := (v - heatMinDbm) / (heatMaxDbm - heatMinDbm)
	hue := (1 - norm) * 240
	return hslToRGB(hue, 1, 0.5)
}

// hslToRGB converts hue in degrees and saturation, lightness in [0,1].
func hslToRGB(h, s, l float64) rgb {
	c := (1 - math.Abs(2*l-1)) * s
	hp := math.Mod(h, 360) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := l - c/2
	return rgb{
		R: int(math.Round((r + m) * 255)),
		G: int(math.Round((g + m) * 255)),
		B: int(math.Round((b + m) * 255)),
	}
}

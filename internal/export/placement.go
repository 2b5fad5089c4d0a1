package export

import (
	"bytes"
	"encoding/json"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/wifiplan/internal/model"
)

// PlacementInfo holds the data encoded into the report's QR code so an
// installer can scan where the access point goes.
type PlacementInfo struct {
	ReportID    string  `json:"report"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	XMeters     float64 `json:"x_m"`
	YMeters     float64 `json:"y_m"`
	TxPowerDbm  float64 `json:"tx_power_dbm"`
	Band        string  `json:"band"`
	CoveragePct int     `json:"coverage_pct"`
	Suggested   bool    `json:"suggested"`
}

// qrSize is the printed QR code edge in mm.
const qrSize = 40.0

// qrPixels is the edge of the generated PNG.
const qrPixels = 256

// ErrNoPlacement is returned when a report has neither a suggested nor a
// current access point position.
var ErrNoPlacement = errors.New("report has no access point placement")

// CollectPlacementInfo builds the QR payload for r. The suggested position
// wins over the current access point.
func CollectPlacementInfo(r Report) (PlacementInfo, error) {
	var pos model.Point
	suggested := false
	switch {
	case r.Suggested != nil:
		pos = *r.Suggested
		suggested = true
	case r.AccessPoint != nil:
		pos = *r.AccessPoint
	default:
		return PlacementInfo{}, ErrNoPlacement
	}
	return PlacementInfo{
		ReportID:    r.ID,
		X:           pos.X,
		Y:           pos.Y,
		XMeters:     pos.X / model.UnitsPerMeter,
		YMeters:     pos.Y / model.UnitsPerMeter,
		TxPowerDbm:  r.Settings.TxPowerDbm,
		Band:        r.Settings.Band.String(),
		CoveragePct: r.Coverage.Stats.CoveragePct,
		Suggested:   suggested,
	}, nil
}

// EncodePlacementQR renders info as JSON inside a PNG QR code.
func EncodePlacementQR(info PlacementInfo) ([]byte, error) {
	data, err := json.Marshal(info)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal placement info")
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, qrPixels)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate QR code")
	}
	return png, nil
}

// ExportPlacementQR writes the placement QR code of r to path as a PNG.
func ExportPlacementQR(path string, r Report) error {
	info, err := CollectPlacementInfo(r)
	if err != nil {
		return err
	}
	data, err := json.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "failed to marshal placement info")
	}
	if err := qrcode.WriteFile(string(data), qrcode.Medium, qrPixels, path); err != nil {
		return errors.Wrapf(err, "failed to write QR code %s", path)
	}
	return nil
}

// renderPlacementQR draws the placement QR code with a caption at (x, y).
// It draws nothing when the report has no placement.
func renderPlacementQR(pdf *fpdf.Fpdf, x, y float64, r Report) error {
	info, err := CollectPlacementInfo(r)
	if errors.Is(err, ErrNoPlacement) {
		return nil
	}
	if err != nil {
		return err
	}
	png, err := EncodePlacementQR(info)
	if err != nil {
		return err
	}

	imgName := "qr_" + r.ID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x, y, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	caption := "Current AP"
	if info.Suggested {
		caption = "Suggested AP"
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(x, y+qrSize+1)
	pdf.CellFormat(qrSize, 4, caption, "", 0, "C", false, 0, "")
	pdf.SetXY(x, y+qrSize+5)
	pdf.CellFormat(qrSize, 4, formatMeters(info.XMeters, info.YMeters), "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

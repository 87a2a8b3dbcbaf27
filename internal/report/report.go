// Package report renders batch simulations as spreadsheet or PDF line charts.
package report

import (
	"errors"
	"fmt"
	"strings"

	"sensor_simulator/internal/service"
)

// Formats accepted by Render.
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

var (
	ErrUnknownFormat = errors.New("unknown report format")
	ErrEmptySeries   = errors.New("series has no points")
)

// chart describes one time series to plot.
type chart struct {
	Title  string
	Unit   string
	Values []float64
	Min    float64
	Max    float64
}

// charts returns the non-empty series in display order: vibration, alert, sound.
func charts(s service.Series) []chart {
	all := []chart{
		{Title: "Vibration", Unit: "state", Values: s.Vibration, Min: 0, Max: 1},
		{Title: "Alert", Unit: "state", Values: s.Alert, Min: 0, Max: 1},
		{Title: "Sound", Unit: "dB", Values: s.Sound, Min: 70, Max: 130},
	}
	out := all[:0]
	for _, c := range all {
		if len(c.Values) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Render dispatches on format and returns the encoded file with its content type.
func Render(format string, s service.Series) ([]byte, string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatXLSX:
		b, err := XLSX(s)
		return b, ContentTypeXLSX, err
	case FormatPDF:
		b, err := PDF(s)
		return b, ContentTypePDF, err
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (string, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, "."+FormatXLSX):
		return FormatXLSX, nil
	case strings.HasSuffix(lower, "."+FormatPDF):
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

package report

import (
	"bytes"
	"fmt"

	"sensor_simulator/internal/service"

	"github.com/jung-kurt/gofpdf"
)

const (
	ContentTypePDF = "application/pdf"

	pageMargin  = 12.0 // mm
	chartHeight = 52.0 // mm
	chartGap    = 10.0 // mm
	labelWidth  = 14.0 // mm, room for axis labels
)

// PDF draws one landscape page with a line chart per series, stacked vertically.
func PDF(s service.Series) ([]byte, error) {
	cs := charts(s)
	if len(cs) == 0 {
		return nil, ErrEmptySeries
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 6, "Simulated sensor series")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 5, fmt.Sprintf("Ticks: %d   Seed: %d", s.Ticks, s.Seed))

	top := pageMargin + 16
	width := pageW - 2*pageMargin - labelWidth
	for i, c := range cs {
		y := top + float64(i)*(chartHeight+chartGap)
		drawChart(pdf, c, pageMargin+labelWidth, y, width, chartHeight)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawChart(pdf *gofpdf.Fpdf, c chart, x, y, w, h float64) {
	pdf.SetFont("Arial", "B", 9)
	pdf.Text(x, y-1.5, fmt.Sprintf("%s (%s)", c.Title, c.Unit))

	pdf.SetDrawColor(160, 160, 160)
	pdf.SetLineWidth(0.2)
	pdf.Rect(x, y, w, h, "D")

	pdf.SetFont("Arial", "", 7)
	pdf.Text(x-labelWidth+1, y+2.5, fmt.Sprintf("%g", c.Max))
	pdf.Text(x-labelWidth+1, y+h, fmt.Sprintf("%g", c.Min))
	pdf.Text(x, y+h+3.5, "1")
	pdf.Text(x+w-8, y+h+3.5, fmt.Sprintf("%d", len(c.Values)))

	n := len(c.Values)
	if n == 0 {
		return
	}
	span := c.Max - c.Min
	px := func(i int) float64 {
		if n == 1 {
			return x
		}
		return x + w*float64(i)/float64(n-1)
	}
	py := func(v float64) float64 {
		v = min(max(v, c.Min), c.Max)
		return y + h - h*(v-c.Min)/span
	}

	pdf.SetDrawColor(31, 119, 180)
	pdf.SetLineWidth(0.25)
	pdf.MoveTo(px(0), py(c.Values[0]))
	for i := 1; i < n; i++ {
		pdf.LineTo(px(i), py(c.Values[i]))
	}
	pdf.DrawPath("D")
}

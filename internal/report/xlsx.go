package report

import (
	"bytes"
	"fmt"

	"sensor_simulator/internal/service"

	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dataSheet   = "data"
	chartSheet  = "charts"
	chartRowGap = 20 // rows between chart anchors
)

// XLSX writes one data sheet (tick plus one column per series) and a chart sheet
// with one line chart per series.
func XLSX(s service.Series) ([]byte, error) {
	cs := charts(s)
	if len(cs) == 0 {
		return nil, ErrEmptySeries
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	f.SetSheetName("Sheet1", dataSheet)
	if _, err := f.NewSheet(chartSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(dataSheet, "A1", "Tick")
	rows := 0
	for i, c := range cs {
		col, err := excelize.ColumnNumberToName(i + 2)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(dataSheet, col+"1", fmt.Sprintf("%s (%s)", c.Title, c.Unit))
		for j, v := range c.Values {
			_ = f.SetCellValue(dataSheet, fmt.Sprintf("%s%d", col, j+2), v)
		}
		rows = max(rows, len(c.Values))
	}
	for j := 0; j < rows; j++ {
		_ = f.SetCellValue(dataSheet, fmt.Sprintf("A%d", j+2), j+1)
	}
	_ = f.SetCellValue(chartSheet, "A1", fmt.Sprintf("Ticks: %d  Seed: %d", s.Ticks, s.Seed))

	for i, c := range cs {
		col, _ := excelize.ColumnNumberToName(i + 2)
		last := len(c.Values) + 1
		anchor := fmt.Sprintf("B%d", 3+i*chartRowGap)
		err := f.AddChart(chartSheet, anchor, &excelize.Chart{
			Type: excelize.Line,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!$%s$1", dataSheet, col),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", dataSheet, last),
				Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", dataSheet, col, col, last),
			}},
			Title:  []excelize.RichTextRun{{Text: c.Title}},
			Legend: excelize.ChartLegend{Position: "none"},
		})
		if err != nil {
			return nil, fmt.Errorf("add %s chart: %w", c.Title, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

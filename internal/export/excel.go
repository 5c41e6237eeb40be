package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/agewise-dev/agewise/internal/report"
)

const sheetName = "Aged Receivables"

const (
	currencyFormat   = `"$"#,##0.00`
	percentageFormat = `0.00%`
)

// excelStyles holds the style ids resolved against one workbook.
type excelStyles struct {
	title    int
	subtitle int
	header   int
	text     int
	currency int
	comments int
	total    int
	totalCur int
	percent  int
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles
	var err error

	thin := []excelize.Border{
		{Type: "left", Style: 1},
		{Type: "right", Style: 1},
		{Type: "top", Style: 1},
		{Type: "bottom", Style: 1},
	}

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}
	if s.subtitle, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thin,
	}); err != nil {
		return s, err
	}
	if s.text, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    thin,
	}); err != nil {
		return s, err
	}
	currency := currencyFormat
	if s.currency, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &currency,
		Alignment:    &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:       thin,
	}); err != nil {
		return s, err
	}
	if s.comments, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
		Border:    thin,
	}); err != nil {
		return s, err
	}
	if s.total, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    thin,
	}); err != nil {
		return s, err
	}
	if s.totalCur, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &currency,
		Alignment:    &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:       thin,
	}); err != nil {
		return s, err
	}
	percentage := percentageFormat
	if s.percent, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &percentage,
		Alignment:    &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:       thin,
	}); err != nil {
		return s, err
	}
	return s, nil
}

// WriteExcel renders the table as a styled workbook: title block, header
// row, one row per contact with the itemized breakdown, then totals and
// percentage rows. Returns the written file path, which carries a timestamp
// so repeated runs never clobber each other.
func WriteExcel(res *report.Result, table *Table, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetName)

	styles, err := newExcelStyles(f)
	if err != nil {
		return "", fmt.Errorf("building styles: %w", err)
	}

	headers := []string{"Business Unit", "Company", "Contact"}
	headers = append(headers, table.BucketNames...)
	headers = append(headers, "Total", "Comments", "System Comments")
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return "", err
	}

	// Title block.
	writeMerged(f, 1, lastCol, "Aged Receivables Summary", styles.title)
	writeMerged(f, 2, lastCol, "As at "+res.ReportDate.Format("02 January 2006"), styles.subtitle)
	writeMerged(f, 3, lastCol, "Ageing by due date", styles.subtitle)

	headerRow := 4
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, styles.header)
	}
	setColumnWidths(f, table.BucketNames)

	rows := make([]Row, 0, len(table.Rows))
	for _, row := range table.Rows {
		if row.hasAmounts() {
			rows = append(rows, row)
		}
	}

	bucketTotals := make(map[string]float64, len(table.BucketNames))
	var grandTotal float64

	rowNum := headerRow
	for _, row := range rows {
		rowNum++
		cells := []any{row.BusinessUnit, row.Company, row.Contact}
		for _, name := range table.BucketNames {
			amount := row.Buckets[name].InexactFloat64()
			bucketTotals[name] += amount
			cells = append(cells, amount)
		}
		total := row.Total.InexactFloat64()
		grandTotal += total
		cells = append(cells, total, "", row.Commentary)

		for i, v := range cells {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
			f.SetCellValue(sheetName, cell, v)
			switch {
			case i >= 3 && i < 3+len(table.BucketNames)+1:
				f.SetCellStyle(sheetName, cell, cell, styles.currency)
			case i == len(cells)-1:
				f.SetCellStyle(sheetName, cell, cell, styles.comments)
			default:
				f.SetCellStyle(sheetName, cell, cell, styles.text)
			}
		}
		if lines := countLines(row.Commentary); lines > 4 {
			f.SetRowHeight(sheetName, rowNum, min(float64(lines)*15, 120))
		}
	}

	if len(rows) > 0 {
		rowNum = writeTotalsRow(f, styles, table, rowNum, bucketTotals, grandTotal)
		rowNum = writePercentageRow(f, styles, table, rowNum, bucketTotals, grandTotal)
	}

	filterRef := fmt.Sprintf("A%d:%s%d", headerRow, lastCol, rowNum)
	if err := f.AutoFilter(sheetName, filterRef, nil); err != nil {
		return "", fmt.Errorf("setting auto filter: %w", err)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: fmt.Sprintf("A%d", headerRow+1),
		ActivePane:  "bottomLeft",
	}); err != nil {
		return "", fmt.Errorf("freezing panes: %w", err)
	}

	name := fmt.Sprintf("aged_receivables_report_%s.xlsx", time.Now().Format("20060102_150405"))
	path := filepath.Join(outputDir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving workbook: %w", err)
	}
	return path, nil
}

func writeMerged(f *excelize.File, row int, lastCol, value string, style int) {
	start := fmt.Sprintf("A%d", row)
	end := fmt.Sprintf("%s%d", lastCol, row)
	f.MergeCell(sheetName, start, end)
	f.SetCellValue(sheetName, start, value)
	f.SetCellStyle(sheetName, start, end, style)
}

func setColumnWidths(f *excelize.File, bucketNames []string) {
	widths := []float64{20, 25, 30}
	for range bucketNames {
		widths = append(widths, 15)
	}
	widths = append(widths, 15, 25, 60)
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, w)
	}
}

func writeTotalsRow(f *excelize.File, styles excelStyles, table *Table, rowNum int, bucketTotals map[string]float64, grandTotal float64) int {
	rowNum++
	cells := []any{"Total", "", ""}
	for _, name := range table.BucketNames {
		cells = append(cells, bucketTotals[name])
	}
	cells = append(cells, grandTotal, "", "")
	for i, v := range cells {
		cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
		f.SetCellValue(sheetName, cell, v)
		if i >= 3 && i < 3+len(table.BucketNames)+1 {
			f.SetCellStyle(sheetName, cell, cell, styles.totalCur)
		} else {
			f.SetCellStyle(sheetName, cell, cell, styles.total)
		}
	}
	return rowNum
}

func writePercentageRow(f *excelize.File, styles excelStyles, table *Table, rowNum int, bucketTotals map[string]float64, grandTotal float64) int {
	rowNum++
	cells := []any{"Percentage", "", ""}
	for _, name := range table.BucketNames {
		pct := 0.0
		if grandTotal != 0 {
			pct = bucketTotals[name] / grandTotal
		}
		cells = append(cells, pct)
	}
	cells = append(cells, 1.0, "", "")
	for i, v := range cells {
		cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
		f.SetCellValue(sheetName, cell, v)
		if i >= 3 && i < 3+len(table.BucketNames)+1 {
			f.SetCellStyle(sheetName, cell, cell, styles.percent)
		} else {
			f.SetCellStyle(sheetName, cell, cell, styles.total)
		}
	}
	return rowNum
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}

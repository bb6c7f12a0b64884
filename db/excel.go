package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"feetracker-go/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const ExportSheetName = "Fee Records"

// Header aliases accepted on upload, lower-cased
var columnAliases = map[string]string{
	"student id":     "Student ID",
	"id":             "Student ID",
	"roll no":        "Student ID",
	"student name":   "Student Name",
	"name":           "Student Name",
	"father name":    "Father Name",
	"father's name":  "Father Name",
	"father":         "Father Name",
	"mobile":         "Mobile Number",
	"mobile number":  "Mobile Number",
	"phone":          "Mobile Number",
	"phone number":   "Mobile Number",
	"contact":        "Mobile Number",
	"month":          "Month",
	"fee status":     "Fee Status",
	"status":         "Fee Status",
	"receipt number": "Receipt Number",
	"receipt":        "Receipt Number",
	"receipt no":     "Receipt Number",
}

var (
	abbrMonthPattern    = regexp.MustCompile(`^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[-/ ]?(\d{2,4})$`)
	fullMonthPattern    = regexp.MustCompile(`^(january|february|march|april|may|june|july|august|september|october|november|december)\s*(\d{2,4})$`)
	numericMonthPattern = regexp.MustCompile(`^(\d{1,2})[-/](\d{2,4})$`)
	receiptInParens     = regexp.MustCompile(`\(([^)]+)\)`)
)

// AllowedUpload reports whether filename has a spreadsheet extension
func AllowedUpload(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	switch strings.ToLower(filename[i+1:]) {
	case "xlsx", "xls":
		return true
	}
	return false
}

// --- Import ---

// ParseRecordsFromExcel reads the first sheet of a workbook. Sheets with a
// Month, Fee Status or Receipt Number column are read one record per row;
// any other sheet is treated as one row per student with one column per
// month.
func ParseRecordsFromExcel(file io.Reader) ([]models.Record, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			zap.S().Warnf("Error closing excel file: %v", err)
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("sheet is empty")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	if isVerticalLayout(header) {
		return parseVertical(header, rows[1:]), nil
	}
	return parseHorizontal(header, rows[1:]), nil
}

func isVerticalLayout(header []string) bool {
	for _, h := range header {
		switch strings.ToLower(h) {
		case "month", "fee status", "receipt number":
			return true
		}
	}
	return false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseVertical(header []string, rows [][]string) []models.Record {
	col := make(map[string]int)
	for i, h := range header {
		if canonical, ok := columnAliases[strings.ToLower(h)]; ok {
			if _, dup := col[canonical]; !dup {
				col[canonical] = i
			}
		}
	}
	at := func(row []string, name string) string {
		i, ok := col[name]
		if !ok {
			return ""
		}
		return cell(row, i)
	}

	records := make([]models.Record, 0, len(rows))
	for i, row := range rows {
		r := models.Record{
			StudentID:     at(row, "Student ID"),
			StudentName:   at(row, "Student Name"),
			FatherName:    at(row, "Father Name"),
			MobileNumber:  at(row, "Mobile Number"),
			Month:         NormalizeMonthLabel(at(row, "Month")),
			FeeStatus:     at(row, "Fee Status"),
			ReceiptNumber: at(row, "Receipt Number"),
		}
		if r.StudentName == "" && r.Month == "" {
			zap.S().Debugf("Skipping row %d with no name or month", i+2)
			continue
		}
		if r.FeeStatus == "" {
			r.FeeStatus = models.StatusNotPaid
		}
		records = append(records, r)
	}
	return records
}

func parseHorizontal(header []string, rows [][]string) []models.Record {
	nameCol, fatherCol := -1, -1
	var monthCols []int
	for i, h := range header {
		lower := strings.ToLower(h)
		switch {
		case isMonthHeader(lower):
			monthCols = append(monthCols, i)
		case strings.Contains(lower, "father"):
			if fatherCol < 0 {
				fatherCol = i
			}
		case strings.Contains(lower, "name"):
			if nameCol < 0 {
				nameCol = i
			}
		}
	}

	var records []models.Record
	for _, row := range rows {
		name, father := cell(row, nameCol), cell(row, fatherCol)
		if name == "" {
			continue
		}
		for _, mc := range monthCols {
			value := cell(row, mc)
			// "-" marks a month the student has no record for
			if value == "-" {
				continue
			}
			status, receipt := parseStatusCell(value)
			records = append(records, models.Record{
				StudentName:   name,
				FatherName:    father,
				Month:         NormalizeMonthLabel(header[mc]),
				FeeStatus:     status,
				ReceiptNumber: receipt,
			})
		}
	}
	return records
}

func isMonthHeader(lower string) bool {
	return abbrMonthPattern.MatchString(lower) ||
		fullMonthPattern.MatchString(lower) ||
		numericMonthPattern.MatchString(lower)
}

// parseStatusCell reads "Paid (RCP-011-JAN26)", "Paid" or anything else as unpaid
func parseStatusCell(value string) (status, receipt string) {
	if !strings.HasPrefix(strings.ToLower(value), "paid") {
		return models.StatusNotPaid, ""
	}
	if m := receiptInParens.FindStringSubmatch(value); m != nil {
		receipt = strings.TrimSpace(m[1])
	}
	return models.StatusPaid, receipt
}

// NormalizeMonthLabel turns "Jan-26", "jan/2026", "1-26" or "january 2026"
// into "January 2026". Dates are reduced to their month. Anything else is
// returned trimmed.
func NormalizeMonthLabel(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)

	if m := abbrMonthPattern.FindStringSubmatch(lower); m != nil {
		for _, name := range models.MonthNames {
			if strings.HasPrefix(strings.ToLower(name), m[1]) {
				return name + " " + fullYear(m[2])
			}
		}
	}
	if m := fullMonthPattern.FindStringSubmatch(lower); m != nil {
		return strings.ToUpper(m[1][:1]) + m[1][1:] + " " + fullYear(m[2])
	}
	if m := numericMonthPattern.FindStringSubmatch(lower); m != nil {
		var idx int
		if _, err := fmt.Sscanf(m[1], "%d", &idx); err == nil && idx >= 1 && idx <= 12 {
			return models.MonthNames[idx-1] + " " + fullYear(m[2])
		}
	}
	for _, layout := range []string{"2006-01-02", "01-02-06", "1/2/06", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("January 2006")
		}
	}
	return s
}

func fullYear(y string) string {
	if len(y) == 2 {
		return "20" + y
	}
	return y
}

// ImportRecordsFromExcel parses a workbook and replaces all stored records
// with its contents.
func (s *RedisService) ImportRecordsFromExcel(ctx context.Context, file io.Reader) (int, error) {
	records, err := ParseRecordsFromExcel(file)
	if err != nil {
		return 0, err
	}
	return s.ReplaceAll(ctx, records)
}

// --- Export ---

// ExportFilter selects which records an export includes
func ExportFilter(records []models.Record, filter string) []models.Record {
	switch strings.ToLower(filter) {
	case "paid":
		return FilterRecords(records, SearchFilter{Status: "paid"})
	case "unpaid":
		out := make([]models.Record, 0, len(records))
		for _, r := range records {
			if strings.TrimSpace(r.FeeStatus) == "" || models.IsUnpaidStatus(r.FeeStatus) {
				out = append(out, r)
			}
		}
		return out
	}
	return records
}

type pivotRow struct {
	name, father string
	months       map[string]string
}

// statusCell is the inverse of parseStatusCell
func statusCell(r models.Record) string {
	switch {
	case r.IsPaid() && r.ReceiptNumber != "":
		return "Paid (" + r.ReceiptNumber + ")"
	case r.IsPaid():
		return "Paid"
	}
	return "Not Paid"
}

// BuildExportWorkbook pivots records into one row per student and one
// column per month, newest month first, and styles paid and unpaid cells.
func BuildExportWorkbook(records []models.Record) (*bytes.Buffer, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	index := make(map[string]int)
	var students []pivotRow
	var months []string
	seenMonth := make(map[string]bool)
	for _, r := range records {
		key := r.Key()
		i, ok := index[key]
		if !ok {
			i = len(students)
			index[key] = i
			students = append(students, pivotRow{name: r.StudentName, father: r.FatherName, months: map[string]string{}})
		}
		students[i].months[r.Month] = statusCell(r)
		if !seenMonth[r.Month] {
			seenMonth[r.Month] = true
			months = append(months, r.Month)
		}
	}
	models.SortMonthsNewestFirst(months)
	sort.SliceStable(students, func(i, j int) bool { return students[i].name < students[j].name })

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			zap.S().Warnf("Error closing export workbook: %v", err)
		}
	}()
	if err := f.SetSheetName(f.GetSheetName(0), ExportSheetName); err != nil {
		return nil, fmt.Errorf("failed to name export sheet: %w", err)
	}

	styles, err := newExportStyles(f)
	if err != nil {
		return nil, err
	}

	header := append([]string{"Student Name", "Father Name"}, months...)
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(ExportSheetName, "A1", &headerRow); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(ExportSheetName, "A1", lastHeader, styles.header); err != nil {
		return nil, fmt.Errorf("failed to style export header: %w", err)
	}

	for ri, st := range students {
		rowNum := ri + 2
		values := make([]string, len(header))
		values[0], values[1] = st.name, st.father
		for mi, m := range months {
			v, ok := st.months[m]
			if !ok {
				v = "-"
			}
			values[mi+2] = v
		}
		for ci, v := range values {
			cellName, _ := excelize.CoordinatesToCellName(ci+1, rowNum)
			if err := f.SetCellValue(ExportSheetName, cellName, v); err != nil {
				return nil, fmt.Errorf("failed to write cell %s: %w", cellName, err)
			}
			style := styles.plain
			if ci >= 2 {
				switch {
				case strings.Contains(v, "Not Paid"):
					style = styles.unpaid
				case strings.Contains(v, "Paid"):
					style = styles.paid
				}
			}
			if err := f.SetCellStyle(ExportSheetName, cellName, cellName, style); err != nil {
				return nil, fmt.Errorf("failed to style cell %s: %w", cellName, err)
			}
			if len(v) > widths[ci] {
				widths[ci] = len(v)
			}
		}
	}

	for ci, w := range widths {
		colName, _ := excelize.ColumnNumberToName(ci + 1)
		width := float64(w + 2)
		if width > 30 {
			width = 30
		}
		if err := f.SetColWidth(ExportSheetName, colName, colName, width); err != nil {
			return nil, fmt.Errorf("failed to size column %s: %w", colName, err)
		}
	}
	if err := f.SetRowHeight(ExportSheetName, 1, 25); err != nil {
		return nil, fmt.Errorf("failed to size header row: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write export workbook: %w", err)
	}
	return buf, nil
}

type exportStyles struct {
	header, plain, paid, unpaid int
}

func newExportStyles(f *excelize.File) (exportStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}

	var s exportStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Border: border, Alignment: center, Fill: fill("4F46E5"),
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
	}); err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	if s.plain, err = f.NewStyle(&excelize.Style{Border: border, Alignment: center}); err != nil {
		return s, fmt.Errorf("failed to create cell style: %w", err)
	}
	if s.paid, err = f.NewStyle(&excelize.Style{
		Border: border, Alignment: center, Fill: fill("CCFFCC"),
		Font: &excelize.Font{Color: "006600"},
	}); err != nil {
		return s, fmt.Errorf("failed to create paid style: %w", err)
	}
	if s.unpaid, err = f.NewStyle(&excelize.Style{
		Border: border, Alignment: center, Fill: fill("FFCCCC"),
		Font: &excelize.Font{Bold: true, Color: "CC0000"},
	}); err != nil {
		return s, fmt.Errorf("failed to create unpaid style: %w", err)
	}
	return s, nil
}

// ExportRecordsToExcel builds the export workbook for the stored records
// selected by filter ("all", "paid" or "unpaid").
func (s *RedisService) ExportRecordsToExcel(ctx context.Context, filter string) (*bytes.Buffer, error) {
	records, err := s.AllRecords(ctx)
	if err != nil {
		return nil, err
	}
	return BuildExportWorkbook(ExportFilter(records, filter))
}

package db

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"feetracker-go/models"
)

func TestNormalizeMonthLabel(t *testing.T) {
	tests := map[string]string{
		"Jan-26":       "January 2026",
		"feb/2026":     "February 2026",
		"Sep 25":       "September 2025",
		"3-26":         "March 2026",
		"12/2025":      "December 2025",
		"january 2026": "January 2026",
		"2026-04-17":   "April 2026",
		" May 2026 ":   "May 2026",
		"Whenever":     "Whenever",
		"13-26":        "13-26",
	}
	for in, want := range tests {
		if got := NormalizeMonthLabel(in); got != want {
			t.Errorf("NormalizeMonthLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseStatusCell(t *testing.T) {
	tests := []struct {
		in, status, receipt string
	}{
		{"Paid (RCP-011-JAN26)", models.StatusPaid, "RCP-011-JAN26"},
		{"paid", models.StatusPaid, ""},
		{"Not Paid", models.StatusNotPaid, ""},
		{"", models.StatusNotPaid, ""},
	}
	for _, tt := range tests {
		status, receipt := parseStatusCell(tt.in)
		if status != tt.status || receipt != tt.receipt {
			t.Errorf("parseStatusCell(%q) = %q, %q", tt.in, status, receipt)
		}
	}
}

func TestAllowedUpload(t *testing.T) {
	for name, want := range map[string]bool{
		"fees.xlsx": true, "FEES.XLS": true, "fees.csv": false, "fees": false,
	} {
		if got := AllowedUpload(name); got != want {
			t.Errorf("AllowedUpload(%q) = %v", name, got)
		}
	}
}

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellName, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow(sheet, cellName, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func TestParseVerticalLayout(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Roll No", "Name", "Father's Name", "Phone", "Month", "Status", "Receipt"},
		{"VK001", "Aarav Patel", "Rajesh Patel", "981", "Jan-26", "Paid", "RCP-1"},
		{"VK002", "Priya Sharma", "Suresh Sharma", "982", "Feb-26", "", ""},
		{"", "", "", "", "", "", ""},
	})

	records, err := ParseRecordsFromExcel(buf)
	if err != nil {
		t.Fatalf("ParseRecordsFromExcel: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	first := records[0]
	if first.StudentID != "VK001" || first.MobileNumber != "981" || first.Month != "January 2026" || first.ReceiptNumber != "RCP-1" {
		t.Errorf("unexpected first record %+v", first)
	}
	if records[1].FeeStatus != models.StatusNotPaid {
		t.Errorf("empty status should default to Not Paid, got %q", records[1].FeeStatus)
	}
}

func TestParseHorizontalLayout(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Student Name", "Father Name", "Jan-26", "Feb-26"},
		{"Aarav Patel", "Rajesh Patel", "Paid (RCP-001-JAN26)", "Not Paid"},
		{"Priya Sharma", "Suresh Sharma", "-", "Paid"},
	})

	records, err := ParseRecordsFromExcel(buf)
	if err != nil {
		t.Fatalf("ParseRecordsFromExcel: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (dash cells skipped)", len(records))
	}
	if records[0].ReceiptNumber != "RCP-001-JAN26" || records[0].Month != "January 2026" {
		t.Errorf("unexpected record %+v", records[0])
	}
	if records[2].StudentName != "Priya Sharma" || records[2].Month != "February 2026" || !records[2].IsPaid() {
		t.Errorf("unexpected record %+v", records[2])
	}
}

func TestExportRoundTrip(t *testing.T) {
	in := fixture()
	buf, err := BuildExportWorkbook(in)
	if err != nil {
		t.Fatalf("BuildExportWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	rows, err := f.GetRows(ExportSheetName)
	f.Close()
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	wantHeader := []string{"Student Name", "Father Name", "February 2026", "January 2026", "December 2025"}
	for i, h := range wantHeader {
		if rows[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}

	out, err := ParseRecordsFromExcel(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ParseRecordsFromExcel: %v", err)
	}
	// pending comes back as not paid, missing months as no record
	if len(out) != len(in) {
		t.Fatalf("got %d records back, want %d", len(out), len(in))
	}
	for _, r := range out {
		if r.ReceiptNumber == "RCP-002-FEB26" && (r.StudentName != "Priya Sharma" || r.Month != "February 2026") {
			t.Errorf("receipt landed on wrong record %+v", r)
		}
	}
}

func TestExportFilterAndEmpty(t *testing.T) {
	if got := len(ExportFilter(fixture(), "paid")); got != 2 {
		t.Errorf("paid export has %d records, want 2", got)
	}
	if got := len(ExportFilter(fixture(), "unpaid")); got != 4 {
		t.Errorf("unpaid export has %d records, want 4", got)
	}
	if _, err := BuildExportWorkbook(nil); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

package db

import (
	"reflect"
	"testing"
	"time"

	"feetracker-go/models"
)

func fixture() []models.Record {
	return []models.Record{
		{StudentName: "Aarav Patel", FatherName: "Rajesh Patel", Month: "January 2026", FeeStatus: "Paid", ReceiptNumber: "RCP-001-JAN26"},
		{StudentName: "Aarav Patel", FatherName: "Rajesh Patel", Month: "February 2026", FeeStatus: "Not Paid"},
		{StudentName: "Priya Sharma", FatherName: "Suresh Sharma", Month: "January 2026", FeeStatus: "Pending"},
		{StudentName: "Priya Sharma", FatherName: "Suresh Sharma", Month: "December 2025", FeeStatus: "Not Paid"},
		{StudentName: "Priya Sharma", FatherName: "Suresh Sharma", Month: "February 2026", FeeStatus: "Paid", ReceiptNumber: "RCP-002-FEB26"},
		{StudentName: "amit Singh", FatherName: "Vikram Singh", Month: "January 2026", FeeStatus: "Not Paid"},
	}
}

func TestSearchFilter(t *testing.T) {
	records := fixture()
	tests := []struct {
		name   string
		filter SearchFilter
		want   int
	}{
		{"empty matches all", SearchFilter{}, 6},
		{"name substring", SearchFilter{Query: "aarav"}, 2},
		{"father substring", SearchFilter{Query: "suresh"}, 3},
		{"receipt in query", SearchFilter{Query: "rcp-002"}, 1},
		{"month", SearchFilter{Month: "january"}, 3},
		{"paid", SearchFilter{Status: "paid"}, 2},
		{"unpaid includes pending", SearchFilter{Status: "unpaid"}, 4},
		{"combined", SearchFilter{Query: "priya", Status: "unpaid", Month: "2026"}, 1},
		{"receipt field", SearchFilter{Receipt: "jan26"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(FilterRecords(records, tt.filter)); got != tt.want {
				t.Errorf("got %d records, want %d", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(fixture())
	if sum.Total != 6 || sum.Paid != 2 || sum.Unpaid != 4 {
		t.Errorf("unexpected counts %+v", sum)
	}
	want := []string{"February 2026", "January 2026", "December 2025"}
	if !reflect.DeepEqual(sum.Months, want) {
		t.Errorf("months = %v, want %v", sum.Months, want)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	if sum.Total != 0 || sum.Months == nil {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestProfileLookups(t *testing.T) {
	records := fixture()

	p := ProfileByKey(records, "Priya Sharma_Suresh Sharma")
	if p == nil {
		t.Fatal("expected a profile")
	}
	if p.Student.TotalMonths != 3 || p.Student.PaidMonths != 1 {
		t.Errorf("unexpected profile header %+v", p.Student)
	}
	if ProfileByKey(records, "Nobody_Here") != nil {
		t.Error("expected nil profile for unknown key")
	}

	byReceipt := ProfileByReceipt(records, "rcp-001-jan26")
	if byReceipt == nil || byReceipt.Student.Name != "Aarav Patel" || len(byReceipt.Records) != 2 {
		t.Errorf("unexpected receipt profile %+v", byReceipt)
	}
	if ProfileByReceipt(records, "RCP-404") != nil {
		t.Error("expected nil profile for unknown receipt")
	}
}

func TestUniqueStudents(t *testing.T) {
	students := UniqueStudents(fixture())
	if len(students) != 3 {
		t.Fatalf("got %d students, want 3", len(students))
	}
	var names []string
	for _, s := range students {
		names = append(names, s.Name)
	}
	want := []string{"Aarav Patel", "amit Singh", "Priya Sharma"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
	if students[0].Display != "Aarav Patel (F: Rajesh Patel)" {
		t.Errorf("display = %q", students[0].Display)
	}
}

func TestDefaulters(t *testing.T) {
	list := Defaulters(fixture(), 2)
	if len(list) != 1 {
		t.Fatalf("got %d defaulters, want 1", len(list))
	}
	d := list[0]
	if d.StudentName != "Priya Sharma" || d.UnpaidCount != 2 {
		t.Errorf("unexpected defaulter %+v", d)
	}
	if !reflect.DeepEqual(d.UnpaidMonths, []string{"December 2025", "January 2026"}) {
		t.Errorf("unpaid months = %v", d.UnpaidMonths)
	}

	if got := len(Defaulters(fixture(), 1)); got != 3 {
		t.Errorf("min 1: got %d defaulters, want 3", got)
	}
}

func TestNextReceiptNumber(t *testing.T) {
	now := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		existing []string
		want     string
	}{
		{nil, "RCP-0326-001"},
		{[]string{"rcp-0326-004", "RCP-0326-002", "RCP-0226-099", "RCP-0326-abc"}, "RCP-0326-005"},
		{[]string{"RCP-001-JAN26"}, "RCP-0326-001"},
	}
	for _, tt := range tests {
		if got := NextReceiptNumber(tt.existing, now); got != tt.want {
			t.Errorf("NextReceiptNumber(%v) = %q, want %q", tt.existing, got, tt.want)
		}
	}
}

package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"feetracker-go/models"
)

func newTestService(t *testing.T) *RedisService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisService(client)
}

func TestAddRecordRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	r := models.Record{StudentName: "Aarav", FatherName: "Rajesh", Month: "January 2026", FeeStatus: "Paid", ReceiptNumber: "RCP-1"}
	if err := s.AddRecord(ctx, r); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	dup := r
	dup.Month = "january 2026"
	dup.ReceiptNumber = ""
	if err := s.AddRecord(ctx, dup); !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("same student and month: got %v, want ErrDuplicateEntry", err)
	}

	other := models.Record{StudentName: "Priya", FatherName: "Suresh", Month: "January 2026", FeeStatus: "Paid", ReceiptNumber: "rcp-1"}
	if err := s.AddRecord(ctx, other); !errors.Is(err, ErrDuplicateReceipt) {
		t.Errorf("reused receipt: got %v, want ErrDuplicateReceipt", err)
	}

	if err := s.AddRecord(ctx, models.Record{FatherName: "x"}); !errors.Is(err, ErrMissingFields) {
		t.Errorf("missing fields: got %v", err)
	}

	all, err := s.AllRecords(ctx)
	if err != nil {
		t.Fatalf("AllRecords: %v", err)
	}
	if len(all) != 1 || all[0].ID == "" {
		t.Fatalf("unexpected records %+v", all)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	if err := s.AddRecord(ctx, models.Record{StudentName: "Aarav", FatherName: "Rajesh", Month: "January 2026"}); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	if err := s.UpdateRecord(ctx, "Aarav", "Rajesh", "January 2026", "Paid", "RCP-9"); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	all, _ := s.AllRecords(ctx)
	if !all[0].IsPaid() || all[0].ReceiptNumber != "RCP-9" {
		t.Errorf("update not applied: %+v", all[0])
	}

	// unpaid drops the receipt and frees it for reuse
	if err := s.UpdateRecord(ctx, "Aarav", "Rajesh", "January 2026", "Not Paid", "RCP-9"); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	all, _ = s.AllRecords(ctx)
	if all[0].ReceiptNumber != "" {
		t.Errorf("receipt kept on unpaid record: %+v", all[0])
	}
	if err := s.AddRecord(ctx, models.Record{StudentName: "Priya", FatherName: "Suresh", Month: "January 2026", FeeStatus: "Paid", ReceiptNumber: "RCP-9"}); err != nil {
		t.Errorf("freed receipt should be reusable: %v", err)
	}

	if err := s.UpdateRecord(ctx, "Nobody", "", "January 2026", "Paid", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("update unknown: got %v", err)
	}

	if err := s.DeleteRecord(ctx, "Aarav", "Rajesh", "January 2026"); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if err := s.DeleteRecord(ctx, "Aarav", "Rajesh", "January 2026"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v", err)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestBulkAddSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	if err := s.AddRecord(ctx, models.Record{StudentName: "Aarav", FatherName: "Rajesh", Month: "January 2026"}); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	res, err := s.BulkAdd(ctx, []models.Record{
		{StudentName: "Aarav", FatherName: "Rajesh", Month: "January 2026"},
		{StudentName: "Aarav", FatherName: "Rajesh", Month: "February 2026"},
		{StudentName: "Aarav", FatherName: "Rajesh", Month: "February 2026"},
		{StudentName: "", Month: "March 2026"},
		{StudentName: "Priya", FatherName: "Suresh", Month: "February 2026", FeeStatus: "Paid", ReceiptNumber: "R-1"},
		{StudentName: "Rohan", FatherName: "Anil", Month: "February 2026", FeeStatus: "Paid", ReceiptNumber: "r-1"},
	})
	if err != nil {
		t.Fatalf("BulkAdd: %v", err)
	}
	if res.Added != 2 || res.Skipped != 4 || len(res.Errors) != 4 {
		t.Errorf("unexpected result %+v", res)
	}
	if n, _ := s.Count(ctx); n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestReplaceAllKeepsFirstOccurrence(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	if err := s.SeedIfEmpty(ctx); err != nil {
		t.Fatalf("SeedIfEmpty: %v", err)
	}

	n, err := s.ReplaceAll(ctx, []models.Record{
		{StudentName: "Aarav", FatherName: "Rajesh", Month: "January 2026", FeeStatus: "Paid", ReceiptNumber: "RCP-001-JAN26"},
		{StudentName: "Aarav", FatherName: "Rajesh", Month: "January 2026", FeeStatus: "Not Paid"},
	})
	if err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if n != 1 {
		t.Errorf("stored %d, want 1", n)
	}
	all, _ := s.AllRecords(ctx)
	if len(all) != 1 || !all[0].IsPaid() {
		t.Errorf("unexpected records %+v", all)
	}

	// old indexes are gone with the old records
	if err := s.AddRecord(ctx, models.Record{StudentName: "Aarav Patel", FatherName: "Rajesh Patel", Month: "January 2026"}); err != nil {
		t.Errorf("stale entry index blocked add: %v", err)
	}
}

func TestSeedIfEmptyOnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	if err := s.SeedIfEmpty(ctx); err != nil {
		t.Fatalf("SeedIfEmpty: %v", err)
	}
	if err := s.SeedIfEmpty(ctx); err != nil {
		t.Fatalf("SeedIfEmpty: %v", err)
	}
	if n, _ := s.Count(ctx); n != int64(len(SampleRecords())) {
		t.Errorf("count = %d, want %d", n, len(SampleRecords()))
	}
}

func TestUpdateStudentProfile(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	if err := s.SeedIfEmpty(ctx); err != nil {
		t.Fatalf("SeedIfEmpty: %v", err)
	}

	n, err := s.UpdateStudentProfile(ctx, models.ProfileUpdateRequest{
		OriginalName:   "Aarav Patel",
		OriginalFather: "Rajesh Patel",
		StudentID:      "VK100",
		StudentName:    "Aarav P.",
		FatherName:     "Rajesh Patel",
		MobileNumber:   "999",
	})
	if err != nil {
		t.Fatalf("UpdateStudentProfile: %v", err)
	}
	if n != 2 {
		t.Errorf("updated %d records, want 2", n)
	}

	all, _ := s.AllRecords(ctx)
	p := ProfileByKey(all, "Aarav P._Rajesh Patel")
	if p == nil || p.Records[0].StudentID != "VK100" || p.Records[0].MobileNumber != "999" {
		t.Errorf("profile not rewritten: %+v", p)
	}
	// the entry index follows the rename
	if err := s.UpdateRecord(ctx, "Aarav P.", "Rajesh Patel", "January 2026", "Not Paid", ""); err != nil {
		t.Errorf("update under new name: %v", err)
	}

	if _, err := s.UpdateStudentProfile(ctx, models.ProfileUpdateRequest{OriginalName: "Ghost", StudentName: "Ghost"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown student: got %v", err)
	}
}

func TestUpdateStudentProfileRejectsCollision(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	for _, r := range []models.Record{
		{StudentName: "Ravi", FatherName: "Mohan", Month: "January 2026"},
		{StudentName: "Ravi K", FatherName: "Mohan", Month: "January 2026"},
		{StudentName: "Ravi K", FatherName: "Mohan", Month: "February 2026"},
	} {
		if err := s.AddRecord(ctx, r); err != nil {
			t.Fatalf("AddRecord: %v", err)
		}
	}

	_, err := s.UpdateStudentProfile(ctx, models.ProfileUpdateRequest{
		OriginalName: "Ravi K", OriginalFather: "Mohan", StudentName: "Ravi", FatherName: "Mohan",
	})
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("rename onto an existing month: got %v, want ErrDuplicateEntry", err)
	}

	// nothing was rewritten and every record is still reachable
	all, _ := s.AllRecords(ctx)
	if p := ProfileByKey(all, "Ravi K_Mohan"); p == nil || len(p.Records) != 2 {
		t.Errorf("renamed records changed: %+v", p)
	}
	if err := s.DeleteRecord(ctx, "Ravi", "Mohan", "January 2026"); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if err := s.DeleteRecord(ctx, "Ravi K", "Mohan", "January 2026"); err != nil {
		t.Errorf("original record unreachable after rejected rename: %v", err)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}

	// a rename that only touches the student's own months is fine
	n, err := s.UpdateStudentProfile(ctx, models.ProfileUpdateRequest{
		OriginalName: "Ravi K", OriginalFather: "Mohan", StudentName: "Ravi K", FatherName: "Mohan", MobileNumber: "900",
	})
	if err != nil || n != 1 {
		t.Errorf("self rename: n=%d err=%v", n, err)
	}
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range []models.Record{
		{StudentName: "Aarav", FatherName: "Rajesh", Month: "March 2026", FeeStatus: "Paid", ReceiptNumber: "RCP-0326-007"},
		{StudentName: "Priya", FatherName: "Suresh", Month: "March 2026"},
	} {
		if err := s.AddRecord(ctx, r); err != nil {
			t.Fatalf("AddRecord: %v", err)
		}
	}

	receipt, err := s.MarkPaid(ctx, "Priya", "Suresh", "March 2026", now)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if receipt != "RCP-0326-008" {
		t.Errorf("receipt = %q, want RCP-0326-008", receipt)
	}
	all, _ := s.AllRecords(ctx)
	if p := ProfileByReceipt(all, receipt); p == nil || p.Student.Name != "Priya" {
		t.Errorf("receipt not stored on the record: %+v", p)
	}

	if _, err := s.MarkPaid(ctx, "Ghost", "", "March 2026", now); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown record: got %v", err)
	}
}

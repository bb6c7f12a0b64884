package view

import (
	"context"
	"fmt"
	"io"
	"strings"

	"feetracker-go/models"
)

// SubmitRecord validates a modal form locally and, when it passes, sends the
// matching mutation. Nothing is sent for an invalid form. On success the
// owning modal closes and the table, summary and open profile reload.
func (c *Controller) SubmitRecord(ctx context.Context, kind FormKind, f Form) error {
	f = f.trimmed()
	switch kind {
	case FormAdd:
		return c.submitAdd(ctx, f)
	case FormUpdate:
		return c.submitUpdate(ctx, f)
	case FormDelete:
		return c.submitDelete(ctx, f)
	case FormAddMonths:
		return c.submitAddMonths(ctx, f)
	case FormBulkExisting:
		return c.submitBulkExisting(ctx, f)
	case FormBulkNew:
		return c.submitBulkNew(ctx, f)
	case FormProfile:
		return c.submitProfile(ctx, f)
	}
	return fmt.Errorf("unknown form %q", kind)
}

func statusOrDefault(status string) string {
	if status == "" {
		return models.StatusNotPaid
	}
	return status
}

func (c *Controller) submitAdd(ctx context.Context, f Form) error {
	f.FeeStatus = statusOrDefault(f.FeeStatus)
	if err := check(c.validate, addInput{
		StudentName: f.StudentName,
		FatherName:  f.FatherName,
		Month:       f.Month,
		FeeStatus:   f.FeeStatus,
	}); err != nil {
		return c.reject(err)
	}

	req := models.RecordRequest{
		StudentID:     f.StudentID,
		StudentName:   f.StudentName,
		FatherName:    f.FatherName,
		MobileNumber:  f.MobileNumber,
		Month:         f.Month,
		FeeStatus:     f.FeeStatus,
		ReceiptNumber: f.ReceiptNumber,
	}
	if !models.IsPaidStatus(req.FeeStatus) {
		req.ReceiptNumber = ""
	}
	if _, err := c.api.Add(ctx, req); err != nil {
		return c.fail(err, "Failed to add record")
	}
	c.succeed(ctx, ModalAdd, "Record added successfully!")
	return nil
}

func (c *Controller) submitUpdate(ctx context.Context, f Form) error {
	if err := check(c.validate, updateInput{
		StudentName: f.StudentName,
		Month:       f.Month,
		FeeStatus:   f.FeeStatus,
	}); err != nil {
		return c.reject(err)
	}

	req := models.RecordRequest{
		StudentName:   f.StudentName,
		FatherName:    f.FatherName,
		Month:         f.Month,
		FeeStatus:     f.FeeStatus,
		ReceiptNumber: f.ReceiptNumber,
	}
	if !models.IsPaidStatus(req.FeeStatus) {
		req.ReceiptNumber = ""
	}
	if _, err := c.api.Update(ctx, req); err != nil {
		return c.fail(err, "Failed to update record")
	}
	c.succeed(ctx, ModalEdit, "Record updated successfully!")
	return nil
}

func (c *Controller) submitDelete(ctx context.Context, f Form) error {
	if err := check(c.validate, deleteInput{StudentName: f.StudentName, Month: f.Month}); err != nil {
		return c.reject(err)
	}
	req := models.RecordRequest{StudentName: f.StudentName, FatherName: f.FatherName, Month: f.Month}
	if _, err := c.api.Delete(ctx, req); err != nil {
		return c.fail(err, "Failed to delete record")
	}
	c.succeed(ctx, "", "Record deleted successfully!")
	return nil
}

func (c *Controller) submitAddMonths(ctx context.Context, f Form) error {
	c.mu.Lock()
	months := c.selectedMonths(SetAddMonths)
	c.mu.Unlock()

	if err := check(c.validate, addMonthsInput{StudentName: f.StudentName, Months: months}); err != nil {
		return c.reject(err)
	}

	status := statusOrDefault(f.FeeStatus)
	records := make([]models.Record, 0, len(months))
	for _, m := range months {
		records = append(records, models.Record{
			StudentID:    f.StudentID,
			StudentName:  f.StudentName,
			FatherName:   f.FatherName,
			MobileNumber: f.MobileNumber,
			Month:        m,
			FeeStatus:    status,
		})
	}
	resp, err := c.api.BulkAdd(ctx, records)
	if err != nil {
		return c.fail(err, "Failed to add months")
	}
	c.succeed(ctx, ModalAddMonth, withSkipped(fmt.Sprintf("%d month(s) added successfully!", resp.Added), resp.Skipped))
	return nil
}

func (c *Controller) submitBulkExisting(ctx context.Context, f Form) error {
	c.mu.Lock()
	months := c.selectedMonths(SetBulkMonths)
	keys := c.sets[SetStudents].Values()
	students := make([]models.UniqueStudent, 0, len(keys))
	for _, k := range keys {
		students = append(students, c.studentInfo(k))
	}
	c.mu.Unlock()

	if err := check(c.validate, bulkExistingInput{Months: months, Students: keys}); err != nil {
		return c.reject(err)
	}

	status := statusOrDefault(f.FeeStatus)
	records := make([]models.Record, 0, len(months)*len(students))
	for _, s := range students {
		for _, m := range months {
			records = append(records, models.Record{
				StudentID:    s.StudentID,
				StudentName:  s.Name,
				FatherName:   s.Father,
				MobileNumber: s.Mobile,
				Month:        m,
				FeeStatus:    status,
			})
		}
	}
	resp, err := c.api.BulkAdd(ctx, records)
	if err != nil {
		return c.fail(err, "Failed to add records")
	}
	msg := fmt.Sprintf("Successfully added %d records for %s!", resp.Added, monthText(months))
	c.succeed(ctx, ModalBulkAdd, withSkipped(msg, resp.Skipped))
	return nil
}

func (c *Controller) submitBulkNew(ctx context.Context, f Form) error {
	rows := ParsePastedData(f.PasteData)
	if err := check(c.validate, bulkNewInput{
		PasteData: strings.TrimSpace(f.PasteData),
		Month:     f.Month,
		Rows:      rows,
	}); err != nil {
		return c.reject(err)
	}

	status := statusOrDefault(f.FeeStatus)
	records := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, models.Record{
			StudentName: r.Name,
			FatherName:  r.Father,
			Month:       f.Month,
			FeeStatus:   status,
		})
	}
	resp, err := c.api.BulkAdd(ctx, records)
	if err != nil {
		return c.fail(err, "Failed to add students")
	}
	msg := fmt.Sprintf("Successfully added %d new students for %s!", resp.Added, f.Month)
	c.succeed(ctx, ModalBulkAdd, withSkipped(msg, resp.Skipped))
	return nil
}

func (c *Controller) submitProfile(ctx context.Context, f Form) error {
	if err := check(c.validate, profileInput{OriginalName: f.OriginalName, StudentName: f.StudentName}); err != nil {
		return c.reject(err)
	}
	resp, err := c.api.UpdateStudentProfile(ctx, models.ProfileUpdateRequest{
		OriginalName:   f.OriginalName,
		OriginalFather: f.OriginalFather,
		StudentID:      f.StudentID,
		StudentName:    f.StudentName,
		FatherName:     f.FatherName,
		MobileNumber:   f.MobileNumber,
	})
	if err != nil {
		return c.fail(err, "Failed to update profile")
	}

	// follow the rename so the open profile reloads under its new key
	c.mu.Lock()
	if c.profile != nil && c.profile.Student.Name == f.OriginalName && c.profile.Student.FatherName == f.OriginalFather {
		c.profile.Student.Name = f.StudentName
		c.profile.Student.FatherName = f.FatherName
	}
	c.mu.Unlock()

	c.succeed(ctx, ModalEditInfo, fmt.Sprintf("Profile updated successfully! (%d records)", resp.Updated))
	return nil
}

// MarkPaid pays one month under an auto-generated receipt
func (c *Controller) MarkPaid(ctx context.Context, name, father, month string) error {
	resp, err := c.api.QuickMarkPaid(ctx, models.MarkPaidRequest{
		StudentName: strings.TrimSpace(name),
		FatherName:  strings.TrimSpace(father),
		Month:       strings.TrimSpace(month),
	})
	if err != nil {
		return c.fail(err, "Failed to mark as paid")
	}
	c.succeed(ctx, "", "Marked as paid! Receipt: "+resp.ReceiptNumber)
	return nil
}

// Upload replaces all records with the contents of a spreadsheet
func (c *Controller) Upload(ctx context.Context, filename string, r io.Reader) error {
	if filename == "" {
		return c.reject(&ValidationError{Message: "Please select a file to upload"})
	}
	resp, err := c.api.Upload(ctx, filename, r)
	if err != nil {
		return c.fail(err, "Failed to upload file")
	}
	msg := resp.Message
	if msg == "" {
		msg = "File uploaded successfully!"
	}
	c.succeed(ctx, ModalUpload, msg)
	return nil
}

// Download fetches the spreadsheet export for "all", "paid" or "unpaid".
// Any other filter exports everything.
func (c *Controller) Download(ctx context.Context, filter string) ([]byte, string, error) {
	label := "All"
	switch filter {
	case "paid":
		label = "Paid"
	case "unpaid":
		label = "Unpaid"
	default:
		filter = "all"
	}
	data, filename, err := c.api.Download(ctx, filter)
	if err != nil {
		return nil, "", c.fail(err, "Failed to download file")
	}
	if filename == "" {
		filename = "student_fees.xlsx"
	}
	c.notify(label+" records downloaded successfully!", NoticeSuccess)
	return data, filename, nil
}

func monthText(months []string) string {
	if len(months) == 1 {
		return months[0]
	}
	return fmt.Sprintf("%d months", len(months))
}

func withSkipped(msg string, skipped int) string {
	if skipped == 0 {
		return msg
	}
	return fmt.Sprintf("%s (%d already existed)", msg, skipped)
}

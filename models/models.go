package models

import "strings"

const (
	StatusPaid    = "Paid"
	StatusNotPaid = "Not Paid"
)

// Record is one student-month fee entry
type Record struct {
	ID            string `json:"-"`              // Internal store ID, never sent over the wire
	StudentID     string `json:"Student ID"`     // Roll number or similar
	StudentName   string `json:"Student Name"`   // Student's name
	FatherName    string `json:"Father Name"`    // Father's name
	MobileNumber  string `json:"Mobile Number"`  // Contact number
	Month         string `json:"Month"`          // "Month Year", e.g. "January 2026"
	FeeStatus     string `json:"Fee Status"`     // "Paid" or "Not Paid"
	ReceiptNumber string `json:"Receipt Number"` // Empty unless paid
}

// IsPaid reports whether the record's fee status is paid
func (r Record) IsPaid() bool {
	return IsPaidStatus(r.FeeStatus)
}

// Key returns the student key of the record's owner
func (r Record) Key() string {
	return StudentKey(r.StudentName, r.FatherName)
}

// SameEntry reports whether two records describe the same student and month
func (r Record) SameEntry(name, father, month string) bool {
	return r.StudentName == name && r.FatherName == father &&
		strings.EqualFold(r.Month, month)
}

// IsPaidStatus reports whether a fee status string means paid
func IsPaidStatus(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), "paid")
}

// IsUnpaidStatus matches the statuses the unpaid filter accepts
func IsUnpaidStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "not paid", "unpaid", "pending":
		return true
	}
	return false
}

// StudentKey builds the composite identity used where no stable ID exists
func StudentKey(name, father string) string {
	return name + "_" + father
}

// SplitStudentKey is the inverse of StudentKey
func SplitStudentKey(key string) (name, father string) {
	name, father, _ = strings.Cut(key, "_")
	return name, father
}

// Summary aggregates the record collection
type Summary struct {
	Total  int      `json:"total"`
	Paid   int      `json:"paid"`
	Unpaid int      `json:"unpaid"`
	Months []string `json:"months"` // Distinct month labels, sorted
}

// StudentInfo is the header of a student profile
type StudentInfo struct {
	Name         string `json:"name"`
	FatherName   string `json:"father_name"`
	TotalMonths  int    `json:"total_months"`
	PaidMonths   int    `json:"paid_months"`
	UnpaidMonths int    `json:"unpaid_months"`
}

// Profile groups all month records of one student
type Profile struct {
	Student StudentInfo `json:"student"`
	Records []Record    `json:"records"`
}

// UniqueStudent is a distinct (name, father) pair for autocomplete
type UniqueStudent struct {
	Name      string `json:"name"`
	Father    string `json:"father"`
	StudentID string `json:"student_id"`
	Mobile    string `json:"mobile"`
	Display   string `json:"display"`
}

// Key returns the student key of the entry
func (u UniqueStudent) Key() string {
	return StudentKey(u.Name, u.Father)
}

// Defaulter is a student with one or more unpaid months
type Defaulter struct {
	StudentName  string   `json:"student_name"`
	FatherName   string   `json:"father_name"`
	StudentID    string   `json:"student_id"`
	MobileNumber string   `json:"mobile_number"`
	UnpaidCount  int      `json:"unpaid_count"`
	UnpaidMonths []string `json:"unpaid_months"`
}

// NewProfile computes the profile header for a student's records
func NewProfile(records []Record) Profile {
	p := Profile{Records: records}
	if len(records) == 0 {
		return p
	}
	p.Student.Name = records[0].StudentName
	p.Student.FatherName = records[0].FatherName
	p.Student.TotalMonths = len(records)
	for _, r := range records {
		if r.IsPaid() {
			p.Student.PaidMonths++
		}
	}
	p.Student.UnpaidMonths = p.Student.TotalMonths - p.Student.PaidMonths
	return p
}

package db

import (
	"sort"
	"strings"

	"feetracker-go/models"
)

// SearchFilter narrows the record collection. Empty fields match everything.
type SearchFilter struct {
	Query   string // Substring of student name, father name or receipt
	Month   string // Substring of the month label
	Status  string // "paid" or "unpaid"
	Receipt string // Substring of the receipt number
}

// Matches reports whether r passes every non-empty filter field
func (f SearchFilter) Matches(r models.Record) bool {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	month := strings.ToLower(strings.TrimSpace(f.Month))
	status := strings.ToLower(strings.TrimSpace(f.Status))
	receipt := strings.ToLower(strings.TrimSpace(f.Receipt))

	if receipt != "" && !strings.Contains(strings.ToLower(r.ReceiptNumber), receipt) {
		return false
	}
	if query != "" &&
		!strings.Contains(strings.ToLower(r.StudentName), query) &&
		!strings.Contains(strings.ToLower(r.FatherName), query) &&
		!strings.Contains(strings.ToLower(r.ReceiptNumber), query) {
		return false
	}
	if month != "" && !strings.Contains(strings.ToLower(r.Month), month) {
		return false
	}
	switch status {
	case "paid":
		return r.IsPaid()
	case "unpaid":
		return models.IsUnpaidStatus(r.FeeStatus)
	}
	return true
}

// FilterRecords returns the records that match f
func FilterRecords(records []models.Record, f SearchFilter) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Summarize counts paid and unpaid records and lists the distinct months,
// newest first.
func Summarize(records []models.Record) models.Summary {
	sum := models.Summary{Total: len(records), Months: []string{}}
	seen := make(map[string]bool)
	for _, r := range records {
		if r.IsPaid() {
			sum.Paid++
		}
		if r.Month != "" && !seen[r.Month] {
			seen[r.Month] = true
			sum.Months = append(sum.Months, r.Month)
		}
	}
	sum.Unpaid = sum.Total - sum.Paid
	models.SortMonthsNewestFirst(sum.Months)
	return sum
}

// StudentRecords returns every record of the student identified by name and father
func StudentRecords(records []models.Record, name, father string) []models.Record {
	var out []models.Record
	for _, r := range records {
		if r.StudentName == name && r.FatherName == father {
			out = append(out, r)
		}
	}
	return out
}

// ProfileByKey builds the profile for a student key, or nil when the
// student has no records.
func ProfileByKey(records []models.Record, key string) *models.Profile {
	name, father := models.SplitStudentKey(key)
	own := StudentRecords(records, name, father)
	if len(own) == 0 {
		return nil
	}
	p := models.NewProfile(own)
	return &p
}

// ProfileByReceipt builds the profile of the student holding receipt
func ProfileByReceipt(records []models.Record, receipt string) *models.Profile {
	for _, r := range records {
		if r.ReceiptNumber != "" && strings.EqualFold(r.ReceiptNumber, receipt) {
			p := models.NewProfile(StudentRecords(records, r.StudentName, r.FatherName))
			return &p
		}
	}
	return nil
}

// UniqueStudents lists each (name, father) once, sorted by name
func UniqueStudents(records []models.Record) []models.UniqueStudent {
	seen := make(map[string]bool)
	students := []models.UniqueStudent{}
	for _, r := range records {
		name := strings.TrimSpace(r.StudentName)
		father := strings.TrimSpace(r.FatherName)
		key := models.StudentKey(name, father)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		students = append(students, models.UniqueStudent{
			Name:      name,
			Father:    father,
			StudentID: strings.TrimSpace(r.StudentID),
			Mobile:    strings.TrimSpace(r.MobileNumber),
			Display:   name + " (F: " + father + ")",
		})
	}
	sort.SliceStable(students, func(i, j int) bool {
		return strings.ToLower(students[i].Name) < strings.ToLower(students[j].Name)
	})
	return students
}

// Defaulters lists students with at least minMonths unpaid months, most
// unpaid first.
func Defaulters(records []models.Record, minMonths int) []models.Defaulter {
	index := make(map[string]int)
	list := []models.Defaulter{}
	for _, r := range records {
		if r.IsPaid() {
			continue
		}
		key := r.Key()
		i, ok := index[key]
		if !ok {
			i = len(list)
			index[key] = i
			list = append(list, models.Defaulter{
				StudentName:  r.StudentName,
				FatherName:   r.FatherName,
				StudentID:    r.StudentID,
				MobileNumber: r.MobileNumber,
			})
		}
		list[i].UnpaidMonths = append(list[i].UnpaidMonths, r.Month)
		list[i].UnpaidCount++
	}

	out := list[:0]
	for _, d := range list {
		if d.UnpaidCount >= minMonths {
			sort.SliceStable(d.UnpaidMonths, func(a, b int) bool {
				return models.MonthOrdinal(d.UnpaidMonths[a]) < models.MonthOrdinal(d.UnpaidMonths[b])
			})
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UnpaidCount > out[j].UnpaidCount
	})
	return out
}

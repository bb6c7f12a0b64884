package view

import "sort"

// SetID names one of the controller's selection sets
type SetID string

const (
	SetBulkMonths SetID = "bulkMonthTags"    // months picked in the bulk-add modal
	SetAddMonths  SetID = "addMonthTags"     // months picked in the add-month modal
	SetStudents   SetID = "selectedStudents" // student keys picked in the bulk-add modal
)

// IsMonthSet reports whether the set holds month labels
func (id SetID) IsMonthSet() bool {
	return id == SetBulkMonths || id == SetAddMonths
}

// Selection is an order-insensitive set of strings
type Selection map[string]struct{}

// Toggle flips membership of v and reports whether v is now selected
func (s Selection) Toggle(v string) bool {
	if _, ok := s[v]; ok {
		delete(s, v)
		return false
	}
	s[v] = struct{}{}
	return true
}

// Add selects v
func (s Selection) Add(v string) { s[v] = struct{}{} }

// Remove deselects v
func (s Selection) Remove(v string) { delete(s, v) }

// Has reports whether v is selected
func (s Selection) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Clear deselects everything
func (s Selection) Clear() {
	for k := range s {
		delete(s, k)
	}
}

// Values returns the members in lexical order
func (s Selection) Values() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

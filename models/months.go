package models

import (
	"sort"
	"strconv"
	"strings"
)

// FeeYear is the only year month labels are offered for
const FeeYear = 2026

// MonthNames is the fixed twelve-month ordinal table
var MonthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthOptions returns the twelve selectable labels, January first
func MonthOptions() []string {
	out := make([]string, 0, len(MonthNames))
	for _, m := range MonthNames {
		out = append(out, m+" "+strconv.Itoa(FeeYear))
	}
	return out
}

// IsMonthOption reports whether label is one of MonthOptions
func IsMonthOption(label string) bool {
	name, year, ok := strings.Cut(label, " ")
	if !ok || year != strconv.Itoa(FeeYear) {
		return false
	}
	return monthIndex(name) >= 0
}

func monthIndex(name string) int {
	for i, m := range MonthNames {
		if m == name {
			return i
		}
	}
	return -1
}

// MonthOrdinal ranks a "Month Year" label for sorting as year*12 + month index.
// A label with an unknown month name ranks 0, before January of any year;
// an unparsable or missing year counts as FeeYear.
func MonthOrdinal(label string) int {
	parts := strings.Fields(label)
	if len(parts) == 0 {
		return 0
	}
	idx := monthIndex(parts[0])
	if idx < 0 {
		return 0
	}
	year := FeeYear
	if len(parts) > 1 {
		if y, err := strconv.Atoi(parts[1]); err == nil && y != 0 {
			year = y
		}
	}
	return year*12 + idx
}

// SortNewestFirst orders records by month, most recent first.
// Records of equal rank keep their relative order.
func SortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return MonthOrdinal(records[i].Month) > MonthOrdinal(records[j].Month)
	})
}

// SortMonthsNewestFirst orders month labels, most recent first
func SortMonthsNewestFirst(months []string) {
	sort.SliceStable(months, func(i, j int) bool {
		return MonthOrdinal(months[i]) > MonthOrdinal(months[j])
	})
}

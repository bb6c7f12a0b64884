package view

import "strings"

// PastedStudent is one row of pasted bulk data
type PastedStudent struct {
	Name   string
	Father string
}

// ParsePastedData reads rows copied from a spreadsheet or typed as CSV.
// Each line is split on tabs when it has one, otherwise on commas. Fields
// are trimmed and empty fields dropped. A first field of "name" or
// "student name" marks a header row. Rows with fewer than two fields are
// ignored.
func ParsePastedData(data string) []PastedStudent {
	var students []PastedStudent
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		sep := ","
		if strings.Contains(line, "\t") {
			sep = "\t"
		}
		var parts []string
		for _, p := range strings.Split(line, sep) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}

		if len(parts) > 0 {
			first := strings.ToLower(parts[0])
			if first == "student name" || first == "name" {
				continue
			}
		}
		if len(parts) < 2 {
			continue
		}
		students = append(students, PastedStudent{Name: parts[0], Father: parts[1]})
	}
	return students
}

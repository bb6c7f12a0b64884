package view

import (
	"regexp"
	"strings"
)

var receiptPattern = regexp.MustCompile(`^[A-Z]*\d+`)

// IsReceiptLike reports whether a search query should first be tried as a
// receipt number: at least four characters, and either the RCP prefix or
// an optional run of letters followed by digits.
func IsReceiptLike(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	if len(q) < 4 {
		return false
	}
	return strings.HasPrefix(q, "RCP") || receiptPattern.MatchString(q)
}

// Package dedupe filters candidate leads against the run's accepted set.
package dedupe

import (
	"strings"

	"github.com/use-agent/leadforge/models"
)

// NormalizePhone reduces a phone number to its comparison key: digits only,
// with a single leading country code "1" removed. Returns "" for input
// with no digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}

// IsDuplicate reports whether candidate's normalized phone already appears
// in the accepted set. Candidates without a phone are never duplicates;
// they fail validation upstream anyway.
func IsDuplicate(candidate models.Lead, accepted []models.Lead) bool {
	key := NormalizePhone(candidate.Phone)
	if key == "" {
		return false
	}
	for _, lead := range accepted {
		if NormalizePhone(lead.Phone) == key {
			return true
		}
	}
	return false
}

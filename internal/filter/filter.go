// Package filter applies the exclusion predicates and phone-key
// deduplication that keep test and duplicate records out of the lead set.
package filter

import (
	"regexp"
	"strings"

	"github.com/behonest/leads-cli/pkg/sults"
)

// blockedIDs are deals known to be test or corrupted data, excluded by hand.
var blockedIDs = map[int64]bool{
	7286: true,
	4918: true,
	2067: true,
	2090: true,
}

var nonDigits = regexp.MustCompile(`\D`)

// Digits strips every non-digit character from a phone number.
func Digits(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// InvalidPhone reports whether a non-empty phone number is unusable: no
// digits at all, or a single digit repeated ("999999999").
func InvalidPhone(phone string) bool {
	if phone == "" {
		return false
	}
	digits := Digits(phone)
	if digits == "" {
		return true
	}
	first := digits[0]
	for i := 1; i < len(digits); i++ {
		if digits[i] != first {
			return false
		}
	}
	return true
}

// testOrigin matches origin tags that mark a record as test or duplicate
// data. "DUPLIC" covers both the pt and en spellings.
func testOrigin(origin string) bool {
	upper := strings.ToUpper(strings.TrimSpace(origin))
	return upper == "TESTE" || upper == "TEST" || strings.Contains(upper, "DUPLIC")
}

// ExcludeDeal reports whether a deal is dropped before enrichment, so no
// detail fetch is wasted on it: blocklisted id, "test" in the contact name,
// email, or title, an invalid phone, or a test/duplicate origin tag.
func ExcludeDeal(d *sults.Deal) bool {
	if blockedIDs[d.ID] {
		return true
	}

	contact := d.PrimaryContact()
	haystack := strings.ToLower(contact.Name + " " + contact.Email + " " + d.Title)
	if strings.Contains(haystack, "test") {
		return true
	}

	if InvalidPhone(contact.Phone) {
		return true
	}

	return testOrigin(d.OriginName())
}

// ExcludeLossReason reports whether an enriched record is dropped for a
// loss reason of exactly "DUPLICADO" or "TESTE".
func ExcludeLossReason(reason string) bool {
	upper := strings.ToUpper(strings.TrimSpace(reason))
	return upper == "DUPLICADO" || upper == "TESTE"
}

// NormalizeOrigin maps legacy origin tags to their current names.
func NormalizeOrigin(origin string) string {
	if origin == "Facebook" {
		return "Meta Ads"
	}
	return origin
}

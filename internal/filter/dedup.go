package filter

import (
	"github.com/behonest/leads-cli/internal/model"
)

// DedupByPhone removes leads whose digit-only phone representation collides,
// keeping the first occurrence in collection order. Leads with no phone
// digits share the empty key and collapse to a single record; that is the
// intended policy, aggressive as it is. The operation is idempotent.
func DedupByPhone(leads []model.Lead) []model.Lead {
	seen := make(map[string]bool, len(leads))
	out := make([]model.Lead, 0, len(leads))

	for _, l := range leads {
		key := Digits(l.Phone)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}

	return out
}

// Package score computes the qualification indices over a materialized lead
// batch: binary location membership, capped investment capacity,
// batch-relative recency, the weighted composite, and the discrete tier.
package score

import (
	"math"
	"strings"
	"time"

	"github.com/behonest/leads-cli/internal/extract"
	"github.com/behonest/leads-cli/internal/model"
)

// MaxInvestment is the capital amount that maps to an investment index of 1.
const MaxInvestment = 200000.0

// Composite weights.
const (
	locationWeight   = 3.0
	investmentWeight = 2.0
	recencyWeight    = 0.5
)

// Classification tiers, highest first.
const (
	TierMQLPlus      = "MQL+"
	TierMQL          = "MQL"
	TierLeadPlus     = "LEAD+"
	TierLead         = "LEAD"
	TierDisqualified = "DESQUALIFICADO 100%"
)

// supportedStates is the franchise coverage allow-list. DF is covered as a
// whole; MG and GO only through their franchise city lists.
var supportedStates = map[string]bool{"MG": true, "DF": true, "GO": true}

// franchiseCitiesMG holds normalized franchise city names in Minas Gerais,
// including the emerging markets at the end.
var franchiseCitiesMG = map[string]bool{
	"belo horizonte":       true,
	"betim":                true,
	"contagem":             true,
	"nova lima":            true,
	"pocos de caldas":      true,
	"pouso alegre":         true,
	"governador valadares": true,
	"ipatinga":             true,
	"paracatu":             true,
	"sabara":               true,
	"sarzedo":              true,
	"ibirite":              true,
	"igarape":              true,
	"pedro leopoldo":       true,
	"vespasiano":           true,
	"ribeirao das neves":   true,
	"divinopolis":          true,
	"itabirito":            true,
	"brumadinho":           true,
	"para de minas":        true,
	"patos de minas":       true,
	"esmeraldas":           true,
	"barbacena":            true,
	"bom despacho":         true,
}

var franchiseCitiesGO = map[string]bool{
	"anapolis":             true,
	"aparecida de goiania": true,
	"goiania":              true,
}

// LocationIndex returns 1 when the lead sits inside the franchise coverage
// area, 0 otherwise. Membership is binary, never fractional.
func LocationIndex(city, state string) float64 {
	if !supportedStates[state] {
		return 0
	}
	if state == "DF" {
		return 1
	}

	cities := franchiseCitiesMG
	if state == "GO" {
		cities = franchiseCitiesGO
	}

	normalized := extract.Normalize(city)
	if cities[normalized] {
		return 1
	}

	// Partial match absorbs decorated variants ("Goiânia -"). Containment
	// runs in both directions, so an empty or very short locality under a
	// covered state also matches. Deliberate: kept as-is, not tightened.
	for fc := range cities {
		if len(fc) >= 5 && (strings.Contains(normalized, fc) || strings.Contains(fc, normalized)) {
			return 1
		}
	}

	return 0
}

// InvestmentIndex maps investable capital to [0,1]: capital/200k capped at
// 1, 0 when the capital is unknown. Rounded to two decimals.
func InvestmentIndex(capital float64) float64 {
	if capital <= 0 {
		return 0
	}
	return round2(math.Min(capital/MaxInvestment, 1))
}

// Composite combines the three indices into the weighted score, rounded to
// two decimals.
func Composite(location, investment, recency float64) float64 {
	return round2(locationWeight*location + investmentWeight*investment + recencyWeight*recency)
}

// Classify maps a composite score to its tier. Boundaries are closed above.
func Classify(score float64) string {
	switch {
	case score >= 4.09:
		return TierMQLPlus
	case score >= 3.58:
		return TierMQL
	case score >= 3.00:
		return TierLeadPlus
	case score >= 0.62:
		return TierLead
	default:
		return TierDisqualified
	}
}

// ApplyRecency fills RecencyIndex for the whole batch: elapsed days
// normalized against the batch's observed [min,max] age and inverted, so the
// most recent lead scores 1 and the oldest 0. A single-age batch scores 1
// everywhere. Leads without a parseable creation date score 0. The index is
// batch-relative: re-running over a different batch moves every value.
func ApplyRecency(leads []model.Lead, now time.Time) {
	today := dateOnly(now)

	minDays, maxDays := math.MaxInt, math.MinInt
	ages := make([]int, len(leads))
	for i := range leads {
		if !leads[i].HasCreatedAt() {
			ages[i] = -1
			continue
		}
		days := int(today.Sub(dateOnly(leads[i].CreatedAt)).Hours() / 24)
		ages[i] = days
		if days < minDays {
			minDays = days
		}
		if days > maxDays {
			maxDays = days
		}
	}

	for i := range leads {
		switch {
		case ages[i] < 0:
			leads[i].RecencyIndex = 0
		case minDays == maxDays:
			leads[i].RecencyIndex = 1
		default:
			leads[i].RecencyIndex = round2(float64(maxDays-ages[i]) / float64(maxDays-minDays))
		}
	}
}

// Apply runs every scoring pass over the batch in order: location,
// investment, recency, composite, classification.
func Apply(leads []model.Lead, now time.Time) {
	for i := range leads {
		leads[i].LocationIndex = LocationIndex(leads[i].City, leads[i].State)
		leads[i].InvestmentIndex = InvestmentIndex(leads[i].Investment)
	}

	ApplyRecency(leads, now)

	for i := range leads {
		leads[i].Score = Composite(leads[i].LocationIndex, leads[i].InvestmentIndex, leads[i].RecencyIndex)
		leads[i].Tier = Classify(leads[i].Score)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

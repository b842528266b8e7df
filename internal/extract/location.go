package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/behonest/leads-cli/internal/model"
)

// UFCodes lists every Brazilian state code.
var UFCodes = []string{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MT", "MS",
	"MG", "PA", "PB", "PR", "PE", "PI", "RJ", "RN", "RS", "RO", "RR", "SC",
	"SP", "SE", "TO",
}

var (
	// City fields often carry the state glued on: "Brasília DF",
	// "Goiânia - GO", "Contagem/MG".
	ufSpaceSuffix = regexp.MustCompile(`(?i)\s+(df|mg|go|sp|rj|pr|sc|rs|ba|pe|ce|am|pa|to|ma|pi|rn|pb|al|se|es|ms|mt|ac|rr|ap|ro)$`)
	ufSepSuffix   = regexp.MustCompile(`(?i)[/\-]\s*(df|mg|go|sp|rj|pr|sc|rs|ba|pe|ce|am|pa|to|ma|pi|rn|pb|al|se|es|ms|mt|ac|rr|ap|ro)$`)

	titleCaser = cases.Title(language.BrazilianPortuguese)
)

// cityAliases resolves common abbreviations to canonical city names.
// Keys are normalized (lower-case, accent-stripped).
var cityAliases = map[string]string{
	"bh":             "Belo Horizonte",
	"belo horizonte": "Belo Horizonte",
	"df":             "Brasília",
	"bsb":            "Brasília",
	"gyn":            "Goiânia",
	"goiania":        "Goiânia",
	"sp":             "São Paulo",
	"rj":             "Rio de Janeiro",
}

// commonCityStates is the last-resort association applied to the deal title
// when neither the gazetteer nor an explicit state code resolved anything.
// Ordered so ambiguous titles resolve the same way every run. Names are
// normalized, so only unaccented forms are needed.
var commonCityStates = []struct {
	city  string
	state string
}{
	{"belo horizonte", "MG"},
	{"bh", "MG"},
	{"brasilia", "DF"},
	{"df", "DF"},
	{"goiania", "GO"},
	{"sao paulo", "SP"},
	{"sp", "SP"},
	{"rio de janeiro", "RJ"},
	{"rj", "RJ"},
}

// ResolveLocation normalizes a raw city string and resolves the state code.
// Resolution order: an already-present state is trusted as-is; then the
// gazetteer by normalized canonical city name; then an explicit
// boundary-delimited state code in the deal title; then the fixed
// city-to-state associations. When everything fails the state is the
// UnknownState sentinel, never empty.
func ResolveLocation(city, state, title string, gazetteer map[string]string) (string, string) {
	cityClean := strings.TrimSpace(city)
	key := ""

	if cityClean != "" {
		cityClean = strings.TrimSpace(ufSpaceSuffix.ReplaceAllString(cityClean, ""))
		cityClean = strings.TrimSpace(ufSepSuffix.ReplaceAllString(cityClean, ""))
		key = Normalize(cityClean)

		if canonical, ok := cityAliases[key]; ok {
			cityClean = canonical
			key = Normalize(canonical)
		} else {
			cityClean = titleCaser.String(cityClean)
		}
	}

	finalState := strings.ToUpper(strings.TrimSpace(state))

	if finalState == "" && key != "" {
		finalState = gazetteer[key]
	}

	if finalState == "" {
		finalState = StateFromText(title)
	}

	if finalState == "" {
		finalState = model.UnknownState
	}

	return cityClean, finalState
}

// StateFromText scans free text for an explicit state code delimited by
// space, slash, hyphen, or parentheses, then falls back to well-known city
// names. Returns "" when nothing matches.
func StateFromText(text string) string {
	if text == "" {
		return ""
	}

	normalized := Normalize(text)

	for _, uf := range UFCodes {
		lower := strings.ToLower(uf)
		patterns := []string{" " + lower + " ", "/" + lower, "-" + lower, "(" + lower + ")"}
		for _, p := range patterns {
			if strings.Contains(normalized, p) {
				return uf
			}
		}
		if strings.HasSuffix(normalized, " "+lower) {
			return uf
		}
	}

	for _, cs := range commonCityStates {
		if strings.Contains(normalized, cs.city) {
			return cs.state
		}
	}

	return ""
}

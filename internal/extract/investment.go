package extract

import (
	"regexp"
	"strings"
)

// investmentKeywords are the stems that mark a timeline entry as talking
// about investable capital. The first stem found anchors the scan window.
var investmentKeywords = []string{"investimento", "valor", "capital"}

const (
	// scanWindow is how far past the keyword the tokenizer looks for a
	// number. Known limitation: an unrelated number inside the window is
	// accepted as long as it clears the threshold heuristics.
	scanWindow = 80

	// suffixWindow is how far past a numeric token the "mil" unit marker
	// may appear and still scale it.
	suffixWindow = 20

	// minAccepted is the floor below which a candidate value is rejected.
	minAccepted = 1000
)

var (
	numToken   = regexp.MustCompile(`[\d.,]+`)
	rangeToken = regexp.MustCompile(`([\d.,]+)\s*a\s*([\d.,]+)\s*mil`)
)

// InvestmentFromHTML scans rendered timeline payloads for an investable
// capital amount. The first accepted value from the first matching payload
// wins. Returns 0 when no payload yields a qualifying value.
func InvestmentFromHTML(payloads []string) float64 {
	for _, p := range payloads {
		if p == "" {
			continue
		}
		if v := investmentFromText(StripHTML(p)); v > 0 {
			return v
		}
	}
	return 0
}

func investmentFromText(text string) float64 {
	lower := strings.ToLower(text)

	idx := -1
	for _, kw := range investmentKeywords {
		if i := strings.Index(lower, kw); i >= 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0
	}

	window := runeSlice(lower[idx:], scanWindow)

	for _, loc := range numToken.FindAllStringIndex(window, -1) {
		val := ParseBRL(window[loc[0]:loc[1]])

		// A "mil" marker shortly after the token scales small values.
		suffix := runeSlice(window[loc[1]:], suffixWindow)
		if strings.Contains(suffix, "mil") || strings.Contains(suffix, "mi ") {
			if val < minAccepted {
				val *= 1000
			}
		}

		if val >= minAccepted {
			return val
		}

		// Range form "60 a 120 mil": the unit marker binds to both ends,
		// and the lower bound wins over the rejected single token.
		if rm := rangeToken.FindStringSubmatch(window); rm != nil {
			v1 := ParseBRL(rm[1])
			if v1 < minAccepted {
				v1 *= 1000
			}
			return v1
		}
	}

	return 0
}

// runeSlice returns the first n runes of s.
func runeSlice(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

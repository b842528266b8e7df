// Package extract turns the CRM's semi-structured free text into numeric and
// categorical signals: investable capital from timeline HTML, and a
// normalized city/state pair. All comparisons in this package are
// accent-insensitive and lower-case.
package extract

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize removes diacritics, lower-cases, and trims surrounding space.
// "Brasília " -> "brasilia".
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// StripHTML renders an HTML fragment to plain text: text nodes joined by a
// single space, runs of whitespace collapsed. Plain text passes through.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}

	tz := html.NewTokenizer(strings.NewReader(s))
	var sb strings.Builder
	for {
		tt := tz.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			text := strings.TrimSpace(tz.Token().Data)
			if text == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(text)
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

package extract

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	nonCurrency = regexp.MustCompile(`[^\d,.]`)
	brPrinter   = message.NewPrinter(language.BrazilianPortuguese)
)

// ParseBRL parses a currency token with locale-ambiguous separators.
// A token carrying both separators is grouping-major/decimal-minor
// ("1.234,56" -> 1234.56). Dot-only tokens use trailing-group-length
// heuristics: a trailing 3-digit group is thousands grouping ("60.000" ->
// 60000), a trailing 2-digit group is a decimal fraction ("60.00" -> 60);
// anything else has its dots stripped. Comma-only tokens treat the comma as
// the decimal separator. Unparseable input yields 0.
func ParseBRL(tok string) float64 {
	clean := nonCurrency.ReplaceAllString(tok, "")
	clean = strings.Trim(clean, ".,")
	if clean == "" {
		return 0
	}

	hasComma := strings.Contains(clean, ",")
	hasDot := strings.Contains(clean, ".")

	switch {
	case hasComma && hasDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case hasDot:
		parts := strings.Split(clean, ".")
		last := parts[len(parts)-1]
		switch {
		case len(last) == 3:
			clean = strings.ReplaceAll(clean, ".", "")
		case len(last) == 2:
			// Decimal fraction, already in parseable form.
		default:
			clean = strings.ReplaceAll(clean, ".", "")
		}
	case hasComma:
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatBRL formats a currency amount with pt-BR separators and two decimal
// places: 60000 -> "60.000,00". Zero formats as "0,00".
func FormatBRL(v float64) string {
	if v == 0 {
		return "0,00"
	}
	return brPrinter.Sprintf("%.2f", v)
}

// ParseBRDecimal parses an index value written with a decimal comma:
// "0,75" -> 0.75. Empty input yields 0.
func ParseBRDecimal(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatBRDecimal formats an index value with a decimal comma and no
// trailing zeros: 0.75 -> "0,75", 1 -> "1", 0.3 -> "0,3".
func FormatBRDecimal(v float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(v, 'f', -1, 64), ".", ",")
}

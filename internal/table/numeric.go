package table

import (
	"math"
	"strconv"
	"strings"
)

// NumberFormat describes the locale of numeric cells. Zero values auto-detect.
type NumberFormat struct {
	Decimal   rune
	Thousands rune
}

// ParseNumber parses a plain decimal cell such as "1,234.5", "0,5" or "12%".
// A single trailing '%' is dropped. Thousands separators are accepted only
// between well-formed groups of three digits, and a space only separates
// thousands when nf.Thousands is ' '. A decimal exponent as written by
// spreadsheets ("1.5E-05") is kept; hex and non-finite values are rejected.
func ParseNumber(s string, nf NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if strings.HasSuffix(raw, "%") {
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	}
	if raw == "" || strings.ContainsRune(raw, '%') {
		return 0, false
	}
	sign := ""
	if raw[0] == '-' || raw[0] == '+' {
		sign, raw = raw[:1], raw[1:]
	}
	exp := ""
	if i := strings.LastIndexAny(raw, "eE"); i >= 0 {
		e := strings.TrimLeft(raw[i+1:], "+-")
		if e == "" || len(raw[i+1:])-len(e) > 1 || !allDigits(e) {
			return 0, false
		}
		exp, raw = "e"+raw[i+1:], raw[:i]
	}

	dec, thou := separators(raw, nf)
	intPart, frac, hasFrac := strings.Cut(raw, string(dec))
	if intPart == "" && frac == "" {
		return 0, false
	}
	if hasFrac && !allDigits(frac) {
		return 0, false
	}
	digits, ok := ungroup(intPart, thou)
	if !ok {
		return 0, false
	}

	num := sign + digits
	if hasFrac {
		num += "." + frac
	}
	num += exp
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// separators resolves the decimal and thousands runes for raw, guessing the
// ones nf leaves unset.
func separators(raw string, nf NumberFormat) (dec, thou rune) {
	dec, thou = nf.Decimal, nf.Thousands
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case thou == ',' || thou == ' ':
			dec = '.'
		case thou == '.':
			dec = ','
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case strings.Count(raw, ",") > 1:
			dec, thou = '.', ','
		case strings.Count(raw, ".") > 1:
			dec, thou = ',', '.'
		case cpos >= 0 && len(raw)-cpos-1 != 3:
			// "0,5" is a decimal comma, "1,000" is a thousands group
			dec = ','
		case cpos >= 0:
			dec, thou = '.', ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		thou = ','
		if dec == ',' {
			thou = '.'
		}
	}
	return dec, thou
}

// ungroup strips thou from an integer part whose groups after the first are
// exactly three digits long.
func ungroup(s string, thou rune) (string, bool) {
	if thou == 0 || !strings.ContainsRune(s, thou) {
		return s, allDigits(s)
	}
	groups := strings.Split(s, string(thou))
	if n := len(groups[0]); n == 0 || n > 3 {
		return "", false
	}
	for i, g := range groups {
		if !allDigits(g) || (i > 0 && len(g) != 3) {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

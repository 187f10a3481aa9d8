// Package label turns raw category labels into display titles.
package label

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gertd/go-pluralize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var plural = pluralize.NewClient()

// Format normalizes a raw label into a title-cased, plural display label.
//
// Underscores become spaces and commas are dropped, every word is title-cased,
// the label is cut at the first word that repeats an earlier one, and the
// final word is pluralized:
//
//	Format("fruit_(fruit)")    == "Fruits"
//	Format("food_type")        == "Food Types"
//	Format("cherry")           == "Cherries"
func Format(raw string) string {
	words := strings.Fields(clean(raw))
	if len(words) == 0 {
		return ""
	}
	title := cases.Title(language.English)
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = title.String(w)
		k := wordKey(w)
		if k != "" {
			if _, dup := seen[k]; dup {
				break
			}
			seen[k] = struct{}{}
		}
		out = append(out, w)
	}
	out[len(out)-1] = pluralWord(out[len(out)-1])
	return strings.Join(out, " ")
}

// Title is the lighter normalization used for chart slice labels: underscores
// become spaces and every word is title-cased. No pluralization or truncation.
func Title(raw string) string {
	s := norm.NFKC.String(strings.ReplaceAll(raw, "_", " "))
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

// Composite joins a base label with its qualifier as "<base> (<qualifier>)".
func Composite(base, qualifier string) string {
	if strings.TrimSpace(qualifier) == "" {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, qualifier)
}

func clean(raw string) string {
	s := norm.NFKC.String(raw)
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ReplaceAll(s, ",", "")
}

// wordKey compares words on their letters and digits only, so "(Fruit)"
// repeats "Fruit".
func wordKey(w string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, w)
}

// pluralWord pluralizes the alphabetic core of w, keeping surrounding punctuation.
func pluralWord(w string) string {
	runes := []rune(w)
	start, end := 0, len(runes)
	for start < end && !unicode.IsLetter(runes[start]) && !unicode.IsDigit(runes[start]) {
		start++
	}
	for end > start && !unicode.IsLetter(runes[end-1]) && !unicode.IsDigit(runes[end-1]) {
		end--
	}
	core := string(runes[start:end])
	if !hasLetter(core) {
		return w
	}
	return string(runes[:start]) + plural.Plural(core) + string(runes[end:])
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

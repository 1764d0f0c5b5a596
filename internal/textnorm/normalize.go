// Package textnorm prepares free text from spreadsheets and reference tables for comparison.
package textnorm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	camelRe      = regexp.MustCompile(`([a-z])([A-Z])`)
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
)

// Normalize standardizes text for matching by:
//  1. Splitting camelCase words ("countyWide" -> "county Wide")
//  2. Converting to uppercase
//  3. Folding accents ("É" -> "E")
//  4. Replacing punctuation with spaces
//  5. Collapsing whitespace
//
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	s = camelRe.ReplaceAllString(s, "$1 $2")
	s = foldAccents(strings.ToUpper(s))
	s = nonWordRe.ReplaceAllString(s, " ")
	s = multiSpaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Clean renders a raw cell value as trimmed text. Whole floats lose their
// fractional part so that 12.0 reads as "12".
func Clean(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// Words splits normalized text into words.
func Words(s string) []string {
	return strings.Fields(s)
}

// Significant returns the words longer than minLen characters, preserving order.
func Significant(words []string, minLen int) []string {
	var out []string
	for _, w := range words {
		if len([]rune(w)) > minLen {
			out = append(out, w)
		}
	}
	return out
}

// Compact removes all whitespace from s.
func Compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Package refcode generates project reference codes of the form
// {PROG}-{PROJ}-{YR}-{NNN}.
package refcode

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultYear is the year token used when the timeframe is empty.
const DefaultYear = "2025_26"

var (
	lettersRe = regexp.MustCompile(`[A-Za-z]+`)
	yearRe    = regexp.MustCompile(`20\d{2}`)
)

// Generator builds reference codes. The zero value uses DefaultYear.
type Generator struct {
	DefaultYear string
}

// Make returns the reference code for one project row using DefaultYear.
func Make(project, program, timeframe string, counter int) string {
	return Generator{}.Make(project, program, timeframe, counter)
}

// Make returns the reference code for one project row. counter is the
// 1-based position of the row within its sheet.
func (g Generator) Make(project, program, timeframe string, counter int) string {
	return fmt.Sprintf("%s-%s-%s-%03d", Initials(program), ProjectToken(project), g.Year(timeframe), counter)
}

// Initials returns the upper-case first letters of up to three words of
// program, or "PRG".
func Initials(program string) string {
	words := lettersRe.FindAllString(program, 3)
	if len(words) == 0 {
		return "PRG"
	}
	var b strings.Builder
	for _, w := range words {
		b.WriteString(strings.ToUpper(w[:1]))
	}
	return b.String()
}

// ProjectToken returns the first four letters of the project's first word
// in upper case, or "PRJ".
func ProjectToken(project string) string {
	w := lettersRe.FindString(project)
	if w == "" {
		return "PRJ"
	}
	if len(w) > 4 {
		w = w[:4]
	}
	return strings.ToUpper(w)
}

// Year compacts a timeframe into a year token. A single year passes
// through; two or more give the last two digits of the first two
// ("2025-2026" is "2526"); no year leaves the timeframe without spaces.
func (g Generator) Year(timeframe string) string {
	if strings.TrimSpace(timeframe) == "" {
		if g.DefaultYear != "" {
			return g.DefaultYear
		}
		return DefaultYear
	}
	tf := strings.ReplaceAll(timeframe, "\n", " ")
	years := yearRe.FindAllString(tf, -1)
	switch len(years) {
	case 0:
		return strings.ReplaceAll(tf, " ", "")
	case 1:
		return years[0]
	default:
		return years[0][2:] + years[1][2:]
	}
}

// Counter numbers rows within one sheet.
type Counter struct {
	n int
}

// Next returns the next counter value, starting at 1.
func (c *Counter) Next() int {
	c.n++
	return c.n
}

// Reset restarts numbering for a new sheet.
func (c *Counter) Reset() { c.n = 0 }

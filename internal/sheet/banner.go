package sheet

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	programRe    = regexp.MustCompile(`(?i)^\s*program(?:me)?\s+name`)
	fyRe         = regexp.MustCompile(`(?i)fy\s*20\d{2}\s*/\s*\d{2,4}`)
	departmentRe = regexp.MustCompile(`(?i)department\s*:\s*(.+)`)
)

// Banner is the free-text metadata found above a sheet's header row.
type Banner struct {
	Program    string
	Department string
}

// ReadBanner scans the rows above header for a "Programme Name:" cell, an
// ADP title of the form "Capital and non-Capital projects for the FY
// 2025/26- <Department>" and a "Department: <name>" cell. The title takes
// precedence over the prefix form. A negative header scans HeaderScanRows
// rows.
func ReadBanner(s *Sheet, header int) Banner {
	limit := header
	if limit < 0 {
		limit = HeaderScanRows
	}
	limit = min(limit, len(s.Rows))

	var b Banner
	var prefixed string
	for r := 0; r < limit; r++ {
		for c := range s.Rows[r] {
			value := s.Cell(r, c)
			if value == "" {
				continue
			}
			if b.Program == "" && programRe.MatchString(value) {
				b.Program = afterColon(value)
			}
			if b.Department == "" {
				if d, ok := titleDepartment(value); ok {
					b.Department = d
				}
			}
			if prefixed == "" {
				if m := departmentRe.FindStringSubmatch(value); m != nil {
					prefixed = strings.TrimSpace(m[1])
				}
			}
		}
	}
	if b.Department == "" {
		b.Department = prefixed
	}
	return b
}

func afterColon(value string) string {
	if _, after, ok := strings.Cut(value, ":"); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(value)
}

// titleDepartment extracts the department from an ADP title: the text after
// the fiscal-year token and the next hyphen, without trailing punctuation.
func titleDepartment(value string) (string, bool) {
	low := wsRe.ReplaceAllString(strings.ToLower(value), " ")
	if !strings.Contains(low, "capital and non") || !strings.Contains(low, "projects") || !strings.Contains(low, "fy") {
		return "", false
	}

	after := value
	if loc := fyRe.FindStringIndex(value); loc != nil {
		after = value[loc[1]:]
	}
	if i := strings.IndexAny(after, "-–"); i >= 0 {
		_, size := utf8.DecodeRuneInString(after[i:])
		after = after[i+size:]
	}
	dept := strings.Trim(strings.TrimSpace(after), ".,;:")
	return strings.TrimSpace(dept), true
}


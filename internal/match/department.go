package match

import (
	"regexp"

	"github.com/county-imes/imes-migrate/internal/textnorm"
)

// departmentStopwords are dropped before word-overlap scoring. They appear
// in most department titles and carry no identity.
var departmentStopwords = map[string]bool{
	"AND":         true,
	"THE":         true,
	"FOR":         true,
	"DEVELOPMENT": true,
	"DEPARTMENT":  true,
	"OF":          true,
	"BLUE":        true,
	"ECONOMY":     true,
}

var deptPrefixRe = regexp.MustCompile(`(?i)^\s*(?:department\s*:|dept\.|dept\s+)\s*`)

const (
	minDeptWordLen = 3
	minDeptScore   = 0.4
	minDeptOverlap = 2
)

// DepartmentMatcher resolves department labels. Aliases map a normalized
// label to a normalized phrase every word of which must appear in the
// target department ("CITY" -> "CITY KISUMU"). A label containing any
// Reject word resolves to Unknown unless it matched exactly or by alias.
type DepartmentMatcher struct {
	Candidates *Candidates
	Aliases    map[string]string
	Reject     []string
}

// NewDepartmentMatcher normalizes alias keys, alias targets and reject
// words so callers can pass them as written in config.
func NewDepartmentMatcher(c *Candidates, aliases map[string]string, reject []string) *DepartmentMatcher {
	m := &DepartmentMatcher{Candidates: c, Aliases: make(map[string]string, len(aliases))}
	for k, v := range aliases {
		if nk := textnorm.Normalize(k); nk != "" {
			m.Aliases[nk] = textnorm.Normalize(v)
		}
	}
	for _, w := range reject {
		if nw := textnorm.Normalize(w); nw != "" {
			m.Reject = append(m.Reject, nw)
		}
	}
	return m
}

// Match returns the canonical department for label or Unknown.
func (m *DepartmentMatcher) Match(label string) string {
	name, _ := m.MatchRule(label)
	return name
}

// MatchRule is Match that also reports which rule fired.
func (m *DepartmentMatcher) MatchRule(label string) (string, string) {
	if m == nil || m.Candidates.Len() == 0 {
		return Unknown, ""
	}

	full := textnorm.Normalize(label)
	stripped := textnorm.Normalize(deptPrefixRe.ReplaceAllString(label, ""))
	if stripped == "" {
		return Unknown, ""
	}

	for _, v := range []string{full, stripped} {
		if name, ok := m.Candidates.Lookup(v); ok {
			return name, "exact"
		}
	}

	if target, ok := m.Aliases[stripped]; ok {
		if name, ok := m.aliasTarget(target); ok {
			return name, "alias"
		}
	}

	words := textnorm.Words(stripped)
	for _, w := range words {
		for _, r := range m.Reject {
			if w == r {
				return Unknown, ""
			}
		}
	}

	key := departmentWords(stripped)
	if len(key) == 0 {
		return Unknown, ""
	}

	best := -1
	for i, e := range m.Candidates.entries {
		if containsEither(stripped, e.Key) {
			if best < 0 || len(e.Key) > len(m.Candidates.entries[best].Key) {
				best = i
			}
		}
	}
	if best >= 0 {
		return m.Candidates.entries[best].Name, "substring"
	}

	if name, ok := m.overlap(key); ok {
		return name, "word-overlap"
	}
	return Unknown, ""
}

func (m *DepartmentMatcher) aliasTarget(target string) (string, bool) {
	if name, ok := m.Candidates.Lookup(target); ok {
		return name, true
	}
	want := textnorm.Words(target)
	for _, e := range m.Candidates.entries {
		have := map[string]bool{}
		for _, w := range textnorm.Words(e.Key) {
			have[w] = true
		}
		all := len(want) > 0
		for _, w := range want {
			if !have[w] {
				all = false
				break
			}
		}
		if all {
			return e.Name, true
		}
	}
	return "", false
}

// overlap scores candidates by |shared| / |union| of their significant
// words. A candidate qualifies with a score of at least 0.4 or at least two
// shared words; the best score wins, then the shared count, then the
// longer key.
func (m *DepartmentMatcher) overlap(label map[string]bool) (string, bool) {
	best, bestShared := -1, 0
	bestScore := 0.0
	for i, e := range m.Candidates.entries {
		cand := departmentWords(e.Key)
		shared := 0
		for w := range label {
			if cand[w] {
				shared++
			}
		}
		if shared == 0 {
			continue
		}
		union := len(label) + len(cand) - shared
		score := float64(shared) / float64(union)
		if score < minDeptScore && shared < minDeptOverlap {
			continue
		}

		better := best < 0 ||
			score > bestScore ||
			(score == bestScore && shared > bestShared) ||
			(score == bestScore && shared == bestShared && len(e.Key) > len(m.Candidates.entries[best].Key))
		if better {
			best, bestScore, bestShared = i, score, shared
		}
	}
	if best < 0 {
		return "", false
	}
	return m.Candidates.entries[best].Name, true
}

// departmentWords returns the set of words of at least three characters
// that are not department stopwords.
func departmentWords(normalized string) map[string]bool {
	set := map[string]bool{}
	for _, w := range textnorm.Words(normalized) {
		if len([]rune(w)) < minDeptWordLen || departmentStopwords[w] {
			continue
		}
		set[w] = true
	}
	return set
}

// Departments is a convenience wrapper for one-off matching without
// aliases or reject words.
func Departments(label string, c *Candidates) string {
	return NewDepartmentMatcher(c, nil, nil).Match(label)
}

package match

import (
	"regexp"
	"strings"

	"github.com/county-imes/imes-migrate/internal/textnorm"
)

const (
	// minContained is the shortest normalized text allowed on the contained
	// side of a substring match.
	minContained = 3

	// significantLen: words longer than this count as significant.
	significantLen = 2

	// minSegmentOverlap is the number of shared significant words a label
	// segment needs to match a candidate.
	minSegmentOverlap = 2
)

var (
	punctSplitRe     = regexp.MustCompile(`[,\-/()]`)
	separatorSplitRe = regexp.MustCompile(`(?i)\b(?:in|at|for|of|within|across|throughout)\b`)
)

// Label is a free-text label prepared for matching. Variants holds the
// normalized form with direction shortcuts expanded, followed by the plain
// normalized form when it differs.
type Label struct {
	Raw      string
	Variants []string
}

// NewLabel normalizes raw into its matching variants.
func NewLabel(raw string) Label {
	l := Label{Raw: raw}
	seen := map[string]bool{}
	for _, v := range []string{
		textnorm.Normalize(textnorm.ExpandShortcuts(raw)),
		textnorm.Normalize(raw),
	} {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		l.Variants = append(l.Variants, v)
	}
	return l
}

// Empty reports whether the label has no matchable text.
func (l Label) Empty() bool {
	return len(l.Variants) == 0
}

func (l Label) wordSet() map[string]bool {
	set := map[string]bool{}
	for _, v := range l.Variants {
		for _, w := range textnorm.Words(v) {
			set[w] = true
		}
	}
	return set
}

// Segments splits the raw label on punctuation and on location
// separators ("in", "at", "for", ...), returning normalized segments in
// the order they were produced. Callers scan them from the end because
// locations usually close a project title.
func (l Label) Segments() []string {
	sources := []string{textnorm.ExpandShortcuts(l.Raw), l.Raw}
	var parts []string
	for _, s := range sources {
		parts = append(parts, punctSplitRe.Split(s, -1)...)
	}
	for _, s := range sources {
		parts = append(parts, separatorSplitRe.Split(s, -1)...)
	}

	var out []string
	seen := map[string]bool{}
	for _, p := range parts {
		n := textnorm.Normalize(p)
		if len(n) < minContained || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Rule is one step of the matching chain. It reports the canonical name a
// label resolves to, or false when it does not fire.
type Rule struct {
	Name  string
	Apply func(l Label, c *Candidates) (string, bool)
}

// Chain is the ordered rule list used for ward and subcounty labels. The
// first rule that fires wins.
var Chain = []Rule{
	{Name: "exact", Apply: Exact},
	{Name: "substring", Apply: Substring},
	{Name: "all-words", Apply: AllWords},
	{Name: "segment-overlap", Apply: SegmentOverlap},
	{Name: "compact", Apply: CompactContains},
}

// Exact matches when a label variant equals a candidate key.
func Exact(l Label, c *Candidates) (string, bool) {
	for _, v := range l.Variants {
		if name, ok := c.Lookup(v); ok {
			return name, true
		}
	}
	return "", false
}

// Substring matches when a variant contains a key, aligned on word
// boundaries; the longest contained key wins. Only when no key is
// contained in the label does a key that contains a variant match, again
// longest first. Ties keep load order.
func Substring(l Label, c *Candidates) (string, bool) {
	if i := longestKey(l, c, containsWords); i >= 0 {
		return c.entries[i].Name, true
	}
	within := func(v, key string) bool { return containsWords(key, v) }
	if i := longestKey(l, c, within); i >= 0 {
		return c.entries[i].Name, true
	}
	return "", false
}

// longestKey returns the index of the longest key for which fn(variant,
// key) holds for some variant, or -1.
func longestKey(l Label, c *Candidates, fn func(variant, key string) bool) int {
	best := -1
	for i, e := range c.entries {
		for _, v := range l.Variants {
			if fn(v, e.Key) {
				if best < 0 || len(e.Key) > len(c.entries[best].Key) {
					best = i
				}
				break
			}
		}
	}
	return best
}

func containsEither(a, b string) bool {
	return containsWords(a, b) || containsWords(b, a)
}

// containsWords reports whether inner occurs in outer on word boundaries,
// so "SEME" is found in "SEME MARKET" but not in "BASEMENT".
func containsWords(outer, inner string) bool {
	if len(inner) < minContained {
		return false
	}
	return strings.Contains(" "+outer+" ", " "+inner+" ")
}

// AllWords matches when every significant word of a candidate appears as a
// word of the label. The longest key wins.
func AllWords(l Label, c *Candidates) (string, bool) {
	words := l.wordSet()
	best := -1
	for i, e := range c.entries {
		sig := textnorm.Significant(textnorm.Words(e.Key), significantLen)
		if len(sig) == 0 {
			continue
		}
		all := true
		for _, w := range sig {
			if !words[w] {
				all = false
				break
			}
		}
		if all && (best < 0 || len(e.Key) > len(c.entries[best].Key)) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return c.entries[best].Name, true
}

// SegmentOverlap scans label segments from last to first. A segment
// matches a candidate when it equals the key or shares at least two
// significant words with it; the highest overlap wins, then the longer key.
func SegmentOverlap(l Label, c *Candidates) (string, bool) {
	segments := l.Segments()
	for i := len(segments) - 1; i >= 0; i-- {
		if name, ok := matchSegment(segments[i], c); ok {
			return name, true
		}
	}
	return "", false
}

func matchSegment(segment string, c *Candidates) (string, bool) {
	if name, ok := c.Lookup(segment); ok {
		return name, true
	}

	segWords := map[string]bool{}
	for _, w := range textnorm.Significant(textnorm.Words(segment), significantLen) {
		segWords[w] = true
	}

	best, bestScore := -1, 0
	for i, e := range c.entries {
		score := 0
		for _, w := range uniq(textnorm.Significant(textnorm.Words(e.Key), significantLen)) {
			if segWords[w] {
				score++
			}
		}
		if score < minSegmentOverlap {
			continue
		}
		if score > bestScore || (score == bestScore && len(e.Key) > len(c.entries[best].Key)) {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return "", false
	}
	return c.entries[best].Name, true
}

// CompactContains is the whole-label fallback that ignores spacing: the
// space-free label equals the space-free key, or one side written as a
// single word equals the other side with its spaces removed
// ("KABONYOKANYAGWAL clinic" meets "KABONYO KANYAGWAL").
func CompactContains(l Label, c *Candidates) (string, bool) {
	for _, v := range l.Variants {
		cv := textnorm.Compact(v)
		if len(cv) < minContained {
			continue
		}
		vWords := textnorm.Words(v)
		for _, e := range c.entries {
			ck := textnorm.Compact(e.Key)
			if len(ck) < minContained {
				continue
			}
			if cv == ck || hasWord(vWords, ck) || hasWord(textnorm.Words(e.Key), cv) {
				return e.Name, true
			}
		}
	}
	return "", false
}

func hasWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

func uniq(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := words[:0:0]
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// Apply runs the chain and returns the first canonical name produced,
// together with the name of the rule that fired.
func Apply(chain []Rule, l Label, c *Candidates) (string, string) {
	if l.Empty() || c.Len() == 0 {
		return Unknown, ""
	}
	for _, r := range chain {
		if name, ok := r.Apply(l, c); ok {
			return name, r.Name
		}
	}
	return Unknown, ""
}

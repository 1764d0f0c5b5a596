package mapping

import (
	"sort"

	"github.com/xrash/smetrics"
	"go.uber.org/zap"

	"github.com/county-imes/imes-migrate/internal/match"
	"github.com/county-imes/imes-migrate/internal/textnorm"
)

// DefaultSuggestThreshold is the minimum Jaro-Winkler similarity for a
// suggestion.
const DefaultSuggestThreshold = 0.85

// Summary fields.
const (
	FieldDepartment = "department"
	FieldSubcounty  = "subcounty"
	FieldWard       = "ward"
)

// FieldStats counts match outcomes for one output field.
type FieldStats struct {
	Matched    int
	Unknown    int
	CountyWide int
}

// Total is the number of recorded rows.
func (s FieldStats) Total() int { return s.Matched + s.Unknown + s.CountyWide }

// Unmatched is a distinct label that resolved to Unknown, with the closest
// candidate when one is similar enough.
type Unmatched struct {
	Label      string
	Count      int
	Suggestion string
	Similarity float64
}

// Summary collects match outcomes over a run.
type Summary struct {
	threshold  float64
	candidates map[string]*match.Candidates
	stats      map[string]*FieldStats
	unmatched  map[string]map[string]int
}

// NewSummary returns an empty summary. candidates supplies suggestion
// targets per field; threshold <= 0 uses DefaultSuggestThreshold.
func NewSummary(threshold float64, candidates map[string]*match.Candidates) *Summary {
	if threshold <= 0 {
		threshold = DefaultSuggestThreshold
	}
	return &Summary{
		threshold:  threshold,
		candidates: candidates,
		stats:      make(map[string]*FieldStats),
		unmatched:  make(map[string]map[string]int),
	}
}

// Record counts one outcome. A non-empty label that resolved to Unknown
// is kept for the unmatched report.
func (s *Summary) Record(field, label, result string) {
	st, ok := s.stats[field]
	if !ok {
		st = &FieldStats{}
		s.stats[field] = st
	}
	switch result {
	case match.Unknown:
		st.Unknown++
		if label == "" {
			return
		}
		if s.unmatched[field] == nil {
			s.unmatched[field] = make(map[string]int)
		}
		s.unmatched[field][label]++
	case match.CountyWide:
		st.CountyWide++
	default:
		st.Matched++
	}
}

// Stats returns the counts for field.
func (s *Summary) Stats(field string) FieldStats {
	if st, ok := s.stats[field]; ok {
		return *st
	}
	return FieldStats{}
}

// Unmatched returns the distinct unmatched labels of field in label order.
func (s *Summary) Unmatched(field string) []Unmatched {
	labels := s.unmatched[field]
	out := make([]Unmatched, 0, len(labels))
	for label, n := range labels {
		u := Unmatched{Label: label, Count: n}
		u.Suggestion, u.Similarity = Suggest(label, s.candidates[field], s.threshold)
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Suggest returns the candidate most similar to label by Jaro-Winkler over
// normalized text, or "" when none reaches threshold.
func Suggest(label string, c *match.Candidates, threshold float64) (string, float64) {
	key := textnorm.Normalize(textnorm.ExpandShortcuts(label))
	if key == "" || c.Len() == 0 {
		return "", 0
	}
	best, bestScore := "", 0.0
	for _, e := range c.Entries() {
		score := smetrics.JaroWinkler(key, e.Key, 0.7, 4)
		if score > bestScore {
			best, bestScore = e.Name, score
		}
	}
	if bestScore < threshold {
		return "", bestScore
	}
	return best, bestScore
}

// Log writes the totals and unmatched labels of every recorded field.
func (s *Summary) Log(rows int) {
	fields := make([]string, 0, len(s.stats))
	for f := range s.stats {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	zap.L().Info("mapping: summary", zap.Int("rows", rows))
	for _, f := range fields {
		st := s.stats[f]
		zap.L().Info("mapping: field totals",
			zap.String("field", f),
			zap.Int("matched", st.Matched),
			zap.Int("unknown", st.Unknown),
			zap.Int("county_wide", st.CountyWide),
		)
		for _, u := range s.Unmatched(f) {
			zf := []zap.Field{
				zap.String("field", f),
				zap.String("label", u.Label),
				zap.Int("rows", u.Count),
			}
			if u.Suggestion != "" {
				zf = append(zf,
					zap.String("suggestion", u.Suggestion),
					zap.Float64("similarity", u.Similarity),
				)
			}
			zap.L().Warn("mapping: unmatched label", zf...)
		}
	}
}

package match

import (
	"regexp"
	"strings"

	"github.com/county-imes/imes-migrate/internal/textnorm"
)

var (
	dashSpaceRe = regexp.MustCompile(`[-\s]+`)
	compoundRe  = regexp.MustCompile(`(?i)\s+and\s+`)
)

// IsCountyWide reports whether a label names the whole county:
// "All Wards", "all-ward", "Wards: all", "countywide", "County Wide",
// "countyWide".
func IsCountyWide(label string) bool {
	flat := strings.ToLower(strings.TrimSpace(dashSpaceRe.ReplaceAllString(label, " ")))
	if flat == "" {
		return false
	}
	if flat == "all wards" || flat == "all ward" {
		return true
	}

	n := textnorm.Normalize(label)
	words := map[string]bool{}
	for _, w := range textnorm.Words(n) {
		words[w] = true
	}
	if words["ALL"] && (words["WARD"] || words["WARDS"]) {
		return true
	}
	return strings.Contains(textnorm.Compact(n), "COUNTYWIDE")
}

// mentionsCountyWide reports whether free text names the whole county by
// the phrase "all ward(s)" or "countywide". Unlike IsCountyWide it does not
// accept ALL and WARD as separate words, so "all-weather road in Kondele
// ward" is not county wide.
func mentionsCountyWide(text string) bool {
	n := textnorm.Normalize(text)
	if n == "" {
		return false
	}
	padded := " " + n + " "
	if strings.Contains(padded, " ALL WARDS ") || strings.Contains(padded, " ALL WARD ") {
		return true
	}
	return strings.Contains(textnorm.Compact(n), "COUNTYWIDE")
}

// FirstSegment reduces a compound label ("Kisumu East and Kisumu Central")
// to its first segment. Labels without " and " are returned unchanged.
func FirstSegment(label string) string {
	parts := compoundRe.Split(strings.TrimSpace(label), 2)
	return strings.TrimSpace(parts[0])
}

// Match resolves a ward or subcounty label to a canonical name from c.
// CountyWide labels resolve to the CountyWide sentinel, compound labels are
// reduced to their first segment, and the rest go through Chain. It returns
// Unknown when no rule fires.
func Match(label string, c *Candidates) string {
	name, _ := MatchRule(label, c)
	return name
}

// MatchRule is Match that also reports which rule fired ("countywide" for
// the sentinel, "" for Unknown).
func MatchRule(label string, c *Candidates) (string, string) {
	if IsCountyWide(label) {
		return CountyWide, "countywide"
	}
	return Apply(Chain, NewLabel(FirstSegment(label)), c)
}

// Location is a resolved subcounty/ward pair. Both fields are canonical
// names, CountyWide, or Unknown.
type Location struct {
	Subcounty string
	Ward      string
}

// Known reports whether both fields resolved.
func (l Location) Known() bool {
	return l.Subcounty != Unknown && l.Ward != Unknown
}

// Merge fills the unknown fields of l from other.
func (l Location) Merge(other Location) Location {
	if l.Subcounty == Unknown {
		l.Subcounty = other.Subcounty
	}
	if l.Ward == Unknown {
		l.Ward = other.Ward
	}
	return l
}

var unknownLocation = Location{Subcounty: Unknown, Ward: Unknown}

// Locations holds the subcounty and ward references and the ward to
// subcounty relation, keyed by canonical ward name.
type Locations struct {
	Subcounties   *Candidates
	Wards         *Candidates
	WardSubcounty map[string]string
}

// Empty reports whether no location references were loaded.
func (ls *Locations) Empty() bool {
	return ls == nil || (ls.Subcounties.Len() == 0 && ls.Wards.Len() == 0)
}

// SubcountyOf returns the subcounty a canonical ward belongs to.
func (ls *Locations) SubcountyOf(ward string) (string, bool) {
	if ls == nil || ward == Unknown || ward == "" {
		return "", false
	}
	if ward == CountyWide {
		return CountyWide, true
	}
	sc, ok := ls.WardSubcounty[ward]
	if !ok || sc == "" {
		return "", false
	}
	return sc, true
}

// Resolve maps a ward-column label (budget sheets) to a location. The
// subcounty follows the matched ward's stored relation; when the ward is
// unknown the label is tried against the subcounties directly.
func (ls *Locations) Resolve(label string) Location {
	if ls == nil {
		return unknownLocation
	}
	if IsCountyWide(label) {
		return Location{Subcounty: CountyWide, Ward: CountyWide}
	}

	loc := Location{Ward: Match(label, ls.Wards), Subcounty: Unknown}
	if sc, ok := ls.SubcountyOf(loc.Ward); ok {
		loc.Subcounty = sc
		return loc
	}
	loc.Subcounty = Match(label, ls.Subcounties)
	return loc
}

// Locate scans free text (a project title or description) for a
// subcounty and a ward independently. Compound "and" reduction is not
// applied because titles join activities with "and". When only the ward
// resolves, the subcounty is inferred from the ward's relation.
func (ls *Locations) Locate(text string) Location {
	if ls.Empty() || strings.TrimSpace(text) == "" {
		return unknownLocation
	}
	if mentionsCountyWide(text) {
		return Location{Subcounty: CountyWide, Ward: CountyWide}
	}

	l := NewLabel(text)
	sc, _ := Apply(Chain, l, ls.Subcounties)
	ward, _ := Apply(Chain, l, ls.Wards)
	loc := Location{Subcounty: sc, Ward: ward}
	if loc.Subcounty == Unknown {
		if inferred, ok := ls.SubcountyOf(loc.Ward); ok {
			loc.Subcounty = inferred
		}
	}
	return loc
}

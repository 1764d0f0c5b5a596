// Package match resolves free-text department, ward and subcounty labels
// against reference names loaded from the IMES store.
package match

import "github.com/county-imes/imes-migrate/internal/textnorm"

const (
	// Unknown is written in place of a canonical name when no rule fires.
	Unknown = "unknown"

	// CountyWide is the synthetic location used for "all wards" and
	// "countywide" labels. It is not a row in the store and maps to itself
	// for both ward and subcounty.
	CountyWide = "CountyWide"
)

// Entry pairs a normalized key with the canonical name it came from.
type Entry struct {
	Key  string
	Name string
}

// Candidates is an immutable, insertion-ordered mapping from normalized
// key to canonical name. Rules iterate entries in load order so that ties
// resolve the same way on every run.
type Candidates struct {
	entries []Entry
	index   map[string]int
}

// NewCandidates normalizes names into a candidate set. Names that normalize
// to "" are dropped; a repeated key keeps its first name.
func NewCandidates(names ...string) *Candidates {
	c := &Candidates{index: make(map[string]int, len(names))}
	for _, name := range names {
		key := textnorm.Normalize(name)
		if key == "" {
			continue
		}
		if _, dup := c.index[key]; dup {
			continue
		}
		c.index[key] = len(c.entries)
		c.entries = append(c.entries, Entry{Key: key, Name: name})
	}
	return c
}

// Len reports the number of distinct keys. A nil set is empty.
func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of the entries in load order.
func (c *Candidates) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the canonical name stored under a normalized key.
func (c *Candidates) Lookup(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	i, ok := c.index[key]
	if !ok {
		return "", false
	}
	return c.entries[i].Name, true
}

// Names returns the canonical names in load order.
func (c *Candidates) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Name
	}
	return out
}

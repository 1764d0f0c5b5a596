package textnorm

import (
	"regexp"
	"strings"
)

var directions = map[string]string{
	"SW": "SOUTH WEST",
	"SE": "SOUTH EAST",
	"NW": "NORTH WEST",
	"NE": "NORTH EAST",
	"N":  "NORTH",
	"S":  "SOUTH",
	"E":  "EAST",
	"W":  "WEST",
}

// A token counts as standalone only when it is not glued to a letter,
// digit, underscore or apostrophe on either side ("Women's" keeps its S).
var directionRe = regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}_'’])(SW|SE|NW|NE|N|S|E|W)($|[^\p{L}\p{N}_'’])`)

// ExpandShortcuts rewrites standalone direction abbreviations to full words:
// "Kisumu N" -> "Kisumu NORTH", "sw Kano" -> "SOUTH WEST Kano".
// All other characters are kept as they are.
func ExpandShortcuts(s string) string {
	if s == "" {
		return s
	}

	// The trailing delimiter is consumed by a match, so adjacent tokens
	// ("N S") need a second pass.
	for i := 0; i < 2; i++ {
		s = directionRe.ReplaceAllStringFunc(s, func(m string) string {
			sub := directionRe.FindStringSubmatch(m)
			return sub[1] + directions[strings.ToUpper(sub[2])] + sub[3]
		})
	}
	return s
}

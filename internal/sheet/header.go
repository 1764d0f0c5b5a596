package sheet

import (
	"regexp"
	"strings"
)

// HeaderScanRows is how many leading rows are searched for the header.
const HeaderScanRows = 15

// Layout selects the header heuristics of a workbook family.
type Layout int

const (
	// LayoutADP is the Annual Development Plan layout.
	LayoutADP Layout = iota
	// LayoutBudget is the approved budget layout.
	LayoutBudget
)

// ADP template column names filled from the source sheet.
const (
	ColProjectName   = "Project name and Location (Ward/Sub county/ county wide)"
	ColDescription   = "Description of activities"
	ColGreenEconomy  = "Green Economy consideration"
	ColEstimatedCost = "Estimated Cost"
	ColSourceOfFunds = "Source of funds"
	ColTimeFrame     = "Time frame"
	ColTargets       = "Targets"
)

var wsRe = regexp.MustCompile(`\s+`)

func rowText(s *Sheet, r int) string {
	if r < 0 || r >= len(s.Rows) {
		return ""
	}
	parts := make([]string, 0, len(s.Rows[r]))
	for _, v := range s.Rows[r] {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return wsRe.ReplaceAllString(strings.ToLower(strings.Join(parts, " | ")), " ")
}

// FindHeader returns the index of the header row within the first
// HeaderScanRows rows, or -1.
func FindHeader(s *Sheet, layout Layout) int {
	for r := 0; r < HeaderScanRows && r < len(s.Rows); r++ {
		text := rowText(s, r)
		switch layout {
		case LayoutADP:
			if strings.Contains(text, "project name") && strings.Contains(text, "location") {
				return r
			}
		case LayoutBudget:
			if strings.Contains(text, "department:") {
				continue
			}
			if strings.Contains(text, "s/no") || strings.Contains(text, "project") {
				return r
			}
		}
	}
	return -1
}

// ADPColumns maps ADP template columns to source column indexes by header
// keywords. Unrecognised headers are ignored; the first match of a
// template column wins.
func ADPColumns(header []string) map[string]int {
	cols := make(map[string]int)
	set := func(name string, idx int) {
		if _, ok := cols[name]; !ok {
			cols[name] = idx
		}
	}
	for idx, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case name == "":
		case strings.Contains(name, "project") && strings.Contains(name, "location"):
			set(ColProjectName, idx)
		case strings.Contains(name, "description") && strings.Contains(name, "activities"):
			set(ColDescription, idx)
		case strings.Contains(name, "green") && strings.Contains(name, "economy"):
			set(ColGreenEconomy, idx)
		case strings.Contains(name, "estimated") && strings.Contains(name, "cost"):
			set(ColEstimatedCost, idx)
		case strings.Contains(name, "source") && strings.Contains(name, "fund"):
			set(ColSourceOfFunds, idx)
		case strings.Contains(name, "time") && strings.Contains(name, "frame"):
			set(ColTimeFrame, idx)
		case strings.Contains(name, "target"):
			set(ColTargets, idx)
		}
	}
	return cols
}

// BudgetColumns are the source column indexes of a budget sheet.
type BudgetColumns struct {
	SNo     int
	Project int
	Ward    int
	Amount  int
}

// DetectBudgetColumns maps budget columns by header keywords. Columns not
// found fall back to positions 0, 1, 2 and 3, clamped to the sheet width.
func DetectBudgetColumns(header []string, width int) BudgetColumns {
	c := BudgetColumns{SNo: -1, Project: -1, Ward: -1, Amount: -1}
	for idx, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case name == "":
		case (strings.Contains(name, "s/no") || strings.Contains(name, "sno") || strings.Contains(name, "serial")) && c.SNo < 0:
			c.SNo = idx
		case strings.Contains(name, "project") && c.Project < 0:
			c.Project = idx
		case strings.Contains(name, "ward") && c.Ward < 0:
			c.Ward = idx
		case strings.Contains(name, "amount") && c.Amount < 0:
			c.Amount = idx
		}
	}

	fallback := func(col, pos int) int {
		if col >= 0 {
			return col
		}
		if pos >= width {
			return max(width-1, 0)
		}
		return pos
	}
	c.SNo = fallback(c.SNo, 0)
	c.Project = fallback(c.Project, 1)
	c.Ward = fallback(c.Ward, 2)
	c.Amount = fallback(c.Amount, 3)
	return c
}

// Width returns the widest row of the sheet.
func (s *Sheet) Width() int {
	w := 0
	for _, r := range s.Rows {
		w = max(w, len(r))
	}
	return w
}

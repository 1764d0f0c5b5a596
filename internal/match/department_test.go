package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDepartments() *DepartmentMatcher {
	c := NewCandidates(
		"Agriculture, Irrigation, Livestock Fisheries and Blue Economy",
		"Health and Sanitation",
		"City of Kisumu",
		"Education, Technical Training, Innovation and Social Services",
		"Water, Environment, Natural Resources and Climate Change",
		"Finance, Economic Planning and ICT Services",
	)
	return NewDepartmentMatcher(c, map[string]string{"city": "city of kisumu"}, []string{"municipality", "assembly"})
}

func TestDepartment_Exact(t *testing.T) {
	m := testDepartments()
	name, rule := m.MatchRule("health and sanitation")
	assert.Equal(t, "Health and Sanitation", name)
	assert.Equal(t, "exact", rule)
}

func TestDepartment_StripsPrefix(t *testing.T) {
	m := testDepartments()
	assert.Equal(t, "Health and Sanitation", m.Match("Department: Health and Sanitation"))
	assert.Equal(t, "Health and Sanitation", m.Match("Dept. Health and Sanitation"))
}

func TestDepartment_WordOverlapIgnoresOrderAndStopwords(t *testing.T) {
	m := testDepartments()
	name, rule := m.MatchRule("Agriculture, Fisheries, Livestock Development & Irrigation")
	assert.Equal(t, "Agriculture, Irrigation, Livestock Fisheries and Blue Economy", name)
	assert.Equal(t, "word-overlap", rule)
}

func TestDepartment_TwoSharedWordsBelowRatio(t *testing.T) {
	m := testDepartments()
	assert.Equal(t, "Water, Environment, Natural Resources and Climate Change", m.Match("Water and Environment"))
}

func TestDepartment_Substring(t *testing.T) {
	m := testDepartments()
	name, rule := m.MatchRule("Health")
	assert.Equal(t, "Health and Sanitation", name)
	assert.Equal(t, "substring", rule)
}

func TestDepartment_Alias(t *testing.T) {
	m := testDepartments()
	name, rule := m.MatchRule("City")
	assert.Equal(t, "City of Kisumu", name)
	assert.Equal(t, "alias", rule)
}

func TestDepartment_RejectWords(t *testing.T) {
	m := testDepartments()
	assert.Equal(t, Unknown, m.Match("Kisumu Municipality"))
	assert.Equal(t, Unknown, m.Match("County Assembly"))
}

func TestDepartment_StopwordOnlyOverlapIsUnknown(t *testing.T) {
	c := NewCandidates("Department of Planning and Development", "Development Department", "Department of Lands")
	m := NewDepartmentMatcher(c, nil, nil)
	assert.Equal(t, Unknown, m.Match("Department of Development"))
	assert.Equal(t, Unknown, Departments("The Department", c))
}

func TestDepartment_SingleWeakOverlapIsUnknown(t *testing.T) {
	m := testDepartments()
	assert.Equal(t, Unknown, m.Match("Finance Office"))
}

func TestDepartment_SingleWordStrongRatio(t *testing.T) {
	c := NewCandidates("Roads Transport", "Trade Tourism")
	assert.Equal(t, "Trade Tourism", Departments("Tourism Development", c))
}

func TestDepartment_Empty(t *testing.T) {
	m := testDepartments()
	assert.Equal(t, Unknown, m.Match(""))
	assert.Equal(t, Unknown, m.Match("Department:"))

	var nilMatcher *DepartmentMatcher
	assert.Equal(t, Unknown, nilMatcher.Match("Health"))
	assert.Equal(t, Unknown, Departments("Health", nil))
}

package pipeline

import (
	"strings"

	"shelfsort/internal"
)

// DepartmentRule tags a department when the upper-cased input contains
// any of Contains or equals any of Equals.
type DepartmentRule struct {
	Tag      internal.Department
	Contains []string
	Equals   []string
}

func (r DepartmentRule) Match(upper string) bool {
	for _, eq := range r.Equals {
		if upper == eq {
			return true
		}
	}
	for _, sub := range r.Contains {
		if strings.Contains(upper, sub) {
			return true
		}
	}
	return false
}

// DepartmentRules are evaluated in order; the first match wins. "CSE" and
// "IT" must be the whole value.
var DepartmentRules = []DepartmentRule{
	{Tag: internal.DeptComputerScience, Contains: []string{"COMPUTER"}, Equals: []string{"CSE"}},
	{Tag: internal.DeptIT, Contains: []string{"INFORMATION"}, Equals: []string{"IT"}},
	{Tag: internal.DeptElectronics, Contains: []string{"ELECTRONICS", "ECE"}},
	{Tag: internal.DeptElectrical, Contains: []string{"ELECTRICAL", "EEE"}},
	{Tag: internal.DeptMechanical, Contains: []string{"MECHANICAL"}},
	{Tag: internal.DeptCivil, Contains: []string{"CIVIL"}},
	{Tag: internal.DeptMaths, Contains: []string{"MATH"}},
	{Tag: internal.DeptReference, Contains: []string{"REFERENCE"}},
}

func classifyDepartment(text string) (internal.Department, bool) {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if upper == "" {
		return "", false
	}
	for _, rule := range DepartmentRules {
		if rule.Match(upper) {
			return rule.Tag, true
		}
	}
	return "", false
}

// NormalizeDepartment maps free-text department names onto the fixed
// taxonomy, falling back to GENERAL.
func NormalizeDepartment(text string) internal.Department {
	return DefaultPolicy().Department(text)
}

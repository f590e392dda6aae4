// Package grouping maps raw vendor names to canonical entities using
// an injected rule set. Rules are configuration data, not logic: the
// core detectors only ever see the resulting entity ids.
package grouping

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ebbflow-cash/ebbflow/internal/model"
)

// Mapper evaluates grouping rules against vendor names.
type Mapper struct {
	compiledRegex map[string]*regexp.Regexp
	rules         []model.GroupRule
}

// NewMapper creates a mapper with the given rules. Higher-priority
// rules win; invalid regular expressions are skipped rather than
// failing the whole rule set.
func NewMapper(rules []model.GroupRule) *Mapper {
	m := &Mapper{
		rules:         make([]model.GroupRule, len(rules)),
		compiledRegex: make(map[string]*regexp.Regexp),
	}
	copy(m.rules, rules)
	sort.SliceStable(m.rules, func(i, j int) bool {
		return m.rules[i].Priority > m.rules[j].Priority
	})

	for _, rule := range m.rules {
		if rule.IsRegex && rule.VendorPattern != "" {
			if re, err := regexp.Compile("(?i)" + rule.VendorPattern); err == nil {
				m.compiledRegex[rule.VendorPattern] = re
			}
		}
	}

	return m
}

// Map returns the canonical entity id for a vendor name. Vendors no
// rule matches map to themselves: every vendor is its own entity until
// a user groups it.
func (m *Mapper) Map(vendorName string) string {
	for _, rule := range m.rules {
		if m.matches(vendorName, rule) {
			return rule.EntityID
		}
	}
	return vendorName
}

// Apply assigns entity ids to a transaction slice in place.
func (m *Mapper) Apply(txns []model.Transaction) {
	for i := range txns {
		txns[i].EntityID = m.Map(txns[i].VendorName)
	}
}

func (m *Mapper) matches(vendorName string, rule model.GroupRule) bool {
	if rule.VendorPattern == "" {
		return false
	}

	if rule.IsRegex {
		re, ok := m.compiledRegex[rule.VendorPattern]
		return ok && re.MatchString(vendorName)
	}

	return strings.EqualFold(rule.VendorPattern, vendorName)
}

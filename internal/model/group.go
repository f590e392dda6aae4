package model

import "time"

// GroupRuleSource indicates how a grouping rule was created.
type GroupRuleSource string

const (
	// RuleSourceManual indicates a rule entered via the CLI.
	RuleSourceManual GroupRuleSource = "MANUAL"
	// RuleSourceConfig indicates a rule loaded from the config file.
	RuleSourceConfig GroupRuleSource = "CONFIG"
)

// GroupRule maps raw vendor names to a canonical entity. Rules are
// configuration data owned outside the core; the detectors only ever
// see the resulting entity id.
type GroupRule struct {
	LastUpdated   time.Time
	VendorPattern string // Exact name or regular expression
	EntityID      string
	Source        GroupRuleSource
	Priority      int
	IsRegex       bool
	UseCount      int
}

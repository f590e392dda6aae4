package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/ebbflow-cash/ebbflow/internal/model"
)

// configRule mirrors one entry under the "grouping.rules" config key.
type configRule struct {
	Vendor   string `mapstructure:"vendor"`
	Entity   string `mapstructure:"entity"`
	Regex    bool   `mapstructure:"regex"`
	Priority int    `mapstructure:"priority"`
}

// LoadGroupRules reads vendor grouping rules declared in the config
// file. Entries missing a vendor or entity are skipped.
func LoadGroupRules() ([]model.GroupRule, error) {
	var raw []configRule
	if err := viper.UnmarshalKey("grouping.rules", &raw); err != nil {
		return nil, fmt.Errorf("invalid grouping.rules: %w", err)
	}

	rules := make([]model.GroupRule, 0, len(raw))
	for _, r := range raw {
		if r.Vendor == "" || r.Entity == "" {
			continue
		}
		rules = append(rules, model.GroupRule{
			VendorPattern: r.Vendor,
			EntityID:      r.Entity,
			IsRegex:       r.Regex,
			Priority:      r.Priority,
			Source:        model.RuleSourceConfig,
		})
	}
	return rules, nil
}

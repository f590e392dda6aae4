package storage

import (
	"context"
	"fmt"

	"github.com/ebbflow-cash/ebbflow/internal/common"
	"github.com/ebbflow-cash/ebbflow/internal/model"
)

// SaveGroupRule upserts a vendor-to-entity grouping rule.
func (s *SQLiteStorage) SaveGroupRule(ctx context.Context, rule model.GroupRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(rule.VendorPattern, "vendor pattern"); err != nil {
		return err
	}
	if err := validateString(rule.EntityID, "entity ID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO group_rules (vendor_pattern, entity_id, is_regex, priority, source, use_count, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(vendor_pattern) DO UPDATE SET
			entity_id = excluded.entity_id,
			is_regex = excluded.is_regex,
			priority = excluded.priority,
			source = excluded.source,
			last_updated = CURRENT_TIMESTAMP
	`, rule.VendorPattern, rule.EntityID, rule.IsRegex, rule.Priority, string(rule.Source), rule.UseCount)
	if err != nil {
		return fmt.Errorf("failed to save group rule %q: %w", rule.VendorPattern, err)
	}

	return nil
}

// GetGroupRules returns all grouping rules, highest priority first.
func (s *SQLiteStorage) GetGroupRules(ctx context.Context) ([]model.GroupRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT vendor_pattern, entity_id, is_regex, priority, source, use_count, last_updated
		FROM group_rules
		ORDER BY priority DESC, vendor_pattern ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query group rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.GroupRule
	for rows.Next() {
		var rule model.GroupRule
		var source string

		if err := rows.Scan(&rule.VendorPattern, &rule.EntityID, &rule.IsRegex, &rule.Priority, &source, &rule.UseCount, &rule.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan group rule: %w", err)
		}

		rule.Source = model.GroupRuleSource(source)
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// DeleteGroupRule removes a grouping rule by vendor pattern.
func (s *SQLiteStorage) DeleteGroupRule(ctx context.Context, vendorPattern string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(vendorPattern, "vendor pattern"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM group_rules WHERE vendor_pattern = ?`, vendorPattern)
	if err != nil {
		return fmt.Errorf("failed to delete group rule %q: %w", vendorPattern, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("group rule %q: %w", vendorPattern, common.ErrNotFound)
	}

	return nil
}

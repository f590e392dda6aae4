package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ebbflow-cash/ebbflow/internal/model"
)

// SaveVendorPattern upserts an entity's analysis result.
func (s *SQLiteStorage) SaveVendorPattern(ctx context.Context, pattern model.VendorPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(pattern.EntityID, "entity ID"); err != nil {
		return err
	}

	var anchorWeekday sql.NullInt64
	if pattern.Timing.AnchorWeekday != nil {
		anchorWeekday = sql.NullInt64{Int64: int64(*pattern.Timing.AnchorWeekday), Valid: true}
	}
	var anchorDay sql.NullInt64
	if pattern.Timing.AnchorDay != nil {
		anchorDay = sql.NullInt64{Int64: int64(*pattern.Timing.AnchorDay), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vendor_patterns (
			entity_id, pattern_type, frequency_days, anchor_weekday, anchor_day,
			weekdays_only, month_anchored, timing_confidence, consistency,
			avg_amount, median_amount, variance_coefficient, amount_class, amount_confidence,
			recommendation, reasoning, sign, transaction_count, recent_count,
			last_transaction, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			pattern_type = excluded.pattern_type,
			frequency_days = excluded.frequency_days,
			anchor_weekday = excluded.anchor_weekday,
			anchor_day = excluded.anchor_day,
			weekdays_only = excluded.weekdays_only,
			month_anchored = excluded.month_anchored,
			timing_confidence = excluded.timing_confidence,
			consistency = excluded.consistency,
			avg_amount = excluded.avg_amount,
			median_amount = excluded.median_amount,
			variance_coefficient = excluded.variance_coefficient,
			amount_class = excluded.amount_class,
			amount_confidence = excluded.amount_confidence,
			recommendation = excluded.recommendation,
			reasoning = excluded.reasoning,
			sign = excluded.sign,
			transaction_count = excluded.transaction_count,
			recent_count = excluded.recent_count,
			last_transaction = excluded.last_transaction,
			analyzed_at = excluded.analyzed_at
	`,
		pattern.EntityID,
		string(pattern.Timing.Type),
		pattern.Timing.FrequencyDays,
		anchorWeekday,
		anchorDay,
		pattern.Timing.WeekdaysOnly,
		pattern.Timing.MonthAnchored,
		pattern.Timing.Confidence,
		pattern.Timing.Consistency,
		pattern.Amount.Average,
		pattern.Amount.Median,
		pattern.Amount.VarianceCoefficient,
		string(pattern.Amount.Class),
		pattern.Amount.Confidence,
		string(pattern.Recommendation),
		pattern.Reasoning,
		pattern.Sign,
		pattern.TransactionCount,
		pattern.RecentCount,
		pattern.LastTransaction,
		pattern.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save vendor pattern for %s: %w", pattern.EntityID, err)
	}

	return nil
}

// GetVendorPatterns returns all cached analysis results ordered by entity.
func (s *SQLiteStorage) GetVendorPatterns(ctx context.Context) ([]model.VendorPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT entity_id, pattern_type, frequency_days, anchor_weekday, anchor_day,
			weekdays_only, month_anchored, timing_confidence, consistency,
			avg_amount, median_amount, variance_coefficient, amount_class, amount_confidence,
			recommendation, reasoning, sign, transaction_count, recent_count,
			last_transaction, analyzed_at
		FROM vendor_patterns
		ORDER BY entity_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.VendorPattern
	for rows.Next() {
		var p model.VendorPattern
		var patternType, amountClass, recommendation string
		var anchorWeekday, anchorDay sql.NullInt64

		if err := rows.Scan(
			&p.EntityID,
			&patternType,
			&p.Timing.FrequencyDays,
			&anchorWeekday,
			&anchorDay,
			&p.Timing.WeekdaysOnly,
			&p.Timing.MonthAnchored,
			&p.Timing.Confidence,
			&p.Timing.Consistency,
			&p.Amount.Average,
			&p.Amount.Median,
			&p.Amount.VarianceCoefficient,
			&amountClass,
			&p.Amount.Confidence,
			&recommendation,
			&p.Reasoning,
			&p.Sign,
			&p.TransactionCount,
			&p.RecentCount,
			&p.LastTransaction,
			&p.AnalyzedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vendor pattern: %w", err)
		}

		p.Timing.Type = model.PatternType(patternType)
		p.Amount.Class = model.AmountClass(amountClass)
		p.Recommendation = model.Recommendation(recommendation)
		if anchorWeekday.Valid {
			wd := time.Weekday(anchorWeekday.Int64)
			p.Timing.AnchorWeekday = &wd
		}
		if anchorDay.Valid {
			day := int(anchorDay.Int64)
			p.Timing.AnchorDay = &day
		}

		patterns = append(patterns, p)
	}

	return patterns, rows.Err()
}

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ebbflow-cash/ebbflow/internal/common"
	"github.com/ebbflow-cash/ebbflow/internal/model"
)

// ReplaceForecasts atomically replaces the unlocked forecast records for
// an entity within [start, end]. Locked records survive regeneration, and
// any incoming record that collides with a locked record's date is
// discarded rather than duplicated.
func (s *SQLiteStorage) ReplaceForecasts(ctx context.Context, entityID string, start, end time.Time, records []model.ForecastRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(entityID, "entity ID"); err != nil {
		return err
	}
	if err := validateForecastRecords(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	lockedDates := make(map[string]bool)
	rows, err := tx.QueryContext(ctx, `
		SELECT date FROM forecasts
		WHERE entity_id = ? AND date >= ? AND date <= ? AND is_locked = 1
	`, entityID, start, end)
	if err != nil {
		return fmt.Errorf("failed to query locked forecasts: %w", err)
	}
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan locked forecast date: %w", err)
		}
		lockedDates[date.UTC().Format("2006-01-02")] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("failed to read locked forecasts: %w", err)
	}
	_ = rows.Close()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM forecasts
		WHERE entity_id = ? AND date >= ? AND date <= ? AND is_locked = 0
	`, entityID, start, end); err != nil {
		return fmt.Errorf("failed to delete unlocked forecasts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO forecasts (id, entity_id, date, amount, pattern_type, method, confidence, is_locked)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		if lockedDates[rec.Date.UTC().Format("2006-01-02")] {
			continue
		}

		if _, err := stmt.ExecContext(ctx,
			rec.ID,
			rec.EntityID,
			rec.Date,
			rec.Amount.String(),
			string(rec.PatternType),
			string(rec.Method),
			rec.Confidence,
		); err != nil {
			return fmt.Errorf("failed to insert forecast %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

// GetForecasts retrieves forecast records within [start, end] ordered by
// date. An empty entityID returns records for all entities.
func (s *SQLiteStorage) GetForecasts(ctx context.Context, entityID string, start, end time.Time) ([]model.ForecastRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, entity_id, date, amount, pattern_type, method, confidence, is_locked
		FROM forecasts
		WHERE date >= ? AND date <= ?
	`
	args := []any{start, end}

	if entityID != "" {
		query += " AND entity_id = ?"
		args = append(args, entityID)
	}

	query += " ORDER BY date ASC, entity_id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecasts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.ForecastRecord
	for rows.Next() {
		var rec model.ForecastRecord
		var amount, patternType, method string

		if err := rows.Scan(&rec.ID, &rec.EntityID, &rec.Date, &amount, &patternType, &method, &rec.Confidence, &rec.Locked); err != nil {
			return nil, fmt.Errorf("failed to scan forecast: %w", err)
		}

		rec.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount for forecast %s: %w", rec.ID, err)
		}
		rec.PatternType = model.PatternType(patternType)
		rec.Method = model.ForecastMethod(method)

		records = append(records, rec)
	}

	return records, rows.Err()
}

// SetForecastLock locks or unlocks a forecast record by ID.
func (s *SQLiteStorage) SetForecastLock(ctx context.Context, id string, locked bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "forecast ID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE forecasts SET is_locked = ? WHERE id = ?
	`, locked, id)
	if err != nil {
		return fmt.Errorf("failed to update forecast lock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("forecast %s: %w", id, common.ErrNotFound)
	}

	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ebbflow-cash/ebbflow/internal/common"
	"github.com/ebbflow-cash/ebbflow/internal/model"
	"github.com/ebbflow-cash/ebbflow/internal/service"
)

// SaveTransactions saves multiple transactions to the database.
// Duplicates (by content hash) are silently ignored.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (id, hash, date, vendor_name, entity_id, amount)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		if _, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.Hash,
			txn.Date,
			txn.VendorName,
			txn.EntityID,
			txn.Amount.String(),
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// GetTransactions retrieves transactions matching the filter, ordered
// by date ascending.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, hash, date, vendor_name, entity_id, amount
		FROM transactions
		WHERE 1=1
	`
	args := []any{}

	if filter.StartDate != nil {
		query += " AND date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND date <= ?"
		args = append(args, *filter.EndDate)
	}
	if filter.EntityID != "" {
		query += " AND (entity_id = ? OR (entity_id = '' AND vendor_name = ?))"
		args = append(args, filter.EntityID, filter.EntityID)
	}

	query += " ORDER BY date ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var entityID sql.NullString
		var amount string

		if err := rows.Scan(&txn.ID, &txn.Hash, &txn.Date, &txn.VendorName, &entityID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		txn.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount for transaction %s: %w", txn.ID, err)
		}
		if entityID.Valid {
			txn.EntityID = entityID.String
		}

		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

// GetLatestTransactionDate returns the date of the latest transaction.
func (s *SQLiteStorage) GetLatestTransactionDate(ctx context.Context) (time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return time.Time{}, err
	}

	var date sql.NullTime
	err := s.db.QueryRowContext(ctx, `SELECT MAX(date) FROM transactions`).Scan(&date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, common.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("failed to get latest transaction date: %w", err)
	}
	if !date.Valid {
		return time.Time{}, common.ErrNotFound
	}

	return date.Time, nil
}

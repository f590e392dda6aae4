package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/ebbflow-cash/ebbflow/internal/model"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	return ctx.Err()
}

func validateString(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	return nil
}

func validateTransactions(transactions []model.Transaction) error {
	for i, txn := range transactions {
		if txn.ID == "" {
			return fmt.Errorf("transaction %d: missing id", i)
		}
		if txn.VendorName == "" {
			return fmt.Errorf("transaction %d: missing vendor name", i)
		}
		if txn.Date.IsZero() {
			return fmt.Errorf("transaction %d: missing date", i)
		}
	}
	return nil
}

func validateForecastRecords(records []model.ForecastRecord) error {
	for i, r := range records {
		if r.ID == "" {
			return fmt.Errorf("forecast record %d: missing id", i)
		}
		if r.EntityID == "" {
			return fmt.Errorf("forecast record %d: missing entity id", i)
		}
		if r.Date.IsZero() {
			return fmt.Errorf("forecast record %d: missing date", i)
		}
		if !r.PatternType.Valid() {
			return fmt.Errorf("forecast record %d: invalid pattern type %q", i, r.PatternType)
		}
	}
	return nil
}

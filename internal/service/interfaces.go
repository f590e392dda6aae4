// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/ebbflow-cash/ebbflow/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	EntityID  string
}

// Storage defines the contract for the persistence layer. The
// forecasting core assumes ReplaceForecasts is atomic per entity and
// horizon: unlocked records in range are deleted and the new set
// inserted in one transaction, locked records untouched.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetLatestTransactionDate(ctx context.Context) (time.Time, error)

	// Pattern cache operations
	SaveVendorPattern(ctx context.Context, pattern model.VendorPattern) error
	GetVendorPatterns(ctx context.Context) ([]model.VendorPattern, error)

	// Forecast operations
	ReplaceForecasts(ctx context.Context, entityID string, start, end time.Time, records []model.ForecastRecord) error
	GetForecasts(ctx context.Context, entityID string, start, end time.Time) ([]model.ForecastRecord, error)
	SetForecastLock(ctx context.Context, id string, locked bool) error

	// Grouping rule operations
	SaveGroupRule(ctx context.Context, rule model.GroupRule) error
	GetGroupRules(ctx context.Context) ([]model.GroupRule, error)
	DeleteGroupRule(ctx context.Context, vendorPattern string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single normalized bank transaction.
// Amounts are signed: positive is an inflow, negative an outflow.
type Transaction struct {
	Date       time.Time
	ID         string
	VendorName string // Raw vendor string from the bank export
	EntityID   string // Canonical entity after grouping; empty until mapped
	Hash       string
	Amount     decimal.Decimal
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.VendorName)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Package importer reads normalized transaction exports into the model.
//
// The expected file is a CSV with a header row and three columns:
// date, vendor, amount. Dates are YYYY-MM-DD, amounts are signed
// decimals (negative for outflows). Bank-specific dialects are handled
// upstream of this tool.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ebbflow-cash/ebbflow/internal/model"
)

const dateLayout = "2006-01-02"

// ParseCSV reads normalized transactions from r. Rows that duplicate an
// earlier row's content hash within the same file are dropped.
func ParseCSV(r io.Reader) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty file")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	seen := make(map[string]bool)
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		txn, err := parseRow(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if seen[txn.Hash] {
			continue
		}
		seen[txn.Hash] = true
		transactions = append(transactions, txn)
	}

	return transactions, nil
}

type columnMap struct {
	date   int
	vendor int
	amount int
}

func mapColumns(header []string) (columnMap, error) {
	cols := columnMap{date: -1, vendor: -1, amount: -1}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			cols.date = i
		case "vendor", "vendor_name", "payee", "description":
			cols.vendor = i
		case "amount":
			cols.amount = i
		}
	}

	if cols.date < 0 || cols.vendor < 0 || cols.amount < 0 {
		return cols, fmt.Errorf("header must include date, vendor, and amount columns")
	}
	return cols, nil
}

func parseRow(record []string, cols columnMap) (model.Transaction, error) {
	var txn model.Transaction

	if len(record) <= cols.date || len(record) <= cols.vendor || len(record) <= cols.amount {
		return txn, fmt.Errorf("expected at least %d columns, got %d", max3(cols)+1, len(record))
	}

	date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(record[cols.date]), time.UTC)
	if err != nil {
		return txn, fmt.Errorf("invalid date %q: %w", record[cols.date], err)
	}

	vendor := strings.TrimSpace(record[cols.vendor])
	if vendor == "" {
		return txn, fmt.Errorf("vendor name cannot be empty")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(record[cols.amount]))
	if err != nil {
		return txn, fmt.Errorf("invalid amount %q: %w", record[cols.amount], err)
	}

	txn = model.Transaction{
		ID:         uuid.NewString(),
		Date:       date,
		VendorName: vendor,
		Amount:     amount,
	}
	txn.Hash = txn.GenerateHash()
	return txn, nil
}

func max3(cols columnMap) int {
	m := cols.date
	if cols.vendor > m {
		m = cols.vendor
	}
	if cols.amount > m {
		m = cols.amount
	}
	return m
}

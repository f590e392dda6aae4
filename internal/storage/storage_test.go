package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebbflow-cash/ebbflow/internal/common"
	"github.com/ebbflow-cash/ebbflow/internal/model"
	"github.com/ebbflow-cash/ebbflow/internal/service"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testTxn(id, vendor, date, amount string) model.Transaction {
	d, _ := time.ParseInLocation("2006-01-02", date, time.UTC)
	txn := model.Transaction{
		ID:         id,
		VendorName: vendor,
		Date:       d,
		Amount:     decimal.RequireFromString(amount),
	}
	txn.Hash = txn.GenerateHash()
	return txn
}

func TestSaveAndGetTransactions(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	txns := []model.Transaction{
		testTxn("t1", "Acme Corp", "2025-03-01", "-1250.00"),
		testTxn("t2", "Big Client", "2025-03-10", "4800.00"),
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	got, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "Acme Corp", got[0].VendorName)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("-1250.00")))
	assert.True(t, got[0].Date.Equal(txns[0].Date))
}

func TestSaveTransactions_DuplicateHashIgnored(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	original := testTxn("t1", "Acme Corp", "2025-03-01", "-1250.00")
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{original}))

	// Same content under a new ID, as a re-imported export would carry.
	reimported := testTxn("t9", "Acme Corp", "2025-03-01", "-1250.00")
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{reimported}))

	got, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGetTransactions_Filters(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	txns := []model.Transaction{
		testTxn("t1", "Acme Corp", "2025-01-15", "-100"),
		testTxn("t2", "Acme Corp", "2025-02-15", "-100.50"),
		testTxn("t3", "Other", "2025-03-15", "-100.99"),
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	got, err := store.GetTransactions(ctx, service.TransactionFilter{StartDate: &from})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	to := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	got, err = store.GetTransactions(ctx, service.TransactionFilter{StartDate: &from, EndDate: &to})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t2", got[0].ID)

	// Ungrouped vendors are addressable by name.
	got, err = store.GetTransactions(ctx, service.TransactionFilter{EntityID: "Other"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t3", got[0].ID)
}

func TestGetLatestTransactionDate(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, err := store.GetLatestTransactionDate(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{
		testTxn("t1", "A", "2025-01-15", "10"),
		testTxn("t2", "A", "2025-04-20", "10.50"),
	}))

	latest, err := store.GetLatestTransactionDate(ctx)
	require.NoError(t, err)
	assert.True(t, latest.Equal(time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)))
}

func TestVendorPatternRoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	friday := time.Friday
	anchorDay := 15
	pattern := model.VendorPattern{
		EntityID:        "acme-payroll",
		AnalyzedAt:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		LastTransaction: time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC),
		Reasoning:       "bi_weekly pattern with consistent amounts",
		Timing: model.TimingPattern{
			Type:          model.PatternBiWeekly,
			FrequencyDays: 14,
			AnchorWeekday: &friday,
			AnchorDay:     &anchorDay,
			MonthAnchored: true,
			Confidence:    0.85,
			Consistency:   0.92,
		},
		Amount: model.AmountPattern{
			Average:             5200.40,
			Median:              5200,
			VarianceCoefficient: 0.02,
			Class:               model.AmountConsistent,
			Confidence:          0.9,
		},
		Recommendation:   model.RecommendAuto,
		TransactionCount: 12,
		RecentCount:      6,
		Sign:             -1,
	}
	require.NoError(t, store.SaveVendorPattern(ctx, pattern))

	patterns, err := store.GetVendorPatterns(ctx)
	require.NoError(t, err)
	require.Len(t, patterns, 1)

	got := patterns[0]
	assert.Equal(t, pattern.EntityID, got.EntityID)
	assert.Equal(t, pattern.Timing.Type, got.Timing.Type)
	assert.Equal(t, pattern.Timing.FrequencyDays, got.Timing.FrequencyDays)
	require.NotNil(t, got.Timing.AnchorWeekday)
	assert.Equal(t, time.Friday, *got.Timing.AnchorWeekday)
	require.NotNil(t, got.Timing.AnchorDay)
	assert.Equal(t, 15, *got.Timing.AnchorDay)
	assert.True(t, got.Timing.MonthAnchored)
	assert.InDelta(t, 0.85, got.Timing.Confidence, 1e-9)
	assert.Equal(t, model.AmountConsistent, got.Amount.Class)
	assert.InDelta(t, 5200.40, got.Amount.Average, 1e-9)
	assert.Equal(t, model.RecommendAuto, got.Recommendation)
	assert.Equal(t, -1, got.Sign)
	assert.Equal(t, 12, got.TransactionCount)
}

func TestSaveVendorPattern_Upsert(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	pattern := model.VendorPattern{
		EntityID:       "acme",
		AnalyzedAt:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Timing:         model.TimingPattern{Type: model.PatternMonthly},
		Amount:         model.AmountPattern{Class: model.AmountConsistent},
		Recommendation: model.RecommendManual,
	}
	require.NoError(t, store.SaveVendorPattern(ctx, pattern))

	pattern.Recommendation = model.RecommendAuto
	pattern.Timing.Confidence = 0.8
	require.NoError(t, store.SaveVendorPattern(ctx, pattern))

	patterns, err := store.GetVendorPatterns(ctx)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, model.RecommendAuto, patterns[0].Recommendation)
	assert.InDelta(t, 0.8, patterns[0].Timing.Confidence, 1e-9)
}

func TestSaveVendorPattern_NilAnchorsStayNil(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveVendorPattern(ctx, model.VendorPattern{
		EntityID:       "loose",
		AnalyzedAt:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Timing:         model.TimingPattern{Type: model.PatternIrregular},
		Amount:         model.AmountPattern{Class: model.AmountHighlyVariable},
		Recommendation: model.RecommendSkip,
	}))

	patterns, err := store.GetVendorPatterns(ctx)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Nil(t, patterns[0].Timing.AnchorWeekday)
	assert.Nil(t, patterns[0].Timing.AnchorDay)
}

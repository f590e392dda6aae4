package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebbflow-cash/ebbflow/internal/detect"
	"github.com/ebbflow-cash/ebbflow/internal/ledger"
	"github.com/ebbflow-cash/ebbflow/internal/model"
	"github.com/ebbflow-cash/ebbflow/internal/service"
	"github.com/ebbflow-cash/ebbflow/internal/storage"
)

func newTestEngine(t *testing.T, opts ...Option) (*ForecastEngine, service.Storage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	return New(store, detect.NewDetector(detect.DefaultConfig()), opts...), store
}

func seedMonthly(t *testing.T, store service.Storage, vendor, amount string, start time.Time, count int) {
	t.Helper()

	txns := make([]model.Transaction, count)
	for i := range txns {
		txns[i] = model.Transaction{
			ID:         uuid.NewString(),
			VendorName: vendor,
			Date:       start.AddDate(0, 0, i*30),
			Amount:     decimal.RequireFromString(amount),
		}
		txns[i].Hash = txns[i].GenerateHash()
	}
	require.NoError(t, store.SaveTransactions(context.Background(), txns))
}

func TestAnalyzePatterns_EndToEnd(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedMonthly(t, store, "Acme Rent LLC", "-2500.00", start, 6)
	seedMonthly(t, store, "One Off Vendor", "-75.00", start, 1)

	asOf := start.AddDate(0, 0, 5*30)
	patterns, err := eng.AnalyzePatterns(ctx, asOf)

	require.NoError(t, err)
	require.Len(t, patterns, 2)

	byEntity := map[string]model.VendorPattern{}
	for _, p := range patterns {
		byEntity[p.EntityID] = p
	}

	rent := byEntity["Acme Rent LLC"]
	assert.Equal(t, model.PatternMonthly, rent.Timing.Type)
	assert.Equal(t, model.RecommendAuto, rent.Recommendation)
	assert.Equal(t, -1, rent.Sign)

	oneOff := byEntity["One Off Vendor"]
	assert.Equal(t, model.RecommendSkip, oneOff.Recommendation)

	// Results are cached for the forecast stage.
	cached, err := store.GetVendorPatterns(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestAnalyzePatterns_AppliesGroupRules(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, store.SaveGroupRule(ctx, model.GroupRule{
		VendorPattern: `Acme.*`,
		EntityID:      "acme",
		IsRegex:       true,
		Source:        model.RuleSourceManual,
	}))

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedMonthly(t, store, "Acme Rent LLC", "-2500.00", start, 3)
	seedMonthly(t, store, "Acme Rent L.L.C.", "-2500.00", start.AddDate(0, 0, 90), 3)

	patterns, err := eng.AnalyzePatterns(ctx, start.AddDate(0, 0, 150))

	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "acme", patterns[0].EntityID)
	assert.Equal(t, 6, patterns[0].TransactionCount)
}

func TestAnalyzePatterns_ReportsProgress(t *testing.T) {
	var mu sync.Mutex
	var calls []int
	progress := func(done, _ int) {
		mu.Lock()
		calls = append(calls, done)
		mu.Unlock()
	}

	eng, store := newTestEngine(t, WithProgress(progress), WithWorkers(2))
	ctx := context.Background()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedMonthly(t, store, "Vendor A", "-100.00", start, 4)
	seedMonthly(t, store, "Vendor B", "-200.00", start, 4)
	seedMonthly(t, store, "Vendor C", "-300.00", start, 4)

	_, err := eng.AnalyzePatterns(ctx, start.AddDate(0, 0, 90))

	require.NoError(t, err)
	assert.Len(t, calls, 3)
	assert.Contains(t, calls, 3)
}

func TestGenerateForecasts_OnlyAutoEntities(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedMonthly(t, store, "Acme Rent LLC", "-2500.00", start, 6)
	seedMonthly(t, store, "One Off Vendor", "-75.00", start, 1)

	asOf := start.AddDate(0, 0, 5*30)
	_, err := eng.AnalyzePatterns(ctx, asOf)
	require.NoError(t, err)

	horizonStart := asOf
	horizonEnd := asOf.AddDate(0, 3, 0)
	count, err := eng.GenerateForecasts(ctx, horizonStart, horizonEnd)

	require.NoError(t, err)
	assert.Equal(t, 3, count) // one per projected month

	records, err := store.GetForecasts(ctx, "", horizonStart, horizonEnd)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.Equal(t, "Acme Rent LLC", rec.EntityID)
		assert.Equal(t, model.MethodAuto, rec.Method)
		assert.True(t, rec.Amount.Equal(decimal.RequireFromString("-2500")))
	}

	// Regeneration is idempotent.
	again, err := eng.GenerateForecasts(ctx, horizonStart, horizonEnd)
	require.NoError(t, err)
	assert.Equal(t, count, again)

	records, err = store.GetForecasts(ctx, "", horizonStart, horizonEnd)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestGenerateManualForecast(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	pattern := model.VendorPattern{
		EntityID:        "quarterly-tax",
		LastTransaction: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Sign:            -1,
		Timing:          model.TimingPattern{Type: model.PatternQuarterly, Confidence: 0.5},
		Amount:          model.AmountPattern{Average: 4800, Confidence: 0.5},
	}

	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	count, err := eng.GenerateManualForecast(ctx, pattern, start, end)

	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err := store.GetForecasts(ctx, "quarterly-tax", start, end)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.MethodManualGroupPattern, records[0].Method)
}

func TestProject_ActualsTakePrecedence(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) // Monday
	end := start.AddDate(0, 0, 13)

	// A forecast record and an actual on the same entity and date: only
	// the actual may count.
	require.NoError(t, store.ReplaceForecasts(ctx, "Acme Rent LLC", start, end, []model.ForecastRecord{
		{
			ID:          uuid.NewString(),
			EntityID:    "Acme Rent LLC",
			Date:        start.AddDate(0, 0, 2),
			Amount:      decimal.RequireFromString("-2500"),
			PatternType: model.PatternMonthly,
			Method:      model.MethodAuto,
		},
		{
			ID:          uuid.NewString(),
			EntityID:    "Acme Rent LLC",
			Date:        start.AddDate(0, 0, 9),
			Amount:      decimal.RequireFromString("-2500"),
			PatternType: model.PatternMonthly,
			Method:      model.MethodAuto,
		},
	}))

	actual := model.Transaction{
		ID:         uuid.NewString(),
		VendorName: "Acme Rent LLC",
		Date:       start.AddDate(0, 0, 2),
		Amount:     decimal.RequireFromString("-2480.55"),
	}
	actual.Hash = actual.GenerateHash()
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{actual}))

	points, err := eng.Project(ctx, decimal.RequireFromString("10000"), start, end, ledger.Weekly)

	require.NoError(t, err)
	require.Len(t, points, 2)

	// Week one carries the actual amount, not the forecast.
	assert.True(t, points[0].Outflows.Equal(decimal.RequireFromString("-2480.55")))
	assert.True(t, points[1].Outflows.Equal(decimal.RequireFromString("-2500")))
	assert.True(t, points[1].StartingBalance.Equal(points[0].EndingBalance))
	assert.True(t, points[1].EndingBalance.Equal(decimal.RequireFromString("5019.45")))
}

func TestProject_GroupedVendorActualsTakePrecedence(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, store.SaveGroupRule(ctx, model.GroupRule{
		VendorPattern: `Acme.*`,
		EntityID:      "acme",
		IsRegex:       true,
		Source:        model.RuleSourceManual,
	}))

	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) // Monday
	end := start.AddDate(0, 0, 6)
	date := start.AddDate(0, 0, 2)

	// The forecast is keyed by the group entity, the actual by its raw
	// vendor name. The actual still has to displace the forecast.
	require.NoError(t, store.ReplaceForecasts(ctx, "acme", start, end, []model.ForecastRecord{
		{
			ID:          uuid.NewString(),
			EntityID:    "acme",
			Date:        date,
			Amount:      decimal.RequireFromString("-2500"),
			PatternType: model.PatternMonthly,
			Method:      model.MethodAuto,
		},
	}))

	actual := model.Transaction{
		ID:         uuid.NewString(),
		VendorName: "Acme Rent LLC",
		Date:       date,
		Amount:     decimal.RequireFromString("-2480.55"),
	}
	actual.Hash = actual.GenerateHash()
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{actual}))

	points, err := eng.Project(ctx, decimal.RequireFromString("10000"), start, end, ledger.Weekly)

	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, points[0].Outflows.Equal(decimal.RequireFromString("-2480.55")))
	assert.True(t, points[0].EndingBalance.Equal(decimal.RequireFromString("7519.45")))
}

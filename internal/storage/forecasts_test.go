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
)

func testForecast(id, entityID, date, amount string) model.ForecastRecord {
	d, _ := time.ParseInLocation("2006-01-02", date, time.UTC)
	return model.ForecastRecord{
		ID:          id,
		EntityID:    entityID,
		Date:        d,
		Amount:      decimal.RequireFromString(amount),
		PatternType: model.PatternMonthly,
		Method:      model.MethodAuto,
		Confidence:  0.8,
	}
}

func horizon() (time.Time, time.Time) {
	return time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
}

func TestReplaceForecasts_Idempotent(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	start, end := horizon()

	first := []model.ForecastRecord{
		testForecast("f1", "acme", "2025-07-15", "-500"),
		testForecast("f2", "acme", "2025-08-15", "-500"),
	}
	require.NoError(t, store.ReplaceForecasts(ctx, "acme", start, end, first))

	// Regeneration with fresh IDs replaces, never accumulates.
	second := []model.ForecastRecord{
		testForecast("f3", "acme", "2025-07-15", "-520"),
		testForecast("f4", "acme", "2025-08-15", "-520"),
		testForecast("f5", "acme", "2025-09-15", "-520"),
	}
	require.NoError(t, store.ReplaceForecasts(ctx, "acme", start, end, second))

	got, err := store.GetForecasts(ctx, "acme", start, end)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("-520")))
}

func TestReplaceForecasts_LockedRecordsSurvive(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	start, end := horizon()

	require.NoError(t, store.ReplaceForecasts(ctx, "acme", start, end, []model.ForecastRecord{
		testForecast("f1", "acme", "2025-07-15", "-500"),
		testForecast("f2", "acme", "2025-08-15", "-500"),
	}))
	require.NoError(t, store.SetForecastLock(ctx, "f1", true))

	// The regeneration carries a competing record on the locked date.
	require.NoError(t, store.ReplaceForecasts(ctx, "acme", start, end, []model.ForecastRecord{
		testForecast("f3", "acme", "2025-07-15", "-999"),
		testForecast("f4", "acme", "2025-08-15", "-999"),
	}))

	got, err := store.GetForecasts(ctx, "acme", start, end)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "f1", got[0].ID)
	assert.True(t, got[0].Locked)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("-500")))
	assert.Equal(t, "f4", got[1].ID)
}

func TestReplaceForecasts_ScopedToEntityAndRange(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	start, end := horizon()

	require.NoError(t, store.ReplaceForecasts(ctx, "acme", start, end, []model.ForecastRecord{
		testForecast("acme-1", "acme", "2025-07-15", "-500"),
	}))
	require.NoError(t, store.ReplaceForecasts(ctx, "other", start, end, []model.ForecastRecord{
		testForecast("other-1", "other", "2025-07-20", "300"),
	}))

	// Clearing acme leaves the other entity untouched.
	require.NoError(t, store.ReplaceForecasts(ctx, "acme", start, end, nil))

	all, err := store.GetForecasts(ctx, "", start, end)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "other-1", all[0].ID)
}

func TestSetForecastLock(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	start, end := horizon()

	require.NoError(t, store.ReplaceForecasts(ctx, "acme", start, end, []model.ForecastRecord{
		testForecast("f1", "acme", "2025-07-15", "-500"),
	}))

	require.NoError(t, store.SetForecastLock(ctx, "f1", true))
	got, err := store.GetForecasts(ctx, "acme", start, end)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Locked)

	require.NoError(t, store.SetForecastLock(ctx, "f1", false))
	got, err = store.GetForecasts(ctx, "acme", start, end)
	require.NoError(t, err)
	assert.False(t, got[0].Locked)

	err = store.SetForecastLock(ctx, "missing", true)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGroupRules(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveGroupRule(ctx, model.GroupRule{
		VendorPattern: "AMZN.*",
		EntityID:      "amazon",
		IsRegex:       true,
		Priority:      5,
		Source:        model.RuleSourceManual,
	}))
	require.NoError(t, store.SaveGroupRule(ctx, model.GroupRule{
		VendorPattern: "Acme Corp",
		EntityID:      "acme",
		Source:        model.RuleSourceConfig,
	}))

	rules, err := store.GetGroupRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "AMZN.*", rules[0].VendorPattern) // priority first
	assert.True(t, rules[0].IsRegex)

	// Upsert re-points the pattern.
	require.NoError(t, store.SaveGroupRule(ctx, model.GroupRule{
		VendorPattern: "Acme Corp",
		EntityID:      "acme-group",
		Source:        model.RuleSourceManual,
	}))
	rules, err = store.GetGroupRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "acme-group", rules[1].EntityID)

	require.NoError(t, store.DeleteGroupRule(ctx, "Acme Corp"))
	rules, err = store.GetGroupRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	err = store.DeleteGroupRule(ctx, "Acme Corp")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

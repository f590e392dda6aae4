// Package engine orchestrates pattern analysis, forecast regeneration,
// and balance projection across all entities.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ebbflow-cash/ebbflow/internal/detect"
	"github.com/ebbflow-cash/ebbflow/internal/forecast"
	"github.com/ebbflow-cash/ebbflow/internal/grouping"
	"github.com/ebbflow-cash/ebbflow/internal/ledger"
	"github.com/ebbflow-cash/ebbflow/internal/model"
	"github.com/ebbflow-cash/ebbflow/internal/service"
)

// defaultWorkers bounds concurrent per-entity analysis.
const defaultWorkers = 8

// ProgressFunc receives completed/total counts during long operations.
type ProgressFunc func(done, total int)

// ForecastEngine coordinates storage, grouping, detection, and projection.
type ForecastEngine struct {
	storage  service.Storage
	detector *detect.Detector
	progress ProgressFunc
	workers  int
}

// Option configures a ForecastEngine.
type Option func(*ForecastEngine)

// WithProgress registers a progress callback for analysis runs.
func WithProgress(fn ProgressFunc) Option {
	return func(e *ForecastEngine) { e.progress = fn }
}

// WithWorkers overrides the analysis worker limit.
func WithWorkers(n int) Option {
	return func(e *ForecastEngine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New creates a forecast engine with the given dependencies.
func New(storage service.Storage, detector *detect.Detector, opts ...Option) *ForecastEngine {
	e := &ForecastEngine{
		storage:  storage,
		detector: detector,
		workers:  defaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AnalyzePatterns groups all stored transactions by entity, detects
// timing and amount patterns per entity, and caches the results. asOf
// anchors the recency calculations; pass the latest transaction date
// for deterministic replays.
func (e *ForecastEngine) AnalyzePatterns(ctx context.Context, asOf time.Time) ([]model.VendorPattern, error) {
	slog.Info("Starting pattern analysis", "as_of", asOf.Format("2006-01-02"))

	rules, err := e.storage.GetGroupRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load group rules: %w", err)
	}
	mapper := grouping.NewMapper(rules)

	transactions, err := e.storage.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(transactions) == 0 {
		slog.Info("No transactions to analyze")
		return nil, nil
	}

	mapper.Apply(transactions)
	groups := groupByEntity(transactions)

	slog.Info("Analyzing entities", "entities", len(groups), "transactions", len(transactions))

	entityIDs := make([]string, 0, len(groups))
	for id := range groups {
		entityIDs = append(entityIDs, id)
	}
	sort.Strings(entityIDs)

	patterns := make([]model.VendorPattern, len(entityIDs))
	var done int
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, entityID := range entityIDs {
		g.Go(func() error {
			pattern, analyzeErr := e.detector.Analyze(entityID, groups[entityID], asOf)
			if analyzeErr != nil {
				return fmt.Errorf("failed to analyze %s: %w", entityID, analyzeErr)
			}
			patterns[i] = pattern

			if saveErr := e.storage.SaveVendorPattern(gctx, pattern); saveErr != nil {
				return fmt.Errorf("failed to save pattern for %s: %w", entityID, saveErr)
			}

			if e.progress != nil {
				mu.Lock()
				done++
				e.progress(done, len(entityIDs))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("Pattern analysis complete", "entities", len(patterns))
	return patterns, nil
}

// GenerateForecasts regenerates forecast records for every entity whose
// cached pattern recommends automatic forecasting. Locked records within
// the horizon are preserved. Returns the number of records written.
func (e *ForecastEngine) GenerateForecasts(ctx context.Context, horizonStart, horizonEnd time.Time) (int, error) {
	patterns, err := e.storage.GetVendorPatterns(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load vendor patterns: %w", err)
	}

	total := 0
	for _, pattern := range patterns {
		if pattern.Recommendation != model.RecommendAuto {
			continue
		}

		records, genErr := forecast.Generate(pattern, horizonStart, horizonEnd, model.MethodAuto)
		if genErr != nil {
			return total, fmt.Errorf("failed to generate forecasts for %s: %w", pattern.EntityID, genErr)
		}

		if repErr := e.storage.ReplaceForecasts(ctx, pattern.EntityID, horizonStart, horizonEnd, records); repErr != nil {
			return total, fmt.Errorf("failed to replace forecasts for %s: %w", pattern.EntityID, repErr)
		}
		total += len(records)

		slog.Debug("Regenerated forecasts",
			"entity", pattern.EntityID,
			"pattern", pattern.Timing.Type,
			"records", len(records))
	}

	slog.Info("Forecast generation complete", "records", total)
	return total, nil
}

// GenerateManualForecast writes forecast records from an operator-defined
// pattern rather than a detected one. Used for entities the analysis
// flagged for manual review.
func (e *ForecastEngine) GenerateManualForecast(ctx context.Context, pattern model.VendorPattern, horizonStart, horizonEnd time.Time) (int, error) {
	records, err := forecast.Generate(pattern, horizonStart, horizonEnd, model.MethodManualGroupPattern)
	if err != nil {
		return 0, fmt.Errorf("failed to generate manual forecasts for %s: %w", pattern.EntityID, err)
	}
	if err := e.storage.ReplaceForecasts(ctx, pattern.EntityID, horizonStart, horizonEnd, records); err != nil {
		return 0, fmt.Errorf("failed to replace forecasts for %s: %w", pattern.EntityID, err)
	}
	return len(records), nil
}

// Project folds actuals and forecasts in [start, end] into running
// balance periods. Forecast records whose entity and date are already
// covered by an actual transaction are dropped before the fold.
func (e *ForecastEngine) Project(ctx context.Context, startingBalance decimal.Decimal, start, end time.Time, granularity ledger.Granularity) ([]model.BalancePoint, error) {
	actuals, err := e.storage.GetTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	// Stored transactions carry raw vendor names; forecasts carry group
	// entity ids. Grouping must run here too or the merge keys never
	// collide and a grouped vendor's cash flow counts twice.
	rules, err := e.storage.GetGroupRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load group rules: %w", err)
	}
	grouping.NewMapper(rules).Apply(actuals)

	forecasts, err := e.storage.GetForecasts(ctx, "", start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load forecasts: %w", err)
	}

	events := mergeEvents(actuals, forecasts)
	return ledger.Accumulate(startingBalance, events, start, end, granularity), nil
}

// groupByEntity buckets transactions by entity ID, falling back to the
// vendor name for ungrouped vendors. Buckets preserve input order, so
// date-sorted input yields date-sorted buckets.
func groupByEntity(transactions []model.Transaction) map[string][]model.Transaction {
	groups := make(map[string][]model.Transaction)
	for _, txn := range transactions {
		key := txn.EntityID
		if key == "" {
			key = txn.VendorName
		}
		groups[key] = append(groups[key], txn)
	}
	return groups
}

// mergeEvents combines actuals and forecast records, preferring actuals
// on entity+date collisions.
func mergeEvents(actuals []model.Transaction, forecasts []model.ForecastRecord) []ledger.Event {
	covered := make(map[string]bool, len(actuals))
	events := make([]ledger.Event, 0, len(actuals)+len(forecasts))

	for _, txn := range actuals {
		key := txn.EntityID
		if key == "" {
			key = txn.VendorName
		}
		covered[key+"|"+txn.Date.UTC().Format("2006-01-02")] = true
		events = append(events, ledger.Event{Date: txn.Date, Amount: txn.Amount})
	}

	for _, rec := range forecasts {
		if covered[rec.EntityID+"|"+rec.Date.UTC().Format("2006-01-02")] {
			continue
		}
		events = append(events, ledger.Event{Date: rec.Date, Amount: rec.Amount})
	}

	return events
}

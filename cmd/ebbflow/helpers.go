package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ebbflow-cash/ebbflow/internal/config"
	"github.com/ebbflow-cash/ebbflow/internal/detect"
	"github.com/ebbflow-cash/ebbflow/internal/engine"
	"github.com/ebbflow-cash/ebbflow/internal/service"
	"github.com/ebbflow-cash/ebbflow/internal/storage"
)

const dateLayout = "2006-01-02"

// initStorage opens the database and applies pending migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/ebbflow/ebbflow.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine wires storage, detection config, and the forecast engine.
func initEngine(ctx context.Context, opts ...engine.Option) (*engine.ForecastEngine, service.Storage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	detectCfg, err := config.LoadDetectConfig()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	// Rules declared in the config file are synced into storage so they
	// merge with manually added ones.
	configRules, err := config.LoadGroupRules()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	for _, rule := range configRules {
		if err := store.SaveGroupRule(ctx, rule); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
	}

	eng := engine.New(store, detect.NewDetector(detectCfg), opts...)
	return eng, store, nil
}

// parseDateFlag parses a YYYY-MM-DD flag value, returning the fallback
// when empty.
func parseDateFlag(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sthwalo/acc-sub003/internal/cache"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/config"
	"github.com/sthwalo/acc-sub003/internal/engine"
	"github.com/sthwalo/acc-sub003/internal/journal"
	"github.com/sthwalo/acc-sub003/internal/service"
	"github.com/sthwalo/acc-sub003/internal/storage"
)

const dateLayout = "2006-01-02"

// app bundles what a command needs to run.
type app struct {
	cfg   *config.Config
	store *storage.SQLiteStorage
	svc   *engine.Service
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// openApp loads the configuration, opens and migrates the database and builds the service.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, common.NewUserError("Could not open the database at "+cfg.Database.Path, err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &app{
		cfg:   cfg,
		store: store,
		svc:   engine.NewService(store, cache.New(), serviceConfig(cfg)),
	}, nil
}

func serviceConfig(cfg *config.Config) engine.Config {
	ec := engine.DefaultConfig()
	ec.Format.ContinuationCreditOverride = cfg.Statement.ContinuationCreditOverride
	ec.Floor = cfg.Classification.Floor
	ec.AutoThreshold = cfg.Classification.AutoThreshold
	ec.LearnedPriority = cfg.Classification.LearnedPriority
	ec.LearnedKeywords = cfg.Classification.LearnedKeywords
	ec.Journal = journal.Config{
		BankAccountCode:           cfg.Ledger.BankAccountCode,
		BankAccountName:           cfg.Ledger.BankAccountName,
		OpeningBalanceAccountCode: cfg.Ledger.OpeningBalanceAccountCode,
		OpeningBalanceAccountName: cfg.Ledger.OpeningBalanceAccountName,
		CreatedBy:                 cfg.Ledger.CreatedBy,
		Retry: service.RetryOptions{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialDelay: cfg.Retry.InitialDelay,
			MaxDelay:     cfg.Retry.MaxDelay,
			Multiplier:   cfg.Retry.Multiplier,
		},
	}
	return ec
}

func addCompanyFlag(cmd *cobra.Command) {
	cmd.Flags().Int64P("company", "c", 0, "company ID")
	_ = cmd.MarkFlagRequired("company")
}

func companyID(cmd *cobra.Command) int64 {
	id, _ := cmd.Flags().GetInt64("company")
	return id
}

// expandFiles resolves glob patterns into the files they name.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func parseDate(flag, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("--%s must be a date like 2024-03-01", flag), err)
	}
	return t, nil
}

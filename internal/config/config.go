// Package config loads the application settings from viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
)

// DefaultDatabasePath is used when database.path is not configured.
const DefaultDatabasePath = "$HOME/.local/share/fin/fin.db"

// Config is the validated application configuration.
type Config struct {
	Database       DatabaseConfig
	Logging        LoggingConfig
	Ledger         LedgerConfig
	Classification ClassificationConfig
	Statement      StatementConfig
	Retry          RetryConfig
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// LedgerConfig names the accounts every company's books are built around.
type LedgerConfig struct {
	BankAccountCode           string
	BankAccountName           string
	OpeningBalanceAccountCode string
	OpeningBalanceAccountName string
	CreatedBy                 string
}

// ClassificationConfig tunes rule matching and learning.
type ClassificationConfig struct {
	Floor           float64
	AutoThreshold   float64
	LearnedPriority int
	LearnedKeywords int
}

// StatementConfig tunes the statement parser.
type StatementConfig struct {
	ContinuationCreditOverride bool
}

// RetryConfig controls retries of busy database writes.
type RetryConfig struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
	Multiplier   float64
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("ledger.bank_account_code", "1100")
	v.SetDefault("ledger.bank_account_name", "Bank - Current Account")
	v.SetDefault("ledger.opening_balance_account_code", "3200")
	v.SetDefault("ledger.opening_balance_account_name", "Opening Balance Equity")
	v.SetDefault("ledger.created_by", "system")
	v.SetDefault("classification.floor", model.ConfidenceFloor)
	v.SetDefault("classification.auto_threshold", model.AutoClassifyThreshold)
	v.SetDefault("classification.learned_priority", 10)
	v.SetDefault("classification.learned_keywords", 3)
	v.SetDefault("statement.continuation_credit_override", true)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_delay", 50*time.Millisecond)
	v.SetDefault("retry.max_delay", time.Second)
	v.SetDefault("retry.multiplier", 2.0)
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Ledger: LedgerConfig{
			BankAccountCode:           v.GetString("ledger.bank_account_code"),
			BankAccountName:           v.GetString("ledger.bank_account_name"),
			OpeningBalanceAccountCode: v.GetString("ledger.opening_balance_account_code"),
			OpeningBalanceAccountName: v.GetString("ledger.opening_balance_account_name"),
			CreatedBy:                 v.GetString("ledger.created_by"),
		},
		Classification: ClassificationConfig{
			Floor:           v.GetFloat64("classification.floor"),
			AutoThreshold:   v.GetFloat64("classification.auto_threshold"),
			LearnedPriority: v.GetInt("classification.learned_priority"),
			LearnedKeywords: v.GetInt("classification.learned_keywords"),
		},
		Statement: StatementConfig{
			ContinuationCreditOverride: v.GetBool("statement.continuation_credit_override"),
		},
		Retry: RetryConfig{
			MaxAttempts:  v.GetInt("retry.max_attempts"),
			InitialDelay: v.GetDuration("retry.initial_delay"),
			MaxDelay:     v.GetDuration("retry.max_delay"),
			Multiplier:   v.GetFloat64("retry.multiplier"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(key, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s %s", common.ErrInvalidConfig, key, fmt.Sprintf(format, args...)))
	}
	missing := func(key string) {
		errs = append(errs, fmt.Errorf("%w: %s", common.ErrMissingConfig, key))
	}

	if c.Database.Path == "" {
		missing("database.path")
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		invalid("logging.level", "%q is not a log level", c.Logging.Level)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		invalid("logging.format", "%q must be console or json", c.Logging.Format)
	}
	if c.Ledger.BankAccountCode == "" {
		missing("ledger.bank_account_code")
	}
	if c.Ledger.OpeningBalanceAccountCode == "" {
		missing("ledger.opening_balance_account_code")
	}
	if c.Ledger.BankAccountCode == c.Ledger.OpeningBalanceAccountCode {
		invalid("ledger.opening_balance_account_code", "must differ from the bank account")
	}

	cl := c.Classification
	for key, value := range map[string]float64{
		"classification.floor":          cl.Floor,
		"classification.auto_threshold": cl.AutoThreshold,
	} {
		if value < 0 || value > 1 {
			invalid(key, "%v must be between 0 and 1", value)
		}
	}
	if cl.Floor > cl.AutoThreshold {
		invalid("classification.floor", "must not exceed classification.auto_threshold")
	}
	if cl.LearnedPriority < 0 {
		invalid("classification.learned_priority", "must not be negative")
	}
	if cl.LearnedKeywords < 1 {
		invalid("classification.learned_keywords", "must be at least 1")
	}

	if c.Retry.MaxAttempts < 1 {
		invalid("retry.max_attempts", "must be at least 1")
	}
	return errors.Join(errs...)
}

// Package config loads cashpulse preferences from TOML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/cashpulse/internal/model"
)

// Environment variables that override file settings.
const (
	EnvDB       = "CASHPULSE_DB"
	EnvDBDriver = "CASHPULSE_DB_DRIVER"
	EnvLogLevel = "LOG_LEVEL"
)

// Config holds all cashpulse configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Classifier ClassifierConfig `toml:"classifier"`
	Scoring    ScoringConfig    `toml:"scoring"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds storage and logging preferences.
type GeneralConfig struct {
	DBDriver string `toml:"db_driver"`
	DBPath   string `toml:"db_path,omitempty"`
	// CurrencyExponent is the number of decimal places in the currency (2 for cents).
	CurrencyExponent int32  `toml:"currency_exponent"`
	CurrencySymbol   string `toml:"currency_symbol"`
	LogLevel         string `toml:"log_level"`
	LogFormat        string `toml:"log_format"`
}

// ClassifierConfig holds the keyword lists used to spot income and savings transfers.
type ClassifierConfig struct {
	IncomeKeywords          []string `toml:"income_keywords"`
	SavingsTransferKeywords []string `toml:"savings_transfer_keywords"`
}

// ScoringConfig holds pillar weights in percent.
type ScoringConfig struct {
	BudgetComplianceWeight    float64 `toml:"budget_compliance_weight"`
	SpendingConsistencyWeight float64 `toml:"spending_consistency_weight"`
	SavingsHealthWeight       float64 `toml:"savings_health_weight"`
	CashSurvivalWeight        float64 `toml:"cash_survival_weight"`
}

// Sum returns the total of all weights.
func (s ScoringConfig) Sum() float64 {
	return s.BudgetComplianceWeight + s.SpendingConsistencyWeight + s.SavingsHealthWeight + s.CashSurvivalWeight
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	Addr       string `toml:"addr"`
	Schedule   string `toml:"schedule"`
	EventsSize int    `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DBDriver:         "sqlite",
			CurrencyExponent: 2,
			CurrencySymbol:   "R",
			LogLevel:         "info",
			LogFormat:        "text",
		},
		Classifier: ClassifierConfig{
			IncomeKeywords:          []string{"salary", "wage", "pay", "income"},
			SavingsTransferKeywords: []string{"transfer from cheque", "transfer to cheque"},
		},
		Scoring: ScoringConfig{
			BudgetComplianceWeight:    30,
			SpendingConsistencyWeight: 25,
			SavingsHealthWeight:       25,
			CashSurvivalWeight:        20,
		},
		Daemon: DaemonConfig{
			Addr:       "127.0.0.1:8421",
			Schedule:   "@every 1m",
			EventsSize: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cashpulse")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cashpulse")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cashpulse")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "cashpulse")
}

// DefaultDBPath returns the sqlite database path used when none is configured.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "cashpulse.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen config path
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDB); v != "" {
		cfg.General.DBPath = v
	}
	if v := os.Getenv(EnvDBDriver); v != "" {
		cfg.General.DBDriver = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.General.LogLevel = v
	}
}

// Validate checks values the rest of the program relies on.
func Validate(cfg Config) error {
	switch cfg.General.DBDriver {
	case "sqlite", "postgres":
	default:
		return model.Invalid("config", "general.db_driver", "oneof=sqlite postgres")
	}
	if cfg.General.CurrencyExponent < 0 || cfg.General.CurrencyExponent > 8 {
		return model.Invalid("config", "general.currency_exponent", "range=0..8")
	}
	s := cfg.Scoring
	for _, w := range []float64{s.BudgetComplianceWeight, s.SpendingConsistencyWeight, s.SavingsHealthWeight, s.CashSurvivalWeight} {
		if w < 0 {
			return model.Invalid("config", "scoring", "weights>=0")
		}
	}
	if sum := s.Sum(); sum < 99.999 || sum > 100.001 {
		return model.Invalid("config", "scoring", "sum=100")
	}
	return nil
}

// DBPath returns the configured database location, falling back to the
// default sqlite path.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	return DefaultDBPath()
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

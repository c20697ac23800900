package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/expense-extractor/internal/mapping"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the binaries look for configuration.
const DefaultPath = "expense-extractor.yaml"

// Config represents the expense-extractor.yaml configuration.
type Config struct {
	AI      AIConfig        `yaml:"ai"`
	SMS     SMSConfig       `yaml:"sms"`
	Storage StorageConfig   `yaml:"storage"`
	Notion  NotionConfig    `yaml:"notion"`
	Server  ServerConfig    `yaml:"server"`
	Log     LogConfig       `yaml:"log"`
	Billers []mapping.Entry `yaml:"billers,omitempty"` // overrides merged over the default table
	// DisabledBillers are built-in billers removed from the table, e.g. short
	// phrases that match inside unrelated words.
	DisabledBillers []string `yaml:"disabled_billers,omitempty"`
}

// AIConfig controls the optional completion pass for statements.
type AIConfig struct {
	Enabled     bool    `yaml:"enabled"`
	APIKey      string  `yaml:"api_key,omitempty"`
	Model       string  `yaml:"model"`
	MaxChars    int     `yaml:"max_chars"`
	RetryChars  int     `yaml:"retry_chars"`
	Temperature float32 `yaml:"temperature"`
}

// SMSConfig holds the SMS direction policy.
type SMSConfig struct {
	DropIncoming bool `yaml:"drop_incoming"`
}

// StorageConfig locates the Expense Store backends. Empty values disable
// the corresponding backend.
type StorageConfig struct {
	SQLitePath      string `yaml:"sqlite_path"`
	GCPProject      string `yaml:"gcp_project"`
	BigQueryDataset string `yaml:"bigquery_dataset"`
	GCSBucket       string `yaml:"gcs_bucket"`
}

// NotionConfig identifies the export database.
type NotionConfig struct {
	Token      string `yaml:"token,omitempty"`
	DatabaseID string `yaml:"database_id"`
}

// ServerConfig sizes the HTTP server and job queue.
type ServerConfig struct {
	Port       string `yaml:"port"`
	Workers    int    `yaml:"workers"`
	QueueSize  int    `yaml:"queue_size"`
	MaxRetries int    `yaml:"max_retries"`
	// ReloadInterval re-reads biller overrides written by other processes.
	// Zero disables it.
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// LogConfig selects level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// Default returns a Config with the built-in budgets and AI disabled.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Model:       "gemini-2.5-flash",
			MaxChars:    6000,
			RetryChars:  3000,
			Temperature: 0.1,
		},
		Storage: StorageConfig{
			SQLitePath:      "expenses.db",
			BigQueryDataset: "expenses",
		},
		Server: ServerConfig{
			Port:           "8080",
			Workers:        5,
			QueueSize:      100,
			MaxRetries:     3,
			ReloadInterval: 5 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file. Secrets are written too, so keep the
// file private.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from environment variables looked up with
// getenv (os.Getenv when nil).
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	str("GEMINI_API_KEY", &c.AI.APIKey)
	str("EXPENSE_AI_MODEL", &c.AI.Model)
	str("GCP_PROJECT", &c.Storage.GCPProject)
	str("GCS_BUCKET", &c.Storage.GCSBucket)
	str("BIGQUERY_DATASET", &c.Storage.BigQueryDataset)
	str("SQLITE_PATH", &c.Storage.SQLitePath)
	str("NOTION_TOKEN", &c.Notion.Token)
	str("NOTION_DATABASE_ID", &c.Notion.DatabaseID)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("PORT", &c.Server.Port)

	if v := strings.TrimSpace(getenv("EXPENSE_AI_ENABLED")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("EXPENSE_AI_ENABLED: %w", err)
		}
		c.AI.Enabled = b
	}
	return nil
}

// Validate checks budgets and sizes.
func (c *Config) Validate() error {
	var errs []error
	if c.AI.MaxChars <= 0 {
		errs = append(errs, fmt.Errorf("ai.max_chars must be positive, got %d", c.AI.MaxChars))
	}
	if c.AI.RetryChars <= 0 {
		errs = append(errs, fmt.Errorf("ai.retry_chars must be positive, got %d", c.AI.RetryChars))
	} else if c.AI.RetryChars >= c.AI.MaxChars {
		errs = append(errs, fmt.Errorf("ai.retry_chars (%d) must be below ai.max_chars (%d)", c.AI.RetryChars, c.AI.MaxChars))
	}
	if c.Server.Workers <= 0 {
		errs = append(errs, fmt.Errorf("server.workers must be positive, got %d", c.Server.Workers))
	}
	if c.Server.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("server.queue_size must be positive, got %d", c.Server.QueueSize))
	}
	if c.Server.ReloadInterval < 0 {
		errs = append(errs, fmt.Errorf("server.reload_interval must not be negative, got %s", c.Server.ReloadInterval))
	}
	if c.Server.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("server.max_retries must not be negative, got %d", c.Server.MaxRetries))
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// AIReady reports whether the AI pass can be wired: enabled with a key.
func (c *Config) AIReady() bool {
	return c.AI.Enabled && c.AI.APIKey != ""
}

// Table builds the mapping table: defaults with the configured overrides.
func (c *Config) Table() (*mapping.Table, error) {
	t := mapping.Default()
	if len(c.DisabledBillers) > 0 {
		t = t.Without(c.DisabledBillers...)
	}
	if len(c.Billers) == 0 {
		return t, nil
	}
	t, err := t.With(c.Billers...)
	if err != nil {
		return nil, fmt.Errorf("config billers: %w", err)
	}
	return t, nil
}

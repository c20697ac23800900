package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dvloznov/expense-extractor/internal/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.AI.Enabled = true
	cfg.SMS.DropIncoming = true
	cfg.Billers = []mapping.Entry{{Biller: "CORNER CAFE", Category: "Food & Dining"}}

	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, 6000, cfg.AI.MaxChars)
	assert.Equal(t, 3000, cfg.AI.RetryChars)
	assert.Equal(t, 5, cfg.Server.Workers)
	assert.Equal(t, 100, cfg.Server.QueueSize)
	assert.Equal(t, 3, cfg.Server.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.Server.ReloadInterval)
	assert.False(t, cfg.SMS.DropIncoming)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sms:\n  drop_incoming: true\nserver:\n  port: \"9090\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.SMS.DropIncoming)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 6000, cfg.AI.MaxChars)
	assert.Equal(t, 5, cfg.Server.Workers)
}

func TestLoad_ReloadInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  reload_interval: 30s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Server.ReloadInterval)

	cfg.Server.ReloadInterval = -time.Second
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.reload_interval")
}

func TestLoadNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nonexistent.yaml")
	_, err := Load(missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOrDefault(missing)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai: [unclosed"), 0o600))
	_, err := LoadOrDefault(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":     "key-123",
		"EXPENSE_AI_ENABLED": "true",
		"GCS_BUCKET":         "statements",
		"NOTION_DATABASE_ID": "db-1",
		"LOG_LEVEL":          "debug",
		"PORT":               "  ",
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "key-123", cfg.AI.APIKey)
	assert.True(t, cfg.AI.Enabled)
	assert.True(t, cfg.AIReady())
	assert.Equal(t, "statements", cfg.Storage.GCSBucket)
	assert.Equal(t, "db-1", cfg.Notion.DatabaseID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "8080", cfg.Server.Port)

	err := Default().ApplyEnv(func(k string) string {
		if k == "EXPENSE_AI_ENABLED" {
			return "maybe"
		}
		return ""
	})
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("EXPENSE_EXTRACTOR_TEST_VAR=from-file\n"), 0o600))
	t.Setenv("EXPENSE_EXTRACTOR_TEST_VAR", "")
	os.Unsetenv("EXPENSE_EXTRACTOR_TEST_VAR")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("EXPENSE_EXTRACTOR_TEST_VAR"))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.AI.RetryChars = cfg.AI.MaxChars
	cfg.Server.Workers = 0
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry_chars")
	assert.Contains(t, err.Error(), "server.workers")
	assert.Contains(t, err.Error(), "log.format")
}

func TestTable(t *testing.T) {
	cfg := Default()
	table, err := cfg.Table()
	require.NoError(t, err)
	assert.Same(t, mapping.Default(), table)

	cfg.Billers = []mapping.Entry{{Biller: "Swiggy", Category: "Groceries"}}
	table, err = cfg.Table()
	require.NoError(t, err)
	assert.Equal(t, "Groceries", table.Categorize("swiggy order"))

	cfg.Billers = []mapping.Entry{{Biller: "Swiggy", Category: "Snacks"}}
	_, err = cfg.Table()
	assert.True(t, errors.Is(err, mapping.ErrUnknownCategory))
}

func TestTable_DisabledBillers(t *testing.T) {
	cfg := Default()
	cfg.DisabledBillers = []string{"swiggy"}
	table, err := cfg.Table()
	require.NoError(t, err)
	_, ok := table.Lookup("SWIGGY")
	assert.False(t, ok)
	assert.Equal(t, mapping.Default().Len()-1, table.Len())

	// an explicit mapping still wins over a disabled built-in
	cfg.Billers = []mapping.Entry{{Biller: "SWIGGY", Category: "Groceries"}}
	table, err = cfg.Table()
	require.NoError(t, err)
	c, ok := table.Lookup("SWIGGY")
	require.True(t, ok)
	assert.Equal(t, "Groceries", c)
}

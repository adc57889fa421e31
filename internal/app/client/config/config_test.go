package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("ROSTER_URL", "https://sheets.example.com/roster")
	t.Setenv("HISTORY_URL", "https://sheets.example.com/history")
	t.Setenv("FORM_URL", "https://forms.example.com/formResponse")
	t.Setenv("CONFIG_DIR", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, 40, cfg.TotalUnits)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, BackoffFixed, cfg.RetryBackoff)
	assert.Equal(t, "entry.1695051506", cfg.Form.Document)
	assert.Equal(t, filepath.Join(cfg.ConfigDir, "snapshot.db"), cfg.DataPath)
	assert.True(t, cfg.SnapshotEnable)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SYNC_INTERVAL_MS", "5000")
	t.Setenv("TOTAL_UNITS", "12")
	t.Setenv("RETRY_BACKOFF", "Exponential")
	t.Setenv("FORM_ENTRY_COMMENT", "entry.1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.SyncInterval)
	assert.Equal(t, 12, cfg.TotalUnits)
	assert.Equal(t, BackoffExponential, cfg.RetryBackoff)
	assert.Equal(t, "entry.1", cfg.Form.Comment)
}

func TestLoad_ConfigFile(t *testing.T) {
	setRequired(t)
	os.Unsetenv("ROSTER_URL")

	path := filepath.Join(t.TempDir(), "equiploan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ROSTER_URL: https://sheets.example.com/from-file\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://sheets.example.com/from-file", cfg.RosterURL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			RosterURL:     "https://a.example.com/r",
			HistoryURL:    "https://a.example.com/h",
			FormURL:       "http://a.example.com/f",
			SyncInterval:  time.Second,
			TotalUnits:    40,
			RetryAttempts: 3,
			RetryBackoff:  BackoffFixed,
			HTTPTimeout:   time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty roster url", mutate: func(c *Config) { c.RosterURL = "" }, wantErr: "roster_url"},
		{name: "relative form url", mutate: func(c *Config) { c.FormURL = "/form" }, wantErr: "form_url"},
		{name: "ftp history url", mutate: func(c *Config) { c.HistoryURL = "ftp://x/y" }, wantErr: "history_url"},
		{name: "zero units", mutate: func(c *Config) { c.TotalUnits = 0 }, wantErr: "total_units"},
		{name: "zero attempts", mutate: func(c *Config) { c.RetryAttempts = 0 }, wantErr: "retry_attempts"},
		{name: "unknown backoff", mutate: func(c *Config) { c.RetryBackoff = "jitter" }, wantErr: "retry_backoff"},
		{name: "zero interval", mutate: func(c *Config) { c.SyncInterval = 0 }, wantErr: "sync_interval_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMustLoad_PanicsOnInvalid(t *testing.T) {
	setRequired(t)
	t.Setenv("FORM_URL", "")

	assert.Panics(t, func() { MustLoad("") })
}

func TestLoad_SheetTimezone(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantName string
		wantErr  bool
	}{
		{name: "host zone by default", value: "", wantName: time.Local.String()},
		{name: "named zone", value: "America/Bogota", wantName: "America/Bogota"},
		{name: "unknown zone", value: "Mars/Olympus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("SHEET_TIMEZONE", tt.value)

			cfg, err := Load("")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "sheet_timezone")
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg.SheetLocation)
			assert.Equal(t, tt.wantName, cfg.SheetLocation.String())
		})
	}
}

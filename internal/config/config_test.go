package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "LOG_LEVEL", "STORE_BACKEND", "STORE_CACHE_TTL", "LOCAL_DATA_DIR",
		"LOCAL_FILE_FORMAT", "GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID",
		"MONGODB_URI", "MONGODB_DB_NAME", "LOW_STOCK_ELECTRONICS", "LOW_STOCK_FASTENERS",
		"LOW_STOCK_PCBS", "LOW_STOCK_CRON", "TIMEZONE", "NOTIFY_WEBHOOK_URL",
		"BOM_NO_STOCK_MARKERS", "BOM_REPORT_TTL", "UPLOAD_MAX_BYTES",
	} {
		t.Setenv(key, "")
	}
}

func emptyEnvFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("# no overrides\n"), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(10<<20), cfg.Server.UploadMaxBytes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, BackendLocal, cfg.Store.Backend)
	assert.Zero(t, cfg.Store.CacheTTL)
	assert.Equal(t, "./data", cfg.Local.DataDir)
	assert.Equal(t, "xlsx", cfg.Local.Format)
	assert.Equal(t, "labstock", cfg.MongoDB.DBName)
	assert.Equal(t, map[string]int{"electronics": 10, "fasteners": 20, "pcbs": 5}, cfg.Inventory.LowStock)
	assert.Equal(t, []string{"无货"}, cfg.Inventory.NoStockMarkers)
	assert.Equal(t, 30*time.Minute, cfg.Inventory.ReportTTL)
	assert.Equal(t, "0 9 * * 1-5", cfg.Alerts.CronSchedule)
	assert.Equal(t, "UTC", cfg.Alerts.Timezone)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("STORE_CACHE_TTL", "15s")
	t.Setenv("LOW_STOCK_PCBS", "2")
	t.Setenv("BOM_NO_STOCK_MARKERS", "无货, out of stock ,")

	cfg, err := Load(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 15*time.Second, cfg.Store.CacheTTL)
	assert.Equal(t, 2, cfg.Inventory.LowStock["pcbs"])
	assert.Equal(t, []string{"无货", "out of stock"}, cfg.Inventory.NoStockMarkers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad duration":       {"STORE_CACHE_TTL": "soon"},
		"bad threshold":      {"LOW_STOCK_FASTENERS": "many"},
		"unknown backend":    {"STORE_BACKEND": "postgres"},
		"sheets needs creds": {"STORE_BACKEND": "sheets"},
		"mongo needs uri":    {"STORE_BACKEND": "mongo"},
		"bad file format":    {"LOCAL_FILE_FORMAT": "ods"},
		"negative threshold": {"LOW_STOCK_ELECTRONICS": "-1"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(emptyEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestValidateNil(t *testing.T) {
	var cfg *Config
	assert.Error(t, cfg.Validate())
}

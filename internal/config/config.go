package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendLocal  = "local"
	BackendSheets = "sheets"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	Local     LocalConfig
	Sheets    SheetsConfig
	MongoDB   MongoDBConfig
	Inventory InventoryConfig
	Alerts    AlertsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	UploadMaxBytes int64
}

// LogConfig selects the minimum log level.
type LogConfig struct {
	Level string
}

// StoreConfig picks the record store backend and its read cache.
type StoreConfig struct {
	Backend  string
	CacheTTL time.Duration
}

// LocalConfig configures the spreadsheet-file backend.
type LocalConfig struct {
	DataDir string
	Format  string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// InventoryConfig carries the per-kind low-stock thresholds and BOM settings.
type InventoryConfig struct {
	LowStock       map[string]int
	NoStockMarkers []string
	ReportTTL      time.Duration
}

// AlertsConfig holds scheduler-related settings.
type AlertsConfig struct {
	CronSchedule string
	Timezone     string
	WebhookURL   string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	cacheTTL, err := durationFromEnv("STORE_CACHE_TTL", 0)
	if err != nil {
		return nil, err
	}
	reportTTL, err := durationFromEnv("BOM_REPORT_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	uploadMax, err := intFromEnv("UPLOAD_MAX_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}

	lowStock := make(map[string]int, 3)
	for kind, fallback := range map[string]int{"electronics": 10, "fasteners": 20, "pcbs": 5} {
		v, err := intFromEnv("LOW_STOCK_"+strings.ToUpper(kind), fallback)
		if err != nil {
			return nil, err
		}
		lowStock[kind] = v
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			UploadMaxBytes: int64(uploadMax),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(getenvWithDefault("STORE_BACKEND", BackendLocal)),
			CacheTTL: cacheTTL,
		},
		Local: LocalConfig{
			DataDir: getenvWithDefault("LOCAL_DATA_DIR", "./data"),
			Format:  strings.ToLower(getenvWithDefault("LOCAL_FILE_FORMAT", "xlsx")),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "labstock"),
		},
		Inventory: InventoryConfig{
			LowStock:       lowStock,
			NoStockMarkers: splitList(getenvWithDefault("BOM_NO_STOCK_MARKERS", "无货")),
			ReportTTL:      reportTTL,
		},
		Alerts: AlertsConfig{
			CronSchedule: getenvWithDefault("LOW_STOCK_CRON", "0 9 * * 1-5"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
			WebhookURL:   os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if c.Server.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}

	switch c.Store.Backend {
	case BackendLocal:
		if c.Local.DataDir == "" {
			return errors.New("LOCAL_DATA_DIR must not be empty")
		}
		if c.Local.Format != "xlsx" && c.Local.Format != "csv" {
			return fmt.Errorf("LOCAL_FILE_FORMAT must be xlsx or csv, got %q", c.Local.Format)
		}
	case BackendSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
		}
	case BackendMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND %q is not supported", c.Store.Backend)
	}

	for kind, threshold := range c.Inventory.LowStock {
		if threshold < 0 {
			return fmt.Errorf("LOW_STOCK_%s must not be negative", strings.ToUpper(kind))
		}
	}

	if c.Inventory.ReportTTL <= 0 {
		return errors.New("BOM_REPORT_TTL must be positive")
	}

	if c.Alerts.CronSchedule == "" {
		return errors.New("LOW_STOCK_CRON must be provided")
	}

	if c.Alerts.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

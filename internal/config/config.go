package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Catalog CatalogConfig
	Summary SummaryConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port      string
	PublicDir string
}

// StorageConfig selects and parameterizes the record store backend. When
// MongoURI is empty the service falls back to the JSON file store in
// DataDir.
type StorageConfig struct {
	DataDir         string
	DepartmentsPath string
	MongoURI        string
	MongoDBName     string
	Timezone        string
}

// CatalogConfig locates the master item and sub-department routing tables.
// A Google Sheet takes precedence over local CSV files when SheetID is set.
type CatalogConfig struct {
	CatalogPath     string
	SubDeptPath     string
	SheetID         string
	CredentialsPath string
	MasterRange     string
	RoutingRange    string
}

// SummaryConfig holds the daily shrink summary job settings. An empty
// WebhookURL keeps the summary log-only.
type SummaryConfig struct {
	CronSchedule string
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
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:      getenvWithDefault("APP_PORT", "8080"),
			PublicDir: os.Getenv("PUBLIC_DIR"),
		},
		Storage: StorageConfig{
			DataDir:         getenvWithDefault("DATA_DIR", "data"),
			DepartmentsPath: getenvWithDefault("DEPARTMENTS_PATH", "departments.json"),
			MongoURI:        os.Getenv("MONGODB_URI"),
			MongoDBName:     getenvWithDefault("MONGODB_DB_NAME", "shrinktrack"),
			Timezone:        getenvWithDefault("TIMEZONE", "Local"),
		},
		Catalog: CatalogConfig{
			CatalogPath:     os.Getenv("CATALOG_PATH"),
			SubDeptPath:     os.Getenv("SUBDEPT_PATH"),
			SheetID:         os.Getenv("CATALOG_SHEET_ID"),
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			MasterRange:     getenvWithDefault("CATALOG_SHEET_MASTER_RANGE", "Catalog!A:Z"),
			RoutingRange:    getenvWithDefault("CATALOG_SHEET_ROUTING_RANGE", "SubDepartments!A:B"),
		},
		Summary: SummaryConfig{
			CronSchedule: getenvWithDefault("SUMMARY_CRON", "0 6 * * *"),
			WebhookURL:   os.Getenv("SUMMARY_WEBHOOK_URL"),
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

	if c.Storage.DataDir == "" {
		return errors.New("DATA_DIR must be provided")
	}

	if c.Storage.DepartmentsPath == "" {
		return errors.New("DEPARTMENTS_PATH must be provided")
	}

	if c.Storage.MongoURI != "" && c.Storage.MongoDBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	if c.Catalog.SheetID != "" && c.Catalog.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when CATALOG_SHEET_ID is set")
	}

	if c.Summary.CronSchedule == "" {
		return errors.New("SUMMARY_CRON must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

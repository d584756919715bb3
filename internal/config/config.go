package config

import (
	"os"
	"strconv"

	"gotasks/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Logging  LoggingConfig
	Import   ImportConfig
	Metrics  MetricsConfig
	Google   GoogleConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	GinMode        string
	SingleUserMode bool // every request acts as the default user
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// ImportConfig holds spreadsheet import settings
type ImportConfig struct {
	SampleRows         int     // rows profiled and echoed by analyze
	MaxUploadMB        int     // multipart upload limit
	MaxReturnedTasks   int     // tasks echoed back in an import report
	FuzzyMinSimilarity float64 // admission floor for fuzzy candidates
}

// GoogleConfig holds Google Sheets fetch settings. Requests normally carry the
// caller's OAuth access token; APIKey only reaches publicly shared sheets.
type GoogleConfig struct {
	APIKey       string
	Endpoint     string // overrides the Sheets API base URL
	DefaultRange string // cell range read when a fetch names none
	Timeout      int    // seconds
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables and validates it.
// DATABASE_URL is required.
func Load() (*Config, error) {
	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}

	config := loadBase()
	config.Database = *dbConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadLocal reads configuration without requiring DATABASE_URL
func LoadLocal() (*Config, error) {
	config := loadBase()
	config.Database.URL = os.Getenv("DATABASE_URL")

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadBase() *Config {
	return &Config{
		Server:  *loadServerConfig(),
		Logging: *loadLoggingConfig(),
		Import:  *loadImportConfig(),
		Metrics: MetricsConfig{Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true)},
		Google:  *loadGoogleConfig(),
	}
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:             url,
		MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvIntOrDefault("DB_CONN_MAX_LIFETIME", 300),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "debug"),
		SingleUserMode: getEnvBoolOrDefault("SINGLE_USER_MODE", true),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

func loadImportConfig() *ImportConfig {
	return &ImportConfig{
		SampleRows:         getEnvIntOrDefault("IMPORT_SAMPLE_ROWS", 10),
		MaxUploadMB:        getEnvIntOrDefault("IMPORT_MAX_UPLOAD_MB", 20),
		MaxReturnedTasks:   getEnvIntOrDefault("IMPORT_MAX_RETURNED_TASKS", 200),
		FuzzyMinSimilarity: getEnvFloatOrDefault("FUZZY_MIN_SIMILARITY", 0.6),
	}
}

func loadGoogleConfig() *GoogleConfig {
	return &GoogleConfig{
		APIKey:       os.Getenv("GOOGLE_API_KEY"),
		Endpoint:     os.Getenv("GOOGLE_SHEETS_ENDPOINT"),
		DefaultRange: getEnvOrDefault("GOOGLE_SHEETS_RANGE", "A1:Z1000"),
		Timeout:      getEnvIntOrDefault("GOOGLE_SHEETS_TIMEOUT", 30),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return errors.ConfigInvalid("LOG_FORMAT must be json or console")
	}
	if config.Import.SampleRows <= 0 {
		return errors.ConfigInvalid("IMPORT_SAMPLE_ROWS must be positive")
	}
	if config.Import.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("IMPORT_MAX_UPLOAD_MB must be positive")
	}
	if config.Import.MaxReturnedTasks < 0 {
		return errors.ConfigInvalid("IMPORT_MAX_RETURNED_TASKS cannot be negative")
	}
	if config.Import.FuzzyMinSimilarity <= 0 || config.Import.FuzzyMinSimilarity > 1 {
		return errors.ConfigInvalid("FUZZY_MIN_SIMILARITY must be in (0, 1]")
	}
	if config.Google.Timeout <= 0 {
		return errors.ConfigInvalid("GOOGLE_SHEETS_TIMEOUT must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

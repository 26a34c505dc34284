// Package config loads application configuration from config files,
// environment variables, and .env files.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dotshop/sheetsync/pkg/constants"
	"github.com/dotshop/sheetsync/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool

	// Config file
	ConfigFile string

	// Spreadsheet target
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string

	// Field mapping file for nonstandard scraper output (optional)
	MappingFile string

	// Sync tuning
	Mode         string
	MaxRetries   int
	RetryBackoff time.Duration
	BatchRows    int
	Workers      int
	RateLimit    int
	CallTimeout  time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.sheetsync.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SHEETSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	bindSheetEnv()

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".sheetsync")
		}
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),

		ConfigFile: viper.ConfigFileUsed(),

		SpreadsheetID:   viper.GetString("spreadsheet_id"),
		SheetName:       viper.GetString("sheet_name"),
		CredentialsFile: viper.GetString("credentials_file"),
		MappingFile:     viper.GetString("mapping_file"),

		Mode:         viper.GetString("mode"),
		MaxRetries:   viper.GetInt("max_retries"),
		RetryBackoff: viper.GetDuration("retry_backoff"),
		BatchRows:    viper.GetInt("batch_rows"),
		Workers:      viper.GetInt("workers"),
		RateLimit:    viper.GetInt("rate_limit"),
		CallTimeout:  viper.GetDuration("call_timeout"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
	}

	config.applyDefaults()
	return config, nil
}

// applyDefaults fills in zero values with the documented defaults.
func (c *Config) applyDefaults() {
	if c.SheetName == "" {
		c.SheetName = "Products"
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = "credentials.json"
	}
	if c.Mode == "" {
		c.Mode = "update"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = constants.MaxRetries
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = constants.RetryBackoff
	}
	if c.BatchRows == 0 {
		c.BatchRows = constants.MaxBatchRows
	}
	if c.Workers == 0 {
		c.Workers = constants.MaxConcurrentBatches
	}
	if c.RateLimit == 0 {
		c.RateLimit = constants.DefaultRateLimit
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = constants.CallTimeout
	}
}

// Validate checks that the configuration names a syncable target.
func (c *Config) Validate() error {
	if c.SpreadsheetID == "" {
		return errors.NewConfigError("sheets", "spreadsheet_id is not set", nil)
	}
	if c.CredentialsFile == "" {
		return errors.NewConfigError("sheets", "credentials_file is not set", nil)
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// bindSheetEnv explicitly binds the unprefixed credential variables that
// service-account setups conventionally export.
func bindSheetEnv() {
	for key, env := range map[string]string{
		"credentials_file": "GOOGLE_APPLICATION_CREDENTIALS",
		"spreadsheet_id":   "SPREADSHEET_ID",
	} {
		_ = viper.BindEnv(key, env)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

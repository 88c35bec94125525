// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// defaultProvinces lists the Region 6 provinces every geotag export is
// expected to cover.
var defaultProvinces = []string{
	"AKLAN", "ANTIQUE", "CAPIZ", "ILOILO", "GUIMARAS", "NEGROS OCCIDENTAL",
}

// Config represents the application configuration
type Config struct {
	// Matching settings
	SimilarityThreshold float64
	AreaToleranceHa     float64
	DateCutoff          time.Time
	ReferenceDate       time.Time

	// Age bracket bounds in whole completed years
	YouthMin  int
	YouthMax  int
	SeniorMin int

	// Coverage validation
	RequiredProvinces []string

	// File handling
	InputDir    string
	OutputDir   string
	AuditDBPath string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Default values
		SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", 0.85),
		AreaToleranceHa:     getEnvAsFloat("AREA_TOLERANCE_HA", 2.0),
		DateCutoff:          getEnvAsDate("DATE_CUTOFF", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		ReferenceDate:       getEnvAsDate("REFERENCE_DATE", time.Now().UTC()),
		YouthMin:            getEnvAsInt("AGE_YOUTH_MIN", 15),
		YouthMax:            getEnvAsInt("AGE_YOUTH_MAX", 30),
		SeniorMin:           getEnvAsInt("AGE_SENIOR_MIN", 60),
		RequiredProvinces:   getEnvAsList("REQUIRED_PROVINCES", defaultProvinces),
		InputDir:            getEnv("INPUT_DIR", "./input"),
		OutputDir:           getEnv("OUTPUT_DIR", "./output"),
		AuditDBPath:         getEnv("AUDIT_DB_PATH", "./output/audit.db"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return errors.New("similarity threshold must be in (0, 1]")
	}

	if c.AreaToleranceHa < 0 {
		return errors.New("area tolerance cannot be negative")
	}

	if c.YouthMin < 0 || c.YouthMin > c.YouthMax {
		return errors.New("youth bracket bounds are inverted")
	}

	if c.SeniorMin <= c.YouthMax {
		return errors.New("senior bracket must start above the youth bracket")
	}

	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("input and output directories are required")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDate(key string, defaultValue time.Time) time.Time {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.Parse("2006-01-02", valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			values = append(values, p)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

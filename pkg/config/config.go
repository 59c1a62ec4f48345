// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mhamadwd/Data-Wrangler/pkg/cleaner"
	"github.com/mhamadwd/Data-Wrangler/pkg/fileio"
	"github.com/mhamadwd/Data-Wrangler/pkg/merge"
	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// Config represents the application configuration
type Config struct {
	// Cleaning
	StandardizeColumns  bool
	InferTypes          bool
	TrimWhitespace      bool
	NullPolicy          string
	FillValue           string
	HasFillValue        bool
	DateColumns         []string
	DateFormat          string
	DatetimeColumns     []string
	DatetimeFormat      string
	AutoDetectDatetime  bool
	DetectionSampleSize int
	RemoveDuplicates    bool
	DuplicateSubset     []string

	// Merge
	MergeMode string
	JoinType  string

	// Input
	Delimiter          string
	DecimalSeparator   string
	ThousandsSeparator string
	Encoding           string
	EncodingSampleSize int

	// Output files (empty means not written)
	OutputPath     string
	ReportPath     string
	ReportJSONPath string
	LogPath        string

	// Database sinks (nil when disabled)
	Postgres     *PostgresConfig
	Snowflake    *SnowflakeConfig
	ExportSchema string

	// Tables cleaned at once; 1 cleans them one at a time in input order
	Workers int

	// Logging
	LogLevel  string
	LogFormat string
}

// maxWorkers caps the cleaning pool; each worker holds a copy of its table
const maxWorkers = 8

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		StandardizeColumns:  true,
		InferTypes:          true,
		TrimWhitespace:      true,
		NullPolicy:          string(cleaner.NullKeep),
		DateFormat:          cleaner.DefaultDateFormat,
		DatetimeFormat:      cleaner.DefaultDatetimeFormat,
		AutoDetectDatetime:  true,
		DetectionSampleSize: cleaner.DefaultDetectionSample,
		RemoveDuplicates:    true,
		MergeMode:           string(merge.ModePerSheet),
		JoinType:            string(merge.JoinOuter),
		Delimiter:           ",",
		DecimalSeparator:    ".",
		EncodingSampleSize:  fileio.DefaultSampleSize,
		ExportSchema:        "public",
		Workers:             1,
		LogLevel:            "info",
		LogFormat:           "console",
	}
}

// LoadDotEnv loads variables from .env files without overriding ones
// already set. A missing default .env file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from environment variables over the defaults
func LoadConfig() (*Config, error) {
	d := Defaults()
	cfg := &Config{
		StandardizeColumns:  getEnvAsBool("WRANGLE_STANDARDIZE_COLUMNS", d.StandardizeColumns),
		InferTypes:          getEnvAsBool("WRANGLE_INFER_DTYPES", d.InferTypes),
		TrimWhitespace:      getEnvAsBool("WRANGLE_TRIM_WHITESPACE", d.TrimWhitespace),
		NullPolicy:          getEnv("WRANGLE_NA_POLICY", d.NullPolicy),
		DateColumns:         getEnvAsStringSlice("WRANGLE_DATE_COLUMNS", nil),
		DateFormat:          getEnv("WRANGLE_DATE_FORMAT", d.DateFormat),
		DatetimeColumns:     getEnvAsStringSlice("WRANGLE_DATETIME_COLUMNS", nil),
		DatetimeFormat:      getEnv("WRANGLE_DATETIME_FORMAT", d.DatetimeFormat),
		AutoDetectDatetime:  getEnvAsBool("WRANGLE_AUTO_DETECT_DATETIME", d.AutoDetectDatetime),
		DetectionSampleSize: getEnvAsInt("WRANGLE_DETECTION_SAMPLE_SIZE", d.DetectionSampleSize),
		RemoveDuplicates:    getEnvAsBool("WRANGLE_REMOVE_DUPLICATES", d.RemoveDuplicates),
		DuplicateSubset:     getEnvAsStringSlice("WRANGLE_DUPLICATE_SUBSET", nil),
		MergeMode:           getEnv("WRANGLE_MERGE_MODE", d.MergeMode),
		JoinType:            getEnv("WRANGLE_JOIN_TYPE", d.JoinType),
		Delimiter:           getEnv("WRANGLE_DELIMITER", d.Delimiter),
		DecimalSeparator:    getEnv("WRANGLE_DECIMAL_SEPARATOR", d.DecimalSeparator),
		ThousandsSeparator:  getEnv("WRANGLE_THOUSANDS_SEPARATOR", ""),
		Encoding:            getEnv("WRANGLE_ENCODING", ""),
		EncodingSampleSize:  getEnvAsInt("WRANGLE_ENCODING_SAMPLE_SIZE", d.EncodingSampleSize),
		OutputPath:          getEnv("WRANGLE_OUTPUT", ""),
		ReportPath:          getEnv("WRANGLE_REPORT", ""),
		ReportJSONPath:      getEnv("WRANGLE_REPORT_JSON", ""),
		LogPath:             getEnv("WRANGLE_LOG", ""),
		ExportSchema:        getEnv("WRANGLE_EXPORT_SCHEMA", d.ExportSchema),
		Workers:             getEnvAsInt("WRANGLE_WORKERS", d.Workers),
		LogLevel:            getEnv("LOG_LEVEL", d.LogLevel),
		LogFormat:           getEnv("LOG_FORMAT", d.LogFormat),
	}
	if fill, ok := os.LookupEnv("WRANGLE_NA_FILL_VALUE"); ok {
		cfg.FillValue, cfg.HasFillValue = fill, true
	}

	if getEnvAsBool("WRANGLE_EXPORT_POSTGRES", false) {
		pg, err := LoadPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load PostgreSQL configuration: %w", err)
		}
		cfg.Postgres = pg
	}
	if getEnvAsBool("WRANGLE_EXPORT_SNOWFLAKE", false) {
		sf, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load Snowflake configuration: %w", err)
		}
		cfg.Snowflake = sf
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown option values before any work starts
func (c *Config) Validate() error {
	if _, err := cleaner.ParseNullPolicy(c.NullPolicy); err != nil {
		return err
	}
	if _, err := merge.ParseMode(c.MergeMode); err != nil {
		return err
	}
	if _, err := merge.ParseJoinType(c.JoinType); err != nil {
		return err
	}
	if len([]rune(c.delimiter())) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.DecimalSeparator == "" {
		return errors.New("decimal separator cannot be empty")
	}
	if c.DecimalSeparator == c.ThousandsSeparator {
		return errors.New("decimal and thousands separators must differ")
	}
	if c.DetectionSampleSize <= 0 {
		return errors.New("detection sample size must be positive")
	}
	if c.EncodingSampleSize <= 0 {
		return errors.New("encoding sample size must be positive")
	}
	if c.Workers < 1 || c.Workers > maxWorkers {
		return fmt.Errorf("workers must be between 1 and %d", maxWorkers)
	}
	return nil
}

// CleanerOptions converts the configuration into pipeline options
func (c *Config) CleanerOptions() (cleaner.Options, error) {
	policy, err := cleaner.ParseNullPolicy(c.NullPolicy)
	if err != nil {
		return cleaner.Options{}, err
	}

	opts := cleaner.Options{
		StandardizeColumns:  c.StandardizeColumns,
		InferTypes:          c.InferTypes,
		TrimWhitespace:      c.TrimWhitespace,
		NullPolicy:          policy,
		DateColumns:         c.DateColumns,
		DateFormat:          c.DateFormat,
		DatetimeColumns:     c.DatetimeColumns,
		DatetimeFormat:      c.DatetimeFormat,
		AutoDetectDatetime:  c.AutoDetectDatetime,
		DetectionSampleSize: c.DetectionSampleSize,
		RemoveDuplicates:    c.RemoveDuplicates,
		DuplicateSubset:     c.DuplicateSubset,
		Numbers: cleaner.NumberFormat{
			Decimal:   c.DecimalSeparator,
			Thousands: c.ThousandsSeparator,
		},
	}
	if policy == cleaner.NullFill && c.HasFillValue {
		fill := ParseScalar(c.FillValue)
		opts.FillValue = &fill
	}
	return opts, nil
}

// ReadOptions converts the configuration into file reader options
func (c *Config) ReadOptions() fileio.ReadOptions {
	opts := fileio.DefaultReadOptions()
	opts.Delimiter = c.delimiter()
	opts.Encoding = c.Encoding
	opts.SampleSize = c.EncodingSampleSize
	return opts
}

// MergeSettings returns the parsed merge mode and join type
func (c *Config) MergeSettings() (merge.Mode, merge.JoinType, error) {
	mode, err := merge.ParseMode(c.MergeMode)
	if err != nil {
		return "", "", err
	}
	join, err := merge.ParseJoinType(c.JoinType)
	if err != nil {
		return "", "", err
	}
	return mode, join, nil
}

// ParseScalar reads a fill value typed on the command line: numbers and
// true/false keep their type, anything else is text
func ParseScalar(s string) model.Value {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return model.NumberValue(f)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return model.BoolValue(true)
	case "false":
		return model.BoolValue(false)
	}
	return model.TextValue(s)
}

// delimiter expands the names people type for a tab
func (c *Config) delimiter() string {
	switch strings.ToLower(c.Delimiter) {
	case `\t`, "tab", "\t":
		return "\t"
	default:
		return c.Delimiter
	}
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsStringSlice parses a comma-separated list; double quotes protect commas
func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	result := SplitList(value)
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

// SplitList splits a comma-separated list, trimming blanks and quotes and
// dropping empty items
func SplitList(s string) []string {
	var (
		result   []string
		current  strings.Builder
		inQuotes bool
	)
	flush := func() {
		item := strings.Trim(strings.TrimSpace(current.String()), `"`)
		if item != "" {
			result = append(result, item)
		}
		current.Reset()
	}

	for _, char := range s {
		switch {
		case char == '"':
			inQuotes = !inQuotes
		case char == ',' && !inQuotes:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()

	return result
}

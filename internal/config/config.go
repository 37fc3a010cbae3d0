// Package config provides configuration management for the bibnet CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BIBNET"

// Output formats.
const (
	FormatXLSX    = "xlsx"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatGraphML = "graphml"
	FormatSQLite  = "sqlite"
)

// Config holds all configuration for one analysis run.
type Config struct {
	// Store contains the publication database settings.
	Store StoreConfig `mapstructure:"store"`
	// Analysis contains the network and metric parameters.
	Analysis AnalysisConfig `mapstructure:"analysis"`
	// Output contains result sink settings.
	Output OutputConfig `mapstructure:"output"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains run metrics settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// StoreConfig holds database settings.
type StoreConfig struct {
	// DBPath is the SQLite file used when no other database is discovered.
	DBPath string `mapstructure:"db_path"`
}

// AnalysisConfig holds the parameters of the pipeline.
type AnalysisConfig struct {
	// MinStrength is the smallest coupling strength kept as an edge (default: 1).
	MinStrength int `mapstructure:"min_strength" validate:"gte=1"`
	// MinYear and MaxYear bound the growth and classification window.
	MinYear int `mapstructure:"min_year" validate:"gte=0"`
	MaxYear int `mapstructure:"max_year" validate:"gtefield=MinYear"`
	// CurrentYear anchors "recent" in the classification; 0 uses the wall clock.
	CurrentYear int `mapstructure:"current_year" validate:"gte=0"`
	// RecentYears and RecentShare drive the "Recently Emerging" rule.
	RecentYears int     `mapstructure:"recent_years" validate:"gte=0"`
	RecentShare float64 `mapstructure:"recent_share" validate:"gt=0,lte=1"`
	// OutlierWindow: singletons newer than this many years before the corpus maximum are recent outliers.
	OutlierWindow int `mapstructure:"outlier_window" validate:"gte=1"`
	// Oracle selects the community detection algorithm.
	Oracle string `mapstructure:"oracle" validate:"oneof=louvain girvan-newman"`
	// Resolution is the modularity resolution.
	Resolution float64 `mapstructure:"resolution" validate:"gt=0"`
	// Seed makes the Louvain oracle reproducible.
	Seed uint64 `mapstructure:"seed"`
	// Patience stops the Girvan-Newman walk after this many non-improving divisions (0: never). The default stops at the first decline.
	Patience int `mapstructure:"patience" validate:"gte=0"`
	// LabelWords is the number of keywords in a cluster name.
	LabelWords int `mapstructure:"label_words" validate:"gte=1"`
}

// OutputConfig holds result sink settings.
type OutputConfig struct {
	// Dir receives the written reports.
	Dir string `mapstructure:"dir" validate:"required"`
	// Formats lists the sinks to write.
	Formats []string `mapstructure:"formats" validate:"dive,oneof=xlsx json yaml graphml sqlite"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level     string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format    string `mapstructure:"format" validate:"oneof=json console"`
	Output    string `mapstructure:"output" validate:"oneof=stdout stderr"`
	AddSource bool   `mapstructure:"add_source"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// TextfilePath receives the run metrics in Prometheus text format.
	TextfilePath string `mapstructure:"textfile_path"`
}

// HasFormat reports whether the sink is enabled.
func (c *OutputConfig) HasFormat(format string) bool {
	for _, f := range c.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Load loads configuration from defaults, an optional config file, and
// BIBNET_* environment variables. A non-empty path must exist; otherwise
// bibnet.yaml is looked up in ., ./config and $HOME/.config/bibnet.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bibnet")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "bibnet"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration Load produces without a file or environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	// Store defaults
	v.SetDefault("store.db_path", ".bibnet.db")

	// Analysis defaults
	v.SetDefault("analysis.min_strength", 1)
	v.SetDefault("analysis.min_year", 2010)
	v.SetDefault("analysis.max_year", 2020)
	v.SetDefault("analysis.current_year", 0)
	v.SetDefault("analysis.recent_years", 3)
	v.SetDefault("analysis.recent_share", 0.8)
	v.SetDefault("analysis.outlier_window", 3)
	v.SetDefault("analysis.oracle", "louvain")
	v.SetDefault("analysis.resolution", 1.0)
	v.SetDefault("analysis.seed", 1)
	v.SetDefault("analysis.patience", 1)
	v.SetDefault("analysis.label_words", 2)

	// Output defaults
	v.SetDefault("output.dir", "bibnet-out")
	v.SetDefault("output.formats", []string{FormatXLSX, FormatJSON})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.add_source", false)

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.textfile_path", "")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	field = strings.ToLower(field)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be >= %s (got %v)", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be > %s (got %v)", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s (got %v)", field, fe.Param(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s (got %v)", field, strings.ToLower(fe.Param()), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s (got %v)", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

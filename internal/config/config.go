// Package config parses the application configuration from command-line
// flags and TABULATE_ environment variables.
package config

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/tabulate/internal/errors"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "TABULATE_"

// Modes accepted by -mode.
const (
	ModeTabulate   = "tabulate"
	ModeSummary    = "summary"
	ModeCompare    = "compare"
	ModeRank       = "rank"
	ModeTimeSeries = "timeseries"
	ModeServe      = "serve"
)

// Modes lists the accepted modes in help order.
var Modes = []string{ModeTabulate, ModeSummary, ModeCompare, ModeRank, ModeTimeSeries, ModeServe}

// Defaults.
const (
	DefaultURLLengthLimit = 2000
	DefaultGeographyLimit = 500
	DefaultColumnLimit    = 50
	DefaultPageSize       = 1000
	DefaultTimeout        = 2 * time.Minute
	DefaultAddr           = ":8080"
	DefaultLogLevel       = "info"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Metadata is the path of the metadata catalog (YAML).
	Metadata string
	// Request is the path of the request document (YAML or JSON).
	Request string
	// Upload is an optional CSV file registered as user-uploaded data.
	Upload string
	// UploadGeoType is the geo type of the rows of Upload.
	UploadGeoType string
	// Mode selects the tabulation variant, or serve.
	Mode string

	DataAPIHost     string
	APIKey          string
	ProxyURL        string
	ConsumerDataURL string

	URLLengthLimit int
	GeographyLimit int
	ColumnLimit    int
	PageSize       int
	// Concurrency bounds the fetch tasks run at once. Zero picks a value
	// from the number of processors.
	Concurrency int
	// UpstreamRPS limits upstream requests per second. Zero disables it.
	UpstreamRPS float64

	Timeout time.Duration
	Addr    string

	LogLevel   string
	Quiet      bool
	JSON       bool
	NoColor    bool
	OutputFile string
	Completion string
}

// ParseConfig parses args (without the program name) into an AppConfig.
// Flags take precedence over TABULATE_ environment variables, which take
// precedence over defaults. The result is adapted and validated.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)
	cfg := AppConfig{}

	fs.StringVar(&cfg.Metadata, "metadata", "", "Path of the metadata catalog (YAML).")
	fs.StringVar(&cfg.Request, "request", "", "Path of the request document (YAML or JSON).")
	fs.StringVar(&cfg.Request, "r", "", "Path of the request document (shorthand).")
	fs.StringVar(&cfg.Upload, "upload", "", "CSV file to register as user-uploaded data.")
	fs.StringVar(&cfg.UploadGeoType, "upload-geo-type", "county", "Geo type of the uploaded rows.")
	fs.StringVar(&cfg.Mode, "mode", ModeTabulate, fmt.Sprintf("Mode: %v.", Modes))
	fs.StringVar(&cfg.DataAPIHost, "data-api-host", "", "Replaces the host of data API endpoints.")
	fs.StringVar(&cfg.APIKey, "api-key", "", "Data API key.")
	fs.StringVar(&cfg.ProxyURL, "proxy-url", "", "Proxy receiving data API URLs that are too long for GET.")
	fs.StringVar(&cfg.ConsumerDataURL, "consumer-data-url", "", "Base URL of the consumer data feature services.")
	fs.IntVar(&cfg.URLLengthLimit, "url-length-limit", DefaultURLLengthLimit, "Longest data API URL sent with GET.")
	fs.IntVar(&cfg.GeographyLimit, "geography-limit", DefaultGeographyLimit, "Geographies per upstream request.")
	fs.IntVar(&cfg.ColumnLimit, "column-limit", DefaultColumnLimit, "Columns per data API request.")
	fs.IntVar(&cfg.PageSize, "page-size", DefaultPageSize, "Features per feature query page.")
	fs.IntVar(&cfg.Concurrency, "concurrency", 0, "Fetch tasks run at once (0 = automatic).")
	fs.Float64Var(&cfg.UpstreamRPS, "upstream-rps", 0, "Upstream requests per second (0 = unlimited).")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum duration of a run or of a served request.")
	fs.StringVar(&cfg.Addr, "addr", DefaultAddr, "Listen address in serve mode.")
	fs.StringVar(&cfg.LogLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warn, error).")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Quiet mode: no banner and no progress display.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&cfg.JSON, "json", false, "Print results as JSON.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&cfg.OutputFile, "output", "", "Also write the JSON result to this file.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Output file (shorthand).")
	fs.StringVar(&cfg.Completion, "completion", "", "Print a completion script (bash, zsh, fish).")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	applyEnvOverrides(&cfg, fs)
	cfg = ApplyAdaptiveLimits(cfg)

	if cfg.Completion != "" {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(errWriter, "Error:", err)
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate() error {
	if !slices.Contains(Modes, c.Mode) {
		return apperrors.NewConfigError("unknown mode %q (accepted values: %v)", c.Mode, Modes)
	}
	if c.Metadata == "" {
		return apperrors.NewConfigError("-metadata is required")
	}
	if c.Mode != ModeServe && c.Request == "" {
		return apperrors.NewConfigError("-request is required in %s mode", c.Mode)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("-timeout must be positive, got %s", c.Timeout)
	}
	limits := []struct {
		name  string
		value int
	}{
		{"url-length-limit", c.URLLengthLimit},
		{"geography-limit", c.GeographyLimit},
		{"column-limit", c.ColumnLimit},
		{"page-size", c.PageSize},
	}
	for _, l := range limits {
		if l.value <= 0 {
			return apperrors.NewConfigError("-%s must be positive, got %d", l.name, l.value)
		}
	}
	if c.Concurrency < 0 {
		return apperrors.NewConfigError("-concurrency cannot be negative")
	}
	if c.UpstreamRPS < 0 {
		return apperrors.NewConfigError("-upstream-rps cannot be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("invalid -log-level %q", c.LogLevel)
	}
	return nil
}

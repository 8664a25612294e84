// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the TABULATE_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

func intOverride(dst func(*AppConfig) *int) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst(c) = parsed
		}
	}
}

func stringOverride(dst func(*AppConfig) *string) func(*AppConfig, string) {
	return func(c *AppConfig, v string) { *dst(c) = v }
}

func boolOverride(dst func(*AppConfig) *bool) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		p := dst(c)
		*p = parseBoolEnv(v, *p)
	}
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	// Numeric overrides
	{"URL_LENGTH_LIMIT", []string{"url-length-limit"}, intOverride(func(c *AppConfig) *int { return &c.URLLengthLimit })},
	{"GEOGRAPHY_LIMIT", []string{"geography-limit"}, intOverride(func(c *AppConfig) *int { return &c.GeographyLimit })},
	{"COLUMN_LIMIT", []string{"column-limit"}, intOverride(func(c *AppConfig) *int { return &c.ColumnLimit })},
	{"PAGE_SIZE", []string{"page-size"}, intOverride(func(c *AppConfig) *int { return &c.PageSize })},
	{"CONCURRENCY", []string{"concurrency"}, intOverride(func(c *AppConfig) *int { return &c.Concurrency })},
	{"UPSTREAM_RPS", []string{"upstream-rps"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.UpstreamRPS = parsed
		}
	}},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},

	// String overrides
	{"METADATA", []string{"metadata"}, stringOverride(func(c *AppConfig) *string { return &c.Metadata })},
	{"REQUEST", []string{"request", "r"}, stringOverride(func(c *AppConfig) *string { return &c.Request })},
	{"UPLOAD", []string{"upload"}, stringOverride(func(c *AppConfig) *string { return &c.Upload })},
	{"UPLOAD_GEO_TYPE", []string{"upload-geo-type"}, stringOverride(func(c *AppConfig) *string { return &c.UploadGeoType })},
	{"MODE", []string{"mode"}, stringOverride(func(c *AppConfig) *string { return &c.Mode })},
	{"DATA_API_HOST", []string{"data-api-host"}, stringOverride(func(c *AppConfig) *string { return &c.DataAPIHost })},
	{"API_KEY", []string{"api-key"}, stringOverride(func(c *AppConfig) *string { return &c.APIKey })},
	{"PROXY_URL", []string{"proxy-url"}, stringOverride(func(c *AppConfig) *string { return &c.ProxyURL })},
	{"CONSUMER_DATA_URL", []string{"consumer-data-url"}, stringOverride(func(c *AppConfig) *string { return &c.ConsumerDataURL })},
	{"ADDR", []string{"addr"}, stringOverride(func(c *AppConfig) *string { return &c.Addr })},
	{"LOG_LEVEL", []string{"log-level"}, stringOverride(func(c *AppConfig) *string { return &c.LogLevel })},
	{"OUTPUT", []string{"output", "o"}, stringOverride(func(c *AppConfig) *string { return &c.OutputFile })},

	// Boolean overrides
	{"QUIET", []string{"quiet", "q"}, boolOverride(func(c *AppConfig) *bool { return &c.Quiet })},
	{"JSON", []string{"json"}, boolOverride(func(c *AppConfig) *bool { return &c.JSON })},
	{"NO_COLOR", []string{"no-color"}, boolOverride(func(c *AppConfig) *bool { return &c.NoColor })},
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}

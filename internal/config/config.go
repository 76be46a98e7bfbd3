// =============================================================================
// DTB to X Converter - Configuration Module
// =============================================================================
//
// This module loads the converter settings. Settings come from, in order of
// increasing precedence:
//   1. Built-in defaults
//   2. A YAML (.yaml, .yml) or TOML (.toml) configuration file
//   3. A .env file in the working directory (if present)
//   4. DTB2X_* environment variables
//
// Command line flags are applied on top of the result by the cmd package.
//
// ENVIRONMENT VARIABLES:
//   DTB2X_FORMAT           - Output format (csv, xlsx, xml)
//   DTB2X_LOOSE            - Loose parsing mode (true/false)
//   DTB2X_LOG_LEVEL        - debug, info, warn, error
//   DTB2X_LOG_FORMAT       - console, json
//   DTB2X_CSV_DELIMITER    - Single character CSV field separator
//   DTB2X_XLSX_SHEET_NAME  - Worksheet name for XLSX output
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// OUTPUT FORMATS
// =============================================================================

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatXML  = "xml"
)

// Formats lists every supported output format.
var Formats = []string{FormatCSV, FormatXLSX, FormatXML}

// envPrefix is prepended to every environment override.
const envPrefix = "DTB2X_"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the converter settings.
type Config struct {
	// Format is the output format. Empty means infer it from the output file
	// extension, falling back to csv.
	Format string `yaml:"format" toml:"format"`

	// Loose enables loose parsing, which tolerates missing spaces and commas.
	// Default: false (strict)
	Loose bool `yaml:"loose" toml:"loose"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// LogFormat selects human readable ("console") or "json" log lines.
	// Default: "console"
	LogFormat string `yaml:"log_format" toml:"log_format"`

	// OutputNameFormat names output files written with --output-dir.
	// Placeholders:
	//   {original}  - Input file name without extension
	//   {ext}       - Extension of the output format
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	// Default: "{original}.{ext}"
	OutputNameFormat string `yaml:"output_name_format" toml:"output_name_format"`

	CSV  CSVSettings  `yaml:"csv" toml:"csv"`
	XLSX XLSXSettings `yaml:"xlsx" toml:"xlsx"`
	XML  XMLSettings  `yaml:"xml" toml:"xml"`
}

// CSVSettings contains settings for delimited text output.
type CSVSettings struct {
	// Delimiter separates fields. Spreadsheet applications in locales that use
	// a decimal comma expect a semicolon.
	// Default: ";"
	Delimiter string `yaml:"delimiter" toml:"delimiter"`

	// UseCRLF terminates rows with \r\n instead of \n.
	UseCRLF bool `yaml:"use_crlf" toml:"use_crlf"`
}

// XLSXSettings contains settings for spreadsheet output.
type XLSXSettings struct {
	// SheetName is the name of the worksheet holding the rows.
	// Default: "DTB"
	SheetName string `yaml:"sheet_name" toml:"sheet_name"`

	// FreezeHeader keeps the header row visible while scrolling.
	// Default: true
	FreezeHeader *bool `yaml:"freeze_header" toml:"freeze_header"`
}

// XMLSettings contains settings for XML output.
type XMLSettings struct {
	// RootElement is the name of the document element.
	// Default: "dtb"
	RootElement string `yaml:"root_element" toml:"root_element"`

	// Indent is the string used for one level of indentation.
	// Default: "  " (two spaces)
	Indent string `yaml:"indent" toml:"indent"`
}

// FreezeHeaderEnabled reports whether the header row should be frozen.
func (s XLSXSettings) FreezeHeaderEnabled() bool {
	return s.FreezeHeader == nil || *s.FreezeHeader
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Load loads the configuration from a YAML or TOML file, then applies .env
// and environment overrides, defaults and validation.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//   - required: When false, a missing file falls back to the defaults.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be read or parsed, or a value is invalid.
func Load(configPath string, required bool) (*Config, error) {
	var cfg Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := parse(configPath, data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
			// Fall through to defaults.
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// A missing .env file is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// parse decodes the file content according to its extension.
func parse(configPath string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(configPath)); ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config file extension %q", ext)
	}
}

// applyEnv overrides cfg with DTB2X_* variables found by lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"FORMAT":          &cfg.Format,
		"LOG_LEVEL":       &cfg.LogLevel,
		"LOG_FORMAT":      &cfg.LogFormat,
		"CSV_DELIMITER":   &cfg.CSV.Delimiter,
		"XLSX_SHEET_NAME": &cfg.XLSX.SheetName,
	}
	for key, dst := range strs {
		if value, ok := lookup(envPrefix + key); ok && value != "" {
			*dst = value
		}
	}

	if value, ok := lookup(envPrefix + "LOOSE"); ok && value != "" {
		loose, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%sLOOSE: %w", envPrefix, err)
		}
		cfg.Loose = loose
	}

	return nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	cfg.Format = strings.ToLower(cfg.Format)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "{original}.{ext}"
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ";"
	}
	if cfg.XLSX.SheetName == "" {
		cfg.XLSX.SheetName = "DTB"
	}
	if cfg.XML.RootElement == "" {
		cfg.XML.RootElement = "dtb"
	}
	if cfg.XML.Indent == "" {
		cfg.XML.Indent = "  "
	}
}

// Validate checks that every setting has a usable value.
func (c *Config) Validate() error {
	if c.Format != "" && !IsFormat(c.Format) {
		return fmt.Errorf("unknown format %q (want one of %s)", c.Format, strings.Join(Formats, ", "))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}

	if utf8.RuneCountInString(c.CSV.Delimiter) != 1 {
		return fmt.Errorf("csv.delimiter must be a single character, got %q", c.CSV.Delimiter)
	}
	if d := c.Delimiter(); d == '"' || d == '\r' || d == '\n' || d == utf8.RuneError {
		return fmt.Errorf("csv.delimiter %q cannot be used", c.CSV.Delimiter)
	}

	// Excel limits sheet names to 31 characters and forbids a few runes.
	if n := utf8.RuneCountInString(c.XLSX.SheetName); n > 31 {
		return fmt.Errorf("xlsx.sheet_name is %d characters long, the limit is 31", n)
	}
	if strings.ContainsAny(c.XLSX.SheetName, `:\/?*[]`) {
		return fmt.Errorf("xlsx.sheet_name %q contains a forbidden character", c.XLSX.SheetName)
	}

	if strings.ContainsAny(c.XML.RootElement, " <>&\"'/") {
		return fmt.Errorf("xml.root_element %q is not a valid element name", c.XML.RootElement)
	}

	return nil
}

// Delimiter returns the CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.CSV.Delimiter)
	return r
}

// =============================================================================
// FORMAT HELPERS
// =============================================================================

// IsFormat reports whether format is a supported output format.
func IsFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// ResolveFormat picks the output format for outputPath: an explicit format
// wins, then the output file extension, then csv.
func ResolveFormat(format, outputPath string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(outputPath)), ".")
	if IsFormat(ext) {
		return ext
	}
	return FormatCSV
}

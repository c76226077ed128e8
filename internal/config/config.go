// =============================================================================
// PayPal to GnuCash Importer - Configuration Module
// =============================================================================
//
// Loads the optional application configuration file. Everything here has a
// sensible default; a missing config file is not an error, and most users
// only ever touch the command-line flags (which override the file).
//
// FILE FORMAT (YAML):
//
//   base_currency: EUR
//   time_offset: "+01:00"
//   pretty: false
//   indent: " "
//   csv_settings:
//     delimiter: "tab"
//     quote_char: "\""
//     encoding: "iso-8859-1"
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gncutils/paypal-import/internal/csvparser"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// BaseCurrency is the ledger's currency. Every imported transaction
	// must resolve to it after conversion merging.
	// Default: "EUR"
	BaseCurrency string `yaml:"base_currency"`

	// TimeOffset is the fixed UTC offset applied to posting and entry
	// timestamps, in "+01:00" form. The export's own Time Zone column is
	// ignored (known ambiguity, see the paypal package).
	// Default: "+01:00"
	TimeOffset string `yaml:"time_offset"`

	// Pretty enables indented XML output by default; the --pretty flag
	// overrides it per run.
	Pretty bool `yaml:"pretty"`

	// Indent is the indentation unit for pretty output.
	// Default: " " (one space, matching GnuCash's own pretty output)
	Indent string `yaml:"indent"`

	// CSVSettings contains the CSV reading options.
	CSVSettings CSVSettings `yaml:"csv_settings"`
}

// CSVSettings contains settings for reading the PayPal export.
type CSVSettings struct {
	// Delimiter is the field separator.
	// Default: "tab" (PayPal's classic export is tab-separated)
	Delimiter string `yaml:"delimiter"`

	// QuoteChar is the quote character. Only the double quote is
	// supported; the option exists so a different value fails loudly
	// instead of misparsing.
	// Default: "\""
	QuoteChar string `yaml:"quote_char"`

	// Encoding is the character encoding of the export.
	// Default: "iso-8859-1"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file at path. A missing file yields the
// defaults; a present but unparsable file is an error.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(config)

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// applyDefaults fills in unset configuration options.
func applyDefaults(config *Config) {
	if config.BaseCurrency == "" {
		config.BaseCurrency = "EUR"
	}
	if config.TimeOffset == "" {
		config.TimeOffset = "+01:00"
	}
	if config.Indent == "" {
		config.Indent = " "
	}
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = "tab"
	}
	if config.CSVSettings.QuoteChar == "" {
		config.CSVSettings.QuoteChar = "\""
	}
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = "iso-8859-1"
	}
}

// validate checks the configuration for values that would fail later in a
// less obvious place.
func validate(config *Config) error {
	if _, err := config.Location(); err != nil {
		return err
	}
	if len(config.BaseCurrency) != 3 {
		return fmt.Errorf("base_currency %q is not an ISO 4217 code", config.BaseCurrency)
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Location parses the configured time offset into a fixed-offset location.
func (c *Config) Location() (*time.Location, error) {
	var sign rune
	var hours, minutes int

	if _, err := fmt.Sscanf(c.TimeOffset, "%c%02d:%02d", &sign, &hours, &minutes); err != nil {
		return nil, fmt.Errorf("invalid time_offset %q (expected e.g. \"+01:00\"): %w", c.TimeOffset, err)
	}

	offset := hours*3600 + minutes*60
	switch sign {
	case '+':
	case '-':
		offset = -offset
	default:
		return nil, fmt.Errorf("invalid time_offset %q: sign must be + or -", c.TimeOffset)
	}

	return time.FixedZone(c.TimeOffset, offset), nil
}

// ParserSettings converts the CSV section into the parser's settings type.
func (c *Config) ParserSettings() csvparser.Settings {
	return csvparser.Settings{
		Delimiter: c.CSVSettings.Delimiter,
		QuoteChar: c.CSVSettings.QuoteChar,
		Encoding:  c.CSVSettings.Encoding,
	}
}

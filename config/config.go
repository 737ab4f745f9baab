package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultURL is the climate-data.org page listing major Indian cities by Köppen class
	DefaultURL = "https://fr.climate-data.org/asie/inde-129/"
	// DefaultOutputPath is where the CSV is written when nothing else is configured
	DefaultOutputPath = "data_climate.csv"
	// DefaultUserAgent mimics a desktop Chrome so basic bot filters let the request through
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Short row policies
const (
	ShortRowsSkip = "skip"
	ShortRowsFail = "fail"
)

// Config represents the scraper configuration
type Config struct {
	Source struct {
		URL       string        `yaml:"url"`
		UserAgent string        `yaml:"user_agent"`
		Timeout   time.Duration `yaml:"timeout"`
		Browser   bool          `yaml:"browser"`
	} `yaml:"source"`
	Extraction struct {
		HeaderRows   int    `yaml:"header_rows"`
		CodeColumn   int    `yaml:"code_column"`
		CitiesColumn int    `yaml:"cities_column"`
		ShortRows    string `yaml:"short_rows"`
	} `yaml:"extraction"`
	Filters struct {
		Codes []string `yaml:"codes"`
	} `yaml:"filters"`
	Output struct {
		Path string `yaml:"path"`
	} `yaml:"output"`
	Sheets struct {
		SpreadsheetURL  string `yaml:"spreadsheet_url"`
		CredentialsPath string `yaml:"credentials_path"`
	} `yaml:"sheets"`
}

// LoadConfig loads configuration from a YAML file.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Source.URL = DefaultURL
	cfg.Source.UserAgent = DefaultUserAgent
	cfg.Extraction.HeaderRows = 1
	cfg.Extraction.CodeColumn = 2
	cfg.Extraction.CitiesColumn = 3
	cfg.Extraction.ShortRows = ShortRowsSkip
	cfg.Output.Path = DefaultOutputPath
	return cfg
}

// Validate checks the configuration for values the pipeline cannot work with
func (c *Config) Validate() error {
	u, err := url.Parse(c.Source.URL)
	if err != nil {
		return fmt.Errorf("source.url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source.url must be an absolute http(s) URL, got %q", c.Source.URL)
	}
	if c.Source.Timeout < 0 {
		return errors.New("source.timeout must not be negative")
	}

	if c.Extraction.HeaderRows < 0 {
		return errors.New("extraction.header_rows must not be negative")
	}
	if c.Extraction.CodeColumn < 0 || c.Extraction.CitiesColumn < 0 {
		return errors.New("extraction columns must not be negative")
	}
	if c.Extraction.CodeColumn == c.Extraction.CitiesColumn {
		return errors.New("extraction.code_column and extraction.cities_column must differ")
	}
	switch c.Extraction.ShortRows {
	case ShortRowsSkip, ShortRowsFail:
	default:
		return fmt.Errorf("extraction.short_rows must be %q or %q, got %q", ShortRowsSkip, ShortRowsFail, c.Extraction.ShortRows)
	}

	if c.Output.Path == "" {
		return errors.New("output.path is required")
	}

	return nil
}

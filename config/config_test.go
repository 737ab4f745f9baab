package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, DefaultURL, cfg.Source.URL)
	assert.Equal(t, DefaultUserAgent, cfg.Source.UserAgent)
	assert.Zero(t, cfg.Source.Timeout)
	assert.False(t, cfg.Source.Browser)
	assert.Equal(t, 1, cfg.Extraction.HeaderRows)
	assert.Equal(t, 2, cfg.Extraction.CodeColumn)
	assert.Equal(t, 3, cfg.Extraction.CitiesColumn)
	assert.Equal(t, ShortRowsSkip, cfg.Extraction.ShortRows)
	assert.Empty(t, cfg.Filters.Codes)
	assert.Equal(t, "data_climate.csv", cfg.Output.Path)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
source:
  timeout: 15s
extraction:
  short_rows: fail
filters:
  codes: [Aw, Cwa]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultURL, cfg.Source.URL)
	assert.Equal(t, 15*time.Second, cfg.Source.Timeout)
	assert.Equal(t, ShortRowsFail, cfg.Extraction.ShortRows)
	assert.Equal(t, 2, cfg.Extraction.CodeColumn)
	assert.Equal(t, []string{"Aw", "Cwa"}, cfg.Filters.Codes)
	assert.Equal(t, DefaultOutputPath, cfg.Output.Path)
}

func TestLoadConfig_FullFile(t *testing.T) {
	path := writeConfig(t, `
source:
  url: http://localhost:8080/cities
  user_agent: test-agent
  browser: true
extraction:
  header_rows: 2
  code_column: 0
  cities_column: 1
output:
  path: out/climate.csv
sheets:
  spreadsheet_url: https://docs.google.com/spreadsheets/d/abc/edit
  credentials_path: creds.json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/cities", cfg.Source.URL)
	assert.Equal(t, "test-agent", cfg.Source.UserAgent)
	assert.True(t, cfg.Source.Browser)
	assert.Equal(t, 2, cfg.Extraction.HeaderRows)
	assert.Equal(t, 0, cfg.Extraction.CodeColumn)
	assert.Equal(t, 1, cfg.Extraction.CitiesColumn)
	assert.Equal(t, "out/climate.csv", cfg.Output.Path)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/edit", cfg.Sheets.SpreadsheetURL)
	assert.Equal(t, "creds.json", cfg.Sheets.CredentialsPath)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "source: [unterminated")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"relative url", func(c *Config) { c.Source.URL = "/asie/inde-129/" }, "source.url"},
		{"ftp url", func(c *Config) { c.Source.URL = "ftp://example.com/x" }, "source.url"},
		{"negative timeout", func(c *Config) { c.Source.Timeout = -time.Second }, "source.timeout"},
		{"negative header rows", func(c *Config) { c.Extraction.HeaderRows = -1 }, "header_rows"},
		{"negative column", func(c *Config) { c.Extraction.CodeColumn = -1 }, "columns"},
		{"same columns", func(c *Config) { c.Extraction.CitiesColumn = 2 }, "must differ"},
		{"unknown policy", func(c *Config) { c.Extraction.ShortRows = "ignore" }, "short_rows"},
		{"empty output", func(c *Config) { c.Output.Path = "" }, "output.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

package sheets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"climate-scraper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"edit url", "https://docs.google.com/spreadsheets/d/1FoGJ6ZzDIf/edit", "1FoGJ6ZzDIf"},
		{"sharing url", "https://docs.google.com/spreadsheets/d/1FoGJ6ZzDIf/edit?usp=sharing", "1FoGJ6ZzDIf"},
		{"bare id path", "https://docs.google.com/spreadsheets/d/abc123", "abc123"},
		{"query right after id", "https://docs.google.com/spreadsheets/d/abc123?x=1", "abc123"},
		{"not a sheets url", "https://example.com/foo", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractSpreadsheetID(tt.url))
		})
	}
}

func TestSanitizeSheetName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean", "Climate_20261019_120000", "Climate_20261019_120000"},
		{"invalid chars", "a/b\\c?d*e[f]g:h", "a_b_c_d_e_f_g_h"},
		{"blank", "   ", "Sheet1"},
		{"too long", strings.Repeat("x", 120), strings.Repeat("x", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeSheetName(tt.input))
		})
	}
}

func TestBuildValues(t *testing.T) {
	records := models.ResultSet{
		{City: "Mumbai", KoppenCode: "Aw"},
		{City: "Delhi", KoppenCode: "Cwa"},
	}

	got := buildValues(records, "https://fr.climate-data.org/asie/inde-129/")
	assert.Equal(t, [][]interface{}{
		{"URL", "https://fr.climate-data.org/asie/inde-129/"},
		{"City", "Koppen Code"},
		{"Mumbai", "Aw"},
		{"Delhi", "Cwa"},
	}, got)

	got = buildValues(nil, "")
	assert.Equal(t, [][]interface{}{{"City", "Koppen Code"}}, got)
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	serviceAccount := filepath.Join(dir, "sa.json")
	require.NoError(t, os.WriteFile(serviceAccount, []byte(`{"type":"service_account","project_id":"p"}`), 0o600))
	userCreds := filepath.Join(dir, "user.json")
	require.NoError(t, os.WriteFile(userCreds, []byte(`{"type":"authorized_user"}`), 0o600))
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"type":`), 0o600))

	t.Run("service account file", func(t *testing.T) {
		data, err := loadCredentials(serviceAccount)
		require.NoError(t, err)
		assert.Contains(t, string(data), "service_account")
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := loadCredentials(userCreds)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "service account")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := loadCredentials(broken)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid credentials JSON")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadCredentials(filepath.Join(dir, "nope.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read credentials file")
	})

	t.Run("environment variable", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_CREDENTIALS", "  {\"type\":\"service_account\"}\n")
		data, err := loadCredentials("")
		require.NoError(t, err)
		assert.Equal(t, `{"type":"service_account"}`, string(data))
	})

	t.Run("environment variable unset", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_CREDENTIALS", "")
		_, err := loadCredentials("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GOOGLE_SHEETS_CREDENTIALS")
	})
}

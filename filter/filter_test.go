package filter

import (
	"testing"

	"climate-scraper/models"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	records := models.ResultSet{
		{City: "Mumbai", KoppenCode: "Aw"},
		{City: "Delhi", KoppenCode: "Cwa"},
		{City: "Thane", KoppenCode: "Aw"},
		{City: "Jaipur", KoppenCode: "BSh"},
	}

	tests := []struct {
		name     string
		codes    []string
		expected models.ResultSet
	}{
		{"no codes keeps all", nil, records},
		{
			name:  "single code keeps order",
			codes: []string{"Aw"},
			expected: models.ResultSet{
				{City: "Mumbai", KoppenCode: "Aw"},
				{City: "Thane", KoppenCode: "Aw"},
			},
		},
		{
			name:  "several codes",
			codes: []string{"BSh", "Cwa"},
			expected: models.ResultSet{
				{City: "Delhi", KoppenCode: "Cwa"},
				{City: "Jaipur", KoppenCode: "BSh"},
			},
		},
		{"case sensitive", []string{"aw"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewFilter(tt.codes).Apply(records))
		})
	}
}

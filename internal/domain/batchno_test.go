package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		name     string
		instant  time.Time
		expected string
	}{
		{
			name:     "august 2025",
			instant:  time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC),
			expected: "AUG25",
		},
		{
			name:     "january 2026",
			instant:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: "JAN26",
		},
		{
			name:     "non utc instant converted",
			instant:  time.Date(2025, 9, 1, 2, 0, 0, 0, time.FixedZone("IST", 5*3600+1800)),
			expected: "AUG25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PeriodKey(tt.instant))
		})
	}
}

func TestNextBatchNumber(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		period   string
		model    string
		process  string
		expected string
	}{
		{
			name:     "no existing numbers starts at one",
			existing: nil,
			period:   "AUG25",
			model:    "MX100",
			process:  "MC",
			expected: "AUG25-MX100-MC-001",
		},
		{
			name:     "continues sequence within period",
			existing: []string{"AUG25-MX100-MC-001", "AUG25-MX100-MC-002"},
			period:   "AUG25",
			model:    "MX100",
			process:  "MC",
			expected: "AUG25-MX100-MC-003",
		},
		{
			name:     "sequence shared across models and processes",
			existing: []string{"AUG25-ZZ9-S-007", "AUG25-MX100-MC-002"},
			period:   "AUG25",
			model:    "MX100",
			process:  "M",
			expected: "AUG25-MX100-M-008",
		},
		{
			name:     "other periods ignored",
			existing: []string{"JUL25-MX100-MC-042", "AUG25-MX100-MC-003"},
			period:   "AUG25",
			model:    "MX100",
			process:  "MC",
			expected: "AUG25-MX100-MC-004",
		},
		{
			name:     "malformed numbers skipped",
			existing: []string{"AUG25-MX100", "AUG25-MX100-MC-bad", "AUG25-MX100-MC-005"},
			period:   "AUG25",
			model:    "MX100",
			process:  "MC",
			expected: "AUG25-MX100-MC-006",
		},
		{
			name:     "sequence past three digits keeps growing",
			existing: []string{"AUG25-MX100-MC-999"},
			period:   "AUG25",
			model:    "MX100",
			process:  "MC",
			expected: "AUG25-MX100-MC-1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextBatchNumber(tt.existing, tt.period, tt.model, tt.process)
			assert.Equal(t, tt.expected, got)
		})
	}
}

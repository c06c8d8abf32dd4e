package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Wednesday
var ref = time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)

func TestParseDueDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2025-04-01", "2025-04-01"},
		{"2025-04-01T10:00:00Z", "2025-04-01"},
		{"today", "2025-03-12"},
		{"Tomorrow", "2025-03-13"},
		{"by Friday", "2025-03-14"},
		{"friday.", "2025-03-14"},
		{"next monday", "2025-03-17"},
		{"on Wednesday", "2025-03-19"},
		{"end of week", "2025-03-14"},
		{"end of the month", "2025-03-31"},
		{"in 3 days", "2025-03-15"},
		{"in two weeks", "2025-03-26"},
		{"next week", "2025-03-19"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseDueDate(tc.in, ref)
			if assert.True(t, ok) {
				assert.Equal(t, tc.want, got.Format(DateLayout))
			}
		})
	}
}

func TestParseDueDate_Unparseable(t *testing.T) {
	for _, in := range []string{"", "  ", "null", "N/A", "TBD", "asap"} {
		_, ok := ParseDueDate(in, ref)
		assert.False(t, ok, in)
	}
}

func TestNextWeekday(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC) // Friday
	assert.Equal(t, day, nextWeekday(day, time.Friday, true))
	assert.Equal(t, day.AddDate(0, 0, 7), nextWeekday(day, time.Friday, false))
}

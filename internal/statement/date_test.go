package statement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
}

func TestDateResolver(t *testing.T) {
	tests := []struct {
		want   time.Time
		name   string
		period string
		day    int
		month  int
		valid  bool
	}{
		{
			name:   "year from period end",
			period: "01 January 2024 to 31 January 2024",
			day:    16, month: 1,
			want:  time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:   "december in a period crossing new year",
			period: "15 December 2023 to 14 January 2024",
			day:    20, month: 12,
			want:  time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:   "january in a period crossing new year",
			period: "15 December 2023 to 14 January 2024",
			day:    5, month: 1,
			want:  time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:   "only an end date",
			period: "Statement to 28 Feb 2023",
			day:    28, month: 2,
			want:  time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:   "any four digit year",
			period: "2022/03/01 - 2022/03/31",
			day:    3, month: 3,
			want:  time.Date(2022, 3, 3, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:   "no period uses current year",
			period: "",
			day:    1, month: 4,
			want:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:   "impossible date falls back to today",
			period: "01 February 2024 to 29 February 2024",
			day:    31, month: 2,
			want:  time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDateResolver(tt.period, fixedClock)
			got, ok := r.Resolve(tt.day, tt.month)
			assert.Equal(t, tt.valid, ok)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

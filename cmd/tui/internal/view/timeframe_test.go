package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	type testCase struct {
		name      string
		timeframe Timeframe
		wantStart time.Time
		wantEnd   time.Time
	}

	tests := []testCase{
		{
			name:      "this month runs until today",
			timeframe: TimeframeThisMonth,
			wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "last month covers leap february",
			timeframe: TimeframeLastMonth,
			wantStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "this year",
			timeframe: TimeframeThisYear,
			wantStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "last year",
			timeframe: TimeframeLastYear,
			wantStart: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end := dateRange(tc.timeframe, now)
			assert.Equal(t, tc.wantStart, start)
			assert.Equal(t, tc.wantEnd, end)
		})
	}
}

func TestDateRange_LastMonthInJanuary(t *testing.T) {
	start, end := dateRange(TimeframeLastMonth, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), end)
}

func TestParseCustomRange(t *testing.T) {
	start, end, err := parseCustomRange("01/02/2024", "29/02/2024")
	require.NoError(t, err)
	assert.Equal(t, 1, start.Day())
	assert.Equal(t, time.February, start.Month())
	assert.Equal(t, 29, end.Day())
	assert.Equal(t, 23, end.Hour())

	_, _, err = parseCustomRange("2024-02-01", "29/02/2024")
	assert.ErrorContains(t, err, "invalid start date")

	_, _, err = parseCustomRange("01/02/2024", "")
	assert.ErrorContains(t, err, "invalid end date")

	_, _, err = parseCustomRange("10/02/2024", "01/02/2024")
	assert.ErrorContains(t, err, "after end date")
}

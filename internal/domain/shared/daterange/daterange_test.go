package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewTruncatesToUTCMidnight(t *testing.T) {
	in := time.Date(2026, time.March, 7, 15, 30, 12, 0, time.UTC)
	out := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	dr, err := New(in, out)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.March, 7), dr.CheckIn)
	assert.Equal(t, date(2026, time.March, 10), dr.CheckOut)
	assert.Equal(t, 3, dr.Nights())
}

func TestNewRejectsInvertedAndEmptyRanges(t *testing.T) {
	_, err := New(date(2026, time.March, 10), date(2026, time.March, 7))
	assert.ErrorIs(t, err, ErrInvalidRange)

	// same day in and out is a zero-night stay
	_, err = New(date(2026, time.March, 7), date(2026, time.March, 7))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	base, err := New(date(2026, time.July, 7), date(2026, time.July, 10))
	require.NoError(t, err)

	cases := []struct {
		name     string
		in, out  time.Time
		overlaps bool
	}{
		{"identical", date(2026, time.July, 7), date(2026, time.July, 10), true},
		{"partial tail", date(2026, time.July, 8), date(2026, time.July, 11), true},
		{"partial head", date(2026, time.July, 5), date(2026, time.July, 8), true},
		{"contained", date(2026, time.July, 8), date(2026, time.July, 9), true},
		{"surrounding", date(2026, time.July, 1), date(2026, time.July, 20), true},
		{"same-day turnover after", date(2026, time.July, 10), date(2026, time.July, 12), false},
		{"same-day turnover before", date(2026, time.July, 5), date(2026, time.July, 7), false},
		{"disjoint", date(2026, time.July, 20), date(2026, time.July, 22), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := New(tc.in, tc.out)
			require.NoError(t, err)
			assert.Equal(t, tc.overlaps, base.Overlaps(other))
			assert.Equal(t, tc.overlaps, other.Overlaps(base))
		})
	}
}

func TestContainsDateExcludesCheckOutDay(t *testing.T) {
	dr, err := New(date(2026, time.July, 7), date(2026, time.July, 10))
	require.NoError(t, err)

	assert.True(t, dr.ContainsDate(date(2026, time.July, 7)))
	assert.True(t, dr.ContainsDate(time.Date(2026, time.July, 9, 23, 59, 0, 0, time.UTC)))
	assert.False(t, dr.ContainsDate(date(2026, time.July, 10)))
	assert.False(t, dr.ContainsDate(date(2026, time.July, 6)))
}

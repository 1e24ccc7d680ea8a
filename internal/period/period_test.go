package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewNormalizesToMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	p, err := New(
		time.Date(2024, time.January, 1, 15, 30, 0, 0, loc),
		time.Date(2024, time.February, 1, 8, 0, 0, 0, loc),
	)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.January, 1), p.Start)
	assert.Equal(t, date(2024, time.February, 1), p.End)
}

func TestNewRejectsEmptyAndInvertedRanges(t *testing.T) {
	_, err := New(date(2024, time.January, 1), date(2024, time.January, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(date(2024, time.February, 1), date(2024, time.January, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDays(t *testing.T) {
	p, err := New(date(2024, time.January, 1), date(2025, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, 366, p.Days()) // 2024 is a leap year

	p, err = New(date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	assert.Equal(t, 30, p.Days())
}

func TestContainsIncludesBothBounds(t *testing.T) {
	p, err := New(date(2024, time.January, 1), date(2024, time.December, 31))
	require.NoError(t, err)

	assert.True(t, p.Contains(date(2024, time.January, 1)))
	assert.True(t, p.Contains(date(2024, time.December, 31)))
	assert.True(t, p.Contains(date(2024, time.June, 15)))
	assert.False(t, p.Contains(date(2023, time.December, 31)))
	assert.False(t, p.Contains(date(2025, time.January, 1)))
}

func TestClip(t *testing.T) {
	year, err := New(date(2024, time.January, 1), date(2025, time.January, 1))
	require.NoError(t, err)

	inner, ok := year.Clip(Period{Start: date(2024, time.March, 1), End: date(2024, time.April, 1)})
	assert.True(t, ok)
	assert.Equal(t, date(2024, time.March, 1), inner.Start)
	assert.Equal(t, date(2024, time.April, 1), inner.End)

	overlapping, ok := year.Clip(Period{Start: date(2023, time.July, 1), End: date(2024, time.July, 1)})
	assert.True(t, ok)
	assert.Equal(t, date(2024, time.January, 1), overlapping.Start)
	assert.Equal(t, date(2024, time.July, 1), overlapping.End)

	_, ok = year.Clip(Period{Start: date(2025, time.January, 1), End: date(2025, time.February, 1)})
	assert.False(t, ok, "adjacent period must not intersect")
}

func TestString(t *testing.T) {
	p, err := New(date(2024, time.January, 1), date(2024, time.December, 31))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01..2024-12-31", p.String())
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMeterActiveOn(t *testing.T) {
	out := day(2024, time.July, 1)
	replaced := Meter{
		MeterNumber:    "W-old",
		BuildInDate:    day(2015, time.March, 1),
		OutOfOrderDate: &out,
	}
	open := Meter{
		MeterNumber: "W-new",
		BuildInDate: day(2024, time.July, 1),
	}

	assert.False(t, replaced.ActiveOn(day(2015, time.February, 28)))
	assert.True(t, replaced.ActiveOn(day(2015, time.March, 1)), "build-in day is in service")
	assert.True(t, replaced.ActiveOn(day(2020, time.June, 15)))
	assert.True(t, replaced.ActiveOn(day(2024, time.July, 1)), "out-of-order day is still readable")
	assert.False(t, replaced.ActiveOn(day(2024, time.July, 2)))

	assert.False(t, open.ActiveOn(day(2024, time.June, 30)))
	assert.True(t, open.ActiveOn(day(2024, time.July, 1)))
	assert.True(t, open.ActiveOn(day(2030, time.January, 1)))
}

package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = Parse("01/03/2024")
	assert.Error(t, err)
	_, err = Parse("2024-02-30")
	assert.Error(t, err)
}

func TestDaysBetweenAcrossMonthEnd(t *testing.T) {
	loan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	due := AddDays(loan, 30)
	assert.Equal(t, "2024-01-31", Format(due))

	returned := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 5, DaysBetween(due, returned))
	assert.Equal(t, -5, DaysBetween(returned, due))
}

func TestDayIgnoresClock(t *testing.T) {
	sp := time.FixedZone("BRT", -3*3600)
	late := time.Date(2024, 6, 10, 23, 30, 0, 0, sp)
	assert.Equal(t, "2024-06-10", Format(Day(late)))
	assert.Equal(t, 0, DaysBetween(late, time.Date(2024, 6, 10, 1, 0, 0, 0, time.UTC)))
}

func TestFixedClock(t *testing.T) {
	c := Fixed(time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-06-10", Format(c.Today()))
	assert.Equal(t, "", Format(time.Time{}))
}

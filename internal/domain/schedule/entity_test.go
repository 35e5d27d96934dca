package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISODayOfWeek(t *testing.T) {
	monday := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i+1, ISODayOfWeek(monday.AddDate(0, 0, i)))
	}
}

func TestOccurrencesOn(t *testing.T) {
	monday := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	dates := []time.Time{monday, monday.AddDate(0, 0, 1), monday.AddDate(0, 0, 7)}

	slots := []TeachingSlot{
		{ID: "math", DayOfWeek: 1},
		{ID: "physics", DayOfWeek: 2},
		{ID: "lab", DayOfWeek: 1},
		{ID: "friday", DayOfWeek: 5},
	}

	occ := OccurrencesOn(slots, dates)
	require.Len(t, occ, 5)
	assert.Equal(t, "math", occ[0].Slot.ID)
	assert.Equal(t, "lab", occ[1].Slot.ID)
	assert.Equal(t, "physics", occ[2].Slot.ID)
	assert.Equal(t, monday.AddDate(0, 0, 7), occ[4].Date)
}

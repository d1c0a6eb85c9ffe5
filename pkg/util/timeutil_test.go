package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseWeekDate(t *testing.T) {
	ts, err := ParseWeekDate("2024-03-18")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), ts)

	_, err = ParseWeekDate("18/03/2024")
	require.Error(t, err)
}

func TestWeekStart(t *testing.T) {
	// Thursday 2024-03-21 belongs to the week starting Monday 2024-03-18.
	thursday := time.Date(2024, 3, 21, 15, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), WeekStart(thursday))

	monday := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	require.Equal(t, monday, WeekStart(monday))

	sunday := time.Date(2024, 3, 24, 23, 59, 0, 0, time.UTC)
	require.Equal(t, monday, WeekStart(sunday))
}

package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshop-hub/backend/pkg/apperror"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodCustom, p)

	p, err = ParsePeriod("weekly")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeekly, p)

	_, err = ParsePeriod("hourly")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestResolveWindow(t *testing.T) {
	loc := time.FixedZone("LKT", 5*3600+1800)
	// Wednesday.
	now := time.Date(2024, time.May, 15, 14, 30, 0, 0, loc)

	tests := []struct {
		period    Period
		firstDay  string
		lastDay   string
		endsAtEOD bool
	}{
		{PeriodDaily, "2024-05-15", "2024-05-15", true},
		{PeriodWeekly, "2024-05-13", "2024-05-19", true},
		{PeriodMonthly, "2024-05-01", "2024-05-31", true},
		{PeriodAnnual, "2024-01-01", "2024-12-31", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			w, err := ResolveWindow(tt.period, now, nil, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.firstDay, w.FirstDay().Format("2006-01-02"))
			assert.Equal(t, tt.lastDay, w.LastDay().Format("2006-01-02"))
			assert.Equal(t, 23, w.End.Hour())
			assert.Equal(t, loc, w.Start.Location())
		})
	}
}

func TestResolveWindow_WeeklyOnSunday(t *testing.T) {
	now := time.Date(2024, time.May, 19, 9, 0, 0, 0, time.UTC)
	w, err := ResolveWindow(PeriodWeekly, now, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-13", w.FirstDay().Format("2006-01-02"))
	assert.Equal(t, "2024-05-19", w.LastDay().Format("2006-01-02"))
}

func TestResolveWindow_MonthlyDecember(t *testing.T) {
	now := time.Date(2024, time.December, 3, 9, 0, 0, 0, time.UTC)
	w, err := ResolveWindow(PeriodMonthly, now, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", w.LastDay().Format("2006-01-02"))
}

func TestResolveWindow_Custom(t *testing.T) {
	now := time.Date(2024, time.May, 15, 14, 30, 0, 0, time.UTC)
	from, to := day("2024-04-01"), day("2024-04-30")

	w, err := ResolveWindow(PeriodCustom, now, &from, &to, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", w.FirstDay().Format("2006-01-02"))
	assert.Equal(t, "2024-04-30", w.LastDay().Format("2006-01-02"))
	assert.Equal(t, 23, w.End.Hour())

	earliest := day("2023-01-10")
	w, err = ResolveWindow(PeriodCustom, now, nil, nil, &earliest)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-10", w.FirstDay().Format("2006-01-02"))
	assert.Equal(t, now, w.End)

	w, err = ResolveWindow(PeriodCustom, now, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, now, w.Start)

	_, err = ResolveWindow(PeriodCustom, now, &to, &from, nil)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

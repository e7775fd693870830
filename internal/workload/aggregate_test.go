package workload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atleta/training-diary/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rpe(v int) *int { return &v }

func session(date time.Time, minutes int, exertion *int) domain.TrainingSession {
	return domain.TrainingSession{
		Date:              date,
		DurationMinutes:   minutes,
		PerceivedExertion: exertion,
	}
}

func TestSessionLoad(t *testing.T) {
	assert.Equal(t, 420.0, SessionLoad(session(day(2026, 5, 1), 60, rpe(7))))
	// Unrated sessions fall back to a moderate RPE of 5.
	assert.Equal(t, 300.0, SessionLoad(session(day(2026, 5, 1), 60, nil)))
	assert.Equal(t, 0.0, SessionLoad(session(day(2026, 5, 1), 0, rpe(9))))
}

func TestToDailySamplesGroupsAndSorts(t *testing.T) {
	sessions := []domain.TrainingSession{
		session(day(2026, 5, 3), 30, rpe(6)),
		session(day(2026, 5, 1), 60, rpe(5)),
		session(day(2026, 5, 3), 45, rpe(4)), // same day, summed
	}

	samples := ToDailySamples(sessions)
	require.Len(t, samples, 2)
	assert.Equal(t, day(2026, 5, 1), samples[0].Date)
	assert.Equal(t, 300.0, samples[0].Load)
	assert.Equal(t, day(2026, 5, 3), samples[1].Date)
	assert.Equal(t, 30*6+45*4.0, samples[1].Load)
}

func TestToDailySamplesEmpty(t *testing.T) {
	assert.Empty(t, ToDailySamples(nil))
}

func TestWindowSumInclusiveBounds(t *testing.T) {
	samples := []domain.WorkloadSample{
		{Date: day(2026, 5, 1), Load: 100}, // asOf-7: outside a 7-day window
		{Date: day(2026, 5, 2), Load: 10},  // asOf-6: first day inside
		{Date: day(2026, 5, 8), Load: 1},   // asOf itself
	}
	asOf := day(2026, 5, 8)

	assert.Equal(t, 11.0, WindowSum(samples, asOf, 7))
	assert.Equal(t, 111.0, WindowSum(samples, asOf, 8))
	assert.Equal(t, 0.0, WindowSum(samples, asOf, 0))
}

func TestWindowSumIgnoresFutureSamples(t *testing.T) {
	samples := []domain.WorkloadSample{
		{Date: day(2026, 5, 10), Load: 500},
	}
	assert.Equal(t, 0.0, WindowSum(samples, day(2026, 5, 8), 28))
}

func TestWeeklyTotalsSundayAnchor(t *testing.T) {
	// 2026-08-30 is a Sunday, 2026-08-31 a Monday: the Sunday anchor puts
	// them in the SAME week, unlike the planner's Monday anchor.
	samples := []domain.WorkloadSample{
		{Date: day(2026, 8, 30), Load: 100},
		{Date: day(2026, 8, 31), Load: 200},
		{Date: day(2026, 9, 6), Load: 50}, // next Sunday, new week
	}

	totals := WeeklyTotals(samples)
	require.Len(t, totals, 2)
	assert.Equal(t, day(2026, 8, 30), totals[0].WeekStart)
	assert.Equal(t, 300.0, totals[0].TotalLoad)
	assert.Equal(t, 2, totals[0].SessionCount)
	assert.Equal(t, day(2026, 9, 6), totals[1].WeekStart)
	assert.Equal(t, 50.0, totals[1].TotalLoad)
}

func TestWeeklyTotalsEmpty(t *testing.T) {
	assert.Empty(t, WeeklyTotals(nil))
}

// Package workload turns a history of training sessions into daily load
// samples and derives the acute:chronic workload ratio (ACWR) risk snapshot.
// Everything here is a pure transform over caller-supplied slices.
package workload

import (
	"sort"
	"time"

	"atleta/training-diary/internal/domain"
)

// DefaultRPE is substituted when a session has no perceived-exertion rating.
// It stands for "moderate effort"; the session keeps a nil rating so callers
// can still tell imputed load from measured load.
const DefaultRPE = 5

// Rolling window lengths, in days.
const (
	AcuteWindowDays   = 7
	ChronicWindowDays = 28
)

// SessionLoad computes the unit-less load of one session:
// duration in minutes times RPE (DefaultRPE when unrated).
func SessionLoad(s domain.TrainingSession) float64 {
	rpe := DefaultRPE
	if s.PerceivedExertion != nil {
		rpe = *s.PerceivedExertion
	}
	return float64(s.DurationMinutes) * float64(rpe)
}

// ToDailySamples groups sessions by calendar day, sums same-day loads, and
// returns one sample per day sorted ascending by date.
func ToDailySamples(sessions []domain.TrainingSession) []domain.WorkloadSample {
	if len(sessions) == 0 {
		return nil
	}

	byDay := make(map[time.Time]float64, len(sessions))
	for _, s := range sessions {
		day := dayOf(s.Date)
		byDay[day] += SessionLoad(s)
	}

	samples := make([]domain.WorkloadSample, 0, len(byDay))
	for day, load := range byDay {
		samples = append(samples, domain.WorkloadSample{Date: day, Load: load})
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Date.Before(samples[j].Date)
	})
	return samples
}

// WindowSum adds up the load of samples dated within [asOf-(days-1), asOf],
// inclusive on both ends.
func WindowSum(samples []domain.WorkloadSample, asOf time.Time, days int) float64 {
	if days <= 0 {
		return 0
	}
	end := dayOf(asOf)
	start := end.AddDate(0, 0, -(days - 1))

	var total float64
	for _, s := range samples {
		day := dayOf(s.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		total += s.Load
	}
	return total
}

// WeeklyTotals groups samples by the Sunday-anchored week containing each
// date. Note the anchor differs from the Monday anchor the period planner
// uses (dateweek package); chart consumers rely on Sunday weeks.
func WeeklyTotals(samples []domain.WorkloadSample) []domain.WeeklyTotal {
	if len(samples) == 0 {
		return nil
	}

	type bucket struct {
		load  float64
		count int
	}
	byWeek := make(map[time.Time]*bucket)
	for _, s := range samples {
		ws := sundayWeekStart(s.Date)
		b := byWeek[ws]
		if b == nil {
			b = &bucket{}
			byWeek[ws] = b
		}
		b.load += s.Load
		b.count++
	}

	totals := make([]domain.WeeklyTotal, 0, len(byWeek))
	for ws, b := range byWeek {
		totals = append(totals, domain.WeeklyTotal{
			WeekStart:    ws,
			TotalLoad:    b.load,
			SessionCount: b.count,
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].WeekStart.Before(totals[j].WeekStart)
	})
	return totals
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sundayWeekStart returns the Sunday at or before t. Go's Weekday already
// numbers Sunday as 0, so the weekday itself is the offset.
func sundayWeekStart(t time.Time) time.Time {
	d := dayOf(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

package workload

import (
	"math"
	"time"

	"atleta/training-diary/internal/domain"
)

// ACWR zone thresholds. The ratio divides raw 7-day and 28-day load sums
// (not per-day averages), so these boundaries are calibrated to the
// sum-based scale and must move together with the formula.
const (
	detrainingBelow = 0.8
	safetyUpTo      = 1.3
	riskUpTo        = 1.5
)

const trendWindowDays = 14

// minTrendSamples is the minimum number of trailing samples needed before a
// trend other than "stable" is reported.
const minTrendSamples = 4

var recommendations = map[domain.RiskZone][]string{
	domain.ZoneDetraining: {
		"Il carico è molto basso rispetto al tuo storico.",
		"Aumenta gradualmente il volume di allenamento.",
		"Un carico troppo basso riduce la protezione dagli infortuni.",
	},
	domain.ZoneSafety: {
		"Il carico è nella zona ottimale.",
		"Mantieni questa progressione di allenamento.",
		"Continua a registrare le sessioni per un monitoraggio accurato.",
	},
	domain.ZoneRisk: {
		"Il carico sta crescendo troppo rapidamente.",
		"Riduci l'intensità delle prossime sessioni.",
		"Inserisci un giorno di recupero extra questa settimana.",
		"Monitora eventuali segnali di affaticamento.",
	},
	domain.ZoneHighRisk: {
		"Rischio di infortunio elevato: riduci subito il carico.",
		"Pianifica una settimana di scarico.",
		"Valuta un confronto con il tuo allenatore.",
		"Privilegia sonno e recupero nei prossimi giorni.",
	},
}

const safetyIncreasingNote = "Monitora l'aumento graduale del carico."

// ComputeMetrics derives the full risk snapshot from daily load samples as
// of the given date. Samples must be sorted ascending by date (the order
// ToDailySamples produces). It never fails: with no data (or a zero chronic
// load) it returns a zeroed snapshot in the detraining zone, so dashboards
// always have something to render.
func ComputeMetrics(samples []domain.WorkloadSample, asOf time.Time) domain.WorkloadMetrics {
	acute := WindowSum(samples, asOf, AcuteWindowDays)
	chronic := WindowSum(samples, asOf, ChronicWindowDays)

	var acwr float64
	if chronic != 0 {
		acwr = acute / chronic
	}

	zone := classifyZone(acwr)
	trend := detectTrend(samples, asOf)

	recs := make([]string, 0, 5)
	recs = append(recs, recommendations[zone]...)
	if zone == domain.ZoneSafety && trend == domain.TrendIncreasing {
		recs = append(recs, safetyIncreasingNote)
	}

	return domain.WorkloadMetrics{
		AcuteLoad:       acute,
		ChronicLoad:     chronic,
		ACWR:            acwr,
		RiskZone:        zone,
		RiskPercentage:  riskPercentage(acwr, zone),
		Trend:           trend,
		Recommendations: recs,
	}
}

func classifyZone(acwr float64) domain.RiskZone {
	switch {
	case acwr < detrainingBelow:
		return domain.ZoneDetraining
	case acwr <= safetyUpTo:
		return domain.ZoneSafety
	case acwr <= riskUpTo:
		return domain.ZoneRisk
	default:
		return domain.ZoneHighRisk
	}
}

// riskPercentage maps the ratio onto 0-100: the risk zone spans 0-50, the
// high-risk zone 50-100. Values above 100 for extreme ratios are left
// unclamped on purpose.
func riskPercentage(acwr float64, zone domain.RiskZone) int {
	switch zone {
	case domain.ZoneRisk:
		return int(math.Round((acwr - safetyUpTo) / 0.2 * 50))
	case domain.ZoneHighRisk:
		return int(math.Round(50 + (acwr-riskUpTo)/0.5*50))
	default:
		return 0
	}
}

// detectTrend compares the two halves of the trailing 14 days of samples.
// The split is by sample count (first ceil(n/2) vs the rest), not by date.
func detectTrend(samples []domain.WorkloadSample, asOf time.Time) domain.Trend {
	end := dayOf(asOf)
	start := end.AddDate(0, 0, -(trendWindowDays - 1))

	var recent []domain.WorkloadSample
	for _, s := range samples {
		day := dayOf(s.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		recent = append(recent, s)
	}
	if len(recent) < minTrendSamples {
		return domain.TrendStable
	}

	half := (len(recent) + 1) / 2
	var week1, week2 float64
	for _, s := range recent[:half] {
		week1 += s.Load
	}
	for _, s := range recent[half:] {
		week2 += s.Load
	}

	diff := week2 - week1
	switch {
	case diff > 0.1*week1:
		return domain.TrendIncreasing
	case diff < -0.1*week1:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}

package insights

import (
	"cmp"
	"math"
	"slices"

	"botlynx/internal/counter"
	"botlynx/internal/report"

	"github.com/montanaflynn/stats"
)

const minAnomalyDays = 3

// Anomalies flags days whose bot traffic spikes above the baseline of the other days:
// mean + 2σ (sample), or mean × 1.5 when the other days do not vary. A day above
// mean + 3σ is high severity. Reported mean, deviation and expected count use all days.
func Anomalies(days counter.Counter[string]) *report.Anomalies {
	if len(days) < minAnomalyDays {
		return &report.Anomalies{
			DaysAnalyzed: len(days),
			Anomalies:    []report.Anomaly{},
			Message:      "At least 3 days of data are needed for anomaly detection",
		}
	}

	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	values := make(stats.Float64Data, len(dates))
	for i, d := range dates {
		values[i] = float64(days[d])
	}

	mean, _ := stats.Mean(values)
	stdDev, _ := stats.StandardDeviationSample(values)

	out := &report.Anomalies{
		DaysAnalyzed: len(dates),
		MeanDaily:    round2(mean),
		StdDev:       round2(stdDev),
		Threshold:    round2(threshold(mean, stdDev)),
		Anomalies:    []report.Anomaly{},
	}

	for i, d := range dates {
		count := values[i]
		baseMean, baseStd := baseline(values, i)
		if count <= threshold(baseMean, baseStd) {
			continue
		}

		severity := "medium"
		if count > baseMean+3*baseStd {
			severity = "high"
		}
		out.Anomalies = append(out.Anomalies, report.Anomaly{
			Date:                d,
			Count:               int(count),
			Expected:            int(math.Round(mean)),
			DeviationPercentage: round1((count - mean) / mean * 100),
			Severity:            severity,
		})
	}

	slices.SortStableFunc(out.Anomalies, func(a, b report.Anomaly) int {
		return cmp.Compare(b.DeviationPercentage, a.DeviationPercentage)
	})
	out.HasAnomalies = len(out.Anomalies) > 0

	return out
}

func threshold(mean, stdDev float64) float64 {
	if stdDev == 0 {
		return mean * 1.5
	}
	return mean + 2*stdDev
}

// baseline returns mean and sample standard deviation of values without index skip.
func baseline(values stats.Float64Data, skip int) (float64, float64) {
	others := make(stats.Float64Data, 0, len(values)-1)
	others = append(others, values[:skip]...)
	others = append(others, values[skip+1:]...)

	mean, _ := stats.Mean(others)
	stdDev, err := stats.StandardDeviationSample(others)
	if err != nil || math.IsNaN(stdDev) {
		stdDev = 0
	}
	return mean, stdDev
}

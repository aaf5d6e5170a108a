// Package insights derives the analytical report sections from a finalized aggregation
// state. Every function is pure and returns an empty section for empty input.
package insights

import (
	"fmt"
	"math"
	"time"

	"botlynx/internal/aggregate"
	"botlynx/internal/report"
)

// Monday first, as in the report's day-of-week tables.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func hourRange(h int) string {
	return fmt.Sprintf("%02d:00 - %02d:00", h, h+1)
}

// TimePatterns reports peak and quiet hours, the busiest weekday and the hourly and
// daily distributions. Ties go to whichever hour or day received traffic first.
func TimePatterns(s *aggregate.State) *report.TimeAnalysis {
	if len(s.HourOrder) == 0 {
		return &report.TimeAnalysis{}
	}
	peak, quiet := s.HourOrder[0], s.HourOrder[0]
	for _, h := range s.HourOrder[1:] {
		if s.Hourly[h] > s.Hourly[peak] {
			peak = h
		}
		if s.Hourly[h] < s.Hourly[quiet] {
			quiet = h
		}
	}

	out := &report.TimeAnalysis{
		PeakHour:           hourRange(peak),
		PeakHourCount:      s.Hourly[peak],
		QuietHour:          hourRange(quiet),
		QuietHourCount:     s.Hourly[quiet],
		BotPeakTimes:       make(map[string]string, len(s.Bots)),
		HourlyDistribution: make([]report.HourCount, 0, 24),
		DailyDistribution:  make([]report.DayCount, 0, 7),
	}

	for h, c := range s.Hourly {
		out.HourlyDistribution = append(out.HourlyDistribution, report.HourCount{
			Hour:  fmt.Sprintf("%02d:00", h),
			Count: c,
		})
	}

	for _, day := range weekOrder {
		if c := s.Weekdays[day]; c > 0 {
			out.DailyDistribution = append(out.DailyDistribution, report.DayCount{Day: day.String(), Count: c})
		}
	}
	for _, d := range s.WeekdayOrder {
		if c := s.Weekdays[d]; c > out.BusiestDayCount {
			out.BusiestDay = time.Weekday(d).String()
			out.BusiestDayCount = c
		}
	}

	for name, b := range s.Bots {
		if len(b.HourOrder) == 0 {
			continue
		}
		botPeak := b.HourOrder[0]
		for _, h := range b.HourOrder[1:] {
			if b.Hourly[h] > b.Hourly[botPeak] {
				botPeak = h
			}
		}
		out.BotPeakTimes[name] = fmt.Sprintf("%02d:00 (%d requests)", botPeak, b.Hourly[botPeak])
	}

	return out
}

// BotBehavior summarizes sessions, favourite URLs and success rate per bot.
func BotBehavior(s *aggregate.State) map[string]report.BotBehavior {
	behavior := make(map[string]report.BotBehavior, len(s.Bots))

	for name, b := range s.Bots {
		avg := 0.0
		if len(b.Sessions) > 0 {
			pages := 0
			for _, session := range b.Sessions {
				pages += len(session)
			}
			avg = float64(pages) / float64(len(b.Sessions))
		}

		preferred := make([]report.URLCount, 0, 5)
		for _, e := range b.URLs.MostCommon(5) {
			preferred = append(preferred, report.URLCount{URL: e.Key, Count: e.Count})
		}

		behavior[name] = report.BotBehavior{
			AvgPagesPerSession: round1(avg),
			TotalSessions:      len(b.Sessions),
			PreferredURLs:      preferred,
			EfficiencyScore:    round1(b.SuccessRate()),
		}
	}

	return behavior
}

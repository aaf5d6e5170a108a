package analyzer

import (
	"math"

	"botlynx/internal/aggregate"
	"botlynx/internal/insights"
	"botlynx/internal/report"
)

const dateLayout = "2006-01-02 15:04:05"

// Build derives the report from a state. The state is finalized first if the caller has
// not done so. A state without bot requests yields report.ErrNoData.
func (a *Analyzer) Build(s *aggregate.State) (*report.Report, error) {
	s.Finalize()
	if s.Empty() {
		a.logger.Info(report.NoDataMessage, a.logger.Args("lines", s.LinesRead))
		return nil, report.ErrNoData
	}

	classifier := a.classifier.Snapshot()
	features := a.cfg.Features

	r := &report.Report{
		DateRange: report.DateRange{
			Start: s.FirstSeen.Format(dateLayout),
			End:   s.LastSeen.Format(dateLayout),
		},
		TotalRequests:      s.TotalRequests,
		OverallSuccessRate: round1(share(s.Successes(), s.TotalRequests)),
		BotStatistics:      make([]report.BotStat, 0, len(s.Bots)),
		TopURLs:            make([]report.URLCount, 0, a.cfg.TopURLsCount),
		TopFailedURLs:      make([]report.URLCount, 0, a.cfg.TopFailedURLsCount),
		FailureTypes:       insights.FailureTypes(s),
		TimeAnalysis:       insights.TimePatterns(s),
		BehaviorAnalysis:   insights.BotBehavior(s),
		FailureAnalysis:    insights.Failures(s),
		Recommendations:    insights.Recommendations(s),
		Comparisons:        insights.Comparisons(s),
		HumanVsBot:         insights.HumanVsBot(s),
		StatusBreakdown:    insights.StatusBreakdown(s),
		Bandwidth:          insights.Bandwidth(s),
		ContentTypes:       insights.ContentTypes(s),
		RequestMethods:     insights.RequestMethods(s),
		Scan: report.Scan{
			LinesRead:     s.LinesRead,
			LinesRejected: s.LinesRejected,
			HumanRequests: s.HumanRequests,
		},
	}

	for _, name := range s.BotNames() {
		b := s.Bots[name]
		category, color := classifier.Info(name)
		rate := b.SuccessRate()
		r.BotStatistics = append(r.BotStatistics, report.BotStat{
			Type:         name,
			Count:        b.Requests,
			Percentage:   round1(share(b.Requests, s.TotalRequests)),
			SuccessRate:  round1(rate),
			Category:     category,
			Color:        color,
			HealthStatus: a.cfg.HealthStatus(rate),
		})
	}

	for _, e := range s.URLs.MostCommon(a.cfg.TopURLsCount) {
		r.TopURLs = append(r.TopURLs, report.URLCount{URL: e.Key, Count: e.Count})
	}
	for _, e := range s.FailedURLs.MostCommon(a.cfg.TopFailedURLsCount) {
		r.TopFailedURLs = append(r.TopFailedURLs, report.URLCount{URL: e.Key, Count: e.Count})
	}

	if features.ReferrerAnalysis {
		r.ReferrerAnalysis = insights.ReferrerAnalysis(s)
	}
	if features.SiteStructure {
		r.SiteStructure = insights.SiteStructure(s)
	}
	if features.CrawlEfficiency {
		r.CrawlEfficiency = insights.CrawlEfficiency(s)
	}
	if features.ComplianceTracking {
		r.Compliance = insights.Compliance(s)
	}
	if features.QueryParams {
		r.QueryParams = insights.QueryParams(s)
	}
	if features.AnomalyDetection {
		r.Anomalies = insights.Anomalies(s.Days)
	}
	if features.BotVersions {
		r.BotVersions = insights.BotVersions(s)
	}
	if features.SEOHealth {
		r.SEOHealth = insights.SEOHealth(s)
	}
	if features.CompetitiveAnalysis {
		r.Competitive = insights.Competitive(s)
	}
	if features.GeographicAnalysis && a.geo != nil {
		r.Geographic = insights.Geographic(s)
	}

	return r, nil
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

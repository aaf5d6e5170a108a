package insights

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"botlynx/internal/aggregate"
	"botlynx/internal/counter"
	"botlynx/internal/report"
)

const (
	postFailureShare     = 30.0
	clusterMinFailures   = 20
	maxClusters          = 10
	recommendURLFailures = 50
	highURLFailures      = 100
	lowSuccessRate       = 50.0
	minBotRequests       = 10
	maxRecommendations   = 10
	minURLRequests       = 10
)

func severityForShare(pct float64) string {
	switch {
	case pct > 30:
		return "HIGH"
	case pct > 10:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Failures looks for root causes, URLs with clustered failures and the impact of each
// failure category.
func Failures(s *aggregate.State) *report.FailureAnalysis {
	if len(s.Failures) == 0 {
		return &report.FailureAnalysis{}
	}

	out := &report.FailureAnalysis{
		RootCauses:         []report.RootCause{},
		URLFailureClusters: []report.FailureCluster{},
		FailureImpact:      []report.FailureImpact{},
	}
	total := len(s.Failures)

	posts := 0
	categories := counter.New[string]()
	for _, f := range s.Failures {
		if f.Method == "POST" {
			posts++
		}
		categories.Inc(f.Category)
	}

	if share := percent(posts, total); posts > 0 && share > postFailureShare {
		out.RootCauses = append(out.RootCauses, report.RootCause{
			Issue:       "POST Request Failures",
			Severity:    "HIGH",
			Description: fmt.Sprintf("%d failures on POST requests (%.1f%% of all failures)", posts, share),
			Suggestion:  "Review form handling and API endpoints",
		})
	}

	for url, types := range s.URLFailureTypes {
		failures := types.Total()
		if failures <= clusterMinFailures {
			continue
		}
		dominant, _ := types.Max()
		out.URLFailureClusters = append(out.URLFailureClusters, report.FailureCluster{
			URL:           url,
			TotalFailures: failures,
			PrimaryError:  dominant.Key,
			ErrorCount:    dominant.Count,
		})
	}
	slices.SortFunc(out.URLFailureClusters, func(a, b report.FailureCluster) int {
		if c := cmp.Compare(b.TotalFailures, a.TotalFailures); c != 0 {
			return c
		}
		return cmp.Compare(a.URL, b.URL)
	})
	if len(out.URLFailureClusters) > maxClusters {
		out.URLFailureClusters = out.URLFailureClusters[:maxClusters]
	}

	for _, e := range categories.MostCommon(0) {
		pct := percent(e.Count, total)
		out.FailureImpact = append(out.FailureImpact, report.FailureImpact{
			Type:       e.Key,
			Count:      e.Count,
			Percentage: round1(pct),
			Severity:   severityForShare(pct),
		})
	}

	return out
}

// FailureTypes totals failures per category across all bots.
func FailureTypes(s *aggregate.State) []report.TypeCount {
	categories := counter.New[string]()
	for _, b := range s.Bots {
		categories.Merge(b.FailureTypes)
	}

	out := make([]report.TypeCount, 0, len(categories))
	for _, e := range categories.MostCommon(0) {
		out = append(out, report.TypeCount{Type: e.Key, Count: e.Count})
	}
	return out
}

func fixSuggestion(category, url string) string {
	switch {
	case strings.Contains(category, "500"):
		return "Check server logs for backend errors"
	case strings.Contains(category, "404"):
		return fmt.Sprintf("Add redirect from %s or restore missing content", url)
	case strings.Contains(category, "Redirect") && url != "/":
		return "Review redirect rules. Consider if redirect is necessary or add permanent redirect (301)."
	default:
		return "Investigate the specific error"
	}
}

// Recommendations ranks fixes for the worst URLs and bots, highest priority first.
func Recommendations(s *aggregate.State) []report.Recommendation {
	recs := []report.Recommendation{}
	priority := 100

	for _, e := range s.FailedURLs.MostCommon(5) {
		if e.Count <= recommendURLFailures {
			continue
		}
		dominant, _ := s.URLFailureTypes[e.Key].Max()
		severity := "MEDIUM"
		if e.Count > highURLFailures {
			severity = "HIGH"
		}
		recs = append(recs, report.Recommendation{
			Priority:    priority,
			Severity:    severity,
			Title:       fmt.Sprintf("Fix errors on %s", e.Key),
			Description: fmt.Sprintf("%d failures detected (%s)", e.Count, dominant.Key),
			Action:      fixSuggestion(dominant.Key, e.Key),
			Impact:      fmt.Sprintf("Could improve success rate by %.1f%%", percent(e.Count, s.TotalRequests)),
		})
		priority -= 10
	}

	for _, name := range s.BotNames() {
		b := s.Bots[name]
		rate := b.SuccessRate()
		if rate >= lowSuccessRate || b.Requests <= minBotRequests {
			continue
		}
		recs = append(recs, report.Recommendation{
			Priority:    priority,
			Severity:    "MEDIUM",
			Title:       fmt.Sprintf("Improve %s success rate", name),
			Description: fmt.Sprintf("Currently at %.1f%% (below 50%%)", rate),
			Action:      fmt.Sprintf("Investigate why %s is failing", name),
			Impact:      fmt.Sprintf("Affects %d requests", b.Requests),
		})
		priority -= 5
	}

	slices.SortStableFunc(recs, func(a, b report.Recommendation) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// Comparisons pits the best bot and URL against the worst by success rate.
func Comparisons(s *aggregate.State) *report.Comparisons {
	out := &report.Comparisons{}

	type botRate struct {
		name string
		rate float64
	}
	bots := make([]botRate, 0, len(s.Bots))
	for _, name := range s.BotNames() {
		bots = append(bots, botRate{name, s.Bots[name].SuccessRate()})
	}
	slices.SortStableFunc(bots, func(a, b botRate) int {
		return cmp.Compare(b.rate, a.rate)
	})
	if len(bots) >= 2 {
		best, worst := bots[0], bots[len(bots)-1]
		out.BotPerformance = &report.BotComparison{
			Best:       report.BotRate{Name: best.name, SuccessRate: round1(best.rate)},
			Worst:      report.BotRate{Name: worst.name, SuccessRate: round1(worst.rate)},
			Difference: round1(best.rate - worst.rate),
		}
	}

	urls := make([]report.URLRate, 0)
	for url, total := range s.URLs {
		if total <= minURLRequests {
			continue
		}
		urls = append(urls, report.URLRate{
			URL:         url,
			SuccessRate: percent(total-s.FailedURLs[url], total),
			Requests:    total,
		})
	}
	slices.SortFunc(urls, func(a, b report.URLRate) int {
		if c := cmp.Compare(b.SuccessRate, a.SuccessRate); c != 0 {
			return c
		}
		return cmp.Compare(a.URL, b.URL)
	})
	if len(urls) >= 2 {
		best, worst := urls[0], urls[len(urls)-1]
		diff := best.SuccessRate - worst.SuccessRate
		best.SuccessRate = round1(best.SuccessRate)
		worst.SuccessRate = round1(worst.SuccessRate)
		out.URLPerformance = &report.URLComparison{
			Best:       best,
			Worst:      worst,
			Difference: round1(diff),
		}
	}

	return out
}

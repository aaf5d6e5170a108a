package insights

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"botlynx/internal/aggregate"
	"botlynx/internal/classify"
	"botlynx/internal/report"
)

// ReferrerAnalysis breaks bot traffic down by referrer source and referring domain.
func ReferrerAnalysis(s *aggregate.State) *report.ReferrerAnalysis {
	total := 0
	for _, c := range s.ReferrerSources {
		total += c
	}
	if total == 0 {
		return &report.ReferrerAnalysis{}
	}

	out := &report.ReferrerAnalysis{
		SourceBreakdown: make([]report.SourceShare, 0, classify.NumReferrerSources),
		TopDomains:      make([]report.DomainCount, 0, 10),
		ByBot:           make(map[string]map[string]float64, len(s.Bots)),
	}

	for src := classify.ReferrerSource(0); src < classify.NumReferrerSources; src++ {
		out.SourceBreakdown = append(out.SourceBreakdown, report.SourceShare{
			Source:     src.String(),
			Count:      s.ReferrerSources[src],
			Percentage: round1(percent(s.ReferrerSources[src], total)),
		})
	}

	for _, e := range s.Domains.MostCommon(10) {
		out.TopDomains = append(out.TopDomains, report.DomainCount{Domain: e.Key, Count: e.Count})
	}

	for name, b := range s.Bots {
		botTotal := 0
		for _, c := range b.Referrers {
			botTotal += c
		}
		mix := make(map[string]float64, classify.NumReferrerSources)
		for src := classify.ReferrerSource(0); src < classify.NumReferrerSources; src++ {
			mix[src.String()] = round1(percent(b.Referrers[src], botTotal))
		}
		out.ByBot[name] = mix
	}

	return out
}

// SiteStructure reports which sections bots crawl and how deep they go.
func SiteStructure(s *aggregate.State) *report.SiteStructure {
	total := s.Sections.Total()
	if total == 0 {
		return &report.SiteStructure{}
	}

	out := &report.SiteStructure{
		SectionBreakdown:  make([]report.SectionShare, 0, 15),
		DepthDistribution: make([]report.DepthShare, 0, classify.MaxDepth+1),
		ByBot:             make(map[string][]report.SectionCount, len(s.Bots)),
	}

	for _, e := range s.Sections.MostCommon(15) {
		out.SectionBreakdown = append(out.SectionBreakdown, report.SectionShare{
			Section:    e.Key,
			Count:      e.Count,
			Percentage: round1(percent(e.Count, total)),
		})
	}

	depthTotal, weighted := 0, 0
	for d, c := range s.Depths {
		depthTotal += c
		weighted += d * c
	}
	for d, c := range s.Depths {
		label := strconv.Itoa(d)
		if d == classify.MaxDepth {
			label += "+"
		}
		out.DepthDistribution = append(out.DepthDistribution, report.DepthShare{
			Depth:      d,
			Label:      label,
			Count:      c,
			Percentage: round1(percent(c, depthTotal)),
		})
	}
	if depthTotal > 0 {
		out.AvgDepth = round2(float64(weighted) / float64(depthTotal))
	}

	for name, b := range s.Bots {
		sections := make([]report.SectionCount, 0, 5)
		for _, e := range b.Sections.MostCommon(5) {
			sections = append(sections, report.SectionCount{Section: e.Key, Count: e.Count})
		}
		out.ByBot[name] = sections
	}

	return out
}

// CrawlEfficiency compares requests for content against requests for static assets.
func CrawlEfficiency(s *aggregate.State) *report.CrawlEfficiency {
	ct := s.ContentTypes
	total := 0
	for _, c := range ct {
		total += c
	}
	if total == 0 {
		return &report.CrawlEfficiency{}
	}

	valuable := ct[classify.HTML] + ct[classify.JSONAPI] + ct[classify.XMLFeeds]
	waste := ct[classify.CSS] + ct[classify.JavaScript] + ct[classify.Images] + ct[classify.Documents]
	valuablePct := percent(valuable, total)
	wastePct := percent(waste, total)

	out := &report.CrawlEfficiency{
		ValuableRequests:   valuable,
		WasteRequests:      waste,
		ValuablePercentage: round1(valuablePct),
		WastePercentage:    round1(wastePct),
		EfficiencyScore:    round1(math.Min(100, valuablePct*1.2)),
		Recommendations:    []string{},
	}

	switch {
	case wastePct < 20:
		out.WasteStatus = "good"
	case wastePct < 40:
		out.WasteStatus = "warning"
	default:
		out.WasteStatus = "critical"
	}

	if wastePct >= 40 {
		out.Recommendations = append(out.Recommendations,
			fmt.Sprintf("%.1f%% of bot requests fetch static assets. Disallow asset directories for AI crawlers in robots.txt.", wastePct))
	} else if wastePct >= 20 {
		out.Recommendations = append(out.Recommendations,
			"Consider disallowing static asset paths for AI crawlers to save crawl budget.")
	}
	if ct[classify.Images] > ct[classify.HTML] {
		out.Recommendations = append(out.Recommendations,
			"Bots request more images than pages. Review image sitemaps and hotlinking rules.")
	}
	if percent(ct[classify.CSS]+ct[classify.JavaScript], total) > 30 {
		out.Recommendations = append(out.Recommendations,
			"CSS and JavaScript exceed 30% of bot requests. Bundle assets or disallow script and style paths.")
	}

	return out
}

// Compliance counts bots that read robots.txt or a sitemap at least once.
func Compliance(s *aggregate.State) *report.Compliance {
	names := s.BotNames()
	if len(names) == 0 {
		return &report.Compliance{}
	}

	out := &report.Compliance{
		Bots:      make([]report.BotCompliance, 0, len(names)),
		TotalBots: len(names),
	}
	for _, name := range names {
		b := s.Bots[name]
		compliant := b.RobotsTxt > 0 || b.Sitemap > 0
		if compliant {
			out.CompliantBots++
		}
		out.Bots = append(out.Bots, report.BotCompliance{
			Bot:             name,
			RobotsTxtAccess: b.RobotsTxt,
			SitemapAccess:   b.Sitemap,
			Compliant:       compliant,
		})
	}
	out.ComplianceRate = round1(percent(out.CompliantBots, out.TotalBots))

	return out
}

// Parameter names that usually multiply crawlable URLs without new content.
var trapIndicators = []string{
	"session", "sid", "phpsessid", "jsessionid", "token", "utm_", "ref", "sort", "order", "page",
}

const trapMinRequests = 10

// QueryParams reports parameter usage and flags likely crawl traps.
func QueryParams(s *aggregate.State) *report.QueryParams {
	out := &report.QueryParams{
		TotalParamRequests: s.ParamRequests,
		ParamPercentage:    round1(percent(s.ParamRequests, s.TotalRequests)),
		TopParams:          make([]report.ParamCount, 0, 10),
		TopURLs:            make([]report.URLCount, 0, 10),
		PotentialTraps:     []report.CrawlTrap{},
	}

	for _, e := range s.Params.MostCommon(10) {
		out.TopParams = append(out.TopParams, report.ParamCount{Param: e.Key, Count: e.Count})
	}
	for _, e := range s.ParamURLs.MostCommon(10) {
		out.TopURLs = append(out.TopURLs, report.URLCount{URL: e.Key, Count: e.Count})
	}

	for _, e := range s.Params.MostCommon(0) {
		if e.Count <= trapMinRequests {
			continue
		}
		lower := strings.ToLower(e.Key)
		for _, indicator := range trapIndicators {
			if strings.Contains(lower, indicator) {
				out.PotentialTraps = append(out.PotentialTraps, report.CrawlTrap{
					Param:  e.Key,
					Count:  e.Count,
					Reason: fmt.Sprintf("matches %q", indicator),
				})
				break
			}
		}
	}
	out.TrapWarning = len(out.PotentialTraps) > 0

	return out
}

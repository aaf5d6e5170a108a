package insights

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"botlynx/internal/aggregate"
	"botlynx/internal/classify"
	"botlynx/internal/report"
)

// BotVersions lists the versions seen per bot; the most frequent is the primary one.
func BotVersions(s *aggregate.State) map[string]report.BotVersionSummary {
	out := make(map[string]report.BotVersionSummary, len(s.Bots))

	for name, b := range s.Bots {
		total := b.Versions.Total()
		entries := b.Versions.MostCommon(0)
		summary := report.BotVersionSummary{
			Versions:       make([]report.VersionShare, 0, len(entries)),
			UniqueVersions: len(entries),
		}
		for _, e := range entries {
			summary.Versions = append(summary.Versions, report.VersionShare{
				Version:    e.Key,
				Count:      e.Count,
				Percentage: round1(percent(e.Count, total)),
			})
		}
		if len(entries) > 0 {
			summary.PrimaryVersion = entries[0].Key
		}
		out[name] = summary
	}

	return out
}

// SEOHealth scores how much of the crawl returned indexable content.
func SEOHealth(s *aggregate.State) *report.SEOHealth {
	pages := s.Indexable + s.NonIndexable
	if pages == 0 {
		return &report.SEOHealth{Status: "unknown", Issues: []string{}}
	}

	indexableRate := percent(s.Indexable, pages)
	clientRate := percent(s.StatusBuckets[classify.Status4xx], s.TotalRequests)
	serverRate := percent(s.StatusBuckets[classify.Status5xx], s.TotalRequests)

	score := indexableRate - math.Min(30, clientRate) - math.Min(40, 2*serverRate)
	score = math.Max(0, math.Min(100, score))

	out := &report.SEOHealth{
		Score:             round1(score),
		IndexablePages:    s.Indexable,
		NonIndexablePages: s.NonIndexable,
		IndexableRate:     round1(indexableRate),
		ClientErrorRate:   round1(clientRate),
		ServerErrorRate:   round1(serverRate),
		Issues:            []string{},
	}

	switch {
	case score >= 80:
		out.Status = "excellent"
	case score >= 60:
		out.Status = "good"
	case score >= 40:
		out.Status = "warning"
	default:
		out.Status = "critical"
	}

	if clientRate > 10 {
		out.Issues = append(out.Issues,
			fmt.Sprintf("High client error rate (%.1f%%): fix broken links and restore missing pages", clientRate))
	}
	if serverRate > 5 {
		out.Issues = append(out.Issues,
			fmt.Sprintf("Server errors affect %.1f%% of bot requests: check backend stability", serverRate))
	}
	if indexableRate < 70 {
		out.Issues = append(out.Issues,
			fmt.Sprintf("Only %.1f%% of bot requests returned indexable content", indexableRate))
	}

	return out
}

// Competitive ranks bots by aggression: request share weighted by how many sections
// they crawl. Attention is 100 minus the Herfindahl index of their section shares.
func Competitive(s *aggregate.State) *report.Competitive {
	out := &report.Competitive{Ranking: make([]report.BotRanking, 0, len(s.Bots))}
	if s.TotalRequests == 0 {
		return out
	}

	for name, b := range s.Bots {
		share := percent(b.Requests, s.TotalRequests)
		sections := len(b.Sections)

		concentration := 0.0
		sectionTotal := b.Sections.Total()
		for _, c := range b.Sections {
			p := float64(c) / float64(sectionTotal)
			concentration += p * p
		}
		attention := 0.0
		if sectionTotal > 0 {
			attention = (1 - concentration) * 100
		}

		out.Ranking = append(out.Ranking, report.BotRanking{
			Bot:                   name,
			Requests:              b.Requests,
			Share:                 round1(share),
			SectionsCrawled:       sections,
			AggressionScore:       round2(share * (1 + float64(sections)/10)),
			AttentionDistribution: round1(attention),
		})
	}

	slices.SortFunc(out.Ranking, func(a, b report.BotRanking) int {
		if c := cmp.Compare(b.AggressionScore, a.AggressionScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Bot, b.Bot)
	})
	if len(out.Ranking) > 0 {
		out.MostAggressive = out.Ranking[0].Bot
	}

	return out
}

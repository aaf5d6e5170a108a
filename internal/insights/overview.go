// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package insights

import (
	"cmp"
	"slices"

	"botlynx/internal/aggregate"
	"botlynx/internal/classify"
	"botlynx/internal/report"
)

func HumanVsBot(s *aggregate.State) *report.HumanVsBot {
	return &report.HumanVsBot{
		TotalRequests:   s.AllRequests,
		BotRequests:     s.TotalRequests,
		HumanRequests:   s.HumanRequests,
		BotPercentage:   round1(percent(s.TotalRequests, s.AllRequests)),
		HumanPercentage: round1(percent(s.HumanRequests, s.AllRequests)),
	}
}

func StatusBreakdown(s *aggregate.State) *report.StatusBreakdown {
	share := func(b classify.StatusBucket) report.CountShare {
		return report.CountShare{
			Count:      s.StatusBuckets[b],
			Percentage: round1(percent(s.StatusBuckets[b], s.TotalRequests)),
		}
	}
	return &report.StatusBreakdown{
		Success:     share(classify.Status2xx),
		Redirect:    share(classify.Status3xx),
		ClientError: share(classify.Status4xx),
		ServerError: share(classify.Status5xx),
	}
}

func Bandwidth(s *aggregate.State) *report.Bandwidth {
	out := &report.Bandwidth{
		TotalBytes:     s.TotalBytes,
		TotalFormatted: report.FormatBytes(s.TotalBytes),
		ByBot:          make([]report.BotBandwidth, 0, len(s.Bots)),
	}
	for name, b := range s.Bots {
		out.ByBot = append(out.ByBot, report.BotBandwidth{
			Type:      name,
			Bytes:     b.Bytes,
			Formatted: report.FormatBytes(b.Bytes),
		})
	}
	slices.SortFunc(out.ByBot, func(a, b report.BotBandwidth) int {
		if c := cmp.Compare(b.Bytes, a.Bytes); c != 0 {
			return c
		}
		return cmp.Compare(a.Type, b.Type)
	})
	return out
}

// ContentTypes lists the non-empty content type buckets, largest first.
func ContentTypes(s *aggregate.State) []report.ContentTypeShare {
	total := 0
	for _, c := range s.ContentTypes {
		total += c
	}

	out := make([]report.ContentTypeShare, 0, classify.NumContentTypes)
	for t := classify.ContentType(0); t < classify.NumContentTypes; t++ {
		c := s.ContentTypes[t]
		if c == 0 {
			continue
		}
		out = append(out, report.ContentTypeShare{
			Type:       t.String(),
			Count:      c,
			Percentage: round1(percent(c, total)),
		})
	}
	slices.SortStableFunc(out, func(a, b report.ContentTypeShare) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}

func RequestMethods(s *aggregate.State) []report.MethodShare {
	out := make([]report.MethodShare, 0, len(s.Methods))
	for _, e := range s.Methods.MostCommon(0) {
		out = append(out, report.MethodShare{
			Method:     e.Key,
			Count:      e.Count,
			Percentage: round1(percent(e.Count, s.TotalRequests)),
		})
	}
	return out
}

const maxCountries = 20

// Geographic lists the top countries of bot requests. Requests without a resolved
// country are counted as unknown.
func Geographic(s *aggregate.State) *report.Geographic {
	out := &report.Geographic{
		Countries: make([]report.CountryShare, 0, maxCountries),
		Unknown:   s.TotalRequests - s.Countries.Total(),
	}
	for _, e := range s.Countries.MostCommon(maxCountries) {
		out.Countries = append(out.Countries, report.CountryShare{
			Country:    e.Key,
			Count:      e.Count,
			Percentage: round1(percent(e.Count, s.TotalRequests)),
		})
	}
	return out
}

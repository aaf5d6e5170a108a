package cli

import (
	"fmt"
	"strconv"

	"botlynx/internal/report"

	"github.com/pterm/pterm"
)

func healthStyle(status string) string {
	switch status {
	case "good":
		return pterm.Green(status)
	case "warning":
		return pterm.Yellow(status)
	default:
		return pterm.Red(status)
	}
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func renderTable(data pterm.TableData) {
	if len(data) < 2 {
		return
	}
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
}

func urlTable(rows []report.URLCount) pterm.TableData {
	data := pterm.TableData{{"URL", "Requests"}}
	for _, u := range rows {
		data = append(data, []string{u.URL, strconv.Itoa(u.Count)})
	}
	return data
}

// printSummary renders the human readable report.
func printSummary(r *report.Report) {
	pterm.DefaultSection.Println("Overview")
	pterm.Printfln("Period:        %s to %s", r.DateRange.Start, r.DateRange.End)
	pterm.Printfln("Bot requests:  %d", r.TotalRequests)
	pterm.Printfln("Success rate:  %s", pct(r.OverallSuccessRate))
	pterm.Printfln("Lines read:    %d (%d rejected, %d human)", r.Scan.LinesRead, r.Scan.LinesRejected, r.Scan.HumanRequests)
	if r.HumanVsBot != nil {
		pterm.Printfln("Bot share:     %s of parsed traffic", pct(r.HumanVsBot.BotPercentage))
	}
	if r.Bandwidth != nil {
		pterm.Printfln("Bandwidth:     %s", r.Bandwidth.TotalFormatted)
	}

	pterm.DefaultSection.Println("Bots")
	bots := pterm.TableData{{"Bot", "Category", "Requests", "Share", "Success", "Health"}}
	for _, b := range r.BotStatistics {
		bots = append(bots, []string{
			b.Type, b.Category, strconv.Itoa(b.Count), pct(b.Percentage), pct(b.SuccessRate), healthStyle(b.HealthStatus),
		})
	}
	renderTable(bots)

	pterm.DefaultSection.Println("Top URLs")
	renderTable(urlTable(r.TopURLs))

	if len(r.TopFailedURLs) > 0 {
		pterm.DefaultSection.Println("Top failed URLs")
		renderTable(urlTable(r.TopFailedURLs))
	}

	if ta := r.TimeAnalysis; ta != nil && ta.PeakHour != "" {
		pterm.DefaultSection.Println("Time patterns")
		pterm.Printfln("Peak hour:     %s (%d requests)", ta.PeakHour, ta.PeakHourCount)
		pterm.Printfln("Quiet hour:    %s (%d requests)", ta.QuietHour, ta.QuietHourCount)
		pterm.Printfln("Busiest day:   %s (%d requests)", ta.BusiestDay, ta.BusiestDayCount)
	}

	if a := r.Anomalies; a != nil && a.HasAnomalies {
		pterm.DefaultSection.Println("Anomalies")
		data := pterm.TableData{{"Date", "Requests", "Expected", "Deviation", "Severity"}}
		for _, an := range a.Anomalies {
			data = append(data, []string{
				an.Date, strconv.Itoa(an.Count), strconv.Itoa(an.Expected), pct(an.DeviationPercentage), an.Severity,
			})
		}
		renderTable(data)
	}

	if s := r.SEOHealth; s != nil {
		pterm.DefaultSection.Println("SEO health")
		pterm.Printfln("Score:         %.1f (%s)", s.Score, s.Status)
		for _, issue := range s.Issues {
			pterm.Warning.Println(issue)
		}
	}

	if g := r.Geographic; g != nil && len(g.Countries) > 0 {
		pterm.DefaultSection.Println("Countries")
		data := pterm.TableData{{"Country", "Requests", "Share"}}
		for _, c := range g.Countries {
			data = append(data, []string{c.Country, strconv.Itoa(c.Count), pct(c.Percentage)})
		}
		renderTable(data)
	}

	if len(r.Recommendations) > 0 {
		pterm.DefaultSection.Println("Recommendations")
		for _, rec := range r.Recommendations {
			printer := pterm.Info
			switch rec.Severity {
			case "HIGH":
				printer = pterm.Error
			case "MEDIUM":
				printer = pterm.Warning
			}
			printer.Printfln("%s: %s", rec.Title, rec.Action)
		}
	}
}

package report

import (
	"errors"
	"fmt"
)

// NoDataMessage is the text carried by the "no data" result.
const NoDataMessage = "No AI bot requests found"

// ErrNoData is returned instead of a report when a scan found no bot requests.
var ErrNoData = errors.New(NoDataMessage)

// NoData is the JSON body used wherever a report would have been written.
type NoData struct {
	Error string `json:"error"`
}

func NewNoData() NoData {
	return NoData{Error: NoDataMessage}
}

// Report is the complete result of one analysis. Optional sections are nil when their
// feature toggle is off.
type Report struct {
	DateRange          DateRange              `json:"date_range"`
	TotalRequests      int                    `json:"total_requests"`
	OverallSuccessRate float64                `json:"overall_success_rate"`
	BotStatistics      []BotStat              `json:"bot_statistics"`
	TopURLs            []URLCount             `json:"top_urls"`
	TopFailedURLs      []URLCount             `json:"top_failed_urls"`
	FailureTypes       []TypeCount            `json:"failure_types"`
	TimeAnalysis       *TimeAnalysis          `json:"time_analysis"`
	BehaviorAnalysis   map[string]BotBehavior `json:"behavior_analysis"`
	FailureAnalysis    *FailureAnalysis       `json:"failure_analysis"`
	Recommendations    []Recommendation       `json:"recommendations"`
	Comparisons        *Comparisons           `json:"comparisons"`

	HumanVsBot      *HumanVsBot        `json:"human_vs_bot"`
	StatusBreakdown *StatusBreakdown   `json:"status_breakdown"`
	Bandwidth       *Bandwidth         `json:"bandwidth"`
	ContentTypes    []ContentTypeShare `json:"content_types"`
	RequestMethods  []MethodShare      `json:"request_methods"`

	ReferrerAnalysis *ReferrerAnalysis            `json:"referrer_analysis,omitempty"`
	SiteStructure    *SiteStructure               `json:"site_structure,omitempty"`
	CrawlEfficiency  *CrawlEfficiency             `json:"crawl_efficiency,omitempty"`
	Compliance       *Compliance                  `json:"compliance,omitempty"`
	QueryParams      *QueryParams                 `json:"query_params,omitempty"`
	Anomalies        *Anomalies                   `json:"anomalies,omitempty"`
	BotVersions      map[string]BotVersionSummary `json:"bot_versions,omitempty"`
	SEOHealth        *SEOHealth                   `json:"seo_health,omitempty"`
	Competitive      *Competitive                 `json:"competitive,omitempty"`
	Geographic       *Geographic                  `json:"geographic,omitempty"`

	Scan Scan `json:"scan"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type BotStat struct {
	Type         string  `json:"type"`
	Count        int     `json:"count"`
	Percentage   float64 `json:"percentage"`
	SuccessRate  float64 `json:"success_rate"`
	Category     string  `json:"category"`
	Color        string  `json:"color"`
	HealthStatus string  `json:"health_status"`
}

type URLCount struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Scan holds line-level counters. They describe the input only and never feed an
// analytical section.
type Scan struct {
	LinesRead     int `json:"lines_read"`
	LinesRejected int `json:"lines_rejected"`
	HumanRequests int `json:"human_requests"`
}

type TimeAnalysis struct {
	PeakHour           string            `json:"peak_hour,omitempty"`
	PeakHourCount      int               `json:"peak_hour_count"`
	QuietHour          string            `json:"quiet_hour,omitempty"`
	QuietHourCount     int               `json:"quiet_hour_count"`
	BusiestDay         string            `json:"busiest_day,omitempty"`
	BusiestDayCount    int               `json:"busiest_day_count"`
	BotPeakTimes       map[string]string `json:"bot_peak_times"`
	HourlyDistribution []HourCount       `json:"hourly_distribution"`
	DailyDistribution  []DayCount        `json:"daily_distribution"`
}

type HourCount struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type BotBehavior struct {
	AvgPagesPerSession float64    `json:"avg_pages_per_session"`
	TotalSessions      int        `json:"total_sessions"`
	PreferredURLs      []URLCount `json:"preferred_urls"`
	EfficiencyScore    float64    `json:"efficiency_score"`
}

type FailureAnalysis struct {
	RootCauses         []RootCause      `json:"root_causes"`
	URLFailureClusters []FailureCluster `json:"url_failure_clusters"`
	FailureImpact      []FailureImpact  `json:"failure_impact"`
}

type RootCause struct {
	Issue       string `json:"issue"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

type FailureCluster struct {
	URL           string `json:"url"`
	TotalFailures int    `json:"total_failures"`
	PrimaryError  string `json:"primary_error"`
	ErrorCount    int    `json:"error_count"`
}

type FailureImpact struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Severity   string  `json:"severity"`
}

type Recommendation struct {
	Priority    int    `json:"priority"`
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Impact      string `json:"impact"`
}

type Comparisons struct {
	BotPerformance *BotComparison `json:"bot_performance,omitempty"`
	URLPerformance *URLComparison `json:"url_performance,omitempty"`
}

type BotRate struct {
	Name        string  `json:"name"`
	SuccessRate float64 `json:"success_rate"`
}

type BotComparison struct {
	Best       BotRate `json:"best"`
	Worst      BotRate `json:"worst"`
	Difference float64 `json:"difference"`
}

type URLRate struct {
	URL         string  `json:"url"`
	SuccessRate float64 `json:"success_rate"`
	Requests    int     `json:"requests"`
}

type URLComparison struct {
	Best       URLRate `json:"best"`
	Worst      URLRate `json:"worst"`
	Difference float64 `json:"difference"`
}

type HumanVsBot struct {
	TotalRequests   int     `json:"total_requests"`
	BotRequests     int     `json:"bot_requests"`
	HumanRequests   int     `json:"human_requests"`
	BotPercentage   float64 `json:"bot_percentage"`
	HumanPercentage float64 `json:"human_percentage"`
}

type CountShare struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type StatusBreakdown struct {
	Success     CountShare `json:"2xx"`
	Redirect    CountShare `json:"3xx"`
	ClientError CountShare `json:"4xx"`
	ServerError CountShare `json:"5xx"`
}

type Bandwidth struct {
	TotalBytes     int64          `json:"total_bytes"`
	TotalFormatted string         `json:"total_formatted"`
	ByBot          []BotBandwidth `json:"by_bot"`
}

type BotBandwidth struct {
	Type      string `json:"type"`
	Bytes     int64  `json:"bytes"`
	Formatted string `json:"formatted"`
}

type ContentTypeShare struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type MethodShare struct {
	Method     string  `json:"method"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// FormatBytes renders a byte count with binary units and two decimals.
func FormatBytes(n int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.2f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

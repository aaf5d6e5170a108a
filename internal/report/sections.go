package report

type ReferrerAnalysis struct {
	SourceBreakdown []SourceShare                 `json:"source_breakdown"`
	TopDomains      []DomainCount                 `json:"top_domains"`
	ByBot           map[string]map[string]float64 `json:"by_bot"`
}

type SourceShare struct {
	Source     string  `json:"source"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

type SiteStructure struct {
	SectionBreakdown  []SectionShare            `json:"section_breakdown"`
	DepthDistribution []DepthShare              `json:"depth_distribution"`
	ByBot             map[string][]SectionCount `json:"by_bot"`
	AvgDepth          float64                   `json:"avg_depth"`
}

type SectionShare struct {
	Section    string  `json:"section"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type SectionCount struct {
	Section string `json:"section"`
	Count   int    `json:"count"`
}

type DepthShare struct {
	Depth      int     `json:"depth"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type CrawlEfficiency struct {
	ValuableRequests   int      `json:"valuable_requests"`
	WasteRequests      int      `json:"waste_requests"`
	ValuablePercentage float64  `json:"valuable_percentage"`
	WastePercentage    float64  `json:"waste_percentage"`
	EfficiencyScore    float64  `json:"efficiency_score"`
	WasteStatus        string   `json:"waste_status"`
	Recommendations    []string `json:"recommendations"`
}

type Compliance struct {
	Bots           []BotCompliance `json:"bots"`
	CompliantBots  int             `json:"compliant_bots"`
	TotalBots      int             `json:"total_bots"`
	ComplianceRate float64         `json:"compliance_rate"`
}

type BotCompliance struct {
	Bot             string `json:"bot"`
	RobotsTxtAccess int    `json:"robots_txt_accesses"`
	SitemapAccess   int    `json:"sitemap_accesses"`
	Compliant       bool   `json:"compliant"`
}

type QueryParams struct {
	TotalParamRequests int          `json:"total_param_requests"`
	ParamPercentage    float64      `json:"param_percentage"`
	TopParams          []ParamCount `json:"top_params"`
	TopURLs            []URLCount   `json:"top_urls"`
	PotentialTraps     []CrawlTrap  `json:"potential_traps"`
	TrapWarning        bool         `json:"trap_warning"`
}

type ParamCount struct {
	Param string `json:"param"`
	Count int    `json:"count"`
}

type CrawlTrap struct {
	Param  string `json:"param"`
	Count  int    `json:"count"`
	Reason string `json:"reason"`
}

type Anomalies struct {
	HasAnomalies bool      `json:"has_anomalies"`
	DaysAnalyzed int       `json:"days_analyzed"`
	MeanDaily    float64   `json:"mean_daily"`
	StdDev       float64   `json:"std_dev"`
	Threshold    float64   `json:"threshold"`
	Anomalies    []Anomaly `json:"anomalies"`
	Message      string    `json:"message,omitempty"`
}

type Anomaly struct {
	Date                string  `json:"date"`
	Count               int     `json:"count"`
	Expected            int     `json:"expected"`
	DeviationPercentage float64 `json:"deviation_percentage"`
	Severity            string  `json:"severity"`
}

type BotVersionSummary struct {
	Versions       []VersionShare `json:"versions"`
	PrimaryVersion string         `json:"primary_version"`
	UniqueVersions int            `json:"unique_versions"`
}

type VersionShare struct {
	Version    string  `json:"version"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type SEOHealth struct {
	Score             float64  `json:"score"`
	Status            string   `json:"status"`
	IndexablePages    int      `json:"indexable_pages"`
	NonIndexablePages int      `json:"non_indexable_pages"`
	IndexableRate     float64  `json:"indexable_rate"`
	ClientErrorRate   float64  `json:"client_error_rate"`
	ServerErrorRate   float64  `json:"server_error_rate"`
	Issues            []string `json:"issues"`
}

type Competitive struct {
	Ranking        []BotRanking `json:"ranking"`
	MostAggressive string       `json:"most_aggressive,omitempty"`
}

type BotRanking struct {
	Bot                   string  `json:"bot"`
	Requests              int     `json:"requests"`
	Share                 float64 `json:"share"`
	SectionsCrawled       int     `json:"sections_crawled"`
	AggressionScore       float64 `json:"aggression_score"`
	AttentionDistribution float64 `json:"attention_distribution"`
}

type Geographic struct {
	Countries []CountryShare `json:"countries"`
	Unknown   int            `json:"unknown"`
}

type CountryShare struct {
	Country    string  `json:"country"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

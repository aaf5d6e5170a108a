package aggregate

import (
	"fmt"

	"botlynx/internal/classify"
	"botlynx/internal/counter"
	parsers "botlynx/internal/parser"
	"botlynx/internal/parser/useragent"
)

// Hit is one bot-attributed request ready to be recorded.
type Hit struct {
	Record  *parsers.Record
	Bot     string
	Success bool   // decided by the caller's success policy
	Country string // ISO code, empty when enrichment is off or the IP is unknown
}

type step struct {
	name string
	fn   func(s *State, h *Hit)
}

// Steps run in this order for every bot request.
var steps = []step{
	{"date_range", recordDateRange},
	{"time", recordTime},
	{"session", recordSession},
	{"totals", recordTotals},
	{"status_bucket", recordStatusBucket},
	{"method", recordMethod},
	{"bytes", recordBytes},
	{"content_type", recordContentType},
	{"referrer", recordReferrer},
	{"section", recordSection},
	{"depth", recordDepth},
	{"compliance", recordCompliance},
	{"query_params", recordQueryParams},
	{"version", recordVersion},
	{"day", recordDay},
	{"indexability", recordIndexability},
	{"outcome", recordOutcome},
	{"country", recordCountry},
}

// StepError describes a recording step that panicked. The remaining steps still ran.
type StepError struct {
	Step  string
	Value any
}

func (e *StepError) Error() string {
	return fmt.Sprintf("aggregate step %s failed: %v", e.Step, e.Value)
}

// Record runs every recording step for one bot request. A step that panics is skipped
// and reported; it never prevents the other steps from running.
func (s *State) Record(h *Hit) []error {
	var errs []error
	for _, st := range steps {
		if err := s.runStep(st, h); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (s *State) runStep(st step, h *Hit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.StepPanics++
			err = &StepError{Step: st.name, Value: r}
		}
	}()
	st.fn(s, h)
	return nil
}

// RecordHuman counts a request that no bot pattern matched.
func (s *State) RecordHuman() {
	s.AllRequests++
	s.HumanRequests++
}

// RecordLine counts a line read from the input; rejected lines are also counted as such.
func (s *State) RecordLine(rejected bool) {
	s.LinesRead++
	if rejected {
		s.LinesRejected++
	}
}

func recordDateRange(s *State, h *Hit) {
	ts := h.Record.Timestamp
	if s.FirstSeen.IsZero() || ts.Before(s.FirstSeen) {
		s.FirstSeen = ts
	}
	if s.LastSeen.IsZero() || ts.After(s.LastSeen) {
		s.LastSeen = ts
	}
}

func recordTime(s *State, h *Hit) {
	ts := h.Record.Timestamp
	s.HourOrder = tally(s.Hourly[:], s.HourOrder, ts.Hour())
	s.WeekdayOrder = tally(s.Weekdays[:], s.WeekdayOrder, int(ts.Weekday()))
	b := s.bot(h.Bot)
	b.HourOrder = tally(b.Hourly[:], b.HourOrder, ts.Hour())
}

func recordSession(s *State, h *Hit) {
	r := h.Record
	s.pending[r.ClientIP] = append(s.pending[r.ClientIP], SessionRequest{
		Timestamp: r.Timestamp,
		URL:       r.Path,
		Bot:       h.Bot,
		Status:    r.Status,
	})
	s.bot(h.Bot).URLs.Inc(r.Path)
}

func recordTotals(s *State, h *Hit) {
	r := h.Record
	s.AllRequests++
	s.TotalRequests++
	b := s.bot(h.Bot)
	b.Requests++
	s.URLs.Inc(r.Path)
	s.Statuses.Inc(r.Status)
	b.Statuses.Inc(r.Status)
}

func recordStatusBucket(s *State, h *Hit) {
	if bucket, ok := classify.BucketOf(h.Record.Status); ok {
		s.StatusBuckets[bucket]++
	}
}

func recordMethod(s *State, h *Hit) {
	s.Methods.Inc(h.Record.Method)
}

func recordBytes(s *State, h *Hit) {
	size := h.Record.Size
	if size < 0 {
		return
	}
	s.TotalBytes += size
	s.bot(h.Bot).Bytes += size
}

func recordContentType(s *State, h *Hit) {
	s.ContentTypes[classify.ContentTypeOf(h.Record.Path)]++
}

func recordReferrer(s *State, h *Hit) {
	source := classify.ReferrerSourceOf(h.Record.Referrer)
	s.ReferrerSources[source]++
	s.bot(h.Bot).Referrers[source]++
	if source == classify.External {
		if domain := classify.Domain(h.Record.Referrer); domain != "" {
			s.Domains.Inc(domain)
		}
	}
}

func recordSection(s *State, h *Hit) {
	section := classify.Section(h.Record.Path)
	s.Sections.Inc(section)
	s.bot(h.Bot).Sections.Inc(section)
}

func recordDepth(s *State, h *Hit) {
	s.Depths[classify.Depth(h.Record.Path)]++
}

func recordCompliance(s *State, h *Hit) {
	b := s.bot(h.Bot)
	if classify.IsRobots(h.Record.Path) {
		b.RobotsTxt++
	}
	if classify.IsSitemap(h.Record.Path) {
		b.Sitemap++
	}
}

func recordQueryParams(s *State, h *Hit) {
	base, names, ok := classify.QueryParams(h.Record.Path)
	if !ok {
		return
	}
	s.ParamRequests++
	for _, name := range names {
		s.Params.Inc(name)
	}
	s.ParamURLs.Inc(base)
}

func recordVersion(s *State, h *Hit) {
	s.bot(h.Bot).Versions.Inc(useragent.BotVersion(h.Record.UserAgent))
}

func recordDay(s *State, h *Hit) {
	s.Days.Inc(h.Record.Timestamp.Format("2006-01-02"))
}

func recordIndexability(s *State, h *Hit) {
	if bucket, ok := classify.BucketOf(h.Record.Status); ok && bucket == classify.Status2xx {
		s.Indexable++
		return
	}
	s.NonIndexable++
}

func recordOutcome(s *State, h *Hit) {
	r := h.Record
	b := s.bot(h.Bot)
	if h.Success {
		b.Successes++
		return
	}

	category := classify.FailureCategory(r.Status)
	b.Failures++
	s.FailedURLs.Inc(r.Path)
	s.Failures = append(s.Failures, FailureEvent{
		Timestamp: r.Timestamp,
		URL:       r.Path,
		Status:    r.Status,
		Bot:       h.Bot,
		Category:  category,
		Method:    r.Method,
	})

	types, ok := s.URLFailureTypes[r.Path]
	if !ok {
		types = counter.New[string]()
		s.URLFailureTypes[r.Path] = types
	}
	types.Inc(category)
	b.FailureTypes.Inc(category)
}

func recordCountry(s *State, h *Hit) {
	if h.Country != "" {
		s.Countries.Inc(h.Country)
	}
}

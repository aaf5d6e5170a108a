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

// Package aggregate holds the counters filled by one linear scan of an access log.
package aggregate

import (
	"cmp"
	"slices"
	"sort"
	"time"

	"botlynx/internal/classify"
	"botlynx/internal/counter"
)

// SessionRequest is one bot request remembered for session building.
type SessionRequest struct {
	Timestamp time.Time
	URL       string
	Bot       string
	Status    int
}

// Session is the time-ordered run of requests from one IP with at least two requests.
type Session []SessionRequest

// FailureEvent is one unsuccessful bot request.
type FailureEvent struct {
	Timestamp time.Time
	URL       string
	Status    int
	Bot       string
	Category  string
	Method    string
}

// BotCounters are the per-bot tallies.
type BotCounters struct {
	Requests  int
	Successes int
	Failures  int
	Bytes     int64

	Hourly       [24]int
	HourOrder    []int // hours in the order they first received traffic
	Referrers    [classify.NumReferrerSources]int
	RobotsTxt    int
	Sitemap      int
	Statuses     counter.Counter[int]
	URLs         counter.Counter[string]
	FailureTypes counter.Counter[string]
	Sections     counter.Counter[string]
	Versions     counter.Counter[string]

	Sessions []Session
}

func newBotCounters() *BotCounters {
	return &BotCounters{
		Statuses:     counter.New[int](),
		URLs:         counter.New[string](),
		FailureTypes: counter.New[string](),
		Sections:     counter.New[string](),
		Versions:     counter.New[string](),
	}
}

// SuccessRate returns the percentage of successful requests, 0 with no requests.
func (b *BotCounters) SuccessRate() float64 {
	if b.Requests == 0 {
		return 0
	}
	return float64(b.Successes) / float64(b.Requests) * 100
}

// State is owned by a single scan. Fixed-dimension tallies are arrays indexed by the
// classify enums; open-ended keys (URLs, domains, parameters, IPs) live in maps that
// grow with the input.
type State struct {
	// Line-level observability; never used by the analytical sections.
	LinesRead     int
	LinesRejected int
	AllRequests   int
	HumanRequests int
	StepPanics    int

	TotalRequests int // bot requests
	TotalBytes    int64
	FirstSeen     time.Time
	LastSeen      time.Time

	Hourly          [24]int
	Weekdays        [7]int // indexed by time.Weekday
	HourOrder       []int  // first-seen order of hours, ties in the time section follow it
	WeekdayOrder    []int  // first-seen order of time.Weekday values
	StatusBuckets   [classify.NumStatusBuckets]int
	ContentTypes    [classify.NumContentTypes]int
	ReferrerSources [classify.NumReferrerSources]int
	Depths          [classify.MaxDepth + 1]int
	Indexable       int
	NonIndexable    int
	ParamRequests   int

	URLs            counter.Counter[string]
	FailedURLs      counter.Counter[string]
	Statuses        counter.Counter[int]
	Methods         counter.Counter[string]
	Sections        counter.Counter[string]
	Domains         counter.Counter[string]
	Params          counter.Counter[string]
	ParamURLs       counter.Counter[string]
	Days            counter.Counter[string]
	Countries       counter.Counter[string]
	URLFailureTypes map[string]counter.Counter[string]

	Bots     map[string]*BotCounters
	Failures []FailureEvent

	pending   map[string][]SessionRequest
	finalized bool
}

// NewState returns an empty, fully initialized state.
func NewState() *State {
	return &State{
		URLs:            counter.New[string](),
		FailedURLs:      counter.New[string](),
		Statuses:        counter.New[int](),
		Methods:         counter.New[string](),
		Sections:        counter.New[string](),
		Domains:         counter.New[string](),
		Params:          counter.New[string](),
		ParamURLs:       counter.New[string](),
		Days:            counter.New[string](),
		Countries:       counter.New[string](),
		URLFailureTypes: make(map[string]counter.Counter[string]),
		Bots:            make(map[string]*BotCounters),
		pending:         make(map[string][]SessionRequest),
	}
}

func (s *State) bot(name string) *BotCounters {
	b, ok := s.Bots[name]
	if !ok {
		b = newBotCounters()
		s.Bots[name] = b
	}
	return b
}

// BotNames returns the bots seen, by descending request count then name.
func (s *State) BotNames() []string {
	names := make([]string, 0, len(s.Bots))
	for name := range s.Bots {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(s.Bots[b].Requests, s.Bots[a].Requests); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return names
}

// Successes returns the number of successful bot requests.
func (s *State) Successes() int {
	total := 0
	for _, b := range s.Bots {
		total += b.Successes
	}
	return total
}

// Empty reports whether the scan found no bot requests.
func (s *State) Empty() bool {
	return s.TotalRequests == 0
}

// PendingIPs returns the number of distinct IPs awaiting session building.
func (s *State) PendingIPs() int {
	return len(s.pending)
}

// Finalize turns the per-IP request lists into sessions. IPs seen once are dropped. Each
// session is sorted by timestamp and filed under the bot of its first request. Calling
// Finalize twice is a no-op.
func (s *State) Finalize() {
	if s.finalized {
		return
	}
	s.finalized = true

	ips := make([]string, 0, len(s.pending))
	for ip, reqs := range s.pending {
		if len(reqs) > 1 {
			ips = append(ips, ip)
		}
	}
	sort.Strings(ips)

	for _, ip := range ips {
		reqs := s.pending[ip]
		sort.SliceStable(reqs, func(i, j int) bool {
			return reqs[i].Timestamp.Before(reqs[j].Timestamp)
		})
		b := s.bot(reqs[0].Bot)
		b.Sessions = append(b.Sessions, Session(reqs))
	}

	s.pending = make(map[string][]SessionRequest)
}

// Merge folds other into s. Both states are finalized first so sessions stay scoped to
// the file they came from.
func (s *State) Merge(other *State) {
	s.Finalize()
	other.Finalize()

	s.LinesRead += other.LinesRead
	s.LinesRejected += other.LinesRejected
	s.AllRequests += other.AllRequests
	s.HumanRequests += other.HumanRequests
	s.StepPanics += other.StepPanics
	s.TotalRequests += other.TotalRequests
	s.TotalBytes += other.TotalBytes
	s.Indexable += other.Indexable
	s.NonIndexable += other.NonIndexable
	s.ParamRequests += other.ParamRequests

	if !other.FirstSeen.IsZero() && (s.FirstSeen.IsZero() || other.FirstSeen.Before(s.FirstSeen)) {
		s.FirstSeen = other.FirstSeen
	}
	if other.LastSeen.After(s.LastSeen) {
		s.LastSeen = other.LastSeen
	}

	addArray(s.Hourly[:], other.Hourly[:])
	addArray(s.Weekdays[:], other.Weekdays[:])
	s.HourOrder = mergeOrder(s.HourOrder, other.HourOrder)
	s.WeekdayOrder = mergeOrder(s.WeekdayOrder, other.WeekdayOrder)
	addArray(s.StatusBuckets[:], other.StatusBuckets[:])
	addArray(s.ContentTypes[:], other.ContentTypes[:])
	addArray(s.ReferrerSources[:], other.ReferrerSources[:])
	addArray(s.Depths[:], other.Depths[:])

	s.URLs.Merge(other.URLs)
	s.FailedURLs.Merge(other.FailedURLs)
	s.Statuses.Merge(other.Statuses)
	s.Methods.Merge(other.Methods)
	s.Sections.Merge(other.Sections)
	s.Domains.Merge(other.Domains)
	s.Params.Merge(other.Params)
	s.ParamURLs.Merge(other.ParamURLs)
	s.Days.Merge(other.Days)
	s.Countries.Merge(other.Countries)

	for url, types := range other.URLFailureTypes {
		mine, ok := s.URLFailureTypes[url]
		if !ok {
			mine = counter.New[string]()
			s.URLFailureTypes[url] = mine
		}
		mine.Merge(types)
	}

	for name, ob := range other.Bots {
		b := s.bot(name)
		b.Requests += ob.Requests
		b.Successes += ob.Successes
		b.Failures += ob.Failures
		b.Bytes += ob.Bytes
		b.RobotsTxt += ob.RobotsTxt
		b.Sitemap += ob.Sitemap
		addArray(b.Hourly[:], ob.Hourly[:])
		b.HourOrder = mergeOrder(b.HourOrder, ob.HourOrder)
		addArray(b.Referrers[:], ob.Referrers[:])
		b.Statuses.Merge(ob.Statuses)
		b.URLs.Merge(ob.URLs)
		b.FailureTypes.Merge(ob.FailureTypes)
		b.Sections.Merge(ob.Sections)
		b.Versions.Merge(ob.Versions)
		b.Sessions = append(b.Sessions, ob.Sessions...)
	}

	s.Failures = append(s.Failures, other.Failures...)
	sort.SliceStable(s.Failures, func(i, j int) bool {
		return s.Failures[i].Timestamp.Before(s.Failures[j].Timestamp)
	})
}

// tally increments counts[idx] and appends idx to order on its first hit.
func tally(counts []int, order []int, idx int) []int {
	if counts[idx] == 0 {
		order = append(order, idx)
	}
	counts[idx]++
	return order
}

// mergeOrder appends the entries of src that dst has not seen yet, keeping dst first.
func mergeOrder(dst, src []int) []int {
	for _, idx := range src {
		if !slices.Contains(dst, idx) {
			dst = append(dst, idx)
		}
	}
	return dst
}

func addArray(dst, src []int) {
	for i := range dst {
		dst[i] += src[i]
	}
}

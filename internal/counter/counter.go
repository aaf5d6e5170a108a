// Package counter provides the keyed tallies used by the aggregation state.
package counter

import (
	"cmp"
	"slices"
)

// Counter tallies occurrences per key. The zero value is not usable; call New.
type Counter[K cmp.Ordered] map[K]int

type Entry[K cmp.Ordered] struct {
	Key   K
	Count int
}

func New[K cmp.Ordered]() Counter[K] {
	return make(Counter[K])
}

func (c Counter[K]) Inc(key K) {
	c[key]++
}

func (c Counter[K]) Add(key K, n int) {
	c[key] += n
}

// Total returns the sum of all counts.
func (c Counter[K]) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// MostCommon returns up to n entries by descending count, ties broken by ascending key.
// n <= 0 returns every entry.
func (c Counter[K]) MostCommon(n int) []Entry[K] {
	entries := make([]Entry[K], 0, len(c))
	for k, v := range c {
		entries = append(entries, Entry[K]{Key: k, Count: v})
	}
	slices.SortFunc(entries, func(a, b Entry[K]) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Max returns the entry with the highest count. ok is false for an empty counter.
func (c Counter[K]) Max() (entry Entry[K], ok bool) {
	top := c.MostCommon(1)
	if len(top) == 0 {
		return entry, false
	}
	return top[0], true
}

// Merge adds every count from other into c.
func (c Counter[K]) Merge(other Counter[K]) {
	for k, v := range other {
		c[k] += v
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stats

import "sort"

// -----------------------------------------------------------------------------
// Frequency Counter
// -----------------------------------------------------------------------------

// Frequency is one key of a Counter with its occurrence count.
type Frequency struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Counter counts occurrences of string keys and remembers the order in which
// each key was first seen.
//
// Description:
//
//	The first-seen order is what makes rankings deterministic: Ranked sorts
//	by count and falls back to first-seen order on ties, so two runs over
//	the same input always report the same "most detected" key.
//
// The zero value is ready to use.
//
// Thread Safety: Not safe for concurrent use.
type Counter struct {
	counts map[string]int
	order  []string
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{
		counts: make(map[string]int),
		order:  make([]string, 0),
	}
}

// Add counts one occurrence of key.
func (c *Counter) Add(key string) {
	c.AddN(key, 1)
}

// AddN counts n occurrences of key. Non-positive n is ignored.
func (c *Counter) AddN(key string, n int) {
	if n <= 0 {
		return
	}
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key] += n
}

// Merge adds every count of o into c. Keys new to c are appended in o's
// first-seen order.
func (c *Counter) Merge(o *Counter) {
	if o == nil {
		return
	}
	for _, key := range o.order {
		c.AddN(key, o.counts[key])
	}
}

// Get returns the count for key, 0 when unseen.
func (c *Counter) Get(key string) int {
	return c.counts[key]
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int {
	return len(c.order)
}

// Total returns the sum of all counts.
func (c *Counter) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Keys returns the distinct keys in first-seen order. The slice is a copy.
func (c *Counter) Keys() []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

// Map returns a copy of the counts.
func (c *Counter) Map() map[string]int {
	m := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		m[k] = v
	}
	return m
}

// Ranked returns all keys ordered by descending count, ties broken by
// first-seen order.
func (c *Counter) Ranked() []Frequency {
	ranked := make([]Frequency, 0, len(c.order))
	for _, key := range c.order {
		ranked = append(ranked, Frequency{Key: key, Count: c.counts[key]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}

// Most returns the highest-count key. ok is false for an empty counter.
func (c *Counter) Most() (Frequency, bool) {
	ranked := c.Ranked()
	if len(ranked) == 0 {
		return Frequency{}, false
	}
	return ranked[0], true
}

// Least returns the lowest-count key, ties broken by first-seen order.
// ok is false for an empty counter.
func (c *Counter) Least() (Frequency, bool) {
	if len(c.order) == 0 {
		return Frequency{}, false
	}
	least := Frequency{Key: c.order[0], Count: c.counts[c.order[0]]}
	for _, key := range c.order[1:] {
		if n := c.counts[key]; n < least.Count {
			least = Frequency{Key: key, Count: n}
		}
	}
	return least, true
}

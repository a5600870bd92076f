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

import "math"

// -----------------------------------------------------------------------------
// Running Summary
// -----------------------------------------------------------------------------

// Summary is a streaming accumulator of count, mean and the sum of squared
// deviations (M2) for a sequence of float64 samples.
//
// Description:
//
//	Samples are folded in with Welford's update, so the mean and variance are
//	available after a single pass without keeping the samples around. Two
//	summaries built over disjoint partitions can be combined with Merge,
//	which uses the pairwise formula of Chan et al. and gives the same result
//	(within floating point tolerance) as folding both partitions in order.
//
// Summary is a value type. The zero value is an empty summary.
//
// Thread Safety: Not safe for concurrent mutation. Build one Summary per
// goroutine and Merge the results.
type Summary struct {
	n    int
	mean float64
	m2   float64
}

// SummarizeSlice folds every value of xs into a new Summary.
func SummarizeSlice(xs []float64) Summary {
	var s Summary
	for _, x := range xs {
		s.Add(x)
	}
	return s
}

// Add folds one sample into the summary.
func (s *Summary) Add(x float64) {
	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (x - s.mean)
}

// Merge returns the summary of the union of s and o.
//
// Inputs:
//   - o: Summary over a partition disjoint from s.
//
// Outputs:
//   - Summary: Combined summary. Neither input is modified.
func (s Summary) Merge(o Summary) Summary {
	switch {
	case o.n == 0:
		return s
	case s.n == 0:
		return o
	}

	n := s.n + o.n
	delta := o.mean - s.mean
	return Summary{
		n:    n,
		mean: s.mean + delta*float64(o.n)/float64(n),
		m2:   s.m2 + o.m2 + delta*delta*float64(s.n)*float64(o.n)/float64(n),
	}
}

// Count returns the number of samples folded in.
func (s Summary) Count() int {
	return s.n
}

// Mean returns the arithmetic mean, or 0 for an empty summary.
func (s Summary) Mean() float64 {
	if s.n == 0 {
		return 0
	}
	return s.mean
}

// Variance returns the population variance (M2 / N), or 0 for an empty
// summary.
func (s Summary) Variance() float64 {
	if s.n == 0 {
		return 0
	}
	v := s.m2 / float64(s.n)
	// Rounding can leave a tiny negative M2 for constant inputs.
	if v < 0 {
		return 0
	}
	return v
}

// SampleVariance returns the Bessel-corrected variance (M2 / (N-1)), or 0
// when fewer than two samples were seen.
func (s Summary) SampleVariance() float64 {
	if s.n < 2 {
		return 0
	}
	v := s.m2 / float64(s.n-1)
	if v < 0 {
		return 0
	}
	return v
}

// StdDev returns the population standard deviation.
func (s Summary) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

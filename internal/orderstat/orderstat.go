// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package orderstat provides the streaming order-statistic structure
// called for by the specification's design notes: a running median/mean
// of a suffix maintained as the suffix grows one element at a time to the
// left, implemented as the classic two-heap "running median" structure on top of
// container/heap.
package orderstat

import "container/heap"

type maxHeap []float64

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return h[i] > h[j] }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(float64)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

type minHeap []float64

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(float64)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// RunningMedian maintains the median and mean of a multiset of float64
// values as elements are added one at a time, via two balanced heaps (a
// max-heap of the lower half, a min-heap of the upper half).
type RunningMedian struct {
	lower maxHeap
	upper minHeap
	sum   float64
	n     int
}

// Add inserts v into the structure.
func (r *RunningMedian) Add(v float64) {
	r.sum += v
	r.n++

	if r.lower.Len() == 0 || v <= r.lower[0] {
		heap.Push(&r.lower, v)
	} else {
		heap.Push(&r.upper, v)
	}

	// Rebalance so len(lower) is either len(upper) or len(upper)+1.
	if r.lower.Len() > r.upper.Len()+1 {
		heap.Push(&r.upper, heap.Pop(&r.lower))
	} else if r.upper.Len() > r.lower.Len() {
		heap.Push(&r.lower, heap.Pop(&r.upper))
	}
}

// Len reports how many values have been added.
func (r *RunningMedian) Len() int { return r.n }

// Median returns the median of the values added so far. It panics if no
// values have been added.
func (r *RunningMedian) Median() float64 {
	if r.n == 0 {
		panic("orderstat: median of empty set")
	}
	if r.lower.Len() > r.upper.Len() {
		return r.lower[0]
	}
	return (r.lower[0] + r.upper[0]) / 2
}

// Mean returns the arithmetic mean of the values added so far. It panics
// if no values have been added.
func (r *RunningMedian) Mean() float64 {
	if r.n == 0 {
		panic("orderstat: mean of empty set")
	}
	return r.sum / float64(r.n)
}

// ReversedCumulative computes, for each suffix xs[j:], the statistic
// returned by stat (Median or Mean), processing the sequence from right to
// left and feeding each value into a shared RunningMedian. The result at
// index j is the statistic of xs[j], xs[j+1], ..., xs[len(xs)-1].
func ReversedCumulative(xs []float64, stat func(*RunningMedian) float64) []float64 {
	out := make([]float64, len(xs))
	var rm RunningMedian
	for j := len(xs) - 1; j >= 0; j-- {
		rm.Add(xs[j])
		out[j] = stat(&rm)
	}
	return out
}

// ReversedCumulativeMedian is ReversedCumulative specialized to the
// median, matching reversed_cumulative_median in the original
// implementation this module is grounded on.
func ReversedCumulativeMedian(xs []float64) []float64 {
	return ReversedCumulative(xs, (*RunningMedian).Median)
}

// ReversedCumulativeMean is ReversedCumulative specialized to the mean,
// matching reversed_cumulative_mean in the original implementation.
func ReversedCumulativeMean(xs []float64) []float64 {
	return ReversedCumulative(xs, (*RunningMedian).Mean)
}

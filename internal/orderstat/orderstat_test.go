// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package orderstat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunningMedianOddCount(t *testing.T) {
	var rm RunningMedian
	for _, v := range []float64{5, 1, 3} {
		rm.Add(v)
	}
	assert.Equal(t, 3.0, rm.Median())
	assert.InDelta(t, 3.0, rm.Mean(), 1e-9)
}

func TestRunningMedianEvenCount(t *testing.T) {
	var rm RunningMedian
	for _, v := range []float64{1, 2, 3, 4} {
		rm.Add(v)
	}
	assert.Equal(t, 2.5, rm.Median())
}

func TestReversedCumulativeMedianMatchesBruteForce(t *testing.T) {
	xs := []float64{4, 2, 7, 1, 9, 3}
	got := ReversedCumulativeMedian(xs)
	for j := range xs {
		want := bruteMedian(xs[j:])
		assert.InDelta(t, want, got[j], 1e-9, "suffix starting at %d", j)
	}
}

func TestReversedCumulativeMeanMatchesBruteForce(t *testing.T) {
	xs := []float64{4, 2, 7, 1, 9, 3}
	got := ReversedCumulativeMean(xs)
	for j := range xs {
		want := bruteMean(xs[j:])
		assert.InDelta(t, want, got[j], 1e-9, "suffix starting at %d", j)
	}
}

func bruteMedian(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func bruteMean(xs []float64) float64 {
	var sum float64
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

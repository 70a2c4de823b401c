// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package multrel derives the cross-cluster size relation used to smooth
// reference-to-constructed abundance ratios (component C of the
// specification, "MultiplicityRelation"), grounded on MultToMultData in
// the original implementation.
package multrel

import (
	"fmt"
	"sort"

	"github.com/kortschak/aimquast/internal/orderstat"
)

// pair is one (reference size, constructed size) observation.
type pair struct {
	refSize  int
	consSize int
}

// Relation holds the size-vs-size curve between reference cluster
// abundance and the constructed abundance reaching it, plus the
// rate-smoothed (reversed cumulative median/mean) view of that curve.
type Relation struct {
	// RefSizes and ConsSizes are the filtered, sorted-by-RefSizes
	// paired observations (x_j, y_j) of the specification: reference
	// cluster size and the cross-sum of constructed abundance matched
	// to it, restricted to pairs where both are > 0.
	RefSizes  []int
	ConsSizes []int

	uniqueRefSizes []int
	medianRates    []float64
	meanRates      []float64
}

// New builds a Relation from per-target reference cluster sizes refSize
// and the cumulative constructed-abundance cross-sum reaching each target
// at a fixed distance, refSum (i.e. reference_sum[:, d] in the
// specification's metric grid for some chosen d). Both slices must have
// the same length, one entry per reference cluster.
func New(refSize, refSum []int) (*Relation, error) {
	if len(refSize) != len(refSum) {
		return nil, fmt.Errorf("multrel.New: mismatched lengths %d, %d", len(refSize), len(refSum))
	}

	var pairs []pair
	for j := range refSize {
		if refSize[j] > 0 && refSum[j] > 0 {
			pairs = append(pairs, pair{refSize: refSize[j], consSize: refSum[j]})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].refSize < pairs[j].refSize })

	r := &Relation{
		RefSizes:  make([]int, len(pairs)),
		ConsSizes: make([]int, len(pairs)),
	}
	rates := make([]float64, len(pairs))
	for i, p := range pairs {
		r.RefSizes[i] = p.refSize
		r.ConsSizes[i] = p.consSize
		rates[i] = float64(p.consSize) / float64(p.refSize)
	}

	medians := orderstat.ReversedCumulativeMedian(rates)
	means := orderstat.ReversedCumulativeMean(rates)

	// Deduplicate by x-coordinate (reference size), keeping the last
	// (highest-index, smallest-suffix) value per x, per the
	// specification.
	for i := range r.RefSizes {
		if i+1 < len(r.RefSizes) && r.RefSizes[i+1] == r.RefSizes[i] {
			continue
		}
		r.uniqueRefSizes = append(r.uniqueRefSizes, r.RefSizes[i])
		r.medianRates = append(r.medianRates, medians[i])
		r.meanRates = append(r.meanRates, means[i])
	}

	return r, nil
}

// MedianRate returns the smoothed reversed-cumulative-median rate at the
// smallest unique reference size >= size. It is an assertion failure
// (panic) for size to exceed every observed reference size, matching the
// specification's "out-of-range is an assertion failure."
func (r *Relation) MedianRate(size int) float64 {
	return r.rateAt(size, r.medianRates)
}

// MeanRate returns the smoothed reversed-cumulative-mean rate at the
// smallest unique reference size >= size.
func (r *Relation) MeanRate(size int) float64 {
	return r.rateAt(size, r.meanRates)
}

func (r *Relation) rateAt(size int, rates []float64) float64 {
	i := sort.SearchInts(r.uniqueRefSizes, size)
	if i >= len(r.uniqueRefSizes) {
		panic(fmt.Sprintf("multrel: size %d exceeds every observed reference size", size))
	}
	return rates[i]
}

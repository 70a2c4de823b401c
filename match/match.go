// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package match aggregates a bidirectional neighbor relation into
// sensitivity/precision/FDR/F1 curves parameterized by minimum cluster
// size and edit-distance threshold tau (component D of the specification,
// "RepertoireMatch"), grounded on RepertoireMatch in the original
// implementation.
package match

import (
	"math"
	"sort"
	"strconv"

	"github.com/kortschak/aimquast"
	"github.com/kortschak/aimquast/multrel"
	"github.com/kortschak/aimquast/neighbor"
)

// Params configures how a Match is built from a bidirectional neighbor
// relation.
type Params struct {
	MaxTau int
	// TrustCutoff saturates reference abundance to +Inf when >= this
	// value. A zero value is not treated as unset: every non-negative
	// abundance saturates. DefaultParams sets it to +Inf (no saturation).
	TrustCutoff float64
	// TrashCutoff saturates reference abundance to -Inf when below
	// this value. Must be <= TrustCutoff.
	TrashCutoff float64
}

// DefaultParams returns Params with no trust/trash saturation.
func DefaultParams(maxTau int) Params {
	return Params{MaxTau: maxTau, TrustCutoff: math.Inf(1), TrashCutoff: math.Inf(-1)}
}

// Match is the built metric grid and its derived sorted marginal vectors,
// per §3 ("Metric grid", "Sorted marginal vectors") and §4.D of the
// specification.
type Match struct {
	params Params

	// referenceAbundances and constructedAbundances are sorted ascending
	// copies of the raw (unsaturated) declared abundances.
	referenceAbundances  []int
	constructedAbundances []int

	// sensitivityVectors[d] and precisionVectors[d] are sorted ascending
	// (per §3); entries may be +/-Inf due to trust/trash saturation.
	sensitivityVectors [][]float64
	precisionVectors   [][]float64

	// Relation is the size-vs-size smoothing curve (component C) built
	// from reference_sum at tau=0.
	Relation *multrel.Relation
}

// Build constructs a Match from a bidirectional neighbor relation between
// a constructed repertoire (the query side, "Fwd") and a reference
// repertoire (the target side, "Rev"), plus the raw declared abundances of
// each side, per the build procedure in §4.D.
func Build(m *neighbor.Matched, referenceAbundances, constructedAbundances []int, p Params) (*Match, error) {
	if p.TrashCutoff > p.TrustCutoff {
		return nil, aimquast.Precondition("match.Build", "trash cutoff %v exceeds trust cutoff %v", p.TrashCutoff, p.TrustCutoff)
	}
	nRef := len(referenceAbundances)
	nCons := len(constructedAbundances)
	width := p.MaxTau + 1

	reference := make2D(nRef, width)
	constructed := make2D(nCons, width)
	referenceSum := make2DInt(nRef, width)
	constructedSum := make2DInt(nCons, width)

	for i, edges := range m.Fwd {
		aCons := float64(constructedAbundances[i])
		for _, e := range edges {
			j, d := e.To, e.Dist
			aRef := referenceAbundances[j]

			referenceSum[j][d] += constructedAbundances[i]
			constructedSum[i][d] += aRef

			aRefSat := float64(aRef)
			if aRefSat >= p.TrustCutoff {
				aRefSat = math.Inf(1)
			}
			if aRefSat < p.TrashCutoff {
				aRefSat = math.Inf(-1)
			}

			minAbundance := math.Min(aCons, aRefSat)
			if minAbundance > reference[j][d] {
				reference[j][d] = minAbundance
			}
			if minAbundance > constructed[i][d] {
				constructed[i][d] = minAbundance
			}
		}
	}

	// Make reference/constructed cumulative (running max) and the _sum
	// grids cumulative (running sum) along d.
	for d := 1; d < width; d++ {
		for j := 0; j < nRef; j++ {
			if reference[j][d-1] > reference[j][d] {
				reference[j][d] = reference[j][d-1]
			}
			referenceSum[j][d] += referenceSum[j][d-1]
		}
		for i := 0; i < nCons; i++ {
			if constructed[i][d-1] > constructed[i][d] {
				constructed[i][d] = constructed[i][d-1]
			}
			constructedSum[i][d] += constructedSum[i][d-1]
		}
	}

	refSumAtZero := make([]int, nRef)
	for j := range refSumAtZero {
		refSumAtZero[j] = referenceSum[j][0]
	}
	relation, err := multrel.New(referenceAbundances, refSumAtZero)
	if err != nil {
		return nil, err
	}

	mt := &Match{
		params:                p,
		referenceAbundances:   sortedCopy(referenceAbundances),
		constructedAbundances: sortedCopy(constructedAbundances),
		sensitivityVectors:    columnsSorted(reference, width, nRef),
		precisionVectors:      columnsSorted(constructed, width, nCons),
		Relation:              relation,
	}
	return mt, nil
}

func make2D(rows, cols int) [][]float64 {
	g := make([][]float64, rows)
	for i := range g {
		g[i] = make([]float64, cols)
	}
	return g
}

func make2DInt(rows, cols int) [][]int {
	g := make([][]int, rows)
	for i := range g {
		g[i] = make([]int, cols)
	}
	return g
}

func sortedCopy(xs []int) []int {
	out := make([]int, len(xs))
	copy(out, xs)
	sort.Ints(out)
	return out
}

func columnsSorted(grid [][]float64, width, rows int) [][]float64 {
	cols := make([][]float64, width)
	for d := 0; d < width; d++ {
		col := make([]float64, rows)
		for i := 0; i < rows; i++ {
			col[i] = grid[i][d]
		}
		sort.Float64s(col)
		cols[d] = col
	}
	return cols
}

// countGE returns the number of entries in the ascending-sorted slice xs
// that are >= threshold.
func countGE(xs []float64, threshold float64) int {
	i := sort.Search(len(xs), func(i int) bool { return xs[i] >= threshold })
	return len(xs) - i
}

func clamp(s, lo, hi float64) float64 {
	if s > hi {
		s = hi
	}
	if s < lo {
		s = lo
	}
	return s
}

// ReferenceSize is #{reference clusters with abundance >= clamp(s, trash,
// trust)}.
func (m *Match) ReferenceSize(s float64) int {
	s = clamp(s, m.params.TrashCutoff, m.params.TrustCutoff)
	return countGE(intsToFloats(m.referenceAbundances), s)
}

// ConstructedSize is #{constructed clusters with abundance >= s}.
func (m *Match) ConstructedSize(s float64) int {
	return countGE(intsToFloats(m.constructedAbundances), s)
}

// Ref2Cons is #{reference clusters matched to some constructed cluster at
// distance <= d with min-abundance >= s}.
func (m *Match) Ref2Cons(s float64, d int) int {
	return countGE(m.sensitivityVectors[d], s)
}

// Cons2Ref is #{constructed clusters matched to some reference cluster at
// distance <= d with min-abundance >= s}.
func (m *Match) Cons2Ref(s float64, d int) int {
	return countGE(m.precisionVectors[d], s)
}

// Sensitivity is ref2cons(s,d) / reference_size(s), 0 when the denominator
// is 0.
func (m *Match) Sensitivity(s float64, d int) float64 {
	all := m.ReferenceSize(s)
	identified := m.Ref2Cons(s, d)
	if all == 0 {
		return 0
	}
	return float64(identified) / float64(all)
}

// Precision is cons2ref(s,d) / constructed_size(s), 0 when the denominator
// is 0.
func (m *Match) Precision(s float64, d int) float64 {
	all := m.ConstructedSize(s)
	truePos := m.Cons2Ref(s, d)
	if all == 0 {
		return 0
	}
	return float64(truePos) / float64(all)
}

// FDR is 1 - precision(s,d).
func (m *Match) FDR(s float64, d int) float64 { return 1 - m.Precision(s, d) }

// F1 is the harmonic mean of precision and sensitivity.
func (m *Match) F1(s float64, d int) float64 {
	p := m.Precision(s, d)
	r := m.Sensitivity(s, d)
	if p+r == 0 {
		return 0
	}
	return 2 * (p * r) / (p + r)
}

// CheckInvariants verifies reference_size(s) >= ref2cons(s,d) and
// constructed_size(s) >= cons2ref(s,d) for the given thresholds, returning
// an InvariantViolated error on the first failure. Per §8's universally
// quantified properties.
func (m *Match) CheckInvariants(sizes []float64) error {
	for _, s := range sizes {
		refSize := m.ReferenceSize(s)
		consSize := m.ConstructedSize(s)
		for d := 0; d <= m.params.MaxTau; d++ {
			if r2c := m.Ref2Cons(s, d); r2c > refSize {
				return aimquast.Invariant("match.CheckInvariants",
					"ref2cons(%v,%d)=%d exceeds reference_size(%v)=%d", s, d, r2c, s, refSize)
			}
			if c2r := m.Cons2Ref(s, d); c2r > consSize {
				return aimquast.Invariant("match.CheckInvariants",
					"cons2ref(%v,%d)=%d exceeds constructed_size(%v)=%d", s, d, c2r, s, consSize)
			}
		}
	}
	return nil
}

func intsToFloats(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

// Diff is the per-d increment histogram of a measure (ref2cons or
// cons2ref), plus a residual bucket labeled ">= tau_max+1", matching the
// specification's differential view. DiffMeasure's sensitivity flag
// selects Ref2Cons or Cons2Ref.
type Diff struct {
	Values   []float64
	Labels   []string
	Residual float64
}

// DiffMeasure builds the differential view of ref2cons (sensitivity) or
// cons2ref (precision) at a fixed size threshold s.
func (m *Match) DiffMeasure(s float64, sensitivity bool) Diff {
	measures := make([]float64, m.params.MaxTau+1)
	for d := 0; d <= m.params.MaxTau; d++ {
		if sensitivity {
			measures[d] = float64(m.Ref2Cons(s, d))
		} else {
			measures[d] = float64(m.Cons2Ref(s, d))
		}
	}
	var all int
	if sensitivity {
		all = m.ReferenceSize(s)
	} else {
		all = m.ConstructedSize(s)
	}
	residual := float64(all) - measures[len(measures)-1]
	for i := len(measures) - 1; i >= 1; i-- {
		measures[i] -= measures[i-1]
	}
	labels := make([]string, len(measures)+1)
	for i := range measures {
		labels[i] = strconv.Itoa(i)
	}
	labels[len(measures)] = ">= " + strconv.Itoa(len(measures))
	return Diff{Values: append(measures, residual), Labels: labels, Residual: residual}
}

// DiffFDR is the decreasing-sequence differential view of FDR:
// fdr(d-1) - fdr(d) for d = 1..tau_max.
func (m *Match) DiffFDR(s float64) []float64 {
	out := make([]float64, m.params.MaxTau)
	for d := 1; d <= m.params.MaxTau; d++ {
		out[d-1] = m.FDR(s, d-1) - m.FDR(s, d)
	}
	return out
}


// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package partition compares two read-to-cluster labelings over the same
// id universe: contingency-based similarity indices, purity, and
// majority-vote diagnostics, with size-threshold pruning (component E of
// the specification, "PartitionCompare"), grounded on
// clustering_similarity_indices/purity/votes/RcmVsRcm in the original
// implementation.
package partition

import (
	"fmt"
	"math"
	"sort"

	"github.com/kortschak/aimquast"
)

// Unassigned is the sentinel label denoting ⊥: a read present in the id
// universe but absent from one side's cluster assignment.
const Unassigned = ""

// pairKey indexes the contingency table.
type pairKey struct {
	x, y string
}

// Compare holds two labelings over the same id universe and their derived
// contingency table. Unassigned positions are uniquely renamed per side on
// construction so that they never spuriously match across sides.
type Compare struct {
	x, y []string // renamed, mutable by Prune

	contingency map[pairKey]int
	rowSums     map[string]int // per x
	colSums     map[string]int // per y
	n           int

	valid bool
}

// New builds a Compare from two equal-length label slices over the same
// id universe (x[i] and y[i] are the two labelings of id i). Positions
// equal to Unassigned are renamed to a per-position sentinel unique to
// their side, per §4.E.
func New(x, y []string) (*Compare, error) {
	if len(x) != len(y) {
		return nil, aimquast.Precondition("partition.New", "mismatched lengths %d, %d", len(x), len(y))
	}
	c := &Compare{
		x: renameUnassigned(x, "x"),
		y: renameUnassigned(y, "y"),
		n: len(x),
	}
	c.recompute()
	return c, nil
}

func renameUnassigned(labels []string, side string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		if l == Unassigned {
			out[i] = fmt.Sprintf("\x00unassigned_%s_%d", side, i)
		} else {
			out[i] = l
		}
	}
	return out
}

func (c *Compare) recompute() {
	c.contingency = make(map[pairKey]int)
	c.rowSums = make(map[string]int)
	c.colSums = make(map[string]int)
	for i := range c.x {
		k := pairKey{c.x[i], c.y[i]}
		c.contingency[k]++
		c.rowSums[c.x[i]]++
		c.colSums[c.y[i]]++
	}
	c.valid = true
}

// choose2 is C(n,2).
func choose2(n int) int64 {
	n64 := int64(n)
	return n64 * (n64 - 1) / 2
}

// agreementSums returns S00, S01, S10, S11 per §4.E.
func (c *Compare) agreementSums() (s00, s01, s10, s11 int64) {
	var sumXY, sumX, sumY int64
	for _, m := range c.contingency {
		sumXY += choose2(m)
	}
	for _, m := range c.rowSums {
		sumX += choose2(m)
	}
	for _, m := range c.colSums {
		sumY += choose2(m)
	}
	s00 = sumXY
	s01 = sumX - s00
	s10 = sumY - s00
	total := choose2(c.n)
	s11 = total - s00 - s01 - s10
	return s00, s01, s10, s11
}

// Rand is (S00+S11)/C(N,2).
func (c *Compare) Rand() float64 {
	s00, _, _, s11 := c.agreementSums()
	total := choose2(c.n)
	if total == 0 {
		return 1
	}
	return float64(s00+s11) / float64(total)
}

// AdjustedRand is the chance-corrected Rand index.
func (c *Compare) AdjustedRand() float64 {
	var sumXY, sumX, sumY float64
	for _, m := range c.contingency {
		sumXY += float64(choose2(m))
	}
	for _, m := range c.rowSums {
		sumX += float64(choose2(m))
	}
	for _, m := range c.colSums {
		sumY += float64(choose2(m))
	}
	total := float64(choose2(c.n))
	if total == 0 {
		return 1
	}
	expected := (sumX * sumY) / total
	maxIndex := (sumX + sumY) / 2
	if maxIndex == expected {
		return 1
	}
	return (sumXY - expected) / (maxIndex - expected)
}

// FowlkesMallows is S00 / sqrt((S00+S10)(S00+S01)); 1 when the denominator
// is 0.
func (c *Compare) FowlkesMallows() float64 {
	s00, s01, s10, _ := c.agreementSums()
	denom := math.Sqrt(float64(s00+s10) * float64(s00+s01))
	if denom == 0 {
		return 1
	}
	return float64(s00) / denom
}

// Jaccard is S00 / (S00+S10+S01); 1 when the denominator is 0.
func (c *Compare) Jaccard() float64 {
	s00, s01, s10, _ := c.agreementSums()
	denom := s00 + s10 + s01
	if denom == 0 {
		return 1
	}
	return float64(s00) / float64(denom)
}

// NMI is the normalized mutual information 2*MI / (H(X)+H(Y)), computed
// from the contingency table in natural log.
func (c *Compare) NMI() float64 {
	n := float64(c.n)
	if n == 0 {
		return 1
	}
	var mi float64
	for k, m := range c.contingency {
		pxy := float64(m) / n
		px := float64(c.rowSums[k.x]) / n
		py := float64(c.colSums[k.y]) / n
		mi += pxy * math.Log(pxy/(px*py))
	}
	var hx, hy float64
	for _, m := range c.rowSums {
		p := float64(m) / n
		hx -= p * math.Log(p)
	}
	for _, m := range c.colSums {
		p := float64(m) / n
		hy -= p * math.Log(p)
	}
	if hx+hy == 0 {
		return 1
	}
	return 2 * mi / (hx + hy)
}

// PurityXGivenY is (sum_x max_y m_xy) / N: the majority-label purity of
// each X-cluster measured against Y's labels.
func (c *Compare) PurityXGivenY() float64 {
	return c.purity(c.rowSums, true)
}

// PurityYGivenX is the symmetric purity of each Y-cluster against X's
// labels.
func (c *Compare) PurityYGivenX() float64 {
	return c.purity(c.colSums, false)
}

func (c *Compare) purity(sideSums map[string]int, xIsRow bool) float64 {
	best := make(map[string]int, len(sideSums))
	for k, m := range c.contingency {
		label := k.x
		if !xIsRow {
			label = k.y
		}
		if m > best[label] {
			best[label] = m
		}
	}
	var total int
	for _, v := range best {
		total += v
	}
	if c.n == 0 {
		return 1
	}
	return float64(total) / float64(c.n)
}

// VotesX returns, keyed by each distinct x-cluster label, the
// sorted-descending vector of its per-y-cluster counts, padded to length
// at least 2 with zeros. Used for majority/secondary diagnostics.
func (c *Compare) VotesX() map[string][]int {
	return c.votes(true)
}

// VotesY is the symmetric vote vector keyed by y-cluster.
func (c *Compare) VotesY() map[string][]int {
	return c.votes(false)
}

func (c *Compare) votes(xIsRow bool) map[string][]int {
	byLabel := make(map[string][]int)
	for k, m := range c.contingency {
		label := k.x
		if !xIsRow {
			label = k.y
		}
		byLabel[label] = append(byLabel[label], m)
	}
	out := make(map[string][]int, len(byLabel))
	for label, counts := range byLabel {
		sort.Sort(sort.Reverse(sort.IntSlice(counts)))
		for len(counts) < 2 {
			counts = append(counts, 0)
		}
		out[label] = counts
	}
	return out
}

// Prune masks to Unassigned (uniquely renamed) any position whose
// pre-pruning per-side cluster size is below the given threshold, then
// rebuilds the contingency table immediately; the indices read from it
// afterwards reflect the pruned labels. sizeX and
// sizeY are minimum cluster sizes for the x and y sides respectively.
func (c *Compare) Prune(sizeX, sizeY int) {
	xSmall := make(map[string]bool)
	ySmall := make(map[string]bool)
	for label, m := range c.rowSums {
		if m < sizeX {
			xSmall[label] = true
		}
	}
	for label, m := range c.colSums {
		if m < sizeY {
			ySmall[label] = true
		}
	}
	for i := range c.x {
		if xSmall[c.x[i]] {
			c.x[i] = fmt.Sprintf("\x00unassigned_x_%d", i)
		}
		if ySmall[c.y[i]] {
			c.y[i] = fmt.Sprintf("\x00unassigned_y_%d", i)
		}
	}
	c.recompute()
}

// N is the size of the id universe.
func (c *Compare) N() int { return c.n }

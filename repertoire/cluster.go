// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package repertoire computes per-cluster error profiles and aggregates
// them into repertoire-level error-rate estimates (components F and G of
// the specification, "ClusterStats" and "RepertoireStats"), grounded on
// Cluster/Repertoire in the original implementation.
package repertoire

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kortschak/aimquast"
)

// CutTail trims this many trailing centroid positions from error
// counting, matching CUTAIL in the original implementation (left at its
// original value of 0: every centroid position is counted).
const CutTail = 0

// order is the alphabet tie-break for consensus voting: A<C<G<T.
var order = [4]byte{'A', 'C', 'G', 'T'}

func baseIndex(b byte) (int, bool) {
	switch b {
	case 'A':
		return 0, true
	case 'C':
		return 1, true
	case 'G':
		return 2, true
	case 'T':
		return 3, true
	}
	return 0, false
}

// Consensus computes the majority nucleotide per position over the first
// L positions, L = min read length, ties broken by alphabet order
// A<C<G<T (numpy argmax's first-index tie-break over the A,C,G,T column
// order in the original implementation).
func Consensus(reads []string) (string, error) {
	if len(reads) == 0 {
		return "", aimquast.Precondition("repertoire.Consensus", "no reads")
	}
	l := len(reads[0])
	for _, r := range reads {
		if len(r) < l {
			l = len(r)
		}
	}

	counts := make([][4]int, l)
	for _, r := range reads {
		for i := 0; i < l; i++ {
			idx, ok := baseIndex(r[i])
			if !ok {
				continue
			}
			counts[i][idx]++
		}
	}

	out := make([]byte, l)
	for i, c := range counts {
		best := 0
		for k := 1; k < 4; k++ {
			if c[k] > c[best] {
				best = k
			}
		}
		out[i] = order[best]
	}
	return string(out), nil
}

// ClusterStats is the per-cluster error profile of one cluster of reads
// against its centroid, per §4.F.
type ClusterStats struct {
	Name     string
	Reads    []string
	Centroid string
	// length is min read length, used as L in the Poisson extremum
	// model below (not the centroid length, which may differ when the
	// centroid is externally provided).
	length int

	errorsByPosition []int
	errorsByRead     []int
	maxError         int
}

// NewClusterStats builds per-read and per-position error profiles for a
// cluster. If centroid is empty, the consensus of reads is computed and
// used instead.
func NewClusterStats(name string, reads []string, centroid string) (*ClusterStats, error) {
	if len(reads) == 0 {
		return nil, aimquast.Precondition("repertoire.NewClusterStats", "cluster %q has no reads", name)
	}
	if centroid == "" {
		c, err := Consensus(reads)
		if err != nil {
			return nil, err
		}
		centroid = c
	}

	minLen := len(reads[0])
	for _, r := range reads {
		if len(r) < minLen {
			minLen = len(r)
		}
	}

	bound := max(len(centroid)-CutTail, 0)
	errByPos := make([]int, bound)
	errByRead := make([]int, len(reads))
	for k, r := range reads {
		n := min(len(r), bound)
		for i := 0; i < n; i++ {
			if r[i] != centroid[i] {
				errByPos[i]++
				errByRead[k]++
			}
		}
	}

	maxErr := 0
	for _, e := range errByPos {
		if e > maxErr {
			maxErr = e
		}
	}

	return &ClusterStats{
		Name:             name,
		Reads:            reads,
		Centroid:         centroid,
		length:           minLen,
		errorsByPosition: errByPos,
		errorsByRead:     errByRead,
		maxError:         maxErr,
	}, nil
}

// Size is the number of member reads.
func (c *ClusterStats) Size() int { return len(c.Reads) }

// Length is L, the minimum read length.
func (c *ClusterStats) Length() int { return c.length }

// ErrorsByPosition is e[i], the per-position mismatch count.
func (c *ClusterStats) ErrorsByPosition() []int { return c.errorsByPosition }

// ErrorsByRead is E[k], the per-read mismatch count.
func (c *ClusterStats) ErrorsByRead() []int { return c.errorsByRead }

// MaxError is max_i e[i].
func (c *ClusterStats) MaxError() int { return c.maxError }

// maxCDF is F(x; size) = P(Poisson(mu) <= x)^L, mu = (errorRate/L)*size,
// the extremum CDF over L independent positions under the per-position
// Poisson error model of §4.F.
func (c *ClusterStats) maxCDF(x float64, size int, errorRate float64) float64 {
	if c.length == 0 {
		return 1
	}
	probError := errorRate / float64(c.length)
	lam := probError * float64(size)
	pois := distuv.Poisson{Lambda: lam}
	return math.Pow(pois.CDF(x), float64(c.length))
}

// PValueUpper is 1 - F(max_error-1; size): the probability the maximum
// equals or exceeds the observed max_error.
func (c *ClusterStats) PValueUpper(errorRate float64) float64 {
	return 1 - c.maxCDF(float64(c.maxError-1), c.Size(), errorRate)
}

// PValueLower is F(max_error; size).
func (c *ClusterStats) PValueLower(errorRate float64) float64 {
	return c.maxCDF(float64(c.maxError), c.Size(), errorRate)
}

// PValueBoth is 2*min(upper, lower).
func (c *ClusterStats) PValueBoth(errorRate float64) float64 {
	u, l := c.PValueUpper(errorRate), c.PValueLower(errorRate)
	if u < l {
		return 2 * u
	}
	return 2 * l
}

// MaxPPF inverts the extremum CDF: the smallest integer x such that
// F(x; size) >= q, found by linear search upward from 0 since the
// underlying distribution is integer-valued and gonum's distuv.Poisson
// does not expose a quantile function directly.
func (c *ClusterStats) MaxPPF(q float64, size int, errorRate float64) int {
	if c.length == 0 {
		return 0
	}
	target := math.Pow(q, 1/float64(c.length))
	probError := errorRate / float64(c.length)
	lam := probError * float64(size)
	pois := distuv.Poisson{Lambda: lam}
	for x := 0; ; x++ {
		if pois.CDF(float64(x)) >= target {
			return x
		}
		if x > 1_000_000 {
			return x
		}
	}
}


// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package neighbor parses the external matcher's bipartite neighbor-file
// format into a queryable adjacency relation (component A of the
// specification, "NeighborIndex"), and merges two such relations into a
// single bidirectional one (component B, "BidirectionalMatcher").
package neighbor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kortschak/aimquast"
)

// Edge is one (target, distance) pair in a neighbor list.
type Edge struct {
	To   int
	Dist int
}

// Index is the bipartite neighbor relation between a query set Q (size
// len(Fwd)) and a target set T (size len(Rev)): for each q in Q, Fwd[q] is
// its ordered list of (t, d) with 0 <= d <= MaxTau. Rev is the reverse
// adjacency, indexed by target.
type Index struct {
	Fwd [][]Edge
	Rev [][]Edge

	// Abundances holds the declared multiplicity of each query sequence,
	// parsed from the neighbor file's per-row abundance field.
	Abundances []int

	MaxTau int
}

// NQuery is the size of the query set.
func (ix *Index) NQuery() int { return len(ix.Fwd) }

// NTarget is the size of the target set.
func (ix *Index) NTarget() int { return len(ix.Rev) }

// Parse reads the neighbor-file format produced by the external
// neighbor-graph builder:
//
//	<n_q> <E> <FORMAT>
//	<abundance>  <t1> <d1>  <t2> <d2> ...
//	...
//
// one header line followed by exactly n_q neighbor lines, 1-based target
// indices, LF terminated. nTarget is the size of the target set (not
// recoverable from the file itself, since targets with no matches never
// appear). maxTau bounds every distance; a distance above maxTau, or a
// declared n_q that disagrees with the number of data rows, is reported
// as a MalformedInput error.
func Parse(r io.Reader, nTarget, maxTau int) (*Index, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, aimquast.Malformed("neighbor.Parse", fmt.Errorf("empty neighbor file"))
	}
	header := strings.Fields(sc.Text())
	if len(header) < 3 {
		return nil, aimquast.Malformed("neighbor.Parse", fmt.Errorf("bad header %q", sc.Text()))
	}
	nQuery, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, aimquast.Malformed("neighbor.Parse", fmt.Errorf("bad n_q %q: %w", header[0], err))
	}

	ix := &Index{
		Fwd:        make([][]Edge, nQuery),
		Rev:        make([][]Edge, nTarget),
		Abundances: make([]int, nQuery),
		MaxTau:     maxTau,
	}

	row := 0
	for sc.Scan() {
		if row >= nQuery {
			return nil, aimquast.Malformed("neighbor.Parse",
				fmt.Errorf("more rows than declared n_q=%d", nQuery))
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		vals := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, aimquast.Malformed("neighbor.Parse",
					fmt.Errorf("row %d: bad integer %q: %w", row, f, err))
			}
			vals[i] = v
		}
		ix.Abundances[row] = vals[0]
		pairs := vals[1:]
		if len(pairs)%2 != 0 {
			return nil, aimquast.Malformed("neighbor.Parse",
				fmt.Errorf("row %d: odd number of neighbor fields", row))
		}
		for i := 0; i < len(pairs); i += 2 {
			t := pairs[i] - 1 // 1-based -> 0-based
			d := pairs[i+1]
			if d < 0 || d > maxTau {
				return nil, aimquast.Malformed("neighbor.Parse",
					fmt.Errorf("row %d: distance %d exceeds tau_max=%d", row, d, maxTau))
			}
			if t < 0 || t >= nTarget {
				return nil, aimquast.Malformed("neighbor.Parse",
					fmt.Errorf("row %d: target index %d out of range [0,%d)", row, t, nTarget))
			}
			ix.Fwd[row] = append(ix.Fwd[row], Edge{To: t, Dist: d})
			ix.Rev[t] = append(ix.Rev[t], Edge{To: row, Dist: d})
		}
		row++
	}
	if err := sc.Err(); err != nil {
		return nil, aimquast.Malformed("neighbor.Parse", err)
	}
	if row != nQuery {
		return nil, aimquast.Malformed("neighbor.Parse",
			fmt.Errorf("header declared n_q=%d but file has %d rows", nQuery, row))
	}
	return ix, nil
}

// ParseFile opens path and parses it as a neighbor file.
func ParseFile(path string, nTarget, maxTau int) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, aimquast.Malformed("neighbor.ParseFile", err)
	}
	defer f.Close()
	return Parse(f, nTarget, maxTau)
}

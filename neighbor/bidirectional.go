// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neighbor

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kortschak/aimquast/external"
)

// Matched is the merged result of running the external matcher in both
// orientations: query-against-target and target-against-query. Edge sets
// are unioned; when both orientations report an edge, the minimum distance
// is kept.
type Matched struct {
	*Index
}

// RunOne invokes the external matcher for one (query, target) orientation
// at the given distance bound, writing its neighbor-file output to
// outPath.
type RunOne func(ctx context.Context, query, target string, maxTau int, outPath string) error

// Bidirectional runs the external neighbor-graph builder twice (query vs
// target, then target vs query) at the same maxTau, and merges the two
// relations by edge-set union, keeping the minimum distance per edge, per
// component B of the specification.
func Bidirectional(ctx context.Context, runOne RunOne,
	queryPath, targetPath string, nQuery, nTarget, maxTau int) (*Matched, error) {

	fwdIx, err := runAndParse(ctx, runOne, queryPath, targetPath, nTarget, maxTau)
	if err != nil {
		return nil, err
	}
	revIx, err := runAndParse(ctx, runOne, targetPath, queryPath, nQuery, maxTau)
	if err != nil {
		return nil, err
	}

	merge(fwdIx.Fwd, revIx.Rev)
	merge(fwdIx.Rev, revIx.Fwd)

	return &Matched{Index: fwdIx}, nil
}

func runAndParse(ctx context.Context, runOne RunOne,
	query, target string, nTarget, maxTau int) (*Index, error) {

	f, err := os.CreateTemp("", "aimquast_neighbor_*.graph")
	if err != nil {
		return nil, fmt.Errorf("neighbor.Bidirectional: %w", err)
	}
	out := f.Name()
	f.Close()
	defer os.Remove(out)

	if err := runOne(ctx, query, target, maxTau, out); err != nil {
		return nil, err
	}
	return ParseFile(out, nTarget, maxTau)
}

// merge unions the edges in y into x in place, keeping the minimum
// distance whenever both sides report the same (query, target) pair. x and
// y must have identical length (one slice per query index).
func merge(x, y [][]Edge) {
	for i := range x {
		seen := make(map[int]int, len(x[i])+len(y[i]))
		for _, e := range x[i] {
			seen[e.To] = e.Dist
		}
		for _, e := range y[i] {
			if d, ok := seen[e.To]; !ok || e.Dist < d {
				seen[e.To] = e.Dist
			}
		}
		merged := make([]Edge, 0, len(seen))
		for t, d := range seen {
			merged = append(merged, Edge{To: t, Dist: d})
		}
		x[i] = merged
	}
}

// Check looks for queries or targets matched at distance 0 to more than
// one partner. Per the specification, this is informational only: findings
// are logged, not returned as an error. The offending index sets are
// returned for diagnostics.
func (m *Matched) Check(logger *log.Logger) (queryMulti, targetMulti map[int][]int) {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	queryMulti = zeroDistMultiples(m.Fwd, logger, "query")
	targetMulti = zeroDistMultiples(m.Rev, logger, "target")
	return queryMulti, targetMulti
}

func zeroDistMultiples(adj [][]Edge, logger *log.Logger, label string) map[int][]int {
	multi := make(map[int][]int)
	for i, edges := range adj {
		var matches []int
		for _, e := range edges {
			if e.Dist == 0 {
				matches = append(matches, e.To)
			}
		}
		if len(matches) > 1 {
			logger.Printf("%s %d matched at distance 0 on several partners: %v", label, i, matches)
			multi[i] = matches
		}
	}
	return multi
}

// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rcm parses and writes the read-to-cluster map text format, and
// synthesizes one from reads and a centroid set lacking it by iterated
// bounded-distance nearest-neighbor assignment (component H of the
// specification, "RcmReconstructor"), grounded on
// parse_rcm/write_rcm/reconstruct_rcm in the original implementation.
package rcm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/kortschak/aimquast"
	"github.com/kortschak/aimquast/neighbor"
	"github.com/kortschak/aimquast/seqio"
)

// Unassigned is the sentinel cluster name denoting ⊥: a read present in
// the id universe but without a cluster assignment. It matches
// partition.Unassigned so an RCM's records can feed partition.New
// directly.
const Unassigned = ""

// Record is one read_id -> cluster_name entry; Cluster is Unassigned for
// a bare read_id line (⊥).
type Record struct {
	ReadID  string
	Cluster string
}

// Parse reads the RCM text format: one "<read_id>\t<cluster_name>" or
// bare "<read_id>" line per read, per §6.
func Parse(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var out []Record
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		rec := Record{ReadID: strings.TrimSpace(fields[0])}
		if len(fields) == 2 {
			rec.Cluster = strings.TrimSpace(fields[1])
		} else {
			rec.Cluster = Unassigned
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, aimquast.Malformed("rcm.Parse", err)
	}
	return out, nil
}

// ParseFile opens path and parses it as an RCM file.
func ParseFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, aimquast.Malformed("rcm.ParseFile", err)
	}
	defer f.Close()
	return Parse(f)
}

// Write serializes records in RCM text format, omitting the cluster field
// for Unassigned records.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		var err error
		if r.Cluster == Unassigned {
			_, err = fmt.Fprintf(bw, "%s\n", r.ReadID)
		} else {
			_, err = fmt.Fprintf(bw, "%s\t%s\n", r.ReadID, r.Cluster)
		}
		if err != nil {
			return fmt.Errorf("rcm.Write: %w", err)
		}
	}
	return bw.Flush()
}

// WriteFile writes records to path in RCM text format.
func WriteFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return aimquast.Malformed("rcm.WriteFile", err)
	}
	defer f.Close()
	return Write(f, records)
}

// infiniteTau stands in for the exhaustive fallback pass (τ=∞ in the
// specification): large enough that no real distance exceeds it, small
// enough to keep the neighbor-file distance-bound arithmetic in range.
const infiniteTau = 1 << 20

// Reconstruct builds an RCM for the reads in readsPath against the
// cluster centroids in centroidsPath, trying each τ in taus (ascending,
// deduplicated) in turn and keeping only the reads still unmatched after
// the previous round, per §4.H. If fallbackExhaustive, a final round at
// effectively unbounded τ is attempted after the schedule is exhausted.
// rng resolves assignment ties uniformly at random; nil uses a source
// seeded with 1, so repeated runs give the same result. Returns the full RCM (one record per read, Unassigned for reads
// that remain unmatched) and the number of reads whose nearest centroid
// was ambiguous (tie-broken at random).
func Reconstruct(ctx context.Context, runOne neighbor.RunOne, readsPath, centroidsPath string, taus []int, fallbackExhaustive bool, rng *rand.Rand, logger *log.Logger) ([]Record, int, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	reads, err := seqio.ReadFasta(readsPath)
	if err != nil {
		return nil, 0, err
	}
	centroids, err := seqio.ReadFasta(centroidsPath)
	if err != nil {
		return nil, 0, err
	}
	clusterNames := make([]string, len(centroids))
	for i, c := range centroids {
		if name := c.ClusterName(); name != "" {
			clusterNames[i] = name
		} else {
			clusterNames[i] = c.ID
		}
	}

	assigned := make(map[string]string, len(reads))
	unmatched := make(map[string]bool, len(reads))
	for _, r := range reads {
		unmatched[r.ID] = true
	}

	schedule := uniqueSorted(taus)
	if fallbackExhaustive {
		schedule = append(schedule, infiniteTau)
	}

	tmp, err := os.CreateTemp("", "aimquast_unmatched_*.fa")
	if err != nil {
		return nil, 0, fmt.Errorf("rcm.Reconstruct: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	uncertain := 0
	for _, tau := range schedule {
		if len(unmatched) == 0 {
			break
		}

		var subset []seqio.Record
		var subsetIDs []string
		for _, r := range reads {
			if unmatched[r.ID] {
				subset = append(subset, r)
				subsetIDs = append(subsetIDs, r.ID)
			}
		}
		if err := seqio.WriteFasta(tmpPath, subset); err != nil {
			return nil, 0, err
		}
		logger.Printf("rcm: %d reads remain unmatched at tau=%d", len(subset), tau)

		matched, err := neighbor.Bidirectional(ctx, runOne, tmpPath, centroidsPath, len(subset), len(centroids), tau)
		if err != nil {
			return nil, 0, err
		}

		for i, edges := range matched.Fwd {
			if len(edges) == 0 {
				continue
			}
			minDist := edges[0].Dist
			for _, e := range edges[1:] {
				if e.Dist < minDist {
					minDist = e.Dist
				}
			}
			var nearest []int
			for _, e := range edges {
				if e.Dist == minDist {
					nearest = append(nearest, e.To)
				}
			}
			if len(nearest) > 1 {
				uncertain++
			}
			chosen := nearest[rng.Intn(len(nearest))]

			readID := subsetIDs[i]
			assigned[readID] = clusterNames[chosen]
			delete(unmatched, readID)
		}
		logger.Printf("rcm: %d reads left unmatched", len(unmatched))
	}
	logger.Printf("rcm: %d assignments were uncertain (randomly tie-broken)", uncertain)

	out := make([]Record, len(reads))
	for i, r := range reads {
		out[i] = Record{ReadID: r.ID, Cluster: assigned[r.ID]}
	}
	return out, uncertain, nil
}

func uniqueSorted(xs []int) []int {
	seen := make(map[int]bool, len(xs))
	var out []int
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	sort.Ints(out)
	return out
}

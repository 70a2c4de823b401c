// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repertoire

import (
	"math"
	"sort"
	"sync"
)

// ErrorRateEstimates holds the four error-rate estimators of §4.G,
// computed from the aggregated per-read error-count frequency vector.
type ErrorRateEstimates struct {
	MLE         float64
	FirstLen    float64
	FirstSecond float64
	FirstThird  float64
}

// CanonicalRate is the estimator used elsewhere as "the" repertoire error
// rate, per §4.G: FirstThird.
func (e ErrorRateEstimates) CanonicalRate() float64 { return e.FirstThird }

// BadCluster is one cluster flagged by Stats.BadClusters.
type BadCluster struct {
	Name      string
	Size      int
	MaxErrors int
	PValue    float64
}

// Stats aggregates ClusterStats across a repertoire of clusters.
type Stats struct {
	clusters []*ClusterStats
	minSize  int
}

// NewStats builds a Stats over the given clusters, with minSize as the
// default minimum cluster size for aggregation (§4.G).
func NewStats(clusters []*ClusterStats, minSize int) *Stats {
	return &Stats{clusters: clusters, minSize: minSize}
}

// ClusterInput is one cluster's membership, named so Compute can dispatch
// NewClusterStats calls across a worker pool while preserving each
// cluster's name and (possibly absent) externally provided centroid.
type ClusterInput struct {
	Name     string
	Reads    []string
	Centroid string // empty to compute the consensus
}

// Compute builds a Stats by running NewClusterStats for every input
// concurrently across workers goroutines (workers<=0 defaults to one),
// per §4.K: per-cluster consensus/error-count computation is fanned out
// across a bounded goroutine pool, and every result is collected before
// the aggregate Stats is returned, satisfying "the aggregate in §4.G must
// wait for all per-cluster results." A cluster that fails to build (e.g.
// no reads) is reported as an error and aborts the whole computation.
func Compute(inputs []ClusterInput, minSize, workers int) (*Stats, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]*ClusterStats, len(inputs))
	errs := make([]error, len(inputs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				in := inputs[i]
				cs, err := NewClusterStats(in.Name, in.Reads, in.Centroid)
				results[i] = cs
				errs[i] = err
			}
		}()
	}
	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return NewStats(results, minSize), nil
}

// Len is the number of clusters in the repertoire.
func (s *Stats) Len() int { return len(s.clusters) }

// eligible returns the clusters with size >= minSize (minSize<0 selects
// the Stats-wide default).
func (s *Stats) eligible(minSize int) []*ClusterStats {
	if minSize < 0 {
		minSize = s.minSize
	}
	out := make([]*ClusterStats, 0, len(s.clusters))
	for _, c := range s.clusters {
		if c.Size() >= minSize {
			out = append(out, c)
		}
	}
	return out
}

// ErrorRates computes the four estimators over clusters with size >=
// minSize (minSize<0 for the Stats-wide default), per §4.G.
func (s *Stats) ErrorRates(minSize int) ErrorRateEstimates {
	var nerrors []int
	for _, c := range s.eligible(minSize) {
		nerrors = append(nerrors, c.ErrorsByRead()...)
	}

	n := len(nerrors)
	if n == 0 {
		return ErrorRateEstimates{}
	}

	var dist []int // dist[e] = #reads with exactly e errors
	var sum int
	for _, e := range nerrors {
		sum += e
		if e >= len(dist) {
			grown := make([]int, e+1)
			copy(grown, dist)
			dist = grown
		}
		dist[e]++
	}
	f := func(i int) int {
		if i < len(dist) {
			return dist[i]
		}
		return 0
	}

	mle := float64(sum) / float64(n)

	var est ErrorRateEstimates
	est.MLE = mle

	if f(0) > 0 {
		est.FirstLen = -math.Log(float64(f(0)) / float64(n))
	} else {
		est.FirstLen = mle
	}

	if f(0) > 0 {
		est.FirstSecond = float64(f(1)) / float64(f(0))
	} else {
		est.FirstSecond = mle
	}

	if f(0) > 0 {
		est.FirstThird = math.Sqrt(2 * float64(f(2)) / float64(f(0)))
	} else {
		est.FirstThird = mle
	}

	return est
}

// ErrorRate is ErrorRates(minSize).CanonicalRate(), the single repertoire
// error-rate figure used elsewhere.
func (s *Stats) ErrorRate(minSize int) float64 {
	return s.ErrorRates(minSize).CanonicalRate()
}

// BadClusters flags, under the fixed error rate errorRate, every cluster
// with size >= minSize whose PValueUpper is below pvThreshold, per §4.G.
// Clusters are processed concurrently across workers goroutines (§4.K);
// workers <= 0 defaults to a single worker.
func (s *Stats) BadClusters(errorRate float64, minSize int, pvThreshold float64, workers int) []BadCluster {
	elig := s.eligible(minSize)
	if workers <= 0 {
		workers = 1
	}

	type slot struct {
		ok bool
		bc BadCluster
	}
	results := make([]slot, len(elig))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				c := elig[i]
				pv := c.PValueUpper(errorRate)
				if pv < pvThreshold {
					results[i] = slot{ok: true, bc: BadCluster{
						Name:      c.Name,
						Size:      c.Size(),
						MaxErrors: c.MaxError(),
						PValue:    pv,
					}}
				}
			}
		}()
	}
	for i := range elig {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var out []BadCluster
	for _, r := range results {
		if r.ok {
			out = append(out, r.bc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aimquast

import (
	"context"
	"math"

	"github.com/kortschak/aimquast/external"
	"github.com/kortschak/aimquast/match"
	"github.com/kortschak/aimquast/neighbor"
	"github.com/kortschak/aimquast/partition"
	"github.com/kortschak/aimquast/rcm"
	"github.com/kortschak/aimquast/report"
	"github.com/kortschak/aimquast/repertoire"
	"github.com/kortschak/aimquast/seqio"
)

// MatcherConfig configures the external neighbor-graph builder collaborator
// (§4.I).
type MatcherConfig struct {
	Cmd      string
	KmerSize int
	Procs    int
}

// SWGraphRunOne returns a neighbor.RunOne that invokes the external
// k-mer-indexed tau-bounded matcher via external.SWGraphMatcher/
// external.Run, varying --tau per call, per §4.D/§4.H's bidirectional and
// iterated-schedule build procedures.
func SWGraphRunOne(cfg MatcherConfig) neighbor.RunOne {
	return func(ctx context.Context, query, target string, maxTau int, outPath string) error {
		m := external.SWGraphMatcher{
			Cmd:       cfg.Cmd,
			Reference: target,
			Query:     query,
			Output:    outPath,
			KmerSize:  cfg.KmerSize,
			MaxTau:    maxTau,
			Procs:     cfg.Procs,
		}
		return external.Run(ctx, "swgraph", m, nil, nil)
	}
}

// MatchConfig configures a reference-vs-constructed RepertoireMatch
// evaluation (§4.D).
type MatchConfig struct {
	ConstructedCentroids string
	ReferenceCentroids   string
	MaxTau               int
	MinSize              int
	TrustCutoff          float64 // 0 means "unset": no saturation (+Inf)
	TrashCutoff          float64 // 0 means "unset": no saturation (-Inf)
}

// BuildMatch reads the two centroid files, runs the bidirectional
// neighbor-graph match, and builds a match.Match, per §4.A-§4.D.
func BuildMatch(ctx context.Context, runOne neighbor.RunOne, cfg MatchConfig) (*match.Match, []string, []string, error) {
	constructed, err := seqio.ReadFasta(cfg.ConstructedCentroids)
	if err != nil {
		return nil, nil, nil, err
	}
	reference, err := seqio.ReadFasta(cfg.ReferenceCentroids)
	if err != nil {
		return nil, nil, nil, err
	}

	constructedAbundances := make([]int, len(constructed))
	constructedNames := make([]string, len(constructed))
	for i, r := range constructed {
		constructedAbundances[i] = r.Mult
		constructedNames[i] = r.ClusterName()
	}
	referenceAbundances := make([]int, len(reference))
	referenceNames := make([]string, len(reference))
	for i, r := range reference {
		referenceAbundances[i] = r.Mult
		referenceNames[i] = r.ClusterName()
	}

	matched, err := neighbor.Bidirectional(ctx, runOne, cfg.ConstructedCentroids, cfg.ReferenceCentroids,
		len(constructed), len(reference), cfg.MaxTau)
	if err != nil {
		return nil, nil, nil, err
	}
	matched.Check(nil)

	trust := cfg.TrustCutoff
	if trust == 0 {
		trust = math.Inf(1)
	}
	trash := cfg.TrashCutoff
	if trash == 0 {
		trash = math.Inf(-1)
	}
	params := match.Params{MaxTau: cfg.MaxTau, TrustCutoff: trust, TrashCutoff: trash}

	m, err := match.Build(matched, referenceAbundances, constructedAbundances, params)
	if err != nil {
		return nil, nil, nil, err
	}
	return m, constructedNames, referenceNames, nil
}

// ReferenceBasedReport assembles the "reference_based" report section
// (§6): RepertoireMatch sensitivity/precision/multiplicity-median-rate at
// the fixed size threshold minSize and distance 0, plus the
// PartitionCompare clustering-similarity measures derived from the two
// RCMs over the shared read id universe.
func ReferenceBasedReport(m *match.Match, constructedRCM, referenceRCM []rcm.Record, minSize int) (*report.ReferenceBased, error) {
	x, y, err := alignLabelings(constructedRCM, referenceRCM)
	if err != nil {
		return nil, err
	}
	cmp, err := partition.New(x, y)
	if err != nil {
		return nil, err
	}

	s := float64(minSize)
	return &report.ReferenceBased{
		MinSize:                          minSize,
		Sensitivity:                      m.Sensitivity(s, 0),
		Ref2Cons:                         m.Ref2Cons(s, 0),
		ReferenceSize:                    m.ReferenceSize(s),
		Precision:                        m.Precision(s, 0),
		Cons2Ref:                         m.Cons2Ref(s, 0),
		ConstructedSize:                  m.ConstructedSize(s),
		ReferenceVsConstructedMedianRate: m.Relation.MedianRate(minSize),
		ReferenceVsConstructedMeanRate:   m.Relation.MeanRate(minSize),
		JaccardIndex:                     cmp.Jaccard(),
		FowlkesMallowsIndex:              cmp.FowlkesMallows(),
		RandIndex:                        cmp.Rand(),
		AdjustedRandIndex:                cmp.AdjustedRand(),
		ReferencePurity:                  cmp.PurityYGivenX(),
		ConstructedPurity:                cmp.PurityXGivenY(),
		NormalizedMutualInformation:      cmp.NMI(),
	}, nil
}

// alignLabelings builds the equal-length (x,y) label vectors partition.New
// expects, over the union of both RCMs' read ids, per §4.E's "given two
// read→cluster labelings over the same id universe."
func alignLabelings(constructedRCM, referenceRCM []rcm.Record) (x, y []string, err error) {
	constructedByID := make(map[string]string, len(constructedRCM))
	for _, r := range constructedRCM {
		constructedByID[r.ReadID] = r.Cluster
	}
	referenceByID := make(map[string]string, len(referenceRCM))
	for _, r := range referenceRCM {
		referenceByID[r.ReadID] = r.Cluster
	}

	seen := make(map[string]bool, len(constructedByID)+len(referenceByID))
	var ids []string
	for _, r := range constructedRCM {
		if !seen[r.ReadID] {
			seen[r.ReadID] = true
			ids = append(ids, r.ReadID)
		}
	}
	for _, r := range referenceRCM {
		if !seen[r.ReadID] {
			seen[r.ReadID] = true
			ids = append(ids, r.ReadID)
		}
	}

	x = make([]string, len(ids))
	y = make([]string, len(ids))
	for i, id := range ids {
		x[i] = constructedByID[id]
		y[i] = referenceByID[id]
	}
	return x, y, nil
}

// RepertoireConfig configures an intrinsic ClusterStats/RepertoireStats
// evaluation of one repertoire (§4.F/§4.G).
type RepertoireConfig struct {
	Reads       string
	RCM         string
	Centroids   string // optional: empty centroid per cluster computes the consensus
	MinSize     int
	PVThreshold float64
	ErrorRate   float64 // 0 means "compute the canonical rate from the data"
	Workers     int
}

// BuildRepertoireStats groups reads by their RCM assignment, builds
// per-cluster statistics concurrently (§4.K), and returns the aggregate
// Stats plus the bad-cluster list.
func BuildRepertoireStats(cfg RepertoireConfig) (*repertoire.Stats, []repertoire.BadCluster, error) {
	reads, err := seqio.ReadFasta(cfg.Reads)
	if err != nil {
		return nil, nil, err
	}
	records, err := rcm.ParseFile(cfg.RCM)
	if err != nil {
		return nil, nil, err
	}
	clusterOf := make(map[string]string, len(records))
	for _, r := range records {
		clusterOf[r.ReadID] = r.Cluster
	}

	centroidOf := make(map[string]string)
	if cfg.Centroids != "" {
		centroids, err := seqio.ReadFasta(cfg.Centroids)
		if err != nil {
			return nil, nil, err
		}
		for _, c := range centroids {
			if name := c.ClusterName(); name != "" {
				centroidOf[name] = c.Seq
			}
		}
	}

	readsByCluster := make(map[string][]string)
	var order []string
	for _, r := range reads {
		cluster := clusterOf[r.ID]
		if cluster == rcm.Unassigned {
			continue
		}
		if _, ok := readsByCluster[cluster]; !ok {
			order = append(order, cluster)
		}
		readsByCluster[cluster] = append(readsByCluster[cluster], r.Seq)
	}

	inputs := make([]repertoire.ClusterInput, 0, len(order))
	for _, name := range order {
		inputs = append(inputs, repertoire.ClusterInput{
			Name:     name,
			Reads:    readsByCluster[name],
			Centroid: centroidOf[name],
		})
	}

	stats, err := repertoire.Compute(inputs, cfg.MinSize, cfg.Workers)
	if err != nil {
		return nil, nil, err
	}

	errorRate := cfg.ErrorRate
	if errorRate == 0 {
		errorRate = stats.ErrorRate(-1)
	}
	bad := stats.BadClusters(errorRate, cfg.MinSize, cfg.PVThreshold, cfg.Workers)
	return stats, bad, nil
}

// RepertoireReportSection renders a Stats into a report.RepertoireStats
// section.
func RepertoireReportSection(s *repertoire.Stats, bad []repertoire.BadCluster, minSize int) *report.RepertoireStats {
	estimates := s.ErrorRates(-1)
	names := make([]string, len(bad))
	for i, b := range bad {
		names[i] = b.Name
	}
	return &report.RepertoireStats{
		MinSize:   minSize,
		ErrorRate: estimates.CanonicalRate(),
		ErrorRateEstimations: report.ErrorRateEstimations{
			MLE:         estimates.MLE,
			FirstLen:    estimates.FirstLen,
			FirstSecond: estimates.FirstSecond,
			FirstThird:  estimates.FirstThird,
		},
		BadClusters:   names,
		TotalClusters: s.Len(),
	}
}

// ReconstructConfig configures an RcmReconstructor run (§4.H).
type ReconstructConfig struct {
	Reads              string
	Centroids          string
	Taus               []int
	FallbackExhaustive bool
}

// Reconstruct synthesizes an RCM for reads lacking one, via rcm.Reconstruct.
func Reconstruct(ctx context.Context, runOne neighbor.RunOne, cfg ReconstructConfig) ([]rcm.Record, int, error) {
	return rcm.Reconstruct(ctx, runOne, cfg.Reads, cfg.Centroids, cfg.Taus, cfg.FallbackExhaustive, nil, nil)
}

// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// aimquast evaluates the quality of a constructed antibody repertoire
// against a reference repertoire, a pair of cluster memberships against
// each other, or the intrinsic error profile of one repertoire, selected
// by which flags are supplied.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kortschak/aimquast"
	"github.com/kortschak/aimquast/partition"
	"github.com/kortschak/aimquast/rcm"
	"github.com/kortschak/aimquast/report"
)

var (
	constructed = flag.String("constructed", "", "constructed centroid FASTA file")
	reference   = flag.String("reference", "", "reference centroid FASTA file")
	tau         = flag.Int("tau", 2, "maximum edit distance for neighbor matching")
	trust       = flag.Float64("trust", 0, "abundance at or above which a match is trusted (0 disables)")
	trash       = flag.Float64("trash", 0, "abundance below which a match is discarded (0 disables)")

	rcm1   = flag.String("rcm1", "", "first read-cluster-membership file (standalone partition comparison, or the constructed side of a match report)")
	rcm2   = flag.String("rcm2", "", "second read-cluster-membership file (standalone partition comparison, or the reference side of a match report)")
	prune1 = flag.Int("prune1", 0, "minimum cluster size to keep on the rcm1 side (0 disables)")
	prune2 = flag.Int("prune2", 0, "minimum cluster size to keep on the rcm2 side (0 disables)")

	reads      = flag.String("reads", "", "read FASTA file")
	centroids  = flag.String("centroids", "", "cluster centroid FASTA file (optional; consensus computed if absent)")
	rcmFile    = flag.String("rcm", "", "read-cluster-membership file")
	pvThresh   = flag.Float64("pv", 0.01, "p-value threshold below which a cluster is flagged")
	minSize    = flag.Int("min-size", 1, "minimum cluster size to include in a computation")
	workers    = flag.Int("workers", 4, "number of concurrent workers for per-cluster statistics")
	matcherCmd = flag.String("matcher", "swgraph", "path to the external neighbor-graph matcher")
	kmerSize   = flag.Int("kmer", 8, "k-mer size passed to the neighbor-graph matcher")
	procs      = flag.Int("procs", 1, "number of threads passed to the neighbor-graph matcher")

	out    = flag.String("out", "", "output file name (default stdout)")
	format = flag.String("format", "text", "output format with -out: text, json, or yaml (stdout is always text)")
)

func main() {
	flag.Parse()

	var rpt report.Report
	switch {
	case *constructed != "" && *reference != "":
		evaluateMatch(&rpt)
	case *rcm1 != "" && *rcm2 != "":
		evaluatePartition()
		return
	case *reads != "" && *rcmFile != "":
		evaluateRepertoire(&rpt)
	default:
		fmt.Fprintln(os.Stderr, "invalid arguments: supply -constructed/-reference, -rcm1/-rcm2, or -reads/-rcm")
		flag.Usage()
		os.Exit(1)
	}

	if err := writeReport(&rpt); err != nil {
		log.Fatalf("failed to write report: %v", err)
	}
}

func evaluateMatch(rpt *report.Report) {
	ctx := context.Background()
	runOne := aimquast.SWGraphRunOne(aimquast.MatcherConfig{
		Cmd:      *matcherCmd,
		KmerSize: *kmerSize,
		Procs:    *procs,
	})

	log.Printf("matching %q against %q", *constructed, *reference)
	m, _, _, err := aimquast.BuildMatch(ctx, runOne, aimquast.MatchConfig{
		ConstructedCentroids: *constructed,
		ReferenceCentroids:   *reference,
		MaxTau:               *tau,
		MinSize:              *minSize,
		TrustCutoff:          *trust,
		TrashCutoff:          *trash,
	})
	if err != nil {
		log.Fatalf("failed to build match: %v", err)
	}

	if *rcm1 != "" && *rcm2 != "" {
		constructedRCM, err := rcm.ParseFile(*rcm1)
		if err != nil {
			log.Fatalf("failed to read %q: %v", *rcm1, err)
		}
		referenceRCM, err := rcm.ParseFile(*rcm2)
		if err != nil {
			log.Fatalf("failed to read %q: %v", *rcm2, err)
		}
		rb, err := aimquast.ReferenceBasedReport(m, constructedRCM, referenceRCM, *minSize)
		if err != nil {
			log.Fatalf("failed to assemble reference-based report: %v", err)
		}
		rpt.ReferenceBased = rb
		return
	}

	s := float64(*minSize)
	rpt.ReferenceBased = &report.ReferenceBased{
		MinSize:                          *minSize,
		Sensitivity:                      m.Sensitivity(s, 0),
		Ref2Cons:                         m.Ref2Cons(s, 0),
		ReferenceSize:                    m.ReferenceSize(s),
		Precision:                        m.Precision(s, 0),
		Cons2Ref:                         m.Cons2Ref(s, 0),
		ConstructedSize:                  m.ConstructedSize(s),
		ReferenceVsConstructedMedianRate: m.Relation.MedianRate(*minSize),
		ReferenceVsConstructedMeanRate:   m.Relation.MeanRate(*minSize),
	}
}

func evaluatePartition() {
	log.Printf("comparing %q against %q", *rcm1, *rcm2)
	a, err := rcm.ParseFile(*rcm1)
	if err != nil {
		log.Fatalf("failed to read %q: %v", *rcm1, err)
	}
	b, err := rcm.ParseFile(*rcm2)
	if err != nil {
		log.Fatalf("failed to read %q: %v", *rcm2, err)
	}
	if len(a) != len(b) {
		log.Fatalf("rcm files cover different numbers of reads: %d vs %d", len(a), len(b))
	}

	x := make([]string, len(a))
	y := make([]string, len(b))
	for i := range a {
		x[i] = a[i].Cluster
		y[i] = b[i].Cluster
	}

	cmp, err := partition.New(x, y)
	if err != nil {
		log.Fatalf("failed to compare partitions: %v", err)
	}
	if *prune1 > 0 || *prune2 > 0 {
		cmp.Prune(*prune1, *prune2)
	}

	fmt.Printf("Rand index:\t\t\t%0.4f\n", cmp.Rand())
	fmt.Printf("Adjusted Rand index:\t\t%0.4f\n", cmp.AdjustedRand())
	fmt.Printf("Fowlkes-Mallows index:\t\t%0.4f\n", cmp.FowlkesMallows())
	fmt.Printf("Jaccard index:\t\t\t%0.4f\n", cmp.Jaccard())
	fmt.Printf("Normalized mutual information:\t%0.4f\n", cmp.NMI())
}

func evaluateRepertoire(rpt *report.Report) {
	log.Printf("computing repertoire statistics for %q", *reads)
	stats, bad, err := aimquast.BuildRepertoireStats(aimquast.RepertoireConfig{
		Reads:       *reads,
		RCM:         *rcmFile,
		Centroids:   *centroids,
		MinSize:     *minSize,
		PVThreshold: *pvThresh,
		Workers:     *workers,
	})
	if err != nil {
		log.Fatalf("failed to compute repertoire statistics: %v", err)
	}
	rpt.ReferenceStats = aimquast.RepertoireReportSection(stats, bad, *minSize)
}

func writeReport(rpt *report.Report) error {
	if *out == "" {
		os.Stdout.WriteString(rpt.Text())
		return nil
	}
	switch *format {
	case "json":
		return report.WriteJSON(*out, rpt)
	case "yaml":
		return report.WriteYAML(*out, rpt)
	default:
		return report.WriteText(*out, rpt)
	}
}

// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report assembles the aggregate evaluation record and renders it
// as text, JSON, or YAML (§4.J of the specification), grounded on Report
// in the original implementation.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReferenceBased mirrors the "reference_based" top-level key: the
// RepertoireMatch and PartitionCompare measures at a fixed size
// threshold, per §6.
type ReferenceBased struct {
	MinSize                          int     `json:"min_size" yaml:"min_size"`
	Sensitivity                      float64 `json:"sensitivity" yaml:"sensitivity"`
	Ref2Cons                         int     `json:"ref2cons" yaml:"ref2cons"`
	ReferenceSize                    int     `json:"reference_size" yaml:"reference_size"`
	Precision                        float64 `json:"precision" yaml:"precision"`
	Cons2Ref                         int     `json:"cons2ref" yaml:"cons2ref"`
	ConstructedSize                  int     `json:"constructed_size" yaml:"constructed_size"`
	ReferenceVsConstructedMedianRate float64 `json:"reference_vs_constructed_size_median_rate" yaml:"reference_vs_constructed_size_median_rate"`
	ReferenceVsConstructedMeanRate   float64 `json:"reference_vs_constructed_size_mean_rate" yaml:"reference_vs_constructed_size_mean_rate"`
	JaccardIndex                     float64 `json:"jaccard_index" yaml:"jaccard_index"`
	FowlkesMallowsIndex              float64 `json:"fowlkes_mallows_index" yaml:"fowlkes_mallows_index"`
	RandIndex                        float64 `json:"rand_index" yaml:"rand_index"`
	AdjustedRandIndex                float64 `json:"adjusted_rand_index" yaml:"adjusted_rand_index"`
	ReferencePurity                  float64 `json:"reference_purity" yaml:"reference_purity"`
	ConstructedPurity                float64 `json:"constructed_purity" yaml:"constructed_purity"`
	NormalizedMutualInformation      float64 `json:"normalized_mutual_information" yaml:"normalized_mutual_information"`
}

// ErrorRateEstimations mirrors the "error_rate_estimations" nested key of
// "constructed_stats"/"reference_stats": the four per-read Poisson-mean
// estimators of §4.G.
type ErrorRateEstimations struct {
	MLE         float64 `json:"mle" yaml:"mle"`
	FirstLen    float64 `json:"first_len" yaml:"first_len"`
	FirstSecond float64 `json:"first_second" yaml:"first_second"`
	FirstThird  float64 `json:"first_third" yaml:"first_third"`
}

// RepertoireStats mirrors the "reference_stats"/"constructed_stats"
// top-level keys: the intrinsic error-profile summary of one repertoire.
type RepertoireStats struct {
	MinSize              int                  `json:"min_size" yaml:"min_size"`
	ErrorRate            float64              `json:"error_rate" yaml:"error_rate"`
	ErrorRateEstimations ErrorRateEstimations `json:"error_rate_estimations" yaml:"error_rate_estimations"`
	BadClusters          []string             `json:"bad_clusters" yaml:"bad_clusters"`
	TotalClusters        int                  `json:"total_clusters" yaml:"total_clusters"`
}

// Report is the aggregate record produced by one evaluation run: up to
// three independent streams, any of which may be absent depending on
// which inputs were supplied, per §2's data-flow table.
type Report struct {
	ReferenceBased   *ReferenceBased  `json:"reference_based,omitempty" yaml:"reference_based,omitempty"`
	ConstructedStats *RepertoireStats `json:"constructed_stats,omitempty" yaml:"constructed_stats,omitempty"`
	ReferenceStats   *RepertoireStats `json:"reference_stats,omitempty" yaml:"reference_stats,omitempty"`
}

// Text renders the report the way the original implementation's __str__
// does: a fixed, human-readable summary with the same section order and
// labels.
func (r *Report) Text() string {
	var b strings.Builder
	if rb := r.ReferenceBased; rb != nil {
		fmt.Fprintf(&b, "Reference-based quality measures (with size threshold = %d):\n", rb.MinSize)
		fmt.Fprintf(&b, "\tSensitivity:\t\t\t\t%0.4f (%d / %d)\n", rb.Sensitivity, rb.Ref2Cons, rb.ReferenceSize)
		fmt.Fprintf(&b, "\tPrecision:\t\t\t\t%0.4f (%d / %d)\n", rb.Precision, rb.Cons2Ref, rb.ConstructedSize)
		fmt.Fprintf(&b, "\tMultiplicity median rate:\t\t%0.4f\n", rb.ReferenceVsConstructedMedianRate)
		fmt.Fprintf(&b, "\tMultiplicity mean rate:\t\t\t%0.4f\n", rb.ReferenceVsConstructedMeanRate)
		b.WriteString("\tClustering similarity measures:\n")
		fmt.Fprintf(&b, "\t\tJaccard index:\t\t\t%0.4f\n", rb.JaccardIndex)
		fmt.Fprintf(&b, "\t\tFowlkes-Mallows index:\t\t%0.4f\n", rb.FowlkesMallowsIndex)
		fmt.Fprintf(&b, "\t\tRand index:\t\t\t%0.4f\n", rb.RandIndex)
		fmt.Fprintf(&b, "\t\tAdjusted Rand index:\t\t%0.4f\n", rb.AdjustedRandIndex)
		fmt.Fprintf(&b, "\t\tNormalized mutual information:\t%0.4f\n", rb.NormalizedMutualInformation)
		fmt.Fprintf(&b, "\t\tReference purity:\t\t%0.4f\n", rb.ReferencePurity)
		fmt.Fprintf(&b, "\t\tConstructed purity:\t\t%0.4f\n", rb.ConstructedPurity)
		b.WriteString("\n")
	}
	if st := r.ReferenceStats; st != nil {
		writeRepertoireStats(&b, "Reference repertoire statistics:\n", st)
	}
	if st := r.ConstructedStats; st != nil {
		writeRepertoireStats(&b, "Constructed repertoire statistics:\n", st)
	}
	return b.String()
}

func writeRepertoireStats(b *strings.Builder, heading string, st *RepertoireStats) {
	b.WriteString(heading)
	fmt.Fprintf(b, "\tError rate:\t\t\t\t%0.4f\n", st.ErrorRate)
	fmt.Fprintf(b, "\tError rate estimations:\n")
	fmt.Fprintf(b, "\t\tMLE:\t\t\t\t%0.4f\n", st.ErrorRateEstimations.MLE)
	fmt.Fprintf(b, "\t\tFirst/len:\t\t\t%0.4f\n", st.ErrorRateEstimations.FirstLen)
	fmt.Fprintf(b, "\t\tFirst/second:\t\t\t%0.4f\n", st.ErrorRateEstimations.FirstSecond)
	fmt.Fprintf(b, "\t\tFirst/third:\t\t\t%0.4f\n", st.ErrorRateEstimations.FirstThird)
	fmt.Fprintf(b, "\tBad clusters (%d of %d):\t\t%v\n", len(st.BadClusters), st.TotalClusters, st.BadClusters)
	b.WriteString("\n")
}

// WriteText writes r.Text() to path.
func WriteText(path string, r *Report) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, r.Text())
		return err
	})
}

// WriteJSON writes r as JSON indented by four spaces to path. Keys appear
// in struct field order, not sorted.
func WriteJSON(path string, r *Report) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(r)
	})
}

// WriteYAML writes r as YAML to path.
func WriteYAML(path string, r *Report) error {
	return writeFile(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(r)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %q: %w", path, err)
	}
	defer f.Close()
	return write(f)
}

// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repertoire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildClusters(t *testing.T) []*ClusterStats {
	t.Helper()
	a, err := NewClusterStats("c1", []string{"AAAA", "AAAA", "AAAA", "AAAA", "AAAA"}, "AAAA")
	require.NoError(t, err)
	b, err := NewClusterStats("c2", []string{"AAAA", "AAAT", "ATAA", "AAAA", "AAAA"}, "AAAA")
	require.NoError(t, err)
	return []*ClusterStats{a, b}
}

func TestErrorRatesComputeDirectlyWhenErrorFreeReadsExist(t *testing.T) {
	clusters := buildClusters(t)
	s := NewStats(clusters, 1)

	rates := s.ErrorRates(-1)
	assert.GreaterOrEqual(t, rates.MLE, 0.0)
	// cluster c1 contributes 5 error-free reads, so f(0) > 0 and the
	// canonical rate is computed directly, not a fallback: f = [8, 2], so
	// first_third is sqrt(2*0/8) = 0 while the mle fallback would be 0.2.
	assert.Equal(t, rates.FirstThird, rates.CanonicalRate())
	assert.InDelta(t, 0.2, rates.MLE, 1e-9)
	assert.Equal(t, 0.0, rates.FirstThird)
}

func TestErrorRateRespectsMinSizeFilter(t *testing.T) {
	clusters := buildClusters(t)
	s := NewStats(clusters, 10) // both clusters (size 5) excluded

	rates := s.ErrorRates(-1)
	assert.Equal(t, ErrorRateEstimates{}, rates)
}

func TestBadClustersFlagsImplausibleMaxError(t *testing.T) {
	// A cluster whose reads pile 50 mismatches onto one position, under a
	// small assumed error rate, has an implausibly large max_error: its
	// upper p-value falls below the threshold and it is flagged.
	reads := make([]string, 200)
	for i := range reads {
		reads[i] = "AAAAAAAAAA"
		if i < 50 {
			reads[i] = "TAAAAAAAAA"
		}
	}
	c, err := NewClusterStats("overmerged", reads, "AAAAAAAAAA")
	require.NoError(t, err)

	s := NewStats([]*ClusterStats{c}, 1)
	bad := s.BadClusters(0.01, 1, 0.01, 4)
	require.Len(t, bad, 1)
	assert.Equal(t, "overmerged", bad[0].Name)
}

func TestBadClustersEmptyWhenNothingQualifies(t *testing.T) {
	clusters := buildClusters(t)
	s := NewStats(clusters, 1)
	bad := s.BadClusters(0.01, 1, 1e-12, 2)
	assert.Empty(t, bad)
}

func TestComputeBuildsAllClustersConcurrently(t *testing.T) {
	inputs := []ClusterInput{
		{Name: "c1", Reads: []string{"AAAA", "AAAA", "AATA"}},
		{Name: "c2", Reads: []string{"TTTT", "TTTT"}, Centroid: "TTTT"},
		{Name: "c3", Reads: []string{"GGGG"}},
	}
	s, err := Compute(inputs, 1, 3)
	require.NoError(t, err)
	require.Len(t, s.clusters, 3)

	byName := make(map[string]*ClusterStats)
	for _, c := range s.clusters {
		byName[c.Name] = c
	}
	assert.Equal(t, "AAAA", byName["c1"].Centroid)
	assert.Equal(t, "TTTT", byName["c2"].Centroid)
	assert.Equal(t, 0, byName["c2"].MaxError())
}

func TestComputePropagatesPerClusterErrors(t *testing.T) {
	inputs := []ClusterInput{
		{Name: "empty", Reads: nil},
	}
	_, err := Compute(inputs, 1, 2)
	assert.Error(t, err)
}

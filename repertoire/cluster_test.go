// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repertoire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsensusMajorityVoteWithAlphabetTieBreak(t *testing.T) {
	c, err := Consensus([]string{"GAAA", "AAAC", "AATA"})
	require.NoError(t, err)
	assert.Equal(t, "AAAA", c)
}

func TestConsensusOnEmptyReadsIsError(t *testing.T) {
	_, err := Consensus(nil)
	assert.Error(t, err)
}

func TestClusterStatsComputesConsensusWhenCentroidEmpty(t *testing.T) {
	cs, err := NewClusterStats("c1", []string{"GAAA", "AAAC", "AATA"}, "")
	require.NoError(t, err)
	assert.Equal(t, "AAAA", cs.Centroid)
	assert.Equal(t, 3, cs.Size())
}

func TestClusterStatsErrorCountsAgainstExplicitCentroid(t *testing.T) {
	cs, err := NewClusterStats("c1", []string{"AAAA", "AAAA", "ACAA"}, "AAAA")
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0}, cs.ErrorsByRead()[:2])
	assert.Equal(t, 1, cs.ErrorsByRead()[2])
	assert.Equal(t, []int{0, 1, 0, 0}, cs.ErrorsByPosition())
	assert.Equal(t, 1, cs.MaxError())
}

func TestPValuesSanityUnderNullModel(t *testing.T) {
	// 100 reads of length 300 that all equal the centroid (max_error 0):
	// pvalue_upper is 1 - F(-1) = 1, since the maximum is always >= 0, and
	// every p-value stays within [0, 1].
	reads := make([]string, 100)
	centroidSeq := make([]byte, 300)
	for i := range centroidSeq {
		centroidSeq[i] = 'A'
	}
	for i := range reads {
		reads[i] = string(centroidSeq)
	}
	cs, err := NewClusterStats("c1", reads, string(centroidSeq))
	require.NoError(t, err)
	assert.Equal(t, 0, cs.MaxError())

	pvUpper := cs.PValueUpper(0.3)
	assert.GreaterOrEqual(t, pvUpper, 0.0)
	assert.LessOrEqual(t, pvUpper, 1.0)

	pvLower := cs.PValueLower(0.3)
	assert.GreaterOrEqual(t, pvLower, 0.0)
	assert.LessOrEqual(t, pvLower, 1.0)

	both := cs.PValueBoth(0.3)
	assert.LessOrEqual(t, both, 2*pvUpper+1e-9)
}

func TestMaxPPFIsNondecreasingInQ(t *testing.T) {
	cs, err := NewClusterStats("c1", []string{"AAAA", "AAAA", "AAAA"}, "AAAA")
	require.NoError(t, err)

	low := cs.MaxPPF(0.1, 100, 0.3)
	high := cs.MaxPPF(0.9, 100, 0.3)
	assert.LessOrEqual(t, low, high)
}

// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdenticalPartitionsScorePerfect(t *testing.T) {
	x := []string{"a", "a", "b", "b"}
	y := []string{"1", "1", "2", "2"}
	c, err := New(x, y)
	require.NoError(t, err)

	assert.Equal(t, 1.0, c.Rand())
	assert.Equal(t, 1.0, c.AdjustedRand())
	assert.Equal(t, 1.0, c.FowlkesMallows())
	assert.Equal(t, 1.0, c.Jaccard())
	assert.Equal(t, 1.0, c.PurityXGivenY())
	assert.Equal(t, 1.0, c.PurityYGivenX())
	assert.InDelta(t, 1.0, c.NMI(), 1e-9)
}

func TestDisjointPartitionsScoreImperfect(t *testing.T) {
	x := []string{"a", "a", "b", "b"}
	y := []string{"1", "2", "1", "2"}
	c, err := New(x, y)
	require.NoError(t, err)

	assert.Less(t, c.Rand(), 1.0)
	assert.Less(t, c.AdjustedRand(), 1.0)
}

func TestUnassignedPositionsNeverMatchAcrossSides(t *testing.T) {
	x := []string{Unassigned, Unassigned, "b"}
	y := []string{Unassigned, Unassigned, "2"}
	c, err := New(x, y)
	require.NoError(t, err)

	// Each unassigned position is uniquely renamed per side, so the two
	// unassigned x-positions never land in the same contingency cell as
	// each other, nor as the two unassigned y-positions.
	votes := c.VotesX()
	for _, counts := range votes {
		for _, n := range counts {
			assert.LessOrEqual(t, n, 1)
		}
	}
}

func TestPruneMasksSmallClustersAndInvalidatesCache(t *testing.T) {
	x := []string{"a", "a", "a", "b", "b"}
	y := []string{"1", "1", "1", "1", "2"}
	c, err := New(x, y)
	require.NoError(t, err)

	before := c.Rand() // 0.6
	// Cluster "b" (size 2) is below 3 and is split into two unassigned
	// singletons; "2" (size 1) is masked too but stays a singleton.
	c.Prune(3, 3)
	after := c.Rand() // 0.7

	assert.NotEqual(t, before, after)
}

func TestVotesXPadsToLengthTwo(t *testing.T) {
	x := []string{"a", "a"}
	y := []string{"1", "1"}
	c, err := New(x, y)
	require.NoError(t, err)

	votes := c.VotesX()
	require.Contains(t, votes, "a")
	assert.Len(t, votes["a"], 2)
	assert.Equal(t, []int{2, 0}, votes["a"])
}

func TestMismatchedLengthsRejected(t *testing.T) {
	_, err := New([]string{"a"}, []string{"1", "2"})
	assert.Error(t, err)
}

// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neighbor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBuildsForwardAndReverseAdjacency(t *testing.T) {
	const file = "3 4 plain\n" +
		"5  1 0  2 1\n" +
		"2  1 1\n" +
		"1\n"
	ix, err := Parse(strings.NewReader(file), 2, 2)
	require.NoError(t, err)

	require.Len(t, ix.Fwd, 3)
	assert.Equal(t, []Edge{{To: 0, Dist: 0}, {To: 1, Dist: 1}}, ix.Fwd[0])
	assert.Equal(t, []Edge{{To: 0, Dist: 1}}, ix.Fwd[1])
	assert.Empty(t, ix.Fwd[2])

	assert.Equal(t, []Edge{{To: 0, Dist: 0}, {To: 1, Dist: 1}}, ix.Rev[0])
	assert.Equal(t, []Edge{{To: 0, Dist: 1}}, ix.Rev[1])

	assert.Equal(t, []int{5, 2, 1}, ix.Abundances)
	assert.Equal(t, 3, ix.NQuery())
	assert.Equal(t, 2, ix.NTarget())
}

func TestParseRejectsDistanceAboveMaxTau(t *testing.T) {
	const file = "1 1 plain\n1  1 5\n"
	_, err := Parse(strings.NewReader(file), 1, 2)
	assert.Error(t, err)
}

func TestParseRejectsTargetIndexOutOfRange(t *testing.T) {
	const file = "1 1 plain\n1  5 0\n"
	_, err := Parse(strings.NewReader(file), 1, 2)
	assert.Error(t, err)
}

func TestParseRejectsRowCountMismatch(t *testing.T) {
	const file = "2 1 plain\n1  1 0\n"
	_, err := Parse(strings.NewReader(file), 1, 2)
	assert.Error(t, err)
}

func TestParseRejectsEmptyFile(t *testing.T) {
	_, err := Parse(strings.NewReader(""), 1, 2)
	assert.Error(t, err)
}

// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neighbor

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckFlagsDistanceZeroMultiplesOnBothSides(t *testing.T) {
	// query 0 matches two targets at distance 0: a multiple on the query
	// side. query 1 matches a single target at distance 0 and another at
	// distance 1, so it is not flagged.
	fwd := [][]Edge{
		{{To: 0, Dist: 0}, {To: 1, Dist: 0}},
		{{To: 0, Dist: 0}, {To: 1, Dist: 1}},
	}
	// target 0 matches both queries at distance 0: a multiple on the
	// target side. target 1 matches only query 0 at distance 0.
	rev := [][]Edge{
		{{To: 0, Dist: 0}, {To: 1, Dist: 0}},
		{{To: 0, Dist: 0}},
	}
	m := &Matched{Index: &Index{Fwd: fwd, Rev: rev, MaxTau: 1}}

	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	queryMulti, targetMulti := m.Check(logger)

	assert.Equal(t, map[int][]int{0: {0, 1}}, queryMulti)
	assert.Equal(t, map[int][]int{0: {0, 1}}, targetMulti)
	assert.Contains(t, buf.String(), "query 0 matched at distance 0 on several partners")
	assert.Contains(t, buf.String(), "target 0 matched at distance 0 on several partners")
}

func TestCheckReturnsNoDiagnosticsWhenEveryMatchIsUnique(t *testing.T) {
	fwd := [][]Edge{{{To: 0, Dist: 0}}}
	rev := [][]Edge{{{To: 0, Dist: 0}}}
	m := &Matched{Index: &Index{Fwd: fwd, Rev: rev, MaxTau: 0}}

	queryMulti, targetMulti := m.Check(nil)
	assert.Empty(t, queryMulti)
	assert.Empty(t, targetMulti)
}

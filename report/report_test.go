// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sample() *Report {
	return &Report{
		ReferenceBased: &ReferenceBased{
			MinSize:       5,
			Sensitivity:   0.9,
			Ref2Cons:      90,
			ReferenceSize: 100,
		},
		ReferenceStats: &RepertoireStats{MinSize: 5, ErrorRate: 0.01},
	}
}

func TestTextIncludesOnlyPresentSections(t *testing.T) {
	r := sample()
	text := r.Text()
	assert.Contains(t, text, "Reference-based quality measures")
	assert.Contains(t, text, "Reference repertoire statistics")
	assert.NotContains(t, text, "Constructed repertoire statistics")
}

func TestWriteJSONRoundTrips(t *testing.T) {
	r := sample()
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteJSON(path, r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"reference_based\"")
	assert.NotContains(t, string(data), "constructed_stats")
}

func TestWriteYAMLRoundTrips(t *testing.T) {
	r := sample()
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, WriteYAML(path, r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "reference_based")
	assert.NotContains(t, decoded, "constructed_stats")
}

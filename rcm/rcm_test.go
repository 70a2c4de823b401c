// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rcm

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortschak/aimquast/seqio"
)

func TestParseWriteRoundTrip(t *testing.T) {
	records := []Record{
		{ReadID: "r1", Cluster: "clusterA"},
		{ReadID: "r2", Cluster: Unassigned},
		{ReadID: "r3", Cluster: "clusterB"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, records))

	got, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestParseBareReadIDIsUnassigned(t *testing.T) {
	got, err := Parse(bytes.NewBufferString("read_without_cluster\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Unassigned, got[0].Cluster)
}

// hammingMatcher is a brute-force in-memory stand-in for the external
// neighbor-graph builder: it computes exact Hamming distance between
// equal-length query and target sequences and emits a neighbor file.
func hammingMatcher(t *testing.T) func(ctx context.Context, query, target string, maxTau int, outPath string) error {
	t.Helper()
	return func(ctx context.Context, query, target string, maxTau int, outPath string) error {
		qrecs, err := seqio.ReadFasta(query)
		if err != nil {
			return err
		}
		trecs, err := seqio.ReadFasta(target)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		fmtHeader := func() { buf.WriteString(itoa(len(qrecs)) + " 0 FORMAT\n") }
		fmtHeader()
		for _, q := range qrecs {
			buf.WriteString("1")
			for j, tg := range trecs {
				d := hamming(q.Seq, tg.Seq)
				if d <= maxTau {
					buf.WriteString(" " + itoa(j+1) + " " + itoa(d))
				}
			}
			buf.WriteString("\n")
		}
		return os.WriteFile(outPath, buf.Bytes(), 0o644)
	}
}

func hamming(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	d := 0
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			d++
		}
	}
	d += abs(len(a) - len(b))
	return d
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}

func TestReconstructAssignsNearestCentroidByIncreasingTau(t *testing.T) {
	dir := t.TempDir()
	readsPath := filepath.Join(dir, "reads.fa")
	centroidsPath := filepath.Join(dir, "centroids.fa")

	require.NoError(t, seqio.WriteFasta(readsPath, []seqio.Record{
		{ID: "r1", Seq: "AAAA"}, // exact match to A
		{ID: "r2", Seq: "TTTT"}, // exact match to B
		{ID: "r3", Seq: "AAAT"}, // distance 1 from A, distance 3 from B
	}))
	require.NoError(t, seqio.WriteFasta(centroidsPath, []seqio.Record{
		{ID: "cluster___A___size___3", Seq: "AAAA"},
		{ID: "cluster___B___size___2", Seq: "TTTT"},
	}))

	rng := rand.New(rand.NewSource(42))
	recs, uncertain, err := Reconstruct(context.Background(), hammingMatcher(t), readsPath, centroidsPath,
		[]int{1, 2}, false, rng, nil)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	byID := make(map[string]string)
	for _, r := range recs {
		byID[r.ReadID] = r.Cluster
	}
	assert.Equal(t, "A", byID["r1"])
	assert.Equal(t, "B", byID["r2"])
	assert.Equal(t, "A", byID["r3"])
	assert.Equal(t, 0, uncertain)
}

func TestReconstructLeavesUnreachableReadsUnassigned(t *testing.T) {
	dir := t.TempDir()
	readsPath := filepath.Join(dir, "reads.fa")
	centroidsPath := filepath.Join(dir, "centroids.fa")

	require.NoError(t, seqio.WriteFasta(readsPath, []seqio.Record{
		{ID: "far", Seq: "GGGG"},
	}))
	require.NoError(t, seqio.WriteFasta(centroidsPath, []seqio.Record{
		{ID: "cluster___A___size___1", Seq: "AAAA"},
	}))

	recs, _, err := Reconstruct(context.Background(), hammingMatcher(t), readsPath, centroidsPath,
		[]int{1}, false, nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, Unassigned, recs[0].Cluster)
}

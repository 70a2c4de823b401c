// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package seqio reads the FASTA sequence files that carry aimquast's
// reads and cluster centroids, and parses the centroid header grammar
// described in the neighbor-file and centroid-FASTA sections of the
// specification this module implements.
package seqio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Record is a single sequence record: an identifier, its nucleotide
// sequence, and the multiplicity parsed from a centroid header, if any.
type Record struct {
	ID   string
	Seq  string
	Mult int // 1 when the header carries no size field
}

// ClusterName is the cluster token parsed from a centroid header, or ""
// when the header does not follow the cluster___name___size___n grammar.
func (r Record) ClusterName() string {
	name, _, ok := ParseClusterHeader(r.ID)
	if !ok {
		return ""
	}
	return name
}

// ReadFasta reads every record in the FASTA file at path.
func ReadFasta(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seqio: open %q: %w", path, err)
	}
	defer f.Close()
	return ReadFastaFrom(f, path)
}

// ReadFastaFrom reads every record from r. name is used only in error
// messages (typically the source file path).
func ReadFastaFrom(r io.Reader, name string) ([]Record, error) {
	fr := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant))
	sc := seqio.NewScanner(fr)

	var recs []Record
	for sc.Next() {
		s, ok := sc.Seq().(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("seqio: %q: unexpected sequence type", name)
		}
		cluster, mult, ok := ParseClusterHeader(s.ID)
		if !ok {
			mult = 1
		}
		_ = cluster
		recs = append(recs, Record{
			ID:   s.ID,
			Seq:  lettersToString(s.Seq),
			Mult: mult,
		})
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("seqio: %q: %w", name, err)
	}
	return recs, nil
}

// WriteFasta writes records to path in FASTA format, one ">ID\nSEQ\n"
// pair per record.
func WriteFasta(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("seqio: create %q: %w", path, err)
	}
	defer f.Close()
	return WriteFastaTo(f, records)
}

// WriteFastaTo writes records to w in FASTA format.
func WriteFastaTo(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := fmt.Fprintf(bw, ">%s\n%s\n", r.ID, r.Seq); err != nil {
			return fmt.Errorf("seqio: write record %q: %w", r.ID, err)
		}
	}
	return bw.Flush()
}

func lettersToString(l alphabet.Letters) string {
	b := make([]byte, len(l))
	for i, c := range l {
		b[i] = byte(c)
	}
	return string(b)
}

const (
	clusterTag = "cluster"
	sizeTag    = "size"
	sep        = "___"
)

// ParseClusterHeader parses a centroid FASTA header of the form
// "cluster___<name>___size___<int>" into its cluster name and declared
// multiplicity. The size field is optional; when absent, ok is still true
// and mult is reported as 1, per the centroid FASTA header contract in the
// specification ("the parser must tolerate headers lacking the size
// field, treating multiplicity as 1").
func ParseClusterHeader(header string) (name string, mult int, ok bool) {
	fields := strings.Split(header, sep)
	if len(fields) < 2 || fields[0] != clusterTag {
		return "", 0, false
	}
	name = fields[1]
	if len(fields) >= 4 && fields[2] == sizeTag {
		n, err := strconv.Atoi(fields[3])
		if err == nil && n >= 1 {
			return name, n, true
		}
	}
	return name, 1, true
}

// FormatClusterHeader is the inverse of ParseClusterHeader.
func FormatClusterHeader(name string, mult int) string {
	return fmt.Sprintf("%s%s%s%s%s%s%d", clusterTag, sep, name, sep, sizeTag, sep, mult)
}

// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package external

import (
	"errors"
	"os/exec"
	"text/template"

	bioext "github.com/biogo/external"
)

// ErrMissingRequired is returned by BuildCommand when a required argument
// is unset, mirroring blasr.ErrMissingRequired.
var ErrMissingRequired = errors.New("external: missing required argument")

// SWGraphMatcher builds the command line for the external k-mer-indexed,
// tau-bounded neighbor-graph builder described in the specification's
// external-interfaces section. It plays the role loopy's BLASR struct
// plays for the aligner: a thin, tagged parameter struct built into an
// exec.Cmd via github.com/biogo/external.
type SWGraphMatcher struct {
	// Cmd is the path to the matcher binary; "swgraph" if unset.
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}swgraph{{end}}"`

	// Reference is the target sequence set (-r).
	Reference string `buildarg:"{{if .}}-r{{split}}{{.}}{{end}}"`
	// Query is the query sequence set (-i).
	Query string `buildarg:"{{if .}}-i{{split}}{{.}}{{end}}"`
	// Output is the neighbor-file path (-o).
	Output string `buildarg:"{{if .}}-o{{split}}{{.}}{{end}}"`

	// KmerSize is the k-mer index size (-k).
	KmerSize int `buildarg:"{{if .}}-k{{split}}{{.}}{{end}}"`
	// MaxTau is the bounded edit-distance threshold (--tau).
	MaxTau int `buildarg:"{{if .}}--tau{{split}}{{.}}{{end}}"`
	// Procs is the number of worker threads the builder may use, per
	// the specification's concurrency model ("the external neighbor-graph
	// builder, which may be invoked with a worker-count parameter").
	Procs int `buildarg:"{{if .}}--nproc{{split}}{{.}}{{end}}"`
}

// BuildCommand returns an exec.Cmd built from the parameters in m.
func (m SWGraphMatcher) BuildCommand() (*exec.Cmd, error) {
	if m.Reference == "" || m.Query == "" || m.Output == "" {
		return nil, ErrMissingRequired
	}
	cl := bioext.Must(bioext.Build(m, template.FuncMap{}))
	return exec.Command(cl[0], cl[1:]...), nil
}

// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package external

import (
	"os/exec"
	"text/template"

	bioext "github.com/biogo/external"
)

// ConsensusBuilder builds the command line for the external consensus
// builder (the per-cluster consensus/centroid constructor named as an
// external collaborator in the specification's purpose-and-scope section).
type ConsensusBuilder struct {
	// Cmd is the path to the consensus-builder binary; "consensus" if
	// unset.
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}consensus{{end}}"`

	// Reads is the path to the initial read set (-i).
	Reads string `buildarg:"{{if .}}-i{{split}}{{.}}{{end}}"`
	// RCM is the read-to-cluster map driving grouping (-R).
	RCM string `buildarg:"{{if .}}-R{{split}}{{.}}{{end}}"`
	// Output is the path the built centroid FASTA is written to (-o).
	Output string `buildarg:"{{if .}}-o{{split}}{{.}}{{end}}"`
}

// BuildCommand returns an exec.Cmd built from the parameters in c.
func (c ConsensusBuilder) BuildCommand() (*exec.Cmd, error) {
	if c.Reads == "" || c.RCM == "" || c.Output == "" {
		return nil, ErrMissingRequired
	}
	cl := bioext.Must(bioext.Build(c, template.FuncMap{}))
	return exec.Command(cl[0], cl[1:]...), nil
}

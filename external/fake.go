// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package external

import (
	"io"
	"os"
	"os/exec"
)

// Fake is an in-memory collaborator for tests, per the design note that
// "tests substitute in-memory fakes that emit precomputed neighbor files."
// BuildCommand writes Content to Output itself and returns a "true" no-op
// command, so Run still starts and waits on a child process and the rest
// of the pipeline (temp-file lifecycle, exit-code handling) takes the same
// path it would for a real external tool.
type Fake struct {
	// Output is the path the fake's content is written to.
	Output string
	// Content is the literal neighbor-file (or RCM, or FASTA) content
	// to write.
	Content []byte
}

// BuildCommand writes f.Content to f.Output immediately and returns a
// command running "true", which does nothing; the command exists to
// satisfy the Tool interface used by Run.
func (f Fake) BuildCommand() (*exec.Cmd, error) {
	if err := os.WriteFile(f.Output, f.Content, 0o644); err != nil {
		return nil, err
	}
	cmd := exec.Command("true")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd, nil
}

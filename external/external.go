// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package external models the neighbor-graph builder and the consensus
// builder as pluggable, single-operation collaborators, the way loopy's
// blasr package models the BLASR aligner: a parameter struct tagged with
// buildarg templates, built into an exec.Cmd by github.com/biogo/external.
package external

import (
	"context"
	"os"
	"os/exec"

	"github.com/kortschak/aimquast"
)

// Tool is a single external collaborator: something that can build the
// command line for one invocation. Both the neighbor-graph builder and the
// consensus builder implement it.
type Tool interface {
	BuildCommand() (*exec.Cmd, error)
}

// Run executes tool, blocking until it completes (the only suspension
// point the specification defines for invoking an external collaborator).
// A non-zero exit is reported as an ExternalToolFailed error; context
// cancellation signals the child process and reports a Canceled error.
// Stdout and stderr, if non-nil, receive the child's output.
func Run(ctx context.Context, name string, tool Tool, stdout, stderr *os.File) error {
	cmd, err := tool.BuildCommand()
	if err != nil {
		return aimquast.Precondition(name, "building command: %v", err)
	}
	if stdout != nil {
		cmd.Stdout = stdout
	}
	if stderr != nil {
		cmd.Stderr = stderr
	}

	if err := cmd.Start(); err != nil {
		return aimquast.ExternalFailed(name, cmd.Args, -1, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return aimquast.ErrCanceled
	case err := <-done:
		if err == nil {
			return nil
		}
		exitCode := -1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		return aimquast.ExternalFailed(name, cmd.Args, exitCode, err)
	}
}

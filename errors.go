// Copyright ©2024 The aimquast Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package aimquast evaluates the quality of a constructed immune-repertoire
// clustering against either a reference repertoire of the same form or its
// own input reads, and reports sensitivity/precision/FDR curves,
// partition-similarity indices, and per-cluster error-model diagnostics.
//
// The package ties together the neighbor, multrel, match, partition,
// repertoire and rcm packages the way loopy.go ties together blasr mapping,
// flank remapping and result writing: it owns no algorithm of its own, only
// the orchestration of the components that do.
package aimquast

import (
	"errors"
	"fmt"
)

// Kind classifies the errors this module can return, per the error
// taxonomy in the specification's error-handling design.
type Kind int

const (
	// MalformedInput indicates an unparseable FASTA/FASTQ/RCM/neighbor
	// file.
	MalformedInput Kind = iota
	// InvariantViolated indicates an internal consistency failure, e.g.
	// ref2cons exceeding reference_size. Fatal: callers should treat it
	// as a bug, not a recoverable condition.
	InvariantViolated
	// ExternalToolFailed indicates a non-zero exit from the external
	// matcher or consensus builder.
	ExternalToolFailed
	// PreconditionViolated indicates a caller-supplied argument violated
	// a documented precondition (trash > trust, negative size, tau >
	// tau_max, etc).
	PreconditionViolated
	// Canceled indicates the operation was canceled mid-run.
	Canceled
)

func (k Kind) String() string {
	switch k {
	case MalformedInput:
		return "malformed input"
	case InvariantViolated:
		return "invariant violated"
	case ExternalToolFailed:
		return "external tool failed"
	case PreconditionViolated:
		return "precondition violated"
	case Canceled:
		return "canceled"
	default:
		return "unknown error kind"
	}
}

// Error is the concrete error type returned throughout aimquast. Op names
// the operation that failed; Err, when set, is the underlying cause and is
// reachable via errors.Unwrap/errors.As.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("aimquast: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("aimquast: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of the given Kind, unwrapping as
// errors.As does.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Malformed wraps err as a MalformedInput error attributed to op.
func Malformed(op string, err error) error { return newError(MalformedInput, op, err) }

// Invariant reports an InvariantViolated error with the given diagnostic
// message. Per the propagation policy, invariant violations are fatal:
// callers should not attempt to recover from them.
func Invariant(op, format string, args ...any) error {
	return newError(InvariantViolated, op, fmt.Errorf(format, args...))
}

// ExternalFailed wraps err (typically an *exec.ExitError) as an
// ExternalToolFailed error, carrying the tool name, command line and exit
// code in the message.
func ExternalFailed(tool string, args []string, exitCode int, err error) error {
	return newError(ExternalToolFailed, tool,
		fmt.Errorf("command %v exited %d: %w", args, exitCode, err))
}

// Precondition reports a PreconditionViolated error.
func Precondition(op, format string, args ...any) error {
	return newError(PreconditionViolated, op, fmt.Errorf(format, args...))
}

// ErrCanceled is returned when an operation is canceled mid-run.
var ErrCanceled = newError(Canceled, "run", errors.New("operation canceled"))

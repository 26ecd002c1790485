// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package interp implements the shell evaluator: it walks the AST produced
// by package syntax, expanding words and running built-in and external
// commands with the I/O plumbing and exit-code propagation described in
// spec.md §4.4 and §4.5.
package interp

import (
	"context"
	"io"
	"log/slog"

	"github.com/hashrock/dax/expand"
)

// BuiltinFunc is the signature of an in-process command, matching
// spec.md §4.3: it returns whether the shell should keep going or exit,
// and with which code. ctx carries the enclosing evaluation's deadline and
// cancellation, e.g. for the sleep built-in.
type BuiltinFunc func(ctx context.Context, ec *ExecutionContext, args []string) BuiltinResult

// BuiltinResult is what a BuiltinFunc or ExecMiddleware reports back.
type BuiltinResult struct {
	Code uint8
	Exit bool // true if the builtin requested the whole evaluation to exit
}

// ExecMiddleware executes a simple command that isn't a custom command or
// one of the required built-ins, returning handled=false to fall through
// to the default OS process spawn. This mirrors
// mvdan.cc/sh/v3/interp.ExecHandlerFunc composed as middleware, and is how
// interp/coreutils plugs in cross-platform file utilities ahead of the OS
// PATH lookup.
type ExecMiddleware func(ctx context.Context, ec *ExecutionContext, args []string) (result BuiltinResult, handled bool, err error)

// ExecutionContext is the per-execution environment threaded through AST
// evaluation, per spec.md §3.
type ExecutionContext struct {
	Dir string // absolute

	Env  expand.WriteEnviron // exported environment
	Vars map[string]string   // shell-local variables, never exported

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Commands   map[string]BuiltinFunc
	ExecChain  ExecMiddleware // nil if none registered
	InfoLogger *slog.Logger

	PrintCommand bool
	PipeFail     bool
	KillGrace    int64 // nanoseconds; see interp/exec.go

	LastCode uint8
}

// clone returns a shallow copy of c, sharing the Commands map and logger
// but free to have its Dir/Env/Vars/Stdin/Stdout/Stderr replaced without
// affecting c. Used for pipeline stages and subshells, both of which run
// against an isolated copy of the shell state (matching how every shell
// implements these POSIX-mandated isolation boundaries).
func (c *ExecutionContext) clone() *ExecutionContext {
	c2 := *c
	c2.Vars = make(map[string]string, len(c.Vars))
	for k, v := range c.Vars {
		c2.Vars[k] = v
	}
	c2.Env = expand.NewOverlay(c.Env)
	return &c2
}

// lookup resolves $NAME / ${NAME}: shell-local variables first, then the
// exported environment, matching spec.md §4.5.
func (c *ExecutionContext) lookup(name string) string {
	if v, ok := c.Vars[name]; ok {
		return v
	}
	if v, ok := c.Env.Get(name); ok {
		return v
	}
	return ""
}

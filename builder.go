// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dax is a cross-platform shell-command orchestration library: it
// parses and interprets a small POSIX-like mini-language itself, so a
// pipeline built with it behaves identically on POSIX and Windows hosts
// rather than being handed off to a native shell.
package dax

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hashrock/dax/expand"
	"github.com/hashrock/dax/interp"
	"github.com/hashrock/dax/interp/coreutils"
	"github.com/hashrock/dax/scope"
	"github.com/hashrock/dax/syntax"
)

// ambient holds the Scoped Tree Value (C1) defaults a Builder inherits
// from whichever Builder it was cloned from: the info logger and the
// printCommand default, per spec.md §4.1.
type ambient struct {
	infoLogger   *slog.Logger
	printCommand bool
}

// Builder is the immutable fluent surface of spec.md §4.6. Every mutator
// returns a fresh Builder sharing all other fields, grounded on the
// RunnerOption functional-options pattern of mvdan.cc/sh/v3/interp.New,
// generalized from "apply options to a mutable value once" into "return a
// new immutable value every call".
type Builder struct {
	node *scope.Node[ambient]

	source string

	stdin  interp.Endpoint
	stdout interp.Endpoint
	stderr interp.Endpoint

	cwd          string
	envOverrides map[string]string

	timeout time.Duration

	noThrow     bool
	noThrowOnly map[uint8]bool // nil: all non-zero codes suppressed when noThrow is set

	exportEnv bool
	pipeFail  bool

	custom map[string]interp.BuiltinFunc

	useCoreutils bool

	// stdinErr and timeoutErr record a *UserError raised by Stdin/Timeout
	// when given invalid input, tracked per-mutator (rather than in one
	// shared field) so a later, valid call to one doesn't silently erase
	// an earlier invalid call to the other in the same fluent chain. Each
	// is cleared on its own mutator's next valid call. Spawn surfaces
	// whichever is set regardless of NoThrow, per spec.md §7: builder API
	// misuse always surfaces.
	stdinErr   *UserError
	timeoutErr *UserError
}

// New returns a root Builder with no command set yet: stdio inherited,
// cwd and env taken from the host process, coreutils middleware enabled.
func New() *Builder {
	root := scope.New(ambient{infoLogger: slog.Default()})
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &Builder{
		node:         root,
		stdin:        interp.Inherit(),
		stdout:       interp.Inherit(),
		stderr:       interp.Inherit(),
		cwd:          cwd,
		useCoreutils: true,
	}
}

// clone returns a shallow copy of b, sharing the scope node (a child is
// only created when a builder mutates an ambient default).
func (b *Builder) clone() *Builder {
	b2 := *b
	return &b2
}

// Command sets the source text to parse and run. Each call replaces any
// previously set source.
func (b *Builder) Command(source string) *Builder {
	b2 := b.clone()
	b2.source = source
	return b2
}

// CommandTemplate is the Go adaptation of the tagged-template surface of
// spec.md §6: literal chunks alternate with interpolated values, one
// argv token per interpolation (or several, for a []string), quoted per
// QuoteArg unless raw is true. len(parts) must equal len(args)+1.
func CommandTemplate(raw bool, parts []string, args ...any) (string, error) {
	if len(parts) != len(args)+1 {
		return "", &UserError{Message: "CommandTemplate: len(parts) must equal len(args)+1"}
	}
	var b bytes.Buffer
	for i, lit := range parts {
		b.WriteString(lit)
		if i >= len(args) {
			continue
		}
		if err := writeInterpolation(&b, args[i], raw); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func writeInterpolation(b *bytes.Buffer, v any, raw bool) error {
	switch x := v.(type) {
	case *CommandResult:
		b.WriteString(quoteOrRaw(x.Text(), raw))
	case string:
		b.WriteString(quoteOrRaw(x, raw))
	case []string:
		if raw {
			b.WriteString(RawJoin(x))
			return nil
		}
		for i, s := range x {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(QuoteArg(s))
		}
	case fmt.Stringer:
		b.WriteString(quoteOrRaw(x.String(), raw))
	default:
		b.WriteString(quoteOrRaw(fmt.Sprint(x), raw))
	}
	return nil
}

func quoteOrRaw(s string, raw bool) string {
	if raw {
		return s
	}
	return QuoteArg(s)
}

// Stdin sets the stdin source: a string, a []byte, or an io.Reader.
func (b *Builder) Stdin(x any) *Builder {
	b2 := b.clone()
	b2.stdinErr = nil
	switch v := x.(type) {
	case string:
		b2.stdin = interp.FromBytes([]byte(v))
	case []byte:
		b2.stdin = interp.FromBytes(v)
	case io.Reader:
		b2.stdin = interp.FromReader(v)
	default:
		b2.stdinErr = &UserError{Message: fmt.Sprintf("Stdin: unsupported type %T, want string, []byte, or io.Reader", x)}
	}
	return b2
}

// Stdout sets the stdout endpoint.
func (b *Builder) Stdout(e interp.Endpoint) *Builder {
	b2 := b.clone()
	b2.stdout = e
	return b2
}

// Stderr sets the stderr endpoint.
func (b *Builder) Stderr(e interp.Endpoint) *Builder {
	b2 := b.clone()
	b2.stderr = e
	return b2
}

// Quiet is shorthand for setting the selected streams to piped with the
// capture discarded by the caller. which may contain "stdout", "stderr",
// or both; an empty which means both.
func (b *Builder) Quiet(which ...string) *Builder {
	b2 := b.clone()
	if len(which) == 0 {
		which = []string{"stdout", "stderr"}
	}
	for _, w := range which {
		switch w {
		case "stdout":
			b2.stdout = interp.Piped()
		case "stderr":
			b2.stderr = interp.Piped()
		}
	}
	return b2
}

// Cwd resolves path against the current cwd and sets it as the working
// directory for the command.
func (b *Builder) Cwd(path string) *Builder {
	b2 := b.clone()
	b2.cwd = expand.ResolvePath(b.cwd, path)
	return b2
}

// Env merges a single override into the command's environment.
func (b *Builder) Env(name, value string) *Builder {
	b2 := b.clone()
	b2.envOverrides = cloneEnvMap(b.envOverrides)
	b2.envOverrides[name] = value
	return b2
}

// EnvMap merges a set of overrides into the command's environment.
func (b *Builder) EnvMap(overrides map[string]string) *Builder {
	b2 := b.clone()
	b2.envOverrides = cloneEnvMap(b.envOverrides)
	for k, v := range overrides {
		b2.envOverrides[k] = v
	}
	return b2
}

func cloneEnvMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Timeout sets a deadline relative to the start of Spawn. d is parsed via
// expand.ParseDuration: an integer (milliseconds), a duration string, or
// an Iterator.
func (b *Builder) Timeout(d any) *Builder {
	b2 := b.clone()
	dur, err := expand.ParseDuration(d)
	if err != nil {
		b2.timeoutErr = &UserError{Message: fmt.Sprintf("Timeout: %v", err)}
		return b2
	}
	b2.timeoutErr = nil
	b2.timeout = dur
	return b2
}

// NoThrow disables failure surfacing. With no codes given, every non-zero
// code is suppressed; otherwise only the listed codes are.
func (b *Builder) NoThrow(codes ...uint8) *Builder {
	b2 := b.clone()
	b2.noThrow = true
	if len(codes) == 0 {
		b2.noThrowOnly = nil
		return b2
	}
	b2.noThrowOnly = make(map[uint8]bool, len(codes))
	for _, c := range codes {
		b2.noThrowOnly[c] = true
	}
	return b2
}

// ExportEnv controls whether a successful run's final cwd and exported
// env deltas are applied to the host process, per spec.md §4.5.
func (b *Builder) ExportEnv(enabled bool) *Builder {
	b2 := b.clone()
	b2.exportEnv = enabled
	return b2
}

// PrintCommand controls whether the source text is echoed to stderr
// before running, per spec.md §4.5. It is carried through the Scoped
// Tree Value so cloned builders inherit it by default.
func (b *Builder) PrintCommand(enabled bool) *Builder {
	b2 := b.clone()
	b2.node = b.node.CreateChild()
	a := b2.node.GetValue()
	a.printCommand = enabled
	b2.node.SetValue(a)
	return b2
}

// PipeFail opts into pipefail-style propagation: a pipeline's result code
// becomes the rightmost non-zero stage instead of always the rightmost
// stage, per SPEC_FULL.md §5's decision. Default is off.
func (b *Builder) PipeFail(enabled bool) *Builder {
	b2 := b.clone()
	b2.pipeFail = enabled
	return b2
}

// Coreutils toggles the u-root-backed coreutils middleware (cat, cp, ls,
// mkdir, mv, rm, touch, xargs, basename, wc, mktemp). Enabled by default.
func (b *Builder) Coreutils(enabled bool) *Builder {
	b2 := b.clone()
	b2.useCoreutils = enabled
	return b2
}

func (b *Builder) execMiddleware() interp.ExecMiddleware {
	if !b.useCoreutils {
		return nil
	}
	return coreutils.Middleware()
}

func (b *Builder) buildExecutionContext() *interp.ExecutionContext {
	commands := interp.DefaultBuiltins()
	for name, fn := range b.custom {
		commands[name] = fn
	}
	env := expand.NewOverlay(expand.OSEnviron())
	for k, v := range b.envOverrides {
		env.Set(k, v)
	}
	a := b.node.GetValue()
	return &interp.ExecutionContext{
		Dir:          b.cwd,
		Env:          env,
		Vars:         map[string]string{},
		Commands:     commands,
		ExecChain:    b.execMiddleware(),
		InfoLogger:   a.infoLogger,
		PrintCommand: a.printCommand,
		PipeFail:     b.pipeFail,
	}
}

// Spawn parses and runs the command, returning its CommandResult.
// Awaiting a Builder directly (i.e. calling Spawn) is the equivalent of
// the tagged-template surface's implicit await.
func (b *Builder) Spawn(ctx context.Context) (*CommandResult, error) {
	if b.stdinErr != nil {
		return nil, b.stdinErr
	}
	if b.timeoutErr != nil {
		return nil, b.timeoutErr
	}

	list, err := syntax.Parse(b.source)
	if err != nil {
		return nil, err
	}

	ec := b.buildExecutionContext()

	var stdoutCap, stderrCap *bytes.Buffer
	stdout, cap1, err := resolveBuilderOutput(b.stdout, os.Stdout)
	if err != nil {
		return nil, &UserError{Message: err.Error()}
	}
	stdoutCap = cap1
	ec.Stdout = stdout

	stderr, cap2, err := resolveBuilderOutput(b.stderr, os.Stderr)
	if err != nil {
		return nil, &UserError{Message: err.Error()}
	}
	stderrCap = cap2
	ec.Stderr = stderr

	stdin, err := resolveBuilderInput(b.stdin)
	if err != nil {
		return nil, &UserError{Message: err.Error()}
	}
	ec.Stdin = stdin

	runCtx := ctx
	var cancel context.CancelFunc
	if b.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	interp.PrintCommand(ec, b.source)

	code, runErr := interp.Eval(runCtx, ec, list)
	if runErr != nil {
		return nil, runErr
	}

	timedOut := errors.Is(runCtx.Err(), context.DeadlineExceeded)
	if timedOut {
		code = 124
	}

	result := &CommandResult{Code: code, TimedOut: timedOut, source: b.source}
	if stdoutCap != nil {
		result.StdoutBytes = stdoutCap.Bytes()
	}
	if stderrCap != nil {
		result.StderrBytes = stderrCap.Bytes()
	}

	if b.exportEnv && !timedOut && code == 0 {
		os.Chdir(ec.Dir)
		for _, pair := range expand.Pairs(ec.Env) {
			if i := strings.IndexByte(pair, '='); i >= 0 {
				os.Setenv(pair[:i], pair[i+1:])
			}
		}
	}

	if code != 0 && !b.noThrowAllows(code) {
		return result, &ExitError{Code: code, TimedOut: timedOut, Source: b.source}
	}
	return result, nil
}

// Run is an alias for Spawn.
func (b *Builder) Run(ctx context.Context) (*CommandResult, error) { return b.Spawn(ctx) }

// Text forces stdout to piped, runs the command, and returns its decoded
// text, trimmed of exactly one trailing newline.
func (b *Builder) Text(ctx context.Context) (string, error) {
	r, err := b.Quiet("stdout").Spawn(ctx)
	if r == nil {
		return "", err
	}
	return r.Text(), err
}

// Lines forces stdout to piped and returns it split into lines.
func (b *Builder) Lines(ctx context.Context) ([]string, error) {
	r, err := b.Quiet("stdout").Spawn(ctx)
	if r == nil {
		return nil, err
	}
	return r.Lines(), err
}

// Bytes forces stdout to piped and returns the raw captured bytes.
func (b *Builder) Bytes(ctx context.Context) ([]byte, error) {
	r, err := b.Quiet("stdout").Spawn(ctx)
	if r == nil {
		return nil, err
	}
	return r.Bytes(), err
}

// JSON forces stdout to piped, runs the command, and decodes stdout as
// JSON into v.
func (b *Builder) JSON(ctx context.Context, v any) error {
	r, err := b.Quiet("stdout").Spawn(ctx)
	if err != nil {
		return err
	}
	return r.JSON(v)
}

func (b *Builder) noThrowAllows(code uint8) bool {
	if !b.noThrow {
		return false
	}
	if b.noThrowOnly == nil {
		return true
	}
	return b.noThrowOnly[code]
}

func resolveBuilderInput(e interp.Endpoint) (io.Reader, error) {
	return interp.ResolveStdin(e, os.Stdin)
}

func resolveBuilderOutput(e interp.Endpoint, host io.Writer) (io.Writer, *bytes.Buffer, error) {
	return interp.ResolveStdout(e, host)
}

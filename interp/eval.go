// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashrock/dax/expand"
	"github.com/hashrock/dax/syntax"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// Eval runs a parsed program against ec to completion, dispatching each
// node per spec.md §4.5. The returned code is the result of the last
// synchronously-executed top-level item. Cancellation (ctx.Done) is
// checked by spawned children and by sleep; callers that configure a
// timeout should inspect ctx.Err() afterwards to distinguish an ordinary
// non-zero exit from a cancellation (code 124).
func Eval(ctx context.Context, ec *ExecutionContext, list *syntax.SequentialList) (code uint8, err error) {
	code, _, err = evalSequentialList(ctx, ec, list)
	return code, err
}

// PrintCommand implements the printCommand option of spec.md §4.5: it
// writes "> <source>" to ec.Stderr, styled blue when that stream is a
// terminal.
func PrintCommand(ec *ExecutionContext, source string) {
	if !ec.PrintCommand {
		return
	}
	line := "> " + source
	if f, ok := ec.Stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		line = "\x1b[34m" + line + "\x1b[0m"
	}
	fmt.Fprintln(ec.Stderr, line)
}

func evalSequentialList(ctx context.Context, ec *ExecutionContext, list *syntax.SequentialList) (code uint8, exit bool, err error) {
	var g errgroup.Group
	for _, item := range list.Items {
		if item.Async {
			node := item.Node
			bgCtx := ec.clone()
			g.Go(func() error {
				_, _, ferr := evalNode(ctx, bgCtx, node)
				return ferr
			})
			continue
		}

		c, x, e := evalNode(ctx, ec, item.Node)
		code = c
		ec.LastCode = c
		if e != nil {
			g.Wait()
			return code, false, e
		}
		if x {
			exit = true
			break
		}
	}
	if werr := g.Wait(); werr != nil && ec.InfoLogger != nil {
		ec.InfoLogger.Warn("background task failed", "error", werr)
	}
	return code, exit, nil
}

func evalNode(ctx context.Context, ec *ExecutionContext, node syntax.Node) (code uint8, exit bool, err error) {
	switch n := node.(type) {
	case *syntax.SequentialList:
		return evalSequentialList(ctx, ec, n)
	case *syntax.BooleanList:
		return evalBooleanList(ctx, ec, n)
	case *syntax.Pipeline:
		return evalPipeline(ctx, ec, n)
	case *syntax.SimpleCommand:
		return evalSimpleCommand(ctx, ec, n)
	case *syntax.Subshell:
		return evalSubshell(ctx, ec, n)
	case *syntax.VariableAssignment:
		return evalVariableAssignment(ctx, ec, n)
	default:
		return 0, false, fmt.Errorf("interp: unsupported node %T", node)
	}
}

func evalBooleanList(ctx context.Context, ec *ExecutionContext, n *syntax.BooleanList) (uint8, bool, error) {
	code, exit, err := evalNode(ctx, ec, n.Left)
	if err != nil || exit {
		return code, exit, err
	}
	runRight := (n.Op == syntax.AndOp && code == 0) || (n.Op == syntax.OrOp && code != 0)
	if !runRight {
		return code, false, nil
	}
	return evalNode(ctx, ec, n.Right)
}

// evalPipeline splices the left side's stdout into the right side's stdin
// via an in-memory pipe and runs both concurrently, per spec.md §4.4/§4.5.
// Both sides run against a cloned context, matching every real shell's
// rule that pipeline stages cannot affect each other's cwd or variables.
func evalPipeline(ctx context.Context, ec *ExecutionContext, n *syntax.Pipeline) (uint8, bool, error) {
	pr, pw := io.Pipe()

	leftCtx := ec.clone()
	leftCtx.Stdout = pw
	if n.StderrToo {
		leftCtx.Stderr = pw
	}

	rightCtx := ec.clone()
	rightCtx.Stdin = pr

	var g errgroup.Group
	var leftCode uint8
	g.Go(func() error {
		defer pw.Close()
		c, _, err := evalNode(ctx, leftCtx, n.Left)
		leftCode = c
		return err
	})

	var rightCode uint8
	var rightExit bool
	g.Go(func() error {
		defer pr.Close()
		c, x, err := evalNode(ctx, rightCtx, n.Right)
		rightCode, rightExit = c, x
		return err
	})

	if err := g.Wait(); err != nil {
		return rightCode, rightExit, err
	}
	if ec.PipeFail && rightCode == 0 && leftCode != 0 {
		return leftCode, rightExit, nil
	}
	return rightCode, rightExit, nil
}

func evalSubshell(ctx context.Context, ec *ExecutionContext, n *syntax.Subshell) (uint8, bool, error) {
	clone := ec.clone()
	code, _, err := evalSequentialList(ctx, clone, n.Inner)
	return code, false, err
}

func evalVariableAssignment(ctx context.Context, ec *ExecutionContext, n *syntax.VariableAssignment) (uint8, bool, error) {
	for _, a := range n.Assigns {
		v, err := expandWord(ctx, ec, a.Value)
		if err != nil {
			return 0, false, err
		}
		ec.Vars[a.Name] = v
	}
	return 0, false, nil
}

// evalSimpleCommand implements the three-step SimpleCommand semantics of
// spec.md §4.5: expand words, apply redirects, then dispatch args[0] as a
// custom command, built-in, or external process.
func evalSimpleCommand(ctx context.Context, ec *ExecutionContext, n *syntax.SimpleCommand) (uint8, bool, error) {
	args, err := expandWords(ctx, ec, n.Args)
	if err != nil {
		return 0, false, err
	}

	assigns := make(map[string]string, len(n.Assigns))
	for _, a := range n.Assigns {
		v, err := expandWord(ctx, ec, a.Value)
		if err != nil {
			return 0, false, err
		}
		assigns[a.Name] = v
	}

	cmdCtx, closeRedirects, err := applyRedirects(ctx, ec, n.Redirects)
	if err != nil {
		fmt.Fprintf(ec.Stderr, "%v\n", err)
		ec.LastCode = 1
		return 1, false, nil
	}
	defer closeRedirects()

	if len(args) == 0 {
		// Redirect-only command, e.g. "> out.txt" or "FOO=bar > out.txt":
		// the redirects above already ran for effect. Apply any prefix
		// assignments as shell-local vars and stop here, per spec.md
		// §4.5 SimpleCommand step 2 — there is no args[0] to dispatch.
		for k, v := range assigns {
			ec.Vars[k] = v
		}
		ec.LastCode = 0
		return 0, false, nil
	}

	// The invocation's env is the exported env overlaid with this command's
	// own prefix assignments (spec.md §4.5 step 3): "env for the invocation
	// = exported env ∪ prefix assignments". This applies uniformly to
	// built-ins, custom commands, and ExecMiddleware, not just external
	// spawns — none of those dispatch targets are exceptions to the rule.
	invokeEnv := expand.NewOverlay(cmdCtx.Env)
	for k, v := range assigns {
		invokeEnv.Set(k, v)
	}
	invokeCtx := cmdCtx
	if len(assigns) > 0 {
		ic := *cmdCtx
		ic.Env = invokeEnv
		invokeCtx = &ic
	}

	if fn, ok := ec.Commands[args[0]]; ok {
		res := fn(ctx, invokeCtx, args)
		// invokeCtx may be a redirect/assign-scoped copy of ec (applyRedirects
		// and the assigns overlay above both clone the struct), so a builtin
		// like cd that mutates its ExecutionContext's Dir by value (ec.Dir =
		// ...) would otherwise change only the copy. Dir is shell-persistent
		// state, same as Vars (already shared by map reference), so sync it
		// back explicitly.
		ec.Dir = invokeCtx.Dir
		ec.LastCode = res.Code
		return res.Code, res.Exit, nil
	}

	if ec.ExecChain != nil {
		res, handled, err := ec.ExecChain(ctx, invokeCtx, args)
		if err != nil {
			return 0, false, err
		}
		if handled {
			ec.Dir = invokeCtx.Dir
			ec.LastCode = res.Code
			return res.Code, res.Exit, nil
		}
	}

	code, err := spawnExternal(ctx, invokeCtx, args, invokeEnv)
	ec.LastCode = code
	return code, false, err
}

// applyRedirects returns a context whose Stdin/Stdout/Stderr reflect n's
// redirections, scoped to a single SimpleCommand, plus a closer for any
// files it opened. Only file descriptors 0, 1 and 2 are modelled, although
// the grammar accepts any fd number: a '>', '>>' or '>&N' redirect whose
// source fd is another number attaches to no stream (a target file is
// still opened), and '<' always replaces stdin whatever fd it names.
func applyRedirects(_ context.Context, ec *ExecutionContext, redirects []syntax.Redirect) (*ExecutionContext, func(), error) {
	if len(redirects) == 0 {
		return ec, func() {}, nil
	}

	cmdCtx := *ec
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	for _, r := range redirects {
		if r.TargetFD >= 0 {
			// Only fd 0 (stdin), 1 (stdout) and 2 (stderr) exist in this
			// model, and only 1/2 are duplicable as a write target (e.g.
			// 2>&1); "<&N" for any N other than the trivial "<&0" has no
			// representable source, so it's an error rather than a
			// silently-ignored no-op.
			if r.FD == 0 {
				if r.TargetFD != 0 {
					closeAll()
					return nil, func() {}, fmt.Errorf("redirect: cannot duplicate fd %d onto stdin", r.TargetFD)
				}
				continue
			}
			src := streamFor(&cmdCtx, r.TargetFD)
			if src == nil {
				closeAll()
				return nil, func() {}, fmt.Errorf("redirect: fd %d is not open", r.TargetFD)
			}
			w, ok := src.(io.Writer)
			if !ok {
				closeAll()
				return nil, func() {}, fmt.Errorf("redirect: fd %d is not writable", r.TargetFD)
			}
			setStream(&cmdCtx, r.FD, w)
			continue
		}

		target, err := expandWord(context.Background(), &cmdCtx, r.Target)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		path := expand.ResolvePath(cmdCtx.Dir, target)

		switch r.Op {
		case syntax.RedirRead:
			f, err := os.Open(path)
			if err != nil {
				closeAll()
				return nil, func() {}, fmt.Errorf("redirect: %w", err)
			}
			closers = append(closers, f)
			cmdCtx.Stdin = f
		case syntax.RedirWrite, syntax.RedirAppend:
			flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
			if r.Op == syntax.RedirAppend {
				flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
			}
			f, err := os.OpenFile(path, flag, 0o644)
			if err != nil {
				closeAll()
				return nil, func() {}, fmt.Errorf("redirect: %w", err)
			}
			closers = append(closers, f)
			setStream(&cmdCtx, r.FD, f)
		}
	}

	return &cmdCtx, closeAll, nil
}

func streamFor(ec *ExecutionContext, fd int) any {
	switch fd {
	case 0:
		return ec.Stdin
	case 1:
		return ec.Stdout
	case 2:
		return ec.Stderr
	default:
		return nil
	}
}

func setStream(ec *ExecutionContext, fd int, w io.Writer) {
	switch fd {
	case 1:
		ec.Stdout = w
	case 2:
		ec.Stderr = w
	}
}

// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/hashrock/dax/expand"
)

// DefaultBuiltins returns the required built-in set of spec.md §4.3.
// Custom commands registered on a Builder are overlaid on top of this map
// and take priority for names they share.
func DefaultBuiltins() map[string]BuiltinFunc {
	return map[string]BuiltinFunc{
		"cd":     builtinCd,
		"echo":   builtinEcho,
		"exit":   builtinExit,
		"sleep":  builtinSleep,
		"test":   builtinTest,
		"export": builtinExport,
	}
}

func builtinCd(_ context.Context, ec *ExecutionContext, args []string) BuiltinResult {
	var target string
	if len(args) > 1 {
		target = args[1]
	} else {
		homeVar := "HOME"
		if runtime.GOOS == "windows" {
			homeVar = "USERPROFILE"
		}
		target, _ = ec.Env.Get(homeVar)
		if target == "" {
			fmt.Fprintf(ec.Stderr, "cd: %s not set\n", homeVar)
			return BuiltinResult{Code: 1}
		}
	}
	dir := resolveRelative(ec.Dir, target)
	info, err := os.Stat(dir)
	if err != nil {
		fmt.Fprintf(ec.Stderr, "cd: %s: %v\n", target, err)
		return BuiltinResult{Code: 1}
	}
	if !info.IsDir() {
		fmt.Fprintf(ec.Stderr, "cd: %s: not a directory\n", target)
		return BuiltinResult{Code: 1}
	}
	ec.Dir = dir
	return BuiltinResult{Code: 0}
}

func builtinEcho(_ context.Context, ec *ExecutionContext, args []string) BuiltinResult {
	for i, a := range args[1:] {
		if i > 0 {
			io.WriteString(ec.Stdout, " ")
		}
		io.WriteString(ec.Stdout, a)
	}
	io.WriteString(ec.Stdout, "\n")
	return BuiltinResult{Code: 0}
}

func builtinExit(_ context.Context, ec *ExecutionContext, args []string) BuiltinResult {
	if len(args) <= 1 {
		return BuiltinResult{Code: ec.LastCode, Exit: true}
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(ec.Stderr, "exit: %s: numeric argument required\n", args[1])
		return BuiltinResult{Code: 2, Exit: true}
	}
	return BuiltinResult{Code: uint8(n), Exit: true}
}

func builtinSleep(ctx context.Context, ec *ExecutionContext, args []string) BuiltinResult {
	if len(args) != 2 {
		fmt.Fprintf(ec.Stderr, "sleep: usage: sleep <duration>\n")
		return BuiltinResult{Code: 2}
	}
	d, err := expand.ParseDuration(args[1])
	if err != nil {
		fmt.Fprintf(ec.Stderr, "sleep: %v\n", err)
		return BuiltinResult{Code: 2}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return BuiltinResult{Code: 0}
	case <-ctx.Done():
		return BuiltinResult{Code: 124}
	}
}

// builtinExport promotes shell-local variables into the exported
// environment, per spec.md §4.3/§4.5: `export NAME=value` sets NAME in
// ec.Env directly (unlike a plain assignment, this persists for the rest
// of the enclosing list and, with Builder.ExportEnv, the host process
// once the top-level run completes); `export NAME` alone exports the
// current value of the shell-local or already-exported NAME.
func builtinExport(_ context.Context, ec *ExecutionContext, args []string) BuiltinResult {
	for _, a := range args[1:] {
		name, value, hasEq := strings.Cut(a, "=")
		if !hasEq {
			value = ec.lookup(name)
		}
		ec.Env.Set(name, value)
	}
	return BuiltinResult{Code: 0}
}

func builtinTest(_ context.Context, ec *ExecutionContext, args []string) BuiltinResult {
	a := args[1:]
	ok, usageErr := evalTest(ec, a)
	if usageErr {
		fmt.Fprintf(ec.Stderr, "test: %s: usage error\n", joinArgs(a))
		return BuiltinResult{Code: 2}
	}
	if ok {
		return BuiltinResult{Code: 0}
	}
	return BuiltinResult{Code: 1}
}

func evalTest(ec *ExecutionContext, a []string) (result bool, usageErr bool) {
	switch len(a) {
	case 2:
		switch a[0] {
		case "-e":
			_, err := os.Stat(resolveRelative(ec.Dir, a[1]))
			return err == nil, false
		case "-f":
			info, err := os.Stat(resolveRelative(ec.Dir, a[1]))
			return err == nil && info.Mode().IsRegular(), false
		case "-d":
			info, err := os.Stat(resolveRelative(ec.Dir, a[1]))
			return err == nil && info.IsDir(), false
		case "-n":
			return a[1] != "", false
		case "-z":
			return a[1] == "", false
		}
		return false, true
	case 3:
		lhs, op, rhs := a[0], a[1], a[2]
		switch op {
		case "=":
			return lhs == rhs, false
		case "!=":
			return lhs != rhs, false
		case "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
			l, err1 := strconv.Atoi(lhs)
			r, err2 := strconv.Atoi(rhs)
			if err1 != nil || err2 != nil {
				return false, true
			}
			switch op {
			case "-eq":
				return l == r, false
			case "-ne":
				return l != r, false
			case "-lt":
				return l < r, false
			case "-le":
				return l <= r, false
			case "-gt":
				return l > r, false
			case "-ge":
				return l >= r, false
			}
		}
		return false, true
	default:
		return false, true
	}
	return false, true
}

func joinArgs(a []string) string {
	s := ""
	for i, x := range a {
		if i > 0 {
			s += " "
		}
		s += x
	}
	return s
}

func resolveRelative(base, rel string) string {
	if rel == "" {
		return base
	}
	return expand.ResolvePath(base, rel)
}

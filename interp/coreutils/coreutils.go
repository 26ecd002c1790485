// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coreutils provides an interp.ExecMiddleware backed by
// github.com/u-root/u-root's pure-Go command implementations, so scripts
// that call cat, cp, ls, mkdir, mv, rm, touch, xargs, basename, wc or
// mktemp behave identically on Windows as on POSIX hosts, without relying
// on a system PATH to provide them.
package coreutils

import (
	"context"
	"fmt"

	"github.com/hashrock/dax/interp"
	"github.com/u-root/u-root/pkg/core"
	"github.com/u-root/u-root/pkg/core/basename"
	"github.com/u-root/u-root/pkg/core/cat"
	"github.com/u-root/u-root/pkg/core/cp"
	"github.com/u-root/u-root/pkg/core/ls"
	"github.com/u-root/u-root/pkg/core/mkdir"
	"github.com/u-root/u-root/pkg/core/mktemp"
	"github.com/u-root/u-root/pkg/core/mv"
	"github.com/u-root/u-root/pkg/core/rm"
	"github.com/u-root/u-root/pkg/core/touch"
	"github.com/u-root/u-root/pkg/core/wc"
	"github.com/u-root/u-root/pkg/core/xargs"
)

var commandBuilders = map[string]func() core.Command{
	"cat":      func() core.Command { return cat.New() },
	"cp":       func() core.Command { return cp.New() },
	"ls":       func() core.Command { return ls.New() },
	"mkdir":    func() core.Command { return mkdir.New() },
	"mv":       func() core.Command { return mv.New() },
	"rm":       func() core.Command { return rm.New() },
	"touch":    func() core.Command { return touch.New() },
	"xargs":    func() core.Command { return xargs.New() },
	"basename": func() core.Command { return basename.New() },
	"wc":       func() core.Command { return wc.New() },
	"mktemp":   func() core.Command { return mktemp.New() },
}

// Middleware returns an interp.ExecMiddleware that handles the command
// names above in-process, falling through (handled=false) for anything
// else so the evaluator's default OS spawn still applies.
//
// It has priority over whatever the host PATH provides; this mirrors
// mvdan.cc/sh/moreinterp/coreutils.ExecHandler, whose docs recommend
// reserving it for platforms (namely Windows) where these utilities
// aren't otherwise guaranteed to exist.
func Middleware() interp.ExecMiddleware {
	return func(ctx context.Context, ec *interp.ExecutionContext, args []string) (interp.BuiltinResult, bool, error) {
		newCmd, ok := commandBuilders[args[0]]
		if !ok {
			return interp.BuiltinResult{}, false, nil
		}

		cmd := newCmd()
		cmd.SetIO(ec.Stdin, ec.Stdout, ec.Stderr)
		cmd.SetWorkingDir(ec.Dir)
		cmd.SetLookupEnv(ec.Env.Get)

		if err := cmd.RunContext(ctx, args[1:]...); err != nil {
			fmt.Fprintf(ec.Stderr, "%s: %v\n", args[0], err)
			return interp.BuiltinResult{Code: 1}, true, nil
		}
		return interp.BuiltinResult{Code: 0}, true, nil
	}
}

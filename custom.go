// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dax

import (
	"context"
	"io"

	"github.com/hashrock/dax/expand"
	"github.com/hashrock/dax/interp"
)

// CustomCommandFunc is a Go function registered as if it were a shell
// command, grounded on mvdan.cc/sh/v3/interp.GoCmd: it receives the
// invocation's argv, the resolved environment, working directory and
// stdio, and returns an exit code.
type CustomCommandFunc func(ctx context.Context, args []string, env expand.Environ, cwd string, stdin io.Reader, stdout, stderr io.Writer) (code uint8)

// RegisterCommand adds or replaces a single custom command, which takes
// priority over any built-in of the same name, per spec.md §4.3.
func (b *Builder) RegisterCommand(name string, fn CustomCommandFunc) *Builder {
	return b.RegisterCommands(map[string]CustomCommandFunc{name: fn})
}

// RegisterCommands adds or replaces a set of custom commands in one call.
func (b *Builder) RegisterCommands(fns map[string]CustomCommandFunc) *Builder {
	b2 := b.clone()
	b2.custom = make(map[string]interp.BuiltinFunc, len(b.custom)+len(fns))
	for name, fn := range b.custom {
		b2.custom[name] = fn
	}
	for name, fn := range fns {
		b2.custom[name] = adaptCustomCommand(fn)
	}
	return b2
}

func adaptCustomCommand(fn CustomCommandFunc) interp.BuiltinFunc {
	return func(ctx context.Context, ec *interp.ExecutionContext, args []string) interp.BuiltinResult {
		code := fn(ctx, args, ec.Env, ec.Dir, ec.Stdin, ec.Stdout, ec.Stderr)
		return interp.BuiltinResult{Code: code}
	}
}

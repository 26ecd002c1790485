// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hashrock/dax/expand"
)

// defaultKillGrace is how long terminateGroup is given to work before
// killGroup is sent, on platforms where the distinction exists.
const defaultKillGrace = 2 * time.Second

// lookPath resolves argv[0] against dir and env's PATH, the way a real
// shell's command lookup would, grounded on
// mvdan.cc/sh/v3/interp.LookPathDir but simplified: this mini-language has
// no function/alias table to consult first.
func lookPath(dir string, env expand.Environ, file string) (string, error) {
	if filepath.IsAbs(file) {
		return file, statExecutable(file)
	}
	if base, rest := splitFirst(file); base == "." || base == ".." || rest != "" {
		full := filepath.Join(dir, file)
		return full, statExecutable(full)
	}
	pathVal, _ := env.Get("PATH")
	for _, d := range filepath.SplitList(pathVal) {
		if d == "" {
			d = "."
		}
		full := filepath.Join(d, file)
		if statExecutable(full) == nil {
			return full, nil
		}
	}
	return "", fmt.Errorf("%q: executable file not found in $PATH", file)
}

func splitFirst(p string) (first, rest string) {
	i := 0
	for i < len(p) && p[i] != '/' && p[i] != '\\' {
		i++
	}
	return p[:i], p[i:]
}

func statExecutable(path string) error {
	_, err := exec.LookPath(path)
	return err
}

// spawnExternal runs argv as an OS process with the given stdio and
// per-invocation environment overlay, per spec.md §4.4/§4.5. It blocks
// until the process exits or ctx is cancelled, in which case terminateGroup
// is sent, escalating to killGroup once ec.KillGrace has elapsed
// (defaultKillGrace when it is zero). A negative grace, or Windows, sends
// killGroup at once.
func spawnExternal(ctx context.Context, ec *ExecutionContext, args []string, invokeEnv expand.Environ) (code uint8, err error) {
	path, lookErr := lookPath(ec.Dir, invokeEnv, args[0])
	if lookErr != nil {
		fmt.Fprintln(ec.Stderr, lookErr)
		return 127, nil
	}

	cmd := exec.Cmd{
		Path:   path,
		Args:   args,
		Env:    expand.Pairs(invokeEnv),
		Dir:    ec.Dir,
		Stdin:  ec.Stdin,
		Stdout: ec.Stdout,
		Stderr: ec.Stderr,
	}
	prepareCommand(&cmd)

	if runErr := cmd.Start(); runErr != nil {
		var execErr *exec.Error
		if errors.As(runErr, &execErr) {
			fmt.Fprintf(ec.Stderr, "%v\n", execErr)
			return 127, nil
		}
		return 0, runErr
	}

	grace := time.Duration(ec.KillGrace)
	if grace == 0 {
		grace = defaultKillGrace
	}
	stop := context.AfterFunc(ctx, func() {
		if runtime.GOOS == "windows" || grace <= 0 {
			_ = killGroup(&cmd)
			return
		}
		_ = terminateGroup(&cmd)
		timer := time.NewTimer(grace)
		defer timer.Stop()
		<-timer.C
		_ = killGroup(&cmd)
	})
	defer stop()

	waitErr := cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		return 0, nil
	case errors.As(waitErr, &exitErr):
		if ctx.Err() != nil {
			return 124, nil
		}
		return uint8(exitErr.ExitCode()), nil
	default:
		return 0, waitErr
	}
}

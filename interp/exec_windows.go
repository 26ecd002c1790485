// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package interp

import "os/exec"

// prepareCommand is a no-op on Windows: there is no process-group fd to
// set up, and termination below acts directly on the process handle.
func prepareCommand(cmd *exec.Cmd) {}

// terminateGroup has no graceful equivalent to SIGTERM on Windows, so it
// terminates immediately; the grace period of spec.md §4.5 is therefore
// zero on this platform (decided in SPEC_FULL.md §5).
func terminateGroup(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}

// killGroup terminates the process.
func killGroup(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}

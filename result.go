// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dax

import (
	"encoding/json"
	"fmt"

	"github.com/hashrock/dax/interp"
)

// CommandResult is what Spawn (or awaiting the builder directly) produces,
// per spec.md §3. The byte fields are non-nil only for the streams
// configured as captured (piped or inheritPiped).
type CommandResult struct {
	Code     uint8
	TimedOut bool

	StdoutBytes   []byte
	StderrBytes   []byte
	CombinedBytes []byte

	source string // original command text, for ExitError's message
}

// Text decodes StdoutBytes as UTF-8 and trims exactly one trailing newline,
// matching the text() decoder of spec.md §4.4.
func (r *CommandResult) Text() string {
	return string(interp.TrimOneTrailingNewline(r.StdoutBytes))
}

// StderrText is Text's counterpart for the captured stderr stream.
func (r *CommandResult) StderrText() string {
	return string(interp.TrimOneTrailingNewline(r.StderrBytes))
}

// Lines splits StdoutBytes on '\n', dropping one trailing empty element,
// matching the lines() decoder.
func (r *CommandResult) Lines() []string {
	return interp.SplitLines(r.StdoutBytes)
}

// JSON decodes StdoutBytes as JSON into v, matching the json() decoder.
func (r *CommandResult) JSON(v any) error {
	return json.Unmarshal(r.StdoutBytes, v)
}

// Bytes returns the raw captured stdout, matching the bytes() decoder.
func (r *CommandResult) Bytes() []byte {
	return r.StdoutBytes
}

// ExitError is returned when a command's final code is non-zero and
// noThrow doesn't cover it, per spec.md §7's propagation policy.
type ExitError struct {
	Code     uint8
	TimedOut bool
	Source   string
}

func (e *ExitError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("dax: command timed out: %s", e.Source)
	}
	return fmt.Sprintf("dax: command exited with code %d: %s", e.Code, e.Source)
}

// UserError reports builder API misuse, e.g. a Stdin value of an
// unsupported type or an invalid Timeout duration. It always surfaces
// regardless of noThrow,
// per spec.md §7.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return "dax: " + e.Message }

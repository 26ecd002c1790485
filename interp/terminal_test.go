// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !windows

package interp

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/creack/pty"
	qt "github.com/frankban/quicktest"

	"github.com/hashrock/dax/expand"
	"github.com/hashrock/dax/syntax"
)

// newPtyContext builds an ExecutionContext whose stdio is a real pseudo
// terminal slave, so term.IsTerminal reports true the way it would for an
// inherited interactive stdio endpoint.
func newPtyContext(t *testing.T) (ec *ExecutionContext, master *os.File) {
	t.Helper()
	m, tty, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { m.Close(); tty.Close() })
	ec = &ExecutionContext{
		Dir:          ".",
		Env:          expand.NewOverlay(expand.ListEnviron()),
		Vars:         map[string]string{},
		Stdin:        tty,
		Stdout:       tty,
		Stderr:       tty,
		Commands:     DefaultBuiltins(),
		PrintCommand: true,
	}
	return ec, m
}

func TestEvalThroughRealPty(t *testing.T) {
	c := qt.New(t)
	ec, master := newPtyContext(t)

	list, err := syntax.Parse("echo hello")
	c.Assert(err, qt.IsNil)

	go func() {
		Eval(context.Background(), ec, list)
	}()

	got, err := bufio.NewReader(master).ReadString('\n')
	c.Assert(err, qt.IsNil)
	// A pty performs output post-processing: '\n' becomes "\r\n".
	c.Assert(got, qt.Equals, "hello\r\n")
}

func TestPrintCommandStylesOnTerminal(t *testing.T) {
	c := qt.New(t)
	ec, master := newPtyContext(t)

	go PrintCommand(ec, "echo hello")

	got, err := bufio.NewReader(master).ReadString('\n')
	c.Assert(err, qt.IsNil)
	c.Assert(strings.Contains(got, "\x1b[34m"), qt.IsTrue, qt.Commentf("got %q", got))
	c.Assert(strings.Contains(got, "> echo hello"), qt.IsTrue)
}

func TestPrintCommandPlainOnNonTerminal(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	ec := &ExecutionContext{Stderr: &buf, PrintCommand: true}
	PrintCommand(ec, "echo hello")
	c.Assert(buf.String(), qt.Equals, "> echo hello\n")
}

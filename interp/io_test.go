// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"bytes"
	"io"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestTrimOneTrailingNewline(t *testing.T) {
	c := qt.New(t)
	c.Assert(string(TrimOneTrailingNewline([]byte("abc\n"))), qt.Equals, "abc")
	c.Assert(string(TrimOneTrailingNewline([]byte("abc\n\n"))), qt.Equals, "abc\n")
	c.Assert(string(TrimOneTrailingNewline([]byte("abc"))), qt.Equals, "abc")
	c.Assert(string(TrimOneTrailingNewline([]byte("abc\r\n"))), qt.Equals, "abc")
}

func TestSplitLines(t *testing.T) {
	c := qt.New(t)
	c.Assert(SplitLines([]byte("a\nb\nc\n")), qt.DeepEquals, []string{"a", "b", "c"})
	c.Assert(SplitLines([]byte("a\nb")), qt.DeepEquals, []string{"a", "b"})
	c.Assert(SplitLines(nil), qt.IsNil)
}

func TestEndpointIsCaptured(t *testing.T) {
	c := qt.New(t)
	c.Assert(Piped().IsCaptured(), qt.IsTrue)
	c.Assert(InheritPiped().IsCaptured(), qt.IsTrue)
	c.Assert(Inherit().IsCaptured(), qt.IsFalse)
	c.Assert(Null().IsCaptured(), qt.IsFalse)
}

func TestResolveStdin(t *testing.T) {
	c := qt.New(t)

	r, err := ResolveStdin(FromBytes([]byte("hi")), nil)
	c.Assert(err, qt.IsNil)
	var buf bytes.Buffer
	buf.ReadFrom(r)
	c.Assert(buf.String(), qt.Equals, "hi")

	host := strings.NewReader("host")
	r, err = ResolveStdin(Inherit(), host)
	c.Assert(err, qt.IsNil)
	c.Assert(r, qt.Equals, io.Reader(host))
}

func TestResolveStdout(t *testing.T) {
	c := qt.New(t)

	host := new(bytes.Buffer)
	w, cap, err := ResolveStdout(InheritPiped(), host)
	c.Assert(err, qt.IsNil)
	w.Write([]byte("x"))
	c.Assert(host.String(), qt.Equals, "x")
	c.Assert(cap.String(), qt.Equals, "x")

	w2, cap2, err := ResolveStdout(Piped(), host)
	c.Assert(err, qt.IsNil)
	w2.Write([]byte("y"))
	c.Assert(cap2.String(), qt.Equals, "y")
	c.Assert(host.String(), qt.Equals, "x") // untouched by the second call
}

// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"bytes"
	"fmt"
	"io"
)

// endpointKind enumerates the stdio sink/source kinds of spec.md §4.4.
type endpointKind int

const (
	kindInherit endpointKind = iota
	kindNull
	kindPiped
	kindInheritPiped
	kindReader // stdin only
	kindBytes  // stdin only
	kindWriter // stdout/stderr only
)

// Endpoint is one end of a command's stdio, built via the constructors
// below. The zero Endpoint is Inherit().
type Endpoint struct {
	kind   endpointKind
	reader io.Reader
	bytes  []byte
	writer io.Writer
}

// Inherit connects to the host process's corresponding stream.
func Inherit() Endpoint { return Endpoint{kind: kindInherit} }

// Null discards writes, or reads as an immediately-exhausted source.
func Null() Endpoint { return Endpoint{kind: kindNull} }

// Piped captures the stream into an in-memory buffer, surfaced later on
// CommandResult.
func Piped() Endpoint { return Endpoint{kind: kindPiped} }

// InheritPiped both forwards to the host stream and captures it, the way
// `tee` would.
func InheritPiped() Endpoint { return Endpoint{kind: kindInheritPiped} }

// FromReader is a stdin source read until EOF.
func FromReader(r io.Reader) Endpoint { return Endpoint{kind: kindReader, reader: r} }

// FromBytes is a stdin source of fixed content.
func FromBytes(b []byte) Endpoint { return Endpoint{kind: kindBytes, bytes: b} }

// ToWriter is a stdout/stderr sink delivered to an arbitrary io.Writer as
// the command produces output, with no buffering beyond what io.Copy does.
func ToWriter(w io.Writer) Endpoint { return Endpoint{kind: kindWriter, writer: w} }

// IsCaptured reports whether reading CommandResult's byte fields for this
// endpoint is meaningful.
func (e Endpoint) IsCaptured() bool {
	return e.kind == kindPiped || e.kind == kindInheritPiped
}

// ResolveStdin turns a configured stdin Endpoint into a reader usable as
// exec.Cmd.Stdin or as an ExecutionContext.Stdin for built-ins. host is
// the stream Inherit() should forward to (typically os.Stdin, but nil is
// valid and means "no input").
func ResolveStdin(e Endpoint, host io.Reader) (io.Reader, error) {
	switch e.kind {
	case kindInherit:
		return host, nil
	case kindNull:
		return bytes.NewReader(nil), nil
	case kindReader:
		return e.reader, nil
	case kindBytes:
		return bytes.NewReader(e.bytes), nil
	default:
		return nil, fmt.Errorf("interp: endpoint kind %d is not valid for stdin", e.kind)
	}
}

// ResolveStdout turns a configured stdout/stderr Endpoint into a writer,
// and if the endpoint captures bytes, the buffer they land in (nil
// otherwise). host is the stream Inherit()/InheritPiped() forward to.
func ResolveStdout(e Endpoint, host io.Writer) (w io.Writer, captured *bytes.Buffer, err error) {
	switch e.kind {
	case kindInherit:
		return host, nil, nil
	case kindNull:
		return io.Discard, nil, nil
	case kindPiped:
		buf := new(bytes.Buffer)
		return buf, buf, nil
	case kindInheritPiped:
		buf := new(bytes.Buffer)
		return io.MultiWriter(host, buf), buf, nil
	case kindWriter:
		return e.writer, nil, nil
	default:
		return nil, nil, fmt.Errorf("interp: endpoint kind %d is not valid for stdout/stderr", e.kind)
	}
}

// TrimOneTrailingNewline strips a single trailing '\n' (and a preceding
// '\r', if present), matching the .text() decoder of spec.md §4.4.
func TrimOneTrailingNewline(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
		if n := len(b); n > 0 && b[n-1] == '\r' {
			b = b[:n-1]
		}
	}
	return b
}

// SplitLines splits captured output on '\n' for the .lines() decoder,
// dropping one trailing empty element produced by a final newline.
func SplitLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	s := string(b)
	lines := splitKeepEmpty(s, '\n')
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, l := range lines {
		if n := len(l); n > 0 && l[n-1] == '\r' {
			lines[i] = l[:n-1]
		}
	}
	return lines
}

func splitKeepEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

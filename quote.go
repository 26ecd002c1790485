// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dax

import "strings"

// safeUnquoted reports whether r needs no quoting under QuoteArg's rule.
func safeUnquoted(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case strings.ContainsRune("_./:=+@%^-", r):
		return true
	default:
		return false
	}
}

// QuoteArg implements the raw-argument quoting rule of spec.md §4.6: a
// value made only of [A-Za-z0-9_./:=+@%^-] is emitted unquoted; anything
// else is single-quoted, with embedded single quotes escaped as '\''.
func QuoteArg(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !safeUnquoted(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		if r == '\'' {
			b.WriteString(`'\''`)
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// RawJoin joins args with single spaces and no quoting, for $.raw-style
// array interpolation (SPEC_FULL.md §5's decision: space-joined).
func RawJoin(args []string) string {
	return strings.Join(args, " ")
}

// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"bytes"
	"context"
	"strings"

	"github.com/hashrock/dax/syntax"
)

// expandWord resolves a single syntax.Word into exactly one argv element,
// per spec.md §4.5: unquoted expansion never field-splits, so every
// segment's text is concatenated directly.
func expandWord(ctx context.Context, ec *ExecutionContext, w syntax.Word) (string, error) {
	var b strings.Builder
	for _, seg := range w.Segments {
		s, err := expandSegment(ctx, ec, seg)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func expandSegment(ctx context.Context, ec *ExecutionContext, seg syntax.Segment) (string, error) {
	switch s := seg.(type) {
	case syntax.Literal:
		return s.Value, nil
	case syntax.EnvVar:
		return ec.lookup(s.Name), nil
	case syntax.Quoted:
		var b strings.Builder
		for _, inner := range s.Parts {
			v, err := expandSegment(ctx, ec, inner)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
		}
		return b.String(), nil
	case syntax.CommandSubstitution:
		return evalCommandSubstitution(ctx, ec, s.List)
	default:
		return "", nil
	}
}

// evalCommandSubstitution runs list with a captured stdout pipe, awaits
// completion, decodes it as UTF-8 and trims ALL trailing newlines (unlike
// the single-newline trim of the text() decoder), per spec.md §4.5.
func evalCommandSubstitution(ctx context.Context, ec *ExecutionContext, list *syntax.SequentialList) (string, error) {
	sub := ec.clone()
	buf := new(bytes.Buffer)
	sub.Stdout = buf
	sub.Stdin = bytes.NewReader(nil)

	if _, err := evalSequentialList(ctx, sub, list); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// expandWords expands each word of args into one argv element each.
func expandWords(ctx context.Context, ec *ExecutionContext, words []syntax.Word) ([]string, error) {
	out := make([]string, len(words))
	for i, w := range words {
		s, err := expandWord(ctx, ec, w)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

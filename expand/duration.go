// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expand

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var durationRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)(ms|s|m|h)$`)

// Iterator yields successive delays, for exponential
// backoff configured via a retry helper external to this core (see
// spec.md §6). It is accepted anywhere a Duration is, alongside a plain
// integer or a duration string.
type Iterator interface {
	Next() time.Duration
}

// ParseDuration implements the duration grammar of spec.md §6: a bare
// integer is milliseconds, or a string matching
// ^\d+(\.\d+)?(ms|s|m|h)$. For an Iterator, the result is the value of one
// Next() call; callers that need repeated delays should type-assert for
// Iterator themselves rather than going through ParseDuration in a loop.
func ParseDuration(v any) (time.Duration, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case int:
		return time.Duration(x) * time.Millisecond, nil
	case int64:
		return time.Duration(x) * time.Millisecond, nil
	case Iterator:
		return x.Next(), nil
	case string:
		m := durationRe.FindStringSubmatch(x)
		if m == nil {
			return 0, fmt.Errorf("expand: invalid duration %q", x)
		}
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("expand: invalid duration %q: %w", x, err)
		}
		var unit time.Duration
		switch m[2] {
		case "ms":
			unit = time.Millisecond
		case "s":
			unit = time.Second
		case "m":
			unit = time.Minute
		case "h":
			unit = time.Hour
		}
		return time.Duration(n * float64(unit)), nil
	default:
		return 0, fmt.Errorf("expand: unsupported duration value %T", v)
	}
}

// FormatDuration renders d the way diagnostic messages do: "N millisecond"
// (singular/plural), "N second(s)" with one decimal place when fractional,
// matching spec.md §6's examples exactly (1ms -> "1 millisecond",
// 1000ms -> "1 second", 1500ms -> "1.5 seconds").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		ms := d.Milliseconds()
		return pluralize(ms, "millisecond")
	}
	secs := d.Seconds()
	rounded := secs - float64(int64(secs))
	var numText string
	if rounded == 0 {
		numText = strconv.FormatInt(int64(secs), 10)
	} else {
		numText = strconv.FormatFloat(secs, 'f', 1, 64)
	}
	unit := "second"
	if numText != "1" {
		unit += "s"
	}
	return numText + " " + unit
}

func pluralize(n int64, unit string) string {
	s := strconv.FormatInt(n, 10)
	if n == 1 {
		return s + " " + unit
	}
	return s + " " + unit + "s"
}

// sliceIterator is a small convenience Iterator implementation, e.g. for
// tests that want deterministic backoff without a real exponential curve.
type sliceIterator struct {
	delays []time.Duration
	i      int
}

// NewSliceIterator returns an Iterator that yields delays in order,
// repeating the last one once exhausted.
func NewSliceIterator(delays ...time.Duration) Iterator {
	return &sliceIterator{delays: delays}
}

func (s *sliceIterator) Next() time.Duration {
	if len(s.delays) == 0 {
		return 0
	}
	d := s.delays[min(s.i, len(s.delays)-1)]
	s.i++
	return d
}

// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package expand provides the small set of supporting helpers the
// evaluator needs around word expansion: the exported-environment
// abstraction, the duration grammar, and path resolution. It deliberately
// does not implement field-splitting or globbing, since the mini-language
// never does either (see spec Non-goals).
package expand

import (
	"maps"
	"os"
	"slices"
	"strings"
)

// Environ is a read-only view of a set of exported environment variables.
type Environ interface {
	// Get retrieves a variable's value. ok is false if it is unset.
	Get(name string) (value string, ok bool)
	// Each calls fn once per variable currently set. Iteration order is
	// unspecified.
	Each(fn func(name, value string))
}

// WriteEnviron extends Environ with the ability to set and unset
// variables, layering an overlay on top of a parent Environ without
// mutating it.
type WriteEnviron interface {
	Environ
	Set(name, value string)
	Unset(name string)
}

// listEnviron is a flat, immutable Environ backed by a map, typically built
// from os.Environ().
type listEnviron struct {
	vars map[string]string
}

// ListEnviron builds an Environ from "NAME=value" pairs, the same shape as
// os.Environ(). Later duplicates win, matching os.Environ's own semantics.
func ListEnviron(environ ...string) Environ {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		vars[name] = value
	}
	return &listEnviron{vars: vars}
}

func (l *listEnviron) Get(name string) (string, bool) {
	v, ok := l.vars[name]
	return v, ok
}

func (l *listEnviron) Each(fn func(name, value string)) {
	for k, v := range l.vars {
		fn(k, v)
	}
}

// OSEnviron returns an Environ reflecting the current process environment.
func OSEnviron() Environ {
	return ListEnviron(os.Environ()...)
}

// overlayEnviron lets a child execution context shadow or delete variables
// from a parent Environ without mutating the parent, the same copy-on-write
// shape used throughout this module (see package scope).
type overlayEnviron struct {
	parent Environ
	sets   map[string]string
	unsets map[string]bool
}

// NewOverlay returns a WriteEnviron that reads through to parent for any
// name it hasn't itself set or unset.
func NewOverlay(parent Environ) WriteEnviron {
	if parent == nil {
		parent = ListEnviron()
	}
	return &overlayEnviron{parent: parent}
}

func (o *overlayEnviron) Get(name string) (string, bool) {
	if o.unsets[name] {
		return "", false
	}
	if v, ok := o.sets[name]; ok {
		return v, true
	}
	return o.parent.Get(name)
}

func (o *overlayEnviron) Set(name, value string) {
	if o.sets == nil {
		o.sets = make(map[string]string)
	}
	o.sets[name] = value
	delete(o.unsets, name)
}

func (o *overlayEnviron) Unset(name string) {
	if o.unsets == nil {
		o.unsets = make(map[string]bool)
	}
	o.unsets[name] = true
	delete(o.sets, name)
}

func (o *overlayEnviron) Each(fn func(name, value string)) {
	seen := make(map[string]bool, len(o.sets))
	for k, v := range o.sets {
		seen[k] = true
		fn(k, v)
	}
	o.parent.Each(func(name, value string) {
		if seen[name] || o.unsets[name] {
			return
		}
		fn(name, value)
	})
}

// Pairs renders env as a sorted "NAME=value" slice, suitable for
// exec.Cmd.Env.
func Pairs(env Environ) []string {
	m := map[string]string{}
	env.Each(func(name, value string) { m[name] = value })
	out := make([]string, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		out = append(out, name+"="+m[name])
	}
	return out
}

// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestInheritance(t *testing.T) {
	c := qt.New(t)

	a := New(1)
	b := a.CreateChild()
	n := b.CreateChild()

	c.Assert(n.GetValue(), qt.Equals, 1)

	n.SetValue(42)
	c.Assert(n.GetValue(), qt.Equals, 42)

	sibling := b.CreateChild()
	c.Assert(sibling.GetValue(), qt.Equals, 1)
}

func TestAncestorMutationVisibleUnlessOverridden(t *testing.T) {
	c := qt.New(t)

	a := New("base")
	child := a.CreateChild()
	c.Assert(child.GetValue(), qt.Equals, "base")

	a.SetValue("updated")
	c.Assert(child.GetValue(), qt.Equals, "updated")

	child.SetValue("own")
	a.SetValue("ignored-by-child")
	c.Assert(child.GetValue(), qt.Equals, "own")
}

func TestUnsetRoot(t *testing.T) {
	c := qt.New(t)

	root := NewUnset[int]()
	child := root.CreateChild()
	c.Assert(child.GetValue(), qt.Equals, 0)

	root.SetValue(7)
	c.Assert(child.GetValue(), qt.Equals, 7)
}

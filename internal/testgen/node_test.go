// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package testgen_test exercises the runtime contract of generated code
// against a checked-in sample of the generator's output.
package testgen_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/astgen/internal/testgen"
	"github.com/bufbuild/astgen/tree"
)

var (
	_ testgen.Expr = (*testgen.ExprLit)(nil)
	_ testgen.Expr = (*testgen.ExprAdd)(nil)
	_ tree.Node    = (*testgen.Lit)(nil)
	_ tree.Node    = (*testgen.Add)(nil)
)

// buildSum returns (1 + 2) + 3 with literal spans 0..1, 4..5, and 8..9.
func buildSum() *testgen.Add {
	l1 := testgen.NewExprLit(*testgen.NewLit(1, tree.NewSpan(0, 1)))
	l2 := testgen.NewExprLit(*testgen.NewLit(2, tree.NewSpan(4, 5)))
	l3 := testgen.NewExprLit(*testgen.NewLit(3, tree.NewSpan(8, 9)))
	inner := testgen.NewAdd(l1, l2)
	return testgen.NewAdd(testgen.NewExprAdd(*inner), l3)
}

func TestConstructorSpans(t *testing.T) {
	t.Parallel()

	outer := buildSum()

	// Every constructed span is the union of the span-significant children.
	assert.Equal(t, tree.NewSpan(0, 9), outer.Span())
	assert.Equal(t, tree.NewSpan(0, 5), outer.Lhs.Span())
	assert.Equal(t, tree.NewSpan(8, 9), outer.Rhs.Span())

	// Lit takes its span explicitly; the variant wrapper inherits it.
	lit := testgen.NewLit(7, tree.NewSpan(3, 4))
	assert.Equal(t, tree.NewSpan(3, 4), testgen.NewExprLit(*lit).Span())

	// SetSpan overrides the computed span.
	outer.SetSpan(tree.NewSpan(100, 200))
	assert.Equal(t, tree.NewSpan(100, 200), outer.Span())
}

func TestConstructorSpanSkipsZero(t *testing.T) {
	t.Parallel()

	// An operand with no location does not drag the span to offset zero.
	located := testgen.NewExprLit(*testgen.NewLit(1, tree.NewSpan(4, 5)))
	unlocated := testgen.NewExprLit(*testgen.NewLit(2, tree.Span{}))
	assert.Equal(t, tree.NewSpan(4, 5), testgen.NewAdd(located, unlocated).Span())
	assert.Equal(t, tree.Span{}, testgen.NewAdd(unlocated, unlocated).Span())
}

// spy records the visited nodes in order, failing at failOn if set.
type spy struct {
	visited []string
	failOn  string
}

func (s *spy) visit(name string) error {
	s.visited = append(s.visited, name)
	if name == s.failOn {
		return errors.New("stop at " + name)
	}
	return nil
}

func (s *spy) VisitLit(n *testgen.Lit) error         { return s.visit("Lit") }
func (s *spy) VisitAdd(n *testgen.Add) error         { return s.visit("Add") }
func (s *spy) VisitExprLit(n *testgen.ExprLit) error { return s.visit("ExprLit") }
func (s *spy) VisitExprAdd(n *testgen.ExprAdd) error { return s.visit("ExprAdd") }

func TestWalkOrder(t *testing.T) {
	t.Parallel()

	var s spy
	require.NoError(t, testgen.Walk(&s, buildSum()))
	assert.Equal(t, []string{
		"Add",     // outer
		"ExprAdd", // lhs wrapper
		"Add",     // inner
		"ExprLit", "Lit", // 1
		"ExprLit", "Lit", // 2
		"ExprLit", "Lit", // 3
	}, s.visited)
}

func TestWalkStopsOnError(t *testing.T) {
	t.Parallel()

	s := spy{failOn: "Lit"}
	err := testgen.Walk(&s, buildSum())
	require.EqualError(t, err, "stop at Lit")
	assert.Equal(t, []string{"Add", "ExprAdd", "Add", "ExprLit", "Lit"}, s.visited)
}

func TestWalkNil(t *testing.T) {
	t.Parallel()

	var s spy
	require.NoError(t, testgen.Walk(&s, nil))
	assert.Empty(t, s.visited)
}

func TestVisitExprDoesNotDescend(t *testing.T) {
	t.Parallel()

	var s spy
	outer := buildSum()
	require.NoError(t, testgen.VisitExpr(&s, outer.Lhs))
	assert.Equal(t, []string{"ExprAdd"}, s.visited)

	require.NoError(t, testgen.VisitExpr(&s, nil))
	assert.Equal(t, []string{"ExprAdd"}, s.visited)
}

// identity returns every node unchanged.
type identity struct{}

func (identity) RewriteLit(n *testgen.Lit) (*testgen.Lit, error)         { return n, nil }
func (identity) RewriteAdd(n *testgen.Add) (*testgen.Add, error)         { return n, nil }
func (identity) RewriteExprLit(n *testgen.ExprLit) (testgen.Expr, error) { return n, nil }
func (identity) RewriteExprAdd(n *testgen.ExprAdd) (testgen.Expr, error) { return n, nil }

// folder replaces additions of two literals with the literal sum.
type folder struct{ identity }

func (folder) RewriteExprAdd(n *testgen.ExprAdd) (testgen.Expr, error) {
	lhs, lok := n.Add.Lhs.(*testgen.ExprLit)
	rhs, rok := n.Add.Rhs.(*testgen.ExprLit)
	if !lok || !rok {
		return n, nil
	}
	return testgen.NewExprLit(*testgen.NewLit(lhs.Lit.Value+rhs.Lit.Value, n.Span())), nil
}

func TestRewriteIdentityCopies(t *testing.T) {
	t.Parallel()

	outer := buildSum()
	got, err := testgen.Rewrite(identity{}, outer)
	require.NoError(t, err)

	// The result is structurally equal but freshly allocated: mutating it
	// leaves the original alone.
	result := got.(*testgen.Add)
	require.NotSame(t, outer, result)
	assert.Equal(t, testgen.Dump(outer), testgen.Dump(result))

	result.Rhs.(*testgen.ExprLit).Lit.Value = 42
	assert.Equal(t, int64(3), outer.Rhs.(*testgen.ExprLit).Lit.Value)
}

func TestRewriteFoldsVariants(t *testing.T) {
	t.Parallel()

	outer := buildSum()
	got, err := testgen.Rewrite(folder{}, outer)
	require.NoError(t, err)

	// (1 + 2) folded into 3; the folded node keeps the addition's span.
	result := got.(*testgen.Add)
	folded, ok := result.Lhs.(*testgen.ExprLit)
	require.True(t, ok, "lhs should have been folded to a literal")
	assert.Equal(t, int64(3), folded.Lit.Value)
	assert.Equal(t, tree.NewSpan(0, 5), folded.Span())

	// The original tree is untouched.
	_, stillAdd := outer.Lhs.(*testgen.ExprAdd)
	assert.True(t, stillAdd)
}

func TestRewriteKeepsNodeFreeMembers(t *testing.T) {
	t.Parallel()

	// A slice of plain values has no tree children; the copy handed to the
	// rewriter must still carry it.
	lit := testgen.NewLit(1, tree.NewSpan(0, 1))
	lit.Notes = []string{"a", "b"}

	got, err := testgen.Rewrite(identity{}, lit)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.(*testgen.Lit).Notes)
}

// deleter drops every addition node.
type deleter struct{ identity }

func (deleter) RewriteAdd(n *testgen.Add) (*testgen.Add, error) { return nil, nil }

func TestRewriteDeleteYieldsUntypedNil(t *testing.T) {
	t.Parallel()

	l1 := testgen.NewExprLit(*testgen.NewLit(1, tree.NewSpan(0, 1)))
	l2 := testgen.NewExprLit(*testgen.NewLit(2, tree.NewSpan(4, 5)))

	got, err := testgen.Rewrite(deleter{}, testgen.NewAdd(l1, l2))
	require.NoError(t, err)
	// The result must be an untyped nil, not a nil *Add boxed in tree.Node.
	require.True(t, got == nil, "got %T", got)
}

// failing errors out on every literal.
type failing struct{ identity }

func (failing) RewriteLit(n *testgen.Lit) (*testgen.Lit, error) {
	return nil, errors.New("no literals allowed")
}

func TestRewriteStopsOnError(t *testing.T) {
	t.Parallel()

	got, err := testgen.Rewrite(failing{}, buildSum())
	require.EqualError(t, err, "no literals allowed")
	assert.Nil(t, got)
}

func TestRewriteNil(t *testing.T) {
	t.Parallel()

	got, err := testgen.Rewrite(identity{}, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	expr, err := testgen.RewriteExpr(identity{}, nil)
	require.NoError(t, err)
	assert.Nil(t, expr)
}

func TestDump(t *testing.T) {
	t.Parallel()

	l1 := testgen.NewExprLit(*testgen.NewLit(1, tree.NewSpan(0, 1)))
	l2 := testgen.NewExprLit(*testgen.NewLit(2, tree.NewSpan(4, 5)))
	inner := testgen.NewAdd(l1, l2)

	assert.Equal(t,
		"(Add [0..5]"+
			" lhs=(ExprLit [0..1] lit=(Lit [0..1] value=1 text=nil notes=[]))"+
			" rhs=(ExprLit [4..5] lit=(Lit [4..5] value=2 text=nil notes=[])))",
		testgen.Dump(inner))

	text := "one"
	lit := testgen.NewLit(1, tree.NewSpan(0, 3))
	lit.Text = &text
	lit.Notes = []string{"a", "b"}
	assert.Equal(t, `(Lit [0..3] value=1 text="one" notes=["a" "b"])`, testgen.Dump(lit))

	assert.Equal(t, "()", testgen.Dump(nil))
}

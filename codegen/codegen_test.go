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

package codegen_test

import (
	"go/format"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/astgen/codegen"
	"github.com/bufbuild/astgen/reporter"
	"github.com/bufbuild/astgen/resolver"
	"github.com/bufbuild/astgen/schema"
)

const exprJSON = `{
  "package": "expr",
  "root": "Expr",
  "Expr": {"kind": "choice", "variants": [
    {"name": "Lit", "payload": "Lit"},
    {"name": "Add", "payload": "Add"},
    {"name": "Missing"}
  ]},
  "Lit": {"kind": "record", "fields": [
    {"name": "value", "type": "int"},
    {"name": "text", "type": "string", "optional": true}
  ]},
  "Add": {"kind": "record", "fields": [
    {"name": "lhs", "type": {"ref": "Expr", "indirect": true}, "span": true},
    {"name": "rhs", "type": {"ref": "Expr", "indirect": true}, "span": true}
  ]}
}`

func generate(t *testing.T, text string, cfg codegen.Config) []byte {
	t.Helper()

	handler := reporter.NewHandler(nil)
	s, err := schema.Load(schema.NewSource("test.json", []byte(text)), handler)
	require.NoError(t, err)
	g, err := resolver.Resolve(s, handler)
	require.NoError(t, err)
	out, err := codegen.Generate(s, g, cfg, handler)
	require.NoError(t, err)
	return out
}

func TestGenerateExpr(t *testing.T) {
	t.Parallel()

	out := string(generate(t, exprJSON, codegen.Config{}))

	// The package name comes from the schema's hint.
	assert.Contains(t, out, "// Code generated by astgen. DO NOT EDIT.")
	assert.Contains(t, out, "package expr\n")
	assert.Contains(t, out, `"github.com/bufbuild/astgen/tree"`)
	assert.Contains(t, out, "type Root = Expr\n")

	// The choice interface and its variant markers.
	assert.Contains(t, out, "type Expr interface {")
	assert.Contains(t, out, "isExpr()")
	assert.Contains(t, out, "func (*ExprLit) isExpr()")
	assert.Contains(t, out, "func (*ExprAdd) isExpr()")
	assert.Contains(t, out, "func (*ExprMissing) isExpr()")

	// Records and constructors. Lit has no span-significant fields, so its
	// constructor takes the span explicitly and skips the optional field.
	assert.Contains(t, out, "type Lit struct {")
	assert.Contains(t, out, "func NewLit(value int64, span tree.Span) *Lit {")
	assert.Contains(t, out, "*string // optional; nil means absent")

	// Add computes its span from its operands.
	assert.Contains(t, out, "func NewAdd(lhs Expr, rhs Expr) *Add {")
	assert.Contains(t, out, "tree.Join(n.Lhs, n.Rhs)")

	// Span methods: value receiver for Span, pointer receiver for SetSpan.
	assert.Contains(t, out, "func (n Add) Span() tree.Span")
	assert.Contains(t, out, "func (n *Add) SetSpan(span tree.Span)")

	// Traversal scaffolding.
	assert.Contains(t, out, "type Visitor interface {")
	assert.Contains(t, out, "type Rewriter interface {")
	assert.Contains(t, out, "func Walk(v Visitor, n tree.Node) error {")
	assert.Contains(t, out, "func Rewrite(r Rewriter, n tree.Node) (tree.Node, error) {")
	assert.Contains(t, out, "func VisitExpr(v Visitor, n Expr) error {")
	assert.Contains(t, out, "func RewriteExpr(r Rewriter, n Expr) (Expr, error) {")
	assert.Contains(t, out, "func Dump(n tree.Node) string {")

	// One visit and one rewrite method per record and per variant.
	for _, m := range []string{
		"VisitLit(*Lit) error",
		"VisitAdd(*Add) error",
		"VisitExprLit(*ExprLit) error",
		"VisitExprAdd(*ExprAdd) error",
		"VisitExprMissing(*ExprMissing) error",
		"RewriteLit(*Lit) (*Lit, error)",
		"RewriteAdd(*Add) (*Add, error)",
		"RewriteExprLit(*ExprLit) (Expr, error)",
		"RewriteExprAdd(*ExprAdd) (Expr, error)",
		"RewriteExprMissing(*ExprMissing) (Expr, error)",
	} {
		assert.Contains(t, out, m)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()

	first := generate(t, exprJSON, codegen.Config{})
	for range 5 {
		again := generate(t, exprJSON, codegen.Config{})
		if diff := cmp.Diff(string(first), string(again)); diff != "" {
			t.Fatalf("output changed between runs (-first +again):\n%s", diff)
		}
	}
}

func TestGenerateOutputIsGofmted(t *testing.T) {
	t.Parallel()

	out := generate(t, exprJSON, codegen.Config{})
	formatted, err := format.Source(out)
	require.NoError(t, err)
	assert.Equal(t, out, formatted, "generated output must be stable under gofmt")
}

func TestGenerateConfig(t *testing.T) {
	t.Parallel()

	out := string(generate(t, exprJSON, codegen.Config{
		Package:       "myast",
		RuntimeImport: "example.com/runtime/tree",
	}))
	assert.Contains(t, out, "package myast\n")
	assert.Contains(t, out, `"example.com/runtime/tree"`)
	assert.NotContains(t, out, codegen.DefaultRuntimeImport)
}

func TestGenerateDefaultPackage(t *testing.T) {
	t.Parallel()

	// No package hint in the schema and none in the config.
	out := string(generate(t, `{
		"root": "Lit",
		"Lit": {"kind": "record", "fields": [{"name": "value", "type": "int"}]}
	}`, codegen.Config{}))
	assert.Contains(t, out, "package ast\n")
}

func TestGenerateSequenceHandling(t *testing.T) {
	t.Parallel()

	out := string(generate(t, `{
		"root": "File",
		"File": {"kind": "record", "fields": [
			{"name": "decls", "type": {"seq": "Decl"}, "span": true},
			{"name": "names", "type": {"seq": "string"}}
		]},
		"Decl": {"kind": "record", "fields": [{"name": "x", "type": "int"}]}
	}`, codegen.Config{}))

	assert.Contains(t, out, "Decls []Decl")
	assert.Contains(t, out, "Names []string")
	assert.Contains(t, out, "tree.JoinSlice(n.Decls)")
	// Walk recurses into sequence elements by address.
	assert.Contains(t, out, "&n.Decls[i]")
}

func TestGenerateNodeFreeSequences(t *testing.T) {
	t.Parallel()

	out := string(generate(t, `{
		"root": "File",
		"File": {"kind": "record", "fields": [
			{"name": "names", "type": {"seq": "string"}},
			{"name": "tags", "type": {"seq": "int"}, "optional": true},
			{"name": "matrix", "type": {"seq": {"seq": "bool"}}}
		]}
	}`, codegen.Config{}))

	assert.Contains(t, out, "Names []string")
	assert.Contains(t, out, "Matrix [][]bool")

	// Members without node references are carried by the shallow copy as-is:
	// Walk emits no loop (whose index would be unused) and the rewrite helper
	// builds no scratch slice (which would replace the member with zeroes).
	assert.Contains(t, out,
		"case *File:\n\t\tif err := v.VisitFile(n); err != nil {\n\t\t\treturn err\n\t\t}\n\t\treturn nil")
	assert.Contains(t, out,
		"func rewriteFile(r Rewriter, n *File) (*File, error) {\n\tm := *n\n\treturn r.RewriteFile(&m)\n}")
	assert.NotContains(t, out, "newNames")
	assert.NotContains(t, out, "newTags")
	assert.NotContains(t, out, "newMatrix")

	// Dump still renders them.
	assert.Contains(t, out, `names=[`)
	assert.Contains(t, out, `matrix=[`)
}

func TestGenerateEmissionOrderFollowsGraph(t *testing.T) {
	t.Parallel()

	out := string(generate(t, `{
		"root": "A",
		"A": {"kind": "record", "fields": [{"name": "b", "type": "B"}]},
		"B": {"kind": "record", "fields": [{"name": "x", "type": "int"}]}
	}`, codegen.Config{}))

	// B is a direct dependency of A and is emitted first.
	assert.Less(t,
		strings.Index(out, "type B struct"),
		strings.Index(out, "type A struct"))
}

func TestEmitterNameCollisions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{
			"kind collides with generated Walk",
			`{"root": "Walk", "Walk": {"kind": "record"}}`,
		},
		{
			"kind collides with another kind's constructor",
			`{"root": "Foo",
			  "Foo": {"kind": "record"},
			  "NewFoo": {"kind": "record"}}`,
		},
		{
			"variant type collides with a kind",
			`{"root": "EA",
			  "EA": {"kind": "choice", "variants": [{"name": "B"}]},
			  "EAB": {"kind": "record"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := reporter.NewHandler(nil)
			s, err := schema.Load(schema.NewSource("test.json", []byte(tt.text)), handler)
			require.NoError(t, err)
			g, err := resolver.Resolve(s, handler)
			require.NoError(t, err)

			_, err = codegen.Generate(s, g, codegen.Config{}, handler)
			var emission *reporter.EmissionError
			require.ErrorAs(t, err, &emission)
		})
	}
}

func TestEmitKindUnknown(t *testing.T) {
	t.Parallel()

	handler := reporter.NewHandler(nil)
	s, err := schema.Load(schema.NewSource("test.json", []byte(`{
		"root": "Lit", "Lit": {"kind": "record"}
	}`)), handler)
	require.NoError(t, err)
	g, err := resolver.Resolve(s, handler)
	require.NoError(t, err)
	e, err := codegen.NewEmitter(s, g, codegen.Config{}, handler)
	require.NoError(t, err)

	_, err = e.EmitKind("Ghost")
	assert.Error(t, err)
}

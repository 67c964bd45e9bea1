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

// Package schema contains the model of a validated AST grammar and the
// loader that materializes it from a JSON or YAML schema document.
//
// The model is closed, typed data: dynamic typing is confined to [Load],
// which validates the untyped document in a single pass and either returns a
// fully-populated [Schema] or reports every independent structural problem
// it finds through the caller's [reporter.Handler]. A Schema is immutable
// once Load returns; every later phase of generation only reads it.
package schema

import (
	"fmt"
	"iter"
	"strings"

	"github.com/tidwall/btree"

	"github.com/bufbuild/astgen/internal/arena"
	"github.com/bufbuild/astgen/reporter"
	"github.com/bufbuild/astgen/tree"
)

// Kind discriminates the two flavors of NodeKind.
type Kind byte

const (
	// KindRecord is a node with a fixed, named set of fields.
	KindRecord Kind = iota + 1
	// KindChoice is a node that is exactly one of several named variants.
	KindChoice
)

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindChoice:
		return "choice"
	default:
		return fmt.Sprintf("Kind(%d)", byte(k))
	}
}

// Schema is a validated AST grammar: an ordered collection of node kinds and
// a designated root. It exclusively owns all of its node kinds and type
// expressions.
type Schema struct {
	source *Source
	pkg    string
	kinds  []*NodeKind
	byName btree.Map[string, *NodeKind]
	root   *NodeKind

	types arena.Arena[TypeExpr]
}

// Source returns the document this schema was loaded from.
func (s *Schema) Source() *Source { return s.source }

// Package returns the schema's package hint, or "" if the document did not
// declare one.
func (s *Schema) Package() string { return s.pkg }

// Len returns the number of declared node kinds.
func (s *Schema) Len() int { return len(s.kinds) }

// Kinds iterates over the node kinds in declaration order.
func (s *Schema) Kinds() iter.Seq[*NodeKind] {
	return func(yield func(*NodeKind) bool) {
		for _, k := range s.kinds {
			if !yield(k) {
				return
			}
		}
	}
}

// Kind looks up a node kind by name, returning nil if there is no such kind.
func (s *Schema) Kind(name string) *NodeKind {
	k, _ := s.byName.Get(name)
	return k
}

// Root returns the designated root node kind.
func (s *Schema) Root() *NodeKind { return s.root }

// NodeKind is a named entity in the grammar: a record with fields, or a
// choice over variants.
type NodeKind struct {
	schema *Schema
	name   string
	doc    string
	kind   Kind
	index  int
	span   tree.Span

	fields   []Field   // KindRecord
	variants []Variant // KindChoice
}

// Schema returns the schema that owns this kind.
func (k *NodeKind) Schema() *Schema { return k.schema }

// Name returns the kind's declared name.
func (k *NodeKind) Name() string { return k.name }

// Doc returns the kind's documentation string, if any.
func (k *NodeKind) Doc() string { return k.doc }

// Kind returns whether this is a record or a choice.
func (k *NodeKind) Kind() Kind { return k.kind }

// Index returns the kind's declaration index within the schema document.
func (k *NodeKind) Index() int { return k.index }

// Span returns where in the schema document this kind was declared.
func (k *NodeKind) Span() tree.Span { return k.span }

// Pos returns the kind's declaration position, for diagnostics.
func (k *NodeKind) Pos() reporter.Position {
	return k.schema.source.Location(k.span.Start)
}

// Fields returns a record's fields in declaration order. It returns nil for
// a choice.
func (k *NodeKind) Fields() []Field { return k.fields }

// Variants returns a choice's variants in declaration order. It returns nil
// for a record.
func (k *NodeKind) Variants() []Variant { return k.variants }

// Field is a single named member of a record kind or of a variant's inline
// record payload.
type Field struct {
	name    string
	doc     string
	ty      *TypeExpr
	spanful bool
	span    tree.Span
}

// Name returns the field's declared name.
func (f Field) Name() string { return f.name }

// Doc returns the field's documentation string, if any.
func (f Field) Doc() string { return f.doc }

// Type returns the field's type expression.
func (f Field) Type() *TypeExpr { return f.ty }

// Optional returns whether this field may be absent. An "optional": true
// flag in the document is normalized into an OptionalOf wrapper at load
// time, so a field is optional exactly when its type is [TypeOpt].
func (f Field) Optional() bool { return f.ty.Kind() == TypeOpt }

// SpanSignificant returns whether this field participates in its node's
// computed span.
func (f Field) SpanSignificant() bool { return f.spanful }

// Span returns where in the schema document this field was declared.
func (f Field) Span() tree.Span { return f.span }

// PayloadKind discriminates the three payload shapes of a variant.
type PayloadKind byte

const (
	// PayloadUnit is a variant with no payload.
	PayloadUnit PayloadKind = iota
	// PayloadRef is a variant whose payload is a reference to another kind.
	PayloadRef
	// PayloadInline is a variant carrying an inline record of fields.
	PayloadInline
)

// Variant is a single named case of a choice kind.
type Variant struct {
	name    string
	doc     string
	payload PayloadKind
	ref     *TypeExpr // PayloadRef; always a TypeRef
	fields  []Field   // PayloadInline
	span    tree.Span
}

// Name returns the variant's declared name.
func (v Variant) Name() string { return v.name }

// Doc returns the variant's documentation string, if any.
func (v Variant) Doc() string { return v.doc }

// Payload returns the shape of the variant's payload.
func (v Variant) Payload() PayloadKind { return v.payload }

// Ref returns the payload's node reference. It is non-nil exactly when
// Payload is [PayloadRef], and its kind is always [TypeRef].
func (v Variant) Ref() *TypeExpr { return v.ref }

// Fields returns the payload's inline fields in declaration order. It is
// non-nil exactly when Payload is [PayloadInline].
func (v Variant) Fields() []Field { return v.fields }

// Span returns where in the schema document this variant was declared.
func (v Variant) Span() tree.Span { return v.span }

// TypeKind discriminates the cases of a type expression.
type TypeKind byte

const (
	// TypePrimitive is a built-in scalar type.
	TypePrimitive TypeKind = iota + 1
	// TypeRef is a reference to a declared node kind.
	TypeRef
	// TypeSeq is an ordered sequence of an element type.
	TypeSeq
	// TypeOpt is an optional ("may be absent") wrapper around a type.
	TypeOpt
)

// TypeExpr is a field or payload type: a primitive, a node reference, or a
// sequence/optional wrapper around another type expression. All TypeExprs
// are allocated on their Schema's arena and live exactly as long as it does.
type TypeExpr struct {
	kind     TypeKind
	prim     Primitive
	ref      string
	indirect bool
	elem     *TypeExpr
	span     tree.Span
}

// Kind returns which case this type expression is.
func (t *TypeExpr) Kind() TypeKind { return t.kind }

// Prim returns the primitive for a [TypePrimitive] expression.
func (t *TypeExpr) Prim() Primitive { return t.prim }

// Ref returns the referenced kind name for a [TypeRef] expression.
func (t *TypeExpr) Ref() string { return t.ref }

// Indirect returns whether a [TypeRef] expression carries an explicit
// indirection marker.
func (t *TypeExpr) Indirect() bool { return t.indirect }

// Elem returns the element type of a [TypeSeq] or [TypeOpt] expression.
func (t *TypeExpr) Elem() *TypeExpr { return t.elem }

// Span returns where in the schema document this type expression appears.
func (t *TypeExpr) Span() tree.Span { return t.span }

// Innermost unwraps any sequence and optional layers and returns the
// primitive or reference at the core of this type expression, along with
// whether any layer was unwrapped.
func (t *TypeExpr) Innermost() (core *TypeExpr, wrapped bool) {
	core = t
	for core.kind == TypeSeq || core.kind == TypeOpt {
		core = core.elem
		wrapped = true
	}
	return core, wrapped
}

// String renders the type expression in the schema's own notation, e.g.
// "seq(opt(Expr))".
func (t *TypeExpr) String() string {
	var b strings.Builder
	for cur := t; ; cur = cur.elem {
		switch cur.kind {
		case TypePrimitive:
			b.WriteString(cur.prim.String())
		case TypeRef:
			b.WriteString(cur.ref)
			if cur.indirect {
				b.WriteString("!")
			}
		case TypeSeq:
			b.WriteString("seq(")
			continue
		case TypeOpt:
			b.WriteString("opt(")
			continue
		}
		break
	}
	for cur := t; cur.kind == TypeSeq || cur.kind == TypeOpt; cur = cur.elem {
		b.WriteString(")")
	}
	return b.String()
}

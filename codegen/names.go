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

package codegen

import (
	"github.com/bufbuild/astgen/internal/idents"
	"github.com/bufbuild/astgen/schema"
)

func export(name string) string { return idents.Export(name) }

// goPrims maps schema primitives to the Go types the emitted members use.
// The schema-level "int"/"uint" are fixed to 64 bits so that generated trees
// mean the same thing on every platform.
var goPrims = map[schema.Primitive]string{
	schema.PrimInt:     "int64",
	schema.PrimInt8:    "int8",
	schema.PrimInt16:   "int16",
	schema.PrimInt32:   "int32",
	schema.PrimInt64:   "int64",
	schema.PrimUint:    "uint64",
	schema.PrimUint8:   "uint8",
	schema.PrimUint16:  "uint16",
	schema.PrimUint32:  "uint32",
	schema.PrimUint64:  "uint64",
	schema.PrimFloat32: "float32",
	schema.PrimFloat64: "float64",
	schema.PrimBool:    "bool",
	schema.PrimString:  "string",
	schema.PrimBytes:   "[]byte",
	schema.PrimRune:    "rune",
}

// goType renders the Go member type for a type expression.
//
// A reference to a record kind is an inline value when direct and a pointer
// when indirect; a reference to a choice kind is always the choice's
// interface type, which is inherently indirect. An optional layer turns into
// a pointer for primitives and record references, and into "nil means
// absent" for interfaces and slices, which are already nullable.
func (e *Emitter) goType(t *schema.TypeExpr) string {
	switch t.Kind() {
	case schema.TypePrimitive:
		return goPrims[t.Prim()]

	case schema.TypeRef:
		target := e.schema.Kind(t.Ref())
		name := e.typeName(target.Name(), "")
		if target.Kind() == schema.KindChoice {
			return name
		}
		if t.Indirect() {
			return "*" + name
		}
		return name

	case schema.TypeSeq:
		return "[]" + e.goType(t.Elem())

	case schema.TypeOpt:
		elem := t.Elem()
		switch elem.Kind() {
		case schema.TypePrimitive:
			return "*" + goPrims[elem.Prim()]
		case schema.TypeRef:
			target := e.schema.Kind(elem.Ref())
			if target.Kind() == schema.KindChoice {
				return e.typeName(target.Name(), "")
			}
			return "*" + e.typeName(target.Name(), "")
		default:
			// opt(seq): a nil slice is the absent value.
			return e.goType(elem)
		}

	default:
		panic("codegen: invalid type expression")
	}
}

// typeShape classifies how a member type holds its node children, which is
// what the traversal fragments care about.
type typeShape byte

const (
	shapeScalar typeShape = iota // primitive; no children
	shapeValue                   // inline record value
	shapePtr                     // *Record
	shapeIface                   // choice interface
	shapeSeq                     // slice of any of the above
)

func (e *Emitter) shape(t *schema.TypeExpr) typeShape {
	switch t.Kind() {
	case schema.TypePrimitive:
		return shapeScalar
	case schema.TypeRef:
		target := e.schema.Kind(t.Ref())
		switch {
		case target.Kind() == schema.KindChoice:
			return shapeIface
		case t.Indirect():
			return shapePtr
		default:
			return shapeValue
		}
	case schema.TypeSeq:
		return shapeSeq
	case schema.TypeOpt:
		elem := t.Elem()
		if elem.Kind() == schema.TypeRef {
			target := e.schema.Kind(elem.Ref())
			if target.Kind() == schema.KindChoice {
				return shapeIface
			}
			return shapePtr
		}
		if elem.Kind() == schema.TypeSeq {
			return shapeSeq
		}
		return shapeScalar // optional primitive
	default:
		panic("codegen: invalid type expression")
	}
}

// hasNodes reports whether a type expression reaches a node reference at any
// depth. Members without one hold no tree children, so traversal code has
// nothing to emit for them.
func hasNodes(t *schema.TypeExpr) bool {
	core, _ := t.Innermost()
	return core.Kind() == schema.TypeRef
}

// refTarget returns the kind a type expression's innermost reference points
// at, or nil for primitives.
func (e *Emitter) refTarget(t *schema.TypeExpr) *schema.NodeKind {
	core, _ := t.Innermost()
	if core.Kind() != schema.TypeRef {
		return nil
	}
	return e.schema.Kind(core.Ref())
}

// localName picks a receiver-local variable name that cannot collide with
// any of the given parameter names.
func localName(base string, taken []string) string {
	name := base
	for {
		collides := false
		for _, t := range taken {
			if t == name {
				collides = true
				break
			}
		}
		if !collides {
			return name
		}
		name += "_"
	}
}

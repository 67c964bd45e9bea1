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
	"fmt"
	"strings"

	"github.com/bufbuild/astgen/schema"
)

// recordTraversal contributes a record kind's fragments to the file-wide
// traversal machinery.
func (e *Emitter) recordTraversal(sec *Section, name string, members []member) {
	sec.visitMethods = append(sec.visitMethods,
		fmt.Sprintf("Visit%s(*%s) error", name, name))
	sec.rewriteMethods = append(sec.rewriteMethods,
		fmt.Sprintf("Rewrite%s(*%s) (*%s, error)", name, name, name))

	sec.walkCases += e.walkCase(name, members)
	sec.rewriteCases += rewriteDispatchCase(name)
	sec.rewriteFuncs += e.rewriteFunc(name, "*"+name, members)
	sec.dumpCases += e.dumpCase(name, members)
}

// choiceTraversal contributes a choice kind's fragments: per-variant visitor
// and rewriter methods, the per-choice dispatch functions, and the variants'
// walk/rewrite/dump cases.
func (e *Emitter) choiceTraversal(sec *Section, k *schema.NodeKind, name string) {
	var visit, rewrite strings.Builder

	fmt.Fprintf(&visit, "// Visit%s invokes the variant-specific method of v for n. A nil n is a\n", name)
	fmt.Fprintf(&visit, "// no-op. Unlike [Walk], it does not descend into children.\n")
	fmt.Fprintf(&visit, "func Visit%s(v Visitor, n %s) error {\n", name, name)
	visit.WriteString("\tswitch n := n.(type) {\n")
	visit.WriteString("\tcase nil:\n\t\treturn nil\n")

	fmt.Fprintf(&rewrite, "// Rewrite%s rewrites n bottom-up using r. The replacement may be a\n", name)
	fmt.Fprintf(&rewrite, "// different variant of %s, or nil if n is nil.\n", name)
	fmt.Fprintf(&rewrite, "func Rewrite%s(r Rewriter, n %s) (%s, error) {\n", name, name, name)
	rewrite.WriteString("\tswitch n := n.(type) {\n")
	rewrite.WriteString("\tcase nil:\n\t\treturn nil, nil\n")

	for _, v := range k.Variants() {
		vname := e.typeName(k.Name(), v.Name())
		members := e.variantMembers(v)

		sec.visitMethods = append(sec.visitMethods,
			fmt.Sprintf("Visit%s(*%s) error", vname, vname))
		sec.rewriteMethods = append(sec.rewriteMethods,
			fmt.Sprintf("Rewrite%s(*%s) (%s, error)", vname, vname, name))

		fmt.Fprintf(&visit, "\tcase *%s:\n\t\treturn v.Visit%s(n)\n", vname, vname)
		fmt.Fprintf(&rewrite, "\tcase *%s:\n\t\treturn rewrite%s(r, n)\n", vname, vname)

		sec.walkCases += e.walkCase(vname, members)
		sec.rewriteCases += rewriteDispatchCase(vname)
		sec.rewriteFuncs += e.rewriteFunc(vname, name, members)
		sec.dumpCases += e.dumpCase(vname, members)
	}

	fmt.Fprintf(&visit, "\tdefault:\n\t\treturn fmt.Errorf(\"unknown %s variant %%T\", n)\n", name)
	visit.WriteString("\t}\n}\n\n")
	fmt.Fprintf(&rewrite, "\tdefault:\n\t\treturn nil, fmt.Errorf(\"unknown %s variant %%T\", n)\n", name)
	rewrite.WriteString("\t}\n}\n\n")

	sec.dispatch += visit.String() + rewrite.String()
}

// rewriteDispatchCase renders a case of the generic Rewrite type switch. The
// indirection through local m keeps a nil typed pointer from being boxed
// into a non-nil tree.Node, on the error path and when the rewriter deletes
// the node by returning nil.
func rewriteDispatchCase(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\tcase *%s:\n", name)
	fmt.Fprintf(&b, "\t\tm, err := rewrite%s(r, n)\n", name)
	b.WriteString("\t\tif err != nil || m == nil {\n\t\t\treturn nil, err\n\t\t}\n")
	b.WriteString("\t\treturn m, nil\n")
	return b.String()
}

// walkCase renders one case of Walk's type switch: visit the node, then walk
// its node-valued children in declared order.
func (e *Emitter) walkCase(name string, members []member) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\tcase *%s:\n", name)
	fmt.Fprintf(&b, "\t\tif err := v.Visit%s(n); err != nil {\n\t\t\treturn err\n\t\t}\n", name)
	for _, m := range members {
		e.walkStmts(&b, 2, m.typ, "n."+m.goName)
	}
	b.WriteString("\t\treturn nil\n")
	return b.String()
}

func (e *Emitter) walkStmts(b *strings.Builder, depth int, t *schema.TypeExpr, src string) {
	if !hasNodes(t) {
		// No tree children anywhere in the member; looping over a sequence
		// of primitives would leave the generated index unused.
		return
	}
	indent := strings.Repeat("\t", depth)
	sh := e.shape(t)
	if t.Kind() == schema.TypeOpt {
		t = t.Elem()
	}

	switch sh {
	case shapeValue:
		fmt.Fprintf(b, "%sif err := Walk(v, &%s); err != nil {\n%s\treturn err\n%s}\n", indent, src, indent, indent)
	case shapeIface:
		// Walk treats a nil interface as a no-op, so no check is needed.
		fmt.Fprintf(b, "%sif err := Walk(v, %s); err != nil {\n%s\treturn err\n%s}\n", indent, src, indent, indent)
	case shapePtr:
		fmt.Fprintf(b, "%sif %s != nil {\n", indent, src)
		fmt.Fprintf(b, "%s\tif err := Walk(v, %s); err != nil {\n%s\t\treturn err\n%s\t}\n", indent, src, indent, indent)
		fmt.Fprintf(b, "%s}\n", indent)
	case shapeSeq:
		i := indexVar(depth)
		fmt.Fprintf(b, "%sfor %s := range %s {\n", indent, i, src)
		e.walkStmts(b, depth+1, t.Elem(), fmt.Sprintf("%s[%s]", src, i))
		fmt.Fprintf(b, "%s}\n", indent)
	}
}

// rewriteFunc renders the per-type helper that rewrites a node's children,
// shallow-copies it with its span preserved, and hands the copy to the
// user's method.
func (e *Emitter) rewriteFunc(name, result string, members []member) string {
	var b strings.Builder
	fmt.Fprintf(&b, "func rewrite%s(r Rewriter, n *%s) (%s, error) {\n", name, name, result)
	b.WriteString("\tm := *n\n")
	for _, m := range members {
		e.rewriteStmts(&b, 1, m.typ, "n."+m.goName, "m."+m.goName, "new"+m.goName)
	}
	fmt.Fprintf(&b, "\treturn r.Rewrite%s(&m)\n", name)
	b.WriteString("}\n\n")
	return b.String()
}

// rewriteStmts renders the statements that rewrite one child and assign the
// result to the copy's member. tmp names the scratch variable; nesting adds
// a depth suffix so inner scopes cannot shadow outer ones.
func (e *Emitter) rewriteStmts(b *strings.Builder, depth int, t *schema.TypeExpr, src, dst, tmp string) {
	if !hasNodes(t) {
		// The shallow copy already carries the member; rebuilding a
		// node-free sequence would only replace it with a zeroed slice.
		return
	}
	indent := strings.Repeat("\t", depth)
	sh := e.shape(t)
	if t.Kind() == schema.TypeOpt {
		t = t.Elem()
	}
	if depth > 1 {
		tmp = fmt.Sprintf("%s%d", tmp, depth)
	}

	switch sh {
	case shapeIface:
		choice := e.typeName(e.refTarget(t).Name(), "")
		fmt.Fprintf(b, "%s%s, err := Rewrite%s(r, %s)\n", indent, tmp, choice, src)
		fmt.Fprintf(b, "%sif err != nil {\n%s\treturn nil, err\n%s}\n", indent, indent, indent)
		fmt.Fprintf(b, "%s%s = %s\n", indent, dst, tmp)

	case shapePtr:
		target := e.typeName(e.refTarget(t).Name(), "")
		fmt.Fprintf(b, "%sif %s != nil {\n", indent, src)
		fmt.Fprintf(b, "%s\t%s, err := rewrite%s(r, %s)\n", indent, tmp, target, src)
		fmt.Fprintf(b, "%s\tif err != nil {\n%s\t\treturn nil, err\n%s\t}\n", indent, indent, indent)
		fmt.Fprintf(b, "%s\t%s = %s\n", indent, dst, tmp)
		fmt.Fprintf(b, "%s}\n", indent)

	case shapeValue:
		target := e.typeName(e.refTarget(t).Name(), "")
		fmt.Fprintf(b, "%s%s, err := rewrite%s(r, &%s)\n", indent, tmp, target, src)
		fmt.Fprintf(b, "%sif err != nil {\n%s\treturn nil, err\n%s}\n", indent, indent, indent)
		fmt.Fprintf(b, "%s%s = *%s\n", indent, dst, tmp)

	case shapeSeq:
		i := indexVar(depth)
		fmt.Fprintf(b, "%sif %s != nil {\n", indent, src)
		fmt.Fprintf(b, "%s\t%s := make(%s, len(%s))\n", indent, tmp, e.goType(t), src)
		fmt.Fprintf(b, "%s\tfor %s := range %s {\n", indent, i, src)
		e.rewriteStmts(b, depth+2, t.Elem(),
			fmt.Sprintf("%s[%s]", src, i),
			fmt.Sprintf("%s[%s]", tmp, i),
			tmp)
		fmt.Fprintf(b, "%s\t}\n", indent)
		fmt.Fprintf(b, "%s\t%s = %s\n", indent, dst, tmp)
		fmt.Fprintf(b, "%s}\n", indent)
	}
}

// dumpCase renders one case of dumpNode's type switch.
func (e *Emitter) dumpCase(name string, members []member) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\tcase *%s:\n", name)
	fmt.Fprintf(&b, "\t\tfmt.Fprintf(b, \"(%s %%v\", n.Span())\n", name)
	for _, m := range members {
		e.dumpStmts(&b, 2, m.typ, "n."+m.goName, m.raw)
	}
	b.WriteString("\t\tb.WriteString(\")\")\n")
	return b.String()
}

// dumpStmts renders the statements that print one member. label is the
// member's schema-level name; sequence elements print unlabeled.
func (e *Emitter) dumpStmts(b *strings.Builder, depth int, t *schema.TypeExpr, src, label string) {
	indent := strings.Repeat("\t", depth)
	prefix := ""
	if label != "" {
		prefix = " " + label + "="
	}

	if t.Kind() == schema.TypeOpt {
		elem := t.Elem()
		if elem.Kind() == schema.TypePrimitive {
			fmt.Fprintf(b, "%sif %s != nil {\n", indent, src)
			fmt.Fprintf(b, "%s\tfmt.Fprintf(b, %q, *%s)\n", indent, prefix+primVerb(elem.Prim()), src)
			fmt.Fprintf(b, "%s} else {\n%s\tb.WriteString(%q)\n%s}\n", indent, indent, prefix+"nil", indent)
			return
		}
	}
	sh := e.shape(t)
	if t.Kind() == schema.TypeOpt {
		t = t.Elem()
	}

	switch sh {
	case shapeScalar:
		fmt.Fprintf(b, "%sfmt.Fprintf(b, %q, %s)\n", indent, prefix+primVerb(t.Prim()), src)

	case shapeValue:
		if prefix != "" {
			fmt.Fprintf(b, "%sb.WriteString(%q)\n", indent, prefix)
		}
		fmt.Fprintf(b, "%sdumpNode(b, &%s)\n", indent, src)

	case shapeIface:
		if prefix != "" {
			fmt.Fprintf(b, "%sb.WriteString(%q)\n", indent, prefix)
		}
		fmt.Fprintf(b, "%sdumpNode(b, %s)\n", indent, src)

	case shapePtr:
		if prefix != "" {
			fmt.Fprintf(b, "%sb.WriteString(%q)\n", indent, prefix)
		}
		fmt.Fprintf(b, "%sif %s != nil {\n%s\tdumpNode(b, %s)\n", indent, src, indent, src)
		fmt.Fprintf(b, "%s} else {\n%s\tb.WriteString(\"()\")\n%s}\n", indent, indent, indent)

	case shapeSeq:
		i := indexVar(depth)
		fmt.Fprintf(b, "%sb.WriteString(%q)\n", indent, prefix+"[")
		fmt.Fprintf(b, "%sfor %s := range %s {\n", indent, i, src)
		fmt.Fprintf(b, "%s\tif %s > 0 {\n%s\t\tb.WriteString(\" \")\n%s\t}\n", indent, i, indent, indent)
		e.dumpStmts(b, depth+1, t.Elem(), fmt.Sprintf("%s[%s]", src, i), "")
		fmt.Fprintf(b, "%s}\n", indent)
		fmt.Fprintf(b, "%sb.WriteString(\"]\")\n", indent)
	}
}

// primVerb picks the fmt verb a primitive is dumped with.
func primVerb(p schema.Primitive) string {
	switch p {
	case schema.PrimString, schema.PrimBytes:
		return "%q"
	default:
		return "%v"
	}
}

// indexVar names the loop index at a nesting depth; deeper loops get
// numbered names so they cannot shadow enclosing ones.
func indexVar(depth int) string {
	if depth <= 2 {
		return "i"
	}
	return fmt.Sprintf("i%d", depth)
}

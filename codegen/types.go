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

	"github.com/bufbuild/astgen/internal/idents"
	"github.com/bufbuild/astgen/schema"
)

// member describes one Go struct member of a concrete node type: a record
// field, an inline-payload field, or a variant's node-reference payload.
type member struct {
	goName  string
	param   string // constructor parameter name; members are set positionally
	raw     string // schema-level name, used as the dump label
	doc     string
	typ     *schema.TypeExpr
	spanful bool
	opt     bool
}

func (e *Emitter) fieldMembers(fields []schema.Field) []member {
	members := make([]member, 0, len(fields))
	for _, f := range fields {
		members = append(members, member{
			goName:  export(f.Name()),
			param:   idents.Unexport(f.Name()),
			raw:     f.Name(),
			doc:     f.Doc(),
			typ:     f.Type(),
			spanful: f.SpanSignificant(),
			opt:     f.Optional(),
		})
	}
	return members
}

// emitRecord renders the section for a record kind: its struct type,
// constructor, span methods, and traversal fragments.
func (e *Emitter) emitRecord(sec *Section, k *schema.NodeKind) {
	name := e.typeName(k.Name(), "")
	members := e.fieldMembers(k.Fields())

	doc := k.Doc()
	if doc == "" {
		doc = fmt.Sprintf("%s is the record node %q.", name, k.Name())
	}
	sec.types += e.concreteType(name, doc, members, "")

	e.recordTraversal(sec, name, members)
}

// emitChoice renders the section for a choice kind: its interface, one
// concrete type per variant, and traversal fragments including the
// per-choice dispatch functions.
func (e *Emitter) emitChoice(sec *Section, k *schema.NodeKind) {
	name := e.typeName(k.Name(), "")
	marker := "is" + name

	variantNames := make([]string, len(k.Variants()))
	for i, v := range k.Variants() {
		variantNames[i] = e.typeName(k.Name(), v.Name())
	}

	doc := k.Doc()
	if doc == "" {
		doc = fmt.Sprintf("%s is the choice node %q: one of %s.",
			name, k.Name(), strings.Join(variantNames, ", "))
	}
	var b strings.Builder
	writeDoc(&b, doc)
	fmt.Fprintf(&b, "type %s interface {\n", name)
	b.WriteString("\ttree.Node\n")
	fmt.Fprintf(&b, "\t%s()\n", marker)
	b.WriteString("}\n\n")
	sec.types += b.String()

	for i, v := range k.Variants() {
		vname := variantNames[i]
		members := e.variantMembers(v)

		doc := v.Doc()
		if doc == "" {
			doc = fmt.Sprintf("%s is the %q variant of %s.", vname, v.Name(), name)
		}
		sec.types += e.concreteType(vname, doc, members, marker)
	}

	e.choiceTraversal(sec, k, name)
}

// variantMembers returns the members of a variant's concrete type: none for
// a unit variant, one per field for an inline record, and a single member
// named after the target kind for a node-reference payload.
func (e *Emitter) variantMembers(v schema.Variant) []member {
	switch v.Payload() {
	case schema.PayloadInline:
		return e.fieldMembers(v.Fields())
	case schema.PayloadRef:
		target := v.Ref().Ref()
		return []member{{
			goName: export(target),
			param:  idents.Unexport(target),
			raw:    idents.Unexport(target),
			typ:    v.Ref(),
			// A node-reference payload is the variant's whole content, so it
			// determines the span.
			spanful: true,
		}}
	default:
		return nil
	}
}

// concreteType renders a node struct, its constructor, its span methods, and
// its choice marker method if marker is non-empty.
func (e *Emitter) concreteType(name, doc string, members []member, marker string) string {
	var b strings.Builder

	writeDoc(&b, doc)
	fmt.Fprintf(&b, "type %s struct {\n", name)
	b.WriteString("\tspan tree.Span\n")
	if len(members) > 0 {
		b.WriteString("\n")
	}
	for _, m := range members {
		if m.doc != "" {
			writeIndentedDoc(&b, m.doc)
		}
		fmt.Fprintf(&b, "\t%s %s", m.goName, e.goType(m.typ))
		if m.opt {
			b.WriteString(" // optional; nil means absent")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")

	b.WriteString(e.constructor(name, members))

	fmt.Fprintf(&b, "// Span implements [tree.Spanner].\n")
	fmt.Fprintf(&b, "func (n %s) Span() tree.Span { return n.span }\n\n", name)
	fmt.Fprintf(&b, "// SetSpan replaces the node's span, overriding the computed one.\n")
	fmt.Fprintf(&b, "func (n *%s) SetSpan(span tree.Span) { n.span = span }\n\n", name)

	if marker != "" {
		fmt.Fprintf(&b, "func (*%s) %s() {}\n\n", name, marker)
	}
	return b.String()
}

// constructor renders the NewX function. Non-optional members are
// parameters in declared order; optional members default to absent and are
// set by plain field assignment. If any member is span-significant the span
// is computed by union over those members, otherwise the constructor takes
// the span explicitly.
func (e *Emitter) constructor(name string, members []member) string {
	var (
		params   []string
		assigns  []string
		spanfuls []member
	)
	for _, m := range members {
		if m.opt {
			continue
		}
		params = append(params, m.param)
		assigns = append(assigns, fmt.Sprintf("%s: %s", m.goName, m.param))
		if m.spanful {
			spanfuls = append(spanfuls, m)
		}
	}

	local := localName("n", params)

	var b strings.Builder
	var sig []string
	for _, m := range members {
		if !m.opt {
			sig = append(sig, m.param+" "+e.goType(m.typ))
		}
	}

	if len(spanfuls) == 0 {
		fmt.Fprintf(&b, "// New%s constructs a %s with an explicitly supplied span.\n", name, name)
		sig = append(sig, "span tree.Span")
		fmt.Fprintf(&b, "func New%s(%s) *%s {\n", name, strings.Join(sig, ", "), name)
		assigns = append([]string{"span: span"}, assigns...)
		fmt.Fprintf(&b, "\treturn &%s{%s}\n", name, strings.Join(assigns, ", "))
		b.WriteString("}\n\n")
		return b.String()
	}

	names := make([]string, len(spanfuls))
	for i, m := range spanfuls {
		names[i] = m.goName
	}
	fmt.Fprintf(&b, "// New%s constructs a %s. Its span is the union of the spans of %s.\n",
		name, name, strings.Join(names, ", "))
	fmt.Fprintf(&b, "func New%s(%s) *%s {\n", name, strings.Join(sig, ", "), name)
	fmt.Fprintf(&b, "\t%s := &%s{%s}\n", local, name, strings.Join(assigns, ", "))
	b.WriteString(e.spanInit(local, spanfuls))
	fmt.Fprintf(&b, "\treturn %s\n", local)
	b.WriteString("}\n\n")
	return b.String()
}

// spanInit renders the statements that compute local.span from the
// span-significant members. Single-level sequences join through
// tree.JoinSlice; deeper nesting falls back to an accumulation loop.
func (e *Emitter) spanInit(local string, spanfuls []member) string {
	terms := make([]string, len(spanfuls))
	simple := true
	for i, m := range spanfuls {
		term, ok := joinTerm(m.typ, local+"."+m.goName)
		if !ok {
			simple = false
			break
		}
		terms[i] = term
	}

	var b strings.Builder
	if simple {
		if len(terms) == 1 && strings.HasPrefix(terms[0], "tree.JoinSlice(") {
			fmt.Fprintf(&b, "\t%s.span = %s\n", local, terms[0])
		} else {
			fmt.Fprintf(&b, "\t%s.span = tree.Join(%s)\n", local, strings.Join(terms, ", "))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "\tspan := tree.Span{}\n")
	for _, m := range spanfuls {
		joinStmts(&b, 1, m.typ, local+"."+m.goName)
	}
	fmt.Fprintf(&b, "\t%s.span = span\n", local)
	return b.String()
}

// joinTerm renders a single expression whose span joins into the node span,
// or reports that the type needs statement-form joining.
func joinTerm(t *schema.TypeExpr, expr string) (string, bool) {
	switch t.Kind() {
	case schema.TypeRef:
		return expr, true
	case schema.TypeSeq:
		if t.Elem().Kind() == schema.TypeRef {
			return "tree.JoinSlice(" + expr + ")", true
		}
		return "", false
	default:
		return "", false
	}
}

// joinStmts renders the accumulation-loop form of span joining, handling
// arbitrarily nested sequences.
func joinStmts(b *strings.Builder, depth int, t *schema.TypeExpr, expr string) {
	indent := strings.Repeat("\t", depth)
	switch t.Kind() {
	case schema.TypeRef:
		fmt.Fprintf(b, "%sspan = tree.Join(span, %s)\n", indent, expr)
	case schema.TypeSeq:
		v := fmt.Sprintf("x%d", depth)
		fmt.Fprintf(b, "%sfor _, %s := range %s {\n", indent, v, expr)
		joinStmts(b, depth+1, t.Elem(), v)
		fmt.Fprintf(b, "%s}\n", indent)
	}
}

// writeDoc renders a doc comment at top level.
func writeDoc(b *strings.Builder, doc string) {
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		if line == "" {
			b.WriteString("//\n")
		} else {
			fmt.Fprintf(b, "// %s\n", line)
		}
	}
}

// writeIndentedDoc renders a doc comment on a struct member.
func writeIndentedDoc(b *strings.Builder, doc string) {
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		if line == "" {
			b.WriteString("\t//\n")
		} else {
			fmt.Fprintf(b, "\t// %s\n", line)
		}
	}
}

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

// Package codegen is the code-generation backend: it turns a validated
// schema and its resolved reference graph into a single Go source file
// defining the node types, their constructors, and the visitor and rewrite
// scaffolding over them.
//
// Emission is split per node kind so the driver can render kinds
// concurrently: [Emitter.EmitKind] is a pure function of the schema and
// graph, and [Emitter.Assemble] merges the per-kind sections in the graph's
// emission order, so output is byte-identical across runs and across
// parallelism settings.
package codegen

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/tidwall/btree"

	"github.com/bufbuild/astgen/reporter"
	"github.com/bufbuild/astgen/resolver"
	"github.com/bufbuild/astgen/schema"
)

// DefaultRuntimeImport is the import path of the runtime library the
// generated code depends on for spans.
const DefaultRuntimeImport = "github.com/bufbuild/astgen/tree"

// Config customizes emission.
type Config struct {
	// The package name of the generated file. Defaults to the schema's
	// "package" hint, or "ast" if the schema has none.
	Package string
	// The import path of the runtime span library. Defaults to
	// [DefaultRuntimeImport]. The package must be importable as "tree".
	RuntimeImport string
}

func (c Config) pkg(s *schema.Schema) string {
	switch {
	case c.Package != "":
		return c.Package
	case s.Package() != "":
		return s.Package()
	default:
		return "ast"
	}
}

func (c Config) runtime() string {
	if c.RuntimeImport != "" {
		return c.RuntimeImport
	}
	return DefaultRuntimeImport
}

// Emitter renders a schema as Go source. It is created once per generation
// run; after [NewEmitter] returns it is read-only, so per-kind emission may
// proceed concurrently.
type Emitter struct {
	schema *schema.Schema
	graph  *resolver.Graph
	config Config

	// Exported Go type name per concrete node type, keyed by "Kind" or
	// "Kind.Variant".
	typeNames map[string]string
}

// NewEmitter checks that the schema is emittable and builds the emission
// name tables. Name collisions that appear only in the generated namespace,
// such as a record kind and a choice variant mangling to the same type name,
// are reported here as [reporter.EmissionError]s.
func NewEmitter(s *schema.Schema, g *resolver.Graph, cfg Config, handler *reporter.Handler) (*Emitter, error) {
	e := &Emitter{
		schema:    s,
		graph:     g,
		config:    cfg,
		typeNames: make(map[string]string, s.Len()),
	}

	// Every package-level identifier the file will declare, mapped to a
	// human-readable description of what declares it.
	declared := map[string]string{
		"Root":     "the generated root alias",
		"Visitor":  "the generated Visitor interface",
		"Rewriter": "the generated Rewriter interface",
		"Walk":     "the generated Walk function",
		"Rewrite":  "the generated Rewrite function",
		"Dump":     "the generated Dump function",
		"dumpNode": "the generated dump helper",
		"tree":     "the runtime library import",
		"fmt":      "an import of the generated file",
		"strings":  "an import of the generated file",
	}

	declare := func(k *schema.NodeKind, variant, name, what string) error {
		if prev, ok := declared[name]; ok {
			return handler.HandleError(&reporter.EmissionError{
				Kind:       k.Name(),
				Variant:    variant,
				Position:   k.Pos(),
				Underlying: fmt.Errorf("%s %q collides with %s", what, name, prev),
			})
		}
		declared[name] = fmt.Sprintf("%s %q", what, name)
		return nil
	}

	for k := range s.Kinds() {
		kindType := export(k.Name())
		e.typeNames[k.Name()] = kindType
		if err := e.declareType(declare, k, "", kindType); err != nil {
			return nil, err
		}
		if k.Kind() == schema.KindChoice {
			// Choices also declare their dispatch functions.
			if err := declare(k, "", "Visit"+kindType, "dispatch function"); err != nil {
				return nil, err
			}
			if err := declare(k, "", "Rewrite"+kindType, "dispatch function"); err != nil {
				return nil, err
			}
			for _, v := range k.Variants() {
				variantType := kindType + export(v.Name())
				e.typeNames[k.Name()+"."+v.Name()] = variantType
				if err := e.declareType(declare, k, v.Name(), variantType); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := handler.Error(); err != nil {
		return nil, err
	}
	return e, nil
}

// declareType registers the package-level identifiers a concrete node type
// brings with it: the type itself, its constructor, and its rewrite helper.
func (e *Emitter) declareType(
	declare func(k *schema.NodeKind, variant, name, what string) error,
	k *schema.NodeKind, variant, typeName string,
) error {
	names := [...][2]string{
		{typeName, "type"},
		{"New" + typeName, "constructor"},
		{"rewrite" + typeName, "rewrite helper"},
	}
	if k.Kind() == schema.KindChoice && variant == "" {
		// The choice itself is an interface: no constructor or helper.
		names[1][0], names[2][0] = "", ""
	}
	for _, n := range names {
		if n[0] == "" {
			continue
		}
		if err := declare(k, variant, n[0], n[1]); err != nil {
			return err
		}
	}
	return nil
}

// typeName returns the Go type name for a kind, or for one of its variants
// when variant is non-empty.
func (e *Emitter) typeName(kind, variant string) string {
	if variant == "" {
		return e.typeNames[kind]
	}
	return e.typeNames[kind+"."+variant]
}

// Section is the rendered output for one node kind. Sections are merged by
// [Emitter.Assemble]; the fragments stay separate until then so that merging
// can interleave them into the file's fixed declaration layout.
type Section struct {
	kind string

	types          string   // type decls, constructors, span methods
	visitMethods   []string // Visitor interface methods
	rewriteMethods []string // Rewriter interface methods
	dispatch       string   // per-choice VisitX/RewriteX functions
	walkCases      string   // cases of Walk's type switch
	rewriteCases   string   // cases of Rewrite's type switch
	rewriteFuncs   string   // per-type rewrite helpers
	dumpCases      string   // cases of dumpNode's type switch
}

// EmitKind renders the section for a single node kind. It only reads the
// emitter and is safe to call concurrently for distinct kinds.
func (e *Emitter) EmitKind(name string) (*Section, error) {
	k := e.schema.Kind(name)
	if k == nil {
		return nil, fmt.Errorf("codegen: no node kind %q", name)
	}
	sec := &Section{kind: name}
	if k.Kind() == schema.KindRecord {
		e.emitRecord(sec, k)
	} else {
		e.emitChoice(sec, k)
	}
	return sec, nil
}

// Assemble merges per-kind sections into the final formatted source file.
// sections must hold one section per kind, in the graph's emission order.
func (e *Emitter) Assemble(sections []*Section) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "// Code generated by astgen. DO NOT EDIT.\n")
	fmt.Fprintf(&b, "//\n")
	fmt.Fprintf(&b, "// Source: %s\n", e.schema.Source().Name())
	fmt.Fprintf(&b, "//\n")
	fmt.Fprintf(&b, "// Traversal over generated nodes always follows declared field and\n")
	fmt.Fprintf(&b, "// variant order.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", e.config.pkg(e.schema))

	// Imports are collected in a sorted set; the runtime import is rendered
	// in its own group after the standard library.
	var stdlib, rest btree.Set[string]
	for _, path := range []string{"fmt", "strings"} {
		stdlib.Insert(path)
	}
	rest.Insert(e.config.runtime())

	b.WriteString("import (\n")
	stdlib.Scan(func(path string) bool {
		fmt.Fprintf(&b, "\t%q\n", path)
		return true
	})
	b.WriteString("\n")
	rest.Scan(func(path string) bool {
		fmt.Fprintf(&b, "\t%q\n", path)
		return true
	})
	b.WriteString(")\n\n")

	fmt.Fprintf(&b, "// Root is the schema's designated root node kind, %s.\n", e.schema.Root().Name())
	fmt.Fprintf(&b, "type Root = %s\n\n", e.typeName(e.schema.Root().Name(), ""))

	for _, sec := range sections {
		b.WriteString(sec.types)
	}

	b.WriteString("// Visitor is implemented by read-only passes over generated trees.\n")
	b.WriteString("//\n")
	b.WriteString("// It has one method per record kind and one per choice variant, so a\n")
	b.WriteString("// visitor that misses a case fails to compile rather than silently\n")
	b.WriteString("// skipping nodes.\n")
	b.WriteString("type Visitor interface {\n")
	for _, sec := range sections {
		for _, m := range sec.visitMethods {
			fmt.Fprintf(&b, "\t%s\n", m)
		}
	}
	b.WriteString("}\n\n")

	for _, sec := range sections {
		b.WriteString(sec.dispatch)
	}

	b.WriteString("// Walk visits n and then its node-valued children in declared order,\n")
	b.WriteString("// stopping at the first error. Absent optional children are skipped.\n")
	b.WriteString("func Walk(v Visitor, n tree.Node) error {\n")
	b.WriteString("\tswitch n := n.(type) {\n")
	b.WriteString("\tcase nil:\n\t\treturn nil\n")
	for _, sec := range sections {
		b.WriteString(sec.walkCases)
	}
	b.WriteString("\tdefault:\n")
	b.WriteString("\t\treturn fmt.Errorf(\"walk of unknown node type %T\", n)\n")
	b.WriteString("\t}\n}\n\n")

	b.WriteString("// Rewriter is implemented by passes that rebuild generated trees bottom-up.\n")
	b.WriteString("//\n")
	b.WriteString("// Each method receives a fresh shallow copy of the original node whose\n")
	b.WriteString("// children have already been rewritten and whose span is preserved; the\n")
	b.WriteString("// method may mutate it, return it as-is, or return a replacement.\n")
	b.WriteString("// Returning nil with a nil error deletes the node where it is held by\n")
	b.WriteString("// pointer or interface; nodes held by value must not be deleted.\n")
	b.WriteString("type Rewriter interface {\n")
	for _, sec := range sections {
		for _, m := range sec.rewriteMethods {
			fmt.Fprintf(&b, "\t%s\n", m)
		}
	}
	b.WriteString("}\n\n")

	b.WriteString("// Rewrite rebuilds n bottom-up using r and returns the replacement node.\n")
	b.WriteString("func Rewrite(r Rewriter, n tree.Node) (tree.Node, error) {\n")
	b.WriteString("\tswitch n := n.(type) {\n")
	b.WriteString("\tcase nil:\n\t\treturn nil, nil\n")
	for _, sec := range sections {
		b.WriteString(sec.rewriteCases)
	}
	b.WriteString("\tdefault:\n")
	b.WriteString("\t\treturn nil, fmt.Errorf(\"rewrite of unknown node type %T\", n)\n")
	b.WriteString("\t}\n}\n\n")

	for _, sec := range sections {
		b.WriteString(sec.rewriteFuncs)
	}

	b.WriteString("// Dump renders n as an s-expression with spans, for debugging and tests.\n")
	b.WriteString("func Dump(n tree.Node) string {\n")
	b.WriteString("\tvar b strings.Builder\n")
	b.WriteString("\tdumpNode(&b, n)\n")
	b.WriteString("\treturn b.String()\n}\n\n")

	b.WriteString("func dumpNode(b *strings.Builder, n tree.Node) {\n")
	b.WriteString("\tswitch n := n.(type) {\n")
	b.WriteString("\tcase nil:\n\t\tb.WriteString(\"()\")\n")
	for _, sec := range sections {
		b.WriteString(sec.dumpCases)
	}
	b.WriteString("\tdefault:\n")
	b.WriteString("\t\tfmt.Fprintf(b, \"(?%T)\", n)\n")
	b.WriteString("\t}\n}\n")

	src, err := format.Source([]byte(b.String()))
	if err != nil {
		// A formatting failure is a bug in the emitter, not in the schema.
		return nil, fmt.Errorf("codegen: internal error formatting output: %w", err)
	}
	return src, nil
}

// Generate renders the whole file serially. The driver prefers the
// EmitKind/Assemble pair so it can parallelize; Generate is the convenient
// form for tests and plain library use.
func Generate(s *schema.Schema, g *resolver.Graph, cfg Config, handler *reporter.Handler) ([]byte, error) {
	e, err := NewEmitter(s, g, cfg, handler)
	if err != nil {
		return nil, err
	}
	sections := make([]*Section, 0, s.Len())
	for _, name := range g.EmissionOrder() {
		sec, err := e.EmitKind(name)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return e.Assemble(sections)
}

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

// Package astgen generates Go AST node types from declarative schema
// documents.
//
// A schema, written in JSON or YAML, declares the node kinds of a syntax
// tree: records with typed fields and choices with variants. From it the
// generator emits a single Go file containing a struct per record, an
// interface plus a struct per variant for each choice, constructors that
// compute source spans from their span-significant members, and exhaustive
// Visitor and Rewriter scaffolding over the whole tree. Generated nodes
// carry their spans through the runtime types in
// [github.com/bufbuild/astgen/tree].
//
// The pipeline has three phases, each of which reports through a
// [reporter.Handler] so a single run surfaces as many independent schema
// problems as possible:
//
//   - [github.com/bufbuild/astgen/schema] loads and validates a document.
//   - [github.com/bufbuild/astgen/resolver] builds the reference graph,
//     rejects cycles of direct references, and fixes the emission order.
//   - [github.com/bufbuild/astgen/codegen] renders the Go source.
//
// [Generator] drives all three. Basic use:
//
//	src := schema.NewSource("expr.json", data)
//	out, err := astgen.Generate(ctx, src)
//
// Generation is deterministic: the same schema and configuration always
// produce byte-identical output, and either every declared kind is emitted
// or no output is produced at all.
package astgen

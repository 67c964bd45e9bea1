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

// Package resolver derives the reference graph of a validated schema: which
// node kinds point at which, whether each edge is direct or goes through an
// indirection, and the deterministic order in which the emitters process
// kinds.
//
// Cycle legality is decided here. A cycle composed exclusively of direct
// edges would give its kinds infinite size and is a fatal error; a cycle
// that passes through at least one sequence, optional, or explicit
// indirection marker is realizable and is retained in the graph.
package resolver

import (
	"github.com/bufbuild/astgen/internal/toposort"
	"github.com/bufbuild/astgen/reporter"
	"github.com/bufbuild/astgen/schema"
	"github.com/bufbuild/astgen/tree"
)

// Edge is a single reference from one node kind to another.
type Edge struct {
	// The kind the reference appears in and the kind it points at.
	Owner, Target *schema.NodeKind
	// The name of the field holding the reference. Empty for a variant's
	// node-reference payload.
	Field string
	// The name of the variant the reference appears under, if any.
	Variant string
	// Whether the reference has no sequence, optional, or explicit
	// indirection layer around it.
	Direct bool
	// Where in the schema document the reference appears.
	Span tree.Span
}

// Graph is the resolved reference graph over a schema's node kinds. It is
// built once by [Resolve] and read-only afterwards.
type Graph struct {
	schema *schema.Schema
	edges  map[string][]Edge // keyed by owner kind name, declaration-ordered
	order  []string
}

// Schema returns the schema this graph was resolved from.
func (g *Graph) Schema() *schema.Schema { return g.schema }

// Edges returns the references appearing in the given kind, in declaration
// order.
func (g *Graph) Edges(kind string) []Edge { return g.edges[kind] }

// EmissionOrder returns all kind names in the order the emitters must
// process them: every kind after its direct dependencies, ties broken by
// declaration order. The order is a pure function of the schema.
func (g *Graph) EmissionOrder() []string { return g.order }

// Contains reports whether the graph has a kind with the given name.
func (g *Graph) Contains(kind string) bool { return g.schema.Kind(kind) != nil }

// Resolve builds the reference graph for a validated schema and computes the
// emission order, or fails with a [reporter.CycleError] if the schema
// contains a cycle of direct references.
func Resolve(s *schema.Schema, handler *reporter.Handler) (*Graph, error) {
	g := &Graph{
		schema: s,
		edges:  make(map[string][]Edge, s.Len()),
	}

	var names []string
	ranks := make(map[string]int, s.Len())
	for k := range s.Kinds() {
		names = append(names, k.Name())
		ranks[k.Name()] = k.Index()
		g.edges[k.Name()] = collectEdges(s, k)
	}

	// Only direct edges constrain emission order: an indirect reference is
	// realized through a pointer or interface the target's definition is not
	// needed for.
	directDeps := make(map[string][]string, len(names))
	for _, name := range names {
		var deps []string
		for _, e := range g.edges[name] {
			if e.Direct {
				deps = append(deps, e.Target.Name())
			}
		}
		directDeps[name] = deps
	}

	order, cycle := toposort.Sort(names,
		func(name string) int { return ranks[name] },
		func(name string) []string { return directDeps[name] },
	)
	if cycle != nil {
		if err := handler.HandleError(&reporter.CycleError{
			Cycle:    g.labelCycle(cycle),
			Position: s.Kind(cycle[0]).Pos(),
		}); err != nil {
			return nil, err
		}
		return nil, handler.Error()
	}

	g.order = order
	return g, nil
}

// collectEdges gathers every reference appearing in k, in declared
// field/variant order.
func collectEdges(s *schema.Schema, k *schema.NodeKind) []Edge {
	var edges []Edge

	addField := func(variant string, f schema.Field) {
		core, wrapped := f.Type().Innermost()
		if core.Kind() != schema.TypeRef {
			return
		}
		target := s.Kind(core.Ref())
		if target == nil {
			return
		}
		edges = append(edges, Edge{
			Owner:   k,
			Target:  target,
			Field:   f.Name(),
			Variant: variant,
			Direct:  !wrapped && !core.Indirect(),
			Span:    core.Span(),
		})
	}

	for _, f := range k.Fields() {
		addField("", f)
	}
	for _, v := range k.Variants() {
		if ref := v.Ref(); ref != nil {
			target := s.Kind(ref.Ref())
			if target != nil {
				edges = append(edges, Edge{
					Owner:   k,
					Target:  target,
					Variant: v.Name(),
					Direct:  !ref.Indirect(),
					Span:    ref.Span(),
				})
			}
		}
		for _, f := range v.Fields() {
			addField(v.Name(), f)
		}
	}
	return edges
}

// labelCycle renders a toposort cycle as the path reported to the user,
// interleaving variant names for edges that originate in a variant payload:
// a choice whose variant refers back to it renders as Expr -> Add -> Expr.
func (g *Graph) labelCycle(cycle []string) []string {
	path := []string{cycle[0]}
	for i := 0; i+1 < len(cycle); i++ {
		owner, target := cycle[i], cycle[i+1]
		for _, e := range g.edges[owner] {
			if !e.Direct || e.Target.Name() != target {
				continue
			}
			if e.Variant != "" && e.Variant != target {
				path = append(path, e.Variant)
			}
			break
		}
		path = append(path, target)
	}
	return path
}

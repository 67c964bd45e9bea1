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

// Package toposort provides a deterministic topological sort.
//
// Sorting is by Kahn's algorithm with the ready set kept in a min-heap, so
// that among nodes whose dependencies are all satisfied, the one with the
// least rank is always emitted first. Given stable ranks (for the generator:
// declaration order in the schema document) the output order is the same on
// every run.
package toposort

import "fmt"

// Sort topologically sorts the keyed nodes so that every node appears after
// all of its dependencies.
//
// nodes is the full node set; rank assigns each node the priority used to
// break ties (lower ranks sort earlier); deps returns the keys a node depends
// on, and may include keys outside the node set, which are ignored.
//
// If the dependency graph contains a cycle, Sort returns a nil order and one
// such cycle: a key sequence whose first element is repeated as the last,
// e.g. [A B A].
func Sort[Key comparable](
	nodes []Key,
	rank func(Key) int,
	deps func(Key) []Key,
) (order []Key, cycle []Key) {
	present := make(map[Key]bool, len(nodes))
	for _, n := range nodes {
		present[n] = true
	}

	// Count each node's unsatisfied dependencies and invert the edges so we
	// can decrement dependents as nodes are emitted.
	indegree := make(map[Key]int, len(nodes))
	dependents := make(map[Key][]Key, len(nodes))
	for _, n := range nodes {
		for _, d := range deps(n) {
			if !present[d] {
				continue
			}
			indegree[n]++
			dependents[d] = append(dependents[d], n)
		}
	}

	var ready heap[Key]
	for _, n := range nodes {
		if indegree[n] == 0 {
			ready.insert(rank(n), n)
		}
	}

	order = make([]Key, 0, len(nodes))
	for ready.len() > 0 {
		n := ready.pop()
		order = append(order, n)
		for _, m := range dependents[n] {
			indegree[m]--
			if indegree[m] == 0 {
				ready.insert(rank(m), m)
			}
		}
	}

	if len(order) == len(nodes) {
		return order, nil
	}
	return nil, findCycle(nodes, present, indegree, deps)
}

// findCycle walks the subgraph of nodes left unsorted by Kahn's algorithm.
// Every such node sits on or upstream of a cycle, so a DFS from the first
// (lowest-ranked surviving) node must close one.
func findCycle[Key comparable](
	nodes []Key,
	present map[Key]bool,
	indegree map[Key]int,
	deps func(Key) []Key,
) []Key {
	remaining := make(map[Key]bool, len(nodes))
	for _, n := range nodes {
		if indegree[n] > 0 {
			remaining[n] = true
		}
	}

	var stack []Key
	onStack := make(map[Key]int)
	var dfs func(Key) []Key
	dfs = func(n Key) []Key {
		if at, ok := onStack[n]; ok {
			return append(stack[at:len(stack):len(stack)], n)
		}
		onStack[n] = len(stack)
		stack = append(stack, n)
		for _, d := range deps(n) {
			if !present[d] || !remaining[d] {
				continue
			}
			if c := dfs(d); c != nil {
				return c
			}
		}
		delete(onStack, n)
		stack = stack[:len(stack)-1]
		remaining[n] = false
		return nil
	}

	for _, n := range nodes {
		if remaining[n] {
			if c := dfs(n); c != nil {
				return c
			}
		}
	}
	// Unreachable: Kahn's algorithm left nodes unsorted, so a cycle exists.
	panic(fmt.Sprintf("toposort: no cycle found among %d unsorted nodes", len(onStack)))
}

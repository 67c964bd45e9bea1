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

package toposort

// heap is a binary min-heap of rank-keyed values, used as the ready set of
// Kahn's algorithm.
//
// This resembles Go's [container/heap] package, but uses generics instead of
// interface calls. A zero heap is empty and ready to use.
type heap[V any] struct {
	ranks []int
	vals  []V
}

func (h *heap[V]) len() int {
	return len(h.ranks)
}

func (h *heap[V]) insert(rank int, v V) {
	h.ranks = append(h.ranks, rank)
	h.vals = append(h.vals, v)
	h.up(h.len() - 1)
}

// pop removes and returns the value with the least rank.
func (h *heap[V]) pop() V {
	v := h.vals[0]
	last := h.len() - 1
	h.swap(0, last)
	h.ranks = h.ranks[:last]
	h.vals = h.vals[:last]
	h.down(0)
	return v
}

func (h *heap[V]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.ranks[parent] <= h.ranks[i] {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *heap[V]) down(i int) {
	for {
		least := i
		if l := 2*i + 1; l < h.len() && h.ranks[l] < h.ranks[least] {
			least = l
		}
		if r := 2*i + 2; r < h.len() && h.ranks[r] < h.ranks[least] {
			least = r
		}
		if least == i {
			return
		}
		h.swap(i, least)
		i = least
	}
}

func (h *heap[V]) swap(i, j int) {
	h.ranks[i], h.ranks[j] = h.ranks[j], h.ranks[i]
	h.vals[i], h.vals[j] = h.vals[j], h.vals[i]
}

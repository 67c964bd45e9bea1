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

// Package arena defines a simple typed arena.
//
// The schema model allocates all of its type expressions out of one arena so
// that a Schema owns every TypeExpr it hands out: pointers into the arena
// remain valid for the arena's whole lifetime, because the backing storage
// never moves.
package arena

import "iter"

// minBlockLen is the capacity of the first block in an arena.
const minBlockLen = 16

// Arena is an allocator for values of type T that guarantees the Ts will
// never be moved.
//
// It maintains a table of logarithmically-growing slices that mimic the
// resizing behavior of an ordinary slice, so allocation is amortized O(1)
// and addresses are stable.
//
// A zero Arena[T] is empty and ready to use.
type Arena[T any] struct {
	// Invariant: cap(blocks[n]) == 2*cap(blocks[n-1]), and every block except
	// the last is full.
	blocks [][]T
	count  int
}

// New allocates a new value on the arena and returns a stable pointer to it.
func (a *Arena[T]) New(value T) *T {
	if a.blocks == nil {
		a.blocks = [][]T{make([]T, 0, minBlockLen)}
	}

	last := &a.blocks[len(a.blocks)-1]
	if len(*last) == cap(*last) {
		a.blocks = append(a.blocks, make([]T, 0, 2*cap(*last)))
		last = &a.blocks[len(a.blocks)-1]
	}

	*last = append(*last, value)
	a.count++
	return &(*last)[len(*last)-1]
}

// Len returns the number of values allocated on the arena.
func (a *Arena[T]) Len() int {
	return a.count
}

// Values iterates over pointers to every value in the arena, in allocation
// order.
func (a *Arena[T]) Values() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for _, block := range a.blocks {
			for i := range block {
				if !yield(&block[i]) {
					return
				}
			}
		}
	}
}

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

// Package tree is the runtime library that code generated by astgen imports.
//
// It is intentionally tiny: a [Span] for source locations, the [Spanner] and
// [Node] capabilities generated node types implement, and span-union helpers
// the generated constructors call to compute a node's span from its
// span-significant children.
//
// Ownership in generated trees is expressed with Go's own primitives: a child
// owned by exactly one parent is an inline struct member, and a recursive or
// otherwise indirect child is a pointer (for record kinds) or an interface
// value (for choice kinds). No wrapper types are involved.
package tree

import (
	"fmt"
	"iter"
	"math"
	"slices"
)

// Span is a half-open byte range [Start, End) within some source text.
//
// The zero Span means "no location". A span does not remember which text it
// points into; generated trees are per-source artifacts, so the association
// is implicit.
type Span struct {
	Start, End int
}

// NewSpan returns the span covering [start, end).
func NewSpan(start, end int) Span {
	if end < start {
		start, end = end, start
	}
	return Span{Start: start, End: end}
}

// IsZero returns whether this is the zero span, i.e. "no location".
func (s Span) IsZero() bool {
	return s == Span{}
}

// Len returns the length of this span, in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Span implements [Spanner].
func (s Span) Span() Span {
	return s
}

// String implements [fmt.Stringer].
func (s Span) String() string {
	if s.IsZero() {
		return "[?]"
	}
	return fmt.Sprintf("[%d..%d]", s.Start, s.End)
}

// Spanner is any value with a [Span].
type Spanner interface {
	// Should return the zero [Span] to indicate that it does not contribute
	// span information.
	Span() Span
}

// Node is a node of a generated tree.
//
// Every type astgen emits satisfies Node through its pointer type: the
// generated constructor computes the span from the node's span-significant
// children (or takes one explicitly when it has none), and SetSpan is the
// override hook rewrites use to stamp a replacement node.
type Node interface {
	Spanner

	// SetSpan replaces the node's span.
	SetSpan(Span)
}

// Join joins a collection of spans, returning the smallest span that
// contains all of them.
//
// Zero spans among spans are ignored; a nil Spanner contributes the zero
// span. If every span is zero, Join returns the zero span.
func Join(spans ...Spanner) Span {
	return JoinSeq(slices.Values(spans))
}

// JoinSlice is like [Join], but takes a slice of any spannable type.
func JoinSlice[S Spanner](spans []S) Span {
	return JoinSeq(slices.Values(spans))
}

// JoinSeq is like [Join], but takes a sequence of any spannable type.
func JoinSeq[S Spanner](seq iter.Seq[S]) Span {
	joined := Span{Start: math.MaxInt}
	for spanner := range seq {
		span := getSpan(spanner)
		if span.IsZero() {
			continue
		}
		joined.Start = min(joined.Start, span.Start)
		joined.End = max(joined.End, span.End)
	}

	if joined.Start == math.MaxInt {
		return Span{}
	}
	return joined
}

// getSpan extracts a span from a Spanner, but returns the zero span when
// s is nil, which would otherwise panic.
func getSpan[S Spanner](s S) Span {
	if any(s) == nil {
		return Span{}
	}
	return s.Span()
}

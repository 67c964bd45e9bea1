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

package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/astgen/tree"
)

func TestSpan(t *testing.T) {
	t.Parallel()

	assert.True(t, tree.Span{}.IsZero())
	assert.False(t, tree.NewSpan(0, 1).IsZero())

	s := tree.NewSpan(2, 7)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, s, s.Span())
	assert.Equal(t, "[2..7]", s.String())
	assert.Equal(t, "[?]", tree.Span{}.String())

	// NewSpan normalizes a backwards range.
	assert.Equal(t, tree.Span{Start: 2, End: 7}, tree.NewSpan(7, 2))
}

func TestJoin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		spans []tree.Spanner
		want  tree.Span
	}{
		{"empty", nil, tree.Span{}},
		{"single", []tree.Spanner{tree.NewSpan(1, 4)}, tree.NewSpan(1, 4)},
		{
			"union",
			[]tree.Spanner{tree.NewSpan(5, 9), tree.NewSpan(1, 4)},
			tree.NewSpan(1, 9),
		},
		{
			"zero spans are skipped",
			[]tree.Spanner{tree.Span{}, tree.NewSpan(3, 6), tree.Span{}},
			tree.NewSpan(3, 6),
		},
		{"all zero", []tree.Spanner{tree.Span{}, tree.Span{}}, tree.Span{}},
		{"nil spanner", []tree.Spanner{nil, tree.NewSpan(3, 6)}, tree.NewSpan(3, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tree.Join(tt.spans...))
		})
	}
}

func TestJoinSlice(t *testing.T) {
	t.Parallel()

	spans := []tree.Span{tree.NewSpan(10, 12), {}, tree.NewSpan(2, 5)}
	assert.Equal(t, tree.NewSpan(2, 12), tree.JoinSlice(spans))
	assert.Equal(t, tree.Span{}, tree.JoinSlice[tree.Span](nil))
}

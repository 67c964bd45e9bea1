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

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/astgen/schema"
)

func TestSourceLocation(t *testing.T) {
	t.Parallel()

	src := schema.NewSource("doc.json", []byte("abc\ndef\n\nghi"))

	tests := []struct {
		offset       int
		line, column int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 1, 4},  // the newline belongs to line 1
		{4, 2, 1},  // "d"
		{8, 3, 1},  // the empty line
		{9, 4, 1},  // "g"
		{12, 4, 4}, // one past the end
	}
	for _, tt := range tests {
		pos := src.Location(tt.offset)
		assert.Equal(t, tt.line, pos.Line, "offset %d", tt.offset)
		assert.Equal(t, tt.column, pos.Column, "offset %d", tt.offset)
		assert.Equal(t, tt.offset, pos.Offset)
		assert.Equal(t, "doc.json", pos.Path)
	}

	// Out-of-range offsets clamp rather than panic.
	assert.Equal(t, 1, src.Location(-5).Line)
	assert.Equal(t, 4, src.Location(1000).Line)
}

func TestSourceLocationCountsGraphemes(t *testing.T) {
	t.Parallel()

	// "é" is two bytes but one column, and "👩‍👧" is one column despite
	// being two runes joined by a ZWJ.
	line := "é 👩‍👧 x"
	src := schema.NewSource("doc.json", []byte(line + "\nkey"))

	pos := src.Location(len(line))
	assert.Equal(t, 1, pos.Line)
	assert.Equal(t, 6, pos.Column)

	pos = src.Location(len(src.Text()))
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 4, pos.Column)
}

func TestSourceOffsetAt(t *testing.T) {
	t.Parallel()

	src := schema.NewSource("doc.yaml", []byte("abc\ndef\n"))
	assert.Equal(t, 0, src.OffsetAt(1, 1))
	assert.Equal(t, 2, src.OffsetAt(1, 3))
	assert.Equal(t, 4, src.OffsetAt(2, 1))
	assert.Equal(t, 6, src.OffsetAt(2, 3))

	// Out-of-range positions clamp to the document.
	assert.Equal(t, 0, src.OffsetAt(0, 9))
	assert.Equal(t, len(src.Text()), src.OffsetAt(99, 1))
	assert.Equal(t, 4, src.OffsetAt(2, -10))
}

func TestSourceIsYAML(t *testing.T) {
	t.Parallel()

	assert.True(t, schema.NewSource("a.yaml", nil).IsYAML())
	assert.True(t, schema.NewSource("a.YML", nil).IsYAML())
	assert.False(t, schema.NewSource("a.json", nil).IsYAML())
	assert.False(t, schema.NewSource("yaml", nil).IsYAML())
}

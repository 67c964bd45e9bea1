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

package schema

import (
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/rivo/uniseg"

	"github.com/bufbuild/astgen/reporter"
)

// Source is a named schema document: the raw text plus a lazily-built line
// index used to turn byte offsets into the line/column positions carried by
// diagnostics.
type Source struct {
	name string
	text []byte

	once  sync.Once
	lines []int // byte offset of the start of each line
}

// NewSource creates a source from a document name and its raw text. The name
// is used in diagnostics and, unless overridden by load options, its
// extension selects the document format (.yaml/.yml means YAML, anything
// else means JSON).
func NewSource(name string, text []byte) *Source {
	return &Source{name: name, text: text}
}

// Name returns the document's name.
func (s *Source) Name() string { return s.name }

// Text returns the document's raw text.
func (s *Source) Text() []byte { return s.text }

// IsYAML returns whether the source name's extension says the document is
// YAML.
func (s *Source) IsYAML() bool {
	switch strings.ToLower(path.Ext(s.name)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Location converts a byte offset into a position for diagnostics. The
// offset is clamped to the document; column counts grapheme clusters,
// 1-indexed.
func (s *Source) Location(offset int) reporter.Position {
	offset = max(0, min(offset, len(s.text)))
	s.index()

	// The line containing offset is the last line starting at or before it.
	line := sort.Search(len(s.lines), func(i int) bool {
		return s.lines[i] > offset
	})
	start := s.lines[line-1]

	return reporter.Position{
		Path:   s.name,
		Offset: offset,
		Line:   line,
		Column: uniseg.GraphemeClusterCount(string(s.text[start:offset])) + 1,
	}
}

// OffsetAt approximates the byte offset of a 1-indexed line/column position.
// It is used by the YAML front-end, which reports positions as line/column
// rather than offsets.
func (s *Source) OffsetAt(line, column int) int {
	s.index()
	if line < 1 {
		return 0
	}
	if line > len(s.lines) {
		return len(s.text)
	}
	start := s.lines[line-1]
	end := len(s.text)
	if line < len(s.lines) {
		end = s.lines[line]
	}
	return max(start, min(start+column-1, end))
}

func (s *Source) index() {
	s.once.Do(func() {
		s.lines = []int{0}
		for i, b := range s.text {
			if b == '\n' {
				s.lines = append(s.lines, i+1)
			}
		}
	})
}

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

package astgen_test

import (
	"fmt"
	goast "go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// Stand-ins for the stdlib packages generated code (and the tree runtime)
// imports, so type-checking needs no compiled export data.
const (
	iterStub = `package iter

type Seq[V any] func(yield func(V) bool)
`

	mathStub = `package math

const MaxInt = int(^uint(0) >> 1)
`

	slicesStub = `package slices

import "iter"

func Values[Slice ~[]E, E any](s Slice) iter.Seq[E] {
	return func(yield func(E) bool) {
		for _, v := range s {
			if !yield(v) {
				return
			}
		}
	}
}
`

	fmtStub = `package fmt

func Sprintf(format string, args ...any) string { return format }

func Errorf(format string, args ...any) error { return nil }

func Fprintf(w any, format string, args ...any) (int, error) { return 0, nil }
`

	stringsStub = `package strings

type Builder struct{ buf []byte }

func (b *Builder) WriteString(s string) (int, error) {
	b.buf = append(b.buf, s...)
	return len(s), nil
}

func (b *Builder) String() string { return string(b.buf) }
`
)

type stubImporter map[string]*types.Package

func (m stubImporter) Import(path string) (*types.Package, error) {
	pkg, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("typecheck: unexpected import %q", path)
	}
	return pkg, nil
}

// typeCheck verifies that generated source is valid Go. It type-checks the
// real tree package from its source and then the generated file against it,
// so shape bugs in emitted traversal code fail here instead of in a
// consumer's build.
func typeCheck(t *testing.T, generated []byte) {
	t.Helper()

	fset := token.NewFileSet()
	imports := stubImporter{}
	conf := types.Config{Importer: imports}

	check := func(path string, source string) {
		f, err := parser.ParseFile(fset, path+".go", source, parser.SkipObjectResolution)
		require.NoError(t, err)
		pkg, err := conf.Check(path, fset, []*goast.File{f}, nil)
		require.NoError(t, err, "type-checking %q", path)
		imports[path] = pkg
	}

	check("iter", iterStub)
	check("math", mathStub)
	check("slices", slicesStub)
	check("fmt", fmtStub)
	check("strings", stringsStub)

	treeSrc, err := os.ReadFile("tree/tree.go")
	require.NoError(t, err)
	check("github.com/bufbuild/astgen/tree", string(treeSrc))

	check("generated", string(generated))
}

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

package testgen_test

import (
	"context"
	goast "go/ast"
	"go/parser"
	"go/token"
	"os"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/astgen"
	"github.com/bufbuild/astgen/schema"
)

// TestGeneratedFileIsCurrent regenerates testgen.gen.go from its schema and
// checks that the checked-in copy declares the same API surface. It compares
// parsed declarations rather than bytes so that cosmetic emitter changes give
// a readable failure.
func TestGeneratedFileIsCurrent(t *testing.T) {
	t.Parallel()

	text, err := os.ReadFile("testdata/expr.json")
	require.NoError(t, err)
	generated, err := astgen.Generate(context.Background(), schema.NewSource("testdata/expr.json", text))
	require.NoError(t, err)

	checkedIn, err := os.ReadFile("testgen.gen.go")
	require.NoError(t, err)

	assert.Equal(t, topLevelDecls(t, checkedIn), topLevelDecls(t, generated))
}

func TestGenerateIsReproducible(t *testing.T) {
	t.Parallel()

	text, err := os.ReadFile("testdata/expr.json")
	require.NoError(t, err)
	src := schema.NewSource("testdata/expr.json", text)

	first, err := astgen.Generate(context.Background(), src)
	require.NoError(t, err)
	for range 3 {
		again, err := astgen.Generate(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

// topLevelDecls returns the sorted names of all package-level types and
// non-method functions in src.
func topLevelDecls(t *testing.T, src []byte) []string {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "gen.go", src, parser.SkipObjectResolution)
	require.NoError(t, err)
	require.Equal(t, "testgen", file.Name.Name)

	var names []string
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *goast.GenDecl:
			for _, spec := range decl.Specs {
				if ts, ok := spec.(*goast.TypeSpec); ok {
					names = append(names, ts.Name.Name)
				}
			}
		case *goast.FuncDecl:
			if decl.Recv == nil {
				names = append(names, decl.Name.Name)
			}
		}
	}
	slices.Sort(names)
	return names
}

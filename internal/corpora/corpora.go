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

// Package corpora runs file-system test corpora: directories of schema
// documents paired with golden output files.
package corpora

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// RefreshEnv is the environment variable that switches a corpus run into
// refresh mode. Its value is a doublestar glob over test names; matching
// tests rewrite their golden files instead of comparing against them, and
// the run fails so refreshed goldens are never mistaken for a passing test.
const RefreshEnv = "ASTGEN_REFRESH"

// A Corpus is a table-driven test whose table lives on the file system: each
// input file under Root is one test case, and each [Output] names a golden
// file derived from the input's name.
type Corpus struct {
	// The test data directory, relative to the file that calls [Corpus.Run].
	Root string

	// Extensions (without dots) of files that define a test case. Schema
	// corpora typically list "json" and "yaml".
	Extensions []string

	// The golden outputs of each test case. A missing golden file means the
	// corresponding output is expected to be empty.
	Outputs []Output

	// Test runs one case and returns one string per element of Outputs.
	Test func(t *testing.T, path, text string) []string
}

// Output names one golden file of a test case. For an input "expr.json" and
// extension "golden.go", the runner reads "expr.json.golden.go".
type Output struct {
	Extension string

	// Compare checks got against the golden contents and returns an error
	// message, or "" on a match. Nil compares byte-for-byte and renders a
	// unified diff on mismatch.
	Compare Compare
}

// Compare is a comparison function between a test output and its golden.
type Compare func(got, want string) string

// Run enumerates the corpus and runs each case as a subtest.
func (c Corpus) Run(t *testing.T) {
	root := filepath.Join(callerDir(), c.Root)

	var inputs []string
	for _, ext := range c.Extensions {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, "**", "*."+ext))
		if err != nil {
			t.Fatalf("corpora: bad corpus glob for %q: %v", ext, err)
		}
		inputs = append(inputs, matches...)
	}
	if len(inputs) == 0 {
		t.Fatalf("corpora: no test cases under %q", root)
	}

	refresh := os.Getenv(RefreshEnv)
	if !doublestar.ValidatePattern(refresh) {
		t.Fatalf("corpora: invalid glob in %s: %q", RefreshEnv, refresh)
	}
	if refresh != "" {
		t.Logf("corpora: refreshing goldens matching %s=%s", RefreshEnv, refresh)
		t.Fail()
	}

	for _, input := range inputs {
		name, err := filepath.Rel(root, input)
		if err != nil {
			name = input
		}
		t.Run(name, func(t *testing.T) {
			text, err := os.ReadFile(input)
			if err != nil {
				t.Fatalf("corpora: reading input %q: %v", input, err)
			}

			results := c.Test(t, name, string(text))
			if len(results) != len(c.Outputs) {
				t.Fatalf("corpora: test returned %d outputs, corpus declares %d", len(results), len(c.Outputs))
			}

			refreshing, _ := doublestar.Match(refresh, name)
			for i, output := range c.Outputs {
				golden := input + "." + output.Extension
				if refreshing {
					c.refreshGolden(t, golden, results[i])
					continue
				}

				want, err := os.ReadFile(golden)
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					t.Errorf("corpora: reading golden %q: %v", golden, err)
					continue
				}
				cmp := output.Compare
				if cmp == nil {
					cmp = diffCompare
				}
				if msg := cmp(results[i], string(want)); msg != "" {
					t.Errorf("output mismatch for %q:\n%s", golden, msg)
				}
			}
		})
	}
}

func (c Corpus) refreshGolden(t *testing.T, golden, contents string) {
	if contents == "" {
		if err := os.Remove(golden); err != nil && !errors.Is(err, os.ErrNotExist) {
			t.Errorf("corpora: deleting golden %q: %v", golden, err)
		}
		return
	}
	if err := os.WriteFile(golden, []byte(contents), 0o644); err != nil {
		t.Errorf("corpora: writing golden %q: %v", golden, err)
	}
}

func diffCompare(got, want string) string {
	if got == want {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

// callerDir is the directory of the test file that invoked [Corpus.Run].
func callerDir() string {
	_, file, _, ok := runtime.Caller(2)
	if !ok {
		panic("corpora: could not determine test file's directory")
	}
	return filepath.Dir(file)
}

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

package astgen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/bufbuild/astgen/codegen"
	"github.com/bufbuild/astgen/reporter"
	"github.com/bufbuild/astgen/resolver"
	"github.com/bufbuild/astgen/schema"
)

// Generator runs the full pipeline: it loads a schema document, resolves its
// reference graph, and renders the generated Go source. The zero value is a
// usable generator that fails on the first error.
type Generator struct {
	// Reporter receives errors and warnings from all pipeline phases. If nil,
	// the run aborts on the first error and warnings are dropped.
	Reporter reporter.Reporter

	// MaxParallelism bounds how many node kinds are rendered concurrently.
	// Zero or negative means GOMAXPROCS.
	MaxParallelism int

	// Config customizes the generated file.
	Config codegen.Config
}

// Generate renders the Go source generated from the given schema document.
//
// Output is all-or-nothing: if any phase reports an error, no source is
// returned. For a fixed schema and config the returned bytes are identical
// across runs regardless of parallelism.
func (g *Generator) Generate(ctx context.Context, src *schema.Source) ([]byte, error) {
	handler := reporter.NewHandler(g.Reporter)

	s, err := schema.Load(src, handler)
	if err != nil {
		return nil, err
	}
	graph, err := resolver.Resolve(s, handler)
	if err != nil {
		return nil, err
	}
	emitter, err := codegen.NewEmitter(s, graph, g.Config, handler)
	if err != nil {
		return nil, err
	}

	par := g.MaxParallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(-1)
	}

	// Kinds render independently; sections land in emission order, so the
	// assembled file does not depend on scheduling.
	order := graph.EmissionOrder()
	sections := make([]*codegen.Section, len(order))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(par)
	for i, name := range order {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sec, err := emitter.EmitKind(name)
			if err != nil {
				return err
			}
			sections[i] = sec
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return emitter.Assemble(sections)
}

// GenerateFile renders the schema document and writes the result to path.
//
// The write is atomic: output lands in a temporary file in the target
// directory and is renamed over path, so a failed run never leaves a
// truncated file behind. If path already holds exactly the generated bytes,
// it is left untouched.
func (g *Generator) GenerateFile(ctx context.Context, src *schema.Source, path string) error {
	out, err := g.Generate(ctx, src)
	if err != nil {
		return err
	}

	if prev, err := os.ReadFile(path); err == nil && bytes.Equal(prev, out) {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("astgen: creating temporary output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("astgen: writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("astgen: writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Generate renders src with a zero [Generator].
func Generate(ctx context.Context, src *schema.Source) ([]byte, error) {
	var g Generator
	return g.Generate(ctx, src)
}

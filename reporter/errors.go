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

package reporter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSchema is a sentinel error that is returned by generation in the
// event that schema or emission errors are encountered, but the configured
// ErrorReporter always returns nil.
var ErrInvalidSchema = errors.New("generation failed: invalid schema")

// Position is a location within a schema document that caused an error.
//
// Line and Column are 1-indexed; Column counts grapheme clusters, not bytes.
// A zero Position means the location is unknown.
type Position struct {
	// The name of the schema document, as given to the loader.
	Path string
	// The byte offset of the location.
	Offset int
	// The line and column of the location, 1-indexed.
	Line, Column int
}

// IsZero returns whether this position carries no location information.
func (p Position) IsZero() bool {
	return p == Position{}
}

// String implements [fmt.Stringer].
func (p Position) String() string {
	if p.IsZero() {
		return "<unknown>"
	}
	path := p.Path
	if path == "" {
		path = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", path, p.Line, p.Column)
}

// ErrorWithPos is an error about a schema document that includes information
// about the location in the document that caused the error.
//
// The value of Error() contains both the position and the underlying message.
// The value of Unwrap() is only the underlying error, without location
// information.
type ErrorWithPos interface {
	error
	Pos() Position
	Unwrap() error
}

// SyntaxError indicates that the schema document is not well-formed JSON or
// YAML. It is fatal and reported at most once per run.
type SyntaxError struct {
	Position   Position
	Underlying error
}

// Error implements [error].
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %v", e.Position, e.Underlying)
}

// Pos implements [ErrorWithPos].
func (e *SyntaxError) Pos() Position { return e.Position }

// Unwrap implements [ErrorWithPos].
func (e *SyntaxError) Unwrap() error { return e.Underlying }

// ValidationError indicates that the schema document is well-formed but
// violates a structural invariant: a duplicate name, a dangling reference, a
// choice with no variants, and so on.
//
// Independent validation errors are batched when the configured reporter
// permits it; each carries a stable machine-readable Code and the dotted Path
// of the offending schema element.
type ValidationError struct {
	// A stable identifier for the class of violation, such as
	// "duplicate-kind" or "dangling-ref".
	Code string
	// The dotted path of the schema element at fault, such as
	// "Expr.variants.Add.fields.lhs".
	Path string

	Position   Position
	Underlying error
}

// Error implements [error].
func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v [%s]", e.Position, e.Underlying, e.Code)
	}
	return fmt.Sprintf("%s: %s: %v [%s]", e.Position, e.Path, e.Underlying, e.Code)
}

// Pos implements [ErrorWithPos].
func (e *ValidationError) Pos() Position { return e.Position }

// Unwrap implements [ErrorWithPos].
func (e *ValidationError) Unwrap() error { return e.Underlying }

// CycleError indicates that the schema contains a reference cycle composed
// exclusively of direct edges, which no representation of finite size can
// realize.
type CycleError struct {
	// The full cycle path. The first element is repeated as the last, and
	// variant names are interleaved for edges that originate in a variant
	// payload, so a self-referential variant renders as "Expr -> Add -> Expr".
	Cycle []string

	Position Position
}

// Error implements [error].
func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: illegal direct reference cycle: %s", e.Position, strings.Join(e.Cycle, " -> "))
}

// Pos implements [ErrorWithPos].
func (e *CycleError) Pos() Position { return e.Position }

// Unwrap implements [ErrorWithPos].
func (e *CycleError) Unwrap() error { return errors.New(strings.Join(e.Cycle, " -> ")) }

// EmissionError indicates that a schema construct cannot be represented in
// the generated Go source, such as a kind whose exported name collides with
// another emitted declaration.
type EmissionError struct {
	// The NodeKind that cannot be emitted.
	Kind string
	// The offending variant, if the problem is scoped to one.
	Variant string

	Position   Position
	Underlying error
}

// Error implements [error].
func (e *EmissionError) Error() string {
	at := e.Kind
	if e.Variant != "" {
		at += "." + e.Variant
	}
	return fmt.Sprintf("%s: cannot emit %s: %v", e.Position, at, e.Underlying)
}

// Pos implements [ErrorWithPos].
func (e *EmissionError) Pos() Position { return e.Position }

// Unwrap implements [ErrorWithPos].
func (e *EmissionError) Unwrap() error { return e.Underlying }

var (
	_ ErrorWithPos = (*SyntaxError)(nil)
	_ ErrorWithPos = (*ValidationError)(nil)
	_ ErrorWithPos = (*CycleError)(nil)
	_ ErrorWithPos = (*EmissionError)(nil)
)

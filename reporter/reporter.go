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

// Package reporter contains the error taxonomy of the generator and the
// machinery through which schema loading, resolution, and emission report
// problems to the caller.
package reporter

import (
	"sync"
)

// ErrorReporter is responsible for reporting the given error. If the reporter
// returns a non-nil error, generation aborts with that error. If the reporter
// returns nil, generation continues, allowing the loader to report as many
// independent schema errors as it can find.
type ErrorReporter func(err ErrorWithPos) error

// WarningReporter is responsible for reporting the given warning. Warnings
// indicate things that do not cause generation to fail but are considered
// bad practice. Though they are just warnings, the details are supplied to
// the reporter via an error type.
type WarningReporter func(ErrorWithPos)

// Reporter receives errors and warnings encountered during generation.
type Reporter interface {
	// Error is called when an error is encountered. If it returns non-nil,
	// the run aborts immediately with that error.
	Error(ErrorWithPos) error
	// Warning is called when a non-fatal problem is encountered.
	Warning(ErrorWithPos)
}

// NewReporter creates a new reporter that invokes the given functions. Either
// may be nil: a nil errs fails the run on the first error, and a nil warnings
// ignores all warnings.
func NewReporter(errs ErrorReporter, warnings WarningReporter) Reporter {
	return reporterFuncs{errs: errs, warnings: warnings}
}

type reporterFuncs struct {
	errs     ErrorReporter
	warnings WarningReporter
}

func (r reporterFuncs) Error(err ErrorWithPos) error {
	if r.errs == nil {
		return err
	}
	return r.errs(err)
}

func (r reporterFuncs) Warning(err ErrorWithPos) {
	if r.warnings != nil {
		r.warnings(err)
	}
}

// Handler wraps a Reporter and tracks whether the run has failed. All phases
// of generation funnel their errors through a single Handler, which is how
// a schema that fails validation is guaranteed to yield zero output.
type Handler struct {
	reporter Reporter

	mu           sync.Mutex
	errsReported bool
	err          error
}

// NewHandler creates a new Handler that reports errors and warnings to the
// given reporter. If rep is nil, a default reporter is used that aborts on
// the first error and ignores warnings.
func NewHandler(rep Reporter) *Handler {
	if rep == nil {
		rep = NewReporter(nil, nil)
	}
	return &Handler{reporter: rep}
}

// HandleError reports the given error. If the handler's reporter chooses to
// abort, the return value is the abort error and all subsequent calls return
// it without consulting the reporter again.
func (h *Handler) HandleError(err ErrorWithPos) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}
	h.errsReported = true
	h.err = h.reporter.Error(err)
	return h.err
}

// HandleWarning reports the given warning to the handler's reporter.
func (h *Handler) HandleWarning(err ErrorWithPos) {
	// No lock: warnings don't interact with mutable fields.
	h.reporter.Warning(err)
}

// Error returns the error that aborted the run, if any. If errors were
// reported but the reporter consumed all of them, ErrInvalidSchema is
// returned so a failed run can never be mistaken for a successful one.
func (h *Handler) Error() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.errsReported && h.err == nil {
		return ErrInvalidSchema
	}
	return h.err
}

// A Collector is a Reporter that accumulates every error and warning it is
// given, letting generation continue so that all independent problems in a
// schema surface in a single run.
type Collector struct {
	mu       sync.Mutex
	Errors   []ErrorWithPos
	Warnings []ErrorWithPos
}

// Error implements [Reporter].
func (c *Collector) Error(err ErrorWithPos) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Errors = append(c.Errors, err)
	return nil
}

// Warning implements [Reporter].
func (c *Collector) Warning(err ErrorWithPos) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Warnings = append(c.Warnings, err)
}

var _ Reporter = (*Collector)(nil)

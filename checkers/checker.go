package checkers

import (
	"context"

	"github.com/Endogen/xian-linter/lint"
)

// Finding is a checker's native report shape. Line and Column are 1-based,
// matching the conventions of the underlying analyzers; zero means the
// checker did not report that value. The shift to the zero-based wire
// convention happens during normalization, not here.
type Finding struct {
	Message string
	Line    int
	Column  int
}

// Checker analyzes one source text and returns its raw findings.
//
// A Checker must not fail on malformed input: unparsable source is itself a
// finding. A returned error signals an internal fault, which the engine
// converts into a synthetic diagnostic instead of propagating. Implementations
// keep no mutable state across calls and are safe for concurrent use.
type Checker interface {
	Name() string
	Check(ctx context.Context, src lint.SourceText) ([]Finding, error)
}

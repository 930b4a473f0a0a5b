// Package engine aggregates the two checkers into one verdict: concurrent
// fan-out, normalization into the unified diagnostic shape, whitelist
// filtering and stable deduplication.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Endogen/xian-linter/checkers"
	"github.com/Endogen/xian-linter/checkers/contract"
	"github.com/Endogen/xian-linter/checkers/flakes"
	"github.com/Endogen/xian-linter/lint"
)

// Engine runs the syntax checker and the rule checker over one source text
// and merges their findings. The zero value is not usable; construct with New
// or fill both checkers explicitly (tests substitute stubs here).
type Engine struct {
	Syntax checkers.Checker
	Rules  checkers.Checker
	Log    *slog.Logger
}

func New() *Engine {
	return &Engine{Syntax: flakes.New(), Rules: contract.New()}
}

// Lint is total: for any source it returns a result, never an error. A fault
// inside one checker becomes a single synthetic diagnostic and never blocks
// the other checker's findings. Within the result, syntax-checker diagnostics
// always precede rule-checker diagnostics regardless of completion order;
// filtering runs before deduplication, and dedup keeps first occurrences.
func (e *Engine) Lint(ctx context.Context, src lint.SourceText, patterns Patterns) lint.Result {
	var syntaxFindings, ruleFindings []checkers.Finding

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		syntaxFindings = e.run(gctx, e.Syntax, src)
		return nil
	})
	g.Go(func() error {
		ruleFindings = e.run(gctx, e.Rules, src)
		return nil
	})
	// both closures always return nil; Wait is the join barrier
	_ = g.Wait()

	merged := make([]lint.Diagnostic, 0, len(syntaxFindings)+len(ruleFindings))
	merged = append(merged, normalize(syntaxFindings)...)
	merged = append(merged, normalize(ruleFindings)...)

	kept := make([]lint.Diagnostic, 0, len(merged))
	seen := make(map[string]struct{}, len(merged))
	for _, d := range merged {
		if patterns.Matches(d.Message) {
			continue
		}
		key := dedupKey(d)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, d)
	}

	return lint.Result{Success: len(kept) == 0, Errors: kept}
}

// run invokes one checker, converting an error return or a panic into the
// single synthetic "<checker> failed" finding.
func (e *Engine) run(ctx context.Context, c checkers.Checker, src lint.SourceText) (findings []checkers.Finding) {
	defer func() {
		if r := recover(); r != nil {
			if e.Log != nil {
				e.Log.Error("checker panicked", "checker", c.Name(), "panic", r)
			}
			findings = []checkers.Finding{{Message: fmt.Sprintf("%s failed: %v", c.Name(), r)}}
		}
	}()

	findings, err := c.Check(ctx, src)
	if err != nil {
		if e.Log != nil {
			e.Log.Error("checker failed", "checker", c.Name(), "error", err)
		}
		return []checkers.Finding{{Message: fmt.Sprintf("%s failed: %v", c.Name(), err)}}
	}
	return findings
}

// normalize maps raw findings onto the wire diagnostic shape. Checkers report
// 1-based positions; the wire convention is 0-based. A finding without a line
// has no position at all; a finding without a column gets column 0.
func normalize(findings []checkers.Finding) []lint.Diagnostic {
	diags := make([]lint.Diagnostic, 0, len(findings))
	for _, f := range findings {
		d := lint.Diagnostic{Message: f.Message, Severity: lint.SeverityError}
		if f.Line > 0 {
			pos := lint.Position{Line: f.Line - 1}
			if f.Column > 0 {
				pos.Column = f.Column - 1
			}
			d.Position = &pos
		}
		diags = append(diags, d)
	}
	return diags
}

func dedupKey(d lint.Diagnostic) string {
	if d.Position == nil {
		return d.Message
	}
	return fmt.Sprintf("%s\x00%d:%d", d.Message, d.Position.Line, d.Position.Column)
}

package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-test/deep"

	"github.com/Endogen/xian-linter/checkers"
	"github.com/Endogen/xian-linter/lint"
)

// stubChecker lets tests script a checker's outcome, including faults.
type stubChecker struct {
	name     string
	findings []checkers.Finding
	err      error
	panicMsg string
	delay    time.Duration
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) Check(ctx context.Context, src lint.SourceText) ([]checkers.Finding, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.findings, s.err
}

func pos(line, col int) *lint.Position {
	return &lint.Position{Line: line, Column: col}
}

func TestLintNormalization(t *testing.T) {
	type test struct {
		description string
		finding     checkers.Finding
		want        lint.Diagnostic
	}

	tests := []test{
		{
			description: "1-based line and column shift to 0-based",
			finding:     checkers.Finding{Message: "undefined name 'x'", Line: 5, Column: 3},
			want:        lint.Diagnostic{Message: "undefined name 'x'", Severity: lint.SeverityError, Position: pos(4, 2)},
		},
		{
			description: "missing column defaults to 0",
			finding:     checkers.Finding{Message: "invalid syntax", Line: 5},
			want:        lint.Diagnostic{Message: "invalid syntax", Severity: lint.SeverityError, Position: pos(4, 0)},
		},
		{
			description: "missing line drops the position entirely",
			finding:     checkers.Finding{Message: "file-level failure"},
			want:        lint.Diagnostic{Message: "file-level failure", Severity: lint.SeverityError},
		},
	}

	for _, tc := range tests {
		e := &Engine{
			Syntax: &stubChecker{name: "syntax", findings: []checkers.Finding{tc.finding}},
			Rules:  &stubChecker{name: "rules"},
		}

		result := e.Lint(context.Background(), lint.SourceText{}, nil)
		if len(result.Errors) != 1 {
			t.Fatalf("description: %s, got %d diagnostics, want 1", tc.description, len(result.Errors))
		}
		if diff := deep.Equal(result.Errors[0], tc.want); diff != nil {
			t.Errorf("description: %s, diff: %v", tc.description, diff)
		}
	}
}

func TestLintOrderingIgnoresCompletionOrder(t *testing.T) {
	// the syntax checker finishes last; its diagnostics must still come first
	e := &Engine{
		Syntax: &stubChecker{
			name:     "syntax",
			delay:    20 * time.Millisecond,
			findings: []checkers.Finding{{Message: "syntax first", Line: 1}},
		},
		Rules: &stubChecker{
			name:     "rules",
			findings: []checkers.Finding{{Message: "rule second", Line: 1}},
		},
	}

	result := e.Lint(context.Background(), lint.SourceText{}, nil)

	want := []string{"syntax first", "rule second"}
	var got []string
	for _, d := range result.Errors {
		got = append(got, d.Message)
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Errorf("diff: %v", diff)
	}
}

func TestLintCheckerFaultIsolation(t *testing.T) {
	type test struct {
		description string
		syntax      *stubChecker
		wantFirst   string
	}

	tests := []test{
		{
			description: "checker error becomes a synthetic diagnostic",
			syntax:      &stubChecker{name: "syntax", err: errors.New("boom")},
			wantFirst:   "syntax failed: boom",
		},
		{
			description: "checker panic becomes a synthetic diagnostic",
			syntax:      &stubChecker{name: "syntax", panicMsg: "kaboom"},
			wantFirst:   "syntax failed: kaboom",
		},
	}

	for _, tc := range tests {
		e := &Engine{
			Syntax: tc.syntax,
			Rules:  &stubChecker{name: "rules", findings: []checkers.Finding{{Message: "rule finding", Line: 2}}},
		}

		result := e.Lint(context.Background(), lint.SourceText{}, nil)

		if result.Success {
			t.Errorf("description: %s, expected failure", tc.description)
		}
		if len(result.Errors) != 2 {
			t.Fatalf("description: %s, got %d diagnostics, want 2", tc.description, len(result.Errors))
		}
		if result.Errors[0].Message != tc.wantFirst {
			t.Errorf("description: %s, got %q, want %q", tc.description, result.Errors[0].Message, tc.wantFirst)
		}
		if result.Errors[0].Position != nil {
			t.Errorf("description: %s, synthetic diagnostic should have no position", tc.description)
		}
		// the healthy checker's findings survive the fault
		if result.Errors[1].Message != "rule finding" {
			t.Errorf("description: %s, lost the healthy checker's finding", tc.description)
		}
	}
}

func TestLintDeduplication(t *testing.T) {
	e := &Engine{
		Syntax: &stubChecker{name: "syntax", findings: []checkers.Finding{
			{Message: "undefined name 'x'", Line: 3, Column: 1},
			{Message: "undefined name 'x'", Line: 3, Column: 1},
			{Message: "undefined name 'x'", Line: 7, Column: 1},
		}},
		Rules: &stubChecker{name: "rules", findings: []checkers.Finding{
			{Message: "undefined name 'x'", Line: 3, Column: 1},
		}},
	}

	result := e.Lint(context.Background(), lint.SourceText{}, nil)

	if len(result.Errors) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %+v", len(result.Errors), result.Errors)
	}
	for i, d1 := range result.Errors {
		for j, d2 := range result.Errors {
			if i != j && d1.Equal(d2) {
				t.Errorf("duplicate diagnostics at %d and %d: %+v", i, j, d1)
			}
		}
	}
}

func TestLintFilterRunsBeforeDedup(t *testing.T) {
	e := &Engine{
		Syntax: &stubChecker{name: "syntax", findings: []checkers.Finding{
			{Message: "noisy warning about imports", Line: 1},
			{Message: "noisy warning about imports", Line: 1},
			{Message: "kept finding", Line: 2},
		}},
		Rules: &stubChecker{name: "rules"},
	}

	result := e.Lint(context.Background(), lint.SourceText{}, Patterns{"noisy"})

	if len(result.Errors) != 1 || result.Errors[0].Message != "kept finding" {
		t.Fatalf("got %+v, want only the kept finding", result.Errors)
	}
	for _, d := range result.Errors {
		if strings.Contains(d.Message, "noisy") {
			t.Errorf("whitelisted diagnostic leaked: %q", d.Message)
		}
	}
}

func TestLintIdempotence(t *testing.T) {
	e := &Engine{
		Syntax: &stubChecker{name: "syntax", findings: []checkers.Finding{
			{Message: "undefined name 'a'", Line: 2, Column: 5},
			{Message: "invalid syntax", Line: 9},
		}},
		Rules: &stubChecker{name: "rules", findings: []checkers.Finding{
			{Message: "S6- Illicit use of classes", Line: 4, Column: 1},
		}},
	}

	src := lint.SourceText{Content: "whatever", Filename: "<string>"}
	first := e.Lint(context.Background(), src, DefaultPatterns())
	second := e.Lint(context.Background(), src, DefaultPatterns())

	if diff := deep.Equal(first, second); diff != nil {
		t.Errorf("lint is not idempotent: %v", diff)
	}
}

func TestLintEmptyResult(t *testing.T) {
	e := &Engine{
		Syntax: &stubChecker{name: "syntax"},
		Rules:  &stubChecker{name: "rules"},
	}

	result := e.Lint(context.Background(), lint.SourceText{}, DefaultPatterns())

	if !result.Success {
		t.Error("expected success with no findings")
	}
	if result.Errors == nil || len(result.Errors) != 0 {
		t.Errorf("errors must be an empty slice, got %#v", result.Errors)
	}
}

func TestLintSuccessDerivedFromErrors(t *testing.T) {
	type test struct {
		description string
		findings    []checkers.Finding
		patterns    Patterns
		wantSuccess bool
	}

	tests := []test{
		{description: "findings fail", findings: []checkers.Finding{{Message: "x", Line: 1}}, wantSuccess: false},
		{description: "all findings whitelisted", findings: []checkers.Finding{{Message: "x", Line: 1}}, patterns: Patterns{"x"}, wantSuccess: true},
		{description: "no findings", wantSuccess: true},
	}

	for _, tc := range tests {
		e := &Engine{
			Syntax: &stubChecker{name: "syntax", findings: tc.findings},
			Rules:  &stubChecker{name: "rules"},
		}

		result := e.Lint(context.Background(), lint.SourceText{}, tc.patterns)
		if result.Success != tc.wantSuccess {
			t.Errorf("description: %s, got success=%v, want %v", tc.description, result.Success, tc.wantSuccess)
		}
		if result.Success != (len(result.Errors) == 0) {
			t.Errorf("description: %s, success flag diverges from errors", tc.description)
		}
	}
}

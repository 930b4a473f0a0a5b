package engine

import (
	"testing"

	"github.com/go-test/deep"
)

func TestParsePatterns(t *testing.T) {
	type test struct {
		description string
		raw         string
		want        Patterns
	}

	tests := []test{
		{description: "empty input yields nothing", raw: "", want: nil},
		{description: "single pattern", raw: "foo", want: Patterns{"foo"}},
		{description: "whitespace is trimmed per entry", raw: " foo , bar ", want: Patterns{"foo", "bar"}},
		{description: "empty entries are discarded", raw: "foo,,bar,", want: Patterns{"foo", "bar"}},
		{description: "only separators yields nothing", raw: ", ,", want: nil},
	}

	for _, tc := range tests {
		got := ParsePatterns(tc.raw)
		if diff := deep.Equal(got, tc.want); diff != nil {
			t.Errorf("description: %s, diff: %v", tc.description, diff)
		}
	}
}

func TestUnionKeepsDefaults(t *testing.T) {
	effective := DefaultPatterns().Union(ParsePatterns("custom pattern"))

	for _, def := range DefaultPatterns() {
		if !contains(effective, def) {
			t.Errorf("default pattern %q missing from effective set", def)
		}
	}
	if !contains(effective, "custom pattern") {
		t.Error("caller pattern missing from effective set")
	}

	// union with nothing leaves the defaults untouched
	if diff := deep.Equal(DefaultPatterns().Union(nil), DefaultPatterns()); diff != nil {
		t.Errorf("diff: %v", diff)
	}
}

func TestUnionDropsDuplicates(t *testing.T) {
	got := Patterns{"a", "b"}.Union(Patterns{"b", "c", "a"})
	want := Patterns{"a", "b", "c"}
	if diff := deep.Equal(got, want); diff != nil {
		t.Errorf("diff: %v", diff)
	}
}

func TestMatches(t *testing.T) {
	type test struct {
		description string
		message     string
		patterns    Patterns
		want        bool
	}

	tests := []test{
		{description: "substring match", message: "S14- Illegal use of a builtin : 'export'", patterns: DefaultPatterns(), want: true},
		{description: "construct marker is suppressed", message: "S14- Illegal use of a builtin : 'construct'", patterns: DefaultPatterns(), want: true},
		{description: "other builtins are not suppressed", message: "S14- Illegal use of a builtin : 'eval'", patterns: DefaultPatterns(), want: false},
		{description: "matching is case-sensitive", message: "s14- illegal use of a builtin : 'export'", patterns: DefaultPatterns(), want: false},
		{description: "empty patterns never match", message: "anything", patterns: Patterns{""}, want: false},
		{description: "no patterns", message: "anything", patterns: nil, want: false},
	}

	for _, tc := range tests {
		if got := tc.patterns.Matches(tc.message); got != tc.want {
			t.Errorf("description: %s, got %v, want %v", tc.description, got, tc.want)
		}
	}
}

func contains(p Patterns, s string) bool {
	for _, pat := range p {
		if pat == s {
			return true
		}
	}
	return false
}

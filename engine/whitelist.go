package engine

import "strings"

// Patterns is a whitelist: a diagnostic whose message contains any pattern as
// a case-sensitive substring is suppressed.
type Patterns []string

// defaultPatterns suppress the rule checker's reserved-name hits for the
// decorator markers every contract is required to use.
var defaultPatterns = Patterns{
	"S14- Illegal use of a builtin : 'export'",
	"S14- Illegal use of a builtin : 'construct'",
}

// DefaultPatterns returns a copy of the built-in whitelist. Caller-supplied
// patterns are unioned with these, never replace them.
func DefaultPatterns() Patterns {
	out := make(Patterns, len(defaultPatterns))
	copy(out, defaultPatterns)
	return out
}

// ParsePatterns splits a comma-separated pattern string, trimming surrounding
// whitespace and discarding empty entries.
func ParsePatterns(raw string) Patterns {
	var out Patterns
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Union returns the patterns of p followed by those of extra, without
// duplicates, preserving first-occurrence order.
func (p Patterns) Union(extra Patterns) Patterns {
	seen := make(map[string]struct{}, len(p)+len(extra))
	out := make(Patterns, 0, len(p)+len(extra))
	for _, lists := range [][]string{p, extra} {
		for _, pat := range lists {
			if _, ok := seen[pat]; ok {
				continue
			}
			seen[pat] = struct{}{}
			out = append(out, pat)
		}
	}
	return out
}

// Matches reports whether message contains any non-empty pattern.
func (p Patterns) Matches(message string) bool {
	for _, pat := range p {
		if pat != "" && strings.Contains(message, pat) {
			return true
		}
	}
	return false
}

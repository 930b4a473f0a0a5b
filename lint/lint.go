package lint

// SourceText is the unit of analysis: one contract source with a virtual
// filename used in reports.
type SourceText struct {
	Content  string
	Filename string
}

// Severity of a diagnostic. The current policy only ever emits errors;
// warnings are not modeled.
type Severity string

const SeverityError Severity = "error"

// Position is a zero-based location in the source. A nil *Position on a
// Diagnostic means the finding has no location (file-level failure).
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Diagnostic is the unified, checker-agnostic record every raw finding is
// normalized into. Two diagnostics are considered equal when message and
// position match; that is the deduplication key.
type Diagnostic struct {
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	Position *Position `json:"position,omitempty"`
}

// Equal reports whether d and other carry the same message and position.
func (d Diagnostic) Equal(other Diagnostic) bool {
	if d.Message != other.Message {
		return false
	}
	if (d.Position == nil) != (other.Position == nil) {
		return false
	}
	if d.Position == nil {
		return true
	}
	return *d.Position == *other.Position
}

// Result is the engine's final output and the wire-response payload.
// Success is strictly derived from Errors being empty.
type Result struct {
	Success bool         `json:"success"`
	Errors  []Diagnostic `json:"errors"`
}

// Package diag provides the phase-tagged diagnostic channel shared by the
// lexer, parser, and semantic analyzer.
package diag

import "fmt"

// Phase identifies the pipeline stage that produced a diagnostic.
type Phase int

const (
	Lexer Phase = iota
	Parser
	Semantic
)

func (p Phase) String() string {
	switch p {
	case Lexer:
		return "lexer"
	case Parser:
		return "parser"
	case Semantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic represents one compiler diagnostic message. Line and Column
// are 1-based; both are 0 for phase-global messages.
type Diagnostic struct {
	Phase    Phase    `json:"phase"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Message  string   `json:"message"`
}

// String renders the stable text format: [Line L, Column C] Error: <message>.
func (d Diagnostic) String() string {
	label := "Error"
	if d.Severity == Warning {
		label = "Warning"
	}
	return fmt.Sprintf("[Line %d, Column %d] %s: %s", d.Line, d.Column, label, d.Message)
}

// Reporter accumulates diagnostics for a single phase. Binding the phase at
// construction means it does not need to be passed on every report.
type Reporter struct {
	phase Phase
	diags []Diagnostic
}

// NewReporter creates a reporter bound to the given phase.
func NewReporter(phase Phase) *Reporter {
	return &Reporter{phase: phase}
}

// Phase returns the phase the reporter is bound to.
func (r *Reporter) Phase() Phase {
	return r.phase
}

// Report records a diagnostic with the given severity.
func (r *Reporter) Report(line, column int, message string, severity Severity) {
	r.diags = append(r.diags, Diagnostic{
		Phase:    r.phase,
		Severity: severity,
		Line:     line,
		Column:   column,
		Message:  message,
	})
}

// Errorf records an error diagnostic with a formatted message.
func (r *Reporter) Errorf(line, column int, format string, args ...interface{}) {
	r.Report(line, column, fmt.Sprintf(format, args...), Error)
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (r *Reporter) HasErrors() bool {
	for _, d := range r.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Diagnostics returns the accumulated diagnostics in report order.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

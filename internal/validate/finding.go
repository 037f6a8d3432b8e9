package validate

import "fmt"

type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one validation diagnostic. Findings are data, never control
// flow: a validator collects them and keeps going. Cell is the index of the
// offending cell, or -1 for document-level findings.
type Finding struct {
	Severity Severity
	Cell     int
	Message  string
}

func (f Finding) String() string {
	if f.Cell < 0 {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] cell %d: %s", f.Severity, f.Cell, f.Message)
}

// HasFatal reports whether any finding is fatal.
func HasFatal(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// HasErrors reports whether any finding is fatal or error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityFatal || f.Severity == SeverityError {
			return true
		}
	}
	return false
}

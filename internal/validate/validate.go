// Package validate checks notebook documents: schema conformance over the
// raw JSON and non-executing syntax checks over the code cells. Validation
// is stateless and idempotent; it returns findings as data and never mutates
// the document.
package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/gwicho38/mcli-sub001/internal/models"
)

type Mode string

const (
	ModeSchema Mode = "schema"
	ModeSyntax Mode = "syntax"
	ModeAll    Mode = "all"
)

// Document runs the selected validation passes over raw notebook bytes. A
// fatal schema finding short-circuits: nothing else is checked. Findings
// arrive in a stable order, schema first, then syntax in cell order.
func Document(ctx context.Context, raw []byte, mode Mode) []Finding {
	var findings []Finding

	if mode == ModeSchema || mode == ModeAll {
		schemaFindings := Schema(raw)
		findings = append(findings, schemaFindings...)
		if HasFatal(schemaFindings) {
			return findings
		}
	}

	if mode == ModeSyntax || mode == ModeAll {
		nb, err := models.DecodeNotebook(raw)
		if err != nil {
			var se *models.StructuralError
			switch {
			case errors.As(err, &se) && mode == ModeSyntax:
				findings = append(findings, Finding{Severity: SeverityFatal, Cell: -1, Message: se.Detail})
			case errors.As(err, &se):
				// the schema pass already reported the structural problem
			default:
				findings = append(findings, Finding{Severity: SeverityFatal, Cell: -1, Message: fmt.Sprintf("document could not be parsed: %v", err)})
			}
			return findings
		}
		findings = append(findings, Syntax(ctx, nb)...)
	}

	return findings
}

package validate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/gwicho38/mcli-sub001/internal/models"
)

// DefaultTimeout bounds each per-cell checker invocation.
const DefaultTimeout = 5 * time.Second

// pythonParseProgram parses stdin with the interpreter's own parser and
// reports the first syntax error on one line. Nothing from the cell is ever
// executed.
const pythonParseProgram = `import ast, sys
try:
    ast.parse(sys.stdin.read())
except SyntaxError as e:
    sys.stderr.write("syntax error at line %s: %s" % (e.lineno, e.msg))
    sys.exit(1)
`

// Checker runs non-executing syntax checks over a notebook's code cells.
// Cells are checked independently: one failing cell never blocks the rest.
type Checker struct {
	// Timeout applies per cell; DefaultTimeout when zero.
	Timeout time.Duration
}

// Syntax checks every code cell with the zero-value Checker.
func Syntax(ctx context.Context, nb *models.Notebook) []Finding {
	var c Checker
	return c.Check(ctx, nb)
}

// Check resolves each code cell's language (cell metadata, then the embedded
// record, then python) and runs the matching parser in no-execute mode.
// Unrecognized languages and missing checker binaries degrade to a warning
// for that cell rather than failing the document.
func (c *Checker) Check(ctx context.Context, nb *models.Notebook) []Finding {
	var docLang models.Language
	if nb.Metadata.Workflow != nil {
		docLang = nb.Metadata.Workflow.Language
	}

	var findings []Finding
	for i, cell := range nb.Cells {
		if cell.Type != models.CellTypeCode {
			continue
		}
		lang := cell.Metadata.Language
		if lang == "" {
			lang = docLang
		}
		if lang == "" {
			lang = models.DefaultLanguage
		}
		code := cell.Text()
		if strings.TrimSpace(code) == "" {
			continue
		}
		if !lang.Known() {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Cell:     i,
				Message:  fmt.Sprintf("unrecognized language %q: cell left unchecked", lang),
			})
			continue
		}
		if f, ok := c.checkCell(ctx, i, lang, code); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

func (c *Checker) checkCell(ctx context.Context, index int, lang models.Language, code string) (Finding, bool) {
	argv := checkerCommand(lang)
	if _, err := exec.LookPath(argv[0]); err != nil {
		return Finding{
			Severity: SeverityWarning,
			Cell:     index,
			Message:  fmt.Sprintf("%s: %q not found, cell left unchecked", lang, argv[0]),
		}, true
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(code)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return Finding{}, false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Finding{
			Severity: SeverityError,
			Cell:     index,
			Message:  fmt.Sprintf("%s: syntax check timed out", lang),
		}, true
	}
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		msg = err.Error()
	}
	return Finding{
		Severity: SeverityError,
		Cell:     index,
		Message:  fmt.Sprintf("%s: %s", lang, msg),
	}, true
}

// checkerCommand maps a language to its no-execute parser invocation. Every
// checker reads the cell source from stdin.
func checkerCommand(lang models.Language) []string {
	switch lang {
	case models.LanguagePython:
		return []string{"python3", "-c", pythonParseProgram}
	case models.LanguageZsh:
		return []string{"zsh", "-n"}
	case models.LanguageFish:
		return []string{"fish", "--no-execute"}
	default: // shell, bash
		return []string{"bash", "-n"}
	}
}

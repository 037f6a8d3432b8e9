package convert

import (
	"fmt"
	"strings"

	"github.com/gwicho38/mcli-sub001/internal/models"
)

// ToNotebook converts a flat workflow into its notebook form: an optional
// markdown cell rendered from the description, then one code cell per block
// the splitter finds. A blank body still yields one (empty) code cell so
// every notebook has at least one. Pure: the input is never mutated and
// timestamps are carried verbatim, never stamped.
func ToNotebook(wf models.Workflow) models.Notebook {
	meta := ToNotebookMeta(wf)
	nb := models.Notebook{
		Metadata:      models.NotebookMeta{Workflow: &meta},
		NBFormat:      models.NBFormat,
		NBFormatMinor: models.NBFormatMinor,
	}
	if wf.Description != "" {
		nb.Cells = append(nb.Cells, models.NewMarkdownCell(fmt.Sprintf("# %s\n\n%s", wf.Name, wf.Description)))
	}
	blocks := Split(wf.Code, meta.Language)
	for _, block := range blocks {
		nb.Cells = append(nb.Cells, models.NewCodeCell(block, meta.Language))
	}
	if len(blocks) == 0 {
		nb.Cells = append(nb.Cells, models.NewCodeCell("", meta.Language))
	}
	return nb
}

// ToWorkflow is the inverse: code cells are joined back into one script with
// a marker line between consecutive cells, markdown and raw cells are
// dropped. The language falls back to the first code cell's when the
// embedded record does not name one; an empty description falls back to the
// first markdown cell's text.
func ToWorkflow(nb models.Notebook) models.Workflow {
	var meta models.WorkflowMeta
	if nb.Metadata.Workflow != nil {
		meta = *nb.Metadata.Workflow
	}

	var parts []string
	var cellLang models.Language
	for _, cell := range nb.CodeCells() {
		parts = append(parts, cell.Text())
		if cellLang == "" {
			cellLang = cell.Metadata.Language
		}
	}
	if meta.Language == "" {
		meta.Language = cellLang
	}

	wf := ToWorkflowFields(meta)
	wf.Code = JoinCells(parts)

	if wf.Description == "" {
		for _, cell := range nb.Cells {
			if cell.Type == models.CellTypeMarkdown {
				wf.Description = cell.Text()
				break
			}
		}
	}
	return wf
}

// JoinCells joins code-cell sources with an explicit marker line so the cell
// boundaries survive a later split. Non-empty parts are normalized to end
// with a newline first.
func JoinCells(parts []string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		if p != "" && !strings.HasSuffix(p, "\n") {
			p += "\n"
		}
		norm[i] = p
	}
	return strings.Join(norm, Marker+"\n")
}

// Convert transforms a raw document into the target form, detecting the
// input form from the bytes. A document already in the target form is
// decoded and re-encoded, which normalizes its shape. The returned bytes
// are always a complete document, never a partial one.
func Convert(raw []byte, target models.Format) ([]byte, error) {
	format, err := models.Detect(raw)
	if err != nil {
		return nil, err
	}
	switch target {
	case models.FormatNotebook:
		if format == models.FormatNotebook {
			nb, err := models.DecodeNotebook(raw)
			if err != nil {
				return nil, err
			}
			return models.EncodeDocument(nb)
		}
		wf, err := models.DecodeWorkflow(raw)
		if err != nil {
			return nil, err
		}
		return models.EncodeDocument(ToNotebook(*wf))
	case models.FormatWorkflow:
		if format == models.FormatWorkflow {
			wf, err := models.DecodeWorkflow(raw)
			if err != nil {
				return nil, err
			}
			return models.EncodeDocument(wf)
		}
		nb, err := models.DecodeNotebook(raw)
		if err != nil {
			return nil, err
		}
		wf := ToWorkflow(*nb)
		return models.EncodeDocument(wf)
	default:
		return nil, fmt.Errorf("unknown target format: %q", target)
	}
}

package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type CellType string

const (
	CellTypeCode     CellType = "code"
	CellTypeMarkdown CellType = "markdown"
	CellTypeRaw      CellType = "raw"
)

func (t CellType) Known() bool {
	switch t {
	case CellTypeCode, CellTypeMarkdown, CellTypeRaw:
		return true
	}
	return false
}

// Source holds cell text as lines that keep their terminators, so joining
// them reproduces the original text byte for byte.
type Source []string

// SplitLines breaks text into terminator-keeping lines.
func SplitLines(text string) Source {
	if text == "" {
		return Source{}
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return Source(lines)
}

// Text joins the lines back into the cell's full text.
func (s Source) Text() string {
	return strings.Join(s, "")
}

func (s Source) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// UnmarshalJSON accepts both wire forms: a list of lines or a bare string.
func (s *Source) UnmarshalJSON(b []byte) error {
	var lines []string
	if err := json.Unmarshal(b, &lines); err == nil {
		*s = Source(lines)
		return nil
	}
	var text string
	if err := json.Unmarshal(b, &text); err != nil {
		return fmt.Errorf("source must be a string or a list of strings")
	}
	*s = SplitLines(text)
	return nil
}

// CellMeta is a cell's metadata object. Language is the only key this tool
// reads; every other key passes through untouched.
type CellMeta struct {
	Language Language
	Extra    map[string]any
}

func (m CellMeta) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+1)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Language != "" {
		out["language"] = string(m.Language)
	}
	return json.Marshal(out)
}

func (m *CellMeta) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("cell metadata must be an object")
	}
	for k, v := range raw {
		if k == "language" {
			if s, ok := v.(string); ok {
				m.Language = Language(s)
				continue
			}
		}
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[k] = v
	}
	return nil
}

// Cell is one notebook cell. ID is passthrough only: conversions never mint
// identifiers, so converting twice yields identical bytes.
type Cell struct {
	Type           CellType
	Source         Source
	Metadata       CellMeta
	ID             string
	ExecutionCount *int
	Outputs        []any
}

// NewCodeCell returns a never-executed code cell for the given language.
func NewCodeCell(text string, lang Language) Cell {
	return Cell{
		Type:     CellTypeCode,
		Source:   SplitLines(text),
		Metadata: CellMeta{Language: lang},
		Outputs:  []any{},
	}
}

// NewMarkdownCell returns a markdown cell holding the given text.
func NewMarkdownCell(text string) Cell {
	return Cell{
		Type:   CellTypeMarkdown,
		Source: SplitLines(text),
	}
}

// Text returns the cell's source as one string.
func (c Cell) Text() string {
	return c.Source.Text()
}

// MarshalJSON emits the nbformat shape for each cell type: code cells always
// carry execution_count and outputs, markdown and raw cells never do.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.Type == CellTypeCode {
		outputs := c.Outputs
		if outputs == nil {
			outputs = []any{}
		}
		return json.Marshal(struct {
			Type      CellType `json:"cell_type"`
			ExecCount *int     `json:"execution_count"`
			ID        string   `json:"id,omitempty"`
			Metadata  CellMeta `json:"metadata"`
			Outputs   []any    `json:"outputs"`
			Source    Source   `json:"source"`
		}{c.Type, c.ExecutionCount, c.ID, c.Metadata, outputs, c.Source})
	}
	return json.Marshal(struct {
		Type     CellType `json:"cell_type"`
		ID       string   `json:"id,omitempty"`
		Metadata CellMeta `json:"metadata"`
		Source   Source   `json:"source"`
	}{c.Type, c.ID, c.Metadata, c.Source})
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	var wire struct {
		Type      CellType `json:"cell_type"`
		ExecCount *int     `json:"execution_count"`
		ID        string   `json:"id"`
		Metadata  CellMeta `json:"metadata"`
		Outputs   []any    `json:"outputs"`
		Source    Source   `json:"source"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return fmt.Errorf("cell must be an object: %w", err)
	}
	c.Type = wire.Type
	c.Source = wire.Source
	c.Metadata = wire.Metadata
	c.ID = wire.ID
	c.ExecutionCount = wire.ExecCount
	c.Outputs = wire.Outputs
	return nil
}

package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Wire-format constants. Every notebook this tool writes is nbformat 4.5.
const (
	NBFormat      = 4
	NBFormatMinor = 5
)

// MetadataKey is the reserved notebook-metadata key holding the embedded
// workflow record.
const MetadataKey = "mcli"

// StructuralError reports a document whose cell structure cannot be decoded:
// the top level is not an object, or cells is missing or not a list. It is
// the only fatal condition in the whole pipeline.
type StructuralError struct {
	Detail string
}

func (e *StructuralError) Error() string {
	return "invalid notebook structure: " + e.Detail
}

// WorkflowMeta is the embedded workflow record stored under MetadataKey.
// Unknown keys ride along in Extra and survive round trips.
type WorkflowMeta struct {
	Name        string
	Description string
	Group       string
	Version     string
	Language    Language
	CreatedAt   string
	UpdatedAt   string
	Extra       map[string]any
}

func (m WorkflowMeta) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+7)
	for k, v := range m.Extra {
		out[k] = v
	}
	out["name"] = m.Name
	out["description"] = m.Description
	out["group"] = m.Group
	out["version"] = m.Version
	out["language"] = string(m.Language)
	if m.CreatedAt != "" {
		out["created_at"] = m.CreatedAt
	}
	if m.UpdatedAt != "" {
		out["updated_at"] = m.UpdatedAt
	}
	return json.Marshal(out)
}

func (m *WorkflowMeta) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%s metadata must be an object", MetadataKey)
	}
	for k, v := range raw {
		s, isString := v.(string)
		switch {
		case k == "name" && isString:
			m.Name = s
		case k == "description" && isString:
			m.Description = s
		case k == "group" && isString:
			m.Group = s
		case k == "version" && isString:
			m.Version = s
		case k == "language" && isString:
			m.Language = Language(s)
		case k == "created_at" && isString:
			m.CreatedAt = s
		case k == "updated_at" && isString:
			m.UpdatedAt = s
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[k] = v
		}
	}
	return nil
}

// NotebookMeta is the notebook-level metadata object. Workflow is the record
// under MetadataKey; everything else (kernelspec, language_info, custom keys)
// is opaque passthrough kept in Extra. Absent keys stay absent: nothing here
// fabricates kernelspec or language_info defaults.
type NotebookMeta struct {
	Workflow *WorkflowMeta
	Extra    map[string]any
}

func (m NotebookMeta) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+1)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Workflow != nil {
		out[MetadataKey] = m.Workflow
	}
	return json.Marshal(out)
}

func (m *NotebookMeta) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("notebook metadata must be an object")
	}
	for k, v := range raw {
		if k == MetadataKey {
			wm := &WorkflowMeta{}
			if err := json.Unmarshal(v, wm); err != nil {
				return err
			}
			m.Workflow = wm
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[k] = val
	}
	return nil
}

// Notebook is the cell document form.
type Notebook struct {
	Cells         []Cell
	Metadata      NotebookMeta
	NBFormat      int
	NBFormatMinor int
}

func (n Notebook) MarshalJSON() ([]byte, error) {
	cells := n.Cells
	if cells == nil {
		cells = []Cell{}
	}
	nbf, nbm := n.NBFormat, n.NBFormatMinor
	if nbf == 0 {
		nbf = NBFormat
	}
	if nbm == 0 {
		nbm = NBFormatMinor
	}
	return json.Marshal(struct {
		Cells    []Cell       `json:"cells"`
		Metadata NotebookMeta `json:"metadata"`
		NBFormat int          `json:"nbformat"`
		NBMinor  int          `json:"nbformat_minor"`
	}{cells, n.Metadata, nbf, nbm})
}

func (n *Notebook) UnmarshalJSON(b []byte) error {
	var wire struct {
		Cells    json.RawMessage `json:"cells"`
		Metadata NotebookMeta    `json:"metadata"`
		NBFormat int             `json:"nbformat"`
		NBMinor  int             `json:"nbformat_minor"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "" {
			return &StructuralError{Detail: "document is not an object"}
		}
		return err
	}
	if wire.Cells == nil {
		return &StructuralError{Detail: "missing required key: cells"}
	}
	if first := firstByte(wire.Cells); first != '[' {
		return &StructuralError{Detail: "cells must be a list"}
	}
	var cells []Cell
	if err := json.Unmarshal(wire.Cells, &cells); err != nil {
		return &StructuralError{Detail: err.Error()}
	}
	n.Cells = cells
	n.Metadata = wire.Metadata
	n.NBFormat = wire.NBFormat
	n.NBFormatMinor = wire.NBMinor
	return nil
}

// CodeCells returns the code cells in document order.
func (n *Notebook) CodeCells() []Cell {
	var out []Cell
	for _, c := range n.Cells {
		if c.Type == CellTypeCode {
			out = append(out, c)
		}
	}
	return out
}

// MarkdownCells returns the markdown cells in document order.
func (n *Notebook) MarkdownCells() []Cell {
	var out []Cell
	for _, c := range n.Cells {
		if c.Type == CellTypeMarkdown {
			out = append(out, c)
		}
	}
	return out
}

// Name returns the embedded workflow name, or "" when no record is present.
func (n *Notebook) Name() string {
	if n.Metadata.Workflow == nil {
		return ""
	}
	return n.Metadata.Workflow.Name
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

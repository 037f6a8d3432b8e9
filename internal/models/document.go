package models

import (
	"encoding/json"
	"fmt"
)

type Format string

const (
	FormatWorkflow Format = "workflow"
	FormatNotebook Format = "notebook"
)

func (f Format) Known() bool {
	return f == FormatWorkflow || f == FormatNotebook
}

// Detect reports which document form raw holds. A top-level nbformat key
// marks a notebook; any other JSON object is a flat workflow.
func Detect(raw []byte) (Format, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}
	if _, ok := top["nbformat"]; ok {
		return FormatNotebook, nil
	}
	return FormatWorkflow, nil
}

func DecodeNotebook(raw []byte) (*Notebook, error) {
	var nb Notebook
	if err := json.Unmarshal(raw, &nb); err != nil {
		return nil, err
	}
	return &nb, nil
}

func DecodeWorkflow(raw []byte) (*Workflow, error) {
	var wf Workflow
	if err := json.Unmarshal(raw, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse workflow: %w", err)
	}
	return &wf, nil
}

// EncodeDocument renders a document the way every writer here does:
// two-space indent and a trailing newline.
func EncodeDocument(doc any) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return append(out, '\n'), nil
}

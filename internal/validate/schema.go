package validate

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed notebook.schema.json
var notebookSchemaJSON string

// Schema validates raw notebook bytes against the embedded document schema.
// A document whose cells key is missing or not a list gets exactly one fatal
// finding and no further checks; everything else is collected in one pass.
func Schema(raw []byte) []Finding {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return []Finding{{Severity: SeverityFatal, Cell: -1, Message: "document is not a JSON object"}}
	}
	cells, ok := top["cells"]
	if !ok {
		return []Finding{{Severity: SeverityFatal, Cell: -1, Message: "missing required key: cells"}}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(cells, &items); err != nil {
		return []Finding{{Severity: SeverityFatal, Cell: -1, Message: "cells must be a list"}}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(notebookSchemaJSON),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return []Finding{{Severity: SeverityFatal, Cell: -1, Message: fmt.Sprintf("schema validation failed: %v", err)}}
	}

	var findings []Finding
	for _, e := range result.Errors() {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Cell:     cellIndexOf(e.Field()),
			Message:  fmt.Sprintf("%s: %s", e.Field(), e.Description()),
		})
	}
	return findings
}

// cellIndexOf extracts the cell index from a schema error field path like
// "cells.2.cell_type". Document-level fields map to -1.
func cellIndexOf(field string) int {
	parts := strings.Split(field, ".")
	if len(parts) < 2 || parts[0] != "cells" {
		return -1
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil {
		return -1
	}
	return idx
}

package convert

import (
	"maps"

	"github.com/gwicho38/mcli-sub001/internal/models"
)

// ToNotebookMeta maps flat workflow fields into the embedded metadata record.
// Total and pure: absent fields take their defaults, unknown languages fall
// back to python, and the free-form metadata record passes through untouched.
func ToNotebookMeta(wf models.Workflow) models.WorkflowMeta {
	return models.WorkflowMeta{
		Name:        wf.Name,
		Description: wf.Description,
		Group:       defaultString(wf.Group, models.DefaultGroup),
		Version:     defaultString(wf.Version, models.DefaultVersion),
		Language:    wf.Language.Normalize(),
		CreatedAt:   wf.CreatedAt,
		UpdatedAt:   wf.UpdatedAt,
		Extra:       maps.Clone(wf.Metadata),
	}
}

// ToWorkflowFields is the inverse of ToNotebookMeta: it rebuilds the flat
// fields (code excluded) from an embedded record. Round-tripping a fully
// populated record through both directions is the identity.
func ToWorkflowFields(meta models.WorkflowMeta) models.Workflow {
	return models.Workflow{
		Name:        meta.Name,
		Description: meta.Description,
		Group:       defaultString(meta.Group, models.DefaultGroup),
		Version:     defaultString(meta.Version, models.DefaultVersion),
		Language:    meta.Language.Normalize(),
		CreatedAt:   meta.CreatedAt,
		UpdatedAt:   meta.UpdatedAt,
		Metadata:    maps.Clone(meta.Extra),
	}
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

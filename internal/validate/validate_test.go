package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_FatalShortCircuits(t *testing.T) {
	raw := []byte(`{"metadata": {"mcli": {"name": "x"}}, "nbformat": 4, "nbformat_minor": 5}`)
	findings := Document(context.Background(), raw, ModeAll)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityFatal, findings[0].Severity)
}

func TestDocument_SchemaOnlySkipsSyntax(t *testing.T) {
	// the code cell holds broken python, but schema mode never runs checkers
	raw := []byte(`{
		"cells": [{"cell_type": "code", "execution_count": null, "metadata": {"language": "python"}, "outputs": [], "source": "def f(:\n"}],
		"metadata": {"mcli": {"name": "x", "language": "python"}},
		"nbformat": 4,
		"nbformat_minor": 5
	}`)
	assert.Empty(t, Document(context.Background(), raw, ModeSchema))
}

func TestDocument_SyntaxModeStructuralIsFatal(t *testing.T) {
	raw := []byte(`{"nbformat": 4, "metadata": {}}`)
	findings := Document(context.Background(), raw, ModeSyntax)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityFatal, findings[0].Severity)
}

func TestDocument_AllModeReportsStructuralOnce(t *testing.T) {
	raw := []byte(`{"cells": 42, "nbformat": 4}`)
	findings := Document(context.Background(), raw, ModeAll)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityFatal, findings[0].Severity)
}

func TestDocument_Idempotent(t *testing.T) {
	raw := []byte(validNotebookJSON)
	first := Document(context.Background(), raw, ModeAll)
	second := Document(context.Background(), raw, ModeAll)
	assert.Equal(t, first, second)
}

func TestDocument_ValidNotebookNoFindings(t *testing.T) {
	findings := Document(context.Background(), []byte(validNotebookJSON), ModeSchema)
	assert.Empty(t, findings)
}

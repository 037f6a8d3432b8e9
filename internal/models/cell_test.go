package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines_KeepsTerminators(t *testing.T) {
	src := SplitLines("a = 1\nb = 2\n")
	assert.Equal(t, Source{"a = 1\n", "b = 2\n"}, src)
	assert.Equal(t, "a = 1\nb = 2\n", src.Text())
}

func TestSplitLines_NoTrailingNewline(t *testing.T) {
	src := SplitLines("a = 1\nb = 2")
	assert.Equal(t, Source{"a = 1\n", "b = 2"}, src)
	assert.Equal(t, "a = 1\nb = 2", src.Text())
}

func TestSplitLines_Empty(t *testing.T) {
	assert.Empty(t, SplitLines(""))
	assert.Equal(t, "", SplitLines("").Text())
}

func TestSource_UnmarshalAcceptsString(t *testing.T) {
	var src Source
	require.NoError(t, json.Unmarshal([]byte(`"x = 1\ny = 2\n"`), &src))
	assert.Equal(t, Source{"x = 1\n", "y = 2\n"}, src)
}

func TestSource_UnmarshalAcceptsList(t *testing.T) {
	var src Source
	require.NoError(t, json.Unmarshal([]byte(`["x = 1\n", "y = 2\n"]`), &src))
	assert.Equal(t, Source{"x = 1\n", "y = 2\n"}, src)
}

func TestSource_UnmarshalRejectsOtherShapes(t *testing.T) {
	var src Source
	assert.Error(t, json.Unmarshal([]byte(`42`), &src))
}

func TestSource_MarshalAlwaysList(t *testing.T) {
	out, err := json.Marshal(Source(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))

	out, err = json.Marshal(SplitLines("x = 1\n"))
	require.NoError(t, err)
	assert.Equal(t, `["x = 1\n"]`, string(out))
}

func TestCell_CodeMarshalShape(t *testing.T) {
	out, err := json.Marshal(NewCodeCell("x = 1\n", LanguagePython))
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(out, &parsed))

	assert.Equal(t, "code", parsed["cell_type"])
	count, present := parsed["execution_count"]
	assert.True(t, present, "code cells always carry execution_count")
	assert.Nil(t, count)
	assert.Equal(t, []any{}, parsed["outputs"])
	assert.Equal(t, map[string]any{"language": "python"}, parsed["metadata"])
	assert.NotContains(t, parsed, "id")
}

func TestCell_MarkdownMarshalShape(t *testing.T) {
	out, err := json.Marshal(NewMarkdownCell("# title\n"))
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(out, &parsed))

	assert.Equal(t, "markdown", parsed["cell_type"])
	assert.NotContains(t, parsed, "execution_count")
	assert.NotContains(t, parsed, "outputs")
	assert.Equal(t, map[string]any{}, parsed["metadata"])
}

func TestCell_IDAndOutputsPassThrough(t *testing.T) {
	in := []byte(`{
		"cell_type": "code",
		"execution_count": 3,
		"id": "abc123",
		"metadata": {"language": "python", "collapsed": true},
		"outputs": [{"output_type": "stream", "text": "hi"}],
		"source": "print('hi')\n"
	}`)

	var cell Cell
	require.NoError(t, json.Unmarshal(in, &cell))
	assert.Equal(t, "abc123", cell.ID)
	require.NotNil(t, cell.ExecutionCount)
	assert.Equal(t, 3, *cell.ExecutionCount)
	assert.Equal(t, LanguagePython, cell.Metadata.Language)
	assert.Equal(t, map[string]any{"collapsed": true}, cell.Metadata.Extra)

	out, err := json.Marshal(cell)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(out, &parsed))
	assert.Equal(t, "abc123", parsed["id"])
	assert.Equal(t, float64(3), parsed["execution_count"])
	assert.Len(t, parsed["outputs"], 1)
	meta := parsed["metadata"].(map[string]any)
	assert.Equal(t, true, meta["collapsed"])
}

func TestLanguage_Normalize(t *testing.T) {
	assert.Equal(t, LanguageZsh, LanguageZsh.Normalize())
	assert.Equal(t, LanguagePython, Language("ruby").Normalize())
	assert.Equal(t, LanguagePython, Language("").Normalize())
}

package collection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwicho38/mcli-sub001/internal/convert"
	"github.com/gwicho38/mcli-sub001/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const flatWorkflowJSON = `{"name": "greet", "description": "says hi", "group": "demo", "language": "python", "code": "print('hi')\n"}`

func notebookJSON(t *testing.T, name string) string {
	t.Helper()
	nb := convert.ToNotebook(models.Workflow{Name: name, Language: models.LanguagePython, Code: "x = 1\n"})
	out, err := models.EncodeDocument(nb)
	require.NoError(t, err)
	return string(out)
}

func TestLoad_DetectsWorkflow(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "greet.json", flatWorkflowJSON)

	entry, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, models.FormatWorkflow, entry.Format)
	require.NotNil(t, entry.Workflow)
	assert.Equal(t, "greet", entry.Name())
	assert.Equal(t, models.LanguagePython, entry.Language())
	assert.Equal(t, "demo", entry.Group())
	assert.Equal(t, 0, entry.CellCount())
}

func TestLoad_DetectsNotebook(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nb.json", notebookJSON(t, "builder"))

	entry, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, models.FormatNotebook, entry.Format)
	require.NotNil(t, entry.Notebook)
	assert.Equal(t, "builder", entry.Name())
	assert.Equal(t, 1, entry.CellCount())
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.json", "{nope")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEntry_NameFallsBackToFileName(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "unnamed.json", `{"code": "x = 1\n"}`)
	entry, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "unnamed", entry.Name())
}

func TestStore_ListSkipsNoiseAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zeta.json", flatWorkflowJSON)
	writeFile(t, dir, "alpha.json", notebookJSON(t, "alpha"))
	writeFile(t, dir, LockFileName, `{"locked": true}`)
	writeFile(t, dir, "notes.txt", "not a document")
	writeFile(t, dir, "corrupt.json", "{broken")
	writeFile(t, dir, "backup.json.bak", flatWorkflowJSON)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))

	store := NewStore(dir)
	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "alpha", entries[0].Name())
	assert.Equal(t, "greet", entries[1].Name())
}

func TestStore_ListMissingDirIsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))
	entries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_FindAndRemove(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greet.json", flatWorkflowJSON)
	store := NewStore(dir)

	entry, err := store.Find("greet")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "greet.json"), entry.Path)

	_, err = store.Find("missing")
	assert.Error(t, err)

	require.NoError(t, store.Remove("greet"))
	_, statErr := os.Stat(entry.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_SaveNotebook(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "commands")
	store := NewStore(dir)

	nb := convert.ToNotebook(models.Workflow{Name: "fresh", Code: "x = 1\n"})
	path, err := store.SaveNotebook(&nb)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fresh.json"), path)

	entry, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, models.FormatNotebook, entry.Format)
	assert.Equal(t, "fresh", entry.Name())
}

func TestStore_SaveNotebookWithoutName(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.SaveNotebook(&models.Notebook{})
	assert.Error(t, err)
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "greet.json", flatWorkflowJSON)

	backupPath, err := Backup(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "greet.json.bak"), backupPath)

	original, err := os.ReadFile(path)
	require.NoError(t, err)
	copied, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, original, copied)
}

func TestWriteDocument_StandardShape(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	wf := models.Workflow{Name: "w", Code: "x = 1\n"}
	require.NoError(t, WriteDocument(path, wf))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(raw) > 0 && raw[len(raw)-1] == '\n', "document files end with a newline")

	entry, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "w", entry.Name())
}

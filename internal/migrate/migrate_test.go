package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwicho38/mcli-sub001/internal/collection"
	"github.com/gwicho38/mcli-sub001/internal/convert"
	"github.com/gwicho38/mcli-sub001/internal/models"
	"github.com/gwicho38/mcli-sub001/internal/storage"
)

const flatJSON = `{"name": "greet", "language": "python", "code": "print('hi')\n"}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeNotebook(t *testing.T, dir, name string) string {
	t.Helper()
	nb := convert.ToNotebook(models.Workflow{Name: name, Code: "x = 1\n"})
	out, err := models.EncodeDocument(nb)
	require.NoError(t, err)
	return writeFile(t, dir, name+".json", string(out))
}

func isNotebookFile(t *testing.T, path string) bool {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	format, err := models.Detect(raw)
	require.NoError(t, err)
	return format == models.FormatNotebook
}

func TestRun_InPlaceSweep(t *testing.T) {
	dir := t.TempDir()
	flat := writeFile(t, dir, "greet.json", flatJSON)
	writeNotebook(t, dir, "done")
	writeFile(t, dir, "corrupt.json", "{broken")
	writeFile(t, dir, collection.LockFileName, `{"locked": true}`)
	writeFile(t, dir, "notes.txt", "not a document")

	result, err := New(nil).Run(Options{Dir: dir, Backup: true, InPlace: true})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Converted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Files, 3)

	// sweep order follows file names
	assert.Equal(t, models.FileStatusFailed, result.Files[0].Status)
	assert.Equal(t, 1, result.Files[0].SequenceNum)
	assert.Equal(t, models.FileStatusSkipped, result.Files[1].Status)
	assert.Equal(t, "already a notebook", result.Files[1].Detail)
	assert.Equal(t, models.FileStatusConverted, result.Files[2].Status)
	assert.Equal(t, flat, result.Files[2].OutputPath)

	assert.True(t, isNotebookFile(t, flat), "converted in place")
	assert.FileExists(t, filepath.Join(dir, "greet.json.bak"))
	lock, err := os.ReadFile(filepath.Join(dir, collection.LockFileName))
	require.NoError(t, err)
	assert.Equal(t, `{"locked": true}`, string(lock))
}

func TestRun_SeparateModeKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	flat := writeFile(t, dir, "greet.json", flatJSON)

	result, err := New(nil).Run(Options{Dir: dir, InPlace: false})
	require.NoError(t, err)
	require.Equal(t, 1, result.Converted)

	sibling := filepath.Join(dir, "greet.notebook.json")
	assert.Equal(t, sibling, result.Files[0].OutputPath)
	assert.True(t, isNotebookFile(t, sibling))
	assert.False(t, isNotebookFile(t, flat), "original stays flat")
}

func TestRun_DryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	flat := writeFile(t, dir, "greet.json", flatJSON)

	result, err := New(nil).Run(Options{Dir: dir, Backup: true, InPlace: true, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Converted)
	assert.Zero(t, result.RunID)

	raw, err := os.ReadFile(flat)
	require.NoError(t, err)
	assert.Equal(t, flatJSON, string(raw))
	assert.NoFileExists(t, filepath.Join(dir, "greet.json.bak"))
}

func TestRun_NoBackup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greet.json", flatJSON)

	_, err := New(nil).Run(Options{Dir: dir, Backup: false, InPlace: true})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "greet.json.bak"))
}

func TestRun_MissingDirectory(t *testing.T) {
	_, err := New(nil).Run(Options{Dir: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func TestRun_RecordsLedger(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greet.json", flatJSON)
	writeNotebook(t, dir, "done")

	store, err := storage.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer store.Close()

	result, err := New(store).Run(Options{Dir: dir, Backup: true, InPlace: true})
	require.NoError(t, err)
	require.Positive(t, result.RunID)

	run, err := store.GetRun(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.MigrationStatusComplete, run.Status)
	assert.Equal(t, dir, run.Directory)
	assert.Equal(t, 2, run.Total)
	assert.Equal(t, 1, run.Converted)
	assert.Equal(t, 1, run.Skipped)
	require.NotNil(t, run.CompletedAt)

	files, err := store.GetFileResultsForRun(result.RunID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, models.FileStatusSkipped, files[0].Status)
	assert.Equal(t, models.FileStatusConverted, files[1].Status)
}

func TestRun_LedgerMarksFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "corrupt.json", "{broken")

	store, err := storage.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer store.Close()

	result, err := New(store).Run(Options{Dir: dir, InPlace: true})
	require.NoError(t, err)

	run, err := store.GetRun(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.MigrationStatusFailed, run.Status)
	assert.Equal(t, 1, run.Failed)
}

func TestRun_DryRunIsNotRecorded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greet.json", flatJSON)

	store, err := storage.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer store.Close()

	result, err := New(store).Run(Options{Dir: dir, InPlace: true, DryRun: true})
	require.NoError(t, err)
	assert.Zero(t, result.RunID)

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

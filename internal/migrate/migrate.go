// Package migrate sweeps a directory of workflow documents and converts the
// flat ones to notebook form. Per-file failures are recorded, never fatal:
// one broken document does not stop the sweep. Non-dry sweeps are written to
// the migration ledger.
package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gwicho38/mcli-sub001/internal/collection"
	"github.com/gwicho38/mcli-sub001/internal/convert"
	"github.com/gwicho38/mcli-sub001/internal/logging"
	"github.com/gwicho38/mcli-sub001/internal/models"
	"github.com/gwicho38/mcli-sub001/internal/storage"
)

// Options control one sweep.
type Options struct {
	Dir     string
	Backup  bool
	InPlace bool
	DryRun  bool
}

// Result aggregates a sweep. Files holds per-file outcomes in sweep order;
// RunID is the ledger row, or 0 when the sweep was not recorded.
type Result struct {
	RunID     int64
	Total     int
	Converted int
	Skipped   int
	Failed    int
	Files     []*models.FileResult
}

// Migrator runs directory sweeps. A nil store records nothing, which is how
// dry runs and tests operate.
type Migrator struct {
	store *storage.Storage
}

func New(store *storage.Storage) *Migrator {
	return &Migrator{store: store}
}

// Run converts every flat workflow file directly under opts.Dir. The
// lockfile, non-JSON files and subdirectories are ignored; documents already
// in notebook form are skipped. Only an unreadable directory or a ledger
// write is fatal.
func (m *Migrator) Run(opts Options) (*Result, error) {
	dirEntries, err := os.ReadDir(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	record := m.store != nil && !opts.DryRun
	var runID int64
	if record {
		id, err := m.store.CreateRun(&models.MigrationRun{
			Directory: opts.Dir,
			InPlace:   opts.InPlace,
			Backup:    opts.Backup,
			Status:    models.MigrationStatusRunning,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to record migration run: %w", err)
		}
		runID = id
	}

	result := &Result{RunID: runID}
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if !strings.HasSuffix(name, ".json") || name == collection.LockFileName {
			continue
		}

		fr := migrateFile(filepath.Join(opts.Dir, name), opts)
		result.Total++
		fr.RunID = runID
		fr.SequenceNum = result.Total
		switch fr.Status {
		case models.FileStatusConverted:
			result.Converted++
		case models.FileStatusSkipped:
			result.Skipped++
		default:
			result.Failed++
			logging.Warn("failed to convert document", "file", name, "detail", fr.Detail)
		}
		result.Files = append(result.Files, fr)
	}

	if record {
		if err := m.recordResult(runID, result); err != nil {
			return nil, err
		}
	}

	logging.Info("migration sweep finished",
		"dir", opts.Dir,
		"total", result.Total,
		"converted", result.Converted,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"dry_run", opts.DryRun,
	)
	return result, nil
}

func (m *Migrator) recordResult(runID int64, result *Result) error {
	for _, fr := range result.Files {
		if _, err := m.store.CreateFileResult(fr); err != nil {
			return fmt.Errorf("failed to record file result: %w", err)
		}
	}

	now := time.Now()
	status := models.MigrationStatusComplete
	if result.Failed > 0 {
		status = models.MigrationStatusFailed
	}
	err := m.store.UpdateRun(&models.MigrationRun{
		ID:          runID,
		CompletedAt: &now,
		Status:      status,
		Total:       result.Total,
		Converted:   result.Converted,
		Skipped:     result.Skipped,
		Failed:      result.Failed,
	})
	if err != nil {
		return fmt.Errorf("failed to record migration run: %w", err)
	}
	return nil
}

// migrateFile handles one document. Every outcome, including failure, comes
// back as a FileResult.
func migrateFile(path string, opts Options) *models.FileResult {
	fr := &models.FileResult{Path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		return failed(fr, err)
	}
	format, err := models.Detect(raw)
	if err != nil {
		return failed(fr, err)
	}
	if format == models.FormatNotebook {
		fr.Status = models.FileStatusSkipped
		fr.Detail = "already a notebook"
		return fr
	}

	outPath := path
	if !opts.InPlace {
		outPath = strings.TrimSuffix(path, ".json") + ".notebook.json"
	}
	fr.OutputPath = outPath

	if opts.DryRun {
		fr.Status = models.FileStatusConverted
		return fr
	}

	out, err := convert.Convert(raw, models.FormatNotebook)
	if err != nil {
		return failed(fr, err)
	}

	if opts.Backup {
		if _, err := collection.Backup(path); err != nil {
			return failed(fr, err)
		}
	}

	if err := os.WriteFile(outPath, out, 0644); err != nil {
		return failed(fr, err)
	}

	fr.Status = models.FileStatusConverted
	logging.Debug("converted workflow", "file", filepath.Base(path), "output", filepath.Base(outPath))
	return fr
}

func failed(fr *models.FileResult, err error) *models.FileResult {
	fr.Status = models.FileStatusFailed
	fr.Detail = err.Error()
	return fr
}

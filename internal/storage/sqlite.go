// Package storage persists the migration ledger: one row per directory
// sweep, one row per file outcome. The schema is created on open.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gwicho38/mcli-sub001/internal/models"
	_ "modernc.org/sqlite"
)

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS migration_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		completed_at TIMESTAMP,
		directory TEXT NOT NULL,
		in_place INTEGER NOT NULL DEFAULT 1,
		backup INTEGER NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'running',
		total INTEGER NOT NULL DEFAULT 0,
		converted INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS file_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES migration_runs(id),
		path TEXT NOT NULL,
		output_path TEXT,
		status TEXT NOT NULL,
		detail TEXT,
		sequence_num INTEGER NOT NULL,
		UNIQUE(run_id, sequence_num)
	);

	CREATE INDEX IF NOT EXISTS idx_migration_runs_status ON migration_runs(status);
	CREATE INDEX IF NOT EXISTS idx_file_results_run ON file_results(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Storage) CreateRun(run *models.MigrationRun) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO migration_runs (directory, in_place, backup, status)
		 VALUES (?, ?, ?, ?)`,
		run.Directory, run.InPlace, run.Backup, run.Status,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Storage) GetRun(id int64) (*models.MigrationRun, error) {
	row := s.db.QueryRow(
		`SELECT id, started_at, completed_at, directory, in_place, backup, status, total, converted, skipped, failed
		 FROM migration_runs WHERE id = ?`, id,
	)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("migration run %d not found", id)
	}
	return run, err
}

func (s *Storage) UpdateRun(run *models.MigrationRun) error {
	_, err := s.db.Exec(
		`UPDATE migration_runs SET completed_at = ?, status = ?, total = ?, converted = ?, skipped = ?, failed = ? WHERE id = ?`,
		run.CompletedAt, run.Status, run.Total, run.Converted, run.Skipped, run.Failed, run.ID,
	)
	return err
}

func (s *Storage) ListRuns(limit int) ([]*models.MigrationRun, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, completed_at, directory, in_place, backup, status, total, converted, skipped, failed
		 FROM migration_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.MigrationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.MigrationRun, error) {
	var run models.MigrationRun
	var completedAt sql.NullTime

	err := row.Scan(
		&run.ID, &run.StartedAt, &completedAt, &run.Directory,
		&run.InPlace, &run.Backup, &run.Status,
		&run.Total, &run.Converted, &run.Skipped, &run.Failed,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}

	return &run, nil
}

func (s *Storage) CreateFileResult(fr *models.FileResult) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO file_results (run_id, path, output_path, status, detail, sequence_num)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		fr.RunID, fr.Path, fr.OutputPath, fr.Status, fr.Detail, fr.SequenceNum,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Storage) GetFileResultsForRun(runID int64) ([]*models.FileResult, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, path, output_path, status, detail, sequence_num
		 FROM file_results WHERE run_id = ? ORDER BY sequence_num`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.FileResult
	for rows.Next() {
		var fr models.FileResult
		var outputPath, detail sql.NullString

		err := rows.Scan(&fr.ID, &fr.RunID, &fr.Path, &outputPath, &fr.Status, &detail, &fr.SequenceNum)
		if err != nil {
			return nil, err
		}

		if outputPath.Valid {
			fr.OutputPath = outputPath.String
		}
		if detail.Valid {
			fr.Detail = detail.String
		}

		results = append(results, &fr)
	}

	return results, rows.Err()
}

// FormatTimeAgo renders a timestamp the way the history listing shows it.
func FormatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("Jan 2")
	}
}

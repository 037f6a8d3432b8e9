package models

import "time"

type MigrationStatus string

const (
	MigrationStatusRunning  MigrationStatus = "running"
	MigrationStatusComplete MigrationStatus = "complete"
	MigrationStatusFailed   MigrationStatus = "failed"
)

// MigrationRun is one recorded directory sweep. Dry runs are never recorded,
// so every row here corresponds to files actually written.
type MigrationRun struct {
	ID          int64
	StartedAt   time.Time
	CompletedAt *time.Time
	Directory   string
	InPlace     bool
	Backup      bool
	Status      MigrationStatus
	Total       int
	Converted   int
	Skipped     int
	Failed      int
}

type FileStatus string

const (
	FileStatusConverted FileStatus = "converted"
	FileStatusSkipped   FileStatus = "skipped"
	FileStatusFailed    FileStatus = "failed"
)

// FileResult is one file's outcome within a sweep. Detail carries the skip
// reason or failure message.
type FileResult struct {
	ID          int64
	RunID       int64
	Path        string
	OutputPath  string
	Status      FileStatus
	Detail      string
	SequenceNum int
}

// Package collection manages the on-disk library of workflow documents: a
// flat directory of JSON files, one document per file, in either form. All
// filesystem access for documents lives here; the conversion and validation
// packages never touch disk.
package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gwicho38/mcli-sub001/internal/logging"
	"github.com/gwicho38/mcli-sub001/internal/models"
)

// LockFileName is the collection's lockfile; it is never treated as a
// document.
const LockFileName = "commands.lock.json"

// Entry is one stored document together with where and in which form it
// lives on disk. Raw keeps the bytes as read, so validation does not have to
// touch the file again.
type Entry struct {
	Path     string
	Format   models.Format
	Raw      []byte
	Workflow *models.Workflow
	Notebook *models.Notebook
}

// Name returns the document's workflow name, falling back to the file name
// without extension when the document does not carry one.
func (e *Entry) Name() string {
	switch {
	case e.Format == models.FormatWorkflow && e.Workflow != nil && e.Workflow.Name != "":
		return e.Workflow.Name
	case e.Format == models.FormatNotebook && e.Notebook != nil && e.Notebook.Name() != "":
		return e.Notebook.Name()
	}
	return strings.TrimSuffix(filepath.Base(e.Path), ".json")
}

// Language returns the document's declared language, defaulted.
func (e *Entry) Language() models.Language {
	switch {
	case e.Format == models.FormatWorkflow && e.Workflow != nil:
		return e.Workflow.Language.Normalize()
	case e.Format == models.FormatNotebook && e.Notebook != nil && e.Notebook.Metadata.Workflow != nil:
		return e.Notebook.Metadata.Workflow.Language.Normalize()
	}
	return models.DefaultLanguage
}

// Group returns the document's group, defaulted.
func (e *Entry) Group() string {
	switch {
	case e.Format == models.FormatWorkflow && e.Workflow != nil && e.Workflow.Group != "":
		return e.Workflow.Group
	case e.Format == models.FormatNotebook && e.Notebook != nil && e.Notebook.Metadata.Workflow != nil && e.Notebook.Metadata.Workflow.Group != "":
		return e.Notebook.Metadata.Workflow.Group
	}
	return models.DefaultGroup
}

// Description returns the document's description, or "".
func (e *Entry) Description() string {
	switch {
	case e.Format == models.FormatWorkflow && e.Workflow != nil:
		return e.Workflow.Description
	case e.Format == models.FormatNotebook && e.Notebook != nil && e.Notebook.Metadata.Workflow != nil:
		return e.Notebook.Metadata.Workflow.Description
	}
	return ""
}

// CellCount returns the number of cells for notebooks and 0 for flat
// workflows.
func (e *Entry) CellCount() int {
	if e.Format == models.FormatNotebook && e.Notebook != nil {
		return len(e.Notebook.Cells)
	}
	return 0
}

// Load reads one document from disk, detecting its form from the bytes.
func Load(path string) (*Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	format, err := models.Detect(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	entry := &Entry{Path: path, Format: format, Raw: raw}
	switch format {
	case models.FormatNotebook:
		nb, err := models.DecodeNotebook(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		entry.Notebook = nb
	default:
		wf, err := models.DecodeWorkflow(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		entry.Workflow = wf
	}
	return entry, nil
}

// WriteDocument renders doc in the standard shape and writes it to path.
func WriteDocument(path string, doc any) error {
	out, err := models.EncodeDocument(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Backup copies path to a .json.bak sibling and returns the backup path.
func Backup(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s for backup: %w", path, err)
	}
	backupPath := strings.TrimSuffix(path, ".json") + ".json.bak"
	if err := os.WriteFile(backupPath, raw, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return backupPath, nil
}

// Store is a collection rooted at one directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// List loads every document in the collection, sorted by name. The lockfile,
// non-JSON files and subdirectories are ignored; unreadable documents are
// skipped with a warning so one corrupt file never hides the rest.
func (s *Store) List() ([]*Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read collection directory: %w", err)
	}

	var entries []*Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if !strings.HasSuffix(name, ".json") || name == LockFileName {
			continue
		}
		entry, err := Load(filepath.Join(s.dir, name))
		if err != nil {
			logging.Warn("skipping unreadable document", "file", name, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// Find returns the collection entry whose name matches exactly.
func (s *Store) Find(name string) (*Entry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Name() == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("workflow %q not found in %s", name, s.dir)
}

// Remove deletes the named document from the collection.
func (s *Store) Remove(name string) error {
	entry, err := s.Find(name)
	if err != nil {
		return err
	}
	if err := os.Remove(entry.Path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", entry.Path, err)
	}
	return nil
}

// SaveNotebook writes a notebook into the collection under its record name
// and returns the path. The collection directory is created if needed.
func (s *Store) SaveNotebook(nb *models.Notebook) (string, error) {
	name := nb.Name()
	if name == "" {
		return "", fmt.Errorf("notebook has no name")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create collection directory: %w", err)
	}
	path := filepath.Join(s.dir, name+".json")
	if err := WriteDocument(path, nb); err != nil {
		return "", err
	}
	return path, nil
}

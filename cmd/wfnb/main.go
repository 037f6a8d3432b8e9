package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gwicho38/mcli-sub001/internal/collection"
	"github.com/gwicho38/mcli-sub001/internal/config"
	"github.com/gwicho38/mcli-sub001/internal/convert"
	"github.com/gwicho38/mcli-sub001/internal/logging"
	"github.com/gwicho38/mcli-sub001/internal/migrate"
	"github.com/gwicho38/mcli-sub001/internal/models"
	"github.com/gwicho38/mcli-sub001/internal/storage"
	"github.com/gwicho38/mcli-sub001/internal/tui"
	"github.com/gwicho38/mcli-sub001/internal/ui"
	"github.com/gwicho38/mcli-sub001/internal/validate"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:          "wfnb",
		Short:        "Workflow notebook converter and validator",
		Long:         "wfnb converts between flat workflow scripts and cell-structured notebooks, validates them, and migrates whole collections.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logging.SetVerbose(true)
				return
			}
			if cfg, err := config.Load(); err == nil {
				logging.SetVerbose(cfg.Verbose)
			}
		},
		RunE: runTUI,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newInfoCommand())
	rootCmd.AddCommand(newCreateCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newDeleteCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newEditCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	app := tui.NewApp(collection.NewStore(cfg.CommandsDir))
	p := tea.NewProgram(app, tea.WithAltScreen())

	_, err = p.Run()
	return err
}

func newConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a document between workflow and notebook formats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]
			target, _ := cmd.Flags().GetString("to")
			output, _ := cmd.Flags().GetString("output")
			backup, _ := cmd.Flags().GetBool("backup")

			format := models.Format(target)
			if !format.Known() {
				return fmt.Errorf("unknown target format %q (want notebook or workflow)", target)
			}

			raw, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", inputPath, err)
			}

			out, err := convert.Convert(raw, format)
			if err != nil {
				return fmt.Errorf("conversion failed: %w", err)
			}

			outputPath := inputPath
			if output != "" {
				outputPath = output
			}

			if backup && outputPath == inputPath {
				backupPath, err := collection.Backup(inputPath)
				if err != nil {
					return err
				}
				ui.Info("Created backup: %s", backupPath)
			}

			if err := os.WriteFile(outputPath, out, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outputPath, err)
			}

			ui.Success("Converted to %s format: %s", target, outputPath)
			return nil
		},
	}

	cmd.Flags().String("to", "", "Target format: notebook or workflow")
	cmd.MarkFlagRequired("to")
	cmd.Flags().StringP("output", "o", "", "Output file path (defaults to the input file)")
	cmd.Flags().Bool("backup", true, "Create a backup before overwriting the input")
	return cmd
}

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a notebook's structure and cell syntax",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			schemaOnly, _ := cmd.Flags().GetBool("schema")
			syntaxOnly, _ := cmd.Flags().GetBool("syntax")
			all, _ := cmd.Flags().GetBool("all")

			mode := validate.ModeAll
			switch {
			case all || schemaOnly == syntaxOnly:
				mode = validate.ModeAll
			case schemaOnly:
				mode = validate.ModeSchema
			case syntaxOnly:
				mode = validate.ModeSyntax
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			// flat workflows are converted first and validated in notebook form
			if format, detectErr := models.Detect(raw); detectErr == nil && format == models.FormatWorkflow {
				ui.Info("Converting flat workflow to notebook form for validation")
				converted, err := convert.Convert(raw, models.FormatNotebook)
				if err != nil {
					return err
				}
				raw = converted
			}

			findings := validate.Document(cmd.Context(), raw, mode)
			if len(findings) == 0 {
				ui.Success("Notebook is valid: %s", path)
				return nil
			}

			for _, f := range findings {
				if f.Severity == validate.SeverityWarning {
					ui.Warn("  %s", f)
				} else {
					ui.Error("  %s", f)
				}
			}

			if validate.HasErrors(findings) {
				return fmt.Errorf("notebook has validation errors: %s", path)
			}
			ui.Success("Notebook is valid (with warnings): %s", path)
			return nil
		},
	}

	cmd.Flags().Bool("schema", false, "Validate document structure only")
	cmd.Flags().Bool("syntax", false, "Validate code cell syntax only")
	cmd.Flags().Bool("all", false, "Run all validations (default)")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate a directory of flat workflows to notebook format",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("directory")
			backup, _ := cmd.Flags().GetBool("backup")
			inPlace, _ := cmd.Flags().GetBool("in-place")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			if separate, _ := cmd.Flags().GetBool("separate"); separate {
				inPlace = false
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.CommandsDir
			}

			ui.Info("Migrating workflows in: %s", dir)

			var store *storage.Storage
			if dryRun {
				ui.Warn("DRY RUN MODE - no files will be modified")
			} else {
				if err := cfg.EnsureDataDir(); err != nil {
					return err
				}
				store, err = storage.New(cfg.DBPath)
				if err != nil {
					return fmt.Errorf("failed to open migration ledger: %w", err)
				}
				defer store.Close()
			}

			result, err := migrate.New(store).Run(migrate.Options{
				Dir:     dir,
				Backup:  backup,
				InPlace: inPlace,
				DryRun:  dryRun,
			})
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			if dryRun {
				for _, fr := range result.Files {
					if fr.Status == models.FileStatusConverted {
						ui.Info("  Would convert: %s", filepath.Base(fr.Path))
					}
				}
				ui.Info("Total files to migrate: %d", result.Converted)
				return nil
			}

			ui.Success("Migration complete:")
			ui.Info("  Total files: %d", result.Total)
			ui.Success("  Converted: %d", result.Converted)
			ui.Warn("  Skipped: %d", result.Skipped)
			if result.Failed > 0 {
				ui.Error("  Failed: %d", result.Failed)
			}

			if result.Converted > 0 {
				ui.Info("Converted files:")
				for _, fr := range result.Files {
					if fr.Status == models.FileStatusConverted {
						ui.Info("  - %s", filepath.Base(fr.Path))
					}
				}
			}

			if result.RunID != 0 {
				ui.Info("Recorded as migration run #%d", result.RunID)
			}
			return nil
		},
	}

	cmd.Flags().StringP("directory", "d", "", "Directory to migrate (defaults to the commands directory)")
	cmd.Flags().Bool("backup", true, "Create backup files before migration")
	cmd.Flags().Bool("in-place", true, "Convert in place instead of writing .notebook.json siblings")
	cmd.Flags().Bool("separate", false, "Write .notebook.json siblings instead of converting in place")
	cmd.Flags().Bool("dry-run", false, "Report what would be migrated without changing files")
	return cmd
}

type infoPayload struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Group         string `json:"group"`
	Version       string `json:"version"`
	Language      string `json:"language"`
	TotalCells    int    `json:"total_cells"`
	CodeCells     int    `json:"code_cells"`
	MarkdownCells int    `json:"markdown_cells"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

func newInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Show a document's metadata and cell counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := collection.Load(args[0])
			if err != nil {
				return err
			}

			nb := entry.Notebook
			if nb == nil {
				converted := convert.ToNotebook(*entry.Workflow)
				nb = &converted
			}
			meta := nb.Metadata.Workflow
			if meta == nil {
				meta = &models.WorkflowMeta{Name: entry.Name()}
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				out, err := json.MarshalIndent(infoPayload{
					Name:          meta.Name,
					Description:   meta.Description,
					Group:         meta.Group,
					Version:       meta.Version,
					Language:      string(meta.Language),
					TotalCells:    len(nb.Cells),
					CodeCells:     len(nb.CodeCells()),
					MarkdownCells: len(nb.MarkdownCells()),
					CreatedAt:     meta.CreatedAt,
					UpdatedAt:     meta.UpdatedAt,
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			ui.Info("Notebook: %s", meta.Name)
			if meta.Description != "" {
				ui.Info("Description: %s", meta.Description)
			}
			if meta.Group != "" {
				ui.Info("Group: %s", meta.Group)
			}
			ui.Info("Version: %s", meta.Version)
			ui.Info("Language: %s", meta.Language)
			ui.Info("Cells:")
			ui.Info("  Total: %d", len(nb.Cells))
			ui.Info("  Code: %d", len(nb.CodeCells()))
			ui.Info("  Markdown: %d", len(nb.MarkdownCells()))
			if meta.CreatedAt != "" {
				ui.Info("Created: %s", meta.CreatedAt)
			}
			if meta.UpdatedAt != "" {
				ui.Info("Updated: %s", meta.UpdatedAt)
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new workflow notebook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			description, _ := cmd.Flags().GetString("description")
			group, _ := cmd.Flags().GetString("group")
			language, _ := cmd.Flags().GetString("language")
			output, _ := cmd.Flags().GetString("output")

			lang := models.Language(language)
			if !lang.Known() {
				return fmt.Errorf("unknown language %q (want one of %v)", language, models.KnownLanguages())
			}

			nb := scaffoldNotebook(name, description, group, lang)

			if output != "" {
				if err := collection.WriteDocument(output, nb); err != nil {
					return err
				}
				ui.Success("Created notebook: %s", output)
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDataDir(); err != nil {
				return err
			}
			path, err := collection.NewStore(cfg.CommandsDir).SaveNotebook(&nb)
			if err != nil {
				return err
			}
			ui.Success("Created notebook: %s", path)
			return nil
		},
	}

	cmd.Flags().StringP("description", "d", "", "Notebook description")
	cmd.Flags().StringP("group", "g", "", "Command group")
	cmd.Flags().StringP("language", "l", "python", "Workflow language")
	cmd.Flags().StringP("output", "o", "", "Output file path (defaults into the collection)")
	return cmd
}

// scaffoldNotebook builds the starter document the create command writes: a
// welcome markdown cell and a language-appropriate example code cell.
func scaffoldNotebook(name, description, group string, lang models.Language) models.Notebook {
	meta := convert.ToNotebookMeta(models.Workflow{
		Name:        name,
		Description: description,
		Group:       group,
		Language:    lang,
	})

	welcome := fmt.Sprintf(
		"# %s\n\n%s\n\nThis is a workflow notebook. Add code cells below to define your workflow.",
		name, description)

	return models.Notebook{
		Metadata:      models.NotebookMeta{Workflow: &meta},
		NBFormat:      models.NBFormat,
		NBFormatMinor: models.NBFormatMinor,
		Cells: []models.Cell{
			models.NewMarkdownCell(welcome),
			models.NewCodeCell(exampleCode(lang), lang),
		},
	}
}

func exampleCode(lang models.Language) string {
	if lang == models.LanguagePython {
		return `"""Example workflow cell."""
import click


@click.command()
def hello():
    """Example command"""
    click.echo("Hello from workflow!")


if __name__ == "__main__":
    hello()
`
	}

	interp := string(lang)
	if lang == models.LanguageShell {
		interp = "bash"
	}
	return fmt.Sprintf("#!/usr/bin/env %s\n# Example workflow shell script\n\necho \"Hello from workflow!\"\n", interp)
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workflows in the collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			entries, err := collection.NewStore(cfg.CommandsDir).List()
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No workflows found.")
				return nil
			}

			for _, e := range entries {
				shape := "flat"
				if e.Format == models.FormatNotebook {
					shape = fmt.Sprintf("%d cells", e.CellCount())
				}
				fmt.Printf("%-24s %-12s %-8s %s\n", e.Name(), e.Group(), e.Language(), shape)
			}
			return nil
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a workflow from the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if err := collection.NewStore(cfg.CommandsDir).Remove(args[0]); err != nil {
				return err
			}
			ui.Success("Deleted workflow %q", args[0])
			return nil
		},
	}
}

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent migration runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDataDir(); err != nil {
				return err
			}

			store, err := storage.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open migration ledger: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Println("No migration runs recorded.")
				return nil
			}

			for _, run := range runs {
				fmt.Printf("#%-3d [%-8s] %d converted, %d skipped, %d failed  %-9s %s\n",
					run.ID, run.Status, run.Converted, run.Skipped, run.Failed,
					storage.FormatTimeAgo(run.StartedAt), run.Directory)
			}
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <run-id>",
		Short: "Show one migration run and its per-file results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run ID: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDataDir(); err != nil {
				return err
			}

			store, err := storage.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open migration ledger: %w", err)
			}
			defer store.Close()

			run, err := store.GetRun(runID)
			if err != nil {
				return err
			}

			fmt.Printf("Migration run #%d [%s]\n", run.ID, run.Status)
			fmt.Printf("Directory: %s\n", run.Directory)
			fmt.Printf("Options: in-place=%t backup=%t\n", run.InPlace, run.Backup)
			fmt.Printf("Started: %s\n", run.StartedAt.Format(time.RFC3339))
			if run.CompletedAt != nil {
				fmt.Printf("Completed: %s\n", run.CompletedAt.Format(time.RFC3339))
			}
			fmt.Printf("Totals: %d total, %d converted, %d skipped, %d failed\n",
				run.Total, run.Converted, run.Skipped, run.Failed)

			files, err := store.GetFileResultsForRun(runID)
			if err != nil {
				return err
			}

			if len(files) > 0 {
				fmt.Println("\nFiles:")
				for _, fr := range files {
					line := fmt.Sprintf("  %d. %s [%s]", fr.SequenceNum, filepath.Base(fr.Path), fr.Status)
					if fr.Detail != "" {
						line += " - " + fr.Detail
					}
					fmt.Println(line)
				}
			}

			return nil
		},
	}
}

func newEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Open a notebook in the visual editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetInt("port")

			ui.Warn("Visual editor is not yet implemented (coming in Phase 2)")
			ui.Info("Would open editor for: %s on port %d", args[0], port)
			ui.Info("For now, you can:")
			ui.Info("  1. Edit the JSON file directly in your editor")
			ui.Info("  2. Browse it read-only with the wfnb TUI")
			return nil
		},
	}

	cmd.Flags().Int("port", 8888, "Server port for the editor")
	return cmd
}

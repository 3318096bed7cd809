package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ryanjpeterson/jimbos-show-log/internal/app/archive"
	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
	"github.com/ryanjpeterson/jimbos-show-log/internal/store"
)

func newImportCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import venues and concerts from a JSON document in one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.cfg.Validate(); err != nil {
				return err
			}

			doc, err := readImportFile(args[0])
			if err != nil {
				return err
			}

			db, err := openDatabase(cmd.Context(), rt.cfg.Database.URL, rt.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := archive.New(store.New(db), rt.logger).Import(cmd.Context(), doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d venues and %d concerts\n", result.ImportedVenues, result.ImportedConcerts)
			return nil
		},
	}
}

func newExportCmd(rt *runtime) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every venue and concert as an import-ready JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.cfg.Validate(); err != nil {
				return err
			}

			db, err := openDatabase(cmd.Context(), rt.cfg.Database.URL, rt.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			doc, err := archive.New(store.New(db), rt.logger).Export(cmd.Context())
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return writeExport(cmd.OutOrStdout(), doc)
			}
			return writeExportFile(output, doc)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory (default: stdout)")
	return cmd
}

func readImportFile(path string) (models.ImportDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.ImportDocument{}, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()
	return models.DecodeImportDocument(f)
}

func writeExport(w io.Writer, doc models.ExportDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// writeExportFile writes doc to path. When path is a directory the file is
// named after today's date inside it.
func writeExportFile(path string, doc models.ExportDocument) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, exportFilename(time.Now()))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := writeExport(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// exportFilename is the download name used for an export taken at t.
func exportFilename(t time.Time) string {
	return fmt.Sprintf("show-log-%s.json", t.UTC().Format("20060102"))
}

package nutriplan

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutriplan/internal/render"
	"github.com/saadjs/nutriplan/internal/service"
)

var (
	exportFormat string
	exportOut    string
	importIn     string
	importMode   string
	importDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the food log (json or csv)",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(exportFormat))
		if format != "json" && format != "csv" {
			return fmt.Errorf("unsupported --format %q (use json or csv)", exportFormat)
		}
		return withStore(func(s *session) error {
			var w io.Writer = cmd.OutOrStdout()
			toFile := strings.TrimSpace(exportOut) != "" && exportOut != "-"
			if toFile {
				f, err := os.Create(exportOut)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}
			var err error
			if format == "csv" {
				err = service.ExportCSV(s.store, w)
			} else {
				err = service.ExportJSON(s.store, w)
			}
			if err != nil {
				return err
			}
			if toFile {
				printer(cmd).Notify(render.LevelSuccess, "exported %d entries to %s", s.store.Len(), exportOut)
			}
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON food log (merge or replace)",
	Long: `Import a JSON array of entries. The browser client's "nutriplan-foodlog"
localStorage value can be imported as-is.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		return withStore(func(s *session) error {
			var r io.Reader = cmd.InOrStdin()
			if importIn != "-" {
				f, err := os.Open(importIn)
				if err != nil {
					return fmt.Errorf("open import file: %w", err)
				}
				defer f.Close()
				r = f
			}
			report, err := service.ImportJSON(s.store, r, service.ImportOptions{
				Mode:   service.ImportMode(importMode),
				DryRun: importDryRun,
			})
			if err != nil {
				return err
			}
			prefix := "imported"
			if report.DryRun {
				prefix = "dry run:"
			}
			p := printer(cmd)
			p.Notify(render.LevelSuccess, "%s %d inserted, %d skipped, %d removed", prefix, report.Inserted, report.Skipped, report.Removed)
			if report.Unreadable > 0 {
				p.Notify(render.LevelError, "%d unreadable entries were left out", report.Unreadable)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json|csv")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default stdout)")
	importCmd.Flags().StringVar(&importIn, "in", "", "Input JSON file, or - for stdin")
	importCmd.Flags().StringVar(&importMode, "mode", "merge", "Import mode: merge|replace")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Report what would change without writing")
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"filmkeep/internal/exchange"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the inventory as JSON or CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(strings.TrimSpace(formatFlag))
			if format != "json" && format != "csv" {
				return fmt.Errorf("unsupported export format %q (use json or csv)", formatFlag)
			}

			return ctx.withApp(cmd, func(a *app) error {
				records, err := exchange.BuildRecords(cmd.Context(), a.store)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if outPath != "" {
					file, err := os.Create(outPath)
					if err != nil {
						return fmt.Errorf("create export file: %w", err)
					}
					defer file.Close()
					out = file
				}

				if format == "json" {
					err = exchange.WriteJSON(out, records, appVersion)
				} else {
					err = exchange.WriteCSV(out, records)
				}
				if err != nil {
					return err
				}
				if outPath != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Exported %d record(s) to %s\n", len(records), outPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "json", "Export format (json or csv)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import inventory from a JSON or CSV export",
		Long: `Import an export file. The format is picked by file extension. Rows
missing a manufacturer or film name are skipped with a warning; the rest
import through the normal merge rules.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer file.Close()

			var records []exchange.Record
			var warnings []string
			switch strings.ToLower(filepath.Ext(path)) {
			case ".json":
				records, err = exchange.ReadJSON(file)
			case ".csv", ".txt":
				records, warnings, err = exchange.ReadCSV(file)
			default:
				return fmt.Errorf("unsupported file extension %q (use .json or .csv)", filepath.Ext(path))
			}
			if err != nil {
				return err
			}

			return ctx.withApp(cmd, func(a *app) error {
				added, importWarnings, err := exchange.Import(cmd.Context(), a.stock, records)
				if err != nil {
					return err
				}
				warnings = append(warnings, importWarnings...)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %d record(s)\n", added)
				for _, warning := range warnings {
					fmt.Fprintf(out, "warning: %s\n", warning)
				}
				return nil
			})
		},
	}
	return cmd
}

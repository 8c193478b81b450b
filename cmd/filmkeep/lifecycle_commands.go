package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"filmkeep/internal/inventory"
)

func newLoadCommand(ctx *commandContext) *cobra.Command {
	var (
		camera   string
		quantity int
		iso      int
	)

	cmd := &cobra.Command{
		Use:   "load <unit-id>",
		Short: "Load a unit into a camera",
		Long: `Load stock into a camera. Rolls always load whole. Sheets load the
requested quantity out of the pool. Pass --iso only when shooting at a
speed other than the film's native one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				loaded, err := a.lifecycle.Load(cmd.Context(), args[0], camera, quantity, iso)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded into %s (loaded id %s)\n", loaded.CameraName, loaded.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&camera, "camera", "", "Camera name (created if new)")
	cmd.Flags().IntVarP(&quantity, "qty", "q", 1, "Quantity to load (sheets)")
	cmd.Flags().IntVar(&iso, "iso", 0, "Shooting speed when pushing or pulling")
	_ = cmd.MarkFlagRequired("camera")
	return cmd
}

func newLoadedCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "loaded",
		Short: "Show film currently sitting in cameras",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				loaded, err := a.store.LoadedUnits(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, loaded)
				}

				out := cmd.OutOrStdout()
				if len(loaded) == 0 {
					fmt.Fprintln(out, "No film loaded")
					return nil
				}
				rows := make([][]string, 0, len(loaded))
				for _, unit := range loaded {
					rows = append(rows, []string{
						unit.ID,
						filmColumn(cmd, a, unit.FilmID),
						inventory.DisplayLabel(unit.Format, unit.CustomFormatLabel),
						unit.CameraName,
						strconv.Itoa(unit.Quantity),
						unit.LoadedAt.Local().Format("2006-01-02"),
						isoColumn(unit.ShotAtISO),
					})
				}
				headers := []string{"ID", "Film", "Format", "Camera", "Qty", "Loaded", "Shot At"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.AddCommand(newLoadedDeleteCommand(ctx))
	return cmd
}

func newLoadedDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <loaded-id>",
		Short: "Undo a mistaken load, restoring the stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				if err := a.lifecycle.DeleteLoadedUnit(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Load undone, stock restored")
				return nil
			})
		},
	}
}

func newUnloadCommand(ctx *commandContext) *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "unload <loaded-id>",
		Short: "Finish loaded film into the develop queue",
		Long: `Finish loaded film. Without --qty the whole loaded quantity is
finished. A smaller --qty is a partial finish for sheet film and leaves
the rest loaded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				finished, err := a.lifecycle.Unload(cmd.Context(), args[0], quantity)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Finished %d from %s (finished id %s)\n",
					finished.Quantity, finished.CameraName, finished.ID)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&quantity, "qty", "q", 0, "Quantity to finish (default: all)")
	return cmd
}

func newReloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reload <finished-id>",
		Short: "Undo an unload, putting the film back in its camera",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				loaded, err := a.lifecycle.Reload(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reloaded into %s (loaded id %s)\n", loaded.CameraName, loaded.ID)
				return nil
			})
		},
	}
}

func newDevelopCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "develop",
		Short: "Show the develop queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				finished, err := a.store.FinishedUnits(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, finished)
				}

				out := cmd.OutOrStdout()
				if len(finished) == 0 {
					fmt.Fprintln(out, "Develop queue is empty")
					return nil
				}
				rows := make([][]string, 0, len(finished))
				for _, unit := range finished {
					rows = append(rows, []string{
						unit.ID,
						filmColumn(cmd, a, unit.FilmID),
						inventory.DisplayLabel(unit.Format, unit.CustomFormatLabel),
						unit.CameraName,
						strconv.Itoa(unit.Quantity),
						unit.FinishedAt.Local().Format("2006-01-02"),
						statusLabel(unit.Status),
					})
				}
				headers := []string{"ID", "Film", "Format", "Camera", "Qty", "Finished", "Status"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.AddCommand(newDevelopStatusCommand(ctx))
	return cmd
}

func newDevelopStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <finished-id> <to_develop|in_development|developed>",
		Short: "Set the develop status of a finished unit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := inventory.ParseDevelopStatus(args[1])
			if !ok {
				return fmt.Errorf("unknown status %q", args[1])
			}
			return ctx.withApp(cmd, func(a *app) error {
				if err := a.lifecycle.UpdateStatus(cmd.Context(), args[0], status); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Status set to %s\n", statusLabel(status))
				return nil
			})
		},
	}
}

func filmColumn(cmd *cobra.Command, a *app, filmID int64) string {
	film, err := a.store.FilmByID(cmd.Context(), filmID)
	if err != nil || film == nil {
		return fmt.Sprintf("film %d", filmID)
	}
	return fmt.Sprintf("%s %s (ISO %d)", film.ManufacturerName, film.Name, film.NativeSpeed)
}

func isoColumn(shotAtISO int) string {
	if shotAtISO <= 0 {
		return "native"
	}
	return strconv.Itoa(shotAtISO)
}

func statusLabel(status inventory.DevelopStatus) string {
	return strings.ReplaceAll(string(status), "_", " ")
}

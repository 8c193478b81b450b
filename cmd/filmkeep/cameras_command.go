package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filmkeep/internal/inventory"
)

func newCamerasCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "cameras",
		Short: "List known cameras",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				cameras, err := a.store.Cameras(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, cameras)
				}

				out := cmd.OutOrStdout()
				if len(cameras) == 0 {
					fmt.Fprintln(out, "No cameras yet; one is created on first load")
					return nil
				}
				rows := make([][]string, 0, len(cameras))
				for _, camera := range cameras {
					defaultFormat := ""
					if camera.DefaultFormat != "" {
						defaultFormat = inventory.DisplayLabel(camera.DefaultFormat, camera.CustomFormatLabel)
					}
					rows = append(rows, []string{camera.Name, defaultFormat})
				}
				headers := []string{"Name", "Default Format"}
				aligns := []columnAlignment{alignLeft, alignLeft}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.AddCommand(newCamerasDeleteCommand(ctx))
	cmd.AddCommand(newCamerasSetDefaultCommand(ctx))
	return cmd
}

func newCamerasDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a camera (refused while film is loaded in it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				if err := a.store.DeleteCamera(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted camera %s\n", args[0])
				return nil
			})
		},
	}
}

func newCamerasSetDefaultCommand(ctx *commandContext) *cobra.Command {
	var customFormat string

	cmd := &cobra.Command{
		Use:   "set-default <name> <format>",
		Short: "Set a camera's default format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := inventory.ParseFormat(args[1])
			if !ok {
				return fmt.Errorf("unknown format %q", args[1])
			}
			return ctx.withApp(cmd, func(a *app) error {
				if err := a.store.UpdateCameraDefaults(cmd.Context(), args[0], format, customFormat); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Default format for %s set to %s\n", args[0], format.DisplayName())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&customFormat, "custom-format", "", "Custom format label when format is other")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show inventory statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				stats, err := a.store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				lifetime := a.counter.Value()

				if asJSON {
					return writeJSON(cmd, map[string]any{
						"manufacturers":    stats.Manufacturers,
						"films":            stats.Films,
						"units":            stats.Units,
						"unitQuantity":     stats.UnitQuantity,
						"loadedUnits":      stats.LoadedUnits,
						"finishedUnits":    stats.FinishedUnits,
						"lifetimeFinished": lifetime,
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Manufacturers:     %d\n", stats.Manufacturers)
				fmt.Fprintf(out, "Films:             %d\n", stats.Films)
				fmt.Fprintf(out, "Units in stock:    %d (quantity %d)\n", stats.Units, stats.UnitQuantity)
				fmt.Fprintf(out, "Loaded:            %d\n", stats.LoadedUnits)
				fmt.Fprintf(out, "Develop queue:     %d\n", stats.FinishedUnits)
				fmt.Fprintf(out, "Lifetime finished: %d\n", lifetime)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

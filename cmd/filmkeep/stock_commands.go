package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filmkeep/internal/inventory"
	"filmkeep/internal/stock"
)

// fieldUpdateFlags registers the shared override flags used by bulk-edit
// style commands and reports which ones the user actually set.
type fieldUpdateFlags struct {
	expiry    []string
	frozen    bool
	exposures int
	comments  string
}

func (f *fieldUpdateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.expiry, "expiry", nil, "Replace expiry dates (repeatable)")
	cmd.Flags().BoolVar(&f.frozen, "frozen", false, "Set the frozen flag")
	cmd.Flags().IntVar(&f.exposures, "exposures", 0, "Set the exposure count")
	cmd.Flags().StringVar(&f.comments, "comments", "", "Replace comments")
}

func (f *fieldUpdateFlags) build(cmd *cobra.Command) stock.FieldUpdate {
	var update stock.FieldUpdate
	if cmd.Flags().Changed("expiry") {
		update.ExpiryDates = &f.expiry
	}
	if cmd.Flags().Changed("frozen") {
		update.Frozen = &f.frozen
	}
	if cmd.Flags().Changed("exposures") {
		update.Exposures = &f.exposures
	}
	if cmd.Flags().Changed("comments") {
		update.Comments = &f.comments
	}
	return update
}

func newRollsCommand(ctx *commandContext) *cobra.Command {
	rollsCmd := &cobra.Command{
		Use:   "rolls",
		Short: "Operations on individual rolls",
	}
	rollsCmd.AddCommand(newRollsAddCommand(ctx))
	return rollsCmd
}

func newRollsAddCommand(ctx *commandContext) *cobra.Command {
	var count int
	var template string
	var fields fieldUpdateFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add rolls cloned from an existing roll unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				if err := a.stock.AddRolls(cmd.Context(), count, template, fields.build(cmd)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d roll(s) from template %s\n", count, template)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of rolls to add")
	cmd.Flags().StringVar(&template, "template", "", "Unit ID to clone film and format from")
	fields.register(cmd)
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var fields fieldUpdateFlags

	cmd := &cobra.Command{
		Use:   "update <unit-id>...",
		Short: "Overwrite fields on specific units",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				if err := a.stock.UpdateUnitsByID(cmd.Context(), args, fields.build(cmd)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %d unit(s)\n", len(args))
				return nil
			})
		},
	}

	fields.register(cmd)
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var (
		manufacturer string
		film         string
		filmType     string
		iso          int
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete all stock of a film product",
		Long: `Delete every unit of the film matching manufacturer, name, type and
ISO. A film left without any units is removed as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedType, ok := inventory.ParseFilmType(filmType)
			if !ok {
				return fmt.Errorf("unknown film type %q (use %s)", filmType, filmTypeChoices())
			}
			key := inventory.FilmKey{
				Name:         film,
				Manufacturer: manufacturer,
				Type:         parsedType,
				Speed:        iso,
			}
			return ctx.withApp(cmd, func(a *app) error {
				deleted, err := a.stock.DeleteUnits(cmd.Context(), []inventory.FilmKey{key})
				if err != nil {
					return err
				}
				if deleted == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing matched")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d unit(s)\n", deleted)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&manufacturer, "manufacturer", "m", "", "Film manufacturer")
	cmd.Flags().StringVarP(&film, "film", "f", "", "Film name")
	cmd.Flags().StringVarP(&filmType, "type", "t", "", "Film type")
	cmd.Flags().IntVar(&iso, "iso", 0, "Native ISO speed")
	_ = cmd.MarkFlagRequired("manufacturer")
	_ = cmd.MarkFlagRequired("film")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("iso")
	return cmd
}

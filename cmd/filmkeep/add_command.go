package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"filmkeep/internal/inventory"
	"filmkeep/internal/stock"
)

// filmTypeChoices renders the accepted --type values for error messages.
func filmTypeChoices() string {
	types := inventory.AllFilmTypes()
	choices := make([]string, 0, len(types))
	for _, filmType := range types {
		choices = append(choices, string(filmType))
	}
	return strings.Join(choices, ", ")
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		manufacturer string
		film         string
		filmType     string
		iso          int
		format       string
		customFormat string
		quantity     int
		expiry       []string
		frozen       bool
		exposures    int
		comments     string
		image        string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add film stock to the inventory",
		Long: `Add film stock. Rolls are stored one record per physical roll, so a
quantity of 3 creates three individually trackable rolls. Sheet formats
keep one divisible pool per film and box size, and repeated adds merge
into it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedType, ok := inventory.ParseFilmType(filmType)
			if !ok {
				return fmt.Errorf("unknown film type %q (use %s)", filmType, filmTypeChoices())
			}
			parsedFormat, ok := inventory.ParseFormat(format)
			if !ok {
				return fmt.Errorf("unknown format %q", format)
			}

			candidate := stock.Candidate{
				Manufacturer:      manufacturer,
				Name:              film,
				Type:              parsedType,
				Speed:             iso,
				Format:            parsedFormat,
				CustomFormatLabel: customFormat,
				Quantity:          quantity,
				ExpiryDates:       expiry,
				Comments:          comments,
				Frozen:            frozen,
				ExposureCount:     exposures,
			}
			var imageOverride *stock.ImageOverride
			if image != "" {
				imageOverride = &stock.ImageOverride{Ref: image, Source: inventory.ImageSourceCustom}
			}

			return ctx.withApp(cmd, func(a *app) error {
				merged, err := a.stock.AddUnit(cmd.Context(), candidate, imageOverride)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if merged {
					fmt.Fprintf(out, "Added %d x %s %s (%s) to existing film\n", quantity, manufacturer, film, parsedFormat.DisplayName())
				} else {
					fmt.Fprintf(out, "Added new film %s %s with %d x %s\n", manufacturer, film, quantity, parsedFormat.DisplayName())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&manufacturer, "manufacturer", "m", "", "Film manufacturer")
	cmd.Flags().StringVarP(&film, "film", "f", "", "Film name")
	cmd.Flags().StringVarP(&filmType, "type", "t", "", "Film type (bw, color, slide, instant)")
	cmd.Flags().IntVar(&iso, "iso", 0, "Native ISO speed")
	cmd.Flags().StringVar(&format, "format", "", "Format (35mm, 120, 110, 127, 220, 4x5, 5x7, 8x10, other)")
	cmd.Flags().StringVar(&customFormat, "custom-format", "", "Custom format label when --format other")
	cmd.Flags().IntVarP(&quantity, "qty", "q", 1, "Quantity to add")
	cmd.Flags().StringArrayVar(&expiry, "expiry", nil, "Expiry date (repeatable; YYYY, MM/YYYY or MM/DD/YYYY)")
	cmd.Flags().BoolVar(&frozen, "frozen", false, "Stock is kept frozen")
	cmd.Flags().IntVar(&exposures, "exposures", 0, "Exposure count (35mm only)")
	cmd.Flags().StringVar(&comments, "comments", "", "Free-form comments")
	cmd.Flags().StringVar(&image, "image", "", "Product image reference")

	_ = cmd.MarkFlagRequired("manufacturer")
	_ = cmd.MarkFlagRequired("film")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("iso")
	_ = cmd.MarkFlagRequired("format")

	return cmd
}

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"filmkeep/internal/grouping"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the inventory grouped by film product",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				products, err := grouping.View(cmd.Context(), a.store, time.Now())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, products)
				}

				out := cmd.OutOrStdout()
				if len(products) == 0 {
					fmt.Fprintln(out, "Inventory is empty")
					return nil
				}

				headers := []string{"Manufacturer", "Film", "Type", "ISO", "Format", "Qty", "Expiry", "Flags"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft, alignLeft}
				if showIDs {
					headers = append(headers, "Unit IDs")
					aligns = append(aligns, alignLeft)
				}

				var rows [][]string
				for _, product := range products {
					for _, format := range product.Formats {
						row := []string{
							product.Manufacturer,
							product.Name,
							product.Type.DisplayName(),
							strconv.Itoa(product.Speed),
							format.DisplayLabel(),
							strconv.Itoa(format.TotalQuantity),
							strings.Join(format.ExpiryDates, ", "),
							formatFlags(format),
						}
						if showIDs {
							row = append(row, strings.Join(format.MemberIDs, "\n"))
						}
						rows = append(rows, row)
					}
				}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "Include unit identifiers")
	return cmd
}

func formatFlags(info grouping.FormatInfo) string {
	var flags []string
	if info.FrozenCount > 0 {
		flags = append(flags, fmt.Sprintf("frozen %d", info.FrozenCount))
	}
	if info.ExpiredCount > 0 {
		flags = append(flags, fmt.Sprintf("expired %d", info.ExpiredCount))
	}
	return strings.Join(flags, ", ")
}

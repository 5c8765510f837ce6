package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show the delivery and image status catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := ctx.ensureModule(cmd.Context())
			if err != nil {
				return err
			}
			cat, err := module.Catalog(cmd.Context())
			if err != nil {
				return err
			}

			deliveries := make([][]string, 0, len(cat.DeliveryStatuses()))
			for _, status := range cat.DeliveryStatuses() {
				marker := ""
				if status.IsPublished() {
					marker = "yes"
				}
				deliveries = append(deliveries, []string{strconv.Itoa(status.Step), status.Code, status.Label(), marker})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Step", "Code", "Label", "Published"}, deliveries, []columnAlignment{alignRight}))

			statuses := make([][]string, 0, len(cat.ImageStatuses()))
			for _, status := range cat.ImageStatuses() {
				statuses = append(statuses, []string{string(status.Code), status.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Image status", "Description"}, statuses, nil))
			return nil
		},
	}
}

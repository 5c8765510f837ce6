package main

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-albums/internal/catalog"
	"github.com/goliatone/go-albums/internal/delivery"
	"github.com/goliatone/go-albums/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newTransitionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transition <from|none> <to>",
		Short: "Check whether a delivery status change is allowed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := ctx.ensureModule(cmd.Context())
			if err != nil {
				return err
			}
			cat, err := module.Catalog(cmd.Context())
			if err != nil {
				return err
			}

			var current *uuid.UUID
			if !strings.EqualFold(strings.TrimSpace(args[0]), "none") {
				from, err := deliveryByCode(cat, args[0])
				if err != nil {
					return err
				}
				current = &from.ID
			}
			target, err := deliveryByCode(cat, args[1])
			if err != nil {
				return err
			}
			if err := delivery.ValidateTransition(cat, current, target.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "allowed: %s -> %s\n", strings.ToUpper(strings.TrimSpace(args[0])), target.Code)
			return nil
		},
	}
}

func deliveryByCode(cat *catalog.Catalog, code string) (catalog.EventDeliveryStatus, error) {
	normalized := domain.NormalizeDeliveryStatusCode(code)
	for _, status := range cat.DeliveryStatuses() {
		if status.Code == normalized {
			return status, nil
		}
	}
	return catalog.EventDeliveryStatus{}, fmt.Errorf("%w: %s", delivery.ErrUnknownStatus, code)
}

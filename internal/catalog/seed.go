package catalog

import (
	"context"
	"fmt"

	"github.com/goliatone/go-albums/internal/domain"
	"github.com/goliatone/go-albums/internal/identity"
)

var defaultDeliverySteps = []struct {
	code        string
	description string
}{
	{code: "UPLOADED", description: "Uploaded"},
	{code: "EDITING", description: "Editing"},
	{code: "REVIEWED", description: "Reviewed"},
	{code: domain.DeliveryStatusPublished, description: "Published"},
}

var imageStatusDescriptions = map[domain.ImageStatusCode]string{
	domain.ImageStatusReviewPending:   "Review pending",
	domain.ImageStatusReEditSuggested: "Re-edit suggested",
	domain.ImageStatusReEditDone:      "Re-edit done",
	domain.ImageStatusApproved:        "Approved",
	domain.ImageStatusClientSelected:  "Client selected",
	domain.ImageStatusDiscarded:       "Discarded",
}

// DefaultDeliveryStatuses returns the stock delivery pipeline with deterministic ids.
func DefaultDeliveryStatuses() []EventDeliveryStatus {
	out := make([]EventDeliveryStatus, 0, len(defaultDeliverySteps))
	for idx, step := range defaultDeliverySteps {
		out = append(out, EventDeliveryStatus{
			ID:          identity.DeliveryStatusUUID(step.code),
			Code:        step.code,
			Description: step.description,
			Step:        idx + 1,
		})
	}
	return out
}

// DefaultImageStatuses returns the fixed image status catalog with deterministic ids.
func DefaultImageStatuses() []ImageStatus {
	codes := domain.ImageStatusCodes()
	out := make([]ImageStatus, 0, len(codes))
	for _, code := range codes {
		out = append(out, ImageStatus{
			ID:          identity.ImageStatusUUID(string(code)),
			Code:        code,
			Description: imageStatusDescriptions[code],
		})
	}
	return out
}

// Default builds the stock catalog.
func Default() *Catalog {
	cat, err := New(DefaultDeliveryStatuses(), DefaultImageStatuses())
	if err != nil {
		panic(fmt.Sprintf("catalog: default catalog invalid: %v", err))
	}
	return cat
}

// Seed writes the supplied catalog entries into repo. The entries are validated
// as a whole before anything is written.
func Seed(ctx context.Context, repo StatusRepository, deliveries []EventDeliveryStatus, images []ImageStatus) error {
	if _, err := New(deliveries, images); err != nil {
		return err
	}
	for _, entry := range deliveries {
		if _, err := repo.CreateDeliveryStatus(ctx, &DeliveryStatusModel{
			ID:          entry.ID,
			Code:        domain.NormalizeDeliveryStatusCode(entry.Code),
			Description: entry.Description,
			Step:        entry.Step,
		}); err != nil {
			return fmt.Errorf("seed delivery status %s: %w", entry.Code, err)
		}
	}
	for _, entry := range images {
		if _, err := repo.CreateImageStatus(ctx, &ImageStatusModel{
			ID:          entry.ID,
			Code:        string(domain.NormalizeImageStatusCode(string(entry.Code))),
			Description: entry.Description,
		}); err != nil {
			return fmt.Errorf("seed image status %s: %w", entry.Code, err)
		}
	}
	return nil
}

// SeedDefaults writes the stock catalog into repo.
func SeedDefaults(ctx context.Context, repo StatusRepository) error {
	return Seed(ctx, repo, DefaultDeliveryStatuses(), DefaultImageStatuses())
}

package review

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-albums/internal/catalog"
	"github.com/goliatone/go-albums/internal/domain"
	"github.com/goliatone/go-albums/internal/workflow"
	"github.com/goliatone/go-albums/internal/workflow/simple"
	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/google/uuid"
)

func item(status domain.ImageStatusCode) Item {
	id := uuid.New()
	return Item{ID: id, Status: status, FileName: id.String() + ".jpg", URL: "https://cdn.example.com/" + id.String() + ".jpg"}
}

func newPolicy() *Policy {
	return NewPolicy(simple.New())
}

func TestCanReupload_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	policy := newPolicy()
	a := item(domain.ImageStatusReEditSuggested)
	b := item(domain.ImageStatusReEditSuggested)
	approved := item(domain.ImageStatusApproved)

	decision, err := policy.CanReupload(ctx, []Item{a, b, approved})
	if err != nil {
		t.Fatalf("CanReupload() error = %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected re-upload to be blocked")
	}
	if len(decision.Ineligible) != 1 || decision.Ineligible[0].ImageID != approved.ID {
		t.Fatalf("expected approved image flagged, got %+v", decision.Ineligible)
	}
	if len(decision.Transitions) != 0 {
		t.Fatalf("expected no transitions when blocked")
	}

	decision, err = policy.CanReupload(ctx, []Item{a, b})
	if err != nil {
		t.Fatalf("CanReupload() error = %v", err)
	}
	if !decision.Allowed || len(decision.Transitions) != 2 {
		t.Fatalf("expected both images eligible, got %+v", decision)
	}
	for _, transition := range decision.Transitions {
		if transition.To != domain.ImageStatusReEditDone || transition.Name != workflow.TransitionCompleteReEdit || transition.Override {
			t.Fatalf("unexpected transition %+v", transition)
		}
	}
}

func TestCanReupload_FlippingAnyStatusBlocks(t *testing.T) {
	ctx := context.Background()
	policy := newPolicy()
	for _, status := range domain.ImageStatusCodes() {
		if status == domain.ImageStatusReEditSuggested {
			continue
		}
		selection := []Item{item(domain.ImageStatusReEditSuggested), item(domain.ImageStatusReEditSuggested), item(domain.ImageStatusReEditSuggested)}
		selection[1].Status = status

		decision, err := policy.CanReupload(ctx, selection)
		if err != nil {
			t.Fatalf("%s: CanReupload() error = %v", status, err)
		}
		if decision.Allowed {
			t.Fatalf("%s: expected re-upload to be blocked", status)
		}
		if ids := decision.IneligibleIDs(); len(ids) != 1 || ids[0] != selection[1].ID {
			t.Fatalf("%s: unexpected ineligible ids %v", status, ids)
		}
	}
}

func TestCanRequestReEdit(t *testing.T) {
	ctx := context.Background()
	policy := newPolicy()

	if _, err := policy.CanRequestReEdit(ctx, nil, "fix the horizon"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty selection, got %v", err)
	}
	var verr *ValidationError
	if _, err := policy.CanRequestReEdit(ctx, []Item{item(domain.ImageStatusReviewPending)}, "  "); !errors.As(err, &verr) || verr.Field != "comment" {
		t.Fatalf("expected comment validation error, got %v", err)
	}

	pending := item(domain.ImageStatusReviewPending)
	done := item(domain.ImageStatusReEditDone)
	approved := item(domain.ImageStatusApproved)
	decision, err := policy.CanRequestReEdit(ctx, []Item{pending, done, approved}, " crop tighter ")
	if err != nil {
		t.Fatalf("CanRequestReEdit() error = %v", err)
	}
	if !decision.Allowed || decision.Comment != "crop tighter" {
		t.Fatalf("unexpected decision %+v", decision)
	}
	if len(decision.Transitions) != 3 {
		t.Fatalf("expected a transition per image, got %d", len(decision.Transitions))
	}
	for _, transition := range decision.Transitions {
		if transition.To != domain.ImageStatusReEditSuggested {
			t.Fatalf("unexpected target %s", transition.To)
		}
		wantOverride := transition.ImageID == approved.ID
		if transition.Override != wantOverride {
			t.Fatalf("image %s: override = %v", transition.ImageID, transition.Override)
		}
	}
}

func TestCanApprove(t *testing.T) {
	ctx := context.Background()
	policy := newPolicy()

	if _, err := policy.CanApprove(ctx, []Item{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	pending := item(domain.ImageStatusReviewPending)
	suggested := item(domain.ImageStatusReEditSuggested)
	already := item(domain.ImageStatusApproved)
	selected := item(domain.ImageStatusClientSelected)
	decision, err := policy.CanApprove(ctx, []Item{pending, suggested, already, selected})
	if err != nil {
		t.Fatalf("CanApprove() error = %v", err)
	}
	if !decision.Allowed || len(decision.Transitions) != 4 {
		t.Fatalf("unexpected decision %+v", decision)
	}
	byID := map[uuid.UUID]Transition{}
	for _, transition := range decision.Transitions {
		byID[transition.ImageID] = transition
	}
	if byID[pending.ID].Override || byID[pending.ID].To != domain.ImageStatusApproved {
		t.Fatalf("unexpected pending transition %+v", byID[pending.ID])
	}
	if !byID[suggested.ID].Override {
		t.Fatalf("expected approving a suggested image to be an override")
	}
	if !byID[already.ID].Noop() || !byID[selected.ID].Noop() {
		t.Fatalf("expected approved and client selected images to keep their status")
	}

	discarded := item(domain.ImageStatusDiscarded)
	decision, err = policy.CanApprove(ctx, []Item{pending, discarded})
	if err != nil {
		t.Fatalf("CanApprove() error = %v", err)
	}
	if decision.Allowed || len(decision.Ineligible) != 1 || decision.Ineligible[0].Reason != ReasonDiscarded {
		t.Fatalf("expected discarded image to block approval, got %+v", decision)
	}
}

func TestCanSetCover(t *testing.T) {
	ctx := context.Background()
	policy := newPolicy()
	image := item(domain.ImageStatusApproved)

	if _, err := policy.CanSetCover(ctx, []Item{image, item(domain.ImageStatusApproved)}, interfaces.CoverSlotDesktop); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for two images, got %v", err)
	}
	if _, err := policy.CanSetCover(ctx, []Item{image}, "watch"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown slot, got %v", err)
	}

	for _, slot := range interfaces.CoverSlots() {
		decision, err := policy.CanSetCover(ctx, []Item{image}, slot)
		if err != nil {
			t.Fatalf("CanSetCover(%s) error = %v", slot, err)
		}
		if !decision.Allowed || decision.Cover == nil || decision.Cover.URL != image.URL || decision.Cover.Slot != slot {
			t.Fatalf("unexpected decision %+v", decision)
		}
		if len(decision.Transitions) != 0 {
			t.Fatalf("cover assignment must not change image status")
		}
	}

	noURL := item(domain.ImageStatusApproved)
	noURL.URL = ""
	decision, err := policy.CanSetCover(ctx, []Item{noURL}, interfaces.CoverSlotMobile)
	if err != nil {
		t.Fatalf("CanSetCover() error = %v", err)
	}
	if decision.Allowed || decision.Ineligible[0].Reason != ReasonMissingImageURL {
		t.Fatalf("expected missing url to block, got %+v", decision)
	}
}

func TestItemsFromRecords(t *testing.T) {
	cat := catalog.Default()
	approved, _ := cat.ImageStatusByCode(domain.ImageStatusApproved)
	records := []interfaces.ImageRecord{
		{ID: uuid.New(), StatusID: approved.ID, FileName: "a.jpg"},
		{ID: uuid.New(), StatusID: uuid.New(), FileName: "b.jpg"},
	}
	items := ItemsFromRecords(cat, records)
	if items[0].Status != domain.ImageStatusApproved {
		t.Fatalf("expected APPROVED, got %q", items[0].Status)
	}

	decision, err := newPolicy().CanApprove(context.Background(), items)
	if err != nil {
		t.Fatalf("CanApprove() error = %v", err)
	}
	if decision.Allowed || decision.Ineligible[0].Reason != ReasonUnknownStatus {
		t.Fatalf("expected unknown status to block, got %+v", decision)
	}
}

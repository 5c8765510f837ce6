package review

import (
	"context"
	"strings"

	"github.com/goliatone/go-albums/internal/catalog"
	"github.com/goliatone/go-albums/internal/domain"
	"github.com/goliatone/go-albums/internal/workflow"
	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/google/uuid"
)

// Item is a selected image as seen by the policy.
type Item struct {
	ID       uuid.UUID
	Status   domain.ImageStatusCode
	FileName string
	URL      string
}

// Transition is a status change the policy allows for one image. Override marks
// a change the action permits even though the review workflow has no edge for
// it, such as approving straight out of RE_EDIT_SUGGESTED.
type Transition struct {
	ImageID  uuid.UUID
	Name     string
	From     domain.ImageStatusCode
	To       domain.ImageStatusCode
	Override bool
}

// Noop reports whether the image already holds the target status.
func (t Transition) Noop() bool {
	return t.From == t.To
}

// Ineligibility explains why one image blocks an action.
type Ineligibility struct {
	ImageID uuid.UUID
	Status  domain.ImageStatusCode
	Reason  string
}

// CoverAssignment is the result of a permitted set-cover action.
type CoverAssignment struct {
	ImageID uuid.UUID
	Slot    interfaces.CoverSlot
	URL     string
}

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed     bool
	Transitions []Transition
	Ineligible  []Ineligibility
	Comment     string
	Cover       *CoverAssignment
}

// IneligibleIDs lists the ids of blocking images.
func (d Decision) IneligibleIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(d.Ineligible))
	for _, entry := range d.Ineligible {
		ids = append(ids, entry.ImageID)
	}
	return ids
}

const (
	ReasonDiscarded       = "image is discarded"
	ReasonNotReEditable   = "image is not awaiting a re-edit"
	ReasonUnknownStatus   = "image status is unknown"
	ReasonMissingImageURL = "image has no url"
)

// Policy decides which bulk actions are legal for a selection.
type Policy struct {
	engine interfaces.WorkflowEngine
}

// NewPolicy builds a policy over engine. The engine must know the image entity.
func NewPolicy(engine interfaces.WorkflowEngine) *Policy {
	return &Policy{engine: engine}
}

// CanRequestReEdit permits a re-edit request for every non-discarded image and
// requires a comment.
func (p *Policy) CanRequestReEdit(ctx context.Context, selection []Item, comment string) (Decision, error) {
	if len(selection) == 0 {
		return Decision{}, invalid("selection", "select at least one image")
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return Decision{}, invalid("comment", "a comment is required when requesting a re-edit")
	}
	decision := p.decide(ctx, selection, domain.ImageStatusReEditSuggested, workflow.TransitionRequestReEdit, nil)
	decision.Comment = comment
	return decision, nil
}

// CanReupload is all-or-nothing: every selected image must be awaiting a
// re-edit, and each blocking image is reported.
func (p *Policy) CanReupload(ctx context.Context, selection []Item) (Decision, error) {
	if len(selection) == 0 {
		return Decision{}, invalid("selection", "select at least one image")
	}
	return p.decide(ctx, selection, domain.ImageStatusReEditDone, workflow.TransitionCompleteReEdit, func(item Item) string {
		if item.Status != domain.ImageStatusReEditSuggested {
			return ReasonNotReEditable
		}
		return ""
	}), nil
}

// CanApprove permits approval for every non-discarded image. Images already
// approved or selected by the client keep their status.
func (p *Policy) CanApprove(ctx context.Context, selection []Item) (Decision, error) {
	if len(selection) == 0 {
		return Decision{}, invalid("selection", "select at least one image")
	}
	decision := p.decide(ctx, selection, domain.ImageStatusApproved, workflow.TransitionApprove, nil)
	for idx, transition := range decision.Transitions {
		if transition.From == domain.ImageStatusClientSelected {
			transition.To = transition.From
			transition.Override = false
			decision.Transitions[idx] = transition
		}
	}
	return decision, nil
}

// CanSetCover requires exactly one image with a url and a known slot.
func (p *Policy) CanSetCover(_ context.Context, selection []Item, slot interfaces.CoverSlot) (Decision, error) {
	if len(selection) != 1 {
		return Decision{}, invalid("selection", "select exactly one image to use as cover")
	}
	if !ValidCoverSlot(slot) {
		return Decision{}, invalid("slot", "unknown cover slot "+string(slot))
	}
	item := selection[0]
	switch {
	case item.Status == domain.ImageStatusDiscarded:
		return Decision{Ineligible: []Ineligibility{{ImageID: item.ID, Status: item.Status, Reason: ReasonDiscarded}}}, nil
	case strings.TrimSpace(item.URL) == "":
		return Decision{Ineligible: []Ineligibility{{ImageID: item.ID, Status: item.Status, Reason: ReasonMissingImageURL}}}, nil
	}
	return Decision{
		Allowed: true,
		Cover:   &CoverAssignment{ImageID: item.ID, Slot: slot, URL: item.URL},
	}, nil
}

// ValidCoverSlot reports whether slot is one of the device scoped cover slots.
func ValidCoverSlot(slot interfaces.CoverSlot) bool {
	for _, known := range interfaces.CoverSlots() {
		if slot == known {
			return true
		}
	}
	return false
}

func (p *Policy) decide(ctx context.Context, selection []Item, target domain.ImageStatusCode, name string, gate func(Item) string) Decision {
	decision := Decision{}
	for _, item := range selection {
		reason := ""
		switch {
		case item.Status == domain.ImageStatusDiscarded:
			reason = ReasonDiscarded
		case !item.Status.Valid():
			reason = ReasonUnknownStatus
		case gate != nil:
			reason = gate(item)
		}
		if reason != "" {
			decision.Ineligible = append(decision.Ineligible, Ineligibility{ImageID: item.ID, Status: item.Status, Reason: reason})
			continue
		}
		decision.Transitions = append(decision.Transitions, p.transition(ctx, item, target, name))
	}
	decision.Allowed = len(decision.Ineligible) == 0
	if !decision.Allowed {
		decision.Transitions = nil
	}
	return decision
}

func (p *Policy) transition(ctx context.Context, item Item, target domain.ImageStatusCode, fallback string) Transition {
	out := Transition{ImageID: item.ID, Name: fallback, From: item.Status, To: target}
	if item.Status == target {
		return out
	}
	if p.engine == nil {
		out.Override = true
		return out
	}
	available, err := p.engine.AvailableTransitions(ctx, interfaces.TransitionQuery{
		EntityType: workflow.EntityTypeImage,
		State:      workflow.State(item.Status),
	})
	if err == nil {
		for _, candidate := range available {
			if candidate.To == workflow.State(target) {
				out.Name = candidate.Name
				return out
			}
		}
	}
	out.Override = true
	return out
}

// ItemsFromRecords resolves image records against the catalog. Unknown status
// ids yield an empty code, which every action treats as ineligible.
func ItemsFromRecords(cat *catalog.Catalog, records []interfaces.ImageRecord) []Item {
	out := make([]Item, 0, len(records))
	for _, record := range records {
		out = append(out, Item{
			ID:       record.ID,
			Status:   cat.ImageCode(record.StatusID),
			FileName: record.FileName,
			URL:      record.URL,
		})
	}
	return out
}

package workflow

import (
	"github.com/goliatone/go-albums/internal/domain"
	"github.com/goliatone/go-albums/pkg/interfaces"
)

const (
	// EntityTypeImage identifies event images for workflow transitions.
	EntityTypeImage = "image"

	TransitionRequestReEdit  = "request_re_edit"
	TransitionCompleteReEdit = "complete_re_edit"
	TransitionApprove        = "approve"
	TransitionClientSelect   = "client_select"
)

// State converts an image status code into a workflow state.
func State(code domain.ImageStatusCode) interfaces.WorkflowState {
	return interfaces.WorkflowState(code)
}

// ImageReviewDefinition returns the image review lifecycle. APPROVED to
// CLIENT_SELECTED is driven by the client and never issued by bulk actions.
func ImageReviewDefinition() interfaces.WorkflowDefinition {
	return interfaces.WorkflowDefinition{
		EntityType:   EntityTypeImage,
		InitialState: State(domain.ImageStatusReviewPending),
		States: []interfaces.WorkflowStateDefinition{
			{Name: State(domain.ImageStatusReviewPending), Description: "Uploaded and awaiting review"},
			{Name: State(domain.ImageStatusReEditSuggested), Description: "Sent back to the editor with a comment"},
			{Name: State(domain.ImageStatusReEditDone), Description: "Replaced after a re-edit request"},
			{Name: State(domain.ImageStatusApproved), Description: "Approved for delivery"},
			{Name: State(domain.ImageStatusClientSelected), Description: "Selected by the client"},
			{Name: State(domain.ImageStatusDiscarded), Description: "Discarded", Terminal: true},
		},
		Transitions: []interfaces.WorkflowTransition{
			{Name: TransitionRequestReEdit, From: State(domain.ImageStatusReviewPending), To: State(domain.ImageStatusReEditSuggested)},
			{Name: TransitionApprove, From: State(domain.ImageStatusReviewPending), To: State(domain.ImageStatusApproved)},
			{Name: TransitionCompleteReEdit, From: State(domain.ImageStatusReEditSuggested), To: State(domain.ImageStatusReEditDone)},
			{Name: TransitionApprove, From: State(domain.ImageStatusReEditDone), To: State(domain.ImageStatusApproved)},
			{Name: TransitionRequestReEdit, From: State(domain.ImageStatusReEditDone), To: State(domain.ImageStatusReEditSuggested)},
			{Name: TransitionClientSelect, From: State(domain.ImageStatusApproved), To: State(domain.ImageStatusClientSelected)},
		},
	}
}

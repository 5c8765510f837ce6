package domain

// ImageStatusCode identifies a per-photo review state.
type ImageStatusCode string

const (
	// ImageStatusReviewPending marks a freshly uploaded image awaiting review
	ImageStatusReviewPending ImageStatusCode = "REVIEW_PENDING"
	// ImageStatusReEditSuggested marks an image the reviewer sent back with a comment
	ImageStatusReEditSuggested ImageStatusCode = "RE_EDIT_SUGGESTED"
	// ImageStatusReEditDone marks an image replaced after a re-edit request
	ImageStatusReEditDone ImageStatusCode = "RE_EDIT_DONE"
	// ImageStatusApproved marks an image cleared for delivery
	ImageStatusApproved ImageStatusCode = "APPROVED"
	// ImageStatusClientSelected marks an approved image picked by the client
	ImageStatusClientSelected ImageStatusCode = "CLIENT_SELECTED"
	// ImageStatusDiscarded is terminal and hidden from filters by default
	ImageStatusDiscarded ImageStatusCode = "DISCARDED"
)

// DeliveryStatusPublished is the only delivery status code the engine relies on.
const DeliveryStatusPublished = "PUBLISHED"

package albumcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-albums/internal/review"
	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	advanceEventMessageType      = "albums.event.advance"
	publishEventMessageType      = "albums.event.publish"
	approveImagesMessageType     = "albums.images.approve"
	requestReEditMessageType     = "albums.images.request_re_edit"
	reuploadImagesMessageType    = "albums.images.reupload"
	setCoverMessageType          = "albums.images.set_cover"
	approveAndPublishMessageType = "albums.event.approve_and_publish"
	uploadImagesMessageType      = "albums.images.upload"
)

// AdvanceEventCommand moves an event to the next delivery status.
type AdvanceEventCommand struct {
	EventID        uuid.UUID `json:"event_id"`
	TargetStatusID uuid.UUID `json:"target_status_id"`
}

// Type implements command.Message.
func (AdvanceEventCommand) Type() string { return advanceEventMessageType }

// Validate ensures both ids are present.
func (m AdvanceEventCommand) Validate() error {
	errs := validation.Errors{}
	requireEvent(errs, advanceEventMessageType, m.EventID)
	if m.TargetStatusID == uuid.Nil {
		errs["target_status_id"] = validation.NewError(advanceEventMessageType+".target_status_id_required", "target_status_id is required")
	}
	return result(errs)
}

// PublishEventCommand publishes an event to the customer.
type PublishEventCommand struct {
	EventID uuid.UUID `json:"event_id"`
}

// Type implements command.Message.
func (PublishEventCommand) Type() string { return publishEventMessageType }

// Validate ensures the event id is present.
func (m PublishEventCommand) Validate() error {
	errs := validation.Errors{}
	requireEvent(errs, publishEventMessageType, m.EventID)
	return result(errs)
}

// ApproveImagesCommand approves a selection.
type ApproveImagesCommand struct {
	EventID  uuid.UUID   `json:"event_id"`
	ImageIDs []uuid.UUID `json:"image_ids"`
}

// Type implements command.Message.
func (ApproveImagesCommand) Type() string { return approveImagesMessageType }

// Validate ensures the event and a non-empty selection.
func (m ApproveImagesCommand) Validate() error {
	errs := validation.Errors{}
	requireEvent(errs, approveImagesMessageType, m.EventID)
	requireSelection(errs, approveImagesMessageType, m.ImageIDs)
	return result(errs)
}

// RequestReEditCommand sends a selection back to the editor.
type RequestReEditCommand struct {
	EventID  uuid.UUID   `json:"event_id"`
	ImageIDs []uuid.UUID `json:"image_ids"`
	Comment  string      `json:"comment"`
}

// Type implements command.Message.
func (RequestReEditCommand) Type() string { return requestReEditMessageType }

// Validate ensures the selection and a comment.
func (m RequestReEditCommand) Validate() error {
	errs := validation.Errors{}
	requireEvent(errs, requestReEditMessageType, m.EventID)
	requireSelection(errs, requestReEditMessageType, m.ImageIDs)
	if strings.TrimSpace(m.Comment) == "" {
		errs["comment"] = validation.NewError(requestReEditMessageType+".comment_required", "comment is required")
	}
	return result(errs)
}

// ReuploadImagesCommand replaces re-edited images with new files.
type ReuploadImagesCommand struct {
	EventID  uuid.UUID               `json:"event_id"`
	ImageIDs []uuid.UUID             `json:"image_ids"`
	Files    []interfaces.UploadFile `json:"-"`
}

// Type implements command.Message.
func (ReuploadImagesCommand) Type() string { return reuploadImagesMessageType }

// Validate ensures the selection and at least one file.
func (m ReuploadImagesCommand) Validate() error {
	errs := validation.Errors{}
	requireEvent(errs, reuploadImagesMessageType, m.EventID)
	requireSelection(errs, reuploadImagesMessageType, m.ImageIDs)
	requireFiles(errs, reuploadImagesMessageType, m.Files)
	return result(errs)
}

// SetCoverCommand assigns an image to a project cover slot.
type SetCoverCommand struct {
	EventID uuid.UUID            `json:"event_id"`
	ImageID uuid.UUID            `json:"image_id"`
	Slot    interfaces.CoverSlot `json:"slot"`
}

// Type implements command.Message.
func (SetCoverCommand) Type() string { return setCoverMessageType }

// Validate ensures the image and a known slot.
func (m SetCoverCommand) Validate() error {
	errs := validation.Errors{}
	requireEvent(errs, setCoverMessageType, m.EventID)
	if m.ImageID == uuid.Nil {
		errs["image_id"] = validation.NewError(setCoverMessageType+".image_id_required", "image_id is required")
	}
	if !review.ValidCoverSlot(m.Slot) {
		errs["slot"] = validation.NewError(setCoverMessageType+".slot_invalid", "slot must be desktop, tablet or mobile")
	}
	return result(errs)
}

// ApproveAndPublishCommand approves a selection and publishes the event.
type ApproveAndPublishCommand struct {
	EventID  uuid.UUID   `json:"event_id"`
	ImageIDs []uuid.UUID `json:"image_ids"`
}

// Type implements command.Message.
func (ApproveAndPublishCommand) Type() string { return approveAndPublishMessageType }

// Validate ensures the event and a non-empty selection.
func (m ApproveAndPublishCommand) Validate() error {
	errs := validation.Errors{}
	requireEvent(errs, approveAndPublishMessageType, m.EventID)
	requireSelection(errs, approveAndPublishMessageType, m.ImageIDs)
	return result(errs)
}

// UploadImagesCommand uploads new files into an event.
type UploadImagesCommand struct {
	EventID uuid.UUID               `json:"event_id"`
	Files   []interfaces.UploadFile `json:"-"`
}

// Type implements command.Message.
func (UploadImagesCommand) Type() string { return uploadImagesMessageType }

// Validate ensures the event and at least one file.
func (m UploadImagesCommand) Validate() error {
	errs := validation.Errors{}
	requireEvent(errs, uploadImagesMessageType, m.EventID)
	requireFiles(errs, uploadImagesMessageType, m.Files)
	return result(errs)
}

func requireEvent(errs validation.Errors, prefix string, id uuid.UUID) {
	if id == uuid.Nil {
		errs["event_id"] = validation.NewError(prefix+".event_id_required", "event_id is required")
	}
}

func requireSelection(errs validation.Errors, prefix string, ids []uuid.UUID) {
	if len(ids) == 0 {
		errs["image_ids"] = validation.NewError(prefix+".image_ids_required", "select at least one image")
		return
	}
	for _, id := range ids {
		if id == uuid.Nil {
			errs["image_ids"] = validation.NewError(prefix+".image_ids_invalid", "image_ids must not contain empty ids")
			return
		}
	}
}

func requireFiles(errs validation.Errors, prefix string, files []interfaces.UploadFile) {
	if len(files) == 0 {
		errs["files"] = validation.NewError(prefix+".files_required", "choose at least one file")
	}
}

func result(errs validation.Errors) error {
	if len(errs) > 0 {
		return errs
	}
	return nil
}

package albumcmd

import (
	"context"

	"github.com/goliatone/go-albums/internal/bulk"
	"github.com/goliatone/go-albums/internal/commands"
	"github.com/goliatone/go-albums/internal/delivery"
	"github.com/goliatone/go-albums/internal/upload"
	"github.com/goliatone/go-albums/pkg/interfaces"
	command "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// BulkActions is the coordinator surface used by the image handlers.
type BulkActions interface {
	Approve(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) (*bulk.Result, error)
	RequestReEdit(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID, comment string) (*bulk.Result, error)
	Reupload(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID, files []interfaces.UploadFile) (*bulk.Result, error)
	SetCover(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID, slot interfaces.CoverSlot) (*bulk.Result, error)
	ApproveAndPublish(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) (*bulk.Result, error)
}

// ControllerFactory opens an upload session for an event.
type ControllerFactory func(eventID uuid.UUID) *upload.Controller

// ResultHook receives the per-item outcome of a bulk action.
type ResultHook func(ctx context.Context, eventID uuid.UUID, result *bulk.Result)

// ReportHook receives the outcome of an upload run.
type ReportHook func(ctx context.Context, eventID uuid.UUID, report *upload.Report)

func eventFields(eventID uuid.UUID, count int) map[string]any {
	fields := map[string]any{"event_id": eventID}
	if count > 0 {
		fields["images"] = count
	}
	return fields
}

func handlerOptions[T command.Message](logger interfaces.Logger, operation string, fields func(T) map[string]any, extra []commands.HandlerOption[T]) []commands.HandlerOption[T] {
	opts := []commands.HandlerOption[T]{
		commands.WithLogger[T](logger),
		commands.WithOperation[T](operation),
		commands.WithMessageFields(fields),
		commands.WithTelemetry(commands.DefaultTelemetry[T](logger)),
	}
	return append(opts, extra...)
}

func report(ctx context.Context, hook ResultHook, eventID uuid.UUID, result *bulk.Result) {
	if hook != nil && result != nil {
		hook(ctx, eventID, result)
	}
}

// AdvanceEventHandler advances an event one delivery step.
type AdvanceEventHandler struct {
	inner *commands.Handler[AdvanceEventCommand]
}

// NewAdvanceEventHandler constructs the handler over the delivery service.
func NewAdvanceEventHandler(service delivery.Service, logger interfaces.Logger, opts ...commands.HandlerOption[AdvanceEventCommand]) *AdvanceEventHandler {
	exec := func(ctx context.Context, msg AdvanceEventCommand) error {
		_, err := service.Advance(ctx, msg.EventID, msg.TargetStatusID)
		return classify(err)
	}
	fields := func(msg AdvanceEventCommand) map[string]any {
		out := eventFields(msg.EventID, 0)
		out["target_status_id"] = msg.TargetStatusID
		return out
	}
	return &AdvanceEventHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "event.advance", fields, opts)...),
	}
}

// Execute satisfies command.Commander[AdvanceEventCommand].Execute.
func (h *AdvanceEventHandler) Execute(ctx context.Context, msg AdvanceEventCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PublishEventHandler publishes an event.
type PublishEventHandler struct {
	inner *commands.Handler[PublishEventCommand]
}

// NewPublishEventHandler constructs the handler over the delivery service.
func NewPublishEventHandler(service delivery.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishEventCommand]) *PublishEventHandler {
	exec := func(ctx context.Context, msg PublishEventCommand) error {
		_, err := service.Publish(ctx, msg.EventID)
		return classify(err)
	}
	fields := func(msg PublishEventCommand) map[string]any { return eventFields(msg.EventID, 0) }
	return &PublishEventHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "event.publish", fields, opts)...),
	}
}

// Execute satisfies command.Commander[PublishEventCommand].Execute.
func (h *PublishEventHandler) Execute(ctx context.Context, msg PublishEventCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ApproveImagesHandler approves a selection.
type ApproveImagesHandler struct {
	inner *commands.Handler[ApproveImagesCommand]
}

// NewApproveImagesHandler constructs the handler over the bulk coordinator.
func NewApproveImagesHandler(actions BulkActions, hook ResultHook, logger interfaces.Logger, opts ...commands.HandlerOption[ApproveImagesCommand]) *ApproveImagesHandler {
	exec := func(ctx context.Context, msg ApproveImagesCommand) error {
		result, err := actions.Approve(ctx, msg.EventID, msg.ImageIDs)
		if err != nil {
			return classify(err)
		}
		report(ctx, hook, msg.EventID, result)
		return nil
	}
	fields := func(msg ApproveImagesCommand) map[string]any { return eventFields(msg.EventID, len(msg.ImageIDs)) }
	return &ApproveImagesHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "images.approve", fields, opts)...),
	}
}

// Execute satisfies command.Commander[ApproveImagesCommand].Execute.
func (h *ApproveImagesHandler) Execute(ctx context.Context, msg ApproveImagesCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RequestReEditHandler sends a selection back for re-editing.
type RequestReEditHandler struct {
	inner *commands.Handler[RequestReEditCommand]
}

// NewRequestReEditHandler constructs the handler over the bulk coordinator.
func NewRequestReEditHandler(actions BulkActions, hook ResultHook, logger interfaces.Logger, opts ...commands.HandlerOption[RequestReEditCommand]) *RequestReEditHandler {
	exec := func(ctx context.Context, msg RequestReEditCommand) error {
		result, err := actions.RequestReEdit(ctx, msg.EventID, msg.ImageIDs, msg.Comment)
		if err != nil {
			return classify(err)
		}
		report(ctx, hook, msg.EventID, result)
		return nil
	}
	fields := func(msg RequestReEditCommand) map[string]any { return eventFields(msg.EventID, len(msg.ImageIDs)) }
	return &RequestReEditHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "images.request_re_edit", fields, opts)...),
	}
}

// Execute satisfies command.Commander[RequestReEditCommand].Execute.
func (h *RequestReEditHandler) Execute(ctx context.Context, msg RequestReEditCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ReuploadImagesHandler replaces re-edited images.
type ReuploadImagesHandler struct {
	inner *commands.Handler[ReuploadImagesCommand]
}

// NewReuploadImagesHandler constructs the handler over the bulk coordinator.
func NewReuploadImagesHandler(actions BulkActions, hook ResultHook, logger interfaces.Logger, opts ...commands.HandlerOption[ReuploadImagesCommand]) *ReuploadImagesHandler {
	exec := func(ctx context.Context, msg ReuploadImagesCommand) error {
		result, err := actions.Reupload(ctx, msg.EventID, msg.ImageIDs, msg.Files)
		if err != nil {
			return classify(err)
		}
		report(ctx, hook, msg.EventID, result)
		return nil
	}
	fields := func(msg ReuploadImagesCommand) map[string]any {
		out := eventFields(msg.EventID, len(msg.ImageIDs))
		out["files"] = len(msg.Files)
		return out
	}
	return &ReuploadImagesHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "images.reupload", fields, opts)...),
	}
}

// Execute satisfies command.Commander[ReuploadImagesCommand].Execute.
func (h *ReuploadImagesHandler) Execute(ctx context.Context, msg ReuploadImagesCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SetCoverHandler assigns a project cover.
type SetCoverHandler struct {
	inner *commands.Handler[SetCoverCommand]
}

// NewSetCoverHandler constructs the handler over the bulk coordinator.
func NewSetCoverHandler(actions BulkActions, hook ResultHook, logger interfaces.Logger, opts ...commands.HandlerOption[SetCoverCommand]) *SetCoverHandler {
	exec := func(ctx context.Context, msg SetCoverCommand) error {
		result, err := actions.SetCover(ctx, msg.EventID, []uuid.UUID{msg.ImageID}, msg.Slot)
		if err != nil {
			return classify(err)
		}
		report(ctx, hook, msg.EventID, result)
		return nil
	}
	fields := func(msg SetCoverCommand) map[string]any {
		out := eventFields(msg.EventID, 1)
		out["slot"] = msg.Slot
		return out
	}
	return &SetCoverHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "images.set_cover", fields, opts)...),
	}
}

// Execute satisfies command.Commander[SetCoverCommand].Execute.
func (h *SetCoverHandler) Execute(ctx context.Context, msg SetCoverCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ApproveAndPublishHandler approves a selection and publishes the event.
type ApproveAndPublishHandler struct {
	inner *commands.Handler[ApproveAndPublishCommand]
}

// NewApproveAndPublishHandler constructs the handler over the bulk coordinator.
func NewApproveAndPublishHandler(actions BulkActions, hook ResultHook, logger interfaces.Logger, opts ...commands.HandlerOption[ApproveAndPublishCommand]) *ApproveAndPublishHandler {
	exec := func(ctx context.Context, msg ApproveAndPublishCommand) error {
		result, err := actions.ApproveAndPublish(ctx, msg.EventID, msg.ImageIDs)
		if err != nil {
			return classify(err)
		}
		report(ctx, hook, msg.EventID, result)
		return nil
	}
	fields := func(msg ApproveAndPublishCommand) map[string]any { return eventFields(msg.EventID, len(msg.ImageIDs)) }
	return &ApproveAndPublishHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "event.approve_and_publish", fields, opts)...),
	}
}

// Execute satisfies command.Commander[ApproveAndPublishCommand].Execute.
func (h *ApproveAndPublishHandler) Execute(ctx context.Context, msg ApproveAndPublishCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UploadImagesHandler runs one upload session per message.
type UploadImagesHandler struct {
	inner *commands.Handler[UploadImagesCommand]
}

// NewUploadImagesHandler constructs the handler over an upload controller factory.
// The session is closed when the run ends so every preview is released.
func NewUploadImagesHandler(factory ControllerFactory, hook ReportHook, logger interfaces.Logger, opts ...commands.HandlerOption[UploadImagesCommand]) *UploadImagesHandler {
	exec := func(ctx context.Context, msg UploadImagesCommand) error {
		ctrl := factory(msg.EventID)
		defer ctrl.Close()
		if _, err := ctrl.Add(msg.Files...); err != nil {
			return err
		}
		result, err := ctrl.Start(ctx)
		if err != nil {
			return classify(err)
		}
		if hook != nil {
			hook(ctx, msg.EventID, result)
		}
		return nil
	}
	fields := func(msg UploadImagesCommand) map[string]any {
		out := eventFields(msg.EventID, 0)
		out["files"] = len(msg.Files)
		return out
	}
	// Uploads run far longer than a single mutation.
	base := []commands.HandlerOption[UploadImagesCommand]{commands.WithTimeout[UploadImagesCommand](0)}
	return &UploadImagesHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "images.upload", fields, append(base, opts...))...),
	}
}

// Execute satisfies command.Commander[UploadImagesCommand].Execute.
func (h *UploadImagesHandler) Execute(ctx context.Context, msg UploadImagesCommand) error {
	return h.inner.Execute(ctx, msg)
}

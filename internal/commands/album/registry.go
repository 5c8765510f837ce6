package albumcmd

import (
	"errors"

	"github.com/goliatone/go-albums/internal/commands"
	"github.com/goliatone/go-albums/internal/delivery"
	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/goliatone/go-command/dispatcher"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Dependencies are the services behind the album handlers. Uploads may be nil
// when the upload command is not needed.
type Dependencies struct {
	Delivery delivery.Service
	Bulk     BulkActions
	Uploads  ControllerFactory
	OnResult ResultHook
	OnUpload ReportHook
}

// HandlerSet groups the handlers produced by RegisterAlbumCommands.
type HandlerSet struct {
	Advance           *AdvanceEventHandler
	Publish           *PublishEventHandler
	Approve           *ApproveImagesHandler
	RequestReEdit     *RequestReEditHandler
	Reupload          *ReuploadImagesHandler
	SetCover          *SetCoverHandler
	ApproveAndPublish *ApproveAndPublishHandler
	Upload            *UploadImagesHandler
}

// All lists the constructed handlers in registration order.
func (s *HandlerSet) All() []any {
	out := []any{s.Advance, s.Publish, s.Approve, s.RequestReEdit, s.Reupload, s.SetCover, s.ApproveAndPublish}
	if s.Upload != nil {
		out = append(out, s.Upload)
	}
	return out
}

// Subscribe attaches every handler to the go-command dispatcher so messages can be
// sent with dispatcher.Dispatch. The returned func detaches them again.
func (s *HandlerSet) Subscribe() func() {
	subs := []interface{ Unsubscribe() }{
		dispatcher.SubscribeCommand[AdvanceEventCommand](s.Advance),
		dispatcher.SubscribeCommand[PublishEventCommand](s.Publish),
		dispatcher.SubscribeCommand[ApproveImagesCommand](s.Approve),
		dispatcher.SubscribeCommand[RequestReEditCommand](s.RequestReEdit),
		dispatcher.SubscribeCommand[ReuploadImagesCommand](s.Reupload),
		dispatcher.SubscribeCommand[SetCoverCommand](s.SetCover),
		dispatcher.SubscribeCommand[ApproveAndPublishCommand](s.ApproveAndPublish),
	}
	if s.Upload != nil {
		subs = append(subs, dispatcher.SubscribeCommand[UploadImagesCommand](s.Upload))
	}
	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}
}

// RegisterAlbumCommands builds the album handlers and registers them with reg. The
// handler set is returned so callers can also subscribe them to a dispatcher.
func RegisterAlbumCommands(reg CommandRegistry, deps Dependencies, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if deps.Delivery == nil {
		return nil, errors.New("album command registration: delivery service is nil")
	}
	if deps.Bulk == nil {
		return nil, errors.New("album command registration: bulk coordinator is nil")
	}

	logger := commands.CommandLogger(provider, "album")
	set := &HandlerSet{
		Advance:           NewAdvanceEventHandler(deps.Delivery, logger),
		Publish:           NewPublishEventHandler(deps.Delivery, logger),
		Approve:           NewApproveImagesHandler(deps.Bulk, deps.OnResult, logger),
		RequestReEdit:     NewRequestReEditHandler(deps.Bulk, deps.OnResult, logger),
		Reupload:          NewReuploadImagesHandler(deps.Bulk, deps.OnResult, logger),
		SetCover:          NewSetCoverHandler(deps.Bulk, deps.OnResult, logger),
		ApproveAndPublish: NewApproveAndPublishHandler(deps.Bulk, deps.OnResult, logger),
	}
	if deps.Uploads != nil {
		set.Upload = NewUploadImagesHandler(deps.Uploads, deps.OnUpload, logger)
	}

	if reg != nil {
		for _, handler := range set.All() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

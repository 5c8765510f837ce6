package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-albums/internal/catalog"
	"github.com/goliatone/go-albums/internal/domain"
	"github.com/goliatone/go-albums/internal/logging"
	"github.com/goliatone/go-albums/internal/notifications"
	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	// ErrNoApprovedContent indicates a publish attempt without any approved image.
	ErrNoApprovedContent = errors.New("delivery: publish requires at least one approved image")
	// ErrNotPublishable indicates the event is already at or past the published step.
	ErrNotPublishable = errors.New("delivery: event is not publishable")
	// ErrEventIDRequired indicates a nil event id.
	ErrEventIDRequired = errors.New("delivery: event id required")
	// ErrEventNotFound indicates the event API returned no event.
	ErrEventNotFound = errors.New("delivery: event not found")
)

// State is the derived delivery view of an event. It is only computed after the
// event, the catalog and the image list have all been read.
type State struct {
	Event         interfaces.EventRecord
	Current       *catalog.EventDeliveryStatus
	Next          *catalog.EventDeliveryStatus
	Published     catalog.EventDeliveryStatus
	Publishable   bool
	ApprovedCount int
}

// CanPublish reports whether a publish would be accepted right now.
func (s State) CanPublish() bool {
	return s.Publishable && s.ApprovedCount > 0
}

// Service advances and publishes client events.
type Service interface {
	State(ctx context.Context, eventID uuid.UUID) (*State, error)
	Advance(ctx context.Context, eventID, targetStatusID uuid.UUID) (*interfaces.EventRecord, error)
	Publish(ctx context.Context, eventID uuid.UUID) (*interfaces.EventRecord, error)
}

// ServiceOption configures the delivery service.
type ServiceOption func(*service)

// WithLogger overrides the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier sends a best-effort notice after each publish.
func WithNotifier(notifier interfaces.Notifier) ServiceOption {
	return func(s *service) {
		s.notifier = notifier
	}
}

type service struct {
	events   interfaces.EventAPI
	images   interfaces.ImageAPI
	catalogs catalog.Provider
	notifier interfaces.Notifier
	logger   interfaces.Logger
	notices  *notifications.BestEffort
}

// NewService constructs the delivery service.
func NewService(events interfaces.EventAPI, images interfaces.ImageAPI, catalogs catalog.Provider, opts ...ServiceOption) Service {
	s := &service{
		events:   events,
		images:   images,
		catalogs: catalogs,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.notices = notifications.NewBestEffort(s.notifier, s.logger)
	return s
}

type snapshot struct {
	event  *interfaces.EventRecord
	cat    *catalog.Catalog
	images []interfaces.ImageRecord
}

// load reads the event and catalog, and the images when requested, concurrently.
// Nothing is derived unless every read succeeded.
func (s *service) load(ctx context.Context, eventID uuid.UUID, withImages bool) (*snapshot, error) {
	if eventID == uuid.Nil {
		return nil, ErrEventIDRequired
	}
	var (
		wg                         sync.WaitGroup
		snap                       snapshot
		eventErr, catErr, imageErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		snap.event, eventErr = s.events.GetEvent(ctx, eventID)
	}()
	go func() {
		defer wg.Done()
		snap.cat, catErr = s.catalogs.Catalog(ctx)
	}()
	if withImages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap.images, imageErr = s.images.ListImages(ctx, eventID)
		}()
	}
	wg.Wait()

	if err := errors.Join(eventErr, catErr, imageErr); err != nil {
		return nil, err
	}
	if snap.event == nil {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	return &snap, nil
}

func (s *service) State(ctx context.Context, eventID uuid.UUID) (*State, error) {
	snap, err := s.load(ctx, eventID, true)
	if err != nil {
		return nil, err
	}
	state := &State{
		Event:         *snap.event,
		Published:     snap.cat.Published(),
		Publishable:   IsPublishable(snap.cat, snap.event.DeliveryStatusID),
		ApprovedCount: countApproved(snap.cat, snap.images),
	}
	if id := snap.event.DeliveryStatusID; id != nil {
		if current, ok := snap.cat.DeliveryByID(*id); ok {
			state.Current = &current
		}
	}
	if next, ok := NextAvailableStatus(snap.cat, snap.event.DeliveryStatusID); ok {
		state.Next = &next
	}
	return state, nil
}

// Advance re-reads the event status before validating, so a status changed
// elsewhere since the last refresh is never used as the starting point.
func (s *service) Advance(ctx context.Context, eventID, targetStatusID uuid.UUID) (*interfaces.EventRecord, error) {
	snap, err := s.load(ctx, eventID, false)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(snap.cat, snap.event.DeliveryStatusID, targetStatusID); err != nil {
		s.logger.Info("delivery.advance.rejected", "event_id", eventID, "target", targetStatusID, "error", err)
		return nil, err
	}
	updated, err := s.events.UpdateEventStatus(ctx, eventID, targetStatusID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("delivery.advance.completed", "event_id", eventID, "status_id", targetStatusID)
	return updated, nil
}

// Publish moves the event straight to PUBLISHED from any earlier step. It is the
// one exception to single-step advancement and requires an approved image.
func (s *service) Publish(ctx context.Context, eventID uuid.UUID) (*interfaces.EventRecord, error) {
	snap, err := s.load(ctx, eventID, true)
	if err != nil {
		return nil, err
	}
	published := snap.cat.Published()
	if !IsPublishable(snap.cat, snap.event.DeliveryStatusID) {
		return nil, fmt.Errorf("%w: %s is already at or past %s", ErrNotPublishable, eventID, published.Code)
	}
	if countApproved(snap.cat, snap.images) == 0 {
		return nil, ErrNoApprovedContent
	}

	updated, err := s.events.UpdateEventStatus(ctx, eventID, published.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("delivery.publish.completed", "event_id", eventID, "status_id", published.ID)
	s.notices.EventPublished(ctx, interfaces.EventPublishedNotice{EventID: eventID, StatusID: published.ID})
	return updated, nil
}

func countApproved(cat *catalog.Catalog, images []interfaces.ImageRecord) int {
	count := 0
	for _, image := range images {
		if cat.ImageCode(image.StatusID) == domain.ImageStatusApproved {
			count++
		}
	}
	return count
}

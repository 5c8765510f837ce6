package bulk

import (
	"context"
	"fmt"

	"github.com/goliatone/go-albums/internal/catalog"
	"github.com/goliatone/go-albums/internal/delivery"
	"github.com/goliatone/go-albums/internal/domain"
	"github.com/goliatone/go-albums/internal/logging"
	"github.com/goliatone/go-albums/internal/notifications"
	"github.com/goliatone/go-albums/internal/review"
	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/google/uuid"
)

// Refresher re-fetches server-authoritative state after a mutation.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshFunc adapts a function into a Refresher.
type RefreshFunc func(ctx context.Context) error

func (f RefreshFunc) Refresh(ctx context.Context) error {
	return f(ctx)
}

// Option configures the coordinator.
type Option func(*Coordinator)

// WithLogger overrides the coordinator logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifier sends best-effort re-edit notices.
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = notifier
	}
}

// WithConfirmer asks for confirmation before bulk mutations.
func WithConfirmer(confirmer Confirmer) Option {
	return func(c *Coordinator) {
		c.confirmer = confirmer
	}
}

// WithRefresher is invoked after every action with at least one success.
func WithRefresher(refresher Refresher) Option {
	return func(c *Coordinator) {
		c.refresher = refresher
	}
}

// WithCoverConfirmation also confirms set-cover actions.
func WithCoverConfirmation(enabled bool) Option {
	return func(c *Coordinator) {
		c.confirmCover = enabled
	}
}

// Coordinator runs bulk actions over a selection. Structural problems are
// returned as errors before any mutation; per-item outcomes are returned as
// data in Result.
type Coordinator struct {
	events       interfaces.EventAPI
	images       interfaces.ImageAPI
	catalogs     catalog.Provider
	policy       *review.Policy
	delivery     delivery.Service
	notifier     interfaces.Notifier
	notices      *notifications.BestEffort
	confirmer    Confirmer
	refresher    Refresher
	confirmCover bool
	logger       interfaces.Logger
}

// NewCoordinator wires the coordinator. publisher may be nil when
// ApproveAndPublish is not used.
func NewCoordinator(events interfaces.EventAPI, images interfaces.ImageAPI, catalogs catalog.Provider, policy *review.Policy, publisher delivery.Service, opts ...Option) *Coordinator {
	c := &Coordinator{
		events:   events,
		images:   images,
		catalogs: catalogs,
		policy:   policy,
		delivery: publisher,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.notices = notifications.NewBestEffort(c.notifier, c.logger)
	return c
}

// selection resolves ids against the current server state of the event so
// decisions never run on stale statuses.
func (c *Coordinator) selection(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) (*catalog.Catalog, []review.Item, error) {
	if eventID == uuid.Nil {
		return nil, nil, ErrEventIDRequired
	}
	cat, err := c.catalogs.Catalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	records, err := c.images.ListImages(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uuid.UUID]interfaces.ImageRecord, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}
	selected := make([]interfaces.ImageRecord, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		record, ok := byID[id]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrImageNotInEvent, id)
		}
		selected = append(selected, record)
	}
	return cat, review.ItemsFromRecords(cat, selected), nil
}

func (c *Coordinator) confirm(ctx context.Context, prompt Prompt) error {
	if c.confirmer == nil {
		return nil
	}
	ok, err := c.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return err
	}
	if !ok {
		c.logger.Info("bulk.confirmation.declined", "action", prompt.Action, "count", prompt.Count)
		return ErrCancelled
	}
	return nil
}

func (c *Coordinator) finish(ctx context.Context, eventID uuid.UUID, result *Result) {
	c.logger.Info(fmt.Sprintf("bulk.%s.completed", result.Action),
		"event_id", eventID,
		"success", result.SuccessCount,
		"failed", len(result.Failures),
		"outcome", result.Outcome(),
	)
	if result.SuccessCount == 0 || c.refresher == nil {
		return
	}
	if err := c.refresher.Refresh(ctx); err != nil {
		c.logger.Warn("bulk.refresh.failed", "event_id", eventID, "error", err)
	}
}

// Approve approves the selection. Images already approved or selected by the
// client count as successes without a request.
func (c *Coordinator) Approve(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) (*Result, error) {
	cat, items, err := c.selection(ctx, eventID, ids)
	if err != nil {
		return nil, err
	}
	decision, err := c.policy.CanApprove(ctx, items)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &IneligibleError{Action: ActionApprove, Items: decision.Ineligible}
	}
	if err := c.confirm(ctx, Prompt{
		Action:  ActionApprove,
		Count:   len(items),
		Message: fmt.Sprintf("Approve %s?", pluralImages(len(items))),
	}); err != nil {
		return nil, err
	}

	result := c.approve(ctx, eventID, cat, items, decision)
	c.finish(ctx, eventID, result)
	return result, nil
}

func (c *Coordinator) approve(ctx context.Context, eventID uuid.UUID, cat *catalog.Catalog, items []review.Item, decision review.Decision) *Result {
	result := &Result{Action: ActionApprove}
	pending := make([]uuid.UUID, 0, len(decision.Transitions))
	for _, transition := range decision.Transitions {
		if transition.Noop() {
			result.SuccessCount++
			continue
		}
		pending = append(pending, transition.ImageID)
	}
	if len(pending) == 0 {
		return result
	}

	names := fileNames(items)
	if _, err := c.images.ApproveImages(ctx, pending); err != nil {
		c.logger.Warn("bulk.approve.transport_failed", "event_id", eventID, "count", len(pending), "error", err)
		for _, id := range pending {
			result.fail(names[id], err.Error())
		}
		return result
	}

	// The approve endpoint only reports a count, so the refreshed list decides
	// which images actually changed.
	records, err := c.images.ListImages(ctx, eventID)
	if err != nil {
		c.logger.Warn("bulk.approve.verify_failed", "event_id", eventID, "error", err)
		result.SuccessCount += len(pending)
		return result
	}
	current := make(map[uuid.UUID]domain.ImageStatusCode, len(records))
	for _, record := range records {
		current[record.ID] = cat.ImageCode(record.StatusID)
	}
	for _, id := range pending {
		if current[id] == domain.ImageStatusApproved {
			result.SuccessCount++
			continue
		}
		result.fail(names[id], "image was not approved")
	}
	return result
}

// RequestReEdit sends the selection back to the editor with a comment.
func (c *Coordinator) RequestReEdit(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID, comment string) (*Result, error) {
	cat, items, err := c.selection(ctx, eventID, ids)
	if err != nil {
		return nil, err
	}
	decision, err := c.policy.CanRequestReEdit(ctx, items, comment)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &IneligibleError{Action: ActionRequestReEdit, Items: decision.Ineligible}
	}
	target, ok := cat.ImageStatusByCode(domain.ImageStatusReEditSuggested)
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrImageStatusUnknown, domain.ImageStatusReEditSuggested)
	}
	if err := c.confirm(ctx, Prompt{
		Action:  ActionRequestReEdit,
		Count:   len(items),
		Message: fmt.Sprintf("Request a re-edit of %s?", pluralImages(len(items))),
	}); err != nil {
		return nil, err
	}

	result := &Result{Action: ActionRequestReEdit}
	names := fileNames(items)
	pending := make([]uuid.UUID, 0, len(decision.Transitions))
	for _, transition := range decision.Transitions {
		pending = append(pending, transition.ImageID)
	}
	note := decision.Comment
	outcomes, err := c.images.BulkUpdateImages(ctx, pending, interfaces.ImageUpdate{StatusID: target.ID, Comment: &note})
	if err != nil {
		c.logger.Warn("bulk.request_re_edit.transport_failed", "event_id", eventID, "count", len(pending), "error", err)
		for _, id := range pending {
			result.fail(names[id], err.Error())
		}
		c.finish(ctx, eventID, result)
		return result, nil
	}

	succeeded := make([]uuid.UUID, 0, len(outcomes))
	reported := make(map[uuid.UUID]bool, len(outcomes))
	for _, outcome := range outcomes {
		reported[outcome.ID] = true
		if outcome.Success {
			result.SuccessCount++
			succeeded = append(succeeded, outcome.ID)
			continue
		}
		result.fail(names[outcome.ID], outcome.Message)
	}
	for _, id := range pending {
		if !reported[id] {
			result.fail(names[id], "no result reported")
		}
	}
	if len(succeeded) > 0 {
		c.notices.ReEditRequested(ctx, interfaces.ReEditRequestedNotice{EventID: eventID, ImageIDs: succeeded, Comment: note})
	}
	c.finish(ctx, eventID, result)
	return result, nil
}

// Reupload replaces re-edited images with new files matched by file name.
func (c *Coordinator) Reupload(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID, files []interfaces.UploadFile) (*Result, error) {
	_, items, err := c.selection(ctx, eventID, ids)
	if err != nil {
		return nil, err
	}
	decision, err := c.policy.CanReupload(ctx, items)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &IneligibleError{Action: ActionReupload, Items: decision.Ineligible}
	}
	if len(files) == 0 {
		return nil, &review.ValidationError{Field: "files", Message: "choose at least one replacement file"}
	}
	if err := c.confirm(ctx, Prompt{
		Action:  ActionReupload,
		Count:   len(items),
		Message: fmt.Sprintf("Replace %s?", pluralImages(len(items))),
	}); err != nil {
		return nil, err
	}

	result := &Result{Action: ActionReupload}
	pairs := matchFiles(items, files, result)
	if len(pairs) == 0 {
		c.finish(ctx, eventID, result)
		return result, nil
	}
	pendingIDs := make([]uuid.UUID, 0, len(pairs))
	pendingFiles := make([]interfaces.UploadFile, 0, len(pairs))
	for _, pair := range pairs {
		pendingIDs = append(pendingIDs, pair.item.ID)
		pendingFiles = append(pendingFiles, pair.file)
	}

	outcome, err := c.images.ReuploadImages(ctx, pendingIDs, pendingFiles)
	if err != nil {
		c.logger.Warn("bulk.reupload.transport_failed", "event_id", eventID, "count", len(pairs), "error", err)
		for _, pair := range pairs {
			result.fail(pair.file.Name(), err.Error())
		}
		c.finish(ctx, eventID, result)
		return result, nil
	}
	if outcome == nil || len(outcome.Results) == 0 {
		if outcome != nil {
			result.SuccessCount += outcome.Successful
			for i := 0; i < outcome.Failed; i++ {
				result.fail("", "re-upload rejected by storage")
			}
		}
		c.finish(ctx, eventID, result)
		return result, nil
	}
	for _, file := range outcome.Results {
		if file.Success {
			result.SuccessCount++
			continue
		}
		result.fail(file.FileName, file.Message)
	}
	c.finish(ctx, eventID, result)
	return result, nil
}

// SetCover assigns the single selected image to a project cover slot.
func (c *Coordinator) SetCover(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID, slot interfaces.CoverSlot) (*Result, error) {
	_, items, err := c.selection(ctx, eventID, ids)
	if err != nil {
		return nil, err
	}
	decision, err := c.policy.CanSetCover(ctx, items, slot)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &IneligibleError{Action: ActionSetCover, Items: decision.Ineligible}
	}
	event, err := c.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if c.confirmCover {
		if err := c.confirm(ctx, Prompt{
			Action:  ActionSetCover,
			Count:   1,
			Message: fmt.Sprintf("Use %s as the %s cover?", items[0].FileName, slot),
		}); err != nil {
			return nil, err
		}
	}

	result := &Result{Action: ActionSetCover}
	cover := decision.Cover
	if err := c.images.SetProjectCover(ctx, event.ProjectID, cover.Slot, cover.URL); err != nil {
		c.logger.Warn("bulk.set_cover.failed", "event_id", eventID, "slot", cover.Slot, "error", err)
		result.fail(items[0].FileName, err.Error())
	} else {
		result.SuccessCount = 1
	}
	c.finish(ctx, eventID, result)
	return result, nil
}

// ApproveAndPublish approves the selection and then publishes the event. The
// publish runs only when the event is publishable; a publish failure after a
// successful approval is reported in PublishError.
func (c *Coordinator) ApproveAndPublish(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) (*Result, error) {
	if c.delivery == nil {
		return nil, fmt.Errorf("%w: delivery service not configured", delivery.ErrNotPublishable)
	}
	state, err := c.delivery.State(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !state.Publishable {
		return nil, fmt.Errorf("%w: %s", delivery.ErrNotPublishable, eventID)
	}
	cat, items, err := c.selection(ctx, eventID, ids)
	if err != nil {
		return nil, err
	}
	decision, err := c.policy.CanApprove(ctx, items)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &IneligibleError{Action: ActionApproveAndPublish, Items: decision.Ineligible}
	}
	if err := c.confirm(ctx, Prompt{
		Action:  ActionApproveAndPublish,
		Count:   len(items),
		Message: fmt.Sprintf("Approve %s and publish the event?", pluralImages(len(items))),
	}); err != nil {
		return nil, err
	}

	result := c.approve(ctx, eventID, cat, items, decision)
	result.Action = ActionApproveAndPublish
	if result.SuccessCount > 0 || state.ApprovedCount > 0 {
		if _, err := c.delivery.Publish(ctx, eventID); err != nil {
			c.logger.Warn("bulk.publish.failed", "event_id", eventID, "error", err)
			result.PublishError = err.Error()
		} else {
			result.Published = true
		}
	}
	c.finish(ctx, eventID, result)
	return result, nil
}

func fileNames(items []review.Item) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(items))
	for _, item := range items {
		name := item.FileName
		if name == "" {
			name = item.ID.String()
		}
		names[item.ID] = name
	}
	return names
}

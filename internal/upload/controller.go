package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-albums/internal/logging"
	"github.com/goliatone/go-albums/internal/notifications"
	"github.com/goliatone/go-albums/internal/runtimeconfig"
	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/google/uuid"
)

// Option configures a Controller.
type Option func(*Controller)

// WithConfig sets chunk size and request timeout.
func WithConfig(cfg runtimeconfig.UploadConfig) Option {
	return func(c *Controller) {
		c.chunkSize = cfg.ChunkSizeOrDefault()
		c.requestTimeout = cfg.RequestTimeout
	}
}

// WithChunkSize overrides the number of files per request.
func WithChunkSize(size int) Option {
	return func(c *Controller) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithTenantID sets the tenant sent with quota checks and chunks.
func WithTenantID(tenantID string) Option {
	return func(c *Controller) {
		c.tenantID = strings.TrimSpace(tenantID)
	}
}

// WithNotifier sends the post-batch notice.
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(c *Controller) {
		c.notifier = notifier
	}
}

// WithLogger overrides the controller logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records activity on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithPreviews issues a preview per added file.
func WithPreviews(previews *Previews) Option {
	return func(c *Controller) {
		c.previews = previews
	}
}

// WithClock overrides the time source used for chunk timings.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller drives one upload session for an event: batch editing, quota
// precheck, sequential chunked transfer and cancellation.
type Controller struct {
	storage        interfaces.StorageAPI
	eventID        uuid.UUID
	tenantID       string
	chunkSize      int
	requestTimeout time.Duration
	notifier       interfaces.Notifier
	previews       *Previews
	metrics        *Metrics
	logger         interfaces.Logger
	now            func() time.Time

	mu         sync.Mutex
	batchID    uuid.UUID
	items      []*Item
	run        []*Item
	position   int
	state      State
	chunks     int
	chunksDone int
	cancel     context.CancelFunc
	cancelled  bool
	closed     bool
}

// NewController creates an idle session for eventID.
func NewController(storage interfaces.StorageAPI, eventID uuid.UUID, opts ...Option) *Controller {
	c := &Controller{
		storage:   storage,
		eventID:   eventID,
		chunkSize: runtimeconfig.DefaultChunkSize,
		logger:    logging.NoOp(),
		now:       time.Now,
		batchID:   uuid.New(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BatchID identifies the session.
func (c *Controller) BatchID() uuid.UUID {
	return c.batchID
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Items returns a copy of the batch.
func (c *Controller) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, *item)
	}
	return out
}

// Progress reports counts for the current batch.
func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	progress := Progress{
		State:      c.state,
		Total:      len(c.items),
		Chunks:     c.chunks,
		ChunksDone: c.chunksDone,
	}
	for _, item := range c.items {
		size := item.File.Size()
		progress.BytesTotal += size
		switch item.Status {
		case ItemQueued:
			progress.Queued++
		case ItemUploaded:
			progress.Uploaded++
			progress.BytesUploaded += size
		case ItemFailed:
			progress.Failed++
		}
	}
	return progress
}

// Add queues files. A finished batch returns to idle first.
func (c *Controller) Add(files ...File) ([]Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return nil, err
	}
	added := make([]Item, 0, len(files))
	for _, file := range files {
		if file == nil {
			continue
		}
		c.position++
		item := newItem(c.batchID, c.eventID, c.position, file)
		if c.previews != nil {
			url, err := c.previews.Create(file)
			if err != nil {
				c.logger.Debug("upload.preview.failed", "file", file.Name(), "error", err)
			} else {
				item.PreviewURL = url
			}
		}
		c.items = append(c.items, item)
		added = append(added, *item)
	}
	return added, nil
}

// Remove drops an item and releases its preview.
func (c *Controller) Remove(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	for idx, item := range c.items {
		if item.ID != id {
			continue
		}
		c.revoke(item)
		c.items = append(c.items[:idx], c.items[idx+1:]...)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// Clear empties the batch and releases every preview.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	c.releaseAll()
	c.items = nil
	return nil
}

// Retry requeues failed items of a finished batch.
func (c *Controller) Retry() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return 0, err
	}
	count := 0
	for _, item := range c.items {
		if item.Status == ItemFailed {
			item.Status = ItemQueued
			item.Error = ""
			count++
		}
	}
	return count, nil
}

// Cancel stops the run before the next chunk and aborts the request in flight.
// It is a no-op when nothing is running.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Running() {
		return
	}
	c.cancelled = true
	if c.cancel != nil {
		c.cancel()
	}
}

// Close ends the session. A running batch is cancelled and every preview is
// released.
func (c *Controller) Close() {
	c.Cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseAll()
	c.closed = true
}

// editable must be called with mu held.
func (c *Controller) editable() error {
	if c.closed {
		return ErrClosed
	}
	if c.state.Running() {
		return ErrBatchRunning
	}
	if c.state.Terminal() {
		return c.setState(StateIdle)
	}
	return nil
}

// setState must be called with mu held.
func (c *Controller) setState(next State) error {
	if err := checkTransition(c.state, next); err != nil {
		return err
	}
	c.state = next
	return nil
}

func (c *Controller) transition(next State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setState(next)
}

// revoke must be called with mu held.
func (c *Controller) revoke(item *Item) {
	if c.previews == nil || item.PreviewURL == "" {
		return
	}
	c.previews.Revoke(item.PreviewURL)
	item.PreviewURL = ""
}

// releaseAll must be called with mu held.
func (c *Controller) releaseAll() {
	for _, item := range c.items {
		c.revoke(item)
	}
}

// Start runs the batch: quota precheck, then sequential chunks. A rejected
// precheck returns *QuotaExceededError and sends nothing. Partial failures and
// cancellation are reported in the Report, not as errors.
func (c *Controller) Start(ctx context.Context) (*Report, error) {
	if c.storage == nil {
		return nil, ErrStorageRequired
	}
	runCtx, queued, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer c.end()

	logger := logging.WithUploadContext(c.logger, c.batchID.String(), c.tenantID, c.eventID.String())
	if err := c.checkQuota(runCtx, queued, logger); err != nil {
		var quota *QuotaExceededError
		if !errors.As(err, &quota) && c.stopped(runCtx) {
			return c.abort(ctx, logger), nil
		}
		return nil, err
	}

	if err := c.transition(StateUploading); err != nil {
		return nil, err
	}
	chunks := chunkItems(queued, c.chunkSize)
	c.mu.Lock()
	c.chunks = len(chunks)
	c.mu.Unlock()
	logger.Info("upload.batch.started", "items", len(queued), "chunks", len(chunks), "chunk_size", c.chunkSize)

	for idx, chunk := range chunks {
		if c.stopped(runCtx) {
			return c.abort(ctx, logger), nil
		}
		c.sendChunk(runCtx, idx+1, chunk, logger)
		if c.stopped(runCtx) {
			return c.abort(ctx, logger), nil
		}
	}

	c.mu.Lock()
	_ = c.setState(StateCompleted)
	c.mu.Unlock()
	report := c.report()
	c.metrics.batch(StateCompleted)
	report.Notified = c.notify(ctx, report, logger)
	logger.Info("upload.batch.completed", "uploaded", report.Uploaded, "failed", len(report.Failures))
	return report, nil
}

func (c *Controller) begin(ctx context.Context) (context.Context, []*Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, nil, ErrClosed
	}
	if c.state.Terminal() {
		if err := c.setState(StateIdle); err != nil {
			return nil, nil, err
		}
	}
	queued := make([]*Item, 0, len(c.items))
	for _, item := range c.items {
		if item.Status == ItemQueued {
			queued = append(queued, item)
		}
	}
	if len(queued) == 0 {
		return nil, nil, ErrEmptyBatch
	}
	if err := c.setState(StateCheckingQuota); err != nil {
		return nil, nil, err
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.cancelled = false
	c.run = queued
	c.chunks, c.chunksDone = 0, 0
	return runCtx, queued, nil
}

func (c *Controller) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) stopped(runCtx context.Context) bool {
	c.mu.Lock()
	cancelled := c.cancelled
	c.mu.Unlock()
	return cancelled || runCtx.Err() != nil
}

func (c *Controller) checkQuota(ctx context.Context, queued []*Item, logger interfaces.Logger) error {
	var total int64
	for _, item := range queued {
		total += item.File.Size()
	}
	check, err := c.storage.CheckUploadQuota(ctx, c.tenantID, total)
	if err != nil {
		if !c.stopped(ctx) {
			_ = c.transition(StateIdle)
		}
		logger.Warn("upload.quota.check_failed", "bytes", total, "error", err)
		return err
	}
	if check != nil && check.CanUpload {
		return nil
	}

	rejection := &QuotaExceededError{RequestedBytes: total}
	if check != nil {
		rejection.Check = *check
	}
	stats, err := c.storage.GetStorageStats(ctx, c.tenantID)
	if err != nil {
		logger.Warn("upload.quota.stats_failed", "error", err)
	} else {
		rejection.Stats = stats
	}
	if err := c.transition(StateRejected); err != nil {
		return err
	}
	c.metrics.batch(StateRejected)
	logger.Info("upload.quota.rejected", "bytes", total, "available", rejection.AvailableBytes())
	return rejection
}

// sendChunk uploads one chunk. A transport error fails every item in the chunk
// unless the run was cancelled, in which case the items stay queued.
func (c *Controller) sendChunk(runCtx context.Context, number int, chunk []*Item, logger interfaces.Logger) {
	reqCtx := runCtx
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(runCtx, c.requestTimeout)
		defer cancel()
	}
	parts := make([]interfaces.UploadPart, 0, len(chunk))
	for _, item := range chunk {
		parts = append(parts, interfaces.UploadPart{ItemID: item.ID, Key: item.Key, File: item.File})
	}

	started := c.now()
	result, err := c.storage.UploadImageBatch(reqCtx, interfaces.UploadBatchRequest{
		TenantID: c.tenantID,
		EventID:  c.eventID,
		Parts:    parts,
	})
	elapsed := c.now().Sub(started)

	if err != nil && c.stopped(runCtx) {
		logger.Info("upload.chunk.cancelled", "chunk", number)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunksDone++
	if err != nil {
		for _, item := range chunk {
			item.Status = ItemFailed
			item.Error = err.Error()
		}
		c.markPartial()
		c.metrics.chunk(false, elapsed)
		c.metrics.itemsFailed(len(chunk))
		logger.Warn("upload.chunk.failed", "chunk", number, "items", len(chunk), "error", err)
		return
	}

	failed := failedByName(result)
	var uploaded, failures int
	var bytes int64
	for _, item := range chunk {
		if reason, ok := takeFailure(failed, item); ok {
			item.Status = ItemFailed
			item.Error = reason
			failures++
			continue
		}
		item.Status = ItemUploaded
		item.Error = ""
		uploaded++
		bytes += item.File.Size()
		c.revoke(item)
	}
	if failures > 0 {
		c.markPartial()
	}
	c.metrics.chunk(true, elapsed)
	c.metrics.itemsUploaded(uploaded, bytes)
	c.metrics.itemsFailed(failures)
	logger.Debug("upload.chunk.completed", "chunk", number, "uploaded", uploaded, "failed", failures)
}

// markPartial must be called with mu held.
func (c *Controller) markPartial() {
	if c.state == StateUploading {
		_ = c.setState(StatePartiallyFailed)
	}
}

func failedByName(result *interfaces.UploadBatchResult) map[string][]string {
	out := map[string][]string{}
	if result == nil {
		return out
	}
	for _, entry := range result.Failed {
		reason := entry.Message
		if reason == "" {
			reason = "rejected by storage"
		}
		out[entry.FileName] = append(out[entry.FileName], reason)
	}
	return out
}

// takeFailure matches a reported failure to item by file name or key, once.
func takeFailure(failed map[string][]string, item *Item) (string, bool) {
	for _, name := range []string{item.File.Name(), item.Key} {
		reasons := failed[name]
		if len(reasons) == 0 {
			continue
		}
		failed[name] = reasons[1:]
		return reasons[0], true
	}
	return "", false
}

func (c *Controller) abort(ctx context.Context, logger interfaces.Logger) *Report {
	c.mu.Lock()
	if err := c.setState(StateAborted); err != nil {
		logger.Error("upload.batch.abort_failed", "state", c.state, "error", err)
	}
	c.releaseAll()
	c.mu.Unlock()

	report := c.report()
	c.metrics.batch(StateAborted)
	report.Notified = c.notify(context.WithoutCancel(ctx), report, logger)
	logger.Info("upload.batch.aborted", "uploaded", report.Uploaded, "untouched", report.Untouched())
	return report
}

func (c *Controller) report() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	report := &Report{BatchID: c.batchID, State: c.state, Total: len(c.run)}
	for _, item := range c.run {
		switch item.Status {
		case ItemUploaded:
			report.Uploaded++
		case ItemFailed:
			report.Failures = append(report.Failures, Failure{ItemID: item.ID, FileName: item.File.Name(), Reason: item.Error})
		}
	}
	return report
}

// notify sends the single post-batch notice when anything was uploaded.
func (c *Controller) notify(ctx context.Context, report *Report, logger interfaces.Logger) bool {
	if report.Uploaded == 0 {
		return false
	}
	notices := notifications.NewBestEffort(c.notifier, logger)
	return notices.ImagesUploaded(ctx, interfaces.ImagesUploadedNotice{
		TenantID: c.tenantID,
		EventID:  c.eventID,
		Uploaded: report.Uploaded,
		Failed:   len(report.Failures),
		Aborted:  report.Aborted(),
	})
}

package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-albums/internal/catalog"
	"github.com/goliatone/go-albums/internal/images"
	"github.com/goliatone/go-albums/internal/notifications"
	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

type memFile struct {
	name string
	size int64
}

func (f memFile) Name() string { return f.name }
func (f memFile) Size() int64  { return f.size }
func (f memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(strings.Repeat("x", int(f.size)))), nil
}

func files(n int, size int64) []File {
	out := make([]File, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, memFile{name: fmt.Sprintf("IMG_%04d.jpg", i), size: size})
	}
	return out
}

// hookStorage wraps a StorageAPI and runs a hook before each chunk.
type hookStorage struct {
	interfaces.StorageAPI
	mu     sync.Mutex
	chunks int
	before func(n int)
}

func (s *hookStorage) UploadImageBatch(ctx context.Context, req interfaces.UploadBatchRequest) (*interfaces.UploadBatchResult, error) {
	s.mu.Lock()
	s.chunks++
	n := s.chunks
	s.mu.Unlock()
	if s.before != nil {
		s.before(n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.StorageAPI.UploadImageBatch(ctx, req)
}

func newStore(t *testing.T) (*images.Store, uuid.UUID) {
	t.Helper()
	store := images.NewMemoryStore(catalog.NewStatic(catalog.Default()))
	event, err := store.CreateEvent(context.Background(), uuid.New(), "Gala")
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	return store, event.ID
}

func TestPartialChunkFailureAccumulates(t *testing.T) {
	ctx := context.Background()
	store, eventID := newStore(t)
	storage := NewMemoryStorage(store,
		WithRejectedFile("IMG_0012.jpg", "corrupt"),
		WithRejectedFile("IMG_0015.jpg", "corrupt"),
		WithRejectedFile("IMG_0019.jpg", "corrupt"),
	)
	recorder := &notifications.Recorder{}
	ctrl := NewController(storage, eventID, WithChunkSize(10), WithNotifier(recorder), WithTenantID("studio"))
	if _, err := ctrl.Add(files(25, 100)...); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	report, err := ctrl.Start(ctx)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if report.Uploaded != 22 || len(report.Failures) != 3 {
		t.Fatalf("expected 22 uploaded and 3 failed, got %d and %d", report.Uploaded, len(report.Failures))
	}
	if report.State != StateCompleted || !report.PartiallyFailed() {
		t.Fatalf("expected completed with failures, got %+v", report)
	}
	if got := len(storage.Requests()); got != 3 {
		t.Fatalf("expected 3 chunk requests, got %d", got)
	}
	if len(recorder.Uploaded) != 1 || recorder.Uploaded[0].Uploaded != 22 || recorder.Uploaded[0].Failed != 3 {
		t.Fatalf("expected one notice for 22 uploads, got %+v", recorder.Uploaded)
	}
	if !report.Notified {
		t.Fatalf("report should record the notice")
	}
	stored, err := store.ListImages(ctx, eventID)
	if err != nil {
		t.Fatalf("ListImages() error = %v", err)
	}
	if len(stored) != 22 {
		t.Fatalf("expected 22 stored images, got %d", len(stored))
	}
}

func TestChunkTransportFailureFailsWholeChunk(t *testing.T) {
	store, eventID := newStore(t)
	storage := NewMemoryStorage(store, WithFailingChunk(2, errors.New("connection reset")))
	ctrl := NewController(storage, eventID, WithChunkSize(10))
	_, _ = ctrl.Add(files(25, 10)...)

	report, err := ctrl.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if report.Uploaded != 15 || len(report.Failures) != 10 {
		t.Fatalf("expected 15 uploaded and 10 failed, got %d and %d", report.Uploaded, len(report.Failures))
	}
	for _, failure := range report.Failures {
		if failure.Reason != "connection reset" {
			t.Fatalf("unexpected failure reason %q", failure.Reason)
		}
	}
}

func TestQuotaRejectionSendsNothing(t *testing.T) {
	store, eventID := newStore(t)
	storage := NewMemoryStorage(store, WithQuota("starter", 1<<30, 900<<20))
	recorder := &notifications.Recorder{}
	ctrl := NewController(storage, eventID, WithNotifier(recorder))
	_, _ = ctrl.Add(memFile{name: "video-still.tiff", size: 500 << 20})

	report, err := ctrl.Start(context.Background())
	if report != nil {
		t.Fatalf("expected no report, got %+v", report)
	}
	var quota *QuotaExceededError
	if !errors.As(err, &quota) || !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}
	if quota.Stats == nil || quota.Stats.PlanName != "starter" {
		t.Fatalf("expected plan info, got %+v", quota.Stats)
	}
	if quota.AvailableBytes() != (1<<30)-(900<<20) {
		t.Fatalf("unexpected available bytes %d", quota.AvailableBytes())
	}
	if len(storage.Requests()) != 0 {
		t.Fatalf("no chunk may be sent after a rejection")
	}
	if ctrl.State() != StateRejected {
		t.Fatalf("expected rejected, got %s", ctrl.State())
	}
	if len(recorder.Uploaded) != 0 {
		t.Fatalf("no notice expected")
	}
}

func TestCancelStopsBeforeNextChunk(t *testing.T) {
	store, eventID := newStore(t)
	recorder := &notifications.Recorder{}
	previews := NewPreviews(nil)
	storage := &hookStorage{StorageAPI: NewMemoryStorage(store)}
	ctrl := NewController(storage, eventID, WithChunkSize(10), WithNotifier(recorder), WithPreviews(previews))
	storage.before = func(n int) {
		if n == 2 {
			ctrl.Cancel()
		}
	}
	_, _ = ctrl.Add(files(25, 10)...)

	report, err := ctrl.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !report.Aborted() {
		t.Fatalf("expected aborted, got %s", report.State)
	}
	if report.Uploaded != 10 || len(report.Failures) != 0 || report.Untouched() != 15 {
		t.Fatalf("expected 10 uploaded, 0 failed, 15 untouched; got %+v", report)
	}
	if storage.chunks != 2 {
		t.Fatalf("expected the third chunk never to be sent, got %d requests", storage.chunks)
	}
	if len(recorder.Uploaded) != 1 || !recorder.Uploaded[0].Aborted || recorder.Uploaded[0].Uploaded != 10 {
		t.Fatalf("unexpected notices %+v", recorder.Uploaded)
	}
	if previews.Outstanding() != 0 || previews.DoubleRevokes() != 0 {
		t.Fatalf("previews leaked or double revoked: outstanding=%d double=%d", previews.Outstanding(), previews.DoubleRevokes())
	}
	for _, item := range ctrl.Items() {
		if item.Status == ItemFailed {
			t.Fatalf("cancelled items must stay queued, %s failed", item.File.Name())
		}
	}
}

func TestCancelBeforeAnySuccessSkipsNotice(t *testing.T) {
	store, eventID := newStore(t)
	recorder := &notifications.Recorder{}
	storage := &hookStorage{StorageAPI: NewMemoryStorage(store)}
	ctrl := NewController(storage, eventID, WithNotifier(recorder))
	storage.before = func(int) { ctrl.Cancel() }
	_, _ = ctrl.Add(files(3, 1)...)

	report, err := ctrl.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !report.Aborted() || report.Uploaded != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(recorder.Uploaded) != 0 {
		t.Fatalf("no notice expected without uploads")
	}
}

func TestParentContextCancellationAborts(t *testing.T) {
	store, eventID := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	storage := &hookStorage{StorageAPI: NewMemoryStorage(store), before: func(n int) {
		if n == 1 {
			cancel()
		}
	}}
	ctrl := NewController(storage, eventID, WithChunkSize(2))
	_, _ = ctrl.Add(files(4, 1)...)

	report, err := ctrl.Start(ctx)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !report.Aborted() || report.Uploaded != 0 || report.Untouched() != 4 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestNotifierFailureDoesNotFailBatch(t *testing.T) {
	store, eventID := newStore(t)
	recorder := &notifications.Recorder{Err: errors.New("queue full")}
	ctrl := NewController(NewMemoryStorage(store), eventID, WithNotifier(recorder))
	_, _ = ctrl.Add(files(2, 1)...)

	report, err := ctrl.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if report.Uploaded != 2 || report.Notified {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestStartRequiresQueuedFiles(t *testing.T) {
	store, eventID := newStore(t)
	ctrl := NewController(NewMemoryStorage(store), eventID)
	if _, err := ctrl.Start(context.Background()); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
	if ctrl.State() != StateIdle {
		t.Fatalf("expected idle, got %s", ctrl.State())
	}
}

func TestRetryRequeuesFailedItems(t *testing.T) {
	store, eventID := newStore(t)
	storage := NewMemoryStorage(store, WithFailingChunk(1, errors.New("timeout")))
	ctrl := NewController(storage, eventID, WithChunkSize(5))
	_, _ = ctrl.Add(files(3, 1)...)

	first, err := ctrl.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if first.Uploaded != 0 || len(first.Failures) != 3 {
		t.Fatalf("unexpected first report %+v", first)
	}
	requeued, err := ctrl.Retry()
	if err != nil || requeued != 3 {
		t.Fatalf("Retry() = %d, %v", requeued, err)
	}
	second, err := ctrl.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if second.Uploaded != 3 || len(second.Failures) != 0 || second.PartiallyFailed() {
		t.Fatalf("unexpected second report %+v", second)
	}
}

func TestPreviewLifecycle(t *testing.T) {
	store, eventID := newStore(t)
	previews := NewPreviews(nil)
	storage := NewMemoryStorage(store, WithRejectedFile("IMG_0003.jpg", "bad header"))
	ctrl := NewController(storage, eventID, WithPreviews(previews), WithChunkSize(2))

	added, err := ctrl.Add(files(5, 1)...)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if previews.Outstanding() != 5 {
		t.Fatalf("expected 5 previews, got %d", previews.Outstanding())
	}
	if err := ctrl.Remove(added[4].ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if previews.Outstanding() != 4 {
		t.Fatalf("expected removal to revoke, got %d outstanding", previews.Outstanding())
	}
	if _, err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	// Only the rejected file keeps its preview until the session ends.
	if previews.Outstanding() != 1 {
		t.Fatalf("expected 1 outstanding preview, got %d", previews.Outstanding())
	}
	ctrl.Close()
	if previews.Outstanding() != 0 || previews.DoubleRevokes() != 0 || previews.Created() != 5 {
		t.Fatalf("outstanding=%d double=%d created=%d", previews.Outstanding(), previews.DoubleRevokes(), previews.Created())
	}
	if _, err := ctrl.Add(files(1, 1)...); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestRemoveUnknownItem(t *testing.T) {
	store, eventID := newStore(t)
	ctrl := NewController(NewMemoryStorage(store), eventID)
	if err := ctrl.Remove(uuid.New()); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestProgressCounts(t *testing.T) {
	store, eventID := newStore(t)
	ctrl := NewController(NewMemoryStorage(store, WithRejectedFile("IMG_0001.jpg", "nope")), eventID, WithChunkSize(2))
	_, _ = ctrl.Add(files(3, 4)...)
	if p := ctrl.Progress(); p.Queued != 3 || p.BytesTotal != 12 || p.Percent() != 0 {
		t.Fatalf("unexpected progress %+v", p)
	}
	if _, err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	p := ctrl.Progress()
	if p.Uploaded != 2 || p.Failed != 1 || p.Chunks != 2 || p.ChunksDone != 2 || p.Percent() != 100 || p.BytesUploaded != 8 {
		t.Fatalf("unexpected progress %+v", p)
	}
}

func TestMetricsRecordBatch(t *testing.T) {
	store, eventID := newStore(t)
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics("albums", reg)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	if again, err := NewMetrics("albums", reg); err != nil || again == nil {
		t.Fatalf("re-registering should reuse collectors, got %v", err)
	}
	storage := NewMemoryStorage(store, WithRejectedFile("IMG_0002.jpg", "nope"))
	ctrl := NewController(storage, eventID, WithMetrics(metrics), WithChunkSize(2))
	_, _ = ctrl.Add(files(3, 1)...)
	if _, err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	values := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			key := family.GetName()
			for _, label := range metric.GetLabel() {
				key += ":" + label.GetValue()
			}
			if counter := metric.GetCounter(); counter != nil {
				values[key] = counter.GetValue()
			}
		}
	}
	expect := map[string]float64{
		"albums_upload_items_total:uploaded":    2,
		"albums_upload_items_total:failed":      1,
		"albums_upload_chunks_total:ok":         2,
		"albums_upload_batches_total:completed": 1,
	}
	for key, want := range expect {
		if values[key] != want {
			t.Fatalf("%s = %v, want %v (all: %v)", key, values[key], want, values)
		}
	}
}

func TestRetryReportCountsOnlyTheRerun(t *testing.T) {
	store, eventID := newStore(t)
	recorder := &notifications.Recorder{}
	storage := NewMemoryStorage(store, WithFailingChunk(2, errors.New("connection reset")))
	ctrl := NewController(storage, eventID, WithChunkSize(10), WithNotifier(recorder))
	_, _ = ctrl.Add(files(25, 1)...)

	first, err := ctrl.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if first.Uploaded != 15 || len(first.Failures) != 10 {
		t.Fatalf("unexpected first report %+v", first)
	}
	if _, err := ctrl.Retry(); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	second, err := ctrl.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if second.Total != 10 || second.Uploaded != 10 || len(second.Failures) != 0 {
		t.Fatalf("expected the rerun to account for 10 items, got %+v", second)
	}
	if len(recorder.Uploaded) != 2 {
		t.Fatalf("expected one notice per run, got %+v", recorder.Uploaded)
	}
	if got := recorder.Uploaded[1].Uploaded; got != 10 {
		t.Fatalf("expected the second notice to count 10 uploads, got %d", got)
	}
	if progress := ctrl.Progress(); progress.Uploaded != 25 {
		t.Fatalf("session progress should still cover every item, got %+v", progress)
	}
}

// rejectingStorage cancels the session while the quota check is in flight and
// then refuses the batch.
type rejectingStorage struct {
	interfaces.StorageAPI
	onCheck func()
}

func (s *rejectingStorage) CheckUploadQuota(ctx context.Context, tenantID string, bytes int64) (*interfaces.QuotaCheck, error) {
	if s.onCheck != nil {
		s.onCheck()
	}
	return &interfaces.QuotaCheck{CanUpload: false}, nil
}

func TestQuotaRejectionSurvivesConcurrentCancel(t *testing.T) {
	store, eventID := newStore(t)
	storage := &rejectingStorage{StorageAPI: NewMemoryStorage(store)}
	ctrl := NewController(storage, eventID)
	storage.onCheck = ctrl.Cancel
	_, _ = ctrl.Add(files(2, 1)...)

	report, err := ctrl.Start(context.Background())
	if report != nil {
		t.Fatalf("expected no report, got %+v", report)
	}
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if ctrl.State() != StateRejected {
		t.Fatalf("expected rejected, got %s", ctrl.State())
	}
}

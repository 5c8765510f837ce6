package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-albums/internal/images"
	"github.com/goliatone/go-albums/pkg/interfaces"
)

// ImageSink records images once their bytes are stored.
type ImageSink interface {
	AddImage(ctx context.Context, input images.NewImage) (interfaces.ImageRecord, error)
}

// MemoryStorageOption configures MemoryStorage.
type MemoryStorageOption func(*MemoryStorage)

// WithQuota sets the plan name, capacity and current usage.
func WithQuota(plan string, limitBytes, usedBytes int64) MemoryStorageOption {
	return func(s *MemoryStorage) {
		s.plan = plan
		s.limit = limitBytes
		s.used = usedBytes
	}
}

// WithBaseURL prefixes the urls of stored images.
func WithBaseURL(base string) MemoryStorageOption {
	return func(s *MemoryStorage) {
		s.baseURL = strings.TrimRight(base, "/")
	}
}

// WithRejectedFile makes every upload of fileName fail with reason.
func WithRejectedFile(fileName, reason string) MemoryStorageOption {
	return func(s *MemoryStorage) {
		s.rejected[fileName] = reason
	}
}

// WithFailingChunk makes the n-th chunk request (1-based) fail with err.
func WithFailingChunk(n int, err error) MemoryStorageOption {
	return func(s *MemoryStorage) {
		s.failing[n] = err
	}
}

// WithLatency delays every chunk request, honouring cancellation.
func WithLatency(d time.Duration) MemoryStorageOption {
	return func(s *MemoryStorage) {
		s.latency = d
	}
}

// MemoryStorage is an in-process StorageAPI. Stored files are read fully and
// recorded through the sink.
type MemoryStorage struct {
	mu       sync.Mutex
	sink     ImageSink
	plan     string
	limit    int64
	used     int64
	stored   int
	baseURL  string
	rejected map[string]string
	failing  map[int]error
	latency  time.Duration
	requests []interfaces.UploadBatchRequest
	checks   int
}

var _ interfaces.StorageAPI = (*MemoryStorage)(nil)

// NewMemoryStorage builds an unlimited store unless WithQuota is given.
func NewMemoryStorage(sink ImageSink, opts ...MemoryStorageOption) *MemoryStorage {
	s := &MemoryStorage{
		sink:     sink,
		plan:     "unlimited",
		baseURL:  "memory://albums",
		rejected: make(map[string]string),
		failing:  make(map[int]error),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStorage) CheckUploadQuota(_ context.Context, _ string, totalBytes int64) (*interfaces.QuotaCheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks++
	return &interfaces.QuotaCheck{
		CanUpload:      s.limit <= 0 || s.used+totalBytes <= s.limit,
		RequestedBytes: totalBytes,
		UsedBytes:      s.used,
		LimitBytes:     s.limit,
	}, nil
}

func (s *MemoryStorage) GetStorageStats(_ context.Context, _ string) (*interfaces.StorageStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &interfaces.StorageStats{
		PlanName:   s.plan,
		UsedBytes:  s.used,
		LimitBytes: s.limit,
		ImageCount: s.stored,
	}, nil
}

func (s *MemoryStorage) UploadImageBatch(ctx context.Context, req interfaces.UploadBatchRequest) (*interfaces.UploadBatchResult, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	number := len(s.requests)
	failure := s.failing[number]
	s.mu.Unlock()

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failure != nil {
		return nil, failure
	}

	result := &interfaces.UploadBatchResult{}
	for _, part := range req.Parts {
		if err := s.store(ctx, req, part); err != nil {
			result.Failed = append(result.Failed, interfaces.FileResult{FileName: part.File.Name(), Message: err.Error()})
			continue
		}
		result.Successful++
	}
	return result, nil
}

func (s *MemoryStorage) store(ctx context.Context, req interfaces.UploadBatchRequest, part interfaces.UploadPart) error {
	s.mu.Lock()
	reason, rejected := s.rejected[part.File.Name()]
	s.mu.Unlock()
	if rejected {
		return errors.New(reason)
	}

	reader, err := part.File.Open()
	if err != nil {
		return err
	}
	size, err := io.Copy(io.Discard, reader)
	reader.Close()
	if err != nil {
		return err
	}

	if s.sink != nil {
		if _, err := s.sink.AddImage(ctx, images.NewImage{
			ID:         part.ItemID,
			EventID:    req.EventID,
			FileName:   part.File.Name(),
			StorageKey: part.Key,
			URL:        s.baseURL + "/" + part.Key,
			Size:       size,
		}); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.used += size
	s.stored++
	s.mu.Unlock()
	return nil
}

// Requests returns every chunk request received.
func (s *MemoryStorage) Requests() []interfaces.UploadBatchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]interfaces.UploadBatchRequest(nil), s.requests...)
}

// QuotaChecks counts precheck calls.
func (s *MemoryStorage) QuotaChecks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checks
}

package noop_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-albums/internal/adapters/noop"
	"github.com/goliatone/go-albums/pkg/interfaces"
)

func TestAdaptersImplementInterfaces(t *testing.T) {
	var (
		_ interfaces.CacheProvider = noop.Cache()
		_ interfaces.Notifier      = noop.Notifier()
		_ interfaces.StorageAPI    = noop.Storage()
	)
}

func TestStorageAcceptsEveryPart(t *testing.T) {
	storage := noop.Storage()
	check, err := storage.CheckUploadQuota(context.Background(), "tenant", 1<<40)
	if err != nil || !check.CanUpload {
		t.Fatalf("expected unlimited quota, got %+v (%v)", check, err)
	}
	result, err := storage.UploadImageBatch(context.Background(), interfaces.UploadBatchRequest{Parts: make([]interfaces.UploadPart, 3)})
	if err != nil {
		t.Fatalf("UploadImageBatch() error = %v", err)
	}
	if result.Successful != 3 || len(result.Failed) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestStorageHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := noop.Storage().UploadImageBatch(ctx, interfaces.UploadBatchRequest{}); err == nil {
		t.Fatal("expected context error")
	}
}

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	albums "github.com/goliatone/go-albums"
	"github.com/goliatone/go-albums/internal/delivery"
	"github.com/goliatone/go-albums/internal/upload"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCatalogCommandListsStatuses(t *testing.T) {
	out, err := runCommand(t, "catalog")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	for _, want := range []string{"UPLOADED", "PUBLISHED", "RE_EDIT_SUGGESTED", "CLIENT_SELECTED"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTransitionCommand(t *testing.T) {
	out, err := runCommand(t, "transition", "none", "uploaded")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if !strings.Contains(out, "allowed: NONE -> UPLOADED") {
		t.Fatalf("unexpected output %q", out)
	}

	_, err = runCommand(t, "transition", "uploaded", "published")
	if !errors.Is(err, delivery.ErrSequenceViolation) {
		t.Fatalf("expected ErrSequenceViolation, got %v", err)
	}

	_, err = runCommand(t, "transition", "none", "archived")
	if !errors.Is(err, delivery.ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestSimulateUploadReportsRejectedFiles(t *testing.T) {
	out, err := runCommand(t, "simulate-upload", "--files", "25", "--chunk-size", "10", "--reject", "3")
	if err != nil {
		t.Fatalf("simulate-upload: %v", err)
	}
	if !strings.Contains(out, "partially-failed") && !strings.Contains(out, "completed") {
		t.Fatalf("expected a final state in output:\n%s", out)
	}
	for _, want := range []string{"IMG_0023.jpg", "IMG_0025.jpg", "rejected by storage"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSimulateUploadCancelLeavesUntouchedFiles(t *testing.T) {
	out, err := runCommand(t, "simulate-upload", "--files", "25", "--chunk-size", "10", "--cancel-after", "1")
	if err != nil {
		t.Fatalf("simulate-upload: %v", err)
	}
	if !strings.Contains(out, string(upload.StateAborted)) {
		t.Fatalf("expected aborted state in output:\n%s", out)
	}
}

func TestSimulateUploadQuotaRejection(t *testing.T) {
	_, err := runCommand(t, "simulate-upload", "--files", "5", "--size", "100", "--quota", "200")
	if !errors.Is(err, upload.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albums.yaml")
	content := "tenant_id: studio\nupload:\n  chunk_size: 4\nfeatures:\n  previews: false\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.TenantID != "studio" || cfg.Upload.ChunkSize != 4 || cfg.Features.Previews {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Upload.MetricsNamespace != "albums" {
		t.Fatalf("expected defaults kept, got %q", cfg.Upload.MetricsNamespace)
	}
}

func TestConfigFileValidationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albums.yaml")
	if err := os.WriteFile(path, []byte("upload:\n  chunk_size: -1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := loadConfig(path); !errors.Is(err, albums.ErrUploadChunkSizeInvalid) {
		t.Fatalf("expected ErrUploadChunkSizeInvalid, got %v", err)
	}
}

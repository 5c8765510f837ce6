package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/google/uuid"
)

type capturedEntry struct {
	level string
	msg   string
}

type captureLogger struct {
	entries []capturedEntry
}

func (l *captureLogger) Trace(msg string, _ ...any) {
	l.entries = append(l.entries, capturedEntry{"trace", msg})
}
func (l *captureLogger) Debug(msg string, _ ...any) {
	l.entries = append(l.entries, capturedEntry{"debug", msg})
}
func (l *captureLogger) Info(msg string, _ ...any) {
	l.entries = append(l.entries, capturedEntry{"info", msg})
}
func (l *captureLogger) Warn(msg string, _ ...any) {
	l.entries = append(l.entries, capturedEntry{"warn", msg})
}
func (l *captureLogger) Error(msg string, _ ...any) {
	l.entries = append(l.entries, capturedEntry{"error", msg})
}
func (l *captureLogger) Fatal(msg string, _ ...any) {
	l.entries = append(l.entries, capturedEntry{"fatal", msg})
}
func (l *captureLogger) WithContext(context.Context) interfaces.Logger {
	return l
}

func TestBestEffortSwallowsFailures(t *testing.T) {
	recorder := &Recorder{Err: errors.New("smtp down")}
	logger := &captureLogger{}
	notifier := NewBestEffort(recorder, logger)
	ctx := context.Background()
	eventID := uuid.New()

	if notifier.ImagesUploaded(ctx, interfaces.ImagesUploadedNotice{EventID: eventID, Uploaded: 3}) {
		t.Fatalf("expected failed delivery to report false")
	}
	if notifier.ReEditRequested(ctx, interfaces.ReEditRequestedNotice{EventID: eventID}) {
		t.Fatalf("expected failed delivery to report false")
	}
	if notifier.EventPublished(ctx, interfaces.EventPublishedNotice{EventID: eventID}) {
		t.Fatalf("expected failed delivery to report false")
	}

	if len(recorder.Uploaded) != 1 || len(recorder.ReEdits) != 1 || len(recorder.Published) != 1 {
		t.Fatalf("expected each notice attempted once, got %+v", recorder)
	}
	warnings := 0
	for _, entry := range logger.entries {
		if entry.level == "warn" {
			warnings++
		}
	}
	if warnings != 3 {
		t.Fatalf("expected 3 warnings, got %d (%+v)", warnings, logger.entries)
	}
}

func TestBestEffortDelivers(t *testing.T) {
	recorder := &Recorder{}
	notifier := NewBestEffort(recorder, nil)
	if !notifier.ImagesUploaded(context.Background(), interfaces.ImagesUploadedNotice{Uploaded: 22}) {
		t.Fatalf("expected delivery")
	}
	if recorder.Uploaded[0].Uploaded != 22 {
		t.Fatalf("unexpected notice %+v", recorder.Uploaded[0])
	}
}

func TestNilNotifierDropsNotices(t *testing.T) {
	notifier := NewBestEffort(nil, nil)
	if notifier.EventPublished(context.Background(), interfaces.EventPublishedNotice{}) {
		t.Fatalf("expected nil notifier to drop notice")
	}
	var missing *BestEffort
	if missing.ImagesUploaded(context.Background(), interfaces.ImagesUploadedNotice{}) {
		t.Fatalf("expected nil wrapper to drop notice")
	}
}

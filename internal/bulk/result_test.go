package bulk

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResultOutcome(t *testing.T) {
	cases := []struct {
		name   string
		result Result
		want   Outcome
	}{
		{"all succeeded", Result{Action: ActionApprove, SuccessCount: 3}, OutcomeSuccess},
		{"mixed", Result{Action: ActionApprove, SuccessCount: 2, Failures: []Failure{{Identifier: "c.jpg", Reason: "timeout"}}}, OutcomePartial},
		{"nothing succeeded", Result{Action: ActionApprove, Failures: []Failure{{Identifier: "c.jpg", Reason: "timeout"}}}, OutcomeFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.result.Outcome(); got != tc.want {
				t.Fatalf("Outcome() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestResultSummary(t *testing.T) {
	partial := Result{Action: ActionReupload, SuccessCount: 2, Failures: []Failure{{Identifier: "c.jpg", Reason: "too large"}}}
	if got, want := partial.Summary(), "2 of 3 images re-uploaded; 1 failed: c.jpg: too large"; got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}
	failure := Result{Action: ActionSetCover, Failures: []Failure{{Reason: "cover service unavailable"}}}
	if got := failure.Summary(); got != "cover service unavailable" {
		t.Fatalf("Summary() = %q", got)
	}
}

func TestChannelConfirmer(t *testing.T) {
	confirmer := NewChannelConfirmer()
	go func() {
		req := <-confirmer.Requests()
		req.Respond(req.Prompt.Count == 2)
	}()
	ok, err := confirmer.Confirm(context.Background(), Prompt{Action: ActionApprove, Count: 2})
	if err != nil || !ok {
		t.Fatalf("Confirm() = %v, %v", ok, err)
	}
}

func TestChannelConfirmerHonoursContext(t *testing.T) {
	confirmer := NewChannelConfirmer()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := confirmer.Confirm(ctx, Prompt{Action: ActionApprove}); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestClosestName(t *testing.T) {
	candidates := []string{"IMG_0001.jpg", "portrait.png"}
	if got := closestName("IMG_0007.jpg", candidates); got != "IMG_0001.jpg" {
		t.Fatalf("closestName() = %q", got)
	}
	if got := closestName("landscape-final.tiff", candidates); got != "" {
		t.Fatalf("expected no hint, got %q", got)
	}
}

package bulk

import (
	"fmt"
	"strings"
)

// Action names a bulk operation.
type Action string

const (
	ActionApprove           Action = "approve"
	ActionRequestReEdit     Action = "request_re_edit"
	ActionReupload          Action = "reupload"
	ActionSetCover          Action = "set_cover"
	ActionApproveAndPublish Action = "approve_and_publish"
)

func (a Action) verb() string {
	switch a {
	case ActionApprove, ActionApproveAndPublish:
		return "approved"
	case ActionRequestReEdit:
		return "sent back for re-edit"
	case ActionReupload:
		return "re-uploaded"
	case ActionSetCover:
		return "set as cover"
	default:
		return "updated"
	}
}

// Outcome classifies a finished bulk action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailure Outcome = "failure"
)

// Failure is one item that did not complete.
type Failure struct {
	Identifier string
	Reason     string
}

// Result aggregates a best-effort bulk action. Partial success is a normal
// result, not an error. Failures are per image; PublishError carries a failed
// publish after approve-and-publish so it never counts as an image.
type Result struct {
	Action       Action
	SuccessCount int
	Failures     []Failure
	Published    bool
	PublishError string
}

// Outcome is success with no failures, partial with both successes and
// failures, and failure when nothing succeeded.
func (r Result) Outcome() Outcome {
	switch {
	case len(r.Failures) == 0 && r.PublishError == "":
		return OutcomeSuccess
	case r.SuccessCount > 0:
		return OutcomePartial
	default:
		return OutcomeFailure
	}
}

// Summary renders the message shown to the operator: a success toast, a partial
// warning or the first actionable error.
func (r Result) Summary() string {
	switch r.Outcome() {
	case OutcomeSuccess:
		msg := fmt.Sprintf("%s %s", pluralImages(r.SuccessCount), r.Action.verb())
		if r.Published {
			msg += " and event published"
		}
		return msg
	case OutcomePartial:
		var msg string
		if len(r.Failures) == 0 {
			msg = fmt.Sprintf("%s %s", pluralImages(r.SuccessCount), r.Action.verb())
		} else {
			msg = fmt.Sprintf("%d of %d images %s; %d failed: %s",
				r.SuccessCount, r.SuccessCount+len(r.Failures), r.Action.verb(), len(r.Failures), r.Failures[0].describe())
		}
		return msg + r.publishSuffix()
	default:
		if len(r.Failures) == 0 {
			return "publish failed: " + r.PublishError
		}
		return r.Failures[0].describe() + r.publishSuffix()
	}
}

func (r Result) publishSuffix() string {
	if r.PublishError == "" {
		return ""
	}
	return "; publish failed: " + r.PublishError
}

func (f Failure) describe() string {
	if strings.TrimSpace(f.Identifier) == "" {
		return f.Reason
	}
	return f.Identifier + ": " + f.Reason
}

func (r *Result) fail(identifier, reason string) {
	r.Failures = append(r.Failures, Failure{Identifier: identifier, Reason: reason})
}

func pluralImages(n int) string {
	if n == 1 {
		return "1 image"
	}
	return fmt.Sprintf("%d images", n)
}

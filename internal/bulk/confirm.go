package bulk

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled is returned when the operator declines a confirmation.
var ErrCancelled = errors.New("bulk: action cancelled")

// Prompt describes what the operator is asked to confirm.
type Prompt struct {
	Action  Action
	Count   int
	Message string
}

// Confirmer asks the operator to confirm an action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

// ConfirmFunc adapts a function into a Confirmer.
type ConfirmFunc func(ctx context.Context, prompt Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt Prompt) (bool, error) {
	return f(ctx, prompt)
}

// Request is a pending confirmation handed to a modal component.
type Request struct {
	Prompt Prompt
	reply  chan bool
}

// Respond answers the request. Only the first answer counts.
func (r Request) Respond(accepted bool) {
	select {
	case r.reply <- accepted:
	default:
	}
}

// ChannelConfirmer passes prompts to a modal component over a channel and waits
// for its answer.
type ChannelConfirmer struct {
	requests chan Request
}

// NewChannelConfirmer creates a confirmer whose requests are read from Requests.
func NewChannelConfirmer() *ChannelConfirmer {
	return &ChannelConfirmer{requests: make(chan Request)}
}

// Requests is read by the component presenting prompts.
func (c *ChannelConfirmer) Requests() <-chan Request {
	return c.requests
}

func (c *ChannelConfirmer) Confirm(ctx context.Context, prompt Prompt) (bool, error) {
	req := Request{Prompt: prompt, reply: make(chan bool, 1)}
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return false, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}
	select {
	case accepted := <-req.reply:
		return accepted, nil
	case <-ctx.Done():
		return false, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}
}

package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeValidation tags malformed messages and rejected selections.
	TextCodeValidation = "VALIDATION_ERROR"

	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"
)

// Rejection tags a precondition failure that was detected before any mutation.
// Handlers return it so callers can branch on the text code.
func Rejection(err error, textCode, message string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, message).WithTextCode(textCode)
}

// wrapValidationError tags message validation failures with TextCodeValidation,
// including errors go-command already wrapped under its own code.
func wrapValidationError(err error) error {
	var tagged *goerrors.Error
	if errors.As(err, &tagged) {
		tagged.TextCode = TextCodeValidation
		return err
	}
	return Rejection(err, TextCodeValidation, "command validation failed")
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	if IsContextError(err) {
		return wrapContextError(err)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(commandExecuteFailed)
}

// TextCode returns the text code attached by the command layer, if any.
func TextCode(err error) string {
	var tagged *goerrors.Error
	if errors.As(err, &tagged) {
		return tagged.TextCode
	}
	return ""
}

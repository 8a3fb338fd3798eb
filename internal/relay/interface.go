package relay

import (
	"context"

	"telegram-task-relay/internal/model"
)

// UseCase correlates chat prompts with asynchronous task-execution callbacks.
type UseCase interface {
	// Dispatch stores the pending context and forwards the prompt to the task-execution service.
	Dispatch(ctx context.Context, input DispatchInput) (DispatchOutput, error)

	// Resolve reads and removes the pending context for requestID in one step.
	// A miss returns ErrUnknownRequest.
	Resolve(ctx context.Context, requestID string) (model.PendingRequest, error)

	// HandleCallback formats and delivers a callback payload. The only error it returns is
	// ErrMissingRequestID; every processing outcome is reported through CallbackOutput.
	HandleCallback(ctx context.Context, input CallbackInput) (CallbackOutput, error)

	// Deliver sends text to a chat using the voice and markup fallbacks.
	Deliver(ctx context.Context, input DeliverInput) error
}

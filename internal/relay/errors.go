package relay

import "errors"

// Domain-specific errors for the relay package.
var (
	ErrUnauthorized     = errors.New("invalid or missing callback secret")
	ErrMissingRequestID = errors.New("requestId is required")
	ErrUnknownRequest   = errors.New("no pending request for this id")
	ErrEmptyPrompt      = errors.New("prompt is empty")
	ErrInvalidChatID    = errors.New("chat id is required")
	ErrDispatchFailed   = errors.New("failed to dispatch task")
	ErrDeliveryFailed   = errors.New("response could not be delivered")
)

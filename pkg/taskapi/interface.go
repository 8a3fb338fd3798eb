package taskapi

import "context"

// Dispatcher hands a prompt to the task-execution service. The service answers later by
// POSTing to the callback URL with the same request ID.
type Dispatcher interface {
	Dispatch(ctx context.Context, req DispatchRequest) error
}

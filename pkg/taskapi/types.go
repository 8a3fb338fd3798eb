package taskapi

const (
	DefaultMaxIterations = 25

	TransportHTTP  = "http"
	TransportKafka = "kafka"
)

// DispatchRequest is the body sent to the task-execution service.
type DispatchRequest struct {
	Repository    string `json:"repository"`
	Branch        string `json:"branch,omitempty"`
	Prompt        string `json:"prompt"`
	MaxIterations int    `json:"maxIterations"`
	RequestID     string `json:"requestId"`
	CallbackURL   string `json:"callbackUrl,omitempty"`
}

// DispatchResponse is the synchronous acknowledgement of a dispatch.
type DispatchResponse struct {
	Accepted  bool   `json:"accepted"`
	RequestID string `json:"requestId,omitempty"`
	Message   string `json:"message,omitempty"`
}

package relay

// DispatchInput describes one prompt forwarded from a chat.
type DispatchInput struct {
	ChatID            int64
	ReplyToMessageID  int64
	Prompt            string
	OriginalWasSpeech bool
}

// DispatchOutput is the result of Dispatch.
type DispatchOutput struct {
	RequestID  string
	Dispatched bool // false when the forward failed and the chat was told inline
}

// CallbackInput carries the raw callback body, already decoded from JSON.
type CallbackInput struct {
	Body map[string]interface{}
}

// CallbackStatus is the processing outcome of a callback. None of them are caller errors.
type CallbackStatus string

const (
	CallbackDelivered CallbackStatus = "delivered"
	CallbackUnknown   CallbackStatus = "unknown"
	CallbackFailed    CallbackStatus = "failed"
)

// CallbackOutput is returned for every well-formed callback.
type CallbackOutput struct {
	RequestID string
	Status    CallbackStatus
}

// DeliverInput is one outbound chat message.
type DeliverInput struct {
	ChatID            int64
	ReplyToMessageID  int64
	Text              string
	OriginalWasSpeech bool
}

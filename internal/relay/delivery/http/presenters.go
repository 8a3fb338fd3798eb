package http

import "telegram-task-relay/internal/relay"

type callbackResp struct {
	Received  bool   `json:"received"`
	RequestID string `json:"requestId"`
	Status    string `json:"status,omitempty"`
}

func newCallbackResp(out relay.CallbackOutput) callbackResp {
	return callbackResp{
		Received:  true,
		RequestID: out.RequestID,
		Status:    string(out.Status),
	}
}

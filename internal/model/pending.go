package model

import "time"

// PendingRequest is the context stored while a prompt is being executed downstream.
// It is written once before dispatch and consumed once when the callback arrives.
type PendingRequest struct {
	RequestID         string    `json:"requestId"`
	ChatID            int64     `json:"chatId"`
	ReplyToMessageID  int64     `json:"replyToMessageId,omitempty"` // 0 means no threading
	Prompt            string    `json:"prompt"`
	OriginalWasSpeech bool      `json:"originalWasSpeech"`
	CreatedAt         time.Time `json:"createdAt"`
}

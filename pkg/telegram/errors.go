package telegram

import (
	"errors"
	"fmt"
	"strings"
)

// RequestError is returned when the Bot API answers with a non-2xx status or ok=false.
type RequestError struct {
	Method      string
	StatusCode  int
	ErrorCode   int
	Description string
}

func (e *RequestError) Error() string {
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		desc = "request failed"
	}
	return fmt.Sprintf("telegram %s API error %d: %s", e.Method, e.StatusCode, desc)
}

// IsParseError reports whether err is Telegram rejecting the message markup.
func IsParseError(err error) bool {
	if err == nil {
		return false
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		desc := strings.ToLower(reqErr.Description)
		return strings.Contains(desc, "can't parse entities") || strings.Contains(desc, "can't parse entity")
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "can't parse entities") || strings.Contains(msg, "can't parse entity")
}

// IsReplyNotFound reports whether Telegram refused a reply because the original message is gone.
func IsReplyNotFound(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	desc := strings.ToLower(reqErr.Description)
	return strings.Contains(desc, "message to be replied not found") || strings.Contains(desc, "replied message not found")
}

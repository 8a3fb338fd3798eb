package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"telegram-task-relay/internal/relay"
)

const maxCallbackBody = 1 << 20

var errInvalidBody = errors.New("callback body must be a JSON object")

// authorize checks the shared secret, then the IP allowlist. The client IP comes from gin,
// which only reads forwarding headers set by trusted proxies.
func (h *handler) authorize(c *gin.Context) error {
	if err := h.security.ValidateRequest(c.Request); err != nil {
		return fmt.Errorf("%w: %w", relay.ErrUnauthorized, err)
	}
	if err := h.security.ValidateIP(c.ClientIP()); err != nil {
		return fmt.Errorf("%w: %w", relay.ErrUnauthorized, err)
	}
	return nil
}

// processCallbackReq decodes the body as a loose JSON object. Numbers are kept as
// json.Number so large values survive until normalization.
func (h *handler) processCallbackReq(c *gin.Context) (relay.CallbackInput, error) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		return relay.CallbackInput{}, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return relay.CallbackInput{Body: map[string]interface{}{}}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		return relay.CallbackInput{}, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return relay.CallbackInput{Body: body}, nil
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"telegram-task-relay/internal/relay"
	"telegram-task-relay/pkg/response"
)

// Callback godoc
// @Summary     Task-execution callback
// @Description Receives the result of a dispatched task and relays it to the originating chat.
// @Description Fields are accepted in camelCase or snake_case. Unknown or expired request IDs are acknowledged.
// @Tags        Relay
// @Accept      json
// @Produce     json
// @Param       X-Webhook-Secret  header string false "Shared secret"
// @Param       X-Callback-Secret header string false "Shared secret (alternate header)"
// @Param       secret            query  string false "Shared secret"
// @Param       body body object true "Callback payload"
// @Success     200 {object} callbackResp
// @Failure     400 {object} response.Resp "Missing requestId"
// @Failure     401 {object} response.Resp "Unauthorized"
// @Router      /callback [POST]
func (h *handler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.authorize(c); err != nil {
		h.l.Warnf(ctx, "relay.delivery.http.Callback: %v", err)
		response.Unauthorized(c)
		return
	}

	input, err := h.processCallbackReq(c)
	if err != nil {
		h.l.Warnf(ctx, "relay.delivery.http.Callback: %v", err)
		response.Error(c, err, nil)
		return
	}

	output, err := h.uc.HandleCallback(ctx, input)
	if err != nil {
		switch h.mapError(err) {
		case http.StatusBadRequest:
			h.l.Warnf(ctx, "relay.delivery.http.Callback: %v", err)
			response.Error(c, err, nil)
			return
		default:
			h.l.Errorf(ctx, "relay.delivery.http.Callback: uc.HandleCallback: %v", err)
			output = relay.CallbackOutput{RequestID: relay.ExtractRequestID(input.Body), Status: relay.CallbackFailed}
		}
	}

	response.Raw(c, newCallbackResp(output))
}

package telegram

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/gin-gonic/gin"

	"telegram-task-relay/internal/relay"
	pkgLog "telegram-task-relay/pkg/log"
	pkgResponse "telegram-task-relay/pkg/response"
	pkgTelegram "telegram-task-relay/pkg/telegram"
)

// HandleWebhook is the Gin handler for incoming Telegram webhook updates.
// It responds with HTTP 200 immediately and processes the update in a background goroutine,
// since Telegram expects an answer within seconds.
func (h *handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.validSecretToken(c.GetHeader(HeaderSecretToken)) {
		h.l.Warnf(ctx, "telegram handler: %v", errBadSecretToken)
		pkgResponse.Unauthorized(c)
		return
	}

	var update pkgTelegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to parse update: %v", err)
		pkgResponse.Error(c, err, nil)
		return
	}

	in, ok := classify(update)
	if !ok {
		pkgResponse.OK(c, map[string]string{"status": "ignored"})
		return
	}

	traceID := pkgLog.TraceID(ctx)
	go func() {
		// Detach from the request context, which is cancelled once we respond.
		bgCtx, cancel := context.WithTimeout(pkgLog.WithTraceID(context.Background(), traceID), h.cfg.ProcessTimeout)
		defer cancel()

		if err := h.process(bgCtx, in); err != nil {
			h.l.Errorf(bgCtx, "telegram handler: %s from chat %d: %v", in.kind, in.chatID, err)
			_ = h.bot.SendMessage(bgCtx, in.chatID, msgGenericFailure)
		}
	}()

	pkgResponse.OK(c, map[string]string{"status": "accepted"})
}

func (h *handler) validSecretToken(presented string) bool {
	if h.cfg.SecretToken == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(h.cfg.SecretToken)) == 1
}

// process routes one classified update.
func (h *handler) process(ctx context.Context, in inbound) error {
	if !h.chatAllowed(in.chatID) {
		h.l.Warnf(ctx, "telegram handler: ignoring chat %d (not in allowlist)", in.chatID)
		return nil
	}

	if in.callbackID != "" {
		if err := h.bot.AnswerCallbackQuery(ctx, in.callbackID, ""); err != nil {
			h.l.Warnf(ctx, "telegram handler: answerCallbackQuery: %v", err)
		}
	}

	if err := h.limiter.Allow(fmt.Sprintf("chat:%d", in.chatID)); err != nil {
		h.l.Warnf(ctx, "telegram handler: %v", err)
		return h.bot.SendMessage(ctx, in.chatID, msgRateLimited)
	}

	text := in.text
	if in.isSpeech() {
		transcript, reply, err := h.transcribe(ctx, in)
		if err != nil {
			h.l.Warnf(ctx, "telegram handler: transcription for chat %d failed: %v", in.chatID, err)
			return h.bot.SendMessage(ctx, in.chatID, reply)
		}
		text = transcript
	}

	if text == "" {
		return nil
	}

	if !in.isSpeech() {
		if handled, err := h.handleCommand(ctx, in, text); handled {
			return err
		}
	}

	if err := h.bot.SendMessage(ctx, in.chatID, msgWorking); err != nil {
		h.l.Warnf(ctx, "telegram handler: failed to send ack message: %v", err)
	}

	out, err := h.uc.Dispatch(ctx, relay.DispatchInput{
		ChatID:            in.chatID,
		ReplyToMessageID:  in.messageID,
		Prompt:            text,
		OriginalWasSpeech: in.isSpeech(),
	})
	if err != nil {
		return fmt.Errorf("uc.Dispatch: %w", err)
	}
	h.l.Infof(ctx, "telegram handler: chat %d -> %s (dispatched=%t)", in.chatID, out.RequestID, out.Dispatched)
	return nil
}

func (h *handler) chatAllowed(chatID int64) bool {
	if len(h.allowed) == 0 {
		return true
	}
	_, ok := h.allowed[chatID]
	return ok
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"telegram-task-relay/internal/model"
	"telegram-task-relay/internal/relay"
	"telegram-task-relay/pkg/taskapi"
	pkgTelegram "telegram-task-relay/pkg/telegram"
)

const (
	requestIDPrefix = "telegram"

	dispatchFailedMessage = "❌ Could not reach the task service. Please try again later."
)

// NewRequestID returns telegram-<unixMillis>-<8 hex chars>.
func NewRequestID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", requestIDPrefix, now.UnixMilli(), suffix)
}

func (uc *implUseCase) Dispatch(ctx context.Context, input relay.DispatchInput) (relay.DispatchOutput, error) {
	if input.ChatID == 0 {
		return relay.DispatchOutput{}, relay.ErrInvalidChatID
	}
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return relay.DispatchOutput{}, relay.ErrEmptyPrompt
	}

	now := uc.now()
	id := NewRequestID(now)
	pending := model.PendingRequest{
		RequestID:         id,
		ChatID:            input.ChatID,
		ReplyToMessageID:  input.ReplyToMessageID,
		Prompt:            prompt,
		OriginalWasSpeech: input.OriginalWasSpeech,
		CreatedAt:         now,
	}

	// Collisions overwrite the earlier entry.
	if err := uc.repo.Put(ctx, id, pending, uc.cfg.PendingTTL); err != nil {
		uc.l.Errorf(ctx, "relay.usecase.Dispatch: store pending %s for chat %d: %v", id, input.ChatID, err)
		uc.notify(ctx, input.ChatID, input.ReplyToMessageID, dispatchFailedMessage)
		return relay.DispatchOutput{RequestID: id}, nil
	}

	err := uc.dispatcher.Dispatch(ctx, taskapi.DispatchRequest{
		Branch:        uc.cfg.Branch,
		Prompt:        prompt,
		MaxIterations: uc.cfg.MaxIterations,
		RequestID:     id,
		CallbackURL:   uc.cfg.CallbackURL,
	})
	if err != nil {
		uc.l.Errorf(ctx, "relay.usecase.Dispatch: %v: %s: %v", relay.ErrDispatchFailed, id, err)
		if rmErr := uc.repo.Remove(ctx, id); rmErr != nil {
			uc.l.Warnf(ctx, "relay.usecase.Dispatch: remove orphaned %s: %v", id, rmErr)
		}
		uc.notify(ctx, input.ChatID, input.ReplyToMessageID, dispatchFailedMessage)
		return relay.DispatchOutput{RequestID: id}, nil
	}

	uc.l.Infof(ctx, "relay.usecase.Dispatch: dispatched %s for chat %d", id, input.ChatID)
	return relay.DispatchOutput{RequestID: id, Dispatched: true}, nil
}

func (uc *implUseCase) Resolve(ctx context.Context, requestID string) (model.PendingRequest, error) {
	pending, ok, err := uc.repo.Take(ctx, requestID)
	if err != nil {
		return model.PendingRequest{}, fmt.Errorf("resolve %s: %w", requestID, err)
	}
	if !ok {
		uc.l.Warnf(ctx, "relay.usecase.Resolve: %v: %s (duplicate or expired callback)", relay.ErrUnknownRequest, requestID)
		return model.PendingRequest{}, relay.ErrUnknownRequest
	}
	return pending, nil
}

// notify sends a plain-text notice and only logs on failure.
func (uc *implUseCase) notify(ctx context.Context, chatID, replyTo int64, text string) {
	err := uc.messenger.SendMessageWithOptions(ctx, chatID, text, pkgTelegram.SendOptions{ReplyToMessageID: replyTo})
	if err == nil {
		return
	}
	var reqErr *pkgTelegram.RequestError
	if errors.As(err, &reqErr) && replyTo != 0 {
		// The original message may be gone; retry unthreaded.
		if err = uc.messenger.SendMessageWithOptions(ctx, chatID, text, pkgTelegram.SendOptions{}); err == nil {
			return
		}
	}
	uc.l.Errorf(ctx, "relay.usecase.notify: chat %d: %v", chatID, err)
}

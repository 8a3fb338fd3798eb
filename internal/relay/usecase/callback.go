package usecase

import (
	"context"
	"errors"

	"telegram-task-relay/internal/model"
	"telegram-task-relay/internal/relay"
)

const (
	emptyResultMessage     = "✅ Task completed with no output."
	callbackFailureMessage = "⚠️ Something went wrong while processing the task result."
)

func (uc *implUseCase) HandleCallback(ctx context.Context, input relay.CallbackInput) (out relay.CallbackOutput, err error) {
	id := relay.ExtractRequestID(input.Body)
	if id == "" {
		return relay.CallbackOutput{}, relay.ErrMissingRequestID
	}
	out = relay.CallbackOutput{RequestID: id}

	pending, err := uc.Resolve(ctx, id)
	if errors.Is(err, relay.ErrUnknownRequest) {
		out.Status = relay.CallbackUnknown
		return out, nil
	}
	if err != nil {
		uc.l.Errorf(ctx, "relay.usecase.HandleCallback: %v", err)
		out.Status = relay.CallbackFailed
		return out, nil
	}

	defer func() {
		if r := recover(); r != nil {
			uc.l.Errorf(ctx, "relay.usecase.HandleCallback: panic processing %s: %v", id, r)
			uc.notify(ctx, pending.ChatID, pending.ReplyToMessageID, callbackFailureMessage)
			out.Status = relay.CallbackFailed
			err = nil
		}
	}()

	result := relay.NormalizeCallback(input.Body)
	text := uc.render(ctx, result)

	derr := uc.Deliver(ctx, relay.DeliverInput{
		ChatID:            pending.ChatID,
		ReplyToMessageID:  pending.ReplyToMessageID,
		Text:              text,
		OriginalWasSpeech: pending.OriginalWasSpeech,
	})
	if derr != nil {
		uc.l.Errorf(ctx, "relay.usecase.HandleCallback: deliver %s to chat %d: %v", id, pending.ChatID, derr)
		// Deliver already sent its own notice when the text chain failed.
		if !errors.Is(derr, relay.ErrDeliveryFailed) {
			uc.notify(ctx, pending.ChatID, pending.ReplyToMessageID, callbackFailureMessage)
		}
		out.Status = relay.CallbackFailed
		return out, nil
	}

	uc.l.Infof(ctx, "relay.usecase.HandleCallback: delivered %s to chat %d (success=%t)", id, pending.ChatID, result.Success)
	out.Status = relay.CallbackDelivered
	return out, nil
}

// render reads the debug flag at call time.
func (uc *implUseCase) render(ctx context.Context, result model.CallbackResult) string {
	debug := uc.flags.DebugMode(ctx)
	if !result.Success {
		return FormatError(result, debug)
	}
	if text := FormatSuccess(result, debug); text != "" {
		return text
	}
	return emptyResultMessage
}

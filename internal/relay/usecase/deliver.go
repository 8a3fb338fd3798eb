package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"

	"telegram-task-relay/internal/relay"
	"telegram-task-relay/pkg/sanitize"
	"telegram-task-relay/pkg/speech"
	pkgTelegram "telegram-task-relay/pkg/telegram"
)

const deliveryFallbackMessage = "⚠️ Something went wrong while delivering the response."

type markupStrategy struct {
	name      string
	parseMode string
}

// markupStrategies are tried in order with the same body. Only a markup rejection moves
// on to the next one.
var markupStrategies = []markupStrategy{
	{name: "markdown", parseMode: pkgTelegram.ParseModeMarkdown},
	{name: "markdown_v2", parseMode: pkgTelegram.ParseModeMarkdownV2},
	{name: "plain", parseMode: pkgTelegram.ParseModeNone},
}

var isMarkupRejected = pkgTelegram.IsParseError

// Deliver sends one response. The audio path is attempted first for voice-originated
// requests and falls through to text on any failure. When text cannot be sent either, a
// fixed notice is sent instead and ErrDeliveryFailed is returned.
func (uc *implUseCase) Deliver(ctx context.Context, input relay.DeliverInput) error {
	if input.ChatID == 0 {
		return relay.ErrInvalidChatID
	}

	if input.OriginalWasSpeech && uc.speech != nil && uc.flags.AudioEnabled(ctx) {
		err := uc.sendVoice(ctx, input)
		if err == nil {
			return nil
		}
		uc.l.Warnf(ctx, "relay.usecase.Deliver: voice reply to chat %d failed, sending text: %v", input.ChatID, err)
	}

	input.Text = fitMessage(input.Text)
	err := uc.sendText(ctx, input)
	if err == nil {
		return nil
	}
	uc.l.Errorf(ctx, "relay.usecase.Deliver: text reply to chat %d failed: %v", input.ChatID, err)

	if fbErr := uc.messenger.SendMessageWithOptions(ctx, input.ChatID, deliveryFallbackMessage, pkgTelegram.SendOptions{}); fbErr != nil {
		uc.l.Errorf(ctx, "relay.usecase.Deliver: fallback notice to chat %d failed: %v", input.ChatID, fbErr)
	}
	return fmt.Errorf("%w: %w", relay.ErrDeliveryFailed, err)
}

func (uc *implUseCase) sendText(ctx context.Context, input relay.DeliverInput) error {
	replyTo := input.ReplyToMessageID
	var err error
	for _, s := range markupStrategies {
		err = uc.send(ctx, input.ChatID, input.Text, s.parseMode, replyTo)
		if err != nil && replyTo != 0 && pkgTelegram.IsReplyNotFound(err) {
			// The prompt was deleted while the task ran; answer unthreaded.
			uc.l.Debugf(ctx, "relay.usecase.sendText: message %d gone in chat %d, sending unthreaded", replyTo, input.ChatID)
			replyTo = 0
			err = uc.send(ctx, input.ChatID, input.Text, s.parseMode, replyTo)
		}
		if err == nil {
			return nil
		}
		if !isMarkupRejected(err) {
			return err
		}
		uc.l.Debugf(ctx, "relay.usecase.sendText: %s rejected for chat %d: %v", s.name, input.ChatID, err)
	}
	return err
}

func (uc *implUseCase) send(ctx context.Context, chatID int64, text, parseMode string, replyTo int64) error {
	return uc.messenger.SendMessageWithOptions(ctx, chatID, text, pkgTelegram.SendOptions{
		ParseMode:                parseMode,
		ReplyToMessageID:         replyTo,
		AllowSendingWithoutReply: replyTo != 0,
	})
}

func (uc *implUseCase) sendVoice(ctx context.Context, input relay.DeliverInput) error {
	audio, err := uc.speech.Synthesize(ctx, speakable(input.Text))
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	f, err := os.CreateTemp(uc.cfg.TempDir, "relay-voice-*.ogg")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return uc.messenger.SendVoice(ctx, input.ChatID, f.Name(), input.ReplyToMessageID)
}

// fitMessage clips text that Telegram would reject as too long. The formatter already
// budgets its sections; this catches wide characters and callers that bypass it.
func fitMessage(text string) string {
	if pkgTelegram.TextLength(text) <= pkgTelegram.MaxMessageLength {
		return text
	}
	room := pkgTelegram.MaxMessageLength - pkgTelegram.TextLength(sanitize.TruncationMarker)
	return pkgTelegram.ClipText(text, room) + sanitize.TruncationMarker
}

// speakable drops code fences and clips text to what the speech endpoint accepts.
func speakable(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "```", ""))
	if r := []rune(text); len(r) > speech.MaxInputChars {
		text = string(r[:speech.MaxInputChars])
	}
	return text
}

package telegram

import (
	"context"
	"fmt"
	"path"
	"strings"

	pkgTelegram "telegram-task-relay/pkg/telegram"
)

const defaultVoiceFileName = "voice.ogg"

// transcribe downloads the attachment and turns it into text. On failure it also returns
// the reply to show the user.
func (h *handler) transcribe(ctx context.Context, in inbound) (string, string, error) {
	if h.speech == nil {
		return "", msgVoiceNotHandled, errSpeechUnavailable
	}
	if in.fileSize > pkgTelegram.MaxDownloadBytes {
		return "", msgVoiceTooLarge, fmt.Errorf("attachment is %d bytes", in.fileSize)
	}

	file, err := h.bot.GetFile(ctx, in.fileID)
	if err != nil {
		return "", msgVoiceFailed, fmt.Errorf("getFile: %w", err)
	}
	audio, err := h.bot.DownloadFile(ctx, file.FilePath)
	if err != nil {
		return "", msgVoiceFailed, fmt.Errorf("download: %w", err)
	}

	name := in.fileName
	if name == "" {
		name = path.Base(file.FilePath)
	}
	if name == "" || name == "." || name == "/" {
		name = defaultVoiceFileName
	}

	text, err := h.speech.Transcribe(ctx, audio, name)
	if err != nil {
		return "", msgVoiceFailed, fmt.Errorf("transcribe: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", msgVoiceFailed, errEmptyTranscript
	}
	return text, "", nil
}

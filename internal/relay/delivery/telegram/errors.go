package telegram

import "errors"

var (
	errBadSecretToken    = errors.New("telegram webhook secret token mismatch")
	errSpeechUnavailable = errors.New("speech client not configured")
	errEmptyTranscript   = errors.New("transcript is empty")
)

// User-facing replies. Internal detail never goes to the chat.
const (
	msgWorking         = "⏳ Working on it..."
	msgRateLimited     = "🐢 Too many requests. Please wait a moment and try again."
	msgVoiceNotHandled = "🎙️ Voice messages are not supported here. Please send text."
	msgVoiceFailed     = "🎙️ Sorry, I could not understand that voice message."
	msgVoiceTooLarge   = "🎙️ That recording is too large. Please keep it under 20 MB."
	msgGenericFailure  = "⚠️ Something went wrong while handling your message."
	msgAdminOnly       = "🔒 Only admins can change this setting."
)

package speech

const (
	DefaultBaseURL  = "https://api.openai.com/v1"
	DefaultTTSModel = "gpt-4o-mini-tts"
	DefaultSTTModel = "gpt-4o-mini-transcribe"
	DefaultVoice    = "alloy"

	// MaxInputChars is the longest text the speech endpoint accepts.
	MaxInputChars = 4096
)

// SynthesizeRequest is the request body for the speech endpoint.
type SynthesizeRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// TranscribeResponse is the JSON returned by the transcription endpoint.
type TranscribeResponse struct {
	Text string `json:"text"`
}

// ErrorResponse is the error envelope returned by the API.
type ErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

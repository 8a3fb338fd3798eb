package speech

import "context"

// ISpeech converts between text and audio.
// Implementations are safe for concurrent use.
type ISpeech interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

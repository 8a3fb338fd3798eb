package settings

import "context"

// Flag names shared by every backend.
const (
	FlagDebugMode    = "debug_mode"
	FlagAudioEnabled = "audio_enabled"
)

// Reader exposes the administrative flags. Values are read at the point of use and never cached.
type Reader interface {
	DebugMode(ctx context.Context) bool
	AudioEnabled(ctx context.Context) bool
}

// Writer changes administrative flags at runtime.
type Writer interface {
	SetDebugMode(ctx context.Context, on bool) error
	SetAudioEnabled(ctx context.Context, on bool) error
}

// Store is a Reader that can also be written to.
type Store interface {
	Reader
	Writer
}

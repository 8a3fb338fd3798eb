package settings

import (
	"context"
	"sync/atomic"

	"github.com/spf13/viper"
)

// Section is the config section holding the flag defaults.
const Section = "settings"

// ViperReader serves the flag values last copied out of a viper instance. Viper itself is not
// safe for reads that race with WatchConfig, so deliveries only ever touch the snapshot.
type ViperReader struct {
	v     *viper.Viper
	debug atomic.Bool
	audio atomic.Bool
}

// NewViperReader snapshots the flags in v. Call Reload from the OnConfigChange hook so
// edits to the config file apply on the next delivery.
func NewViperReader(v *viper.Viper) *ViperReader {
	r := &ViperReader{v: v}
	r.Reload()
	return r
}

// Reload copies the flags out of v again. It must run on the goroutine that mutates v.
func (r *ViperReader) Reload() {
	r.debug.Store(r.v.GetBool(Section + "." + FlagDebugMode))
	r.audio.Store(r.v.GetBool(Section + "." + FlagAudioEnabled))
}

func (r *ViperReader) DebugMode(context.Context) bool {
	return r.debug.Load()
}

func (r *ViperReader) AudioEnabled(context.Context) bool {
	return r.audio.Load()
}

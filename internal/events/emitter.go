package events

import "context"

// Emit publishes an event to whichever front end is attached. The default is a
// no-op so library code can emit unconditionally; the entry point installs a
// real emitter at startup.
var Emit = func(ctx context.Context, topic string, evt GenerationEvent) {}

// SetEmitter replaces the process-wide emitter. Passing nil restores the no-op.
func SetEmitter(f func(ctx context.Context, topic string, evt GenerationEvent)) {
	if f == nil {
		Emit = func(context.Context, string, GenerationEvent) {}
		return
	}
	Emit = f
}

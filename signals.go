package dumper

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for dumper events.
var (
	SignalCloneStart      = capitan.NewSignal("dumper.clone.start", "Clone operation beginning")
	SignalCloneComplete   = capitan.NewSignal("dumper.clone.complete", "Clone operation finished")
	SignalCasterFailed    = capitan.NewSignal("dumper.caster.failed", "Caster failure contained in a node")
	SignalTypeResolved    = capitan.NewSignal("dumper.type.resolved", "Type hierarchy computed and cached")
	SignalForwardComplete = capitan.NewSignal("dumper.forward.complete", "Dump forwarded to its destination")
	SignalServerReceived  = capitan.NewSignal("dumper.server.received", "Dump server decoded an envelope")
)

// Keys for typed event data.
var (
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeyCasterKey   = capitan.NewStringKey("caster_key")
	KeyContentType = capitan.NewStringKey("content_type")
	KeyTarget      = capitan.NewStringKey("target")
	KeySize        = capitan.NewIntKey("size")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
	KeyItems       = capitan.NewIntKey("items")
	KeyCuts        = capitan.NewIntKey("cuts")
	KeyFaults      = capitan.NewIntKey("faults")
	KeyAncestry    = capitan.NewIntKey("ancestry")
	KeyFallback    = capitan.NewIntKey("fallback")
)

// emitCloneStart emits an event when a clone begins.
func emitCloneStart(ctx context.Context, typeName string) {
	capitan.Emit(ctx, SignalCloneStart,
		KeyTypeName.Field(typeName),
	)
}

// emitCloneComplete emits an event when a clone finishes.
func emitCloneComplete(ctx context.Context, typeName string, duration time.Duration, items, cuts, faults int) {
	capitan.Emit(ctx, SignalCloneComplete,
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
		KeyItems.Field(items),
		KeyCuts.Field(cuts),
		KeyFaults.Field(faults),
	)
}

// emitCasterFailed emits an error event when a caster failure is contained.
func emitCasterFailed(ctx context.Context, typeName, casterKey string, err error) {
	capitan.Error(ctx, SignalCasterFailed,
		KeyTypeName.Field(typeName),
		KeyCasterKey.Field(casterKey),
		KeyError.Field(err),
	)
}

// emitTypeResolved emits an event when a type's ancestry is cached.
func emitTypeResolved(ctx context.Context, typeName string, ancestry int) {
	capitan.Emit(ctx, SignalTypeResolved,
		KeyTypeName.Field(typeName),
		KeyAncestry.Field(ancestry),
	)
}

// emitForwardComplete emits an event when a forward attempt finishes.
// fallback is 1 when the local renderer took over.
func emitForwardComplete(ctx context.Context, contentType, target string, size int, duration time.Duration, fallback int, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTarget.Field(target),
		KeySize.Field(size),
		KeyDuration.Field(duration),
		KeyFallback.Field(fallback),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalForwardComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalForwardComplete, fields...)
	}
}

// emitServerReceived emits an event when the server decodes a payload.
func emitServerReceived(ctx context.Context, contentType string, size int, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeySize.Field(size),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalServerReceived, fields...)
	} else {
		capitan.Emit(ctx, SignalServerReceived, fields...)
	}
}

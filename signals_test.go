package dumper

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEmitCloneStart(_ *testing.T) {
	// Should not panic
	emitCloneStart(context.Background(), "*app.User")
}

func TestEmitCloneComplete(_ *testing.T) {
	emitCloneComplete(context.Background(), "*app.User", 3*time.Millisecond, 12, 1, 0)
}

func TestEmitCasterFailed(_ *testing.T) {
	emitCasterFailed(context.Background(), "app.User", "fmt.Stringer", errors.New("test error"))
}

func TestEmitTypeResolved(_ *testing.T) {
	emitTypeResolved(context.Background(), "app.User", 3)
}

func TestEmitForwardComplete_Success(_ *testing.T) {
	emitForwardComplete(context.Background(), "application/json", "127.0.0.1:9912", 512, time.Millisecond, 0, nil)
}

func TestEmitForwardComplete_Fallback(_ *testing.T) {
	emitForwardComplete(context.Background(), "application/json", "127.0.0.1:9912", 512, time.Millisecond, 1, errors.New("refused"))
}

func TestEmitServerReceived(_ *testing.T) {
	emitServerReceived(context.Background(), "application/json", 512, nil)
	emitServerReceived(context.Background(), "application/json", 0, errors.New("bad payload"))
}

func TestSignalVariables(t *testing.T) {
	signals := []struct {
		name   string
		signal any
	}{
		{"SignalCloneStart", SignalCloneStart},
		{"SignalCloneComplete", SignalCloneComplete},
		{"SignalCasterFailed", SignalCasterFailed},
		{"SignalTypeResolved", SignalTypeResolved},
		{"SignalForwardComplete", SignalForwardComplete},
		{"SignalServerReceived", SignalServerReceived},
	}

	for _, s := range signals {
		if s.signal == nil {
			t.Errorf("%s is nil", s.name)
		}
	}
}

func TestKeyVariables(t *testing.T) {
	keys := []struct {
		name string
		key  any
	}{
		{"KeyTypeName", KeyTypeName},
		{"KeyCasterKey", KeyCasterKey},
		{"KeyContentType", KeyContentType},
		{"KeyTarget", KeyTarget},
		{"KeySize", KeySize},
		{"KeyDuration", KeyDuration},
		{"KeyError", KeyError},
		{"KeyItems", KeyItems},
		{"KeyCuts", KeyCuts},
		{"KeyFaults", KeyFaults},
		{"KeyAncestry", KeyAncestry},
		{"KeyFallback", KeyFallback},
	}

	for _, k := range keys {
		if k.key == nil {
			t.Errorf("%s is nil", k.name)
		}
	}
}

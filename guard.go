package dumper

import (
	"runtime/debug"
	"sync"
)

// gcState tracks GC suspension across overlapping clones.
// The collector is switched off by the first active guard and restored by the last.
var gcState struct {
	mu      sync.Mutex
	active  int
	percent int
}

// guard stabilizes one clone operation. It is created per call and holds the
// state it must restore, so nested and concurrent clones never share it.
type guard struct {
	suspendGC bool
	released  bool
}

// acquireGuard suspends garbage collection when requested.
// Callers must defer release.
func acquireGuard(suspendGC bool) *guard {
	g := &guard{suspendGC: suspendGC}
	if !suspendGC {
		return g
	}

	gcState.mu.Lock()
	defer gcState.mu.Unlock()
	if gcState.active == 0 {
		gcState.percent = debug.SetGCPercent(-1)
	}
	gcState.active++
	return g
}

// release restores the collector once the last guard is gone. Safe to call twice.
func (g *guard) release() {
	if g.released {
		return
	}
	g.released = true
	if !g.suspendGC {
		return
	}

	gcState.mu.Lock()
	defer gcState.mu.Unlock()
	gcState.active--
	if gcState.active == 0 {
		debug.SetGCPercent(gcState.percent)
	}
}

// contain runs fn, converting a panic raised while inspecting a value into a
// *FaultError. Fatal runtime errors cannot be recovered and still terminate.
func (g *guard) contain(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &FaultError{Value: r}
		}
	}()
	return fn()
}

package dumper

import (
	"context"
	"reflect"
	"sync"
	"time"
)

// Default limits.
const (
	DefaultMaxItems  = 2500
	DefaultMaxString = -1
	DefaultMinDepth  = 1
)

// Cloner turns values into Data trees using a registry of casters.
//
// A Cloner is safe for concurrent use, including nested CloneVar calls made
// from within casters. Register casters before the first clone; a clone in
// flight keeps the registry it started with.
type Cloner struct {
	mu        sync.RWMutex
	registry  *Registry
	types     *typeCache
	maxItems  int
	maxString int
	minDepth  int
	suspendGC bool
}

// NewCloner creates a Cloner seeded with casters, or with DefaultCasters when
// casters is nil.
func NewCloner(casters map[TypeKey]Caster) *Cloner {
	if casters == nil {
		casters = DefaultCasters()
	}
	c := &Cloner{
		registry:  NewRegistry(),
		types:     newTypeCache(),
		maxItems:  DefaultMaxItems,
		maxString: DefaultMaxString,
		minDepth:  DefaultMinDepth,
		suspendGC: true,
	}
	return c.AddCasters(casters)
}

// AddCasters appends casters to the chains of their keys. Casters already
// registered for a key keep running first. Returns the cloner for chaining.
func (c *Cloner) AddCasters(casters map[TypeKey]Caster) *Cloner {
	c.mu.Lock()
	defer c.mu.Unlock()

	registry := c.registry.clone()
	for key, caster := range casters {
		registry.Register(key, caster)
	}
	c.registry = registry
	c.types = newTypeCache()
	return c
}

// AddCaster appends one caster to the chain of key.
func (c *Cloner) AddCaster(key TypeKey, caster Caster) *Cloner {
	return c.AddCasters(map[TypeKey]Caster{key: caster})
}

// SetMaxItems sets the number of items cloned past the minimum depth.
// Negative values disable the limit.
func (c *Cloner) SetMaxItems(n int) *Cloner {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxItems = n
	return c
}

// SetMaxString sets the number of runes kept per string. -1 keeps everything.
func (c *Cloner) SetMaxString(n int) *Cloner {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxString = n
	return c
}

// SetMinDepth sets the depth up to which every item is cloned regardless of
// the item limit.
func (c *Cloner) SetMinDepth(n int) *Cloner {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minDepth = n
	return c
}

// SetSuspendGC controls whether garbage collection is paused during clones.
func (c *Cloner) SetSuspendGC(suspend bool) *Cloner {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suspendGC = suspend
	return c
}

// CloneVar clones v into a Data tree. filter is a bit field of Exclude* flags
// handed to every caster.
//
// CloneVar does not fail: caster errors and panics raised while inspecting v
// end up as fault entries in the tree.
func (c *Cloner) CloneVar(ctx context.Context, v any, filter Filter) *Data {
	c.mu.RLock()
	w := &walker{
		ctx:       ctx,
		registry:  c.registry,
		types:     c.types,
		filter:    filter,
		budget:    c.maxItems,
		maxString: c.maxString,
		minDepth:  c.minDepth,
		seen:      make(map[identity]int),
	}
	suspendGC := c.suspendGC
	c.mu.RUnlock()

	typeName := typeLabel(reflect.ValueOf(v))
	start := time.Now()
	emitCloneStart(ctx, typeName)

	w.guard = acquireGuard(suspendGC)
	defer w.guard.release()

	root := w.clone(reflect.ValueOf(v), 0)
	data := &Data{
		Root:   root,
		Items:  w.items,
		Cuts:   w.cuts,
		Faults: w.faults,
	}

	emitCloneComplete(ctx, typeName, time.Since(start), data.Items, data.Cuts, data.Faults)
	return data
}

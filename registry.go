package dumper

import (
	"reflect"
	"sync"
)

// TypeKey names a Go type, an interface or a resource category in the caster registry.
type TypeKey string

// KeyAny is dispatched for every struct value, before any more specific key.
const KeyAny TypeKey = "*"

// anonymousStruct is the display name given to unnamed struct types.
const anonymousStruct = "struct@anonymous"

// ResourceKey returns the key for a resource category such as "chan" or "func".
func ResourceKey(category string) TypeKey {
	return TypeKey(":" + category)
}

// KeyFor returns the key for T. Interface types are recorded as capabilities
// so struct types implementing them pick up their casters.
func KeyFor[T any]() TypeKey {
	return KeyOf(reflect.TypeFor[T]())
}

// KeyOf returns the key for rt. Pointers to named types share the key of the
// named type. Interface types are recorded as capabilities.
func KeyOf(rt reflect.Type) TypeKey {
	if rt == nil {
		return "nil"
	}
	if rt.Kind() == reflect.Pointer && rt.Elem().Name() != "" {
		rt = rt.Elem()
	}
	key := nominalKey(rt)
	if rt.Kind() == reflect.Interface {
		registerCapability(key, rt)
	}
	return key
}

// nominalKey derives the key without touching the capability index.
func nominalKey(rt reflect.Type) TypeKey {
	switch {
	case rt.Name() == "" && rt.Kind() == reflect.Struct:
		return anonymousStruct
	case rt.Name() == "":
		return TypeKey(rt.String())
	case rt.PkgPath() == "":
		return TypeKey(rt.Name())
	default:
		return TypeKey(rt.PkgPath() + "." + rt.Name())
	}
}

// capability is an interface type casters can be registered against.
type capability struct {
	key TypeKey
	typ reflect.Type
}

var (
	capabilities   []capability
	capabilityKeys = make(map[TypeKey]struct{})
	capabilitiesMu sync.RWMutex
)

func registerCapability(key TypeKey, rt reflect.Type) {
	capabilitiesMu.RLock()
	_, ok := capabilityKeys[key]
	capabilitiesMu.RUnlock()
	if ok {
		return
	}

	capabilitiesMu.Lock()
	defer capabilitiesMu.Unlock()
	if _, ok := capabilityKeys[key]; ok {
		return
	}
	capabilityKeys[key] = struct{}{}
	capabilities = append(capabilities, capability{key: key, typ: rt})
}

// implementedCapabilities returns the keys of known interfaces rt implements,
// in the order they were first seen.
func implementedCapabilities(rt reflect.Type) []TypeKey {
	capabilitiesMu.RLock()
	defer capabilitiesMu.RUnlock()

	var keys []TypeKey
	for _, c := range capabilities {
		if rt.Implements(c.typ) {
			keys = append(keys, c.key)
		}
	}
	return keys
}

// Caster contributes to or edits the representation of a value.
//
// v is the inspected value, rep the representation built so far (the caster's
// own working copy), stub the node being cast, nested whether the value sits
// below the root, and filter the Exclude* flags of the clone. The returned
// representation is passed to the next caster. Returning an error stops the
// cast for this value; entries from earlier casters are kept.
type Caster func(v any, rep *Representation, stub *Stub, nested bool, filter Filter) (*Representation, error)

// Registry holds caster chains by TypeKey.
// It is not safe for concurrent mutation; the Cloner guards its own registry.
type Registry struct {
	casters map[TypeKey][]Caster
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{casters: make(map[TypeKey][]Caster)}
}

// Register appends c to the chain for key.
func (r *Registry) Register(key TypeKey, c Caster) *Registry {
	r.casters[key] = append(r.casters[key], c)
	return r
}

// Resolve returns the chain for key in registration order, or nil.
func (r *Registry) Resolve(key TypeKey) []Caster {
	return r.casters[key]
}

// Len returns the number of keys with at least one caster.
func (r *Registry) Len() int {
	return len(r.casters)
}

// clone copies the chains so a registry handed to running clones stays unchanged.
func (r *Registry) clone() *Registry {
	c := NewRegistry()
	for key, chain := range r.casters {
		c.casters[key] = append([]Caster(nil), chain...)
	}
	return c
}

package dumper

import "strings"

// Key prefixes mark how a representation entry relates to the value.
const (
	// PrefixVirtual marks entries computed by casters rather than read from fields.
	PrefixVirtual = "\x00~\x00"
	// PrefixDynamic marks entries added from dynamic data such as DebugInfo.
	PrefixDynamic = "\x00+\x00"
	// PrefixUnexported marks unexported struct fields.
	PrefixUnexported = "\x00*\x00"
)

// SentinelKey is the entry name carrying a contained caster failure.
const SentinelKey = "⚠"

// Filter is a bit field of Exclude* flags passed to casters.
type Filter uint32

const (
	// ExcludeVerbose drops details casters consider noisy.
	ExcludeVerbose Filter = 1 << iota
	// ExcludeVirtual drops entries added by casters.
	ExcludeVirtual
	// ExcludeExported drops exported struct fields.
	ExcludeExported
	// ExcludeUnexported drops unexported struct fields.
	ExcludeUnexported
	// ExcludeEmpty drops zero-valued fields.
	ExcludeEmpty
	// ExcludeNil drops nil fields.
	ExcludeNil
)

// Has reports whether every flag in f is set.
func (f Filter) Has(flag Filter) bool {
	return f&flag == flag
}

// Representation is the ordered key/value view of one stub that casters build.
type Representation struct {
	keys   []string
	values map[string]any
}

// NewRepresentation returns an empty representation.
func NewRepresentation() *Representation {
	return &Representation{values: make(map[string]any)}
}

// Set stores v under key. New keys are appended; existing keys keep their position.
func (r *Representation) Set(key string, v any) *Representation {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
	return r
}

// Prepend stores v under key in first position.
func (r *Representation) Prepend(key string, v any) *Representation {
	r.Delete(key)
	r.keys = append([]string{key}, r.keys...)
	r.values[key] = v
	return r
}

// Get returns the value stored under key.
func (r *Representation) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Delete removes key if present.
func (r *Representation) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in order.
func (r *Representation) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of entries.
func (r *Representation) Len() int {
	return len(r.keys)
}

// Range calls fn for each entry in order until fn returns false.
func (r *Representation) Range(fn func(key string, v any) bool) {
	for _, k := range r.keys {
		if !fn(k, r.values[k]) {
			return
		}
	}
}

// Clone returns a shallow copy.
func (r *Representation) Clone() *Representation {
	c := &Representation{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]any, len(r.values)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// SplitKey separates a key into its prefix and display name.
func SplitKey(key string) (prefix, name string) {
	for _, p := range []string{PrefixVirtual, PrefixDynamic, PrefixUnexported} {
		if strings.HasPrefix(key, p) {
			return p, key[len(p):]
		}
	}
	return "", key
}

package dumper

import "reflect"

// StubKind selects how an encountered value is dispatched.
type StubKind uint8

const (
	// StubScalar is a bool, number or nil.
	StubScalar StubKind = iota
	// StubString is a string or byte slice.
	StubString
	// StubArray is a slice, array or map.
	StubArray
	// StubObject is a struct, usually reached through a pointer.
	StubObject
	// StubResource is a handle: channel, func or unsafe pointer.
	StubResource
)

func (k StubKind) String() string {
	switch k {
	case StubScalar:
		return "scalar"
	case StubString:
		return "string"
	case StubArray:
		return "array"
	case StubObject:
		return "object"
	case StubResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Stub stands in for one encountered value while it is being cast.
// Casters may read Value and add metadata to Attr; they must not mutate Value.
type Stub struct {
	Kind   StubKind
	Class  string        // display label of the runtime type
	Key    TypeKey       // registry key for the runtime type, or the resource key
	Value  reflect.Value // the inspected value, readable through Interface
	Handle int           // identity of pointer-backed values, 0 otherwise
	Attr   map[string]any
}

func newStub(kind StubKind, class string, key TypeKey, v reflect.Value) *Stub {
	return &Stub{
		Kind:  kind,
		Class: class,
		Key:   key,
		Value: v,
		Attr:  make(map[string]any),
	}
}

// Interface returns the stub's value as an interface, or nil when it cannot be
// exposed.
func (s *Stub) Interface() any {
	if !s.Value.IsValid() || !s.Value.CanInterface() {
		return nil
	}
	return s.Value.Interface()
}

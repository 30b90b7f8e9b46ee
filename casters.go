package dumper

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"time"
)

// DefaultCasters returns the builtin caster catalog.
func DefaultCasters() map[TypeKey]Caster {
	return map[TypeKey]Caster{
		KeyFor[error]():               CastError,
		KeyFor[fmt.Stringer]():        CastStringer,
		KeyFor[time.Time]():           CastTime,
		ResourceKey("chan"):           CastChan,
		ResourceKey("func"):           CastFunc,
		ResourceKey("unsafe.Pointer"): CastUnsafePointer,
	}
}

// CastError adds the error message and the wrapped error, when there is one.
func CastError(v any, rep *Representation, _ *Stub, _ bool, _ Filter) (*Representation, error) {
	err, ok := v.(error)
	if !ok || err == nil {
		return rep, nil
	}
	rep.Set(PrefixVirtual+"message", err.Error())
	if prev := errors.Unwrap(err); prev != nil {
		rep.Set(PrefixVirtual+"previous", prev)
	}
	return rep, nil
}

// CastStringer adds the String form of the value. Skipped under ExcludeVerbose.
func CastStringer(v any, rep *Representation, _ *Stub, _ bool, filter Filter) (*Representation, error) {
	if filter.Has(ExcludeVerbose) {
		return rep, nil
	}
	s, ok := v.(fmt.Stringer)
	if !ok {
		return rep, nil
	}
	return rep.Set(PrefixVirtual+"string", s.String()), nil
}

// CastTime replaces the internal clock fields with a readable date.
func CastTime(v any, _ *Representation, _ *Stub, _ bool, filter Filter) (*Representation, error) {
	var t time.Time
	switch tv := v.(type) {
	case time.Time:
		t = tv
	case *time.Time:
		if tv == nil {
			return NewRepresentation(), nil
		}
		t = *tv
	default:
		return nil, fmt.Errorf("unexpected %T", v)
	}

	rep := NewRepresentation().
		Set(PrefixVirtual+"date", t.Format(time.RFC3339Nano)).
		Set(PrefixVirtual+"timezone", t.Location().String())
	if !filter.Has(ExcludeVerbose) {
		rep.Set(PrefixVirtual+"unix", t.UnixNano())
	}
	return rep, nil
}

// CastChan describes a channel's element type, direction and buffer.
func CastChan(_ any, rep *Representation, stub *Stub, _ bool, _ Filter) (*Representation, error) {
	ch := stub.Value
	return rep.
		Set(PrefixVirtual+"elem", ch.Type().Elem().String()).
		Set(PrefixVirtual+"dir", ch.Type().ChanDir().String()).
		Set(PrefixVirtual+"len", ch.Len()).
		Set(PrefixVirtual+"cap", ch.Cap()), nil
}

// CastFunc resolves a func value to its symbol and source position.
func CastFunc(_ any, rep *Representation, stub *Stub, _ bool, filter Filter) (*Representation, error) {
	fn := runtime.FuncForPC(stub.Value.Pointer())
	if fn == nil {
		return rep, nil
	}
	rep.Set(PrefixVirtual+"name", fn.Name())
	if !filter.Has(ExcludeVerbose) {
		file, line := fn.FileLine(fn.Entry())
		rep.Set(PrefixVirtual+"file", file).Set(PrefixVirtual+"line", line)
	}
	return rep, nil
}

// CastUnsafePointer shows the address held by an unsafe.Pointer.
func CastUnsafePointer(_ any, rep *Representation, stub *Stub, _ bool, _ Filter) (*Representation, error) {
	if stub.Value.Kind() != reflect.UnsafePointer {
		return rep, nil
	}
	return rep.Set(PrefixVirtual+"address", fmt.Sprintf("%#x", stub.Value.Pointer())), nil
}

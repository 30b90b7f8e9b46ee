package dumper

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

var (
	maskers = builtinMaskers()
	hashers = builtinHashers()
)

// castObject builds the representation of a struct value, reached directly or
// through a pointer held in stub.Value.
func (w *walker) castObject(stub *Stub, nested bool) *Representation {
	info := w.types.resolve(w.ctx, stub.Value.Type())
	stub.Class = info.class
	stub.Key = info.key
	for k, v := range info.fileInfo {
		stub.Attr[k] = v
	}

	rep, err := w.seedObject(stub.Value, info)

	var failure *CasterError
	if err != nil {
		failure = newCasterError(info.class, "", err)
	} else {
		obj := stub.Interface()

		// General casters first so specific ones can override their entries.
	ancestry:
		for i := len(info.ancestry) - 1; i >= 0; i-- {
			key := info.ancestry[i]
			for _, caster := range w.registry.Resolve(key) {
				next, err := w.call(caster, obj, rep, stub, nested)
				if err != nil {
					failure = newCasterError(info.class, key, err)
					break ancestry
				}
				rep = next
			}
		}
	}

	if w.filter.Has(ExcludeVirtual) {
		dropVirtual(rep)
	}

	if failure != nil {
		rep.Prepend(PrefixVirtual+SentinelKey, failure)
		w.faults++
		emitCasterFailed(w.ctx, info.class, string(failure.Key), failure)
	}

	return rep
}

// castResource builds the representation of a handle from the chain of its
// resource key. There is no hierarchy for resources.
func (w *walker) castResource(stub *Stub, nested bool) *Representation {
	rep := NewRepresentation()
	obj := stub.Interface()

	for _, caster := range w.registry.Resolve(stub.Key) {
		next, err := w.call(caster, obj, rep, stub, nested)
		if err != nil {
			failure := newCasterError(stub.Class, stub.Key, err)
			rep.Prepend(SentinelKey, failure)
			w.faults++
			emitCasterFailed(w.ctx, stub.Class, string(stub.Key), failure)
			break
		}
		rep = next
	}

	if w.filter.Has(ExcludeVirtual) {
		dropVirtual(rep)
	}
	return rep
}

// dropVirtual removes caster-computed entries.
func dropVirtual(rep *Representation) {
	for _, k := range rep.Keys() {
		if strings.HasPrefix(k, PrefixVirtual) {
			rep.Delete(k)
		}
	}
}

// call invokes one caster on a copy of rep, containing any panic.
// A nil result clears the representation.
func (w *walker) call(caster Caster, v any, rep *Representation, stub *Stub, nested bool) (*Representation, error) {
	var out *Representation
	err := w.guard.contain(func() error {
		var err error
		out, err = caster(v, rep.Clone(), stub, nested, w.filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = NewRepresentation()
	}
	return out, nil
}

// seedObject fills a representation from DebugInfo when available, otherwise
// from the struct fields. A failing DebugInfo falls back to the fields and is
// reported alongside them.
func (w *walker) seedObject(v reflect.Value, info *typeInfo) (*Representation, error) {
	rep := NewRepresentation()

	var seedErr error
	if info.debugInfo {
		var entries map[string]any
		seedErr = w.guard.contain(func() error {
			entries = v.Interface().(DebugInfoer).DebugInfo()
			return nil
		})
		if seedErr == nil {
			keys := make([]string, 0, len(entries))
			for k := range entries {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				rep.Set(k, entries[k])
			}
			return rep, nil
		}
	}

	if info.scalar {
		rep.Set(PrefixVirtual+"value", scalarValue(v))
		return rep, seedErr
	}

	sv := v
	if sv.Kind() == reflect.Pointer {
		sv = sv.Elem()
	}

	for _, plan := range info.fields {
		if plan.omit {
			continue
		}
		if plan.exported && w.filter.Has(ExcludeExported) {
			continue
		}
		if !plan.exported && w.filter.Has(ExcludeUnexported) {
			continue
		}
		if plan.tagErr != nil {
			if seedErr == nil {
				seedErr = plan.tagErr
			}
			continue
		}

		fv := expose(sv.FieldByIndex(plan.index))
		if w.filter.Has(ExcludeNil) && isNil(fv) {
			continue
		}
		if w.filter.Has(ExcludeEmpty) && fv.IsZero() {
			continue
		}

		val, err := sanitizeField(plan, fv)
		if err != nil {
			if seedErr == nil {
				seedErr = err
			}
			continue
		}
		rep.Set(plan.key, val)
	}

	return rep, seedErr
}

// sanitizeField applies dump.redact, dump.mask and dump.hash to a field value.
func sanitizeField(plan fieldPlan, fv reflect.Value) (any, error) {
	switch {
	case plan.redacted:
		return plan.redact, nil

	case plan.mask != "":
		m := maskers[plan.mask]
		switch {
		case fv.Kind() == reflect.String:
			return m.Mask(fv.String()), nil
		case isByteSlice(fv.Type()):
			return m.Mask(string(fv.Bytes())), nil
		case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String:
			out := make([]string, fv.Len())
			for i := range out {
				out[i] = m.Mask(fv.Index(i).String())
			}
			return out, nil
		default:
			return "***", nil
		}

	case plan.hash != "":
		var plaintext []byte
		switch {
		case fv.Kind() == reflect.String:
			plaintext = []byte(fv.String())
		case isByteSlice(fv.Type()):
			plaintext = fv.Bytes()
		default:
			plaintext = []byte(fmt.Sprintf("%v", fv.Interface()))
		}
		sum, err := hashers[plan.hash].Hash(plaintext)
		if err != nil {
			return nil, fmt.Errorf("hash field %s: %w", plan.name, err)
		}
		return string(plan.hash) + ":" + sum, nil
	}

	if !fv.CanInterface() {
		return nil, fmt.Errorf("field %s cannot be read", plan.name)
	}
	return fv.Interface(), nil
}

func isByteSlice(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return v.IsNil()
	case reflect.Invalid:
		return true
	default:
		return false
	}
}

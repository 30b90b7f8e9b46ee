package dumper

import (
	"context"
	"go/token"
	"maps"
	"reflect"
	"runtime"
	"strings"
	"sync"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register dump tags with sentinel
	sentinel.Tag("dump")
	sentinel.Tag("dump.mask")
	sentinel.Tag("dump.redact")
	sentinel.Tag("dump.hash")
}

var (
	debugInfoerType = reflect.TypeFor[DebugInfoer]()
	selfPkgPath     = reflect.TypeFor[Stub]().PkgPath()
)

// typeInfo is everything the dispatcher needs about one concrete struct type,
// or about a named scalar type cast as an object.
type typeInfo struct {
	key       TypeKey
	class     string
	ancestry  []TypeKey // most specific first, KeyAny last for structs
	scalar    bool
	debugInfo bool
	fileInfo  map[string]any
	fields    []fieldPlan
}

// fieldPlan describes how to seed one struct field into a representation.
type fieldPlan struct {
	index    []int
	name     string
	key      string // representation key, prefixed when unexported
	exported bool
	omit     bool
	mask     MaskType
	redact   string
	redacted bool
	hash     HashAlgo
	tagErr   error
}

// typeCache memoizes typeInfo per concrete runtime type.
type typeCache struct {
	mu       sync.RWMutex
	types    map[reflect.Type]*typeInfo
	builds   int
	resolved func(ctx context.Context, typeName string, ancestry int)
}

func newTypeCache() *typeCache {
	return &typeCache{types: make(map[reflect.Type]*typeInfo), resolved: emitTypeResolved}
}

// resolve returns the cached info for rt or builds it.
// rt is a struct type or a pointer to one.
func (c *typeCache) resolve(ctx context.Context, rt reflect.Type) *typeInfo {
	// Fast path: read-lock cache check
	c.mu.RLock()
	if info, ok := c.types[rt]; ok {
		c.mu.RUnlock()
		return info
	}
	c.mu.RUnlock()

	// Slow path: build and cache with write-lock
	c.mu.Lock()

	// Double-check pattern
	if info, ok := c.types[rt]; ok {
		c.mu.Unlock()
		return info
	}

	info := buildTypeInfo(rt)
	c.types[rt] = info
	c.builds++
	c.mu.Unlock()

	// Listeners may clone, which needs the lock again.
	c.resolved(ctx, info.class, len(info.ancestry))
	return info
}

func (c *typeCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.types)
}

func buildTypeInfo(rt reflect.Type) *typeInfo {
	st := rt
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}

	info := &typeInfo{
		key:       nominalKey(st),
		class:     st.String(),
		scalar:    st.Kind() != reflect.Struct,
		debugInfo: rt.Implements(debugInfoerType),
		fileInfo:  provenance(st),
	}
	if st.Name() == "" {
		info.class = anonymousStruct
	}

	info.ancestry = []TypeKey{info.key}
	seen := map[TypeKey]bool{info.key: true, KeyAny: true}
	var parents []TypeKey
	if !info.scalar {
		parents = embeddedParents(st)
	}
	for _, k := range append(parents, implementedCapabilities(rt)...) {
		if !seen[k] {
			seen[k] = true
			info.ancestry = append(info.ancestry, k)
		}
	}
	if info.scalar {
		return info
	}
	info.ancestry = append(info.ancestry, KeyAny)

	for _, fm := range scanStruct(st).Fields {
		info.fields = append(info.fields, newFieldPlan(fm, token.IsExported(fm.Name)))
	}
	return info
}

// embeddedParents lists embedded struct types breadth-first, in declaration order.
func embeddedParents(st reflect.Type) []TypeKey {
	var out []TypeKey
	visited := map[reflect.Type]bool{st: true}
	queue := []reflect.Type{st}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.Anonymous {
				continue
			}
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() != reflect.Struct || visited[ft] {
				continue
			}
			visited[ft] = true
			out = append(out, nominalKey(ft))
			queue = append(queue, ft)
		}
	}
	return out
}

// provenance locates a type through its first exported method with a real
// source position. Builtin, standard library and dumper types report nothing.
func provenance(st reflect.Type) map[string]any {
	pkg := st.PkgPath()
	if pkg == "" || pkg == selfPkgPath || isStdlib(pkg) {
		return nil
	}

	for _, t := range []reflect.Type{st, reflect.PointerTo(st)} {
		for i := 0; i < t.NumMethod(); i++ {
			fn := runtime.FuncForPC(t.Method(i).Func.Pointer())
			if fn == nil {
				continue
			}
			file, line := fn.FileLine(fn.Entry())
			if file == "" || strings.HasSuffix(file, "<autogenerated>") {
				continue
			}
			return map[string]any{"file": file, "line": line}
		}
	}
	return nil
}

// isStdlib reports whether pkg looks like a standard library import path.
func isStdlib(pkg string) bool {
	first, _, _ := strings.Cut(pkg, "/")
	return !strings.Contains(first, ".")
}

// scanStruct returns the field metadata of st, unexported fields included.
// Exported fields come from sentinel when it has already inspected st, so
// tags are read the same way every sentinel user reads them.
func scanStruct(st reflect.Type) sentinel.Metadata {
	known := make(map[string]sentinel.FieldMetadata)
	if spec, ok := sentinel.Lookup(st.Name()); ok && spec.PackageName == st.PkgPath() {
		for _, fm := range spec.Fields {
			known[fm.Name] = fm
		}
	}

	meta := sentinel.Metadata{
		TypeName:    st.Name(),
		PackageName: st.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, st.NumField()),
	}

	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if sf.Name == "_" {
			continue
		}

		if fm, ok := known[sf.Name]; ok && sf.IsExported() {
			// sentinel skips empty tag values, which dump.redact allows.
			if val, ok := sf.Tag.Lookup("dump.redact"); ok && val == "" {
				fm.Tags = maps.Clone(fm.Tags)
				fm.Tags["dump.redact"] = ""
			}
			meta.Fields = append(meta.Fields, fm)
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        parseDumpTags(sf.Tag),
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		meta.Fields = append(meta.Fields, fm)
	}

	return meta
}

// Describe has sentinel inspect T, and related types of the same module,
// ahead of the first dump. Their dump tags are then read from sentinel's
// metadata. T must be a struct or a pointer to one.
func Describe[T any]() error {
	_, err := sentinel.TryScan[T]()
	return err
}

// parseDumpTags extracts dump tags from a struct tag.
func parseDumpTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	for _, name := range []string{"dump", "dump.mask", "dump.redact", "dump.hash"} {
		if val, ok := tag.Lookup(name); ok {
			tags[name] = val
		}
	}
	return tags
}

func newFieldPlan(fm sentinel.FieldMetadata, exported bool) fieldPlan {
	plan := fieldPlan{
		index:    fm.Index,
		name:     fm.Name,
		key:      fm.Name,
		exported: exported,
	}
	if !exported {
		plan.key = PrefixUnexported + fm.Name
	}

	if fm.Tags["dump"] == "-" {
		plan.omit = true
	}
	if val, ok := fm.Tags["dump.mask"]; ok {
		if IsValidMaskType(MaskType(val)) {
			plan.mask = MaskType(val)
		} else {
			plan.tagErr = newTagError("dump.mask", val, fm.Name)
		}
	}
	if val, ok := fm.Tags["dump.hash"]; ok {
		if IsValidHashAlgo(HashAlgo(val)) {
			plan.hash = HashAlgo(val)
		} else {
			plan.tagErr = newTagError("dump.hash", val, fm.Name)
		}
	}
	if val, ok := fm.Tags["dump.redact"]; ok {
		// Redact values are arbitrary strings, no validation needed
		plan.redact = val
		plan.redacted = true
	}
	return plan
}

package dumper

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"unicode/utf8"
	"unsafe"
)

// identity keys a reference value for cycle detection.
type identity struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// walker holds the state of one CloneVar call.
type walker struct {
	ctx      context.Context
	guard    *guard
	registry *Registry
	types    *typeCache
	filter   Filter

	budget    int // items left past minDepth, negative for unbounded
	maxString int
	minDepth  int

	seen    map[identity]int
	handles int

	items  int
	cuts   int
	faults int
}

// clone converts v into a node, turning a panic into a fault node.
// The fault keeps the handle v was tracked under so refs to it still resolve.
func (w *walker) clone(v reflect.Value, depth int) *Node {
	mark := w.handles
	var n *Node
	err := w.guard.contain(func() error {
		n = w.node(v, depth)
		return nil
	})
	if err != nil {
		w.faults++
		label := typeLabel(v)
		return &Node{Kind: KindFault, Type: label, Value: newCasterError(label, "", err).Error(), Handle: w.rollback(v, mark)}
	}
	return n
}

// rollback forgets identities tracked after mark, whose nodes were lost with
// the fault. The identity of v itself is kept and its handle returned.
func (w *walker) rollback(v reflect.Value, mark int) int {
	own := 0
	if id, ok := refIdentity(v); ok {
		if h, ok := w.seen[id]; ok && h > mark {
			own = h
		}
	}
	for id, h := range w.seen {
		if h > mark && h != own {
			delete(w.seen, id)
		}
	}
	return own
}

// refIdentity returns the cycle identity node would track for v.
func refIdentity(v reflect.Value) (identity, bool) {
	for v.IsValid() && v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() {
		return identity{}, false
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan:
		if v.IsNil() {
			return identity{}, false
		}
		return identity{ptr: v.Pointer(), typ: v.Type()}, true
	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 || isByteSlice(v.Type()) {
			return identity{}, false
		}
		return identity{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}, true
	}
	return identity{}, false
}

// value clones a representation entry. Contained failures become fault nodes.
func (w *walker) value(v any, depth int) *Node {
	if ce, ok := v.(*CasterError); ok {
		return &Node{Kind: KindFault, Type: ce.Type, Value: ce.Error()}
	}
	return w.clone(reflect.ValueOf(v), depth)
}

func (w *walker) node(v reflect.Value, depth int) *Node {
	w.items++
	if !v.IsValid() {
		return &Node{Kind: KindNil}
	}
	v = expose(v)
	typ := v.Type().String()

	if isScalarKind(v.Kind()) {
		if n := w.namedScalar(v, depth); n != nil {
			return n
		}
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return &Node{Kind: KindNil, Type: typ}
		}
		w.items--
		return w.node(v.Elem(), depth)

	case reflect.Pointer:
		if v.IsNil() {
			return &Node{Kind: KindNil, Type: typ}
		}
		id := identity{ptr: v.Pointer(), typ: v.Type()}
		if h, ok := w.seen[id]; ok {
			return &Node{Kind: KindRef, Type: typ, Handle: h}
		}
		h := w.track(id)
		if v.Elem().Kind() == reflect.Struct {
			return w.object(v, h, depth)
		}
		w.items--
		n := w.node(v.Elem(), depth)
		n.Type = typ
		if n.Handle == 0 {
			n.Handle = h
		}
		return n

	case reflect.Struct:
		return w.object(v, 0, depth)

	case reflect.Map:
		if v.IsNil() {
			return &Node{Kind: KindNil, Type: typ}
		}
		id := identity{ptr: v.Pointer(), typ: v.Type()}
		if h, ok := w.seen[id]; ok {
			return &Node{Kind: KindRef, Type: typ, Handle: h}
		}
		return w.mapNode(v, w.track(id), depth)

	case reflect.Slice:
		if v.IsNil() {
			return &Node{Kind: KindNil, Type: typ}
		}
		if isByteSlice(v.Type()) {
			return w.stringNode(typ, string(v.Bytes()), true)
		}
		h := 0
		if v.Len() > 0 {
			id := identity{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}
			if h, ok := w.seen[id]; ok {
				return &Node{Kind: KindRef, Type: typ, Handle: h}
			}
			h = w.track(id)
		}
		return w.listNode(v, h, depth)

	case reflect.Array:
		return w.listNode(v, 0, depth)

	case reflect.String:
		return w.stringNode(typ, v.String(), false)

	case reflect.Bool:
		return &Node{Kind: KindBool, Type: typ, Value: v.Bool()}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Node{Kind: KindInt, Type: typ, Value: v.Int()}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return &Node{Kind: KindUint, Type: typ, Value: v.Uint()}

	case reflect.Float32, reflect.Float64:
		return &Node{Kind: KindFloat, Type: typ, Value: v.Float()}

	case reflect.Complex64, reflect.Complex128:
		return &Node{Kind: KindComplex, Type: typ, Value: strconv.FormatComplex(v.Complex(), 'g', -1, 128)}

	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return w.resource(v, depth)
	}

	return &Node{Kind: KindFault, Type: typ, Value: fmt.Sprintf("unsupported kind %s", v.Kind())}
}

// namedScalar casts a named scalar type as an object when a caster applies to
// it, so types such as time.Duration or error codes are not printed as bare
// numbers. It returns nil when nothing is registered for the type.
func (w *walker) namedScalar(v reflect.Value, depth int) *Node {
	rt := v.Type()
	if rt.PkgPath() == "" || (rt.NumMethod() == 0 && reflect.PointerTo(rt).NumMethod() == 0) {
		return nil
	}
	info := w.types.resolve(w.ctx, rt)
	if !info.debugInfo && !w.dispatches(info) {
		return nil
	}
	return w.object(v, 0, depth)
}

// dispatches reports whether any key in the ancestry of info has casters.
func (w *walker) dispatches(info *typeInfo) bool {
	for _, key := range info.ancestry {
		if len(w.registry.Resolve(key)) > 0 {
			return true
		}
	}
	return false
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// scalarValue returns the underlying value of a scalar, dropping its named type.
func scalarValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Complex64, reflect.Complex128:
		return strconv.FormatComplex(v.Complex(), 'g', -1, 128)
	}
	return nil
}

func (w *walker) track(id identity) int {
	w.handles++
	w.seen[id] = w.handles
	return w.handles
}

// admit reports whether one more child at depth may be cloned, consuming budget
// past minDepth.
func (w *walker) admit(depth int) bool {
	if depth <= w.minDepth || w.budget < 0 {
		return true
	}
	if w.budget == 0 {
		return false
	}
	w.budget--
	return true
}

func (w *walker) object(v reflect.Value, handle, depth int) *Node {
	if v.Kind() == reflect.Struct && !v.CanAddr() {
		// Unexported fields are only readable through an addressable copy.
		c := reflect.New(v.Type()).Elem()
		c.Set(v)
		v = c
	}

	stub := newStub(StubObject, v.Type().String(), "", v)
	stub.Handle = handle
	rep := w.castObject(stub, depth > 0)

	n := &Node{Kind: KindObject, Type: stub.Class, Handle: handle}
	if len(stub.Attr) > 0 {
		n.Attr = stub.Attr
	}
	w.children(n, rep, depth)
	return n
}

func (w *walker) resource(v reflect.Value, depth int) *Node {
	typ := v.Type().String()
	if v.IsNil() {
		return &Node{Kind: KindNil, Type: typ}
	}

	handle := 0
	if v.Kind() == reflect.Chan {
		id := identity{ptr: v.Pointer(), typ: v.Type()}
		if h, ok := w.seen[id]; ok {
			return &Node{Kind: KindRef, Type: typ, Handle: h}
		}
		handle = w.track(id)
	}

	stub := newStub(StubResource, typ, ResourceKey(v.Kind().String()), v)
	stub.Handle = handle
	rep := w.castResource(stub, depth > 0)

	n := &Node{Kind: KindResource, Type: typ, Handle: handle}
	if len(stub.Attr) > 0 {
		n.Attr = stub.Attr
	}
	w.children(n, rep, depth)
	return n
}

// children clones the entries of rep under n until the item budget runs out.
func (w *walker) children(n *Node, rep *Representation, depth int) {
	keys := rep.Keys()
	for i, k := range keys {
		if !w.admit(depth + 1) {
			w.cut(n, len(keys)-i)
			return
		}
		v, _ := rep.Get(k)
		n.Entries = append(n.Entries, Entry{Key: k, Node: w.value(v, depth+1)})
	}
}

func (w *walker) listNode(v reflect.Value, handle, depth int) *Node {
	n := &Node{Kind: KindArray, Type: v.Type().String(), Handle: handle}
	size := v.Len()
	for i := 0; i < size; i++ {
		if !w.admit(depth + 1) {
			w.cut(n, size-i)
			return n
		}
		n.Entries = append(n.Entries, Entry{Key: strconv.Itoa(i), Node: w.clone(v.Index(i), depth+1)})
	}
	return n
}

func (w *walker) mapNode(v reflect.Value, handle, depth int) *Node {
	n := &Node{Kind: KindMap, Type: v.Type().String(), Handle: handle}

	keys := v.MapKeys()
	slices.SortStableFunc(keys, compareKeys)

	for i, k := range keys {
		if !w.admit(depth + 1) {
			w.cut(n, len(keys)-i)
			return n
		}
		n.Entries = append(n.Entries, Entry{Key: formatKey(k), Node: w.clone(v.MapIndex(k), depth+1)})
	}
	return n
}

func (w *walker) cut(n *Node, count int) {
	n.Cut = count
	w.cuts++
}

// stringNode truncates s to maxString runes, or bytes when s is binary.
func (w *walker) stringNode(typ, s string, binary bool) *Node {
	n := &Node{Kind: KindString, Type: typ}
	if binary || !utf8.ValidString(s) {
		n.Binary = true
		if w.maxString >= 0 && len(s) > w.maxString {
			n.Cut = len(s) - w.maxString
			s = s[:w.maxString]
		}
	} else if w.maxString >= 0 {
		if count := utf8.RuneCountInString(s); count > w.maxString {
			n.Cut = count - w.maxString
			s = s[:runeOffset(s, w.maxString)]
		}
	}
	if n.Cut > 0 {
		w.cuts++
	}
	n.Value = s
	return n
}

// runeOffset returns the byte offset of the n-th rune of s.
func runeOffset(s string, n int) int {
	i := 0
	for offset := range s {
		if i == n {
			return offset
		}
		i++
	}
	return len(s)
}

// compareKeys orders map keys numerically when possible, by formatted text otherwise.
func compareKeys(a, b reflect.Value) int {
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return cmp.Compare(a.Int(), b.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return cmp.Compare(a.Uint(), b.Uint())
		case reflect.Float32, reflect.Float64:
			return cmp.Compare(a.Float(), b.Float())
		case reflect.String:
			return cmp.Compare(a.String(), b.String())
		}
	}
	return cmp.Compare(formatKey(a), formatKey(b))
}

func formatKey(k reflect.Value) string {
	k = expose(k)
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10)
	}
	if !k.CanInterface() {
		return k.Type().String()
	}
	return fmt.Sprintf("%v", k.Interface())
}

// expose makes a value read through an unexported field usable with Interface.
// The engine only reads through the returned value.
func expose(v reflect.Value) reflect.Value {
	if !v.IsValid() || v.CanInterface() {
		return v
	}
	if v.CanAddr() {
		return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
	}
	return v
}

func typeLabel(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}
	return v.Type().String()
}

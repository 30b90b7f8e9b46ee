// Package dumper turns arbitrary Go values into bounded, serializable trees.
//
// A Cloner walks a value (structs, pointers, maps, slices, channels, funcs,
// anything reachable through an interface) and produces a Data tree that a
// Renderer can print or a Forwarder can ship elsewhere. Cloning never fails:
// cycles become references, oversized containers and strings are cut, and
// values that misbehave while being inspected show up as a sentinel entry in
// the tree instead of an error.
//
// # Casters
//
// Presentation of individual types is delegated to casters, functions keyed
// by a TypeKey:
//
//	cloner := dumper.NewCloner(nil)
//	cloner.AddCasters(map[dumper.TypeKey]dumper.Caster{
//	    dumper.KeyFor[*sql.DB](): castDB,
//	    dumper.KeyFor[io.Closer](): castCloser,
//	})
//
// For a struct value the cloner consults, from general to specific, the catch-all
// key "*", every registered interface the type implements, every embedded type
// and finally the type itself. Each caster receives the representation built so
// far and returns the edited one, so specific casters win over general ones.
// Channels, funcs and unsafe pointers are resources and are keyed by
// ResourceKey("chan"), ResourceKey("func") and so on.
//
// # Limits
//
//	cloner.SetMaxItems(2500) // items cloned past the minimum depth
//	cloner.SetMaxString(-1)  // runes kept per string, -1 for no limit
//	cloner.SetMinDepth(1)    // depth cloned in full regardless of MaxItems
//
// # Field Tags
//
// Struct fields can be hidden or sanitized in dumps:
//
//	type User struct {
//	    Email    string `dump.mask:"email"`
//	    Password string `dump.redact:"***"`
//	    Token    string `dump.hash:"sha256"`
//	    cache    []byte `dump:"-"`
//	}
//
// # Output
//
// A Data tree can be rendered with TextRenderer or HTMLRenderer, or forwarded
// to a dump server with a Forwarder over TCP or a Redis stream, encoded by one
// of the codec providers:
//
//   - json - JSON encoding (application/json)
//   - xml - XML encoding (application/xml)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
package dumper

// Codec provides content-type aware marshaling of dump envelopes.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// DebugInfoer lets a type replace its field listing in dumps.
// When implemented, the entries of DebugInfo seed the representation instead
// of the struct fields; casters still run afterwards.
type DebugInfoer interface {
	// DebugInfo returns the entries to display, keyed by label.
	DebugInfo() map[string]any
}

// ContextProvider contributes metadata to forwarded dumps.
type ContextProvider interface {
	// Context returns the metadata, or nil when nothing applies.
	Context() map[string]any
}

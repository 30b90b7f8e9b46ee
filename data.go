package dumper

// NodeKind identifies the shape of a Node.
type NodeKind string

const (
	KindNil      NodeKind = "nil"
	KindBool     NodeKind = "bool"
	KindInt      NodeKind = "int"
	KindUint     NodeKind = "uint"
	KindFloat    NodeKind = "float"
	KindComplex  NodeKind = "complex"
	KindString   NodeKind = "string"
	KindArray    NodeKind = "array"
	KindMap      NodeKind = "map"
	KindObject   NodeKind = "object"
	KindResource NodeKind = "resource"
	KindRef      NodeKind = "ref"   // second encounter of a pointer-backed value
	KindFault    NodeKind = "fault" // contained failure, Value holds the message
)

// Node is one value in a finished dump tree.
//
// Cut counts what was elided: runes (or bytes, when Binary) for strings,
// entries for containers. Handle identifies pointer-backed values; a KindRef
// node carries the Handle of the node it points back to.
type Node struct {
	Kind    NodeKind       `json:"kind" yaml:"kind" msgpack:"kind" bson:"kind" xml:"kind,attr"`
	Type    string         `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty" bson:"type,omitempty" xml:"type,attr,omitempty"`
	Value   any            `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty" bson:"value,omitempty" xml:"value,omitempty"`
	Binary  bool           `json:"binary,omitempty" yaml:"binary,omitempty" msgpack:"binary,omitempty" bson:"binary,omitempty" xml:"binary,attr,omitempty"`
	Cut     int            `json:"cut,omitempty" yaml:"cut,omitempty" msgpack:"cut,omitempty" bson:"cut,omitempty" xml:"cut,attr,omitempty"`
	Handle  int            `json:"handle,omitempty" yaml:"handle,omitempty" msgpack:"handle,omitempty" bson:"handle,omitempty" xml:"handle,attr,omitempty"`
	Entries []Entry        `json:"entries,omitempty" yaml:"entries,omitempty" msgpack:"entries,omitempty" bson:"entries,omitempty" xml:"entry,omitempty"`
	Attr    map[string]any `json:"attr,omitempty" yaml:"attr,omitempty" msgpack:"attr,omitempty" bson:"attr,omitempty" xml:"-"`
}

// Entry is a keyed child of a container, object or resource node.
// Keys keep their Prefix* marker; use SplitKey to separate it.
type Entry struct {
	Key  string `json:"key" yaml:"key" msgpack:"key" bson:"key" xml:"key,attr"`
	Node *Node  `json:"node" yaml:"node" msgpack:"node" bson:"node" xml:"node"`
}

// Data is a finished dump tree. It is owned by the caller once returned.
type Data struct {
	Root   *Node `json:"root" yaml:"root" msgpack:"root" bson:"root" xml:"root"`
	Items  int   `json:"items" yaml:"items" msgpack:"items" bson:"items" xml:"items,attr"`
	Cuts   int   `json:"cuts" yaml:"cuts" msgpack:"cuts" bson:"cuts" xml:"cuts,attr"`
	Faults int   `json:"faults" yaml:"faults" msgpack:"faults" bson:"faults" xml:"faults,attr"`
}

// IsContainer reports whether the node holds entries.
func (n *Node) IsContainer() bool {
	switch n.Kind {
	case KindArray, KindMap, KindObject, KindResource:
		return true
	default:
		return false
	}
}

// Lookup returns the child stored under key, nil when absent.
func (n *Node) Lookup(key string) *Node {
	for _, e := range n.Entries {
		if e.Key == key {
			return e.Node
		}
	}
	return nil
}

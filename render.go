package dumper

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Renderer prints a Data tree.
type Renderer interface {
	Render(w io.Writer, d *Data) error
}

// TextRenderer prints plain indented text, one entry per line.
// Zero limits mean unbounded.
type TextRenderer struct {
	MaxDepth  int // containers deeper than this are collapsed
	MaxString int // runes shown per string
}

// Render writes d to w.
func (r TextRenderer) Render(w io.Writer, d *Data) error {
	p := &printer{markup: plainMarkup{}, maxDepth: r.MaxDepth, maxString: r.MaxString}
	p.data(d)
	p.buf.WriteByte('\n')
	_, err := io.WriteString(w, p.buf.String())
	return err
}

// markup decorates rendered tokens.
type markup interface {
	escape(s string) string
	wrap(class, s, title string) string
}

type plainMarkup struct{}

func (plainMarkup) escape(s string) string     { return s }
func (plainMarkup) wrap(_, s, _ string) string { return s }

// printer renders nodes depth first into buf.
type printer struct {
	markup    markup
	maxDepth  int
	maxString int
	buf       strings.Builder
}

func (p *printer) data(d *Data) {
	if d == nil || d.Root == nil {
		p.token("const", "null")
		return
	}
	p.node(d.Root, 0)
}

func (p *printer) token(class, s string) {
	p.buf.WriteString(p.markup.wrap(class, p.markup.escape(s), ""))
}

func (p *printer) node(n *Node, depth int) {
	if n == nil {
		p.token("const", "null")
		return
	}

	switch n.Kind {
	case KindNil:
		p.token("const", "null")
	case KindBool:
		p.token("const", fmt.Sprint(n.Value))
	case KindInt, KindUint, KindFloat, KindComplex:
		p.token("num", fmt.Sprint(n.Value))
	case KindString:
		p.str(n)
	case KindRef:
		p.token("ref", n.Type+" &"+strconv.Itoa(n.Handle))
	case KindFault:
		p.token("fault", SentinelKey+" "+fmt.Sprint(n.Value))
	default:
		p.container(n, depth)
	}
}

func (p *printer) str(n *Node) {
	s, _ := n.Value.(string)
	cut := n.Cut
	if p.maxString > 0 {
		if n.Binary && len(s) > p.maxString {
			cut += len(s) - p.maxString
			s = s[:p.maxString]
		} else if count := utf8.RuneCountInString(s); !n.Binary && count > p.maxString {
			cut += count - p.maxString
			s = s[:runeOffset(s, p.maxString)]
		}
	}

	quoted := strconv.Quote(s)
	if n.Binary {
		quoted = "b" + quoted
	}
	p.token("str", quoted)
	if cut > 0 {
		p.token("cut", "…"+strconv.Itoa(cut))
	}
}

func (p *printer) container(n *Node, depth int) {
	opener, closer := "{", "}"
	if n.Kind == KindArray || n.Kind == KindMap {
		opener, closer = "[", "]"
	}

	label := n.Type
	if n.Handle > 0 {
		label += " #" + strconv.Itoa(n.Handle)
	}
	p.buf.WriteString(p.markup.wrap("type", p.markup.escape(label), source(n)))
	p.buf.WriteString(" " + opener)

	switch {
	case len(n.Entries) == 0 && n.Cut == 0:
		p.buf.WriteString(closer)
		return
	case p.maxDepth > 0 && depth >= p.maxDepth:
		p.token("cut", "…"+strconv.Itoa(len(n.Entries)+n.Cut))
		p.buf.WriteString(closer)
		return
	}

	p.buf.WriteByte('\n')
	indent := strings.Repeat("  ", depth+1)
	for _, e := range n.Entries {
		p.buf.WriteString(indent)
		p.key(n.Kind, e.Key)
		p.node(e.Node, depth+1)
		p.buf.WriteByte('\n')
	}
	if n.Cut > 0 {
		p.buf.WriteString(indent)
		p.token("cut", "…"+strconv.Itoa(n.Cut))
		p.buf.WriteByte('\n')
	}
	p.buf.WriteString(strings.Repeat("  ", depth) + closer)
}

// key prints an entry label. Object keys carry a marker for their prefix:
// "~" virtual, "+" dynamic, "-" unexported.
func (p *printer) key(kind NodeKind, key string) {
	switch kind {
	case KindArray:
		p.token("index", key)
		p.buf.WriteString(" => ")
	case KindMap:
		p.token("key", strconv.Quote(key))
		p.buf.WriteString(" => ")
	default:
		prefix, name := SplitKey(key)
		switch prefix {
		case PrefixVirtual:
			name = "~" + name
		case PrefixDynamic:
			name = "+" + name
		case PrefixUnexported:
			name = "-" + name
		}
		class := "prop"
		if name == SentinelKey || strings.HasSuffix(name, SentinelKey) {
			class = "fault"
		}
		p.token(class, name)
		p.buf.WriteString(": ")
	}
}

// source formats the file and line a type was declared near, if known.
func source(n *Node) string {
	file, ok := n.Attr["file"].(string)
	if !ok {
		return ""
	}
	if line := lineNumber(n.Attr["line"]); line > 0 {
		return file + ":" + strconv.Itoa(line)
	}
	return file
}

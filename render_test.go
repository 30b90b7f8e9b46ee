package dumper

import (
	"bytes"
	"strings"
	"testing"
)

func str(s string) *Node            { return &Node{Kind: KindString, Type: "string", Value: s} }
func num(n int64) *Node             { return &Node{Kind: KindInt, Type: "int", Value: n} }
func entry(k string, n *Node) Entry { return Entry{Key: k, Node: n} }

func renderText(t *testing.T, r TextRenderer, root *Node) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(&buf, &Data{Root: root}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	return buf.String()
}

func TestTextRenderer(t *testing.T) {
	tests := []struct {
		name string
		r    TextRenderer
		root *Node
		want string
	}{
		{
			name: "nil",
			root: &Node{Kind: KindNil},
			want: "null\n",
		},
		{
			name: "map",
			root: &Node{Kind: KindMap, Type: "map[string]int", Entries: []Entry{entry("a", num(1))}},
			want: "map[string]int [\n  \"a\" => 1\n]\n",
		},
		{
			name: "object keys",
			root: &Node{Kind: KindObject, Type: "main.User", Handle: 1, Entries: []Entry{
				entry("Name", str("bob")),
				entry(PrefixVirtual+"id", num(7)),
				entry(PrefixUnexported+"x", &Node{Kind: KindNil}),
				entry(PrefixDynamic+"extra", &Node{Kind: KindBool, Value: true}),
			}},
			want: "main.User #1 {\n  Name: \"bob\"\n  ~id: 7\n  -x: null\n  +extra: true\n}\n",
		},
		{
			name: "ref",
			root: &Node{Kind: KindRef, Type: "main.User", Handle: 1},
			want: "main.User &1\n",
		},
		{
			name: "fault",
			root: &Node{Kind: KindFault, Value: "boom"},
			want: "⚠ boom\n",
		},
		{
			name: "cut string",
			root: &Node{Kind: KindString, Value: "abc", Cut: 2},
			want: "\"abc\"…2\n",
		},
		{
			name: "binary string",
			root: &Node{Kind: KindString, Value: "\x00\x01", Binary: true},
			want: "b\"\\x00\\x01\"\n",
		},
		{
			name: "max string",
			r:    TextRenderer{MaxString: 2},
			root: str("héllo"),
			want: "\"hé\"…3\n",
		},
		{
			name: "empty container",
			root: &Node{Kind: KindArray, Type: "[]int"},
			want: "[]int []\n",
		},
		{
			name: "container cut",
			root: &Node{Kind: KindArray, Type: "[]int", Cut: 3, Entries: []Entry{entry("0", num(1))}},
			want: "[]int [\n  0 => 1\n  …3\n]\n",
		},
		{
			name: "max depth",
			r:    TextRenderer{MaxDepth: 1},
			root: &Node{Kind: KindArray, Type: "[][]int", Entries: []Entry{
				entry("0", &Node{Kind: KindArray, Type: "[]int", Entries: []Entry{entry("0", num(1)), entry("1", num(2))}}),
			}},
			want: "[][]int [\n  0 => []int […2]\n]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderText(t, tt.r, tt.root); got != tt.want {
				t.Errorf("Render() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestTextRenderer_NilData(t *testing.T) {
	var buf bytes.Buffer
	if err := (TextRenderer{}).Render(&buf, nil); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if buf.String() != "null\n" {
		t.Errorf("Render(nil) = %q", buf.String())
	}
}

func TestHTMLRenderer(t *testing.T) {
	root := &Node{
		Kind: KindObject,
		Type: "app.Page",
		Attr: map[string]any{"file": "/src/app/page.go", "line": 12},
		Entries: []Entry{
			entry("Body", str("<b>bold</b>")),
		},
	}

	var buf bytes.Buffer
	if err := (HTMLRenderer{}).Render(&buf, &Data{Root: root}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`<pre class="dumper">`,
		`title="/src/app/page.go:12"`,
		`<span class="dumper-prop">Body</span>`,
		`&lt;b&gt;bold&lt;/b&gt;`,
		"</pre>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "<b>bold") {
		t.Error("string values should be escaped")
	}
}

func TestSource(t *testing.T) {
	tests := []struct {
		attr map[string]any
		want string
	}{
		{nil, ""},
		{map[string]any{"file": "a.go"}, "a.go"},
		{map[string]any{"file": "a.go", "line": int64(3)}, "a.go:3"},
		{map[string]any{"file": "a.go", "line": float64(9)}, "a.go:9"},
	}
	for _, tt := range tests {
		if got := source(&Node{Attr: tt.attr}); got != tt.want {
			t.Errorf("source(%v) = %q, want %q", tt.attr, got, tt.want)
		}
	}
}

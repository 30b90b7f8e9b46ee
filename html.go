package dumper

import (
	"html"
	"io"
)

// HTMLRenderer prints a Data tree as a styled <pre> block.
// Zero limits mean unbounded.
type HTMLRenderer struct {
	MaxDepth  int
	MaxString int
}

const htmlStyle = `<style>
pre.dumper{background:#18171b;color:#ff8400;padding:5px 10px;font:12px Menlo,Monaco,Consolas,monospace;overflow:auto;white-space:pre-wrap}
pre.dumper .dumper-num{color:#1299da}
pre.dumper .dumper-const{color:#1299da;font-weight:bold}
pre.dumper .dumper-str{color:#56db3a}
pre.dumper .dumper-type{color:#ffffff}
pre.dumper .dumper-prop,pre.dumper .dumper-key,pre.dumper .dumper-index{color:#a0a0a0}
pre.dumper .dumper-ref{color:#a0a0a0;font-style:italic}
pre.dumper .dumper-cut{color:#808080}
pre.dumper .dumper-fault{color:#ff5555;font-weight:bold}
</style>
`

// Render writes d to w, preceded by the stylesheet.
func (r HTMLRenderer) Render(w io.Writer, d *Data) error {
	p := &printer{markup: htmlMarkup{}, maxDepth: r.MaxDepth, maxString: r.MaxString}
	p.buf.WriteString(htmlStyle)
	p.buf.WriteString(`<pre class="dumper">`)
	p.data(d)
	p.buf.WriteString("</pre>\n")
	_, err := io.WriteString(w, p.buf.String())
	return err
}

type htmlMarkup struct{}

func (htmlMarkup) escape(s string) string {
	return html.EscapeString(s)
}

func (htmlMarkup) wrap(class, s, title string) string {
	if title != "" {
		return `<span class="dumper-` + class + `" title="` + html.EscapeString(title) + `">` + s + `</span>`
	}
	return `<span class="dumper-` + class + `">` + s + `</span>`
}

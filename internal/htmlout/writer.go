// Package htmlout renders a doctree.Document as HTML. A Writer is an
// io.Reader: every Read resumes the traversal until a chunk of output is
// ready, so arbitrarily large documents render in bounded memory.
package htmlout

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/outbuf"
	"github.com/hangy/AntiXss-sub003/internal/props"
	"github.com/hangy/AntiXss-sub003/internal/textstore"
	"github.com/hangy/AntiXss-sub003/internal/traverse"
)

// Options configure a Writer.
type Options struct {
	// ChunkSize is the number of bytes a Read renders ahead.
	ChunkSize int
	// MaxUndo bounds the traversal's property undo log.
	MaxUndo int
}

// Writer streams the HTML of one document.
type Writer struct {
	doc    *doctree.Document
	buf    *outbuf.Buffer
	walker *traverse.Walker

	// text node currently being emitted and whether it opened a span
	text doctree.NodeHandle
	span bool
}

// New returns a Writer over the whole of doc.
func New(doc *doctree.Document, opts Options) *Writer {
	w := &Writer{doc: doc, buf: outbuf.New(opts.ChunkSize)}
	w.walker = traverse.New(doc, w, traverse.Options{MaxUndo: opts.MaxUndo})
	return w
}

// ResetFragment restricts the output to the content between start and end.
// Pending output is discarded.
func (w *Writer) ResetFragment(start, end traverse.Boundary) error {
	w.buf.Reset()
	w.text, w.span = doctree.NullNode, false
	return w.walker.ResetFragment(start, end)
}

// Read renders the next chunk of HTML into p.
func (w *Writer) Read(p []byte) (int, error) {
	for w.buf.Len() == 0 {
		if w.walker.Done() {
			return 0, io.EOF
		}
		if _, err := w.walker.Run(); err != nil {
			return 0, err
		}
	}
	return w.buf.Read(p)
}

// Render returns the HTML of doc.
func Render(doc *doctree.Document, opts Options) (string, error) {
	var sb strings.Builder
	if _, err := io.Copy(&sb, New(doc, opts)); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (w *Writer) CanAcceptMore() bool { return w.buf.CanAcceptMore() }

func (w *Writer) Start(tw *traverse.Walker, h doctree.NodeHandle, n *doctree.Node) bool {
	tag := tagName(w.doc, h, n)
	if tag == "" {
		return true
	}
	w.buf.WriteByte('<')
	w.buf.WriteString(tag)
	w.writeAttributes(n)
	if decl := nodeStyle(w.doc, n, tag); decl != "" {
		w.writeAttribute("style", decl)
	}
	if isVoid(tag, n) {
		w.buf.WriteString(" />")
		return false
	}
	w.buf.WriteByte('>')
	return true
}

func (w *Writer) End(tw *traverse.Walker, h doctree.NodeHandle, n *doctree.Node) {
	tag := tagName(w.doc, h, n)
	if tag == "" || isVoid(tag, n) {
		return
	}
	w.buf.WriteString("</")
	w.buf.WriteString(tag)
	w.buf.WriteByte('>')
}

func (w *Writer) ContinueText(tw *traverse.Walker, h doctree.NodeHandle, begin, end textstore.Position) bool {
	state := tw.Properties()
	if w.text != h {
		w.text = h
		decl := textStyle(w.doc, state)
		w.span = decl != ""
		if w.span {
			w.buf.WriteString("<span")
			w.writeAttribute("style", decl)
			w.buf.WriteByte('>')
		}
	}
	pre := state.EffectiveFlags().IsOn(props.FlagPreformatted)
	it := w.doc.Text.Iterate(begin, end)
	for it.MoveNext() {
		w.writeRun(it.Run(), pre)
		if !w.buf.CanAcceptMore() && it.Position() < end {
			tw.SetTextPosition(it.Position())
			return false
		}
	}
	if w.span {
		w.buf.WriteString("</span>")
	}
	w.text, w.span = doctree.NullNode, false
	return true
}

func (w *Writer) writeRun(r textstore.Run, pre bool) {
	var unit string
	switch r.Kind {
	case textstore.RunText:
		w.buf.WriteString(html.EscapeString(string(r.Runes())))
		return
	case textstore.RunSpace:
		unit = " "
	case textstore.RunNbsp:
		unit = "&nbsp;"
	case textstore.RunTab:
		unit = "\t"
	case textstore.RunNewLine:
		unit = "<br />"
		if pre {
			unit = "\n"
		}
	default:
		return
	}
	for i := 0; i < r.Length; i++ {
		w.buf.WriteString(unit)
	}
}

func (w *Writer) writeAttribute(key, val string) {
	w.buf.WriteByte(' ')
	w.buf.WriteString(key)
	w.buf.WriteString(`="`)
	w.buf.WriteString(html.EscapeString(val))
	w.buf.WriteByte('"')
}

func (w *Writer) writeAttributes(n *doctree.Node) {
	for _, p := range n.Props {
		if !isAttribute(p.ID, n.Type) {
			continue
		}
		if val := attributeValue(w.doc, p.ID, p.Value); val != "" {
			w.writeAttribute(p.ID.String(), val)
		}
	}
	if n.FlagProps.IsDefined(props.FlagRightToLeft) {
		dir := "ltr"
		if n.FlagProps.IsOn(props.FlagRightToLeft) {
			dir = "rtl"
		}
		w.writeAttribute("dir", dir)
	}
}

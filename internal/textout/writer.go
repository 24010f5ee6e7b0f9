// Package textout renders a doctree.Document as plain text.
//
// Block containers are separated by exactly one line break; there is never a
// break before the first or after the last line. Images show their
// alternate text. Like htmlout.Writer, a Writer is an io.Reader that renders
// one chunk per Read.
package textout

import (
	"io"
	"strings"

	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/outbuf"
	"github.com/hangy/AntiXss-sub003/internal/props"
	"github.com/hangy/AntiXss-sub003/internal/textstore"
	"github.com/hangy/AntiXss-sub003/internal/traverse"
)

// Options configure a Writer.
type Options struct {
	ChunkSize int
	MaxUndo   int
}

// Writer streams the text of one document.
type Writer struct {
	doc    *doctree.Document
	buf    *outbuf.Buffer
	walker *traverse.Walker

	written bool // any character emitted yet
	newline bool // last character emitted was a line break
	pending bool // a block edge was crossed since the last character
}

// New returns a Writer over the whole of doc.
func New(doc *doctree.Document, opts Options) *Writer {
	w := &Writer{doc: doc, buf: outbuf.New(opts.ChunkSize)}
	hooks := &traverse.Table{
		DefaultStart: w.startBlock,
		DefaultEnd:   w.endBlock,
		Text:         w.text,
		Accept:       w.buf.CanAcceptMore,
	}
	hooks.On(doctree.TypeImage, w.image, nil)
	w.walker = traverse.New(doc, hooks, traverse.Options{MaxUndo: opts.MaxUndo})
	return w
}

// Read renders the next chunk of text into p.
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

// Render returns the text of doc.
func Render(doc *doctree.Document, opts Options) (string, error) {
	var sb strings.Builder
	if _, err := io.Copy(&sb, New(doc, opts)); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (w *Writer) startBlock(tw *traverse.Walker, h doctree.NodeHandle, n *doctree.Node) bool {
	if n.Type.IsBlock() {
		w.pending = true
	}
	return true
}

func (w *Writer) endBlock(tw *traverse.Walker, h doctree.NodeHandle, n *doctree.Node) {
	if n.Type.IsBlock() {
		w.pending = true
	}
}

func (w *Writer) image(tw *traverse.Walker, h doctree.NodeHandle, n *doctree.Node) bool {
	if alt := w.doc.Property(h, props.PropImageAltText); !alt.IsNull() {
		w.write(w.doc.Values.String(alt))
	}
	return false
}

// write emits s, preceded by the line break a crossed block edge calls for.
func (w *Writer) write(s string) {
	if s == "" {
		return
	}
	if w.pending && w.written && !w.newline {
		w.buf.WriteByte('\n')
	}
	w.pending = false
	w.buf.WriteString(s)
	w.written = true
	w.newline = s[len(s)-1] == '\n'
}

func (w *Writer) text(tw *traverse.Walker, h doctree.NodeHandle, begin, end textstore.Position) bool {
	it := w.doc.Text.Iterate(begin, end)
	for it.MoveNext() {
		w.writeRun(it.Run())
		if !w.buf.CanAcceptMore() && it.Position() < end {
			tw.SetTextPosition(it.Position())
			return false
		}
	}
	return true
}

func (w *Writer) writeRun(r textstore.Run) {
	var unit string
	switch r.Kind {
	case textstore.RunText:
		w.write(string(r.Runes()))
		return
	case textstore.RunSpace, textstore.RunNbsp:
		unit = " "
	case textstore.RunTab:
		unit = "\t"
	case textstore.RunNewLine:
		unit = "\n"
	default:
		return
	}
	w.write(strings.Repeat(unit, r.Length))
}

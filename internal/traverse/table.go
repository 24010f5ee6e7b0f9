package traverse

import (
	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/textstore"
)

// StartFunc is a per-type start hook. It reports whether to walk children.
type StartFunc func(w *Walker, h doctree.NodeHandle, n *doctree.Node) bool

// EndFunc is a per-type end hook.
type EndFunc func(w *Walker, h doctree.NodeHandle, n *doctree.Node)

// Table is a Visitor that dispatches Start and End to one hook pair per node
// type. Types without a start hook are descended into; types without an end
// hook are left silently. Default hooks, when set, serve every type without
// its own.
type Table struct {
	Starts [doctree.TypeCount]StartFunc
	Ends   [doctree.TypeCount]EndFunc

	DefaultStart StartFunc
	DefaultEnd   EndFunc

	Text   func(w *Walker, h doctree.NodeHandle, begin, end textstore.Position) bool
	Accept func() bool
}

// On registers the hooks for t. Either may be nil.
func (t *Table) On(typ doctree.NodeType, start StartFunc, end EndFunc) *Table {
	t.Starts[typ] = start
	t.Ends[typ] = end
	return t
}

func (t *Table) Start(w *Walker, h doctree.NodeHandle, n *doctree.Node) bool {
	if n.Type < doctree.TypeCount {
		if fn := t.Starts[n.Type]; fn != nil {
			return fn(w, h, n)
		}
	}
	if t.DefaultStart != nil {
		return t.DefaultStart(w, h, n)
	}
	return true
}

func (t *Table) End(w *Walker, h doctree.NodeHandle, n *doctree.Node) {
	if n.Type < doctree.TypeCount {
		if fn := t.Ends[n.Type]; fn != nil {
			fn(w, h, n)
			return
		}
	}
	if t.DefaultEnd != nil {
		t.DefaultEnd(w, h, n)
	}
}

func (t *Table) ContinueText(w *Walker, h doctree.NodeHandle, begin, end textstore.Position) bool {
	if t.Text == nil {
		return true
	}
	return t.Text(w, h, begin, end)
}

func (t *Table) CanAcceptMore() bool {
	if t.Accept == nil {
		return true
	}
	return t.Accept()
}

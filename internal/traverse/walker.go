// Package traverse walks a doctree.Document with an explicit stack so a
// walk can stop whenever its sink is full and resume later exactly where it
// left off.
//
// Each stack level moves through NotStarted, Started (text nodes only),
// EndPending and Ended. A Visitor receives a Start call when a container is
// entered, ContinueText calls until a text node is fully emitted, and an End
// call when a container is left. Text nodes get no Start or End call. The
// properties of every node on the stack are applied to a props.State for the
// duration of the node.
package traverse

import (
	"math"

	"github.com/hangy/AntiXss-sub003/internal/complexity"
	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/props"
	"github.com/hangy/AntiXss-sub003/internal/textstore"
)

// Visitor consumes a walk.
type Visitor interface {
	// Start is called on entering a container and reports whether to walk
	// its children.
	Start(w *Walker, h doctree.NodeHandle, n *doctree.Node) bool

	// End is called on leaving a container.
	End(w *Walker, h doctree.NodeHandle, n *doctree.Node)

	// ContinueText emits the text in [begin, end) of text node h and reports
	// whether all of it was emitted. A visitor that stops early records how
	// far it got with Walker.SetTextPosition.
	ContinueText(w *Walker, h doctree.NodeHandle, begin, end textstore.Position) bool

	// CanAcceptMore reports whether the sink takes more output. The walk
	// suspends when it returns false.
	CanAcceptMore() bool
}

// LevelState is the progress of one stack level.
type LevelState uint8

const (
	NotStarted LevelState = iota
	Started
	EndPending
	Ended
)

func (s LevelState) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Started:
		return "started"
	case EndPending:
		return "end-pending"
	case Ended:
		return "ended"
	}
	return "state?"
}

type level struct {
	node       doctree.NodeHandle
	state      LevelState
	mark       props.Mark
	outOfOrder bool

	// text range still to emit
	begin, end textstore.Position
}

// Boundary is one end of a fragment: a node and a text position inside or
// at the edge of it. The position may fall inside a text run.
type Boundary struct {
	Node     doctree.NodeHandle
	Position textstore.Position
}

// Options configure a Walker.
type Options struct {
	// MaxUndo bounds the property undo log; 0 means unbounded.
	MaxUndo int
}

// Walker is a resumable traversal of one Document.
type Walker struct {
	doc     *doctree.Document
	visitor Visitor
	state   *props.State
	stack   []level
	err     error
	done    bool

	fragment bool
	start    Boundary
	end      Boundary
	from, to textstore.Position
	stopping bool
}

// New returns a Walker over doc positioned at the document node.
func New(doc *doctree.Document, v Visitor, opts Options) *Walker {
	w := &Walker{doc: doc, visitor: v, state: props.NewState(opts.MaxUndo)}
	w.Reset()
	return w
}

// Document returns the walked document.
func (w *Walker) Document() *doctree.Document { return w.doc }

// Properties returns the property state in effect at the current node.
func (w *Walker) Properties() *props.State { return w.state }

// Depth returns the number of levels on the stack.
func (w *Walker) Depth() int { return len(w.stack) }

// Done reports whether the walk has finished.
func (w *Walker) Done() bool { return w.done }

// Err returns the error that stopped the walk.
func (w *Walker) Err() error { return w.err }

// Node returns the handle at the top of the stack.
func (w *Walker) Node() doctree.NodeHandle {
	if len(w.stack) == 0 {
		return doctree.NullNode
	}
	return w.stack[len(w.stack)-1].node
}

// Reset positions the walk at the start of the whole document.
func (w *Walker) Reset() {
	w.reset()
	w.from, w.to = 0, math.MaxInt32
	w.err = w.push(doctree.RootNode, false)
}

func (w *Walker) reset() {
	w.state.Reset()
	w.stack = w.stack[:0]
	w.err = nil
	w.done = false
	w.fragment = false
	w.stopping = false
	w.start, w.end = Boundary{}, Boundary{}
}

// ResetFragment positions the walk at start so that it emits the content up
// to end. The containers enclosing start get their Start call right away,
// their children are not walked afresh, and they get their End call once the
// walk leaves them. Text is clipped to [start.Position, end.Position); inside
// out-of-order subtrees only the boundary nodes themselves are clipped.
// A null end.Node walks to the end of the document.
func (w *Walker) ResetFragment(start, end Boundary) error {
	w.reset()
	w.fragment = true
	w.start, w.end = start, end
	w.from, w.to = start.Position, end.Position
	if end.Node == doctree.NullNode {
		w.to = math.MaxInt32
	}
	if start.Node == doctree.NullNode {
		w.start.Node = doctree.RootNode
	}
	if w.from > w.to {
		w.err = complexity.Misuse("fragment start %d after end %d", w.from, w.to)
		return w.err
	}

	var chain []doctree.NodeHandle
	for h := w.start.Node; h != doctree.NullNode; h = w.doc.Node(h).Parent {
		chain = append(chain, h)
	}
	if chain[len(chain)-1] != doctree.RootNode {
		w.err = complexity.Misuse("fragment start %d is detached", w.start.Node)
		return w.err
	}
	ooo := false
	for i := len(chain) - 1; i > 0; i-- {
		h := chain[i]
		n := w.doc.Node(h)
		ooo = ooo || n.IsOutOfOrder()
		if err := w.push(h, ooo); err != nil {
			w.err = err
			return err
		}
		w.stack[len(w.stack)-1].state = EndPending
		w.visitor.Start(w, h, n)
	}
	w.err = w.push(w.start.Node, ooo)
	return w.err
}

func (w *Walker) push(h doctree.NodeHandle, parentOutOfOrder bool) error {
	n := w.doc.Node(h)
	mask := doctree.InheritanceMasks[n.MaskIndex]
	mark, err := w.state.Apply(n.FlagProps, n.Props, mask.Flags, mask.Props)
	if err != nil {
		return err
	}
	l := level{
		node:       h,
		mark:       mark,
		outOfOrder: parentOutOfOrder || n.IsOutOfOrder(),
		begin:      n.Begin,
		end:        n.End,
	}
	if w.fragment {
		w.clip(&l)
	}
	w.stack = append(w.stack, l)
	return nil
}

func (w *Walker) clip(l *level) {
	boundary := l.node == w.start.Node || l.node == w.end.Node
	if l.outOfOrder && !boundary {
		return
	}
	if l.node == w.start.Node || !l.outOfOrder {
		if l.begin < w.from {
			l.begin = w.from
		}
	}
	if l.node == w.end.Node || !l.outOfOrder {
		if l.end > w.to {
			l.end = w.to
		}
	}
}

// outside reports whether an in-order node lies wholly outside the fragment
// window.
func (w *Walker) outside(l *level, n *doctree.Node) bool {
	if !w.fragment || l.outOfOrder || l.node == w.start.Node || l.node == w.end.Node {
		return false
	}
	return n.End <= w.from || n.Begin >= w.to
}

// SetTextPosition records that the current text node has been emitted up to
// pos. ContinueText calls it before returning false.
func (w *Walker) SetTextPosition(pos textstore.Position) {
	if len(w.stack) == 0 {
		return
	}
	top := &w.stack[len(w.stack)-1]
	if top.state == Started && pos >= top.begin && pos <= top.end {
		top.begin = pos
	}
}

// Run advances the walk until it completes or the visitor stops accepting
// output, and reports whether it completed. Run can be called again after a
// suspension to resume.
func (w *Walker) Run() (bool, error) {
	if w.err != nil {
		return false, w.err
	}
	for !w.done && w.visitor.CanAcceptMore() {
		top := &w.stack[len(w.stack)-1]
		n := w.doc.Node(top.node)
		switch top.state {
		case NotStarted:
			if w.outside(top, n) {
				top.state = Ended
				w.err = w.advance()
				break
			}
			if n.IsText() {
				top.state = Started
				break
			}
			descend := w.visitor.Start(w, top.node, n)
			top.state = EndPending
			if descend && n.LastChild != doctree.NullNode && !w.stopping {
				first := w.doc.Node(n.LastChild).NextSibling
				w.err = w.push(first, top.outOfOrder)
			}
		case Started:
			if top.begin >= top.end {
				top.state = Ended
				w.err = w.advance()
				break
			}
			if w.visitor.ContinueText(w, top.node, top.begin, top.end) {
				top.state = Ended
				w.err = w.advance()
			}
		case EndPending:
			w.visitor.End(w, top.node, n)
			top.state = Ended
			w.err = w.advance()
		case Ended:
			w.err = w.advance()
		}
		if w.err != nil {
			return false, w.err
		}
	}
	return w.done, nil
}

// advance leaves the ended top level: it restores the properties in effect
// before the node and moves to its next sibling or back to its parent.
func (w *Walker) advance() error {
	top := w.stack[len(w.stack)-1]
	if err := w.state.Undo(top.mark); err != nil {
		return err
	}
	if w.fragment && top.node == w.end.Node {
		w.stopping = true
	}
	w.stack = w.stack[:len(w.stack)-1]
	if len(w.stack) == 0 {
		w.done = true
		// keep the root visible as ended
		w.stack = append(w.stack, level{node: top.node, state: Ended, mark: top.mark})
		return nil
	}
	if w.stopping {
		return nil
	}
	next := w.doc.NextSibling(top.node)
	if next == doctree.NullNode {
		return nil
	}
	return w.push(next, w.stack[len(w.stack)-1].outOfOrder)
}

// RunToCompletion calls Run until the walk is done, calling drain whenever
// the walk suspends.
func (w *Walker) RunToCompletion(drain func() error) error {
	for {
		done, err := w.Run()
		if err != nil || done {
			return err
		}
		if drain == nil {
			return complexity.Misuse("walk suspended with nothing to drain the sink")
		}
		if err := drain(); err != nil {
			return err
		}
	}
}

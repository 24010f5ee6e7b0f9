package doctree

import (
	"github.com/hangy/AntiXss-sub003/internal/complexity"
	"github.com/hangy/AntiXss-sub003/internal/textstore"
)

// FirstChild returns the first child of h, or NullNode.
func (d *Document) FirstChild(h NodeHandle) NodeHandle {
	last := d.Node(h).LastChild
	if last == NullNode {
		return NullNode
	}
	return d.Node(last).NextSibling
}

// LastChild returns the last child of h, or NullNode.
func (d *Document) LastChild(h NodeHandle) NodeHandle {
	return d.Node(h).LastChild
}

// NextSibling returns the sibling after h, or NullNode if h is the last
// child.
func (d *Document) NextSibling(h NodeHandle) NodeHandle {
	n := d.Node(h)
	if n.Parent == NullNode || d.Node(n.Parent).LastChild == h {
		return NullNode
	}
	return n.NextSibling
}

// PreviousSibling returns the sibling before h, or NullNode. It scans the
// sibling list.
func (d *Document) PreviousSibling(h NodeHandle) NodeHandle {
	parent := d.Node(h).Parent
	if parent == NullNode || d.FirstChild(parent) == h {
		return NullNode
	}
	return d.predecessor(parent, h)
}

// predecessor returns the node whose NextSibling is h in the circular list
// of parent; for the first child that is the last child.
func (d *Document) predecessor(parent, h NodeHandle) NodeHandle {
	last := d.Node(parent).LastChild
	cur := last
	for {
		next := d.Node(cur).NextSibling
		if next == h {
			return cur
		}
		cur = next
		if cur == last {
			panic(complexity.Misuse("node %d is not a child of %d", h, parent))
		}
	}
}

// ChildCount returns the number of children of h.
func (d *Document) ChildCount(h NodeHandle) int {
	n := 0
	for c := d.FirstChild(h); c != NullNode; c = d.NextSibling(c) {
		n++
	}
	return n
}

// Children returns the children of h in order.
func (d *Document) Children(h NodeHandle) []NodeHandle {
	var out []NodeHandle
	for c := d.FirstChild(h); c != NullNode; c = d.NextSibling(c) {
		out = append(out, c)
	}
	return out
}

func (d *Document) checkAttachable(parent, child NodeHandle) error {
	if d.Node(child).Parent != NullNode {
		return complexity.Misuse("node %d is already attached", child)
	}
	if child == RootNode {
		return complexity.Misuse("root cannot be attached")
	}
	if d.Node(parent).IsText() {
		return complexity.Misuse("text node %d cannot have children", parent)
	}
	return nil
}

// AppendChild links a detached child as the last child of parent.
func (d *Document) AppendChild(parent, child NodeHandle) error {
	if err := d.checkAttachable(parent, child); err != nil {
		return err
	}
	p := d.Node(parent)
	c := d.Node(child)
	if p.LastChild == NullNode {
		c.NextSibling = child
	} else {
		last := d.Node(p.LastChild)
		c.NextSibling = last.NextSibling
		last.NextSibling = child
	}
	p.LastChild = child
	c.Parent = parent
	return d.check()
}

// PrependChild links a detached child as the first child of parent.
func (d *Document) PrependChild(parent, child NodeHandle) error {
	if d.Node(parent).LastChild == NullNode {
		return d.AppendChild(parent, child)
	}
	if err := d.checkAttachable(parent, child); err != nil {
		return err
	}
	p := d.Node(parent)
	last := d.Node(p.LastChild)
	c := d.Node(child)
	c.NextSibling = last.NextSibling
	last.NextSibling = child
	c.Parent = parent
	return d.check()
}

// InsertSiblingAfter links a detached node right after ref.
func (d *Document) InsertSiblingAfter(ref, node NodeHandle) error {
	parent := d.Node(ref).Parent
	if parent == NullNode {
		return complexity.Misuse("node %d has no parent", ref)
	}
	if err := d.checkAttachable(parent, node); err != nil {
		return err
	}
	r := d.Node(ref)
	n := d.Node(node)
	n.NextSibling = r.NextSibling
	r.NextSibling = node
	n.Parent = parent
	if p := d.Node(parent); p.LastChild == ref {
		p.LastChild = node
	}
	return d.check()
}

// InsertSiblingBefore links a detached node right before ref.
func (d *Document) InsertSiblingBefore(ref, node NodeHandle) error {
	parent := d.Node(ref).Parent
	if parent == NullNode {
		return complexity.Misuse("node %d has no parent", ref)
	}
	if err := d.checkAttachable(parent, node); err != nil {
		return err
	}
	prev := d.predecessor(parent, ref)
	d.Node(prev).NextSibling = node
	n := d.Node(node)
	n.NextSibling = ref
	n.Parent = parent
	return d.check()
}

// RemoveFromParent unlinks h from its parent. The subtree stays intact.
func (d *Document) RemoveFromParent(h NodeHandle) error {
	n := d.Node(h)
	parent := n.Parent
	if parent == NullNode {
		return complexity.Misuse("node %d has no parent", h)
	}
	p := d.Node(parent)
	if n.NextSibling == h {
		p.LastChild = NullNode
	} else {
		prev := d.predecessor(parent, h)
		d.Node(prev).NextSibling = n.NextSibling
		if p.LastChild == h {
			p.LastChild = prev
		}
	}
	n = d.Node(h)
	n.Parent = NullNode
	n.NextSibling = NullNode
	return d.check()
}

// SplitTextNode splits the range of text node h at pos, which may fall
// inside a text run. The left part becomes a new preceding sibling carrying
// a copy of h's properties; h keeps [pos, End).
func (d *Document) SplitTextNode(h NodeHandle, pos textstore.Position) (NodeHandle, error) {
	n := d.Node(h)
	if !n.IsText() {
		return NullNode, complexity.Misuse("node %d is not a text node", h)
	}
	if pos <= n.Begin || pos >= n.End {
		return NullNode, complexity.Misuse("split position %d outside (%d, %d)", pos, n.Begin, n.End)
	}
	// the first character cell of a run starting at Begin would leave the
	// left part empty
	if pos == n.Begin+1 && d.Text.IsRunBoundary(n.Begin) && !d.Text.IsRunBoundary(pos) {
		return NullNode, complexity.Misuse("split position %d leaves an empty part", pos)
	}
	left, err := d.NewNode(TypeText)
	if err != nil {
		return NullNode, err
	}
	d.copyProperties(left, h)
	n = d.Node(h)
	l := d.Node(left)
	l.Begin = n.Begin
	l.End = pos
	l.Flags = n.Flags
	n.Begin = pos
	if n.Parent == NullNode {
		return left, nil
	}
	return left, d.InsertSiblingBefore(h, left)
}

// SplitNodeBeforeChild splits container h in two: a new preceding sibling
// with a copy of h's properties receives every child before child; h keeps
// child and what follows.
func (d *Document) SplitNodeBeforeChild(h, child NodeHandle) (NodeHandle, error) {
	if d.Node(child).Parent != h {
		return NullNode, complexity.Misuse("node %d is not a child of %d", child, h)
	}
	if d.Node(h).Parent == NullNode {
		return NullNode, complexity.Misuse("node %d has no parent", h)
	}
	left, err := d.NewNode(d.Node(h).Type)
	if err != nil {
		return NullNode, err
	}
	d.copyProperties(left, h)
	n := d.Node(h)
	l := d.Node(left)
	l.Flags = n.Flags
	l.Begin = n.Begin
	l.End = d.Node(child).Begin
	n.Begin = l.End

	// Detach the run of children [first, child) as a whole and re-anchor it
	// under left.
	first := d.FirstChild(h)
	if first != child {
		prev := d.predecessor(h, child)
		last := n.LastChild
		d.Node(last).NextSibling = child
		d.Node(prev).NextSibling = first
		l.LastChild = prev
		for c := first; ; c = d.Node(c).NextSibling {
			d.Node(c).Parent = left
			if c == prev {
				break
			}
		}
	}
	return left, d.InsertSiblingBefore(h, left)
}

// DuplicateInsertAsChild wraps the children of h in a fresh copy of h, which
// becomes h's only child. It re-opens an implicitly closed container.
func (d *Document) DuplicateInsertAsChild(h NodeHandle) (NodeHandle, error) {
	if d.Node(h).IsText() {
		return NullNode, complexity.Misuse("text node %d cannot be duplicated as parent", h)
	}
	dup, err := d.NewNode(d.Node(h).Type)
	if err != nil {
		return NullNode, err
	}
	d.copyProperties(dup, h)
	n := d.Node(h)
	c := d.Node(dup)
	c.Begin = n.Begin
	c.End = n.End
	c.Flags = n.Flags &^ FlagVisited
	c.LastChild = n.LastChild
	for ch := d.FirstChild(h); ch != NullNode; {
		next := d.NextSibling(ch)
		d.Node(ch).Parent = dup
		ch = next
	}
	n.LastChild = NullNode
	return dup, d.AppendChild(h, dup)
}

// SetOutOfOrder flags h as created out of position order.
func (d *Document) SetOutOfOrder(h NodeHandle) {
	d.Node(h).Flags |= FlagOutOfOrder
}

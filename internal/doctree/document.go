// Package doctree is the handle-based document tree every format reader
// writes into and every format writer reads from.
//
// Children of a node form a circular singly-linked list anchored at the
// parent's LastChild: LastChild.NextSibling is the first child, and a child
// is the last one iff it equals its parent's LastChild. Appending is O(1);
// inserting before or removing a child scans from LastChild for the
// predecessor.
package doctree

import (
	"github.com/hangy/AntiXss-sub003/internal/arena"
	"github.com/hangy/AntiXss-sub003/internal/complexity"
	"github.com/hangy/AntiXss-sub003/internal/props"
	"github.com/hangy/AntiXss-sub003/internal/textstore"
)

// NodeHandle identifies a node. NullNode is the null handle.
type NodeHandle arena.Handle

const NullNode NodeHandle = 0

// RootNode is the handle of the document node of every Document.
const RootNode NodeHandle = 1

// NodeFlags carry per-node state bits.
type NodeFlags uint8

const (
	// FlagOutOfOrder marks a node created before its correct tree position
	// was known. Its subtree is not sorted by text position relative to its
	// siblings.
	FlagOutOfOrder NodeFlags = 1 << iota

	// FlagOpen marks a container still being built; its End is not fixed
	// yet.
	FlagOpen

	// FlagVisited is scratch state for walkers.
	FlagVisited
)

// Node is one record of the tree.
type Node struct {
	Type        NodeType
	Flags       NodeFlags
	Parent      NodeHandle
	LastChild   NodeHandle
	NextSibling NodeHandle
	Begin       textstore.Position
	End         textstore.Position
	MaskIndex   MaskIndex

	FlagProps props.FlagProperties
	PropMask  props.PropertyMask
	// Props is sorted by id and holds one reference per counted value.
	Props []props.Property
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool { return n.Type == TypeText }

// IsOutOfOrder reports whether FlagOutOfOrder is set.
func (n *Node) IsOutOfOrder() bool { return n.Flags&FlagOutOfOrder != 0 }

// IsOpen reports whether FlagOpen is set.
func (n *Node) IsOpen() bool { return n.Flags&FlagOpen != 0 }

// Config bounds a Document.
type Config struct {
	NodePlaneSize int
	MaxNodePlanes int
	Text          textstore.Config
	Values        props.StoreConfig

	// DebugChecks runs Validate after every tree mutation.
	DebugChecks bool
}

// DefaultConfig returns limits suited to documents of a few megabytes.
func DefaultConfig() Config {
	return Config{
		NodePlaneSize: 1024,
		MaxNodePlanes: 256,
		Text:          textstore.Config{SegmentSize: 4096, MaxSegments: 4096},
		Values:        props.StoreConfig{PlaneSize: 256, MaxPlanes: 1024},
	}
}

// Document owns the node arena, the text runs and the property values of
// one conversion. It is not safe for concurrent use.
type Document struct {
	nodes  *arena.Arena[Node]
	Text   *textstore.Store
	Values *props.Store
	closed bool
	debug  bool
}

// New returns a Document holding only its root node.
func New(cfg Config) (*Document, error) {
	d := &Document{
		nodes: arena.New[Node](arena.Config{
			Name:      "node",
			PlaneSize: cfg.NodePlaneSize,
			MaxPlanes: cfg.MaxNodePlanes,
		}),
		Text:   textstore.New(cfg.Text),
		Values: props.NewStore(cfg.Values),
		debug:  cfg.DebugChecks,
	}
	root, err := d.NewNode(TypeDocument)
	if err != nil {
		return nil, err
	}
	if root != RootNode {
		return nil, complexity.Misuse("root allocated at %d", root)
	}
	d.Node(root).Flags |= FlagOpen
	return d, nil
}

// Root returns the document node.
func (d *Document) Root() NodeHandle { return RootNode }

// Node returns the record of h. The pointer is valid until the next node
// allocation.
func (d *Document) Node(h NodeHandle) *Node {
	return d.nodes.Get(arena.Handle(h))
}

// Live reports whether h refers to an allocated node.
func (d *Document) Live(h NodeHandle) bool {
	return d.nodes.Live(arena.Handle(h))
}

// NodeCount returns the number of live nodes.
func (d *Document) NodeCount() int {
	return d.nodes.Len()
}

// Close fixes the end of the root at the current text position.
func (d *Document) Close() {
	root := d.Node(RootNode)
	root.End = d.Text.CurrentPosition()
	root.Flags &^= FlagOpen
	d.closed = true
}

// Closed reports whether Close was called.
func (d *Document) Closed() bool { return d.closed }

// NewNode allocates a detached node of type t whose range starts and ends at
// the current text position.
func (d *Document) NewNode(t NodeType) (NodeHandle, error) {
	h, n, err := d.nodes.Allocate()
	if err != nil {
		return NullNode, err
	}
	pos := d.Text.CurrentPosition()
	*n = Node{Type: t, Begin: pos, End: pos, MaskIndex: DefaultMaskIndex(t)}
	return NodeHandle(h), nil
}

// FreeNode releases the properties of a detached, childless node and
// recycles its handle.
func (d *Document) FreeNode(h NodeHandle) error {
	n := d.Node(h)
	if n.Parent != NullNode || n.LastChild != NullNode {
		return complexity.Misuse("free of attached node %d", h)
	}
	if h == RootNode {
		return complexity.Misuse("free of root node")
	}
	err := d.Values.ReleaseAll(n.Props)
	if ferr := d.nodes.Free(arena.Handle(h)); ferr != nil {
		return ferr
	}
	return err
}

// SetProperties replaces the own properties of h. The node takes over the
// references held by list.
func (d *Document) SetProperties(h NodeHandle, flags props.FlagProperties, list []props.Property) error {
	n := d.Node(h)
	old := n.Props
	n.FlagProps = flags
	n.Props = list
	n.PropMask = props.MaskOf(list)
	return d.Values.ReleaseAll(old)
}

// SetProperty sets one own property of h, taking a reference on v.
func (d *Document) SetProperty(h NodeHandle, id props.ID, v props.Value) error {
	n := d.Node(h)
	d.Values.AddRef(v)
	var old props.Value
	n.Props, old = props.Upsert(n.Props, id, v)
	n.PropMask.Set(id)
	return d.Values.Release(old)
}

// Property returns an own property of h.
func (d *Document) Property(h NodeHandle, id props.ID) props.Value {
	n := d.Node(h)
	if !n.PropMask.Has(id) {
		return props.Null
	}
	return props.Find(n.Props, id)
}

// copyProperties gives dst a copy of src's own properties.
func (d *Document) copyProperties(dst, src NodeHandle) {
	s := d.Node(src)
	list := append([]props.Property(nil), s.Props...)
	for _, p := range list {
		d.Values.AddRef(p.Value)
	}
	n := d.Node(dst)
	n.FlagProps = s.FlagProps
	n.Props = list
	n.PropMask = s.PropMask
	n.MaskIndex = s.MaskIndex
}

// NodeText renders the text of every text node under h in tree order.
func (d *Document) NodeText(h NodeHandle) string {
	var out []byte
	d.Walk(h, func(n NodeHandle, node *Node) bool {
		if node.IsText() {
			out = append(out, d.Text.Text(node.Begin, node.End)...)
		}
		return true
	})
	return string(out)
}

// Walk visits h and its descendants in pre-order without recursion. fn
// returns false to skip a node's children.
func (d *Document) Walk(h NodeHandle, fn func(NodeHandle, *Node) bool) {
	stack := []NodeHandle{h}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur, d.Node(cur)) {
			continue
		}
		mark := len(stack)
		for c := d.FirstChild(cur); c != NullNode; c = d.NextSibling(c) {
			stack = append(stack, c)
		}
		// reverse so the first child pops first
		for i, j := mark, len(stack)-1; i < j; i, j = i+1, j-1 {
			stack[i], stack[j] = stack[j], stack[i]
		}
	}
}

func (d *Document) check() error {
	if !d.debug {
		return nil
	}
	return d.Validate()
}

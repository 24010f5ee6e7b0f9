package doctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangy/AntiXss-sub003/internal/complexity"
	"github.com/hangy/AntiXss-sub003/internal/props"
	"github.com/hangy/AntiXss-sub003/internal/textstore"
)

func newDoc(t *testing.T) *Document {
	t.Helper()
	d, err := New(Config{
		NodePlaneSize: 64,
		MaxNodePlanes: 4,
		Text:          textstore.Config{SegmentSize: 256, MaxSegments: 4},
		Values:        props.StoreConfig{PlaneSize: 64, MaxPlanes: 4},
		DebugChecks:   true,
	})
	require.NoError(t, err)
	return d
}

// newChild appends an open container, the way the builder leaves one until
// it is closed.
func newChild(t *testing.T, d *Document, parent NodeHandle, typ NodeType) NodeHandle {
	t.Helper()
	h, err := d.NewNode(typ)
	require.NoError(t, err)
	d.Node(h).Flags |= FlagOpen
	require.NoError(t, d.AppendChild(parent, h))
	return h
}

// addText appends text and a text node holding exactly it.
func addText(t *testing.T, d *Document, parent NodeHandle, s string) NodeHandle {
	t.Helper()
	d.Text.DoNotMergeNextRun()
	h, err := d.NewNode(TypeText)
	require.NoError(t, err)
	require.NoError(t, d.Text.AddText(s))
	d.Node(h).End = d.Text.CurrentPosition()
	require.NoError(t, d.AppendChild(parent, h))
	return h
}

func TestRootIsHandleOne(t *testing.T) {
	d := newDoc(t)
	assert.Equal(t, RootNode, d.Root())
	assert.Equal(t, TypeDocument, d.Node(d.Root()).Type)
	assert.True(t, d.Node(d.Root()).IsOpen())
	d.Close()
	assert.False(t, d.Node(d.Root()).IsOpen())
	assert.True(t, d.Closed())
}

func TestAppendKeepsCircularList(t *testing.T) {
	d := newDoc(t)
	a := newChild(t, d, RootNode, TypeBlock)
	b := newChild(t, d, RootNode, TypeBlock)
	c := newChild(t, d, RootNode, TypeBlock)

	assert.Equal(t, c, d.LastChild(RootNode))
	assert.Equal(t, a, d.Node(c).NextSibling, "last child links to the first")
	assert.Equal(t, []NodeHandle{a, b, c}, d.Children(RootNode))
	assert.Equal(t, NullNode, d.NextSibling(c))
	assert.Equal(t, b, d.PreviousSibling(c))
	assert.Equal(t, NullNode, d.PreviousSibling(a))
	assert.Equal(t, 3, d.ChildCount(RootNode))
}

func TestSiblingCycleHasExactLength(t *testing.T) {
	d := newDoc(t)
	var kids []NodeHandle
	for i := 0; i < 7; i++ {
		kids = append(kids, newChild(t, d, RootNode, TypeInline))
	}
	first := d.Node(d.LastChild(RootNode)).NextSibling
	cur := first
	for i := 0; i < len(kids); i++ {
		assert.Equal(t, kids[i], cur)
		cur = d.Node(cur).NextSibling
	}
	assert.Equal(t, first, cur)
}

func TestPrependAndInsert(t *testing.T) {
	d := newDoc(t)
	b := newChild(t, d, RootNode, TypeBlock)

	a, _ := d.NewNode(TypeBlock)
	require.NoError(t, d.PrependChild(RootNode, a))
	c, _ := d.NewNode(TypeBlock)
	require.NoError(t, d.InsertSiblingAfter(b, c))
	ab, _ := d.NewNode(TypeBlock)
	require.NoError(t, d.InsertSiblingBefore(b, ab))
	first, _ := d.NewNode(TypeBlock)
	require.NoError(t, d.InsertSiblingBefore(a, first))

	assert.Equal(t, []NodeHandle{first, a, ab, b, c}, d.Children(RootNode))
	assert.Equal(t, c, d.LastChild(RootNode))
	require.NoError(t, d.Validate())
}

func TestAttachErrors(t *testing.T) {
	d := newDoc(t)
	a := newChild(t, d, RootNode, TypeBlock)
	assert.ErrorIs(t, d.AppendChild(RootNode, a), complexity.ErrStructure)
	assert.ErrorIs(t, d.AppendChild(a, RootNode), complexity.ErrStructure)

	txt := addText(t, d, a, "x")
	n, _ := d.NewNode(TypeInline)
	assert.ErrorIs(t, d.AppendChild(txt, n), complexity.ErrStructure)

	detached, _ := d.NewNode(TypeBlock)
	assert.ErrorIs(t, d.InsertSiblingAfter(detached, n), complexity.ErrStructure)
	assert.ErrorIs(t, d.RemoveFromParent(detached), complexity.ErrStructure)
}

func TestRemoveFromParent(t *testing.T) {
	d := newDoc(t)
	a := newChild(t, d, RootNode, TypeBlock)
	b := newChild(t, d, RootNode, TypeBlock)
	c := newChild(t, d, RootNode, TypeBlock)

	require.NoError(t, d.RemoveFromParent(c))
	assert.Equal(t, []NodeHandle{a, b}, d.Children(RootNode))
	assert.Equal(t, b, d.LastChild(RootNode))

	require.NoError(t, d.RemoveFromParent(a))
	assert.Equal(t, []NodeHandle{b}, d.Children(RootNode))
	assert.Equal(t, b, d.Node(b).NextSibling)

	require.NoError(t, d.RemoveFromParent(b))
	assert.Empty(t, d.Children(RootNode))
	assert.Equal(t, NullNode, d.Node(b).Parent)

	require.NoError(t, d.FreeNode(b))
	assert.False(t, d.Live(b))
}

func TestFreeNodeRejectsAttached(t *testing.T) {
	d := newDoc(t)
	a := newChild(t, d, RootNode, TypeBlock)
	assert.ErrorIs(t, d.FreeNode(a), complexity.ErrStructure)
	assert.ErrorIs(t, d.FreeNode(RootNode), complexity.ErrStructure)
}

func TestSplitTextNode(t *testing.T) {
	d := newDoc(t)
	p := newChild(t, d, RootNode, TypeParagraph)
	d.Text.DoNotMergeNextRun()
	txt, _ := d.NewNode(TypeText)
	d.Node(txt).Begin = d.Text.CurrentPosition()
	require.NoError(t, d.Text.AddText("Hello"))
	mid := d.Text.CurrentPosition()
	require.NoError(t, d.Text.AddSimpleRun(textstore.RunSpace, 1))
	require.NoError(t, d.Text.AddText("world"))
	d.Node(txt).End = d.Text.CurrentPosition()
	require.NoError(t, d.AppendChild(p, txt))
	bold, _ := d.Values.RegisterString("strong")
	require.NoError(t, d.SetProperty(txt, props.PropTitle, bold))
	require.NoError(t, d.Values.Release(bold))

	left, err := d.SplitTextNode(txt, mid)
	require.NoError(t, err)
	assert.Equal(t, []NodeHandle{left, txt}, d.Children(p))
	assert.Equal(t, "Hello", d.Text.Text(d.Node(left).Begin, d.Node(left).End))
	assert.Equal(t, " world", d.Text.Text(d.Node(txt).Begin, d.Node(txt).End))
	assert.Equal(t, "strong", d.Values.String(d.Property(left, props.PropTitle)))
	assert.Equal(t, 2, d.Values.RefCount(bold))

	_, err = d.SplitTextNode(txt, d.Node(txt).Begin)
	assert.ErrorIs(t, err, complexity.ErrStructure)
	_, err = d.SplitTextNode(p, mid)
	assert.ErrorIs(t, err, complexity.ErrStructure)
}

func TestSplitTextNodeInsideRun(t *testing.T) {
	d := newDoc(t)
	p := newChild(t, d, RootNode, TypeParagraph)
	d.Text.DoNotMergeNextRun()
	txt, _ := d.NewNode(TypeText)
	begin := d.Text.CurrentPosition()
	d.Node(txt).Begin = begin
	require.NoError(t, d.Text.AddText("Hello"))
	d.Node(txt).End = d.Text.CurrentPosition()
	require.NoError(t, d.AppendChild(p, txt))

	left, err := d.SplitTextNode(txt, begin+4)
	require.NoError(t, err)
	assert.Equal(t, "Hel", d.NodeText(left))
	assert.Equal(t, "lo", d.NodeText(txt))
	assert.Equal(t, "Hello", d.NodeText(p))
	require.NoError(t, d.Validate())

	right, err := d.SplitTextNode(txt, begin+5)
	require.NoError(t, err)
	assert.Equal(t, "l", d.NodeText(right))
	assert.Equal(t, "o", d.NodeText(txt))

	_, err = d.SplitTextNode(left, begin+1)
	assert.ErrorIs(t, err, complexity.ErrStructure, "nothing before the first character")
}

func TestSplitNodeBeforeChild(t *testing.T) {
	d := newDoc(t)
	b := newChild(t, d, RootNode, TypeInline)
	require.NoError(t, d.SetProperty(b, props.PropFontColor, props.Color(0xff)))
	x := addText(t, d, b, "x")
	y := addText(t, d, b, "y")
	z := addText(t, d, b, "z")
	d.Node(b).End = d.Text.CurrentPosition()

	left, err := d.SplitNodeBeforeChild(b, z)
	require.NoError(t, err)
	assert.Equal(t, []NodeHandle{left, b}, d.Children(RootNode))
	assert.Equal(t, []NodeHandle{x, y}, d.Children(left))
	assert.Equal(t, []NodeHandle{z}, d.Children(b))
	assert.Equal(t, left, d.Node(x).Parent)
	assert.Equal(t, props.Color(0xff), d.Property(left, props.PropFontColor))
	assert.Equal(t, "xy", d.NodeText(left))
	assert.Equal(t, "z", d.NodeText(b))
	require.NoError(t, d.Validate())

	// splitting before the first child leaves an empty left part
	left2, err := d.SplitNodeBeforeChild(b, z)
	require.NoError(t, err)
	assert.Empty(t, d.Children(left2))
	assert.Equal(t, []NodeHandle{left, left2, b}, d.Children(RootNode))
}

func TestDuplicateInsertAsChild(t *testing.T) {
	d := newDoc(t)
	b := newChild(t, d, RootNode, TypeInline)
	x := addText(t, d, b, "x")
	y := addText(t, d, b, "y")
	d.Node(b).End = d.Text.CurrentPosition()

	dup, err := d.DuplicateInsertAsChild(b)
	require.NoError(t, err)
	assert.Equal(t, []NodeHandle{dup}, d.Children(b))
	assert.Equal(t, []NodeHandle{x, y}, d.Children(dup))
	assert.Equal(t, TypeInline, d.Node(dup).Type)
	assert.Equal(t, "xy", d.NodeText(RootNode))
	require.NoError(t, d.Validate())
}

func TestValidateDetectsCorruption(t *testing.T) {
	d := newDoc(t)
	a := newChild(t, d, RootNode, TypeBlock)
	b := newChild(t, d, RootNode, TypeBlock)
	require.NoError(t, d.Validate())

	d.Node(b).Parent = a
	assert.ErrorIs(t, d.Validate(), complexity.ErrStructure)
	d.Node(b).Parent = RootNode

	d.Close()
	d.Node(a).End = d.Node(RootNode).End + 10
	assert.ErrorIs(t, d.Validate(), complexity.ErrStructure)

	d.SetOutOfOrder(a)
	assert.NoError(t, d.Validate(), "out-of-order subtrees skip position checks")
}

func TestWalkPreOrder(t *testing.T) {
	d := newDoc(t)
	a := newChild(t, d, RootNode, TypeBlock)
	a1 := newChild(t, d, a, TypeInline)
	b := newChild(t, d, RootNode, TypeBlock)

	var order []NodeHandle
	d.Walk(RootNode, func(h NodeHandle, _ *Node) bool {
		order = append(order, h)
		return true
	})
	assert.Equal(t, []NodeHandle{RootNode, a, a1, b}, order)

	order = nil
	d.Walk(RootNode, func(h NodeHandle, n *Node) bool {
		order = append(order, h)
		return h != a
	})
	assert.Equal(t, []NodeHandle{RootNode, a, b}, order)
}

func TestNodeArenaLimit(t *testing.T) {
	d, err := New(Config{NodePlaneSize: 16, MaxNodePlanes: 1})
	require.NoError(t, err)
	for i := 0; i < 14; i++ {
		_, err := d.NewNode(TypeInline)
		require.NoError(t, err)
	}
	_, err = d.NewNode(TypeInline)
	assert.True(t, complexity.IsTooComplex(err))
}

func TestInheritanceTable(t *testing.T) {
	assert.Equal(t, MaskTable, DefaultMaskIndex(TypeTable))
	assert.Equal(t, MaskCell, DefaultMaskIndex(TypeTableCell))
	assert.Equal(t, MaskText, DefaultMaskIndex(TypeInline))
	m := InheritanceMasks[MaskText]
	assert.True(t, m.Props.Has(props.PropFontColor))
	assert.False(t, m.Props.Has(props.PropWidth))
	assert.False(t, InheritanceMasks[MaskTable].Props.Has(props.PropTextAlignment))
	assert.True(t, TypeParagraph.IsBlock())
	assert.False(t, TypeInline.IsBlock())
	assert.True(t, TypeImage.IsVoid())
}

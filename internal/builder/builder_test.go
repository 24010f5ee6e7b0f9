package builder

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html/atom"

	"github.com/hangy/AntiXss-sub003/internal/complexity"
	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/props"
	"github.com/hangy/AntiXss-sub003/internal/textstore"
)

func testOptions() Options {
	return Options{
		MaxNesting: 64,
		Document: doctree.Config{
			NodePlaneSize: 256,
			MaxNodePlanes: 64,
			Text:          textstore.Config{SegmentSize: 1024, MaxSegments: 64},
			Values:        props.StoreConfig{PlaneSize: 64, MaxPlanes: 16},
			DebugChecks:   true,
		},
	}
}

func newBuilder(t *testing.T, opts Options) *Builder {
	t.Helper()
	b, err := New(opts)
	require.NoError(t, err)
	return b
}

func finish(t *testing.T, b *Builder) *doctree.Document {
	t.Helper()
	d, err := b.Finish()
	require.NoError(t, err)
	return d
}

func TestEmptyContainerIsElided(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenContainer(doctree.TypeBlock, atom.Div, false))
	require.NoError(t, b.CloseContainer())
	d := finish(t, b)
	assert.Empty(t, d.Children(d.Root()))
	assert.Equal(t, 1, d.NodeCount())
}

func TestNestedEmptyContainersAreElided(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenContainer(doctree.TypeParagraph, atom.P, false))
	require.NoError(t, b.OpenContainer(doctree.TypeInline, atom.B, false))
	require.NoError(t, b.SetFlag(props.PrecedenceTagDefault, props.FlagBold, true))
	require.NoError(t, b.CloseContainer())
	require.NoError(t, b.CloseContainer())
	d := finish(t, b)
	assert.Equal(t, 1, d.NodeCount())
	s, m, st := d.Values.LiveValues()
	assert.Equal(t, []int{1, 1, 5}, []int{s, m, st}, "only globals remain")
}

func TestNestingLimitIsExact(t *testing.T) {
	opts := testOptions()
	opts.MaxNesting = 5
	b := newBuilder(t, opts)
	for i := 0; i < 5; i++ {
		require.NoError(t, b.OpenContainer(doctree.TypeBlock, atom.Div, false), "open %d", i+1)
	}
	err := b.OpenContainer(doctree.TypeBlock, atom.Div, false)
	require.Error(t, err)
	assert.True(t, complexity.IsTooComplex(err))
	assert.Contains(t, err.Error(), "nesting depth limit of 5 exceeded")

	// sticky
	assert.Equal(t, err, b.AddText("x"))
	assert.Equal(t, err, b.CloseContainer())
	assert.Equal(t, err, b.Err())
	_, ferr := b.Finish()
	assert.Equal(t, err, ferr)
}

func TestPropertyOnlyFrameNeverAllocates(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenPropertyContainer(atom.Font))
	require.NoError(t, b.CloseContainer())
	d := finish(t, b)
	assert.Equal(t, 1, d.NodeCount())
}

func TestSiblingBlocks(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenContainer(doctree.TypeBlock, atom.Div, false))
	require.NoError(t, b.AddText("A"))
	require.NoError(t, b.CloseContainer())
	require.NoError(t, b.OpenContainer(doctree.TypeBlock, atom.Div, false))
	require.NoError(t, b.AddText("B"))
	require.NoError(t, b.CloseContainer())
	d := finish(t, b)

	blocks := d.Children(d.Root())
	require.Len(t, blocks, 2)
	assert.Equal(t, "A", d.NodeText(blocks[0]))
	assert.Equal(t, "B", d.NodeText(blocks[1]))
	for _, blk := range blocks {
		n := d.Node(blk)
		assert.Equal(t, doctree.TypeBlock, n.Type)
		assert.False(t, n.IsOpen())
		assert.Equal(t, props.Tag(uint32(atom.Div)), d.Property(blk, props.PropTagName))
		require.Len(t, d.Children(blk), 1)
	}
	require.NoError(t, d.Validate())
}

func TestSpacesMergeIntoOneRun(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.AddSpace(3))
	require.NoError(t, b.AddSpace(2))
	d := finish(t, b)

	kids := d.Children(d.Root())
	require.Len(t, kids, 1)
	n := d.Node(kids[0])
	r := d.Text.Run(n.Begin)
	assert.Equal(t, textstore.RunSpace, r.Kind)
	assert.Equal(t, 5, r.Length)
	assert.Equal(t, n.End, r.Next())
}

func TestAddTextSplitsWhitespace(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.AddText("a b\tc\r\nd\re\u00a0f"))
	d := finish(t, b)
	assert.Equal(t, "a b\tc\nd\ne\u00a0f", d.NodeText(d.Root()))

	var kinds []textstore.RunKind
	it := d.Text.Iterate(0, d.Text.CurrentPosition())
	for it.MoveNext() {
		kinds = append(kinds, it.Run().Kind)
	}
	assert.Equal(t, []textstore.RunKind{
		textstore.RunText, textstore.RunSpace, textstore.RunText, textstore.RunTab,
		textstore.RunText, textstore.RunNewLine, textstore.RunText, textstore.RunNewLine,
		textstore.RunText, textstore.RunNbsp, textstore.RunText,
	}, kinds)
}

func TestPropertyFrameMergesIntoChildren(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenContainer(doctree.TypeParagraph, atom.P, false))
	require.NoError(t, b.OpenPropertyContainer(atom.Font))
	require.NoError(t, b.SetProperty(props.PrecedenceAttribute, props.PropFontColor, props.Color(0xff0000)))
	require.NoError(t, b.SetProperty(props.PrecedenceAttribute, props.PropWidth, props.Pixels(10)))
	require.NoError(t, b.AddText("x"))
	require.NoError(t, b.OpenContainer(doctree.TypeInline, atom.B, false))
	require.NoError(t, b.SetFlag(props.PrecedenceTagDefault, props.FlagBold, true))
	require.NoError(t, b.AddText("y"))
	require.NoError(t, b.CloseContainerTo(0))
	d := finish(t, b)

	paras := d.Children(d.Root())
	require.Len(t, paras, 1)
	kids := d.Children(paras[0])
	require.Len(t, kids, 2, "the font frame produces no node")

	text, bold := kids[0], kids[1]
	assert.True(t, d.Node(text).IsText())
	assert.Equal(t, props.Color(0xff0000), d.Property(text, props.PropFontColor))
	assert.True(t, d.Property(text, props.PropWidth).IsNull(), "box properties do not inherit")

	assert.Equal(t, doctree.TypeInline, d.Node(bold).Type)
	assert.Equal(t, props.Color(0xff0000), d.Property(bold, props.PropFontColor))
	assert.True(t, d.Node(bold).FlagProps.IsOn(props.FlagBold))
	inner := d.Children(bold)
	require.Len(t, inner, 1)
	assert.True(t, d.Property(inner[0], props.PropFontColor).IsNull(), "inherited through the tree")
	assert.Equal(t, "xy", d.NodeText(paras[0]))
}

func TestPrecedenceResolvedOnCommit(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenContainer(doctree.TypeInline, atom.Span, false))
	require.NoError(t, b.SetProperty(props.PrecedenceAttribute, props.PropFontColor, props.Color(1)))
	require.NoError(t, b.SetProperty(props.PrecedenceInlineStyle, props.PropFontColor, props.Color(2)))
	require.NoError(t, b.SetProperty(props.PrecedenceAttribute, props.PropFontColor, props.Color(3)))
	assert.Equal(t, props.Color(2), b.Property(props.PropFontColor))
	require.NoError(t, b.AddText("x"))
	d := finish(t, b)
	span := d.Children(d.Root())[0]
	assert.Equal(t, props.Color(2), d.Property(span, props.PropFontColor))
}

func TestStringPropertiesAreOwnedByNodes(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenContainer(doctree.TypeHyperlink, atom.A, false))
	require.NoError(t, b.SetStringProperty(props.PrecedenceAttribute, props.PropHyperlinkURL, "https://example.com"))
	require.NoError(t, b.SetStringProperty(props.PrecedenceAttribute, props.PropHyperlinkURL, "https://example.org"))
	require.NoError(t, b.AddText("link"))
	d := finish(t, b)

	a := d.Children(d.Root())[0]
	v := d.Property(a, props.PropHyperlinkURL)
	assert.Equal(t, "https://example.org", d.Values.String(v))
	assert.Equal(t, 1, d.Values.RefCount(v))
	s, _, _ := d.Values.LiveValues()
	assert.Equal(t, 2, s, "the overwritten url is released")
}

func TestStyleReference(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenContainer(doctree.TypeInline, atom.Span, false))
	require.NoError(t, b.SetFlag(props.PrecedenceInlineStyle, props.FlagItalic, false))
	require.NoError(t, b.SetStyleReference(props.PrecedenceInlineStyle, props.StyleItalic))
	require.NoError(t, b.SetStyleReference(props.PrecedenceInlineStyle, props.StyleBold))
	require.NoError(t, b.AddText("x"))
	require.NoError(t, b.SetStyleReference(props.PrecedenceInlineStyle, props.StyleUnderline))
	d := finish(t, b)
	f := d.Node(d.Children(d.Root())[0]).FlagProps
	assert.True(t, f.IsDefined(props.FlagItalic))
	assert.False(t, f.IsOn(props.FlagItalic))
	assert.True(t, f.IsOn(props.FlagBold))
	assert.True(t, f.IsOn(props.FlagUnderline))
}

func TestTypeFixup(t *testing.T) {
	opts := testOptions()
	opts.TypeFixup = func(tag atom.Atom, _ props.FlagProperties, list []props.Property) doctree.NodeType {
		if props.Find(list, props.PropDisplay) == props.Enum(props.DisplayTable) {
			return doctree.TypeTableDefinition
		}
		return doctree.TypeAny
	}
	b := newBuilder(t, opts)
	require.NoError(t, b.OpenContainer(doctree.TypeAny, atom.Div, false))
	require.NoError(t, b.SetProperty(props.PrecedenceInlineStyle, props.PropDisplay, props.Enum(props.DisplayTable)))
	require.NoError(t, b.AddText("t"))
	require.NoError(t, b.CloseContainer())
	require.NoError(t, b.OpenContainer(doctree.TypeAny, atom.Div, false))
	require.NoError(t, b.AddText("b"))
	d := finish(t, b)

	kids := d.Children(d.Root())
	require.Len(t, kids, 2)
	assert.Equal(t, doctree.TypeTableDefinition, d.Node(kids[0]).Type)
	assert.Equal(t, doctree.TypeBlock, d.Node(kids[1]).Type)
}

func TestBlockBoundaries(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.AddText("a"))
	require.NoError(t, b.OpenContainer(doctree.TypeParagraph, atom.P, false))
	require.NoError(t, b.AddText("b"))
	assert.False(t, b.AtLineStart())
	require.NoError(t, b.CloseContainer())
	assert.True(t, b.AtLineStart())
	require.NoError(t, b.OpenContainer(doctree.TypeParagraph, atom.P, false))
	require.NoError(t, b.AddText("c"))
	d := finish(t, b)

	kids := d.Children(d.Root())
	require.Len(t, kids, 3)
	p1, p2 := d.Node(kids[1]), d.Node(kids[2])
	assert.Equal(t, textstore.RunBlockBoundary, d.Text.Run(p1.Begin-1).Kind, "boundary before the first paragraph")
	assert.Equal(t, textstore.RunBlockBoundary, d.Text.Run(p1.End-1).Kind, "boundary closing it")
	assert.Equal(t, p1.End, p2.Begin, "already at line start, no second boundary")
	assert.Equal(t, "abc", d.NodeText(d.Root()))
}

func TestVoidContainer(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenContainer(doctree.TypeImage, atom.Img, true))
	require.NoError(t, b.SetStringProperty(props.PrecedenceAttribute, props.PropImageURL, "a.png"))
	assert.ErrorIs(t, b.AddText("x"), complexity.ErrStructure)

	b = newBuilder(t, testOptions())
	require.NoError(t, b.OpenContainer(doctree.TypeImage, atom.Img, true))
	require.NoError(t, b.SetStringProperty(props.PrecedenceAttribute, props.PropImageURL, "a.png"))
	require.NoError(t, b.CloseContainer())
	d := finish(t, b)
	kids := d.Children(d.Root())
	require.Len(t, kids, 1)
	assert.Equal(t, doctree.TypeImage, d.Node(kids[0]).Type)
	assert.Equal(t, "a.png", d.Values.String(d.Property(kids[0], props.PropImageURL)))
}

func TestCloseWithoutOpenIsMisuse(t *testing.T) {
	b := newBuilder(t, testOptions())
	err := b.CloseContainer()
	assert.ErrorIs(t, err, complexity.ErrStructure)
	assert.False(t, complexity.IsTooComplex(err))
	assert.Equal(t, err, b.Err())
}

func TestFinishTwice(t *testing.T) {
	b := newBuilder(t, testOptions())
	finish(t, b)
	_, err := b.Finish()
	assert.ErrorIs(t, err, complexity.ErrStructure)
}

func TestRevokeTrailingSpace(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.AddText("a "))
	assert.True(t, b.LastIsSpace())
	ok, err := b.RevokeTrailingSpace()
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = b.RevokeTrailingSpace()
	require.NoError(t, err)
	assert.False(t, ok)
	d := finish(t, b)
	assert.Equal(t, "a", d.NodeText(d.Root()))
}

// <b>x<i>y</b>z</i>
func TestCloseOverlappingContainer(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenContainer(doctree.TypeInline, atom.B, false))
	require.NoError(t, b.SetFlag(props.PrecedenceTagDefault, props.FlagBold, true))
	require.NoError(t, b.AddText("x"))
	require.NoError(t, b.OpenContainer(doctree.TypeInline, atom.I, false))
	require.NoError(t, b.SetFlag(props.PrecedenceTagDefault, props.FlagItalic, true))
	require.NoError(t, b.AddText("y"))
	require.Equal(t, 1, b.FindOpen(atom.B))
	require.NoError(t, b.CloseOverlappingContainer(b.Depth()-b.FindOpen(atom.B)))
	assert.Equal(t, 1, b.Depth())
	assert.Equal(t, atom.I, b.TopTag())
	require.NoError(t, b.AddText("z"))
	require.NoError(t, b.CloseContainer())
	d := finish(t, b)

	kids := d.Children(d.Root())
	require.Len(t, kids, 2)
	bold, italic := kids[0], kids[1]
	assert.Equal(t, "xy", d.NodeText(bold))
	assert.Equal(t, "z", d.NodeText(italic))
	assert.True(t, d.Node(italic).FlagProps.IsOn(props.FlagItalic))
	assert.Equal(t, props.Tag(uint32(atom.I)), d.Property(italic, props.PropTagName))
	inner := d.Children(bold)
	require.Len(t, inner, 2)
	assert.True(t, d.Node(inner[1]).FlagProps.IsOn(props.FlagItalic))
}

func TestOverlappingCloseKeepsPendingFrames(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenContainer(doctree.TypeInline, atom.B, false))
	require.NoError(t, b.AddText("x"))
	require.NoError(t, b.OpenContainer(doctree.TypeInline, atom.I, false))
	require.NoError(t, b.SetProperty(props.PrecedenceAttribute, props.PropFontColor, props.Color(7)))
	require.NoError(t, b.CloseOverlappingContainer(1))
	require.NoError(t, b.AddText("z"))
	d := finish(t, b)

	kids := d.Children(d.Root())
	require.Len(t, kids, 2)
	assert.Equal(t, props.Color(7), d.Property(kids[1], props.PropFontColor))
	assert.Len(t, d.Children(kids[0]), 1, "the never-filled i left no node")
}

func TestOverlappingCloseDropsClosedPropertyFrames(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenPropertyContainer(atom.Font))
	require.NoError(t, b.SetProperty(props.PrecedenceAttribute, props.PropFontColor, props.Color(0xff0000)))
	require.NoError(t, b.SetStringProperty(props.PrecedenceAttribute, props.PropFontFace, "serif"))
	require.NoError(t, b.OpenContainer(doctree.TypeInline, atom.B, false))
	require.NoError(t, b.SetFlag(props.PrecedenceTagDefault, props.FlagBold, true))
	require.NoError(t, b.AddText("x"))
	require.NoError(t, b.CloseOverlappingContainer(1))
	require.NoError(t, b.AddText("y"))
	d := finish(t, b)

	kids := d.Children(d.Root())
	require.Len(t, kids, 2)
	first, second := kids[0], kids[1]
	assert.Equal(t, props.Color(0xff0000), d.Property(first, props.PropFontColor))
	assert.Equal(t, "serif", d.Values.String(d.Property(first, props.PropFontFace)))
	assert.Equal(t, 1, d.Values.RefCount(d.Property(first, props.PropFontFace)))

	assert.True(t, d.Property(second, props.PropFontColor).IsNull(), "the closed font no longer applies")
	assert.True(t, d.Property(second, props.PropFontFace).IsNull())
	assert.True(t, d.Node(second).FlagProps.IsOn(props.FlagBold))
	assert.Equal(t, props.Tag(uint32(atom.B)), d.Property(second, props.PropTagName))
	assert.Equal(t, "y", d.NodeText(second))
}

func TestOverlappingCloseKeepsOpenPropertyFrames(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenPropertyContainer(atom.Font))
	require.NoError(t, b.SetProperty(props.PrecedenceAttribute, props.PropFontColor, props.Color(0xff0000)))
	require.NoError(t, b.OpenContainer(doctree.TypeInline, atom.B, false))
	require.NoError(t, b.AddText("x"))
	require.NoError(t, b.OpenContainer(doctree.TypeInline, atom.I, false))
	require.NoError(t, b.AddText("y"))
	require.NoError(t, b.CloseOverlappingContainer(1))
	require.NoError(t, b.AddText("z"))
	d := finish(t, b)

	kids := d.Children(d.Root())
	require.Len(t, kids, 2)
	assert.Equal(t, props.Color(0xff0000), d.Property(kids[0], props.PropFontColor))
	assert.Equal(t, props.Color(0xff0000), d.Property(kids[1], props.PropFontColor), "the font is still open")
	assert.Equal(t, props.Tag(uint32(atom.I)), d.Property(kids[1], props.PropTagName))
}

func TestOverlappingCloseKeepsLateWrites(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenContainer(doctree.TypeInline, atom.Span, false))
	require.NoError(t, b.OpenContainer(doctree.TypeInline, atom.B, false))
	require.NoError(t, b.AddText("x"))
	require.NoError(t, b.SetProperty(props.PrecedenceInlineStyle, props.PropFontColor, props.Color(5)))
	require.NoError(t, b.SetFlag(props.PrecedenceInlineStyle, props.FlagUnderline, true))
	require.NoError(t, b.CloseOverlappingContainer(1))
	require.NoError(t, b.AddText("y"))
	d := finish(t, b)

	kids := d.Children(d.Root())
	require.Len(t, kids, 2)
	second := kids[1]
	assert.Equal(t, props.Color(5), d.Property(second, props.PropFontColor))
	assert.True(t, d.Node(second).FlagProps.IsOn(props.FlagUnderline))
}

func TestOutOfOrderContainerIsFostered(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenContainer(doctree.TypeTable, atom.Table, false))
	require.NoError(t, b.OpenContainer(doctree.TypeTableRow, atom.Tr, false))
	require.NoError(t, b.OpenContainer(doctree.TypeTableCell, atom.Td, false))
	require.NoError(t, b.AddText("c"))
	require.NoError(t, b.CloseContainer())
	require.NoError(t, b.OpenOutOfOrderContainer(doctree.TypeBlock, 0, doctree.TypeTable))
	require.NoError(t, b.AddText("stray"))
	require.NoError(t, b.CloseContainer())
	d := finish(t, b)

	kids := d.Children(d.Root())
	require.Len(t, kids, 2)
	assert.True(t, d.Node(kids[0]).IsOutOfOrder())
	assert.Equal(t, doctree.TypeTable, d.Node(kids[1]).Type)
	assert.Equal(t, "strayc", d.NodeText(d.Root()))
	require.NoError(t, d.Validate())
}

func TestOutOfOrderWithoutTargetAppends(t *testing.T) {
	b := newBuilder(t, testOptions())
	require.NoError(t, b.OpenOutOfOrderContainer(doctree.TypeBlock, 0, doctree.TypeTable))
	require.NoError(t, b.AddText("s"))
	d := finish(t, b)
	kids := d.Children(d.Root())
	require.Len(t, kids, 1)
	assert.False(t, d.Node(kids[0]).IsOutOfOrder())
}

func TestElisionIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts := testOptions()
	opts.Logger = logger
	b := newBuilder(t, opts)
	require.NoError(t, b.OpenContainer(doctree.TypeBlock, atom.Div, false))
	require.NoError(t, b.CloseContainer())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "elide_container", hook.LastEntry().Data["action"])
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}

var randomTypes = []doctree.NodeType{
	doctree.TypeBlock, doctree.TypeParagraph, doctree.TypeInline,
	doctree.TypeHyperlink, doctree.TypeListItem, doctree.TypeAny,
}

var randomWords = []string{"alpha", "b", "gamma ray", "\t", "line\n", " ", "x"}

// buildRandom drives b with a seeded random call sequence and returns the
// text it added.
func buildRandom(t *testing.T, b *Builder, rng *rand.Rand, steps int, overlap bool) string {
	t.Helper()
	var want strings.Builder
	for i := 0; i < steps; i++ {
		switch op := rng.Intn(10); {
		case op < 3 && b.Depth() < 20:
			typ := randomTypes[rng.Intn(len(randomTypes))]
			require.NoError(t, b.OpenContainer(typ, atom.Span, false))
			if rng.Intn(2) == 0 {
				require.NoError(t, b.SetFlag(props.PrecedenceAttribute, props.FlagID(rng.Intn(int(props.FlagCount))), true))
			}
		case op == 3 && b.Depth() < 20:
			require.NoError(t, b.OpenPropertyContainer(atom.Font))
			require.NoError(t, b.SetProperty(props.PrecedenceAttribute, props.PropFontColor, props.Color(uint32(rng.Intn(0xffffff)))))
		case op < 6 && b.Depth() > 0:
			if overlap && b.Depth() > 1 && rng.Intn(2) == 0 {
				keep := rng.Intn(b.Depth())
				require.NoError(t, b.CloseOverlappingContainer(keep))
			} else {
				require.NoError(t, b.CloseContainer())
			}
		default:
			w := randomWords[rng.Intn(len(randomWords))]
			require.NoError(t, b.AddText(w))
			want.WriteString(w)
		}
	}
	return want.String()
}

func TestRoundTripContainment(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		b := newBuilder(t, testOptions())
		want := buildRandom(t, b, rand.New(rand.NewSource(seed)), 300, false)
		d := finish(t, b)
		assert.Equal(t, want, d.NodeText(d.Root()), "seed %d", seed)
	}
}

func TestRandomOverlapKeepsTreeValid(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		b := newBuilder(t, testOptions())
		want := buildRandom(t, b, rand.New(rand.NewSource(seed)), 300, true)
		d := finish(t, b)
		require.NoError(t, d.Validate(), "seed %d", seed)
		assert.Equal(t, want, d.NodeText(d.Root()), "seed %d", seed)
		d.Walk(d.Root(), func(h doctree.NodeHandle, n *doctree.Node) bool {
			assert.False(t, n.IsOpen(), "node %d left open", h)
			return true
		})
	}
}

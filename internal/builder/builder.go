// Package builder turns a linear stream of open, close and content calls
// into a doctree.Document.
//
// Each open container is a frame on an explicit stack. A frame's node is
// allocated only once the frame becomes observable: when content is added
// to it or beneath it. A container closed before that point leaves no node
// behind. Property-only frames (font-like tags) never produce a node; their
// inheritable properties are merged into the nodes committed beneath them.
//
// The first failing operation makes the Builder unusable: every later call
// returns the same error, which Err and Finish also report.
package builder

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/atom"

	"github.com/hangy/AntiXss-sub003/internal/complexity"
	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/props"
	"github.com/hangy/AntiXss-sub003/internal/textstore"
)

// DefaultMaxNesting is used when Options.MaxNesting is not positive.
const DefaultMaxNesting = 256

// TypeFixup picks the final type of a TypeAny container from the properties
// it carries when it is committed.
type TypeFixup func(tag atom.Atom, flags props.FlagProperties, list []props.Property) doctree.NodeType

// Options configure a Builder.
type Options struct {
	// MaxNesting bounds the number of simultaneously open containers. The
	// document node does not count.
	MaxNesting int

	Document doctree.Config
	Logger   logrus.FieldLogger

	// TypeFixup resolves TypeAny containers. Without one, or when it
	// returns TypeAny, they become TypeBlock.
	TypeFixup TypeFixup
}

type frameState uint8

const (
	// stateBeforeContent: nothing observable yet; properties accumulate.
	stateBeforeContent frameState = iota
	// stateHasNode: the node is allocated and linked.
	stateHasNode
	// stateFlushed: a property-only frame whose properties are folded.
	stateFlushed
)

func (s frameState) String() string {
	switch s {
	case stateBeforeContent:
		return "before-content"
	case stateHasNode:
		return "has-node"
	case stateFlushed:
		return "flushed"
	}
	return "state?"
}

type frame struct {
	typ   doctree.NodeType
	tag   atom.Atom
	state frameState
	node  doctree.NodeHandle

	// acc is non-nil while the frame is stateBeforeContent.
	acc *props.Accumulator

	// own folded properties of a stateFlushed or stateHasNode frame, before
	// anything inherited from property-only frames, owning their references
	flags props.FlagProperties
	list  []props.Property

	void         bool
	propertyOnly bool
	outOfOrder   bool
	before       doctree.NodeType
}

// Builder builds one Document. It is not safe for concurrent use.
type Builder struct {
	doc    *doctree.Document
	opts   Options
	log    logrus.FieldLogger
	frames []frame

	// textNode is the trailing text node of the top frame that text is
	// still appended to, or NullNode.
	textNode doctree.NodeHandle

	free     []*props.Accumulator
	err      error
	finished bool
}

// New returns a Builder writing into a fresh Document.
func New(opts Options) (*Builder, error) {
	if opts.MaxNesting <= 0 {
		opts.MaxNesting = DefaultMaxNesting
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	doc, err := doctree.New(opts.Document)
	if err != nil {
		return nil, err
	}
	b := &Builder{doc: doc, opts: opts, log: log}
	b.frames = append(b.frames, frame{
		typ:   doctree.TypeDocument,
		state: stateHasNode,
		node:  doc.Root(),
	})
	return b, nil
}

// Document returns the Document being built.
func (b *Builder) Document() *doctree.Document {
	return b.doc
}

// Logger returns the logger the Builder reports recoveries to.
func (b *Builder) Logger() logrus.FieldLogger {
	return b.log
}

// Err returns the first error any operation failed with.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(err error) error {
	if err != nil && b.err == nil {
		b.err = err
		if complexity.IsTooComplex(err) {
			b.log.WithField("action", "build_abort").WithError(err).Debug("document exceeds a capacity limit")
		}
	}
	return b.err
}

func (b *Builder) ready() error {
	if b.err != nil {
		return b.err
	}
	if b.finished {
		return complexity.Misuse("builder already finished")
	}
	return nil
}

// Depth returns the number of open containers.
func (b *Builder) Depth() int {
	return len(b.frames) - 1
}

// TopType returns the type of the innermost open container, TypeDocument
// when none is open.
func (b *Builder) TopType() doctree.NodeType {
	return b.frames[len(b.frames)-1].typ
}

// TopTag returns the tag of the innermost open container.
func (b *Builder) TopTag() atom.Atom {
	return b.frames[len(b.frames)-1].tag
}

// TypeAt returns the type of the container open at level (1 is the
// outermost).
func (b *Builder) TypeAt(level int) doctree.NodeType {
	if level <= 0 || level >= len(b.frames) {
		return doctree.TypeNone
	}
	return b.frames[level].typ
}

// FindOpen returns the level of the innermost open container with tag, or 0.
func (b *Builder) FindOpen(tag atom.Atom) int {
	for i := len(b.frames) - 1; i > 0; i-- {
		if b.frames[i].tag == tag {
			return i
		}
	}
	return 0
}

// FindOpenType returns the level of the innermost open container of type t,
// or 0.
func (b *Builder) FindOpenType(t doctree.NodeType) int {
	for i := len(b.frames) - 1; i > 0; i-- {
		if b.frames[i].typ == t {
			return i
		}
	}
	return 0
}

// OpenContainer opens a container of type t. A void container never gets
// content and is committed when closed even if nothing was added.
func (b *Builder) OpenContainer(t doctree.NodeType, tag atom.Atom, void bool) error {
	return b.open(frame{typ: t, tag: tag, void: void})
}

// OpenPropertyContainer opens a frame that only contributes properties to
// the content beneath it.
func (b *Builder) OpenPropertyContainer(tag atom.Atom) error {
	return b.open(frame{typ: doctree.TypeInline, tag: tag, propertyOnly: true})
}

// OpenOutOfOrderContainer opens a container that is linked as the preceding
// sibling of the innermost open node of type before, and flagged
// out-of-order. Without such a node it is linked normally.
func (b *Builder) OpenOutOfOrderContainer(t doctree.NodeType, tag atom.Atom, before doctree.NodeType) error {
	return b.open(frame{typ: t, tag: tag, outOfOrder: true, before: before})
}

func (b *Builder) open(f frame) error {
	if err := b.ready(); err != nil {
		return err
	}
	if b.Depth() >= b.opts.MaxNesting {
		return b.fail(complexity.Exceeded("nesting depth", b.opts.MaxNesting))
	}
	if top := &b.frames[len(b.frames)-1]; top.void {
		return b.fail(complexity.Misuse("container opened inside void %s", top.typ))
	}
	b.textNode = doctree.NullNode
	f.state = stateBeforeContent
	f.acc = b.newAccumulator()
	if f.tag != 0 {
		if err := f.acc.Set(props.PrecedenceTagDefault, props.PropTagName, props.Tag(uint32(f.tag))); err != nil {
			return b.fail(err)
		}
	}
	b.frames = append(b.frames, f)
	return nil
}

func (b *Builder) newAccumulator() *props.Accumulator {
	if n := len(b.free); n > 0 {
		acc := b.free[n-1]
		b.free = b.free[:n-1]
		return acc
	}
	return props.NewAccumulator(b.doc.Values)
}

func (b *Builder) recycle(acc *props.Accumulator) error {
	err := acc.Reset()
	b.free = append(b.free, acc)
	return err
}

// commitAll makes every frame observable, outermost first.
func (b *Builder) commitAll() error {
	first := len(b.frames)
	for first > 1 && b.frames[first-1].state == stateBeforeContent {
		first--
	}
	for i := first; i < len(b.frames); i++ {
		if err := b.commit(i); err != nil {
			return err
		}
	}
	return nil
}

// nodeLevel returns the level of the innermost frame below level that owns
// a node.
func (b *Builder) nodeLevel(level int) int {
	for i := level - 1; i > 0; i-- {
		if b.frames[i].state == stateHasNode {
			return i
		}
	}
	return 0
}

func (b *Builder) commit(level int) error {
	f := &b.frames[level]
	flags, list, err := f.acc.Fold()
	if rerr := b.recycle(f.acc); err == nil {
		err = rerr
	}
	f.acc = nil
	if err != nil {
		return err
	}
	if f.propertyOnly {
		f.state = stateFlushed
		f.flags, f.list = flags, list
		return nil
	}

	t := f.typ
	if t == doctree.TypeAny {
		if b.opts.TypeFixup != nil {
			t = b.opts.TypeFixup(f.tag, flags, list)
		}
		if t == doctree.TypeAny || t == doctree.TypeNone {
			t = doctree.TypeBlock
		}
		f.typ = t
	}
	f.flags = flags
	f.list = make([]props.Property, len(list))
	copy(f.list, list)
	for _, p := range f.list {
		b.doc.Values.AddRef(p.Value)
	}
	flags, list = b.inherit(level, t, flags, list)

	if t.IsBlock() && !b.doc.Text.AtLineStart() {
		if err := b.doc.Text.AddSimpleRun(textstore.RunBlockBoundary, 1); err != nil {
			return b.release(err, list)
		}
	}
	h, err := b.doc.NewNode(t)
	if err != nil {
		return b.release(err, list)
	}
	if err := b.doc.SetProperties(h, flags, list); err != nil {
		return err
	}
	b.doc.Node(h).Flags |= doctree.FlagOpen

	parent := b.frames[b.nodeLevel(level)].node
	linked := false
	if f.outOfOrder {
		if target := b.fosterTarget(level, f.before); target != doctree.NullNode {
			b.doc.SetOutOfOrder(h)
			if err := b.doc.InsertSiblingBefore(target, h); err != nil {
				return err
			}
			linked = true
			b.log.WithField("action", "foster_container").
				WithField("type", t.String()).
				WithField("before", f.before.String()).
				Debug("container placed before its open ancestor")
		}
	}
	if !linked {
		if err := b.doc.AppendChild(parent, h); err != nil {
			return err
		}
	}
	b.doc.Text.DoNotMergeNextRun()
	f.node = h
	f.state = stateHasNode
	return nil
}

// release drops the references held by list after err and reports both.
func (b *Builder) release(err error, list []props.Property) error {
	return errors.Join(err, b.doc.Values.ReleaseAll(list))
}

func (b *Builder) fosterTarget(level int, t doctree.NodeType) doctree.NodeHandle {
	for i := level - 1; i > 0; i-- {
		if b.frames[i].state == stateHasNode && b.frames[i].typ == t {
			return b.frames[i].node
		}
	}
	return doctree.NullNode
}

// inherit merges into the own properties of a node committed at level the
// inheritable properties of the flushed property-only frames between it and
// its parent node; nearer frames win, own values always win.
func (b *Builder) inherit(level int, t doctree.NodeType, flags props.FlagProperties, list []props.Property) (props.FlagProperties, []props.Property) {
	mask := doctree.InheritanceMasks[doctree.DefaultMaskIndex(t)]
	for i := level - 1; i > 0 && b.frames[i].state == stateFlushed; i-- {
		f := &b.frames[i]
		flags = flags.MergeUndefined(f.flags.Masked(mask.Flags))
		for _, p := range f.list {
			if !mask.Props.Has(p.ID) || !props.Find(list, p.ID).IsNull() {
				continue
			}
			b.doc.Values.AddRef(p.Value)
			list, _ = props.Upsert(list, p.ID, p.Value)
		}
	}
	return flags, list
}

// CloseContainer closes the innermost open container. A container that never
// became observable is discarded.
func (b *Builder) CloseContainer() error {
	if err := b.ready(); err != nil {
		return err
	}
	if b.Depth() == 0 {
		return b.fail(complexity.Misuse("close with no open container"))
	}
	return b.fail(b.closeTop())
}

func (b *Builder) closeTop() error {
	level := len(b.frames) - 1
	f := &b.frames[level]
	b.textNode = doctree.NullNode
	if f.state == stateBeforeContent && f.void && !f.propertyOnly {
		if err := b.commitAll(); err != nil {
			return err
		}
	}
	var err error
	switch f.state {
	case stateBeforeContent:
		b.log.WithField("action", "elide_container").
			WithField("type", f.typ.String()).
			WithField("tag", f.tag.String()).
			Debug("dropping empty container")
		err = b.recycle(f.acc)
	case stateHasNode:
		if f.typ.IsBlock() && !b.doc.Text.AtLineStart() {
			err = b.doc.Text.AddSimpleRun(textstore.RunBlockBoundary, 1)
		}
		n := b.doc.Node(f.node)
		n.End = b.doc.Text.CurrentPosition()
		n.Flags &^= doctree.FlagOpen
		b.doc.Text.DoNotMergeNextRun()
		if rerr := b.doc.Values.ReleaseAll(f.list); err == nil {
			err = rerr
		}
	case stateFlushed:
		err = b.doc.Values.ReleaseAll(f.list)
	}
	b.frames[level] = frame{}
	b.frames = b.frames[:level]
	return err
}

// CloseContainerTo closes containers until level remain open.
func (b *Builder) CloseContainerTo(level int) error {
	if err := b.ready(); err != nil {
		return err
	}
	if level < 0 {
		return b.fail(complexity.Misuse("close to negative level %d", level))
	}
	for b.Depth() > level {
		if err := b.closeTop(); err != nil {
			return b.fail(err)
		}
	}
	return nil
}

// CloseOverlappingContainer closes the container keep levels below the top
// of the stack. The keep containers above it are closed as well and then
// continue as fresh containers carrying the same type, tag and properties.
// It recovers end tags that close an element before its inner elements.
func (b *Builder) CloseOverlappingContainer(keep int) error {
	if err := b.ready(); err != nil {
		return err
	}
	if keep < 0 || keep >= b.Depth() {
		return b.fail(complexity.Misuse("overlap close of %d kept levels at depth %d", keep, b.Depth()))
	}
	if keep == 0 {
		return b.fail(b.closeTop())
	}

	kept := make([]frame, 0, keep)
	for i := len(b.frames) - keep; i < len(b.frames); i++ {
		f := b.frames[i]
		reopened := frame{
			typ:          f.typ,
			tag:          f.tag,
			void:         f.void,
			propertyOnly: f.propertyOnly,
			outOfOrder:   f.outOfOrder,
			before:       f.before,
			state:        stateBeforeContent,
		}
		switch f.state {
		case stateBeforeContent:
			// the pending accumulator moves over untouched
			reopened.acc = f.acc
			b.frames[i].acc = b.newAccumulator()
		case stateHasNode, stateFlushed:
			// inherited values are not carried; the frames that supplied
			// them either stay open below or are being closed
			reopened.acc = b.newAccumulator()
			reopened.acc.MergeList(props.PrecedenceInlineStyle, f.flags, f.list)
		}
		kept = append(kept, reopened)
	}

	b.log.WithField("action", "close_overlapping").
		WithField("type", b.frames[len(b.frames)-keep-1].typ.String()).
		WithField("reopened", keep).
		Debug("closing misnested container")

	for n := 0; n <= keep; n++ {
		if err := b.closeTop(); err != nil {
			for _, f := range kept {
				err = errors.Join(err, b.recycle(f.acc))
			}
			return b.fail(err)
		}
	}
	b.frames = append(b.frames, kept...)
	return nil
}

// Finish closes every open container and returns the finished Document.
func (b *Builder) Finish() (*doctree.Document, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	for b.Depth() > 0 {
		if err := b.closeTop(); err != nil {
			return nil, b.fail(err)
		}
	}
	b.textNode = doctree.NullNode
	root := &b.frames[0]
	err := b.doc.Values.ReleaseAll(root.list)
	root.list = nil
	if err != nil {
		return nil, b.fail(err)
	}
	b.doc.Close()
	b.finished = true
	if b.opts.Document.DebugChecks {
		if err := b.doc.Validate(); err != nil {
			return nil, b.fail(err)
		}
	}
	return b.doc, nil
}

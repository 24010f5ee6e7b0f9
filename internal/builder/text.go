package builder

import (
	"unicode/utf8"

	"github.com/hangy/AntiXss-sub003/internal/complexity"
	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/textstore"
)

// beginText makes sure content can be appended to a text node of the top
// frame.
func (b *Builder) beginText() error {
	if err := b.ready(); err != nil {
		return err
	}
	if b.textNode != doctree.NullNode {
		return nil
	}
	level := len(b.frames) - 1
	if top := &b.frames[level]; top.void {
		return b.fail(complexity.Misuse("content added to void %s", top.typ))
	}
	if err := b.commitAll(); err != nil {
		return b.fail(err)
	}
	b.doc.Text.DoNotMergeNextRun()
	h, err := b.doc.NewNode(doctree.TypeText)
	if err != nil {
		return b.fail(err)
	}
	flags, list := b.inherit(len(b.frames), doctree.TypeText, b.doc.Node(h).FlagProps, nil)
	if err := b.doc.SetProperties(h, flags, list); err != nil {
		return b.fail(err)
	}
	parent := b.frames[b.nodeLevel(len(b.frames))].node
	if err := b.doc.AppendChild(parent, h); err != nil {
		return b.fail(err)
	}
	b.textNode = h
	return nil
}

func (b *Builder) endText(err error) error {
	if err != nil {
		return b.fail(err)
	}
	b.doc.Node(b.textNode).End = b.doc.Text.CurrentPosition()
	return nil
}

// AddText appends text, storing whitespace as space, tab, line break and
// non-breaking space runs. "\r\n" and a lone "\r" count as one line break.
func (b *Builder) AddText(s string) error {
	start := 0
	for i := 0; i < len(s); {
		r, width := utf8.DecodeRuneInString(s[i:])
		kind := textstore.RunInvalid
		switch r {
		case ' ':
			kind = textstore.RunSpace
		case '\t':
			kind = textstore.RunTab
		case '\r', '\n':
			kind = textstore.RunNewLine
		case '\u00a0':
			kind = textstore.RunNbsp
		}
		if kind == textstore.RunInvalid {
			i += width
			continue
		}
		if err := b.AddNonSpaceText(s[start:i]); err != nil {
			return err
		}
		if !(r == '\n' && i > 0 && s[i-1] == '\r') {
			if err := b.addSimple(kind, 1); err != nil {
				return err
			}
		}
		i += width
		start = i
	}
	return b.AddNonSpaceText(s[start:])
}

// AddNonSpaceText appends s as literal text.
func (b *Builder) AddNonSpaceText(s string) error {
	if s == "" {
		return b.ready()
	}
	if err := b.beginText(); err != nil {
		return err
	}
	return b.endText(b.doc.Text.AddText(s))
}

func (b *Builder) addSimple(kind textstore.RunKind, count int) error {
	if count <= 0 {
		return b.ready()
	}
	if err := b.beginText(); err != nil {
		return err
	}
	return b.endText(b.doc.Text.AddSimpleRun(kind, count))
}

// AddSpace appends count collapsible spaces.
func (b *Builder) AddSpace(count int) error {
	return b.addSimple(textstore.RunSpace, count)
}

// AddNbsp appends count non-breaking spaces.
func (b *Builder) AddNbsp(count int) error {
	return b.addSimple(textstore.RunNbsp, count)
}

// AddTabulation appends count tabs.
func (b *Builder) AddTabulation(count int) error {
	return b.addSimple(textstore.RunTab, count)
}

// AddLineBreak appends count hard line breaks.
func (b *Builder) AddLineBreak(count int) error {
	return b.addSimple(textstore.RunNewLine, count)
}

// AddInlineObject appends an inline object marker.
func (b *Builder) AddInlineObject() error {
	return b.addSimple(textstore.RunInlineObject, 1)
}

// RevokeTrailingSpace invalidates a single space that ends the current text
// node and reports whether there was one.
func (b *Builder) RevokeTrailingSpace() (bool, error) {
	if err := b.ready(); err != nil {
		return false, err
	}
	if b.textNode == doctree.NullNode {
		return false, nil
	}
	r, ok := b.doc.Text.LastRun()
	if !ok || r.Kind != textstore.RunSpace || r.Position < b.doc.Node(b.textNode).Begin {
		return false, nil
	}
	if err := b.doc.Text.ConvertPartToInvalid(r.Position, 1); err != nil {
		return false, b.fail(err)
	}
	return true, nil
}

// AtLineStart reports whether the last content written ends a line.
func (b *Builder) AtLineStart() bool {
	return b.doc.Text.AtLineStart()
}

// LastIsSpace reports whether the current text node ends with a space run.
func (b *Builder) LastIsSpace() bool {
	if b.textNode == doctree.NullNode {
		return false
	}
	r, ok := b.doc.Text.LastRun()
	return ok && r.Kind == textstore.RunSpace && r.Position >= b.doc.Node(b.textNode).Begin
}

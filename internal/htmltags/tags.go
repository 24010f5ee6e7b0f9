// Package htmltags maps HTML element names onto the document model: the node
// type a tag opens, the formatting it implies and how its content is treated.
// The HTML reader and writer share it so a tag round-trips.
package htmltags

import (
	"golang.org/x/net/html/atom"

	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/props"
)

// Kind says how the reader treats an element.
type Kind uint8

const (
	// Container opens a node that holds the element's content.
	Container Kind = iota
	// Void opens a node that never has content.
	Void
	// Property contributes formatting without a node of its own.
	Property
	// LineBreak is a hard line break.
	LineBreak
	// Transparent elements are ignored; their content is kept.
	Transparent
	// Omit elements are dropped together with their content.
	Omit
)

// Info describes one tag.
type Info struct {
	Type  doctree.NodeType
	Kind  Kind
	Flags []props.FlagID

	// Heading is the level of h1..h6.
	Heading int
	// Align is a props.Align* default, 0 for none.
	Align int
	// ListStyle is a props.List* default, 0 for none.
	ListStyle int
}

// FlagProperties returns the flags the tag implies, all on.
func (i Info) FlagProperties() props.FlagProperties {
	var f props.FlagProperties
	for _, id := range i.Flags {
		f.Set(id, true)
	}
	return f
}

func inline(flags ...props.FlagID) Info {
	return Info{Type: doctree.TypeInline, Flags: flags}
}

func block(t doctree.NodeType, flags ...props.FlagID) Info {
	return Info{Type: t, Flags: flags}
}

func void(t doctree.NodeType) Info {
	return Info{Type: t, Kind: Void}
}

func heading(level int) Info {
	return Info{Type: doctree.TypeHeading, Heading: level, Flags: []props.FlagID{props.FlagBold}}
}

var table = map[atom.Atom]Info{
	atom.H1: heading(1),
	atom.H2: heading(2),
	atom.H3: heading(3),
	atom.H4: heading(4),
	atom.H5: heading(5),
	atom.H6: heading(6),

	atom.P:          block(doctree.TypeParagraph),
	atom.Blockquote: block(doctree.TypeBlockQuote),
	atom.Pre:        block(doctree.TypePreformatted, props.FlagPreformatted),
	atom.Listing:    block(doctree.TypePreformatted, props.FlagPreformatted),
	atom.Div:        block(doctree.TypeAny),
	atom.Section:    block(doctree.TypeAny),
	atom.Article:    block(doctree.TypeAny),
	atom.Header:     block(doctree.TypeAny),
	atom.Footer:     block(doctree.TypeAny),
	atom.Main:       block(doctree.TypeAny),
	atom.Nav:        block(doctree.TypeAny),
	atom.Aside:      block(doctree.TypeAny),
	atom.Figure:     block(doctree.TypeAny),
	atom.Figcaption: block(doctree.TypeAny),
	atom.Details:    block(doctree.TypeAny),
	atom.Summary:    block(doctree.TypeAny),
	atom.Address:    block(doctree.TypeAny, props.FlagItalic),
	atom.Center:     {Type: doctree.TypeAny, Align: props.AlignCenter},

	atom.Ul: block(doctree.TypeList),
	atom.Ol: {Type: doctree.TypeList, ListStyle: props.ListDecimal},
	atom.Dl: block(doctree.TypeList),
	atom.Li: block(doctree.TypeListItem),
	atom.Dt: block(doctree.TypeListItem, props.FlagBold),
	atom.Dd: block(doctree.TypeListItem),

	atom.Table:    block(doctree.TypeTable),
	atom.Caption:  block(doctree.TypeTableCaption),
	atom.Colgroup: block(doctree.TypeTableColumnGroup),
	atom.Col:      void(doctree.TypeTableColumn),
	atom.Thead:    block(doctree.TypeTableSection),
	atom.Tbody:    block(doctree.TypeTableSection),
	atom.Tfoot:    block(doctree.TypeTableSection),
	atom.Tr:       block(doctree.TypeTableRow),
	atom.Td:       block(doctree.TypeTableCell),
	atom.Th:       {Type: doctree.TypeTableCell, Flags: []props.FlagID{props.FlagBold}, Align: props.AlignCenter},

	atom.B:       inline(props.FlagBold),
	atom.Strong:  inline(props.FlagBold),
	atom.I:       inline(props.FlagItalic),
	atom.Em:      inline(props.FlagItalic),
	atom.Cite:    inline(props.FlagItalic),
	atom.Dfn:     inline(props.FlagItalic),
	atom.Var:     inline(props.FlagItalic),
	atom.U:       inline(props.FlagUnderline),
	atom.Ins:     inline(props.FlagInserted, props.FlagUnderline),
	atom.S:       inline(props.FlagStrikethrough),
	atom.Strike:  inline(props.FlagStrikethrough),
	atom.Del:     inline(props.FlagDeleted, props.FlagStrikethrough),
	atom.Sub:     inline(props.FlagSubscript),
	atom.Sup:     inline(props.FlagSuperscript),
	atom.Code:    inline(props.FlagCode),
	atom.Kbd:     inline(props.FlagCode),
	atom.Samp:    inline(props.FlagCode),
	atom.Tt:      inline(props.FlagCode),
	atom.Nobr:    inline(props.FlagNoWrap),
	atom.Q:       inline(props.FlagQuoted),
	atom.Span:    inline(),
	atom.Abbr:    inline(),
	atom.Acronym: inline(),
	atom.Small:   inline(),
	atom.Big:     inline(),
	atom.Mark:    inline(),
	atom.Label:   inline(),
	atom.Bdo:     inline(),
	atom.Time:    inline(),

	atom.A:    block(doctree.TypeHyperlink),
	atom.Map:  block(doctree.TypeMap),
	atom.Img:  void(doctree.TypeImage),
	atom.Hr:   void(doctree.TypeHorizontalLine),
	atom.Area: void(doctree.TypeArea),

	atom.Font: {Type: doctree.TypeInline, Kind: Property},
	atom.Br:   {Kind: LineBreak},

	atom.Html:  {Kind: Transparent},
	atom.Body:  {Kind: Transparent},
	atom.Wbr:   {Kind: Transparent},
	atom.Input: {Kind: Transparent},
	atom.Link:  {Kind: Transparent},
	atom.Meta:  {Kind: Transparent},
	atom.Base:  {Kind: Transparent},

	atom.Head:     {Kind: Omit},
	atom.Title:    {Kind: Omit},
	atom.Script:   {Kind: Omit},
	atom.Style:    {Kind: Omit},
	atom.Iframe:   {Kind: Omit},
	atom.Object:   {Kind: Omit},
	atom.Embed:    {Kind: Omit},
	atom.Applet:   {Kind: Omit},
	atom.Noscript: {Kind: Omit},
	atom.Noembed:  {Kind: Omit},
	atom.Noframes: {Kind: Omit},
	atom.Frameset: {Kind: Omit},
	atom.Template: {Kind: Omit},
	atom.Textarea: {Kind: Omit},
	atom.Select:   {Kind: Omit},
	atom.Svg:      {Kind: Omit},
	atom.Math:     {Kind: Omit},
}

// Lookup returns the description of tag a.
func Lookup(a atom.Atom) (Info, bool) {
	i, ok := table[a]
	return i, ok
}

// IsVoidElement reports whether the named element has no end tag.
func IsVoidElement(tag string) bool {
	switch tag {
	case "area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}

package htmlout

import (
	"strconv"
	"strings"

	"golang.org/x/net/html/atom"

	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/htmltags"
	"github.com/hangy/AntiXss-sub003/internal/props"
)

var defaultTags = [doctree.TypeCount]string{
	doctree.TypeAny:               "div",
	doctree.TypeBlock:             "div",
	doctree.TypeParagraph:         "p",
	doctree.TypeBlockQuote:        "blockquote",
	doctree.TypePreformatted:      "pre",
	doctree.TypeList:              "ul",
	doctree.TypeListItem:          "li",
	doctree.TypeTable:             "table",
	doctree.TypeTableDefinition:   "table",
	doctree.TypeTableColumnGroup:  "colgroup",
	doctree.TypeTableColumn:       "col",
	doctree.TypeTableCaption:      "caption",
	doctree.TypeTableSection:      "tbody",
	doctree.TypeTableRow:          "tr",
	doctree.TypeTableCell:         "td",
	doctree.TypeTableExtraContent: "div",
	doctree.TypeInline:            "span",
	doctree.TypeHyperlink:         "a",
	doctree.TypeBookmark:          "a",
	doctree.TypeImage:             "img",
	doctree.TypeHorizontalLine:    "hr",
	doctree.TypeArea:              "area",
	doctree.TypeMap:               "map",
}

// tagAtom returns the tag the node was read from, or 0.
func tagAtom(doc *doctree.Document, h doctree.NodeHandle) atom.Atom {
	v := doc.Property(h, props.PropTagName)
	if v.Type() != props.TypeTag {
		return 0
	}
	return atom.Atom(v.TagID())
}

// tagName returns the element name to emit for n, "" for nodes that produce
// no markup of their own.
func tagName(doc *doctree.Document, h doctree.NodeHandle, n *doctree.Node) string {
	if name := tagAtom(doc, h).String(); name != "" {
		return name
	}
	switch n.Type {
	case doctree.TypeHeading:
		level := doc.Property(h, props.PropHeadingLevel).Int()
		if level < 1 {
			level = 1
		} else if level > 6 {
			level = 6
		}
		return "h" + strconv.Itoa(level)
	case doctree.TypeList:
		switch doc.Property(h, props.PropListStyle).Int() {
		case props.ListDecimal, props.ListLowerAlpha, props.ListUpperAlpha, props.ListLowerRoman, props.ListUpperRoman:
			return "ol"
		}
	}
	if n.Type < doctree.TypeCount {
		return defaultTags[n.Type]
	}
	return ""
}

func isVoid(tag string, n *doctree.Node) bool {
	return n.Type.IsVoid() || htmltags.IsVoidElement(tag)
}

// isAttribute reports whether property id is written as an attribute of a
// node of type t rather than as a style declaration.
func isAttribute(id props.ID, t doctree.NodeType) bool {
	switch id {
	case props.PropListStart, props.PropColSpan, props.PropRowSpan, props.PropHeaderScope,
		props.PropCellSpacing, props.PropCellPadding, props.PropHyperlinkURL, props.PropTarget,
		props.PropRel, props.PropImageURL, props.PropImageAltText, props.PropTitle,
		props.PropLanguage, props.PropElementID, props.PropClass, props.PropCite,
		props.PropBookmarkName:
		return true
	case props.PropWidth, props.PropHeight:
		switch t {
		case doctree.TypeImage, doctree.TypeTable, doctree.TypeTableCell, doctree.TypeTableColumn:
			return true
		}
	}
	return false
}

func isStyle(id props.ID, t doctree.NodeType) bool {
	switch id {
	case props.PropTagName, props.PropHeadingLevel:
		return false
	}
	return !isAttribute(id, t)
}

func attributeValue(doc *doctree.Document, id props.ID, v props.Value) string {
	switch v.Type() {
	case props.TypePixels, props.TypeInteger:
		return strconv.Itoa(v.Int())
	}
	return formatValue(doc, id, v)
}

// formatValue renders v the way CSS and HTML attributes spell it.
func formatValue(doc *doctree.Document, id props.ID, v props.Value) string {
	switch v.Type() {
	case props.TypeString:
		return doc.Values.String(v)
	case props.TypeMultiValue:
		var parts []string
		for _, e := range doc.Values.MultiValue(v) {
			if s := formatValue(doc, id, e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case props.TypeEnum:
		return props.EnumName(id, v)
	case props.TypeInteger:
		return strconv.Itoa(v.Int())
	case props.TypeColor, props.TypePixels, props.TypePoints, props.TypePercentage:
		return v.String()
	case props.TypeBoolean:
		return strconv.FormatBool(v.Bool())
	}
	return ""
}

type declarations []string

func (d *declarations) add(name, val string) {
	if val != "" {
		*d = append(*d, name+":"+val)
	}
}

func (d declarations) String() string { return strings.Join(d, ";") }

// nodeStyle collects the style declarations of a container: its own style
// properties plus the flags its tag does not already imply.
func nodeStyle(doc *doctree.Document, n *doctree.Node, tag string) string {
	var d declarations
	for _, p := range n.Props {
		if isStyle(p.ID, n.Type) {
			d.add(p.ID.String(), formatValue(doc, p.ID, p.Value))
		}
	}
	implied, _ := htmltags.Lookup(atom.Lookup([]byte(tag)))
	flags := n.FlagProps.DistinctFrom(implied.FlagProperties())
	flagDeclarations(&d, flags)
	return d.String()
}

// textStyle collects the formatting a text node sets beyond what it
// inherits.
func textStyle(doc *doctree.Document, state *props.State) string {
	var d declarations
	state.DistinctMask().Each(func(id props.ID) {
		if isStyle(id, doctree.TypeText) {
			d.add(id.String(), formatValue(doc, id, state.DistinctProperty(id)))
		}
	})
	flagDeclarations(&d, state.DistinctFlags())
	return d.String()
}

func flagDeclarations(d *declarations, f props.FlagProperties) {
	onOff := func(id props.FlagID, on, off string) string {
		if !f.IsDefined(id) {
			return ""
		}
		if f.IsOn(id) {
			return on
		}
		return off
	}
	d.add("font-weight", onOff(props.FlagBold, "bold", "normal"))
	d.add("font-style", onOff(props.FlagItalic, "italic", "normal"))
	d.add("font-variant", onOff(props.FlagSmallCaps, "small-caps", "normal"))

	var decoration []string
	if f.IsOn(props.FlagUnderline) {
		decoration = append(decoration, "underline")
	}
	if f.IsOn(props.FlagStrikethrough) {
		decoration = append(decoration, "line-through")
	}
	if len(decoration) == 0 && (f.IsDefined(props.FlagUnderline) || f.IsDefined(props.FlagStrikethrough)) {
		decoration = append(decoration, "none")
	}
	d.add("text-decoration", strings.Join(decoration, " "))

	switch {
	case f.IsOn(props.FlagPreformatted):
		d.add("white-space", "pre")
	case f.IsOn(props.FlagNoWrap):
		d.add("white-space", "nowrap")
	case f.IsDefined(props.FlagPreformatted) || f.IsDefined(props.FlagNoWrap):
		d.add("white-space", "normal")
	}
	d.add("vertical-align", onOff(props.FlagSubscript, "sub", ""))
	d.add("vertical-align", onOff(props.FlagSuperscript, "super", ""))
	d.add("font-family", onOff(props.FlagCode, "monospace", ""))
	d.add("display", onOff(props.FlagHidden, "none", ""))
}

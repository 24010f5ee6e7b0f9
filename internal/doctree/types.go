package doctree

import "github.com/hangy/AntiXss-sub003/internal/props"

// NodeType classifies a node.
type NodeType uint8

const (
	TypeNone NodeType = iota
	TypeDocument
	TypeFragment
	// TypeAny is a generic container whose final type is decided when it
	// is committed.
	TypeAny
	TypeBlock
	TypeParagraph
	TypeHeading
	TypeBlockQuote
	TypePreformatted
	TypeList
	TypeListItem
	TypeTable
	TypeTableDefinition
	TypeTableColumnGroup
	TypeTableColumn
	TypeTableCaption
	TypeTableSection
	TypeTableRow
	TypeTableCell
	TypeTableExtraContent
	TypeInline
	TypeHyperlink
	TypeBookmark
	TypeImage
	TypeHorizontalLine
	TypeArea
	TypeMap
	TypeText

	TypeCount
)

var typeNames = [TypeCount]string{
	TypeNone:              "none",
	TypeDocument:          "document",
	TypeFragment:          "fragment",
	TypeAny:               "any",
	TypeBlock:             "block",
	TypeParagraph:         "paragraph",
	TypeHeading:           "heading",
	TypeBlockQuote:        "blockquote",
	TypePreformatted:      "pre",
	TypeList:              "list",
	TypeListItem:          "listitem",
	TypeTable:             "table",
	TypeTableDefinition:   "tabledef",
	TypeTableColumnGroup:  "colgroup",
	TypeTableColumn:       "col",
	TypeTableCaption:      "caption",
	TypeTableSection:      "tablesection",
	TypeTableRow:          "row",
	TypeTableCell:         "cell",
	TypeTableExtraContent: "tableextra",
	TypeInline:            "inline",
	TypeHyperlink:         "link",
	TypeBookmark:          "bookmark",
	TypeImage:             "image",
	TypeHorizontalLine:    "hr",
	TypeArea:              "area",
	TypeMap:               "map",
	TypeText:              "text",
}

func (t NodeType) String() string {
	if t < TypeCount {
		return typeNames[t]
	}
	return "type?"
}

// IsBlock reports whether nodes of type t start on a new line.
func (t NodeType) IsBlock() bool {
	switch t {
	case TypeDocument, TypeFragment, TypeBlock, TypeParagraph, TypeHeading,
		TypeBlockQuote, TypePreformatted, TypeList, TypeListItem,
		TypeTable, TypeTableDefinition, TypeTableCaption, TypeTableSection,
		TypeTableRow, TypeTableCell, TypeTableExtraContent, TypeHorizontalLine:
		return true
	}
	return false
}

// IsVoid reports whether nodes of type t never have children.
func (t NodeType) IsVoid() bool {
	switch t {
	case TypeImage, TypeHorizontalLine, TypeTableColumn, TypeArea, TypeText:
		return true
	}
	return false
}

// InheritanceMask is the set of flags and properties a node type passes to
// its children.
type InheritanceMask struct {
	Flags props.FlagMask
	Props props.PropertyMask
}

// boxProps never inherit: they describe the box of one element.
var boxProps = props.NewPropertyMask(
	props.PropTagName, props.PropHeadingLevel, props.PropBackColor, props.PropDisplay,
	props.PropWidth, props.PropHeight,
	props.PropMarginTop, props.PropMarginRight, props.PropMarginBottom, props.PropMarginLeft,
	props.PropPaddingTop, props.PropPaddingRight, props.PropPaddingBottom, props.PropPaddingLeft,
	props.PropBorderWidth, props.PropBorderStyle, props.PropBorderColor,
	props.PropColSpan, props.PropRowSpan, props.PropHeaderScope,
	props.PropCellSpacing, props.PropCellPadding, props.PropListStart,
	props.PropHyperlinkURL, props.PropTarget, props.PropRel,
	props.PropImageURL, props.PropImageAltText, props.PropTitle,
	props.PropElementID, props.PropClass, props.PropCite, props.PropBookmarkName,
)

var (
	inheritText = InheritanceMask{
		Flags: props.AllFlags,
		Props: props.AllProperties &^ boxProps,
	}
	// tables restart alignment and vertical alignment for their content
	inheritTable = InheritanceMask{
		Flags: props.AllFlags.Without(props.FlagPreformatted),
		Props: props.AllProperties &^ boxProps &^ props.NewPropertyMask(props.PropTextAlignment, props.PropVerticalAlignment),
	}
	// cells start their own list context
	inheritCell = InheritanceMask{
		Flags: props.AllFlags,
		Props: props.AllProperties &^ boxProps &^ props.NewPropertyMask(props.PropListStyle),
	}
	inheritNone = InheritanceMask{}
)

// Mask indexes into InheritanceMasks.
type MaskIndex uint8

const (
	MaskText MaskIndex = iota
	MaskTable
	MaskCell
	MaskNone
)

// InheritanceMasks is the inheritance table, indexed by MaskIndex. It
// selects what a node lets flow in from its ancestors.
var InheritanceMasks = [...]InheritanceMask{
	MaskText:  inheritText,
	MaskTable: inheritTable,
	MaskCell:  inheritCell,
	MaskNone:  inheritNone,
}

// DefaultMaskIndex returns the inheritance entry used for a node type.
func DefaultMaskIndex(t NodeType) MaskIndex {
	switch t {
	case TypeTable, TypeTableDefinition:
		return MaskTable
	case TypeTableCell, TypeTableCaption:
		return MaskCell
	case TypeDocument, TypeFragment:
		return MaskNone
	}
	return MaskText
}

// Package props is the property system of the document model.
//
// Boolean properties ("flags") are packed two bits per id into a
// FlagProperties word. All other properties are (ID, Value) pairs kept sorted
// by id, with a PropertyMask for constant-time membership tests. Strings,
// multi-values and styles are reference-counted records in a Store. State
// tracks the properties in effect during a traversal and restores them in
// O(changes) through an undo log.
package props

// FlagID identifies a boolean property.
type FlagID uint8

const (
	FlagBold FlagID = iota
	FlagItalic
	FlagUnderline
	FlagStrikethrough
	FlagSubscript
	FlagSuperscript
	FlagSmallCaps
	FlagPreformatted
	FlagNoWrap
	FlagRightToLeft
	FlagHidden
	FlagCode
	FlagInserted
	FlagDeleted
	FlagNoShade
	FlagQuoted

	FlagCount
)

var flagNames = [FlagCount]string{
	FlagBold:          "bold",
	FlagItalic:        "italic",
	FlagUnderline:     "underline",
	FlagStrikethrough: "strikethrough",
	FlagSubscript:     "subscript",
	FlagSuperscript:   "superscript",
	FlagSmallCaps:     "small-caps",
	FlagPreformatted:  "preformatted",
	FlagNoWrap:        "nowrap",
	FlagRightToLeft:   "rtl",
	FlagHidden:        "hidden",
	FlagCode:          "code",
	FlagInserted:      "inserted",
	FlagDeleted:       "deleted",
	FlagNoShade:       "noshade",
	FlagQuoted:        "quoted",
}

func (id FlagID) String() string {
	if id < FlagCount {
		return flagNames[id]
	}
	return "flag?"
}

// ID identifies a non-flag property. Zero is not a valid id.
type ID uint8

const (
	PropTagName ID = iota + 1
	PropHeadingLevel
	PropFontColor
	PropFontFace
	PropFontSize
	PropBackColor
	PropTextAlignment
	PropVerticalAlignment
	PropDisplay
	PropWidth
	PropHeight
	PropMarginTop
	PropMarginRight
	PropMarginBottom
	PropMarginLeft
	PropPaddingTop
	PropPaddingRight
	PropPaddingBottom
	PropPaddingLeft
	PropBorderWidth
	PropBorderStyle
	PropBorderColor
	PropListStyle
	PropListStart
	PropColSpan
	PropRowSpan
	PropHeaderScope
	PropCellSpacing
	PropCellPadding
	PropHyperlinkURL
	PropTarget
	PropRel
	PropImageURL
	PropImageAltText
	PropTitle
	PropLanguage
	PropElementID
	PropClass
	PropCite
	PropBookmarkName

	// PropertyCount bounds the id space; ids must stay below 64 so a
	// PropertyMask fits one word.
	PropertyCount
)

var propNames = [PropertyCount]string{
	PropTagName:           "tag",
	PropHeadingLevel:      "heading-level",
	PropFontColor:         "color",
	PropFontFace:          "font-family",
	PropFontSize:          "font-size",
	PropBackColor:         "background-color",
	PropTextAlignment:     "text-align",
	PropVerticalAlignment: "vertical-align",
	PropDisplay:           "display",
	PropWidth:             "width",
	PropHeight:            "height",
	PropMarginTop:         "margin-top",
	PropMarginRight:       "margin-right",
	PropMarginBottom:      "margin-bottom",
	PropMarginLeft:        "margin-left",
	PropPaddingTop:        "padding-top",
	PropPaddingRight:      "padding-right",
	PropPaddingBottom:     "padding-bottom",
	PropPaddingLeft:       "padding-left",
	PropBorderWidth:       "border-width",
	PropBorderStyle:       "border-style",
	PropBorderColor:       "border-color",
	PropListStyle:         "list-style-type",
	PropListStart:         "start",
	PropColSpan:           "colspan",
	PropRowSpan:           "rowspan",
	PropHeaderScope:       "scope",
	PropCellSpacing:       "cellspacing",
	PropCellPadding:       "cellpadding",
	PropHyperlinkURL:      "href",
	PropTarget:            "target",
	PropRel:               "rel",
	PropImageURL:          "src",
	PropImageAltText:      "alt",
	PropTitle:             "title",
	PropLanguage:          "lang",
	PropElementID:         "id",
	PropClass:             "class",
	PropCite:              "cite",
	PropBookmarkName:      "name",
}

func (id ID) String() string {
	if id > 0 && id < PropertyCount {
		return propNames[id]
	}
	return "property?"
}

// Valid reports whether id is in range.
func (id ID) Valid() bool {
	return id > 0 && id < PropertyCount
}

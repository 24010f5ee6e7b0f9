package htmlin

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hangy/AntiXss-sub003/internal/htmltags"
	"github.com/hangy/AntiXss-sub003/internal/props"
)

// stringAttributes are copied verbatim into string properties.
var stringAttributes = map[string]props.ID{
	"href":   props.PropHyperlinkURL,
	"src":    props.PropImageURL,
	"alt":    props.PropImageAltText,
	"title":  props.PropTitle,
	"target": props.PropTarget,
	"rel":    props.PropRel,
	"id":     props.PropElementID,
	"class":  props.PropClass,
	"lang":   props.PropLanguage,
	"cite":   props.PropCite,
	"name":   props.PropBookmarkName,
}

// setDefaults writes what the tag itself implies.
func (r *reader) setDefaults(info htmltags.Info) error {
	const p = props.PrecedenceTagDefault
	for _, id := range info.Flags {
		if err := r.b.SetFlag(p, id, true); err != nil {
			return err
		}
	}
	if info.Heading > 0 {
		if err := r.b.SetProperty(p, props.PropHeadingLevel, props.Integer(info.Heading)); err != nil {
			return err
		}
	}
	if info.Align > 0 {
		if err := r.b.SetProperty(p, props.PropTextAlignment, props.Enum(info.Align)); err != nil {
			return err
		}
	}
	if info.ListStyle > 0 {
		if err := r.b.SetProperty(p, props.PropListStyle, props.Enum(info.ListStyle)); err != nil {
			return err
		}
	}
	return nil
}

// applyAttributes turns the filtered attributes of t into properties of the
// innermost open container. Attributes the model has no property for are
// dropped.
func (r *reader) applyAttributes(t *html.Token) error {
	const p = props.PrecedenceAttribute
	var style string
	for _, a := range t.Attr {
		key := strings.ToLower(a.Key)
		if id, ok := stringAttributes[key]; ok {
			if key == "href" && t.DataAtom != atom.A && t.DataAtom != atom.Area {
				continue
			}
			if err := r.b.SetStringProperty(p, id, a.Val); err != nil {
				return err
			}
			continue
		}
		var (
			id props.ID
			v  props.Value
			ok bool
		)
		switch key {
		case "style":
			style = a.Val
			continue
		case "dir":
			if dir := strings.ToLower(strings.TrimSpace(a.Val)); dir == "rtl" || dir == "ltr" {
				if err := r.b.SetFlag(p, props.FlagRightToLeft, dir == "rtl"); err != nil {
					return err
				}
			}
			continue
		case "noshade":
			if err := r.b.SetFlag(p, props.FlagNoShade, true); err != nil {
				return err
			}
			continue
		case "nowrap":
			if err := r.b.SetFlag(p, props.FlagNoWrap, true); err != nil {
				return err
			}
			continue
		case "face":
			if face, ok := fontFamily(a.Val); ok {
				if err := r.b.SetStringProperty(p, props.PropFontFace, face); err != nil {
					return err
				}
			}
			continue
		case "width":
			id = props.PropWidth
			v, ok = parseLength(a.Val, false)
		case "height":
			id = props.PropHeight
			v, ok = parseLength(a.Val, false)
		case "colspan", "rowspan", "start":
			id = map[string]props.ID{"colspan": props.PropColSpan, "rowspan": props.PropRowSpan, "start": props.PropListStart}[key]
			n, err := strconv.Atoi(strings.TrimSpace(a.Val))
			v, ok = props.Integer(n), err == nil && n > 0
		case "scope":
			id = props.PropHeaderScope
			v, ok = props.ParseEnum(id, a.Val)
		case "align":
			id = props.PropTextAlignment
			v, ok = props.ParseEnum(id, a.Val)
		case "valign":
			id = props.PropVerticalAlignment
			v, ok = props.ParseEnum(id, a.Val)
		case "color":
			id = props.PropFontColor
			v, ok = parseColor(a.Val)
		case "bgcolor":
			id = props.PropBackColor
			v, ok = parseColor(a.Val)
		case "size":
			id = props.PropFontSize
			v, ok = parseFontSize(a.Val)
		case "border":
			id = props.PropBorderWidth
			v, ok = parseLength(a.Val, false)
		case "cellspacing":
			id = props.PropCellSpacing
			v, ok = parseLength(a.Val, false)
		case "cellpadding":
			id = props.PropCellPadding
			v, ok = parseLength(a.Val, false)
		case "type":
			id = props.PropListStyle
			v, ok = parseListType(a.Val)
		}
		if !ok {
			continue
		}
		if err := r.b.SetProperty(p, id, v); err != nil {
			return err
		}
	}
	if style != "" {
		for _, d := range scanStyle(style) {
			if err := r.applyDeclaration(d); err != nil {
				return err
			}
		}
	}
	return nil
}

var lengthDeclarations = map[string]props.ID{
	"width":          props.PropWidth,
	"height":         props.PropHeight,
	"margin-top":     props.PropMarginTop,
	"margin-right":   props.PropMarginRight,
	"margin-bottom":  props.PropMarginBottom,
	"margin-left":    props.PropMarginLeft,
	"padding-top":    props.PropPaddingTop,
	"padding-right":  props.PropPaddingRight,
	"padding-bottom": props.PropPaddingBottom,
	"padding-left":   props.PropPaddingLeft,
	"border-width":   props.PropBorderWidth,
}

var enumDeclarations = map[string]props.ID{
	"text-align":      props.PropTextAlignment,
	"display":         props.PropDisplay,
	"list-style-type": props.PropListStyle,
	"border-style":    props.PropBorderStyle,
}

var boxSides = map[string][4]props.ID{
	"margin":  {props.PropMarginTop, props.PropMarginRight, props.PropMarginBottom, props.PropMarginLeft},
	"padding": {props.PropPaddingTop, props.PropPaddingRight, props.PropPaddingBottom, props.PropPaddingLeft},
}

// applyDeclaration maps one CSS declaration onto properties. Unknown
// declarations and values that do not parse are ignored.
func (r *reader) applyDeclaration(d declaration) error {
	const p = props.PrecedenceInlineStyle
	value := strings.ToLower(d.value)
	flag := func(id props.FlagID, on bool) error { return r.b.SetFlag(p, id, on) }

	if id, ok := lengthDeclarations[d.name]; ok {
		if v, ok := parseLength(value, false); ok {
			return r.b.SetProperty(p, id, v)
		}
		return nil
	}
	if id, ok := enumDeclarations[d.name]; ok {
		if v, ok := props.ParseEnum(id, value); ok {
			return r.b.SetProperty(p, id, v)
		}
		return nil
	}
	if sides, ok := boxSides[d.name]; ok {
		return r.applyBoxSides(sides, strings.Fields(value))
	}

	switch d.name {
	case "color", "background-color", "background", "border-color":
		id := map[string]props.ID{
			"color":            props.PropFontColor,
			"background-color": props.PropBackColor,
			"background":       props.PropBackColor,
			"border-color":     props.PropBorderColor,
		}[d.name]
		if v, ok := parseColor(value); ok {
			return r.b.SetProperty(p, id, v)
		}
	case "font-size":
		if v, ok := parseLength(value, true); ok {
			return r.b.SetProperty(p, props.PropFontSize, v)
		}
	case "font-family":
		if face, ok := fontFamily(d.value); ok {
			return r.b.SetStringProperty(p, props.PropFontFace, face)
		}
	case "font-weight":
		switch value {
		case "bold", "bolder", "600", "700", "800", "900":
			return flag(props.FlagBold, true)
		case "normal", "lighter", "100", "200", "300", "400", "500":
			return flag(props.FlagBold, false)
		}
	case "font-style":
		switch value {
		case "italic", "oblique":
			return flag(props.FlagItalic, true)
		case "normal":
			return flag(props.FlagItalic, false)
		}
	case "font-variant":
		switch value {
		case "small-caps":
			return flag(props.FlagSmallCaps, true)
		case "normal":
			return flag(props.FlagSmallCaps, false)
		}
	case "text-decoration", "text-decoration-line":
		if value == "none" {
			if err := flag(props.FlagUnderline, false); err != nil {
				return err
			}
			return flag(props.FlagStrikethrough, false)
		}
		for _, f := range strings.Fields(value) {
			var err error
			switch f {
			case "underline":
				err = flag(props.FlagUnderline, true)
			case "line-through":
				err = flag(props.FlagStrikethrough, true)
			}
			if err != nil {
				return err
			}
		}
	case "white-space":
		switch value {
		case "pre", "pre-wrap":
			return flag(props.FlagPreformatted, true)
		case "nowrap":
			return flag(props.FlagNoWrap, true)
		case "normal":
			if err := flag(props.FlagPreformatted, false); err != nil {
				return err
			}
			return flag(props.FlagNoWrap, false)
		}
	case "vertical-align":
		switch value {
		case "sub":
			return flag(props.FlagSubscript, true)
		case "super":
			return flag(props.FlagSuperscript, true)
		}
		if v, ok := props.ParseEnum(props.PropVerticalAlignment, value); ok {
			return r.b.SetProperty(p, props.PropVerticalAlignment, v)
		}
	case "visibility":
		switch value {
		case "hidden", "collapse":
			return flag(props.FlagHidden, true)
		case "visible":
			return flag(props.FlagHidden, false)
		}
	case "direction":
		if value == "rtl" || value == "ltr" {
			return flag(props.FlagRightToLeft, value == "rtl")
		}
	}
	return nil
}

// applyBoxSides expands the one to four value margin and padding shorthand.
func (r *reader) applyBoxSides(sides [4]props.ID, values []string) error {
	var lengths []props.Value
	for _, s := range values {
		v, ok := parseLength(s, false)
		if !ok {
			return nil
		}
		lengths = append(lengths, v)
	}
	var order [4]int
	switch len(lengths) {
	case 1:
		order = [4]int{0, 0, 0, 0}
	case 2:
		order = [4]int{0, 1, 0, 1}
	case 3:
		order = [4]int{0, 1, 2, 1}
	case 4:
		order = [4]int{0, 1, 2, 3}
	default:
		return nil
	}
	for i, id := range sides {
		if err := r.b.SetProperty(props.PrecedenceInlineStyle, id, lengths[order[i]]); err != nil {
			return err
		}
	}
	return nil
}

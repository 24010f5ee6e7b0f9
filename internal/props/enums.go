package props

import "strings"

// enumNames lists, per property, the CSS keyword of each enum value. Index 0
// is unused.
var enumNames = map[ID][]string{
	PropTextAlignment:     {"", "left", "center", "right", "justify"},
	PropVerticalAlignment: {"", "top", "middle", "bottom", "baseline"},
	PropDisplay:           {"", "block", "inline", "table", "list-item", "none"},
	PropListStyle:         {"", "disc", "circle", "square", "decimal", "lower-alpha", "upper-alpha", "lower-roman", "upper-roman"},
	PropHeaderScope:       {"", "row", "col", "rowgroup", "colgroup"},
	PropBorderStyle:       {"", "none", "solid", "dashed", "dotted", "double"},
}

// EnumName returns the keyword of enum value v of property id, or "".
func EnumName(id ID, v Value) string {
	names := enumNames[id]
	if v.Type() != TypeEnum || v.Int() <= 0 || v.Int() >= len(names) {
		return ""
	}
	return names[v.Int()]
}

// ParseEnum looks up keyword s among the enum values of property id.
func ParseEnum(id ID, s string) (Value, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range enumNames[id] {
		if i > 0 && name == s {
			return Enum(i), true
		}
	}
	return Null, false
}

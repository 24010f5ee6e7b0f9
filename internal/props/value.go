package props

import "fmt"

// Type is the type tag of a Value.
type Type uint8

const (
	TypeNull Type = iota
	TypeBoolean
	TypeInteger
	TypeEnum
	TypeColor
	TypePixels
	TypePoints
	TypePercentage
	TypeTag
	TypeString
	TypeMultiValue
)

// Value is a compact property value. String and multi-value payloads are
// handles into a Store; the zero Value is null.
type Value struct {
	typ Type
	v   int32
}

// Null is the null value.
var Null = Value{}

func Boolean(b bool) Value {
	if b {
		return Value{TypeBoolean, 1}
	}
	return Value{TypeBoolean, 0}
}

func Integer(n int) Value    { return Value{TypeInteger, int32(n)} }
func Enum(n int) Value       { return Value{TypeEnum, int32(n)} }
func Pixels(n int) Value     { return Value{TypePixels, int32(n)} }
func Points(n int) Value     { return Value{TypePoints, int32(n)} }
func Percentage(n int) Value { return Value{TypePercentage, int32(n)} }

// Color returns a 0xRRGGBB color value.
func Color(rgb uint32) Value { return Value{TypeColor, int32(rgb & 0xFFFFFF)} }

// Tag returns a value holding an interned tag id.
func Tag(tag uint32) Value { return Value{TypeTag, int32(tag)} }

func stringValue(h StringHandle) Value   { return Value{TypeString, int32(h)} }
func multiValue(h MultiValueHandle) Value { return Value{TypeMultiValue, int32(h)} }

func (v Value) Type() Type   { return v.typ }
func (v Value) IsNull() bool { return v.typ == TypeNull }

// Int returns the raw numeric payload.
func (v Value) Int() int { return int(v.v) }

func (v Value) Bool() bool { return v.v != 0 }

// RGB returns the payload of a color value.
func (v Value) RGB() uint32 { return uint32(v.v) & 0xFFFFFF }

// TagID returns the payload of a tag value.
func (v Value) TagID() uint32 { return uint32(v.v) }

// IsRefCounted reports whether v references a Store record.
func (v Value) IsRefCounted() bool {
	return v.typ == TypeString || v.typ == TypeMultiValue
}

func (v Value) stringHandle() StringHandle         { return StringHandle(v.v) }
func (v Value) multiValueHandle() MultiValueHandle { return MultiValueHandle(v.v) }

func (v Value) String() string {
	switch v.typ {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return fmt.Sprintf("%t", v.Bool())
	case TypeColor:
		return fmt.Sprintf("#%06x", v.RGB())
	case TypePixels:
		return fmt.Sprintf("%dpx", v.v)
	case TypePoints:
		return fmt.Sprintf("%dpt", v.v)
	case TypePercentage:
		return fmt.Sprintf("%d%%", v.v)
	case TypeString:
		return fmt.Sprintf("string#%d", v.v)
	case TypeMultiValue:
		return fmt.Sprintf("multi#%d", v.v)
	case TypeTag:
		return fmt.Sprintf("tag#%d", v.v)
	}
	return fmt.Sprintf("%d", v.v)
}

// Property is one (id, value) pair.
type Property struct {
	ID    ID
	Value Value
}

// Enumerations carried as TypeEnum values.
const (
	AlignLeft = iota + 1
	AlignCenter
	AlignRight
	AlignJustify
)

const (
	VAlignTop = iota + 1
	VAlignMiddle
	VAlignBottom
	VAlignBaseline
)

const (
	DisplayBlock = iota + 1
	DisplayInline
	DisplayTable
	DisplayListItem
	DisplayNone
)

const (
	ListDisc = iota + 1
	ListCircle
	ListSquare
	ListDecimal
	ListLowerAlpha
	ListUpperAlpha
	ListLowerRoman
	ListUpperRoman
)

const (
	ScopeRow = iota + 1
	ScopeCol
	ScopeRowGroup
	ScopeColGroup
)

const (
	BorderNone = iota + 1
	BorderSolid
	BorderDashed
	BorderDotted
	BorderDouble
)

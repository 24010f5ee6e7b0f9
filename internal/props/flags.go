package props

import (
	"math/bits"
	"strings"
)

// FlagProperties packs FlagCount booleans two bits per id: the even bit says
// the flag is defined, the odd bit holds its value.
type FlagProperties struct {
	bits uint64
}

const definedBits = 0x5555555555555555

func (f FlagProperties) IsEmpty() bool { return f.bits == 0 }

// IsDefined reports whether id has a value.
func (f FlagProperties) IsDefined(id FlagID) bool {
	return f.bits&(1<<(2*uint(id))) != 0
}

// IsOn reports whether id is defined and true.
func (f FlagProperties) IsOn(id FlagID) bool {
	return f.bits&(2<<(2*uint(id))) != 0
}

// Set defines id with value on.
func (f *FlagProperties) Set(id FlagID, on bool) {
	shift := 2 * uint(id)
	f.bits &^= 3 << shift
	f.bits |= 1 << shift
	if on {
		f.bits |= 2 << shift
	}
}

// Remove undefines id.
func (f *FlagProperties) Remove(id FlagID) {
	f.bits &^= 3 << (2 * uint(id))
}

// Count returns the number of defined flags.
func (f FlagProperties) Count() int {
	return bits.OnesCount64(f.bits & definedBits)
}

// both returns a mask with both bits set for every defined id.
func (f FlagProperties) both() uint64 {
	d := f.bits & definedBits
	return d | d<<1
}

// Merge overlays other onto f: flags defined in other win.
func (f FlagProperties) Merge(other FlagProperties) FlagProperties {
	return FlagProperties{bits: f.bits&^other.both() | other.bits}
}

// MergeUndefined fills in flags of other that f does not define.
func (f FlagProperties) MergeUndefined(other FlagProperties) FlagProperties {
	return FlagProperties{bits: f.bits | other.bits&^f.both()}
}

// Masked keeps only the ids set in mask.
func (f FlagProperties) Masked(mask FlagMask) FlagProperties {
	return FlagProperties{bits: f.bits & mask.bits}
}

// Inherit computes the effective flags of a node owning f whose parent's
// effective flags are inherited, filtered by mask.
func (f FlagProperties) Inherit(inherited FlagProperties, mask FlagMask) FlagProperties {
	return inherited.Masked(mask).Merge(f)
}

// DistinctFrom returns the flags of f that override a different inherited
// value or introduce one inherited does not define.
func (f FlagProperties) DistinctFrom(inherited FlagProperties) FlagProperties {
	own := f.bits & definedBits
	inh := inherited.bits & definedBits
	valueDiff := ((f.bits ^ inherited.bits) >> 1) & definedBits
	d := own & (^inh | valueDiff)
	return FlagProperties{bits: f.bits & (d | d<<1)}
}

// Each calls fn for every defined flag in id order.
func (f FlagProperties) Each(fn func(id FlagID, on bool)) {
	d := f.bits & definedBits
	for d != 0 {
		i := bits.TrailingZeros64(d)
		id := FlagID(i / 2)
		fn(id, f.IsOn(id))
		d &^= 1 << uint(i)
	}
}

func (f FlagProperties) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	f.Each(func(id FlagID, on bool) {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		if !on {
			sb.WriteByte('!')
		}
		sb.WriteString(id.String())
	})
	sb.WriteByte('}')
	return sb.String()
}

// FlagMask selects flag ids, for example the flags a node type lets its
// children inherit.
type FlagMask struct {
	bits uint64
}

// AllFlags selects every flag.
var AllFlags = FlagMask{bits: ^uint64(0)}

// NewFlagMask returns a mask selecting ids.
func NewFlagMask(ids ...FlagID) FlagMask {
	var m FlagMask
	for _, id := range ids {
		m.bits |= 3 << (2 * uint(id))
	}
	return m
}

// Has reports whether id is selected.
func (m FlagMask) Has(id FlagID) bool {
	return m.bits&(1<<(2*uint(id))) != 0
}

// Without returns m minus ids.
func (m FlagMask) Without(ids ...FlagID) FlagMask {
	for _, id := range ids {
		m.bits &^= 3 << (2 * uint(id))
	}
	return m
}

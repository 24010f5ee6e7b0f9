package props

import "math/bits"

// PropertyMask is a set of property ids.
type PropertyMask uint64

// AllProperties selects every property id.
const AllProperties = ^PropertyMask(0)

// NewPropertyMask returns a mask selecting ids.
func NewPropertyMask(ids ...ID) PropertyMask {
	var m PropertyMask
	for _, id := range ids {
		m |= 1 << uint(id)
	}
	return m
}

func (m PropertyMask) Has(id ID) bool { return m&(1<<uint(id)) != 0 }

func (m *PropertyMask) Set(id ID)   { *m |= 1 << uint(id) }
func (m *PropertyMask) Clear(id ID) { *m &^= 1 << uint(id) }

func (m PropertyMask) IsEmpty() bool { return m == 0 }

func (m PropertyMask) Count() int { return bits.OnesCount64(uint64(m)) }

// Without returns m minus ids.
func (m PropertyMask) Without(ids ...ID) PropertyMask {
	for _, id := range ids {
		m.Clear(id)
	}
	return m
}

// Each calls fn for every selected id in ascending order.
func (m PropertyMask) Each(fn func(ID)) {
	for m != 0 {
		i := bits.TrailingZeros64(uint64(m))
		fn(ID(i))
		m &^= 1 << uint(i)
	}
}

// MaskOf returns the mask of ids present in list.
func MaskOf(list []Property) PropertyMask {
	var m PropertyMask
	for _, p := range list {
		m.Set(p.ID)
	}
	return m
}

// Find returns the value of id in a sorted list, or Null.
func Find(list []Property, id ID) Value {
	lo, hi := 0, len(list)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case list[mid].ID == id:
			return list[mid].Value
		case list[mid].ID < id:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return Null
}

// Upsert sets id to v in a sorted list, returning the new list and the
// value it replaced.
func Upsert(list []Property, id ID, v Value) ([]Property, Value) {
	i := 0
	for i < len(list) && list[i].ID < id {
		i++
	}
	if i < len(list) && list[i].ID == id {
		old := list[i].Value
		list[i].Value = v
		return list, old
	}
	list = append(list, Property{})
	copy(list[i+1:], list[i:])
	list[i] = Property{ID: id, Value: v}
	return list, Null
}

// Remove deletes id from a sorted list, returning the new list and the
// removed value.
func Remove(list []Property, id ID) ([]Property, Value) {
	for i, p := range list {
		if p.ID == id {
			return append(list[:i], list[i+1:]...), p.Value
		}
	}
	return list, Null
}

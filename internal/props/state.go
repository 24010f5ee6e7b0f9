package props

import (
	"github.com/hangy/AntiXss-sub003/internal/complexity"
)

// Mark is a position in the undo log returned by Apply.
type Mark int

type undoKind uint8

const (
	undoFlags undoKind = iota + 1
	undoValue
	undoDistinctMask
)

// undoEntry is a tagged variant; only the fields of its kind are meaningful.
type undoEntry struct {
	kind undoKind

	// undoFlags
	flags         FlagProperties
	distinctFlags FlagProperties

	// undoValue
	id    ID
	value Value

	// undoDistinctMask
	mask PropertyMask
}

// State holds the properties in effect at the current point of a traversal.
// It is mutated only by Apply and Undo, which must be paired.
type State struct {
	flags         FlagProperties
	distinctFlags FlagProperties
	values        [PropertyCount]Value
	mask          PropertyMask
	distinctMask  PropertyMask
	undo          []undoEntry
	maxUndo       int
}

// NewState returns an empty State whose undo log may hold at most maxUndo
// entries.
func NewState(maxUndo int) *State {
	return &State{maxUndo: maxUndo}
}

// Reset clears all properties and the undo log.
func (s *State) Reset() {
	maxUndo := s.maxUndo
	undo := s.undo[:0]
	*s = State{maxUndo: maxUndo, undo: undo}
}

// Apply enters a scope owning flags and props (sorted by id). Inherited
// flags and properties outside the inherit masks are dropped for the scope.
func (s *State) Apply(flags FlagProperties, props []Property, flagInherit FlagMask, propInherit PropertyMask) (Mark, error) {
	mark := Mark(len(s.undo))

	inherited := s.flags.Masked(flagInherit)
	newFlags := inherited.Merge(flags)
	newDistinctFlags := flags.DistinctFrom(inherited)
	if newFlags != s.flags || newDistinctFlags != s.distinctFlags {
		s.push(undoEntry{kind: undoFlags, flags: s.flags, distinctFlags: s.distinctFlags})
		s.flags = newFlags
		s.distinctFlags = newDistinctFlags
	}

	own := MaskOf(props)
	var distinct PropertyMask
	for _, p := range props {
		inh := Null
		if propInherit.Has(p.ID) {
			inh = s.values[p.ID]
		}
		if inh != p.Value {
			distinct.Set(p.ID)
		}
	}

	(s.mask &^ propInherit &^ own).Each(func(id ID) {
		s.setValue(id, Null)
	})
	for _, p := range props {
		if s.values[p.ID] != p.Value {
			s.setValue(p.ID, p.Value)
		}
	}

	if distinct != s.distinctMask {
		s.push(undoEntry{kind: undoDistinctMask, mask: s.distinctMask})
		s.distinctMask = distinct
	}

	if s.maxUndo > 0 && len(s.undo) > s.maxUndo {
		if err := s.Undo(mark); err != nil {
			return mark, err
		}
		return mark, complexity.Exceeded("property undo entries", s.maxUndo)
	}
	return mark, nil
}

func (s *State) setValue(id ID, v Value) {
	s.push(undoEntry{kind: undoValue, id: id, value: s.values[id]})
	s.values[id] = v
	if v.IsNull() {
		s.mask.Clear(id)
	} else {
		s.mask.Set(id)
	}
}

func (s *State) push(e undoEntry) {
	s.undo = append(s.undo, e)
}

// Undo replays the log back to mark, restoring the exact prior state.
func (s *State) Undo(mark Mark) error {
	if int(mark) > len(s.undo) || mark < 0 {
		return complexity.Misuse("undo mark %d beyond log of %d entries", mark, len(s.undo))
	}
	for i := len(s.undo) - 1; i >= int(mark); i-- {
		e := s.undo[i]
		switch e.kind {
		case undoFlags:
			s.flags = e.flags
			s.distinctFlags = e.distinctFlags
		case undoValue:
			s.values[e.id] = e.value
			if e.value.IsNull() {
				s.mask.Clear(e.id)
			} else {
				s.mask.Set(e.id)
			}
		case undoDistinctMask:
			s.distinctMask = e.mask
		}
	}
	s.undo = s.undo[:mark]
	return nil
}

// UndoLen returns the number of entries in the undo log.
func (s *State) UndoLen() int {
	return len(s.undo)
}

// EffectiveFlags returns inherited and own flags in effect.
func (s *State) EffectiveFlags() FlagProperties { return s.flags }

// DistinctFlags returns the flags the current scope sets itself.
func (s *State) DistinctFlags() FlagProperties { return s.distinctFlags }

// EffectiveProperty returns the value of id in effect, or Null.
func (s *State) EffectiveProperty(id ID) Value {
	if !id.Valid() {
		return Null
	}
	return s.values[id]
}

// DistinctProperty returns the value of id if the current scope sets it to
// something other than what it would inherit, or Null.
func (s *State) DistinctProperty(id ID) Value {
	if !id.Valid() || !s.distinctMask.Has(id) {
		return Null
	}
	return s.values[id]
}

// EffectiveMask returns the ids with a value in effect.
func (s *State) EffectiveMask() PropertyMask { return s.mask }

// DistinctMask returns the ids distinct in the current scope.
func (s *State) DistinctMask() PropertyMask { return s.distinctMask }

// Snapshot is a detached copy of the visible state.
type Snapshot struct {
	Flags         FlagProperties
	DistinctFlags FlagProperties
	Values        [PropertyCount]Value
	Mask          PropertyMask
	DistinctMask  PropertyMask
}

// Snapshot copies the visible state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Flags:         s.flags,
		DistinctFlags: s.distinctFlags,
		Values:        s.values,
		Mask:          s.mask,
		DistinctMask:  s.distinctMask,
	}
}

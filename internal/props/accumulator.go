package props

// Precedence ranks the sources of a property write. Lower values win.
type Precedence uint8

const (
	PrecedenceInlineStyle Precedence = iota
	PrecedenceStyleSheet
	PrecedenceAttribute
	PrecedenceTagDefault

	precedenceCount
)

func (p Precedence) String() string {
	switch p {
	case PrecedenceInlineStyle:
		return "inline-style"
	case PrecedenceStyleSheet:
		return "stylesheet"
	case PrecedenceAttribute:
		return "attribute"
	case PrecedenceTagDefault:
		return "tag-default"
	}
	return "precedence?"
}

type bucket struct {
	flags FlagProperties
	props []Property
}

// Accumulator collects pending property writes bucketed by precedence and
// folds them into one ordered list. Within a bucket the last write wins;
// across buckets a lower precedence never overwrites a higher one.
//
// The Accumulator holds one reference on every reference-counted value it
// stores.
type Accumulator struct {
	store   *Store
	buckets [precedenceCount]bucket
}

// NewAccumulator returns an empty Accumulator bound to store.
func NewAccumulator(store *Store) *Accumulator {
	return &Accumulator{store: store}
}

// IsEmpty reports whether nothing has been written.
func (a *Accumulator) IsEmpty() bool {
	for i := range a.buckets {
		if !a.buckets[i].flags.IsEmpty() || len(a.buckets[i].props) > 0 {
			return false
		}
	}
	return true
}

// SetFlag records a flag write.
func (a *Accumulator) SetFlag(p Precedence, id FlagID, on bool) {
	a.buckets[p].flags.Set(id, on)
}

// Set records a property write, taking a reference on v.
func (a *Accumulator) Set(p Precedence, id ID, v Value) error {
	if v.IsNull() {
		return a.Clear(p, id)
	}
	a.store.AddRef(v)
	var old Value
	a.buckets[p].props, old = Upsert(a.buckets[p].props, id, v)
	return a.store.Release(old)
}

// Clear removes a pending write of id at precedence p.
func (a *Accumulator) Clear(p Precedence, id ID) error {
	var old Value
	a.buckets[p].props, old = Remove(a.buckets[p].props, id)
	return a.store.Release(old)
}

// MergeStyle adds the contents of a style at precedence p without
// overwriting writes already recorded in that bucket.
func (a *Accumulator) MergeStyle(p Precedence, h StyleHandle) {
	st := a.store.Style(h)
	b := &a.buckets[p]
	b.flags = b.flags.MergeUndefined(st.Flags)
	for _, prop := range st.Props {
		if !Find(b.props, prop.ID).IsNull() {
			continue
		}
		a.store.AddRef(prop.Value)
		b.props, _ = Upsert(b.props, prop.ID, prop.Value)
	}
}

// MergeList adds flags and a list at precedence p without overwriting
// writes already recorded in that bucket.
func (a *Accumulator) MergeList(p Precedence, flags FlagProperties, list []Property) {
	b := &a.buckets[p]
	b.flags = b.flags.MergeUndefined(flags)
	for _, prop := range list {
		if !Find(b.props, prop.ID).IsNull() {
			continue
		}
		a.store.AddRef(prop.Value)
		b.props, _ = Upsert(b.props, prop.ID, prop.Value)
	}
}

// Get returns the winning pending value for id.
func (a *Accumulator) Get(id ID) Value {
	for i := range a.buckets {
		if v := Find(a.buckets[i].props, id); !v.IsNull() {
			return v
		}
	}
	return Null
}

// Flags returns the winning pending flags.
func (a *Accumulator) Flags() FlagProperties {
	var f FlagProperties
	for i := range a.buckets {
		f = f.MergeUndefined(a.buckets[i].flags)
	}
	return f
}

// Fold returns the merged flags and sorted property list and empties the
// Accumulator. References of winning values move to the returned list;
// references of shadowed values are released.
func (a *Accumulator) Fold() (FlagProperties, []Property, error) {
	flags := a.Flags()
	var (
		values [PropertyCount]Value
		mask   PropertyMask
		first  error
	)
	for i := range a.buckets {
		for _, p := range a.buckets[i].props {
			if mask.Has(p.ID) {
				if err := a.store.Release(p.Value); err != nil && first == nil {
					first = err
				}
				continue
			}
			values[p.ID] = p.Value
			mask.Set(p.ID)
		}
		a.buckets[i] = bucket{}
	}
	var list []Property
	if !mask.IsEmpty() {
		list = make([]Property, 0, mask.Count())
		mask.Each(func(id ID) {
			list = append(list, Property{ID: id, Value: values[id]})
		})
	}
	return flags, list, first
}

// Reset releases every pending write.
func (a *Accumulator) Reset() error {
	var first error
	for i := range a.buckets {
		if err := a.store.ReleaseAll(a.buckets[i].props); err != nil && first == nil {
			first = err
		}
		a.buckets[i] = bucket{}
	}
	return first
}

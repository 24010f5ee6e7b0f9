package props

import (
	"github.com/hangy/AntiXss-sub003/internal/arena"
	"github.com/hangy/AntiXss-sub003/internal/complexity"
)

type (
	// StringHandle identifies an interned string value.
	StringHandle arena.Handle
	// MultiValueHandle identifies an interned list of values.
	MultiValueHandle arena.Handle
	// StyleHandle identifies a named bundle of flags and properties.
	StyleHandle arena.Handle
)

// Style is an immutable, reference-counted bundle of properties.
type Style struct {
	Name  string
	Flags FlagProperties
	Props []Property
}

// Global records available in every Store.
const (
	EmptyString     StringHandle     = 1
	EmptyMultiValue MultiValueHandle = 1

	StyleEmpty     StyleHandle = 1
	StyleBold      StyleHandle = 2
	StyleItalic    StyleHandle = 3
	StyleUnderline StyleHandle = 4
	StyleCode      StyleHandle = 5
)

func globalStyles() []Style {
	style := func(name string, id FlagID) Style {
		s := Style{Name: name}
		s.Flags.Set(id, true)
		return s
	}
	return []Style{
		{Name: ""},
		style("bold", FlagBold),
		style("italic", FlagItalic),
		style("underline", FlagUnderline),
		style("code", FlagCode),
	}
}

// StoreConfig bounds the value arenas of a Store.
type StoreConfig struct {
	PlaneSize int
	MaxPlanes int
}

// Store owns the reference-counted values of one document.
type Store struct {
	strings *arena.Arena[string]
	multi   *arena.Arena[[]Value]
	styles  *arena.Arena[Style]
}

// NewStore returns a Store pre-seeded with the global records.
func NewStore(cfg StoreConfig) *Store {
	arenaCfg := func(name string) arena.Config {
		return arena.Config{Name: name, PlaneSize: cfg.PlaneSize, MaxPlanes: cfg.MaxPlanes}
	}
	return &Store{
		strings: arena.New[string](arenaCfg("string value"), ""),
		multi:   arena.New[[]Value](arenaCfg("multi-value"), nil),
		styles:  arena.New[Style](arenaCfg("style"), globalStyles()...),
	}
}

// RegisterString interns s. The caller owns the single reference of the
// returned value.
func (s *Store) RegisterString(str string) (Value, error) {
	if str == "" {
		return stringValue(EmptyString), nil
	}
	h, rec, err := s.strings.Allocate()
	if err != nil {
		return Null, err
	}
	*rec = str
	return stringValue(StringHandle(h)), nil
}

// RegisterMultiValue interns a copy of values. The list takes its own
// reference on every reference-counted element; the caller owns the single
// reference of the returned value.
func (s *Store) RegisterMultiValue(values []Value) (Value, error) {
	if len(values) == 0 {
		return multiValue(EmptyMultiValue), nil
	}
	for _, v := range values {
		if v.typ == TypeMultiValue {
			return Null, complexity.Misuse("multi-values cannot nest")
		}
	}
	h, rec, err := s.multi.Allocate()
	if err != nil {
		return Null, err
	}
	*rec = append([]Value(nil), values...)
	for _, v := range values {
		s.AddRef(v)
	}
	return multiValue(MultiValueHandle(h)), nil
}

// RegisterStyle interns a style. Its property list takes its own references;
// the caller owns the single reference of the returned handle.
func (s *Store) RegisterStyle(name string, flags FlagProperties, list []Property) (StyleHandle, error) {
	h, rec, err := s.styles.Allocate()
	if err != nil {
		return 0, err
	}
	rec.Name = name
	rec.Flags = flags
	rec.Props = sortedCopy(list)
	for _, p := range rec.Props {
		s.AddRef(p.Value)
	}
	return StyleHandle(h), nil
}

// String returns the payload of a string value.
func (s *Store) String(v Value) string {
	if v.typ != TypeString {
		return ""
	}
	return *s.strings.Get(arena.Handle(v.stringHandle()))
}

// MultiValue returns the elements of a multi-value. The slice must not be
// modified.
func (s *Store) MultiValue(v Value) []Value {
	if v.typ != TypeMultiValue {
		return nil
	}
	return *s.multi.Get(arena.Handle(v.multiValueHandle()))
}

// Style returns the style record for h.
func (s *Store) Style(h StyleHandle) *Style {
	return s.styles.Get(arena.Handle(h))
}

// AddRef takes a reference on v if it is reference counted.
func (s *Store) AddRef(v Value) {
	switch v.typ {
	case TypeString:
		s.strings.AddRef(arena.Handle(v.stringHandle()))
	case TypeMultiValue:
		s.multi.AddRef(arena.Handle(v.multiValueHandle()))
	}
}

// Release drops a reference on v, freeing the record when it was the last.
func (s *Store) Release(v Value) error {
	switch v.typ {
	case TypeString:
		_, err := s.strings.Release(arena.Handle(v.stringHandle()), nil)
		return err
	case TypeMultiValue:
		var errs []error
		_, err := s.multi.Release(arena.Handle(v.multiValueHandle()), func(list *[]Value) {
			for _, e := range *list {
				if err := s.Release(e); err != nil {
					errs = append(errs, err)
				}
			}
		})
		if err != nil {
			return err
		}
		if len(errs) > 0 {
			return errs[0]
		}
	}
	return nil
}

// ReleaseAll releases every value of list.
func (s *Store) ReleaseAll(list []Property) error {
	var first error
	for _, p := range list {
		if err := s.Release(p.Value); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// AddRefStyle takes a reference on a style.
func (s *Store) AddRefStyle(h StyleHandle) {
	s.styles.AddRef(arena.Handle(h))
}

// ReleaseStyle drops a reference on a style.
func (s *Store) ReleaseStyle(h StyleHandle) error {
	var inner error
	_, err := s.styles.Release(arena.Handle(h), func(st *Style) {
		inner = s.ReleaseAll(st.Props)
	})
	if err != nil {
		return err
	}
	return inner
}

// RefCount reports the reference count of v; static and non-counted values
// report arena.StaticRefCount.
func (s *Store) RefCount(v Value) int {
	switch v.typ {
	case TypeString:
		return s.strings.RefCount(arena.Handle(v.stringHandle()))
	case TypeMultiValue:
		return s.multi.RefCount(arena.Handle(v.multiValueHandle()))
	}
	return arena.StaticRefCount
}

// LiveValues returns the number of live string, multi-value and style
// records, globals included.
func (s *Store) LiveValues() (strings, multiValues, styles int) {
	return s.strings.Len(), s.multi.Len(), s.styles.Len()
}

func sortedCopy(list []Property) []Property {
	out := make([]Property, 0, len(list))
	for _, p := range list {
		out, _ = Upsert(out, p.ID, p.Value)
	}
	return out
}

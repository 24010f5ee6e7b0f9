// Package arena provides a segmented, handle-based record store.
//
// Records live in fixed-capacity planes. A handle maps to
// (plane = handle / PlaneSize, index = handle % PlaneSize), so lookups are
// O(1) and growing the store never moves records of completed planes. The
// first plane starts small and doubles until it reaches PlaneSize; later
// planes are allocated at full size, up to MaxPlanes. Handle 0 is never
// allocated and means "null".
package arena

import (
	"math"

	"github.com/hangy/AntiXss-sub003/internal/complexity"
)

// Handle identifies a record in an Arena. The zero Handle is null.
type Handle int32

// Null is the universal null handle.
const Null Handle = 0

// StaticRefCount is the reference count sentinel of records that must never
// be released.
const StaticRefCount = math.MaxInt32

const initialPlaneCapacity = 16

// Config bounds an Arena.
type Config struct {
	// Name is used in capacity errors ("node planes limit of 16 exceeded").
	Name string

	// PlaneSize is the number of records per plane. It must be a power of
	// two no smaller than 16.
	PlaneSize int

	// MaxPlanes is the hard cap on planes. Allocating past
	// PlaneSize*MaxPlanes records fails with ErrDocumentTooComplex.
	MaxPlanes int
}

type slot[T any] struct {
	value    T
	refCount int32
	nextFree Handle
	live     bool
}

// Arena is a segmented store of records of type T.
type Arena[T any] struct {
	cfg      Config
	planes   [][]slot[T]
	top      Handle // next never-used handle
	freeList Handle
	live     int
	globals  Handle // handles 1..globals are static
}

// New returns an Arena whose low handles 1..len(globals) are pre-seeded with
// globals as static records.
func New[T any](cfg Config, globals ...T) *Arena[T] {
	if cfg.PlaneSize < initialPlaneCapacity {
		cfg.PlaneSize = initialPlaneCapacity
	}
	if cfg.MaxPlanes < 1 {
		cfg.MaxPlanes = 1
	}
	a := &Arena[T]{cfg: cfg, top: 1}
	for _, g := range globals {
		h, rec, err := a.Allocate()
		if err != nil {
			// globals are a fixed handful; a plane always fits them
			panic(err)
		}
		*rec = g
		a.slot(h).refCount = StaticRefCount
	}
	a.globals = Handle(len(globals))
	return a
}

// Config returns the limits the Arena was built with.
func (a *Arena[T]) Config() Config {
	return a.cfg
}

// Globals returns the number of pre-seeded static records.
func (a *Arena[T]) Globals() int {
	return int(a.globals)
}

// Len returns the number of live records, globals included.
func (a *Arena[T]) Len() int {
	return a.live
}

// Planes returns the number of planes currently allocated.
func (a *Arena[T]) Planes() int {
	return len(a.planes)
}

// Allocate returns a fresh zeroed record with a reference count of 1.
// The returned pointer is valid until the next call to Allocate.
func (a *Arena[T]) Allocate() (Handle, *T, error) {
	var h Handle
	if a.freeList != Null {
		h = a.freeList
		s := a.slot(h)
		a.freeList = s.nextFree
		s.nextFree = Null
	} else {
		if err := a.ensure(a.top); err != nil {
			return Null, nil, err
		}
		h = a.top
		a.top++
	}
	s := a.slot(h)
	var zero T
	s.value = zero
	s.refCount = 1
	s.live = true
	a.live++
	return h, &s.value, nil
}

// ensure makes room for handle h, growing the last plane by doubling or
// appending a new plane.
func (a *Arena[T]) ensure(h Handle) error {
	size := a.cfg.PlaneSize
	plane := int(h) / size
	index := int(h) % size
	if plane >= a.cfg.MaxPlanes {
		return complexity.Exceeded(a.cfg.Name+" planes", a.cfg.MaxPlanes)
	}
	for plane >= len(a.planes) {
		capacity := size
		if len(a.planes) == 0 {
			capacity = initialPlaneCapacity
		}
		a.planes = append(a.planes, make([]slot[T], capacity))
	}
	p := a.planes[plane]
	if index < len(p) {
		return nil
	}
	capacity := len(p)
	for capacity <= index {
		capacity *= 2
	}
	if capacity > size {
		capacity = size
	}
	grown := make([]slot[T], capacity)
	copy(grown, p)
	a.planes[plane] = grown
	return nil
}

func (a *Arena[T]) slot(h Handle) *slot[T] {
	size := a.cfg.PlaneSize
	return &a.planes[int(h)/size][int(h)%size]
}

// Live reports whether h refers to an allocated record.
func (a *Arena[T]) Live(h Handle) bool {
	if h <= Null || h >= a.top {
		return false
	}
	return a.slot(h).live
}

// Get returns the record for h. It panics on a stale or null handle, which
// is always a caller bug.
func (a *Arena[T]) Get(h Handle) *T {
	if !a.Live(h) {
		panic(complexity.Misuse("%s handle %d is not live", a.cfg.Name, h))
	}
	return &a.slot(h).value
}

// IsStatic reports whether h is a static record.
func (a *Arena[T]) IsStatic(h Handle) bool {
	return a.Live(h) && a.slot(h).refCount == StaticRefCount
}

// MakeStatic pins h so that Release never frees it.
func (a *Arena[T]) MakeStatic(h Handle) {
	a.slot(h).refCount = StaticRefCount
}

// RefCount returns the reference count of h.
func (a *Arena[T]) RefCount(h Handle) int {
	if !a.Live(h) {
		return 0
	}
	return int(a.slot(h).refCount)
}

// AddRef increments the reference count of h. Static records are unchanged.
func (a *Arena[T]) AddRef(h Handle) {
	s := a.slot(h)
	if s.refCount != StaticRefCount {
		s.refCount++
	}
}

// Release decrements the reference count of h and frees the record when it
// reaches zero. It reports whether the record was freed; onFree, if not nil,
// sees the record before it is recycled.
func (a *Arena[T]) Release(h Handle, onFree func(*T)) (bool, error) {
	if !a.Live(h) {
		return false, complexity.Misuse("release of dead %s handle %d", a.cfg.Name, h)
	}
	s := a.slot(h)
	if s.refCount == StaticRefCount {
		return false, nil
	}
	s.refCount--
	if s.refCount > 0 {
		return false, nil
	}
	if onFree != nil {
		onFree(&s.value)
	}
	a.recycle(h, s)
	return true, nil
}

// Free returns h to the free list regardless of its reference count.
// Static records cannot be freed.
func (a *Arena[T]) Free(h Handle) error {
	if !a.Live(h) {
		return complexity.Misuse("free of dead %s handle %d", a.cfg.Name, h)
	}
	s := a.slot(h)
	if s.refCount == StaticRefCount {
		return complexity.Misuse("free of static %s handle %d", a.cfg.Name, h)
	}
	a.recycle(h, s)
	return nil
}

func (a *Arena[T]) recycle(h Handle, s *slot[T]) {
	var zero T
	s.value = zero
	s.refCount = 0
	s.live = false
	s.nextFree = a.freeList
	a.freeList = h
	a.live--
}

// Each calls fn for every live record in handle order.
func (a *Arena[T]) Each(fn func(Handle, *T)) {
	for h := Handle(1); h < a.top; h++ {
		s := a.slot(h)
		if s.live {
			fn(h, &s.value)
		}
	}
}

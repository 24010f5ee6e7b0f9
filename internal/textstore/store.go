// Package textstore implements the append-only character log that backs the
// text of a document.
//
// Content is stored as runs: one header cell (kind, storage length,
// effective length) optionally followed by literal characters. Spaces,
// tabs, line breaks and markers are run-length encoded by the header alone.
// Cells live in fixed-size segments; a run header never straddles a segment
// boundary.
package textstore

import (
	"github.com/hangy/AntiXss-sub003/internal/complexity"
)

// Position is a cursor into the store. Positions only grow.
type Position int

// Config bounds a Store.
type Config struct {
	// SegmentSize is the number of cells per segment.
	SegmentSize int

	// MaxSegments is the hard cap on segments.
	MaxSegments int
}

const minSegmentSize = 16

// Store is the text run log of one document.
type Store struct {
	cfg         Config
	segments    [][]uint32
	tail        Position
	last        Position // header of the most recent run, -1 if none
	noMerge     bool
	atLineStart bool
}

// New returns an empty Store.
func New(cfg Config) *Store {
	if cfg.SegmentSize < minSegmentSize {
		cfg.SegmentSize = minSegmentSize
	}
	if cfg.MaxSegments < 1 {
		cfg.MaxSegments = 1
	}
	return &Store{cfg: cfg, last: -1, atLineStart: true}
}

// CurrentPosition returns the position the next run will be written at.
func (s *Store) CurrentPosition() Position {
	return s.tail
}

// Segments returns the number of allocated segments.
func (s *Store) Segments() int {
	return len(s.segments)
}

// AtLineStart reports whether nothing but line breaks or block boundaries
// has been written since the last line start.
func (s *Store) AtLineStart() bool {
	return s.atLineStart
}

// DoNotMergeNextRun forces the next appended run to start with a fresh
// header, so a range ending at CurrentPosition stays closed.
func (s *Store) DoNotMergeNextRun() {
	s.noMerge = true
}

func (s *Store) cell(p Position) uint32 {
	size := s.cfg.SegmentSize
	return s.segments[int(p)/size][int(p)%size]
}

func (s *Store) setCell(p Position, v uint32) {
	size := s.cfg.SegmentSize
	s.segments[int(p)/size][int(p)%size] = v
}

func (s *Store) cells(p Position, n int) []uint32 {
	size := s.cfg.SegmentSize
	off := int(p) % size
	return s.segments[int(p)/size][off : off+n]
}

// remaining returns the cells left in the segment containing p.
func (s *Store) remaining(p Position) int {
	return s.cfg.SegmentSize - int(p)%s.cfg.SegmentSize
}

func (s *Store) ensure(p Position) error {
	seg := int(p) / s.cfg.SegmentSize
	if seg < len(s.segments) {
		return nil
	}
	if seg >= s.cfg.MaxSegments {
		return complexity.Exceeded("text segments", s.cfg.MaxSegments)
	}
	for seg >= len(s.segments) {
		s.segments = append(s.segments, make([]uint32, s.cfg.SegmentSize))
	}
	return nil
}

// mergeable reports whether the last run has the given kind and can still be
// extended in place.
func (s *Store) mergeable(kind RunKind) bool {
	if s.noMerge || s.last < 0 || kind == RunInvalid {
		return false
	}
	h := s.cell(s.last)
	if headerKind(h) != kind {
		return false
	}
	// the tail must still be in the segment holding the header
	return s.last+Position(headerStorage(h))+1 == s.tail && int(s.tail)%s.cfg.SegmentSize != 0
}

func (s *Store) writeHeader(kind RunKind, storage, length int) {
	s.setCell(s.tail, makeHeader(kind, storage, length))
	s.last = s.tail
	s.tail++
	s.noMerge = false
}

// AddText appends literal text. Whitespace is stored as given; callers that
// want run-length encoded whitespace use AddSimpleRun.
func (s *Store) AddText(text string) error {
	return s.AddRunes([]rune(text))
}

// AddRunes appends literal characters.
func (s *Store) AddRunes(runes []rune) error {
	if len(runes) == 0 {
		return nil
	}
	for len(runes) > 0 {
		if s.mergeable(RunText) {
			h := s.cell(s.last)
			storage := headerStorage(h)
			room := minInt(MaxRunLength-storage, s.remaining(s.tail))
			if room > 0 {
				n := minInt(room, len(runes))
				copyRunes(s.cells(s.tail, n), runes[:n])
				s.tail += Position(n)
				s.setCell(s.last, makeHeader(RunText, storage+n, storage+n))
				runes = runes[n:]
				continue
			}
		}
		if err := s.ensure(s.tail); err != nil {
			return err
		}
		rem := s.remaining(s.tail)
		if rem < 2 {
			// only a header fits; pad the segment
			s.writeHeader(RunInvalid, 0, 0)
			continue
		}
		n := minInt(minInt(len(runes), MaxRunLength), rem-1)
		s.writeHeader(RunText, n, n)
		copyRunes(s.cells(s.tail, n), runes[:n])
		s.tail += Position(n)
		runes = runes[n:]
	}
	s.atLineStart = false
	return nil
}

// AddSimpleRun appends count characters of a header-only kind.
func (s *Store) AddSimpleRun(kind RunKind, count int) error {
	if kind == RunText || kind == RunInvalid || kind >= runKindCount {
		return complexity.Misuse("%s is not a simple run kind", kind)
	}
	if count <= 0 {
		return nil
	}
	for count > 0 {
		if s.mergeable(kind) {
			h := s.cell(s.last)
			length := headerLength(h)
			if room := MaxRunLength - length; room > 0 {
				n := minInt(room, count)
				s.setCell(s.last, makeHeader(kind, 0, length+n))
				count -= n
				continue
			}
		}
		if err := s.ensure(s.tail); err != nil {
			return err
		}
		n := minInt(count, MaxRunLength)
		s.writeHeader(kind, 0, n)
		count -= n
	}
	s.atLineStart = kind == RunNewLine || kind == RunBlockBoundary
	return nil
}

// Run returns the run whose header is at p.
func (s *Store) Run(p Position) Run {
	h := s.cell(p)
	return Run{
		store:    s,
		Position: p,
		Kind:     headerKind(h),
		Length:   headerLength(h),
		storage:  headerStorage(h),
	}
}

// RunAt returns the view of the run containing p that starts at p. For a
// position inside a text run the view holds the characters from p on.
func (s *Store) RunAt(p Position) Run {
	r := s.containing(p)
	if p <= r.Position+1 {
		return r
	}
	return r.slice(int(p-r.Position)-1, r.storage)
}

// IsRunBoundary reports whether p is a run header or the end of the store.
func (s *Store) IsRunBoundary(p Position) bool {
	if p == s.tail {
		return true
	}
	if p < 0 || p > s.tail {
		return false
	}
	return s.containing(p).Position == p
}

// containing returns the whole run whose cells include p. Every segment
// starts with a header, so the walk stays inside p's segment.
func (s *Store) containing(p Position) Run {
	h := p - p%Position(s.cfg.SegmentSize)
	for {
		r := s.Run(h)
		if p < r.Next() {
			return r
		}
		h = r.Next()
	}
}

// LastRun returns the most recently written run.
func (s *Store) LastRun() (Run, bool) {
	if s.last < 0 {
		return Run{}, false
	}
	return s.Run(s.last), true
}

// ConvertToInvalid revokes the whole run at p. Its cells stay in place so
// every position recorded elsewhere remains valid.
func (s *Store) ConvertToInvalid(p Position) error {
	if p < 0 || p >= s.tail {
		return complexity.Misuse("text position %d out of range", p)
	}
	h := s.cell(p)
	s.setCell(p, makeHeader(RunInvalid, headerStorage(h), headerLength(h)))
	return nil
}

// ConvertPartToInvalid revokes the trailing count characters of the run at
// p. A text run keeps its prefix; the first revoked cell becomes the header
// of an invalid run covering the rest.
func (s *Store) ConvertPartToInvalid(p Position, count int) error {
	if p < 0 || p >= s.tail {
		return complexity.Misuse("text position %d out of range", p)
	}
	r := s.Run(p)
	if count <= 0 {
		return nil
	}
	if count >= r.Length || r.Kind == RunInvalid {
		return s.ConvertToInvalid(p)
	}
	keep := r.Length - count
	if r.Kind != RunText {
		s.setCell(p, makeHeader(r.Kind, 0, keep))
		return nil
	}
	s.setCell(p, makeHeader(RunText, keep, keep))
	split := p + Position(keep) + 1
	s.setCell(split, makeHeader(RunInvalid, count-1, count-1))
	if s.last == p {
		s.last = split
	}
	return nil
}

// Text renders the runs in [begin, end) as a string.
func (s *Store) Text(begin, end Position) string {
	var out []rune
	it := s.Iterate(begin, end)
	for it.MoveNext() {
		out = appendRun(out, it.Run())
	}
	return string(out)
}

// WordLength returns the number of literal characters in the text runs
// starting at p, coalescing across segment padding, looking no further than
// maxLookahead characters.
func (s *Store) WordLength(p Position, maxLookahead int) int {
	total := 0
	for p < s.tail && total < maxLookahead {
		r := s.Run(p)
		switch r.Kind {
		case RunText:
			total += r.Length
		case RunInvalid:
		default:
			return minInt(total, maxLookahead)
		}
		p = r.Next()
	}
	return minInt(total, maxLookahead)
}

// Iterate returns an iterator over the runs in [begin, end). Either bound
// may fall inside a text run; the first and last views are then partial.
func (s *Store) Iterate(begin, end Position) *Iterator {
	if end > s.tail {
		end = s.tail
	}
	it := &Iterator{store: s, next: begin, end: end}
	if begin >= 0 && begin < end {
		r := s.containing(begin)
		it.next = r.Position
		if begin > r.Position+1 {
			it.skip = int(begin-r.Position) - 1
		}
	}
	return it
}

// Iterator walks run headers.
type Iterator struct {
	store *Store
	next  Position
	end   Position
	skip  int
	run   Run
}

// MoveNext advances to the next run and reports whether there is one.
func (it *Iterator) MoveNext() bool {
	for it.next < it.end {
		r := it.store.view(it.next, it.skip, it.end)
		it.skip = 0
		it.next = r.Next()
		if r.Kind == RunText && r.Length == 0 && r.Partial() {
			continue
		}
		it.run = r
		return true
	}
	return false
}

// view returns the run with its header at h, without its first skip
// characters and cut at end.
func (s *Store) view(h Position, skip int, end Position) Run {
	r := s.Run(h)
	to := r.storage
	if r.Next() > end {
		to = int(end-h) - 1
	}
	if skip == 0 && to == r.storage {
		return r
	}
	return r.slice(skip, to)
}

// Run returns the current run.
func (it *Iterator) Run() Run {
	return it.run
}

// GetNext returns the run after the current one without advancing.
func (it *Iterator) GetNext() (Run, bool) {
	if it.next >= it.end {
		return Run{}, false
	}
	return it.store.view(it.next, 0, it.end), true
}

// Position returns the position after the current run, where iteration
// resumes. It never passes the end of the range.
func (it *Iterator) Position() Position {
	if it.next > it.end {
		return it.end
	}
	return it.next
}

func copyRunes(dst []uint32, src []rune) {
	for i, r := range src {
		dst[i] = uint32(r)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

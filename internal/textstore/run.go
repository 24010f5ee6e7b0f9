package textstore

// RunKind is the semantic kind of a run.
type RunKind uint8

const (
	// RunInvalid is revoked content or segment padding. It renders nothing.
	RunInvalid RunKind = iota

	// RunText is literal text; its characters follow the header.
	RunText

	// RunSpace is a run of collapsible spaces.
	RunSpace

	// RunNbsp is a run of non-breaking spaces.
	RunNbsp

	// RunTab is a run of tabulations.
	RunTab

	// RunNewLine is a run of hard line breaks.
	RunNewLine

	// RunInlineObject marks inline objects such as images.
	RunInlineObject

	// RunBlockBoundary marks the edge of a block-level container.
	RunBlockBoundary

	runKindCount
)

var runKindNames = [...]string{
	RunInvalid:       "invalid",
	RunText:          "text",
	RunSpace:         "space",
	RunNbsp:          "nbsp",
	RunTab:           "tab",
	RunNewLine:       "newline",
	RunInlineObject:  "object",
	RunBlockBoundary: "boundary",
}

func (k RunKind) String() string {
	if int(k) < len(runKindNames) {
		return runKindNames[k]
	}
	return "unknown"
}

// MaxRunLength caps the storage and effective length of a single run.
const MaxRunLength = 1<<12 - 1

// header layout: kind(4) | storage(12) | effective(16)
const (
	kindShift    = 28
	storageShift = 16
	storageMask  = 1<<12 - 1
	lengthMask   = 1<<16 - 1
)

func makeHeader(kind RunKind, storage, length int) uint32 {
	return uint32(kind)<<kindShift | uint32(storage&storageMask)<<storageShift | uint32(length&lengthMask)
}

func headerKind(h uint32) RunKind { return RunKind(h >> kindShift) }
func headerStorage(h uint32) int  { return int(h>>storageShift) & storageMask }
func headerLength(h uint32) int   { return int(h & lengthMask) }

// Run is a read-only view of one run, or of part of a text run when a
// range starts or ends inside it.
type Run struct {
	store *Store
	// Position is the header of the run, even for a partial view.
	Position Position
	Kind     RunKind
	// Length is the effective length of the view: characters for text,
	// repeat count for simple runs.
	Length int
	// Offset is the number of characters of the run before the view.
	Offset  int
	storage int
}

// Next returns the position of the header after this run.
func (r Run) Next() Position {
	return r.Position + Position(r.storage) + 1
}

// Begin returns the position the view starts at.
func (r Run) Begin() Position {
	if r.Offset == 0 {
		return r.Position
	}
	return r.Position + Position(r.Offset) + 1
}

// Partial reports whether the view covers only part of the run.
func (r Run) Partial() bool {
	return r.Kind == RunText && r.Offset+r.Length < r.storage || r.Offset > 0
}

// slice narrows a text view to the characters in [from, to) of the run.
func (r Run) slice(from, to int) Run {
	if r.Kind != RunText {
		return r
	}
	from = minInt(from, r.storage)
	to = minInt(to, r.storage)
	if to < from {
		to = from
	}
	r.Offset, r.Length = from, to-from
	return r
}

// Runes returns the literal characters of a text run. Simple runs return nil.
func (r Run) Runes() []rune {
	if r.Kind != RunText {
		return nil
	}
	cells := r.store.cells(r.Position+1+Position(r.Offset), r.Length)
	out := make([]rune, len(cells))
	for i, c := range cells {
		out[i] = rune(c)
	}
	return out
}

// Text renders the run the way Store.Text does.
func (r Run) Text() string {
	var sb []rune
	sb = appendRun(sb, r)
	return string(sb)
}

func appendRun(dst []rune, r Run) []rune {
	var ch rune
	switch r.Kind {
	case RunText:
		return append(dst, r.Runes()...)
	case RunSpace:
		ch = ' '
	case RunNbsp:
		ch = '\u00a0'
	case RunTab:
		ch = '\t'
	case RunNewLine:
		ch = '\n'
	case RunInlineObject:
		ch = '\ufffc'
	default:
		return dst
	}
	for i := 0; i < r.Length; i++ {
		dst = append(dst, ch)
	}
	return dst
}

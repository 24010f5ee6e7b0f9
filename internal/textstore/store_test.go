package textstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangy/AntiXss-sub003/internal/complexity"
)

func newStore() *Store {
	return New(Config{SegmentSize: 64, MaxSegments: 8})
}

func runs(s *Store, begin, end Position) []Run {
	var out []Run
	it := s.Iterate(begin, end)
	for it.MoveNext() {
		out = append(out, it.Run())
	}
	return out
}

func TestSpacesMergeIntoOneRun(t *testing.T) {
	s := newStore()
	require.NoError(t, s.AddSimpleRun(RunSpace, 3))
	require.NoError(t, s.AddSimpleRun(RunSpace, 2))

	got := runs(s, 0, s.CurrentPosition())
	require.Len(t, got, 1)
	assert.Equal(t, RunSpace, got[0].Kind)
	assert.Equal(t, 5, got[0].Length)
	assert.Equal(t, Position(1), s.CurrentPosition())
	assert.Equal(t, "     ", s.Text(0, s.CurrentPosition()))
}

func TestTextMerges(t *testing.T) {
	s := newStore()
	require.NoError(t, s.AddText("Hello"))
	require.NoError(t, s.AddText(", world"))

	got := runs(s, 0, s.CurrentPosition())
	require.Len(t, got, 1)
	assert.Equal(t, "Hello, world", got[0].Text())
	assert.Equal(t, 12, got[0].Length)
}

func TestDoNotMergeNextRun(t *testing.T) {
	s := newStore()
	require.NoError(t, s.AddText("a"))
	end := s.CurrentPosition()
	s.DoNotMergeNextRun()
	require.NoError(t, s.AddText("b"))

	assert.Equal(t, "a", s.Text(0, end))
	assert.Equal(t, "b", s.Text(end, s.CurrentPosition()))
	assert.Len(t, runs(s, 0, s.CurrentPosition()), 2)
}

func TestMixedKindsDoNotMerge(t *testing.T) {
	s := newStore()
	require.NoError(t, s.AddText("a"))
	require.NoError(t, s.AddSimpleRun(RunSpace, 1))
	require.NoError(t, s.AddText("b"))
	require.NoError(t, s.AddSimpleRun(RunTab, 2))
	require.NoError(t, s.AddSimpleRun(RunNewLine, 1))
	require.NoError(t, s.AddSimpleRun(RunNbsp, 1))

	kinds := []RunKind{}
	for _, r := range runs(s, 0, s.CurrentPosition()) {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []RunKind{RunText, RunSpace, RunText, RunTab, RunNewLine, RunNbsp}, kinds)
	assert.Equal(t, "a b\t\t\n\u00a0", s.Text(0, s.CurrentPosition()))
}

func TestHeaderNeverStraddlesSegment(t *testing.T) {
	s := New(Config{SegmentSize: 16, MaxSegments: 8})
	text := strings.Repeat("x", 40)
	require.NoError(t, s.AddText(text))

	assert.Equal(t, text, s.Text(0, s.CurrentPosition()))
	for _, r := range runs(s, 0, s.CurrentPosition()) {
		first := int(r.Position) / 16
		last := int(r.Next()-1) / 16
		assert.Equal(t, first, last, "run at %d straddles a segment", r.Position)
	}
	assert.Equal(t, 40, s.WordLength(0, 100))
}

func TestSegmentPaddingWhenOnlyHeaderFits(t *testing.T) {
	s := New(Config{SegmentSize: 16, MaxSegments: 4})
	require.NoError(t, s.AddText(strings.Repeat("a", 14)))
	s.DoNotMergeNextRun()
	// one cell left in the segment
	require.NoError(t, s.AddText("bc"))

	got := runs(s, 0, s.CurrentPosition())
	require.Len(t, got, 3)
	assert.Equal(t, RunInvalid, got[1].Kind)
	assert.Equal(t, Position(15), got[1].Position)
	assert.Equal(t, "bc", got[2].Text())
	assert.Equal(t, 16, s.WordLength(0, 100))
}

func TestRunLengthCap(t *testing.T) {
	s := New(Config{SegmentSize: 1 << 14, MaxSegments: 2})
	require.NoError(t, s.AddSimpleRun(RunSpace, MaxRunLength+10))

	got := runs(s, 0, s.CurrentPosition())
	require.Len(t, got, 2)
	assert.Equal(t, MaxRunLength, got[0].Length)
	assert.Equal(t, 10, got[1].Length)
}

func TestTooManySegments(t *testing.T) {
	s := New(Config{SegmentSize: 16, MaxSegments: 2})
	err := s.AddText(strings.Repeat("z", 40))
	require.Error(t, err)
	assert.True(t, complexity.IsTooComplex(err))
}

func TestSimpleRunRejectsText(t *testing.T) {
	s := newStore()
	assert.ErrorIs(t, s.AddSimpleRun(RunText, 1), complexity.ErrStructure)
}

func TestConvertToInvalid(t *testing.T) {
	s := newStore()
	require.NoError(t, s.AddText("keep"))
	s.DoNotMergeNextRun()
	drop := s.CurrentPosition()
	require.NoError(t, s.AddText("drop"))

	require.NoError(t, s.ConvertToInvalid(drop))
	assert.Equal(t, "keep", s.Text(0, s.CurrentPosition()))
	assert.Equal(t, RunInvalid, s.Run(drop).Kind)
	assert.ErrorIs(t, s.ConvertToInvalid(s.CurrentPosition()+5), complexity.ErrStructure)
}

func TestConvertPartToInvalid(t *testing.T) {
	s := newStore()
	require.NoError(t, s.AddText("abcdef"))
	end := s.CurrentPosition()
	require.NoError(t, s.ConvertPartToInvalid(0, 2))
	assert.Equal(t, "abcd", s.Text(0, end))
	assert.Equal(t, end, s.CurrentPosition())

	// the revoked tail does not absorb new text
	require.NoError(t, s.AddText("g"))
	assert.Equal(t, "abcdg", s.Text(0, s.CurrentPosition()))

	sp := s.CurrentPosition()
	require.NoError(t, s.AddSimpleRun(RunSpace, 4))
	require.NoError(t, s.ConvertPartToInvalid(sp, 3))
	assert.Equal(t, 1, s.Run(sp).Length)
	require.NoError(t, s.ConvertPartToInvalid(sp, 5))
	assert.Equal(t, RunInvalid, s.Run(sp).Kind)
}

func TestWordLength(t *testing.T) {
	s := newStore()
	require.NoError(t, s.AddText("hello"))
	s.DoNotMergeNextRun()
	require.NoError(t, s.AddText("world"))
	require.NoError(t, s.AddSimpleRun(RunSpace, 1))
	require.NoError(t, s.AddText("next"))

	assert.Equal(t, 10, s.WordLength(0, 64))
	assert.Equal(t, 7, s.WordLength(0, 7))
}

func TestAtLineStart(t *testing.T) {
	s := newStore()
	assert.True(t, s.AtLineStart())
	require.NoError(t, s.AddText("a"))
	assert.False(t, s.AtLineStart())
	require.NoError(t, s.AddSimpleRun(RunNewLine, 1))
	assert.True(t, s.AtLineStart())
	require.NoError(t, s.AddSimpleRun(RunSpace, 1))
	assert.False(t, s.AtLineStart())
	require.NoError(t, s.AddSimpleRun(RunBlockBoundary, 1))
	assert.True(t, s.AtLineStart())
}

func TestIteratorGetNext(t *testing.T) {
	s := newStore()
	require.NoError(t, s.AddText("a"))
	require.NoError(t, s.AddSimpleRun(RunSpace, 2))

	it := s.Iterate(0, s.CurrentPosition())
	require.True(t, it.MoveNext())
	next, ok := it.GetNext()
	require.True(t, ok)
	assert.Equal(t, RunSpace, next.Kind)
	require.True(t, it.MoveNext())
	_, ok = it.GetNext()
	assert.False(t, ok)
	assert.False(t, it.MoveNext())
}

func TestRangesInsideTextRun(t *testing.T) {
	s := newStore()
	require.NoError(t, s.AddText("Hello"))
	require.NoError(t, s.AddSimpleRun(RunSpace, 1))
	s.DoNotMergeNextRun()
	require.NoError(t, s.AddText("world"))
	// H e l l o at 1..5, the space at 6, the second header at 7
	tests := []struct {
		begin, end Position
		want       string
	}{
		{0, 4, "Hel"},
		{1, 4, "Hel"},
		{4, 6, "lo"},
		{4, 10, "lo wo"},
		{2, 3, "e"},
		{3, 3, ""},
		{9, s.CurrentPosition(), "orld"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Text(tt.begin, tt.end), "[%d, %d)", tt.begin, tt.end)
	}

	got := runs(s, 4, 10)
	require.Len(t, got, 3)
	assert.Equal(t, Position(0), got[0].Position)
	assert.Equal(t, 3, got[0].Offset)
	assert.Equal(t, 2, got[0].Length)
	assert.Equal(t, Position(4), got[0].Begin())
	assert.True(t, got[0].Partial())
	assert.False(t, got[1].Partial())
	assert.Equal(t, "wo", got[2].Text())
	assert.Equal(t, Position(7), got[2].Begin())
}

func TestRunAt(t *testing.T) {
	s := newStore()
	require.NoError(t, s.AddText("Hello"))
	require.NoError(t, s.AddSimpleRun(RunTab, 2))

	assert.Equal(t, "Hello", s.RunAt(0).Text())
	assert.Equal(t, "Hello", s.RunAt(1).Text())
	assert.Equal(t, "lo", s.RunAt(4).Text())
	assert.Equal(t, "\t\t", s.RunAt(6).Text())

	assert.True(t, s.IsRunBoundary(0))
	assert.False(t, s.IsRunBoundary(3))
	assert.True(t, s.IsRunBoundary(6))
	assert.True(t, s.IsRunBoundary(s.CurrentPosition()))
	assert.False(t, s.IsRunBoundary(s.CurrentPosition()+1))
}

func TestIteratorStopsInsideRun(t *testing.T) {
	s := newStore()
	require.NoError(t, s.AddText("abcdef"))

	it := s.Iterate(0, 3)
	require.True(t, it.MoveNext())
	assert.Equal(t, "ab", it.Run().Text())
	assert.Equal(t, Position(3), it.Position())
	assert.False(t, it.MoveNext())
}

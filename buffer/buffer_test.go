package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferEditSingleBatch(t *testing.T) {
	b := New("hello world")
	require.Equal(t, uint64(0), b.Version())

	b.Edit([]Change{{Start: 6, End: 11, Text: "there"}})
	require.Equal(t, uint64(1), b.Version())
	assert.Equal(t, "hello there", string(b.Snapshot().Text()))
}

func TestBufferEditMultipleOpsInOneBatch(t *testing.T) {
	b := New("aaa bbb ccc")
	b.Edit([]Change{
		{Start: 0, End: 3, Text: "xx"},
		{Start: 4, End: 7, Text: "yyyy"},
		{Start: 8, End: 11, Text: "z"},
	})
	assert.Equal(t, "xx yyyy z", string(b.Snapshot().Text()))
}

func TestBufferEditOverlappingPanics(t *testing.T) {
	b := New("abcdef")
	assert.Panics(t, func() {
		b.Edit([]Change{
			{Start: 0, End: 3, Text: "x"},
			{Start: 2, End: 4, Text: "y"},
		})
	})
}

func TestAnchorsTrackInsertions(t *testing.T) {
	b := New("hello world")
	before := b.Snapshot()
	left := before.AnchorBefore(6)
	right := before.AnchorAfter(6)

	b.Edit([]Change{{Start: 6, End: 6, Text: "big "}})
	after := b.Snapshot()

	assert.Equal(t, uint32(6), after.Summarize(left).Byte)
	assert.Equal(t, uint32(10), after.Summarize(right).Byte)
	assert.Equal(t, "big world", after.TextForRange(after.Summarize(right).Byte-4, after.Len()))
}

func TestAnchorsSurviveDeletionAroundThem(t *testing.T) {
	b := New("one two three")
	before := b.Snapshot()
	anchor := before.AnchorBefore(8) // start of "three"

	b.Edit([]Change{{Start: 4, End: 7, Text: ""}}) // delete "two"
	after := b.Snapshot()

	assert.Equal(t, uint32(5), after.Summarize(anchor).Byte)
	assert.Equal(t, "three", after.TextForRange(5, after.Len()))
}

func TestCompareOrdersAnchors(t *testing.T) {
	b := New("abcdef")
	s := b.Snapshot()
	a1 := s.AnchorBefore(1)
	a2 := s.AnchorBefore(4)

	assert.Equal(t, -1, s.Compare(a1, a2))
	assert.Equal(t, 1, s.Compare(a2, a1))
	assert.Equal(t, 0, s.Compare(a1, a1))
	assert.Equal(t, -1, s.Compare(MinAnchor, a1))
	assert.Equal(t, 1, s.Compare(MaxAnchor, a2))
}

func TestEditsSinceEmptyWhenUnchanged(t *testing.T) {
	b := New("abc")
	s := b.Snapshot()
	assert.Empty(t, s.EditsSince(s.Version()))
}

func TestEditsSinceSingleBatchPreservesEachOp(t *testing.T) {
	b := New("aaa bbb ccc")
	before := b.Snapshot()
	b.Edit([]Change{
		{Start: 0, End: 3, Text: "xx"},
		{Start: 8, End: 11, Text: "z"},
	})
	after := b.Snapshot()

	edits := after.EditsSince(before.Version())
	require.Len(t, edits, 2)
	assert.Equal(t, uint32(0), edits[0].Old.Start.Byte)
	assert.Equal(t, uint32(3), edits[0].Old.End.Byte)
	assert.Equal(t, uint32(0), edits[0].New.Start.Byte)
	assert.Equal(t, uint32(2), edits[0].New.End.Byte)
	assert.Equal(t, uint32(8), edits[1].Old.Start.Byte)
	assert.Equal(t, uint32(11), edits[1].Old.End.Byte)
}

func TestEditsSinceAcrossManyBatchesFallsBackToOneHunk(t *testing.T) {
	b := New("the quick brown fox")
	before := b.Snapshot()
	b.Edit([]Change{{Start: 4, End: 9, Text: "slow"}})
	b.Edit([]Change{{Start: 0, End: 3, Text: "a"}})
	b.Edit([]Change{{Start: len("a slow brown fox") - 3, End: len("a slow brown fox"), Text: "cat"}})
	after := b.Snapshot()

	edits := after.EditsSince(before.Version())
	require.Len(t, edits, 1)
	assert.Equal(t, "a slow brown cat", string(after.Text()))
}

func TestPointTrackingAcrossNewlines(t *testing.T) {
	b := New("line one\nline two\nline three")
	s := b.Snapshot()
	off := s.Summarize(s.AnchorBefore(uint32(len("line one\nline "))))
	assert.Equal(t, uint32(1), off.Point.Row)
	assert.Equal(t, uint32(5), off.Point.Column)
}

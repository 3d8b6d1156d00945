package buffer

import (
	"fmt"
	"sort"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Change is a single replacement a caller wants to make to a Buffer: the
// byte range it replaces, and the text it replaces that range with.
type Change struct {
	Start uint32
	End   uint32
	Text  string
}

// Buffer is a mutable text buffer: the concrete implementation of the
// BufferSnapshot collaborator. It keeps the full text and edit-batch
// history so that any earlier Snapshot's anchors can still be resolved and
// edits_since can be computed against any earlier version. This is the
// simplest correct implementation of the contract, not a production rope —
// the engine this package supports treats buffers as an external
// collaborator and is agnostic to how they're stored internally.
type Buffer struct {
	texts   [][]byte // texts[v] is the full text at version v
	batches []batch  // batches[v] are the ops that turned texts[v] into texts[v+1]
}

// New creates a Buffer containing the given initial text, at version 0.
func New(initial string) *Buffer {
	return &Buffer{texts: [][]byte{[]byte(initial)}}
}

// Version returns the buffer's current version.
func (b *Buffer) Version() uint64 { return uint64(len(b.texts) - 1) }

// Snapshot returns an immutable, versioned view of the buffer's current
// state.
func (b *Buffer) Snapshot() *Snapshot {
	v := b.Version()
	return &Snapshot{buffer: b, version: v, text: b.texts[v]}
}

// Edit applies a batch of non-overlapping changes to the buffer in one
// step, bumping its version by one. Changes may be given in any order;
// they are sorted by start offset before being applied. Overlapping
// changes are a caller error (not user-text data) and panic, mirroring the
// grammar/parser collaborators' fail-fast contract in spec.md §7.
func (b *Buffer) Edit(changes []Change) {
	if len(changes) == 0 {
		return
	}

	sorted := append([]Change(nil), changes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	oldText := b.texts[b.Version()]
	ops := make([]op, len(sorted))
	var newText []byte
	var cursor uint32
	for i, c := range sorted {
		if c.Start > c.End || int(c.End) > len(oldText) {
			panic(fmt.Sprintf("buffer: invalid change range [%d, %d) in %d-byte text", c.Start, c.End, len(oldText)))
		}
		if c.Start < cursor {
			panic(fmt.Sprintf("buffer: overlapping or unsorted changes at offset %d", c.Start))
		}
		newText = append(newText, oldText[cursor:c.Start]...)
		newText = append(newText, []byte(c.Text)...)
		ops[i] = op{oldStart: c.Start, oldEnd: c.End, newText: c.Text}
		cursor = c.End
	}
	newText = append(newText, oldText[cursor:]...)

	b.batches = append(b.batches, batch{ops: ops})
	b.texts = append(b.texts, newText)
}

type batch struct {
	ops []op
}

func pointAt(text []byte, offset uint32) tree_sitter.Point {
	if offset > uint32(len(text)) {
		offset = uint32(len(text))
	}
	var row, col uint32
	for i := uint32(0); i < offset; i++ {
		if text[i] == '\n' {
			row++
			col = 0
		} else {
			col++
		}
	}
	return tree_sitter.Point{Row: row, Column: col}
}

func offsetAt(text []byte, byteOffset uint32) Offset {
	return Offset{Byte: byteOffset, Point: pointAt(text, byteOffset)}
}

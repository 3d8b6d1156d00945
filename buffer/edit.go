package buffer

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// Offset is a position expressed both in bytes and in row/column, mirroring
// the (byte, point) pair the engine's interpolation algorithm needs for
// translating edits into tree_sitter.InputEdit values.
type Offset struct {
	Byte  uint32
	Point tree_sitter.Point
}

// Range is a half-open [Start, End) span of Offsets.
type Range struct {
	Start Offset
	End   Offset
}

// Edit is one buffer change: the span it replaced (in the older snapshot's
// coordinates) and the span it produced (in the newer snapshot's
// coordinates).
type Edit struct {
	Old Range
	New Range
}

// op is a single edit as recorded in one Buffer.Edit batch: the replaced
// byte span in the batch's source-version coordinates, and the text that
// replaced it. Ops within a batch are kept sorted ascending and
// non-overlapping.
type op struct {
	oldStart uint32
	oldEnd   uint32
	newText  string
}

func (o op) oldLen() uint32 { return o.oldEnd - o.oldStart }
func (o op) newLen() uint32 { return uint32(len(o.newText)) }

// translateOffset maps a byte offset in the source version of ops forward
// into the destination version, resolving an offset that lands inside a
// replaced span according to bias: Left clamps to the start of the
// replacement, Right clamps to the end.
func translateOffset(offset uint32, bias Bias, ops []op) uint32 {
	var delta int64
	for _, o := range ops {
		if offset < o.oldStart {
			break
		}
		if offset <= o.oldEnd {
			newStart := uint32(int64(o.oldStart) + delta)
			if offset == o.oldStart && bias == Left {
				return newStart
			}
			if offset == o.oldEnd {
				newEnd := newStart + o.newLen()
				if bias == Right {
					return newEnd
				}
				if o.oldLen() == 0 {
					return newStart
				}
				return newStart
			}
			// Offset is strictly inside a replaced span: clamp per bias.
			if bias == Right {
				return newStart + o.newLen()
			}
			return newStart
		}
		delta += int64(o.newLen()) - int64(o.oldLen())
	}
	return uint32(int64(offset) + delta)
}

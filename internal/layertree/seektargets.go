package layertree

import "go.gopad.dev/go-syntax-map/buffer"

// SeekTarget is something a Cursor can seek to: a value that can be
// compared against the running prefix Summary at a candidate cursor
// position. Negative means the target lies before that position,
// positive means after, zero means the cursor has arrived.
type SeekTarget interface {
	Compare(loc Summary, cmp Comparator) int
}

func compareDepth(want, have int) int {
	switch {
	case want < have:
		return -1
	case want > have:
		return 1
	default:
		return 0
	}
}

// DepthAndRange seeks to the first position at the given depth whose
// last-seen-layer range starts at or after start, ending at or before end
// — "the layers at this depth that fall within this range".
type DepthAndRange struct {
	Depth      int
	Start, End buffer.Anchor
}

func (t DepthAndRange) Compare(loc Summary, cmp Comparator) int {
	if c := compareDepth(t.Depth, loc.MaxDepth); c != 0 {
		return c
	}
	if c := cmp.Compare(t.Start, loc.LastStart); c != 0 {
		return c
	}
	return cmp.Compare(loc.LastEnd, t.End)
}

// DepthAndMaxPosition seeks to the first position at the given depth
// whose union range extends at least to position — "skip layers at this
// depth that end before position".
type DepthAndMaxPosition struct {
	Depth    int
	Position buffer.Anchor
}

func (t DepthAndMaxPosition) Compare(loc Summary, cmp Comparator) int {
	if c := compareDepth(t.Depth, loc.MaxDepth); c != 0 {
		return c
	}
	return cmp.Compare(t.Position, loc.End)
}

// DepthAndRangeOrMaxPosition combines the two: it seeks to whichever
// comes first of "the layers in this depth/range" or "the layers whose
// union range has not yet reached maxPosition". The maxPosition check is
// evaluated first and short-circuits to Greater without even looking at
// the range, matching the early return in the seek target this mirrors —
// the position check alone can force the cursor further even when the
// range component would already be satisfied.
type DepthAndRangeOrMaxPosition struct {
	Depth       int
	Start, End  buffer.Anchor
	MaxPosition buffer.Anchor
}

func (t DepthAndRangeOrMaxPosition) Compare(loc Summary, cmp Comparator) int {
	if c := compareDepth(t.Depth, loc.MaxDepth); c != 0 {
		return c
	}
	if cmp.Compare(t.MaxPosition, loc.End) > 0 {
		return 1
	}
	if c := cmp.Compare(t.Start, loc.LastStart); c != 0 {
		return c
	}
	return cmp.Compare(loc.LastEnd, t.End)
}

// Package layertree implements the positional summary tree the syntax
// engine uses to store its layers: items ordered first by depth, then by
// position, each annotated with a summary that a cursor accumulates to
// seek to "the first layer at depth D touching position P".
//
// The real data structure this models (Zed's sum_tree::SumTree) is a
// balanced, persistent B-tree with cached summaries at every internal
// node, giving seeks logarithmic cost and clones O(1). No example in this
// module's reference corpus implements an order-statistic/summary B-tree,
// so LayerTree is a deliberate simplification: a flat, ordered slice that
// preserves the exact cursor semantics (Item/Next/Slice/Suffix/Filter and
// the three seek targets below) at linear cost instead of logarithmic.
// Nothing in this package's contract depends on that cost difference.
package layertree

import "go.gopad.dev/go-syntax-map/buffer"

// Comparator orders two Anchors. *buffer.Snapshot satisfies this directly.
type Comparator interface {
	Compare(a, b buffer.Anchor) int
}

// Summary is the value a Cursor accumulates as it walks a LayerTree: the
// deepest layer depth seen so far, the union of every seen layer's range,
// and the range of the single most-recently-seen layer at that deepest
// depth.
//
// Composing summaries is asymmetric by design: a later item at a greater
// depth than everything before it replaces the running summary outright
// rather than merging with it, mirroring the fact that deeper injection
// layers are the ones seek targets actually care about positioning
// against.
type Summary struct {
	MaxDepth  int
	Start     buffer.Anchor // union: minimum start across the prefix
	End       buffer.Anchor // union: maximum end across the prefix
	LastStart buffer.Anchor // range of the single last item at MaxDepth
	LastEnd   buffer.Anchor
}

func defaultSummary() Summary {
	return Summary{
		MaxDepth:  0,
		Start:     buffer.MaxAnchor,
		End:       buffer.MinAnchor,
		LastStart: buffer.MinAnchor,
		LastEnd:   buffer.MaxAnchor,
	}
}

func itemSummary(it Item) Summary {
	return Summary{
		MaxDepth:  it.Depth,
		Start:     it.Start,
		End:       it.End,
		LastStart: it.Start,
		LastEnd:   it.End,
	}
}

// addSummary folds other onto s, in place, the same way the engine folds
// one more layer's summary onto the running prefix summary.
func addSummary(s *Summary, other Summary, cmp Comparator) {
	if other.MaxDepth > s.MaxDepth {
		*s = other
		return
	}
	if cmp.Compare(other.Start, s.Start) < 0 {
		s.Start = other.Start
	}
	if cmp.Compare(other.End, s.End) > 0 {
		s.End = other.End
	}
	s.LastStart = other.LastStart
	s.LastEnd = other.LastEnd
}

package syntaxmap

import (
	"iter"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"go.gopad.dev/go-syntax-map/buffer"
	"go.gopad.dev/go-syntax-map/grammar"
	"go.gopad.dev/go-syntax-map/internal/layertree"
)

// LayerInfo is what the query surface hands back for one layer: its
// grammar, its parsed tree, and the byte offset and point its tree's
// coordinate space starts at (0, {0,0}) for a root layer; wherever its
// content node begins, for an injected one.
type LayerInfo struct {
	Grammar    *grammar.Grammar
	Tree       *tree_sitter.Tree
	Depth      int
	StartByte  uint32
	StartPoint tree_sitter.Point
}

// Layers iterates every layer in s whose grammar is set, depth-ascending
// then position-ascending (the tree's stored order), each paired with
// text so its start position can be resolved.
func (s *Snapshot) Layers(text *buffer.Snapshot) iter.Seq[LayerInfo] {
	return func(yield func(LayerInfo) bool) {
		for _, item := range s.layers.Items() {
			layer := layerFromItem(item)
			if layer.Grammar == nil {
				continue
			}
			if !yield(layerInfoFor(layer, text)) {
				return
			}
		}
	}
}

// LayersForRange iterates every layer in s whose range overlaps
// [start, end), depth-agnostically — a deep injection is visited even
// when no ancestor layer intersects the range, because callers querying
// a range want every layer touching it regardless of nesting.
func (s *Snapshot) LayersForRange(start, end buffer.Anchor, text *buffer.Snapshot) iter.Seq[LayerInfo] {
	return func(yield func(LayerInfo) bool) {
		items := s.layers.FilterItems(func(summary layertree.Summary) bool {
			endBeforeStart := text.Compare(summary.End, start) < 0
			startAfterEnd := text.Compare(summary.Start, end) > 0
			return !endBeforeStart && !startAfterEnd
		})
		for _, item := range items {
			layer := layerFromItem(item)
			if layer.Grammar == nil {
				continue
			}
			if !yield(layerInfoFor(layer, text)) {
				return
			}
		}
	}
}

func layerInfoFor(layer *SyntaxLayer, text *buffer.Snapshot) LayerInfo {
	off := text.Summarize(layer.Range.Start)
	return LayerInfo{
		Grammar:    layer.Grammar,
		Tree:       layer.Tree,
		Depth:      layer.Depth,
		StartByte:  off.Byte,
		StartPoint: off.Point,
	}
}

// Package syntaxmap maintains an incrementally-updated index of parsed
// syntax trees over a text buffer, including the tree-sitter language
// injections discovered inside it (a markdown code fence, an embedded
// SQL string, and so on). It is built around two operations: Interpolate,
// which cheaply keeps existing trees roughly in sync with buffer edits
// by translating byte offsets, and Reparse, which walks the regions
// Interpolate couldn't account for and actually re-runs tree-sitter over
// them, discovering or retiring injected layers as it goes.
package syntaxmap

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"go.gopad.dev/go-syntax-map/buffer"
	"go.gopad.dev/go-syntax-map/grammar"
	"go.gopad.dev/go-syntax-map/internal/layertree"
)

// Comparator orders two Anchors. *buffer.Snapshot satisfies this
// directly; it's declared here (rather than imported from one of the
// internal packages) so the exported API doesn't leak an internal type.
type Comparator interface {
	Compare(a, b buffer.Anchor) int
}

// AnchorRange is a half-open [Start, End) span expressed as buffer
// Anchors, stable across edits to the buffer.
type AnchorRange struct {
	Start, End buffer.Anchor
}

// SyntaxLayer is one parsed region of the buffer: a tree-sitter syntax
// tree for a single grammar, the depth it was discovered at (0 for the
// buffer's root layer, 1 for each language it injects, and so on), and
// the range of the buffer it covers.
type SyntaxLayer struct {
	Depth   int
	Range   AnchorRange
	Tree    *tree_sitter.Tree
	Grammar *grammar.Grammar
}

func (l *SyntaxLayer) toItem() layertree.Item {
	return layertree.Item{Depth: l.Depth, Start: l.Range.Start, End: l.Range.End, Value: l}
}

func layerFromItem(it layertree.Item) *SyntaxLayer {
	return it.Value.(*SyntaxLayer)
}

func layersFromItems(items []layertree.Item) []*SyntaxLayer {
	out := make([]*SyntaxLayer, len(items))
	for i, it := range items {
		out[i] = layerFromItem(it)
	}
	return out
}

func itemsFromLayers(layers []*SyntaxLayer) []layertree.Item {
	out := make([]layertree.Item, len(layers))
	for i, l := range layers {
		out[i] = l.toItem()
	}
	return out
}

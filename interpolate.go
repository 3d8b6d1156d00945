package syntaxmap

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"go.gopad.dev/go-syntax-map/buffer"
	"go.gopad.dev/go-syntax-map/internal/layertree"
)

// interpolate produces the Snapshot that results from translating s's
// layers across every edit recorded since oldVersion, without reparsing
// anything. It edits a clone of each affected layer's tree_sitter.Tree,
// leaving s's own trees untouched (tree_sitter.Tree.Edit only records that
// the tree is now stale over some byte range; it doesn't reparse), so that
// Reparse can later ask
// tree-sitter for the minimal set of changed ranges instead of starting
// from scratch.
//
// Layers whose range falls entirely outside every edit are carried over
// untouched. Layers at a shallower depth than the one being walked, and
// not yet passed, are carried over as an entire prefix in one step (DepthAndRange over
// the whole buffer), since an edit can only ever need to walk the layers
// at its own depth to find what it touches.
func (s *Snapshot) interpolate(oldVersion uint64, text *buffer.Snapshot) *Snapshot {
	edits := text.EditsSince(oldVersion)
	if len(edits) == 0 {
		return s
	}

	newLayers := layertree.New()
	maxDepth := s.layers.Summary(text).MaxDepth
	cursor := s.layers.Cursor(text)

	for depth := 0; depth <= maxDepth; depth++ {
		remaining := edits

		if cursor.Start().MaxDepth < depth {
			newLayers.PushAll(cursor.Slice(layertree.DepthAndRange{
				Depth: depth,
				Start: buffer.MinAnchor,
				End:   buffer.MaxAnchor,
			}))
		}

		for {
			item, ok := cursor.Item()
			if !ok {
				break
			}
			layer := layerFromItem(item)

			offs := text.SummariesForAnchors([]buffer.Anchor{layer.Range.Start, layer.Range.End})
			startOff, endOff := offs[0], offs[1]

			if len(remaining) == 0 {
				break
			}
			firstEdit := remaining[0]

			// Preserve any layers at this depth that precede the first edit.
			if firstEdit.New.Start.Byte > endOff.Byte {
				newLayers.PushAll(cursor.Slice(layertree.DepthAndMaxPosition{
					Depth:    depth,
					Position: text.AnchorBefore(firstEdit.New.Start.Byte),
				}))
				continue
			}

			// Preserve any layers at this depth that follow the last edit.
			lastEdit := remaining[len(remaining)-1]
			if lastEdit.New.End.Byte < startOff.Byte {
				break
			}

			translated := *layer
			translated.Tree = layer.Tree.Clone()

			for i := len(remaining) - 1; i >= 0; i-- {
				edit := remaining[i]

				// Ignore edits that start after the end of this layer.
				if edit.New.Start.Byte > endOff.Byte {
					continue
				}

				// Ignore edits that end before the start of this layer, and
				// don't consider them for any subsequent layers at this depth.
				if edit.New.End.Byte <= startOff.Byte {
					remaining = remaining[i+1:]
					break
				}

				var tsEdit tree_sitter.InputEdit
				if edit.New.Start.Byte >= startOff.Byte {
					tsEdit = tree_sitter.InputEdit{
						StartByte:      uint(edit.New.Start.Byte - startOff.Byte),
						OldEndByte:     uint(edit.New.Start.Byte-startOff.Byte) + uint(edit.Old.End.Byte-edit.Old.Start.Byte),
						NewEndByte:     uint(edit.New.End.Byte - startOff.Byte),
						StartPosition:  subPoint(edit.New.Start.Point, startOff.Point),
						OldEndPosition: addPoint(subPoint(edit.New.Start.Point, startOff.Point), subPoint(edit.Old.End.Point, edit.Old.Start.Point)),
						NewEndPosition: subPoint(edit.New.End.Point, startOff.Point),
					}
				} else {
					tsEdit = tree_sitter.InputEdit{
						StartByte:      0,
						OldEndByte:     uint(edit.New.End.Byte - startOff.Byte),
						NewEndByte:     0,
						StartPosition:  tree_sitter.Point{},
						OldEndPosition: subPoint(edit.New.End.Point, startOff.Point),
						NewEndPosition: tree_sitter.Point{},
					}
				}

				translated.Tree.Edit(&tsEdit)
				if edit.New.Start.Byte < startOff.Byte {
					break
				}
			}

			newLayers.Push(translated.toItem())
			cursor.Next()
		}
	}

	newLayers.PushAll(cursor.Suffix())
	return &Snapshot{layers: newLayers}
}

func subPoint(a, b tree_sitter.Point) tree_sitter.Point {
	if a.Row != b.Row {
		return tree_sitter.Point{Row: a.Row - b.Row, Column: a.Column}
	}
	return tree_sitter.Point{Row: 0, Column: a.Column - b.Column}
}

func addPoint(a, b tree_sitter.Point) tree_sitter.Point {
	if b.Row != 0 {
		return tree_sitter.Point{Row: a.Row + b.Row, Column: b.Column}
	}
	return tree_sitter.Point{Row: a.Row, Column: a.Column + b.Column}
}

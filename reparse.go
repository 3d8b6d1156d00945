package syntaxmap

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"go.gopad.dev/go-syntax-map/buffer"
	"go.gopad.dev/go-syntax-map/grammar"
	"go.gopad.dev/go-syntax-map/internal/layertree"
	"go.gopad.dev/go-syntax-map/internal/workqueue"
)

// LanguageRegistry resolves a language name discovered inside a buffer
// (the string after a markdown code fence, say) back to a Grammar.
// *grammar.Registry satisfies this directly.
type LanguageRegistry interface {
	Grammar(name string) (*grammar.Grammar, bool)
}

type reparseStepPayload struct {
	grammar *grammar.Grammar
	ranges  []tree_sitter.Range
	// parentName is the name of the grammar whose layer encloses this
	// step's layer, used to resolve a child injection query's `#set!
	// injection.parent`. Empty for the buffer's depth-0 layer.
	parentName string
}

// reparse walks every region the interpolate step couldn't account for
// and re-runs tree-sitter over it, discovering or retiring injected
// layers as it finds or loses the nodes that would have triggered them.
// rootGrammar is the grammar to (re)parse the buffer's depth-0 layer
// with; it can change between calls, e.g. when a buffer's language is
// reassigned.
func (m *SyntaxMap) reparse(rootGrammar *grammar.Grammar, text *buffer.Snapshot) *Snapshot {
	cursor := m.snapshot.layers.Cursor(text)
	newLayers := layertree.New()

	var changedRegions []ChangedRegion
	queue := workqueue.New(text)
	queue.Push(workqueue.Step{
		Depth: 0,
		Start: buffer.MinAnchor,
		End:   buffer.MaxAnchor,
		Value: &reparseStepPayload{grammar: rootGrammar},
	})

	for {
		step, hasStep := queue.Pop()

		var depth int
		var stepRange AnchorRange
		if hasStep {
			depth = step.Depth
			stepRange = AnchorRange{Start: step.Start, End: step.End}
		} else {
			depth = cursor.Start().MaxDepth
			stepRange = AnchorRange{Start: buffer.MaxAnchor, End: buffer.MaxAnchor}
		}

		target := layertree.DepthAndRange{Depth: depth, Start: stepRange.Start, End: stepRange.End}
		if target.Compare(cursor.Start(), text) > 0 {
			changeStartAnchor := buffer.MaxAnchor
			if len(changedRegions) > 0 {
				changeStartAnchor = changedRegions[0].Range.Start
			}
			seekTarget := layertree.DepthAndRangeOrMaxPosition{
				Depth:       depth,
				Start:       stepRange.Start,
				End:         stepRange.End,
				MaxPosition: changeStartAnchor,
			}
			newLayers.PushAll(cursor.Slice(seekTarget))

			for {
				item, ok := cursor.Item()
				if !ok {
					break
				}
				if target.Compare(cursor.End(), text) <= 0 {
					break
				}
				layer := layerFromItem(item)
				if layerIsChanged(layer, changedRegions, text) {
					region := ChangedRegion{Depth: depth + 1, Range: layer.Range}
					changedRegions = insertChangedRegion(changedRegions, region, text)
				} else {
					newLayers.Push(item)
				}
				cursor.Next()
			}

			changedRegions = retainChangedRegions(changedRegions, depth, stepRange.Start, text)
		}

		if !hasStep {
			break
		}

		payload := step.Value.(*reparseStepPayload)
		lang := payload.grammar
		if lang == nil {
			continue
		}

		var startPoint tree_sitter.Point
		var startByte, endByte uint32
		if len(payload.ranges) > 0 {
			startPoint = payload.ranges[0].StartPoint
			startByte = uint32(payload.ranges[0].StartByte)
			endByte = uint32(payload.ranges[len(payload.ranges)-1].EndByte)
		} else {
			endByte = text.Len()
		}

		var oldTree *tree_sitter.Tree
		if item, ok := cursor.Item(); ok {
			candidate := layerFromItem(item)
			candidateStart := text.Summarize(candidate.Range.Start).Byte
			candidateEnd := text.Summarize(candidate.Range.End).Byte
			if candidateStart == startByte && candidateEnd == endByte && candidate.Grammar.Name == lang.Name {
				oldTree = candidate.Tree
				cursor.Next()
			}
		}

		tree := parseText(m.parser, lang, text.Text(), oldTree, payload.ranges, startByte)

		var changedRanges []tree_sitter.Range
		if oldTree != nil {
			changedRanges = oldTree.ChangedRanges(tree)
		} else {
			changedRanges = []tree_sitter.Range{{StartByte: 0, EndByte: uint(endByte - startByte)}}
		}

		newLayers.Push((&SyntaxLayer{Depth: depth, Range: stepRange, Tree: tree, Grammar: lang}).toItem())

		if lang.Injection != nil && m.registry != nil && len(changedRanges) > 0 {
			childDepth := depth + 1
			for _, r := range changedRanges {
				region := ChangedRegion{
					Depth: childDepth,
					Range: AnchorRange{
						Start: text.AnchorBefore(startByte + uint32(r.StartByte)),
						End:   text.AnchorAfter(startByte + uint32(r.EndByte)),
					},
				}
				changedRegions = insertChangedRegion(changedRegions, region, text)
			}

			discoverInjections(lang, payload.parentName, text, tree, m.registry, childDepth, startByte, startPoint, changedRanges, queue)
		}
	}

	return &Snapshot{layers: newLayers}
}

// parseText compiles and runs a tree-sitter parse restricted to ranges
// (which are in whole-buffer coordinates), rebasing them to start at
// byte/point zero the way tree-sitter's included ranges require. An
// empty ranges means "parse the whole buffer".
func parseText(parser *tree_sitter.Parser, lang *grammar.Grammar, source []byte, oldTree *tree_sitter.Tree, ranges []tree_sitter.Range, startByte uint32) *tree_sitter.Tree {
	if len(ranges) > 0 {
		startPoint := ranges[0].StartPoint
		rebased := make([]tree_sitter.Range, len(ranges))
		for i, r := range ranges {
			rebased[i] = tree_sitter.Range{
				StartByte:  r.StartByte - uint(startByte),
				EndByte:    r.EndByte - uint(startByte),
				StartPoint: subPoint(r.StartPoint, startPoint),
				EndPoint:   subPoint(r.EndPoint, startPoint),
			}
		}
		if err := parser.SetIncludedRanges(rebased); err != nil {
			panic(fmt.Sprintf("syntaxmap: overlapping injection ranges for grammar %s: %v", lang.Name, err))
		}
	} else if err := parser.SetIncludedRanges(nil); err != nil {
		panic(fmt.Sprintf("syntaxmap: resetting included ranges for grammar %s: %v", lang.Name, err))
	}

	if err := parser.SetLanguage(lang.Language); err != nil {
		panic(fmt.Sprintf("syntaxmap: incompatible grammar %s: %v", lang.Name, err))
	}

	if int(startByte) > len(source) {
		startByte = uint32(len(source))
	}
	return parser.Parse(source[startByte:], oldTree)
}

// discoverInjections runs grm's injection query over tree, restricted to
// queryRanges (byte ranges relative to tree's own start, i.e. the
// changed-ranges tree-sitter reported), and enqueues a reparse step for
// every injection it can resolve to a loaded grammar. startByte/startPoint
// translate tree's local coordinates back into whole-buffer coordinates.
// parentName is the name of the grammar enclosing grm's own layer, used to
// resolve `#set! injection.parent`.
func discoverInjections(
	grm *grammar.Grammar,
	parentName string,
	text *buffer.Snapshot,
	tree *tree_sitter.Tree,
	registry LanguageRegistry,
	depth int,
	startByte uint32,
	startPoint tree_sitter.Point,
	queryRanges []tree_sitter.Range,
	queue *workqueue.Queue,
) {
	config := grm.Injection
	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	source := text.Text()

	type matchKey struct {
		pattern      uint
		contentStart uint32
		contentEnd   uint32
	}
	var prev *matchKey

	for _, qr := range queryRanges {
		cursor.SetByteRange(qr.StartByte, qr.EndByte)
		matches := cursor.Matches(config.Query, tree.RootNode(), source)
		for {
			match := matches.Next()
			if match == nil {
				break
			}

			languageName, contentNodes, includeChildren, ok := config.ContentNodesAndLanguage(*match, source, grm.Name, parentName)
			if !ok {
				continue
			}

			contentRanges := make([]tree_sitter.Range, len(contentNodes))
			for i, node := range contentNodes {
				contentRanges[i] = tree_sitter.Range{
					StartByte:  uint(startByte) + node.StartByte(),
					EndByte:    uint(startByte) + node.EndByte(),
					StartPoint: addPoint(startPoint, node.StartPosition()),
					EndPoint:   addPoint(startPoint, node.EndPosition()),
				}
			}

			contentStart := uint32(contentRanges[0].StartByte)
			contentEnd := uint32(contentRanges[len(contentRanges)-1].EndByte)

			// Avoid duplicate matches if two changed ranges intersect the
			// same injection.
			if prev != nil && prev.pattern == match.PatternIndex && prev.contentStart == contentStart && prev.contentEnd == contentEnd {
				continue
			}
			prev = &matchKey{pattern: match.PatternIndex, contentStart: contentStart, contentEnd: contentEnd}

			childGrammar, ok := registry.Grammar(languageName)
			if !ok {
				continue
			}

			nodes := make([]tree_sitter.Node, len(contentNodes))
			copy(nodes, contentNodes)
			ranges := intersectRanges(queryRanges, nodes, includeChildren)
			if len(ranges) == 0 {
				continue
			}
			for i := range ranges {
				ranges[i].StartByte += uint(startByte)
				ranges[i].EndByte += uint(startByte)
				ranges[i].StartPoint = addPoint(startPoint, ranges[i].StartPoint)
				ranges[i].EndPoint = addPoint(startPoint, ranges[i].EndPoint)
			}

			queue.Push(workqueue.Step{
				Depth: depth,
				Start: text.AnchorBefore(contentStart),
				End:   text.AnchorAfter(contentEnd),
				Value: &reparseStepPayload{grammar: childGrammar, ranges: ranges, parentName: grm.Name},
			})
		}
	}
}

// intersectRanges computes the ranges that should be included when
// parsing an injection: the content nodes' own ranges (or, when
// includesChildren is false, their ranges minus their children's),
// intersected with parentRanges — the ranges the enclosing layer was
// itself restricted to. Adapted from the teacher's highlighting-layer
// range computation, narrowed to the injection case.
func intersectRanges(parentRanges []tree_sitter.Range, nodes []tree_sitter.Node, includesChildren bool) []tree_sitter.Range {
	if len(parentRanges) == 0 {
		panic("syntaxmap: a layer must have at least one range")
	}

	cursor := nodes[0].Walk()
	defer cursor.Close()

	var result []tree_sitter.Range
	parentRange := parentRanges[0]
	parentRanges = parentRanges[1:]

	for _, node := range nodes {
		precedingRange := tree_sitter.Range{
			EndByte:  node.StartByte(),
			EndPoint: node.StartPosition(),
		}
		followingRange := tree_sitter.Range{
			StartByte:  node.EndByte(),
			StartPoint: node.EndPosition(),
			EndByte:    ^uint(0),
			EndPoint:   tree_sitter.Point{Row: ^uint(0), Column: ^uint(0)},
		}

		var excludedRanges []tree_sitter.Range
		if !includesChildren {
			for _, child := range node.Children(cursor) {
				excludedRanges = append(excludedRanges, child.Range())
			}
		}
		excludedRanges = append(excludedRanges, followingRange)

		for _, excluded := range excludedRanges {
			r := tree_sitter.Range{
				StartByte:  precedingRange.EndByte,
				StartPoint: precedingRange.EndPoint,
				EndByte:    excluded.StartByte,
				EndPoint:   excluded.StartPoint,
			}
			precedingRange = excluded

			if r.EndByte < parentRange.StartByte {
				continue
			}

			for parentRange.StartByte <= r.EndByte {
				if parentRange.EndByte > r.StartByte {
					if r.StartByte < parentRange.StartByte {
						r.StartByte = parentRange.StartByte
						r.StartPoint = parentRange.StartPoint
					}

					if parentRange.EndByte < r.EndByte {
						if r.StartByte < parentRange.EndByte {
							result = append(result, tree_sitter.Range{
								StartByte:  r.StartByte,
								StartPoint: r.StartPoint,
								EndByte:    parentRange.EndByte,
								EndPoint:   precedingRange.EndPoint,
							})
						}
						r.StartByte = parentRange.EndByte
						r.StartPoint = parentRange.EndPoint
					} else {
						if r.StartByte < r.EndByte {
							result = append(result, r)
						}
						break
					}
				}

				if len(parentRanges) > 0 {
					parentRange = parentRanges[0]
					parentRanges = parentRanges[1:]
				} else {
					return result
				}
			}
		}
	}

	return result
}

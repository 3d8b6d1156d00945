package render

import (
	"context"
	"slices"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"go.gopad.dev/go-syntax-map"
)

type queryCapture struct {
	Match *tree_sitter.QueryMatch
	Index uint
	Range tree_sitter.Range // already translated into whole-buffer coordinates
}

type localDef struct {
	Name      string
	Range     tree_sitter.Range
	Highlight *Highlight
}

type localScope struct {
	Inherits  bool
	Range     tree_sitter.Range
	LocalDefs []localDef
}

// renderLayer is one already-parsed syntaxmap layer paired with the
// per-layer state a highlight pass threads through it: the remaining
// captures to process, the stack of local scopes currently open, and the
// stack of byte offsets where an already-started highlight ends.
type renderLayer struct {
	Info       syntaxmap.LayerInfo
	Config     *Config
	Cursor     *tree_sitter.QueryCursor
	HighlightEndStack []uint
	ScopeStack []localScope
	Captures   []queryCapture
	Depth      int
}

type sortKeyResult struct {
	position uint
	start    bool
	depth    int
}

func (l *renderLayer) sortKey() *sortKeyResult {
	depth := -l.Depth

	var nextStart *uint
	if len(l.Captures) > 0 {
		start := l.Captures[0].Range.StartByte
		nextStart = &start
	}

	var nextEnd *uint
	if len(l.HighlightEndStack) > 0 {
		end := l.HighlightEndStack[len(l.HighlightEndStack)-1]
		nextEnd = &end
	}

	switch {
	case nextStart != nil && nextEnd != nil:
		if *nextStart < *nextEnd {
			return &sortKeyResult{position: *nextStart, start: true, depth: depth}
		}
		return &sortKeyResult{position: *nextEnd, start: false, depth: depth}
	case nextStart != nil:
		return &sortKeyResult{position: *nextStart, start: true, depth: depth}
	case nextEnd != nil:
		return &sortKeyResult{position: *nextEnd, start: false, depth: depth}
	default:
		return nil
	}
}

type iterRange struct {
	Start, End uint
	Depth      int
}

// highlightIter merges every renderLayer's capture stream into one
// position-ordered stream of Events, the way the teacher's highlightIter
// does — except its layers arrive pre-built (Highlight's buildLayers
// already ran every layer's query to completion), so there's no injection
// branch here: every capture this iterator sees is either a locals capture
// or a highlight capture.
type highlightIter struct {
	ctx                context.Context
	source             []byte
	byteOffset         uint
	layers             []*renderLayer
	nextEvent          Event
	lastHighlightRange *iterRange
}

func (h *highlightIter) emitEvent(offset uint, event Event) (Event, error) {
	var result Event
	if h.byteOffset < offset {
		result = EventSource{Start: h.byteOffset, End: offset}
		h.byteOffset = offset
		h.nextEvent = event
	} else {
		result = event
	}
	h.sortLayers()
	return result, nil
}

func (h *highlightIter) next() (Event, error) {
main:
	for {
		if h.nextEvent != nil {
			event := h.nextEvent
			h.nextEvent = nil
			return event, nil
		}

		if h.ctx != nil {
			select {
			case <-h.ctx.Done():
				return nil, h.ctx.Err()
			default:
			}
		}

		if len(h.layers) == 0 {
			if h.byteOffset < uint(len(h.source)) {
				event := EventSource{Start: h.byteOffset, End: uint(len(h.source))}
				h.byteOffset = uint(len(h.source))
				return event, nil
			}
			return nil, nil
		}

		layer := h.layers[0]

		var r tree_sitter.Range
		if len(layer.Captures) > 0 {
			r = layer.Captures[0].Range

			if len(layer.HighlightEndStack) > 0 {
				endByte := layer.HighlightEndStack[len(layer.HighlightEndStack)-1]
				if endByte <= r.StartByte {
					layer.HighlightEndStack = layer.HighlightEndStack[:len(layer.HighlightEndStack)-1]
					return h.emitEvent(endByte, EventEnd{})
				}
			}
		} else {
			if len(layer.HighlightEndStack) > 0 {
				endByte := layer.HighlightEndStack[len(layer.HighlightEndStack)-1]
				layer.HighlightEndStack = layer.HighlightEndStack[:len(layer.HighlightEndStack)-1]
				return h.emitEvent(endByte, EventEnd{})
			}
			return h.emitEvent(uint(len(h.source)), nil)
		}

		match := layer.Captures[0]
		layer.Captures = layer.Captures[1:]
		capture := match.Match.Captures[match.Index]

		for r.StartByte > layer.ScopeStack[len(layer.ScopeStack)-1].Range.EndByte {
			layer.ScopeStack = layer.ScopeStack[:len(layer.ScopeStack)-1]
		}

		var referenceHighlight *Highlight
		var definitionHighlight *Highlight
		for match.Match.PatternIndex < layer.Config.HighlightsPatternIndex {
			switch {
			case layer.Config.LocalScopeCaptureIndex != nil && uint(capture.Index) == *layer.Config.LocalScopeCaptureIndex:
				definitionHighlight = nil
				scope := localScope{Inherits: true, Range: r}
				for _, prop := range layer.Config.Query.PropertySettings(match.Match.PatternIndex) {
					if prop.Key == captureLocalScopeInherits {
						scope.Inherits = prop.Value != nil && *prop.Value == "true"
					}
				}
				layer.ScopeStack = append(layer.ScopeStack, scope)
			case layer.Config.LocalDefCaptureIndex != nil && uint(capture.Index) == *layer.Config.LocalDefCaptureIndex:
				referenceHighlight = nil
				definitionHighlight = nil
				scope := layer.ScopeStack[len(layer.ScopeStack)-1]

				var valueRange tree_sitter.Range
				for _, matchCapture := range match.Match.Captures {
					if layer.Config.LocalDefValueCaptureIndex != nil && uint(matchCapture.Index) == *layer.Config.LocalDefValueCaptureIndex {
						valueRange = translateRange(matchCapture.Node.Range(), layer.Info.StartByte, layer.Info.StartPoint)
					}
				}

				if len(h.source) > int(r.StartByte) && len(h.source) > int(valueRange.EndByte) {
					name := string(h.source[r.StartByte:r.EndByte])
					scope.LocalDefs = append(scope.LocalDefs, localDef{Name: name, Range: r})
					definitionHighlight = scope.LocalDefs[len(scope.LocalDefs)-1].Highlight
				}
			case layer.Config.LocalRefCaptureIndex != nil && uint(capture.Index) == *layer.Config.LocalRefCaptureIndex && definitionHighlight == nil:
				definitionHighlight = nil
				if len(h.source) > int(r.StartByte) && len(h.source) > int(r.EndByte) {
					name := string(h.source[r.StartByte:r.EndByte])
					for _, scope := range slices.Backward(layer.ScopeStack) {
						var found *Highlight
						for _, def := range slices.Backward(scope.LocalDefs) {
							if def.Name == name && r.StartByte >= def.Range.EndByte {
								found = def.Highlight
							}
						}
						if found != nil {
							referenceHighlight = found
							break
						}
						if !scope.Inherits {
							break
						}
					}
				}
			}

			if len(layer.Captures) > 0 {
				next := layer.Captures[0]
				if next.Range == r {
					capture = next.Match.Captures[next.Index]
					match = next
					layer.Captures = layer.Captures[1:]
					continue
				}
			}

			h.sortLayers()
			continue main
		}

		if h.lastHighlightRange != nil {
			last := *h.lastHighlightRange
			if r.StartByte == last.Start && r.EndByte == last.End && layer.Depth < last.Depth {
				h.sortLayers()
				continue main
			}
		}

		for len(layer.Captures) > 0 {
			next := layer.Captures[0]
			if next.Range != r {
				break
			}
			layer.Captures = layer.Captures[1:]
			if definitionHighlight != nil || (referenceHighlight != nil && layer.Config.NonLocalVariablePatterns[next.Match.PatternIndex]) {
				continue
			}
			capture = next.Match.Captures[next.Index]
			match = next
		}

		currentHighlight := layer.Config.HighlightIndices[uint(capture.Index)]
		if definitionHighlight != nil {
			definitionHighlight = currentHighlight
		}

		highlight := referenceHighlight
		if highlight == nil {
			highlight = currentHighlight
		}
		if highlight != nil {
			h.lastHighlightRange = &iterRange{Start: r.StartByte, End: r.EndByte, Depth: layer.Depth}
			layer.HighlightEndStack = append(layer.HighlightEndStack, r.EndByte)
			return h.emitEvent(r.StartByte, EventStart{
				Highlight:    *highlight,
				LanguageName: layer.Config.GrammarName,
			})
		}

		h.sortLayers()
	}
}

func (h *highlightIter) sortLayers() {
	for len(h.layers) > 1 {
		key := h.layers[0].sortKey()
		if key != nil {
			var i int
			for i+1 < len(h.layers) {
				nextKey := h.layers[i+1].sortKey()
				if nextKey != nil && nextKey.position < key.position {
					i++
					continue
				}
				break
			}
			if i > 0 {
				h.layers = append(h.layers[:i], append([]*renderLayer{h.layers[0]}, h.layers[i:]...)...)
			}
			break
		}
		h.layers = h.layers[1:]
	}
}

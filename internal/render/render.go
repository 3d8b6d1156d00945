// Package render turns the layers a syntaxmap.Snapshot has already
// discovered into a stream of highlight events: a capture-start/capture-end
// span around every node a highlights query matches, correctly nested
// across injected layers.
//
// This is adapted from the teacher's own Highlighter.Highlight, with one
// deliberate simplification: that Highlighter discovered injections itself,
// mid-highlight, via a combined injection query threaded through its own
// parser. Here injection discovery is no longer this package's job — a
// syntaxmap.Snapshot has already walked the buffer and found every layer —
// so Highlight takes a Snapshot and merges its pre-built layers by
// position, instead of discovering and parsing them on the fly.
package render

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"go.gopad.dev/go-syntax-map"
	"go.gopad.dev/go-syntax-map/buffer"
)

const (
	captureLocal              = "local"
	captureLocalScopeInherits = "local.scope-inherits"
)

// StandardCaptureNames lists the capture names commonly used across
// tree-sitter highlight queries. It's opinionated and may not align with
// a particular grammar's own query.
var StandardCaptureNames = []string{
	"attribute", "boolean", "carriage-return", "comment", "comment.documentation",
	"constant", "constant.builtin", "constructor", "constructor.builtin", "embedded",
	"error", "escape", "function", "function.builtin", "keyword", "markup",
	"markup.bold", "markup.heading", "markup.italic", "markup.link", "markup.link.url",
	"markup.list", "markup.list.checked", "markup.list.numbered", "markup.list.unchecked",
	"markup.list.unnumbered", "markup.quote", "markup.raw", "markup.raw.block",
	"markup.raw.inline", "markup.strikethrough", "module", "number", "operator",
	"property", "property.builtin", "punctuation", "punctuation.bracket",
	"punctuation.delimiter", "punctuation.special", "string", "string.escape",
	"string.regexp", "string.special", "string.special.symbol", "tag", "type",
	"type.builtin", "variable", "variable.builtin", "variable.member", "variable.parameter",
}

// Highlight is the index of a recognized capture name, as resolved by
// Config.Configure.
type Highlight uint

// Event is one step of a highlight event stream: EventSource carries a
// span of plain source text, EventStart/EventEnd bracket a highlighted
// region.
type Event interface {
	highlightEvent()
}

type EventSource struct {
	Start, End uint
}

func (EventSource) highlightEvent() {}

type EventStart struct {
	Highlight    Highlight
	LanguageName string
}

func (EventStart) highlightEvent() {}

type EventEnd struct{}

func (EventEnd) highlightEvent() {}

// Config is the highlighting side of one grammar: a compiled
// highlights+locals query, which capture produces which recognized
// Highlight, and the capture indices that drive locals-aware reference
// resolution (a variable reference is highlighted according to its
// definition's highlight, not its own pattern, when one can be found).
type Config struct {
	GrammarName              string
	Query                    *tree_sitter.Query
	HighlightsPatternIndex   uint
	HighlightIndices         []*Highlight
	NonLocalVariablePatterns []bool
	LocalScopeCaptureIndex   *uint
	LocalDefCaptureIndex     *uint
	LocalDefValueCaptureIndex *uint
	LocalRefCaptureIndex     *uint
}

// NewConfig compiles localsQuery and highlightsQuery (concatenated, in
// that order, the way the teacher concatenates injection+locals+highlights
// into one query) against language and resolves the capture indices
// locals-tracking needs.
func NewConfig(grammarName string, language *tree_sitter.Language, highlightsQuery, localsQuery []byte) (*Config, error) {
	querySource := append([]byte{}, localsQuery...)
	highlightsQueryOffset := uint(len(querySource))
	querySource = append(querySource, highlightsQuery...)

	query, err := tree_sitter.NewQuery(language, string(querySource))
	if err != nil {
		return nil, fmt.Errorf("render: compiling query for %s: %w", grammarName, err)
	}

	highlightsPatternIndex := uint(0)
	for i := range query.PatternCount() {
		if query.StartByteForPattern(i) < highlightsQueryOffset {
			highlightsPatternIndex++
		}
	}

	nonLocalVariablePatterns := make([]bool, query.PatternCount())
	for i := range query.PatternCount() {
		predicates := query.PropertyPredicates(i)
		if slices.ContainsFunc(predicates, func(p tree_sitter.PropertyPredicate) bool {
			return !p.Positive && p.Property.Key == captureLocal
		}) {
			nonLocalVariablePatterns[i] = true
		}
	}

	var localDefIdx, localDefValueIdx, localRefIdx, localScopeIdx *uint
	for i, name := range query.CaptureNames() {
		ui := uint(i)
		switch name {
		case "local.definition":
			localDefIdx = &ui
		case "local.definition-value":
			localDefValueIdx = &ui
		case "local.reference":
			localRefIdx = &ui
		case "local.scope":
			localScopeIdx = &ui
		}
	}

	return &Config{
		GrammarName:               grammarName,
		Query:                     query,
		HighlightsPatternIndex:    highlightsPatternIndex,
		HighlightIndices:          make([]*Highlight, len(query.CaptureNames())),
		NonLocalVariablePatterns:  nonLocalVariablePatterns,
		LocalScopeCaptureIndex:    localScopeIdx,
		LocalDefCaptureIndex:      localDefIdx,
		LocalDefValueCaptureIndex: localDefValueIdx,
		LocalRefCaptureIndex:      localRefIdx,
	}, nil
}

// Names returns every capture name this config's query declares.
func (c *Config) Names() []string { return c.Query.CaptureNames() }

// Configure sets the list of recognized highlight names this config
// resolves captures against. A capture name like "function.builtin"
// matches a recognized name of "function" (every dot-separated part of
// the recognized name appears among the capture name's parts, in any
// position) as well as "function.builtin" itself, preferring the match
// with the most parts.
func (c *Config) Configure(recognizedNames []string) {
	highlightIndices := make([]*Highlight, len(c.Query.CaptureNames()))
	for i, captureName := range c.Query.CaptureNames() {
		captureParts := strings.Split(captureName, ".")

		var bestIndex *Highlight
		var bestMatchLen int
		for j, recognizedName := range recognizedNames {
			var matchLen int
			matches := true
			for _, part := range strings.Split(recognizedName, ".") {
				matchLen++
				if !slices.Contains(captureParts, part) {
					matches = false
					break
				}
			}
			if matches && matchLen > bestMatchLen {
				index := Highlight(j)
				bestIndex = &index
				bestMatchLen = matchLen
			}
		}
		highlightIndices[i] = bestIndex
	}
	c.HighlightIndices = highlightIndices
}

// Highlight renders every layer in snapshot whose grammar has an entry in
// configs, merged by absolute byte position in text, the way the teacher's
// Highlighter merges its own injected layers. A layer whose grammar has no
// Config is skipped — its content still occupies byte ranges that end up
// reported via EventSource, just with no highlight spans of its own.
func Highlight(ctx context.Context, snapshot *syntaxmap.Snapshot, text *buffer.Snapshot, configs map[string]*Config) iter.Seq2[Event, error] {
	layers := buildLayers(snapshot, text, configs)

	hIter := &highlightIter{
		ctx:    ctx,
		source: text.Text(),
		layers: layers,
	}
	hIter.sortLayers()

	return func(yield func(Event, error) bool) {
		for {
			event, err := hIter.next()
			if err != nil {
				yield(nil, err)
				return
			}
			if event == nil {
				return
			}
			if !yield(event, nil) {
				return
			}
		}
	}
}

func buildLayers(snapshot *syntaxmap.Snapshot, text *buffer.Snapshot, configs map[string]*Config) []*renderLayer {
	var layers []*renderLayer
	for info := range snapshot.Layers(text) {
		config, ok := configs[info.Grammar.Name]
		if !ok {
			continue
		}

		cursor := tree_sitter.NewQueryCursor()
		var captures []queryCapture
		matches := cursor.Captures(config.Query, info.Tree.RootNode(), text.Text())
		for {
			match, index := matches.Next()
			if match == nil {
				break
			}
			capture := match.Captures[index]
			captures = append(captures, queryCapture{
				Match: match,
				Index: index,
				Range: translateRange(capture.Node.Range(), info.StartByte, info.StartPoint),
			})
		}
		if len(captures) == 0 {
			continue
		}

		layers = append(layers, &renderLayer{
			Info:   info,
			Config: config,
			Cursor: cursor,
			ScopeStack: []localScope{
				{
					Inherits: false,
					Range: tree_sitter.Range{
						StartByte:  0,
						EndByte:    ^uint(0),
						StartPoint: tree_sitter.Point{},
						EndPoint:   tree_sitter.Point{Row: ^uint(0), Column: ^uint(0)},
					},
				},
			},
			Captures: captures,
			Depth:    info.Depth,
		})
	}
	return layers
}

func translateRange(r tree_sitter.Range, startByte uint32, startPoint tree_sitter.Point) tree_sitter.Range {
	return tree_sitter.Range{
		StartByte:  r.StartByte + uint(startByte),
		EndByte:    r.EndByte + uint(startByte),
		StartPoint: addPoint(startPoint, r.StartPoint),
		EndPoint:   addPoint(startPoint, r.EndPoint),
	}
}

func addPoint(a, b tree_sitter.Point) tree_sitter.Point {
	if b.Row != 0 {
		return tree_sitter.Point{Row: a.Row + b.Row, Column: b.Column}
	}
	return tree_sitter.Point{Row: a.Row, Column: a.Column + b.Column}
}

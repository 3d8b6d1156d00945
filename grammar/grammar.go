// Package grammar provides the Grammar and LanguageRegistry collaborators
// the syntax engine is written against: a compiled tree-sitter language
// plus its injection query, and a way to resolve a language name
// discovered inside a buffer (e.g. the string after a markdown code
// fence) back to a Grammar.
package grammar

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Grammar wraps a compiled tree-sitter language together with the
// (optional) injection query that tells the engine where this grammar
// hands off to other languages.
type Grammar struct {
	Name      string
	Language  *tree_sitter.Language
	Injection *InjectionConfig // nil if this grammar never injects other languages
}

// InjectionConfig is the compiled form of a grammar's injection query:
// the query itself, and the capture indices the engine needs to pull an
// injected language's name and content node out of each match.
type InjectionConfig struct {
	Query                *tree_sitter.Query
	ContentCaptureIndex  uint
	LanguageCaptureIndex *uint // nil if the query never captures @injection.language
}

// NewGrammar compiles injectionQuery (which may be empty, for a grammar
// that never injects anything) against lang and resolves the capture
// indices the engine's injection discovery needs.
func NewGrammar(name string, lang *tree_sitter.Language, injectionQuery []byte) (*Grammar, error) {
	g := &Grammar{Name: name, Language: lang}
	if len(injectionQuery) == 0 {
		return g, nil
	}

	query, err := tree_sitter.NewQuery(lang, string(injectionQuery))
	if err != nil {
		return nil, fmt.Errorf("grammar %s: compiling injection query: %w", name, err)
	}

	var contentIdx, languageIdx *uint
	for i, captureName := range query.CaptureNames() {
		ui := uint(i)
		switch captureName {
		case captureInjectionContent:
			contentIdx = &ui
		case captureInjectionLanguage:
			languageIdx = &ui
		}
	}
	if contentIdx == nil {
		// A query with no @injection.content capture can't drive
		// injection discovery; treat the grammar as non-injecting rather
		// than failing outright.
		return g, nil
	}

	g.Injection = &InjectionConfig{
		Query:                query,
		ContentCaptureIndex:  *contentIdx,
		LanguageCaptureIndex: languageIdx,
	}
	return g, nil
}

// ContentNodesAndLanguage inspects one injection-query match and reports
// the name of the language it injects, every node the match captured as
// @injection.content (a single pattern can capture it on more than one
// node — the interpolated parts of a multi-part string, say — and all of
// them belong to the same injected document), and whether those content
// nodes' children should be included in the injected ranges.
//
// The language name resolves, in order, from the match's own
// @injection.language capture, its `#set! injection.language` property,
// `#set! injection.self` (selfName: the grammar running this query, for
// a language that injects more of itself), or `#set! injection.parent`
// (parentName: the grammar of the layer enclosing the current one, empty
// for a root layer).
//
// It reports ok=false when the match doesn't carry enough information to
// resolve a language (missing content capture, or a language name that
// resolves to the empty string).
func (c *InjectionConfig) ContentNodesAndLanguage(match tree_sitter.QueryMatch, source []byte, selfName, parentName string) (languageName string, contentNodes []tree_sitter.Node, includeChildren bool, ok bool) {
	for _, capture := range match.Captures {
		index := uint(capture.Index)
		switch {
		case index == c.ContentCaptureIndex:
			contentNodes = append(contentNodes, capture.Node)
		case c.LanguageCaptureIndex != nil && index == *c.LanguageCaptureIndex:
			languageName = capture.Node.Utf8Text(source)
		}
	}
	if len(contentNodes) == 0 {
		return "", nil, false, false
	}

	for _, property := range c.Query.PropertySettings(match.PatternIndex) {
		switch property.Key {
		case captureInjectionLanguage:
			if languageName == "" && property.Value != nil {
				languageName = *property.Value
			}
		case captureInjectionSelf:
			if languageName == "" {
				languageName = selfName
			}
		case captureInjectionParent:
			if languageName == "" {
				languageName = parentName
			}
		case captureInjectionIncludeChildren:
			includeChildren = true
		}
	}

	if languageName == "" {
		return "", nil, false, false
	}
	return languageName, contentNodes, includeChildren, true
}

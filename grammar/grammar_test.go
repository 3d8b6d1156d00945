package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"go.gopad.dev/go-syntax-map/grammar"
)

func goLanguage() *tree_sitter.Language {
	return tree_sitter.NewLanguage(tree_sitter_go.Language())
}

func TestNewGrammarWithoutInjectionQuery(t *testing.T) {
	g, err := grammar.NewGrammar("go", goLanguage(), nil)
	require.NoError(t, err)
	assert.Nil(t, g.Injection)
}

func TestNewGrammarResolvesCaptureIndices(t *testing.T) {
	query := []byte(`(raw_string_literal) @injection.content (#set! injection.language "text")`)
	g, err := grammar.NewGrammar("go", goLanguage(), query)
	require.NoError(t, err)
	require.NotNil(t, g.Injection)
	assert.Nil(t, g.Injection.LanguageCaptureIndex)
}

func TestContentNodesAndLanguageStaticLanguage(t *testing.T) {
	lang := goLanguage()
	query := []byte(`(raw_string_literal) @injection.content (#set! injection.language "text")`)
	g, err := grammar.NewGrammar("go", lang, query)
	require.NoError(t, err)
	require.NotNil(t, g.Injection)

	source := []byte("package main\n\nvar x = `hello`\n")
	parser := tree_sitter.NewParser()
	defer parser.Close()
	require.NoError(t, parser.SetLanguage(lang))
	tree := parser.Parse(source, nil)
	defer tree.Close()

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	var resolved bool
	matches := cursor.Matches(g.Injection.Query, tree.RootNode(), source)
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		name, nodes, includeChildren, ok := g.Injection.ContentNodesAndLanguage(*match, source, "go", "go")
		if !ok {
			continue
		}
		resolved = true
		assert.Equal(t, "text", name)
		assert.NotEmpty(t, nodes)
		assert.False(t, includeChildren)
	}
	assert.True(t, resolved)
}

func TestContentNodesAndLanguageSelfAndParentFallback(t *testing.T) {
	lang := goLanguage()
	source := []byte("package main\n\nvar x = `hello`\n")
	parser := tree_sitter.NewParser()
	defer parser.Close()
	require.NoError(t, parser.SetLanguage(lang))
	tree := parser.Parse(source, nil)
	defer tree.Close()

	resolve := func(t *testing.T, query []byte, selfName, parentName string) (string, bool) {
		g, err := grammar.NewGrammar("go", lang, query)
		require.NoError(t, err)
		require.NotNil(t, g.Injection)

		cursor := tree_sitter.NewQueryCursor()
		defer cursor.Close()

		matches := cursor.Matches(g.Injection.Query, tree.RootNode(), source)
		for {
			match := matches.Next()
			if match == nil {
				return "", false
			}
			name, _, _, ok := g.Injection.ContentNodesAndLanguage(*match, source, selfName, parentName)
			if ok {
				return name, true
			}
		}
	}

	t.Run("self", func(t *testing.T) {
		query := []byte(`(raw_string_literal) @injection.content (#set! injection.self)`)
		name, ok := resolve(t, query, "go", "markdown")
		require.True(t, ok)
		assert.Equal(t, "go", name)
	})

	t.Run("parent", func(t *testing.T) {
		query := []byte(`(raw_string_literal) @injection.content (#set! injection.parent)`)
		name, ok := resolve(t, query, "go", "markdown")
		require.True(t, ok)
		assert.Equal(t, "markdown", name)
	})

	t.Run("parent empty at root", func(t *testing.T) {
		query := []byte(`(raw_string_literal) @injection.content (#set! injection.parent)`)
		_, ok := resolve(t, query, "go", "")
		assert.False(t, ok)
	})
}

func TestRegistry(t *testing.T) {
	reg := grammar.NewRegistry()
	_, ok := reg.Grammar("go")
	assert.False(t, ok)

	g, err := grammar.NewGrammar("go", goLanguage(), nil)
	require.NoError(t, err)
	reg.Register(g)

	got, ok := reg.Grammar("go")
	require.True(t, ok)
	assert.Same(t, g, got)
}

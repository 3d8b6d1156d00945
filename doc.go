/*
Package syntaxmap is an incremental, multi-language syntax index for a text
buffer: a tree of [tree-sitter](https://github.com/tree-sitter/go-tree-sitter)
parse trees kept in sync with a buffer as it's edited, one tree per language
region (the buffer's own language, plus one layer for every injection a
grammar's queries discover — a fenced code block in markdown, a script tag
in HTML).

# Usage

Build a [buffer.Buffer] from your text, take its [buffer.Snapshot], and a
[grammar.Grammar] for its language, then hand both to a [SyntaxMap]:

	buf := buffer.New(source)
	text := buf.Snapshot()
	sm := syntaxmap.New()
	sm.SetLanguageRegistry(myRegistry)
	sm.Interpolate(text)
	sm.Reparse(goGrammar, text)

After an edit, apply it to the buffer and take a fresh snapshot, then call
Interpolate (cheap, no parsing) followed by Reparse (parses only the
regions Interpolate couldn't account for):

	buf.Edit(changes)
	text = buf.Snapshot()
	sm.Interpolate(text)
	sm.Reparse(goGrammar, text)

[SyntaxMap.Snapshot] returns the current [Snapshot], a cheaply clonable,
read-only view safe to query from other goroutines. [Snapshot.Layers] and
[Snapshot.LayersForRange] hand back each layer's grammar, parsed tree, and
the byte offset its tree's coordinate space starts at, suitable for
feeding to a highlighter such as the go-syntax-map/internal/render package.
*/
package syntaxmap

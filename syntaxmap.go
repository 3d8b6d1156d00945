package syntaxmap

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"go.gopad.dev/go-syntax-map/buffer"
	"go.gopad.dev/go-syntax-map/grammar"
	"go.gopad.dev/go-syntax-map/internal/layertree"
)

// Snapshot is a cheaply-clonable, internally immutable view of a
// SyntaxMap's layer tree at some buffer version. A Snapshot may be handed
// to other goroutines and queried (Layers, LayersForRange) concurrently
// with further mutation of the SyntaxMap it came from, provided the
// buffer.Snapshot passed to those queries matches this Snapshot's buffer
// version.
type Snapshot struct {
	layers *layertree.LayerTree
}

// EmptySnapshot is the Snapshot of a buffer with no parsed layers yet.
func EmptySnapshot() *Snapshot {
	return &Snapshot{layers: layertree.New()}
}

// SyntaxMap is a single-threaded, single-buffer syntax index: a tree of
// parsed layers (the root grammar's tree, plus one layer per discovered
// language injection) kept in sync with a buffer as it's edited.
//
// A SyntaxMap is not safe for concurrent use. The parser it owns is a
// thread-local resource reused across every Reparse call; callers that
// want to index several buffers concurrently should give each buffer its
// own SyntaxMap (and so its own *tree_sitter.Parser), the way a
// goroutine-per-buffer editor would.
type SyntaxMap struct {
	version  uint64
	snapshot *Snapshot
	registry LanguageRegistry
	parser   *tree_sitter.Parser
}

// New returns a SyntaxMap over an empty layer tree, at version 0.
func New() *SyntaxMap {
	return &SyntaxMap{
		snapshot: EmptySnapshot(),
		parser:   tree_sitter.NewParser(),
	}
}

// SetLanguageRegistry installs the collaborator Reparse uses to resolve
// an injected language's name (e.g. the string after a markdown code
// fence) to a Grammar. A nil registry disables injection discovery
// entirely; the map still parses and reparses its root layer.
func (m *SyntaxMap) SetLanguageRegistry(registry LanguageRegistry) {
	m.registry = registry
}

// Snapshot returns the SyntaxMap's current Snapshot. The returned value
// is safe to retain and query after further calls to Interpolate or
// Reparse, since those methods build a new Snapshot rather than mutating
// the returned one in place.
func (m *SyntaxMap) Snapshot() *Snapshot {
	return m.snapshot
}

// Interpolate cheaply keeps every existing layer's tree in sync with
// every edit recorded in text since the map's last-seen buffer version,
// by translating tree_sitter.Tree byte/point ranges — without running
// the parser. It must be called (even with zero edits, which is a no-op)
// before Reparse so Reparse's own diffing sees a consistent baseline.
func (m *SyntaxMap) Interpolate(text *buffer.Snapshot) {
	m.snapshot = m.snapshot.interpolate(m.version, text)
	m.version = text.Version()
}

// Reparse walks the regions Interpolate couldn't account for and
// actually reparses them, discovering new injected layers and retiring
// ones whose content no longer supports them. rootGrammar is the grammar
// the buffer's depth-0 layer is parsed with; a caller that reassigns a
// buffer's language passes the new grammar here and the next Reparse
// rebuilds the whole tree under it.
func (m *SyntaxMap) Reparse(rootGrammar *grammar.Grammar, text *buffer.Snapshot) {
	m.snapshot = m.reparse(rootGrammar, text)
	m.version = text.Version()
}

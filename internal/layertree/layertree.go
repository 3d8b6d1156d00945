package layertree

import "go.gopad.dev/go-syntax-map/buffer"

// Item is one entry in a LayerTree: a depth, the range it covers, and an
// opaque payload (the engine stores a *SyntaxLayer here).
type Item struct {
	Depth      int
	Start, End buffer.Anchor
	Value      any
}

// LayerTree holds a sequence of Items in depth-then-position order.
type LayerTree struct {
	items []Item
}

// New returns an empty LayerTree.
func New() *LayerTree {
	return &LayerTree{}
}

// FromItems builds a LayerTree directly from an already-ordered slice of
// items.
func FromItems(items []Item) *LayerTree {
	return &LayerTree{items: items}
}

// Len returns the number of items in the tree.
func (t *LayerTree) Len() int { return len(t.items) }

// Items returns every item, in sequence order. Callers must not mutate
// the returned slice.
func (t *LayerTree) Items() []Item { return t.items }

// Push appends a single item.
func (t *LayerTree) Push(it Item) { t.items = append(t.items, it) }

// PushAll appends every item in its, in order.
func (t *LayerTree) PushAll(its []Item) { t.items = append(t.items, its...) }

// FilterItems returns every item for which predicate, given that item's
// own summary, returns true. This models sum_tree::Cursor::filter without
// the subtree-skipping it performs over a real B-tree's internal
// summaries — an optimization that has no counterpart over a flat slice.
func (t *LayerTree) FilterItems(predicate func(Summary) bool) []Item {
	var out []Item
	for _, it := range t.items {
		if predicate(itemSummary(it)) {
			out = append(out, it)
		}
	}
	return out
}

// Summary folds the summary of every item in the tree into one value,
// equivalent to running a Cursor to the end and reading Start().
func (t *LayerTree) Summary(cmp Comparator) Summary {
	s := defaultSummary()
	for _, it := range t.items {
		addSummary(&s, itemSummary(it), cmp)
	}
	return s
}

// Cursor walks a LayerTree while accumulating a running Summary over the
// items already passed, the way sum_tree::Cursor does over a real tree.
type Cursor struct {
	tree   *LayerTree
	cmp    Comparator
	pos    int
	prefix Summary
}

// Cursor returns a new Cursor over t, positioned before the first item.
func (t *LayerTree) Cursor(cmp Comparator) *Cursor {
	return &Cursor{tree: t, cmp: cmp, pos: 0, prefix: defaultSummary()}
}

// Start returns the cumulative summary of every item strictly before the
// cursor's current position.
func (c *Cursor) Start() Summary { return c.prefix }

// Item returns the item at the cursor's current position. ok is false
// once the cursor has walked past the last item.
func (c *Cursor) Item() (it Item, ok bool) {
	if c.pos >= len(c.tree.items) {
		return Item{}, false
	}
	return c.tree.items[c.pos], true
}

// End returns the cumulative summary through and including the current
// item (equal to Start if the cursor is at the end).
func (c *Cursor) End() Summary {
	it, ok := c.Item()
	if !ok {
		return c.prefix
	}
	s := c.prefix
	addSummary(&s, itemSummary(it), c.cmp)
	return s
}

// Next advances the cursor past the current item.
func (c *Cursor) Next() {
	it, ok := c.Item()
	if !ok {
		return
	}
	addSummary(&c.prefix, itemSummary(it), c.cmp)
	c.pos++
}

// Slice advances the cursor while target compares greater than the
// cursor's End() summary (the running summary through the current item),
// returning every item consumed along the way. This is the tree's
// Bias::Left seek: it stops at the first item whose End() summary target
// is no longer greater than, leaving that item under the cursor. The
// engine never needs Bias::Right, so this package only implements Left.
func (c *Cursor) Slice(target SeekTarget) []Item {
	var consumed []Item
	for {
		it, ok := c.Item()
		if !ok {
			break
		}
		if target.Compare(c.End(), c.cmp) <= 0 {
			break
		}
		consumed = append(consumed, it)
		c.Next()
	}
	return consumed
}

// Suffix consumes every remaining item and returns them.
func (c *Cursor) Suffix() []Item {
	var out []Item
	for {
		it, ok := c.Item()
		if !ok {
			break
		}
		out = append(out, it)
		c.Next()
	}
	return out
}

// Package workqueue implements the reparse driver's work queue: a
// priority queue of pending reparse steps, ordered so that the engine
// always processes the shallowest, earliest-starting, widest-covering
// step next.
package workqueue

import (
	"container/heap"

	"go.gopad.dev/go-syntax-map/buffer"
)

// Comparator orders two Anchors. *buffer.Snapshot satisfies this directly.
type Comparator interface {
	Compare(a, b buffer.Anchor) int
}

// Step is one reparse work item: a depth to reparse at, the anchor range
// it covers, and an opaque payload (the engine stores its reparse payload
// here, holding the grammar and tree-sitter ranges to parse).
type Step struct {
	Depth      int
	Start, End buffer.Anchor
	Value      any
}

// Queue pops Steps in the order the reparse driver needs them: ascending
// depth first, then ascending start position, then — among steps that
// start at the same position — descending end position, so a step
// covering a wider range is processed before one nested inside it.
//
// Two steps that compare equal under this ordering remain distinct queue
// entries; the queue never merges or deduplicates them.
type Queue struct {
	inner *innerHeap
}

// New creates an empty Queue. cmp is used to order the Anchors in each
// Step.
func New(cmp Comparator) *Queue {
	q := &Queue{inner: &innerHeap{cmp: cmp}}
	heap.Init(q.inner)
	return q
}

// Push adds a step to the queue.
func (q *Queue) Push(s Step) { heap.Push(q.inner, s) }

// Pop removes and returns the highest-priority step. ok is false if the
// queue is empty.
func (q *Queue) Pop() (s Step, ok bool) {
	if q.inner.Len() == 0 {
		return Step{}, false
	}
	return heap.Pop(q.inner).(Step), true
}

// Len reports how many steps are queued.
func (q *Queue) Len() int { return q.inner.Len() }

type innerHeap struct {
	items []Step
	cmp   Comparator
}

func (h *innerHeap) Len() int { return len(h.items) }

func (h *innerHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.Depth != b.Depth {
		return a.Depth < b.Depth
	}
	if c := h.cmp.Compare(a.Start, b.Start); c != 0 {
		return c < 0
	}
	return h.cmp.Compare(a.End, b.End) > 0
}

func (h *innerHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *innerHeap) Push(x any) { h.items = append(h.items, x.(Step)) }

func (h *innerHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

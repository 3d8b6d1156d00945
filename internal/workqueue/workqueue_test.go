package workqueue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.gopad.dev/go-syntax-map/buffer"
	"go.gopad.dev/go-syntax-map/internal/workqueue"
)

func TestQueuePopsShallowestDepthFirst(t *testing.T) {
	s := buffer.New("0123456789").Snapshot()
	q := workqueue.New(s)

	q.Push(workqueue.Step{Depth: 2, Start: s.AnchorBefore(0), End: s.AnchorAfter(10), Value: "deep"})
	q.Push(workqueue.Step{Depth: 0, Start: s.AnchorBefore(0), End: s.AnchorAfter(10), Value: "shallow"})
	q.Push(workqueue.Step{Depth: 1, Start: s.AnchorBefore(0), End: s.AnchorAfter(10), Value: "middle"})

	first, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "shallow", first.Value)

	second, _ := q.Pop()
	assert.Equal(t, "middle", second.Value)

	third, _ := q.Pop()
	assert.Equal(t, "deep", third.Value)
}

func TestQueueOrdersBySmallestStartThenLargestEnd(t *testing.T) {
	s := buffer.New("0123456789").Snapshot()
	q := workqueue.New(s)

	q.Push(workqueue.Step{Depth: 0, Start: s.AnchorBefore(5), End: s.AnchorAfter(7), Value: "late-narrow"})
	q.Push(workqueue.Step{Depth: 0, Start: s.AnchorBefore(1), End: s.AnchorAfter(3), Value: "early-narrow"})
	q.Push(workqueue.Step{Depth: 0, Start: s.AnchorBefore(1), End: s.AnchorAfter(9), Value: "early-wide"})

	first, _ := q.Pop()
	assert.Equal(t, "early-wide", first.Value, "same start: wider (larger end) pops first")

	second, _ := q.Pop()
	assert.Equal(t, "early-narrow", second.Value)

	third, _ := q.Pop()
	assert.Equal(t, "late-narrow", third.Value)
}

func TestQueuePopOnEmptyReportsNotOK(t *testing.T) {
	s := buffer.New("").Snapshot()
	q := workqueue.New(s)
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestQueueLen(t *testing.T) {
	s := buffer.New("abc").Snapshot()
	q := workqueue.New(s)
	assert.Equal(t, 0, q.Len())
	q.Push(workqueue.Step{Depth: 0, Start: s.AnchorBefore(0), End: s.AnchorAfter(1)})
	assert.Equal(t, 1, q.Len())
	q.Pop()
	assert.Equal(t, 0, q.Len())
}

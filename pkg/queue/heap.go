package queue

import (
	"container/heap"
	"fmt"
	"strings"
)

// LessFunc reports whether a has to be popped before b.
type LessFunc[T any] func(a, b T) bool

// IndexFunc records the heap position of item. Popped items get -1.
type IndexFunc[T any] func(item T, index int)

// MinHeap is a binary min-heap which tells its items where they are stored, so an item whose
// priority changed can be fixed in O(log n) without scanning the heap.
// The same item can live in several heaps at once as long as every heap writes the position to
// its own field (see IndexFunc).
type MinHeap[T any] struct {
	queue priorityQueue[T]
}

func NewMinHeap[T any](less LessFunc[T], setIndex IndexFunc[T]) *MinHeap[T] {
	if setIndex == nil {
		setIndex = func(T, int) {}
	}
	h := &MinHeap[T]{queue: priorityQueue[T]{less: less, setIndex: setIndex}}
	heap.Init(&h.queue)
	return h
}

// Implements heap.Interface
type priorityQueue[T any] struct {
	items    []T
	less     LessFunc[T]
	setIndex IndexFunc[T]
}

func (q priorityQueue[T]) Len() int           { return len(q.items) }
func (q priorityQueue[T]) Less(i, j int) bool { return q.less(q.items[i], q.items[j]) }
func (q priorityQueue[T]) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.setIndex(q.items[i], i)
	q.setIndex(q.items[j], j)
}
func (q *priorityQueue[T]) Push(x any) {
	item := x.(T)
	q.setIndex(item, len(q.items))
	q.items = append(q.items, item)
}
func (q *priorityQueue[T]) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	var zero T
	old[n-1] = zero
	q.setIndex(item, -1) // for safety
	q.items = old[:n-1]
	return item
}

func (h *MinHeap[T]) Len() int    { return h.queue.Len() }
func (h *MinHeap[T]) Push(item T) { heap.Push(&h.queue, item) }
func (h *MinHeap[T]) Pop() T      { return heap.Pop(&h.queue).(T) }
func (h *MinHeap[T]) Peek() T     { return h.queue.items[0] }

// Update restores the heap order after the priority of the item at index changed.
func (h *MinHeap[T]) Update(index int) { heap.Fix(&h.queue, index) }

func (h *MinHeap[T]) PeekAt(index int) T {
	if index >= h.Len() {
		panic("index out of bounds")
	}
	return h.queue.items[index]
}
func (h *MinHeap[T]) Remove(index int) T { return heap.Remove(&h.queue, index).(T) }
func (h *MinHeap[T]) String() string {
	var sb strings.Builder
	for i := 0; i < h.Len(); i++ {
		sb.WriteString(fmt.Sprintf("%v: %v\n", i, h.PeekAt(i)))
	}
	return sb.String()
}

package sequence

// Queue is a FIFO ring buffer that grows on demand.
type Queue[T any] struct {
	items []T
	head  int
	size  int
}

func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{items: make([]T, capacity)}
}

func (q *Queue[T]) Enqueue(value T) {
	if q.items == nil {
		q.items = make([]T, 4)
	}
	if q.size == len(q.items) {
		q.grow()
	}
	q.items[(q.head+q.size)%len(q.items)] = value
	q.size++
}

func (q *Queue[T]) Dequeue() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.size--
	return v, true
}

func (q *Queue[T]) Peek() (T, bool) {
	if q.size == 0 {
		var zero T
		return zero, false
	}
	return q.items[q.head], true
}

// RemoveFunc drops every queued element matching pred, keeping the order of the rest.
func (q *Queue[T]) RemoveFunc(pred func(T) bool) int {
	removed := 0
	n := q.size
	for i := 0; i < n; i++ {
		v, _ := q.Dequeue()
		if pred(v) {
			removed++
			continue
		}
		q.Enqueue(v)
	}
	return removed
}

func (q *Queue[T]) Len() int {
	return q.size
}

func (q *Queue[T]) IsEmpty() bool {
	return q.size == 0
}

func (q *Queue[T]) grow() {
	next := make([]T, len(q.items)*2)
	for i := 0; i < q.size; i++ {
		next[i] = q.items[(q.head+i)%len(q.items)]
	}
	q.items = next
	q.head = 0
}

// Package ringbuf provides a fixed-capacity FIFO buffer. Pushing onto a full
// buffer evicts the oldest element.
package ringbuf

// Ring is a bounded FIFO. It is not safe for concurrent use.
type Ring[T any] struct {
	buf   []T
	start int
	n     int
}

// New returns a ring holding at most capacity elements; capacity is clamped to 1.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v and returns the evicted element, if any.
func (r *Ring[T]) Push(v T) (evicted T, ok bool) {
	if r.n == len(r.buf) {
		evicted = r.buf[r.start]
		r.buf[r.start] = v
		r.start = (r.start + 1) % len(r.buf)
		return evicted, true
	}
	r.buf[(r.start+r.n)%len(r.buf)] = v
	r.n++
	return evicted, false
}

// Len returns the number of stored elements.
func (r *Ring[T]) Len() int { return r.n }

// Cap returns the capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Full reports whether the next Push will evict.
func (r *Ring[T]) Full() bool { return r.n == len(r.buf) }

// At returns the i-th element, oldest first.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.n {
		panic("ringbuf: index out of range")
	}
	return r.buf[(r.start+i)%len(r.buf)]
}

// First returns the oldest element.
func (r *Ring[T]) First() (T, bool) {
	var zero T
	if r.n == 0 {
		return zero, false
	}
	return r.At(0), true
}

// Last returns the newest element.
func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r.n == 0 {
		return zero, false
	}
	return r.At(r.n - 1), true
}

// Values copies the contents oldest first.
func (r *Ring[T]) Values() []T {
	out := make([]T, r.n)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}

// DropWhile removes elements from the front while pred holds.
func (r *Ring[T]) DropWhile(pred func(T) bool) int {
	var zero T
	dropped := 0
	for r.n > 0 && pred(r.buf[r.start]) {
		r.buf[r.start] = zero
		r.start = (r.start + 1) % len(r.buf)
		r.n--
		dropped++
	}
	return dropped
}

// Reset empties the buffer, keeping the capacity.
func (r *Ring[T]) Reset() {
	clear(r.buf)
	r.start, r.n = 0, 0
}

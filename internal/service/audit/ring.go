package audit

// ring is a fixed-capacity buffer that overwrites its oldest element once full.
type ring[T any] struct {
	buf  []T
	head int // next write position
	size int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) push(v T) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

func (r *ring[T]) len() int { return r.size }

// newestFirst copies the retained elements, most recent first.
func (r *ring[T]) newestFirst() []T {
	out := make([]T, 0, r.size)
	for i := 0; i < r.size; i++ {
		idx := (r.head - 1 - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}

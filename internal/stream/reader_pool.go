package stream

import "sync"

// readerPool represents a pool of reusable reader objects.
// A Pool is safe for concurrent use by multiple goroutines.
type readerPool[P BlockPooler] struct {
	pool sync.Pool
}

func newReaderPool[P BlockPooler](s *Stream[P]) *readerPool[P] {
	return &readerPool[P]{
		pool: sync.Pool{
			New: func() any {
				return &Reader[P]{s: s}
			},
		},
	}
}

// Get retrieves a reader from the pool or creates a new one.
func (p *readerPool[P]) Get() *Reader[P] {
	return p.pool.Get().(*Reader[P])
}

// Put returns a reader to the pool for reuse. The closed flag is left
// set; Get clears it through init.
func (p *readerPool[P]) Put(r *Reader[P]) {
	r.gen, r.offset = 0, 0
	p.pool.Put(r)
}

package stream

// View is a zero-copy handle to a stream's consolidated content, tagged
// with the generation of its backing buffer. A view issued before the
// backing buffer was released or replaced fails with [ErrUseAfterRelease]
// instead of reading released memory.
type View[P BlockPooler] struct {
	s   *Stream[P]
	gen uint64
}

// Bytes returns the content the view refers to without copying.
// The slice aliases pooled memory and is valid only until the next
// operation that invalidates the view.
func (v View[P]) Bytes() ([]byte, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	return v.s.large[:v.s.length], nil
}

// Len returns the content length the view refers to.
func (v View[P]) Len() (int64, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	return v.s.length, nil
}

func (v View[P]) check() error {
	if v.s == nil {
		return ErrUseAfterRelease
	}
	if v.s.state == stateDisposed {
		return ErrDisposed
	}
	if v.gen != v.s.gen || v.s.large == nil {
		return ErrUseAfterRelease
	}
	return nil
}

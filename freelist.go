package bufpool

import "sync/atomic"

// freeList is a lock-free LIFO of free buffers, implemented as a
// Treiber stack with compare-and-swap push/pop on an atomic head.
// Each push allocates one node. Pop is ABA-safe under the Go garbage
// collector, which keeps a popped node alive while any CAS still
// references it.
type freeList struct {
	head  atomic.Pointer[freeNode]
	count atomic.Int64
}

type freeNode struct {
	buf  []byte
	next *freeNode
}

// push places buf on the free-list. The count is raised before the
// node is published; a concurrent pop decrements only after its CAS
// succeeds, so the count never reads negative.
func (l *freeList) push(buf []byte) {
	n := &freeNode{buf: buf}
	l.count.Add(1)
	for {
		head := l.head.Load()
		n.next = head
		if l.head.CompareAndSwap(head, n) {
			return
		}
	}
}

// pop removes and returns the most recently pushed buffer,
// or false if the list is empty.
func (l *freeList) pop() ([]byte, bool) {
	for {
		head := l.head.Load()
		if head == nil {
			return nil, false
		}
		if l.head.CompareAndSwap(head, head.next) {
			l.count.Add(-1)
			return head.buf, true
		}
	}
}

// len returns the number of buffers on the list. The value is a
// snapshot: it may briefly overstate the list during a concurrent
// push, but it is never negative.
func (l *freeList) len() int64 {
	return l.count.Load()
}

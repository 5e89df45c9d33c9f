package sched

import "github.com/flier/corert/pkg/rtcore"

// TaskPool recycles *Task[T] instances rather than leaving reuse to the
// garbage collector, for workloads that start many short Tasks back to
// back. Tasks live in a rtcore.Bank for stable indices; checked-in indices
// are kept on the pool's own free stack (Bank.Erase is never called).
// Checkout/Checkin play the role internal/xsync.Pool's Get/Put play for
// non-indexed types.
type TaskPool[T any] struct {
	bank *rtcore.Bank[*Task[T]]
	free []uint32
}

// NewTaskPool returns an empty TaskPool.
func NewTaskPool[T any]() *TaskPool[T] {
	return &TaskPool[T]{bank: rtcore.NewBank[*Task[T]]()}
}

// Checkout returns a Task bound to fn, reusing a checked-in Task instance
// and its bank slot if one is available (the reused Task gets a fresh
// BlockingEvent), along with the handle Checkin needs to return it to the
// pool later.
func (p *TaskPool[T]) Checkout(fn func(*Context) (T, error)) (*Task[T], uint32) {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		t := *p.bank.Get(idx)
		t.rebind(fn)
		return t, idx
	}

	t := NewTask(fn)
	idx := p.bank.Push(t)
	return t, idx
}

// Checkin returns the Task at idx to the pool once its caller is done with
// it (after Await/Result/SyncWait has returned). The Task's fn is cleared
// so a lingering reference to it can't be started again behind the pool's
// back.
func (p *TaskPool[T]) Checkin(idx uint32) {
	t := *p.bank.Get(idx)
	t.fn = nil
	p.free = append(p.free, idx)
}

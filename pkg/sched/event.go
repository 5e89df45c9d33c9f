package sched

import (
	"sync/atomic"
	"time"
)

// busyPollInterval bounds how long a busy wait sleeps between BusyWork
// attempts once a worker's own queues have gone dry, so a waiting thread
// doesn't spin a CPU core at 100% once there's genuinely nothing left to
// help with. Resolves the open question of whether BusyEvent should have
// a bounded backoff in favor of yes.
const busyPollInterval = 50 * time.Microsecond

// WaitEvent is the one-shot binary semaphore contract shared by
// BlockingEvent and BusyEvent, per spec.md §4.9: Notify fires the event
// exactly once, TryAcquire reports without blocking whether it has fired
// yet. Each concrete type then provides its own Wait with the blocking
// strategy that type is named for.
type WaitEvent interface {
	Notify()
	TryAcquire() bool
}

// BlockingEvent is a binary semaphore whose Wait parks the calling
// goroutine until Notify is called, the Go analogue of the original
// scheduler's blocking event: "wait parks the caller until notify is
// called".
type BlockingEvent struct {
	done  chan struct{}
	fired atomic.Bool
}

// NewBlockingEvent returns an event that has not fired yet.
func NewBlockingEvent() *BlockingEvent {
	return &BlockingEvent{done: make(chan struct{})}
}

// Notify fires the event. Further calls are no-ops.
func (e *BlockingEvent) Notify() {
	if e.fired.CompareAndSwap(false, true) {
		close(e.done)
	}
}

// TryAcquire reports whether Notify has been called, without blocking.
func (e *BlockingEvent) TryAcquire() bool { return e.fired.Load() }

// Wait blocks until Notify is called. Any number of goroutines may Wait
// concurrently; all of them unblock once Notify fires.
func (e *BlockingEvent) Wait() { <-e.done }

var _ WaitEvent = (*BlockingEvent)(nil)

// BusyEvent is a binary semaphore whose Wait keeps a worker's own queues
// moving instead of parking, per spec.md §4.9: "wait(worker, scheduler)
// loops calling scheduler.busy_work(worker) until try_acquire succeeds.
// Used to avoid deadlock when a worker must wait for a task whose
// continuation may land on the same worker."
type BusyEvent struct {
	fired atomic.Bool
}

// NewBusyEvent returns an event that has not fired yet.
func NewBusyEvent() *BusyEvent { return &BusyEvent{} }

// Notify fires the event.
func (e *BusyEvent) Notify() { e.fired.Store(true) }

// TryAcquire reports whether Notify has been called, without blocking.
func (e *BusyEvent) TryAcquire() bool { return e.fired.Load() }

// Wait pumps worker w's own queues via s.BusyWork until the event fires,
// falling back to a short sleep once w has nothing left to do.
func (e *BusyEvent) Wait(s *Scheduler, w WorkerID) { busyWaitOn(e, s, w) }

var _ WaitEvent = (*BusyEvent)(nil)

// busyWaitOn is the loop both BusyEvent.Wait and Task.SyncWaitBusy run:
// any WaitEvent can be busy-waited on by a worker willing to service its
// own queues while it waits.
func busyWaitOn(ev WaitEvent, s *Scheduler, w WorkerID) {
	for !ev.TryAcquire() {
		if !s.BusyWork(w) {
			time.Sleep(busyPollInterval)
		}
	}
}

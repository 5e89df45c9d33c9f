package sched

import "github.com/flier/corert/pkg/res"

// Task is a deferred unit of work: constructing one does nothing until
// Start or StartOn submits it to a Scheduler. It mirrors the original
// allocator library's co_task<R>, whose "initial state is suspended", and
// its completion signal is built directly on a BlockingEvent: run()
// notifies it once the task's function returns, and any number of Await
// callers Wait on it, so completion is observed correctly regardless of
// whether Await is called before or after the task finishes running.
type Task[T any] struct {
	fn    func(*Context) (T, error)
	event *BlockingEvent

	result T
	err    error
}

// NewTask returns a Task that will run fn once started.
func NewTask[T any](fn func(*Context) (T, error)) *Task[T] {
	return &Task[T]{fn: fn, event: NewBlockingEvent()}
}

// rebind reassigns a completed Task to run fn again, for reuse out of a
// TaskPool. It must only be called on a Task that every prior Await has
// already returned from.
func (t *Task[T]) rebind(fn func(*Context) (T, error)) {
	t.fn = fn
	t.event = NewBlockingEvent()
	var zero T
	t.result, t.err = zero, nil
}

// Start submits the task to run on group. It may only be called once.
func (t *Task[T]) Start(s *Scheduler, group GroupID) error {
	return s.Submit(group, t.run)
}

// StartOn submits the task to run on a specific worker's exclusive queue.
// It may only be called once.
func (t *Task[T]) StartOn(s *Scheduler, w WorkerID) error {
	return s.SubmitTo(w, t.run)
}

func (t *Task[T]) run(ctx *Context) {
	t.result, t.err = t.fn(ctx)
	t.event.Notify()
}

// Await blocks the calling goroutine until the task completes and
// returns its result.
func (t *Task[T]) Await() (T, error) {
	t.event.Wait()
	return t.result, t.err
}

// Result collapses Await's two return values into a single res.Result,
// for callers that prefer to thread errors through pkg/res rather than a
// second return value.
func (t *Task[T]) Result() res.Result[T] {
	return res.Wrap(t.Await())
}

// SyncWait is Await under another name, grounded on co_task::sync_wait_result's
// blocking_event overload: it parks the calling OS thread (not a worker)
// until the task completes.
func (t *Task[T]) SyncWait() (T, error) { return t.Await() }

// SyncWaitBusy waits for the task to complete the way
// co_task::sync_wait_result's busywork_event overload does: the calling
// goroutine must itself be worker w (or willing to run w's work on its
// behalf), and keeps pumping w's queues via Scheduler.BusyWork instead of
// parking outright, so a worker blocked awaiting a task it's also
// responsible for servicing doesn't deadlock the pool.
func (t *Task[T]) SyncWaitBusy(s *Scheduler, w WorkerID) (T, error) {
	busyWaitOn(t.event, s, w)
	return t.result, t.err
}

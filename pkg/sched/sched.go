// Package sched implements a cooperative, work-stealing task scheduler
// over a fixed pool of goroutine workers.
//
// A Scheduler owns N workers, numbered 0..N-1. Clients partition that pool
// into one or more Groups (possibly overlapping ranges of worker ids,
// each with its own priority) and Submit work items into a group; a
// worker idle within a group first drains its own queues in priority
// order, then steals from its group-mates before parking. Task[T] and
// Sequence[T] layer a coroutine-flavoured deferred/eager execution model
// on top of plain work items, mirroring the original allocator library's
// co_task/co_sequence pair; a Task's completion is a BlockingEvent, which
// any number of goroutines may Await concurrently.
//
// This is the scheduler-side counterpart to package arena: both are
// built from the same index-based primitives in package rtcore.
package sched

import (
	"sync/atomic"

	"github.com/flier/corert/pkg/rtcore"
)

// WorkerID identifies one of a Scheduler's fixed pool of workers.
type WorkerID uint32

// GroupID identifies a Group created by Scheduler.CreateGroup.
type GroupID uint32

// WorkItem is a unit of schedulable work. ctx identifies which worker and
// scheduler it is running on, so a work item can itself submit further
// work (fan-out).
type WorkItem func(ctx *Context)

// Context is passed to every running WorkItem.
type Context struct {
	worker    WorkerID
	scheduler *Scheduler
}

// Worker returns the id of the worker executing this item.
func (c *Context) Worker() WorkerID { return c.worker }

// Scheduler returns the scheduler running this item.
func (c *Context) Scheduler() *Scheduler { return c.scheduler }

// Resubmit schedules item to run after the current one, preferring the
// calling worker's own local ring per spec.md §4.7 step 1. The local ring
// is SPSC (only this worker ever pushes to it, since Resubmit may only be
// called from within a WorkItem running on this worker) and isn't visible
// to stealing, so self-resubmitted continuations stay cheap to enqueue
// and are never taken by another worker. If the local ring is full,
// Resubmit falls back to SubmitTo, per SPEC_FULL.md's queue-full policy.
func (c *Context) Resubmit(item WorkItem) error {
	wk := c.scheduler.workers[c.worker]
	if wk.local.PushBack(item) {
		return nil
	}
	return c.scheduler.SubmitTo(c.worker, item)
}

const localRingSize = 32 // acl::detail::max_local_work_item, two cache lines' worth.

type membership struct {
	group      *Group
	localIndex uint32
}

type worker struct {
	id        WorkerID
	exclusive *rtcore.SharedQueue[WorkItem]
	local     *rtcore.Ring[WorkItem]
	wake      chan struct{}
	quitting  atomic.Bool

	// memberships, sorted by descending Group.priority, set once before
	// BeginExecution and read-only afterward.
	memberships []membership

	pinOSThread bool
	osThreadID  int64
}

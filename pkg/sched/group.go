package sched

import (
	"sync/atomic"

	"github.com/flier/corert/pkg/rtcore"
)

const workGroupQueueSize = 2048 // acl::detail::work_queue_traits::pool_size_v

// Group is a named, prioritized view over a contiguous range of a
// Scheduler's workers, mirroring acl::detail::workgroup. Submit round-
// robins across the group's own per-worker shared queues; a worker
// belonging to several groups drains them in descending priority order
// before it starts stealing.
type Group struct {
	id       GroupID
	name     string
	start    WorkerID
	count    uint32
	priority int

	queues     []*rtcore.SharedQueue[WorkItem]
	pushOffset atomic.Uint32
}

// GroupOption configures a Group at CreateGroup time.
type GroupOption func(*groupConfig)

type groupConfig struct {
	name        string
	pinOSThread bool
}

// WithGroupName labels a group for diagnostics and for Scheduler.GroupByName.
func WithGroupName(name string) GroupOption {
	return func(c *groupConfig) { c.name = name }
}

// WithPinOSThread locks each of the group's worker goroutines to its own
// OS thread, via runtime.LockOSThread, from the moment BeginExecution
// starts it until it exits after EndExecution.
// Supplements the original library's thread-affinity support, useful for
// workers that call into thread-sensitive APIs (graphics contexts,
// thread-local allocators).
func WithPinOSThread(pin bool) GroupOption {
	return func(c *groupConfig) { c.pinOSThread = pin }
}

func newGroup(id GroupID, start WorkerID, count uint32, priority int, cfg groupConfig) *Group {
	g := &Group{
		id:       id,
		name:     cfg.name,
		start:    start,
		count:    count,
		priority: priority,
		queues:   make([]*rtcore.SharedQueue[WorkItem], count),
	}
	for i := range g.queues {
		g.queues[i] = rtcore.NewSharedQueue[WorkItem](workGroupQueueSize)
	}
	return g
}

// Name returns the group's diagnostic label, or "" if none was given.
func (g *Group) Name() string { return g.name }

// Range returns the [start, start+count) worker ids this group spans.
func (g *Group) Range() (start WorkerID, count uint32) { return g.start, g.count }

// Priority returns the group's scheduling priority; higher runs first
// when a worker has work available in more than one of its groups.
func (g *Group) Priority() int { return g.priority }

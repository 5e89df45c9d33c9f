package sched

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/timandy/routine"

	"github.com/flier/corert/internal/debug"
	"github.com/flier/corert/internal/xsync"
	"github.com/flier/corert/pkg/either"
	"github.com/flier/corert/pkg/rtcore"
)

// parkTimeout bounds how long an idle worker sleeps on its wake channel
// before re-scanning its queues on its own. It guards against a wake
// notification racing a worker's just-about-to-park check; the original
// scheduler doesn't need this because std::binary_semaphore::release is
// never lost, but a buffered Go channel send can race a closed scheduler.
const parkTimeout = 2 * time.Millisecond

// Scheduler owns a fixed pool of worker goroutines and the Groups that
// partition them. The zero value is not usable; construct with New.
type Scheduler struct {
	workers []*worker
	groups  map[GroupID]*Group
	byName  *nameIndex
	nextGrp atomic.Uint32

	running atomic.Bool
	wg      sync.WaitGroup

	// thieves records every worker that has ever successfully stolen a
	// work item from a group-mate, for diagnostics (WorkersThatStole).
	thieves xsync.Set[WorkerID]
}

// New returns a Scheduler with workerCount workers, none yet assigned to
// any group. Call CreateGroup to partition the pool, then BeginExecution
// to start the worker goroutines.
func New(workerCount uint32) *Scheduler {
	s := &Scheduler{
		workers: make([]*worker, workerCount),
		groups:  make(map[GroupID]*Group),
		byName:  newNameIndex(int(workerCount) + 1),
	}
	for i := range s.workers {
		s.workers[i] = &worker{
			id:        WorkerID(i),
			exclusive: rtcore.NewSharedQueue[WorkItem](workGroupQueueSize),
			local:     rtcore.NewRing[WorkItem](localRingSize),
			wake:      make(chan struct{}, 1),
		}
	}
	return s
}

// WorkerCount returns the fixed number of workers in the pool.
func (s *Scheduler) WorkerCount() int { return len(s.workers) }

// CreateGroup partitions workers [start, start+count) into a new Group at
// the given priority (higher runs first). Groups may overlap: a worker
// belonging to several groups drains them highest-priority-first.
func (s *Scheduler) CreateGroup(priority int, start WorkerID, count uint32, opts ...GroupOption) (GroupID, error) {
	if uint32(start)+count > uint32(len(s.workers)) {
		return 0, ErrUnknownWorker
	}

	var cfg groupConfig
	for _, apply := range opts {
		apply(&cfg)
	}

	id := GroupID(s.nextGrp.Add(1))
	g := newGroup(id, start, count, priority, cfg)
	s.groups[id] = g
	if cfg.name != "" {
		s.byName.Put(cfg.name, id)
	}

	for i := uint32(0); i < count; i++ {
		w := s.workers[uint32(start)+i]
		w.memberships = append(w.memberships, membership{group: g, localIndex: i})
		if cfg.pinOSThread {
			w.pinOSThread = true
		}
	}

	for _, w := range s.workers[start : uint32(start)+count] {
		sort.SliceStable(w.memberships, func(i, j int) bool {
			return w.memberships[i].group.priority > w.memberships[j].group.priority
		})
	}

	return id, nil
}

// GroupByName resolves a group created with WithGroupName, via a
// generically-hashed lookup table rather than Go's built-in map, the way
// the rest of this module favors the example corpus's generic containers
// over ad-hoc stdlib collections.
func (s *Scheduler) GroupByName(name string) (GroupID, bool) {
	return s.byName.Get(name)
}

// BeginExecution spawns one goroutine per worker and starts them pulling
// work. It must be called exactly once, after all groups are created.
func (s *Scheduler) BeginExecution() {
	s.running.Store(true)
	s.wg.Add(len(s.workers))
	for _, w := range s.workers {
		w := w
		go s.runWorker(w)
	}
}

// EndExecution signals every worker to drain and stop once no more work
// is available, then blocks until all of them have exited.
func (s *Scheduler) EndExecution() {
	s.running.Store(false)
	for _, w := range s.workers {
		w.quitting.Store(true)
		wake(w)
	}
	s.wg.Wait()
}

func (s *Scheduler) runWorker(w *worker) {
	defer s.wg.Done()

	if w.pinOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	w.osThreadID = routine.Goid()

	ctx := &Context{worker: w.id, scheduler: s}

	for {
		if outcome, ok := pullOnce(w, &s.thieves); ok {
			runItem(ctx, either.Reduce(outcome,
				func(item WorkItem) WorkItem { return item },
				func(item WorkItem) WorkItem { return item },
			))
			continue
		}
		if w.quitting.Load() {
			return
		}
		select {
		case <-w.wake:
		case <-time.After(parkTimeout):
		}
	}
}

func runItem(ctx *Context, item WorkItem) {
	defer func() {
		if r := recover(); r != nil {
			debug.Log([]any{"worker %d", ctx.worker}, "sched.runItem", "work item panicked: %v", r)
		}
	}()
	item(ctx)
}

// popOutcome models a single pull result: Left is a work item the worker
// found on its own queues (local ring, exclusive queue, or own group),
// Right is one taken from a group-mate's queue by stealing. Callers that
// only care about running the item can Reduce it away; WorkersThatStole
// derives from the Right case.
type popOutcome = either.Either[WorkItem, WorkItem]

// pullOnce tries, in order, w's local ring, its exclusive queue, its own
// group queues in priority order, and finally stealing from its group-
// mates' queues in the same priority order. A successful steal marks w in
// thieves and is reported as the Right case of the returned popOutcome.
func pullOnce(w *worker, thieves *xsync.Set[WorkerID]) (popOutcome, bool) {
	if item, ok := w.local.PopFront(); ok {
		return either.Left[WorkItem, WorkItem](item), true
	}
	if item, ok := w.exclusive.PopFront(); ok {
		return either.Left[WorkItem, WorkItem](item), true
	}
	for _, m := range w.memberships {
		if item, ok := m.group.queues[m.localIndex].PopFront(); ok {
			return either.Left[WorkItem, WorkItem](item), true
		}
	}
	for _, m := range w.memberships {
		n := m.group.count
		for off := uint32(1); off < n; off++ {
			victim := (m.localIndex + off) % n
			if item, ok := m.group.queues[victim].PopFront(); ok {
				thieves.Store(w.id)
				return either.Right[WorkItem, WorkItem](item), true
			}
		}
	}
	return popOutcome{}, false
}

// WorkersThatStole returns, in no particular order, every worker id that
// has ever pulled a work item out of a group-mate's queue rather than its
// own, since BeginExecution.
func (s *Scheduler) WorkersThatStole() []WorkerID {
	var ids []WorkerID
	for id := range s.thieves.All() {
		ids = append(ids, id)
	}
	return ids
}

// BusyWork runs at most one pending item for worker w without blocking,
// reporting whether it found anything to do. It's the primitive BusyEvent
// and Task.SyncWaitBusy build on: a thread that would otherwise block
// waiting for a result instead keeps that worker's own queues moving.
func (s *Scheduler) BusyWork(w WorkerID) bool {
	wk := s.workers[w]
	outcome, ok := pullOnce(wk, &s.thieves)
	if !ok {
		return false
	}
	item := either.Reduce(outcome,
		func(item WorkItem) WorkItem { return item },
		func(item WorkItem) WorkItem { return item },
	)
	runItem(&Context{worker: w, scheduler: s}, item)
	return true
}

// Submit pushes item onto group's round-robined per-worker queues and
// wakes the chosen worker. It returns ErrSubmitAfterShutdown,
// ErrUnknownGroup or ErrQueueFull.
func (s *Scheduler) Submit(group GroupID, item WorkItem) error {
	if !s.running.Load() {
		return ErrSubmitAfterShutdown
	}
	g, ok := s.groups[group]
	if !ok {
		return ErrUnknownGroup
	}

	idx := g.pushOffset.Add(1) % g.count
	if !g.queues[idx].PushBack(item) {
		return ErrQueueFull
	}
	wake(s.workers[uint32(g.start)+idx])
	return nil
}

// SubmitTo pushes item onto worker w's exclusive queue, bypassing group
// round-robin, and wakes it. Because the exclusive queue is never scanned
// by pullOnce's steal loop, nothing a group-mate does can ever help drain
// it; use SubmitToGroupWorker when the point is for other workers to be
// able to steal the work back off an overloaded one.
func (s *Scheduler) SubmitTo(w WorkerID, item WorkItem) error {
	if !s.running.Load() {
		return ErrSubmitAfterShutdown
	}
	if int(w) >= len(s.workers) {
		return ErrUnknownWorker
	}
	wk := s.workers[w]
	if !wk.exclusive.PushBack(item) {
		return ErrQueueFull
	}
	wake(wk)
	return nil
}

// SubmitToGroupWorker pushes item directly onto the group-queue slot
// belonging to the worker at localIndex within group, bypassing the
// group's round-robin push offset entirely. Unlike SubmitTo's exclusive
// queue, a group-queue slot is exactly what pullOnce's steal loop scans,
// so this is how to deliberately overload one worker and let its
// group-mates steal the overflow back, per spec.md §8's steal scenario.
func (s *Scheduler) SubmitToGroupWorker(group GroupID, localIndex uint32, item WorkItem) error {
	if !s.running.Load() {
		return ErrSubmitAfterShutdown
	}
	g, ok := s.groups[group]
	if !ok {
		return ErrUnknownGroup
	}
	if localIndex >= g.count {
		return ErrUnknownWorker
	}
	if !g.queues[localIndex].PushBack(item) {
		return ErrQueueFull
	}
	wake(s.workers[uint32(g.start)+localIndex])
	return nil
}

func wake(w *worker) {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

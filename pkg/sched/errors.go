package sched

import "errors"

// ErrQueueFull is returned by Submit/SubmitTo/SubmitToGroupWorker when the
// target queue has no free capacity. Queues are fixed-size (spec.md's
// bounded-memory requirement); callers that need back-pressure should
// retry or shed load. Context.Resubmit falls back to SubmitTo instead of
// surfacing this when its local ring push fails.
var ErrQueueFull = errors.New("sched: work queue is full")

// ErrSubmitAfterShutdown is returned by Submit/SubmitTo/SubmitToGroupWorker
// whenever the scheduler is not running: before BeginExecution and once
// EndExecution has been called.
var ErrSubmitAfterShutdown = errors.New("sched: submit after shutdown")

// ErrUnknownGroup is returned by Submit and SubmitToGroupWorker for a
// GroupID that was never created. GroupByName reports an unknown name
// through its bool result instead.
var ErrUnknownGroup = errors.New("sched: unknown group")

// ErrUnknownWorker is returned by SubmitTo for a WorkerID, or
// SubmitToGroupWorker for a localIndex, outside the relevant pool's range.
var ErrUnknownWorker = errors.New("sched: unknown worker")

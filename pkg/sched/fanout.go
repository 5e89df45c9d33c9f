package sched

import "github.com/flier/corert/pkg/either"

// FanOut submits one Task per fn onto group and waits for all of them,
// returning one either.Either per input in the same order: Left holds the
// error, Right holds the value. It's a convenience built on Task/Await
// for the common "scatter N, gather N" shape.
func FanOut[T any](s *Scheduler, group GroupID, fns []func(*Context) (T, error)) ([]either.Either[error, T], error) {
	tasks := make([]*Task[T], len(fns))
	for i, fn := range fns {
		tasks[i] = NewTask(fn)
		if err := tasks[i].Start(s, group); err != nil {
			return nil, err
		}
	}

	results := make([]either.Either[error, T], len(tasks))
	for i, t := range tasks {
		v, err := t.Await()
		if err != nil {
			results[i] = either.Left[error, T](err)
		} else {
			results[i] = either.Right[error, T](v)
		}
	}
	return results, nil
}

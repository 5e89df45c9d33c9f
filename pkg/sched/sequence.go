package sched

// Sequence is the eager counterpart to Task: constructing one immediately
// submits it to run, mirroring the original library's co_sequence<R>
// ("use a sequence task to [be] immediately executed").
type Sequence[T any] struct {
	*Task[T]
}

// StartSequence submits fn to run on group immediately and returns a
// handle to await its result.
func StartSequence[T any](s *Scheduler, group GroupID, fn func(*Context) (T, error)) (*Sequence[T], error) {
	t := NewTask(fn)
	if err := t.Start(s, group); err != nil {
		return nil, err
	}
	return &Sequence[T]{Task: t}, nil
}

// StartSequenceOn is StartSequence onto a specific worker's exclusive
// queue rather than a group.
func StartSequenceOn[T any](s *Scheduler, w WorkerID, fn func(*Context) (T, error)) (*Sequence[T], error) {
	t := NewTask(fn)
	if err := t.StartOn(s, w); err != nil {
		return nil, err
	}
	return &Sequence[T]{Task: t}, nil
}

package archway

// Command is one deferred mutation against a World, captured as a
// closure so CommandQueue doesn't need a case per operation kind.
type Command func(*World) error

// CommandQueue is a lightweight alternative to a Stage for callers who
// only need ordered replay of a handful of mutations (rather than a
// full shadow column store per touched table): queue up New/Add/Remove/
// Delete calls while iterating, then flush them in order once the
// world is no longer locked.
type CommandQueue struct {
	commands []Command
}

// Enqueue appends cmd to the queue.
func (q *CommandQueue) Enqueue(cmd Command) {
	q.commands = append(q.commands, cmd)
}

// QueueNew enqueues World.New with the given initial component set,
// calling onCreated with the freshly allocated handle once applied.
func (q *CommandQueue) QueueNew(onCreated func(Handle), components ...Handle) {
	q.Enqueue(func(w *World) error {
		h, err := w.New(components...)
		if err != nil {
			return err
		}
		if onCreated != nil {
			onCreated(h)
		}
		return nil
	})
}

// QueueAdd enqueues World.Add(e, ids...).
func (q *CommandQueue) QueueAdd(e Handle, ids ...Handle) {
	q.Enqueue(func(w *World) error { return w.Add(e, ids...) })
}

// QueueRemove enqueues World.Remove(e, ids...).
func (q *CommandQueue) QueueRemove(e Handle, ids ...Handle) {
	q.Enqueue(func(w *World) error { return w.Remove(e, ids...) })
}

// QueueDelete enqueues World.Delete(e).
func (q *CommandQueue) QueueDelete(e Handle) {
	q.Enqueue(func(w *World) error { return w.Delete(e) })
}

// ProcessAll applies every queued command to w in order and clears the
// queue, stopping (with the remaining commands still queued) at the
// first error. Returns immediately without clearing if w is mid-
// iteration, since structural mutation is rejected until iteration
// ends.
func (q *CommandQueue) ProcessAll(w *World) error {
	if w.isIterating() {
		return nil
	}
	for i, cmd := range q.commands {
		if err := cmd(w); err != nil {
			q.commands = q.commands[i:]
			return err
		}
	}
	q.commands = q.commands[:0]
	return nil
}

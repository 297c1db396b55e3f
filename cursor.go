package archway

import "iter"

// Rows returns a range-over-func sequence of every row matching q,
// offset/limit applied exactly as Iter/Next apply them: a convenience
// wrapper for callers who'd rather range over rows than drive Next
// themselves.
func (w *World) Rows(q *queryImpl, offset, limit int) iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		it := w.Iter(q, offset, limit)
		n := 0
		for {
			slice, ok := it.Next()
			if !ok {
				return
			}
			for i := 0; i < slice.Count; i++ {
				if !yield(n, slice.Row(i)) {
					it.Cancel()
					return
				}
				n++
			}
		}
	}
}

// Entities returns a range-over-func sequence of every entity handle
// matching q.
func (w *World) Entities(q *queryImpl, offset, limit int) iter.Seq2[int, Handle] {
	return func(yield func(int, Handle) bool) {
		it := w.Iter(q, offset, limit)
		n := 0
		for {
			slice, ok := it.Next()
			if !ok {
				return
			}
			for i := 0; i < slice.Count; i++ {
				if !yield(n, slice.Entity(i)) {
					it.Cancel()
					return
				}
				n++
			}
		}
	}
}

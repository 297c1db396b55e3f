package archway

// Row identifies one entity's storage position: the table it lives in
// and its row within that table's columns. AccessibleComponent[T] uses
// it to fetch a typed pointer without going through the entity
// directory.
type Row struct {
	Table *tableNode
	Index int
}

// Slice is one contiguous run of rows from a single table, the unit
// iteration yields.
type Slice struct {
	World *World
	Table *tableNode
	First int
	Count int

	binding *binding
}

// Entity returns the handle at slice-relative position i.
func (s Slice) Entity(i int) Handle {
	return *s.World.handleAcc.Get(s.First+i, s.Table.table)
}

// Entities materialises every handle in the slice.
func (s Slice) Entities() []Handle {
	out := make([]Handle, s.Count)
	for i := range out {
		out[i] = s.Entity(i)
	}
	return out
}

// Row returns the Row for slice-relative position i.
func (s Slice) Row(i int) Row {
	return Row{Table: s.Table, Index: s.First + i}
}

// Component returns the concrete component id chosen for signature
// column pos (useful when the column was an OR).
func (s Slice) Component(pos int) Handle {
	if pos < 0 || pos >= len(s.binding.components) {
		return 0
	}
	return s.binding.components[pos]
}

// Reference returns the cached pointer for signature column pos if it
// resolved to a non-self source, or nil if the column is owned/absent.
func (s Slice) Reference(pos int) any {
	if pos < 0 || pos >= len(s.binding.columns) {
		return nil
	}
	col := s.binding.columns[pos]
	if col >= 0 {
		return nil
	}
	refIdx := -col - 1
	if refIdx < 0 || refIdx >= len(s.binding.references) {
		return nil
	}
	return s.binding.references[refIdx].cell
}

// Present reports whether signature column pos resolved to data for
// this slice's table (false only for an absent OPTIONAL column).
func (s Slice) Present(pos int) bool {
	if pos < 0 || pos >= len(s.binding.columns) {
		return false
	}
	return s.binding.columns[pos] != 0
}

// Iter is the pull-style cursor over a query's matched tables. limit < 0
// means unlimited.
type Iter struct {
	q        *queryImpl
	offset   int
	limit    int
	tableIdx int
	done     bool
	locked   bool

	// InterruptedBy is set by the caller from a callback's return value
	// to terminate iteration early.
	InterruptedBy Handle
}

// Iter starts an iteration over q, first re-resolving any stale
// reference cache and re-matching any tables created since the last
// should-match pass. While an Iter is live, structural mutation of the
// main stage (New/Add/Remove/Delete) is rejected with IteratingError;
// route those through a Stage instead.
//
// limit follows spec §8's boundary law literally: limit == 0 yields no
// slices at all (not "unlimited" — that reading of a zero limit is a
// common convention elsewhere but is explicitly excluded here). Pass a
// negative limit for "no cap"; a positive limit truncates the last
// slice and ends iteration once that many rows have been yielded.
func (w *World) Iter(q *queryImpl, offset, limit int) *Iter {
	if w.shouldMatch {
		for _, lq := range w.liveQueries {
			lq.rematch()
		}
		w.shouldMatch = false
	}
	if w.shouldResolve {
		for _, lq := range w.liveQueries {
			lq.refreshReferences()
		}
		q.refreshReferences()
		w.shouldResolve = false
	}
	q.world.lockIterating()
	it := &Iter{q: q, offset: offset, limit: limit, locked: true}
	if limit == 0 {
		it.finish()
	}
	return it
}

// finish releases this Iter's hold on the main stage's iterating lock,
// idempotent across repeated calls once exhausted or interrupted.
func (it *Iter) finish() {
	if it.locked {
		it.q.world.unlockIterating()
		it.locked = false
	}
	it.done = true
}

// Cancel stops the iteration early and releases its hold on the main
// stage's iterating lock. Callers that break out of a Next loop before
// it naturally exhausts (e.g. a range-over-func consumer that stops
// early) must call Cancel, or the main stage stays locked against
// structural mutation for the rest of the World's life.
func (it *Iter) Cancel() {
	it.finish()
}

// Next yields the next row slice, honouring offset/limit across tables:
// offset consumes whole tables until exhausted, then a partial first
// slice; limit truncates the last slice and ends iteration.
func (it *Iter) Next() (Slice, bool) {
	if it.done {
		return Slice{}, false
	}
	if it.InterruptedBy != 0 {
		it.finish()
		return Slice{}, false
	}
	for it.tableIdx < len(it.q.ordered) {
		b := it.q.ordered[it.tableIdx]
		length := b.table.table.Length()
		if length == 0 {
			it.tableIdx++
			continue
		}
		if it.offset >= length {
			it.offset -= length
			it.tableIdx++
			continue
		}
		first := it.offset
		it.offset = 0
		count := length - first
		if it.limit >= 0 && count >= it.limit {
			count = it.limit
			it.finish()
		}
		if it.limit >= 0 {
			it.limit -= count
		}
		it.tableIdx++
		if count == 0 {
			continue
		}
		return Slice{World: it.q.world, Table: b.table, First: first, Count: count, binding: b}, true
	}
	it.finish()
	return Slice{}, false
}

package archway

// CountWFilter counts every main-stage entity matching sig, using the
// same table-matching machinery as a live query rather than the
// historical unreachable-counter path some generations of this design
// carried: it drives a throwaway query through Iter and sums slice
// lengths.
func (w *World) CountWFilter(sig Signature) int {
	q := newQueryImpl(w, sig)
	total := 0
	it := w.Iter(q, 0, -1)
	for {
		slice, ok := it.Next()
		if !ok {
			return total
		}
		total += slice.Count
	}
}

// DeleteWFilter deletes every main-stage entity matching sig. Every
// matched handle is collected first, and the deletions run only after
// the iteration has ended and released the main stage.
func (w *World) DeleteWFilter(sig Signature) error {
	q := newQueryImpl(w, sig)
	var victims []Handle
	it := w.Iter(q, 0, -1)
	for {
		slice, ok := it.Next()
		if !ok {
			break
		}
		victims = append(victims, slice.Entities()...)
	}
	for _, e := range victims {
		if err := w.Delete(e); err != nil {
			return err
		}
	}
	return nil
}

// DeleteWFilter is intentionally unsupported on a stage: the source's
// behaviour for an OnRemove fired during a whole-table clear on a
// non-main stage is unspecified, so this surfaces as an explicit error
// rather than guessing at merge-time semantics.
func (s *Stage) DeleteWFilter(sig Signature) error {
	return InvalidArgumentError{Detail: "DeleteWFilter is unsupported on a stage; call it on the main World"}
}

package archway

import "testing"

func TestDirectoryGetOrCreateIdempotent(t *testing.T) {
	d := NewDirectory()
	rec1, isNew1 := d.GetOrCreate(5)
	if !isNew1 {
		t.Fatal("expected first GetOrCreate to report isNew")
	}
	rec2, isNew2 := d.GetOrCreate(5)
	if isNew2 {
		t.Error("expected second GetOrCreate for the same handle to report !isNew")
	}
	if rec1 != rec2 {
		t.Error("expected GetOrCreate to return a stable *Record for the same handle")
	}
}

func TestDirectoryGetMissingIsNil(t *testing.T) {
	d := NewDirectory()
	if d.Get(123) != nil {
		t.Error("expected Get on an unseen handle to return nil")
	}
}

func TestDirectoryRemoveClearsLookup(t *testing.T) {
	d := NewDirectory()
	d.GetOrCreate(1)
	d.Remove(1)
	if d.Get(1) != nil {
		t.Error("expected Get after Remove to return nil")
	}
	if d.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after Remove", d.Count())
	}
}

func TestDirectoryRemoveAbsentIsNoOp(t *testing.T) {
	d := NewDirectory()
	d.Remove(999) // must not panic
}

func TestDirectoryCountTracksLiveEntries(t *testing.T) {
	d := NewDirectory()
	d.GetOrCreate(1)
	d.GetOrCreate(2)
	d.GetOrCreate(3)
	if d.Count() != 3 {
		t.Errorf("Count() = %d, want 3", d.Count())
	}
	d.Remove(2)
	if d.Count() != 2 {
		t.Errorf("Count() after Remove = %d, want 2", d.Count())
	}
}

func TestDirectoryEachVisitsAllLive(t *testing.T) {
	d := NewDirectory()
	d.GetOrCreate(1)
	d.GetOrCreate(2)
	d.Remove(1)
	seen := map[Handle]bool{}
	d.Each(func(h Handle, rec *Record) { seen[h] = true })
	if len(seen) != 1 || !seen[2] {
		t.Errorf("Each visited %v, want only {2}", seen)
	}
}

func TestRecordEmptyBeforePlacement(t *testing.T) {
	d := NewDirectory()
	rec, _ := d.GetOrCreate(1)
	if !rec.Empty() {
		t.Error("expected a freshly created record to be Empty")
	}
	if rec.RowIndex() != -1 {
		t.Errorf("RowIndex() on empty record = %d, want -1", rec.RowIndex())
	}
	if rec.Row() != 0 {
		t.Errorf("Row() on empty record = %d, want 0", rec.Row())
	}
}

func TestRecordWatchedFlag(t *testing.T) {
	rec := &Record{}
	if rec.Watched() {
		t.Error("expected a fresh record to be unwatched")
	}
	rec.SetWatched(true)
	if !rec.Watched() {
		t.Error("expected SetWatched(true) to mark the record watched")
	}
}

func TestStagedDirectoryGetOrCreateAndClear(t *testing.T) {
	d := newStagedDirectory()
	rec := d.getOrCreate(7)
	if _, ok := d.get(7); !ok {
		t.Fatal("expected get to find the just-created record")
	}
	d.removeOnMerge[7] = true
	d.clear()
	if _, ok := d.get(7); ok {
		t.Error("expected clear to drop all records")
	}
	if len(d.removeOnMerge) != 0 {
		t.Error("expected clear to reset removeOnMerge")
	}
	_ = rec
}

package archway

import "testing"

type commitPos struct{ X, Y float64 }
type commitVel struct{ X, Y float64 }

func TestAddRemoveCycle(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[commitPos](w)
	vel := NewComponent[commitVel](w)

	var addFired, removeFired int
	w.reactive.OnAdd(vel.ID, func(Handle, any) { addFired++ })
	w.reactive.OnRemove(pos.ID, func(Handle, any) { removeFired++ })

	e1, err := w.New(pos.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Add(e1, vel.ID); err != nil {
		t.Fatal(err)
	}
	if addFired != 1 {
		t.Errorf("OnAdd(vel) fired %d times, want 1", addFired)
	}
	if err := w.Remove(e1, pos.ID); err != nil {
		t.Fatal(err)
	}
	if removeFired != 1 {
		t.Errorf("OnRemove(pos) fired %d times, want 1", removeFired)
	}

	if _, err := pos.GetFromEntity(w, e1); err == nil {
		t.Error("expected error getting removed component")
	}
	if _, err := vel.GetFromEntity(w, e1); err != nil {
		t.Errorf("expected vel still present: %v", err)
	}
}

func TestAddAlreadyPresentIsNoOp(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[commitPos](w)
	var fired int
	w.reactive.OnAdd(pos.ID, func(Handle, any) { fired++ })

	e, err := w.New(pos.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Add(e, pos.ID); err != nil {
		t.Fatal(err)
	}
	if fired != 0 {
		t.Errorf("OnAdd fired %d times for an already-owned component, want 0", fired)
	}
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[commitPos](w)
	vel := NewComponent[commitVel](w)
	var fired int
	w.reactive.OnRemove(vel.ID, func(Handle, any) { fired++ })

	e, err := w.New(pos.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Remove(e, vel.ID); err != nil {
		t.Fatal(err)
	}
	if fired != 0 {
		t.Errorf("OnRemove fired %d times for an absent component, want 0", fired)
	}
}

func TestInheritOverrideFromBase(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[commitPos](w)

	base, err := w.New(pos.ID)
	if err != nil {
		t.Fatal(err)
	}
	basePtr, _ := pos.GetFromEntity(w, base)
	*basePtr = commitPos{X: 1, Y: 2}

	e2, err := w.New(InstanceOf(base))
	if err != nil {
		t.Fatal(err)
	}

	got, ok := w.GetParent(e2, pos.ID)
	if !ok || got != base {
		t.Fatalf("GetParent(e2, pos) = (%v, %v), want (%v, true)", got, ok, base)
	}
	if !w.Has(e2, pos.ID) {
		t.Error("expected Has to see inherited component")
	}
	if w.HasOwned(e2, pos.ID) {
		t.Error("expected HasOwned to be false before override")
	}

	if err := w.Add(e2, pos.ID); err != nil {
		t.Fatal(err)
	}
	if !w.HasOwned(e2, pos.ID) {
		t.Error("expected HasOwned to be true after override-from-base add")
	}
	ownPtr, err := pos.GetFromEntity(w, e2)
	if err != nil {
		t.Fatal(err)
	}
	if *ownPtr != (commitPos{X: 1, Y: 2}) {
		t.Errorf("override-from-base copied %+v, want {1 2}", *ownPtr)
	}

	basePtr.X = 99
	if ownPtr.X == 99 {
		t.Error("subsequent writes to base leaked into the overridden instance")
	}
}

func TestClone(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[commitPos](w)

	e, err := w.New(pos.ID)
	if err != nil {
		t.Fatal(err)
	}
	ptr, _ := pos.GetFromEntity(w, e)
	*ptr = commitPos{X: 5, Y: 6}

	clone, err := w.Clone(e, true)
	if err != nil {
		t.Fatal(err)
	}
	if !w.HasOwned(clone, pos.ID) {
		t.Fatal("expected clone to own the same component set")
	}
	clonePtr, err := pos.GetFromEntity(w, clone)
	if err != nil {
		t.Fatal(err)
	}
	if *clonePtr != (commitPos{X: 5, Y: 6}) {
		t.Errorf("clone value = %+v, want {5 6}", *clonePtr)
	}

	ptr.X = 100
	if clonePtr.X == 100 {
		t.Error("clone shares storage with the original; expected an independent copy")
	}
}

func TestDeleteFiresRemoveAndClearsDirectory(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[commitPos](w)

	var fired int
	w.reactive.OnRemove(pos.ID, func(Handle, any) { fired++ })

	e, err := w.New(pos.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Delete(e); err != nil {
		t.Fatal(err)
	}
	if fired != 1 {
		t.Errorf("OnRemove fired %d times on delete, want 1", fired)
	}
	if w.directory.Get(e) != nil {
		t.Error("expected directory record to be cleared after delete")
	}
}

func TestNewWCountZeroIsNoOp(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[commitPos](w)
	got, err := w.NewWCount(0, pos.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("NewWCount(0, ...) = %v, want empty", got)
	}
}

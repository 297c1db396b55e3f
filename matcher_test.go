package archway

import "testing"

type matcherPos struct{ X, Y float64 }
type matcherTag struct{}

func TestMatchSharedComponentFromBase(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[matcherPos](w)

	base, err := w.New(pos.ID)
	if err != nil {
		t.Fatal(err)
	}
	basePtr, _ := pos.GetFromEntity(w, base)
	*basePtr = matcherPos{X: 7, Y: 8}

	inst, err := w.New(InstanceOf(base))
	if err != nil {
		t.Fatal(err)
	}

	sharedQuery := w.NewQuery(NewSignature(Shared(pos.ID)))
	matched := countMatches(w, sharedQuery)
	if matched != 1 {
		t.Errorf("SHARED query matched %d, want 1 (only the instance, not the base)", matched)
	}

	ownedQuery := w.NewQuery(NewSignature(Owned(pos.ID)))
	if got := countMatches(w, ownedQuery); got != 1 {
		t.Errorf("OWNED query matched %d, want 1 (only the base)", got)
	}

	_ = inst
}

func TestSharedQueryRematchesWhenBaseGainsComponent(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[matcherPos](w)
	tag := NewComponent[matcherTag](w)

	base, err := w.New(tag.ID)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := w.New(InstanceOf(base))
	if err != nil {
		t.Fatal(err)
	}

	sharedQuery := w.NewQuery(NewSignature(Shared(pos.ID)))
	if got := countMatches(w, sharedQuery); got != 0 {
		t.Fatalf("SHARED query matched %d before base owns pos, want 0", got)
	}

	// Evaluating inst's table for sharedQuery (a non-match, so the table
	// is not bound) marks base's record watched; base gaining pos afterwards must flip
	// the query's verdict on inst's table without a fresh NewQuery call.
	if err := w.Add(base, pos.ID); err != nil {
		t.Fatal(err)
	}

	if got := countMatches(w, sharedQuery); got != 1 {
		t.Errorf("SHARED query matched %d after base gained pos, want 1 (inst should now match)", got)
	}
	_ = inst
}

func TestContainerQueryUnmatchesWhenParentLosesComponent(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[matcherPos](w)

	parent, err := w.New(pos.ID)
	if err != nil {
		t.Fatal(err)
	}
	child, err := w.New(ChildOf(parent))
	if err != nil {
		t.Fatal(err)
	}

	containerQuery := w.NewQuery(NewSignature(Container(pos.ID)))
	if got := countMatches(w, containerQuery); got != 1 {
		t.Fatalf("CONTAINER query matched %d before parent loses pos, want 1", got)
	}

	if err := w.Remove(parent, pos.ID); err != nil {
		t.Fatal(err)
	}

	if got := countMatches(w, containerQuery); got != 0 {
		t.Errorf("CONTAINER query matched %d after parent lost pos, want 0 (child's table should unbind)", got)
	}
	_ = child
}

func TestMatchContainerComponentFromParent(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[matcherPos](w)

	parent, err := w.New(pos.ID)
	if err != nil {
		t.Fatal(err)
	}
	child, err := w.New(ChildOf(parent))
	if err != nil {
		t.Fatal(err)
	}

	containerQuery := w.NewQuery(NewSignature(Container(pos.ID)))
	if got := countMatches(w, containerQuery); got != 1 {
		t.Errorf("CONTAINER query matched %d, want 1 (only the child)", got)
	}
	_ = child
}

func TestMatchDisabledExcludedByDefault(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[matcherPos](w)

	if _, err := w.New(pos.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := w.New(pos.ID, w.Disabled()); err != nil {
		t.Fatal(err)
	}

	q := w.NewQuery(NewSignature(Self(pos.ID)))
	if got := countMatches(w, q); got != 1 {
		t.Errorf("default query matched %d disabled-excluded entities, want 1", got)
	}

	qWithDisabled := w.NewQuery(NewSignature(Self(pos.ID), Self(w.Disabled())))
	if got := countMatches(w, qWithDisabled); got != 1 {
		t.Errorf("query explicitly naming Disabled matched %d, want 1", got)
	}
}

func TestMatchPrefabExcludedByDefault(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[matcherPos](w)

	if _, err := w.New(pos.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := w.New(pos.ID, w.Prefab()); err != nil {
		t.Fatal(err)
	}

	q := w.NewQuery(NewSignature(Self(pos.ID)))
	if got := countMatches(w, q); got != 1 {
		t.Errorf("default query matched %d prefab-excluded entities, want 1", got)
	}
}

func TestMatchNotExcludesOwned(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[matcherPos](w)
	tag := NewComponent[matcherTag](w)

	if _, err := w.New(pos.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := w.New(pos.ID, tag.ID); err != nil {
		t.Fatal(err)
	}

	q := w.NewQuery(NewSignature(Self(pos.ID), Not(Self(tag.ID))))
	if got := countMatches(w, q); got != 1 {
		t.Errorf("NOT query matched %d, want 1", got)
	}
}

func TestMatchOptionalAlwaysMatches(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[matcherPos](w)
	tag := NewComponent[matcherTag](w)

	if _, err := w.New(pos.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := w.New(pos.ID, tag.ID); err != nil {
		t.Fatal(err)
	}

	q := w.NewQuery(NewSignature(Self(pos.ID), Optional(Self(tag.ID))))
	if got := countMatches(w, q); got != 2 {
		t.Errorf("OPTIONAL query matched %d, want 2 (matches with or without tag)", got)
	}
}

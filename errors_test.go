package archway

import (
	"errors"
	"testing"
)

func TestInvalidArgumentErrorMessage(t *testing.T) {
	err := InvalidArgumentError{Detail: "nil slice"}
	if err.Error() != "archway: invalid argument: nil slice" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestOutOfRangeErrorMessage(t *testing.T) {
	err := OutOfRangeError{Handle: 50, Min: 1, Max: 10}
	want := "archway: handle 50 out of range [1, 10]"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIteratingErrorMessage(t *testing.T) {
	var err error = IteratingError{}
	if err.Error() == "" {
		t.Error("expected non-empty IteratingError message")
	}
}

func TestTypeMismatchErrorMessage(t *testing.T) {
	err := TypeMismatchError{Name: "pos", Expected: 8, Got: 16}
	want := `archway: type mismatch for "pos": expected 8, got 16`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestRelationConflictErrorMessage(t *testing.T) {
	err := RelationConflictError{Target: 7}
	want := "archway: handle 7 cannot be both INSTANCEOF and CHILDOF target"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestMustNoInternalErrorPanicsOnNonNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected mustNoInternalError to panic on a non-nil error")
		}
	}()
	mustNoInternalError(errors.New("boom"))
}

func TestMustNoInternalErrorNoOpOnNil(t *testing.T) {
	mustNoInternalError(nil) // must not panic
}

func TestIteratingErrorSurfacedDuringQuery(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[errTestPos](w)
	e, err := w.New(pos.ID)
	if err != nil {
		t.Fatal(err)
	}

	q := w.NewQuery(NewSignature(Self(pos.ID)))
	it := w.Iter(q, 0, -1)

	if err := w.Add(e, pos.ID); !isIteratingErr(err) {
		t.Errorf("Add during iteration = %v, want IteratingError", err)
	}

	for {
		_, ok := it.Next()
		if !ok {
			break
		}
	}

	if err := w.Remove(e, pos.ID); err != nil {
		t.Errorf("Remove after iteration ended: %v", err)
	}
}

type errTestPos struct{ X, Y float64 }

func isIteratingErr(err error) bool {
	_, ok := err.(IteratingError)
	return ok
}

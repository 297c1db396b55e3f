package archway

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
)

// InvalidArgumentError reports a caller-supplied value that the engine
// can detect is malformed without consulting world state (a nil slice
// where one is required, a malformed signature-text column, and so on).
type InvalidArgumentError struct {
	Detail string
}

func (e InvalidArgumentError) Error() string {
	return fmt.Sprintf("archway: invalid argument: %s", e.Detail)
}

// OutOfRangeError reports a handle outside the world's configured
// [MinHandle, MaxHandle] allocator range.
type OutOfRangeError struct {
	Handle   Handle
	Min, Max Handle
}

func (e OutOfRangeError) Error() string {
	return fmt.Sprintf("archway: handle %d out of range [%d, %d]", uint64(e.Handle), uint64(e.Min), uint64(e.Max))
}

// IteratingError reports an attempted structural mutation of the main
// stage while a query iterator is walking it; the caller should route
// the mutation through a Stage instead.
type IteratingError struct{}

func (e IteratingError) Error() string {
	return "archway: structural mutation of the main stage while a query is iterating; use a stage instead"
}

// TypeMismatchError reports a component re-registered under a name it
// already owns, but with a different recorded size, or a bulk-load
// column whose value slice doesn't match the destination column's type.
type TypeMismatchError struct {
	Name     string
	Expected any
	Got      any
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("archway: type mismatch for %q: expected %v, got %v", e.Name, e.Expected, e.Got)
}

// RelationConflictError reports an attempt to wire both an INSTANCEOF
// and a CHILDOF edge to the same target on one type.
type RelationConflictError struct {
	Target Handle
}

func (e RelationConflictError) Error() string {
	return fmt.Sprintf("archway: handle %d cannot be both INSTANCEOF and CHILDOF target", uint64(e.Target))
}

// mustNoInternalError panics with a traced error for invariants that
// should be structurally impossible to violate (a corrupted archetype
// graph edge, a directory record pointing at a table the graph no
// longer knows about). Reaching this indicates a bug in the engine
// itself, not a caller error.
func mustNoInternalError(err error) {
	if err != nil {
		panic(bark.AddTrace(fmt.Errorf("archway: internal invariant violated: %w", err)))
	}
}

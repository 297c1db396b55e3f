package archway

import "fmt"

// Handle is the 64-bit identifier shared by entities, components and
// relation targets. The two top bits are reserved for relation flags;
// the remaining bits are the target handle.
type Handle uint64

const (
	instanceOfFlag Handle = 1 << 63
	childOfFlag    Handle = 1 << 62
	flagMask       Handle = instanceOfFlag | childOfFlag
	targetMask     Handle = ^flagMask
)

// RelationOf builds a flag-bearing handle: INSTANCEOF(target) or
// CHILDOF(target), depending on flag. Exactly one flag bit may be set;
// passing both or neither is a programmer error.
func RelationOf(flag, target Handle) Handle {
	if flag != instanceOfFlag && flag != childOfFlag {
		panic(fmt.Sprintf("archway: invalid relation flag %x", uint64(flag)))
	}
	if target&flagMask != 0 {
		panic("archway: relation target must not itself carry a relation flag")
	}
	return flag | target
}

// InstanceOf marks a type entry as "inherit from target".
func InstanceOf(target Handle) Handle { return RelationOf(instanceOfFlag, target) }

// ChildOf marks a type entry as "contained by target" (the container
// query source kind resolves against it).
func ChildOf(target Handle) Handle { return RelationOf(childOfFlag, target) }

// Flag returns the relation flag carried by h, or 0 if h carries none.
func (h Handle) Flag() Handle { return h & flagMask }

// Target returns the target handle h encodes, stripping any relation
// flag.
func (h Handle) Target() Handle { return h & targetMask }

// IsInstanceOf reports whether h is an INSTANCEOF relation handle.
func (h Handle) IsInstanceOf() bool { return h&flagMask == instanceOfFlag }

// IsChildOf reports whether h is a CHILDOF relation handle.
func (h Handle) IsChildOf() bool { return h&flagMask == childOfFlag }

// IsPlain reports whether h carries no relation flag.
func (h Handle) IsPlain() bool { return h&flagMask == 0 }

// HandleAllocator issues monotonically increasing handles bounded by a
// configured [min, max] range. Handles are never recycled within a
// world.
type HandleAllocator struct {
	last     Handle
	min, max Handle
}

// NewHandleAllocator builds an allocator seeded just below min so the
// first Allocate() call returns min.
func NewHandleAllocator(min, max Handle) *HandleAllocator {
	if min == 0 {
		min = 1
	}
	if max == 0 {
		max = targetMask
	}
	return &HandleAllocator{last: min - 1, min: min, max: max}
}

// Allocate returns the next handle, erroring out-of-range handles rather
// than silently wrapping.
func (a *HandleAllocator) Allocate() (Handle, error) {
	next := a.last + 1
	if next > a.max {
		return 0, fmt.Errorf("archway: handle allocator exhausted range [%d, %d]", uint64(a.min), uint64(a.max))
	}
	a.last = next
	return next, nil
}

// Advance moves the allocator's high-water mark past an externally
// supplied handle (e.g. during bulk loads), so future Allocate() calls
// never collide with it.
func (a *HandleAllocator) Advance(h Handle) {
	plain := h.Target()
	if plain > a.last {
		a.last = plain
	}
}

// Last returns the high-water mark, for diagnostics and tests.
func (a *HandleAllocator) Last() Handle { return a.last }

// InRange reports whether h's target falls within the configured bounds.
func (a *HandleAllocator) InRange(h Handle) bool {
	t := h.Target()
	return t >= a.min && t <= a.max
}

package archway

import "sort"

// Type is the ordered, deduplicated sequence of handles that identifies
// an archetype. Two types are equal iff they have the same length and
// the same sequence.
type Type []Handle

// NewType sorts and dedups ids into a canonical Type. Table identity is a
// function of the *set* of ids, not the order the caller supplied them
// in.
func NewType(ids ...Handle) Type {
	t := make(Type, len(ids))
	copy(t, ids)
	sort.Slice(t, func(i, j int) bool { return t[i] < t[j] })
	return t.dedup()
}

func (t Type) dedup() Type {
	if len(t) < 2 {
		return t
	}
	out := t[:1]
	for _, id := range t[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

// IsSortedDeduped reports whether ids is already in canonical order,
// letting the archetype graph skip the sort-dedup scratch pass for the
// common case of a caller-built Type.
func IsSortedDeduped(ids []Handle) bool {
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			return false
		}
	}
	return true
}

// Equal reports whether t and other contain the same ids in the same
// order (which, for two canonical Types, means the same set).
func (t Type) Equal(other Type) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}

// Contains reports whether id is present in t.
func (t Type) Contains(id Handle) bool {
	i := sort.Search(len(t), func(i int) bool { return t[i] >= id })
	return i < len(t) && t[i] == id
}

// Add returns a new Type with id inserted in sorted position. If id is
// already present, t is returned unchanged (invariant 5, self-loop).
func (t Type) Add(id Handle) Type {
	i := sort.Search(len(t), func(i int) bool { return t[i] >= id })
	if i < len(t) && t[i] == id {
		return t
	}
	out := make(Type, 0, len(t)+1)
	out = append(out, t[:i]...)
	out = append(out, id)
	out = append(out, t[i:]...)
	return out
}

// Remove returns a new Type with id absent. If id was not present, t is
// returned unchanged.
func (t Type) Remove(id Handle) Type {
	i := sort.Search(len(t), func(i int) bool { return t[i] >= id })
	if i >= len(t) || t[i] != id {
		return t
	}
	out := make(Type, 0, len(t)-1)
	out = append(out, t[:i]...)
	out = append(out, t[i+1:]...)
	return out
}

// Merge applies a batch of removals then additions to base and returns
// the canonical result.
func Merge(base, add, remove Type) Type {
	out := append(Type{}, base...)
	for _, id := range remove {
		out = out.Remove(id)
	}
	for _, id := range add {
		out = out.Add(id)
	}
	return out
}

// LowIDs returns the subsequence of t below MaxComponents that carries
// no relation flag: the ids reactive callbacks fire for and the ids in a
// table's low-id bitmask.
func (t Type) LowIDs() []Handle {
	out := make([]Handle, 0, len(t))
	for _, id := range t {
		if id.Target() < MaxComponents && id.Flag() == 0 {
			out = append(out, id)
		}
	}
	return out
}

// DiffLowIDs returns the low ids present in a but not in b, in a's
// order. Used to compute the added/removed sets a structural change
// between two types implies for reactive notification.
func DiffLowIDs(a, b Type) []Handle {
	var out []Handle
	for _, id := range a.LowIDs() {
		if !b.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

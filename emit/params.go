package emit

import "fmt"

// ErrInvalidParameterIndex is returned when a caller supplies an explicit
// non-positive parameter index to Builder.ParamAt.
var ErrInvalidParameterIndex = fmt.Errorf("emit: invalid parameter index")

// ConflictingParameterTypeError is returned when two occurrences of the
// same value reference carry incompatible, concrete declared types.
type ConflictingParameterTypeError struct {
	Index    int
	Existing string
	Got      string
}

func (e *ConflictingParameterTypeError) Error() string {
	return fmt.Sprintf("emit: parameter $%d: conflicting types %s and %s", e.Index, e.Existing, e.Got)
}

// unknownType is the sentinel declared type that is always subsumed by a
// concrete type, mirroring spec.md §3's "unknown-type sentinel" invariant.
const unknownType = ""

// paramSlot is one entry in the parameter table: a 1-based index, the
// unified declared type so far, and the borrowed value reference supplied
// at the first occurrence.
type paramSlot struct {
	index int
	typ   string
	value any
}

// params is a small union-find-flavored table over parameter slots keyed by
// value-reference identity (spec.md §9, "small union-find over parameter
// slots keyed by value-reference identity"). Because Go values are not
// generally comparable by pointer identity in the same way Rust's value
// references are, slots are keyed by the caller-supplied ref, which must be
// a comparable Go value (typically a pointer).
type params struct {
	order []any // refs in first-seen order, index i -> 1-based slot i+1
	slots map[any]*paramSlot
}

func newParams() *params {
	return &params{slots: make(map[any]*paramSlot)}
}

// intern finds the existing slot bound to ref, unifying typ into it, or
// allocates the next dense index and records (ref, typ). It returns the
// slot's 1-based index.
func (p *params) intern(ref any, typ string) (int, error) {
	if existing, ok := p.slots[ref]; ok {
		unified, err := unify(existing.typ, typ)
		if err != nil {
			return 0, &ConflictingParameterTypeError{Index: existing.index, Existing: existing.typ, Got: typ}
		}
		existing.typ = unified
		existing.value = ref
		return existing.index, nil
	}

	idx := len(p.order) + 1
	p.order = append(p.order, ref)
	p.slots[ref] = &paramSlot{index: idx, typ: typ, value: ref}
	return idx, nil
}

// unify resolves two declared types for the same parameter slot: the
// unknown sentinel is always subsumed by a concrete type, and two equal
// concrete types unify to themselves. Two distinct concrete types conflict.
func unify(a, b string) (string, error) {
	switch {
	case a == unknownType:
		return b, nil
	case b == unknownType:
		return a, nil
	case a == b:
		return a, nil
	default:
		return "", fmt.Errorf("cannot unify %s and %s", a, b)
	}
}

// insertAt records (ref, typ) at an explicit 1-based index, unifying with
// any slot already occupying it. Used by Builder.ParamAt.
func (p *params) insertAt(index int, ref any, typ string) error {
	for len(p.order) < index {
		p.order = append(p.order, nil)
	}
	if p.order[index-1] == nil {
		p.order[index-1] = ref
		p.slots[ref] = &paramSlot{index: index, typ: typ, value: ref}
		return nil
	}

	existingRef := p.order[index-1]
	existing := p.slots[existingRef]
	unified, err := unify(existing.typ, typ)
	if err != nil {
		return &ConflictingParameterTypeError{Index: index, Existing: existing.typ, Got: typ}
	}
	existing.typ = unified
	return nil
}

// Types returns the unified parameter types in dense index order, 1..N.
func (p *params) Types() []string {
	out := make([]string, len(p.order))
	for i, ref := range p.order {
		out[i] = p.slots[ref].typ
	}
	return out
}

// Values returns the borrowed parameter value references in dense index
// order, 1..N, in the order first encountered (spec.md §5, "parameter
// slots are assigned indices in the order first encountered").
func (p *params) Values() []any {
	out := make([]any, len(p.order))
	for i, ref := range p.order {
		out[i] = p.slots[ref].value
	}
	return out
}

func (p *params) Len() int { return len(p.order) }

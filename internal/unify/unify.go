// Package unify implements Robinson unification with an occurs-check, plus
// the constraint solver that drives it. The case-by-case structure — a
// type switch over variant pairs, a co-induction visited-list to guard
// recursive unification calls, and a Bind step that runs the occurs-check
// before ever returning a substitution — is adapted from the teacher's
// internal/typesystem/unify.go. That file also references err* helper
// functions (errUnify, errMismatch, errUnifyContext) that do not exist
// anywhere in the retrieved pack (confirmed by a repository-wide search),
// so the error values constructed here are authored fresh against this
// checker's own UnificationError taxonomy rather than ported.
package unify

import (
	"fmt"

	"github.com/funvibe/typecore/internal/types"
)

// ErrorCode distinguishes the ways unification can fail. These are
// deliberately a separate, narrower taxonomy from diagnostic.Kind: the
// driver (internal/checker) is responsible for translating a
// UnificationError into the caller-facing Diagnostic kind space (spec
// section 4.I, "a unifier error is translated to a TypeError variant").
type ErrorCode int

const (
	TypeMismatch ErrorCode = iota
	InfiniteType
	ArityMismatch
	ConstraintSolvingFailed
)

func (c ErrorCode) String() string {
	switch c {
	case TypeMismatch:
		return "TypeMismatch"
	case InfiniteType:
		return "InfiniteType"
	case ArityMismatch:
		return "ArityMismatch"
	case ConstraintSolvingFailed:
		return "ConstraintSolvingFailed"
	default:
		return "Unknown"
	}
}

// Error reports a unification failure between two concrete type terms,
// identified by its ErrorCode.
type Error struct {
	Code  ErrorCode
	Left  types.Type
	Right types.Type
	Msg   string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("%s: %s and %s do not unify", e.Code, e.Left.String(), e.Right.String())
}

func mismatch(a, b types.Type) error {
	return &Error{Code: TypeMismatch, Left: a, Right: b}
}

func arityMismatch(a, b types.Type, msg string) error {
	return &Error{Code: ArityMismatch, Left: a, Right: b, Msg: msg}
}

func infiniteType(v string, t types.Type) error {
	return &Error{Code: InfiniteType, Left: types.Var{ID: v}, Right: t,
		Msg: fmt.Sprintf("%s occurs in %s", v, t.String())}
}

// pair is used as a co-induction guard: while unifying t1 against t2, if we
// recurse back into unifying the exact same pair (by structural string) we
// are in a cycle the occurs-check should already have prevented, and we
// fail closed rather than looping.
type pair struct{ a, b string }

// Unify finds a substitution making t1 and t2 structurally equal, or
// reports why none exists. It is the spec's core unification relation
// (section 4.E, steps 1-8) with no subtyping applied — subtyping is solve's
// responsibility for Subtype constraints specifically, never unify's.
func Unify(t1, t2 types.Type) (types.Subst, error) {
	return unify(t1, t2, nil)
}

func unify(t1, t2 types.Type, visited []pair) (types.Subst, error) {
	if types.StructuralEquals(t1, t2) {
		return types.Empty(), nil
	}

	if name, ok := types.AsVariable(t1); ok {
		return bind(name, t2)
	}
	if name, ok := types.AsVariable(t2); ok {
		return bind(name, t1)
	}

	key := pair{t1.String(), t2.String()}
	for _, p := range visited {
		if p == key {
			return nil, mismatch(t1, t2)
		}
	}
	visited = append(visited, key)

	switch a := t1.(type) {
	case types.Generic:
		b, ok := t2.(types.Generic)
		if !ok || a.Name != b.Name {
			return nil, mismatch(t1, t2)
		}
		return unifyArgs(a.Args, b.Args, t1, t2, visited)

	case types.Union:
		b, ok := t2.(types.Union)
		if !ok || a.Name != b.Name {
			return nil, mismatch(t1, t2)
		}
		return unifyArgs(a.Args, b.Args, t1, t2, visited)

	case types.Tuple:
		b, ok := t2.(types.Tuple)
		if !ok {
			return nil, mismatch(t1, t2)
		}
		if len(a.Elems) != len(b.Elems) {
			return nil, arityMismatch(t1, t2, "tuple arity mismatch")
		}
		return unifyArgs(a.Elems, b.Elems, t1, t2, visited)

	case types.Function:
		b, ok := t2.(types.Function)
		if !ok {
			return nil, mismatch(t1, t2)
		}
		if len(a.Params) != len(b.Params) {
			return nil, arityMismatch(t1, t2, "function parameter arity mismatch")
		}
		paramSubst, err := unifyArgs(a.Params, b.Params, t1, t2, visited)
		if err != nil {
			return nil, err
		}
		ret, err := unify(paramSubst.Apply(a.Ret), paramSubst.Apply(b.Ret), visited)
		if err != nil {
			return nil, err
		}
		return types.Compose(ret, paramSubst), nil

	case types.Nullable:
		b, ok := t2.(types.Nullable)
		if !ok {
			return nil, mismatch(t1, t2)
		}
		return unify(a.Base, b.Base, visited)

	case types.Primitive:
		b, ok := t2.(types.Primitive)
		if !ok || a.Name != b.Name {
			return nil, mismatch(t1, t2)
		}
		return types.Empty(), nil

	default:
		return nil, mismatch(t1, t2)
	}
}

func unifyArgs(as, bs []types.Type, t1, t2 types.Type, visited []pair) (types.Subst, error) {
	if len(as) != len(bs) {
		return nil, arityMismatch(t1, t2, "argument count mismatch")
	}
	result := types.Empty()
	for i := range as {
		a := result.Apply(as[i])
		b := result.Apply(bs[i])
		s, err := unify(a, b, visited)
		if err != nil {
			return nil, err
		}
		result = types.Compose(s, result)
	}
	return result, nil
}

// bind produces the substitution {name -> t}, failing the occurs-check if
// name appears free in t. Binding a variable to itself (by any of the
// representations types.AsVariable recognizes) is the identity
// substitution, not an error.
func bind(name string, t types.Type) (types.Subst, error) {
	if other, ok := types.AsVariable(t); ok && other == name {
		return types.Empty(), nil
	}
	if OccursCheck(name, t) {
		return nil, infiniteType(name, t)
	}
	return types.Singleton(name, t), nil
}

// OccursCheck reports whether name occurs free within t, the test that
// prevents constructing an infinite type.
func OccursCheck(name string, t types.Type) bool {
	return types.FreeVars(t)[name]
}

package unify

import (
	"fmt"

	"github.com/funvibe/typecore/internal/token"
	"github.com/funvibe/typecore/internal/types"
)

// ConstraintKind tags the three constraint variants the collector emits.
type ConstraintKind int

const (
	Equality ConstraintKind = iota
	Subtype
	Instance
)

// Constraint is a tagged variant over Equality(left,right), Subtype(sub,
// sup), and Instance(var, scheme), each carrying an optional source
// location. Instance constraints are reserved for let-polymorphism: the
// spec's open question on whether to implement or drop them is resolved in
// this module's design notes as "implement fully" (see DESIGN.md) — solve
// below performs real scheme instantiation rather than treating Instance
// as trivially satisfied.
type Constraint struct {
	Kind     ConstraintKind
	Left     types.Type // Equality.left, Subtype.sub, Instance's instantiated type
	Right    types.Type // Equality.right, Subtype.sup
	Scheme   types.Scheme
	Location token.Position
}

func NewEquality(left, right types.Type, loc token.Position) Constraint {
	return Constraint{Kind: Equality, Left: left, Right: right, Location: loc}
}

func NewSubtype(sub, sup types.Type, loc token.Position) Constraint {
	return Constraint{Kind: Subtype, Left: sub, Right: sup, Location: loc}
}

func NewInstance(v types.Type, scheme types.Scheme, loc token.Position) Constraint {
	return Constraint{Kind: Instance, Left: v, Scheme: scheme, Location: loc}
}

func (c Constraint) String() string {
	switch c.Kind {
	case Equality:
		return fmt.Sprintf("%s ~ %s", c.Left, c.Right)
	case Subtype:
		return fmt.Sprintf("%s <: %s", c.Left, c.Right)
	case Instance:
		return fmt.Sprintf("%s :: %s", c.Left, c.Scheme)
	default:
		return "?"
	}
}

func sig(c Constraint) string {
	switch c.Kind {
	case Instance:
		return fmt.Sprintf("I:%s:%s", c.Left, c.Scheme)
	default:
		return fmt.Sprintf("%d:%s:%s", c.Kind, c.Left, c.Right)
	}
}

// ConstraintSet is an ordered multiset of constraints: order is preserved
// for deterministic solving, but Dedup may drop structural duplicates.
type ConstraintSet []Constraint

// Dedup returns a copy of cs with structural duplicates removed, keeping
// the first occurrence of each and thus preserving emission order.
func (cs ConstraintSet) Dedup() ConstraintSet {
	seen := map[string]bool{}
	out := make(ConstraintSet, 0, len(cs))
	for _, c := range cs {
		key := sig(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// Solve processes constraints in emission order, maintaining a running
// substitution sigma. Equality constraints unify; Subtype constraints go
// through subtypeResolve; Instance constraints instantiate their scheme
// with fresh variables and unify the instance variable against the
// result. The resulting substitution is a deterministic function of the
// input order, per the spec's ordering guarantee.
func Solve(cs ConstraintSet) (types.Subst, error) {
	sigma := types.Empty()
	for _, c := range cs {
		left := sigma.Apply(c.Left)
		switch c.Kind {
		case Equality:
			right := sigma.Apply(c.Right)
			s, err := Unify(left, right)
			if err != nil {
				return nil, err
			}
			sigma = types.Compose(s, sigma)
		case Subtype:
			right := sigma.Apply(c.Right)
			s, err := subtypeResolve(left, right)
			if err != nil {
				return nil, err
			}
			sigma = types.Compose(s, sigma)
		case Instance:
			instantiated, _ := types.Instantiate(sigma.ApplyScheme(c.Scheme))
			s, err := Unify(left, instantiated)
			if err != nil {
				return nil, err
			}
			sigma = types.Compose(s, sigma)
		}
	}
	return sigma, nil
}

// subtypeResolve implements the spec's minimal, predictable subtyping
// handling for Subtype(sub, sup) constraints:
//   - reflexive case returns empty
//   - Int <: Long <: Float <: Double is accepted without substitution
//   - a variable subtype side binds to the supertype
//   - a variable supertype side binds to Double if the subtype is Int,
//     otherwise to the subtype
//   - anything else fails with TypeMismatch
func subtypeResolve(sub, sup types.Type) (types.Subst, error) {
	if types.StructuralEquals(sub, sup) {
		return types.Empty(), nil
	}
	if subP, ok := sub.(types.Primitive); ok {
		if supP, ok := sup.(types.Primitive); ok {
			if subR, subNumeric := types.NumericRank(subP.Name); subNumeric {
				if supR, supNumeric := types.NumericRank(supP.Name); supNumeric && subR <= supR {
					return types.Empty(), nil
				}
			}
		}
	}
	if name, ok := types.AsVariable(sub); ok {
		return bind(name, sup)
	}
	if name, ok := types.AsVariable(sup); ok {
		if subP, ok := sub.(types.Primitive); ok && subP.Name == "Int" {
			return bind(name, types.Primitive{Name: "Double"})
		}
		return bind(name, sub)
	}
	return nil, mismatch(sub, sup)
}

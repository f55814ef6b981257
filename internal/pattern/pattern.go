// Package pattern implements the pattern checker (spec section 4.G):
// decomposition of algebraic constructor patterns, binding extraction,
// guard validation, and exhaustiveness analysis over tagged-union type
// definitions.
//
// Check serves the constraint-emitting collector and CheckDirect serves the
// direct algorithmic driver; the two share the variant lookup, duplicate-
// binding check and exhaustiveness bookkeeping in this file. The recursive
// binding-extraction shape (walk sub-patterns, merge bindings) is adapted
// from the teacher's internal/analyzer/declarations_patterns.go
// (bindPatternVariables family) and from sunholo-data-ailang's
// internal/types/typechecker_patterns.go (checkPattern). A name bound twice
// within one pattern is not unified here: it is reported as a
// DuplicateDefinition diagnostic. Unlike ailang's
// ConstructorPattern case — an explicit stub that invents fresh type
// variables per argument rather than looking up the real constructor's
// field types (flagged there with a TODO) — this implementation always
// resolves the declared VariantDef and substitutes its field types, per
// the spec's explicit requirement.
package pattern

import (
	"fmt"

	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/diagnostic"
	"github.com/funvibe/typecore/internal/scope"
	"github.com/funvibe/typecore/internal/token"
	"github.com/funvibe/typecore/internal/types"
	"github.com/funvibe/typecore/internal/unify"
)

// Result is the outcome of checking one pattern against a target type:
// the bindings it introduces, the equality constraints it emitted (for the
// constraint-based strategy; the algorithmic strategy uses CheckDirect and
// DirectResult instead), and the set of union variant names it covers (used
// by exhaustiveness analysis at the enclosing match).
type Result struct {
	Bindings    map[string]types.Type
	Constraints unify.ConstraintSet
	Covered     map[string]bool // variant names this pattern covers; set only for a Constructor pattern or an Identifier naming a nullary variant (a guard passes its inner pattern's set through)
	IsCatchAll  bool            // true for Wildcard, or an Identifier that does not name a known nullary variant
}

// Check decomposes pattern against targetType within ictx (used to resolve
// union type definitions for Constructor patterns) and reports diagnostics
// through r rather than returning an error directly, matching the
// collector's accumulate-and-continue propagation policy (spec section 7).
// A Result is always returned, holding whatever bindings could be
// extracted even when diagnostics were reported (an unknown constructor
// yields empty bindings).
func Check(p ast.Pattern, targetType types.Type, ictx *scope.InferenceContext, r *diagnostic.Reporter) Result {
	return checkInto(p, targetType, ictx, r, map[string]types.Type{})
}

func checkInto(p ast.Pattern, targetType types.Type, ictx *scope.InferenceContext, r *diagnostic.Reporter, bound map[string]types.Type) Result {
	switch pat := p.(type) {
	case ast.WildcardPattern:
		return Result{Bindings: map[string]types.Type{}, IsCatchAll: true}

	case ast.IdentifierPattern:
		if unionName, def, variant, ok := findNullaryVariantForTarget(targetType, ictx, pat.Name); ok {
			return Result{
				Bindings: map[string]types.Type{},
				Constraints: unify.ConstraintSet{
					unify.NewEquality(targetType, types.Union{Name: unionName, Args: freshArgsFor(def)}, pat.Pos),
				},
				Covered: map[string]bool{variant.Name: true},
			}
		}
		reportIfAlreadyBound(bound, pat.Name, pat.Pos, r)
		return Result{Bindings: map[string]types.Type{pat.Name: targetType}, IsCatchAll: true}

	case ast.LiteralPattern:
		litType := literalType(pat.Value)
		return Result{
			Bindings:    map[string]types.Type{},
			Constraints: unify.ConstraintSet{unify.NewEquality(targetType, litType, pat.Pos)},
		}

	case ast.ConstructorPattern:
		return checkConstructor(pat, targetType, ictx, r, bound)

	case ast.GuardPattern:
		inner := checkInto(pat.Inner, targetType, ictx, r, bound)
		// pattern.Check only threads the inner result through; Cond is
		// not type-checked here, and the collector checks a MatchCase's
		// Guard but not a GuardPattern's Cond.
		return Result{
			Bindings:    inner.Bindings,
			Constraints: inner.Constraints,
			Covered:     inner.Covered,
		}

	default:
		r.Add(diagnostic.New(diagnostic.InvalidOperation, p.GetPos(), fmt.Sprintf("unsupported pattern %T", p)))
		return Result{Bindings: map[string]types.Type{}}
	}
}

func checkConstructor(pat ast.ConstructorPattern, targetType types.Type, ictx *scope.InferenceContext, r *diagnostic.Reporter, bound map[string]types.Type) Result {
	defs := ictx.AllTypeDefinitions()
	unionName, def, variant, ok := scope.FindVariantOwner(defs, pat.Name)
	if !ok {
		r.Add(diagnostic.New(diagnostic.UnresolvedSymbol, pat.Pos, "unknown constructor "+pat.Name))
		return Result{Bindings: map[string]types.Type{}}
	}
	if len(pat.Args) != variant.Arity() {
		r.Add(diagnostic.New(diagnostic.ArityMismatch, pat.Pos,
			fmt.Sprintf("constructor %s expects %d argument(s), got %d", pat.Name, variant.Arity(), len(pat.Args))))
	}

	freshArgs := freshArgsFor(def)
	paramSubst := substituteTypeParams(def.TypeParams, freshArgs)

	bindings := map[string]types.Type{}
	var constraints unify.ConstraintSet
	n := len(pat.Args)
	if variant.Arity() < n {
		n = variant.Arity()
	}
	for i := 0; i < n; i++ {
		fieldType := paramSubst.Apply(variant.Fields[i])
		sub := checkInto(pat.Args[i], fieldType, ictx, r, bound)
		for name, t := range sub.Bindings {
			bindings[name] = t
			bound[name] = t
		}
		constraints = append(constraints, sub.Constraints...)
	}
	constraints = append(constraints, unify.NewEquality(targetType, types.Union{Name: unionName, Args: freshArgs}, pat.Pos))

	return Result{
		Bindings:    bindings,
		Constraints: constraints,
		Covered:     map[string]bool{variant.Name: true},
	}
}

// reportIfAlreadyBound enforces the rule that variables bound more than
// once within a single pattern are errors: bound carries every name the
// enclosing pattern has introduced so far, threaded through each recursive
// checkInto/checkDirectInto call.
func reportIfAlreadyBound(bound map[string]types.Type, name string, pos token.Position, r *diagnostic.Reporter) {
	if _, exists := bound[name]; exists {
		r.Add(diagnostic.New(diagnostic.DuplicateDefinition, pos, "variable "+name+" is bound more than once in this pattern"))
	}
}

func literalType(e ast.Expression) types.Type {
	switch e.(type) {
	case ast.IntLit:
		return types.Primitive{Name: "Int"}
	case ast.FloatLit:
		return types.Primitive{Name: "Double"}
	case ast.StringLit:
		return types.Primitive{Name: "String"}
	case ast.BoolLit:
		return types.Primitive{Name: "Boolean"}
	case ast.NullLit:
		return types.NewNullable(types.Primitive{Name: "Unit"})
	default:
		return types.Fresh()
	}
}

// findNullaryVariantForTarget checks whether name names a nullary variant
// of targetType's union definition (only meaningful when targetType is
// itself a Union reference), implementing the spec's Identifier-pattern
// special case.
func findNullaryVariantForTarget(targetType types.Type, ictx scope.TypeDefLookup, name string) (unionName string, def scope.UnionDef, variant scope.VariantDef, ok bool) {
	u, isUnion := targetType.(types.Union)
	if !isUnion {
		return "", scope.UnionDef{}, scope.VariantDef{}, false
	}
	d, found := ictx.LookupTypeDefinition(u.Name)
	if !found {
		return "", scope.UnionDef{}, scope.VariantDef{}, false
	}
	v, found := d.Find(name)
	if !found || !v.IsNullary() {
		return "", scope.UnionDef{}, scope.VariantDef{}, false
	}
	return u.Name, d, v, true
}

func freshArgsFor(def scope.UnionDef) []types.Type {
	args := make([]types.Type, len(def.TypeParams))
	for i := range def.TypeParams {
		args[i] = types.Fresh()
	}
	return args
}

func substituteTypeParams(params []string, args []types.Type) types.Subst {
	s := types.Subst{}
	for i, p := range params {
		if i < len(args) {
			s[p] = args[i]
		}
	}
	return s
}

// Exhaustive implements the spec's exhaustiveness rule: exhaustive iff a
// wildcard (or catch-all identifier) is present in any case, or the union
// of covered variant names across all cases equals the scrutinee union's
// full variant set. missing lists the uncovered variant names in
// declaration order when not exhaustive.
func Exhaustive(results []Result, scrutineeType types.Type, ictx scope.TypeDefLookup) (ok bool, missing []string) {
	infos := make([]coverage, len(results))
	for i, res := range results {
		infos[i] = coverage{Covered: res.Covered, IsCatchAll: res.IsCatchAll}
	}
	return exhaustiveFromCoverage(infos, scrutineeType, ictx)
}

// ExhaustiveDirect is Exhaustive for the direct variant's DirectResult,
// sharing the same coverage-accounting logic rather than re-deriving it:
// the same anti-divergence note that keeps one structuralEquals/subtyping
// implementation for both strategies (spec section 9) applies here too.
func ExhaustiveDirect(results []DirectResult, scrutineeType types.Type, ictx scope.TypeDefLookup) (ok bool, missing []string) {
	infos := make([]coverage, len(results))
	for i, res := range results {
		infos[i] = coverage{Covered: res.Covered, IsCatchAll: res.IsCatchAll}
	}
	return exhaustiveFromCoverage(infos, scrutineeType, ictx)
}

type coverage struct {
	Covered    map[string]bool
	IsCatchAll bool
}

func exhaustiveFromCoverage(infos []coverage, scrutineeType types.Type, ictx scope.TypeDefLookup) (ok bool, missing []string) {
	for _, info := range infos {
		if info.IsCatchAll {
			return true, nil
		}
	}
	u, isUnion := scrutineeType.(types.Union)
	if !isUnion {
		// Not a union: only a wildcard/catch-all could make this
		// exhaustive, and none was present above.
		return false, nil
	}
	def, found := ictx.LookupTypeDefinition(u.Name)
	if !found {
		return false, nil
	}
	covered := map[string]bool{}
	for _, info := range infos {
		for name := range info.Covered {
			covered[name] = true
		}
	}
	for _, v := range def.Variants {
		if !covered[v.Name] {
			missing = append(missing, v.Name)
		}
	}
	return len(missing) == 0, missing
}

// DirectResult is Result's counterpart for the constraint-free variant
// below: no Constraints field, because every type comparison here has
// already been resolved immediately through the ScopeManager's running
// substitution by the time CheckDirect returns.
type DirectResult struct {
	Bindings   map[string]types.Type
	Covered    map[string]bool
	IsCatchAll bool
}

// CheckDirect is Check's direct counterpart, the second pattern-checking
// representation spec section 4.G calls for: "a direct variant used by the
// algorithmic driver." Rather than emitting an equality constraint against
// targetType for a later solve, it unifies immediately through sm's running
// substitution and reports a diagnostic the moment a mismatch is found,
// returning bindings already typed against the resolved target.
func CheckDirect(p ast.Pattern, targetType types.Type, sm *scope.ScopeManager, r *diagnostic.Reporter) DirectResult {
	return checkDirectInto(p, targetType, sm, r, map[string]types.Type{})
}

func checkDirectInto(p ast.Pattern, targetType types.Type, sm *scope.ScopeManager, r *diagnostic.Reporter, bound map[string]types.Type) DirectResult {
	switch pat := p.(type) {
	case ast.WildcardPattern:
		return DirectResult{Bindings: map[string]types.Type{}, IsCatchAll: true}

	case ast.IdentifierPattern:
		if unionName, def, variant, ok := findNullaryVariantForTarget(targetType, sm, pat.Name); ok {
			if _, err := sm.Unify(targetType, types.Union{Name: unionName, Args: freshArgsFor(def)}); err != nil {
				r.Add(diagnostic.New(diagnostic.TypeMismatch, pat.Pos, err.Error()))
			}
			return DirectResult{Bindings: map[string]types.Type{}, Covered: map[string]bool{variant.Name: true}}
		}
		reportIfAlreadyBound(bound, pat.Name, pat.Pos, r)
		return DirectResult{Bindings: map[string]types.Type{pat.Name: targetType}, IsCatchAll: true}

	case ast.LiteralPattern:
		litType := literalType(pat.Value)
		if _, err := sm.Unify(targetType, litType); err != nil {
			r.Add(diagnostic.New(diagnostic.TypeMismatch, pat.Pos, err.Error()))
		}
		return DirectResult{Bindings: map[string]types.Type{}}

	case ast.ConstructorPattern:
		return checkConstructorDirect(pat, targetType, sm, r, bound)

	case ast.GuardPattern:
		inner := checkDirectInto(pat.Inner, targetType, sm, r, bound)
		// As in Check's GuardPattern case, Cond is not type-checked here
		// (the algorithmic driver checks a MatchCase's Guard but not a
		// GuardPattern's Cond), and IsCatchAll deliberately does not propagate
		// — a guarded wildcard can still fail its guard at runtime, so it
		// must not make the enclosing match look exhaustive on its own.
		return DirectResult{Bindings: inner.Bindings, Covered: inner.Covered}

	default:
		r.Add(diagnostic.New(diagnostic.InvalidOperation, p.GetPos(), fmt.Sprintf("unsupported pattern %T", p)))
		return DirectResult{Bindings: map[string]types.Type{}}
	}
}

func checkConstructorDirect(pat ast.ConstructorPattern, targetType types.Type, sm *scope.ScopeManager, r *diagnostic.Reporter, bound map[string]types.Type) DirectResult {
	defs := sm.AllTypeDefinitions()
	unionName, def, variant, ok := scope.FindVariantOwner(defs, pat.Name)
	if !ok {
		r.Add(diagnostic.New(diagnostic.UnresolvedSymbol, pat.Pos, "unknown constructor "+pat.Name))
		return DirectResult{Bindings: map[string]types.Type{}}
	}
	if len(pat.Args) != variant.Arity() {
		r.Add(diagnostic.New(diagnostic.ArityMismatch, pat.Pos,
			fmt.Sprintf("constructor %s expects %d argument(s), got %d", pat.Name, variant.Arity(), len(pat.Args))))
	}

	freshArgs := freshArgsFor(def)
	paramSubst := substituteTypeParams(def.TypeParams, freshArgs)
	if _, err := sm.Unify(targetType, types.Union{Name: unionName, Args: freshArgs}); err != nil {
		r.Add(diagnostic.New(diagnostic.TypeMismatch, pat.Pos, err.Error()))
	}

	bindings := map[string]types.Type{}
	n := len(pat.Args)
	if variant.Arity() < n {
		n = variant.Arity()
	}
	for i := 0; i < n; i++ {
		fieldType := sm.Resolve(paramSubst.Apply(variant.Fields[i]))
		sub := checkDirectInto(pat.Args[i], fieldType, sm, r, bound)
		for name, t := range sub.Bindings {
			bindings[name] = t
			bound[name] = t
		}
	}
	return DirectResult{Bindings: bindings, Covered: map[string]bool{variant.Name: true}}
}

package checker

import (
	"fmt"

	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/collect"
	"github.com/funvibe/typecore/internal/diagnostic"
	"github.com/funvibe/typecore/internal/pattern"
	"github.com/funvibe/typecore/internal/scope"
	"github.com/funvibe/typecore/internal/types"
)

// Algorithmic synthesizes a type directly via per-node checkers threading
// the imperative scope.ScopeManager (spec section 4.D, "Imperative
// ScopeManager (used by the algorithmic path)"; section 4.I, "Algorithmic:
// direct synthesis via the per-node checkers"). Every type comparison this
// strategy needs is resolved the moment it is known, through the
// ScopeManager's running substitution (ScopeManager.Unify) — there is no
// constraint set and no separate solving pass the way ConstraintBased has.
// In checking mode it does not thread the expected type through synthesis
// at all; it synthesizes first and verifies structural compatibility
// afterward (section 4.I, "post-verify by structural compatibility",
// section 4.J).
type Algorithmic struct{}

var _ Checker = Algorithmic{}

func (Algorithmic) Check(expr ast.Expression, tc *scope.TypeContext) (*TypedExpression, error) {
	sm := scope.FromTypeContextManager(tc)
	reporter := diagnostic.NewReporter()

	t := synth(expr, sm, reporter)
	if reporter.HasErrors() {
		return nil, reporter.AsError()
	}
	return &TypedExpression{Expr: expr, Type: sm.Resolve(t), UnitID: newUnitID()}, nil
}

func (a Algorithmic) CheckWithExpected(expr ast.Expression, expected types.Type, tc *scope.TypeContext) (*TypedExpression, error) {
	synthesized, err := a.Check(expr, tc)
	if err != nil {
		return nil, err
	}
	if types.StructuralEquals(synthesized.Type, expected) || types.IsSubtype(synthesized.Type, expected) {
		return synthesized, nil
	}
	return nil, diagnostic.New(diagnostic.TypeMismatch, expr.GetPos(),
		"expected "+expected.String()+", got "+synthesized.Type.String())
}

var algoArithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}
var algoComparisonOps = map[string]bool{"<": true, "<=": true, ">": true, ">=": true}
var algoEqualityOps = map[string]bool{"==": true, "!=": true}
var algoLogicalOps = map[string]bool{"&&": true, "||": true}

// synth is the algorithmic strategy's per-node dispatch: it derives a
// node's type directly, unifying immediately against sm wherever two
// derived types must agree, rather than emitting a constraint for the
// collect/unify.Solve pipeline ConstraintBased uses. Failures are reported
// through r and synth continues with a best-effort type so sibling
// expressions still get checked, matching collect.Collector's own
// accumulate-and-continue propagation policy.
func synth(expr ast.Expression, sm *scope.ScopeManager, r *diagnostic.Reporter) types.Type {
	switch e := expr.(type) {
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

	case ast.TupleLit:
		elems := make([]types.Type, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = sm.Resolve(synth(el, sm, r))
		}
		return types.Tuple{Elems: elems}

	case ast.ListLit:
		return synthList(e, sm, r)

	case ast.Identifier:
		return synthIdentifier(e, sm, r)

	case ast.Binary:
		return synthBinary(e, sm, r)

	case ast.Unary:
		return synthUnary(e, sm, r)

	case ast.Call:
		return synthCall(e, sm, r)

	case ast.ConstructorCall:
		return synthConstructorCall(e, sm, r)

	case ast.If:
		return synthIf(e, sm, r)

	case ast.While:
		cond := synth(e.Cond, sm, r)
		if _, err := sm.Unify(cond, types.Primitive{Name: "Boolean"}); err != nil {
			r.Add(translateUnify(err, e.Cond.GetPos()))
		}
		synth(e.Body, sm, r)
		return types.Primitive{Name: "Unit"}

	case ast.Match:
		return synthMatch(e, sm, r)

	case ast.Block:
		return synthBlock(e, sm, r)

	case ast.Lambda:
		return synthLambda(e, sm, r)

	case ast.For:
		return synthFor(e, sm, r)

	default:
		r.Add(diagnostic.New(diagnostic.InvalidOperation, expr.GetPos(), fmt.Sprintf("unsupported expression %T", expr)))
		return types.Primitive{Name: "Unit"}
	}
}

func synthList(e ast.ListLit, sm *scope.ScopeManager, r *diagnostic.Reporter) types.Type {
	if len(e.Elems) == 0 {
		return types.Generic{Name: "List", Args: []types.Type{types.Primitive{Name: "Unit"}}}
	}
	first := synth(e.Elems[0], sm, r)
	for _, rest := range e.Elems[1:] {
		t := synth(rest, sm, r)
		if _, err := sm.Unify(t, first); err != nil {
			r.Add(translateUnify(err, rest.GetPos()))
		}
	}
	return types.Generic{Name: "List", Args: []types.Type{sm.Resolve(first)}}
}

func synthIdentifier(e ast.Identifier, sm *scope.ScopeManager, r *diagnostic.Reporter) types.Type {
	if b, ok := sm.Lookup(e.Name); ok {
		return sm.Resolve(b.Type)
	}
	// Zero-arity constructor used bare, e.g. `None`.
	defs := sm.AllTypeDefinitions()
	if unionName, def, variant, ok := scope.FindVariantOwner(defs, e.Name); ok && variant.IsNullary() {
		args := make([]types.Type, len(def.TypeParams))
		for i := range args {
			args[i] = types.Fresh()
		}
		return types.Union{Name: unionName, Args: args}
	}
	r.Add(diagnostic.New(diagnostic.UnresolvedSymbol, e.Pos, "unresolved identifier "+e.Name))
	return types.Fresh()
}

func synthBinary(e ast.Binary, sm *scope.ScopeManager, r *diagnostic.Reporter) types.Type {
	left := sm.Resolve(synth(e.Left, sm, r))
	right := sm.Resolve(synth(e.Right, sm, r))

	leftP, lok := left.(types.Primitive)
	rightP, rok := right.(types.Primitive)
	_, lvar := types.AsVariable(left)
	_, rvar := types.AsVariable(right)

	switch {
	case algoArithmeticOps[e.Op]:
		switch {
		case lok && rok:
			if w, ok := types.Wider(leftP.Name, rightP.Name); ok {
				return types.Primitive{Name: w}
			}
		case lvar && rok && types.IsNumeric(rightP.Name):
			// A still-unsolved operand (a lambda parameter, a pattern
			// binding) is pinned to the concrete side's numeric type.
			if _, err := sm.Unify(left, right); err != nil {
				r.Add(translateUnify(err, e.Pos))
			}
			return right
		case rvar && lok && types.IsNumeric(leftP.Name):
			if _, err := sm.Unify(right, left); err != nil {
				r.Add(translateUnify(err, e.Pos))
			}
			return left
		case lvar && rvar:
			if _, err := sm.Unify(left, right); err != nil {
				r.Add(translateUnify(err, e.Pos))
			}
			return sm.Resolve(left)
		}
		r.Add(diagnostic.New(diagnostic.InvalidOperation, e.Pos,
			fmt.Sprintf("operator %s requires numeric operands, got %s and %s", e.Op, left, right)))
		return types.Fresh()

	case algoComparisonOps[e.Op]:
		switch {
		case lok && rok && leftP.Name == rightP.Name:
			return types.Primitive{Name: "Boolean"}
		case lok && rok:
			if _, ok := types.Wider(leftP.Name, rightP.Name); ok {
				return types.Primitive{Name: "Boolean"}
			}
		case lvar || rvar:
			if _, err := sm.Unify(left, right); err != nil {
				r.Add(translateUnify(err, e.Pos))
			}
			return types.Primitive{Name: "Boolean"}
		}
		r.Add(diagnostic.New(diagnostic.InvalidOperation, e.Pos,
			fmt.Sprintf("operator %s requires compatible numeric or equal primitive operands, got %s and %s", e.Op, left, right)))
		return types.Primitive{Name: "Boolean"}

	case algoEqualityOps[e.Op]:
		if _, err := sm.Unify(left, right); err != nil {
			r.Add(translateUnify(err, e.Pos))
		}
		return types.Primitive{Name: "Boolean"}

	case algoLogicalOps[e.Op]:
		if _, err := sm.Unify(left, types.Primitive{Name: "Boolean"}); err != nil {
			r.Add(translateUnify(err, e.Left.GetPos()))
		}
		if _, err := sm.Unify(right, types.Primitive{Name: "Boolean"}); err != nil {
			r.Add(translateUnify(err, e.Right.GetPos()))
		}
		return types.Primitive{Name: "Boolean"}

	default:
		r.Add(diagnostic.New(diagnostic.InvalidOperation, e.Pos, "unknown operator "+e.Op))
		return types.Fresh()
	}
}

func synthUnary(e ast.Unary, sm *scope.ScopeManager, r *diagnostic.Reporter) types.Type {
	operand := sm.Resolve(synth(e.Operand, sm, r))
	switch e.Op {
	case "-":
		if p, ok := operand.(types.Primitive); ok {
			if _, numeric := types.NumericRank(p.Name); numeric {
				return p
			}
		}
		r.Add(diagnostic.New(diagnostic.InvalidOperation, e.Pos, "unary - requires a numeric operand"))
		return types.Fresh()
	case "!":
		if _, err := sm.Unify(operand, types.Primitive{Name: "Boolean"}); err != nil {
			r.Add(translateUnify(err, e.Pos))
		}
		return types.Primitive{Name: "Boolean"}
	default:
		r.Add(diagnostic.New(diagnostic.InvalidOperation, e.Pos, "unknown unary operator "+e.Op))
		return types.Fresh()
	}
}

func synthCall(e ast.Call, sm *scope.ScopeManager, r *diagnostic.Reporter) types.Type {
	calleeType := sm.Resolve(synth(e.Callee, sm, r))

	argTypes := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		argTypes[i] = sm.Resolve(synth(a, sm, r))
	}

	fn, ok := calleeType.(types.Function)
	if !ok {
		if v, isVar := types.AsVariable(calleeType); isVar {
			ret := types.Fresh()
			shape := types.Function{Params: argTypes, Ret: ret}
			if _, err := sm.Unify(types.Var{ID: v}, shape); err != nil {
				r.Add(translateUnify(err, e.Pos))
			}
			return sm.Resolve(ret)
		}
		r.Add(diagnostic.New(diagnostic.InvalidOperation, e.Pos, "cannot call a non-function type "+calleeType.String()))
		return types.Fresh()
	}

	if len(fn.Params) != len(argTypes) {
		r.Add(diagnostic.New(diagnostic.ArityMismatch, e.Pos,
			fmt.Sprintf("expected %d argument(s), got %d", len(fn.Params), len(argTypes))))
		return fn.Ret
	}
	for i, p := range fn.Params {
		if _, err := sm.Unify(argTypes[i], p); err != nil {
			r.Add(translateUnify(err, e.Args[i].GetPos()))
		}
	}
	return sm.Resolve(fn.Ret)
}

func synthConstructorCall(e ast.ConstructorCall, sm *scope.ScopeManager, r *diagnostic.Reporter) types.Type {
	defs := sm.AllTypeDefinitions()
	unionName, def, variant, ok := scope.FindVariantOwner(defs, e.Name)
	if !ok {
		r.Add(diagnostic.New(diagnostic.UnresolvedSymbol, e.Pos, "unknown constructor "+e.Name))
		return types.Fresh()
	}
	if len(e.Args) != variant.Arity() {
		r.Add(diagnostic.New(diagnostic.ArityMismatch, e.Pos,
			fmt.Sprintf("constructor %s expects %d argument(s), got %d", e.Name, variant.Arity(), len(e.Args))))
	}

	freshArgs := make([]types.Type, len(def.TypeParams))
	for i := range freshArgs {
		freshArgs[i] = types.Fresh()
	}
	paramSubst := types.Subst{}
	for i, p := range def.TypeParams {
		paramSubst[p] = freshArgs[i]
	}

	n := len(e.Args)
	if variant.Arity() < n {
		n = variant.Arity()
	}
	for i := 0; i < n; i++ {
		argType := synth(e.Args[i], sm, r)
		fieldType := sm.Resolve(paramSubst.Apply(variant.Fields[i]))
		if _, err := sm.Unify(argType, fieldType); err != nil {
			r.Add(translateUnify(err, e.Args[i].GetPos()))
		}
	}

	resolvedArgs := make([]types.Type, len(freshArgs))
	for i, a := range freshArgs {
		resolvedArgs[i] = sm.Resolve(a)
	}
	return types.Union{Name: unionName, Args: resolvedArgs}
}

func synthIf(e ast.If, sm *scope.ScopeManager, r *diagnostic.Reporter) types.Type {
	condType := synth(e.Cond, sm, r)
	if _, err := sm.Unify(condType, types.Primitive{Name: "Boolean"}); err != nil {
		r.Add(translateUnify(err, e.Cond.GetPos()))
	}

	thenType := synth(e.Then, sm, r)
	if e.Else == nil {
		return types.Primitive{Name: "Unit"}
	}

	elseType := synth(e.Else, sm, r)
	if _, err := sm.Unify(thenType, elseType); err != nil {
		r.Add(translateUnify(err, e.Pos))
	}
	return sm.Resolve(thenType)
}

func synthMatch(e ast.Match, sm *scope.ScopeManager, r *diagnostic.Reporter) types.Type {
	scrutType := sm.Resolve(synth(e.Scrutinee, sm, r))

	var results []pattern.DirectResult
	var caseTypes []types.Type
	for _, cse := range e.Cases {
		sm.PushScope()
		res := pattern.CheckDirect(cse.Pattern, scrutType, sm, r)
		for name, t := range res.Bindings {
			if err := sm.DeclareVariable(scope.Binding{Name: name, Type: t, Declared: cse.Pattern.GetPos()}); err != nil {
				r.Add(diagnostic.New(diagnostic.DuplicateDefinition, cse.Pattern.GetPos(), err.Error()))
			}
		}
		results = append(results, res)

		if cse.Guard != nil {
			guardType := synth(cse.Guard, sm, r)
			if _, err := sm.Unify(guardType, types.Primitive{Name: "Boolean"}); err != nil {
				r.Add(translateUnify(err, cse.Guard.GetPos()))
			}
		}
		bodyType := synth(cse.Body, sm, r)
		caseTypes = append(caseTypes, bodyType)
		sm.PopScope()
	}

	if ok, missing := pattern.ExhaustiveDirect(results, scrutType, sm); !ok {
		r.Add(diagnostic.New(diagnostic.NonExhaustiveMatch, e.Pos,
			fmt.Sprintf("non-exhaustive match, missing: %v", missing)))
	}

	if len(caseTypes) == 0 {
		return types.Primitive{Name: "Unit"}
	}
	result := caseTypes[0]
	for i, t := range caseTypes[1:] {
		if _, err := sm.Unify(t, result); err != nil {
			r.Add(translateUnify(err, e.Cases[i+1].Body.GetPos()))
		}
	}
	return sm.Resolve(result)
}

func synthBlock(e ast.Block, sm *scope.ScopeManager, r *diagnostic.Reporter) types.Type {
	sm.PushScope()
	defer sm.PopScope()

	var last types.Type = types.Primitive{Name: "Unit"}
	for _, stmt := range e.Stmts {
		switch s := stmt.(type) {
		case ast.ExprStmt:
			last = synth(s.Expr, sm, r)
		case ast.ConstDecl:
			last = synthConstDecl(s, sm, r)
		}
	}
	return last
}

// synthConstDecl declares a new Binding in sm's innermost scope — the
// monomorphic imperative-path counterpart of collectConstDecl's
// generalize-into-a-Scheme step. The ScopeManager has no notion of a
// polymorphic Scheme (spec section 4.D's Binding type is plain name/type),
// so a name bound here is fixed to the type it synthesized at this site.
func synthConstDecl(s ast.ConstDecl, sm *scope.ScopeManager, r *diagnostic.Reporter) types.Type {
	var valueType types.Type
	if s.TypeAnnotation != nil {
		annotated := collect.BuildType(s.TypeAnnotation, sm)
		synthesized := synth(s.Value, sm, r)
		if _, err := sm.Unify(synthesized, annotated); err != nil {
			r.Add(translateUnify(err, s.Pos))
		}
		valueType = annotated
	} else {
		valueType = sm.Resolve(synth(s.Value, sm, r))
	}

	if s.Pattern != nil {
		res := pattern.CheckDirect(s.Pattern, valueType, sm, r)
		for name, t := range res.Bindings {
			if err := sm.DeclareVariable(scope.Binding{Name: name, Type: t, Declared: s.Pos}); err != nil {
				r.Add(diagnostic.New(diagnostic.DuplicateDefinition, s.Pos, err.Error()))
			}
		}
		return types.Primitive{Name: "Unit"}
	}

	if err := sm.DeclareVariable(scope.Binding{Name: s.Name, Type: valueType, Declared: s.Pos}); err != nil {
		r.Add(diagnostic.New(diagnostic.DuplicateDefinition, s.Pos, err.Error()))
	}
	return valueType
}

func synthLambda(e ast.Lambda, sm *scope.ScopeManager, r *diagnostic.Reporter) types.Type {
	sm.PushScope()
	paramTypes := make([]types.Type, len(e.Params))
	for i, name := range e.Params {
		v := types.Fresh()
		paramTypes[i] = v
		if err := sm.DeclareVariable(scope.Binding{Name: name, Type: v, Declared: e.Pos}); err != nil {
			r.Add(diagnostic.New(diagnostic.DuplicateDefinition, e.Pos, err.Error()))
		}
	}
	bodyType := synth(e.Body, sm, r)
	sm.PopScope()

	resolvedParams := make([]types.Type, len(paramTypes))
	for i, p := range paramTypes {
		resolvedParams[i] = sm.Resolve(p)
	}
	return types.Function{Params: resolvedParams, Ret: sm.Resolve(bodyType)}
}

func synthFor(e ast.For, sm *scope.ScopeManager, r *diagnostic.Reporter) types.Type {
	iterType := synth(e.Iterable, sm, r)
	elemVar := types.Fresh()
	if _, err := sm.Unify(iterType, types.Generic{Name: "List", Args: []types.Type{elemVar}}); err != nil {
		r.Add(translateUnify(err, e.Iterable.GetPos()))
	}

	sm.PushScope()
	if err := sm.DeclareVariable(scope.Binding{Name: e.Var, Type: sm.Resolve(elemVar), Declared: e.Pos}); err != nil {
		r.Add(diagnostic.New(diagnostic.DuplicateDefinition, e.Pos, err.Error()))
	}
	synth(e.Body, sm, r)
	sm.PopScope()

	// Resolved open question: the For expression's result is the iterable's
	// element type (see DESIGN.md), mirroring collectFor's own resolution.
	return sm.Resolve(elemVar)
}

package collect

import (
	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/scope"
	"github.com/funvibe/typecore/internal/types"
)

// BuildType resolves an AST-level type annotation into a concrete
// types.Type. A bare name is resolved, in order: against the closed
// primitive set, against a known union type definition (zero type
// arguments defaults each parameter to a fresh variable, matching how a
// bare generic name is treated elsewhere in this package), or otherwise
// as a Named reference (a type parameter in scope, or an as-yet-unknown
// nominal type). An unknown name is not reported as UndefinedType, here or
// by the callers of BuildType.
func BuildType(te ast.TypeExpr, ctx scope.TypeDefLookup) types.Type {
	switch t := te.(type) {
	case ast.NamedTypeExpr:
		if types.BuiltinPrimitives[t.Name] && len(t.Args) == 0 {
			return types.Primitive{Name: t.Name}
		}
		if def, ok := ctx.LookupTypeDefinition(t.Name); ok {
			args := make([]types.Type, len(def.TypeParams))
			for i := range args {
				if i < len(t.Args) {
					args[i] = BuildType(t.Args[i], ctx)
				} else {
					args[i] = types.Fresh()
				}
			}
			return types.Union{Name: t.Name, Args: args}
		}
		if len(t.Args) == 0 {
			return types.Named{Name: t.Name}
		}
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = BuildType(a, ctx)
		}
		return types.Generic{Name: t.Name, Args: args}

	case ast.NullableTypeExpr:
		return types.NewNullable(BuildType(t.Base, ctx))

	case ast.TupleTypeExpr:
		elems := make([]types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = BuildType(e, ctx)
		}
		return types.Tuple{Elems: elems}

	case ast.FunctionTypeExpr:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = BuildType(p, ctx)
		}
		return types.Function{Params: params, Ret: BuildType(t.Ret, ctx)}

	default:
		return types.Fresh()
	}
}

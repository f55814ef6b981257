package scope

import "github.com/funvibe/typecore/internal/types"

// InferenceContext is an immutable, parent-linked scope. Every "with*"
// method returns a new InferenceContext that shares its parent's maps by
// reference rather than copying them — insertion allocates only the one
// new frame, the same structural-sharing discipline the spec's Scope /
// Environment section calls for.
type InferenceContext struct {
	variables map[string]types.Scheme
	typeDefs  map[string]UnionDef
	functions map[string]FunctionSig
	parent    *InferenceContext
	depth     int
}

// NewRoot returns an empty root InferenceContext at depth 0.
func NewRoot() *InferenceContext {
	return &InferenceContext{
		variables: map[string]types.Scheme{},
		typeDefs:  map[string]UnionDef{},
		functions: map[string]FunctionSig{},
		depth:     0,
	}
}

// Depth returns how many scopes separate this context from the root.
func (c *InferenceContext) Depth() int { return c.depth }

// WithVariable binds name to a monomorphic type in a new child frame.
func (c *InferenceContext) WithVariable(name string, t types.Type) *InferenceContext {
	return c.WithVariableScheme(name, types.Mono(t))
}

// WithVariableScheme binds name to an arbitrary (possibly polymorphic)
// scheme in a new child frame.
func (c *InferenceContext) WithVariableScheme(name string, sc types.Scheme) *InferenceContext {
	next := c.child()
	next.variables = map[string]types.Scheme{name: sc}
	return next
}

// WithTypeDefinition registers a union type definition in a new child
// frame.
func (c *InferenceContext) WithTypeDefinition(name string, def UnionDef) *InferenceContext {
	next := c.child()
	next.typeDefs = map[string]UnionDef{name: def}
	return next
}

// WithFunctionSignature registers a function signature in a new child
// frame.
func (c *InferenceContext) WithFunctionSignature(name string, sig FunctionSig) *InferenceContext {
	next := c.child()
	next.functions = map[string]FunctionSig{name: sig}
	return next
}

func (c *InferenceContext) child() *InferenceContext {
	return &InferenceContext{
		variables: map[string]types.Scheme{},
		typeDefs:  map[string]UnionDef{},
		functions: map[string]FunctionSig{},
		parent:    c,
		depth:     c.depth + 1,
	}
}

// EnterScope pushes an empty child frame, used at block/lambda/for
// boundaries that introduce no bindings of their own yet.
func (c *InferenceContext) EnterScope() *InferenceContext {
	return c.child()
}

// EnterScopeWith pushes a child frame pre-populated with the given
// monomorphic variable bindings, used for lambda parameters and pattern
// bindings introduced all at once.
func (c *InferenceContext) EnterScopeWith(vars map[string]types.Type) *InferenceContext {
	next := c.child()
	for name, t := range vars {
		next.variables[name] = types.Mono(t)
	}
	return next
}

// EnterScopeWithSchemes is EnterScopeWith for callers that already have
// full (possibly polymorphic) schemes to install, e.g. a let-binding that
// was just generalized.
func (c *InferenceContext) EnterScopeWithSchemes(vars map[string]types.Scheme) *InferenceContext {
	next := c.child()
	for name, sc := range vars {
		next.variables[name] = sc
	}
	return next
}

// LookupVariable walks parents outward looking for name.
func (c *InferenceContext) LookupVariable(name string) (types.Scheme, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if sc, ok := ctx.variables[name]; ok {
			return sc, true
		}
	}
	return types.Scheme{}, false
}

// LookupTypeDefinition walks parents outward looking for a union type
// definition named name.
func (c *InferenceContext) LookupTypeDefinition(name string) (UnionDef, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if def, ok := ctx.typeDefs[name]; ok {
			return def, true
		}
	}
	return UnionDef{}, false
}

// AllTypeDefinitions flattens every type definition visible from this
// context into one map, child definitions shadowing parent ones of the
// same name. Used by the pattern checker's exhaustiveness and variant
// lookup, which need to search across all declared unions at once.
func (c *InferenceContext) AllTypeDefinitions() map[string]UnionDef {
	out := map[string]UnionDef{}
	var frames []*InferenceContext
	for ctx := c; ctx != nil; ctx = ctx.parent {
		frames = append(frames, ctx)
	}
	for i := len(frames) - 1; i >= 0; i-- {
		for name, def := range frames[i].typeDefs {
			out[name] = def
		}
	}
	return out
}

// LookupFunctionSignature walks parents outward looking for a function
// signature named name.
func (c *InferenceContext) LookupFunctionSignature(name string) (FunctionSig, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if sig, ok := ctx.functions[name]; ok {
			return sig, true
		}
	}
	return FunctionSig{}, false
}

// FreeTypeVars is the union of free variables over every scheme bound
// anywhere in this context chain (this frame and all its parents). It is
// the "envFreeVars" term in generalize's definition below.
func (c *InferenceContext) FreeTypeVars() map[string]bool {
	out := map[string]bool{}
	for ctx := c; ctx != nil; ctx = ctx.parent {
		for _, sc := range ctx.variables {
			for n := range sc.FreeVars() {
				out[n] = true
			}
		}
	}
	return out
}

// Generalize turns t into a scheme quantifying every variable in
// candidateVars that is not free somewhere in the enclosing environment:
// generalize(t, Q) = Scheme(Q \ envFreeVars, t). This is the standard
// let-polymorphism generalization step; the spec's invariant 7 requires
// exactly this disjointness.
func (c *InferenceContext) Generalize(t types.Type, candidateVars map[string]bool) types.Scheme {
	envFree := c.FreeTypeVars()
	quantified := map[string]bool{}
	for v := range candidateVars {
		if !envFree[v] {
			quantified[v] = true
		}
	}
	return types.Scheme{Quantified: quantified, Body: t}
}

// TypeContext is the caller-provided, pre-populated registry the driver
// (section 4.I) is handed before checking begins: built-in bindings,
// declared function signatures, and union type definitions, but no
// inference-specific scoping yet. It is the "collaborator" the spec's
// external-interfaces section describes.
type TypeContext struct {
	Variables map[string]types.Scheme
	TypeDefs  map[string]UnionDef
	Functions map[string]FunctionSig
}

// NewTypeContext returns an empty TypeContext ready to be populated by a
// caller before the first typeCheck call.
func NewTypeContext() *TypeContext {
	return &TypeContext{
		Variables: map[string]types.Scheme{},
		TypeDefs:  map[string]UnionDef{},
		Functions: map[string]FunctionSig{},
	}
}

// FromTypeContext copies every variable, type definition, and function
// signature from tc into a fresh root InferenceContext, giving the
// constraint-based strategy its starting scope.
func FromTypeContext(tc *TypeContext) *InferenceContext {
	root := NewRoot()
	for name, sc := range tc.Variables {
		root.variables[name] = sc
	}
	for name, def := range tc.TypeDefs {
		root.typeDefs[name] = def
	}
	for name, sig := range tc.Functions {
		root.functions[name] = sig
	}
	return root
}

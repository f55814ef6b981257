package scope

import (
	"fmt"

	"github.com/funvibe/typecore/internal/token"
	"github.com/funvibe/typecore/internal/types"
	"github.com/funvibe/typecore/internal/unify"
)

// Binding is a single variable entry in the imperative scope stack:
// (name, type, mutable?, declaration location).
type Binding struct {
	Name     string
	Type     types.Type
	Mutable  bool
	Declared token.Position
}

type frame struct {
	bindings map[string]Binding
}

// ScopeManager is the mutable stack of lexical frames used by the
// algorithmic checking strategy. Unlike InferenceContext it is not
// persistent: pushScope/popScope mutate one stack in place, matching the
// save/restore-by-reassignment style the teacher's own statement checkers
// use around block bodies.
type ScopeManager struct {
	frames    []frame
	typeDefs  map[string]UnionDef
	functions map[string]FunctionSig

	// subst is the running substitution the algorithmic driver accumulates
	// as it unifies types immediately, node by node, instead of collecting
	// constraints for a later, separate solve. This mirrors the teacher's
	// InferenceContext.GlobalSubst field (internal/analyzer/inference.go):
	// same idea, solve-as-you-go, kept here instead because this is the
	// scope representation the algorithmic strategy actually threads.
	subst types.Subst
}

// NewScopeManager returns a manager with a single root frame. Popping the
// root frame is an invariant violation (see PopScope).
func NewScopeManager() *ScopeManager {
	return &ScopeManager{
		frames:    []frame{{bindings: map[string]Binding{}}},
		typeDefs:  map[string]UnionDef{},
		functions: map[string]FunctionSig{},
		subst:     types.Empty(),
	}
}

// Unify immediately unifies a and b against the manager's running
// substitution (resolving each first) and composes the result into it,
// returning the substitution unification produced. Callers that need the
// resolved form of some other type after a Unify call should pass it
// through Resolve rather than reusing a pre-call value.
func (m *ScopeManager) Unify(a, b types.Type) (types.Subst, error) {
	s, err := unify.Unify(m.subst.Apply(a), m.subst.Apply(b))
	if err != nil {
		return nil, err
	}
	m.subst = types.Compose(s, m.subst)
	return s, nil
}

// Resolve applies the manager's accumulated running substitution to t.
func (m *ScopeManager) Resolve(t types.Type) types.Type {
	return m.subst.Apply(t)
}

// Depth returns the current stack depth; the root frame is depth 0.
func (m *ScopeManager) Depth() int { return len(m.frames) - 1 }

// PushScope brackets entry into a new block.
func (m *ScopeManager) PushScope() {
	m.frames = append(m.frames, frame{bindings: map[string]Binding{}})
}

// PopScope brackets exit from the innermost block. Popping the root scope
// panics: it is an invariant violation, never a recoverable user-facing
// error, exactly as the spec's invariant 8 requires ("popping below depth 0
// is an error").
func (m *ScopeManager) PopScope() {
	if len(m.frames) <= 1 {
		panic("scope: cannot pop the root scope")
	}
	m.frames = m.frames[:len(m.frames)-1]
}

// DuplicateDefinitionError reports that name was already declared in the
// innermost active scope.
type DuplicateDefinitionError struct {
	Name     string
	Previous token.Position
}

func (e *DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("%q is already defined in this scope (previous declaration at %s)", e.Name, e.Previous)
}

// DeclareVariable adds a new binding to the innermost scope. It fails with
// DuplicateDefinitionError only when name collides within that innermost
// scope — shadowing a binding from an enclosing scope is permitted.
func (m *ScopeManager) DeclareVariable(b Binding) error {
	top := &m.frames[len(m.frames)-1]
	if prev, exists := top.bindings[b.Name]; exists {
		return &DuplicateDefinitionError{Name: b.Name, Previous: prev.Declared}
	}
	top.bindings[b.Name] = b
	return nil
}

// Lookup walks the stack from innermost to outermost looking for name.
func (m *ScopeManager) Lookup(name string) (Binding, bool) {
	for i := len(m.frames) - 1; i >= 0; i-- {
		if b, ok := m.frames[i].bindings[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// VisibleNames returns every name visible from the current innermost
// scope, used by tests asserting the push/pop invariant (spec invariant 8:
// popScope after N pushScope calls restores the previous visible-variables
// set).
func (m *ScopeManager) VisibleNames() map[string]bool {
	out := map[string]bool{}
	for _, f := range m.frames {
		for name := range f.bindings {
			out[name] = true
		}
	}
	return out
}

func (m *ScopeManager) DefineTypeDefinition(name string, def UnionDef) {
	m.typeDefs[name] = def
}

func (m *ScopeManager) LookupTypeDefinition(name string) (UnionDef, bool) {
	def, ok := m.typeDefs[name]
	return def, ok
}

func (m *ScopeManager) AllTypeDefinitions() map[string]UnionDef {
	out := make(map[string]UnionDef, len(m.typeDefs))
	for k, v := range m.typeDefs {
		out[k] = v
	}
	return out
}

func (m *ScopeManager) DefineFunctionSignature(name string, sig FunctionSig) {
	m.functions[name] = sig
}

func (m *ScopeManager) LookupFunctionSignature(name string) (FunctionSig, bool) {
	sig, ok := m.functions[name]
	return sig, ok
}

// FromTypeContextManager builds a ScopeManager whose root frame and type
// registries are seeded from tc, the imperative-path equivalent of
// FromTypeContext.
func FromTypeContextManager(tc *TypeContext) *ScopeManager {
	m := NewScopeManager()
	for name, sc := range tc.Variables {
		// The imperative path deals only in monomorphic bindings (Binding
		// has a plain Type, not a Scheme), so polymorphic TypeContext
		// entries are skipped here; callers that need per-use
		// instantiation go through InferenceContext instead.
		if len(sc.Quantified) == 0 {
			m.frames[0].bindings[name] = Binding{Name: name, Type: sc.Body}
		}
	}
	for name, def := range tc.TypeDefs {
		m.typeDefs[name] = def
	}
	for name, sig := range tc.Functions {
		m.functions[name] = sig
	}
	return m
}

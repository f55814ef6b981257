package types

import (
	"strings"
	"sync"
)

// Factory interns type terms keyed by their structural signature (the
// variant-tagged rendering compare.go's memo also uses, not the ambiguous
// String form), so repeated construction of the same structural type returns the
// identical Go value. Interning is purely a memory/performance optimization
// adapted from the teacher's typesystem package, which interns every
// structural variant the same way: algorithmic correctness here never
// depends on pointer identity, only on structuralEquals (see compare.go).
//
// The backing map is a sync.Map rather than a plain map guarded by a mutex:
// lock-free insertion with last-writer-wins semantics is exactly what the
// spec's concurrency model calls for, and it is safe because every interned
// value is immutable once built.
type Factory struct {
	cache sync.Map // string -> Type
}

// NewFactory returns a fresh, empty interning factory. Embedding hosts that
// check multiple independent compilation units concurrently should use one
// Factory per unit, or a single shared Factory if they want interning to
// span units (both are safe).
func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) intern(t Type) Type {
	var sb strings.Builder
	writeMemoKey(&sb, t)
	key := sb.String()
	if existing, ok := f.cache.Load(key); ok {
		return existing.(Type)
	}
	actual, _ := f.cache.LoadOrStore(key, t)
	return actual.(Type)
}

func (f *Factory) CreatePrimitive(name string) Type {
	return f.intern(Primitive{Name: name})
}

func (f *Factory) CreateNamed(name string) Type {
	return f.intern(Named{Name: name})
}

func (f *Factory) CreateGeneric(name string, args []Type) Type {
	return f.intern(Generic{Name: name, Args: args})
}

func (f *Factory) CreateTuple(elems []Type) Type {
	return f.intern(Tuple{Elems: elems})
}

func (f *Factory) CreateFunction(params []Type, ret Type) Type {
	return f.intern(Function{Params: params, Ret: ret})
}

func (f *Factory) CreateNullable(base Type) Type {
	return f.intern(NewNullable(base))
}

func (f *Factory) CreateUnion(name string, args []Type) Type {
	return f.intern(Union{Name: name, Args: args})
}

// FreshVar delegates to the package-level, process-wide counter (see
// fresh.go); it is a method on Factory only so call sites that already hold
// a Factory don't need a second import to mint variables.
func (f *Factory) FreshVar() Type {
	return Fresh()
}

// Default is a shared Factory for callers that don't need per-unit
// isolation. Nothing in this module uses it.
var Default = NewFactory()

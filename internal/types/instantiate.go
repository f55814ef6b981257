package types

// Instantiate replaces every quantified variable of sc with a fresh
// variable, consistently across the scheme's body, and returns the
// instantiated type together with the substitution used, so callers can
// tell whether any instantiation actually happened (empty means the scheme
// was monomorphic) and which fresh variables were minted.
func Instantiate(sc Scheme) (Type, Subst) {
	if len(sc.Quantified) == 0 {
		return sc.Body, Empty()
	}
	s := Subst{}
	for _, name := range SortedNames(sc.Quantified) {
		s[name] = Fresh()
	}
	return s.Apply(sc.Body), s
}

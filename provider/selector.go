package provider

// Predicate decides whether a provider is the target wallet.
type Predicate func(Injected) bool

// HasFlag returns a predicate matching providers whose descriptor carries flag.
func HasFlag(flag string) Predicate {
	return func(p Injected) bool {
		return p != nil && p.Descriptor().HasFlag(flag)
	}
}

// SelectTarget returns the first provider in list order for which pred
// holds. It has no side effects, so the same list always yields the same
// provider.
func SelectTarget(list []Injected, pred Predicate) (Injected, bool) {
	for _, p := range list {
		if pred(p) {
			return p, true
		}
	}
	return nil, false
}

package carriers

// Toggle returns set with v added at the end (checked) or removed (unchecked).
// Adding a present value or removing an absent one returns an equal copy.
// The input slice is never modified.
func Toggle(set []string, v string, checked bool) []string {
	if checked {
		out := cloneSet(set)
		if contains(set, v) {
			return out
		}
		return append(out, v)
	}
	out := make([]string, 0, len(set))
	for _, existing := range set {
		if existing != v {
			out = append(out, existing)
		}
	}
	return out
}

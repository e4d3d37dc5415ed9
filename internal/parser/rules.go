package parser

// rule is one named attempt at extracting a T from a line.
type rule[T any] struct {
	name  string
	apply func(line string) (T, bool)
}

// firstMatch tries rules in order and returns the result of the first one that matches.
func firstMatch[T any](rules []rule[T], line string) (T, string, bool) {
	for _, r := range rules {
		if v, ok := r.apply(line); ok {
			return v, r.name, true
		}
	}
	var zero T
	return zero, "", false
}

package schema

// Match reports whether every pair of the schema carries equal values.
// An absent request identifier on either side does not disqualify the pair.
// An empty schema matches everything.
func (s Schema) Match(from, to Lookup) bool {
	for _, p := range s {
		fv, fok := from.Get(p.From)
		tv, tok := to.Get(p.To)
		if (p.From == RequestKey || p.To == RequestKey) && (!fok || !tok) {
			continue
		}
		if !fok || !tok || fv != tv {
			return false
		}
	}
	return true
}

// Validate checks the schema definition itself.
// Returns an error with all failures found.
func Validate(s Schema) error {
	var errs []error
	seen := make(map[Pair]bool, len(s))

	for i, p := range s {
		if p.From == "" || p.To == "" {
			errs = append(errs, &ValidationError{
				Key:    p.String(),
				Reason: "empty key",
				Value:  i,
			})
			continue
		}
		if seen[p] {
			errs = append(errs, &ValidationError{
				Key:    p.String(),
				Reason: "duplicate pair",
			})
		}
		seen[p] = true
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

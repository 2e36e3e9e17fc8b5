package extractor

// Candidate is one labelled source in a fallback chain.
type Candidate[T any, L any] struct {
	Label   L
	Extract func(Record) (T, bool)
}

// FirstPresent evaluates candidates in order and returns the first present value with its label.
func FirstPresent[T any, L any](rec Record, candidates []Candidate[T, L]) (T, L, bool) {
	for _, c := range candidates {
		if v, ok := c.Extract(rec); ok {
			return v, c.Label, true
		}
	}
	var zeroT T
	var zeroL L
	return zeroT, zeroL, false
}

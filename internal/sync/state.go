package sync

import "github.com/schaermu/webglsld/internal/shader"

// Fingerprints holds the last emitted content fingerprint per pair. A pair
// without an entry reads as the empty string, which never matches a real
// fingerprint, so the first tick always emits.
type Fingerprints map[shader.Pair]string

// Result summarizes one tick
type Result struct {
	Updated   []shader.Pair
	Unchanged []shader.Pair
	Failed    []PairError
}

// PairError records a failure for one pair
type PairError struct {
	Pair shader.Pair
	Err  error
}

func (e PairError) Error() string {
	return e.Pair.String() + ": " + e.Err.Error()
}

func (e PairError) Unwrap() error {
	return e.Err
}

package shader

import (
	"fmt"
	"path/filepath"
)

// PairingPolicy defines what happens when several destination files match
// the same source file.
type PairingPolicy string

const (
	// PairingFanOut emits one pair per matching destination.
	PairingFanOut PairingPolicy = "fanout"
	// PairingFirst keeps only the first matching destination.
	PairingFirst PairingPolicy = "first"
	// PairingStrict fails with ErrAmbiguousPairing on multiple matches.
	PairingStrict PairingPolicy = "strict"
)

// Valid reports whether p is a known policy.
func (p PairingPolicy) Valid() bool {
	switch p {
	case PairingFanOut, PairingFirst, PairingStrict:
		return true
	}
	return false
}

// Pair is a source file and the module file generated from it
type Pair struct {
	Source string
	Dest   string
}

func (p Pair) String() string {
	return p.Source + " -> " + p.Dest
}

// ResolvePairs matches source files to destination files by name: a.glsl
// pairs with a.glsl.js. Output follows source order, then destination order.
// Sources without the source extension and unmatched destinations are
// ignored. An empty result is not an error.
func ResolvePairs(sources, dests []string, opts Options) ([]Pair, error) {
	opts = opts.normalize()

	pairs := make([]Pair, 0, len(sources))
	for _, src := range sources {
		if !opts.IsSourceFile(filepath.Base(src)) {
			continue
		}
		want := opts.ModuleName(src)

		matched := 0
		for _, dst := range dests {
			if filepath.Base(dst) != want {
				continue
			}
			matched++

			switch opts.Pairing {
			case PairingFirst:
				if matched > 1 {
					continue
				}
			case PairingStrict:
				if matched > 1 {
					return nil, fmt.Errorf("%w: %s matches more than one destination", ErrAmbiguousPairing, src)
				}
			}
			pairs = append(pairs, Pair{Source: src, Dest: dst})
		}
	}

	return pairs, nil
}

// Discover returns the pairs tracked for target. Single mode yields exactly
// one pair; directory mode lists both directories and resolves pairs.
func Discover(target Target, opts Options) ([]Pair, error) {
	if target.Mode == ModeSingle {
		return []Pair{{Source: target.Source, Dest: target.Dest}}, nil
	}

	sources, err := ListFiles(target.Source)
	if err != nil {
		return nil, err
	}
	dests, err := ListFiles(target.Dest)
	if err != nil {
		return nil, err
	}

	return ResolvePairs(sources, dests, opts)
}

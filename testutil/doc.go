// Package testutil provides testing utilities for genarena.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and generators for random
// operation sequences used by the property tests.
//
//	rng := testutil.NewRNG(seed)
//	for _, op := range rng.Ops(1000, 0.6) {
//	    switch op.Kind { ... }
//	}
package testutil

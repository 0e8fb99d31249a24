// Package testutil provides testing utilities for cmhash.
//
// This package is intended for use in tests only. It generates deterministic
// random codes, label sets and logit matrices.
//
//	rng := testutil.NewRNG(seed)
//	codes := rng.Codes(100, 16)
//	ls := rng.Labels(100, 19, 3)
//	logits := rng.Logits(8, 16, 0.05, 0.95)
package testutil

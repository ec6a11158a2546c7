package simulate

import (
	"hash/fnv"
	"math/rand"
)

// measurementRNG derives a deterministic RNG for one measurement key. Two
// simulators with the same seed produce identical noise for identical
// measurements, so stability tests are reproducible without a shared RNG
// stream whose consumption order would matter.
//
// Derivation: masterSeed XOR fnv1a64(key).
func measurementRNG(masterSeed int64, key string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(key))
	return rand.New(rand.NewSource(masterSeed ^ int64(h.Sum64())))
}

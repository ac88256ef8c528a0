// Package random builds the seeded generators that make orchestration runs
// reproducible.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"log"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewSeededRNG returns a generator for seed and the seed actually used.
// A zero seed draws a fresh one and logs it so the run can be repeated.
func NewSeededRNG(seed int64) (*rand.Rand, int64, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, 0, err
		}
		seed = s
		log.Printf("[ORCH] using seed %d", seed)
	}
	return rand.New(rand.NewSource(seed)), seed, nil
}

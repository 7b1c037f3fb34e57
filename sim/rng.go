package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical parameters MUST
// produce bit-for-bit identical case lists and verdicts.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// Replicate derives the key for ensemble replicate i. Distinct replicate
// indices yield distinct random streams, so replicates may run in
// parallel without sharing random state.
func (k SimulationKey) Replicate(i int) SimulationKey {
	return k ^ SimulationKey(fnv1a64(fmt.Sprintf("replicate_%d", i)))
}

// === Subsystem Constants ===

const (
	// SubsystemTransmission is the RNG subsystem for offspring counts,
	// contact timing, incubation periods, and asymptomatic draws.
	SubsystemTransmission = "transmission"

	// SubsystemTracing is the RNG subsystem for reporting delays, test
	// sensitivity, tracing success, and tracing delays.
	SubsystemTracing = "tracing"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem within a single outbreak run.
//
// Derivation formula: key XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Each run owns its own PartitionedRNG
// and must use it from a single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem. The same subsystem name always returns the same *rand.Rand
// instance (cached). Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// Package rng provides the pseudo-random identifier/name generator: a
// trivial external utility used to label entities when the driver does not
// supply a name (§9 design notes).
package rng

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

var adjectives = []string{
	"calm", "brisk", "dim", "eager", "faint", "grand", "hollow", "idle",
	"jagged", "keen", "lucid", "mellow", "numb", "odd", "plain", "quiet",
	"rough", "stark", "tidy", "vivid",
}

var nouns = []string{
	"falcon", "harbor", "lattice", "meadow", "nimbus", "orchard", "pylon",
	"quarry", "ridge", "summit", "thicket", "umbra", "vertex", "willow",
	"xenon", "yonder", "zephyr", "cove", "drift", "ember",
}

// Generator produces deterministic names and IDs from a seeded source.
// Not safe for concurrent use — the simulator is single-threaded (§5).
type Generator struct {
	r *rand.Rand
}

// New creates a Generator seeded with seed. The same seed always produces
// the same sequence of names, matching the simulator's determinism
// requirement.
func New(seed int64) *Generator {
	return &Generator{r: rand.New(rand.NewSource(seed))}
}

// Name returns an "adjective-noun-NNNN" label.
func (g *Generator) Name() string {
	a := adjectives[g.r.Intn(len(adjectives))]
	n := nouns[g.r.Intn(len(nouns))]
	return fmt.Sprintf("%s-%s-%04d", a, n, g.r.Intn(10000))
}

// ID returns a fresh UUID. IDs are not seeded from Generator's source: they
// only need to be unique, never reproducible, so they use the global
// crypto-backed UUID source directly.
func (g *Generator) ID() string { return uuid.NewString() }

// Bytes fills a byte slice of length n with pseudo-random content, used for
// packet payload and instruction-length synthesis.
func (g *Generator) Bytes(n int) []byte {
	b := make([]byte, n)
	g.r.Read(b) //nolint:errcheck // math/rand.Rand.Read never errors
	return b
}

// Intn returns a pseudo-random int in [0,n).
func (g *Generator) Intn(n int) int { return g.r.Intn(n) }

// Float64 returns a pseudo-random float64 in [0,1).
func (g *Generator) Float64() float64 { return g.r.Float64() }

// Shuffle permutes a slice of length n in place using swap.
func (g *Generator) Shuffle(n int, swap func(i, j int)) { g.r.Shuffle(n, swap) }

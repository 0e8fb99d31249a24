package testutil

import (
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cmhash/hashcode"
	"github.com/hupe1980/cmhash/labels"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Rand returns a *rand.Rand seeded from this RNG, for APIs that take one.
func (r *RNG) Rand() *rand.Rand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return rand.New(rand.NewSource(r.rand.Int63()))
}

// Codes generates n random codes of the given length.
func (r *RNG) Codes(n, bits int) []hashcode.Code {
	r.mu.Lock()
	defer r.mu.Unlock()

	codes := make([]hashcode.Code, n)
	b := make([]uint8, bits)
	for i := range codes {
		for j := range b {
			b[j] = uint8(r.rand.Intn(2))
		}
		codes[i] = hashcode.FromBits(b)
	}
	return codes
}

// Labels generates n label sets of dimension dim with 1..maxActive positive classes.
func (r *RNG) Labels(n, dim, maxActive int) []labels.Set {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]labels.Set, n)
	for i := range out {
		active := 1 + r.rand.Intn(maxActive)
		perm := r.rand.Perm(dim)[:active]
		classes := make([]uint32, active)
		for j, c := range perm {
			classes[j] = uint32(c)
		}
		out[i] = labels.MustNew(dim, classes...)
	}
	return out
}

// OneHot generates n single-class label sets of dimension dim.
func (r *RNG) OneHot(n, dim int) []labels.Set {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]labels.Set, n)
	for i := range out {
		out[i] = labels.MustNew(dim, uint32(r.rand.Intn(dim)))
	}
	return out
}

// Logits generates a rows×bits matrix with values uniform in [lo, hi).
func (r *RNG) Logits(rows, bits int, lo, hi float64) *mat.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, rows*bits)
	for i := range data {
		data[i] = lo + r.rand.Float64()*(hi-lo)
	}
	return mat.NewDense(rows, bits, data)
}

// Matrix generates a rows×cols matrix with standard normal entries.
func (r *RNG) Matrix(rows, cols int) *mat.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = r.rand.NormFloat64()
	}
	return mat.NewDense(rows, cols, data)
}

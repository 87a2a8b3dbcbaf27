package sensor

import "github.com/brianvoe/gofakeit/v7"

// Source supplies the uniform draws the model needs.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Uniform returns a value in [lo, hi].
	Uniform(lo, hi float64) float64
	// IntBetween returns an integer in [lo, hi], inclusive.
	IntBetween(lo, hi int) int
}

// FakerSource is a Source backed by a seeded gofakeit generator.
// It is not safe for concurrent use.
type FakerSource struct {
	f *gofakeit.Faker
}

// ResolveSeed returns seed, or a random non-zero seed when seed is 0.
func ResolveSeed(seed uint64) uint64 {
	for seed == 0 {
		seed = gofakeit.Uint64()
	}
	return seed
}

// NewSource returns a Source seeded with seed. Seed 0 picks a random seed;
// callers that need to report the seed resolve it first with ResolveSeed.
func NewSource(seed uint64) *FakerSource {
	return &FakerSource{f: gofakeit.New(seed)}
}

// Float64 uses the top 53 bits of a draw; Faker.Float64 spans the whole float range.
func (s *FakerSource) Float64() float64 { return float64(s.f.Uint64()>>11) / (1 << 53) }

func (s *FakerSource) Uniform(lo, hi float64) float64 { return s.f.Float64Range(lo, hi) }

func (s *FakerSource) IntBetween(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return s.f.IntRange(lo, hi)
}

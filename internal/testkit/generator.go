package testkit

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"randaudit/domain/sample"
)

// GeneratorConfig controls the synthetic samples used across the test suites.
type GeneratorConfig struct {
	Seed   uint64
	Stream uint64
}

// DefaultGeneratorConfig returns the seed the suites share.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, Stream: 1}
}

// SampleGenerator produces deterministic samples from a PCG stream.
type SampleGenerator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewSampleGenerator creates a generator. Equal configs yield equal samples.
func NewSampleGenerator(config GeneratorConfig) *SampleGenerator {
	return &SampleGenerator{
		config: config,
		rng:    rand.New(rand.NewPCG(config.Seed, config.Stream)),
	}
}

// UniformBits returns n fair coin flips.
func (g *SampleGenerator) UniformBits(n int) sample.Sample {
	return g.BiasedBits(n, 0.5)
}

// BiasedBits returns n bits, each 1 with probability p.
func (g *SampleGenerator) BiasedBits(n int, p float64) sample.Sample {
	values := make([]int64, n)
	for i := range values {
		if g.rng.Float64() < p {
			values[i] = 1
		}
	}
	return sample.New(values, sample.KindBitstring)
}

// UniformIntegers returns n integers drawn uniformly from [lo, hi].
func (g *SampleGenerator) UniformIntegers(n int, lo, hi int64) sample.Sample {
	values := make([]int64, n)
	for i := range values {
		values[i] = lo + g.rng.Int64N(hi-lo+1)
	}
	return sample.New(values, sample.KindInteger)
}

// ConstantBits returns n copies of bit.
func ConstantBits(n int, bit int64) sample.Sample {
	values := make([]int64, n)
	for i := range values {
		values[i] = bit
	}
	return sample.New(values, sample.KindBitstring)
}

// AlternatingBits returns 0101... of length n.
func AlternatingBits(n int) sample.Sample {
	values := make([]int64, n)
	for i := range values {
		values[i] = int64(i & 1)
	}
	return sample.New(values, sample.KindBitstring)
}

// WriteIntegerFile writes s one value per line under dir and returns the path.
func WriteIntegerFile(tb testing.TB, dir, name string, s sample.Sample) string {
	tb.Helper()
	lines := make([]string, len(s.Values))
	for i, v := range s.Values {
		lines[i] = strconv.FormatInt(v, 10)
	}
	return writeFile(tb, dir, name, strings.Join(lines, "\n"))
}

// WriteBitstringFile writes s as a single line of 0 and 1 characters.
func WriteBitstringFile(tb testing.TB, dir, name string, s sample.Sample) string {
	tb.Helper()
	var b strings.Builder
	for _, v := range s.Values {
		b.WriteByte(byte('0' + v&1))
	}
	b.WriteByte('\n')
	return writeFile(tb, dir, name, b.String())
}

func writeFile(tb testing.TB, dir, name, content string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

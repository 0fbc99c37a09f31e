package battery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"randaudit/domain/sample"
	"randaudit/domain/verdict"
	apperrors "randaudit/internal/errors"
	"randaudit/internal/testkit"
)

func TestCompressionParameters(t *testing.T) {
	_, ok := CompressionParameters(387839)
	assert.False(t, ok)

	row, ok := CompressionParameters(387840)
	require.True(t, ok)
	assert.Equal(t, 6, row.L)

	row, ok = CompressionParameters(904959)
	require.True(t, ok)
	assert.Equal(t, 6, row.L)

	row, ok = CompressionParameters(904960)
	require.True(t, ok)
	assert.Equal(t, 7, row.L)
	assert.Equal(t, 1280, row.Q)

	row, ok = CompressionParameters(2_000_000_000)
	require.True(t, ok)
	assert.Equal(t, 16, row.L)
}

func TestCompressionTest_PseudoRandomStream(t *testing.T) {
	test := NewCompressionTest()
	require.NoError(t, test.Ingest(testkit.NewSampleGenerator(testkit.DefaultGeneratorConfig()).UniformBits(400000)))
	p, err := test.Compute()
	require.NoError(t, err)
	assert.Greater(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
	assert.Equal(t, 400000, test.Report("Compression test").SampleSize)
}

func TestCompressionTest_ConstantStreamIsFullyCompressible(t *testing.T) {
	test := NewCompressionTest()
	require.NoError(t, test.Ingest(sample.New(make([]int64, 400000), sample.KindBitstring)))

	// every gap is 1 so f_n = 0, far below the expected 5.2177
	p, err := test.Compute()
	require.NoError(t, err)
	assert.Less(t, p, 1e-12)
}

func TestCompressionTest_IntegerSampleIsNormalized(t *testing.T) {
	// values in [1, 256]: 8 bits each, 50000 * 8 = 400000 bits
	s := testkit.NewSampleGenerator(testkit.GeneratorConfig{Seed: 3, Stream: 5}).UniformIntegers(50000, 1, 256)
	s.Values[0] = 256

	test := NewCompressionTest()
	require.NoError(t, test.Ingest(s))
	_, err := test.Compute()
	require.NoError(t, err)
	assert.Equal(t, 400000, test.Report("Compression test").SampleSize)
}

func TestCompressionTest_TooShort(t *testing.T) {
	test := NewCompressionTest()
	require.NoError(t, test.Ingest(sample.New(make([]int64, 1000), sample.KindBitstring)))

	_, err := test.Compute()
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientData))
	assert.Equal(t, verdict.StatusNoResult, test.Report("Compression test").Status)
}

func TestCompressionTest_DegenerateIntegerRange(t *testing.T) {
	test := NewCompressionTest()
	err := test.Ingest(sample.New([]int64{1, 1, 1}, sample.KindInteger))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDegenerateRange))
	assert.Equal(t, verdict.StatusNoResult, test.Report("Compression test").Status)
}

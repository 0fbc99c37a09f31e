package battery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"randaudit/domain/sample"
	apperrors "randaudit/internal/errors"
)

// First 100 binary digits of the expansion of pi, the SP 800-22 spectral example.
const piBits = "1100100100001111110110101010001000100001011010001" +
	"100001000110100110001001100011001100010100010111000"

func runSpectral(t *testing.T, bits string) float64 {
	t.Helper()
	parsed := mustBits(t, bits)
	test := NewSpectralTest()
	require.NoError(t, test.Ingest(sample.New(parsed.Int64s(), sample.KindBitstring)))
	p, err := test.Compute()
	require.NoError(t, err)
	return p
}

func TestSpectralTest_ReferenceSequence(t *testing.T) {
	p := runSpectral(t, piBits)
	assert.InDelta(t, 0.654720846018577, p, 1e-9)
}

func TestSpectralTest_Deterministic(t *testing.T) {
	first := runSpectral(t, piBits)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, runSpectral(t, piBits))
	}
}

func TestSpectralTest_OddLength(t *testing.T) {
	assert.InDelta(t, 0.47950012218695354, runSpectral(t, "1011010101"), 1e-9)

	p := runSpectral(t, piBits+"1")
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}

func TestSpectralTest_TooShort(t *testing.T) {
	test := NewSpectralTest()
	err := test.Ingest(sample.New([]int64{1}, sample.KindBitstring))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientData))
}

package battery

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"randaudit/domain/sample"
	apperrors "randaudit/internal/errors"
)

// SpectralTest looks for periodic features: it maps bits to +-1, takes the
// DFT and counts the first-half magnitudes below the 95% threshold.
type SpectralTest struct {
	outcome
	signal []float64
}

// NewSpectralTest creates a new spectral test
func NewSpectralTest() *SpectralTest {
	return &SpectralTest{}
}

// Ingest converts the sample to bits, then 0 to -1 and 1 to +1.
func (t *SpectralTest) Ingest(s sample.Sample) error {
	bits, err := t.bitsOf(s)
	if err != nil {
		return err
	}
	if len(bits) < 2 {
		return t.fail(apperrors.InsufficientData("spectral test", 2, len(bits)))
	}
	t.signal = make([]float64, len(bits))
	for i, bit := range bits {
		t.signal[i] = 2*float64(bit) - 1
	}
	return nil
}

// Compute returns erfc(|d| / sqrt(2)) for the normalized peak count deviation d.
func (t *SpectralTest) Compute() (float64, error) {
	if err := t.ready(); err != nil {
		return 0, err
	}
	return t.done(SpectralPValue(t.signal))
}

// SpectralPValue runs the spectral statistic on a +-1 signal of at least 2 values.
func SpectralPValue(signal []float64) float64 {
	n := len(signal)
	coefficients := fourier.NewFFT(n).Coefficients(nil, signal)

	nf := float64(n)
	tau := math.Sqrt(math.Log(1/spectralThresholdAlpha) * nf)
	expectedPeaks := spectralPeakFraction * nf / 2

	peaks := 0
	for _, c := range coefficients[:n/2] {
		if cmplx.Abs(c) < tau {
			peaks++
		}
	}

	d := (float64(peaks) - expectedPeaks) / math.Sqrt(nf*spectralPeakFraction*(1-spectralPeakFraction)/3.8)
	return math.Erfc(math.Abs(d) / math.Sqrt2)
}

package battery

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"

	"randaudit/domain/sample"
	apperrors "randaudit/internal/errors"
)

// LinearComplexityTest compares the linear complexity of fixed size blocks
// with its theoretical distribution.
type LinearComplexityTest struct {
	outcome
	blockSize int
	bits      sample.Bitstring
}

// NewLinearComplexityTest creates a linear complexity test on blockSize-bit
// blocks. Non-positive sizes fall back to DefaultLinearComplexityBlock.
func NewLinearComplexityTest(blockSize int) *LinearComplexityTest {
	if blockSize <= 0 {
		blockSize = DefaultLinearComplexityBlock
	}
	return &LinearComplexityTest{blockSize: blockSize}
}

// Ingest converts the sample to bits.
func (t *LinearComplexityTest) Ingest(s sample.Sample) error {
	bits, err := t.bitsOf(s)
	if err != nil {
		return err
	}
	t.bits = bits
	return nil
}

// Compute bins the sign-adjusted deviations of every block's complexity from
// the theoretical mean and returns Q(3, chi/2).
func (t *LinearComplexityTest) Compute() (float64, error) {
	if err := t.ready(); err != nil {
		return 0, err
	}

	m := t.blockSize
	numBlocks := len(t.bits) / m
	if numBlocks < linearComplexityMinBlocks {
		return 0, t.fail(apperrors.InsufficientData(
			fmt.Sprintf("linear complexity test (block %d)", m), linearComplexityMinBlocks*m, len(t.bits)))
	}

	mean := LinearComplexityMean(m)
	sign := 1.0
	if m%2 == 1 {
		sign = -1.0
	}

	observed := make([]float64, len(linearComplexityProbabilities))
	for block := 0; block < numBlocks; block++ {
		complexity := BerlekampMassey(t.bits[block*m : (block+1)*m])
		deviation := sign*(float64(complexity)-mean) + 2.0/9.0
		observed[linearComplexityBin(deviation)]++
	}

	expected := make([]float64, len(linearComplexityProbabilities))
	for i, p := range linearComplexityProbabilities {
		expected[i] = p * float64(numBlocks)
	}
	chi := stat.ChiSquare(observed, expected)
	return t.done(mathext.GammaIncRegComp(linearComplexityDOF/2.0, chi/2))
}

// LinearComplexityMean is the expected linear complexity of a random block of m bits.
func LinearComplexityMean(m int) float64 {
	mf := float64(m)
	parity := 1.0
	if (m+1)%2 == 1 {
		parity = -1.0
	}
	t2 := (mf/3.0 + 2.0/9.0) / math.Pow(2, mf)
	return 0.5*mf + (1.0/36.0)*(9+parity) - t2
}

// linearComplexityBin maps a deviation to one of the 7 bins. Each bin is
// closed on its lower edge.
func linearComplexityBin(deviation float64) int {
	bin := 0
	for _, bound := range linearComplexityBounds {
		if deviation >= bound {
			bin++
		}
	}
	return bin
}

// BerlekampMassey returns the length of the shortest LFSR generating block,
// computed over GF(2).
func BerlekampMassey(block sample.Bitstring) int {
	n := len(block)
	c := make([]uint8, n+1) // connection polynomial
	b := make([]uint8, n+1) // polynomial before the last length change
	c[0], b[0] = 1, 1

	l, m := 0, -1
	tmp := make([]uint8, n+1)
	for i := 0; i < n; i++ {
		d := block[i]
		for j := 1; j <= l; j++ {
			d ^= c[j] & block[i-j]
		}
		if d == 0 {
			continue
		}

		copy(tmp, c)
		shift := i - m
		for j := 0; j+shift <= n; j++ {
			c[j+shift] ^= b[j]
		}
		if 2*l <= i {
			l = i + 1 - l
			m = i
			copy(b, tmp)
		}
	}
	return l
}

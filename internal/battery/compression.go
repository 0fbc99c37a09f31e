package battery

import (
	"math"

	"randaudit/domain/sample"
	apperrors "randaudit/internal/errors"
)

// CompressionTest is Maurer's universal statistical test: it measures the
// gaps between repeated L-bit patterns, which a compressible stream keeps short.
type CompressionTest struct {
	outcome
	bits sample.Bitstring
}

// NewCompressionTest creates a new compression test
func NewCompressionTest() *CompressionTest {
	return &CompressionTest{}
}

// Ingest converts the sample to bits.
func (t *CompressionTest) Ingest(s sample.Sample) error {
	bits, err := t.bitsOf(s)
	if err != nil {
		return err
	}
	t.bits = bits
	return nil
}

// CompressionParameters picks the table row for nBits: the last row whose
// minimum length does not exceed nBits.
func CompressionParameters(nBits int) (row compressionRow, ok bool) {
	for _, candidate := range compressionTable {
		if candidate.N > nBits {
			break
		}
		row, ok = candidate, true
	}
	return row, ok
}

// Compute returns erfc(|f_n - expected| / (sqrt(2) * sigma)).
func (t *CompressionTest) Compute() (float64, error) {
	if err := t.ready(); err != nil {
		return 0, err
	}

	row, ok := CompressionParameters(len(t.bits))
	if !ok {
		return 0, t.fail(apperrors.InsufficientData("compression test", compressionTable[0].N, len(t.bits)))
	}

	L, Q := row.L, row.Q
	K := row.N/L - Q

	// lastSeen[pattern] is the 1-based index of the last block holding pattern, 0 if never seen.
	lastSeen := make([]int, 1<<uint(L))
	for block := 0; block < Q; block++ {
		lastSeen[t.bits.Uint(block*L, L)] = block + 1
	}

	sum := 0.0
	for i := 0; i < K; i++ {
		blockID := Q + i + 1
		pattern := t.bits.Uint((Q+i)*L, L)
		sum += math.Log2(float64(blockID - lastSeen[pattern]))
		lastSeen[pattern] = blockID
	}
	fn := sum / float64(K)

	lf, kf := float64(L), float64(K)
	c := 0.7 - 0.8/lf + (4+32/lf)*math.Pow(kf, -3/lf)/15
	sigma := c * math.Sqrt(row.Variance/kf)
	return t.done(math.Erfc(math.Abs(fn-row.ExpectedValue) / (math.Sqrt2 * sigma)))
}

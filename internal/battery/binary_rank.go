package battery

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"randaudit/domain/sample"
	apperrors "randaudit/internal/errors"
)

// BinaryRankTest compares the GF(2) rank distribution of square bit matrices
// cut from the stream with the one expected of random matrices.
type BinaryRankTest struct {
	outcome
	matrixSize int
	bits       sample.Bitstring
}

// NewBinaryRankTest creates a binary matrix rank test on matrixSize x matrixSize
// matrices. Sizes outside [2, MaxMatrixSize] fall back to DefaultMatrixSize.
func NewBinaryRankTest(matrixSize int) *BinaryRankTest {
	if matrixSize < 2 || matrixSize > MaxMatrixSize {
		matrixSize = DefaultMatrixSize
	}
	return &BinaryRankTest{matrixSize: matrixSize}
}

// Ingest converts the sample to bits.
func (t *BinaryRankTest) Ingest(s sample.Sample) error {
	bits, err := t.bitsOf(s)
	if err != nil {
		return err
	}
	t.bits = bits
	return nil
}

// Compute classifies every block's rank as full, full-1 or lower and returns
// exp(-chi/2) of the bucket counts.
func (t *BinaryRankTest) Compute() (float64, error) {
	if err := t.ready(); err != nil {
		return 0, err
	}

	size := t.matrixSize
	blockSize := size * size
	numBlocks := len(t.bits) / blockSize
	if numBlocks == 0 {
		return 0, t.fail(apperrors.InsufficientData(
			fmt.Sprintf("binary rank test (%dx%d)", size, size), blockSize, len(t.bits)))
	}

	buckets := make([]float64, 3)
	rows := make([]uint64, size)
	for block := 0; block < numBlocks; block++ {
		start := block * blockSize
		for r := range rows {
			rows[r] = t.bits.Uint(start+r*size, size)
		}
		switch rank := ComputeBinaryRank(rows); rank {
		case size:
			buckets[0]++
		case size - 1:
			buckets[1]++
		default:
			buckets[2]++
		}
	}

	probabilities := RankProbabilities()
	expected := make([]float64, len(probabilities))
	for i, p := range probabilities {
		expected[i] = p * float64(numBlocks)
	}
	chi := stat.ChiSquare(buckets, expected)
	return t.done(math.Exp(-chi / 2))
}

// RankProbabilities returns the probabilities of full rank, full rank minus
// one and lower rank for random binary matrices.
func RankProbabilities() []float64 {
	full := 1.0
	for x := 1; x <= rankProductTerms; x++ {
		full *= 1 - math.Pow(2, -float64(x))
	}
	minusOne := 2 * full
	return []float64{full, minusOne, 1 - full - minusOne}
}

// ComputeBinaryRank returns the rank over GF(2) of the matrix whose rows are
// given as integers. rows is not modified.
func ComputeBinaryRank(rows []uint64) int {
	work := make([]uint64, len(rows))
	copy(work, rows)

	rank := 0
	for len(work) > 0 {
		pivot := work[len(work)-1]
		work = work[:len(work)-1]
		if pivot == 0 {
			continue
		}
		rank++
		lsb := pivot & -pivot
		for i, row := range work {
			if row&lsb != 0 {
				work[i] = row ^ pivot
			}
		}
	}
	return rank
}

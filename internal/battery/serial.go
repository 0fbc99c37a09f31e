package battery

import (
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"randaudit/domain/sample"
	apperrors "randaudit/internal/errors"
)

// SerialTest checks the distribution of consecutive value pairs.
type SerialTest struct {
	outcome
	distinct int
	pairs    map[[2]int]int // (rank of v[i], rank of v[i+1]) -> count, observed pairs only
}

// NewSerialTest creates a new serial test
func NewSerialTest() *SerialTest {
	return &SerialTest{}
}

// Ingest counts the (v[i], v[i+1]) pairs of the U x U table, U being the
// number of distinct values. Values are indexed by rank among the distinct
// values. Only observed pairs are stored.
func (t *SerialTest) Ingest(s sample.Sample) error {
	t.n = s.Len()
	if t.n < 2 {
		return t.fail(apperrors.InsufficientData("serial test", 2, t.n))
	}

	distinct := make([]int64, 0)
	seen := make(map[int64]bool)
	for _, v := range s.Values {
		if !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })
	index := make(map[int64]int, len(distinct))
	for i, v := range distinct {
		index[v] = i
	}

	u := len(distinct)
	t.distinct = u
	t.pairs = make(map[[2]int]int)
	for i := 0; i+1 < t.n; i++ {
		t.pairs[[2]int{index[s.Values[i]], index[s.Values[i+1]]}]++
	}
	return nil
}

// Compute returns the chi-square p-value over the flattened pair table.
func (t *SerialTest) Compute() (float64, error) {
	if err := t.ready(); err != nil {
		return 0, err
	}
	if t.distinct < 2 {
		return t.undefined("fewer than 2 distinct values")
	}
	return t.done(sparseUniformChiSquarePValue(t.pairs, t.n-1, t.distinct*t.distinct))
}

// sparseUniformChiSquarePValue is the chi-square p-value of a table of cells
// cells holding total counts, given only its non-zero cells. Every empty cell
// contributes its expected count to the statistic.
func sparseUniformChiSquarePValue(observed map[[2]int]int, total, cells int) float64 {
	expected := float64(total) / float64(cells)
	chi := 0.0
	for _, o := range observed {
		d := float64(o) - expected
		chi += d * d / expected
	}
	chi += float64(cells-len(observed)) * expected
	dist := distuv.ChiSquared{K: float64(cells - 1)}
	return dist.Survival(chi)
}

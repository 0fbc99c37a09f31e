package battery

import (
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"randaudit/domain/sample"
	apperrors "randaudit/internal/errors"
)

// FrequencyRow is one row of a frequency table.
type FrequencyRow struct {
	Value int64
	Count int
}

// ChiSquareTest checks that every distinct observed value occurs equally often.
type ChiSquareTest struct {
	outcome
	table []FrequencyRow
}

// NewChiSquareTest creates a new Chi-Square goodness of fit test
func NewChiSquareTest() *ChiSquareTest {
	return &ChiSquareTest{}
}

// Ingest builds the frequency table of distinct values (of bits, for a bitstring sample).
func (t *ChiSquareTest) Ingest(s sample.Sample) error {
	t.n = s.Len()
	if t.n < 2 {
		return t.fail(apperrors.InsufficientData("chi-square test", 2, t.n))
	}
	t.table = frequencyTable(s.Values)
	return nil
}

// Table returns the frequency table, sorted by value.
func (t *ChiSquareTest) Table() []FrequencyRow {
	return t.table
}

// Compute returns the Pearson chi-square p-value against a uniform expectation.
func (t *ChiSquareTest) Compute() (float64, error) {
	if err := t.ready(); err != nil {
		return 0, err
	}
	if len(t.table) < 2 {
		return t.undefined("fewer than 2 distinct values")
	}
	observed := make([]float64, len(t.table))
	for i, row := range t.table {
		observed[i] = float64(row.Count)
	}
	return t.done(uniformChiSquarePValue(observed))
}

// frequencyTable counts the occurrences of every distinct value.
func frequencyTable(values []int64) []FrequencyRow {
	counts := make(map[int64]int)
	for _, v := range values {
		counts[v]++
	}
	table := make([]FrequencyRow, 0, len(counts))
	for v, c := range counts {
		table = append(table, FrequencyRow{Value: v, Count: c})
	}
	sort.Slice(table, func(i, j int) bool { return table[i].Value < table[j].Value })
	return table
}

// uniformChiSquarePValue compares observed counts with their mean and returns
// the upper tail probability of the chi-square distribution with k-1 degrees
// of freedom. len(observed) must be at least 2.
func uniformChiSquarePValue(observed []float64) float64 {
	total := 0.0
	for _, o := range observed {
		total += o
	}
	expected := make([]float64, len(observed))
	for i := range expected {
		expected[i] = total / float64(len(observed))
	}
	chi := stat.ChiSquare(observed, expected)
	dist := distuv.ChiSquared{K: float64(len(observed) - 1)}
	return dist.Survival(chi)
}

package battery

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"randaudit/domain/sample"
	apperrors "randaudit/internal/errors"
)

// SignTest checks that values fall above and below the median of the
// distinct observed values equally often.
type SignTest struct {
	outcome
	values []float64
}

// NewSignTest creates a new sign test
func NewSignTest() *SignTest {
	return &SignTest{}
}

// Ingest keeps the ordered values.
func (t *SignTest) Ingest(s sample.Sample) error {
	t.n = s.Len()
	if t.n < 2 {
		return t.fail(apperrors.InsufficientData("sign test", 2, t.n))
	}
	t.values = s.Floats()
	return nil
}

// Compute returns the exact two-sided binomial p-value of the sign counts.
func (t *SignTest) Compute() (float64, error) {
	if err := t.ready(); err != nil {
		return 0, err
	}

	distinct := make([]float64, 0)
	seen := make(map[float64]bool)
	for _, v := range t.values {
		if !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}
	mu, err := stats.Median(distinct)
	if err != nil {
		return 0, t.fail(apperrors.Wrap(err, "sign test median"))
	}

	pos, neg := 0, 0
	for _, v := range t.values {
		switch {
		case v > mu:
			pos++
		case v < mu:
			neg++
		}
	}
	trials := pos + neg
	if trials == 0 {
		return t.undefined("every value equals the median")
	}

	k := pos
	if neg < k {
		k = neg
	}
	binom := distuv.Binomial{N: float64(trials), P: 0.5}
	return t.done(math.Min(1, 2*binom.CDF(float64(k))))
}

package battery

import (
	"math"

	"github.com/montanaflynn/stats"

	"randaudit/domain/sample"
	apperrors "randaudit/internal/errors"
)

// runsContinuityLimit is the sample size below which the 0.5 continuity
// correction is applied to the runs count.
const runsContinuityLimit = 50

// RunTest is the Wald-Wolfowitz runs test: values are split above/below a
// cutoff and the number of runs is compared with its expectation.
type RunTest struct {
	outcome
	values []float64
	cutoff float64
}

// NewRunTest creates a new runs test
func NewRunTest() *RunTest {
	return &RunTest{}
}

// Ingest keeps the ordered values and picks the cutoff: 0.5 for bits, the
// sample median otherwise.
func (t *RunTest) Ingest(s sample.Sample) error {
	t.n = s.Len()
	if t.n < 2 {
		return t.fail(apperrors.InsufficientData("run test", 2, t.n))
	}
	t.values = s.Floats()
	if s.Kind == sample.KindBitstring {
		t.cutoff = 0.5
		return nil
	}
	median, err := stats.Median(t.values)
	if err != nil {
		return t.fail(apperrors.Wrap(err, "run test median"))
	}
	t.cutoff = median
	return nil
}

// Compute returns the two-sided normal approximation p-value of the runs count.
func (t *RunTest) Compute() (float64, error) {
	if err := t.ready(); err != nil {
		return 0, err
	}

	above, runs := 0, 1
	prev := t.values[0] >= t.cutoff
	for i, v := range t.values {
		cur := v >= t.cutoff
		if cur {
			above++
		}
		if i > 0 && cur != prev {
			runs++
		}
		prev = cur
	}
	below := t.n - above

	n := float64(t.n)
	n1, n2 := float64(above), float64(below)
	mean := 2*n1*n2/n + 1
	variance := 2 * n1 * n2 * (2*n1*n2 - n) / (n * n * (n - 1))
	if variance <= 0 {
		return t.undefined("runs count has zero variance")
	}

	diff := float64(runs) - mean
	if t.n < runsContinuityLimit {
		switch {
		case diff > 0.5:
			diff -= 0.5
		case diff < -0.5:
			diff += 0.5
		default:
			diff = 0
		}
	}
	z := diff / math.Sqrt(variance)
	return t.done(math.Erfc(math.Abs(z) / math.Sqrt2))
}

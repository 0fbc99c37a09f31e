package verdict

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		p    float64
		want Status
	}{
		{1.0, StatusKO},
		{0.995, StatusKO},
		{0.99, StatusSuspect},
		{0.96, StatusSuspect},
		{0.95, StatusOK},
		{0.5, StatusOK},
		{0.001, StatusOK},
		{0.0, StatusOK},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.p), "p=%v", tt.p)
	}
}

func TestClassify_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	properties.Property("bands follow |p-1|", prop.ForAll(
		func(p float64) bool {
			d := math.Abs(p - 1)
			switch Classify(p) {
			case StatusKO:
				return d < 0.01
			case StatusSuspect:
				return d >= 0.01 && d < 0.05
			case StatusOK:
				return d >= 0.05
			default:
				return false
			}
		},
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}

func TestThresholdBand(t *testing.T) {
	assert.Equal(t, "0 -KO- 0.01 -SUSPECT- 0.05 -OK- 0.95 -SUSPECT- 0.99 -KO- 1", ThresholdBand)
}

func TestSentinels(t *testing.T) {
	d := Degenerate("Chi-square goodness of fit", 3, "single distinct value")
	assert.Equal(t, StatusKO, d.Status)
	assert.Equal(t, 0.0, d.PValue)
	assert.True(t, d.HasResult())

	n := NoResult("Binary rank test", 10, "too short")
	assert.Equal(t, StatusNoResult, n.Status)
	assert.False(t, n.HasResult())
	assert.NotEqual(t, StatusKO, n.Status)
}

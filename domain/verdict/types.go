package verdict

import (
	"fmt"
	"math"
)

// Status represents the classification of a single test run
type Status string

const (
	StatusOK      Status = "OK"
	StatusSuspect Status = "SUSPECT"
	StatusKO      Status = "KO"
	// StatusNoResult marks a test that could not produce a statistic, e.g. a
	// sample shorter than one block. It is never folded into KO.
	StatusNoResult Status = "NO_RESULT"
)

// Statuses lists every status in report order.
var Statuses = []Status{StatusOK, StatusSuspect, StatusKO, StatusNoResult}

const (
	// PValueLimit is the outer band: deviations from 1 below it are SUSPECT.
	PValueLimit = 0.05
	// PValueLimitStrict is the inner band: deviations from 1 below it are KO.
	PValueLimitStrict = 0.01
)

// ThresholdBand is the human readable description of the classification bands.
var ThresholdBand = fmt.Sprintf("0 -KO- %g -SUSPECT- %g -OK- %g -SUSPECT- %g -KO- 1",
	PValueLimitStrict, PValueLimit, 1-PValueLimit, 1-PValueLimitStrict)

// Classify applies the deviation-from-one policy: d = |p - 1|, KO below 0.01,
// SUSPECT below 0.05, OK otherwise.
func Classify(pValue float64) Status {
	d := math.Abs(pValue - 1)
	switch {
	case d < PValueLimitStrict:
		return StatusKO
	case d < PValueLimit:
		return StatusSuspect
	default:
		return StatusOK
	}
}

// Result contains the outcome of one test on one sample. It is built once and
// handed to the reporting layer as is.
type Result struct {
	TestName      string  `json:"test_name"`
	SampleSize    int     `json:"n_sample"`
	PValue        float64 `json:"p_value"`
	Status        Status  `json:"status"`
	ThresholdBand string  `json:"criterias"`
	Reason        string  `json:"reason,omitempty"`
}

// NewResult classifies pValue and builds the record.
func NewResult(testName string, sampleSize int, pValue float64) Result {
	return Result{
		TestName:      testName,
		SampleSize:    sampleSize,
		PValue:        pValue,
		Status:        Classify(pValue),
		ThresholdBand: ThresholdBand,
	}
}

// Degenerate builds the sentinel record for a statistic that is undefined on
// the sample (zero variance, a single distinct value...). It is reported KO
// with a p-value of 0.
func Degenerate(testName string, sampleSize int, reason string) Result {
	return Result{
		TestName:      testName,
		SampleSize:    sampleSize,
		PValue:        0,
		Status:        StatusKO,
		ThresholdBand: ThresholdBand,
		Reason:        reason,
	}
}

// NoResult builds the explicit marker for a test that could not run.
func NoResult(testName string, sampleSize int, reason string) Result {
	return Result{
		TestName:      testName,
		SampleSize:    sampleSize,
		Status:        StatusNoResult,
		ThresholdBand: ThresholdBand,
		Reason:        reason,
	}
}

// HasResult reports whether the record carries a usable p-value.
func (r Result) HasResult() bool {
	return r.Status != StatusNoResult
}

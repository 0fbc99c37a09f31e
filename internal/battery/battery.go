// Package battery implements the randomness test battery: the contract every
// statistical test satisfies, the catalog the tests are registered in, and the
// eight built-in tests.
package battery

import (
	"randaudit/domain/sample"
	"randaudit/domain/verdict"
)

// StatisticalTest is the contract all tests must satisfy. A test instance is
// used for exactly one sample: Ingest, then Compute, then Report.
type StatisticalTest interface {
	// Ingest converts the sample to the internal form the test works on.
	Ingest(s sample.Sample) error
	// Compute runs the test on the ingested data and returns its p-value.
	Compute() (float64, error)
	// Report builds the result record under the given display name.
	Report(testName string) verdict.Result
}

// outcome carries the lifecycle state shared by every test.
type outcome struct {
	n          int
	pValue     float64
	computed   bool
	degenerate string
	err        error
}

// fail records err as the reason the test produced no result.
func (o *outcome) fail(err error) error {
	o.err = err
	return err
}

// done records a computed p-value.
func (o *outcome) done(p float64) (float64, error) {
	o.pValue = p
	o.computed = true
	return p, nil
}

// undefined records a degenerate statistic: the p-value is reported as 0 and
// the verdict forced to KO.
func (o *outcome) undefined(reason string) (float64, error) {
	o.pValue = 0
	o.computed = true
	o.degenerate = reason
	return 0, nil
}

// ready returns the error recorded by a failed Ingest, if any.
func (o *outcome) ready() error {
	return o.err
}

func (o *outcome) Report(testName string) verdict.Result {
	switch {
	case o.err != nil:
		return verdict.NoResult(testName, o.n, o.err.Error())
	case !o.computed:
		return verdict.NoResult(testName, o.n, "test was not computed")
	case o.degenerate != "":
		return verdict.Degenerate(testName, o.n, o.degenerate)
	default:
		return verdict.NewResult(testName, o.n, o.pValue)
	}
}

// bitsOf returns the bitstring form of s and records its length as the
// sample size.
func (o *outcome) bitsOf(s sample.Sample) (sample.Bitstring, error) {
	bits, err := s.Bits()
	if err != nil {
		return nil, o.fail(err)
	}
	o.n = len(bits)
	return bits, nil
}

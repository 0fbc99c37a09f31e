// Package runner drives the test battery: SampleRunner executes the selected
// tests against one sample, ParallelCoordinator fans files out to a bounded
// worker pool and collects the per-file result lists.
package runner

import (
	"fmt"
	"strings"

	"randaudit/domain/sample"
	"randaudit/domain/verdict"
	"randaudit/internal"
	"randaudit/internal/battery"
)

// SelectAllToken selects every registered test supporting the sample kind.
const SelectAllToken = "all"

// Selection is either "all" or an explicit list of test identifiers.
type Selection struct {
	All         bool
	Identifiers []string
}

// SelectAll returns the "all" selection.
func SelectAll() Selection {
	return Selection{All: true}
}

// SelectTests returns an explicit selection.
func SelectTests(identifiers ...string) Selection {
	return Selection{Identifiers: identifiers}
}

// ParseSelection reads a comma separated identifier list. An empty value or
// the "all" token selects every test.
func ParseSelection(raw string) Selection {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.EqualFold(part, SelectAllToken) {
			return SelectAll()
		}
		ids = append(ids, part)
	}
	if len(ids) == 0 {
		return SelectAll()
	}
	return SelectTests(ids...)
}

// String renders the selection the way the CLI accepts it.
func (s Selection) String() string {
	if s.All {
		return SelectAllToken
	}
	return strings.Join(s.Identifiers, ",")
}

// SampleRunner runs tests sequentially against one sample. It holds no
// per-sample state and can be shared by every worker.
type SampleRunner struct {
	catalog *battery.Catalog
	logger  *internal.Logger
}

// NewSampleRunner creates a runner over catalog.
func NewSampleRunner(catalog *battery.Catalog, logger *internal.Logger) *SampleRunner {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &SampleRunner{catalog: catalog, logger: logger}
}

// Catalog returns the catalog tests are resolved from.
func (r *SampleRunner) Catalog() *battery.Catalog {
	return r.catalog
}

// Resolve turns a selection into descriptors in registration order, without
// duplicates. Unknown identifiers are logged and skipped.
func (r *SampleRunner) Resolve(sel Selection) []battery.Descriptor {
	if sel.All {
		return r.catalog.All()
	}

	requested := make(map[string]bool, len(sel.Identifiers))
	for _, id := range sel.Identifiers {
		id = strings.TrimSpace(id)
		if _, err := r.catalog.Resolve(id); err != nil {
			r.logger.Warn("Unknown test, skipping it: %v", err)
			continue
		}
		requested[id] = true
	}

	var out []battery.Descriptor
	for _, d := range r.catalog.All() {
		if requested[d.Identifier] {
			out = append(out, d)
		}
	}
	return out
}

// Applicable keeps the descriptors supporting kind.
func Applicable(descriptors []battery.Descriptor, kind sample.Kind) []battery.Descriptor {
	out := make([]battery.Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if d.Supports(kind) {
			out = append(out, d)
		}
	}
	return out
}

// EffectiveKind is the kind tests see for a sample declared as kind.
func EffectiveKind(kind sample.Kind) sample.Kind {
	if kind == sample.KindBytes {
		return sample.KindBitstring
	}
	return kind
}

// Run executes every descriptor that supports the sample kind, in the given
// order, and returns one result per executed test. progress, when not nil, is
// called once after each test.
func (r *SampleRunner) Run(s sample.Sample, descriptors []battery.Descriptor, progress func()) []verdict.Result {
	tests := Applicable(descriptors, s.Kind)
	results := make([]verdict.Result, 0, len(tests))
	for _, d := range tests {
		results = append(results, r.runOne(d, s))
		if progress != nil {
			progress()
		}
	}
	return results
}

// RunSelection resolves sel and runs it against s.
func (r *SampleRunner) RunSelection(s sample.Sample, sel Selection, progress func()) []verdict.Result {
	return r.Run(s, r.Resolve(sel), progress)
}

func (r *SampleRunner) runOne(d battery.Descriptor, s sample.Sample) (result verdict.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Test %s panicked: %v", d.Identifier, rec)
			result = verdict.NoResult(d.Name, s.Len(), fmt.Sprintf("test aborted: %v", rec))
		}
	}()

	test := d.New()
	if err := test.Ingest(s); err != nil {
		r.logger.Debug("Test %s ingest: %v", d.Identifier, err)
	} else if _, err := test.Compute(); err != nil {
		r.logger.Debug("Test %s compute: %v", d.Identifier, err)
	}

	result = test.Report(d.Name)
	r.logger.Trace("Test %s: p=%g status=%s", d.Identifier, result.PValue, result.Status)
	return result
}

package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"randaudit/domain/sample"
	"randaudit/domain/verdict"
	"randaudit/internal"
	"randaudit/internal/battery"
	apperrors "randaudit/internal/errors"
)

const (
	MinWorkers = 1
	MaxWorkers = 31
)

// SampleLoader reads one input file into a sample.
type SampleLoader interface {
	Load(ctx context.Context, path string) (sample.Sample, error)
}

// ProgressFunc receives the number of finished tests out of the planned total.
type ProgressFunc func(done, total int)

// FileReport is the outcome for one input file. Err is set when the file could
// not be processed; Results is then empty.
type FileReport struct {
	Path    string
	Results []verdict.Result
	Err     error
}

// Failed reports whether the file could not be processed.
func (f FileReport) Failed() bool {
	return f.Err != nil
}

// RunReport is everything the reporting layer needs about a run.
type RunReport struct {
	RunID        string
	StartedAt    time.Time
	Duration     time.Duration
	Selection    Selection
	Kind         sample.Kind
	PlannedTests int
	Files        []FileReport
}

// Processed returns the files that produced results, in input order.
func (r *RunReport) Processed() []FileReport {
	var out []FileReport
	for _, f := range r.Files {
		if !f.Failed() {
			out = append(out, f)
		}
	}
	return out
}

// Failures returns the files that could not be processed, in input order.
func (r *RunReport) Failures() []FileReport {
	var out []FileReport
	for _, f := range r.Files {
		if f.Failed() {
			out = append(out, f)
		}
	}
	return out
}

// Results returns every result of every processed file, file by file.
func (r *RunReport) Results() []verdict.Result {
	var out []verdict.Result
	for _, f := range r.Files {
		out = append(out, f.Results...)
	}
	return out
}

// Plan is the pre-run summary: the files, the tests each file gets and the
// total number of tests the run will launch.
type Plan struct {
	Files       []string
	Selection   Selection
	Kind        sample.Kind
	Descriptors []battery.Descriptor
	TotalTests  int
}

// Tests returns the identifiers of the planned tests, in execution order.
func (p Plan) Tests() []string {
	ids := make([]string, len(p.Descriptors))
	for i, d := range p.Descriptors {
		ids[i] = d.Identifier
	}
	return ids
}

// progressMsg is one message on the progress channel. The collector stops on
// the sentinel instead of on channel close.
type progressMsg struct {
	count    int
	sentinel bool
}

// ParallelCoordinator runs one SampleRunner per input file on a bounded pool.
type ParallelCoordinator struct {
	runner  *SampleRunner
	loader  SampleLoader
	logger  *internal.Logger
	workers int
}

// NewParallelCoordinator validates the worker count and builds a coordinator.
func NewParallelCoordinator(runner *SampleRunner, loader SampleLoader, logger *internal.Logger, workers int) (*ParallelCoordinator, error) {
	if workers < MinWorkers || workers > MaxWorkers {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("workers must be between %d and %d, got %d", MinWorkers, MaxWorkers, workers))
	}
	if runner == nil || loader == nil {
		return nil, apperrors.New(apperrors.CodeInternalError, "coordinator needs a runner and a loader")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ParallelCoordinator{runner: runner, loader: loader, logger: logger, workers: workers}, nil
}

// Workers returns the pool size.
func (c *ParallelCoordinator) Workers() int {
	return c.workers
}

// Plan resolves the selection once for the declared kind and counts the tests
// the run will launch. Unknown identifiers are reported here, once.
func (c *ParallelCoordinator) Plan(paths []string, sel Selection, kind sample.Kind) Plan {
	tests := Applicable(c.runner.Resolve(sel), EffectiveKind(kind))
	return Plan{
		Files:       paths,
		Selection:   sel,
		Kind:        kind,
		Descriptors: tests,
		TotalTests:  len(tests) * len(paths),
	}
}

// Run processes every planned file and waits for all of them. Only an empty
// input list fails the run; per-file failures end up in FileReport.Err.
func (c *ParallelCoordinator) Run(ctx context.Context, plan Plan, onProgress ProgressFunc) (*RunReport, error) {
	paths := plan.Files
	if len(paths) == 0 {
		return nil, apperrors.NoInput("no input files provided")
	}

	report := &RunReport{
		RunID:        uuid.NewString(),
		StartedAt:    time.Now(),
		Selection:    plan.Selection,
		Kind:         plan.Kind,
		PlannedTests: plan.TotalTests,
		Files:        make([]FileReport, len(paths)),
	}
	perFile := len(plan.Descriptors)

	c.logger.Info("Run %s: %d files, %d tests each, %d workers", report.RunID, len(paths), perFile, c.workers)

	// one slot per test, one per failed-file skip, one for the sentinel
	progress := make(chan progressMsg, report.PlannedTests+len(paths)+1)
	collected := make(chan int, 1)
	go collect(progress, report.PlannedTests, onProgress, collected)

	sem := semaphore.NewWeighted(int64(c.workers))
	var wg sync.WaitGroup
	for i, path := range paths {
		if err := sem.Acquire(ctx, 1); err != nil {
			report.Files[i] = FileReport{Path: path, Err: apperrors.Wrap(err, "worker slot unavailable")}
			progress <- progressMsg{count: perFile}
			continue
		}
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()
			defer sem.Release(1)
			report.Files[index] = c.processFile(ctx, path, plan.Descriptors, perFile, progress)
		}(i, path)
	}

	wg.Wait()
	progress <- progressMsg{sentinel: true}
	done := <-collected

	report.Duration = time.Since(report.StartedAt)
	c.logger.Info("Run %s finished in %v: %d/%d tests, %d failed files",
		report.RunID, report.Duration, done, report.PlannedTests, len(report.Failures()))
	return report, nil
}

func (c *ParallelCoordinator) processFile(ctx context.Context, path string, descriptors []battery.Descriptor, perFile int, progress chan<- progressMsg) FileReport {
	start := time.Now()
	s, err := c.loader.Load(ctx, path)
	if err != nil {
		c.logger.Error("File %s failed [%s]: %v", path, apperrors.GetCode(err), err)
		progress <- progressMsg{count: perFile}
		return FileReport{Path: path, Err: err}
	}

	results := c.runner.Run(s, descriptors, func() {
		progress <- progressMsg{count: 1}
	})
	c.logger.Debug("File %s: %d tests in %v", path, len(results), time.Since(start))
	return FileReport{Path: path, Results: results}
}

// collect drains the progress channel until the sentinel and sends the number
// of finished tests on out.
func collect(progress <-chan progressMsg, total int, onProgress ProgressFunc, out chan<- int) {
	done := 0
	for msg := range progress {
		if msg.sentinel {
			break
		}
		done += msg.count
		if onProgress != nil {
			onProgress(done, total)
		}
	}
	out <- done
}

// Package report renders a finished run: per-file tables on the terminal, and
// the statistical results (CSV, XLSX) plus a Markdown/HTML summary on disk.
package report

import (
	"time"

	"github.com/montanaflynn/stats"

	"randaudit/domain/verdict"
	"randaudit/internal/runner"
)

// TestSummary aggregates every result of one test across files.
type TestSummary struct {
	TestName     string
	Counts       map[verdict.Status]int
	Total        int
	MeanPValue   float64
	StdDevPValue float64
}

// Count returns the number of results with status, 0 when none was seen.
func (s TestSummary) Count(status verdict.Status) int {
	n, ok := s.Counts[status]
	if !ok {
		return 0
	}
	return n
}

// Summarize groups results by test name, in order of first appearance.
func Summarize(results []verdict.Result) []TestSummary {
	index := make(map[string]int)
	var summaries []TestSummary
	pValues := make(map[string][]float64)

	for _, res := range results {
		i, seen := index[res.TestName]
		if !seen {
			i = len(summaries)
			index[res.TestName] = i
			summaries = append(summaries, TestSummary{
				TestName: res.TestName,
				Counts:   make(map[verdict.Status]int),
			})
		}
		summaries[i].Counts[res.Status]++
		summaries[i].Total++
		if res.HasResult() {
			pValues[res.TestName] = append(pValues[res.TestName], res.PValue)
		}
	}

	for i := range summaries {
		data := stats.Float64Data(pValues[summaries[i].TestName])
		if data.Len() == 0 {
			continue
		}
		summaries[i].MeanPValue, _ = data.Mean()
		summaries[i].StdDevPValue, _ = data.StandardDeviation()
	}
	return summaries
}

// FailedFile is an input file the run could not process.
type FailedFile struct {
	Path   string
	Reason string
}

// ExecutionData describes the run itself.
type ExecutionData struct {
	RunID          string
	StartedAt      time.Time
	Duration       time.Duration
	Selection      string
	DataType       string
	PlannedTests   int
	ProcessedFiles []string
	FailedFiles    []FailedFile
	Fingerprint    string
}

// NewExecutionData extracts the execution data of a run.
func NewExecutionData(r *runner.RunReport) ExecutionData {
	data := ExecutionData{
		RunID:        r.RunID,
		StartedAt:    r.StartedAt,
		Duration:     r.Duration,
		Selection:    r.Selection.String(),
		DataType:     r.Kind.String(),
		PlannedTests: r.PlannedTests,
	}
	for _, f := range r.Files {
		if f.Failed() {
			data.FailedFiles = append(data.FailedFiles, FailedFile{Path: f.Path, Reason: f.Err.Error()})
			continue
		}
		data.ProcessedFiles = append(data.ProcessedFiles, f.Path)
	}
	return data
}

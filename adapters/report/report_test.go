package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"randaudit/domain/run"
	"randaudit/domain/sample"
	"randaudit/domain/verdict"
	apperrors "randaudit/internal/errors"
	"randaudit/internal/runner"
)

func fixtureReport() *runner.RunReport {
	return &runner.RunReport{
		RunID:        "0b8e5f7e-run",
		StartedAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Duration:     2 * time.Second,
		Selection:    runner.SelectTests("run", "sign"),
		Kind:         sample.KindInteger,
		PlannedTests: 6,
		Files: []runner.FileReport{
			{Path: "first.txt", Results: []verdict.Result{
				verdict.NewResult("Run test", 100, 0.4),
				verdict.NewResult("Sign test", 100, 0.97),
			}},
			{Path: "broken.txt", Err: apperrors.FileUnreadable("broken.txt", os.ErrNotExist)},
			{Path: "second.txt", Results: []verdict.Result{
				verdict.NewResult("Run test", 100, 0.6),
				verdict.NoResult("Sign test", 1, "sign test needs at least 2 values, got 1"),
			}},
		},
	}
}

func TestSummarize_CountsWithDefaults(t *testing.T) {
	summaries := Summarize(fixtureReport().Results())
	require.Len(t, summaries, 2)

	runSummary := summaries[0]
	assert.Equal(t, "Run test", runSummary.TestName)
	assert.Equal(t, 2, runSummary.Count(verdict.StatusOK))
	assert.Equal(t, 0, runSummary.Count(verdict.StatusSuspect))
	assert.Equal(t, 0, runSummary.Count(verdict.StatusKO))
	assert.Equal(t, 0, runSummary.Count(verdict.StatusNoResult))
	assert.InDelta(t, 0.5, runSummary.MeanPValue, 1e-12)
	assert.InDelta(t, 0.1, runSummary.StdDevPValue, 1e-12)

	sign := summaries[1]
	assert.Equal(t, 1, sign.Count(verdict.StatusSuspect))
	assert.Equal(t, 1, sign.Count(verdict.StatusNoResult))
	assert.Equal(t, 2, sign.Total)
	// the NO_RESULT entry does not weigh on the p-value statistics
	assert.InDelta(t, 0.97, sign.MeanPValue, 1e-12)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
	assert.Equal(t, 0, TestSummary{}.Count(verdict.StatusOK))
}

func TestNewExecutionData(t *testing.T) {
	data := NewExecutionData(fixtureReport())
	assert.Equal(t, []string{"first.txt", "second.txt"}, data.ProcessedFiles)
	require.Len(t, data.FailedFiles, 1)
	assert.Equal(t, "broken.txt", data.FailedFiles[0].Path)
	assert.Contains(t, data.FailedFiles[0].Reason, "broken.txt")
	assert.Equal(t, "run,sign", data.Selection)
	assert.Equal(t, "int", data.DataType)
}

func TestWriteTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTerminal(&buf, fixtureReport()))

	out := buf.String()
	assert.Contains(t, out, "first.txt")
	assert.Contains(t, out, "second.txt")
	assert.Contains(t, out, "Tests summary:")
	assert.Contains(t, out, "NO_RESULT_count")
	assert.Contains(t, out, "Failed files:")
	assert.Contains(t, out, "- broken.txt")
	assert.Contains(t, out, verdict.ThresholdBand)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixtureReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"file", "test_name", "n_sample", "p_value", "status", "criterias", "reason"}, records[0])
	assert.Equal(t, []string{"first.txt", "Run test", "100", "0.4", "OK", verdict.ThresholdBand, ""}, records[1])
	assert.Equal(t, "NO_RESULT", records[4][4])
}

func TestRenderMarkdownAndHTML(t *testing.T) {
	r := fixtureReport()
	md := RenderMarkdown(NewExecutionData(r), Summarize(r.Results()))
	text := string(md)
	assert.Contains(t, text, "Run id: `0b8e5f7e-run`")
	assert.Contains(t, text, "## Failed files")
	assert.Contains(t, text, "| Run test | 2 | 0 | 0 | 0 |")

	page := string(RenderHTML(md))
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<title>randaudit summary</title>")
	assert.Contains(t, page, "<h2")
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"terminal": ModeTerminal, "FILE": ModeFile, "all": ModeAll, "": ModeTerminal} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("graph")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestWriter_TerminalModeWritesNoFiles(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	w := NewWriter(ModeTerminal, dir, &buf, nil)

	out, err := w.Write(context.Background(), fixtureReport())
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotEmpty(t, buf.String())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriter_FileMode(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	w := NewWriter(ModeFile, dir, &buf, nil)
	w.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 5, 0, time.UTC) }

	out, err := w.Write(context.Background(), fixtureReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rtt-2024-03-01-10-00-05"), out)
	assert.Empty(t, buf.String())

	for _, name := range []string{CSVFileName, XLSXFileName, MarkdownFileName, HTMLFileName} {
		info, err := os.Stat(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}

	wb, err := excelize.OpenFile(filepath.Join(out, XLSXFileName))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "first.txt", rows[1][0])

	summary, err := wb.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"Sign test", "0", "1", "0", "1"}, summary[2][:5])

	html, err := os.ReadFile(filepath.Join(out, HTMLFileName))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(html), "Tests summary"))
}

func TestWriter_Manifest(t *testing.T) {
	dir := t.TempDir()
	r := fixtureReport()
	m := run.NewManifest(r.RunID, r.StartedAt, "int", []string{"run", "sign"},
		[]run.InputDigest{{Path: "first.txt", SHA256: "aa", Bytes: 2}}, "test")
	w := NewWriter(ModeFile, dir, nil, nil).WithManifest(m)

	out, err := w.Write(context.Background(), r)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(out, ManifestFileName))
	require.NoError(t, err)
	var got run.Manifest
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, m.Fingerprint, got.Fingerprint)
	assert.Equal(t, r.RunID, got.RunID)

	md, err := os.ReadFile(filepath.Join(out, MarkdownFileName))
	require.NoError(t, err)
	assert.Contains(t, string(md), "- Fingerprint: `"+m.Fingerprint.Fingerprint+"`")
}

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"randaudit/domain/verdict"
	"randaudit/internal/runner"
)

var resultHeaders = []string{"test_name", "n_sample", "p_value", "status", "criterias", "reason"}

var summaryHeaders = []string{"test_name", "OK_count", "SUSPECT_count", "KO_count", "NO_RESULT_count", "mean_p", "stddev_p"}

func resultRow(res verdict.Result) []string {
	return []string{
		res.TestName,
		strconv.Itoa(res.SampleSize),
		formatP(res.PValue),
		string(res.Status),
		res.ThresholdBand,
		res.Reason,
	}
}

func summaryRow(s TestSummary) []string {
	return []string{
		s.TestName,
		strconv.Itoa(s.Count(verdict.StatusOK)),
		strconv.Itoa(s.Count(verdict.StatusSuspect)),
		strconv.Itoa(s.Count(verdict.StatusKO)),
		strconv.Itoa(s.Count(verdict.StatusNoResult)),
		formatP(s.MeanPValue),
		formatP(s.StdDevPValue),
	}
}

func formatP(p float64) string {
	return strconv.FormatFloat(p, 'g', 10, 64)
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// WriteTerminal prints one table per processed file, the per-test summary and
// the failed files.
func WriteTerminal(w io.Writer, r *runner.RunReport) error {
	for _, f := range r.Processed() {
		fmt.Fprintf(w, "\n%s\n", f.Path)
		rows := make([][]string, len(f.Results))
		for i, res := range f.Results {
			rows[i] = resultRow(res)
		}
		if err := writeTable(w, resultHeaders, rows); err != nil {
			return err
		}
	}

	summaries := Summarize(r.Results())
	if len(summaries) > 0 {
		fmt.Fprintln(w, "\nTests summary:")
		rows := make([][]string, len(summaries))
		for i, s := range summaries {
			rows[i] = summaryRow(s)
		}
		if err := writeTable(w, summaryHeaders, rows); err != nil {
			return err
		}
	}

	if failures := r.Failures(); len(failures) > 0 {
		fmt.Fprintln(w, "\nFailed files:")
		for _, f := range failures {
			fmt.Fprintf(w, "- %s: %v\n", f.Path, f.Err)
		}
	}
	return nil
}

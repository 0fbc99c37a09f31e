package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/xuri/excelize/v2"

	"randaudit/domain/verdict"
	"randaudit/internal/runner"
)

const (
	CSVFileName      = "statistical_results.csv"
	XLSXFileName     = "statistical_results.xlsx"
	MarkdownFileName = "summary.md"
	HTMLFileName     = "summary.html"
	ManifestFileName = "manifest.json"

	resultsSheet = "Results"
	summarySheet = "Summary"
)

var csvHeaders = append([]string{"file"}, resultHeaders...)

// WriteCSV writes one row per result, prefixed with the file it belongs to.
func WriteCSV(w io.Writer, r *runner.RunReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders); err != nil {
		return err
	}
	for _, f := range r.Processed() {
		for _, res := range f.Results {
			if err := cw.Write(append([]string{f.Path}, resultRow(res)...)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX saves a workbook with a Results sheet and a Summary sheet.
func WriteXLSX(path string, r *runner.RunReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}
	if err := setRow(f, resultsSheet, 1, toCells(csvHeaders)); err != nil {
		return err
	}
	row := 2
	for _, file := range r.Processed() {
		for _, res := range file.Results {
			cells := []interface{}{file.Path, res.TestName, res.SampleSize, res.PValue, string(res.Status), res.ThresholdBand, res.Reason}
			if err := setRow(f, resultsSheet, row, cells); err != nil {
				return err
			}
			row++
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	if err := setRow(f, summarySheet, 1, toCells(summaryHeaders)); err != nil {
		return err
	}
	for i, s := range Summarize(r.Results()) {
		cells := []interface{}{s.TestName}
		for _, status := range verdict.Statuses {
			cells = append(cells, s.Count(status))
		}
		cells = append(cells, s.MeanPValue, s.StdDevPValue)
		if err := setRow(f, summarySheet, i+2, cells); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// RenderMarkdown builds the execution summary document.
func RenderMarkdown(data ExecutionData, summaries []TestSummary) []byte {
	var b bytes.Buffer
	b.WriteString("# Random test tool report summary\n\n")
	fmt.Fprintf(&b, "- Run id: `%s`\n", data.RunID)
	fmt.Fprintf(&b, "- Started at: %s\n", data.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Execution time: %s\n", data.Duration)
	fmt.Fprintf(&b, "- Data type: %s\n", data.DataType)
	fmt.Fprintf(&b, "- Tests: %s\n", data.Selection)
	fmt.Fprintf(&b, "- Planned tests: %d\n", data.PlannedTests)
	if data.Fingerprint != "" {
		fmt.Fprintf(&b, "- Fingerprint: `%s`\n", data.Fingerprint)
	}
	b.WriteString("\n")

	b.WriteString("## Processed files\n\n")
	if len(data.ProcessedFiles) == 0 {
		b.WriteString("None.\n")
	}
	for _, path := range data.ProcessedFiles {
		fmt.Fprintf(&b, "- %s\n", path)
	}

	if len(data.FailedFiles) > 0 {
		b.WriteString("\n## Failed files\n\n")
		for _, f := range data.FailedFiles {
			fmt.Fprintf(&b, "- %s: %s\n", f.Path, f.Reason)
		}
	}

	b.WriteString("\n## Tests summary\n\n")
	b.WriteString("| " + strings.Join(summaryHeaders, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(summaryHeaders)) + "\n")
	for _, s := range summaries {
		b.WriteString("| " + strings.Join(summaryRow(s), " | ") + " |\n")
	}
	return b.Bytes()
}

// RenderHTML converts the Markdown summary into a standalone HTML page.
func RenderHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "randaudit summary",
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML(md, p, renderer)
}

func writeFile(path string, content []byte) error {
	return os.WriteFile(path, content, 0o644)
}

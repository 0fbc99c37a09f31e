package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"randaudit/domain/run"
	"randaudit/internal"
	apperrors "randaudit/internal/errors"
	"randaudit/internal/runner"
)

// Mode selects where the report goes.
type Mode string

const (
	ModeTerminal Mode = "terminal"
	ModeFile     Mode = "file"
	ModeAll      Mode = "all"
)

// ParseMode validates an output mode.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case ModeTerminal, ModeFile, ModeAll:
		return m, nil
	case "":
		return ModeTerminal, nil
	default:
		return "", apperrors.InvalidInput(fmt.Sprintf("unknown output mode %q (terminal, file, all)", raw))
	}
}

func (m Mode) terminal() bool { return m == ModeTerminal || m == ModeAll }
func (m Mode) files() bool    { return m == ModeFile || m == ModeAll }

// Writer dispatches a finished run to the selected outputs.
type Writer struct {
	mode     Mode
	dir      string
	out      io.Writer
	logger   *internal.Logger
	now      func() time.Time
	manifest *run.Manifest
}

// WithManifest makes file mode also write manifest.json.
func (w *Writer) WithManifest(m *run.Manifest) *Writer {
	w.manifest = m
	return w
}

// NewWriter creates a writer. Terminal output goes to out, files under dir.
func NewWriter(mode Mode, dir string, out io.Writer, logger *internal.Logger) *Writer {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Writer{mode: mode, dir: dir, out: out, logger: logger, now: time.Now}
}

// Write renders the run. It returns the output directory it created, or ""
// when the mode writes no file.
func (w *Writer) Write(ctx context.Context, r *runner.RunReport) (string, error) {
	if w.mode.terminal() {
		if err := WriteTerminal(w.out, r); err != nil {
			return "", apperrors.Wrap(err, "failed to print report")
		}
	}
	if !w.mode.files() {
		return "", nil
	}

	dir := filepath.Join(w.dir, "rtt-"+w.now().Format("2006-01-02-15-04-05"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.Wrapf(err, "failed to create output directory %s", dir)
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var b strings.Builder
		if err := WriteCSV(&b, r); err != nil {
			return apperrors.Wrap(err, "failed to render CSV")
		}
		return writeFile(filepath.Join(dir, CSVFileName), []byte(b.String()))
	})
	g.Go(func() error {
		if err := WriteXLSX(filepath.Join(dir, XLSXFileName), r); err != nil {
			return apperrors.Wrap(err, "failed to write workbook")
		}
		return nil
	})
	g.Go(func() error {
		data := NewExecutionData(r)
		if w.manifest != nil {
			data.Fingerprint = w.manifest.Fingerprint.Fingerprint
		}
		md := RenderMarkdown(data, Summarize(r.Results()))
		if err := writeFile(filepath.Join(dir, MarkdownFileName), md); err != nil {
			return err
		}
		return writeFile(filepath.Join(dir, HTMLFileName), RenderHTML(md))
	})
	if w.manifest != nil {
		g.Go(func() error {
			content, err := json.MarshalIndent(w.manifest, "", "  ")
			if err != nil {
				return apperrors.Wrap(err, "failed to encode manifest")
			}
			return writeFile(filepath.Join(dir, ManifestFileName), content)
		})
	}
	if err := g.Wait(); err != nil {
		return dir, err
	}

	w.logger.Info("Report written to %s", dir)
	return dir, nil
}

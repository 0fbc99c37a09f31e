package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"randaudit/adapters/reader"
	"randaudit/adapters/report"
	"randaudit/domain/run"
	"randaudit/internal"
	"randaudit/internal/battery"
	"randaudit/internal/config"
	apperrors "randaudit/internal/errors"
	"randaudit/internal/metrics"
	"randaudit/internal/runner"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "randaudit",
		Short:         "Statistical randomness audit of generator output files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newRunCmd(), newListCmd())
	return rootCmd
}

type runFlags struct {
	inputFiles  []string
	inputDir    string
	dataType    string
	separator   string
	tests       []string
	workers     int
	output      string
	outputDir   string
	metricsFile string
	logLevel    string
}

// apply overrides the environment configuration with the flags set on cmd.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("input-files") {
		cfg.Input.Files = f.inputFiles
	}
	if changed("input-dir") {
		cfg.Input.Dir = f.inputDir
	}
	if changed("data-type") {
		cfg.Input.DataType = f.dataType
	}
	if changed("separator") {
		cfg.Input.Separator = f.separator
	}
	if changed("tests") {
		cfg.Run.Tests = strings.Join(f.tests, ",")
	}
	if changed("workers") {
		cfg.Run.Workers = f.workers
	}
	if changed("output") {
		cfg.Output.Mode = f.output
	}
	if changed("output-dir") {
		cfg.Output.Dir = f.outputDir
	}
	if changed("metrics-file") {
		cfg.Output.MetricsFile = f.metricsFile
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Run the test battery on input files",
		Long: `Run the selected statistical tests on every input file and report a
p-value and an OK/SUSPECT/KO verdict per test and file.

Defaults are read from the environment (and from a .env file when present):
RANDAUDIT_WORKERS, RANDAUDIT_DATA_TYPE, RANDAUDIT_SEPARATOR, RANDAUDIT_TESTS,
RANDAUDIT_OUTPUT, RANDAUDIT_OUTPUT_DIR, RANDAUDIT_METRICS_FILE and LOG_LEVEL.

Example: randaudit run -i sample1.txt -i sample2.txt -t chi2,run -j 4 -o all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			cfg.Input.Files = append(cfg.Input.Files, args...)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runAudit(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVarP(&flags.inputFiles, "input-files", "i", nil, "Input files to test")
	cmd.Flags().StringVarP(&flags.inputDir, "input-dir", "d", "", "Directory whose files are all tested")
	cmd.Flags().StringVar(&flags.dataType, "data-type", "int", "Input data type: int|bits|bytes")
	cmd.Flags().StringVarP(&flags.separator, "separator", "s", `\n`, `Separator for int files: "\n", " ", ",", ";"`)
	cmd.Flags().StringSliceVarP(&flags.tests, "tests", "t", []string{runner.SelectAllToken}, "Tests to run, or all")
	cmd.Flags().IntVarP(&flags.workers, "workers", "j", 1, "Parallel workers (1-31)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", string(report.ModeTerminal), "Output mode: terminal|file|all")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", ".", "Directory receiving the rtt-<timestamp> report folder")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write run metrics to this Prometheus textfile")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "INFO", "Log level: OFF|ERROR|WARN|INFO|DEBUG|TRACE")

	return cmd
}

func runAudit(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := internal.NewLogger(cfg.LogLevel())
	defer logger.Sync()

	paths, err := cfg.InputPaths()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return apperrors.NoInput("no input file provided, use --input-files or --input-dir")
	}

	kind := cfg.Kind()
	fileReader, err := reader.NewFileReader(kind, cfg.Input.Separator, logger)
	if err != nil {
		return err
	}
	coordinator, err := runner.NewParallelCoordinator(runner.NewSampleRunner(battery.Default(), logger), fileReader, logger, cfg.Run.Workers)
	if err != nil {
		return err
	}

	plan := coordinator.Plan(paths, cfg.Selection(), kind)
	printPlan(out, plan)

	rep, err := coordinator.Run(ctx, plan, progressLogger(logger))
	if err != nil {
		return err
	}
	var processed []string
	for _, f := range rep.Processed() {
		processed = append(processed, f.Path)
	}
	manifest := run.NewManifest(rep.RunID, rep.StartedAt, kind.String(), plan.Tests(), fileReader.Digests(processed), version)

	mode, err := report.ParseMode(cfg.Output.Mode)
	if err != nil {
		return err
	}
	dir, err := report.NewWriter(mode, cfg.Output.Dir, out, logger).WithManifest(manifest).Write(ctx, rep)
	if err != nil {
		return err
	}
	if dir != "" {
		fmt.Fprintf(out, "\nReport written to %s\n", dir)
	}

	if cfg.Output.MetricsFile != "" {
		recorder := metrics.NewRecorder()
		recorder.ObserveRun(rep)
		if err := recorder.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			return err
		}
	}

	if len(rep.Processed()) == 0 {
		return apperrors.New(apperrors.CodeFileUnreadable, fmt.Sprintf("none of the %d input files could be processed", len(paths)))
	}
	return nil
}

func printPlan(out io.Writer, plan runner.Plan) {
	fmt.Fprintf(out, "\nLaunching tests on %d file(s)...\n\nTests launched:\n", len(plan.Files))
	for _, id := range plan.Tests() {
		fmt.Fprintf(out, "- %s\n", id)
	}
	fmt.Fprintf(out, "\nTotal planned tests: %d\n", plan.TotalTests)
}

// progressLogger logs every 10% step. It is only called from the collector.
func progressLogger(logger *internal.Logger) runner.ProgressFunc {
	lastStep := -1
	return func(done, total int) {
		if total == 0 {
			return
		}
		step := done * 10 / total
		if step == lastStep {
			return
		}
		lastStep = step
		logger.Info("Progress: %d/%d tests (%d%%)", done, total, done*100/total)
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "IDENTIFIER\tKINDS\tNAME\tDESCRIPTION")
			for _, d := range battery.Default().All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Identifier, d.KindsString(), d.Name, d.Description)
			}
			return tw.Flush()
		},
	}
}

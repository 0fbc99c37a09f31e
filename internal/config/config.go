package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"randaudit/adapters/reader"
	"randaudit/adapters/report"
	"randaudit/domain/sample"
	"randaudit/internal"
	"randaudit/internal/errors"
	"randaudit/internal/runner"
)

// Config represents the complete run configuration
type Config struct {
	Input   InputConfig
	Run     RunConfig
	Output  OutputConfig
	Logging LoggingConfig
}

// InputConfig holds what to read and how to decode it
type InputConfig struct {
	Files     []string
	Dir       string
	DataType  string
	Separator string
}

// RunConfig holds test selection and pool settings
type RunConfig struct {
	Workers int
	Tests   string
}

// OutputConfig holds report and metrics destinations
type OutputConfig struct {
	Mode        string
	Dir         string
	MetricsFile string
}

// LoggingConfig holds the log level
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables. Command line flags are
// applied on top by the caller, then Validate is called.
func Load() (*Config, error) {
	workers, err := getEnvInt("RANDAUDIT_WORKERS", runner.MinWorkers)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load run configuration")
	}

	return &Config{
		Input: InputConfig{
			DataType:  getEnvOrDefault("RANDAUDIT_DATA_TYPE", "int"),
			Separator: getEnvRawOrDefault("RANDAUDIT_SEPARATOR", `\n`),
		},
		Run: RunConfig{
			Workers: workers,
			Tests:   getEnvOrDefault("RANDAUDIT_TESTS", runner.SelectAllToken),
		},
		Output: OutputConfig{
			Mode:        getEnvOrDefault("RANDAUDIT_OUTPUT", string(report.ModeTerminal)),
			Dir:         getEnvOrDefault("RANDAUDIT_OUTPUT_DIR", "."),
			MetricsFile: os.Getenv("RANDAUDIT_METRICS_FILE"),
		},
		Logging: LoggingConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
	}, nil
}

// Validate checks the values that cannot be fixed up later.
func (c *Config) Validate() error {
	if c.Run.Workers < runner.MinWorkers || c.Run.Workers > runner.MaxWorkers {
		return errors.ConfigInvalid(fmt.Sprintf("workers must be between %d and %d, got %d",
			runner.MinWorkers, runner.MaxWorkers, c.Run.Workers))
	}
	if _, err := sample.ParseKind(c.Input.DataType); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if _, err := reader.NormalizeSeparator(c.Input.Separator); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if _, err := report.ParseMode(c.Output.Mode); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if len(c.Input.Files) > 0 && c.Input.Dir != "" {
		return errors.ConfigInvalid("input files and input directory are mutually exclusive")
	}
	return nil
}

// Kind returns the parsed data type. Call Validate first.
func (c *Config) Kind() sample.Kind {
	kind, _ := sample.ParseKind(c.Input.DataType)
	return kind
}

// Selection returns the parsed test selection.
func (c *Config) Selection() runner.Selection {
	return runner.ParseSelection(c.Run.Tests)
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() internal.LogLevel {
	return internal.ParseLogLevel(c.Logging.Level)
}

// InputPaths lists the files to process: the explicit files, or the regular
// files of the input directory.
func (c *Config) InputPaths() ([]string, error) {
	if c.Input.Dir == "" {
		return c.Input.Files, nil
	}
	return reader.ListDir(c.Input.Dir)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvRawOrDefault keeps surrounding whitespace: " " is a valid separator.
func getEnvRawOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return n, nil
}

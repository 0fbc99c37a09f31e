package run

import (
	"time"

	apperrors "randaudit/internal/errors"
)

// Manifest is the replay record of a run, written next to its report.
type Manifest struct {
	RunID       string         `json:"run_id"`
	CreatedAt   time.Time      `json:"created_at"`
	Inputs      []InputDigest  `json:"inputs"`
	Fingerprint RunFingerprint `json:"fingerprint"`
}

// NewManifest creates the manifest of a run over inputs.
func NewManifest(runID string, createdAt time.Time, dataType string, tests []string, inputs []InputDigest, codeVersion string) *Manifest {
	return &Manifest{
		RunID:       runID,
		CreatedAt:   createdAt,
		Inputs:      inputs,
		Fingerprint: NewRunFingerprint(dataType, tests, inputs, codeVersion),
	}
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if m.RunID == "" {
		return apperrors.InvalidInput("run manifest: run_id cannot be empty")
	}
	if m.Fingerprint.DataType == "" {
		return apperrors.InvalidInput("run manifest: data_type cannot be empty")
	}
	if len(m.Fingerprint.Tests) == 0 {
		return apperrors.InvalidInput("run manifest: no test was planned")
	}
	if m.Fingerprint.CodeVersion == "" {
		return apperrors.InvalidInput("run manifest: code_version cannot be empty")
	}
	return nil
}

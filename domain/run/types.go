package run

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// InputDigest identifies the content of one input file.
type InputDigest struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Bytes  int64  `json:"bytes"`
}

// RunFingerprint ensures deterministic replay: the tests are deterministic, so
// two runs with the same fingerprint report the same p-values.
type RunFingerprint struct {
	DataType    string   `json:"data_type"`
	Tests       []string `json:"tests"`
	InputHashes []string `json:"input_hashes"`
	CodeVersion string   `json:"code_version"`
	Fingerprint string   `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from the determinism parameters.
// Input order and paths do not matter, only contents.
func NewRunFingerprint(dataType string, tests []string, inputs []InputDigest, codeVersion string) RunFingerprint {
	hashes := make([]string, len(inputs))
	for i, in := range inputs {
		hashes[i] = in.SHA256
	}
	sort.Strings(hashes)

	return RunFingerprint{
		DataType:    dataType,
		Tests:       tests,
		InputHashes: hashes,
		CodeVersion: codeVersion,
		Fingerprint: computeRunFingerprint(dataType, tests, hashes, codeVersion),
	}
}

func computeRunFingerprint(dataType string, tests, sortedHashes []string, codeVersion string) string {
	data := fmt.Sprintf("data_type:%s|tests:%s|inputs:%s|code:%s",
		dataType, strings.Join(tests, ","), strings.Join(sortedHashes, ","), codeVersion)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

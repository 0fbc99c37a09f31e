package reader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"randaudit/domain/run"
	"randaudit/domain/sample"
	"randaudit/internal"
	apperrors "randaudit/internal/errors"
)

// Separators accepted for integer files. "\\n" is the escaped spelling the
// command line passes through.
var Separators = []string{"\n", " ", ",", ";"}

// FileReader loads input files as samples of a declared kind. It keeps the
// digest of every file it read, taken from the bytes it decoded.
type FileReader struct {
	kind      sample.Kind
	separator string
	logger    *internal.Logger

	mu      sync.Mutex
	digests map[string]run.InputDigest
}

// NormalizeSeparator maps the command line spelling to the actual separator.
func NormalizeSeparator(separator string) (string, error) {
	if separator == `\n` || separator == "" {
		separator = "\n"
	}
	for _, allowed := range Separators {
		if separator == allowed {
			return separator, nil
		}
	}
	return "", apperrors.InvalidInput(fmt.Sprintf("unsupported separator %q", separator))
}

// NewFileReader creates a reader for kind. separator only matters for integer files.
func NewFileReader(kind sample.Kind, separator string, logger *internal.Logger) (*FileReader, error) {
	sep, err := NormalizeSeparator(separator)
	if err != nil {
		return nil, err
	}
	if _, err := sample.ParseKind(kind.String()); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &FileReader{kind: kind, separator: sep, logger: logger, digests: make(map[string]run.InputDigest)}, nil
}

// Load reads path and builds its sample. A missing or undecodable file fails
// with an error carrying the path.
func (r *FileReader) Load(ctx context.Context, path string) (sample.Sample, error) {
	if err := ctx.Err(); err != nil {
		return sample.Sample{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return sample.Sample{}, apperrors.FileUnreadable(path, err)
	}
	r.logger.Debug("Read %d bytes from %s", len(raw), path)
	r.record(Digest(path, raw))

	switch r.kind {
	case sample.KindBytes:
		return sample.FromBytes(raw), nil
	case sample.KindBitstring:
		bits, err := ParseBitstringText(string(raw))
		if err != nil {
			return sample.Sample{}, apperrors.FileUnreadable(path, err)
		}
		return sample.New(bits.Int64s(), sample.KindBitstring), nil
	default:
		values, err := ParseIntegers(string(raw), r.separator)
		if err != nil {
			return sample.Sample{}, apperrors.FileUnreadable(path, err)
		}
		return sample.New(values, sample.KindInteger), nil
	}
}

// ParseBitstringText takes the first line of text as the bitstring.
func ParseBitstringText(text string) (sample.Bitstring, error) {
	first := strings.TrimRight(strings.SplitN(text, "\n", 2)[0], "\r")
	if strings.TrimSpace(first) == "" {
		return nil, apperrors.EmptyInput("bitstring file has no data on its first line")
	}
	return sample.ParseBitstring(first)
}

// ParseIntegers reads one value per line when separator is a newline, and the
// separated values of the first line otherwise.
func ParseIntegers(text, separator string) ([]int64, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var fields []string
	if separator == "\n" {
		fields = lines
	} else {
		fields = strings.Split(lines[0], separator)
	}

	values := make([]int64, 0, len(fields))
	for i, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("value %d: %q is not an integer", i+1, field))
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, apperrors.EmptyInput("no integer values found")
	}
	return values, nil
}

// ListDir returns the regular files of dir, sorted by name.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.FileUnreadable(dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Digest hashes raw, the content read from path.
func Digest(path string, raw []byte) run.InputDigest {
	sum := sha256.Sum256(raw)
	return run.InputDigest{Path: path, SHA256: hex.EncodeToString(sum[:]), Bytes: int64(len(raw))}
}

func (r *FileReader) record(d run.InputDigest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.digests[d.Path] = d
}

// Digests returns the digests recorded by Load for paths, in order. A path
// that was never loaded is logged and left out.
func (r *FileReader) Digests(paths []string) []run.InputDigest {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]run.InputDigest, 0, len(paths))
	for _, path := range paths {
		d, ok := r.digests[path]
		if !ok {
			r.logger.Warn("No digest recorded for %s, leaving it out of the manifest", path)
			continue
		}
		out = append(out, d)
	}
	return out
}

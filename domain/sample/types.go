// Package sample holds the canonical data representation shared by every
// statistical test: a DataSample of integers tagged with its Kind, and the
// Bitstring derived from it.
package sample

import (
	"fmt"
	"strings"

	apperrors "randaudit/internal/errors"
)

// Kind tells how the values of a Sample must be interpreted.
type Kind int

const (
	KindInteger Kind = iota + 1
	KindBitstring
	KindBytes
)

// String returns the CLI spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "int"
	case KindBitstring:
		return "bits"
	case KindBytes:
		return "bytes"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps "int", "bits" and "bytes" to a Kind.
func ParseKind(code string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "int", "integer":
		return KindInteger, nil
	case "bits", "bitstring":
		return KindBitstring, nil
	case "bytes":
		return KindBytes, nil
	default:
		return 0, apperrors.InvalidInput(fmt.Sprintf("unknown data type %q", code))
	}
}

// Sample is one input file worth of values. It is created once by the reader
// and not modified afterwards.
type Sample struct {
	Values []int64
	Kind   Kind
}

// New builds a Sample. Bytes samples are re-expressed as bitstrings right away
// so that no test ever sees KindBytes.
func New(values []int64, kind Kind) Sample {
	if kind == KindBytes {
		raw := make([]byte, len(values))
		for i, v := range values {
			raw[i] = byte(v)
		}
		return FromBytes(raw)
	}
	return Sample{Values: values, Kind: kind}
}

// FromBytes expands raw bytes into a bitstring sample, most significant bit first.
func FromBytes(raw []byte) Sample {
	return Sample{Values: BytesToBits(raw).Int64s(), Kind: KindBitstring}
}

// Len returns the number of values.
func (s Sample) Len() int {
	return len(s.Values)
}

// Floats returns the values as float64, for the descriptive statistics helpers.
func (s Sample) Floats() []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = float64(v)
	}
	return out
}

// Bits returns the bitstring view of the sample: the values themselves for a
// bitstring sample, the normalized expansion otherwise.
func (s Sample) Bits() (Bitstring, error) {
	if s.Kind == KindBitstring {
		bits := make(Bitstring, len(s.Values))
		for i, v := range s.Values {
			if v != 0 && v != 1 {
				return nil, apperrors.InvalidInput(fmt.Sprintf("bitstring symbol %d at position %d", v, i))
			}
			bits[i] = uint8(v)
		}
		return bits, nil
	}
	return ToBits(s.Values)
}

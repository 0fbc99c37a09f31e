package sample

import (
	"fmt"
	"math/bits"
	"strings"

	apperrors "randaudit/internal/errors"
)

// Bitstring is an immutable sequence of 0/1 symbols.
type Bitstring []uint8

// ParseBitstring reads a textual bitstring. Whitespace is ignored, any other
// symbol than '0' or '1' is rejected.
func ParseBitstring(text string) (Bitstring, error) {
	out := make(Bitstring, 0, len(text))
	for i, r := range text {
		switch r {
		case '0':
			out = append(out, 0)
		case '1':
			out = append(out, 1)
		case ' ', '\t', '\r', '\n':
		default:
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid bit %q at offset %d", r, i))
		}
	}
	return out, nil
}

// BytesToBits expands every byte into 8 bits, most significant bit first.
func BytesToBits(raw []byte) Bitstring {
	out := make(Bitstring, 0, len(raw)*8)
	for _, b := range raw {
		for shift := 7; shift >= 0; shift-- {
			out = append(out, (b>>uint(shift))&1)
		}
	}
	return out
}

// String renders the bitstring as '0'/'1' text.
func (b Bitstring) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, bit := range b {
		sb.WriteByte('0' + bit)
	}
	return sb.String()
}

// Int64s widens the symbols back to sample values.
func (b Bitstring) Int64s() []int64 {
	out := make([]int64, len(b))
	for i, bit := range b {
		out[i] = int64(bit)
	}
	return out
}

// Uint reads width bits starting at offset as a big-endian unsigned integer.
func (b Bitstring) Uint(offset, width int) uint64 {
	var v uint64
	for _, bit := range b[offset : offset+width] {
		v = v<<1 | uint64(bit)
	}
	return v
}

// HighestPowerOfTwo returns the largest power of two not above n and its exponent.
// n must be positive.
func HighestPowerOfTwo(n uint64) (uint64, int) {
	exponent := bits.Len64(n) - 1
	return uint64(1) << uint(exponent), exponent
}

// ToBits converts non-negative integers into an equiprobable bitstring.
//
// A sample whose minimum is 0 is shifted by one first. Only values within the
// largest [1, 2^e] interval below the maximum are kept, and each kept value v
// is emitted as v-1 on exactly e bits.
func ToBits(values []int64) (Bitstring, error) {
	if len(values) == 0 {
		return nil, apperrors.EmptyInput("cannot convert an empty sample to bits")
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < 0 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("negative value %d cannot be converted to bits", v))
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	// unsigned so that a maximum of math.MaxInt64 survives the shift
	var shift uint64
	if lo == 0 {
		shift = 1
	}
	top := uint64(hi) + shift
	if top < 2 {
		return nil, apperrors.DegenerateRange(fmt.Sprintf("maximum value %d leaves no power-of-two interval", top))
	}

	maxPower, exponent := HighestPowerOfTwo(top)

	kept := 0
	for _, v := range values {
		if uint64(v)+shift <= maxPower {
			kept++
		}
	}

	out := make(Bitstring, 0, kept*exponent)
	for _, v := range values {
		shifted := uint64(v) + shift
		if shifted > maxPower {
			continue
		}
		word := shifted - 1
		for i := exponent - 1; i >= 0; i-- {
			out = append(out, uint8(word>>uint(i)&1))
		}
	}
	return out, nil
}

package sample

import (
	"math"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "randaudit/internal/errors"
)

func TestToBits_KnownExpansion(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
		want   string
	}{
		{"one to four on two bits", []int64{1, 2, 3, 4}, "00011011"},
		{"zero is shifted", []int64{0, 1, 2, 3}, "00011011"},
		{"values above the power of two are dropped", []int64{1, 5, 4, 6}, "0011"},
		{"max power eight", []int64{8, 1}, "111000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bits, err := ToBits(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, bits.String())
		})
	}
}

func TestToBits_Errors(t *testing.T) {
	_, err := ToBits(nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEmptyInput))

	_, err = ToBits([]int64{1, 1, 1})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDegenerateRange))

	// all zeros become all ones after the shift, still degenerate
	_, err = ToBits([]int64{0, 0})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDegenerateRange))

	_, err = ToBits([]int64{3, -1})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestToBits_DoesNotMutateInput(t *testing.T) {
	values := []int64{0, 1, 2, 3}
	_, err := ToBits(values)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2, 3}, values)
}

func TestToBits_AllEqualLength(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("all-equal power-of-two sample yields count*exponent bits", prop.ForAll(
		func(exponent int, count int) bool {
			value := int64(1) << uint(exponent)
			values := make([]int64, count)
			for i := range values {
				values[i] = value
			}
			bits, err := ToBits(values)
			if err != nil {
				return false
			}
			return len(bits) == count*exponent
		},
		gen.IntRange(1, 40),
		gen.IntRange(1, 300),
	))

	properties.Property("length is exponent times the number of kept values", prop.ForAll(
		func(values []int64) bool {
			if len(values) == 0 {
				return true
			}
			bits, err := ToBits(values)
			hi, lo := values[0], values[0]
			for _, v := range values {
				if v > hi {
					hi = v
				}
				if v < lo {
					lo = v
				}
			}
			shift := int64(0)
			if lo == 0 {
				shift = 1
			}
			if hi+shift < 2 {
				return apperrors.HasCode(err, apperrors.CodeDegenerateRange)
			}
			maxPower, exponent := HighestPowerOfTwo(uint64(hi + shift))
			kept := 0
			for _, v := range values {
				if uint64(v+shift) <= maxPower {
					kept++
				}
			}
			return err == nil && len(bits) == kept*exponent
		},
		gen.SliceOf(gen.Int64Range(0, 5000)),
	))

	properties.TestingRun(t)
}

func TestHighestPowerOfTwo(t *testing.T) {
	p, e := HighestPowerOfTwo(1)
	assert.Equal(t, uint64(1), p)
	assert.Equal(t, 0, e)

	p, e = HighestPowerOfTwo(10)
	assert.Equal(t, uint64(8), p)
	assert.Equal(t, 3, e)

	p, e = HighestPowerOfTwo(16)
	assert.Equal(t, uint64(16), p)
	assert.Equal(t, 4, e)

	p, e = HighestPowerOfTwo(1 << 63)
	assert.Equal(t, uint64(1)<<63, p)
	assert.Equal(t, 63, e)
}

func TestToBits_MaxInt64WithZero(t *testing.T) {
	bits, err := ToBits([]int64{0, math.MaxInt64})
	require.NoError(t, err)
	require.Len(t, bits, 126)
	assert.Equal(t, strings.Repeat("0", 63)+strings.Repeat("1", 63), bits.String())

	bits, err = ToBits([]int64{1, math.MaxInt64})
	require.NoError(t, err)
	// 2^62 is the top power of two, MaxInt64 lies above it and is dropped
	assert.Equal(t, strings.Repeat("0", 62), bits.String())
}

func TestBytesToBits_MSBFirst(t *testing.T) {
	bits := BytesToBits([]byte{0x80, 0x0F})
	assert.Equal(t, "1000000000001111", bits.String())
}

func TestParseBitstring(t *testing.T) {
	bits, err := ParseBitstring("0110 1\n")
	require.NoError(t, err)
	assert.Equal(t, Bitstring{0, 1, 1, 0, 1}, bits)

	_, err = ParseBitstring("01x")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestBitstring_Uint(t *testing.T) {
	bits, err := ParseBitstring("101101")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), bits.Uint(0, 3))
	assert.Equal(t, uint64(5), bits.Uint(3, 3))
	assert.Equal(t, uint64(45), bits.Uint(0, 6))
}

package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for code, want := range map[string]Kind{
		"int":   KindInteger,
		"bits":  KindBitstring,
		"bytes": KindBytes,
		" INT ": KindInteger,
	} {
		got, err := ParseKind(code)
		require.NoError(t, err, code)
		assert.Equal(t, want, got, code)
	}

	_, err := ParseKind("float")
	assert.Error(t, err)
}

func TestNew_BytesBecomeBitstring(t *testing.T) {
	s := New([]int64{0xA5}, KindBytes)
	assert.Equal(t, KindBitstring, s.Kind)
	assert.Equal(t, []int64{1, 0, 1, 0, 0, 1, 0, 1}, s.Values)
}

func TestSample_Bits(t *testing.T) {
	bitSample := New([]int64{1, 0, 1}, KindBitstring)
	bits, err := bitSample.Bits()
	require.NoError(t, err)
	assert.Equal(t, Bitstring{1, 0, 1}, bits)

	intSample := New([]int64{1, 2, 3, 4}, KindInteger)
	bits, err = intSample.Bits()
	require.NoError(t, err)
	assert.Equal(t, "00011011", bits.String())

	_, err = New([]int64{0, 2}, KindBitstring).Bits()
	assert.Error(t, err)
}

package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTrip(t *testing.T) {
	t.Run("u16", func(t *testing.T) {
		buf := make([]byte, 2)
		require.NoError(t, WriteU16BE(buf, 0, 0x1234))
		v, err := ReadU16BE(buf, 0)
		require.NoError(t, err)
		require.Equal(t, uint16(0x1234), v)

		require.NoError(t, WriteU16LE(buf, 0, 0x1234))
		v, err = ReadU16LE(buf, 0)
		require.NoError(t, err)
		require.Equal(t, uint16(0x1234), v)
	})

	t.Run("u32", func(t *testing.T) {
		buf := make([]byte, 4)
		require.NoError(t, WriteU32BE(buf, 0, 0xdeadbeef))
		v, err := ReadU32BE(buf, 0)
		require.NoError(t, err)
		require.Equal(t, uint32(0xdeadbeef), v)
	})

	t.Run("u64", func(t *testing.T) {
		buf := make([]byte, 8)
		require.NoError(t, WriteU64LE(buf, 0, 0x0102030405060708))
		v, err := ReadU64LE(buf, 0)
		require.NoError(t, err)
		require.Equal(t, uint64(0x0102030405060708), v)
	})

	t.Run("i32 negative", func(t *testing.T) {
		buf := make([]byte, 4)
		require.NoError(t, WriteI32BE(buf, 0, -42))
		v, err := ReadI32BE(buf, 0)
		require.NoError(t, err)
		require.Equal(t, int32(-42), v)
	})
}

func TestBigEndianLittleEndianDisagree(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x48, 0x41}
	be, err := ReadU32BE(buf, 0)
	require.NoError(t, err)
	le, err := ReadU32LE(buf, 0)
	require.NoError(t, err)
	require.NotEqual(t, be, le)
}

func TestF32BitExactRoundTrip(t *testing.T) {
	values := []float32{0, 1, -1, 12.5, math.MaxFloat32, -math.MaxFloat32}
	for _, v := range values {
		buf := make([]byte, 4)
		require.NoError(t, WriteF32BE(buf, 0, v))
		got, err := ReadF32BE(buf, 0)
		require.NoError(t, err)
		require.Equal(t, math.Float32bits(v), math.Float32bits(got))
	}
}

func TestF32NaNPayloadSurvives(t *testing.T) {
	// A specific (non-canonical) NaN bit pattern must survive byte-exactly;
	// Go's == on NaN is always false, so compare bit patterns.
	bits := uint32(0x7fc00001)
	nan := math.Float32frombits(bits)

	buf := make([]byte, 4)
	require.NoError(t, WriteF32BE(buf, 0, nan))
	got, err := ReadF32BE(buf, 0)
	require.NoError(t, err)
	require.Equal(t, bits, math.Float32bits(got))
}

func TestSwapU16(t *testing.T) {
	in := []byte{0x12, 0x34}
	out := make([]byte, 2)
	require.NoError(t, SwapU16(in, 0, out, 0, BigEndian, LittleEndian))
	require.Equal(t, []byte{0x34, 0x12}, out)
}

func TestSwapU32(t *testing.T) {
	in := []byte{0x00, 0x00, 0x00, 0x09}
	out := make([]byte, 4)
	require.NoError(t, SwapU32(in, 0, out, 0, BigEndian, LittleEndian))
	require.Equal(t, []byte{0x09, 0x00, 0x00, 0x00}, out)
}

func TestSwapF32BitExact(t *testing.T) {
	// 12.5 big-endian bytes, per spec.md scenario S2.
	in := []byte{0x41, 0x48, 0x00, 0x00}
	out := make([]byte, 4)
	require.NoError(t, SwapF32(in, 0, out, 0, BigEndian, LittleEndian))
	require.Equal(t, []byte{0x00, 0x00, 0x48, 0x41}, out)
}

func TestTruncatedReadsFail(t *testing.T) {
	buf := []byte{0x01}
	_, err := ReadU32BE(buf, 0)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrTruncated, kind)
}

func TestOutOfBoundsOffset(t *testing.T) {
	buf := []byte{0x01, 0x02}
	_, err := ReadU16BE(buf, -1)
	require.Error(t, err)
	_, err = ReadU16BE(buf, 5)
	require.Error(t, err)
}

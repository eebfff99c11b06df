package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-esm/esmconv/internal/utils"
)

func buildSubrecordBE(sig string, data []byte) []byte {
	b := make([]byte, 6+len(data))
	copy(b[0:4], sig)
	_ = utils.WriteU16BE(b, 4, uint16(len(data)))
	copy(b[6:], data)
	return b
}

func TestSubrecordIterator_SimpleStream(t *testing.T) {
	payload := append(
		buildSubrecordBE("EDID", []byte("Test\x00")),
		buildSubrecordBE("DATA", []byte{0x00, 0x00, 0x00, 0x09})...,
	)

	it := NewSubrecordIterator(payload, true)

	v, err := it.Next()
	require.NoError(t, err)
	require.Equal(t, "EDID", string(v.Signature[:]))
	require.Equal(t, []byte("Test\x00"), v.Data)

	v, err = it.Next()
	require.NoError(t, err)
	require.Equal(t, "DATA", string(v.Signature[:]))
	require.Equal(t, uint32(4), v.Size)

	v, err = it.Next()
	require.NoError(t, err)
	require.Nil(t, v)
	require.Equal(t, 0, it.Remaining())
}

func TestSubrecordIterator_XXXXOverride(t *testing.T) {
	xxxxPayload := make([]byte, 4)
	_ = utils.WriteU32BE(xxxxPayload, 0, 512)
	stream := buildSubrecordBE("XXXX", xxxxPayload)

	ksiz := make([]byte, 6+512)
	copy(ksiz[0:4], "KSIZ")
	_ = utils.WriteU16BE(ksiz, 4, 0) // declared size is overridden
	stream = append(stream, ksiz...)

	it := NewSubrecordIterator(stream, true)
	v, err := it.Next()
	require.NoError(t, err)
	require.Equal(t, "KSIZ", string(v.Signature[:]))
	require.Equal(t, uint32(512), v.Size)
	require.True(t, v.FromXXXX)
	require.Len(t, v.Data, 512)

	v, err = it.Next()
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSubrecordIterator_RaggedPayload(t *testing.T) {
	// 3 stray bytes after a valid subrecord: not enough for another header.
	stream := append(buildSubrecordBE("EDID", []byte("a\x00")), 0x01, 0x02, 0x03)
	it := NewSubrecordIterator(stream, true)

	_, err := it.Next()
	require.NoError(t, err)

	_, err = it.Next()
	require.Error(t, err)
	kind, ok := utils.KindOf(err)
	require.True(t, ok)
	require.Equal(t, utils.ErrRaggedPayload, kind)
}

func TestSubrecordIterator_TruncatedPayload(t *testing.T) {
	b := make([]byte, 6)
	copy(b[0:4], "DATA")
	_ = utils.WriteU16BE(b, 4, 10) // declares 10 bytes that aren't present
	it := NewSubrecordIterator(b, true)

	_, err := it.Next()
	require.Error(t, err)
}

func TestSubrecordIterator_EmptyPayload(t *testing.T) {
	it := NewSubrecordIterator(nil, true)
	v, err := it.Next()
	require.NoError(t, err)
	require.Nil(t, v)
}

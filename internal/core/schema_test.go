package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-esm/esmconv/internal/utils"
)

func TestGetSchema_ExactSizeDiscriminatesByRecordType(t *testing.T) {
	// Same signature ("DATA"), different record types, different layouts.
	weapon, ok := GetSchema("DATA", "WEAP", 136)
	require.True(t, ok)
	require.Len(t, weapon.Slots, 23)

	cell, ok := GetSchema("DATA", "CELL", 2)
	require.True(t, ok)
	require.Equal(t, []Slot{U16()}, cell.Slots)

	land, ok := GetSchema("DATA", "LAND", 4)
	require.True(t, ok)
	require.Equal(t, []Slot{U32()}, land.Slots)
}

func TestGetSchema_OpenEnded(t *testing.T) {
	s, ok := GetSchema("VTXT", "LAND", 24) // 3 elements x 8 bytes
	require.True(t, ok)
	stride, hasArray := s.HasTrailingArray()
	require.True(t, hasArray)
	require.Equal(t, 8, stride)

	_, ok = GetSchema("VTXT", "LAND", 25) // not a multiple of stride
	require.False(t, ok)
}

func TestGetSchema_SignatureOnlyFallsBackAcrossRecordTypes(t *testing.T) {
	s1, ok := GetSchema("NAME", "ACTI", 4)
	require.True(t, ok)
	s2, ok := GetSchema("NAME", "ARMO", 4)
	require.True(t, ok)
	require.Equal(t, s1, s2)
}

func TestGetSchema_Unmatched(t *testing.T) {
	_, ok := GetSchema("ZZZZ", "XYZZ", 16)
	require.False(t, ok)
}

func TestIsStringSubrecord(t *testing.T) {
	require.True(t, IsStringSubrecord("EDID", "ANYTHING"))
	require.True(t, IsStringSubrecord("DESC", "BOOK"))
	require.False(t, IsStringSubrecord("DESC", "ACTI"))
	require.True(t, IsStringSubrecord("MAST", "TES4"))
	require.False(t, IsStringSubrecord("MAST", "BOOK"))
}

func TestConvertSubrecord_FixedScalars(t *testing.T) {
	// TES4 HEDR: f32 version, u32 numRecords, u32 nextFormId.
	in := make([]byte, 12)
	require.NoError(t, utils.WriteF32BE(in, 0, 12.5))
	require.NoError(t, utils.WriteU32BE(in, 4, 100))
	require.NoError(t, utils.WriteU32BE(in, 8, 0xABCD))

	out := make([]byte, 12)
	schema, ok := GetSchema("HEDR", "TES4", 12)
	require.True(t, ok)
	require.NoError(t, ConvertSubrecord(schema.Slots, in, out, utils.BigEndian, utils.LittleEndian))

	gotVersion, err := utils.ReadF32LE(out, 0)
	require.NoError(t, err)
	require.Equal(t, float32(12.5), gotVersion)

	gotNumRecords, err := utils.ReadU32LE(out, 4)
	require.NoError(t, err)
	require.Equal(t, uint32(100), gotNumRecords)
}

func TestConvertSubrecord_Array(t *testing.T) {
	schema, ok := GetSchema("XCLR", "CELL", 8)
	require.True(t, ok)

	in := make([]byte, 8)
	require.NoError(t, utils.WriteU32BE(in, 0, 1))
	require.NoError(t, utils.WriteU32BE(in, 4, 2))
	out := make([]byte, 8)
	require.NoError(t, ConvertSubrecord(schema.Slots, in, out, utils.BigEndian, utils.LittleEndian))

	v0, _ := utils.ReadU32LE(out, 0)
	v1, _ := utils.ReadU32LE(out, 4)
	require.Equal(t, uint32(1), v0)
	require.Equal(t, uint32(2), v1)
}

func TestConvertSubrecord_RawBytesUnchanged(t *testing.T) {
	schema, ok := GetSchema("VNML", "LAND", 33*33*3)
	require.True(t, ok)
	in := make([]byte, 33*33*3)
	for i := range in {
		in[i] = byte(i)
	}
	out := make([]byte, len(in))
	require.NoError(t, ConvertSubrecord(schema.Slots, in, out, utils.BigEndian, utils.LittleEndian))
	require.Equal(t, in, out)
}

func TestConvertSubrecord_VHGT(t *testing.T) {
	schema, ok := GetSchema("VHGT", "LAND", 4+1089+3)
	require.True(t, ok)
	in := make([]byte, 4+1089+3)
	require.NoError(t, utils.WriteF32BE(in, 0, 12.5))
	out := make([]byte, len(in))
	require.NoError(t, ConvertSubrecord(schema.Slots, in, out, utils.BigEndian, utils.LittleEndian))

	v, err := utils.ReadF32LE(out, 0)
	require.NoError(t, err)
	require.Equal(t, float32(12.5), v)
	require.Equal(t, in[4:], out[4:]) // gradients + pad unchanged
}

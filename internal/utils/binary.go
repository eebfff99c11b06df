// Package utils provides binary primitives, error wrapping, and buffer
// pooling shared by the ESM parser and converter.
package utils

import (
	"encoding/binary"
	"math"
)

// ReadU16BE reads a big-endian uint16 at offset.
func ReadU16BE(b []byte, offset int) (uint16, error) {
	if err := checkBounds(b, offset, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[offset:]), nil
}

// ReadU16LE reads a little-endian uint16 at offset.
func ReadU16LE(b []byte, offset int) (uint16, error) {
	if err := checkBounds(b, offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[offset:]), nil
}

// ReadU32BE reads a big-endian uint32 at offset.
func ReadU32BE(b []byte, offset int) (uint32, error) {
	if err := checkBounds(b, offset, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[offset:]), nil
}

// ReadU32LE reads a little-endian uint32 at offset.
func ReadU32LE(b []byte, offset int) (uint32, error) {
	if err := checkBounds(b, offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[offset:]), nil
}

// ReadU64BE reads a big-endian uint64 at offset.
func ReadU64BE(b []byte, offset int) (uint64, error) {
	if err := checkBounds(b, offset, 8); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[offset:]), nil
}

// ReadU64LE reads a little-endian uint64 at offset.
func ReadU64LE(b []byte, offset int) (uint64, error) {
	if err := checkBounds(b, offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[offset:]), nil
}

// ReadI32BE reads a big-endian int32 at offset.
func ReadI32BE(b []byte, offset int) (int32, error) {
	v, err := ReadU32BE(b, offset)
	return int32(v), err
}

// ReadI32LE reads a little-endian int32 at offset.
func ReadI32LE(b []byte, offset int) (int32, error) {
	v, err := ReadU32LE(b, offset)
	return int32(v), err
}

// ReadF32BE reads a big-endian float32 at offset via raw bit reinterpretation.
// NaN payloads survive round-trip bit-exactly; no value normalization happens.
func ReadF32BE(b []byte, offset int) (float32, error) {
	v, err := ReadU32BE(b, offset)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadF32LE reads a little-endian float32 at offset via raw bit reinterpretation.
func ReadF32LE(b []byte, offset int) (float32, error) {
	v, err := ReadU32LE(b, offset)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// WriteU16BE writes a big-endian uint16 at offset.
func WriteU16BE(b []byte, offset int, v uint16) error {
	if err := checkBounds(b, offset, 2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(b[offset:], v)
	return nil
}

// WriteU16LE writes a little-endian uint16 at offset.
func WriteU16LE(b []byte, offset int, v uint16) error {
	if err := checkBounds(b, offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b[offset:], v)
	return nil
}

// WriteU32BE writes a big-endian uint32 at offset.
func WriteU32BE(b []byte, offset int, v uint32) error {
	if err := checkBounds(b, offset, 4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(b[offset:], v)
	return nil
}

// WriteU32LE writes a little-endian uint32 at offset.
func WriteU32LE(b []byte, offset int, v uint32) error {
	if err := checkBounds(b, offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b[offset:], v)
	return nil
}

// WriteU64BE writes a big-endian uint64 at offset.
func WriteU64BE(b []byte, offset int, v uint64) error {
	if err := checkBounds(b, offset, 8); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(b[offset:], v)
	return nil
}

// WriteU64LE writes a little-endian uint64 at offset.
func WriteU64LE(b []byte, offset int, v uint64) error {
	if err := checkBounds(b, offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b[offset:], v)
	return nil
}

// WriteI32BE writes a big-endian int32 at offset.
func WriteI32BE(b []byte, offset int, v int32) error {
	return WriteU32BE(b, offset, uint32(v))
}

// WriteI32LE writes a little-endian int32 at offset.
func WriteI32LE(b []byte, offset int, v int32) error {
	return WriteU32LE(b, offset, uint32(v))
}

// WriteF32BE writes a big-endian float32 at offset via raw bit reinterpretation.
func WriteF32BE(b []byte, offset int, v float32) error {
	return WriteU32BE(b, offset, math.Float32bits(v))
}

// WriteF32LE writes a little-endian float32 at offset via raw bit reinterpretation.
func WriteF32LE(b []byte, offset int, v float32) error {
	return WriteU32LE(b, offset, math.Float32bits(v))
}

// Endian selects which byte order a buffer is interpreted in.
type Endian uint8

const (
	BigEndian Endian = iota
	LittleEndian
)

// SwapU16 reads a uint16 in srcEndian from in and writes it in dstEndian to out.
func SwapU16(in []byte, inOff int, out []byte, outOff int, srcEndian, dstEndian Endian) error {
	v, err := readU16(in, inOff, srcEndian)
	if err != nil {
		return err
	}
	return writeU16(out, outOff, v, dstEndian)
}

// SwapU32 reads a uint32 in srcEndian from in and writes it in dstEndian to out.
func SwapU32(in []byte, inOff int, out []byte, outOff int, srcEndian, dstEndian Endian) error {
	v, err := readU32(in, inOff, srcEndian)
	if err != nil {
		return err
	}
	return writeU32(out, outOff, v, dstEndian)
}

// SwapU64 reads a uint64 in srcEndian from in and writes it in dstEndian to out.
func SwapU64(in []byte, inOff int, out []byte, outOff int, srcEndian, dstEndian Endian) error {
	v, err := readU64(in, inOff, srcEndian)
	if err != nil {
		return err
	}
	return writeU64(out, outOff, v, dstEndian)
}

// SwapI32 reads an int32 in srcEndian from in and writes it in dstEndian to out.
func SwapI32(in []byte, inOff int, out []byte, outOff int, srcEndian, dstEndian Endian) error {
	v, err := readU32(in, inOff, srcEndian)
	if err != nil {
		return err
	}
	return writeU32(out, outOff, v, dstEndian)
}

// SwapF32 reads a float32 bit pattern in srcEndian from in and writes the same
// bit pattern in dstEndian to out. NaN payloads are preserved exactly.
func SwapF32(in []byte, inOff int, out []byte, outOff int, srcEndian, dstEndian Endian) error {
	v, err := readU32(in, inOff, srcEndian)
	if err != nil {
		return err
	}
	return writeU32(out, outOff, v, dstEndian)
}

func readU16(b []byte, offset int, e Endian) (uint16, error) {
	if e == BigEndian {
		return ReadU16BE(b, offset)
	}
	return ReadU16LE(b, offset)
}

func writeU16(b []byte, offset int, v uint16, e Endian) error {
	if e == BigEndian {
		return WriteU16BE(b, offset, v)
	}
	return WriteU16LE(b, offset, v)
}

func readU32(b []byte, offset int, e Endian) (uint32, error) {
	if e == BigEndian {
		return ReadU32BE(b, offset)
	}
	return ReadU32LE(b, offset)
}

func writeU32(b []byte, offset int, v uint32, e Endian) error {
	if e == BigEndian {
		return WriteU32BE(b, offset, v)
	}
	return WriteU32LE(b, offset, v)
}

func readU64(b []byte, offset int, e Endian) (uint64, error) {
	if e == BigEndian {
		return ReadU64BE(b, offset)
	}
	return ReadU64LE(b, offset)
}

func writeU64(b []byte, offset int, v uint64, e Endian) error {
	if e == BigEndian {
		return WriteU64BE(b, offset, v)
	}
	return WriteU64LE(b, offset, v)
}

func checkBounds(b []byte, offset, size int) error {
	if offset < 0 || offset+size > len(b) {
		return WrapError(ErrTruncated, "binary read/write out of bounds",
			ErrorDetail(offset, size, len(b)))
	}
	return nil
}

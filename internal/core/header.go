// Package core implements the ESM record/subrecord parser and the
// subrecord schema registry that the converter driver consults.
package core

import (
	"github.com/go-esm/esmconv/internal/utils"
)

const (
	headerSize = 24

	compressedFlag uint32 = 0x00040000

	sigGRUP = "GRUP"
	sigTES4 = "TES4"
)

// FileHeader describes the mandatory first record of an ESM file and carries
// the detected source endianness for the rest of the parse.
type FileHeader struct {
	Signature   [4]byte
	DataSize    uint32
	Flags       uint32
	FormID      uint32
	Revision    uint32
	Version     uint16
	Unknown     uint16
	IsBigEndian bool
}

// ParseFileHeader reads the first 24 bytes of the file, requires the
// signature to be "TES4", and determines endianness by trying both
// interpretations of dataSize and keeping whichever yields a value that fits
// within the file.
func ParseFileHeader(data []byte) (*FileHeader, error) {
	if len(data) < headerSize {
		return nil, utils.NewError(utils.ErrTruncated, "file header shorter than 24 bytes")
	}
	if string(data[0:4]) != sigTES4 {
		return nil, utils.NewError(utils.ErrNotESM, "first record is not TES4")
	}

	beSize, _ := utils.ReadU32BE(data, 4)
	leSize, _ := utils.ReadU32LE(data, 4)

	fileLen := uint32(len(data))
	isBE := true
	switch {
	case beSize < fileLen && leSize >= fileLen:
		isBE = true
	case leSize < fileLen && beSize >= fileLen:
		isBE = false
	default:
		// Both or neither fit; keep the smaller interpretation, which is
		// big-endian when the two are equal (e.g. dataSize 0).
		isBE = beSize <= leSize
	}

	h := &FileHeader{IsBigEndian: isBE}
	copy(h.Signature[:], data[0:4])
	if isBE {
		h.DataSize, _ = utils.ReadU32BE(data, 4)
		h.Flags, _ = utils.ReadU32BE(data, 8)
		h.FormID, _ = utils.ReadU32BE(data, 12)
		h.Revision, _ = utils.ReadU32BE(data, 16)
		h.Version, _ = utils.ReadU16BE(data, 20)
		h.Unknown, _ = utils.ReadU16BE(data, 22)
	} else {
		h.DataSize, _ = utils.ReadU32LE(data, 4)
		h.Flags, _ = utils.ReadU32LE(data, 8)
		h.FormID, _ = utils.ReadU32LE(data, 12)
		h.Revision, _ = utils.ReadU32LE(data, 16)
		h.Version, _ = utils.ReadU16LE(data, 20)
		h.Unknown, _ = utils.ReadU16LE(data, 22)
	}
	return h, nil
}

// RecordHeader is the decoded 24-byte main-record header.
type RecordHeader struct {
	Signature [4]byte
	DataSize  uint32
	Flags     uint32
	FormID    uint32
	Revision  uint32
	Version   uint16
	Unknown   uint16
}

// IsCompressed reports whether the record's payload is compressed.
func (h *RecordHeader) IsCompressed() bool {
	return h.Flags&compressedFlag != 0
}

// GrupHeader is the decoded 24-byte GRUP header.
type GrupHeader struct {
	Signature [4]byte
	GroupSize uint32
	Label     [4]byte
	GroupType int32
	Stamp     uint32
	Unknown   uint32
}

// IsGrupSignature reports whether the 4 bytes at the start of span are the
// "GRUP" signature, distinguishing a GRUP header from a main-record header.
func IsGrupSignature(span []byte) bool {
	return len(span) >= 4 && string(span[0:4]) == sigGRUP
}

// isPrintableSignature validates that sig is 4 printable ASCII
// uppercase letters or digits, per spec.md's record-header validation rule.
func isPrintableSignature(sig []byte) bool {
	if len(sig) != 4 {
		return false
	}
	for _, c := range sig {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// ParseRecordHeader decodes a 24-byte main-record header from span in the
// given endianness. Returns nil, nil (not an error) when the signature is
// not 4 printable ASCII uppercase letters or digits, per spec.md §4.2.
func ParseRecordHeader(span []byte, bigEndian bool) (*RecordHeader, error) {
	if len(span) < headerSize {
		return nil, utils.NewError(utils.ErrTruncated, "record header shorter than 24 bytes")
	}
	if !isPrintableSignature(span[0:4]) {
		return nil, nil
	}

	h := &RecordHeader{}
	copy(h.Signature[:], span[0:4])
	var err error
	if bigEndian {
		h.DataSize, err = utils.ReadU32BE(span, 4)
		if err == nil {
			h.Flags, err = utils.ReadU32BE(span, 8)
		}
		if err == nil {
			h.FormID, err = utils.ReadU32BE(span, 12)
		}
		if err == nil {
			h.Revision, err = utils.ReadU32BE(span, 16)
		}
		if err == nil {
			h.Version, err = utils.ReadU16BE(span, 20)
		}
		if err == nil {
			h.Unknown, err = utils.ReadU16BE(span, 22)
		}
	} else {
		h.DataSize, err = utils.ReadU32LE(span, 4)
		if err == nil {
			h.Flags, err = utils.ReadU32LE(span, 8)
		}
		if err == nil {
			h.FormID, err = utils.ReadU32LE(span, 12)
		}
		if err == nil {
			h.Revision, err = utils.ReadU32LE(span, 16)
		}
		if err == nil {
			h.Version, err = utils.ReadU16LE(span, 20)
		}
		if err == nil {
			h.Unknown, err = utils.ReadU16LE(span, 22)
		}
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

// ParseGrupHeader decodes a 24-byte GRUP header from span in the given
// endianness. Label's typed interpretation depends on GroupType and is left
// to callers (the converter driver and the scanner), since raw bytes are
// all ParseGrupHeader itself needs to preserve.
func ParseGrupHeader(span []byte, bigEndian bool) (*GrupHeader, error) {
	if len(span) < headerSize {
		return nil, utils.NewError(utils.ErrTruncated, "GRUP header shorter than 24 bytes")
	}
	if string(span[0:4]) != sigGRUP {
		return nil, utils.NewError(utils.ErrTruncated, "not a GRUP header")
	}

	h := &GrupHeader{}
	copy(h.Signature[:], span[0:4])
	copy(h.Label[:], span[8:12])

	var err error
	if bigEndian {
		h.GroupSize, err = utils.ReadU32BE(span, 4)
		if err == nil {
			var gt uint32
			gt, err = utils.ReadU32BE(span, 12)
			h.GroupType = int32(gt)
		}
		if err == nil {
			h.Stamp, err = utils.ReadU32BE(span, 16)
		}
		if err == nil {
			h.Unknown, err = utils.ReadU32BE(span, 20)
		}
	} else {
		h.GroupSize, err = utils.ReadU32LE(span, 4)
		if err == nil {
			var gt uint32
			gt, err = utils.ReadU32LE(span, 12)
			h.GroupType = int32(gt)
		}
		if err == nil {
			h.Stamp, err = utils.ReadU32LE(span, 16)
		}
		if err == nil {
			h.Unknown, err = utils.ReadU32LE(span, 20)
		}
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

package core

import (
	"github.com/go-esm/esmconv/internal/utils"
)

const (
	subrecordHeaderSize = 6
	sigXXXX             = "XXXX"
)

// SubrecordView is a zero-copy view into one subrecord of a record payload.
// Offset is relative to the start of the payload the iterator was built
// from. HeaderOffset is the offset of the subrecord's own 6-byte header
// (signature+size), which differs from Offset (the start of Data) only in
// that HeaderOffset always points at the signature.
type SubrecordView struct {
	Signature    [4]byte
	HeaderOffset int
	Offset       int
	Size         uint32
	Data         []byte

	// FromXXXX is true when Size came from a preceding XXXX sentinel rather
	// than this subrecord's own declared 2-byte size.
	FromXXXX bool
}

// SubrecordIterator walks the subrecord stream inside a single record's
// (decompressed) payload, handling the XXXX extended-size sentinel. It is
// restartable from any record boundary and never copies payload bytes.
type SubrecordIterator struct {
	payload   []byte
	pos       int
	bigEndian bool
}

// NewSubrecordIterator builds an iterator over payload, a record's
// (decompressed) data span, in the given endianness.
func NewSubrecordIterator(payload []byte, bigEndian bool) *SubrecordIterator {
	return &SubrecordIterator{payload: payload, bigEndian: bigEndian}
}

// Next yields the next subrecord, skipping the XXXX sentinel itself but
// honoring its size override for the subrecord that follows it. Returns
// (nil, nil) when the stream is exhausted cleanly (zero bytes remain).
// A nonzero, sub-header remainder is ErrRaggedPayload.
func (it *SubrecordIterator) Next() (*SubrecordView, error) {
	var override *uint32

	for {
		remaining := len(it.payload) - it.pos
		if remaining == 0 {
			return nil, nil
		}
		if remaining < subrecordHeaderSize {
			return nil, utils.NewError(utils.ErrRaggedPayload, "subrecord header truncated")
		}

		headerOffset := it.pos
		sig := it.payload[headerOffset : headerOffset+4]

		var declared uint16
		var err error
		if it.bigEndian {
			declared, err = utils.ReadU16BE(it.payload, headerOffset+4)
		} else {
			declared, err = utils.ReadU16LE(it.payload, headerOffset+4)
		}
		if err != nil {
			return nil, err
		}

		if string(sig) == sigXXXX {
			// The XXXX payload itself must be exactly 4 bytes, which its own
			// declared size should say; the value there is the override for
			// the subrecord that follows.
			dataStart := headerOffset + subrecordHeaderSize
			if dataStart+4 > len(it.payload) {
				return nil, utils.NewError(utils.ErrRaggedPayload, "XXXX payload truncated")
			}
			var ov uint32
			if it.bigEndian {
				ov, err = utils.ReadU32BE(it.payload, dataStart)
			} else {
				ov, err = utils.ReadU32LE(it.payload, dataStart)
			}
			if err != nil {
				return nil, err
			}
			override = &ov
			it.pos = dataStart + 4
			continue
		}

		size := uint32(declared)
		fromXXXX := false
		if override != nil {
			size = *override
			fromXXXX = true
		}

		dataStart := headerOffset + subrecordHeaderSize
		dataEnd := dataStart + int(size)
		if dataEnd > len(it.payload) {
			return nil, utils.NewError(utils.ErrRaggedPayload, "subrecord payload truncated")
		}

		view := &SubrecordView{
			HeaderOffset: headerOffset,
			Offset:       dataStart,
			Size:         size,
			Data:         it.payload[dataStart:dataEnd],
			FromXXXX:     fromXXXX,
		}
		copy(view.Signature[:], sig)
		it.pos = dataEnd
		return view, nil
	}
}

// Remaining reports the number of unconsumed bytes left in the payload.
// A well-formed record payload leaves exactly 0 once Next returns (nil, nil).
func (it *SubrecordIterator) Remaining() int {
	return len(it.payload) - it.pos
}

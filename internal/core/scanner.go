package core

import (
	"github.com/go-esm/esmconv/internal/utils"
)

// maxGrupDepth bounds GRUP nesting recursion. Real files nest at most 4
// deep; this cap only guards against pathological/crafted inputs.
const maxGrupDepth = 8

// RecordDescriptor is a read-only view of one main record discovered during
// a scan: its position, identity, and declared size/flags. Descriptors are
// pure views into the immutable input slice and carry no payload copy.
type RecordDescriptor struct {
	Offset   uint64
	Signature [4]byte
	FormID   uint32
	DataSize uint32
	Flags    uint32
}

// ScanRecords performs the recursive descent described in spec.md §2 item 4,
// walking the TES4 header and every top-level GRUP, and returns an ordered
// sequence of RecordDescriptors. It does not inspect subrecords or
// decompress payloads; it is purely structural.
func ScanRecords(data []byte) ([]RecordDescriptor, error) {
	fh, err := ParseFileHeader(data)
	if err != nil {
		return nil, err
	}

	var out []RecordDescriptor
	out = append(out, RecordDescriptor{
		Offset:   0,
		Signature: fh.Signature,
		FormID:   fh.FormID,
		DataSize: fh.DataSize,
		Flags:    fh.Flags,
	})

	pos := headerSize + int(fh.DataSize)
	for pos < len(data) {
		consumed, err := scanGrup(data, pos, fh.IsBigEndian, 0, &out)
		if err != nil {
			return nil, err
		}
		pos += consumed
	}
	return out, nil
}

func scanGrup(data []byte, offset int, bigEndian bool, depth int, out *[]RecordDescriptor) (int, error) {
	if depth > maxGrupDepth {
		return 0, utils.NewError(utils.ErrUnsupported, "GRUP nesting exceeds maximum depth")
	}
	if offset+headerSize > len(data) {
		return 0, utils.NewError(utils.ErrTruncated, "GRUP header truncated")
	}
	gh, err := ParseGrupHeader(data[offset:], bigEndian)
	if err != nil {
		return 0, err
	}
	end := offset + int(gh.GroupSize)
	if end > len(data) {
		return 0, utils.NewError(utils.ErrTruncated, "GRUP span extends past end of file")
	}

	pos := offset + headerSize
	for pos < end {
		if pos+4 > len(data) {
			return 0, utils.NewError(utils.ErrTruncated, "child header truncated")
		}
		if IsGrupSignature(data[pos:]) {
			consumed, err := scanGrup(data, pos, bigEndian, depth+1, out)
			if err != nil {
				return 0, err
			}
			pos += consumed
			continue
		}

		rh, err := ParseRecordHeader(data[pos:], bigEndian)
		if err != nil {
			return 0, err
		}
		if rh == nil {
			return 0, utils.NewError(utils.ErrTruncated, "unrecognized child signature in GRUP")
		}
		*out = append(*out, RecordDescriptor{
			Offset:   uint64(pos),
			Signature: rh.Signature,
			FormID:   rh.FormID,
			DataSize: rh.DataSize,
			Flags:    rh.Flags,
		})
		pos += headerSize + int(rh.DataSize)
	}

	if pos != end {
		return 0, utils.NewError(utils.ErrGroupSpanMismatch, "GRUP children do not sum to groupSize-24")
	}
	return int(gh.GroupSize), nil
}

package core

import (
	"github.com/go-esm/esmconv/internal/utils"
)

// SlotKind tags the typed variant a Slot represents.
type SlotKind uint8

const (
	SlotU16 SlotKind = iota
	SlotU32
	SlotI32
	SlotF32
	SlotU64
	SlotRaw    // RawBytes(Len): copied verbatim, never swapped.
	SlotZStr   // zero-terminated string, endian-agnostic, copied verbatim.
	SlotCStr   // fixed-length non-terminated string, endian-agnostic.
	SlotArray  // repeats Inner every Stride bytes until the payload ends.
)

// Slot is one field of a Schema. Len applies to SlotRaw and SlotCStr. Stride
// and Inner apply to SlotArray; Inner is itself an ordered list of slots
// describing one array element (a "struct of fields" repeated Stride bytes
// apart).
type Slot struct {
	Kind   SlotKind
	Len    int
	Stride int
	Inner  []Slot
}

// FixedSize returns the slot's size in bytes, or -1 if the slot is
// open-ended (SlotArray has no fixed size on its own).
func (s Slot) FixedSize() int {
	switch s.Kind {
	case SlotU16:
		return 2
	case SlotU32, SlotI32, SlotF32:
		return 4
	case SlotU64:
		return 8
	case SlotRaw, SlotCStr:
		return s.Len
	default:
		return -1
	}
}

// Schema is an ordered list of slots describing a subrecord payload layout.
type Schema struct {
	Slots []Slot
}

// FixedPrefixSize sums the fixed-size slots at the front of the schema,
// stopping at the first open-ended (array) slot, if any.
func (s Schema) FixedPrefixSize() int {
	total := 0
	for _, slot := range s.Slots {
		sz := slot.FixedSize()
		if sz < 0 {
			break
		}
		total += sz
	}
	return total
}

// HasTrailingArray reports whether the schema's final slot is an
// open-ended array, and if so returns its element stride.
func (s Schema) HasTrailingArray() (stride int, ok bool) {
	if len(s.Slots) == 0 {
		return 0, false
	}
	last := s.Slots[len(s.Slots)-1]
	if last.Kind != SlotArray {
		return 0, false
	}
	return last.Stride, true
}

// U16 is a convenience constructor for a fixed u16 slot.
func U16() Slot { return Slot{Kind: SlotU16} }

// U32 is a convenience constructor for a fixed u32 slot.
func U32() Slot { return Slot{Kind: SlotU32} }

// I32 is a convenience constructor for a fixed i32 slot.
func I32() Slot { return Slot{Kind: SlotI32} }

// F32 is a convenience constructor for a fixed f32 slot.
func F32() Slot { return Slot{Kind: SlotF32} }

// U64 is a convenience constructor for a fixed u64 slot.
func U64() Slot { return Slot{Kind: SlotU64} }

// Raw is a convenience constructor for a raw (unswapped) byte-range slot.
func Raw(length int) Slot { return Slot{Kind: SlotRaw, Len: length} }

// ZString is a convenience constructor for a zero-terminated string slot.
func ZString() Slot { return Slot{Kind: SlotZStr} }

// CString is a convenience constructor for a fixed-length, non-terminated
// string slot.
func CString(length int) Slot { return Slot{Kind: SlotCStr, Len: length} }

// Array is a convenience constructor for a trailing array-of-struct slot.
// stride is the byte width of one element; inner describes its fields.
func Array(stride int, inner ...Slot) Slot {
	return Slot{Kind: SlotArray, Stride: stride, Inner: inner}
}

// ConvertSubrecord swaps every field of a subrecord's payload according to
// slots, reading in srcEndian and writing in dstEndian. in and out must be
// equal-length byte slices (length preservation is a caller invariant, not
// re-validated here). Raw and string slots are copied verbatim; everything
// else goes through the typed swap primitives.
func ConvertSubrecord(slots []Slot, in, out []byte, srcEndian, dstEndian utils.Endian) error {
	offset := 0
	for i, slot := range slots {
		if slot.Kind == SlotArray {
			if i != len(slots)-1 {
				return utils.NewError(utils.ErrUnsupported, "array slot must be the final slot in a schema")
			}
			return convertArray(slot, in[offset:], out[offset:], srcEndian, dstEndian)
		}
		n, err := convertScalar(slot, in, offset, out, offset, srcEndian, dstEndian)
		if err != nil {
			return err
		}
		offset += n
	}
	return nil
}

func convertScalar(slot Slot, in []byte, inOff int, out []byte, outOff int, srcEndian, dstEndian utils.Endian) (int, error) {
	switch slot.Kind {
	case SlotU16:
		return 2, utils.SwapU16(in, inOff, out, outOff, srcEndian, dstEndian)
	case SlotU32:
		return 4, utils.SwapU32(in, inOff, out, outOff, srcEndian, dstEndian)
	case SlotI32:
		return 4, utils.SwapI32(in, inOff, out, outOff, srcEndian, dstEndian)
	case SlotF32:
		return 4, utils.SwapF32(in, inOff, out, outOff, srcEndian, dstEndian)
	case SlotU64:
		return 8, utils.SwapU64(in, inOff, out, outOff, srcEndian, dstEndian)
	case SlotRaw, SlotCStr:
		n := copy(out[outOff:outOff+slot.Len], in[inOff:inOff+slot.Len])
		return n, nil
	case SlotZStr:
		// Variable length: the caller passes the whole remaining span as a
		// single ZString slot (it must be the last slot when used this way).
		n := copy(out[outOff:], in[inOff:])
		return n, nil
	default:
		return 0, utils.NewError(utils.ErrUnsupported, "unknown slot kind")
	}
}

func convertArray(slot Slot, in, out []byte, srcEndian, dstEndian utils.Endian) error {
	if slot.Stride <= 0 {
		return utils.NewError(utils.ErrUnsupported, "array slot has non-positive stride")
	}
	if len(in)%slot.Stride != 0 {
		return utils.NewError(utils.ErrRaggedPayload, "array payload not a multiple of stride")
	}
	for base := 0; base+slot.Stride <= len(in); base += slot.Stride {
		offset := 0
		for _, inner := range slot.Inner {
			n, err := convertScalar(inner, in, base+offset, out, base+offset, srcEndian, dstEndian)
			if err != nil {
				return err
			}
			offset += n
		}
		if offset < slot.Stride {
			// Uncovered tail bytes within the stride are copied verbatim.
			copy(out[base+offset:base+slot.Stride], in[base+offset:base+slot.Stride])
		}
	}
	return nil
}

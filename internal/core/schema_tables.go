package core

// This file is the static subrecord schema registry described in spec.md
// §4.4: it is data, not a class hierarchy — every schema is a literal Schema
// value placed in one of two flat tables (recordScoped, signatureOnly).
// Resolution order is:
//  1. string-subrecord sets (checked by the caller via IsStringSubrecord)
//  2. exact-size schema (recordType, sig, size)
//  3. open-ended schema (recordType, sig, *) with a trailing array slot
//  4. signature-only schema (sig alone, record-type independent)
//  5. fallback classification (see fallback.go)

// stringSubrecordsGlobal holds signatures that are zero-terminated strings
// in every record type they appear in.
var stringSubrecordsGlobal = map[string]bool{
	"EDID": true,
	"FULL": true,
	"MODL": true,
	"ICON": true,
	"MICO": true,
}

// stringSubrecordsByRecord holds additional string-subrecord signatures
// scoped to a specific record type, layered on top of the global set.
var stringSubrecordsByRecord = map[string]map[string]bool{
	"BOOK": {"DESC": true, "CNAM": true},
	"SCPT": {"SCTX": true},
	"TES4": {"MAST": true}, // master filename list, zero-terminated per entry
}

// IsStringSubrecord reports whether sig is a zero-terminated, endian-agnostic
// string subrecord within recordType, per the global set overridden by any
// per-record entry.
func IsStringSubrecord(sig, recordType string) bool {
	if overrides, ok := stringSubrecordsByRecord[recordType]; ok {
		if v, ok := overrides[sig]; ok {
			return v
		}
	}
	return stringSubrecordsGlobal[sig]
}

// registryEntry pairs a schema with the size constraint under which it
// applies. sizeExact >= 0 means "only this exact payload length". sizeExact
// == sizeOpenEnded means "use HasTrailingArray to test payload length".
// sizeExact == sizeAny means any payload length matches (used for the
// record-scoped byte-array entries such as TES4 OFST and LAND VCLR).
const (
	sizeOpenEnded = -1
	sizeAny       = -2
)

type registryEntry struct {
	schema    Schema
	sizeExact int
}

func (e registryEntry) matches(size int) bool {
	switch e.sizeExact {
	case sizeOpenEnded:
		stride, ok := e.schema.HasTrailingArray()
		if !ok || stride <= 0 {
			return false
		}
		prefix := e.schema.FixedPrefixSize()
		if size < prefix {
			return false
		}
		return (size-prefix)%stride == 0
	case sizeAny:
		return true
	default:
		return size == e.sizeExact
	}
}

// recordScoped holds schemas keyed by "recordType|signature".
var recordScoped = map[string][]registryEntry{
	"TES4|HEDR": {{
		sizeExact: 12,
		schema:    Schema{Slots: []Slot{F32(), U32(), U32()}}, // version, numRecords, nextFormId
	}},
	"TES4|OFST": {{sizeExact: sizeAny, schema: Schema{Slots: []Slot{Array(1, Raw(1))}}}},
	"TES4|DELE": {{sizeExact: sizeAny, schema: Schema{Slots: []Slot{Array(1, Raw(1))}}}},

	"CELL|XCLC": {
		{sizeExact: 12, schema: Schema{Slots: []Slot{I32(), I32(), U32()}}}, // gridX, gridY, landFlags
		{sizeExact: 8, schema: Schema{Slots: []Slot{I32(), I32()}}},
	},
	"CELL|XCLR": {{
		sizeExact: sizeOpenEnded,
		schema:    Schema{Slots: []Slot{Array(4, U32())}}, // region formIDs
	}},
	"CELL|DATA": {{sizeExact: 2, schema: Schema{Slots: []Slot{U16()}}}}, // cell flags

	"WEAP|DATA": {{sizeExact: 136, schema: weaponDataSchema()}},

	"LAND|DATA": {{sizeExact: 4, schema: Schema{Slots: []Slot{U32()}}}},
	"LAND|VNML": {{sizeExact: 33 * 33 * 3, schema: Schema{Slots: []Slot{Raw(33 * 33 * 3)}}}},
	"LAND|VHGT": {{
		sizeExact: 4 + 1089 + 3,
		schema:    Schema{Slots: []Slot{F32(), Raw(1089), Raw(3)}}, // baseHeight, i8 gradients, pad
	}},
	"LAND|VCLR": {{sizeExact: sizeAny, schema: Schema{Slots: []Slot{Array(1, Raw(1))}}}},
	"LAND|ATXT": {{sizeExact: 8, schema: landTextureSchema()}},
	"LAND|BTXT": {{sizeExact: 8, schema: landTextureSchema()}},
	"LAND|VTXT": {{
		sizeExact: sizeOpenEnded,
		schema:    Schema{Slots: []Slot{Array(8, U16(), U16(), F32())}}, // pos, flags, opacity
	}},

	"REFR|XLOC": {{
		sizeExact: 12,
		schema: Schema{Slots: []Slot{
			Raw(1),  // lockLevel (single byte, no swap needed)
			Raw(3),  // unused
			U32(),   // key formID
			Raw(1),  // flags
			Raw(3),  // unused
		}},
	}},
}

// signatureOnly holds schemas keyed by signature alone, used when the
// layout does not depend on the containing record type.
var signatureOnly = map[string][]registryEntry{
	"NAME": {{sizeExact: 4, schema: Schema{Slots: []Slot{U32()}}}},
	"PNAM": {{sizeExact: 4, schema: Schema{Slots: []Slot{U32()}}}},
	"SNAM": {{sizeExact: 4, schema: Schema{Slots: []Slot{U32()}}}},
	"TNAM": {{sizeExact: 4, schema: Schema{Slots: []Slot{U32()}}}},
	"XLCM": {{sizeExact: 4, schema: Schema{Slots: []Slot{U32()}}}},
	"XOWN": {{sizeExact: 4, schema: Schema{Slots: []Slot{U32()}}}},
}

func weaponDataSchema() Schema {
	return Schema{Slots: []Slot{
		U32(), // value
		F32(), // weight
		U16(), // damage
		Raw(1), // flags1
		Raw(1), // flags2
		F32(), // critDamageMult
		U32(), // flags3
		U32(), // animType
		F32(), // speed
		F32(), // reach
		U32(), // flags4
		U32(), // damageType
		U32(), // ammoFormID
		F32(), // reloadSpeed
		F32(), // minRange
		F32(), // maxRange
		U32(), // onHit
		F32(), // stagger
		U32(), // critFormID
		F32(), // critDamageMult2
		U32(), // critFlags
		U32(), // critSpell
		Array(4, U32()), // remaining fields, 14 x u32 = 56 bytes
	}}
}

func landTextureSchema() Schema {
	return Schema{Slots: []Slot{U32(), Raw(1), Raw(1), U16()}} // formID, quadrant, unk, layer
}

// GetSchema implements the registry's resolution order 2-4 (exact-size,
// open-ended, signature-only). Callers must check IsStringSubrecord first.
func GetSchema(sig, recordType string, size int) (Schema, bool) {
	if entries, ok := recordScoped[recordType+"|"+sig]; ok {
		for _, e := range entries {
			if e.sizeExact >= 0 && e.matches(size) {
				return e.schema, true
			}
		}
		for _, e := range entries {
			if e.sizeExact == sizeOpenEnded && e.matches(size) {
				return e.schema, true
			}
		}
		for _, e := range entries {
			if e.sizeExact == sizeAny {
				return e.schema, true
			}
		}
	}
	if entries, ok := signatureOnly[sig]; ok {
		for _, e := range entries {
			if e.matches(size) {
				return e.schema, true
			}
		}
	}
	return Schema{}, false
}

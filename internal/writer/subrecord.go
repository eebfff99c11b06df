package writer

import (
	"github.com/go-esm/esmconv/internal/core"
	"github.com/go-esm/esmconv/internal/utils"
)

// convertSubrecordStream walks payload's subrecord chain (spec.md §4.3),
// appending the converted stream to out. patchHEDRNumRecords, when non-nil,
// is subtracted from TES4's HEDR.numRecords field after the schema-driven
// swap, implementing the skip-rule header repair described in spec.md §9.
func convertSubrecordStream(payload []byte, recordType string, patchHEDRNumRecords *uint32, opts Options, stats *Stats, out []byte) ([]byte, error) {
	pos := 0
	var override *uint32

	for pos < len(payload) {
		remaining := len(payload) - pos
		if remaining < subrecordHeaderSize {
			return nil, utils.NewError(utils.ErrRaggedPayload, "subrecord header truncated")
		}

		sig := string(payload[pos : pos+4])

		if sig == sigXXXX {
			dataStart := pos + subrecordHeaderSize
			if dataStart+4 > len(payload) {
				return nil, utils.NewError(utils.ErrRaggedPayload, "XXXX payload truncated")
			}
			ov, err := utils.ReadU32BE(payload, dataStart)
			if err != nil {
				return nil, err
			}

			headerStart := len(out)
			out = append(out, payload[pos:pos+4]...)
			out = append(out, 0, 0)
			if err := utils.SwapU16(payload, pos+4, out, headerStart+4, srcEndian, dstEndian); err != nil {
				return nil, err
			}

			payloadStart := len(out)
			out = append(out, 0, 0, 0, 0)
			if err := utils.SwapU32(payload, dataStart, out, payloadStart, srcEndian, dstEndian); err != nil {
				return nil, err
			}

			override = &ov
			pos = dataStart + 4
			continue
		}

		declared, err := utils.ReadU16BE(payload, pos+4)
		if err != nil {
			return nil, err
		}
		size := uint32(declared)
		if override != nil {
			size = *override
		}

		dataStart := pos + subrecordHeaderSize
		dataEnd := dataStart + int(size)
		if dataEnd > len(payload) {
			return nil, utils.NewError(utils.ErrRaggedPayload, "subrecord payload truncated")
		}
		subPayload := payload[dataStart:dataEnd]

		headerStart := len(out)
		out = append(out, payload[pos:pos+4]...)
		out = append(out, 0, 0)
		if err := utils.SwapU16(payload, pos+4, out, headerStart+4, srcEndian, dstEndian); err != nil {
			return nil, err
		}

		dataStartOut := len(out)

		switch {
		case core.IsStringSubrecord(sig, recordType):
			out = append(out, subPayload...)
		default:
			if schema, ok := core.GetSchema(sig, recordType, len(subPayload)); ok {
				staged := utils.GetBuffer(len(subPayload))
				if err := core.ConvertSubrecord(schema.Slots, subPayload, staged, srcEndian, dstEndian); err != nil {
					utils.ReleaseBuffer(staged)
					return nil, err
				}
				out = append(out, staged...)
				utils.ReleaseBuffer(staged)
			} else {
				kind := core.ClassifyFallback(subPayload)
				if opts.StrictUnknown {
					return nil, utils.NewError(utils.ErrUnknownSubrecord, "no schema matched "+recordType+"."+sig)
				}
				stats.recordFallback(kind, recordType, sig, len(subPayload))
				if fallback, ok := core.FallbackSchema(kind, len(subPayload)); ok {
					staged := utils.GetBuffer(len(subPayload))
					if err := core.ConvertSubrecord(fallback.Slots, subPayload, staged, srcEndian, dstEndian); err != nil {
						utils.ReleaseBuffer(staged)
						return nil, err
					}
					out = append(out, staged...)
					utils.ReleaseBuffer(staged)
				} else {
					// AllZero/PureString/Opaque payloads are a verbatim copy.
					out = append(out, subPayload...)
				}
			}
		}

		if patchHEDRNumRecords != nil && sig == "HEDR" && recordType == "TES4" {
			if err := patchHedrNumRecords(out, dataStartOut, len(subPayload), *patchHEDRNumRecords); err != nil {
				return nil, err
			}
		}

		override = nil
		pos = dataEnd
	}

	return out, nil
}

// patchHedrNumRecords overwrites the numRecords field (the second u32,
// after the f32 version) of an already-converted HEDR payload in out.
func patchHedrNumRecords(out []byte, dataStart, payloadLen int, skipped uint32) error {
	if payloadLen < 8 {
		return utils.NewError(utils.ErrUnsupported, "HEDR payload too short to carry numRecords")
	}
	current, err := utils.ReadU32LE(out, dataStart+4)
	if err != nil {
		return err
	}
	return utils.WriteU32LE(out, dataStart+4, current-skipped)
}

const (
	subrecordHeaderSize = 6
	sigXXXX             = "XXXX"
)

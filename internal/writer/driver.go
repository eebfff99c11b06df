package writer

import (
	"bytes"
	"io"

	kzlib "github.com/klauspost/compress/zlib"

	"github.com/go-esm/esmconv/internal/core"
	"github.com/go-esm/esmconv/internal/utils"
)

const (
	headerSize = 24

	grupLabelGroupTypeCell    = 4
	grupLabelGroupTypeCellSub = 5

	maxGrupDepth = 8
)

// groupTypeFormIDLabel lists GRUP groupType values whose 4-byte label is a
// formID reference (spec.md §4.5 step 4).
var groupTypeFormIDLabel = map[int32]bool{1: true, 6: true, 7: true, 8: true, 9: true, 10: true}

// This driver only performs the documented forward conversion (Xbox 360
// big-endian input to PC little-endian output); an already-little-endian
// input is rejected with ErrWrongEndian rather than silently passed
// through, per spec.md §7.
const (
	srcEndian = utils.BigEndian
	dstEndian = utils.LittleEndian
)

// Convert performs the single-pass big-endian-to-little-endian transform
// described in spec.md §4.5. It never writes partial output: any error
// aborts before the caller's buffer is returned, per spec.md §7's fail-fast
// propagation policy.
func Convert(input []byte, opts Options) ([]byte, Stats, error) {
	var stats Stats

	fh, err := core.ParseFileHeader(input)
	if err != nil {
		return nil, stats, err
	}
	if !fh.IsBigEndian {
		return nil, stats, utils.NewError(utils.ErrWrongEndian, "input is already little-endian")
	}
	if int(fh.DataSize)+headerSize > len(input) {
		return nil, stats, utils.NewError(utils.ErrTruncated, "TES4 payload extends past end of file")
	}

	var skippedCount uint32
	if len(opts.SkipRecordTypes) > 0 || len(opts.SkipFormIDs) > 0 {
		descs, err := core.ScanRecords(input)
		if err != nil {
			return nil, stats, err
		}
		for _, d := range descs[1:] { // descs[0] is TES4 itself, never skipped
			if opts.skipsRecord(d.Signature, d.FormID) {
				skippedCount++
			}
		}
	}

	out := make([]byte, 0, len(input))

	out, err = convertFileHeader(input, fh, skippedCount, opts, &stats, out)
	if err != nil {
		return nil, stats, err
	}

	pos := headerSize + int(fh.DataSize)
	for pos < len(input) {
		if !core.IsGrupSignature(input[pos:]) {
			return nil, stats, utils.NewError(utils.ErrTruncated, "expected top-level GRUP after TES4")
		}
		var consumed int
		out, consumed, err = convertGrup(input, pos, 0, opts, &stats, out)
		if err != nil {
			return nil, stats, err
		}
		pos += consumed
	}

	if skippedCount == 0 && len(out) != len(input) {
		return nil, stats, utils.NewError(utils.ErrLengthDrift, "output length diverged from input length")
	}

	return out, stats, nil
}

func convertFileHeader(input []byte, fh *core.FileHeader, skippedCount uint32, opts Options, stats *Stats, out []byte) ([]byte, error) {
	headerStart := len(out)
	out = append(out, input[0:headerSize]...)

	if err := utils.SwapU32(input, 4, out, headerStart+4, srcEndian, dstEndian); err != nil {
		return nil, err
	}
	if err := utils.SwapU32(input, 8, out, headerStart+8, srcEndian, dstEndian); err != nil {
		return nil, err
	}
	if err := utils.SwapU32(input, 12, out, headerStart+12, srcEndian, dstEndian); err != nil {
		return nil, err
	}
	if err := utils.SwapU32(input, 16, out, headerStart+16, srcEndian, dstEndian); err != nil {
		return nil, err
	}
	if err := utils.SwapU16(input, 20, out, headerStart+20, srcEndian, dstEndian); err != nil {
		return nil, err
	}
	if err := utils.SwapU16(input, 22, out, headerStart+22, srcEndian, dstEndian); err != nil {
		return nil, err
	}

	payload := input[headerSize : headerSize+int(fh.DataSize)]
	var patch *uint32
	if skippedCount > 0 {
		p := skippedCount
		patch = &p
	}
	return convertSubrecordStream(payload, "TES4", patch, opts, stats, out)
}

// convertGrup converts one GRUP and everything nested inside it, returning
// the updated output slice and the number of input bytes consumed (the
// GRUP's own declared span, spec.md §3 GRUP invariant).
func convertGrup(input []byte, offset, depth int, opts Options, stats *Stats, out []byte) ([]byte, int, error) {
	if depth > maxGrupDepth {
		return nil, 0, utils.NewError(utils.ErrUnsupported, "GRUP nesting exceeds maximum depth")
	}

	gh, err := core.ParseGrupHeader(input[offset:], true)
	if err != nil {
		return nil, 0, err
	}
	end := offset + int(gh.GroupSize)
	if end > len(input) {
		return nil, 0, utils.NewError(utils.ErrTruncated, "GRUP span extends past end of file")
	}

	headerStart := len(out)
	out = append(out, input[offset:offset+headerSize]...)
	if err := swapGrupLabel(input, offset, gh.GroupType, out, headerStart); err != nil {
		return nil, 0, err
	}
	if err := utils.SwapI32(input, offset+12, out, headerStart+12, srcEndian, dstEndian); err != nil {
		return nil, 0, err
	}
	if err := utils.SwapU32(input, offset+16, out, headerStart+16, srcEndian, dstEndian); err != nil {
		return nil, 0, err
	}
	if err := utils.SwapU32(input, offset+20, out, headerStart+20, srcEndian, dstEndian); err != nil {
		return nil, 0, err
	}

	childStart := len(out)
	pos := offset + headerSize
	for pos < end {
		if pos+4 > len(input) {
			return nil, 0, utils.NewError(utils.ErrTruncated, "child header truncated")
		}
		if core.IsGrupSignature(input[pos:]) {
			var consumed int
			out, consumed, err = convertGrup(input, pos, depth+1, opts, stats, out)
			if err != nil {
				return nil, 0, err
			}
			pos += consumed
			continue
		}

		var consumed int
		out, consumed, err = convertRecord(input, pos, opts, stats, out)
		if err != nil {
			return nil, 0, err
		}
		pos += consumed
	}
	if pos != end {
		return nil, 0, utils.NewError(utils.ErrGroupSpanMismatch, "GRUP children do not sum to groupSize-24")
	}

	newGroupSize := uint32(len(out)-childStart) + headerSize
	if err := utils.WriteU32LE(out, headerStart+4, newGroupSize); err != nil {
		return nil, 0, err
	}
	stats.GrupsConverted++
	return out, int(gh.GroupSize), nil
}

func swapGrupLabel(input []byte, offset int, groupType int32, out []byte, headerStart int) error {
	labelIn := offset + 8
	labelOut := headerStart + 8
	switch {
	case groupType == 0:
		copy(out[labelOut:labelOut+4], input[labelIn:labelIn+4])
		return nil
	case groupType == grupLabelGroupTypeCell || groupType == grupLabelGroupTypeCellSub:
		if err := utils.SwapU16(input, labelIn, out, labelOut, srcEndian, dstEndian); err != nil {
			return err
		}
		return utils.SwapU16(input, labelIn+2, out, labelOut+2, srcEndian, dstEndian)
	case groupTypeFormIDLabel[groupType]:
		return utils.SwapU32(input, labelIn, out, labelOut, srcEndian, dstEndian)
	default:
		return utils.SwapU32(input, labelIn, out, labelOut, srcEndian, dstEndian)
	}
}

// convertRecord converts one main record (or omits it under a skip rule),
// returning the updated output slice and the number of input bytes consumed.
func convertRecord(input []byte, offset int, opts Options, stats *Stats, out []byte) ([]byte, int, error) {
	rh, err := core.ParseRecordHeader(input[offset:], true)
	if err != nil {
		return nil, 0, err
	}
	if rh == nil {
		return nil, 0, utils.NewError(utils.ErrTruncated, "unrecognized child signature in GRUP")
	}
	consumed := headerSize + int(rh.DataSize)
	if offset+consumed > len(input) {
		return nil, 0, utils.NewError(utils.ErrTruncated, "record payload extends past end of file")
	}

	if opts.skipsRecord(rh.Signature, rh.FormID) {
		stats.RecordsSkipped++
		return out, consumed, nil
	}

	headerStart := len(out)
	out = append(out, input[offset:offset+headerSize]...)
	if err := utils.SwapU32(input, offset+4, out, headerStart+4, srcEndian, dstEndian); err != nil {
		return nil, 0, err
	}
	if err := utils.SwapU32(input, offset+8, out, headerStart+8, srcEndian, dstEndian); err != nil {
		return nil, 0, err
	}
	if err := utils.SwapU32(input, offset+12, out, headerStart+12, srcEndian, dstEndian); err != nil {
		return nil, 0, err
	}
	if err := utils.SwapU32(input, offset+16, out, headerStart+16, srcEndian, dstEndian); err != nil {
		return nil, 0, err
	}
	if err := utils.SwapU16(input, offset+20, out, headerStart+20, srcEndian, dstEndian); err != nil {
		return nil, 0, err
	}
	if err := utils.SwapU16(input, offset+22, out, headerStart+22, srcEndian, dstEndian); err != nil {
		return nil, 0, err
	}

	payload := input[offset+headerSize : offset+consumed]
	recordType := string(rh.Signature[:])

	if rh.IsCompressed() {
		out, err = convertCompressedPayload(payload, recordType, opts, stats, out)
	} else {
		out, err = convertSubrecordStream(payload, recordType, nil, opts, stats, out)
	}
	if err != nil {
		return nil, 0, err
	}

	stats.RecordsConverted++
	return out, consumed, nil
}

// convertCompressedPayload implements spec.md §4.5's two compressed-record
// policies. The decompressed-length prefix is always swapped; the default
// policy copies the compressed blob through unchanged, while
// Options.DecompressCompressed attempts decompress/convert/recompress and
// falls back to passthrough whenever the recompressed length differs from
// the original, since length-preservation is never sacrificed for the
// alternate policy (spec.md §3 invariants).
func convertCompressedPayload(payload []byte, recordType string, opts Options, stats *Stats, out []byte) ([]byte, error) {
	if len(payload) < 4 {
		return nil, utils.NewError(utils.ErrTruncated, "compressed record payload shorter than 4 bytes")
	}

	prefixStart := len(out)
	out = append(out, payload[0:4]...)
	if err := utils.SwapU32(payload, 0, out, prefixStart, srcEndian, dstEndian); err != nil {
		return nil, err
	}
	blob := payload[4:]

	if opts.DecompressCompressed {
		if converted, ok := tryRecompress(blob, recordType, opts, stats); ok {
			out = append(out, converted...)
			stats.CompressedConverted++
			return out, nil
		}
		stats.CompressedRecompressFallback++
	}

	out = append(out, blob...)
	stats.CompressedPassthrough++
	return out, nil
}

// tryRecompress decompresses blob, converts the inner subrecord stream, and
// recompresses it with the same codec. It returns ok=false whenever the
// recompressed length does not match len(blob) exactly, signaling the
// caller to fall back to passthrough.
func tryRecompress(blob []byte, recordType string, opts Options, stats *Stats) ([]byte, bool) {
	r, err := kzlib.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, false
	}
	defer r.Close()

	decompressed, err := io.ReadAll(r)
	if err != nil {
		return nil, false
	}

	// Convert against a scratch Stats so a fallback tally from a trial that
	// ultimately gets discarded (recompressed length mismatch) never leaks
	// into the caller's report.
	trialStats := &Stats{}
	converted, err := convertSubrecordStream(decompressed, recordType, nil, opts, trialStats, make([]byte, 0, len(decompressed)))
	if err != nil {
		return nil, false
	}

	var buf bytes.Buffer
	w := kzlib.NewWriter(&buf)
	if _, err := w.Write(converted); err != nil {
		return nil, false
	}
	if err := w.Close(); err != nil {
		return nil, false
	}

	if buf.Len() != len(blob) {
		return nil, false
	}
	stats.mergeFallbacks(trialStats)
	return buf.Bytes(), true
}

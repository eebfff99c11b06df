// Package esmconv converts Bethesda-style ESM plugin files from the Xbox
// 360 big-endian layout to the PC little-endian layout, and exposes the
// structural scanner the conversion is built on.
package esmconv

import (
	"github.com/go-esm/esmconv/internal/core"
	"github.com/go-esm/esmconv/internal/utils"
	"github.com/go-esm/esmconv/internal/writer"
)

// Options configures a Convert call. See internal/writer.Options for field
// documentation; it is aliased here rather than duplicated so the two never
// drift out of sync.
type Options = writer.Options

// Stats accumulates running counters over one Convert call, including the
// sorted fallback report described in spec.md §9.
type Stats = writer.Stats

// FallbackKey and FallbackEntry describe one row of Stats.FallbackReport().
type FallbackKey = writer.FallbackKey
type FallbackEntry = writer.FallbackEntry

// RecordDescriptor is a read-only view of one main record discovered by
// ScanRecords.
type RecordDescriptor = core.RecordDescriptor

// SubrecordView is a zero-copy view into one subrecord of a record payload,
// yielded by ParseSubrecords.
type SubrecordView = core.SubrecordView

// Endian selects a byte order for ParseSubrecords.
type Endian = utils.Endian

const (
	BigEndian    = utils.BigEndian
	LittleEndian = utils.LittleEndian
)

// Convert reads a big-endian ESM file and returns a structurally equivalent
// little-endian one, per spec.md §4.5. See spec.md §7 for the ErrorKind
// taxonomy returned on failure; use errors.As/utils-style kind inspection
// via the KindOf accessor below.
func Convert(input []byte, opts Options) ([]byte, Stats, error) {
	return writer.Convert(input, opts)
}

// ScanRecords performs the recursive descent over GRUPs and records
// described in spec.md §2 item 4, returning an ordered sequence of
// RecordDescriptors without inspecting subrecords or decompressing
// payloads.
func ScanRecords(input []byte) ([]RecordDescriptor, error) {
	return core.ScanRecords(input)
}

// ParseSubrecords iterates the subrecord stream inside a single record's
// (decompressed) payload, honoring the XXXX extended-size sentinel, per
// spec.md §4.3. Call Next on the returned iterator until it returns
// (nil, nil).
func ParseSubrecords(recordPayload []byte, endian Endian) *core.SubrecordIterator {
	return core.NewSubrecordIterator(recordPayload, endian == BigEndian)
}

// ErrorKind re-exports the converter's failure taxonomy (spec.md §7) so
// callers outside this module can branch on it without importing
// internal/utils directly.
type ErrorKind = utils.ErrorKind

const (
	ErrNotESM            = utils.ErrNotESM
	ErrWrongEndian       = utils.ErrWrongEndian
	ErrTruncated         = utils.ErrTruncated
	ErrRaggedPayload     = utils.ErrRaggedPayload
	ErrGroupSpanMismatch = utils.ErrGroupSpanMismatch
	ErrLengthDrift       = utils.ErrLengthDrift
	ErrUnknownSubrecord  = utils.ErrUnknownSubrecord
	ErrUnsupported       = utils.ErrUnsupported
)

// KindOf extracts the ErrorKind from an error returned by this package's
// functions, mirroring spec.md §7's fail-fast error taxonomy.
func KindOf(err error) (ErrorKind, bool) {
	return utils.KindOf(err)
}

// Package writer implements the converter driver described in spec.md
// §4.5-§4.7: the single-pass reader of a big-endian ESM file that emits a
// structurally equivalent little-endian one, consulting the core package's
// parser and schema registry as it goes.
package writer

// Options configures one Convert call, mirroring the options struct in
// spec.md §6's core API surface.
type Options struct {
	// Verbose is carried for callers that print the fallback report.
	// Convert itself does not read it: Stats.FallbackReport is populated
	// whether or not Verbose is set.
	Verbose bool

	// StrictUnknown aborts conversion with ErrUnknownSubrecord on the first
	// subrecord that matches no schema, per spec.md §4.6.
	StrictUnknown bool

	// SkipRecordTypes omits every record whose 4-byte signature is in this
	// set from the output, repairing the containing GRUP's groupSize and
	// the file header's numRecords (spec.md §9 Open Question, resolved in
	// DESIGN.md by implementing the feature rather than rejecting it).
	SkipRecordTypes map[[4]byte]bool

	// SkipFormIDs omits every record whose formID is in this set, with the
	// same repair as SkipRecordTypes.
	SkipFormIDs map[uint32]bool

	// DecompressCompressed selects the alternate compressed-record policy
	// (spec.md §4.5): decompress, convert the inner subrecord stream, and
	// recompress, falling back to passthrough whenever recompression does
	// not reproduce the original compressed length.
	DecompressCompressed bool
}

func (o Options) skipsRecord(sig [4]byte, formID uint32) bool {
	if o.SkipRecordTypes != nil && o.SkipRecordTypes[sig] {
		return true
	}
	if o.SkipFormIDs != nil && o.SkipFormIDs[formID] {
		return true
	}
	return false
}

package writer

import (
	"fmt"
	"sort"

	"github.com/go-esm/esmconv/internal/core"
)

// FallbackKey identifies one distinct fallback occurrence for the
// append-only, aggregated log described in spec.md §4.6/§9.
type FallbackKey struct {
	Kind       core.FallbackKind
	RecordType string
	Signature  string
	Size       int
}

// Stats accumulates running counters over the course of one Convert call.
// Nothing here is observed until conversion completes, per spec.md §5.
type Stats struct {
	RecordsConverted int
	RecordsSkipped   int
	GrupsConverted   int

	// CompressedPassthrough counts records emitted via the default
	// compressed-record policy (flag and decompressed-size prefix swapped,
	// blob copied verbatim).
	CompressedPassthrough int

	// CompressedConverted counts records where the alternate
	// decompress/convert/recompress policy was requested and succeeded: the
	// blob was decompressed, its subrecord stream converted, and
	// recompressed to its original length.
	CompressedConverted int

	// CompressedRecompressFallback counts records where the alternate
	// decompress/convert/recompress policy was requested but fell back to
	// passthrough: decompression, conversion or recompression failed, or
	// the recompressed length differed from the original compressed length.
	// Such records are also counted in CompressedPassthrough.
	CompressedRecompressFallback int

	fallbacks map[FallbackKey]int
}

// mergeFallbacks folds another Stats' fallback tally into s, by input
// offset order where the caller controls call order (spec.md §5: "the
// fallback log must be merged deterministically").
func (s *Stats) mergeFallbacks(other *Stats) {
	for k, v := range other.fallbacks {
		if s.fallbacks == nil {
			s.fallbacks = make(map[FallbackKey]int)
		}
		s.fallbacks[k] += v
	}
}

func (s *Stats) recordFallback(kind core.FallbackKind, recordType, sig string, size int) {
	if s.fallbacks == nil {
		s.fallbacks = make(map[FallbackKey]int)
	}
	s.fallbacks[FallbackKey{Kind: kind, RecordType: recordType, Signature: sig, Size: size}]++
}

// FallbackEntry is one row of the sorted fallback report.
type FallbackEntry struct {
	Key   FallbackKey
	Count int
}

// FallbackReport returns the fallback log sorted by count descending, then
// by key for determinism among ties, per spec.md §9.
func (s *Stats) FallbackReport() []FallbackEntry {
	entries := make([]FallbackEntry, 0, len(s.fallbacks))
	for k, v := range s.fallbacks {
		entries = append(entries, FallbackEntry{Key: k, Count: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return fmt.Sprint(entries[i].Key) < fmt.Sprint(entries[j].Key)
	})
	return entries
}

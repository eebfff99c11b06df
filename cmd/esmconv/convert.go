package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	esmconv "github.com/go-esm/esmconv"
	"github.com/go-esm/esmconv/internal/config"
)

var (
	outputFlag     string
	verboseFlag    bool
	strictFlag     bool
	skipLandFlag   []string
	skipTypeFlag   []string
	configFlag     string
	decompressFlag bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert a big-endian ESM file to little-endian",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output file path (default: <input> with .pc.esm extension)")
	convertCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "print the fallback report to stderr on success")
	convertCmd.Flags().BoolVar(&strictFlag, "strict", false, "abort on the first subrecord with no registered schema")
	convertCmd.Flags().StringSliceVar(&skipLandFlag, "skip-land", nil, "hex formID(s) to omit from the output")
	convertCmd.Flags().StringSliceVar(&skipTypeFlag, "skip-type", nil, "4-letter record signature(s) to omit from the output")
	convertCmd.Flags().StringVar(&configFlag, "config", "", "TOML file pre-populating skip-record-type/skip-formID rules")
	convertCmd.Flags().BoolVar(&decompressFlag, "decompress-compressed", false, "decompress, convert, and recompress compressed records instead of passing them through")
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	input, err := os.ReadFile(inputPath) //nolint:gosec // G304: user-provided path is the CLI's whole purpose
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	opts := esmconv.Options{
		Verbose:              verboseFlag,
		StrictUnknown:        strictFlag,
		DecompressCompressed: decompressFlag,
		SkipRecordTypes:      make(map[[4]byte]bool),
		SkipFormIDs:          make(map[uint32]bool),
	}

	if configFlag != "" {
		cfg, err := config.Load(configFlag)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		types, err := cfg.RecordTypeSet()
		if err != nil {
			return fmt.Errorf("config skip.record_types: %w", err)
		}
		for k, v := range types {
			opts.SkipRecordTypes[k] = v
		}
		ids, err := cfg.FormIDSet()
		if err != nil {
			return fmt.Errorf("config skip.form_ids: %w", err)
		}
		for k, v := range ids {
			opts.SkipFormIDs[k] = v
		}
	}

	for _, sig := range skipTypeFlag {
		if len(sig) != 4 {
			return fmt.Errorf("--skip-type %q must be exactly 4 characters", sig)
		}
		var key [4]byte
		copy(key[:], sig)
		opts.SkipRecordTypes[key] = true
	}

	for _, hex := range skipLandFlag {
		id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(hex, "0x"), "0X"), 16, 32)
		if err != nil {
			return fmt.Errorf("--skip-land %q is not a valid hex formID: %w", hex, err)
		}
		opts.SkipFormIDs[uint32(id)] = true
	}

	output, stats, err := esmconv.Convert(input, opts)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	outputPath := resolveOutputPath(inputPath)
	if err := os.WriteFile(outputPath, output, 0o644); err != nil { //nolint:gosec // G306: ESM plugins are not sensitive
		return fmt.Errorf("writing output: %w", err)
	}

	fmt.Printf("wrote %s (%d records, %d GRUPs, %d skipped, %d compressed passthrough, %d compressed converted)\n",
		outputPath, stats.RecordsConverted, stats.GrupsConverted, stats.RecordsSkipped,
		stats.CompressedPassthrough, stats.CompressedConverted)

	if verboseFlag {
		printFallbackReport(stats)
	}
	return nil
}

// resolveOutputPath implements spec.md §6's default output path and
// ESM_OUTPUT_PATH environment override: an explicit -o flag wins, then the
// environment variable, then <input> with its extension replaced by
// ".pc.esm".
func resolveOutputPath(inputPath string) string {
	if outputFlag != "" {
		return outputFlag
	}
	if env := os.Getenv("ESM_OUTPUT_PATH"); env != "" {
		return env
	}
	if ext := filepath.Ext(inputPath); ext != "" {
		return strings.TrimSuffix(inputPath, ext) + ".pc.esm"
	}
	return inputPath + ".pc.esm"
}

// printFallbackReport prints the sorted-by-count fallback log to stderr,
// never stdout, keeping stdout reserved for the success line the
// surrounding tooling may parse (SPEC_FULL.md §D).
func printFallbackReport(stats esmconv.Stats) {
	report := stats.FallbackReport()
	if len(report) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, "fallback report:")
	for _, entry := range report {
		fmt.Fprintf(os.Stderr, "  %-12s %s.%s (size=%d): %d\n",
			entry.Key.Kind, entry.Key.RecordType, entry.Key.Signature, entry.Key.Size, entry.Count)
	}
}

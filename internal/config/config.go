// Package config loads the optional TOML skip-rule file described in
// SPEC_FULL.md §A/§B, pre-populating the converter's skip predicates so
// large skip lists need not be passed as repeated CLI flags.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/go-esm/esmconv/internal/utils"
)

// SkipConfig mirrors the [skip] table of a config TOML file. Field names
// are exported only so the TOML parser produces meaningful error messages
// on malformed input, matching the teacher pack's convention for parser
// target structs.
type SkipConfig struct {
	Skip SkipSection `toml:"skip"`
}

// SkipSection holds the record-type and formID skip lists.
type SkipSection struct {
	RecordTypes []string `toml:"record_types"`
	FormIDs     []string `toml:"form_ids"`
}

// Load reads and decodes a skip-rule TOML file at path.
func Load(path string) (*SkipConfig, error) {
	var cfg SkipConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, utils.WrapError(utils.ErrUnsupported, "failed to decode config file "+path, err)
	}
	return &cfg, nil
}

// RecordTypeSet converts the configured record-type signatures (each
// expected to be exactly 4 ASCII characters, e.g. "LAND") into the
// [4]byte-keyed set the converter driver's Options expects.
func (c *SkipConfig) RecordTypeSet() (map[[4]byte]bool, error) {
	out := make(map[[4]byte]bool, len(c.Skip.RecordTypes))
	for _, sig := range c.Skip.RecordTypes {
		if len(sig) != 4 {
			return nil, fmt.Errorf("skip.record_types entry %q must be exactly 4 characters", sig)
		}
		var key [4]byte
		copy(key[:], sig)
		out[key] = true
	}
	return out, nil
}

// FormIDSet parses the configured formID strings (hex, with or without a
// leading "0x") into the uint32-keyed set the converter driver's Options
// expects.
func (c *SkipConfig) FormIDSet() (map[uint32]bool, error) {
	out := make(map[uint32]bool, len(c.Skip.FormIDs))
	for _, raw := range c.Skip.FormIDs {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
		v, err := strconv.ParseUint(trimmed, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("skip.form_ids entry %q is not a valid hex formID: %w", raw, err)
		}
		out[uint32(v)] = true
	}
	return out, nil
}

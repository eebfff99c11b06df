package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "skip.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ParsesSkipLists(t *testing.T) {
	path := writeTempConfig(t, `
[skip]
record_types = ["LAND", "STAT"]
form_ids = ["0x0000002A", "1B"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	types, err := cfg.RecordTypeSet()
	require.NoError(t, err)
	require.True(t, types[[4]byte{'L', 'A', 'N', 'D'}])
	require.True(t, types[[4]byte{'S', 'T', 'A', 'T'}])
	require.Len(t, types, 2)

	ids, err := cfg.FormIDSet()
	require.NoError(t, err)
	require.True(t, ids[0x2A])
	require.True(t, ids[0x1B])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestRecordTypeSet_RejectsWrongLength(t *testing.T) {
	cfg := &SkipConfig{Skip: SkipSection{RecordTypes: []string{"AB"}}}
	_, err := cfg.RecordTypeSet()
	require.Error(t, err)
}

func TestFormIDSet_RejectsInvalidHex(t *testing.T) {
	cfg := &SkipConfig{Skip: SkipSection{FormIDs: []string{"not-hex"}}}
	_, err := cfg.FormIDSet()
	require.Error(t, err)
}

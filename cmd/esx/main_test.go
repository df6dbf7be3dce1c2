package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/esx/internal/testutil"
)

func writeSample(t *testing.T) (string, []byte) {
	t.Helper()
	wire := testutil.SamplePlugin(t)
	path := filepath.Join(t.TempDir(), "sample.esm")
	require.NoError(t, os.WriteFile(path, wire, 0o600))
	return path, wire
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestInfo(t *testing.T) {
	t.Parallel()

	path, _ := writeSample(t)
	stdout, _, err := runCLI(t, "info", path, path)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(stdout, path+"\n"))
	assert.Contains(t, stdout, "digest:        sha256:")
	assert.Contains(t, stdout, "header flags:  master")
	assert.Contains(t, stdout, "records:       12")
	assert.Contains(t, stdout, "groups:        16")
	assert.Contains(t, stdout, "compressed:    1")
	assert.Contains(t, stdout, "unresolved:    0")
}

func TestGroups(t *testing.T) {
	t.Parallel()

	path, _ := writeSample(t)
	stdout, _, err := runCLI(t, "groups", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Top (WEAP) [2 records]\n")
	assert.Contains(t, stdout, "\n  Interior Cell Block (1) [0 records]\n")
	assert.Contains(t, stdout, "Exterior Cell Block (X: 1, Y: -2)")
	assert.Contains(t, stdout, "Quest Scene (QUST: 00000400) [1 records]")
}

func TestRecords(t *testing.T) {
	t.Parallel()

	path, _ := writeSample(t)
	stdout, _, err := runCLI(t, "records", "--signature", "WEAP", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "WEAP 00012eb7 none fields=2", lines[0])
	assert.Equal(t, "WEAP 00012eb8 compressed fields=2", lines[1])
}

func TestDumpRestore(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"dump.yaml", "dump.cbor"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path, wire := writeSample(t)
			dir := filepath.Dir(path)
			out := filepath.Join(dir, name)
			restored := filepath.Join(dir, "restored.esm")

			_, _, err := runCLI(t, "dump", "--raw", path, out)
			require.NoError(t, err)
			_, _, err = runCLI(t, "restore", out, restored)
			require.NoError(t, err)

			got, err := os.ReadFile(restored)
			require.NoError(t, err)
			assert.Equal(t, wire, got)
		})
	}
}

func TestDumpFormatOverride(t *testing.T) {
	t.Parallel()

	path, _ := writeSample(t)
	out := filepath.Join(filepath.Dir(path), "dump.out")

	_, _, err := runCLI(t, "dump", path, out)
	require.Error(t, err)

	_, _, err = runCLI(t, "dump", "--format", "yaml", path, out)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "signature: TES4")
}

func TestRoundtrip(t *testing.T) {
	t.Parallel()

	path, _ := writeSample(t)
	stdout, _, err := runCLI(t, "roundtrip", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, path+" ok sha256:"))
}

func TestUsageErrors(t *testing.T) {
	t.Parallel()

	_, stderr, err := runCLI(t)
	require.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, "roundtrip")

	_, stderr, err = runCLI(t, "bogus")
	require.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, `unknown command "bogus"`)

	_, _, err = runCLI(t, "groups")
	require.ErrorIs(t, err, errUsage)

	_, _, err = runCLI(t, "info", filepath.Join(t.TempDir(), "missing.esp"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMaxSize(t *testing.T) {
	t.Parallel()

	path, _ := writeSample(t)
	_, _, err := runCLI(t, "--max-size", "100", "info", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size overflow")
}

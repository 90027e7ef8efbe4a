package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raaihank/deidentify/internal/batch"
	"github.com/raaihank/deidentify/internal/privacy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error", "--log-format", "json"))
	err := cmd.Execute()
	return out.String(), err
}

func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRootProcessesDirectory(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "scrubbed")
	writeDoc(t, filepath.Join(dir, "interview_01.md"), "# Notes\nEmail: jane@example.com\nPhone: 0412 123 456\n")
	writeDoc(t, filepath.Join(dir, "interview_02.md"), "Phone: 0412 123 456\nID: 12345\n")
	writeDoc(t, filepath.Join(dir, "notes.txt"), "Email: jane@example.com\n")

	out, err := runCLI(t, dir, "-o", outDir)
	require.NoError(t, err)

	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "Processed 2 file(s), 0 failed, 4 replacement(s)")

	first, err := os.ReadFile(filepath.Join(outDir, "deidentified_interview_01.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Notes\nEmail: interview_01@example.com\nPhone: 0XXX XXX 001\n", string(first))

	second, err := os.ReadFile(filepath.Join(outDir, "deidentified_interview_02.md"))
	require.NoError(t, err)
	assert.Equal(t, "Phone: 0XXX XXX 001\nID: 000001\n", string(second))

	assert.NoFileExists(t, filepath.Join(outDir, "deidentified_notes.txt"))
}

func TestRootSingleFileInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call.md")
	writeDoc(t, path, "Mobile: 0412345678")

	_, err := runCLI(t, path, "--in-place")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Mobile: 0XXX XXX 001", string(data))
}

func TestRootDryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	writeDoc(t, path, "sam@gmail.com")

	out, err := runCLI(t, path, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "not written")
	assert.Contains(t, out, "dry run")
	assert.NoFileExists(t, filepath.Join(dir, "deidentified_a.md"))
}

func TestRootFailedFilesKeepSuccessExit(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "bad.md"), string([]byte{0xff, 0xfe}))
	writeDoc(t, filepath.Join(dir, "good.md"), "hello")

	out, err := runCLI(t, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "failed: ")
	assert.Contains(t, out, "Processed 1 file(s), 1 failed")
}

func TestRootErrors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := runCLI(t, filepath.Join(t.TempDir(), "nope"))
		assert.ErrorIs(t, err, batch.ErrPathNotFound)
	})

	t.Run("not markdown", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		writeDoc(t, path, "x")
		_, err := runCLI(t, path)
		assert.ErrorIs(t, err, batch.ErrUnsupportedFile)
	})

	t.Run("in place with output dir", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.md")
		writeDoc(t, path, "x")
		_, err := runCLI(t, path, "-i", "-o", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("missing config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.md")
		writeDoc(t, path, "x")
		_, err := runCLI(t, path, "-c", filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load config")
	})

	t.Run("no arguments", func(t *testing.T) {
		cmd := newRootCommand()
		cmd.SetArgs(nil)
		cmd.SetOut(&bytes.Buffer{})
		assert.Error(t, cmd.Execute())
	})
}

func TestConfigFileCustomNames(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "deidentify.yaml")
	writeDoc(t, cfgPath, `privacy:
  names:
    known:
      - name: Ada Lovelace
        label: A
    common: [Grace]
`)
	path := filepath.Join(dir, "s1.md")
	writeDoc(t, path, "Ada Lovelace met Grace.")

	_, err := runCLI(t, path, "-c", cfgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "deidentified_s1.md"))
	require.NoError(t, err)
	assert.Equal(t, "S1 met S1.", string(data))
}

func TestWatchRejectsMissingDirectory(t *testing.T) {
	_, err := runCLI(t, "watch", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, batch.ErrPathNotFound)
}

func TestRenderSummary(t *testing.T) {
	result := &batch.RunResult{
		Processed: []batch.FileResult{
			{
				Input:   "/d/a.md",
				Output:  "/d/deidentified_a.md",
				Written: true,
				Findings: []privacy.Finding{
					{Category: privacy.CategoryEmail, Count: 2, New: 1},
					{Category: privacy.CategoryName, Count: 1, New: 1},
				},
			},
		},
		Totals: map[privacy.Category]int{privacy.CategoryEmail: 2, privacy.CategoryName: 1},
	}

	table := renderSummary(result)
	lines := strings.Split(table, "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, table, "a.md")
	assert.Contains(t, table, "deidentified_a.md")
	assert.Contains(t, table, "TOTAL")
	assert.NotContains(t, table, "not written")

	assert.Equal(t, "Processed 1 file(s), 0 failed, 3 replacement(s) in 0s", summaryLine(result, false))
}

package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/raaihank/deidentify/internal/config"
	"github.com/raaihank/deidentify/internal/logger"
	"github.com/raaihank/deidentify/internal/privacy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, mutate func(*config.OutputConfig)) *Pipeline {
	t.Helper()
	cfg := config.GetDefaults()
	if mutate != nil {
		mutate(&cfg.Output)
	}
	engine, err := privacy.New(cfg.Privacy, logger.NewNop())
	require.NoError(t, err)
	return NewPipeline(engine, cfg.Output, logger.NewNop())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestDocumentIdentifier(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/interview_01.md", "interview_01"},
		{"/data/deidentified_interview_01.md", "interview_01"},
		{"notes.final.md", "notes.final"},
		{"plain", "plain"},
		{"/data/.md", ".md"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DocumentIdentifier(tt.path, "deidentified_"))
		})
	}
}

func TestOutputPath(t *testing.T) {
	t.Run("next to input", func(t *testing.T) {
		p := newTestPipeline(t, nil)
		assert.Equal(t, filepath.Join("/data", "deidentified_a.md"), p.OutputPath("/data/a.md"))
	})

	t.Run("output dir", func(t *testing.T) {
		p := newTestPipeline(t, func(c *config.OutputConfig) { c.Dir = "/out" })
		assert.Equal(t, filepath.Join("/out", "deidentified_a.md"), p.OutputPath("/data/a.md"))
	})

	t.Run("in place", func(t *testing.T) {
		p := newTestPipeline(t, func(c *config.OutputConfig) { c.InPlace = true })
		assert.Equal(t, "/data/a.md", p.OutputPath("/data/a.md"))
		assert.False(t, p.IsOutput("/data/deidentified_a.md"))
	})
}

func TestRunSingleFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "session1.md")
	writeFile(t, input, "# Test Document\nParticipant: Jane Doe\nEmail: jane@example.com\nPhone: 0412 123 456\n")

	p := newTestPipeline(t, nil)
	result, err := p.Run(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, result.Processed, 1)

	fr := result.Processed[0]
	assert.Equal(t, "session1", fr.Identifier)
	assert.Equal(t, filepath.Join(dir, "deidentified_session1.md"), fr.Output)
	assert.True(t, fr.Written)

	out := readFile(t, fr.Output)
	assert.NotContains(t, out, "jane@example.com")
	assert.NotContains(t, out, "0412 123 456")
	assert.Contains(t, out, "session1@example.com")
	assert.Contains(t, out, "# Test Document")

	// Source is untouched
	assert.Contains(t, readFile(t, input), "jane@example.com")
	assert.Equal(t, 1, result.Totals[privacy.CategoryEmail])
	assert.Equal(t, 1, result.Totals[privacy.CategoryPhone])
}

func TestRunInPlace(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "deidentified_notes.md")
	writeFile(t, input, "Reach me at sam@gmail.com")

	p := newTestPipeline(t, func(c *config.OutputConfig) { c.InPlace = true })
	result, err := p.Run(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, input, result.Processed[0].Output)
	assert.Equal(t, "Reach me at notes@gmail.com", readFile(t, input))

	info, err := os.Stat(input)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.md")
	writeFile(t, input, "ID: 1234")

	p := newTestPipeline(t, func(c *config.OutputConfig) { c.DryRun = true; c.Dir = filepath.Join(dir, "out") })
	result, err := p.Run(context.Background(), input)
	require.NoError(t, err)

	assert.False(t, result.Processed[0].Written)
	assert.Equal(t, 1, result.Totals[privacy.CategoryIdentifier])
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestRunErrors(t *testing.T) {
	p := newTestPipeline(t, nil)

	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrPathNotFound)

	txt := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, txt, "hello")
	_, err = p.Run(context.Background(), txt)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestRunDirectory(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "scrubbed", "nested")

	writeFile(t, filepath.Join(dir, "b.md"), "Call 0412 345 678")
	writeFile(t, filepath.Join(dir, "a.MD"), "Call 0412 345 678 or 0499 111 222")
	writeFile(t, filepath.Join(dir, "c.md"), string([]byte{0xff, 0xfe, 0x00}))
	writeFile(t, filepath.Join(dir, "ignored.txt"), "Call 0412 345 678")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))

	p := newTestPipeline(t, func(c *config.OutputConfig) { c.Dir = outDir })
	result, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, result.Processed, 2)
	assert.Equal(t, filepath.Join(dir, "a.MD"), result.Processed[0].Input)
	assert.Equal(t, filepath.Join(dir, "b.md"), result.Processed[1].Input)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, filepath.Join(dir, "c.md"), result.Failed[0].Path)
	assert.ErrorIs(t, result.Failed[0], ErrNotText)

	// Lexical order fixes the shared counter, and the mapping carries across files
	assert.Equal(t, "Call 0XXX XXX 001 or 0XXX XXX 002", readFile(t, filepath.Join(outDir, "deidentified_a.MD")))
	assert.Equal(t, "Call 0XXX XXX 001", readFile(t, filepath.Join(outDir, "deidentified_b.md")))
	assert.NoFileExists(t, filepath.Join(outDir, "deidentified_ignored.txt"))
	assert.Equal(t, 3, result.Replacements())
}

func TestRunEmptyDirectory(t *testing.T) {
	p := newTestPipeline(t, nil)
	result, err := p.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, result.Processed)
	assert.Empty(t, result.Failed)
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(t, nil)
	_, err := p.Run(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingEngine struct {
	ids []string
}

func (r *recordingEngine) Process(text, documentID string) privacy.ProcessResult {
	r.ids = append(r.ids, documentID)
	return privacy.ProcessResult{Text: text}
}

func TestPipelinePassesIdentifiers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "deidentified_p1.md"), "x")
	writeFile(t, filepath.Join(dir, "p2.md"), "y")

	engine := &recordingEngine{}
	cfg := config.GetDefaults().Output
	cfg.DryRun = true
	p := NewPipeline(engine, cfg, logger.NewNop())

	_, err := p.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, engine.ids)
}

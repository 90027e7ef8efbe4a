// Package batch feeds markdown documents from disk through the
// deidentification engine and writes the scrubbed copies back out.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/raaihank/deidentify/internal/config"
	"github.com/raaihank/deidentify/internal/logger"
	"go.uber.org/zap"
)

// Pipeline processes documents one at a time through a single engine
type Pipeline struct {
	engine Deidentifier
	config config.OutputConfig
	logger *logger.Logger
}

// NewPipeline creates a new batch pipeline
func NewPipeline(engine Deidentifier, cfg config.OutputConfig, log *logger.Logger) *Pipeline {
	return &Pipeline{
		engine: engine,
		config: cfg,
		logger: log,
	}
}

// Run processes inputPath, which may be a single markdown file or a directory
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*RunResult, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, inputPath)
		}
		return nil, fmt.Errorf("failed to stat input path: %w", err)
	}

	if info.IsDir() {
		return p.ProcessDirectory(ctx, inputPath)
	}

	if !p.IsCandidate(inputPath) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, inputPath)
	}

	start := time.Now()
	result := newRunResult()

	if err := p.ensureOutputDir(); err != nil {
		return nil, err
	}

	fr, err := p.ProcessFile(ctx, inputPath)
	if err != nil {
		return nil, err
	}
	result.addProcessed(*fr)
	result.Duration = time.Since(start)

	return result, nil
}

// ProcessDirectory processes every markdown file directly inside dir in
// lexical order. A failing document is recorded and the batch continues.
func (p *Pipeline) ProcessDirectory(ctx context.Context, dir string) (*RunResult, error) {
	start := time.Now()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, dir)
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	if err := p.ensureOutputDir(); err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if path := filepath.Join(dir, entry.Name()); p.IsCandidate(path) {
			files = append(files, path)
		}
	}

	result := newRunResult()

	if len(files) == 0 {
		p.logger.Warn("No markdown files found", zap.String("directory", dir))
		result.Duration = time.Since(start)
		return result, nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		fr, err := p.ProcessFile(ctx, path)
		if err != nil {
			result.addFailed(path, err)
			continue
		}
		result.addProcessed(*fr)
	}

	result.Duration = time.Since(start)

	p.logger.Info("Directory processed",
		zap.String("directory", dir),
		zap.Int("processed", len(result.Processed)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("replacements", result.Replacements()),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

// ProcessFile deidentifies one document and writes the result
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	identifier := DocumentIdentifier(path, p.config.Prefix)
	output := p.OutputPath(path)
	log := p.logger.WithDocument(identifier, path)

	info, err := os.Stat(path)
	if err != nil {
		log.Error("Failed to stat document", zap.Error(err))
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		log.Error("Failed to read document", zap.Error(err))
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if !utf8.Valid(content) {
		log.Error("Document is not valid UTF-8, skipping")
		return nil, fmt.Errorf("%w: %s", ErrNotText, path)
	}

	result := p.engine.Process(string(content), identifier)

	fr := &FileResult{
		Input:      path,
		Output:     output,
		Identifier: identifier,
		Findings:   result.Findings,
		Bytes:      len(result.Text),
	}

	if !p.config.DryRun {
		if err := writeFileAtomic(output, []byte(result.Text), info.Mode().Perm()); err != nil {
			log.Error("Failed to write document", zap.String("output", output), zap.Error(err))
			return nil, fmt.Errorf("failed to write %s: %w", output, err)
		}
		fr.Written = true
	}

	fr.Duration = time.Since(start)

	log.Info("Processed",
		zap.String("output", output),
		zap.Bool("written", fr.Written),
		zap.Int("replacements", result.Total()),
		zap.Duration("duration", fr.Duration),
	)

	return fr, nil
}

// IsCandidate reports whether path has one of the configured extensions
func (p *Pipeline) IsCandidate(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range p.config.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// OutputPath returns where the scrubbed copy of path is written
func (p *Pipeline) OutputPath(path string) string {
	if p.config.InPlace {
		return path
	}

	name := p.config.Prefix + filepath.Base(path)
	if p.config.Dir != "" {
		return filepath.Join(p.config.Dir, name)
	}
	return filepath.Join(filepath.Dir(path), name)
}

// IsOutput reports whether path looks like a file this pipeline wrote
func (p *Pipeline) IsOutput(path string) bool {
	if p.config.InPlace || p.config.Prefix == "" {
		return false
	}
	return strings.HasPrefix(filepath.Base(path), p.config.Prefix)
}

func (p *Pipeline) ensureOutputDir() error {
	if p.config.Dir == "" || p.config.DryRun {
		return nil
	}
	if err := os.MkdirAll(p.config.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// DocumentIdentifier derives the identifier for path: the file name without
// its final extension and without a leading prefix.
func DocumentIdentifier(path, prefix string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	if prefix != "" {
		stem = strings.TrimPrefix(stem, prefix)
	}
	return stem
}

// writeFileAtomic writes data next to path and renames it into place
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".deidentify-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Package ocr recognizes text on rasterized document pages by shelling out
// to tesseract and pdftoppm.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
)

// ErrEngineUnavailable is returned when the OCR binary cannot be executed.
// In OCR mode this is fatal for the document: no partial record is produced.
var ErrEngineUnavailable = errors.New("ocr: engine unavailable")

// EngineConfig configures the tesseract invocation.
type EngineConfig struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	TessdataDir string // optional --tessdata-dir override

	Runner Runner
	Logger *slog.Logger
}

// Engine runs tesseract over page images.
type Engine struct {
	cfg    EngineConfig
	logger *slog.Logger
}

// NewEngine builds an Engine, filling config defaults.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.Runner == nil {
		cfg.Runner = NewExecRunner(cfg.Logger)
	}
	return &Engine{cfg: cfg, logger: cfg.Logger}
}

// Lang returns the configured recognition language.
func (e *Engine) Lang() string { return e.cfg.Lang }

// Probe checks that the tesseract binary responds. Callers run it once
// before OCR-mode extraction so a missing engine fails the document up
// front instead of half way through.
func (e *Engine) Probe(ctx context.Context) error {
	if _, _, err := e.cfg.Runner.Run(ctx, e.cfg.Tesseract, "--version"); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEngineUnavailable, e.cfg.Tesseract, err)
	}
	return nil
}

// Recognize OCRs a single page image and returns normalized text.
func (e *Engine) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", e.cfg.Lang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <image> stdout -l <lang>
	out, _, err := e.cfg.Runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("ocr: tesseract %s: %w", filepath.Base(imagePath), err)
	}

	txt := Normalize(string(out))
	e.logger.Debug("ocr page ok", "image", filepath.Base(imagePath), "chars", len(txt))
	return txt, nil
}

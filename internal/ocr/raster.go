package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/freightdocs/bol-extractor/internal/document"
)

// RasterConfig configures page rasterization.
type RasterConfig struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // default 300

	Runner Runner
	Logger *slog.Logger
}

// Rasterizer renders single PDF pages, or clipped regions of them, to PNG
// images that the Engine can recognize.
type Rasterizer struct {
	cfg    RasterConfig
	logger *slog.Logger
}

// NewRasterizer builds a Rasterizer, filling config defaults.
func NewRasterizer(cfg RasterConfig) *Rasterizer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.Runner == nil {
		cfg.Runner = NewExecRunner(cfg.Logger)
	}
	return &Rasterizer{cfg: cfg, logger: cfg.Logger}
}

// DPI returns the configured rasterization resolution.
func (r *Rasterizer) DPI() int { return r.cfg.DPI }

// RenderPage rasterizes page i (0-based) of the PDF at path. It returns the
// PNG path and a cleanup func that removes the backing temp directory.
func (r *Rasterizer) RenderPage(ctx context.Context, path string, page int) (string, func(), error) {
	return r.render(ctx, path, page, nil)
}

// RenderRegion rasterizes only the clip rectangle of page i. The clip is
// given in page points and converted to pixels at the configured DPI.
func (r *Rasterizer) RenderRegion(ctx context.Context, path string, page int, clip document.Rect) (string, func(), error) {
	return r.render(ctx, path, page, &clip)
}

func (r *Rasterizer) render(ctx context.Context, path string, page int, clip *document.Rect) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "bx-pp-*")
	if err != nil {
		return "", nil, fmt.Errorf("ocr: temp dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	pageNum := fmt.Sprintf("%d", page+1)
	// pdftoppm -r 300 -png -f N -l N <in.pdf> <tmp/page>
	args := []string{"-r", fmt.Sprintf("%d", r.cfg.DPI), "-png", "-f", pageNum, "-l", pageNum}
	if clip != nil {
		args = append(args,
			"-x", fmt.Sprintf("%d", r.toPixels(clip.X0)),
			"-y", fmt.Sprintf("%d", r.toPixels(clip.Y0)),
			"-W", fmt.Sprintf("%d", r.toPixels(clip.Width())),
			"-H", fmt.Sprintf("%d", r.toPixels(clip.Height())),
		)
	}
	args = append(args, path, prefix)

	if _, _, err := r.cfg.Runner.Run(ctx, r.cfg.Pdftoppm, args...); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("ocr: pdftoppm page %d of %s: %w", page, filepath.Base(path), err)
	}

	// pdftoppm pads the page number in the output name, so glob for it
	// (page-1.png, page-01.png, ...).
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		cleanup()
		return "", nil, fmt.Errorf("ocr: pdftoppm produced no image for page %d of %s", page, filepath.Base(path))
	}
	return matches[0], cleanup, nil
}

// toPixels converts page points to raster pixels at the configured DPI.
func (r *Rasterizer) toPixels(pt float64) int {
	return int(math.Round(pt * float64(r.cfg.DPI) / 72.0))
}

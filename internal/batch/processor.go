package batch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/freightdocs/bol-extractor/constants"
	"github.com/freightdocs/bol-extractor/internal/bol"
	"github.com/freightdocs/bol-extractor/internal/document"
	"github.com/freightdocs/bol-extractor/internal/export"
	"github.com/freightdocs/bol-extractor/internal/extract"
	"github.com/freightdocs/bol-extractor/internal/ocr"
	"github.com/freightdocs/bol-extractor/internal/refdata"
	"github.com/freightdocs/bol-extractor/internal/repository"
	"github.com/freightdocs/bol-extractor/internal/textsource"
)

// defaultMinTextChars is the page-0 text length below which auto mode
// treats the text layer as blank and tries OCR instead.
const defaultMinTextChars = 50

type ProcessorConfig struct {
	Mode            constants.ExtractionMode
	CarrierPrefixes []string
	RefData         *refdata.Table

	// Engine and Rasterizer enable the OCR path. A nil Engine means auto
	// mode never leaves the text layer and ocr mode is refused.
	Engine     *ocr.Engine
	Rasterizer *ocr.Rasterizer

	// Writer receives one JSON file per record; nil writes nothing.
	Writer *export.Writer

	// Jobs and Records enable persistence; nil skips the repository.
	Jobs    repository.JobRepository
	Records repository.RecordRepository

	MinTextChars int
	Logger       *slog.Logger
}

// Processor runs the whole pipeline for one document at a time: open,
// choose a text source, extract, validate, export, persist. Each call to
// ProcessFile is independent; the processor itself holds no per-document
// state, so one instance is shared by all workers.
type Processor struct {
	mode         constants.ExtractionMode
	assembler    *extract.Assembler
	validator    *bol.Validator
	engine       *ocr.Engine
	rast         *ocr.Rasterizer
	writer       *export.Writer
	jobs         repository.JobRepository
	records      repository.RecordRepository
	minTextChars int
	logger       *slog.Logger

	openDoc func(path string) (document.Reader, error)
}

// Result is what a successfully processed document leaves behind.
type Result struct {
	Path     string
	Record   *bol.Record
	JSONPath string    // empty when no writer is configured
	JobID    uuid.UUID // uuid.Nil when persistence is off
}

func NewProcessor(cfg ProcessorConfig) (*Processor, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mode := cfg.Mode
	if mode == "" {
		mode = constants.ModeAuto
	}
	if mode == constants.ModeOCR && cfg.Engine == nil {
		return nil, errors.New("batch: ocr mode requires an engine")
	}
	if cfg.Engine != nil && cfg.Rasterizer == nil {
		cfg.Rasterizer = ocr.NewRasterizer(ocr.RasterConfig{Logger: logger})
	}

	validator, err := bol.NewValidator()
	if err != nil {
		return nil, err
	}

	minChars := cfg.MinTextChars
	if minChars <= 0 {
		minChars = defaultMinTextChars
	}

	return &Processor{
		mode: mode,
		assembler: extract.NewAssembler(extract.AssemblerConfig{
			CarrierPrefixes: cfg.CarrierPrefixes,
			RefData:         cfg.RefData,
			Logger:          logger,
		}),
		validator:    validator,
		engine:       cfg.Engine,
		rast:         cfg.Rasterizer,
		writer:       cfg.Writer,
		jobs:         cfg.Jobs,
		records:      cfg.Records,
		minTextChars: minChars,
		logger:       logger,
		openDoc: func(path string) (document.Reader, error) {
			return document.Open(path)
		},
	}, nil
}

// ProcessFile runs one document through the pipeline. The returned error is
// always a *DocumentError naming the stage that failed.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Result, error) {
	res := &Result{Path: path}

	if p.jobs != nil {
		job, err := p.jobs.Create(ctx, path, p.mode)
		if err != nil {
			return nil, fail(path, StagePersist, err)
		}
		res.JobID = job.ID
		if err := p.jobs.MarkRunning(ctx, job.ID); err != nil {
			return nil, fail(path, StagePersist, err)
		}
	}

	rec, derr := p.extractRecord(ctx, path)
	if derr != nil {
		p.markFailed(ctx, res.JobID, derr)
		return nil, derr
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		derr := fail(path, StageValidate, err)
		p.markFailed(ctx, res.JobID, derr)
		return nil, derr
	}
	if err := p.validator.Validate(payload); err != nil {
		derr := fail(path, StageValidate, err)
		p.markFailed(ctx, res.JobID, derr)
		return nil, derr
	}

	if p.writer != nil {
		jsonPath, err := p.writer.WriteRecord(rec)
		if err != nil {
			derr := fail(path, StageExport, err)
			p.markFailed(ctx, res.JobID, derr)
			return nil, derr
		}
		res.JSONPath = jsonPath
	}

	if p.records != nil && res.JobID != uuid.Nil {
		if _, err := p.records.Save(ctx, res.JobID, rec); err != nil {
			derr := fail(path, StagePersist, err)
			p.markFailed(ctx, res.JobID, derr)
			return nil, derr
		}
	}
	if p.jobs != nil {
		if err := p.jobs.MarkDone(ctx, res.JobID); err != nil {
			return nil, fail(path, StagePersist, err)
		}
	}

	res.Record = rec
	p.logger.Info("document processed",
		"path", path,
		"bol_number", orNull(rec.BOLNumber),
		"containers", len(rec.Containers),
	)
	return res, nil
}

// extractRecord opens the document, picks a text source and runs the
// assembler.
func (p *Processor) extractRecord(ctx context.Context, path string) (*bol.Record, *DocumentError) {
	if p.mode == constants.ModeOCR {
		// Fail the document before opening anything; a half-processed OCR
		// run produces no partial record.
		if err := p.engine.Probe(ctx); err != nil {
			return nil, fail(path, StageOCR, err)
		}
	}

	doc, err := p.openDoc(path)
	if err != nil {
		return nil, fail(path, StageOpen, err)
	}
	defer doc.Close()

	src := p.selectSource(ctx, doc)
	rec, err := p.assembler.Assemble(ctx, src, filepath.Base(path))
	if err != nil {
		if errors.Is(err, ocr.ErrEngineUnavailable) {
			return nil, fail(path, StageOCR, err)
		}
		return nil, fail(path, StageExtract, err)
	}
	return rec, nil
}

// selectSource picks the text source for one document. Every OCR source is
// a fresh instance so its page cache stays private to the document.
func (p *Processor) selectSource(ctx context.Context, doc document.Reader) textsource.Source {
	direct := textsource.NewDirect(doc)
	switch p.mode {
	case constants.ModeDirect:
		return direct
	case constants.ModeOCR:
		return textsource.NewOCR(doc, p.rast, p.engine, p.logger)
	}

	// auto: sniff the first page's text layer
	if p.engine == nil || doc.PageCount() == 0 {
		return direct
	}
	text, err := direct.PageText(ctx, 0)
	if err == nil && len(strings.TrimSpace(text)) >= p.minTextChars {
		return direct
	}
	if err := p.engine.Probe(ctx); err != nil {
		p.logger.Warn("text layer blank but ocr engine unavailable, staying on text layer",
			"path", doc.Path(), "error", err)
		return direct
	}
	p.logger.Info("text layer blank, switching to ocr", "path", doc.Path())
	return textsource.NewOCR(doc, p.rast, p.engine, p.logger)
}

func (p *Processor) markFailed(ctx context.Context, jobID uuid.UUID, derr *DocumentError) {
	p.logger.Error("document failed", "path", derr.Path, "stage", derr.Stage, "error", derr.Cause)
	if p.jobs == nil || jobID == uuid.Nil {
		return
	}
	if err := p.jobs.MarkFailed(ctx, jobID, derr.Error()); err != nil {
		p.logger.Error("job status update failed", "job_id", jobID, "error", err)
	}
}

func orNull(s *string) string {
	if s == nil {
		return "<null>"
	}
	return *s
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freightdocs/bol-extractor/constants"
	"github.com/freightdocs/bol-extractor/internal/batch"
	"github.com/freightdocs/bol-extractor/internal/config"
	"github.com/freightdocs/bol-extractor/internal/export"
	"github.com/freightdocs/bol-extractor/internal/ocr"
	"github.com/freightdocs/bol-extractor/internal/refdata"
	"github.com/freightdocs/bol-extractor/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		out     = flag.String("out", "", "output directory for JSON files (default from config: .)")
		mode    = flag.String("mode", "", fmt.Sprintf("extraction mode %v", constants.ModesAsStringSlice()))
		useOCR  = flag.Bool("ocr", false, "shorthand for -mode ocr")
		lang    = flag.String("lang", "", "OCR language code (default from config: eng)")
		ref     = flag.String("ref", "", "reference data YAML path")
		workers = flag.Int("workers", 0, "worker count (default from config: 4)")
		watch   = flag.Bool("watch", false, "keep watching the input directories for new PDFs")
		cfgFile = flag.String("config", "", "config file path")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		printError("Usage: bol-batch [flags] <pdf|dir|glob> ...\n")
		os.Exit(1)
	}

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	// Flags override the config.
	if *mode == "" {
		*mode = cfg.Extract.Mode
	}
	if *useOCR {
		*mode = string(constants.ModeOCR)
	}
	extractionMode, known := constants.CanonicalizeMode(*mode)
	if !known && *mode != "" {
		printError("Error: unknown mode %q, expected one of %v\n", *mode, constants.ModesAsStringSlice())
		os.Exit(1)
	}
	if *lang != "" {
		cfg.OCR.Lang = *lang
	}
	if *ref != "" {
		cfg.Extract.RefDataPath = *ref
	}
	if *out != "" {
		cfg.Export.Dir = *out
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}

	var table *refdata.Table
	if cfg.Extract.RefDataPath != "" {
		table, err = refdata.Load(cfg.Extract.RefDataPath)
		if err != nil {
			logger.Error("failed to load reference data", "path", cfg.Extract.RefDataPath, "error", err)
			os.Exit(1)
		}
		logger.Info("reference data loaded", "path", cfg.Extract.RefDataPath, "entries", table.Len())
	}

	writer, err := export.NewWriter(cfg.Export.Dir, logger)
	if err != nil {
		logger.Error("failed to prepare output directory", "error", err)
		os.Exit(1)
	}

	// Wire persistence when a DSN is configured.
	var jobs repository.JobRepository
	var records repository.RecordRepository
	if cfg.DB.Enabled() {
		conn, err := repository.Connect(repository.Config{
			Driver:  cfg.DB.Driver,
			DSN:     cfg.DB.DSN,
			MaxOpen: cfg.DB.MaxOpen,
			MaxIdle: cfg.DB.MaxIdle,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer conn.Close()
		if err := repository.Migrate(conn, logger); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		jobs = repository.NewJobRepository(conn, logger)
		records = repository.NewRecordRepository(conn, logger)
	}

	engine := ocr.NewEngine(ocr.EngineConfig{
		Tesseract:   cfg.OCR.Tesseract,
		Lang:        cfg.OCR.Lang,
		TessdataDir: cfg.OCR.TessdataDir,
		Logger:      logger,
	})
	rast := ocr.NewRasterizer(ocr.RasterConfig{
		Pdftoppm: cfg.OCR.Pdftoppm,
		DPI:      cfg.OCR.DPI,
		Logger:   logger,
	})

	processor, err := batch.NewProcessor(batch.ProcessorConfig{
		Mode:            extractionMode,
		CarrierPrefixes: cfg.Extract.CarrierPrefixes,
		RefData:         table,
		Engine:          engine,
		Rasterizer:      rast,
		Writer:          writer,
		Jobs:            jobs,
		Records:         records,
		MinTextChars:    cfg.Extract.MinTextChars,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("failed to build processor", "error", err)
		os.Exit(1)
	}

	queue := batch.NewQueue(processor, logger,
		batch.WithWorkers(cfg.Batch.Workers),
		batch.WithQueueSize(cfg.Batch.QueueSize),
		batch.WithProcessTimeout(cfg.Batch.ProcessTimeout),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *watch {
		runWatch(ctx, cfg, queue, logger)
	} else {
		files, stats, err := batch.CollectFiles(flag.Args(), cfg.Batch.SkipHidden)
		if err != nil {
			logger.Error("failed to collect input files", "error", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			printError("Error: no PDF files found\n")
			os.Exit(1)
		}
		logger.Info("input collected", "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)

		for _, path := range files {
			_ = queue.Enqueue(ctx, batch.Task{Path: path})
		}
	}

	queue.Shutdown(context.Background())

	outcomes := queue.Outcomes()
	processed := 0
	failures := 0
	var rows []export.SummaryRow
	for _, o := range outcomes {
		if o.Err != nil {
			failures++
			continue
		}
		processed++
		rows = append(rows, export.RowFromRecord(o.Result.Record))
	}

	summaryPath, err := writer.WriteSummary(rows)
	if err != nil {
		logger.Error("failed to write summary", "error", err)
		os.Exit(1)
	}
	xlsxPath, err := writer.WriteSummaryXLSX(rows)
	if err != nil {
		logger.Error("failed to write xlsx summary", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"files_processed", processed,
		"failures", failures,
		"summary", summaryPath,
		"xlsx", xlsxPath,
	)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files processed: %d\n", processed)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", writer.Dir())

	if failures > 0 {
		os.Exit(1)
	}
}

// runWatch feeds the queue from filesystem events until the context is
// cancelled.
func runWatch(ctx context.Context, cfg *config.Config, queue *batch.Queue, logger *slog.Logger) {
	evCh, errCh, err := batch.StartWatcher(ctx, batch.WatchConfig{
		Roots:       flag.Args(),
		InitialScan: true,
		Debounce:    2 * time.Second,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}
	logger.Info("watching for documents", "roots", flag.Args())

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return
		case path, ok := <-evCh:
			if !ok {
				return
			}
			_ = queue.Enqueue(ctx, batch.Task{Path: path})
		case err, ok := <-errCh:
			if !ok {
				return
			}
			logger.Error("watch error", "error", err)
		}
	}
}

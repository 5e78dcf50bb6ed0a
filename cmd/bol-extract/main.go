package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/freightdocs/bol-extractor/constants"
	"github.com/freightdocs/bol-extractor/internal/batch"
	"github.com/freightdocs/bol-extractor/internal/bol"
	"github.com/freightdocs/bol-extractor/internal/config"
	"github.com/freightdocs/bol-extractor/internal/export"
	"github.com/freightdocs/bol-extractor/internal/ocr"
	"github.com/freightdocs/bol-extractor/internal/refdata"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		in      = flag.String("in", "", "path to the PDF to extract (required)")
		out     = flag.String("out", "", "output JSON path (default: print to stdout)")
		mode    = flag.String("mode", "", fmt.Sprintf("extraction mode %v", constants.ModesAsStringSlice()))
		useOCR  = flag.Bool("ocr", false, "shorthand for -mode ocr")
		lang    = flag.String("lang", "", "OCR language code (default from config: eng)")
		ref     = flag.String("ref", "", "reference data YAML path")
		cfgFile = flag.String("config", "", "config file path")
	)
	flag.Parse()

	if *in == "" {
		printError("Error: -in is required\n")
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

	var table *refdata.Table
	if cfg.Extract.RefDataPath != "" {
		table, err = refdata.Load(cfg.Extract.RefDataPath)
		if err != nil {
			logger.Error("failed to load reference data", "path", cfg.Extract.RefDataPath, "error", err)
			os.Exit(1)
		}
		logger.Info("reference data loaded", "path", cfg.Extract.RefDataPath, "entries", table.Len())
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
		MinTextChars:    cfg.Extract.MinTextChars,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("failed to build processor", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	res, err := processor.ProcessFile(ctx, *in)
	if err != nil {
		logger.Error("extraction failed", "path", *in, "error", err)
		os.Exit(1)
	}
	logMissingFields(logger, res.Record)

	data, err := export.MarshalRecord(res.Record)
	if err != nil {
		logger.Error("failed to encode record", "error", err)
		os.Exit(1)
	}

	if *out == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("failed to write output", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("record written", "path", *out)
}

// logMissingFields reports every unresolved field at debug level, so quiet
// runs stay quiet and BOL_LOG_LEVEL=debug shows what the cascades missed.
func logMissingFields(logger *slog.Logger, rec *bol.Record) {
	missing := []string{}
	note := func(name string, absent bool) {
		if absent {
			missing = append(missing, name)
		}
	}
	note("bol_number", rec.BOLNumber == nil)
	note("shipper", rec.Shipper == nil)
	note("consignee", rec.Consignee == nil)
	note("notify_party", rec.NotifyParty == nil)
	note("vessel", rec.Vessel == nil)
	note("issue_date", rec.IssueDate == nil)
	note("shipped_date", rec.ShippedDate == nil)
	note("port_of_loading", rec.PortOfLoading == nil)
	note("port_of_discharge", rec.PortOfDischarge == nil)
	note("place_of_receipt", rec.PlaceOfReceipt == nil)
	note("place_of_delivery", rec.PlaceOfDelivery == nil)
	note("cargo", rec.Cargo == nil)
	note("containers", len(rec.Containers) == 0)

	for _, name := range missing {
		logger.Debug("field not found", "field", name)
	}
}

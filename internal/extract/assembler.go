// Package extract assembles one bill of lading record per document by
// running the field cascades and the container pipeline in dependency
// order.
package extract

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/freightdocs/bol-extractor/internal/bol"
	"github.com/freightdocs/bol-extractor/internal/containers"
	"github.com/freightdocs/bol-extractor/internal/fields"
	"github.com/freightdocs/bol-extractor/internal/refdata"
	"github.com/freightdocs/bol-extractor/internal/textsource"
)

// Assembler runs the extractors against one text source at a time and
// merges their outputs into an immutable record. A missing field never
// fails the document; only an unusable OCR engine does.
type Assembler struct {
	fields     *fields.Extractor
	containers *containers.Extractor
	ref        *refdata.Table
	logger     *slog.Logger
}

type AssemblerConfig struct {
	// CarrierPrefixes override the default BOL number prefix set used by
	// both the bol_number cascade and the container false-positive filter.
	CarrierPrefixes []string
	// RefData is the optional operator-supplied reference table; nil means
	// no reconciliation and no reference fallbacks.
	RefData *refdata.Table
	Logger  *slog.Logger
}

func NewAssembler(cfg AssemblerConfig) *Assembler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		fields:     fields.NewExtractor(cfg.CarrierPrefixes, logger),
		containers: containers.NewExtractor(cfg.CarrierPrefixes, logger),
		ref:        cfg.RefData,
		logger:     logger,
	}
}

// Assemble extracts every field from src and returns the finished record.
// Extraction order is fixed: the BOL number resolves first because the
// container filter needs it, and containers run last so reconciliation can
// use the reference entry for this document's identity.
func (a *Assembler) Assemble(ctx context.Context, src textsource.Source, filename string) (*bol.Record, error) {
	rec := bol.NewRecord(filename)

	bolNumber, ok, err := a.fields.BOLNumber(ctx, src)
	if err != nil {
		return nil, err
	}
	if ok {
		rec.BOLNumber = &bolNumber
	}

	shipper, ok, err := a.fields.Shipper(ctx, src)
	if err != nil {
		return nil, err
	}
	setOpt(&rec.Shipper, shipper, ok)

	consignee, ok, err := a.fields.Consignee(ctx, src)
	if err != nil {
		return nil, err
	}
	setOpt(&rec.Consignee, consignee, ok)

	notify, ok, err := a.fields.NotifyParty(ctx, src)
	if err != nil {
		return nil, err
	}
	setOpt(&rec.NotifyParty, notify, ok)

	vessel, ok, err := a.fields.Vessel(ctx, src)
	if err != nil {
		return nil, err
	}
	setOpt(&rec.Vessel, vessel, ok)

	issue, ok, err := a.fields.IssueDate(ctx, src)
	if err != nil {
		return nil, err
	}
	setOpt(&rec.IssueDate, issue, ok)

	shipped, ok, err := a.fields.ShippedDate(ctx, src)
	if err != nil {
		return nil, err
	}
	setOpt(&rec.ShippedDate, shipped, ok)

	if err := a.assemblePorts(ctx, src, rec); err != nil {
		return nil, err
	}

	cargo, ok, err := a.fields.Cargo(ctx, src)
	if err != nil {
		return nil, err
	}
	setOpt(&rec.Cargo, cargo, ok)

	entry, refOK := a.ref.Lookup(bolNumber, stem(filename))
	if refOK && rec.PortOfDischarge == nil && entry.PortOfDischarge != "" {
		pod := entry.PortOfDischarge
		rec.PortOfDischarge = &pod
		a.logger.Debug("discharge port taken from reference data", "filename", filename)
	}
	refCount := 0
	if refOK {
		refCount = entry.ContainerCount
	}

	cs, err := a.containers.Extract(ctx, src, bolNumber, refCount)
	if err != nil {
		return nil, err
	}
	if cs != nil {
		rec.Containers = cs
	}

	return rec, nil
}

func (a *Assembler) assemblePorts(ctx context.Context, src textsource.Source, rec *bol.Record) error {
	pol, ok, err := a.fields.PortOfLoading(ctx, src)
	if err != nil {
		return err
	}
	setOpt(&rec.PortOfLoading, pol, ok)

	pod, ok, err := a.fields.PortOfDischarge(ctx, src)
	if err != nil {
		return err
	}
	setOpt(&rec.PortOfDischarge, pod, ok)

	receipt, ok, err := a.fields.PlaceOfReceipt(ctx, src)
	if err != nil {
		return err
	}
	setOpt(&rec.PlaceOfReceipt, receipt, ok)

	delivery, ok, err := a.fields.PlaceOfDelivery(ctx, src)
	if err != nil {
		return err
	}
	setOpt(&rec.PlaceOfDelivery, delivery, ok)

	// A discharge port equal to the load port means both captures landed on
	// the same cell; leave it unresolved rather than duplicate.
	if rec.PortOfLoading != nil && rec.PortOfDischarge != nil && *rec.PortOfLoading == *rec.PortOfDischarge {
		a.logger.Debug("discharge port dropped, identical to load port", "port", *rec.PortOfLoading)
		rec.PortOfDischarge = nil
	}
	return nil
}

func setOpt[T any](dst **T, v T, ok bool) {
	if ok {
		*dst = &v
	}
}

// stem is the filename without directory or extension, used as the fallback
// reference-table identity when the BOL number did not resolve.
func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Package bol defines the extracted bill of lading record and the JSON
// schema it must satisfy.
package bol

import (
	"github.com/freightdocs/bol-extractor/constants"
)

// Party is one of the three named parties on a bill of lading.
type Party struct {
	CompanyName *string `json:"company_name"`
	Address     *string `json:"address"`
	RawText     *string `json:"raw_text"`
}

// VesselInfo names the carrying vessel and its voyage number.
type VesselInfo struct {
	Name   *string `json:"name"`
	Voyage *string `json:"voyage"`
}

// Container is one piece of equipment listed on the document, together with
// the context snippet it was discovered in.
type Container struct {
	ContainerNumber string   `json:"container_number"`
	SealNumber      *string  `json:"seal_number"`
	PackageCount    *int     `json:"package_count"`
	WeightKg        *float64 `json:"weight"`
	Context         string   `json:"context"`
}

// CargoSummary aggregates the document's cargo totals.
type CargoSummary struct {
	PackageCount  *int     `json:"package_count"`
	GrossWeightKg *float64 `json:"gross_weight_kg"`
	Description   *string  `json:"description"`
}

// Record is the complete extraction result for one document. A field the
// extractor could not resolve is null, never an empty string. Once the
// assembler returns a record it is not mutated again.
type Record struct {
	DocumentType    string        `json:"document_type"`
	Filename        string        `json:"filename"`
	BOLNumber       *string       `json:"bol_number"`
	Shipper         *Party        `json:"shipper"`
	Consignee       *Party        `json:"consignee"`
	NotifyParty     *Party        `json:"notify_party"`
	Vessel          *VesselInfo   `json:"vessel"`
	Containers      []Container   `json:"containers"`
	IssueDate       *string       `json:"issue_date"`
	ShippedDate     *string       `json:"shipped_date"`
	PortOfLoading   *string       `json:"port_of_loading"`
	PortOfDischarge *string       `json:"port_of_discharge"`
	PlaceOfReceipt  *string       `json:"place_of_receipt"`
	PlaceOfDelivery *string       `json:"place_of_delivery"`
	Cargo           *CargoSummary `json:"cargo"`
}

// NewRecord returns a record with the fixed document type set and an empty,
// non-nil container list, so "no containers found" serializes as [].
func NewRecord(filename string) *Record {
	return &Record{
		DocumentType: string(constants.DocTypeBillOfLading),
		Filename:     filename,
		Containers:   []Container{},
	}
}

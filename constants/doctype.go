package constants

// DocumentType identifies the kind of shipping document a record was
// extracted from.
type DocumentType string

// DocTypeBillOfLading is stored verbatim in the document_type field of every
// extracted record.
const DocTypeBillOfLading DocumentType = "Bill of Lading"

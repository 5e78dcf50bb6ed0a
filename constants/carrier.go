package constants

// DefaultCarrierBOLPrefixes lists the SCAC-style prefixes carriers stamp on
// bill of lading numbers. A container token starting with one of these is a
// BOL number that leaked into container discovery, not real equipment.
// Extractors accept an override; this is the default set.
var DefaultCarrierBOLPrefixes = []string{"MEDU", "MSCU", "MAEU", "EDUP"}

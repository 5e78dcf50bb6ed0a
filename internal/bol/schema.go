package bol

// BuildRecordSchema returns a JSON-Schema (draft 2020-12 subset) as a generic
// map. Every serialized record is validated against it before export, so a
// regression in a field extractor surfaces as a validation error rather than
// silently malformed output.
func BuildRecordSchema() map[string]any {
	props := map[string]any{
		"document_type":     map[string]any{"type": "string", "const": "Bill of Lading"},
		"filename":          map[string]any{"type": "string", "minLength": 1},
		"bol_number":        nullableProp("string"),
		"shipper":           partyProp(),
		"consignee":         partyProp(),
		"notify_party":      partyProp(),
		"vessel":            vesselProp(),
		"containers":        map[string]any{"type": "array", "items": containerProp()},
		"issue_date":        nullableProp("string"),
		"shipped_date":      nullableProp("string"),
		"port_of_loading":   nullableProp("string"),
		"port_of_discharge": nullableProp("string"),
		"place_of_receipt":  nullableProp("string"),
		"place_of_delivery": nullableProp("string"),
		"cargo":             cargoProp(),
	}
	required := []string{"document_type", "filename", "containers"}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func nullableProp(typ string) map[string]any {
	return map[string]any{"type": []string{typ, "null"}}
}

func partyProp() map[string]any {
	return map[string]any{
		"type":                 []string{"object", "null"},
		"additionalProperties": false,
		"properties": map[string]any{
			"company_name": nullableProp("string"),
			"address":      nullableProp("string"),
			"raw_text":     nullableProp("string"),
		},
	}
}

func vesselProp() map[string]any {
	return map[string]any{
		"type":                 []string{"object", "null"},
		"additionalProperties": false,
		"properties": map[string]any{
			"name":   nullableProp("string"),
			"voyage": nullableProp("string"),
		},
	}
}

func containerProp() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"container_number": map[string]any{"type": "string", "pattern": `^[A-Z]{4}\d{7}$`},
			"seal_number":      nullableProp("string"),
			"package_count":    nullableProp("integer"),
			"weight":           nullableProp("number"),
			"context":          map[string]any{"type": "string"},
		},
		"required": []string{"container_number"},
	}
}

func cargoProp() map[string]any {
	return map[string]any{
		"type":                 []string{"object", "null"},
		"additionalProperties": false,
		"properties": map[string]any{
			"package_count":   nullableProp("integer"),
			"gross_weight_kg": nullableProp("number"),
			"description":     nullableProp("string"),
		},
	}
}

package bol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordDefaults(t *testing.T) {
	rec := NewRecord("shipment-004.pdf")

	assert.Equal(t, "Bill of Lading", rec.DocumentType)
	assert.Equal(t, "shipment-004.pdf", rec.Filename)
	assert.NotNil(t, rec.Containers)
	assert.Empty(t, rec.Containers)
	assert.Nil(t, rec.BOLNumber)
	assert.Nil(t, rec.Cargo)
}

func TestRecordMarshalsAbsentFieldsAsNull(t *testing.T) {
	rec := NewRecord("doc.pdf")

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.JSONEq(t, `null`, string(raw["bol_number"]))
	assert.JSONEq(t, `null`, string(raw["shipper"]))
	assert.JSONEq(t, `null`, string(raw["port_of_discharge"]))
	assert.JSONEq(t, `[]`, string(raw["containers"]))
	assert.JSONEq(t, `"Bill of Lading"`, string(raw["document_type"]))
}

func TestRecordMarshalIsDeterministic(t *testing.T) {
	num := "MEDUP1966175"
	company := "ACME TRADING LLC"
	rec := NewRecord("doc.pdf")
	rec.BOLNumber = &num
	rec.Shipper = &Party{CompanyName: &company}
	rec.Containers = append(rec.Containers, Container{ContainerNumber: "MSKU1234567"})

	first, err := json.MarshalIndent(rec, "", "  ")
	require.NoError(t, err)
	second, err := json.MarshalIndent(rec, "", "  ")
	require.NoError(t, err)

	assert.Equal(t, first, second, "same record must serialize to identical bytes")
}

package bol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() *Record {
	num := "MEDUP1966175"
	seal := "FX31150"
	pallets := 20
	weight := 19841.0
	rec := NewRecord("shipment-004.pdf")
	rec.BOLNumber = &num
	rec.Containers = []Container{{
		ContainerNumber: "TRHU7586290",
		SealNumber:      &seal,
		PackageCount:    &pallets,
		WeightKg:        &weight,
		Context:         "1 x 40' HIGH CUBE TRHU7586290 Seal Number: FX31150",
	}}
	return rec
}

func TestValidatorAcceptsCompleteRecord(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	data, err := json.Marshal(validRecord())
	require.NoError(t, err)
	assert.NoError(t, v.Validate(data))
}

func TestValidatorAcceptsAllNullOptionals(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	data, err := json.Marshal(NewRecord("empty.pdf"))
	require.NoError(t, err)
	assert.NoError(t, v.Validate(data))
}

func TestValidatorRejectsBadContainerNumber(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	rec := validRecord()
	rec.Containers[0].ContainerNumber = "not-a-container"
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.Error(t, v.Validate(data))
}

func TestValidatorRejectsWrongDocumentType(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	rec := validRecord()
	rec.DocumentType = "Invoice"
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.Error(t, v.Validate(data))
}

func TestValidatorRejectsUnknownField(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	data, err := json.Marshal(validRecord())
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	m["surprise"] = true
	data, err = json.Marshal(m)
	require.NoError(t, err)

	assert.Error(t, v.Validate(data))
}

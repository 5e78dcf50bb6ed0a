package fields

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightdocs/bol-extractor/internal/document"
)

func TestVesselCombinedLabel(t *testing.T) {
	src := &stubSource{pages: []string{
		"VESSEL AND VOYAGE NO. MSC ANNA / 429A\nPORT OF LOADING",
	}}

	v, ok, err := newTestExtractor().Vessel(context.Background(), src)
	require.NoError(t, err)
	require.True(t, ok)

	require.NotNil(t, v.Name)
	assert.Equal(t, "MSC ANNA", *v.Name)
	require.NotNil(t, v.Voyage)
	assert.Equal(t, "429A", *v.Voyage)
}

func TestVesselLabelOnSecondPage(t *testing.T) {
	src := &stubSource{pages: []string{
		"cover sheet, no vessel block",
		"VESSEL AND VOYAGE NO. MSC ANNA / 429A\nPORT OF LOADING",
	}}

	v, ok, err := newTestExtractor().Vessel(context.Background(), src)
	require.NoError(t, err)
	require.True(t, ok)

	require.NotNil(t, v.Name)
	assert.Equal(t, "MSC ANNA", *v.Name)
	require.NotNil(t, v.Voyage)
	assert.Equal(t, "429A", *v.Voyage)
}

func TestVesselLabelBeyondHeaderPagesIgnored(t *testing.T) {
	// Rider pages past the header are terms text; a label there is noise.
	src := &stubSource{pages: []string{
		"cover sheet, no vessel block",
		"still no vessel block",
		"VESSEL AND VOYAGE NO. MSC ANNA / 429A",
	}}

	_, ok, err := newTestExtractor().Vessel(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVesselCombinedLabelLowercase(t *testing.T) {
	src := &stubSource{pages: []string{
		"Vessel and Voyage No. MSC Anna / 429a\nPORT OF LOADING",
	}}

	v, ok, err := newTestExtractor().Vessel(context.Background(), src)
	require.NoError(t, err)
	require.True(t, ok)

	require.NotNil(t, v.Name)
	assert.Equal(t, "MSC Anna", *v.Name)
	require.NotNil(t, v.Voyage)
	assert.Equal(t, "429a", *v.Voyage)
}

func TestVesselCombinedLabelWinsOverSplit(t *testing.T) {
	src := &stubSource{pages: []string{
		"VESSEL AND VOYAGE NO. MSC ANNA / 429A\nVESSEL: OTHER SHIP VOYAGE: 111B",
	}}

	v, ok, err := newTestExtractor().Vessel(context.Background(), src)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, v.Name)
	assert.Equal(t, "MSC ANNA", *v.Name)
}

func TestVesselSplitLabels(t *testing.T) {
	src := &stubSource{pages: []string{
		"VESSEL: MAERSK SELETAR  VOYAGE: 429W",
	}}

	v, ok, err := newTestExtractor().Vessel(context.Background(), src)
	require.NoError(t, err)
	require.True(t, ok)

	require.NotNil(t, v.Name)
	assert.Equal(t, "MAERSK SELETAR", *v.Name)
	require.NotNil(t, v.Voyage)
	assert.Equal(t, "429W", *v.Voyage)
}

func TestVesselByRegionWithVoyage(t *testing.T) {
	src := &stubSource{
		pages: []string{"scanned page, labels unreadable"},
		regions: map[int]map[document.Rect]string{
			0: {vesselRegion: "MAERSK SELETAR / 429W"},
		},
	}

	v, ok, err := newTestExtractor().Vessel(context.Background(), src)
	require.NoError(t, err)
	require.True(t, ok)

	require.NotNil(t, v.Name)
	assert.Equal(t, "MAERSK SELETAR", *v.Name)
	require.NotNil(t, v.Voyage)
	assert.Equal(t, "429W", *v.Voyage)
}

func TestVesselByRegionBareName(t *testing.T) {
	src := &stubSource{
		pages: []string{"scanned page, labels unreadable"},
		regions: map[int]map[document.Rect]string{
			0: {vesselRegion: "MSC ANNA"},
		},
	}

	v, ok, err := newTestExtractor().Vessel(context.Background(), src)
	require.NoError(t, err)
	require.True(t, ok)

	require.NotNil(t, v.Name)
	assert.Equal(t, "MSC ANNA", *v.Name)
	assert.Nil(t, v.Voyage)
}

func TestVesselMiss(t *testing.T) {
	src := &stubSource{pages: []string{"no vessel information"}}

	_, ok, err := newTestExtractor().Vessel(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, ok)
}

package fields

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCargoTotals(t *testing.T) {
	src := &stubSource{pages: []string{
		"Description of Packages and Goods\n20 PALLETS OF GLASSWARE\n" +
			"Gross Weight\nTotal Items 20\nTotal Gross Weight 19841,00 Kgs",
	}}

	c, ok, err := newTestExtractor().Cargo(context.Background(), src)
	require.NoError(t, err)
	require.True(t, ok)

	require.NotNil(t, c.PackageCount)
	assert.Equal(t, 20, *c.PackageCount)
	require.NotNil(t, c.GrossWeightKg)
	assert.Equal(t, 19841.0, *c.GrossWeightKg)
	require.NotNil(t, c.Description)
	assert.Equal(t, "20 PALLETS OF GLASSWARE", *c.Description)
}

func TestCargoWeightDotDecimal(t *testing.T) {
	src := &stubSource{pages: []string{"Total Gross Weight 19841.00 Kgs"}}

	c, ok, err := newTestExtractor().Cargo(context.Background(), src)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, c.GrossWeightKg)
	assert.Equal(t, 19841.0, *c.GrossWeightKg)
}

func TestCargoWeightLabelCaseInsensitive(t *testing.T) {
	src := &stubSource{pages: []string{"TOTAL GROSS WEIGHT 55,50 KGS"}}

	c, ok, err := newTestExtractor().Cargo(context.Background(), src)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, c.GrossWeightKg)
	assert.Equal(t, 55.5, *c.GrossWeightKg)
}

func TestCargoFirstMatchWinsAcrossPages(t *testing.T) {
	// Page one already resolved the item count; the rider page's totals
	// must not overwrite it, but may still fill the missing weight.
	src := &stubSource{pages: []string{
		"Total Items 20",
		"Total Items 99\nTotal Gross Weight 102,50 Kgs",
	}}

	c, ok, err := newTestExtractor().Cargo(context.Background(), src)
	require.NoError(t, err)
	require.True(t, ok)

	require.NotNil(t, c.PackageCount)
	assert.Equal(t, 20, *c.PackageCount)
	require.NotNil(t, c.GrossWeightKg)
	assert.Equal(t, 102.5, *c.GrossWeightKg)
	assert.Nil(t, c.Description)
}

func TestCargoMiss(t *testing.T) {
	src := &stubSource{pages: []string{"no cargo table on this page"}}

	c, ok, err := newTestExtractor().Cargo(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, c.PackageCount)
	assert.Nil(t, c.GrossWeightKg)
	assert.Nil(t, c.Description)
}

package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractExchangeRate(t *testing.T) {
	tests := []struct {
		html string
		want float64
	}{
		{`<header>US$1 = CLP$902</header>`, 902},
		{`<span>US$1 = CLP 935,50</span>`, 935.5},
		{`<div>US$1 = $970</div>`, 970},
		{`T.Cambio: 912.25`, 912.25},
		{`Tasa: 880`, 880},
	}
	for _, tc := range tests {
		got, ok := extractExchangeRate(tc.html)
		require.True(t, ok, "rate should be found in %q", tc.html)
		assert.InDelta(t, tc.want, got, 1e-9, "html %q", tc.html)
	}
}

func TestExtractExchangeRate_RejectsImplausibleValues(t *testing.T) {
	// Prices and percentages must not be mistaken for the rate.
	for _, html := range []string{
		`<div>CLP$150000</div>`,
		`<div>US$1 = CLP$3</div>`,
		`<div>sin tipo de cambio</div>`,
		``,
	} {
		_, ok := extractExchangeRate(html)
		assert.False(t, ok, "no rate should be found in %q", html)
	}
}

func TestExtractProductImages(t *testing.T) {
	html := `<html><body>
		<a data-sku="AB123" href="/p/ab123"><img src="//img.example.com/ab123.jpg"></a>
		<a data-sku="CD456" href="/p/cd456"><img data-src="https://img.example.com/cd456.png" src="data:image/gif;base64,x"></a>
		<a data-sku="" href="/p/none"><img src="https://img.example.com/none.jpg"></a>
		<a data-sku="EF789" href="/p/ef789"></a>
		<a data-sku="AB123" href="/p/dup"><img src="https://img.example.com/dup.jpg"></a>
	</body></html>`

	images := extractProductImages(html)

	assert.Equal(t, map[string]string{
		"AB123": "https://img.example.com/ab123.jpg", // protocol-relative fixed, first wins
		"CD456": "https://img.example.com/cd456.png", // data-src preferred over data: URI
	}, images)
}

func TestImageMapRoundTrip(t *testing.T) {
	dir := t.TempDir()

	original := map[string]string{"AB123": "https://img.example.com/ab123.jpg"}
	require.NoError(t, SaveImageMap(dir, original))

	loaded, err := LoadImageMap(dir)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadImageMap_MissingFileIsEmpty(t *testing.T) {
	loaded, err := LoadImageMap(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestImageState_PersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()

	state, err := LoadImageState(dir)
	require.NoError(t, err)
	assert.False(t, state.IsResolved("AB123"))

	state.MarkResolved("AB123")
	require.NoError(t, state.Save())

	reloaded, err := LoadImageState(dir)
	require.NoError(t, err)
	assert.True(t, reloaded.IsResolved("AB123"))
	assert.False(t, reloaded.IsResolved("CD456"))
}

package listing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tilesPage = `<!DOCTYPE html>
<html><body>
	<div class="tile">
		<a class="name" href="/p/1">Hodgdon   Varget</a>
		<span class="price">R 1,050.00</span>
	</div>
	<div class="tile">
		<a class="name" href="https://shop.example/p/2">Hodgdon 4350</a>
		<span class="price">R 999.99</span>
		<div class="oos">Out of stock</div>
	</div>
	<div class="tile">
		<a class="name" href="/p/3">Hodgdon 4350</a>
		<span class="price">R 999.99</span>
	</div>
	<div class="tile">
		<a class="name" href="/p/4"></a>
		<span class="price">R 1.00</span>
	</div>
	<div class="tile">
		<a class="name" href="/p/5">Call us</a>
		<span class="price">POA</span>
	</div>
	<div class="tile">
		<a class="name" href="/p/3">Hodgdon 4350</a>
		<span class="price">R 999.99</span>
	</div>
</body></html>`

func newTestParser() *TileParser {
	return &TileParser{
		Selectors: Selectors{
			Tile:        "div.tile",
			Price:       ".price",
			Link:        "a.name",
			Unavailable: ".oos",
		},
		Corrections: Corrections{{From: "4350", To: "H4350"}},
	}
}

func TestTileParserExtractsEntries(t *testing.T) {
	entries, err := newTestParser().Parse([]byte(tilesPage), "https://shop.example/powders?page=1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "Hodgdon Varget", entries[0].Name)
	assert.Equal(t, "1050", entries[0].Price.String())
	assert.Equal(t, "https://shop.example/p/1", entries[0].URL)

	// corrected, and duplicates survive this layer
	assert.Equal(t, "Hodgdon H4350", entries[1].Name)
	assert.Equal(t, "https://shop.example/p/3", entries[1].URL)
	assert.Equal(t, entries[1], entries[2])
}

func TestTileParserDropsUnavailable(t *testing.T) {
	entries, err := newTestParser().Parse([]byte(tilesPage), "https://shop.example/powders")
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "https://shop.example/p/2", e.URL)
	}
}

func TestTileParserStructuralMismatch(t *testing.T) {
	_, err := newTestParser().Parse([]byte(`<html><body><p>We moved!</p></body></html>`), "https://shop.example/powders")
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "div.tile", perr.Selector)
	assert.Equal(t, "https://shop.example/powders", perr.URL)
}

func TestTileParserTileIsLink(t *testing.T) {
	p := &TileParser{Selectors: Selectors{Tile: "a.card", Name: "h2", Price: ".price"}}
	entries, err := p.Parse([]byte(`<a class="card" href="/x"><h2>N140</h2><span class="price">R 700</span></a>`), "https://zimbi.example/shop/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "N140", entries[0].Name)
	assert.Equal(t, "https://zimbi.example/x", entries[0].URL)
}

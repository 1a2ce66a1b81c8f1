package suppliers

import (
	"errors"
	"testing"

	"reloadradar/models"
	"reloadradar/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const magentoPage = `<ol class="products list items product-items">
<li class="item product product-item">
	<div class="product details product-item-details">
		<strong class="product name product-item-name">
			<a class="product-item-link" href="https://www.shootingstuff.example/alliant-reloader-16.html">Alliant Reloader 16 1lb</a>
		</strong>
		<div class="price-box"><span class="price">R1,150.00</span></div>
		<div class="stock available"><span>In stock</span></div>
	</div>
</li>
<li class="item product product-item">
	<div class="product details product-item-details">
		<strong class="product name product-item-name">
			<a class="product-item-link" href="https://www.shootingstuff.example/hodgdon-4350.html">Hodgdon 4350 1lb</a>
		</strong>
		<div class="price-box"><span class="price">R1,299.00</span></div>
	</div>
</li>
<li class="item product product-item">
	<div class="product details product-item-details">
		<strong class="product name product-item-name">
			<a class="product-item-link" href="https://www.shootingstuff.example/cfe-223.html">Hodgdon CFE-223</a>
		</strong>
		<div class="price-box"><span class="price">R1,400.00</span></div>
		<div class="stock unavailable"><span>Out of stock</span></div>
	</div>
</li>
</ol>`

const wooPage = `<ul class="products">
<li class="product">
	<a href="https://zimbi.example/product/vihtavuori-n140/" class="woocommerce-LoopProduct-link woocommerce-loop-product__link">
		<h2 class="woocommerce-loop-product__title">Vihtavuori N140</h2>
		<span class="price"><span class="woocommerce-Price-amount amount"><bdi><span class="woocommerce-Price-currencySymbol">R</span>1,195.00</bdi></span></span>
	</a>
</li>
</ul>`

func TestShootingStuffCorrectsNamesAndFiltersStock(t *testing.T) {
	p, err := DefaultRegistry(utils.NopLogger()).Parser("shootingstuff", models.KindPropellant)
	require.NoError(t, err)

	entries, err := p.Parse([]byte(magentoPage), "https://www.shootingstuff.example/reloading/powder.html")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Alliant Reloder 16 1lb", entries[0].Name)
	assert.Equal(t, "1150", entries[0].Price.String())
	assert.Equal(t, "Hodgdon H4350 1lb", entries[1].Name)
}

func TestSafariOutdoorKeepsNames(t *testing.T) {
	p, err := DefaultRegistry(utils.NopLogger()).Parser("safarioutdoor", models.KindPropellant)
	require.NoError(t, err)

	entries, err := p.Parse([]byte(magentoPage), "https://safari.example/powder")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Alliant Reloader 16 1lb", entries[0].Name)
}

func TestZimbiTileLink(t *testing.T) {
	p, err := DefaultRegistry(utils.NopLogger()).Parser("zimbi", models.KindPropellant)
	require.NoError(t, err)

	entries, err := p.Parse([]byte(wooPage), "https://zimbi.example/shop/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Vihtavuori N140", entries[0].Name)
	assert.Equal(t, "1195", entries[0].Price.String())
	assert.Equal(t, "https://zimbi.example/product/vihtavuori-n140/", entries[0].URL)
}

func TestRegistryRejectsUnknown(t *testing.T) {
	r := DefaultRegistry(utils.NopLogger())

	_, err := r.Parser("nosuchshop", models.KindPropellant)
	assert.True(t, errors.Is(err, ErrUnknownAdapter))

	_, err = r.Parser("zimbi", models.ProductKind("primer"))
	assert.True(t, errors.Is(err, ErrUnsupportedKind))

	assert.Equal(t, []string{"safarioutdoor", "shootingstuff", "zimbi"}, r.Names())
}

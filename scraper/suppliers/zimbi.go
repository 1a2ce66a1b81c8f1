package suppliers

import (
	"reloadradar/models"
	"reloadradar/scraper/listing"
	"reloadradar/utils"
)

// Zimbi is a WooCommerce shop; the whole product tile is the link
func Zimbi(logger *utils.Logger) Adapter {
	return Adapter{
		Name: "zimbi",
		Parsers: map[models.ProductKind]listing.Parser{
			models.KindPropellant: &listing.TileParser{
				Selectors: listing.Selectors{
					Tile:  "a.woocommerce-LoopProduct-link.woocommerce-loop-product__link",
					Name:  "h2",
					Price: ".price",
				},
				Logger: logger,
			},
		},
	}
}

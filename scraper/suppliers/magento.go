package suppliers

import (
	"reloadradar/models"
	"reloadradar/scraper/listing"
	"reloadradar/utils"
)

// Both Safari Outdoor and Shooting Stuff run stock Magento category pages
var magentoSelectors = listing.Selectors{
	Tile:        ".product.details.product-item-details",
	Price:       ".price",
	Link:        "a.product-item-link",
	Unavailable: "div.stock.unavailable",
}

func SafariOutdoor(logger *utils.Logger) Adapter {
	return Adapter{
		Name: "safarioutdoor",
		Parsers: map[models.ProductKind]listing.Parser{
			models.KindPropellant: &listing.TileParser{
				Selectors: magentoSelectors,
				Logger:    logger,
			},
		},
	}
}

// shootingStuffNames fixes Shooting Stuff's spelling of catalog names.
// Order matters: rules run top to bottom.
var shootingStuffNames = listing.Corrections{
	{From: "Reloader", To: "Reloder"},
	{From: "4350", To: "H4350"},
	{From: "CFE-223", To: "CFE223"},
	{From: "Ba9.5", To: "BA 9.5"},
}

func ShootingStuff(logger *utils.Logger) Adapter {
	return Adapter{
		Name: "shootingstuff",
		Parsers: map[models.ProductKind]listing.Parser{
			models.KindPropellant: &listing.TileParser{
				Selectors:   magentoSelectors,
				Corrections: shootingStuffNames,
				Logger:      logger,
			},
		},
	}
}

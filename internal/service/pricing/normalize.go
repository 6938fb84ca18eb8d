package pricing

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/repricer/internal/domain/models"
)

// pricePrecision is the fixed precision used while comparing prices across
// sources. Row-configured precision only applies to the published price.
const pricePrecision = 4

// NormalizeOffer converts one raw listing into an Offer: parses the
// delivery promise and divides the listed price by the lot size so prices
// compare per unit. A ParseError means the caller drops this offer only.
func NormalizeOffer(raw models.RawOffer) (models.Offer, error) {
	price, err := decimal.NewFromString(raw.Price)
	if err != nil {
		return models.Offer{}, models.NewParseError("price", raw.Price, "non-numeric")
	}
	if price.IsNegative() {
		return models.Offer{}, models.NewParseError("price", raw.Price, "negative")
	}

	if raw.Quantity <= 0 {
		return models.Offer{}, models.NewParseError("quantity", strconv.Itoa(raw.Quantity), "lot size must be positive")
	}

	offer := models.Offer{
		OfferID: raw.OfferID,
		Server:  raw.Server,
		Seller: models.Seller{
			Name:          raw.SellerName,
			FeedbackCount: raw.Feedback,
		},
		MinUnit:      raw.MinUnit,
		MinStock:     raw.MinStock,
		Stock:        raw.Stock,
		Quantity:     raw.Quantity,
		PricePerUnit: price.DivRound(decimal.NewFromInt(int64(raw.Quantity)), pricePrecision),
	}

	if raw.DeliveryText != "" {
		dt, err := models.ParseDeliveryTime(raw.DeliveryText)
		if err != nil {
			return models.Offer{}, err
		}
		offer.DeliveryTime = &dt
	}

	return offer, nil
}

// NormalizeOffers maps a raw batch, dropping unparseable listings and
// reporting each drop to the callback when one is supplied.
func NormalizeOffers(raws []models.RawOffer, onDrop func(models.RawOffer, error)) []models.Offer {
	offers := make([]models.Offer, 0, len(raws))
	for _, raw := range raws {
		offer, err := NormalizeOffer(raw)
		if err != nil {
			if onDrop != nil {
				onDrop(raw, err)
			}
			continue
		}
		offers = append(offers, offer)
	}
	return offers
}

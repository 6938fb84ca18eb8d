package pricing

import (
	"github.com/mamadbah2/repricer/internal/domain/models"
)

// ValidOffer applies one source's eligibility rules to a single offer.
// Every rule must pass: the seller is not blacklisted, the delivery
// promise exists and is within the ceiling, the minimum purchase unit does
// not exceed the ceiling and the stock floor is met.
func ValidOffer(offer models.Offer, cfg models.SourceConfig) bool {
	if cfg.Blacklisted(offer.Seller.Name) {
		return false
	}
	if offer.DeliveryTime == nil || offer.DeliveryTime.LongerThan(cfg.DeliveryCeiling) {
		return false
	}
	if offer.MinUnit > cfg.MinUnitCeiling {
		return false
	}
	// The primary marketplace publishes availability as a per-offer
	// minimum stock; competitor feeds publish the live stock count.
	stock := offer.Stock
	if cfg.UseMinStock {
		stock = offer.MinStock
	}
	if stock < cfg.MinStockFloor {
		return false
	}
	return true
}

// FilterOffers returns the offers surviving the source's rules, in their
// original order. An empty result means the source contributes no price
// this cycle; it is not an error.
func FilterOffers(offers []models.Offer, cfg models.SourceConfig) []models.Offer {
	kept := make([]models.Offer, 0, len(offers))
	for _, offer := range offers {
		if ValidOffer(offer, cfg) {
			kept = append(kept, offer)
		}
	}
	return kept
}

// MinOffer picks the cheapest offer by per-unit price. Ties keep the
// earliest offer. ok is false for an empty slice.
func MinOffer(offers []models.Offer) (models.Offer, bool) {
	if len(offers) == 0 {
		return models.Offer{}, false
	}
	best := offers[0]
	for _, offer := range offers[1:] {
		if offer.PricePerUnit.LessThan(best.PricePerUnit) {
			best = offer
		}
	}
	return best, true
}

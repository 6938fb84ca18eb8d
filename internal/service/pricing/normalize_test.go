package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/repricer/internal/domain/models"
)

func rawOffer(price string, quantity int) models.RawOffer {
	return models.RawOffer{
		OfferID:      "o1",
		SellerName:   "alpha",
		DeliveryText: "1 Hour",
		MinUnit:      100,
		MinStock:     500,
		Stock:        500,
		Quantity:     quantity,
		Price:        price,
	}
}

func TestNormalizeOfferDividesByQuantity(t *testing.T) {
	offer, err := NormalizeOffer(rawOffer("25.00", 1000))
	if err != nil {
		t.Fatalf("NormalizeOffer: %v", err)
	}
	if want := decimal.RequireFromString("0.025"); !offer.PricePerUnit.Equal(want) {
		t.Fatalf("price per unit = %s, want %s", offer.PricePerUnit, want)
	}
	if offer.DeliveryTime == nil || offer.DeliveryTime.Seconds() != 3600 {
		t.Fatalf("delivery time not normalized: %+v", offer.DeliveryTime)
	}
}

func TestNormalizeOfferRejectsZeroQuantity(t *testing.T) {
	_, err := NormalizeOffer(rawOffer("25.00", 0))
	if err == nil {
		t.Fatalf("expected error for zero quantity")
	}
	var parseErr *models.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %T, want *models.ParseError", err)
	}
}

func TestNormalizeOfferRejectsBadPrice(t *testing.T) {
	for _, price := range []string{"", "abc", "-3.5"} {
		if _, err := NormalizeOffer(rawOffer(price, 10)); err == nil {
			t.Fatalf("price %q: expected error", price)
		}
	}
}

func TestNormalizeOfferRejectsBadDelivery(t *testing.T) {
	raw := rawOffer("10", 10)
	raw.DeliveryText = "whenever"
	if _, err := NormalizeOffer(raw); err == nil {
		t.Fatalf("expected error for malformed delivery text")
	}
}

func TestNormalizeOffersDropsOnlyBadOnes(t *testing.T) {
	raws := []models.RawOffer{
		rawOffer("10", 10),
		rawOffer("broken", 10),
		rawOffer("20", 10),
	}

	var dropped int
	offers := NormalizeOffers(raws, func(models.RawOffer, error) { dropped++ })

	if len(offers) != 2 {
		t.Fatalf("kept %d offers, want 2", len(offers))
	}
	if dropped != 1 {
		t.Fatalf("dropped %d offers, want 1", dropped)
	}
}

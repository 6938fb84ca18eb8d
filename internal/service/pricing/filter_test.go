package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/repricer/internal/domain/models"
)

func hours(n int) *models.DeliveryTime {
	return &models.DeliveryTime{Value: n, Unit: models.UnitHours}
}

func testOffer(seller string, price string) models.Offer {
	return models.Offer{
		Seller:       models.Seller{Name: seller},
		DeliveryTime: hours(1),
		MinUnit:      100,
		MinStock:     500,
		Stock:        500,
		Quantity:     1,
		PricePerUnit: decimal.RequireFromString(price),
	}
}

func testConfig() models.SourceConfig {
	return models.SourceConfig{
		Tag:             models.SourceG2G,
		Enabled:         true,
		DeliveryCeiling: models.DeliveryTime{Value: 2, Unit: models.UnitHours},
		MinStockFloor:   100,
		MinUnitCeiling:  200,
		Blacklist:       map[string]struct{}{"banned": {}},
	}
}

func TestFilterOffersAllRulesPass(t *testing.T) {
	offers := []models.Offer{testOffer("alpha", "1.0"), testOffer("beta", "2.0")}
	kept := FilterOffers(offers, testConfig())
	if len(kept) != 2 {
		t.Fatalf("kept %d, want 2", len(kept))
	}
}

func TestFilterOffersBlacklist(t *testing.T) {
	offers := []models.Offer{testOffer("banned", "0.5"), testOffer("alpha", "1.0")}
	kept := FilterOffers(offers, testConfig())
	if len(kept) != 1 || kept[0].Seller.Name != "alpha" {
		t.Fatalf("blacklisted seller survived: %+v", kept)
	}
}

func TestFilterOffersDeliveryCeiling(t *testing.T) {
	slow := testOffer("slow", "1.0")
	slow.DeliveryTime = hours(3)
	missing := testOffer("missing", "1.0")
	missing.DeliveryTime = nil
	exact := testOffer("exact", "1.0")
	exact.DeliveryTime = hours(2)

	kept := FilterOffers([]models.Offer{slow, missing, exact}, testConfig())
	if len(kept) != 1 || kept[0].Seller.Name != "exact" {
		t.Fatalf("delivery filtering wrong: %+v", kept)
	}
}

func TestFilterOffersMinUnitCeiling(t *testing.T) {
	big := testOffer("big", "1.0")
	big.MinUnit = 500
	kept := FilterOffers([]models.Offer{big}, testConfig())
	if len(kept) != 0 {
		t.Fatalf("offer above min-unit ceiling survived")
	}
}

func TestFilterOffersStockSemantics(t *testing.T) {
	cfg := testConfig()

	low := testOffer("low", "1.0")
	low.Stock = 50
	if len(FilterOffers([]models.Offer{low}, cfg)) != 0 {
		t.Fatalf("offer below stock floor survived")
	}

	// The primary marketplace checks the per-offer minimum stock instead.
	cfg.UseMinStock = true
	low.Stock = 50
	low.MinStock = 500
	if len(FilterOffers([]models.Offer{low}, cfg)) != 1 {
		t.Fatalf("min-stock semantics not applied for primary marketplace")
	}
}

func TestFilterOffersPreservesOrder(t *testing.T) {
	offers := []models.Offer{
		testOffer("c", "3.0"),
		testOffer("a", "1.0"),
		testOffer("b", "2.0"),
	}
	kept := FilterOffers(offers, testConfig())
	if len(kept) != 3 {
		t.Fatalf("kept %d, want 3", len(kept))
	}
	for i, name := range []string{"c", "a", "b"} {
		if kept[i].Seller.Name != name {
			t.Fatalf("order changed: got %s at %d", kept[i].Seller.Name, i)
		}
	}
}

func TestMinOffer(t *testing.T) {
	if _, ok := MinOffer(nil); ok {
		t.Fatalf("MinOffer(nil) should report no offer")
	}

	offers := []models.Offer{
		testOffer("first", "2.0"),
		testOffer("cheapest", "1.5"),
		testOffer("tie", "1.5"),
	}
	best, ok := MinOffer(offers)
	if !ok || best.Seller.Name != "cheapest" {
		t.Fatalf("MinOffer picked %+v", best)
	}
}

package mongodb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/repricer/internal/domain/models"
)

func TestDecisionDocumentRoundTrip(t *testing.T) {
	decision := models.PriceDecision{
		CycleID:         "cycle-1",
		RowIndex:        7,
		ProductName:     "gold-eu",
		PriceMin:        decimal.RequireFromString("8.00"),
		PriceMax:        decimal.RequireFromString("12.00"),
		AdjustedPrice:   decimal.RequireFromString("9.80"),
		StockTier:       models.TierPrimary,
		StockCounts:     models.StockCounts{Counter1: 50, Counter2: 5, StockFake: 500},
		PublishedStock:  50,
		ReferenceSeller: "Alice",
		ReferencePrice:  decimal.RequireFromString("10.00"),
		PerSource: []models.SourcePriceResult{
			{Source: models.SourceG2G, Price: decimal.RequireFromString("9.9500"), Seller: "rival", Found: true},
			{Source: models.SourceFUN},
		},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	decision.SourceOffer.Seller.Name = "anchor"
	decision.SourceOffer.PricePerUnit = decimal.RequireFromString("10.00")

	got := fromDocument(toDocument(decision))

	if got.CycleID != decision.CycleID || got.RowIndex != decision.RowIndex || got.StockTier != decision.StockTier {
		t.Fatalf("got %+v", got)
	}
	if !got.AdjustedPrice.Equal(decision.AdjustedPrice) || !got.PriceMin.Equal(decision.PriceMin) {
		t.Fatalf("prices lost precision: %+v", got)
	}
	if got.SourceOffer.Seller.Name != "anchor" || !got.SourceOffer.PricePerUnit.Equal(decision.SourceOffer.PricePerUnit) {
		t.Fatalf("anchor lost: %+v", got.SourceOffer)
	}
	if len(got.PerSource) != 2 || got.PerSource[0].Source != models.SourceG2G || !got.PerSource[0].Found {
		t.Fatalf("per-source lost: %+v", got.PerSource)
	}
	if !got.CreatedAt.Equal(decision.CreatedAt) {
		t.Fatalf("created_at mismatch: %s", got.CreatedAt)
	}
}

func TestParseDecimalTolerant(t *testing.T) {
	if !parseDecimal("9.95").Equal(decimal.RequireFromString("9.95")) {
		t.Fatalf("parseDecimal lost the value")
	}
	if !parseDecimal("junk").IsZero() {
		t.Fatalf("garbage must decode to zero, not panic")
	}
}

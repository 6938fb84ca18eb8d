package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/mamadbah2/repricer/internal/domain/models"
)

// fakeCounters serves counter values keyed by cell, failing for absent
// keys.
type fakeCounters struct {
	values map[string]int
}

func (f fakeCounters) ReadCounter(_ context.Context, ref models.CellRef) (int, error) {
	value, ok := f.values[ref.Cell]
	if !ok {
		return 0, errors.New("cell unreadable")
	}
	return value, nil
}

func stockSettings() models.StockSettings {
	return models.StockSettings{
		Counter1:   models.CellRef{SpreadsheetID: "s", Sheet: "Stock", Cell: "A1"},
		Counter2:   models.CellRef{SpreadsheetID: "s", Sheet: "Stock", Cell: "A2"},
		Threshold1: 20,
		Threshold2: 100,
		StockFake:  999,
	}
}

func TestRoutePrimaryWhenOnlyCounter1Deep(t *testing.T) {
	router := NewStockRouter(fakeCounters{values: map[string]int{"A1": 50, "A2": 5}}, nil)

	tier, counts := router.Route(context.Background(), stockSettings())
	if tier != models.TierPrimary {
		t.Fatalf("tier = %s, want primary", tier)
	}
	if counts.Counter1 != 50 || counts.Counter2 != 5 {
		t.Fatalf("counts = %+v", counts)
	}
}

func TestRouteSecondaryOverridesPrimary(t *testing.T) {
	router := NewStockRouter(fakeCounters{values: map[string]int{"A1": 50, "A2": 150}}, nil)

	tier, _ := router.Route(context.Background(), stockSettings())
	if tier != models.TierSecondary {
		t.Fatalf("tier = %s, want secondary when both counters clear their thresholds", tier)
	}
}

func TestRouteThresholdInclusive(t *testing.T) {
	router := NewStockRouter(fakeCounters{values: map[string]int{"A1": 20, "A2": 0}}, nil)

	tier, _ := router.Route(context.Background(), stockSettings())
	if tier != models.TierPrimary {
		t.Fatalf("tier = %s, threshold must be inclusive", tier)
	}
}

func TestRouteFallbackOnFailedReads(t *testing.T) {
	router := NewStockRouter(fakeCounters{values: map[string]int{}}, nil)

	tier, counts := router.Route(context.Background(), stockSettings())
	if tier != models.TierFallback {
		t.Fatalf("tier = %s, want fallback", tier)
	}
	if counts.Counter1 != -1 || counts.Counter2 != -1 {
		t.Fatalf("failed reads must report -1, got %+v", counts)
	}
}

func TestPublishedStock(t *testing.T) {
	settings := stockSettings()
	settings.StockMax = 40

	counts := models.StockCounts{Counter1: 50, Counter2: 10, StockFake: 999}
	if got := PublishedStock(models.TierPrimary, counts, settings); got != 40 {
		t.Fatalf("primary published stock = %d, want capped 40", got)
	}

	counts = models.StockCounts{Counter1: 5, Counter2: 30, StockFake: 999}
	if got := PublishedStock(models.TierSecondary, counts, settings); got != 30 {
		t.Fatalf("secondary published stock = %d, want 30", got)
	}

	if got := PublishedStock(models.TierFallback, counts, settings); got != 999 {
		t.Fatalf("fallback published stock = %d, want fake stock", got)
	}
}
